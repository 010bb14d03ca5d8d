// Package llm 提供按优先级调用多个模型的网关，以及对模型输出的结构化解析。
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"curago-go/internal/config"
	"curago-go/pkg/log"
	"curago-go/pkg/metrics"
)

var (
	// ErrNoResult 表示所有模型都未能给出结果，或网关未配置 API Key。
	ErrNoResult = errors.New("llm: no model produced a result")
	// ErrEmptyResponse 表示模型调用成功但返回了空文本。
	ErrEmptyResponse = errors.New("llm: empty response")
)

// RateLimitError 表示提供方返回了 429，RetryDelay 为其建议的等待时间（未提供时为 0）。
type RateLimitError struct {
	Model      string
	RetryDelay time.Duration
	Err        error
}

func (e *RateLimitError) Error() string {
	if e.RetryDelay > 0 {
		return fmt.Sprintf("llm: model %s rate limited, retry after %s", e.Model, e.RetryDelay)
	}
	return fmt.Sprintf("llm: model %s rate limited", e.Model)
}

func (e *RateLimitError) Unwrap() error { return e.Err }

// Provider 对单个指定模型执行一次文本补全。
type Provider interface {
	Generate(ctx context.Context, model, prompt string) (string, error)
}

// Client 是业务层使用的文本生成接口。
type Client interface {
	// Generate 按优先级依次尝试各模型，全部失败时返回 ErrNoResult。
	Generate(ctx context.Context, prompt string) (string, error)
	// Available 表示网关是否配置了可用的提供方。
	Available() bool
}

// SleepFunc 在等待期间可被 ctx 取消。
type SleepFunc func(ctx context.Context, d time.Duration) error

// Options 控制网关的模型列表、超时与限流退避。
type Options struct {
	Models            []string
	Timeout           time.Duration
	DefaultRetryDelay time.Duration
	// RateLimitRetries 为同一模型在 429 之后的额外尝试次数，0 表示退避后直接换下一个模型。
	RateLimitRetries int
	Sleep            SleepFunc
}

type gateway struct {
	provider Provider
	opts     Options
}

// NewClient 创建一个网关；provider 为 nil 时网关只会返回 ErrNoResult。
func NewClient(provider Provider, opts Options) Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.DefaultRetryDelay <= 0 {
		opts.DefaultRetryDelay = 5 * time.Second
	}
	if opts.RateLimitRetries < 0 {
		opts.RateLimitRetries = 0
	}
	if opts.Sleep == nil {
		opts.Sleep = sleepContext
	}
	return &gateway{provider: provider, opts: opts}
}

// OptionsFromConfig 将 LLM 配置转换为网关选项。
func OptionsFromConfig(cfg config.LLMConfig) Options {
	return Options{
		Models:            cfg.Models(),
		Timeout:           time.Duration(cfg.TimeoutMs) * time.Millisecond,
		DefaultRetryDelay: time.Duration(cfg.RateLimitDefaultDelayMs) * time.Millisecond,
		RateLimitRetries:  cfg.RateLimitRetries,
	}
}

func (g *gateway) Available() bool {
	return g.provider != nil && len(g.opts.Models) > 0
}

func (g *gateway) Generate(ctx context.Context, prompt string) (string, error) {
	if !g.Available() {
		metrics.LLMNoResult.Inc()
		return "", ErrNoResult
	}

	var lastErr error
	for _, model := range g.opts.Models {
		attempts := 1 + g.opts.RateLimitRetries
		for attempt := 0; attempt < attempts; attempt++ {
			log.Debugf("[LLMGateway] 尝试模型 %s (第 %d 次)", model, attempt+1)
			text, err := g.call(ctx, model, prompt)
			if err == nil {
				return text, nil
			}
			lastErr = err

			var rl *RateLimitError
			if !errors.As(err, &rl) {
				log.Warnf("[LLMGateway] 模型 %s 调用失败，切换下一个模型: %v", model, err)
				break
			}

			delay := g.opts.DefaultRetryDelay
			if rl.RetryDelay > 0 {
				delay = rl.RetryDelay
			}
			log.Warnf("[LLMGateway] 模型 %s 触发限流，等待 %s", model, delay)
			if sleepErr := g.opts.Sleep(ctx, delay); sleepErr != nil {
				metrics.LLMNoResult.Inc()
				return "", fmt.Errorf("%w: %v", ErrNoResult, sleepErr)
			}
		}
		if ctx.Err() != nil {
			break
		}
	}

	metrics.LLMNoResult.Inc()
	log.Warnf("[LLMGateway] 所有模型均失败: %v", lastErr)
	if lastErr == nil {
		return "", ErrNoResult
	}
	return "", fmt.Errorf("%w: %v", ErrNoResult, lastErr)
}

type callResult struct {
	text string
	err  error
}

// call 以超时竞争的方式执行一次模型调用，超时后不会等待提供方返回。
func (g *gateway) call(ctx context.Context, model, prompt string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, g.opts.Timeout)
	defer cancel()

	start := time.Now()
	done := make(chan callResult, 1)
	go func() {
		text, err := g.provider.Generate(callCtx, model, prompt)
		done <- callResult{text: text, err: err}
	}()

	var res callResult
	select {
	case res = <-done:
	case <-callCtx.Done():
		res.err = fmt.Errorf("model %s: %w", model, callCtx.Err())
	}

	status := "ok"
	var rl *RateLimitError
	switch {
	case res.err == nil && strings.TrimSpace(res.text) == "":
		res.err = fmt.Errorf("model %s: %w", model, ErrEmptyResponse)
		status = "error"
	case errors.As(res.err, &rl):
		status = "rate_limited"
	case errors.Is(res.err, context.DeadlineExceeded):
		status = "timeout"
	case res.err != nil:
		status = "error"
	}
	metrics.LLMLatency.WithLabelValues(model, status).Observe(time.Since(start).Seconds())
	return res.text, res.err
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
