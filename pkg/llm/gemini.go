package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"google.golang.org/genai"
)

const retryInfoType = "type.googleapis.com/google.rpc.RetryInfo"

type geminiProvider struct {
	client *genai.Client
}

// NewGeminiProvider 基于 Gemini API Key 创建提供方。
func NewGeminiProvider(ctx context.Context, apiKey string) (Provider, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key is empty")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return &geminiProvider{client: client}, nil
}

func (p *geminiProvider) Generate(ctx context.Context, model, prompt string) (string, error) {
	res, err := p.client.Models.GenerateContent(ctx, model, genai.Text(prompt), nil)
	if err != nil {
		return "", classifyGeminiError(model, err)
	}
	return res.Text(), nil
}

// classifyGeminiError 将 429 转换为 *RateLimitError，并解析 RetryInfo 中的 retryDelay。
func classifyGeminiError(model string, err error) error {
	var code int
	var details []map[string]any

	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr):
		code, details = apiErr.Code, apiErr.Details
	case errors.As(err, &apiErrPtr) && apiErrPtr != nil:
		code, details = apiErrPtr.Code, apiErrPtr.Details
	default:
		return fmt.Errorf("gemini %s: %w", model, err)
	}

	if code == http.StatusTooManyRequests {
		return &RateLimitError{Model: model, RetryDelay: retryDelayFromDetails(details), Err: err}
	}
	return fmt.Errorf("gemini %s (status %d): %w", model, code, err)
}

// retryDelayFromDetails 读取形如 "21s" 的建议等待时间，无法解析时返回 0。
func retryDelayFromDetails(details []map[string]any) time.Duration {
	for _, d := range details {
		if t, _ := d["@type"].(string); t != retryInfoType {
			continue
		}
		raw, ok := d["retryDelay"].(string)
		if !ok {
			continue
		}
		raw = strings.TrimSpace(raw)
		if dur, err := time.ParseDuration(raw); err == nil && dur > 0 {
			return dur
		}
		// 兼容不带单位的秒数
		if secs, err := strconv.ParseFloat(strings.TrimSuffix(raw, "s"), 64); err == nil && secs > 0 {
			return time.Duration(secs * float64(time.Second))
		}
	}
	return 0
}
