package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"curago-go/internal/model"
	"curago-go/pkg/llm"
	"curago-go/pkg/tasks"
)

// fakeLLM 以 GenerateFn 决定每次调用的结果，并记录所有提示词。
type fakeLLM struct {
	mu         sync.Mutex
	prompts    []string
	available  bool
	GenerateFn func(prompt string) (string, error)
}

func newFakeLLM(fn func(prompt string) (string, error)) *fakeLLM {
	return &fakeLLM{available: true, GenerateFn: fn}
}

// downLLM 模拟没有 API Key 或所有模型都失败的网关。
func downLLM() *fakeLLM {
	return &fakeLLM{available: false, GenerateFn: func(string) (string, error) { return "", llm.ErrNoResult }}
}

func (f *fakeLLM) Generate(_ context.Context, prompt string) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()
	return f.GenerateFn(prompt)
}

func (f *fakeLLM) Available() bool { return f.available }

func (f *fakeLLM) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

func (f *fakeLLM) callsContaining(substr string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, p := range f.prompts {
		if strings.Contains(p, substr) {
			n++
		}
	}
	return n
}

// failingCache 的读写总是返回错误。
type failingCache struct{}

var errCacheDown = errors.New("cache down")

func (failingCache) Get(context.Context, string) (string, bool, error) { return "", false, errCacheDown }
func (failingCache) Set(context.Context, string, string) error         { return errCacheDown }

type fakeDetector struct {
	DetectFn func(message string) model.DetectionResult
}

func (f fakeDetector) Detect(_ context.Context, message string) model.DetectionResult {
	return f.DetectFn(message)
}

type recordingPublisher struct {
	mu    sync.Mutex
	tasks []tasks.TriageReportTask
	err   error
}

func (p *recordingPublisher) Publish(_ context.Context, task tasks.TriageReportTask) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tasks = append(p.tasks, task)
	return p.err
}
