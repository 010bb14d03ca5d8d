package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"curago-go/internal/repository"
	"curago-go/pkg/llm"
	"curago-go/pkg/log"
	"curago-go/pkg/metrics"

	"golang.org/x/sync/errgroup"
)

const (
	specialtyCachePrefix = "specialty:"
	maxSpecialties       = 3
)

// SpecialtyClassifier 将症状映射为有序且非空的专科列表。
type SpecialtyClassifier interface {
	Classify(ctx context.Context, symptom string) []string
	// ClassifyAll 并行分类每个症状，并按输入顺序合并结果。
	ClassifyAll(ctx context.Context, symptoms []string) []string
}

type specialtyClassifier struct {
	llmClient llm.Client
	cache     repository.ResponseCache
	lookup    *SpecialtyLookup
	known     []string
}

// NewSpecialtyClassifier 创建一个新的 SpecialtyClassifier 实例。
func NewSpecialtyClassifier(llmClient llm.Client, cache repository.ResponseCache, lookup *SpecialtyLookup) SpecialtyClassifier {
	return &specialtyClassifier{
		llmClient: llmClient,
		cache:     cache,
		lookup:    lookup,
		known:     KnownSpecialties,
	}
}

func (c *specialtyClassifier) Classify(ctx context.Context, symptom string) []string {
	key := specialtyCachePrefix + repository.NormalizeKey(symptom)
	if cached, ok := c.fromCache(ctx, key); ok {
		log.Debugf("[SpecialtyClassifier] 命中缓存: %s", symptom)
		return cached
	}

	specialties := c.derive(ctx, symptom)
	if len(specialties) == 0 {
		metrics.Fallback("classifier", "default")
		specialties = []string{DefaultSpecialty}
	}

	if raw, err := json.Marshal(specialties); err == nil {
		if err := c.cache.Set(ctx, key, string(raw)); err != nil {
			log.Warnf("[SpecialtyClassifier] 写入缓存失败: %v", err)
		}
	}
	log.Infof("[SpecialtyClassifier] %s -> %s", symptom, strings.Join(specialties, ", "))
	return specialties
}

func (c *specialtyClassifier) fromCache(ctx context.Context, key string) ([]string, bool) {
	raw, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		log.Warnf("[SpecialtyClassifier] 读取缓存失败，按未命中处理: %v", err)
	}
	metrics.CacheLookup("specialty", ok && err == nil)
	if err != nil || !ok {
		return nil, false
	}
	var specialties []string
	if err := json.Unmarshal([]byte(raw), &specialties); err != nil || len(specialties) == 0 {
		return nil, false
	}
	return specialties, true
}

// derive 依次尝试：模型结构化输出、模型文本中的已知专科、本地映射表。
func (c *specialtyClassifier) derive(ctx context.Context, symptom string) []string {
	text, err := c.llmClient.Generate(ctx, classificationPrompt(symptom))
	if err != nil {
		log.Warnf("[SpecialtyClassifier] 模型不可用，使用本地映射表: %v", err)
		metrics.Fallback("classifier", "lookup")
		return c.lookup.LookupFuzzy(symptom)
	}

	parsed, perr := llm.ParseStructured[[]string](text, llm.ShapeArray)
	if perr == nil {
		if cleaned := cleanSpecialties(parsed); len(cleaned) > 0 {
			return cleaned
		}
	}

	log.Warnf("[SpecialtyClassifier] 无法解析模型输出，扫描已知专科: %q", text)
	metrics.Fallback("classifier", "text_scan")
	return extractKnownSpecialties(text, c.known)
}

func classificationPrompt(symptom string) string {
	return fmt.Sprintf(`As a medical AI assistant, determine the most appropriate medical specialties for a patient with the following symptom: "%s".
Return your answer as a valid JSON array of strings containing only the specialty names.
Only include the most relevant medical specialties (maximum %d).
Choose from these common specialties: %s.
Example format: ["Cardiologist", "Pulmonologist", "General Physician"]`,
		symptom, maxSpecialties, strings.Join(KnownSpecialties, ", "))
}

func cleanSpecialties(values []string) []string {
	var out []string
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		out = appendUnique(out, v)
		if len(out) == maxSpecialties {
			break
		}
	}
	return out
}

// extractKnownSpecialties 按词表声明顺序收集文本中出现的专科名。
func extractKnownSpecialties(text string, known []string) []string {
	lower := strings.ToLower(text)
	var out []string
	for _, s := range known {
		if strings.Contains(lower, strings.ToLower(s)) {
			out = append(out, s)
		}
	}
	return out
}

func (c *specialtyClassifier) ClassifyAll(ctx context.Context, symptoms []string) []string {
	results := make([][]string, len(symptoms))
	g, gctx := errgroup.WithContext(ctx)
	for i, symptom := range symptoms {
		g.Go(func() error {
			results[i] = c.Classify(gctx, symptom)
			return nil
		})
	}
	_ = g.Wait()

	var union []string
	for _, r := range results {
		union = appendUnique(union, r...)
	}
	if len(union) == 0 {
		union = []string{DefaultSpecialty}
	}
	return union
}
