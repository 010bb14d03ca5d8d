package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"curago-go/internal/model"
	"curago-go/pkg/llm"
	"curago-go/pkg/log"
	"curago-go/pkg/metrics"
)

// 粗筛：只有命中这些词时才进一步调用模型
var symptomPrefilterRe = regexp.MustCompile(`(?i)fever|cough|pain|ache|nausea|dizz|fatigue|sore|rash|infection|sick|throat|stomach|chest|breath|itching|joint|back|symptom|vomit|diarrh|bleed|seizure|stroke|unconscious|paraly|suicid|overdose|poison|anaphyla|allergic`)

// fallbackSymptomKeywords 是模型不可用时与文本求交集的固定症状词表。
var fallbackSymptomKeywords = []string{
	"headache", "pain", "fever", "cough", "sore throat", "nausea", "vomiting",
	"diarrhea", "rash", "fatigue", "dizziness", "shortness of breath", "chest pain",
	"abdominal pain", "joint pain", "back pain", "weakness", "runny nose", "congestion",
	"difficulty breathing", "severe bleeding", "unconscious", "stroke", "heart attack", "seizure",
	"paralysis", "suicidal thoughts", "drug overdose", "poisoning", "anaphylaxis", "coughing blood",
}

// SymptomDetector 识别一段文本中提到的症状。
type SymptomDetector interface {
	Detect(ctx context.Context, message string) model.DetectionResult
}

type symptomDetector struct {
	llmClient llm.Client
}

// NewSymptomDetector 创建一个新的 SymptomDetector 实例。
func NewSymptomDetector(llmClient llm.Client) SymptomDetector {
	return &symptomDetector{llmClient: llmClient}
}

func (d *symptomDetector) Detect(ctx context.Context, message string) model.DetectionResult {
	none := model.DetectionResult{ContainsSymptoms: false, DetectedSymptoms: []string{}}

	message = strings.TrimSpace(message)
	if message == "" || !symptomPrefilterRe.MatchString(message) {
		return none
	}

	if d.llmClient.Available() {
		symptoms, definitiveNo, ok := d.detectWithLLM(ctx, message)
		if definitiveNo {
			return none
		}
		if ok {
			return model.DetectionResult{ContainsSymptoms: true, DetectedSymptoms: symptoms}
		}
	}

	metrics.Fallback("detector", "keywords")
	symptoms := keywordSymptoms(message)
	log.Debugf("[SymptomDetector] 关键字识别结果: %v", symptoms)
	return model.DetectionResult{ContainsSymptoms: len(symptoms) > 0, DetectedSymptoms: symptoms}
}

// detectWithLLM 先做 YES/NO 判断再抽取症状；明确回答 NO 时 definitiveNo 为 true。
func (d *symptomDetector) detectWithLLM(ctx context.Context, message string) (symptoms []string, definitiveNo, ok bool) {
	answer, err := d.llmClient.Generate(ctx, fmt.Sprintf(`You are a medical AI. Examine this message: "%s"

Does it contain any explicit mentions of health symptoms (like pain, fever, cough, headache, etc.)?
Answer with ONLY "YES" or "NO" - nothing else.`, message))
	if err != nil {
		log.Warnf("[SymptomDetector] 症状判断调用失败: %v", err)
		return nil, false, false
	}

	verdict := strings.ToUpper(strings.Trim(strings.TrimSpace(answer), `."'!`))
	switch {
	case strings.HasPrefix(verdict, "NO"):
		return nil, true, false
	case !strings.HasPrefix(verdict, "YES"):
		log.Warnf("[SymptomDetector] 无法识别的判断结果: %q", answer)
		return nil, false, false
	}

	extraction, err := d.llmClient.Generate(ctx, fmt.Sprintf(`Extract all health symptoms mentioned in this message: "%s"

Return ONLY a valid JSON array of symptoms, for example:
["headache", "fever", "sore throat"]

If no specific symptoms are found, return an empty array.`, message))
	if err != nil {
		log.Warnf("[SymptomDetector] 症状抽取调用失败: %v", err)
		return nil, false, false
	}

	parsed, err := llm.ParseStructured[[]string](extraction, llm.ShapeArray)
	if err != nil {
		log.Warnf("[SymptomDetector] 无法解析症状抽取结果: %v", err)
		return nil, false, false
	}
	symptoms = normalizeSymptoms(parsed)
	return symptoms, false, len(symptoms) > 0
}

// keywordSymptoms 返回文本中出现的固定症状词，被更长命中词包含的短词会被丢弃。
func keywordSymptoms(message string) []string {
	lower := strings.ToLower(message)
	var hits []string
	for _, k := range fallbackSymptomKeywords {
		if strings.Contains(lower, k) {
			hits = append(hits, k)
		}
	}
	out := []string{}
	for _, h := range hits {
		covered := false
		for _, other := range hits {
			if other != h && strings.Contains(other, h) {
				covered = true
				break
			}
		}
		if !covered {
			out = append(out, h)
		}
	}
	return out
}

func normalizeSymptoms(values []string) []string {
	out := []string{}
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" {
			continue
		}
		out = appendUnique(out, v)
	}
	return out
}
