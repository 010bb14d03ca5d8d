package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"curago-go/internal/model"
	"curago-go/internal/repository"
	"curago-go/pkg/llm"
	"curago-go/pkg/log"
	"curago-go/pkg/metrics"

	"golang.org/x/sync/errgroup"
)

// ErrNoSymptoms 表示分析请求中没有任何有效症状。
var ErrNoSymptoms = errors.New("symptoms array is required")

const maxConditions = 5

// AnalysisService 汇总专科分类、医生排序与结构化分析。
type AnalysisService interface {
	Analyze(ctx context.Context, symptoms []string, limit int) (model.SymptomAnalysis, error)
}

type analysisService struct {
	classifier SpecialtyClassifier
	doctorRepo repository.DoctorRepository
	llmClient  llm.Client
}

// NewAnalysisService 创建一个新的 AnalysisService 实例。
func NewAnalysisService(classifier SpecialtyClassifier, doctorRepo repository.DoctorRepository, llmClient llm.Client) AnalysisService {
	return &analysisService{classifier: classifier, doctorRepo: doctorRepo, llmClient: llmClient}
}

func (s *analysisService) Analyze(ctx context.Context, symptoms []string, limit int) (model.SymptomAnalysis, error) {
	symptoms = compactSymptoms(symptoms)
	if len(symptoms) == 0 {
		return model.SymptomAnalysis{}, ErrNoSymptoms
	}

	var specialties []string
	var analysis model.AIAnalysis
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		specialties = s.classifier.ClassifyAll(gctx, symptoms)
		return nil
	})
	g.Go(func() error {
		analysis = s.structuredAnalysis(gctx, symptoms)
		return nil
	})
	_ = g.Wait()

	if len(specialties) == 0 {
		specialties = []string{DefaultSpecialty}
	}
	analysis.RecommendedSpecialties = specialties

	ranked := RankDoctors(specialties, s.doctorRepo.FindAll(), limit)
	log.Infof("[AnalysisService] 症状 %v -> 专科 %v, 推荐医生 %d 位, 来源 %s",
		symptoms, specialties, len(ranked), analysis.Source)

	return model.SymptomAnalysis{
		Symptoms:            symptoms,
		RelevantSpecialties: specialties,
		RecommendedDoctors:  ToRecommendations(ranked),
		AIAnalysis:          analysis,
	}, nil
}

type rawAnalysis struct {
	PossibleConditions        []string `json:"possibleConditions"`
	UrgencyLevel              string   `json:"urgencyLevel"`
	AdditionalSymptomsToWatch []string `json:"additionalSymptomsToWatch"`
}

// structuredAnalysis 调用一次模型；无法得到的字段逐个退回本地关键字表。
func (s *analysisService) structuredAnalysis(ctx context.Context, symptoms []string) model.AIAnalysis {
	text, err := s.llmClient.Generate(ctx, analysisPrompt(symptoms))
	if err != nil {
		log.Warnf("[AnalysisService] 模型不可用，使用本地分析: %v", err)
		metrics.Fallback("analysis", "no_result")
		return HeuristicAnalysis(symptoms)
	}

	raw, err := llm.ParseStructured[rawAnalysis](text, llm.ShapeObject)
	if err != nil {
		log.Warnf("[AnalysisService] 无法解析分析结果，使用本地分析: %v", err)
		metrics.Fallback("analysis", "parse")
		return HeuristicAnalysis(symptoms)
	}

	out := model.AIAnalysis{Source: model.SourceAI}

	out.PossibleConditions = cleanList(raw.PossibleConditions, maxConditions)
	if len(out.PossibleConditions) == 0 {
		out.PossibleConditions = HeuristicConditions(symptoms)
	}

	if u, ok := model.ParseUrgency(strings.ToLower(strings.TrimSpace(raw.UrgencyLevel))); ok {
		out.UrgencyLevel = u
	} else {
		out.UrgencyLevel = HeuristicUrgency(symptoms)
	}

	if raw.AdditionalSymptomsToWatch != nil {
		out.AdditionalSymptomsToWatch = cleanList(raw.AdditionalSymptomsToWatch, 0)
	} else {
		out.AdditionalSymptomsToWatch = HeuristicWatchList(symptoms)
	}
	return out
}

func analysisPrompt(symptoms []string) string {
	return fmt.Sprintf(`Analyze these symptoms: %s
Provide a short medical analysis as JSON with these fields:
- possibleConditions: array of possible conditions (max %d)
- urgencyLevel: string (non-urgent, moderate, urgent)
- additionalSymptomsToWatch: array of related symptoms to watch for

Format the response as valid JSON only.`, strings.Join(symptoms, ", "), maxConditions)
}

// cleanList 去空白去重，max > 0 时截断。
func cleanList(values []string, max int) []string {
	out := []string{}
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		out = appendUnique(out, v)
		if max > 0 && len(out) == max {
			break
		}
	}
	return out
}

// compactSymptoms 去掉空白项，保留原始写法与顺序。
func compactSymptoms(symptoms []string) []string {
	out := make([]string, 0, len(symptoms))
	for _, s := range symptoms {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
