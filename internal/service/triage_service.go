package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"curago-go/internal/config"
	"curago-go/internal/model"
	"curago-go/pkg/log"
	"curago-go/pkg/tasks"

	"github.com/google/uuid"
)

const (
	introMessage = "I'm CuraGo's medical assistant trained on medical literature and best practices. " +
		"I can provide health information, analyze symptoms, and help you find appropriate specialists."
	emergencyNotice = "Some of the symptoms you described may indicate a medical emergency. " +
		"Please contact your local emergency number or go to the nearest emergency department immediately."
	publishTimeout = 3 * time.Second
)

var (
	// 按词边界匹配，避免 "nose" 之类的词被识别为 "no"
	noMoreSymptomsRe = regexp.MustCompile(`(?i)\b(no( more)?( other)?( additional)? symptoms?|that'?s all|nothing else|that is it|that'?s it|no|nope|done|i'?m done|finished|complete)\b`)
	doctorRequestRe  = regexp.MustCompile(`(?i)\b(doctors?|specialists?|physicians?|recommend|who should i see)\b`)
)

// TurnRequest 是一轮分诊对话的输入，State 由客户端从上一轮响应中回传。
type TurnRequest struct {
	Message string
	History []model.ChatMessage
	State   model.ConversationState
}

// TurnResult 是一轮分诊对话的输出。
type TurnResult struct {
	Response                  string
	History                   []model.ChatMessage
	State                     model.ConversationState
	RecommendedDoctors        []model.DoctorRecommendation
	RelevantSpecialties       []string
	ShowDoctorRecommendations bool
	MedicalReport             string
	Source                    string
}

// Degraded 表示本轮回复由本地兜底生成。
func (r TurnResult) Degraded() bool {
	return r.Source == ReplySourceFallback
}

// TriageService 驱动多轮症状收集、报告生成与自由问答。
type TriageService interface {
	HandleTurn(ctx context.Context, req TurnRequest) TurnResult
}

type triageService struct {
	detector  SymptomDetector
	analysis  AnalysisService
	chat      ChatService
	publisher ReportPublisher
	cfg       config.TriageConfig
}

// NewTriageService 创建一个新的 TriageService 实例。
func NewTriageService(detector SymptomDetector, analysis AnalysisService, chat ChatService, publisher ReportPublisher, cfg config.TriageConfig) TriageService {
	if cfg.ChatTopN <= 0 {
		cfg.ChatTopN = 3
	}
	if cfg.ReportTopN <= 0 {
		cfg.ReportTopN = 5
	}
	if publisher == nil {
		publisher = NewNoopReportPublisher()
	}
	return &triageService{detector: detector, analysis: analysis, chat: chat, publisher: publisher, cfg: cfg}
}

// resolveStage 在客户端没有回传阶段时根据旧字段推导。
func resolveStage(state model.ConversationState) model.Stage {
	if state.Stage.Valid() {
		if state.Stage == model.StageReporting {
			return model.StageComplete
		}
		return state.Stage
	}
	switch {
	case state.RecommendDoctors:
		return model.StageComplete
	case state.CollectingSymptoms || len(state.DetectedSymptoms) > 0:
		return model.StageCollecting
	}
	return model.StageInitial
}

func (s *triageService) HandleTurn(ctx context.Context, req TurnRequest) TurnResult {
	state := req.State
	state.DetectedSymptoms = append([]string(nil), state.DetectedSymptoms...)
	if state.DetectedSymptoms == nil {
		state.DetectedSymptoms = []string{}
	}
	state.Stage = resolveStage(state)

	history := make([]model.ChatMessage, 0, len(req.History)+3)
	if len(req.History) == 0 {
		history = append(history, model.NewChatMessage(model.RoleModel, introMessage))
	} else {
		history = append(history, req.History...)
	}

	message := strings.TrimSpace(req.Message)
	noMore := state.Stage == model.StageCollecting && noMoreSymptomsRe.MatchString(message)

	// 每一轮都做症状识别，紧急标志在任意阶段都可能被置位
	detection := s.detector.Detect(ctx, message)
	newEmergency := false
	if IsEmergency(detection.DetectedSymptoms) && !state.EmergencyDetected {
		state.EmergencyDetected = true
		newEmergency = true
		log.Warnf("[TriageService] 检测到危急症状: %v", detection.DetectedSymptoms)
	}

	result := TurnResult{Source: ReplySourceAI}

	switch state.Stage {
	case model.StageInitial, model.StageCollecting:
		switch {
		case noMore && len(state.DetectedSymptoms) > 0:
			s.report(ctx, &state, &result)
		case detection.ContainsSymptoms && !noMore:
			s.collect(&state, &result, detection.DetectedSymptoms)
		case doctorRequestRe.MatchString(message) && len(state.DetectedSymptoms) > 0:
			s.report(ctx, &state, &result)
		default:
			s.freeChat(ctx, message, history, &result)
		}
	default:
		if doctorRequestRe.MatchString(message) && len(state.DetectedSymptoms) > 0 {
			s.relist(ctx, &state, &result)
		} else {
			s.freeChat(ctx, message, history, &result)
		}
	}

	if state.EmergencyDetected {
		state.UrgencyLevel = model.UrgencyUrgent
	}
	if newEmergency {
		result.Response = emergencyNotice + "\n\n" + result.Response
	}

	history = append(history,
		model.NewChatMessage(model.RoleUser, req.Message),
		model.NewChatMessage(model.RoleModel, result.Response),
	)
	result.History = history
	result.State = state
	if result.RelevantSpecialties == nil {
		result.RelevantSpecialties = []string{}
	}
	if result.RecommendedDoctors == nil {
		result.RecommendedDoctors = []model.DoctorRecommendation{}
	}
	return result
}

func (s *triageService) collect(state *model.ConversationState, result *TurnResult, detected []string) {
	firstMention := state.Stage == model.StageInitial
	added := state.AddSymptoms(detected)
	state.Stage = model.StageCollecting
	state.CollectingSymptoms = true
	if u := HeuristicUrgency(state.DetectedSymptoms); u.Rank() > state.UrgencyLevel.Rank() {
		state.UrgencyLevel = u
	}

	switch {
	case firstMention:
		result.Response = fmt.Sprintf("I notice you mentioned %s. Thanks for sharing that. Do you have any other symptoms you'd like to tell me about?",
			strings.Join(detected, ", "))
	case len(added) > 0:
		result.Response = fmt.Sprintf("I've noted these additional symptoms: %s. Do you have any other symptoms you'd like to tell me about?",
			strings.Join(added, ", "))
	default:
		result.Response = fmt.Sprintf("I've already noted %s. Do you have any other symptoms you'd like to tell me about?",
			strings.Join(detected, ", "))
	}
	log.Infof("[TriageService] 当前症状列表: %v", state.DetectedSymptoms)
}

// report 进入 reporting 阶段生成报告，随后立即进入 complete。
func (s *triageService) report(ctx context.Context, state *model.ConversationState, result *TurnResult) {
	state.Stage = model.StageReporting
	analysis, err := s.analysis.Analyze(ctx, state.DetectedSymptoms, s.cfg.ReportTopN)
	if err != nil {
		log.Errorf("[TriageService] 生成报告失败: %v", err)
		result.Response = "I couldn't find any symptoms to summarize. Could you describe how you're feeling?"
		state.Stage = model.StageInitial
		return
	}
	if state.EmergencyDetected {
		analysis.AIAnalysis.UrgencyLevel = model.UrgencyUrgent
	}

	report := BuildMedicalReport(state.DetectedSymptoms, analysis.AIAnalysis)
	result.MedicalReport = report
	result.RelevantSpecialties = analysis.RelevantSpecialties
	result.RecommendedDoctors = analysis.RecommendedDoctors
	result.ShowDoctorRecommendations = true
	result.Response = fmt.Sprintf("Thank you for sharing your symptoms. Here's a summary of your condition:\n\n%s\n\n"+
		"Based on your symptoms (%s), I recommend consulting with a %s. "+
		"I'm displaying available specialists that you can book an appointment with right away.",
		report, strings.Join(state.DetectedSymptoms, ", "), strings.Join(analysis.RelevantSpecialties, ", "))

	state.CollectingSymptoms = false
	state.RecommendDoctors = true
	state.UrgencyLevel = analysis.AIAnalysis.UrgencyLevel
	state.Stage = model.StageComplete

	s.publish(ctx, *state, analysis, report)
}

// relist 在对话完成后再次展示推荐医生，不改变阶段。
func (s *triageService) relist(ctx context.Context, state *model.ConversationState, result *TurnResult) {
	analysis, err := s.analysis.Analyze(ctx, state.DetectedSymptoms, s.cfg.ChatTopN)
	if err != nil {
		log.Errorf("[TriageService] 重新推荐医生失败: %v", err)
		return
	}
	result.RelevantSpecialties = analysis.RelevantSpecialties
	result.RecommendedDoctors = analysis.RecommendedDoctors
	result.ShowDoctorRecommendations = true
	state.RecommendDoctors = true
	result.Response = fmt.Sprintf("Based on your symptoms (%s), I recommend consulting with a %s. Here are some specialists available for booking.",
		strings.Join(state.DetectedSymptoms, ", "), strings.Join(analysis.RelevantSpecialties, " or "))
}

func (s *triageService) freeChat(ctx context.Context, message string, history []model.ChatMessage, result *TurnResult) {
	reply := s.chat.Reply(ctx, message, history)
	result.Response = reply.Text
	result.Source = reply.Source
}

func (s *triageService) publish(ctx context.Context, state model.ConversationState, analysis model.SymptomAnalysis, report string) {
	doctorIDs := make([]string, len(analysis.RecommendedDoctors))
	for i, d := range analysis.RecommendedDoctors {
		doctorIDs[i] = d.ID
	}
	task := tasks.TriageReportTask{
		ReportID:            uuid.NewString(),
		Symptoms:            state.DetectedSymptoms,
		RelevantSpecialties: analysis.RelevantSpecialties,
		PossibleConditions:  analysis.AIAnalysis.PossibleConditions,
		UrgencyLevel:        string(analysis.AIAnalysis.UrgencyLevel),
		EmergencyDetected:   state.EmergencyDetected,
		DoctorIDs:           doctorIDs,
		AnalysisSource:      analysis.AIAnalysis.Source,
		Report:              report,
		CreatedAt:           time.Now().UTC(),
	}

	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if err := s.publisher.Publish(pubCtx, task); err != nil {
		log.Errorf("[TriageService] 发布分诊报告事件失败: report_id=%s, err=%v", task.ReportID, err)
		return
	}
	log.Infof("[TriageService] 分诊报告事件已发布: report_id=%s", task.ReportID)
}
