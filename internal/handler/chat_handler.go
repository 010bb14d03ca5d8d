// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"net/http"
	"strings"

	"curago-go/internal/model"
	"curago-go/internal/service"
	"curago-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// ChatHandler 负责处理多轮分诊对话。
type ChatHandler struct {
	triageService service.TriageService
}

// NewChatHandler 创建一个新的 ChatHandler。
func NewChatHandler(triageService service.TriageService) *ChatHandler {
	return &ChatHandler{triageService: triageService}
}

// ChatRequest 定义了 /chat 的请求体，对话状态由客户端回传。
type ChatRequest struct {
	Message            string              `json:"message"`
	ChatHistory        []model.ChatMessage `json:"chatHistory"`
	DetectedSymptoms   []string            `json:"detectedSymptoms"`
	CollectingSymptoms bool                `json:"collectingSymptoms"`
	RecommendDoctors   bool                `json:"recommendDoctors"`
	ConversationStage  model.Stage         `json:"conversationStage"`
	EmergencyDetected  bool                `json:"emergencyDetected"`
	UrgencyLevel       model.UrgencyLevel  `json:"urgencyLevel"`
}

// ChatResponse 是 /chat 的响应体。
type ChatResponse struct {
	Response    string              `json:"response"`
	ChatHistory []model.ChatMessage `json:"chatHistory"`
	model.ConversationState
	RecommendedDoctors        []model.DoctorRecommendation `json:"recommendedDoctors"`
	RelevantSpecialties       []string                     `json:"relevantSpecialties"`
	ShowDoctorRecommendations bool                         `json:"showDoctorRecommendations"`
	MedicalReport             string                       `json:"medicalReport,omitempty"`
	Source                    string                       `json:"source"`
}

// Chat 处理一轮对话。模型不可用且只能给出兜底回复时返回 503，但仍然带上完整的对话负载。
func (h *ChatHandler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnf("[ChatHandler] 无效的请求体: %v", err)
		invalidRequest(c, "Message is required")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		invalidRequest(c, "Message is required")
		return
	}

	result := h.triageService.HandleTurn(c.Request.Context(), service.TurnRequest{
		Message: req.Message,
		History: req.ChatHistory,
		State: model.ConversationState{
			DetectedSymptoms:   req.DetectedSymptoms,
			CollectingSymptoms: req.CollectingSymptoms,
			RecommendDoctors:   req.RecommendDoctors,
			UrgencyLevel:       req.UrgencyLevel,
			EmergencyDetected:  req.EmergencyDetected,
			Stage:              req.ConversationStage,
		},
	})

	status := http.StatusOK
	if result.Degraded() {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, ChatResponse{
		Response:                  result.Response,
		ChatHistory:               result.History,
		ConversationState:         result.State,
		RecommendedDoctors:        result.RecommendedDoctors,
		RelevantSpecialties:       result.RelevantSpecialties,
		ShowDoctorRecommendations: result.ShowDoctorRecommendations,
		MedicalReport:             result.MedicalReport,
		Source:                    result.Source,
	})
}

// invalidRequest 返回统一格式的 400 响应。
func invalidRequest(c *gin.Context, details string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "Invalid request",
		"details": details,
	})
}
