package handler

import (
	"errors"
	"net/http"
	"strings"

	"curago-go/internal/service"
	"curago-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// SymptomHandler 负责症状分析与症状识别接口。
type SymptomHandler struct {
	analysisService service.AnalysisService
	detector        service.SymptomDetector
}

// NewSymptomHandler 创建一个新的 SymptomHandler 实例。
func NewSymptomHandler(analysisService service.AnalysisService, detector service.SymptomDetector) *SymptomHandler {
	return &SymptomHandler{analysisService: analysisService, detector: detector}
}

// SymptomAnalysisRequest 定义了症状分析接口的请求体，Limit 为 0 表示不截断。
type SymptomAnalysisRequest struct {
	Symptoms []string `json:"symptoms"`
	Limit    int      `json:"limit"`
}

// SymptomAnalysis 返回相关科室、推荐医生以及可能疾病和紧急程度。
func (h *SymptomHandler) SymptomAnalysis(c *gin.Context) {
	h.analyze(c, false)
}

// AISymptomAnalysis 在 SymptomAnalysis 的基础上返回完整的 aiAnalysis 对象。
func (h *SymptomHandler) AISymptomAnalysis(c *gin.Context) {
	h.analyze(c, true)
}

func (h *SymptomHandler) analyze(c *gin.Context, withAnalysis bool) {
	var req SymptomAnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnf("[SymptomHandler] 无效的请求体: %v", err)
		invalidRequest(c, "Symptoms array is required")
		return
	}
	if req.Limit < 0 {
		invalidRequest(c, "Limit must not be negative")
		return
	}

	result, err := h.analysisService.Analyze(c.Request.Context(), req.Symptoms, req.Limit)
	if err != nil {
		if errors.Is(err, service.ErrNoSymptoms) {
			invalidRequest(c, "Symptoms array is required")
			return
		}
		log.Errorf("[SymptomHandler] 症状分析失败: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error", "message": "Failed to analyze symptoms"})
		return
	}

	body := gin.H{
		"symptoms":            result.Symptoms,
		"relevantSpecialties": result.RelevantSpecialties,
		"recommendedDoctors":  result.RecommendedDoctors,
		"possibleConditions":  result.AIAnalysis.PossibleConditions,
		"urgencyLevel":        result.AIAnalysis.UrgencyLevel,
	}
	if withAnalysis {
		body["aiAnalysis"] = result.AIAnalysis
	}
	c.JSON(http.StatusOK, body)
}

// DetectSymptomsRequest 定义了症状识别接口的请求体。
type DetectSymptomsRequest struct {
	Message string `json:"message"`
}

// DetectSymptoms 识别一段文本中提到的症状。
func (h *SymptomHandler) DetectSymptoms(c *gin.Context) {
	var req DetectSymptomsRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		invalidRequest(c, "Message is required")
		return
	}
	c.JSON(http.StatusOK, h.detector.Detect(c.Request.Context(), req.Message))
}
