package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SystemHandler 提供健康检查与接口发现。
type SystemHandler struct {
	environment      string
	apiKeyConfigured bool
}

// NewSystemHandler 创建一个新的 SystemHandler 实例。
func NewSystemHandler(environment string, apiKeyConfigured bool) *SystemHandler {
	return &SystemHandler{environment: environment, apiKeyConfigured: apiKeyConfigured}
}

// Health 返回服务状态，不暴露 API Key 本身。
func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":           "ok",
		"environment":      h.environment,
		"apiKeyConfigured": h.apiKeyConfigured,
	})
}

var endpoints = []gin.H{
	{"method": http.MethodPost, "path": "/api/symptom-analysis", "description": "Rank doctors and specialties for a list of symptoms"},
	{"method": http.MethodPost, "path": "/api/ai-symptom-analysis", "description": "Symptom analysis with possible conditions, urgency and watch list"},
	{"method": http.MethodPost, "path": "/api/detect-symptoms", "description": "Detect symptoms mentioned in a message"},
	{"method": http.MethodPost, "path": "/chat", "description": "Multi-turn triage conversation"},
	{"method": http.MethodGet, "path": "/api/doctors", "description": "List doctors, filter by specialty, mode or language"},
	{"method": http.MethodGet, "path": "/api/doctors/:id", "description": "Doctor profile"},
	{"method": http.MethodGet, "path": "/health", "description": "Health check"},
	{"method": http.MethodGet, "path": "/metrics", "description": "Prometheus metrics"},
}

// Root 列出可用的接口。
func (h *SystemHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":      "CuraGo API",
		"endpoints": endpoints,
	})
}
