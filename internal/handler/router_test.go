package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"curago-go/internal/config"
	"curago-go/internal/middleware"
	"curago-go/internal/repository"
	"curago-go/internal/service"
	"curago-go/pkg/llm"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// offlineLLM 模拟没有配置 API Key 的网关。
type offlineLLM struct{}

func (offlineLLM) Generate(context.Context, string) (string, error) { return "", llm.ErrNoResult }
func (offlineLLM) Available() bool                                  { return false }

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	client := offlineLLM{}
	cache := repository.NewMemoryResponseCache()
	doctorRepo := repository.NewDoctorRepository(repository.DefaultRoster())
	classifier := service.NewSpecialtyClassifier(client, cache, service.DefaultSpecialtyLookup())
	analysis := service.NewAnalysisService(classifier, doctorRepo, client)
	detector := service.NewSymptomDetector(client)
	chat := service.NewChatService(client, cache, "")
	triage := service.NewTriageService(detector, analysis, chat, nil, config.TriageConfig{ChatTopN: 3, ReportTopN: 5})

	return NewRouter(Handlers{
		Symptom: NewSymptomHandler(analysis, detector),
		Chat:    NewChatHandler(triage),
		Doctor:  NewDoctorHandler(doctorRepo),
		System:  NewSystemHandler("test", false),
	})
}

func do(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealth(t *testing.T) {
	w := do(newTestRouter(t), http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "test", body["environment"])
	assert.Equal(t, false, body["apiKeyConfigured"])
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
}

func TestRootListsEndpoints(t *testing.T) {
	w := do(newTestRouter(t), http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, decode(t, w)["endpoints"])
}

func TestSymptomAnalysisValidation(t *testing.T) {
	r := newTestRouter(t)
	for _, body := range []any{nil, map[string]any{}, map[string]any{"symptoms": []string{}}, map[string]any{"symptoms": []string{"  "}}} {
		w := do(r, http.MethodPost, "/api/symptom-analysis", body)
		require.Equal(t, http.StatusBadRequest, w.Code, "%v", body)
		got := decode(t, w)
		assert.Equal(t, "Invalid request", got["error"])
		assert.Equal(t, "Symptoms array is required", got["details"])
	}
}

func TestSymptomAnalysis(t *testing.T) {
	r := newTestRouter(t)

	w := do(r, http.MethodPost, "/api/symptom-analysis", map[string]any{"symptoms": []string{"fever", "cough"}})
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.NotEmpty(t, body["relevantSpecialties"])
	assert.NotEmpty(t, body["recommendedDoctors"])
	assert.Equal(t, "moderate", body["urgencyLevel"])
	assert.NotContains(t, body, "aiAnalysis")

	limited := decode(t, do(r, http.MethodPost, "/api/symptom-analysis", map[string]any{"symptoms": []string{"fever"}, "limit": 2}))
	assert.Len(t, limited["recommendedDoctors"], 2)
}

func TestAISymptomAnalysis(t *testing.T) {
	w := do(newTestRouter(t), http.MethodPost, "/api/ai-symptom-analysis", map[string]any{"symptoms": []string{"chest pain"}})
	require.Equal(t, http.StatusOK, w.Code)

	analysis, ok := decode(t, w)["aiAnalysis"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "urgent", analysis["urgencyLevel"])
	assert.Equal(t, "heuristic", analysis["source"])
	assert.NotEmpty(t, analysis["possibleConditions"])
}

func TestDetectSymptoms(t *testing.T) {
	r := newTestRouter(t)

	w := do(r, http.MethodPost, "/api/detect-symptoms", map[string]any{"message": "I have a headache"})
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["containsSymptoms"])
	assert.Equal(t, []any{"headache"}, body["detectedSymptoms"])

	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/api/detect-symptoms", map[string]any{}).Code)
}

func TestChatValidation(t *testing.T) {
	w := do(newTestRouter(t), http.MethodPost, "/chat", map[string]any{"message": "  "})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Message is required", decode(t, w)["details"])
}

func TestChatCollectsSymptoms(t *testing.T) {
	w := do(newTestRouter(t), http.MethodPost, "/chat", map[string]any{"message": "I have a fever"})
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, []any{"fever"}, body["detectedSymptoms"])
	assert.Equal(t, true, body["collectingSymptoms"])
	assert.Equal(t, "collecting-symptoms", body["conversationStage"])
	assert.Equal(t, false, body["showDoctorRecommendations"])
	assert.Len(t, body["chatHistory"], 3)
	assert.NotContains(t, body, "medicalReport")
}

func TestChatReportsOnNoMoreSymptoms(t *testing.T) {
	w := do(newTestRouter(t), http.MethodPost, "/chat", map[string]any{
		"message":            "that's all",
		"detectedSymptoms":   []string{"fever", "cough"},
		"collectingSymptoms": true,
	})
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, "complete", body["conversationStage"])
	assert.Equal(t, true, body["recommendDoctors"])
	assert.Equal(t, true, body["showDoctorRecommendations"])
	assert.NotEmpty(t, body["recommendedDoctors"])
	assert.Contains(t, body["medicalReport"], "fever, cough")
}

func TestChatDegradedReturns503(t *testing.T) {
	w := do(newTestRouter(t), http.MethodPost, "/chat", map[string]any{"message": "hello there"})
	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	body := decode(t, w)
	assert.Equal(t, "fallback", body["source"])
	assert.Equal(t, service.FallbackApology, body["response"])
	assert.Len(t, body["chatHistory"], 3)
}

func TestDoctors(t *testing.T) {
	r := newTestRouter(t)

	w := do(r, http.MethodGet, "/api/doctors?specialty=cardiologist", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	doctors, ok := body["doctors"].([]any)
	require.True(t, ok)
	require.NotEmpty(t, doctors)
	for _, d := range doctors {
		assert.Equal(t, "Cardiologist", d.(map[string]any)["specialty"])
	}

	all := decode(t, do(r, http.MethodGet, "/api/doctors", nil))
	assert.EqualValues(t, len(repository.DefaultRoster()), all["total"])

	one := do(r, http.MethodGet, "/api/doctors/1", nil)
	require.Equal(t, http.StatusOK, one.Code)
	assert.Equal(t, "Dr. Sarah Johnson", decode(t, one)["name"])

	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/api/doctors/999", nil).Code)
}

func TestRecoveryReturns500(t *testing.T) {
	r := newTestRouter(t)
	r.GET("/boom", func(*gin.Context) { panic("kaboom") })

	w := do(r, http.MethodGet, "/boom", nil)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Internal server error", body["error"])
	assert.NotContains(t, w.Body.String(), "kaboom")
}

func TestMetricsEndpoint(t *testing.T) {
	w := do(newTestRouter(t), http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
