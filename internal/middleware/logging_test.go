package middleware

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestLogger())
	r.POST("/echo", func(c *gin.Context) {
		body, _ := io.ReadAll(c.Request.Body)
		c.String(http.StatusOK, "%s|%s", c.GetString("requestID"), body)
	})
	return r
}

func TestRequestLoggerKeepsBodyAndAssignsID(t *testing.T) {
	w := httptest.NewRecorder()
	newEngine().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader("hello")))

	require.Equal(t, http.StatusOK, w.Code)
	id := w.Header().Get(RequestIDHeader)
	assert.NotEmpty(t, id)
	assert.Equal(t, id+"|hello", w.Body.String())
}

func TestRequestLoggerReusesIncomingID(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(""))
	req.Header.Set(RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	newEngine().ServeHTTP(w, req)

	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
	assert.True(t, strings.HasPrefix(w.Body.String(), "abc-123|"))
}

func TestBodyLogWriterCapsCapture(t *testing.T) {
	gin.SetMode(gin.TestMode)
	large := strings.Repeat("x", maxLoggedBody*2)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	blw := &bodyLogWriter{body: bytes.NewBufferString(""), ResponseWriter: c.Writer}

	n, err := blw.Write([]byte(large))
	require.NoError(t, err)
	assert.Equal(t, len(large), n)
	assert.Equal(t, large, w.Body.String())
	assert.Equal(t, maxLoggedBody, blw.body.Len())

	assert.Len(t, truncate(large), maxLoggedBody+len("...(truncated)"))
	assert.Equal(t, "short", truncate("short"))
}
