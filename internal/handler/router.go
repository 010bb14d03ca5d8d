package handler

import (
	"net/http"
	"time"

	"curago-go/internal/middleware"
	"curago-go/pkg/log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers 汇总路由需要的全部处理器。
type Handlers struct {
	Symptom *SymptomHandler
	Chat    *ChatHandler
	Doctor  *DoctorHandler
	System  *SystemHandler
}

// NewRouter 创建注册了全部路由的 gin 引擎。
func NewRouter(h Handlers) *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.RequestLogger(),
		gin.CustomRecovery(func(c *gin.Context, recovered any) {
			log.Errorf("[Router] 请求处理发生 panic: path=%s, err=%v", c.Request.URL.Path, recovered)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error":   "Internal server error",
				"message": "Something went wrong",
			})
		}),
		cors.New(cors.Config{
			AllowOrigins:  []string{"*"},
			AllowMethods:  []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:  []string{"Origin", "Content-Type", middleware.RequestIDHeader},
			ExposeHeaders: []string{middleware.RequestIDHeader},
			MaxAge:        12 * time.Hour,
		}),
	)

	r.GET("/", h.System.Root)
	r.GET("/health", h.System.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.POST("/chat", h.Chat.Chat)

	api := r.Group("/api")
	{
		api.POST("/symptom-analysis", h.Symptom.SymptomAnalysis)
		api.POST("/ai-symptom-analysis", h.Symptom.AISymptomAnalysis)
		api.POST("/detect-symptoms", h.Symptom.DetectSymptoms)

		doctors := api.Group("/doctors")
		{
			doctors.GET("", h.Doctor.ListDoctors)
			doctors.GET("/:id", h.Doctor.GetDoctor)
		}
	}
	return r
}
