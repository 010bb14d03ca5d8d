// Package main 是应用程序的入口点。
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"curago-go/internal/config"
	"curago-go/internal/handler"
	"curago-go/internal/model"
	"curago-go/internal/repository"
	"curago-go/internal/service"
	"curago-go/pkg/database"
	"curago-go/pkg/kafka"
	"curago-go/pkg/llm"
	"curago-go/pkg/log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// 1. 加载 .env（可选），再初始化配置
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "加载 .env 失败: %v\n", err)
	}
	config.Init("./configs/config.yaml")
	cfg := config.Conf

	// 2. 初始化日志记录器
	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync()
	log.Info("日志记录器初始化成功")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. 初始化 LLM 网关，没有 API Key 时只走本地兜底
	var provider llm.Provider
	if cfg.LLM.APIKey != "" {
		p, err := llm.NewGeminiProvider(ctx, cfg.LLM.APIKey)
		if err != nil {
			log.Errorf("[Main] Gemini 客户端初始化失败，进入兜底模式: %v", err)
		} else {
			provider = p
		}
	} else {
		log.Warnf("[Main] 未配置 GEMINI_API_KEY，所有请求将使用本地兜底逻辑")
	}
	llmClient := llm.NewClient(provider, llm.OptionsFromConfig(cfg.LLM))
	log.Infof("[Main] LLM 模型优先级: %v", cfg.LLM.Models())

	// 4. 初始化 Repository
	cache := newResponseCache(cfg)
	doctorRepo := repository.NewDoctorRepository(loadRoster(cfg))

	// 5. 初始化报告发布者
	var publisher service.ReportPublisher = service.NewNoopReportPublisher()
	if cfg.Kafka.Enabled {
		producer := kafka.NewReportProducer(cfg.Kafka)
		defer func() {
			if err := producer.Close(); err != nil {
				log.Errorf("[Main] 关闭 Kafka 生产者失败: %v", err)
			}
		}()
		publisher = producer
		log.Infof("[Main] 分诊报告将发布到 Kafka topic: %s", cfg.Kafka.Topic)
	}

	// 6. 初始化 Service (依赖注入)
	classifier := service.NewSpecialtyClassifier(llmClient, cache, service.DefaultSpecialtyLookup())
	analysisService := service.NewAnalysisService(classifier, doctorRepo, llmClient)
	detector := service.NewSymptomDetector(llmClient)
	chatService := service.NewChatService(llmClient, cache, cfg.LLM.Prompt.Persona)
	triageService := service.NewTriageService(detector, analysisService, chatService, publisher, cfg.Triage)

	// 7. 设置 Gin 模式并注册路由
	if cfg.Server.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := handler.NewRouter(handler.Handlers{
		Symptom: handler.NewSymptomHandler(analysisService, detector),
		Chat:    handler.NewChatHandler(triageService),
		Doctor:  handler.NewDoctorHandler(doctorRepo),
		System:  handler.NewSystemHandler(cfg.Server.Environment, cfg.LLM.APIKey != ""),
	})

	// 启动 HTTP 服务器并实现优雅停机
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof("服务启动于 %s (environment=%s)", srv.Addr, cfg.Server.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP 服务监听失败: %s", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("接收到停机信号，正在关闭服务...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("HTTP 服务器关闭失败: %v", err)
	}
	log.Info("服务已优雅关闭")
}

// newResponseCache 按配置选择缓存后端，Redis 不可用时退回内存缓存。
func newResponseCache(cfg config.Config) repository.ResponseCache {
	if cfg.Cache.Backend != "redis" {
		return repository.NewMemoryResponseCache()
	}
	redisClient, err := database.InitRedis(cfg.Database.Redis.Addr, cfg.Database.Redis.Password, cfg.Database.Redis.DB)
	if err != nil {
		log.Errorf("[Main] Redis 初始化失败，改用内存缓存: %v", err)
		return repository.NewMemoryResponseCache()
	}
	log.Infof("[Main] 使用 Redis 缓存: %s", cfg.Database.Redis.Addr)
	return repository.NewRedisResponseCache(redisClient, cfg.Cache.Prefix)
}

// loadRoster 按配置从 MySQL 读取名册，失败时使用内置名册。
func loadRoster(cfg config.Config) []model.Doctor {
	if cfg.Roster.Source != "mysql" {
		return repository.DefaultRoster()
	}
	db, err := database.InitMySQL(cfg.Database.MySQL.DSN)
	if err != nil {
		log.Errorf("[Main] MySQL 初始化失败，使用内置名册: %v", err)
		return repository.DefaultRoster()
	}
	doctors, err := repository.LoadDoctorsFromDB(db)
	if err != nil {
		log.Errorf("[Main] 读取医生名册失败，使用内置名册: %v", err)
		return repository.DefaultRoster()
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Infof("[Main] 从 MySQL 加载了 %d 位医生", len(doctors))
	return doctors
}
