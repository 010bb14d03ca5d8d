// Package config 负责加载和管理应用程序的配置。
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// 全局配置变量，存储从配置文件与环境变量加载的所有设置。
var Conf Config

// Config 是整个应用程序的配置结构体，与 config.yaml 文件结构对应。
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Roster   RosterConfig   `mapstructure:"roster"`
	Database DatabaseConfig `mapstructure:"database"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Triage   TriageConfig   `mapstructure:"triage"`
}

// ServerConfig 存储服务器相关的配置。
type ServerConfig struct {
	Port        string `mapstructure:"port"`
	Environment string `mapstructure:"environment"`
}

// IsProduction 判断当前是否运行在生产环境。
func (s ServerConfig) IsProduction() bool {
	return strings.EqualFold(s.Environment, "production")
}

// LogConfig 存储日志相关的配置。
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// LLMConfig 存储 Gemini 大语言模型相关的配置。
type LLMConfig struct {
	APIKey                  string          `mapstructure:"api_key"`
	DefaultModel            string          `mapstructure:"default_model"`
	FallbackModel           string          `mapstructure:"fallback_model"`
	TimeoutMs               int             `mapstructure:"timeout_ms"`
	RateLimitDefaultDelayMs int             `mapstructure:"rate_limit_default_delay_ms"`
	RateLimitRetries        int             `mapstructure:"rate_limit_retries"`
	Prompt                  LLMPromptConfig `mapstructure:"prompt"`
}

// Models 返回按优先级排列的模型列表（去空去重）。
func (c LLMConfig) Models() []string {
	models := make([]string, 0, 2)
	for _, m := range []string{c.DefaultModel, c.FallbackModel} {
		m = strings.TrimSpace(m)
		if m == "" {
			continue
		}
		dup := false
		for _, existing := range models {
			if existing == m {
				dup = true
				break
			}
		}
		if !dup {
			models = append(models, m)
		}
	}
	return models
}

// LLMPromptConfig 配置聊天人设前缀等提示词。
type LLMPromptConfig struct {
	Persona string `mapstructure:"persona"`
}

// CacheConfig 配置响应缓存的后端。
type CacheConfig struct {
	Backend string `mapstructure:"backend"` // memory 或 redis
	Prefix  string `mapstructure:"prefix"`
}

// RosterConfig 配置医生名册的来源。
type RosterConfig struct {
	Source string `mapstructure:"source"` // memory 或 mysql
}

// DatabaseConfig 存储所有数据库连接的配置。
type DatabaseConfig struct {
	MySQL MySQLConfig `mapstructure:"mysql"`
	Redis RedisConfig `mapstructure:"redis"`
}

// MySQLConfig 存储 MySQL 数据库的配置。
type MySQLConfig struct {
	DSN string `mapstructure:"dsn"`
}

// RedisConfig 存储 Redis 的配置。
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// KafkaConfig 存储分诊报告事件流的配置。
type KafkaConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Brokers string `mapstructure:"brokers"`
	Topic   string `mapstructure:"topic"`
}

// TriageConfig 存储分诊对话的推荐截断数量。
type TriageConfig struct {
	ChatTopN   int `mapstructure:"chat_top_n"`
	ReportTopN int `mapstructure:"report_top_n"`
}

// envBindings 将配置键绑定到原有部署使用的环境变量名。
var envBindings = map[string]string{
	"server.port":         "PORT",
	"server.environment":  "NODE_ENV",
	"llm.api_key":         "GEMINI_API_KEY",
	"llm.default_model":   "GEMINI_DEFAULT_MODEL",
	"llm.fallback_model":  "GEMINI_FALLBACK_MODEL",
	"llm.timeout_ms":      "GEMINI_API_TIMEOUT",
	"cache.backend":       "CACHE_BACKEND",
	"database.redis.addr": "REDIS_ADDR",
	"database.mysql.dsn":  "MYSQL_DSN",
	"roster.source":       "ROSTER_SOURCE",
	"kafka.enabled":       "KAFKA_ENABLED",
	"kafka.brokers":       "KAFKA_BROKERS",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "4001")
	v.SetDefault("server.environment", "development")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("llm.default_model", "gemini-1.5-flash")
	v.SetDefault("llm.fallback_model", "gemini-1.5-pro")
	v.SetDefault("llm.timeout_ms", 30000)
	v.SetDefault("llm.rate_limit_default_delay_ms", 5000)
	v.SetDefault("llm.rate_limit_retries", 0)
	v.SetDefault("llm.prompt.persona", "You are a helpful medical assistant called CuraGo. You provide helpful health information but remind users you can't diagnose. Respond in a conversational tone and keep your response under 150 words.")
	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.prefix", "curago:cache:")
	v.SetDefault("roster.source", "memory")
	v.SetDefault("database.redis.addr", "localhost:6379")
	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.topic", "triage-reports")
	v.SetDefault("triage.chat_top_n", 3)
	v.SetDefault("triage.report_top_n", 5)
}

// Load 从指定路径读取 YAML 配置（文件缺失时仅使用默认值），并叠加环境变量。
func Load(configPath string) (Config, error) {
	var cfg Config
	v := viper.New()
	setDefaults(v)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return cfg, fmt.Errorf("绑定环境变量 %s 失败: %w", env, err)
		}
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
				return cfg, fmt.Errorf("读取配置文件失败: %w", err)
			}
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("无法将配置解析到结构体中: %w", err)
	}
	return cfg, nil
}

// Init 初始化全局配置 Conf，解析失败时直接 panic。
func Init(configPath string) {
	cfg, err := Load(configPath)
	if err != nil {
		panic(err)
	}
	Conf = cfg
}
