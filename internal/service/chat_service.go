package service

import (
	"context"
	"strings"

	"curago-go/internal/model"
	"curago-go/internal/repository"
	"curago-go/pkg/llm"
	"curago-go/pkg/log"
	"curago-go/pkg/metrics"
)

const chatCachePrefix = "chat:"

// 回复来源
const (
	ReplySourceAI       = "ai"
	ReplySourceCache    = "cache"
	ReplySourceFallback = "fallback"
)

// ChatReply 是一轮自由问答的结果，History 已追加本轮的用户消息与回复。
type ChatReply struct {
	Text    string
	Source  string
	History []model.ChatMessage
}

// Degraded 表示模型不可用、回复来自本地兜底。
func (r ChatReply) Degraded() bool {
	return r.Source == ReplySourceFallback
}

// ChatService 定义了自由问答的接口，与分诊状态无关。
type ChatService interface {
	Reply(ctx context.Context, message string, history []model.ChatMessage) ChatReply
}

type chatService struct {
	llmClient llm.Client
	cache     repository.ResponseCache
	persona   string
}

// NewChatService 创建一个新的 ChatService 实例，persona 为空时直接发送原始消息。
func NewChatService(llmClient llm.Client, cache repository.ResponseCache, persona string) ChatService {
	return &chatService{llmClient: llmClient, cache: cache, persona: strings.TrimSpace(persona)}
}

func (s *chatService) Reply(ctx context.Context, message string, history []model.ChatMessage) ChatReply {
	text, source := s.respond(ctx, message)
	updated := make([]model.ChatMessage, 0, len(history)+2)
	updated = append(updated, history...)
	updated = append(updated,
		model.NewChatMessage(model.RoleUser, message),
		model.NewChatMessage(model.RoleModel, text),
	)
	return ChatReply{Text: text, Source: source, History: updated}
}

func (s *chatService) respond(ctx context.Context, message string) (string, string) {
	key := chatCachePrefix + repository.NormalizeKey(message)
	cached, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		log.Warnf("[ChatService] 读取缓存失败，按未命中处理: %v", err)
	}
	hit := ok && err == nil
	metrics.CacheLookup("chat", hit)
	if hit {
		log.Debugf("[ChatService] 命中缓存")
		return cached, ReplySourceCache
	}

	text, err := s.llmClient.Generate(ctx, s.prompt(message))
	if err != nil {
		log.Warnf("[ChatService] 模型不可用，返回兜底回复: %v", err)
		metrics.Fallback("chat", "no_result")
		return FallbackAdvice(message), ReplySourceFallback
	}

	if err := s.cache.Set(ctx, key, text); err != nil {
		log.Warnf("[ChatService] 写入缓存失败: %v", err)
	}
	return text, ReplySourceAI
}

func (s *chatService) prompt(message string) string {
	if s.persona == "" {
		return message
	}
	return s.persona + "\n\nUser question: " + message
}

// FallbackApology 是模型不可用且没有匹配建议时的固定回复。
const FallbackApology = "I'm sorry, but I'm currently experiencing technical difficulties. Please try again in a moment."

var fallbackAdvice = []struct {
	keyword string
	advice  string
}{
	{"fever", "Fever can be a symptom of many conditions including infections, inflammation, or reactions to medications. It's often defined as a temperature above 100.4°F (38°C). If you're experiencing fever, please consider the following recommendations: stay hydrated, rest, and take over-the-counter medications like acetaminophen if needed. Consult with a doctor if your fever is high or persistent."},
	{"headache", "Headaches can be caused by stress, dehydration, eye strain, or underlying medical conditions. For mild headaches, consider rest, hydration, and over-the-counter pain relievers. If your headache is severe, sudden, or accompanied by other symptoms, please consult a healthcare provider."},
	{"cough", "Coughs can be caused by various factors including allergies, infections, or irritants. For a dry cough, staying hydrated and using cough drops may help. For a productive cough, steam inhalation might provide relief. If your cough persists for more than a week or is accompanied by other symptoms, please consult a healthcare provider."},
	{"pain", "Pain can be a symptom of many conditions. The appropriate treatment depends on the cause and location of the pain. For mild pain, rest and over-the-counter pain relievers may help. If your pain is severe, persistent, or affects your daily activities, please consult with a healthcare provider."},
}

// FallbackAdvice 返回与消息关键字匹配的固定健康建议，没有匹配时返回 FallbackApology。
func FallbackAdvice(message string) string {
	lower := strings.ToLower(message)
	for _, f := range fallbackAdvice {
		if strings.Contains(lower, f.keyword) {
			return f.advice
		}
	}
	return FallbackApology
}
