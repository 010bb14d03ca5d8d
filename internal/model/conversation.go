package model

// 对话角色
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// ChatPart 是一条消息中的文本片段。
type ChatPart struct {
	Text string `json:"text"`
}

// ChatMessage 是前端与服务端往返传递的一条对话记录。
type ChatMessage struct {
	Role  string     `json:"role"` // "user" 或 "model"
	Parts []ChatPart `json:"parts"`
}

// NewChatMessage 创建只有一个文本片段的消息。
func NewChatMessage(role, text string) ChatMessage {
	return ChatMessage{Role: role, Parts: []ChatPart{{Text: text}}}
}

// Text 返回消息第一个片段的文本。
func (m ChatMessage) Text() string {
	if len(m.Parts) == 0 {
		return ""
	}
	return m.Parts[0].Text
}

// Stage 是分诊对话所处的阶段。
type Stage string

const (
	StageInitial    Stage = "initial"
	StageCollecting Stage = "collecting-symptoms"
	StageReporting  Stage = "reporting"
	StageComplete   Stage = "complete"
)

// Valid 判断阶段取值是否合法。
func (s Stage) Valid() bool {
	switch s {
	case StageInitial, StageCollecting, StageReporting, StageComplete:
		return true
	}
	return false
}

// ConversationState 由客户端在每一轮请求与响应间回传，服务端本身不保存会话。
type ConversationState struct {
	DetectedSymptoms   []string     `json:"detectedSymptoms"`
	CollectingSymptoms bool         `json:"collectingSymptoms"`
	RecommendDoctors   bool         `json:"recommendDoctors"`
	UrgencyLevel       UrgencyLevel `json:"urgencyLevel,omitempty"`
	EmergencyDetected  bool         `json:"emergencyDetected"`
	Stage              Stage        `json:"conversationStage"`
}

// AddSymptoms 追加尚未出现的症状，保持首次出现顺序，返回新增的部分。
func (s *ConversationState) AddSymptoms(symptoms []string) []string {
	seen := make(map[string]struct{}, len(s.DetectedSymptoms))
	for _, existing := range s.DetectedSymptoms {
		seen[existing] = struct{}{}
	}
	var added []string
	for _, sym := range symptoms {
		if sym == "" {
			continue
		}
		if _, ok := seen[sym]; ok {
			continue
		}
		seen[sym] = struct{}{}
		s.DetectedSymptoms = append(s.DetectedSymptoms, sym)
		added = append(added, sym)
	}
	return added
}
