package model

// UrgencyLevel 是症状的紧急程度。
type UrgencyLevel string

const (
	UrgencyNonUrgent UrgencyLevel = "non-urgent"
	UrgencyModerate  UrgencyLevel = "moderate"
	UrgencyUrgent    UrgencyLevel = "urgent"
)

// ParseUrgency 将模型返回的字符串规整为合法的紧急程度。
func ParseUrgency(s string) (UrgencyLevel, bool) {
	switch UrgencyLevel(s) {
	case UrgencyNonUrgent, UrgencyModerate, UrgencyUrgent:
		return UrgencyLevel(s), true
	}
	return "", false
}

// Rank 用于比较紧急程度的高低。
func (u UrgencyLevel) Rank() int {
	switch u {
	case UrgencyUrgent:
		return 2
	case UrgencyModerate:
		return 1
	}
	return 0
}

// 分析结果来源
const (
	SourceAI        = "ai"
	SourceHeuristic = "heuristic"
)

// AIAnalysis 是对一组症状的结构化分析。
type AIAnalysis struct {
	PossibleConditions        []string     `json:"possibleConditions"`
	UrgencyLevel              UrgencyLevel `json:"urgencyLevel"`
	AdditionalSymptomsToWatch []string     `json:"additionalSymptomsToWatch"`
	RecommendedSpecialties    []string     `json:"recommendedSpecialties"`
	Source                    string       `json:"source"`
}

// SymptomAnalysis 汇总专科推荐、医生排序与结构化分析。
type SymptomAnalysis struct {
	Symptoms            []string               `json:"symptoms"`
	RelevantSpecialties []string               `json:"relevantSpecialties"`
	RecommendedDoctors  []DoctorRecommendation `json:"recommendedDoctors"`
	AIAnalysis          AIAnalysis             `json:"aiAnalysis"`
}

// DetectionResult 是一段文本中的症状识别结果。
type DetectionResult struct {
	ContainsSymptoms bool     `json:"containsSymptoms"`
	DetectedSymptoms []string `json:"detectedSymptoms"`
}
