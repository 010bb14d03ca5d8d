package service

import (
	"strings"

	"curago-go/internal/model"
)

// BuildMedicalReport 生成分诊报告文本：症状、可能疾病、紧急程度、观察清单与分级建议。
func BuildMedicalReport(symptoms []string, analysis model.AIAnalysis) string {
	if len(symptoms) == 0 {
		return "No symptoms reported."
	}

	var b strings.Builder
	b.WriteString("Medical Report Summary\n")
	b.WriteString("----------------------\n")
	b.WriteString("Reported Symptoms: " + strings.Join(symptoms, ", ") + "\n")
	b.WriteString("Possible Conditions: " + strings.Join(analysis.PossibleConditions, ", ") + "\n")
	b.WriteString("Urgency Level: " + string(analysis.UrgencyLevel) + "\n")
	b.WriteString("Additional Symptoms to Watch: " + strings.Join(analysis.AdditionalSymptomsToWatch, ", ") + "\n")
	b.WriteString("\n")

	switch analysis.UrgencyLevel {
	case model.UrgencyUrgent:
		b.WriteString("IMPORTANT: Your symptoms may require immediate medical attention. Please consult a healthcare provider as soon as possible.")
	case model.UrgencyModerate:
		b.WriteString("Recommendation: Consider scheduling an appointment with a healthcare provider in the next few days.")
	default:
		b.WriteString("Recommendation: Monitor your symptoms. If they persist or worsen, consider consulting with a healthcare provider.")
	}
	return b.String()
}
