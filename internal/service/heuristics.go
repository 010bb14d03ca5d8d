package service

import (
	"strings"

	"curago-go/internal/model"
)

// 本地兜底使用的固定关键字表。
var (
	urgentKeywords = []string{
		"chest pain", "difficulty breathing", "shortness of breath", "severe pain", "unconscious",
		"stroke", "heart attack", "seizure", "severe bleeding", "anaphylaxis",
		"paralysis", "unable to move", "severe abdominal pain", "sudden vision loss",
		"sudden severe headache", "severe allergic reaction", "high fever", "coughing blood",
	}

	// emergencyKeywords 在紧急症状之外还包含精神与中毒类危急情况。
	emergencyKeywords = append(append([]string(nil), urgentKeywords...),
		"suicidal thoughts", "drug overdose", "poisoning",
	)

	moderateKeywords = []string{
		"fever", "vomiting", "diarrhea", "abdominal pain",
		"persistent fever", "severe headache", "dehydration", "unusual rash", "sudden weakness",
	}
)

type keywordList struct {
	keyword string
	values  []string
}

var conditionTable = []keywordList{
	{"fever", []string{"Common cold", "Influenza", "COVID-19", "Infection"}},
	{"cough", []string{"Common cold", "Bronchitis", "Asthma", "COVID-19"}},
	{"headache", []string{"Tension headache", "Migraine", "Dehydration", "Stress"}},
	{"nausea", []string{"Food poisoning", "Viral gastroenteritis", "Motion sickness", "Pregnancy"}},
	{"vomiting", []string{"Food poisoning", "Viral gastroenteritis", "Migraine", "Appendicitis"}},
	{"diarrhea", []string{"Food poisoning", "Viral gastroenteritis", "IBS", "Food intolerance"}},
	{"joint pain", []string{"Arthritis", "Injury", "Inflammation", "Gout"}},
	{"chest pain", []string{"Angina", "Heart attack", "GERD", "Muscle strain"}},
	{"abdominal pain", []string{"Gastritis", "Indigestion"}},
	{"sore throat", []string{"Pharyngitis", "Strep throat", "Common cold"}},
}

var watchTable = []keywordList{
	{"fever", []string{"chills", "fatigue", "headache", "body aches"}},
	{"nausea", []string{"vomiting", "diarrhea", "abdominal pain", "loss of appetite"}},
	{"vomiting", []string{"abdominal pain", "diarrhea", "decreased appetite"}},
	{"headache", []string{"dizziness", "vision changes", "neck stiffness", "light sensitivity"}},
	{"cough", []string{"shortness of breath", "chest pain", "wheezing", "throat pain"}},
	{"sore throat", []string{"difficulty swallowing", "swollen lymph nodes", "voice changes"}},
	{"joint pain", []string{"swelling", "redness", "warmth", "limited movement"}},
	{"chest pain", []string{"shortness of breath", "sweating", "nausea", "jaw or arm pain"}},
}

const defaultCondition = "General malaise"

func lowerAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.ToLower(strings.TrimSpace(v))
	}
	return out
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

// HeuristicConditions 按关键字表合并可能的疾病，没有命中时返回 General malaise。
func HeuristicConditions(symptoms []string) []string {
	var out []string
	for _, s := range lowerAll(symptoms) {
		for _, row := range conditionTable {
			if strings.Contains(s, row.keyword) {
				out = appendUnique(out, row.values...)
			}
		}
	}
	if len(out) == 0 {
		return []string{defaultCondition}
	}
	return out
}

// HeuristicUrgency 以子串扫描判断紧急程度：紧急关键字优先于中度关键字。
func HeuristicUrgency(symptoms []string) model.UrgencyLevel {
	lowered := lowerAll(symptoms)
	for _, s := range lowered {
		if containsAny(s, urgentKeywords) {
			return model.UrgencyUrgent
		}
	}
	for _, s := range lowered {
		if containsAny(s, moderateKeywords) {
			return model.UrgencyModerate
		}
	}
	return model.UrgencyNonUrgent
}

// HeuristicWatchList 返回需要留意的相关症状，已报告的症状会被排除。
func HeuristicWatchList(symptoms []string) []string {
	lowered := lowerAll(symptoms)
	reported := make(map[string]struct{}, len(lowered))
	for _, s := range lowered {
		reported[s] = struct{}{}
	}
	out := []string{}
	for _, s := range lowered {
		for _, row := range watchTable {
			if !strings.Contains(s, row.keyword) {
				continue
			}
			for _, v := range row.values {
				if _, ok := reported[v]; ok {
					continue
				}
				out = appendUnique(out, v)
			}
		}
	}
	return out
}

// IsEmergency 判断任一症状是否包含危急关键字。
func IsEmergency(symptoms []string) bool {
	for _, s := range lowerAll(symptoms) {
		if containsAny(s, emergencyKeywords) {
			return true
		}
	}
	return false
}

// HeuristicAnalysis 完全基于本地关键字表的分析结果。
func HeuristicAnalysis(symptoms []string) model.AIAnalysis {
	return model.AIAnalysis{
		PossibleConditions:        HeuristicConditions(symptoms),
		UrgencyLevel:              HeuristicUrgency(symptoms),
		AdditionalSymptomsToWatch: HeuristicWatchList(symptoms),
		Source:                    model.SourceHeuristic,
	}
}
