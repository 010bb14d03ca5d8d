// Package service 包含了应用的业务逻辑层。
package service

import "strings"

// DefaultSpecialty 是任何推导结束后仍为空时的兜底专科。
const DefaultSpecialty = "General Physician"

// KnownSpecialties 是分类提示词中列出的专科词表，顺序即文本扫描时的收集顺序。
var KnownSpecialties = []string{
	"General Physician", "Cardiologist", "Dermatologist", "Orthopedic", "Pediatrician", "Gynecologist",
	"Neurologist", "Psychiatrist", "Ophthalmologist", "ENT Specialist", "Pulmonologist", "Gastroenterologist",
	"Endocrinologist", "Rheumatologist", "Infectious Disease Specialist", "Urologist", "Nephrologist",
	"Hematologist", "Oncologist",
}

// SymptomSpecialties 是一条症状到候选专科的映射。
type SymptomSpecialties struct {
	Symptom     string
	Specialties []string
}

var defaultSymptomSpecialties = []SymptomSpecialties{
	{"fever", []string{"General Physician", "Infectious Disease Specialist"}},
	{"cough", []string{"Pulmonologist", "General Physician", "ENT Specialist"}},
	{"headache", []string{"Neurologist", "General Physician"}},
	{"rash", []string{"Dermatologist", "Allergist"}},
	{"joint pain", []string{"Orthopedic", "Rheumatologist"}},
	{"chest pain", []string{"Cardiologist", "General Physician", "Pulmonologist"}},
	{"abdominal pain", []string{"Gastroenterologist", "General Physician"}},
	{"sore throat", []string{"ENT Specialist", "General Physician"}},
	{"eye pain", []string{"Ophthalmologist"}},
	{"depression", []string{"Psychiatrist", "Psychologist"}},
	{"anxiety", []string{"Psychiatrist", "Psychologist"}},
	{"nausea", []string{"Gastroenterologist", "General Physician"}},
	{"vomiting", []string{"Gastroenterologist", "General Physician"}},
	{"diarrhea", []string{"Gastroenterologist", "General Physician"}},
	{"fatigue", []string{"General Physician", "Endocrinologist"}},
	{"weakness", []string{"Neurologist", "General Physician"}},
	{"dizziness", []string{"Neurologist", "ENT Specialist", "Cardiologist"}},
	{"shortness of breath", []string{"Pulmonologist", "Cardiologist"}},
	{"back pain", []string{"Orthopedic", "Neurologist", "Pain Specialist"}},
	{"insomnia", []string{"Psychiatrist", "Neurologist", "Sleep Specialist"}},
	{"runny nose", []string{"ENT Specialist", "Allergist", "General Physician"}},
	{"breathing problems", []string{"Pulmonologist", "Allergist", "Cardiologist"}},
	{"difficulty swallowing", []string{"ENT Specialist", "Gastroenterologist"}},
	{"stomach pain", []string{"Gastroenterologist", "General Physician"}},
	{"ear pain", []string{"ENT Specialist", "General Physician"}},
	{"tooth pain", []string{"Dentist"}},
	{"knee pain", []string{"Orthopedic", "Sports Medicine Specialist"}},
	{"high blood pressure", []string{"Cardiologist", "Nephrologist"}},
	{"high glucose", []string{"Endocrinologist", "General Physician"}},
	{"vision problems", []string{"Ophthalmologist", "Neurologist"}},
	{"itching", []string{"Dermatologist", "Allergist"}},
	{"swelling", []string{"Allergist", "Rheumatologist", "General Physician"}},
}

// SpecialtyLookup 是静态的症状到专科映射表。
type SpecialtyLookup struct {
	entries []SymptomSpecialties
	exact   map[string]int
}

// NewSpecialtyLookup 以给定表创建查找器，表项顺序决定模糊匹配时的合并顺序。
func NewSpecialtyLookup(entries []SymptomSpecialties) *SpecialtyLookup {
	l := &SpecialtyLookup{
		entries: make([]SymptomSpecialties, 0, len(entries)),
		exact:   make(map[string]int, len(entries)),
	}
	for _, e := range entries {
		key := strings.ToLower(strings.TrimSpace(e.Symptom))
		if key == "" {
			continue
		}
		if _, dup := l.exact[key]; dup {
			continue
		}
		l.exact[key] = len(l.entries)
		l.entries = append(l.entries, SymptomSpecialties{Symptom: key, Specialties: e.Specialties})
	}
	return l
}

// DefaultSpecialtyLookup 返回内置映射表的查找器。
func DefaultSpecialtyLookup() *SpecialtyLookup {
	return NewSpecialtyLookup(defaultSymptomSpecialties)
}

// Lookup 只做精确匹配，没有命中时返回空列表。
func (l *SpecialtyLookup) Lookup(phrase string) []string {
	key := strings.ToLower(strings.TrimSpace(phrase))
	if i, ok := l.exact[key]; ok {
		return append([]string(nil), l.entries[i].Specialties...)
	}
	return []string{}
}

// LookupFuzzy 先精确匹配，再按表顺序合并所有与短语互为子串的表项。
func (l *SpecialtyLookup) LookupFuzzy(phrase string) []string {
	key := strings.ToLower(strings.TrimSpace(phrase))
	if key == "" {
		return []string{}
	}
	if exact := l.Lookup(key); len(exact) > 0 {
		return exact
	}
	var out []string
	for _, e := range l.entries {
		if strings.Contains(key, e.Symptom) || strings.Contains(e.Symptom, key) {
			out = appendUnique(out, e.Specialties...)
		}
	}
	if out == nil {
		return []string{}
	}
	return out
}

// appendUnique 追加不重复的元素，保持首次出现顺序。
func appendUnique(dst []string, values ...string) []string {
	for _, v := range values {
		dup := false
		for _, existing := range dst {
			if existing == v {
				dup = true
				break
			}
		}
		if !dup {
			dst = append(dst, v)
		}
	}
	return dst
}
