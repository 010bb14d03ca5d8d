package service

import (
	"sort"

	"curago-go/internal/model"
)

// RankDoctors 按专科优先级、经验与评分对医生排序；limit <= 0 表示不截断。
// 没有医生属于候选专科时退回整个名册。
func RankDoctors(specialties []string, roster []model.Doctor, limit int) []model.ScoredDoctor {
	priority := make(map[string]int, len(specialties))
	for i, s := range specialties {
		if _, ok := priority[s]; !ok {
			priority[s] = i
		}
	}

	candidates := make([]model.Doctor, 0, len(roster))
	for _, d := range roster {
		if _, ok := priority[d.Specialty]; ok {
			candidates = append(candidates, d)
		}
	}
	if len(candidates) == 0 {
		candidates = roster
	}

	scored := make([]model.ScoredDoctor, 0, len(candidates))
	for _, d := range candidates {
		idx, ok := priority[d.Specialty]
		specialtyScore := 0
		if !ok {
			idx = -1
		} else {
			specialtyScore = len(specialties) - idx
		}
		scored = append(scored, model.ScoredDoctor{
			Doctor:     d,
			MatchScore: float64(specialtyScore*3) + float64(d.Experience)/5 + d.Rating,
			MatchDetails: model.MatchDetails{
				RelevantSpecialty:       d.Specialty,
				SpecialtyPriority:       idx + 1,
				IsPrimaryRecommendation: idx == 0,
			},
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].MatchScore > scored[j].MatchScore
	})

	if limit > 0 && len(scored) > limit {
		scored = scored[:limit]
	}
	return scored
}

// ToRecommendations 去掉内部评分，生成对外返回的医生列表。
func ToRecommendations(scored []model.ScoredDoctor) []model.DoctorRecommendation {
	out := make([]model.DoctorRecommendation, len(scored))
	for i, s := range scored {
		out[i] = model.DoctorRecommendation{Doctor: s.Doctor, MatchDetails: s.MatchDetails}
	}
	return out
}
