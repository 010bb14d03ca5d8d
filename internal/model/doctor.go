// Package model 包含了应用的数据模型定义。
package model

import "strings"

// Doctor 是名册中的一位医生，进程启动后只读。
type Doctor struct {
	ID              string   `gorm:"primaryKey;type:varchar(32)" json:"id"`
	Name            string   `gorm:"type:varchar(255);not null" json:"name"`
	Specialty       string   `gorm:"type:varchar(100);index;not null" json:"specialty"`
	Experience      int      `gorm:"not null;default:0" json:"experience"`
	Rating          float64  `gorm:"not null;default:0" json:"rating"`
	Image           string   `gorm:"type:varchar(255)" json:"image,omitempty"`
	AvailableModes  []string `gorm:"serializer:json;type:json" json:"availableModes"`
	Fee             float64  `gorm:"not null;default:0" json:"fee"`
	ConsultationFee float64  `gorm:"not null;default:0" json:"consultationFee"`
	Education       string   `gorm:"type:varchar(255)" json:"education,omitempty"`
	Languages       []string `gorm:"serializer:json;type:json" json:"languages"`
	IsVerified      bool     `gorm:"not null;default:false" json:"isVerified"`
	Reviews         int      `gorm:"not null;default:0" json:"reviews"`
	Specializations []string `gorm:"serializer:json;type:json" json:"specializations"`
	ShortBio        string   `gorm:"type:text" json:"shortBio"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (Doctor) TableName() string {
	return "doctors"
}

// HasMode 判断医生是否支持某种问诊方式（video / audio / whatsapp / in-person）。
func (d Doctor) HasMode(mode string) bool {
	return containsFold(d.AvailableModes, mode)
}

// SpeaksLanguage 判断医生是否使用某种语言。
func (d Doctor) SpeaksLanguage(lang string) bool {
	return containsFold(d.Languages, lang)
}

// MatchDetails 说明医生与推荐专科的匹配关系。
type MatchDetails struct {
	RelevantSpecialty       string `json:"relevantSpecialty"`
	SpecialtyPriority       int    `json:"specialtyPriority"`
	IsPrimaryRecommendation bool   `json:"isPrimaryRecommendation"`
}

// ScoredDoctor 是排序过程中的内部结构，MatchScore 不对外暴露。
type ScoredDoctor struct {
	Doctor
	MatchScore   float64
	MatchDetails MatchDetails
}

// DoctorRecommendation 是返回给调用方的推荐医生。
type DoctorRecommendation struct {
	Doctor
	MatchDetails MatchDetails `json:"matchDetails"`
}

func containsFold(values []string, want string) bool {
	for _, v := range values {
		if strings.EqualFold(v, want) {
			return true
		}
	}
	return false
}
