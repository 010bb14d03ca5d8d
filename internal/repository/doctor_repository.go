package repository

import (
	"fmt"
	"strings"

	"curago-go/internal/model"

	"gorm.io/gorm"
)

// DoctorFilter 是医生目录的筛选条件，空字段表示不限。
type DoctorFilter struct {
	Specialty string
	Mode      string
	Language  string
}

// DoctorRepository 提供对只读医生名册的查询。
type DoctorRepository interface {
	FindAll() []model.Doctor
	FindByID(id string) (model.Doctor, bool)
	Find(filter DoctorFilter) []model.Doctor
}

type memoryDoctorRepository struct {
	doctors []model.Doctor
	byID    map[string]int
}

// NewDoctorRepository 以给定名册创建仓库，名册在此之后不再变化。
func NewDoctorRepository(doctors []model.Doctor) DoctorRepository {
	r := &memoryDoctorRepository{
		doctors: make([]model.Doctor, len(doctors)),
		byID:    make(map[string]int, len(doctors)),
	}
	copy(r.doctors, doctors)
	for i, d := range r.doctors {
		r.byID[d.ID] = i
	}
	return r
}

// FindAll 返回名册副本，顺序与加载顺序一致。
func (r *memoryDoctorRepository) FindAll() []model.Doctor {
	out := make([]model.Doctor, len(r.doctors))
	copy(out, r.doctors)
	return out
}

func (r *memoryDoctorRepository) FindByID(id string) (model.Doctor, bool) {
	i, ok := r.byID[id]
	if !ok {
		return model.Doctor{}, false
	}
	return r.doctors[i], true
}

func (r *memoryDoctorRepository) Find(filter DoctorFilter) []model.Doctor {
	out := make([]model.Doctor, 0, len(r.doctors))
	for _, d := range r.doctors {
		if filter.Specialty != "" && !strings.EqualFold(d.Specialty, filter.Specialty) {
			continue
		}
		if filter.Mode != "" && !d.HasMode(filter.Mode) {
			continue
		}
		if filter.Language != "" && !d.SpeaksLanguage(filter.Language) {
			continue
		}
		out = append(out, d)
	}
	return out
}

// LoadDoctorsFromDB 在启动时从 MySQL 读取一次名册。
func LoadDoctorsFromDB(db *gorm.DB) ([]model.Doctor, error) {
	var doctors []model.Doctor
	if err := db.Order("id").Find(&doctors).Error; err != nil {
		return nil, fmt.Errorf("failed to load doctors: %w", err)
	}
	if len(doctors) == 0 {
		return nil, fmt.Errorf("doctors table is empty")
	}
	return doctors, nil
}

// DefaultRoster 返回内置的医生名册。
func DefaultRoster() []model.Doctor {
	return []model.Doctor{
		{
			ID: "1", Name: "Dr. Sarah Johnson", Specialty: "General Physician", Experience: 12, Rating: 4.8,
			Image:          "https://randomuser.me/api/portraits/women/68.jpg",
			AvailableModes: []string{"video", "audio", "whatsapp", "in-person"},
			Fee:            500, ConsultationFee: 500,
			Education:       "MBBS, MD - Internal Medicine",
			Languages:       []string{"English", "Spanish"},
			IsVerified:      true, Reviews: 124,
			Specializations: []string{"General Medicine", "Family Medicine", "Preventive Care"},
			ShortBio:        "Dedicated general physician with 12+ years of experience",
		},
		{
			ID: "2", Name: "Dr. Michael Chen", Specialty: "Cardiologist", Experience: 15, Rating: 4.9,
			Image:          "https://randomuser.me/api/portraits/men/32.jpg",
			AvailableModes: []string{"video", "in-person"},
			Fee:            1200, ConsultationFee: 1200,
			Education:       "MBBS, MD - Cardiology, DM - Cardiology",
			Languages:       []string{"English", "Mandarin"},
			IsVerified:      true, Reviews: 98,
			Specializations: []string{"Interventional Cardiology", "Heart Failure", "Cardiac Imaging"},
			ShortBio:        "Renowned cardiologist specialized in heart conditions",
		},
		{
			ID: "3", Name: "Dr. Priya Patel", Specialty: "Dermatologist", Experience: 8, Rating: 4.7,
			Image:          "https://randomuser.me/api/portraits/women/44.jpg",
			AvailableModes: []string{"video", "audio", "whatsapp"},
			Fee:            800, ConsultationFee: 800,
			Education:       "MBBS, MD - Dermatology",
			Languages:       []string{"English", "Hindi", "Gujarati"},
			IsVerified:      true, Reviews: 156,
			Specializations: []string{"Medical Dermatology", "Cosmetic Dermatology", "Pediatric Dermatology"},
			ShortBio:        "Expert dermatologist for skin conditions and cosmetic procedures",
		},
		{
			ID: "4", Name: "Dr. James Wilson", Specialty: "Orthopedic", Experience: 20, Rating: 4.9,
			Image:          "https://randomuser.me/api/portraits/men/46.jpg",
			AvailableModes: []string{"video", "in-person"},
			Fee:            1500, ConsultationFee: 1500,
			Education:       "MBBS, MS - Orthopedics",
			Languages:       []string{"English"},
			IsVerified:      true, Reviews: 87,
			Specializations: []string{"Joint Replacement", "Sports Medicine", "Trauma"},
			ShortBio:        "Experienced orthopedic surgeon for joint issues and sports injuries",
		},
		{
			ID: "5", Name: "Dr. Aisha Mohammed", Specialty: "Pediatrician", Experience: 10, Rating: 4.8,
			Image:          "https://randomuser.me/api/portraits/women/90.jpg",
			AvailableModes: []string{"video", "audio", "whatsapp", "in-person"},
			Fee:            700, ConsultationFee: 700,
			Education:       "MBBS, MD - Pediatrics",
			Languages:       []string{"English", "Arabic"},
			IsVerified:      true, Reviews: 112,
			Specializations: []string{"Child Development", "Preventive Care", "Newborn Care"},
			ShortBio:        "Compassionate pediatrician focused on child development",
		},
		{
			ID: "6", Name: "Dr. Robert Garcia", Specialty: "Neurologist", Experience: 18, Rating: 4.7,
			Image:          "https://randomuser.me/api/portraits/men/72.jpg",
			AvailableModes: []string{"video", "in-person"},
			Fee:            1300, ConsultationFee: 1300,
			Education:       "MBBS, MD - Neurology, DM - Neurology",
			Languages:       []string{"English", "Spanish"},
			IsVerified:      true, Reviews: 76,
			Specializations: []string{"Stroke Management", "Movement Disorders", "Headache"},
			ShortBio:        "Expert neurologist for stroke management and movement disorders",
		},
		{
			ID: "7", Name: "Dr. Emily Thompson", Specialty: "Gastroenterologist", Experience: 14, Rating: 4.8,
			Image:          "https://randomuser.me/api/portraits/women/28.jpg",
			AvailableModes: []string{"video", "in-person"},
			Fee:            1100, ConsultationFee: 1100,
			Education:       "MBBS, MD - Internal Medicine, DM - Gastroenterology",
			Languages:       []string{"English"},
			IsVerified:      true, Reviews: 93,
			Specializations: []string{"Digestive Disorders", "Liver Disease", "Inflammatory Bowel Disease"},
			ShortBio:        "Expert in digestive disorders and gastrointestinal health",
		},
		{
			ID: "8", Name: "Dr. Ahmed Khan", Specialty: "Pulmonologist", Experience: 16, Rating: 4.6,
			Image:          "https://randomuser.me/api/portraits/men/52.jpg",
			AvailableModes: []string{"video", "in-person"},
			Fee:            1000, ConsultationFee: 1000,
			Education:       "MBBS, MD - Pulmonary Medicine",
			Languages:       []string{"English", "Urdu"},
			IsVerified:      true, Reviews: 67,
			Specializations: []string{"Respiratory Disorders", "Sleep Apnea", "COPD"},
			ShortBio:        "Specialist in respiratory and pulmonary conditions",
		},
		{
			ID: "9", Name: "Dr. Lisa Wong", Specialty: "ENT Specialist", Experience: 12, Rating: 4.7,
			Image:          "https://randomuser.me/api/portraits/women/79.jpg",
			AvailableModes: []string{"video", "audio", "in-person"},
			Fee:            900, ConsultationFee: 900,
			Education:       "MBBS, MS - ENT",
			Languages:       []string{"English", "Cantonese"},
			IsVerified:      true, Reviews: 104,
			Specializations: []string{"Ear Disorders", "Throat Conditions", "Sinus Problems"},
			ShortBio:        "Dedicated ENT specialist for ear, nose and throat conditions",
		},
		{
			ID: "10", Name: "Dr. Mark Johnson", Specialty: "Infectious Disease Specialist", Experience: 15, Rating: 4.9,
			Image:          "https://randomuser.me/api/portraits/men/42.jpg",
			AvailableModes: []string{"video", "in-person"},
			Fee:            1200, ConsultationFee: 1200,
			Education:       "MBBS, MD - Internal Medicine, DM - Infectious Diseases",
			Languages:       []string{"English"},
			IsVerified:      true, Reviews: 89,
			Specializations: []string{"Viral Infections", "Bacterial Infections", "Tropical Diseases"},
			ShortBio:        "Specialized in diagnosing and treating infectious diseases",
		},
	}
}
