package service

import (
	"testing"

	"curago-go/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestHeuristicUrgency(t *testing.T) {
	tests := []struct {
		symptoms []string
		want     model.UrgencyLevel
	}{
		{[]string{"fever", "Chest Pain"}, model.UrgencyUrgent},
		{[]string{"sudden severe headache"}, model.UrgencyUrgent},
		{[]string{"anaphylaxis"}, model.UrgencyUrgent},
		{[]string{"mild fever"}, model.UrgencyModerate},
		{[]string{"abdominal pain"}, model.UrgencyModerate},
		{[]string{"runny nose"}, model.UrgencyNonUrgent},
		{nil, model.UrgencyNonUrgent},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HeuristicUrgency(tt.symptoms), "%v", tt.symptoms)
	}
}

func TestHeuristicConditions(t *testing.T) {
	assert.Equal(t, []string{"General malaise"}, HeuristicConditions([]string{"itchy elbow"}))

	got := HeuristicConditions([]string{"fever", "cough"})
	assert.Equal(t, []string{"Common cold", "Influenza", "COVID-19", "Infection", "Bronchitis", "Asthma"}, got)
}

func TestHeuristicWatchListExcludesReported(t *testing.T) {
	got := HeuristicWatchList([]string{"cough", "chest pain"})
	assert.NotContains(t, got, "chest pain")
	assert.Equal(t, []string{"shortness of breath", "wheezing", "throat pain", "sweating", "nausea", "jaw or arm pain"}, got)
}

func TestIsEmergency(t *testing.T) {
	assert.True(t, IsEmergency([]string{"severe chest pain"}))
	assert.True(t, IsEmergency([]string{"possible drug overdose"}))
	assert.False(t, IsEmergency([]string{"fever", "cough"}))
	assert.False(t, IsEmergency(nil))
}

func TestBuildMedicalReport(t *testing.T) {
	assert.Equal(t, "No symptoms reported.", BuildMedicalReport(nil, model.AIAnalysis{}))

	report := BuildMedicalReport([]string{"fever", "cough"}, model.AIAnalysis{
		PossibleConditions:        []string{"Influenza"},
		UrgencyLevel:              model.UrgencyModerate,
		AdditionalSymptomsToWatch: []string{"chills"},
	})
	assert.Contains(t, report, "Reported Symptoms: fever, cough")
	assert.Contains(t, report, "Possible Conditions: Influenza")
	assert.Contains(t, report, "Urgency Level: moderate")
	assert.Contains(t, report, "Additional Symptoms to Watch: chills")
	assert.Contains(t, report, "in the next few days")

	urgent := BuildMedicalReport([]string{"chest pain"}, model.AIAnalysis{UrgencyLevel: model.UrgencyUrgent})
	assert.Contains(t, urgent, "IMPORTANT")
}
