package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"curago-go/internal/config"
	"curago-go/internal/model"
	"curago-go/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTriage(client llm.Client, publisher ReportPublisher) TriageService {
	detector := NewSymptomDetector(client)
	analysis := newTestAnalysis(client)
	chat := NewChatService(client, failingCache{}, "")
	return NewTriageService(detector, analysis, chat, publisher, config.TriageConfig{ChatTopN: 3, ReportTopN: 5})
}

func next(svc TriageService, prev TurnResult, message string) TurnResult {
	return svc.HandleTurn(context.Background(), TurnRequest{Message: message, History: prev.History, State: prev.State})
}

func TestTriageCollectThenReport(t *testing.T) {
	publisher := &recordingPublisher{}
	svc := newTestTriage(downLLM(), publisher)

	first := svc.HandleTurn(context.Background(), TurnRequest{Message: "I have a fever"})
	assert.Equal(t, model.StageCollecting, first.State.Stage)
	assert.Equal(t, []string{"fever"}, first.State.DetectedSymptoms)
	assert.True(t, first.State.CollectingSymptoms)
	assert.Contains(t, first.Response, "I notice you mentioned fever")
	// 介绍语 + 本轮两条
	require.Len(t, first.History, 3)
	assert.Equal(t, introMessage, first.History[0].Text())

	second := next(svc, first, "I also have a cough")
	assert.Equal(t, []string{"fever", "cough"}, second.State.DetectedSymptoms)
	assert.Contains(t, second.Response, "additional symptoms: cough")
	assert.False(t, second.ShowDoctorRecommendations)

	final := next(svc, second, "no that's all")
	assert.Equal(t, model.StageComplete, final.State.Stage)
	assert.True(t, final.State.RecommendDoctors)
	assert.False(t, final.State.CollectingSymptoms)
	assert.Equal(t, []string{"fever", "cough"}, final.State.DetectedSymptoms)
	assert.True(t, final.ShowDoctorRecommendations)
	assert.NotEmpty(t, final.RecommendedDoctors)
	assert.LessOrEqual(t, len(final.RecommendedDoctors), 5)
	assert.Contains(t, final.MedicalReport, "Reported Symptoms: fever, cough")
	assert.Contains(t, final.Response, final.MedicalReport)
	assert.Len(t, final.History, 7)

	require.Len(t, publisher.tasks, 1)
	task := publisher.tasks[0]
	assert.NotEmpty(t, task.ReportID)
	assert.Equal(t, []string{"fever", "cough"}, task.Symptoms)
	assert.Len(t, task.DoctorIDs, len(final.RecommendedDoctors))
	assert.Equal(t, model.SourceHeuristic, task.AnalysisSource)
}

func TestTriageEmergencyIsSticky(t *testing.T) {
	svc := newTestTriage(downLLM(), nil)

	first := svc.HandleTurn(context.Background(), TurnRequest{Message: "I have severe chest pain"})
	assert.True(t, first.State.EmergencyDetected)
	assert.Equal(t, model.UrgencyUrgent, first.State.UrgencyLevel)
	assert.True(t, strings.HasPrefix(first.Response, emergencyNotice))

	second := next(svc, first, "I also have a cough")
	assert.True(t, second.State.EmergencyDetected)
	assert.Equal(t, model.UrgencyUrgent, second.State.UrgencyLevel)
	assert.NotContains(t, second.Response, emergencyNotice)

	final := next(svc, second, "nothing else")
	assert.Equal(t, model.StageComplete, final.State.Stage)
	assert.Contains(t, final.MedicalReport, "Urgency Level: urgent")
	assert.True(t, final.State.EmergencyDetected)
}

func TestTriageFreeChatDegraded(t *testing.T) {
	svc := newTestTriage(downLLM(), nil)

	got := svc.HandleTurn(context.Background(), TurnRequest{Message: "What are your opening hours?"})
	assert.True(t, got.Degraded())
	assert.Equal(t, FallbackApology, got.Response)
	assert.Equal(t, model.StageInitial, got.State.Stage)
	assert.NotNil(t, got.RecommendedDoctors)
	assert.NotNil(t, got.RelevantSpecialties)
}

func TestTriageFreeChatFromModel(t *testing.T) {
	fake := newFakeLLM(func(string) (string, error) { return "We are open 24/7.", nil })
	svc := newTestTriage(fake, nil)

	got := svc.HandleTurn(context.Background(), TurnRequest{Message: "What are your opening hours?"})
	assert.False(t, got.Degraded())
	assert.Equal(t, "We are open 24/7.", got.Response)
}

func TestTriageDoctorRequestDuringCollection(t *testing.T) {
	svc := newTestTriage(downLLM(), nil)
	state := model.ConversationState{DetectedSymptoms: []string{"headache"}, CollectingSymptoms: true}

	got := svc.HandleTurn(context.Background(), TurnRequest{Message: "Can you recommend a doctor?", State: state})
	assert.Equal(t, model.StageComplete, got.State.Stage)
	assert.True(t, got.ShowDoctorRecommendations)
	assert.NotEmpty(t, got.MedicalReport)
}

func TestTriageNoMoreWithoutSymptomsChats(t *testing.T) {
	svc := newTestTriage(downLLM(), nil)
	state := model.ConversationState{Stage: model.StageCollecting, CollectingSymptoms: true}

	got := svc.HandleTurn(context.Background(), TurnRequest{Message: "no", State: state})
	assert.Empty(t, got.MedicalReport)
	assert.False(t, got.ShowDoctorRecommendations)
}

func TestTriageCompleteRelistsDoctors(t *testing.T) {
	publisher := &recordingPublisher{}
	svc := newTestTriage(downLLM(), publisher)
	state := model.ConversationState{
		DetectedSymptoms: []string{"fever"},
		RecommendDoctors: true,
		Stage:            model.StageComplete,
	}

	got := svc.HandleTurn(context.Background(), TurnRequest{Message: "Which doctor should I see?", State: state})
	assert.Equal(t, model.StageComplete, got.State.Stage)
	assert.True(t, got.ShowDoctorRecommendations)
	assert.NotEmpty(t, got.RecommendedDoctors)
	assert.LessOrEqual(t, len(got.RecommendedDoctors), 3)
	assert.Empty(t, got.MedicalReport)
	assert.Empty(t, publisher.tasks)

	chat := svc.HandleTurn(context.Background(), TurnRequest{Message: "thanks!", State: got.State, History: got.History})
	assert.Equal(t, model.StageComplete, chat.State.Stage)
	assert.False(t, chat.ShowDoctorRecommendations)
}

func TestTriagePublishErrorDoesNotFailTurn(t *testing.T) {
	publisher := &recordingPublisher{err: errors.New("broker down")}
	svc := newTestTriage(downLLM(), publisher)
	state := model.ConversationState{Stage: model.StageCollecting, DetectedSymptoms: []string{"rash"}}

	got := svc.HandleTurn(context.Background(), TurnRequest{Message: "that's it", State: state})
	assert.Equal(t, model.StageComplete, got.State.Stage)
	assert.Len(t, publisher.tasks, 1)
}

func TestTriageDetectsEveryTurn(t *testing.T) {
	seen := 0
	detector := fakeDetector{DetectFn: func(string) model.DetectionResult {
		seen++
		return model.DetectionResult{ContainsSymptoms: false, DetectedSymptoms: []string{}}
	}}
	chat := NewChatService(downLLM(), failingCache{}, "")
	svc := NewTriageService(detector, newTestAnalysis(downLLM()), chat, nil, config.TriageConfig{})

	state := model.ConversationState{Stage: model.StageComplete, DetectedSymptoms: []string{"fever"}, RecommendDoctors: true}
	svc.HandleTurn(context.Background(), TurnRequest{Message: "hello", State: state})
	svc.HandleTurn(context.Background(), TurnRequest{Message: "hi"})
	assert.Equal(t, 2, seen)
}

func TestResolveStage(t *testing.T) {
	tests := []struct {
		name  string
		state model.ConversationState
		want  model.Stage
	}{
		{"empty", model.ConversationState{}, model.StageInitial},
		{"explicit", model.ConversationState{Stage: model.StageCollecting}, model.StageCollecting},
		{"reporting resumes as complete", model.ConversationState{Stage: model.StageReporting}, model.StageComplete},
		{"legacy collecting", model.ConversationState{CollectingSymptoms: true}, model.StageCollecting},
		{"legacy symptoms", model.ConversationState{DetectedSymptoms: []string{"cough"}}, model.StageCollecting},
		{"legacy recommended", model.ConversationState{RecommendDoctors: true, DetectedSymptoms: []string{"cough"}}, model.StageComplete},
		{"unknown stage", model.ConversationState{Stage: "bogus"}, model.StageInitial},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, resolveStage(tt.state))
		})
	}
}
