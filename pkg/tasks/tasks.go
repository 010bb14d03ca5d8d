// Package tasks defines the structure for tasks that are sent to Kafka.
package tasks

import "time"

// TriageReportTask 是一次分诊对话完成报告后发出的事件。
type TriageReportTask struct {
	ReportID            string    `json:"report_id"`
	Symptoms            []string  `json:"symptoms"`
	RelevantSpecialties []string  `json:"relevant_specialties"`
	PossibleConditions  []string  `json:"possible_conditions"`
	UrgencyLevel        string    `json:"urgency_level"`
	EmergencyDetected   bool      `json:"emergency_detected"`
	DoctorIDs           []string  `json:"doctor_ids"`
	AnalysisSource      string    `json:"analysis_source"`
	Report              string    `json:"report"`
	CreatedAt           time.Time `json:"created_at"`
}
