package service

import (
	"context"

	"curago-go/pkg/tasks"
)

// ReportPublisher 将完成的分诊报告投递到下游。
type ReportPublisher interface {
	Publish(ctx context.Context, task tasks.TriageReportTask) error
}

type noopReportPublisher struct{}

// NewNoopReportPublisher 返回一个丢弃所有事件的发布者，用于未启用 Kafka 的部署。
func NewNoopReportPublisher() ReportPublisher {
	return noopReportPublisher{}
}

func (noopReportPublisher) Publish(context.Context, tasks.TriageReportTask) error {
	return nil
}
