// Package kafka 提供了与 Kafka 消息队列交互的功能。
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"curago-go/internal/config"
	"curago-go/pkg/log"
	"curago-go/pkg/tasks"

	"github.com/segmentio/kafka-go"
)

// MessageWriter 是 kafka.Writer 中生产者需要的部分。
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// ReportProducer 将分诊报告事件写入 Kafka。
type ReportProducer struct {
	writer MessageWriter
}

// NewReportProducer 初始化 Kafka 生产者，brokers 为逗号分隔的地址列表。
func NewReportProducer(cfg config.KafkaConfig) *ReportProducer {
	var brokers []string
	for _, b := range strings.Split(cfg.Brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	log.Infof("Kafka 生产者初始化成功, topic=%s", cfg.Topic)
	return NewReportProducerWithWriter(w)
}

// NewReportProducerWithWriter 使用已有的 writer 创建生产者。
func NewReportProducerWithWriter(w MessageWriter) *ReportProducer {
	return &ReportProducer{writer: w}
}

// Publish 发送一个分诊报告事件，以 ReportID 作为消息 key。
func (p *ReportProducer) Publish(ctx context.Context, task tasks.TriageReportTask) error {
	taskBytes, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal triage report task: %w", err)
	}
	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(task.ReportID),
		Value: taskBytes,
	}); err != nil {
		return fmt.Errorf("failed to write triage report task: %w", err)
	}
	return nil
}

// Close 关闭底层 writer。
func (p *ReportProducer) Close() error {
	return p.writer.Close()
}
