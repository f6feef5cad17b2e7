/*
 * @module service/event/kafka_publisher
 * @description Kafka报告事件发布器，以数据集ID作为消息Key
 * @architecture 适配器模式 - 封装 kafka-go Writer
 * @dependencies github.com/segmentio/kafka-go
 */

package event

import (
	"context"
	"datacensus-service/service/models"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

const (
	kafkaWriteTimeout = 10 * time.Second
	// 报告逐条同步发送，不等待凑批
	kafkaBatchTimeout = 10 * time.Millisecond
)

// messageWriter kafka.Writer 的发送接口
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher Kafka发布器
type KafkaPublisher struct {
	writer messageWriter
	topic  string
}

// NewKafkaPublisher 创建Kafka发布器
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	writer := newKafkaWriter(brokers, topic)

	slog.Info("Kafka报告发布器初始化成功", "brokers", brokers, "topic", topic)
	return &KafkaPublisher{writer: writer, topic: topic}
}

func newKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		RequiredAcks:           kafka.RequireOne,
		BatchTimeout:           kafkaBatchTimeout,
		WriteTimeout:           kafkaWriteTimeout,
		AllowAutoTopicCreation: true,
	}
}

// Name 发布目标名称
func (p *KafkaPublisher) Name() string {
	return "kafka"
}

// Publish 发送报告事件
func (p *KafkaPublisher) Publish(ctx context.Context, report *models.CompletenessReport) error {
	payload, err := encodeReportEvent(report)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, kafkaWriteTimeout)
	defer cancel()

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(report.DatasetID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(EventTypeReportCreated)},
		},
	})
	if err != nil {
		return fmt.Errorf("发送Kafka消息失败: %w", err)
	}

	slog.Debug("报告事件已发送到Kafka", "topic", p.topic, "dataset_id", report.DatasetID)
	return nil
}

// Close 关闭Writer
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
