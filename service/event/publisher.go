/*
 * @module service/event/publisher
 * @description 完整性报告事件定义与多目标发布器
 * @architecture 发布订阅模式 - 事件发布层
 * @stateFlow 报告保存 -> 构造事件 -> 逐个发布目标发送
 * @rules 单个目标失败不影响其他目标，失败计入指标并合并返回
 * @dependencies datacensus-service/service/models, github.com/google/uuid
 * @refs service/event/kafka_publisher.go, service/event/mqtt_publisher.go, service/quality/report_service.go
 */

package event

import (
	"context"
	"datacensus-service/service/models"
	"datacensus-service/service/monitoring"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventTypeReportCreated 报告创建事件类型
const EventTypeReportCreated = "completeness.report.created"

// ReportEvent 完整性报告事件
type ReportEvent struct {
	EventID    string                     `json:"event_id"`
	EventType  string                     `json:"event_type"`
	DatasetID  string                     `json:"dataset_id"`
	ReportID   string                     `json:"report_id"`
	Score      float64                    `json:"score"`
	Percentage float64                    `json:"percentage"`
	Trigger    string                     `json:"trigger"`
	OccurredAt time.Time                  `json:"occurred_at"`
	Report     *models.CompletenessReport `json:"report"`
}

// NewReportEvent 由报告构造事件
func NewReportEvent(report *models.CompletenessReport) ReportEvent {
	return ReportEvent{
		EventID:    uuid.New().String(),
		EventType:  EventTypeReportCreated,
		DatasetID:  report.DatasetID,
		ReportID:   report.ID,
		Score:      report.Score,
		Percentage: report.Percentage,
		Trigger:    report.Trigger,
		OccurredAt: time.Now().UTC(),
		Report:     report,
	}
}

func encodeReportEvent(report *models.CompletenessReport) ([]byte, error) {
	payload, err := json.Marshal(NewReportEvent(report))
	if err != nil {
		return nil, fmt.Errorf("序列化报告事件失败: %w", err)
	}
	return payload, nil
}

// Publisher 报告事件发布目标
type Publisher interface {
	Name() string
	Publish(ctx context.Context, report *models.CompletenessReport) error
	Close() error
}

// MultiPublisher 向多个目标发布报告事件
type MultiPublisher struct {
	publishers []Publisher
}

// NewMultiPublisher 创建多目标发布器
func NewMultiPublisher(publishers ...Publisher) *MultiPublisher {
	return &MultiPublisher{publishers: publishers}
}

// Len 发布目标数量
func (m *MultiPublisher) Len() int {
	return len(m.publishers)
}

// Publish 依次发布到所有目标
func (m *MultiPublisher) Publish(ctx context.Context, report *models.CompletenessReport) error {
	var errs []error
	for _, p := range m.publishers {
		if err := p.Publish(ctx, report); err != nil {
			monitoring.RecordPublishFailure(p.Name())
			errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// Close 关闭所有目标
func (m *MultiPublisher) Close() error {
	var errs []error
	for _, p := range m.publishers {
		if err := p.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
		}
	}
	return errors.Join(errs...)
}
