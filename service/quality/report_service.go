/*
 * @module service/quality/report_service
 * @description 完整性评分报告服务，负责评分、保存报告、发布事件和历史查询
 * @architecture 分层架构 - 业务服务层
 * @stateFlow 读取数据集 -> 读取阈值 -> 计算评分 -> 保存报告 -> 发布事件
 * @rules 元数据缺失按空元数据处理；事件发布失败不影响报告保存
 * @dependencies datacensus-service/service/completeness, datacensus-service/service/models, gorm.io/gorm
 * @refs service/quality/report_scheduler.go, service/event/publisher.go, api/controllers/completeness_controller.go
 */

package quality

import (
	"context"
	"datacensus-service/service/completeness"
	"datacensus-service/service/dataset"
	"datacensus-service/service/models"
	"datacensus-service/service/monitoring"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"
)

const (
	DefaultReportLimit = 20
	MaxReportLimit     = 200
)

// DatasetSource 数据集访问接口
type DatasetSource interface {
	GetTable(ctx context.Context, id string) (*completeness.Table, error)
	GetMetadata(ctx context.Context, id string) (completeness.Metadata, error)
	ListIDs(ctx context.Context) ([]string, error)
}

// ThresholdSource 稀疏阈值来源
type ThresholdSource interface {
	GetSparseThreshold() float64
}

// ReportPublisher 报告事件发布接口
type ReportPublisher interface {
	Publish(ctx context.Context, report *models.CompletenessReport) error
}

// EvaluationSummary 批量评分结果汇总
type EvaluationSummary struct {
	Total     int               `json:"total"`
	Succeeded int               `json:"succeeded"`
	Skipped   int               `json:"skipped"`
	Failed    int               `json:"failed"`
	Errors    map[string]string `json:"errors,omitempty"`
}

// ReportService 报告服务
type ReportService struct {
	db         *gorm.DB
	datasets   DatasetSource
	thresholds ThresholdSource
	publisher  ReportPublisher
}

// NewReportService 创建报告服务实例，publisher 可为 nil
func NewReportService(db *gorm.DB, datasets DatasetSource, thresholds ThresholdSource, publisher ReportPublisher) *ReportService {
	return &ReportService{
		db:         db,
		datasets:   datasets,
		thresholds: thresholds,
		publisher:  publisher,
	}
}

// Evaluate 对单个数据集评分并保存报告
func (s *ReportService) Evaluate(ctx context.Context, datasetID, trigger string) (*models.CompletenessReport, error) {
	threshold := completeness.DefaultSparseThreshold
	if s.thresholds != nil {
		threshold = s.thresholds.GetSparseThreshold()
	}

	table, err := s.datasets.GetTable(ctx, datasetID)
	if err != nil {
		return nil, err
	}

	metadata, err := s.datasets.GetMetadata(ctx, datasetID)
	if err != nil {
		if !errors.Is(err, dataset.ErrDatasetNotFound) {
			return nil, err
		}
		metadata = nil
	}

	result, err := completeness.CalculateWithThreshold(table, metadata, datasetID, threshold)
	if err != nil {
		return nil, err
	}

	report := NewReport(result, threshold, trigger)
	if err := s.db.WithContext(ctx).Create(report).Error; err != nil {
		return nil, fmt.Errorf("保存完整性报告失败: %w", err)
	}

	monitoring.RecordReport(trigger)
	monitoring.ObserveScore(report.Score)

	slog.Info("完整性报告已保存",
		"dataset_id", datasetID,
		"report_id", report.ID,
		"score", report.Score,
		"trigger", trigger)

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, report); err != nil {
			slog.Warn("发布完整性报告事件失败", "report_id", report.ID, "error", err)
		}
	}

	return report, nil
}

// EvaluateAll 对所有数据集评分，单个数据集失败不影响其他数据集
func (s *ReportService) EvaluateAll(ctx context.Context, trigger string) (*EvaluationSummary, error) {
	ids, err := s.datasets.ListIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("获取数据集列表失败: %w", err)
	}

	summary := &EvaluationSummary{Total: len(ids), Errors: make(map[string]string)}
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		_, err := s.Evaluate(ctx, id, trigger)
		switch {
		case err == nil:
			summary.Succeeded++
		case errors.Is(err, completeness.ErrEmptyDataset):
			summary.Skipped++
		default:
			summary.Failed++
			summary.Errors[id] = err.Error()
			slog.Error("数据集评分失败", "dataset_id", id, "error", err)
		}
	}
	return summary, nil
}

// ListReports 查询数据集的历史报告，按时间倒序
func (s *ReportService) ListReports(ctx context.Context, datasetID string, limit int) ([]models.CompletenessReport, error) {
	if limit <= 0 {
		limit = DefaultReportLimit
	}
	if limit > MaxReportLimit {
		limit = MaxReportLimit
	}

	var reports []models.CompletenessReport
	err := s.db.WithContext(ctx).
		Where("dataset_id = ?", datasetID).
		Order("created_at DESC").
		Limit(limit).
		Find(&reports).Error
	if err != nil {
		return nil, fmt.Errorf("查询完整性报告失败: %w", err)
	}
	return reports, nil
}

// PurgeReportsBefore 删除早于指定时间的报告
func (s *ReportService) PurgeReportsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := s.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&models.CompletenessReport{})
	if result.Error != nil {
		return 0, fmt.Errorf("删除过期报告失败: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// NewReport 由评分结果构造报告
func NewReport(result completeness.Result, threshold float64, trigger string) *models.CompletenessReport {
	return &models.CompletenessReport{
		DatasetID:          result.DatasetID,
		Metric:             result.Metric,
		Score:              result.Score,
		MaxScore:           result.MaxScore,
		Percentage:         result.Percentage,
		DataCompleteness:   result.Details.DataCompleteness,
		ColumnCompleteness: result.Details.ColumnCompleteness,
		ColumnCoverage:     result.Details.ColumnCoverage,
		TotalCells:         result.Details.TotalCells,
		TotalNulls:         result.Details.TotalNulls,
		NullCellPercentage: result.Details.NullCellPercentage,
		ExpectedColumns:    result.Details.ExpectedColumns,
		ActualColumns:      result.Details.ActualColumns,
		SparseColumns:      result.Details.SparseColumns,
		TotalRows:          result.Details.TotalRows,
		SparseThreshold:    threshold,
		Trigger:            trigger,
	}
}
