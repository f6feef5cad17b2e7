/*
 * @module service/dataset/dataset_service
 * @description 数据集服务：数据集的创建、查询、元数据更新、删除，以及按列组装供评分使用的表格
 * @architecture 分层架构 - 业务服务层
 * @documentReference dev_docs/completeness_metric.md
 * @stateFlow 请求校验 -> 单元格规范化 -> 事务写入数据集与记录 -> 变更通知
 * @rules 列名唯一且非空；每行值个数等于列数；数值列只接受数字；写入后在 postgres 上发出 pg_notify
 * @dependencies gorm.io/gorm, github.com/spf13/cast
 * @refs service/dataset/csv_importer.go, api/controllers/dataset_controller.go, service/event/dataset_listener.go
 */

package dataset

import (
	"context"
	"datacensus-service/service/completeness"
	"datacensus-service/service/models"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/spf13/cast"
	"gorm.io/gorm"
)

var (
	// ErrDatasetNotFound 数据集不存在
	ErrDatasetNotFound = errors.New("数据集不存在")
	// ErrDatasetExists 数据集ID已存在
	ErrDatasetExists = errors.New("数据集已存在")
	// ErrInvalidDataset 数据集定义或数据无效
	ErrInvalidDataset = errors.New("数据集无效")
)

const recordBatchSize = 500

// ColumnDefinition 列定义
type ColumnDefinition struct {
	Name string `json:"name" example:"edad"`
	Kind string `json:"kind" example:"numeric"` // numeric, text, bool
}

// CreateDatasetRequest 创建数据集请求
type CreateDatasetRequest struct {
	ID          string                 `json:"id,omitempty" example:"personas-001"`
	Name        string                 `json:"name" example:"Personas"`
	Description string                 `json:"description"`
	Columns     []ColumnDefinition     `json:"columns"`
	Rows        [][]interface{}        `json:"rows"`
	Metadata    map[string]interface{} `json:"metadata"`

	SourceFormat string `json:"-"`
	Encoding     string `json:"-"`
	Checksum     string `json:"-"`
}

// Service 数据集服务
type Service struct {
	db *gorm.DB
}

// NewService 创建数据集服务
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Create 创建数据集
func (s *Service) Create(ctx context.Context, req *CreateDatasetRequest) (*models.Dataset, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("%w: 名称不能为空", ErrInvalidDataset)
	}
	columns, err := validateColumns(req.Columns)
	if err != nil {
		return nil, err
	}
	if err := validateMetadata(req.Metadata, len(columns)); err != nil {
		return nil, err
	}

	records := make([]models.DatasetRecord, 0, len(req.Rows))
	for i, row := range req.Rows {
		if len(row) != len(columns) {
			return nil, fmt.Errorf("%w: 第 %d 行有 %d 个值，期望 %d 个", ErrInvalidDataset, i+1, len(row), len(columns))
		}
		values := make(models.JSONBGenericArray, len(row))
		for j, cell := range row {
			v, err := normalizeCell(columns[j], cell)
			if err != nil {
				return nil, fmt.Errorf("%w: 第 %d 行列 %s: %v", ErrInvalidDataset, i+1, columns[j].Name, err)
			}
			values[j] = v
		}
		records = append(records, models.DatasetRecord{RowIndex: i, Values: values})
	}

	sourceFormat := req.SourceFormat
	if sourceFormat == "" {
		sourceFormat = "json"
	}
	dataset := &models.Dataset{
		ID:           strings.TrimSpace(req.ID),
		Name:         strings.TrimSpace(req.Name),
		Description:  req.Description,
		Columns:      columns,
		RowCount:     len(records),
		Metadata:     models.JSONB(req.Metadata),
		SourceFormat: sourceFormat,
		Encoding:     req.Encoding,
		Checksum:     req.Checksum,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if dataset.ID != "" {
			var count int64
			if err := tx.Model(&models.Dataset{}).Where("id = ?", dataset.ID).Count(&count).Error; err != nil {
				return fmt.Errorf("检查数据集失败: %w", err)
			}
			if count > 0 {
				return fmt.Errorf("%w: %s", ErrDatasetExists, dataset.ID)
			}
		}
		if err := tx.Create(dataset).Error; err != nil {
			return fmt.Errorf("保存数据集失败: %w", err)
		}
		for i := range records {
			records[i].DatasetID = dataset.ID
		}
		if len(records) > 0 {
			if err := tx.CreateInBatches(records, recordBatchSize).Error; err != nil {
				return fmt.Errorf("保存数据集记录失败: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("数据集已创建",
		"dataset_id", dataset.ID,
		"columns", len(columns),
		"rows", len(records),
		"source_format", sourceFormat)

	s.notifyChange(ctx, dataset.ID)
	return dataset, nil
}

// Get 获取数据集
func (s *Service) Get(ctx context.Context, id string) (*models.Dataset, error) {
	var dataset models.Dataset
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&dataset).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrDatasetNotFound, id)
		}
		return nil, fmt.Errorf("查询数据集失败: %w", err)
	}
	return &dataset, nil
}

// List 分页查询数据集，按创建时间倒序
func (s *Service) List(ctx context.Context, page, size int) ([]models.Dataset, int64, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}

	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Dataset{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("统计数据集失败: %w", err)
	}

	var datasets []models.Dataset
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Offset((page - 1) * size).
		Limit(size).
		Find(&datasets).Error
	if err != nil {
		return nil, 0, fmt.Errorf("查询数据集列表失败: %w", err)
	}
	return datasets, total, nil
}

// ListIDs 获取全部数据集ID
func (s *Service) ListIDs(ctx context.Context) ([]string, error) {
	var ids []string
	if err := s.db.WithContext(ctx).Model(&models.Dataset{}).Order("id").Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("查询数据集ID失败: %w", err)
	}
	return ids, nil
}

// UpdateMetadata 替换数据集元数据
func (s *Service) UpdateMetadata(ctx context.Context, id string, metadata map[string]interface{}) (*models.Dataset, error) {
	dataset, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := validateMetadata(metadata, len(dataset.Columns)); err != nil {
		return nil, err
	}

	dataset.Metadata = models.JSONB(metadata)
	if err := s.db.WithContext(ctx).Model(dataset).Update("metadata", dataset.Metadata).Error; err != nil {
		return nil, fmt.Errorf("更新数据集元数据失败: %w", err)
	}

	slog.Info("数据集元数据已更新", "dataset_id", id)
	s.notifyChange(ctx, id)
	return dataset, nil
}

// Delete 删除数据集及其记录
func (s *Service) Delete(ctx context.Context, id string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("dataset_id = ?", id).Delete(&models.DatasetRecord{}).Error; err != nil {
			return fmt.Errorf("删除数据集记录失败: %w", err)
		}
		result := tx.Where("id = ?", id).Delete(&models.Dataset{})
		if result.Error != nil {
			return fmt.Errorf("删除数据集失败: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: %s", ErrDatasetNotFound, id)
		}
		return nil
	})
	if err != nil {
		return err
	}

	slog.Info("数据集已删除", "dataset_id", id)
	s.notifyChange(ctx, id)
	return nil
}

// GetTable 按列组装数据集，供完整性评分使用
func (s *Service) GetTable(ctx context.Context, id string) (*completeness.Table, error) {
	dataset, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	var records []models.DatasetRecord
	err = s.db.WithContext(ctx).
		Where("dataset_id = ?", id).
		Order("row_index").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("查询数据集记录失败: %w", err)
	}

	columns := make([]completeness.Column, len(dataset.Columns))
	for i, c := range dataset.Columns {
		columns[i] = completeness.Column{
			Name:   c.Name,
			Kind:   completeness.ColumnKind(c.Kind),
			Values: make([]any, 0, len(records)),
		}
	}
	for _, record := range records {
		if len(record.Values) != len(columns) {
			return nil, fmt.Errorf("数据集 %s 第 %d 行已损坏: 有 %d 个值，期望 %d 个",
				id, record.RowIndex+1, len(record.Values), len(columns))
		}
		for i, v := range record.Values {
			columns[i].Values = append(columns[i].Values, v)
		}
	}

	return completeness.NewTable(columns...)
}

// GetMetadata 获取数据集元数据
func (s *Service) GetMetadata(ctx context.Context, id string) (completeness.Metadata, error) {
	dataset, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return completeness.Metadata(dataset.Metadata), nil
}

// notifyChange 在 postgres 上发出数据集变更通知，失败只记录日志
func (s *Service) notifyChange(ctx context.Context, id string) {
	if s.db.Dialector.Name() != "postgres" {
		return
	}
	if err := s.db.WithContext(ctx).Exec("SELECT pg_notify(?, ?)", models.DatasetChangeChannel, id).Error; err != nil {
		slog.Warn("发送数据集变更通知失败", "dataset_id", id, "error", err)
	}
}

func validateColumns(defs []ColumnDefinition) (models.DatasetColumnList, error) {
	if len(defs) == 0 {
		return nil, fmt.Errorf("%w: 至少需要一列", ErrInvalidDataset)
	}

	seen := make(map[string]bool, len(defs))
	columns := make(models.DatasetColumnList, 0, len(defs))
	for i, def := range defs {
		name := strings.TrimSpace(def.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: 第 %d 列名称为空", ErrInvalidDataset, i+1)
		}
		if seen[name] {
			return nil, fmt.Errorf("%w: 列名重复 %s", ErrInvalidDataset, name)
		}
		seen[name] = true

		kind := completeness.ColumnKind(strings.ToLower(strings.TrimSpace(def.Kind)))
		if kind == "" {
			kind = completeness.KindText
		}
		if !kind.Valid() {
			return nil, fmt.Errorf("%w: 列 %s 的类型 %q 不受支持", ErrInvalidDataset, name, def.Kind)
		}
		columns = append(columns, models.DatasetColumn{Name: name, Kind: string(kind)})
	}
	return columns, nil
}

func validateMetadata(metadata map[string]interface{}, actualColumns int) error {
	if _, err := completeness.ExpectedColumns(metadata, actualColumns); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDataset, err)
	}
	return nil
}

// normalizeCell 按列类型规范化单元格，nil 保持为缺失值
func normalizeCell(column models.DatasetColumn, cell interface{}) (interface{}, error) {
	if cell == nil {
		return nil, nil
	}

	switch completeness.ColumnKind(column.Kind) {
	case completeness.KindNumeric:
		if s, ok := cell.(string); ok && strings.TrimSpace(s) == "" {
			return nil, nil
		}
		v, err := cast.ToFloat64E(cell)
		if err != nil {
			return nil, fmt.Errorf("值 %v 不是数字", cell)
		}
		if math.IsNaN(v) {
			return nil, nil
		}
		if math.IsInf(v, 0) {
			return nil, fmt.Errorf("值 %v 超出可存储范围", cell)
		}
		return v, nil
	case completeness.KindBool:
		v, err := cast.ToBoolE(cell)
		if err != nil {
			return nil, fmt.Errorf("值 %v 不是布尔值", cell)
		}
		return v, nil
	default:
		if s, ok := cell.(string); ok {
			return s, nil
		}
		return cast.ToString(cell), nil
	}
}
