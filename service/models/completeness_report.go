/*
 * @module service/models/completeness_report
 * @description 完整性评分报告模型，保存每次评分的得分与诊断明细
 * @architecture 数据模型层
 * @stateFlow 触发评分 -> 保存报告 -> 发布事件 -> 历史查询
 * @rules 报告只追加，不修改
 * @dependencies gorm.io/gorm, github.com/google/uuid
 * @refs service/quality/report_service.go
 */

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ReportTriggerManual   = "manual"
	ReportTriggerSchedule = "schedule"
	ReportTriggerChange   = "change"
)

// CompletenessReport 完整性评分报告
type CompletenessReport struct {
	ID                 string    `gorm:"type:varchar(50);primaryKey" json:"id"`
	DatasetID          string    `gorm:"type:varchar(64);not null;index" json:"dataset_id"`
	Metric             string    `gorm:"type:varchar(30);not null" json:"metric"`
	Score              float64   `json:"score"`
	MaxScore           float64   `json:"max_score"`
	Percentage         float64   `json:"percentage"`
	DataCompleteness   float64   `json:"data_completeness"`
	ColumnCompleteness float64   `json:"column_completeness"`
	ColumnCoverage     float64   `json:"column_coverage"`
	TotalCells         int       `json:"total_cells"`
	TotalNulls         int       `json:"total_nulls"`
	NullCellPercentage float64   `json:"null_cell_percentage"`
	ExpectedColumns    int       `json:"expected_columns"`
	ActualColumns      int       `json:"actual_columns"`
	SparseColumns      int       `json:"sparse_columns"`
	TotalRows          int       `json:"total_rows"`
	SparseThreshold    float64   `json:"sparse_threshold"`
	Trigger            string    `gorm:"type:varchar(20);not null" json:"trigger"` // manual, schedule, change
	CreatedAt          time.Time `gorm:"index" json:"created_at"`
}

// TableName 指定表名
func (CompletenessReport) TableName() string {
	return "completeness_reports"
}

// BeforeCreate 创建前钩子
func (r *CompletenessReport) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return nil
}
