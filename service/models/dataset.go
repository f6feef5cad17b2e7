/*
 * @module service/models/dataset
 * @description 数据集模型：数据集元信息、列定义与按行存储的记录
 * @architecture 数据模型层
 * @documentReference dev_docs/completeness_metric.md
 * @stateFlow 数据集创建/导入 -> 记录存储 -> 按列组装 -> 完整性评分
 * @rules 记录的 Values 顺序与 Columns 一致；删除数据集时一并删除记录
 * @dependencies gorm.io/gorm, github.com/google/uuid
 * @refs service/dataset/dataset_service.go
 */

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DatasetChangeChannel 数据集变更通知的 postgres 频道
const DatasetChangeChannel = "dataset_changes"

// DatasetColumn 列定义
type DatasetColumn struct {
	Name string `json:"name"`
	Kind string `json:"kind"` // numeric, text, bool
}

// Dataset 数据集
type Dataset struct {
	ID           string            `gorm:"type:varchar(64);primaryKey" json:"id"`
	Name         string            `gorm:"type:varchar(255);not null" json:"name"`
	Description  string            `gorm:"type:text" json:"description"`
	Columns      DatasetColumnList `gorm:"type:jsonb" json:"columns"`
	RowCount     int               `gorm:"default:0" json:"row_count"`
	Metadata     JSONB             `gorm:"type:jsonb" json:"metadata"`
	SourceFormat string            `gorm:"type:varchar(20)" json:"source_format"` // json, csv, demo
	Encoding     string            `gorm:"type:varchar(20)" json:"encoding,omitempty"`
	Checksum     string            `gorm:"type:varchar(128)" json:"checksum,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// TableName 指定表名
func (Dataset) TableName() string {
	return "datasets"
}

// BeforeCreate 创建前钩子
func (d *Dataset) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	return nil
}

// DatasetRecord 数据集的一行
type DatasetRecord struct {
	ID        uint              `gorm:"primaryKey;autoIncrement" json:"-"`
	DatasetID string            `gorm:"type:varchar(64);not null;index:idx_dataset_row,priority:1" json:"dataset_id"`
	RowIndex  int               `gorm:"not null;index:idx_dataset_row,priority:2" json:"row_index"`
	Values    JSONBGenericArray `gorm:"type:jsonb" json:"values"`
}

// TableName 指定表名
func (DatasetRecord) TableName() string {
	return "dataset_records"
}
