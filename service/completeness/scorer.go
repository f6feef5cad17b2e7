/*
 * @module service/completeness/scorer
 * @description 完整性（completitud）评分：单元格空值密度、稀疏列比例、声明列覆盖率三项等权合成
 * @architecture 领域服务层 - 纯函数，无状态、无并发、无持久化
 * @documentReference dev_docs/completeness_metric.md
 * @stateFlow 校验数据集 -> 统计空值 -> 计算三项子指标 -> 合成得分 -> 返回结果
 * @rules 子指标与总分均限制在 [0,10]；得分保留两位小数（银行家舍入）；百分比由取整后的得分计算
 * @dependencies math, github.com/spf13/cast
 * @refs api/controllers/completeness_controller.go, service/quality/report_service.go
 */

package completeness

import (
	"fmt"
	"math"

	"github.com/spf13/cast"
)

const (
	// MetricName 指标名称
	MetricName = "completitud"
	// MaxScore 满分
	MaxScore = 10.0
	// DefaultSparseThreshold 稀疏列默认阈值
	DefaultSparseThreshold = 0.5

	// MetadataExpectedColumnsKey 元数据中声明列数的字段
	MetadataExpectedColumnsKey = "total_columnas"
	// MetadataExpectedColumnsAlias 声明列数字段的别名
	MetadataExpectedColumnsAlias = "expected_columns"

	nullDensityExponent   = 1.5
	sparseColumnsExponent = 2.0
	subMeasureCount       = 3.0
	percentageScaleFactor = 100.0 / MaxScore
)

// Metadata 数据集元数据，评分只读取声明列数
type Metadata map[string]any

// DataCompleteness 单元格级完整性：10 * (1 - (空值/单元格)^1.5)
func DataCompleteness(totalNulls, totalCells int) float64 {
	if totalCells == 0 {
		return MaxScore
	}
	ratio := float64(totalNulls) / float64(totalCells)
	return clamp(MaxScore * (1 - math.Pow(ratio, nullDensityExponent)))
}

// ColumnCompleteness 列级完整性：10 * (1 - (稀疏列/总列数)^2)
func ColumnCompleteness(sparseColumns, totalColumns int) float64 {
	if totalColumns == 0 {
		return MaxScore
	}
	ratio := float64(sparseColumns) / float64(totalColumns)
	return clamp(MaxScore * (1 - math.Pow(ratio, sparseColumnsExponent)))
}

// ColumnCoverage 列覆盖率：10 * 声明列数/实际列数，实际列数为 0 时得 0
func ColumnCoverage(expectedColumns, actualColumns int) float64 {
	if actualColumns == 0 {
		return 0
	}
	return clamp(MaxScore * float64(expectedColumns) / float64(actualColumns))
}

// IsSparse 列空值比例是否达到阈值
func IsSparse(columnNulls, rows int, threshold float64) bool {
	if rows == 0 {
		return false
	}
	return float64(columnNulls)/float64(rows) >= threshold
}

// CountSparseColumns 按各列空值数统计稀疏列数量
func CountSparseColumns(columnNulls []int, rows int, threshold float64) int {
	sparse := 0
	for _, nulls := range columnNulls {
		if IsSparse(nulls, rows, threshold) {
			sparse++
		}
	}
	return sparse
}

// ExpectedColumns 读取元数据中的声明列数，缺省为实际列数
func ExpectedColumns(metadata Metadata, actualColumns int) (int, error) {
	key := MetadataExpectedColumnsKey
	raw, ok := metadata[key]
	if !ok {
		key = MetadataExpectedColumnsAlias
		raw, ok = metadata[key]
	}
	if !ok || raw == nil {
		return actualColumns, nil
	}

	n, err := cast.ToIntE(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%v 不是整数", ErrInvalidMetadata, key, raw)
	}
	return n, nil
}

// Calculate 使用默认稀疏阈值计算完整性得分
func Calculate(table *Table, metadata Metadata, datasetID string) (Result, error) {
	return CalculateWithThreshold(table, metadata, datasetID, DefaultSparseThreshold)
}

// CalculateWithThreshold 使用指定稀疏阈值计算完整性得分
func CalculateWithThreshold(table *Table, metadata Metadata, datasetID string, threshold float64) (Result, error) {
	if table == nil || table.RowCount() == 0 {
		return Result{}, ErrEmptyDataset
	}
	if err := table.Validate(); err != nil {
		return Result{}, err
	}

	rows := table.RowCount()
	actualColumns := table.ColumnCount()
	totalCells := table.CellCount()

	expectedColumns, err := ExpectedColumns(metadata, actualColumns)
	if err != nil {
		return Result{}, err
	}

	totalNulls := 0
	columnNulls := make([]int, len(table.Columns))
	for i, col := range table.Columns {
		columnNulls[i] = CountNulls(col).Total()
		totalNulls += columnNulls[i]
	}
	sparseColumns := CountSparseColumns(columnNulls, rows, threshold)

	dataScore := DataCompleteness(totalNulls, totalCells)
	columnScore := ColumnCompleteness(sparseColumns, actualColumns)
	coverageScore := ColumnCoverage(expectedColumns, actualColumns)

	score := round2(clamp((dataScore + columnScore + coverageScore) / subMeasureCount))

	return Result{
		DatasetID:  datasetID,
		Metric:     MetricName,
		Score:      score,
		MaxScore:   MaxScore,
		Percentage: round2(score * percentageScaleFactor),
		Details: Details{
			DataCompleteness:   round2(dataScore),
			ColumnCompleteness: round2(columnScore),
			ColumnCoverage:     round2(coverageScore),
			TotalCells:         totalCells,
			TotalNulls:         totalNulls,
			NullCellPercentage: round2(float64(totalNulls) / float64(totalCells) * 100),
			ExpectedColumns:    expectedColumns,
			ActualColumns:      actualColumns,
			SparseColumns:      sparseColumns,
			TotalRows:          rows,
		},
	}, nil
}

// ColumnNullStats 逐列空值统计，百分比保留两位小数
func ColumnNullStats(table *Table, threshold float64) ([]ColumnStats, error) {
	if table == nil || table.RowCount() == 0 {
		return nil, ErrEmptyDataset
	}
	if err := table.Validate(); err != nil {
		return nil, err
	}

	rows := table.RowCount()
	stats := make([]ColumnStats, 0, len(table.Columns))
	for _, col := range table.Columns {
		counts := CountNulls(col)
		total := counts.Total()
		stats = append(stats, ColumnStats{
			Name:           col.Name,
			Kind:           col.Kind,
			Missing:        counts.Missing,
			Empty:          counts.Empty,
			Whitespace:     counts.Whitespace,
			TotalNulls:     total,
			NullPercentage: round2(float64(total) / float64(rows) * 100),
			Sparse:         IsSparse(total, rows, threshold),
		})
	}
	return stats, nil
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(MaxScore, v))
}

// round2 保留两位小数，恰好居中时取偶数
func round2(v float64) float64 {
	return math.RoundToEven(v*100) / 100
}
