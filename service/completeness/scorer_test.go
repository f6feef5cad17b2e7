/*
 * @module service/completeness/scorer_test
 * @description 完整性评分单元测试
 * @architecture 测试层 - 单元测试
 */

package completeness

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fullColumns 生成 n 列、每列 rows 行且无空值的数值列
func fullColumns(n, rows int) []Column {
	columns := make([]Column, 0, n)
	for i := 0; i < n; i++ {
		values := make([]any, rows)
		for r := range values {
			values[r] = float64(r)
		}
		columns = append(columns, Column{Name: string(rune('a' + i)), Kind: KindNumeric, Values: values})
	}
	return columns
}

func TestDataCompleteness(t *testing.T) {
	testCases := []struct {
		name     string
		nulls    int
		cells    int
		expected float64
	}{
		{name: "无空值", nulls: 0, cells: 100, expected: 10},
		{name: "全部为空", nulls: 100, cells: 100, expected: 0},
		{name: "零单元格", nulls: 0, cells: 0, expected: 10},
		{name: "百分之一空值", nulls: 100, cells: 10000, expected: 9.99},
		{name: "半数空值", nulls: 50, cells: 100, expected: 10 * (1 - math.Pow(0.5, 1.5))},
		{name: "空值多于单元格时截断为0", nulls: 150, cells: 100, expected: 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.expected, DataCompleteness(tc.nulls, tc.cells), 1e-9)
		})
	}
}

func TestColumnCompleteness(t *testing.T) {
	testCases := []struct {
		name     string
		sparse   int
		total    int
		expected float64
	}{
		{name: "没有稀疏列", sparse: 0, total: 10, expected: 10},
		{name: "半数稀疏列", sparse: 5, total: 10, expected: 7.5},
		{name: "全部稀疏", sparse: 10, total: 10, expected: 0},
		{name: "零列", sparse: 0, total: 0, expected: 10},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.expected, ColumnCompleteness(tc.sparse, tc.total), 1e-9)
		})
	}
}

func TestColumnCoverage(t *testing.T) {
	testCases := []struct {
		name     string
		expected int
		actual   int
		score    float64
	}{
		{name: "声明与实际一致", expected: 12, actual: 12, score: 10},
		{name: "声明少于实际", expected: 10, actual: 12, score: 100.0 / 12},
		{name: "声明多于实际时截断为10", expected: 13, actual: 12, score: 10},
		{name: "声明为0", expected: 0, actual: 5, score: 0},
		{name: "声明为负数时截断为0", expected: -3, actual: 5, score: 0},
		{name: "实际为0", expected: 5, actual: 0, score: 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.score, ColumnCoverage(tc.expected, tc.actual), 1e-9)
		})
	}
}

func TestCountNulls(t *testing.T) {
	testCases := []struct {
		name     string
		column   Column
		expected NullCounts
	}{
		{
			name:     "文本列空串计两次",
			column:   Column{Name: "ciudad", Kind: KindText, Values: []any{"a", "", "  ", nil, "b"}},
			expected: NullCounts{Missing: 1, Empty: 1, Whitespace: 2},
		},
		{
			name:     "数值列NaN视为缺失",
			column:   Column{Name: "edad", Kind: KindNumeric, Values: []any{1.0, nil, math.NaN(), 3}},
			expected: NullCounts{Missing: 2},
		},
		{
			name:     "数值列不检查空串",
			column:   Column{Name: "n", Kind: KindNumeric, Values: []any{"", " ", 2}},
			expected: NullCounts{},
		},
		{
			name:     "布尔列",
			column:   Column{Name: "activo", Kind: KindBool, Values: []any{true, nil, false}},
			expected: NullCounts{Missing: 1},
		},
		{
			name:     "文本列中的非字符串值",
			column:   Column{Name: "mixto", Kind: KindText, Values: []any{5, "\t", "x"}},
			expected: NullCounts{Whitespace: 1},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			counts := CountNulls(tc.column)
			assert.Equal(t, tc.expected, counts)
			assert.Equal(t, tc.expected.Missing+tc.expected.Empty+tc.expected.Whitespace, counts.Total())
		})
	}
}

func TestCalculate_SparseColumnExample(t *testing.T) {
	table, err := NewTable(
		Column{Name: "A", Kind: KindNumeric, Values: []any{1, 2, nil, nil, nil}},
		Column{Name: "B", Kind: KindNumeric, Values: []any{1, 2, 3, 4, 5}},
	)
	require.NoError(t, err)

	result, err := Calculate(table, nil, "ds-1")
	require.NoError(t, err)

	assert.Equal(t, "ds-1", result.DatasetID)
	assert.Equal(t, MetricName, result.Metric)
	assert.Equal(t, 10.0, result.MaxScore)
	assert.Equal(t, 1, result.Details.SparseColumns)
	assert.Equal(t, 7.5, result.Details.ColumnCompleteness)
	assert.Equal(t, 8.36, result.Details.DataCompleteness)
	assert.Equal(t, 10.0, result.Details.ColumnCoverage)
	assert.Equal(t, 10, result.Details.TotalCells)
	assert.Equal(t, 3, result.Details.TotalNulls)
	assert.Equal(t, 30.0, result.Details.NullCellPercentage)
	assert.Equal(t, 2, result.Details.ExpectedColumns)
	assert.Equal(t, 2, result.Details.ActualColumns)
	assert.Equal(t, 5, result.Details.TotalRows)
	assert.Equal(t, 8.62, result.Score)
	assert.Equal(t, 86.2, result.Percentage)
}

func TestCalculate_EmptyDataset(t *testing.T) {
	testCases := []struct {
		name  string
		table *Table
	}{
		{name: "nil数据集", table: nil},
		{name: "没有列", table: &Table{}},
		{name: "没有行", table: &Table{Columns: []Column{{Name: "a", Kind: KindText, Values: []any{}}}}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Calculate(tc.table, Metadata{MetadataExpectedColumnsKey: 3}, "vacio")
			assert.ErrorIs(t, err, ErrEmptyDataset)
		})
	}
}

func TestCalculate_RaggedTable(t *testing.T) {
	_, err := NewTable(
		Column{Name: "a", Kind: KindNumeric, Values: []any{1, 2}},
		Column{Name: "b", Kind: KindNumeric, Values: []any{1}},
	)
	assert.ErrorIs(t, err, ErrRaggedTable)

	table := &Table{Columns: []Column{
		{Name: "a", Kind: KindNumeric, Values: []any{1, 2}},
		{Name: "b", Kind: KindNumeric, Values: []any{1}},
	}}
	_, err = Calculate(table, nil, "ragged")
	assert.ErrorIs(t, err, ErrRaggedTable)
}

func TestCalculate_Metadata(t *testing.T) {
	table := &Table{Columns: fullColumns(12, 4)}

	testCases := []struct {
		name             string
		metadata         Metadata
		expectedColumns  int
		expectedCoverage float64
		expectedScore    float64
		expectError      bool
	}{
		{name: "无元数据", metadata: nil, expectedColumns: 12, expectedCoverage: 10, expectedScore: 10},
		{name: "声明列数一致", metadata: Metadata{"total_columnas": 12}, expectedColumns: 12, expectedCoverage: 10, expectedScore: 10},
		{name: "声明10列实际12列", metadata: Metadata{"total_columnas": 10}, expectedColumns: 10, expectedCoverage: 8.33, expectedScore: 9.44},
		{name: "JSON数字", metadata: Metadata{"total_columnas": float64(6)}, expectedColumns: 6, expectedCoverage: 5, expectedScore: 8.33},
		{name: "字符串数字", metadata: Metadata{"total_columnas": "12"}, expectedColumns: 12, expectedCoverage: 10, expectedScore: 10},
		{name: "别名字段", metadata: Metadata{"expected_columns": 10}, expectedColumns: 10, expectedCoverage: 8.33, expectedScore: 9.44},
		{name: "字段为nil时取实际列数", metadata: Metadata{"total_columnas": nil}, expectedColumns: 12, expectedCoverage: 10, expectedScore: 10},
		{name: "无关字段", metadata: Metadata{"dataset_name": "Personas"}, expectedColumns: 12, expectedCoverage: 10, expectedScore: 10},
		{name: "无法转换为整数", metadata: Metadata{"total_columnas": "doce"}, expectError: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := Calculate(table, tc.metadata, "meta")
			if tc.expectError {
				assert.ErrorIs(t, err, ErrInvalidMetadata)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expectedColumns, result.Details.ExpectedColumns)
			assert.Equal(t, tc.expectedCoverage, result.Details.ColumnCoverage)
			assert.Equal(t, tc.expectedScore, result.Score)
		})
	}
}

func TestCalculate_AllNull(t *testing.T) {
	table := &Table{Columns: []Column{
		{Name: "a", Kind: KindNumeric, Values: []any{nil, nil, nil, nil}},
		{Name: "b", Kind: KindText, Values: []any{nil, nil, nil, nil}},
	}}

	result, err := Calculate(table, nil, "nulos")
	require.NoError(t, err)

	assert.Equal(t, 0.0, result.Details.DataCompleteness)
	assert.Equal(t, 0.0, result.Details.ColumnCompleteness)
	assert.Equal(t, 10.0, result.Details.ColumnCoverage)
	assert.Equal(t, 3.33, result.Score)
	assert.Equal(t, 33.3, result.Percentage)
}

func TestCalculate_EmptyStringDoubleCount(t *testing.T) {
	table := &Table{Columns: []Column{
		{Name: "ciudad", Kind: KindText, Values: []any{"", "", "", "NYC"}},
	}}

	result, err := Calculate(table, nil, "quirk")
	require.NoError(t, err)

	// 3 个空串各计两次
	assert.Equal(t, 6, result.Details.TotalNulls)
	assert.Equal(t, 150.0, result.Details.NullCellPercentage)
	assert.Equal(t, 0.0, result.Details.DataCompleteness)
	assert.Equal(t, 1, result.Details.SparseColumns)
	assert.GreaterOrEqual(t, result.Score, 0.0)
}

func TestCalculateWithThreshold(t *testing.T) {
	table := &Table{Columns: []Column{
		{Name: "a", Kind: KindNumeric, Values: []any{1, 2, 3, nil, nil}},
		{Name: "b", Kind: KindNumeric, Values: []any{1, 2, 3, 4, 5}},
	}}

	defaultResult, err := Calculate(table, nil, "umbral")
	require.NoError(t, err)
	assert.Equal(t, 0, defaultResult.Details.SparseColumns)

	strictResult, err := CalculateWithThreshold(table, nil, "umbral", 0.4)
	require.NoError(t, err)
	assert.Equal(t, 1, strictResult.Details.SparseColumns)
	assert.Less(t, strictResult.Score, defaultResult.Score)
}

func TestCalculate_IdempotentAndNonMutating(t *testing.T) {
	values := []any{"x", "", nil, " ", "y"}
	original := append([]any(nil), values...)
	table := &Table{Columns: []Column{
		{Name: "t", Kind: KindText, Values: values},
		{Name: "n", Kind: KindNumeric, Values: []any{1.5, nil, 2.5, math.NaN(), 4.0}},
	}}

	first, err := Calculate(table, Metadata{"total_columnas": 3}, "same")
	require.NoError(t, err)
	second, err := Calculate(table, Metadata{"total_columnas": 3}, "same")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, original, values)
}

func TestCalculate_Bounds(t *testing.T) {
	patterns := [][]any{
		{nil, nil, nil, nil},
		{"", "", "", ""},
		{" ", "a", nil, ""},
		{"a", "b", "c", "d"},
	}

	for _, declared := range []int{0, 1, 2, 5, 100} {
		for _, p := range patterns {
			table := &Table{Columns: []Column{
				{Name: "t", Kind: KindText, Values: p},
				{Name: "n", Kind: KindNumeric, Values: []any{1, nil, 3, 4}},
			}}
			result, err := Calculate(table, Metadata{"total_columnas": declared}, "bounds")
			require.NoError(t, err)

			for _, v := range []float64{result.Score, result.Details.DataCompleteness, result.Details.ColumnCompleteness, result.Details.ColumnCoverage} {
				assert.GreaterOrEqual(t, v, 0.0)
				assert.LessOrEqual(t, v, 10.0)
			}
			assert.Equal(t, round2(result.Score*10), result.Percentage)
		}
	}
}

func TestCalculate_MonotonicInNulls(t *testing.T) {
	const rows = 20
	previous := math.Inf(1)

	for nulls := 0; nulls <= rows; nulls++ {
		values := make([]any, rows)
		for i := range values {
			if i < nulls {
				values[i] = nil
			} else {
				values[i] = float64(i)
			}
		}
		table := &Table{Columns: append(fullColumns(1, rows), Column{Name: "z", Kind: KindNumeric, Values: values})}

		result, err := Calculate(table, nil, "monotonic")
		require.NoError(t, err)
		assert.LessOrEqual(t, result.Score, previous, "nulls=%d", nulls)
		previous = result.Score
	}
}

func TestColumnNullStats(t *testing.T) {
	table := &Table{Columns: []Column{
		{Name: "nombre", Kind: KindText, Values: []any{"Ana", nil, "Luis"}},
		{Name: "ciudad", Kind: KindText, Values: []any{"", "LA", " "}},
		{Name: "edad", Kind: KindNumeric, Values: []any{30, 41, 25}},
	}}

	stats, err := ColumnNullStats(table, DefaultSparseThreshold)
	require.NoError(t, err)
	require.Len(t, stats, 3)

	assert.Equal(t, ColumnStats{Name: "nombre", Kind: KindText, Missing: 1, TotalNulls: 1, NullPercentage: 33.33}, stats[0])
	assert.Equal(t, ColumnStats{Name: "ciudad", Kind: KindText, Empty: 1, Whitespace: 2, TotalNulls: 3, NullPercentage: 100, Sparse: true}, stats[1])
	assert.Equal(t, ColumnStats{Name: "edad", Kind: KindNumeric}, stats[2])

	_, err = ColumnNullStats(&Table{}, DefaultSparseThreshold)
	assert.ErrorIs(t, err, ErrEmptyDataset)
}

func TestCountSparseColumns(t *testing.T) {
	cases := []struct {
		name      string
		nulls     []int
		rows      int
		threshold float64
		expected  int
	}{
		{"无列", nil, 4, 0.5, 0},
		{"恰好达到阈值", []int{2, 1, 0}, 4, 0.5, 1},
		{"严格阈值", []int{2, 1, 0}, 4, 0.25, 2},
		{"零行不视为稀疏", []int{0, 0}, 0, 0.5, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, CountSparseColumns(tc.nulls, tc.rows, tc.threshold))
		})
	}
}

func TestCalculate_RoundsHalfToEven(t *testing.T) {
	values := make([]any, 32)
	for i := range values {
		values[i] = float64(i)
	}
	values[7] = nil

	result, err := Calculate(&Table{Columns: []Column{{Name: "a", Kind: KindNumeric, Values: values}}}, nil, "redondeo")
	require.NoError(t, err)

	// 1/32 = 3.125%
	assert.Equal(t, 3.12, result.Details.NullCellPercentage)
	assert.Equal(t, 2.62, round2(2.625))
	assert.Equal(t, 2.88, round2(2.875))
}
