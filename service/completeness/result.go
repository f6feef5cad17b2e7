package completeness

// Details 完整性评分的诊断明细
type Details struct {
	DataCompleteness   float64 `json:"data_completeness"`
	ColumnCompleteness float64 `json:"column_completeness"`
	ColumnCoverage     float64 `json:"column_coverage"`
	TotalCells         int     `json:"total_cells"`
	TotalNulls         int     `json:"total_nulls"`
	NullCellPercentage float64 `json:"null_cell_percentage"`
	ExpectedColumns    int     `json:"expected_columns"`
	ActualColumns      int     `json:"actual_columns"`
	SparseColumns      int     `json:"sparse_columns"`
	TotalRows          int     `json:"total_rows"`
}

// Result 完整性评分结果
type Result struct {
	DatasetID  string  `json:"dataset_id"`
	Metric     string  `json:"metric"`
	Score      float64 `json:"score"`
	MaxScore   float64 `json:"max_score"`
	Percentage float64 `json:"percentage"`
	Details    Details `json:"details"`
}

// ColumnStats 单列空值统计
type ColumnStats struct {
	Name           string     `json:"name"`
	Kind           ColumnKind `json:"kind"`
	Missing        int        `json:"missing"`
	Empty          int        `json:"empty"`
	Whitespace     int        `json:"whitespace"`
	TotalNulls     int        `json:"total_nulls"`
	NullPercentage float64    `json:"null_percentage"`
	Sparse         bool       `json:"sparse"`
}
