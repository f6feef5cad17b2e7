/*
 * @module service/completeness/table
 * @description 列式表格数据集结构，以及单列空值、空串、纯空白单元格的计数
 * @architecture 领域模型层 - 纯数据结构，无状态
 * @documentReference dev_docs/completeness_metric.md
 * @stateFlow 数据集加载 -> Table 构建 -> 逐列计数 -> 评分
 * @rules 评分过程不修改调用方传入的数据；nil 与 NaN 视为缺失值；空串与纯空白只在文本列中计数
 * @dependencies math, strings
 * @refs service/completeness/scorer.go, service/dataset/dataset_service.go
 */

package completeness

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ColumnKind 列数据类型
type ColumnKind string

const (
	KindNumeric ColumnKind = "numeric"
	KindText    ColumnKind = "text"
	KindBool    ColumnKind = "bool"
)

// Valid 是否为已知列类型
func (k ColumnKind) Valid() bool {
	switch k {
	case KindNumeric, KindText, KindBool:
		return true
	default:
		return false
	}
}

// ErrRaggedTable 各列行数不一致
var ErrRaggedTable = errors.New("数据集结构无效: 各列行数不一致")

// Column 数据集中的一列，Values 中的 nil 表示缺失值
type Column struct {
	Name   string
	Kind   ColumnKind
	Values []any
}

// Table 按列组织的表格数据集
type Table struct {
	Columns []Column
}

// NewTable 创建数据集并校验各列行数一致
func NewTable(columns ...Column) (*Table, error) {
	t := &Table{Columns: columns}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Validate 校验各列行数一致
func (t *Table) Validate() error {
	if t == nil || len(t.Columns) == 0 {
		return nil
	}
	rows := len(t.Columns[0].Values)
	for _, col := range t.Columns[1:] {
		if len(col.Values) != rows {
			return fmt.Errorf("%w: 列 %s 有 %d 行，期望 %d 行", ErrRaggedTable, col.Name, len(col.Values), rows)
		}
	}
	return nil
}

// RowCount 行数，没有列时为 0
func (t *Table) RowCount() int {
	if t == nil || len(t.Columns) == 0 {
		return 0
	}
	return len(t.Columns[0].Values)
}

// ColumnCount 列数
func (t *Table) ColumnCount() int {
	if t == nil {
		return 0
	}
	return len(t.Columns)
}

// CellCount 单元格总数
func (t *Table) CellCount() int {
	return t.RowCount() * t.ColumnCount()
}

// NullCounts 单列的三类空值计数，三者相互独立
type NullCounts struct {
	Missing    int `json:"missing"`
	Empty      int `json:"empty"`
	Whitespace int `json:"whitespace"`
}

// Total 空值等价单元格数。空串同时计入 Empty 与 Whitespace
func (c NullCounts) Total() int {
	return c.Missing + c.Empty + c.Whitespace
}

// CountNulls 统计单列空值
func CountNulls(col Column) NullCounts {
	var counts NullCounts
	for _, v := range col.Values {
		if isMissing(v) {
			counts.Missing++
			continue
		}
		if col.Kind != KindText {
			continue
		}
		s, ok := v.(string)
		if !ok {
			continue
		}
		if s == "" {
			counts.Empty++
		}
		if strings.TrimSpace(s) == "" {
			counts.Whitespace++
		}
	}
	return counts
}

func isMissing(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case float64:
		return math.IsNaN(x)
	case float32:
		return math.IsNaN(float64(x))
	case *string:
		return x == nil
	case *float64:
		return x == nil || math.IsNaN(*x)
	default:
		return false
	}
}
