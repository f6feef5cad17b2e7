/*
 * @module service/models/jsonb
 * @description JSON 列类型，实现 database/sql 的 Scanner 与 Valuer 接口
 * @architecture 数据模型层
 * @rules postgres 下存储为 jsonb，sqlite 下存储为文本
 * @dependencies database/sql/driver, encoding/json
 * @refs service/models/dataset.go
 */

package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// JSONB 通用 JSON 对象
type JSONB map[string]interface{}

// JSONBGenericArray 用于存储任意类型数组的 JSONB 类型
type JSONBGenericArray []interface{}

// DatasetColumnList 数据集列定义列表
type DatasetColumnList []DatasetColumn

func scanJSON(value interface{}, dest interface{}) error {
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("类型断言失败: 不是 []byte 或 string")
	}
	return json.Unmarshal(bytes, dest)
}

// Scan 实现 Scanner 接口
func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	return scanJSON(value, j)
}

// Value 实现 Valuer 接口
func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return "{}", nil
	}
	b, err := json.Marshal(j)
	return string(b), err
}

// Scan 实现 Scanner 接口
func (j *JSONBGenericArray) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	return scanJSON(value, j)
}

// Value 实现 Valuer 接口
func (j JSONBGenericArray) Value() (driver.Value, error) {
	if j == nil {
		return "[]", nil
	}
	b, err := json.Marshal(j)
	return string(b), err
}

// Scan 实现 Scanner 接口
func (l *DatasetColumnList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	return scanJSON(value, l)
}

// Value 实现 Valuer 接口
func (l DatasetColumnList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	return string(b), err
}
