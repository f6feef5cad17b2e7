package completeness

import "errors"

var (
	// ErrEmptyDataset 数据集为空或没有任何行
	ErrEmptyDataset = errors.New("数据集为空或不可用")
	// ErrInvalidMetadata 元数据中声明的列数无法转换为整数
	ErrInvalidMetadata = errors.New("元数据无效")
)
