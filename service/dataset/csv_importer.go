/*
 * @module service/dataset/csv_importer
 * @description CSV 导入：字符集解码、表头解析、列类型推断，计算内容校验和后写入数据集
 * @architecture 分层架构 - 业务服务层
 * @stateFlow 读取原始字节 -> 校验和 -> 字符集解码 -> CSV 解析 -> 类型推断 -> 创建数据集
 * @rules 空字段及常见 NA 标记视为缺失值；非缺失值全部可解析为数字的列为数值列，否则为文本列并保留原始字符串
 * @dependencies golang.org/x/text/encoding, golang.org/x/crypto/blake2b
 * @refs service/dataset/dataset_service.go, api/controllers/dataset_controller.go
 */

package dataset

import (
	"bytes"
	"context"
	"datacensus-service/service/completeness"
	"datacensus-service/service/models"
	"encoding/csv"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
)

// ErrUnsupportedEncoding 不支持的字符编码
var ErrUnsupportedEncoding = errors.New("不支持的字符编码")

// MaxImportBytes 单个 CSV 文件大小上限
const MaxImportBytes = 32 << 20

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// naTokens 视为缺失值的字段内容
var naTokens = map[string]bool{
	"":     true,
	"NA":   true,
	"N/A":  true,
	"n/a":  true,
	"#N/A": true,
	"NULL": true,
	"null": true,
	"NaN":  true,
	"nan":  true,
	"<NA>": true,
	"None": true,
}

// ImportOptions CSV 导入选项
type ImportOptions struct {
	ID              string
	Name            string
	Description     string
	ExpectedColumns *int
	Encoding        string
	Delimiter       rune
}

// ImportCSV 从 CSV 内容创建数据集
func (s *Service) ImportCSV(ctx context.Context, r io.Reader, opts ImportOptions) (*models.Dataset, error) {
	raw, err := io.ReadAll(io.LimitReader(r, MaxImportBytes+1))
	if err != nil {
		return nil, fmt.Errorf("读取CSV失败: %w", err)
	}
	if len(raw) > MaxImportBytes {
		return nil, fmt.Errorf("%w: CSV 超过 %d 字节上限", ErrInvalidDataset, MaxImportBytes)
	}

	sum := blake2b.Sum256(raw)
	checksum := hex.EncodeToString(sum[:])

	text, encodingName, err := decodeContent(raw, opts.Encoding)
	if err != nil {
		return nil, err
	}

	delimiter := opts.Delimiter
	if delimiter == 0 {
		delimiter = ','
	}
	header, rows, err := parseCSV(text, delimiter)
	if err != nil {
		return nil, err
	}

	columns, values := inferColumns(header, rows)

	metadata := map[string]interface{}{}
	if opts.ExpectedColumns != nil {
		metadata[completeness.MetadataExpectedColumnsKey] = *opts.ExpectedColumns
	}

	return s.Create(ctx, &CreateDatasetRequest{
		ID:           opts.ID,
		Name:         opts.Name,
		Description:  opts.Description,
		Columns:      columns,
		Rows:         values,
		Metadata:     metadata,
		SourceFormat: "csv",
		Encoding:     encodingName,
		Checksum:     checksum,
	})
}

// lookupEncoding 根据名称查找字符编码，UTF-8 返回 nil
func lookupEncoding(name string) (encoding.Encoding, string, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return nil, "utf-8", nil
	case "latin1", "latin-1", "iso-8859-1":
		return charmap.ISO8859_1, "latin1", nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252, "windows-1252", nil
	case "gbk":
		return simplifiedchinese.GBK, "gbk", nil
	case "gb18030":
		return simplifiedchinese.GB18030, "gb18030", nil
	default:
		return nil, "", fmt.Errorf("%w: %s", ErrUnsupportedEncoding, name)
	}
}

func decodeContent(raw []byte, name string) ([]byte, string, error) {
	enc, canonical, err := lookupEncoding(name)
	if err != nil {
		return nil, "", err
	}

	if enc == nil {
		raw = bytes.TrimPrefix(raw, utf8BOM)
		if !utf8.Valid(raw) {
			return nil, "", fmt.Errorf("%w: 内容不是合法的 UTF-8，请指定 encoding", ErrInvalidDataset)
		}
		return raw, canonical, nil
	}

	decoded, _, err := transform.Bytes(enc.NewDecoder(), raw)
	if err != nil {
		return nil, "", fmt.Errorf("%w: 按 %s 解码失败: %v", ErrInvalidDataset, canonical, err)
	}
	return decoded, canonical, nil
}

func parseCSV(text []byte, delimiter rune) ([]string, [][]string, error) {
	reader := csv.NewReader(bytes.NewReader(text))
	reader.Comma = delimiter

	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: 解析CSV失败: %v", ErrInvalidDataset, err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("%w: CSV 缺少表头", ErrInvalidDataset)
	}

	header := make([]string, len(records[0]))
	for i, name := range records[0] {
		name = strings.TrimSpace(name)
		if name == "" {
			name = fmt.Sprintf("column_%d", i+1)
		}
		header[i] = name
	}
	return header, records[1:], nil
}

// inferColumns 推断列类型并转换单元格
func inferColumns(header []string, rows [][]string) ([]ColumnDefinition, [][]interface{}) {
	columns := make([]ColumnDefinition, len(header))
	for j, name := range header {
		kind := completeness.KindNumeric
		for _, row := range rows {
			cell := row[j]
			if naTokens[cell] {
				continue
			}
			if _, ok := parseNumber(cell); !ok {
				kind = completeness.KindText
				break
			}
		}
		columns[j] = ColumnDefinition{Name: name, Kind: string(kind)}
	}

	values := make([][]interface{}, len(rows))
	for i, row := range rows {
		converted := make([]interface{}, len(row))
		for j, cell := range row {
			converted[j] = convertCell(completeness.ColumnKind(columns[j].Kind), cell)
		}
		values[i] = converted
	}
	return columns, values
}

func convertCell(kind completeness.ColumnKind, cell string) interface{} {
	if naTokens[cell] {
		return nil
	}
	if kind != completeness.KindNumeric {
		return cell
	}
	v, ok := parseNumber(cell)
	if !ok || math.IsNaN(v) {
		return nil
	}
	return v
}

// parseNumber 解析数值单元格，无穷大不视为数字
func parseNumber(cell string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	if err != nil || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
