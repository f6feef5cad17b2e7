/*
 * @module testutil/test_helper
 * @description 测试工具和辅助函数
 * @architecture 测试基础设施 - 提供测试通用工具和数据工厂
 * @stateFlow 测试环境初始化 -> 测试数据创建 -> 测试执行 -> 清理资源
 * @rules 每个测试数据库相互隔离；工厂方法失败时直接 panic
 * @dependencies gorm, sqlite, testify
 * @refs service/models
 */

package testutil

import (
	"bytes"
	"context"
	"datacensus-service/service/models"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestDB 测试数据库配置
type TestDB struct {
	DB *gorm.DB
}

// NewTestDB 创建测试数据库，每次调用得到独立的内存库
func NewTestDB() *TestDB {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		panic(fmt.Sprintf("failed to connect test database: %v", err))
	}

	// 自动迁移所有模型
	err = db.AutoMigrate(
		&models.Dataset{},
		&models.DatasetRecord{},
		&models.CompletenessReport{},
		&models.SystemConfig{},
	)
	if err != nil {
		panic(fmt.Sprintf("failed to migrate test database: %v", err))
	}

	return &TestDB{DB: db}
}

// Close 关闭数据库连接
func (tdb *TestDB) Close() {
	if db, err := tdb.DB.DB(); err == nil {
		db.Close()
	}
}

// TestDataFactory 测试数据工厂
type TestDataFactory struct {
	DB *gorm.DB
}

// NewTestDataFactory 创建测试数据工厂
func NewTestDataFactory(db *gorm.DB) *TestDataFactory {
	return &TestDataFactory{DB: db}
}

// DatasetOption 数据集选项函数类型
type DatasetOption func(*models.Dataset)

// WithDatasetID 指定数据集ID
func WithDatasetID(id string) DatasetOption {
	return func(d *models.Dataset) {
		d.ID = id
	}
}

// WithMetadata 指定数据集元数据
func WithMetadata(metadata models.JSONB) DatasetOption {
	return func(d *models.Dataset) {
		d.Metadata = metadata
	}
}

// CreateDataset 按行创建测试数据集，rows 中每行的值顺序与 columns 一致
func (f *TestDataFactory) CreateDataset(columns []models.DatasetColumn, rows [][]interface{}, opts ...DatasetOption) *models.Dataset {
	dataset := &models.Dataset{
		Name:         "测试数据集",
		Description:  "这是一个测试数据集",
		Columns:      columns,
		RowCount:     len(rows),
		Metadata:     models.JSONB{},
		SourceFormat: "json",
	}

	for _, opt := range opts {
		opt(dataset)
	}

	err := f.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(dataset).Error; err != nil {
			return err
		}
		for i, row := range rows {
			record := &models.DatasetRecord{
				DatasetID: dataset.ID,
				RowIndex:  i,
				Values:    models.JSONBGenericArray(row),
			}
			if err := tx.Create(record).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		panic(fmt.Sprintf("failed to create test dataset: %v", err))
	}

	return dataset
}

// MockReportPublisher Mock报告发布器
type MockReportPublisher struct {
	mock.Mock
}

// Publish 发布报告
func (m *MockReportPublisher) Publish(ctx context.Context, report *models.CompletenessReport) error {
	args := m.Called(ctx, report)
	return args.Error(0)
}

// Close 关闭发布器
func (m *MockReportPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

// HTTPTestHelper HTTP测试辅助工具
type HTTPTestHelper struct{}

// NewHTTPTestHelper 创建HTTP测试辅助工具
func NewHTTPTestHelper() *HTTPTestHelper {
	return &HTTPTestHelper{}
}

// CreateJSONRequest 创建JSON请求
func (h *HTTPTestHelper) CreateJSONRequest(method, url string, body interface{}) (*http.Request, error) {
	var reqBody io.Reader

	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return nil, err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return req, nil
}

// DecodeJSON 解析响应体
func (h *HTTPTestHelper) DecodeJSON(t *testing.T, w *httptest.ResponseRecorder, target interface{}) {
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), target), "响应体不是合法JSON: %s", w.Body.String())
}

// AssertJSONResponse 断言JSON响应
func (h *HTTPTestHelper) AssertJSONResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, expectedBody interface{}) {
	assert.Equal(t, expectedStatus, w.Code)

	if expectedBody != nil {
		var actualBody interface{}
		err := json.Unmarshal(w.Body.Bytes(), &actualBody)
		assert.NoError(t, err)

		expectedJSON, _ := json.Marshal(expectedBody)
		actualJSON, _ := json.Marshal(actualBody)

		assert.JSONEq(t, string(expectedJSON), string(actualJSON))
	}
}
