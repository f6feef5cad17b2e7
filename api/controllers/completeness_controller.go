/*
 * @module api/controllers/completeness_controller
 * @description 完整性评分控制器，提供评分、逐列统计与评分报告接口
 * @architecture MVC架构 - 控制器层
 * @stateFlow HTTP请求 -> 参数校验 -> 读取数据集与元数据 -> 计算评分 -> 响应
 * @rules 缺少 dataset_id 或数据集为空返回 400；数据集不存在返回 404；其他错误返回 500；元数据缺失按空元数据处理
 * @dependencies datacensus-service/service/completeness, github.com/go-chi/render
 * @refs service/dataset/dataset_service.go, service/quality/report_service.go
 */

package controllers

import (
	"context"
	"datacensus-service/service/completeness"
	"datacensus-service/service/config"
	"datacensus-service/service/dataset"
	"datacensus-service/service/models"
	"datacensus-service/service/monitoring"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
	"github.com/spf13/cast"
)

// DatasetProvider 按ID读取数据集
type DatasetProvider interface {
	GetTable(ctx context.Context, id string) (*completeness.Table, error)
}

// MetadataProvider 按ID读取元数据
type MetadataProvider interface {
	GetMetadata(ctx context.Context, id string) (completeness.Metadata, error)
}

// ThresholdProvider 稀疏阈值来源
type ThresholdProvider interface {
	GetSparseThreshold() float64
}

// ReportManager 评分报告管理
type ReportManager interface {
	Evaluate(ctx context.Context, datasetID, trigger string) (*models.CompletenessReport, error)
	ListReports(ctx context.Context, datasetID string, limit int) ([]models.CompletenessReport, error)
}

// CompletenessController 完整性评分控制器
type CompletenessController struct {
	datasets   DatasetProvider
	metadata   MetadataProvider
	thresholds ThresholdProvider
	reports    ReportManager
}

// NewCompletenessController 创建完整性评分控制器实例
func NewCompletenessController(datasets DatasetProvider, metadata MetadataProvider, thresholds ThresholdProvider, reports ReportManager) *CompletenessController {
	return &CompletenessController{
		datasets:   datasets,
		metadata:   metadata,
		thresholds: thresholds,
		reports:    reports,
	}
}

// ColumnStatsResponse 逐列统计响应
type ColumnStatsResponse struct {
	DatasetID string                     `json:"dataset_id"`
	Threshold float64                    `json:"threshold"`
	Columns   []completeness.ColumnStats `json:"columns"`
}

// CreateReportRequest 创建报告请求
type CreateReportRequest struct {
	DatasetID string `json:"dataset_id" example:"personas-001"`
}

// GetCompleteness 计算完整性评分
// @Summary 计算完整性评分
// @Description 按数据集ID计算完整性（completitud）评分，返回得分与诊断明细
// @Tags 完整性评分
// @Produce json
// @Param dataset_id query string true "数据集ID"
// @Param threshold query number false "稀疏列阈值 (0,1]，默认取系统配置"
// @Success 200 {object} completeness.Result
// @Failure 400 {object} APIResponse "缺少参数或数据集为空"
// @Failure 404 {object} APIResponse "数据集不存在"
// @Failure 500 {object} APIResponse "计算失败"
// @Router /completitud [get]
func (c *CompletenessController) GetCompleteness(w http.ResponseWriter, r *http.Request) {
	datasetID := r.URL.Query().Get("dataset_id")
	if datasetID == "" {
		c.fail(w, r, BadRequestResponse("dataset_id 为必填参数", nil))
		return
	}

	threshold, err := c.resolveThreshold(r)
	if err != nil {
		c.fail(w, r, BadRequestResponse("threshold 参数无效", err))
		return
	}

	table, err := c.datasets.GetTable(r.Context(), datasetID)
	if err != nil {
		c.fail(w, r, lookupErrorResponse(datasetID, err))
		return
	}

	metadata, err := c.loadMetadata(r.Context(), datasetID)
	if err != nil {
		c.fail(w, r, InternalErrorResponse("计算完整性失败", err))
		return
	}

	result, err := completeness.CalculateWithThreshold(table, metadata, datasetID, threshold)
	if err != nil {
		c.fail(w, r, calculationErrorResponse(datasetID, err))
		return
	}

	monitoring.RecordRequest(monitoring.StatusOK)
	monitoring.ObserveScore(result.Score)
	render.JSON(w, r, result)
}

// GetColumnStats 逐列空值统计
// @Summary 逐列空值统计
// @Description 返回每一列的缺失、空字符串、纯空白计数，空值比例及稀疏标记
// @Tags 完整性评分
// @Produce json
// @Param dataset_id query string true "数据集ID"
// @Param threshold query number false "稀疏列阈值 (0,1]"
// @Success 200 {object} APIResponse{data=ColumnStatsResponse}
// @Failure 400 {object} APIResponse
// @Failure 404 {object} APIResponse
// @Failure 500 {object} APIResponse
// @Router /completitud/columns [get]
func (c *CompletenessController) GetColumnStats(w http.ResponseWriter, r *http.Request) {
	datasetID := r.URL.Query().Get("dataset_id")
	if datasetID == "" {
		respond(w, r, BadRequestResponse("dataset_id 为必填参数", nil))
		return
	}

	threshold, err := c.resolveThreshold(r)
	if err != nil {
		respond(w, r, BadRequestResponse("threshold 参数无效", err))
		return
	}

	table, err := c.datasets.GetTable(r.Context(), datasetID)
	if err != nil {
		respond(w, r, lookupErrorResponse(datasetID, err))
		return
	}

	stats, err := completeness.ColumnNullStats(table, threshold)
	if err != nil {
		respond(w, r, calculationErrorResponse(datasetID, err))
		return
	}

	respond(w, r, SuccessResponse("获取逐列统计成功", ColumnStatsResponse{
		DatasetID: datasetID,
		Threshold: threshold,
		Columns:   stats,
	}))
}

// CreateReport 评分并保存报告
// @Summary 生成完整性报告
// @Description 对数据集评分并保存为报告，保存后发布报告事件
// @Tags 完整性评分
// @Accept json
// @Produce json
// @Param request body CreateReportRequest true "报告请求"
// @Success 201 {object} APIResponse{data=models.CompletenessReport}
// @Failure 400 {object} APIResponse
// @Failure 404 {object} APIResponse
// @Failure 500 {object} APIResponse
// @Router /completitud/reports [post]
func (c *CompletenessController) CreateReport(w http.ResponseWriter, r *http.Request) {
	var req CreateReportRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		respond(w, r, BadRequestResponse("请求参数格式错误", err))
		return
	}
	if req.DatasetID == "" {
		respond(w, r, BadRequestResponse("dataset_id 为必填参数", nil))
		return
	}

	report, err := c.reports.Evaluate(r.Context(), req.DatasetID, models.ReportTriggerManual)
	if err != nil {
		if errors.Is(err, dataset.ErrDatasetNotFound) {
			respond(w, r, lookupErrorResponse(req.DatasetID, err))
			return
		}
		respond(w, r, calculationErrorResponse(req.DatasetID, err))
		return
	}

	respond(w, r, CreatedResponse("完整性报告已生成", report))
}

// GetReports 查询历史报告
// @Summary 查询完整性报告
// @Description 按时间倒序返回数据集的历史完整性报告
// @Tags 完整性评分
// @Produce json
// @Param dataset_id query string true "数据集ID"
// @Param limit query int false "返回条数，默认20，最大200"
// @Success 200 {object} APIResponse{data=[]models.CompletenessReport}
// @Failure 400 {object} APIResponse
// @Failure 500 {object} APIResponse
// @Router /completitud/reports [get]
func (c *CompletenessController) GetReports(w http.ResponseWriter, r *http.Request) {
	datasetID := r.URL.Query().Get("dataset_id")
	if datasetID == "" {
		respond(w, r, BadRequestResponse("dataset_id 为必填参数", nil))
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := cast.ToIntE(raw)
		if err != nil || n < 0 {
			respond(w, r, BadRequestResponse("limit 参数无效", err))
			return
		}
		limit = n
	}

	reports, err := c.reports.ListReports(r.Context(), datasetID, limit)
	if err != nil {
		respond(w, r, InternalErrorResponse("查询完整性报告失败", err))
		return
	}

	respond(w, r, SuccessResponse("查询完整性报告成功", reports))
}

func (c *CompletenessController) resolveThreshold(r *http.Request) (float64, error) {
	if raw := r.URL.Query().Get("threshold"); raw != "" {
		return config.ParseThreshold(raw)
	}
	if c.thresholds == nil {
		return completeness.DefaultSparseThreshold, nil
	}
	return c.thresholds.GetSparseThreshold(), nil
}

func (c *CompletenessController) loadMetadata(ctx context.Context, datasetID string) (completeness.Metadata, error) {
	if c.metadata == nil {
		return nil, nil
	}
	metadata, err := c.metadata.GetMetadata(ctx, datasetID)
	if errors.Is(err, dataset.ErrDatasetNotFound) {
		return nil, nil
	}
	return metadata, err
}

// fail 输出错误响应并记录请求指标
func (c *CompletenessController) fail(w http.ResponseWriter, r *http.Request, resp *APIResponse) {
	switch resp.Status {
	case http.StatusBadRequest:
		monitoring.RecordRequest(monitoring.StatusBadRequest)
	case http.StatusNotFound:
		monitoring.RecordRequest(monitoring.StatusNotFound)
	default:
		monitoring.RecordRequest(monitoring.StatusError)
	}
	respond(w, r, resp)
}

func lookupErrorResponse(datasetID string, err error) *APIResponse {
	if errors.Is(err, dataset.ErrDatasetNotFound) {
		return NotFoundResponse(fmt.Sprintf("数据集 '%s' 不存在", datasetID), nil)
	}
	slog.Error("读取数据集失败", "dataset_id", datasetID, "error", err)
	return InternalErrorResponse("计算完整性失败", err)
}

func calculationErrorResponse(datasetID string, err error) *APIResponse {
	if errors.Is(err, completeness.ErrEmptyDataset) {
		return BadRequestResponse(fmt.Sprintf("数据集 '%s' 为空", datasetID), nil)
	}
	slog.Error("计算完整性失败", "dataset_id", datasetID, "error", err)
	return InternalErrorResponse("计算完整性失败", err)
}
