/*
 * @module api/controllers/dataset_controller
 * @description 数据集管理控制器，提供数据集创建、CSV导入、查询、元数据更新和删除接口
 * @architecture MVC架构 - 控制器层
 * @stateFlow HTTP请求 -> 参数解析 -> 数据集服务 -> 响应
 * @rules 数据无效返回 400；ID冲突返回 409；不存在返回 404
 * @dependencies datacensus-service/service/dataset, github.com/go-chi/chi/v5, github.com/go-chi/render
 * @refs service/dataset/dataset_service.go, service/dataset/csv_importer.go
 */

package controllers

import (
	"datacensus-service/service/dataset"
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/spf13/cast"
)

// DatasetController 数据集控制器
type DatasetController struct {
	service *dataset.Service
}

// NewDatasetController 创建数据集控制器实例
func NewDatasetController(service *dataset.Service) *DatasetController {
	return &DatasetController{service: service}
}

// UpdateMetadataRequest 更新元数据请求
type UpdateMetadataRequest struct {
	Metadata map[string]interface{} `json:"metadata"`
}

// CreateDataset 创建数据集
// @Summary 创建数据集
// @Description 按列定义和行数据创建数据集，单元格为 null 表示缺失值
// @Tags 数据集
// @Accept json
// @Produce json
// @Param request body dataset.CreateDatasetRequest true "数据集定义"
// @Success 201 {object} APIResponse{data=models.Dataset}
// @Failure 400 {object} APIResponse
// @Failure 409 {object} APIResponse
// @Failure 500 {object} APIResponse
// @Router /datasets [post]
func (c *DatasetController) CreateDataset(w http.ResponseWriter, r *http.Request) {
	var req dataset.CreateDatasetRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		respond(w, r, BadRequestResponse("请求参数格式错误", err))
		return
	}

	created, err := c.service.Create(r.Context(), &req)
	if err != nil {
		respond(w, r, datasetErrorResponse("创建数据集失败", err))
		return
	}

	respond(w, r, CreatedResponse("数据集创建成功", created))
}

// ImportCSV 导入CSV
// @Summary 导入CSV数据集
// @Description 上传CSV文件创建数据集，自动推断列类型
// @Tags 数据集
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV文件"
// @Param name formData string true "数据集名称"
// @Param id formData string false "数据集ID"
// @Param description formData string false "描述"
// @Param expected_columns formData int false "声明的列数"
// @Param encoding formData string false "字符编码 utf-8|latin1|windows-1252|gbk|gb18030"
// @Param delimiter formData string false "分隔符，默认逗号"
// @Success 201 {object} APIResponse{data=models.Dataset}
// @Failure 400 {object} APIResponse
// @Failure 409 {object} APIResponse
// @Failure 500 {object} APIResponse
// @Router /datasets/import [post]
func (c *DatasetController) ImportCSV(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, dataset.MaxImportBytes+1<<20)
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		respond(w, r, BadRequestResponse("解析上传表单失败", err))
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		respond(w, r, BadRequestResponse("缺少上传文件 file", err))
		return
	}
	defer file.Close()

	opts := dataset.ImportOptions{
		ID:          r.FormValue("id"),
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		Encoding:    r.FormValue("encoding"),
	}
	if raw := strings.TrimSpace(r.FormValue("expected_columns")); raw != "" {
		n, err := cast.ToIntE(raw)
		if err != nil {
			respond(w, r, BadRequestResponse("expected_columns 必须为整数", err))
			return
		}
		opts.ExpectedColumns = &n
	}
	if raw := r.FormValue("delimiter"); raw != "" {
		if utf8.RuneCountInString(raw) != 1 {
			respond(w, r, BadRequestResponse("delimiter 必须为单个字符", nil))
			return
		}
		opts.Delimiter, _ = utf8.DecodeRuneInString(raw)
	}

	created, err := c.service.ImportCSV(r.Context(), file, opts)
	if err != nil {
		respond(w, r, datasetErrorResponse("导入CSV失败", err))
		return
	}

	respond(w, r, CreatedResponse("CSV导入成功", created))
}

// ListDatasets 分页查询数据集
// @Summary 查询数据集列表
// @Description 按创建时间倒序分页查询数据集
// @Tags 数据集
// @Produce json
// @Param page query int false "页码" default(1)
// @Param size query int false "每页条数" default(20)
// @Success 200 {object} PaginatedResponse{data=[]models.Dataset}
// @Failure 500 {object} APIResponse
// @Router /datasets [get]
func (c *DatasetController) ListDatasets(w http.ResponseWriter, r *http.Request) {
	page := cast.ToInt(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	size := cast.ToInt(r.URL.Query().Get("size"))
	if size < 1 || size > 100 {
		size = 20
	}

	datasets, total, err := c.service.List(r.Context(), page, size)
	if err != nil {
		respond(w, r, InternalErrorResponse("查询数据集列表失败", err))
		return
	}

	render.JSON(w, r, PaginatedResponse{
		Status: http.StatusOK,
		Msg:    "查询数据集列表成功",
		Data:   datasets,
		Total:  total,
		Page:   page,
		Size:   size,
	})
}

// GetDataset 获取数据集
// @Summary 获取数据集
// @Tags 数据集
// @Produce json
// @Param id path string true "数据集ID"
// @Success 200 {object} APIResponse{data=models.Dataset}
// @Failure 404 {object} APIResponse
// @Router /datasets/{id} [get]
func (c *DatasetController) GetDataset(w http.ResponseWriter, r *http.Request) {
	found, err := c.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respond(w, r, datasetErrorResponse("获取数据集失败", err))
		return
	}
	respond(w, r, SuccessResponse("获取数据集成功", found))
}

// UpdateMetadata 更新数据集元数据
// @Summary 更新数据集元数据
// @Description 整体替换数据集元数据，total_columnas 必须为整数
// @Tags 数据集
// @Accept json
// @Produce json
// @Param id path string true "数据集ID"
// @Param request body UpdateMetadataRequest true "元数据"
// @Success 200 {object} APIResponse{data=models.Dataset}
// @Failure 400 {object} APIResponse
// @Failure 404 {object} APIResponse
// @Router /datasets/{id}/metadata [put]
func (c *DatasetController) UpdateMetadata(w http.ResponseWriter, r *http.Request) {
	var req UpdateMetadataRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		respond(w, r, BadRequestResponse("请求参数格式错误", err))
		return
	}

	updated, err := c.service.UpdateMetadata(r.Context(), chi.URLParam(r, "id"), req.Metadata)
	if err != nil {
		respond(w, r, datasetErrorResponse("更新元数据失败", err))
		return
	}
	respond(w, r, SuccessResponse("元数据更新成功", updated))
}

// DeleteDataset 删除数据集
// @Summary 删除数据集
// @Tags 数据集
// @Produce json
// @Param id path string true "数据集ID"
// @Success 200 {object} APIResponse
// @Failure 404 {object} APIResponse
// @Router /datasets/{id} [delete]
func (c *DatasetController) DeleteDataset(w http.ResponseWriter, r *http.Request) {
	if err := c.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respond(w, r, datasetErrorResponse("删除数据集失败", err))
		return
	}
	respond(w, r, SuccessResponse("数据集删除成功", nil))
}

func datasetErrorResponse(msg string, err error) *APIResponse {
	switch {
	case errors.Is(err, dataset.ErrDatasetNotFound):
		return NotFoundResponse(msg, err)
	case errors.Is(err, dataset.ErrDatasetExists):
		return ConflictResponse(msg, err)
	case errors.Is(err, dataset.ErrInvalidDataset), errors.Is(err, dataset.ErrUnsupportedEncoding):
		return BadRequestResponse(msg, err)
	default:
		return InternalErrorResponse(msg, err)
	}
}
