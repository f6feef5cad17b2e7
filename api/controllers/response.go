/*
 * @module api/controllers/response
 * @description 统一响应结构与构造函数
 * @architecture MVC架构 - 控制器层
 * @rules status 字段与 HTTP 状态码保持一致；错误信息附带底层错误文本
 * @dependencies github.com/go-chi/render
 */

package controllers

import (
	"net/http"

	"github.com/go-chi/render"
)

// APIResponse 统一API响应结构
type APIResponse struct {
	Status int         `json:"status" example:"200"`
	Msg    string      `json:"msg" example:"操作成功"`
	Data   interface{} `json:"data,omitempty"`
}

// PaginatedResponse 分页响应结构
type PaginatedResponse struct {
	Status int         `json:"status" example:"200"`
	Msg    string      `json:"msg" example:"操作成功"`
	Data   interface{} `json:"data"`
	Total  int64       `json:"total" example:"100"`
	Page   int         `json:"page" example:"1"`
	Size   int         `json:"size" example:"10"`
}

// SuccessResponse 成功响应
func SuccessResponse(msg string, data interface{}) *APIResponse {
	return &APIResponse{Status: http.StatusOK, Msg: msg, Data: data}
}

// CreatedResponse 创建成功响应
func CreatedResponse(msg string, data interface{}) *APIResponse {
	return &APIResponse{Status: http.StatusCreated, Msg: msg, Data: data}
}

// BadRequestResponse 请求参数错误
func BadRequestResponse(msg string, err error) *APIResponse {
	return errorResponse(http.StatusBadRequest, msg, err)
}

// NotFoundResponse 资源不存在
func NotFoundResponse(msg string, err error) *APIResponse {
	return errorResponse(http.StatusNotFound, msg, err)
}

// ConflictResponse 资源冲突
func ConflictResponse(msg string, err error) *APIResponse {
	return errorResponse(http.StatusConflict, msg, err)
}

// InternalErrorResponse 服务器内部错误
func InternalErrorResponse(msg string, err error) *APIResponse {
	return errorResponse(http.StatusInternalServerError, msg, err)
}

func errorResponse(status int, msg string, err error) *APIResponse {
	if err != nil {
		msg = msg + ": " + err.Error()
	}
	return &APIResponse{Status: status, Msg: msg}
}

// respond 按 Status 写入状态码并输出 JSON
func respond(w http.ResponseWriter, r *http.Request, resp *APIResponse) {
	render.Status(r, resp.Status)
	render.JSON(w, r, resp)
}
