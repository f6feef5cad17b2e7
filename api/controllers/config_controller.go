/*
 * @module api/controllers/config_controller
 * @description 配置管理控制器，提供运行期配置的查询与更新接口
 * @architecture RESTful API架构
 * @stateFlow HTTP请求 -> 控制器 -> 配置服务 -> 数据库
 * @rules 未知配置键返回 404；配置值不合法返回 400
 * @dependencies github.com/go-chi/chi/v5, github.com/go-chi/render
 * @refs service/config/config_service.go
 */

package controllers

import (
	"datacensus-service/service/config"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

// ConfigController 配置控制器
type ConfigController struct {
	service *config.ConfigService
}

// NewConfigController 创建配置控制器实例
func NewConfigController(service *config.ConfigService) *ConfigController {
	return &ConfigController{service: service}
}

// UpdateConfigRequest 更新配置请求
type UpdateConfigRequest struct {
	Value       string `json:"value" example:"0.4"`
	Description string `json:"description"`
}

// GetAllConfigs 获取所有配置
// @Summary 获取所有系统配置
// @Description 获取稀疏阈值、定时评分表达式等运行期配置
// @Tags 系统配置
// @Produce json
// @Success 200 {object} APIResponse{data=[]config.ConfigItem}
// @Failure 500 {object} APIResponse
// @Router /config [get]
func (c *ConfigController) GetAllConfigs(w http.ResponseWriter, r *http.Request) {
	configs, err := c.service.GetAllSystemConfigs()
	if err != nil {
		respond(w, r, InternalErrorResponse("获取配置失败", err))
		return
	}
	respond(w, r, SuccessResponse("获取配置成功", configs))
}

// GetConfig 获取单个配置
// @Summary 获取单个配置
// @Tags 系统配置
// @Produce json
// @Param key path string true "配置键"
// @Success 200 {object} APIResponse
// @Failure 404 {object} APIResponse
// @Router /config/{key} [get]
func (c *ConfigController) GetConfig(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	value, err := c.service.GetSystemConfig(key)
	if err != nil {
		respond(w, r, configErrorResponse("获取配置失败", err))
		return
	}

	respond(w, r, SuccessResponse("获取配置成功", map[string]interface{}{
		"key":   key,
		"value": value,
	}))
}

// UpdateConfig 更新配置
// @Summary 更新配置
// @Description 更新指定键的配置值，保存前校验
// @Tags 系统配置
// @Accept json
// @Produce json
// @Param key path string true "配置键"
// @Param request body UpdateConfigRequest true "更新配置请求"
// @Success 200 {object} APIResponse
// @Failure 400 {object} APIResponse
// @Failure 404 {object} APIResponse
// @Router /config/{key} [put]
func (c *ConfigController) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	var req UpdateConfigRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		respond(w, r, BadRequestResponse("请求参数格式错误", err))
		return
	}

	if err := c.service.SetSystemConfig(key, req.Value, req.Description); err != nil {
		respond(w, r, configErrorResponse("更新配置失败", err))
		return
	}

	respond(w, r, SuccessResponse("配置更新成功", map[string]interface{}{
		"key":   key,
		"value": req.Value,
	}))
}

func configErrorResponse(msg string, err error) *APIResponse {
	switch {
	case errors.Is(err, config.ErrUnknownConfigKey):
		return NotFoundResponse(msg, err)
	case errors.Is(err, config.ErrInvalidConfigValue):
		return BadRequestResponse(msg, err)
	default:
		return InternalErrorResponse(msg, err)
	}
}
