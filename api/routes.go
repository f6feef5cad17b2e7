/*
 * @module api/routes
 * @description API路由配置模块，负责初始化和配置所有HTTP路由
 * @architecture RESTful API架构
 * @stateFlow 无状态HTTP请求处理
 * @rules 评分接口在启用 Redis 时按客户端IP限流；/completeness 为 /completitud 的别名
 * @dependencies github.com/go-chi/chi/v5, github.com/go-chi/cors, github.com/go-chi/render
 * @refs service/init.go, api/controllers
 */

package api

import (
	"datacensus-service/api/controllers"
	"datacensus-service/api/middleware"
	"datacensus-service/service"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
)

// InitRoute 初始化所有API路由
func InitRoute(r chi.Router) {
	// 基础中间件
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(render.SetContentType(render.ContentTypeJSON))

	// CORS配置
	origins := []string{"*"}
	if service.AppConfig != nil && len(service.AppConfig.Server.CORS.AllowedOrigins) > 0 {
		origins = service.AppConfig.Server.CORS.AllowedOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// 健康检查
	healthController := controllers.NewHealthController(service.DB)
	r.Get("/health", healthController.Health)
	r.Get("/ready", healthController.Ready)

	// 完整性评分
	completenessController := controllers.NewCompletenessController(
		service.GlobalDatasetService,
		service.GlobalDatasetService,
		service.GlobalConfigService,
		service.GlobalReportService,
	)
	completenessRoutes := func(r chi.Router) {
		if limiter := rateLimitMiddleware(); limiter != nil {
			r.Use(limiter)
		}
		r.Get("/", completenessController.GetCompleteness)
		r.Get("/columns", completenessController.GetColumnStats)
		r.Route("/reports", func(r chi.Router) {
			r.Post("/", completenessController.CreateReport)
			r.Get("/", completenessController.GetReports)
		})
	}
	r.Route("/completitud", completenessRoutes)
	r.Route("/completeness", completenessRoutes)

	// 数据集管理
	r.Route("/datasets", func(r chi.Router) {
		datasetController := controllers.NewDatasetController(service.GlobalDatasetService)
		r.Post("/", datasetController.CreateDataset)
		r.Get("/", datasetController.ListDatasets)
		r.Post("/import", datasetController.ImportCSV)
		r.Get("/{id}", datasetController.GetDataset)
		r.Put("/{id}/metadata", datasetController.UpdateMetadata)
		r.Delete("/{id}", datasetController.DeleteDataset)
	})

	// 运行期配置
	r.Route("/config", func(r chi.Router) {
		configController := controllers.NewConfigController(service.GlobalConfigService)
		r.Get("/", configController.GetAllConfigs)
		r.Get("/{key}", configController.GetConfig)
		r.Put("/{key}", configController.UpdateConfig)
	})
}

// rateLimitMiddleware 未启用 Redis 或未配置阈值时返回 nil
func rateLimitMiddleware() func(http.Handler) http.Handler {
	if service.GlobalRateLimiter == nil || service.AppConfig == nil || service.AppConfig.Server.RateLimitPerMinute <= 0 {
		return nil
	}
	return middleware.RateLimit(service.GlobalRateLimiter, service.AppConfig.Server.RateLimitPerMinute, time.Minute)
}
