package main

import (
	"datacensus-service/api"
	_ "datacensus-service/docs"
	"datacensus-service/logger"
	"datacensus-service/service"
	"datacensus-service/service/config"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	daprd "github.com/dapr/go-sdk/service/http"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

// configPath CONFIG_FILE 优先，否则使用当前目录下存在的 config.yaml
func configPath() string {
	if val := os.Getenv("CONFIG_FILE"); val != "" {
		return val
	}
	if _, err := os.Stat("config.yaml"); err == nil {
		return "config.yaml"
	}
	return ""
}

// @title 数据完整性评分服务 API
// @version 1.0
// @description 计算数据集完整性评分（completitud），提供数据集导入、评分报告与运行期配置接口
// @BasePath /
func main() {
	cfg, err := config.LoadAppConfig(configPath())
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}
	logger.InitLogger(cfg.Logging.Level)

	if err := service.Init(cfg); err != nil {
		slog.Error("服务初始化失败", "error", err)
		os.Exit(1)
	}
	defer service.Shutdown()

	mux := chi.NewRouter()

	// 如果有BASE_CONTEXT，则在该路径下挂载所有路由
	if base := cfg.Server.BaseContext; base != "" {
		mux.Route(base, func(r chi.Router) {
			api.InitRoute(r)
			r.Handle("/metrics", promhttp.Handler())
			r.Handle("/swagger*", httpSwagger.WrapHandler)
		})
	} else {
		api.InitRoute(mux)
		mux.Handle("/metrics", promhttp.Handler())
		mux.Handle("/swagger*", httpSwagger.WrapHandler)
	}

	s := daprd.NewServiceWithMux(":"+strconv.Itoa(cfg.Server.Port), mux)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("服务启动", "port", cfg.Server.Port, "base_context", cfg.Server.BaseContext)
		errCh <- s.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		slog.Info("收到退出信号，开始关闭服务", "signal", sig.String())
		if err := s.GracefulStop(); err != nil {
			slog.Error("关闭HTTP服务失败", "error", err)
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP服务异常退出", "error", err)
		}
	}
}
