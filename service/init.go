/*
 * @module service/init
 * @description 服务初始化模块，负责数据库连接、迁移、Redis、事件发布器与后台任务的启动和关闭
 * @architecture 分层架构 - 服务层
 * @stateFlow 打开数据库 -> 迁移与默认配置 -> 可选组件(Redis/Kafka/MQTT) -> 业务服务 -> 后台任务
 * @rules Redis、Kafka、MQTT 未配置或连接失败时对应功能关闭，不阻止服务启动；变更监听仅在 postgres 下启用
 * @dependencies gorm.io/gorm, gorm.io/driver/postgres, gorm.io/driver/sqlite, github.com/go-redis/redis/v8
 * @refs main.go, api/routes.go
 */

package service

import (
	"context"
	"datacensus-service/service/config"
	"datacensus-service/service/database"
	"datacensus-service/service/dataset"
	"datacensus-service/service/distributed_lock"
	"datacensus-service/service/event"
	"datacensus-service/service/quality"
	"datacensus-service/service/rate_limiter"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	DB          *gorm.DB
	RedisClient *redis.Client
	AppConfig   *config.AppConfig

	GlobalConfigService   *config.ConfigService
	GlobalDatasetService  *dataset.Service
	GlobalReportService   *quality.ReportService
	GlobalReportScheduler *quality.ReportScheduler
	GlobalRateLimiter     *rate_limiter.RedisRateLimiter
	GlobalDistributedLock *distributed_lock.RedisLock
	GlobalPublisher       *event.MultiPublisher
	GlobalDatasetListener *event.DatasetListener
)

// Init 按配置初始化全部服务
func Init(cfg *config.AppConfig) error {
	AppConfig = cfg
	RedisClient, GlobalRateLimiter, GlobalDistributedLock, GlobalDatasetListener = nil, nil, nil, nil

	db, err := OpenDatabase(cfg.Database)
	if err != nil {
		return err
	}
	DB = db

	if err := runMigrations(cfg.Environment); err != nil {
		return err
	}

	initRedis(cfg.Redis)
	initPublishers(cfg.Events)

	return initServices(cfg)
}

// OpenDatabase 打开数据库连接并设置连接池
func OpenDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.PostgresDSN())
	case "sqlite":
		dialector = sqlite.Open(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("不支持的数据库驱动: %s", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("数据库连接失败: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取数据库连接池失败: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	sqlDB.SetConnMaxLifetime(time.Hour)

	slog.Info("数据库连接成功", "driver", cfg.Driver, "target", cfg.RedactedDatabaseTarget())
	return db, nil
}

// runMigrations 运行数据库迁移
func runMigrations(environment string) error {
	if err := database.AutoMigrate(DB); err != nil {
		return fmt.Errorf("数据库迁移失败: %w", err)
	}
	if err := database.InitializeData(DB, environment, config.DefaultSystemConfigs()); err != nil {
		return fmt.Errorf("基础数据初始化失败: %w", err)
	}
	slog.Info("所有数据库迁移任务完成")
	return nil
}

// initRedis 连接 Redis，失败时关闭限流与分布式锁
func initRedis(cfg config.RedisConfig) {
	if !cfg.Enabled() {
		slog.Info("未配置 Redis，限流与分布式锁关闭")
		return
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		slog.Warn("Redis连接失败，限流与分布式锁关闭", "addr", cfg.Addr(), "error", err)
		client.Close()
		return
	}

	RedisClient = client
	GlobalRateLimiter = rate_limiter.NewRedisRateLimiter(client)
	GlobalDistributedLock = distributed_lock.NewRedisLock(client)
	slog.Info("Redis连接成功", "addr", cfg.Addr())
}

// initPublishers 创建已配置的报告事件发布器
func initPublishers(cfg config.EventsConfig) {
	var publishers []event.Publisher

	if len(cfg.KafkaBrokers) > 0 {
		publishers = append(publishers, event.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic))
	}
	if cfg.MQTTBroker != "" {
		p, err := event.NewMQTTPublisher(cfg.MQTTBroker, cfg.MQTTClientID, cfg.MQTTTopic)
		if err != nil {
			slog.Warn("MQTT发布器初始化失败，跳过", "broker", cfg.MQTTBroker, "error", err)
		} else {
			publishers = append(publishers, p)
		}
	}

	GlobalPublisher = event.NewMultiPublisher(publishers...)
}

// initServices 初始化业务服务与后台任务
func initServices(cfg *config.AppConfig) error {
	GlobalConfigService = config.NewConfigService(DB, cfg.Environment)
	GlobalDatasetService = dataset.NewService(DB)

	var publisher quality.ReportPublisher
	if GlobalPublisher != nil && GlobalPublisher.Len() > 0 {
		publisher = GlobalPublisher
	}
	GlobalReportService = quality.NewReportService(DB, GlobalDatasetService, GlobalConfigService, publisher)

	if cfg.SeedDemoData {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		_, created, err := GlobalDatasetService.SeedDemoDataset(ctx)
		cancel()
		if err != nil {
			return fmt.Errorf("写入演示数据失败: %w", err)
		}
		if !created {
			slog.Info("演示数据集已存在", "dataset_id", dataset.DemoDatasetID)
		}
	}

	var locker quality.Locker
	if GlobalDistributedLock != nil {
		locker = GlobalDistributedLock
	}
	GlobalReportScheduler = quality.NewReportScheduler(GlobalReportService, GlobalConfigService, locker)
	if err := GlobalReportScheduler.Start(); err != nil {
		slog.Error("启动报告调度器失败", "error", err)
	}
	GlobalConfigService.OnChange(rescheduleOnCronChange(GlobalReportScheduler))

	if cfg.Database.Driver == "postgres" {
		GlobalDatasetListener = event.NewDatasetListener(cfg.Database.PostgresDSN(), GlobalReportService)
		if err := GlobalDatasetListener.Start(); err != nil {
			slog.Warn("数据集变更监听器启动失败", "error", err)
			GlobalDatasetListener = nil
		}
	}

	slog.Info("服务初始化完成")
	return nil
}

// rescheduleOnCronChange 评分 cron 配置变更时重新调度
func rescheduleOnCronChange(scheduler *quality.ReportScheduler) config.ChangeListener {
	return func(key, value string) {
		if key != config.ConfigKeyReportCron {
			return
		}
		if err := scheduler.Reschedule(value); err != nil {
			slog.Error("重新调度定时评分失败", "cron", value, "error", err)
		}
	}
}

// Shutdown 停止后台任务并释放连接
func Shutdown() {
	if GlobalDatasetListener != nil {
		GlobalDatasetListener.Stop()
	}
	if GlobalReportScheduler != nil {
		GlobalReportScheduler.Stop()
	}
	if GlobalPublisher != nil {
		if err := GlobalPublisher.Close(); err != nil {
			slog.Warn("关闭事件发布器失败", "error", err)
		}
	}
	if RedisClient != nil {
		if err := RedisClient.Close(); err != nil {
			slog.Warn("关闭Redis连接失败", "error", err)
		}
	}
	if DB != nil {
		if sqlDB, err := DB.DB(); err == nil {
			sqlDB.Close()
		}
	}
	slog.Info("服务已关闭")
}
