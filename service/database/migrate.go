/*
 * @module service/database/migrate
 * @description 数据库迁移模块，负责创建和更新数据库表结构并写入默认配置
 * @architecture 数据访问层 - 迁移管理
 * @stateFlow 应用启动时执行数据库迁移 -> 写入缺失的默认配置
 * @rules 确保数据库结构与模型定义保持一致；已存在的配置不被覆盖
 * @dependencies datacensus-service/service/models, gorm.io/gorm
 * @refs service/init.go, service/config/config_service.go
 */

package database

import (
	"datacensus-service/service/models"
	"fmt"
	"log/slog"

	"gorm.io/gorm"
)

// AutoMigrate 自动迁移数据库表结构
func AutoMigrate(db *gorm.DB) error {
	slog.Info("开始数据库迁移...")

	// 数据集相关表
	err := db.AutoMigrate(
		&models.Dataset{},
		&models.DatasetRecord{},
	)
	if err != nil {
		return fmt.Errorf("迁移数据集表失败: %w", err)
	}

	// 评分报告与配置
	err = db.AutoMigrate(
		&models.CompletenessReport{},
		&models.SystemConfig{},
	)
	if err != nil {
		return fmt.Errorf("迁移报告与配置表失败: %w", err)
	}

	slog.Info("数据库迁移完成")
	return nil
}

// InitializeData 写入缺失的默认配置
func InitializeData(db *gorm.DB, environment string, defaults []models.SystemConfig) error {
	slog.Info("开始初始化基础数据...", "environment", environment)

	for _, item := range defaults {
		item.Environment = environment
		var count int64
		if err := db.Model(&models.SystemConfig{}).
			Where("key = ? AND environment = ?", item.Key, environment).
			Count(&count).Error; err != nil {
			return fmt.Errorf("检查默认配置失败: %w", err)
		}
		if count > 0 {
			continue
		}
		if err := db.Create(&item).Error; err != nil {
			return fmt.Errorf("创建默认配置 %s 失败: %w", item.Key, err)
		}
		slog.Info("已创建默认配置", "key", item.Key, "value", item.Value)
	}

	slog.Info("基础数据初始化完成")
	return nil
}
