/*
 * @module service/config/config_service
 * @description 运行期配置服务：system_configs 表 + 内存缓存，提供评分阈值与报告调度表达式
 * @architecture 分层架构 - 业务服务层
 * @stateFlow 服务调用 -> 缓存 -> 数据库 -> 默认值
 * @rules 写入前校验；未知配置键拒绝写入；读取失败回退到默认值
 * @dependencies datacensus-service/service/models, gorm.io/gorm, github.com/robfig/cron/v3
 * @refs api/controllers/config_controller.go, service/quality/report_scheduler.go
 */

package config

import (
	"datacensus-service/service/models"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cast"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	// ConfigKeySparseThreshold 稀疏列阈值
	ConfigKeySparseThreshold = "completeness.sparse_threshold"
	// ConfigKeyReportCron 定时评分的 cron 表达式（含秒）
	ConfigKeyReportCron = "completeness.report_cron"
	// ConfigKeyReportRetentionDays 评分报告保留天数
	ConfigKeyReportRetentionDays = "completeness.report_retention_days"

	DefaultSparseThreshold     = 0.5
	DefaultReportCron          = "0 0 */6 * * *"
	DefaultReportRetentionDays = 90
)

var (
	// ErrUnknownConfigKey 未知配置键
	ErrUnknownConfigKey = errors.New("未知配置键")
	// ErrInvalidConfigValue 配置值不合法
	ErrInvalidConfigValue = errors.New("配置值不合法")
)

// CronParser 带秒字段的 cron 解析器，与调度器保持一致
var CronParser = cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// ConfigItem 配置项
type ConfigItem struct {
	Key         string `json:"key"`
	Value       string `json:"value"`
	Description string `json:"description"`
	ValueType   string `json:"value_type"`
	IsDefault   bool   `json:"is_default"`
}

type configDefinition struct {
	key         string
	value       string
	description string
	valueType   string
	validate    func(string) error
}

var definitions = []configDefinition{
	{
		key:         ConfigKeySparseThreshold,
		value:       strconv.FormatFloat(DefaultSparseThreshold, 'f', -1, 64),
		description: "列空值比例达到该阈值即视为稀疏列，取值范围 (0,1]",
		valueType:   "float",
		validate:    validateThreshold,
	},
	{
		key:         ConfigKeyReportCron,
		value:       DefaultReportCron,
		description: "定时完整性评分的 cron 表达式（秒 分 时 日 月 周）",
		valueType:   "cron",
		validate:    validateCron,
	},
	{
		key:         ConfigKeyReportRetentionDays,
		value:       strconv.Itoa(DefaultReportRetentionDays),
		description: "评分报告保留天数，过期报告每天凌晨清理",
		valueType:   "int",
		validate:    validateRetentionDays,
	},
}

func findDefinition(key string) (configDefinition, bool) {
	for _, d := range definitions {
		if d.key == key {
			return d, true
		}
	}
	return configDefinition{}, false
}

func validateThreshold(value string) error {
	_, err := ParseThreshold(value)
	return err
}

// ParseThreshold 解析稀疏阈值，必须在 (0,1] 内
func ParseThreshold(value string) (float64, error) {
	v, err := cast.ToFloat64E(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %q 不是数字", ErrInvalidConfigValue, value)
	}
	if !(v > 0 && v <= 1) {
		return 0, fmt.Errorf("%w: 阈值 %v 不在 (0,1] 内", ErrInvalidConfigValue, v)
	}
	return v, nil
}

func validateCron(value string) error {
	if _, err := CronParser.Parse(value); err != nil {
		return fmt.Errorf("%w: cron 表达式 %q 无效: %v", ErrInvalidConfigValue, value, err)
	}
	return nil
}

// ParseRetentionDays 解析报告保留天数，必须为正整数
func ParseRetentionDays(value string) (int, error) {
	days, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %q 不是整数", ErrInvalidConfigValue, value)
	}
	if days <= 0 {
		return 0, fmt.Errorf("%w: 保留天数必须大于0", ErrInvalidConfigValue)
	}
	return days, nil
}

func validateRetentionDays(value string) error {
	_, err := ParseRetentionDays(value)
	return err
}

// DefaultSystemConfigs 默认配置记录，供迁移时写入
func DefaultSystemConfigs() []models.SystemConfig {
	items := make([]models.SystemConfig, 0, len(definitions))
	for _, d := range definitions {
		items = append(items, models.SystemConfig{
			Key:         d.key,
			Value:       d.value,
			Description: d.description,
		})
	}
	return items
}

// ConfigService 配置服务
type ConfigService struct {
	db          *gorm.DB
	environment string

	mu        sync.RWMutex
	cache     map[string]string
	listeners []ChangeListener
}

// ChangeListener 配置写入成功后的回调
type ChangeListener func(key, value string)

// NewConfigService 创建配置服务实例
func NewConfigService(db *gorm.DB, environment string) *ConfigService {
	if environment == "" {
		environment = "default"
	}
	return &ConfigService{
		db:          db,
		environment: environment,
		cache:       make(map[string]string),
	}
}

// GetSystemConfig 获取系统配置，数据库中不存在时返回默认值
func (s *ConfigService) GetSystemConfig(key string) (string, error) {
	def, ok := findDefinition(key)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownConfigKey, key)
	}

	s.mu.RLock()
	value, cached := s.cache[key]
	s.mu.RUnlock()
	if cached {
		return value, nil
	}

	var record models.SystemConfig
	err := s.db.Where("key = ? AND environment = ?", key, s.environment).First(&record).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		value = def.value
	case err != nil:
		return "", fmt.Errorf("查询配置失败: %w", err)
	default:
		value = record.Value
	}

	s.mu.Lock()
	s.cache[key] = value
	s.mu.Unlock()
	return value, nil
}

// SetSystemConfig 设置系统配置
func (s *ConfigService) SetSystemConfig(key, value, description string) error {
	def, ok := findDefinition(key)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownConfigKey, key)
	}
	if err := def.validate(value); err != nil {
		return err
	}
	if description == "" {
		description = def.description
	}

	record := models.SystemConfig{
		Key:         key,
		Value:       value,
		Environment: s.environment,
		Description: description,
	}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}, {Name: "environment"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "description", "updated_at"}),
	}).Create(&record).Error
	if err != nil {
		return fmt.Errorf("保存配置失败: %w", err)
	}

	s.mu.Lock()
	s.cache[key] = value
	listeners := append([]ChangeListener(nil), s.listeners...)
	s.mu.Unlock()

	slog.Info("配置已更新", "key", key, "value", value, "environment", s.environment)
	for _, fn := range listeners {
		fn(key, value)
	}
	return nil
}

// OnChange 注册配置变更回调
func (s *ConfigService) OnChange(fn ChangeListener) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

// GetAllSystemConfigs 获取所有系统配置，缺失的键以默认值补齐
func (s *ConfigService) GetAllSystemConfigs() ([]ConfigItem, error) {
	var records []models.SystemConfig
	if err := s.db.Where("environment = ?", s.environment).Find(&records).Error; err != nil {
		return nil, fmt.Errorf("查询配置失败: %w", err)
	}

	stored := make(map[string]models.SystemConfig, len(records))
	for _, r := range records {
		stored[r.Key] = r
	}

	items := make([]ConfigItem, 0, len(definitions))
	for _, d := range definitions {
		item := ConfigItem{
			Key:         d.key,
			Value:       d.value,
			Description: d.description,
			ValueType:   d.valueType,
			IsDefault:   true,
		}
		if r, ok := stored[d.key]; ok {
			item.Value = r.Value
			item.IsDefault = false
			if r.Description != "" {
				item.Description = r.Description
			}
		}
		items = append(items, item)
	}
	return items, nil
}

// GetSparseThreshold 获取稀疏列阈值，读取或解析失败时返回默认值
func (s *ConfigService) GetSparseThreshold() float64 {
	value, err := s.GetSystemConfig(ConfigKeySparseThreshold)
	if err != nil {
		slog.Warn("读取稀疏阈值失败，使用默认值", "error", err)
		return DefaultSparseThreshold
	}
	threshold, err := ParseThreshold(value)
	if err != nil {
		slog.Warn("稀疏阈值配置无效，使用默认值", "value", value, "error", err)
		return DefaultSparseThreshold
	}
	return threshold
}

// GetReportCron 获取定时评分 cron 表达式
func (s *ConfigService) GetReportCron() string {
	value, err := s.GetSystemConfig(ConfigKeyReportCron)
	if err != nil || validateCron(value) != nil {
		slog.Warn("定时评分表达式无效，使用默认值", "value", value, "error", err)
		return DefaultReportCron
	}
	return value
}

// GetReportRetentionDays 获取报告保留天数
func (s *ConfigService) GetReportRetentionDays() int {
	value, err := s.GetSystemConfig(ConfigKeyReportRetentionDays)
	if err != nil {
		slog.Warn("读取报告保留天数失败，使用默认值", "error", err)
		return DefaultReportRetentionDays
	}
	days, err := ParseRetentionDays(value)
	if err != nil {
		slog.Warn("报告保留天数配置无效，使用默认值", "value", value, "error", err)
		return DefaultReportRetentionDays
	}
	return days
}

// ClearCache 清除配置缓存
func (s *ConfigService) ClearCache() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}
