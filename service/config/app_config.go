/*
 * @module service/config/app_config
 * @description 进程级配置：从 YAML 文件加载，再由环境变量覆盖，最后校验
 * @architecture 分层架构 - 配置层
 * @stateFlow 默认值 -> 配置文件 -> 环境变量覆盖 -> 配置校验
 * @rules 环境变量优先级最高；未配置 Redis/Kafka/MQTT 时对应功能关闭
 * @dependencies gopkg.in/yaml.v3, github.com/spf13/cast
 * @refs main.go, service/init.go
 */

package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

// AppConfig 应用配置
type AppConfig struct {
	Environment  string         `yaml:"environment"`
	Server       ServerConfig   `yaml:"server"`
	Database     DatabaseConfig `yaml:"database"`
	Redis        RedisConfig    `yaml:"redis"`
	Events       EventsConfig   `yaml:"events"`
	Logging      LoggingConfig  `yaml:"logging"`
	SeedDemoData bool           `yaml:"seed_demo_data"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port               int        `yaml:"port"`
	BaseContext        string     `yaml:"base_context"`
	CORS               CORSConfig `yaml:"cors"`
	RateLimitPerMinute int        `yaml:"rate_limit_per_minute"`
}

// CORSConfig CORS配置
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver       string `yaml:"driver"` // postgres, sqlite
	URL          string `yaml:"url"`
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	Name         string `yaml:"name"`
	User         string `yaml:"user"`
	Password     string `yaml:"password"`
	SSLMode      string `yaml:"ssl_mode"`
	SQLitePath   string `yaml:"sqlite_path"`
	MaxOpenConns int    `yaml:"max_open_conns"`
	MaxIdleConns int    `yaml:"max_idle_conns"`
}

// RedisConfig Redis配置，Host 为空表示不启用
type RedisConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// EventsConfig 报告事件发布配置
type EventsConfig struct {
	KafkaBrokers []string `yaml:"kafka_brokers"`
	KafkaTopic   string   `yaml:"kafka_topic"`
	MQTTBroker   string   `yaml:"mqtt_broker"`
	MQTTTopic    string   `yaml:"mqtt_topic"`
	MQTTClientID string   `yaml:"mqtt_client_id"`
}

// LoggingConfig 日志配置
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultAppConfig 默认配置
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		Environment: "default",
		Server: ServerConfig{
			Port: 8080,
			CORS: CORSConfig{
				AllowedOrigins: []string{"https://datacensus.site"},
			},
			RateLimitPerMinute: 120,
		},
		Database: DatabaseConfig{
			Driver:       "sqlite",
			Host:         "localhost",
			Port:         5432,
			Name:         "datacensus",
			User:         "postgres",
			SSLMode:      "disable",
			SQLitePath:   "datacensus.db",
			MaxOpenConns: 25,
			MaxIdleConns: 5,
		},
		Redis: RedisConfig{
			Port: 6379,
		},
		Events: EventsConfig{
			KafkaTopic:   "datacensus.completeness",
			MQTTTopic:    "datacensus/completeness",
			MQTTClientID: "datacensus-service",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadAppConfig 加载配置，path 为空时只使用默认值与环境变量
func LoadAppConfig(path string) (*AppConfig, error) {
	cfg := DefaultAppConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("解析配置文件失败: %w", err)
		}
	}

	if err := applyEnvironmentOverrides(cfg, os.LookupEnv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvironmentOverrides 应用环境变量覆盖
func applyEnvironmentOverrides(cfg *AppConfig, lookup func(string) (string, bool)) error {
	str := func(key string, target *string) {
		if v, ok := lookup(key); ok && v != "" {
			*target = v
		}
	}
	num := func(key string, target *int) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		n, err := cast.ToIntE(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("环境变量 %s 不是有效整数: %w", key, err)
		}
		*target = n
		return nil
	}
	list := func(key string, target *[]string) {
		if v, ok := lookup(key); ok && v != "" {
			*target = splitList(v)
		}
	}

	str("ENVIRONMENT", &cfg.Environment)
	str("BASE_CONTEXT", &cfg.Server.BaseContext)
	list("CORS_ORIGINS", &cfg.Server.CORS.AllowedOrigins)
	str("LOG_LEVEL", &cfg.Logging.Level)

	str("DB_DRIVER", &cfg.Database.Driver)
	str("DATABASE_URL", &cfg.Database.URL)
	str("DB_HOST", &cfg.Database.Host)
	str("DB_NAME", &cfg.Database.Name)
	str("DB_USER", &cfg.Database.User)
	str("DB_PASSWORD", &cfg.Database.Password)
	str("DB_SSLMODE", &cfg.Database.SSLMode)
	str("SQLITE_PATH", &cfg.Database.SQLitePath)
	if _, explicit := lookup("DB_DRIVER"); !explicit && cfg.Database.URL != "" {
		cfg.Database.Driver = "postgres"
	}

	str("REDIS_HOST", &cfg.Redis.Host)
	str("REDIS_PASSWORD", &cfg.Redis.Password)

	list("KAFKA_BROKERS", &cfg.Events.KafkaBrokers)
	str("KAFKA_TOPIC", &cfg.Events.KafkaTopic)
	str("MQTT_BROKER", &cfg.Events.MQTTBroker)
	str("MQTT_TOPIC", &cfg.Events.MQTTTopic)
	str("MQTT_CLIENT_ID", &cfg.Events.MQTTClientID)

	for key, target := range map[string]*int{
		"LISTEN_PORT":           &cfg.Server.Port,
		"RATE_LIMIT_PER_MINUTE": &cfg.Server.RateLimitPerMinute,
		"DB_PORT":               &cfg.Database.Port,
		"REDIS_PORT":            &cfg.Redis.Port,
		"REDIS_DB":              &cfg.Redis.DB,
	} {
		if err := num(key, target); err != nil {
			return err
		}
	}

	if v, ok := lookup("SEED_DEMO_DATA"); ok && v != "" {
		b, err := cast.ToBoolE(v)
		if err != nil {
			return fmt.Errorf("环境变量 SEED_DEMO_DATA 不是有效布尔值: %w", err)
		}
		cfg.SeedDemoData = b
	}
	return nil
}

// Validate 校验配置
func (c *AppConfig) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("服务器端口无效: %d", c.Server.Port)
	}
	if c.Server.BaseContext != "" && !strings.HasPrefix(c.Server.BaseContext, "/") {
		return fmt.Errorf("BASE_CONTEXT 必须以 / 开头: %s", c.Server.BaseContext)
	}
	switch c.Database.Driver {
	case "postgres":
		if c.Database.URL == "" && c.Database.Host == "" {
			return fmt.Errorf("postgres 需要配置 DATABASE_URL 或 DB_HOST")
		}
	case "sqlite":
		if c.Database.SQLitePath == "" {
			return fmt.Errorf("sqlite 需要配置 SQLITE_PATH")
		}
	default:
		return fmt.Errorf("不支持的数据库驱动: %s", c.Database.Driver)
	}
	if c.Server.RateLimitPerMinute < 0 {
		return fmt.Errorf("限流阈值不能为负数: %d", c.Server.RateLimitPerMinute)
	}
	if c.Redis.Host != "" && (c.Redis.Port <= 0 || c.Redis.Port > 65535) {
		return fmt.Errorf("Redis端口无效: %d", c.Redis.Port)
	}
	return nil
}

// PostgresDSN 生成 postgres 连接串，优先使用 DATABASE_URL
func (d DatabaseConfig) PostgresDSN() string {
	if d.URL != "" {
		return d.URL
	}
	parts := []string{
		"host=" + d.Host,
		fmt.Sprintf("port=%d", d.Port),
		"user=" + d.User,
		"dbname=" + d.Name,
		"sslmode=" + d.SSLMode,
	}
	if d.Password != "" {
		parts = append(parts, "password="+d.Password)
	}
	return strings.Join(parts, " ")
}

// Enabled Redis 是否启用
func (r RedisConfig) Enabled() bool {
	return r.Host != ""
}

// Addr Redis 地址
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// RedactedDatabaseTarget 用于日志输出的数据库目标，不含密码
func (d DatabaseConfig) RedactedDatabaseTarget() string {
	if d.Driver == "sqlite" {
		return d.SQLitePath
	}
	if d.URL != "" {
		if u, err := url.Parse(d.URL); err == nil {
			return u.Redacted()
		}
		return "DATABASE_URL"
	}
	return fmt.Sprintf("%s:%d/%s", d.Host, d.Port, d.Name)
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
