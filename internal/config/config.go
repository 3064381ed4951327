package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Config 描述经济体守护进程在启动阶段需要加载的核心配置。
type Config struct {
	Server  ServerConfig  `json:"server"`
	Economy EconomyConfig `json:"economy"`
	Feed    FeedConfig    `json:"feed"`
	Archive ArchiveConfig `json:"archive"`
	Logging LoggingConfig `json:"logging"`
	Metrics MetricsConfig `json:"metrics"`
	Demo    DemoConfig    `json:"demo"`
}

// ServerConfig 控制 API 服务的监听地址与跨域来源。
type ServerConfig struct {
	Address        string   `json:"address"`
	AllowedOrigins []string `json:"allowed_origins"`
}

// EconomyConfig 描述模拟经济体自身的参数。
type EconomyConfig struct {
	Network    string `json:"network"`
	TopicsFile string `json:"topics_file"`
	SeedFile   string `json:"seed_file"`
}

// FeedConfig 描述共识消息对外推送的驱动。
type FeedConfig struct {
	Driver   string         `json:"driver"`
	Redis    RedisConfig    `json:"redis"`
	RabbitMQ RabbitMQConfig `json:"rabbitmq"`
}

// RedisConfig 描述 Redis 推送通道的连接参数。
type RedisConfig struct {
	Address   string `json:"address"`
	Password  string `json:"password"`
	DB        int    `json:"db"`
	KeyPrefix string `json:"key_prefix"`
	MaxLen    int64  `json:"max_len"`
}

// RabbitMQConfig 描述 RabbitMQ 推送通道的连接参数。
type RabbitMQConfig struct {
	URL      string `json:"url"`
	Exchange string `json:"exchange"`
	Durable  bool   `json:"durable"`
}

// ArchiveConfig 描述结算流水的落库方式。
// file 驱动把流水追加到 Dir 下的 JSONL 文件，mysql 驱动写入 DSN 指向的库。
type ArchiveConfig struct {
	Driver string `json:"driver"`
	Dir    string `json:"dir"`
	DSN    string `json:"dsn"`
}

// LoggingConfig 控制结构化日志与审计日志输出。
type LoggingConfig struct {
	Level       string      `json:"level"`
	Format      string      `json:"format"`
	OutputPaths []string    `json:"output_paths"`
	Audit       AuditConfig `json:"audit"`
}

// AuditConfig 控制审计日志文件的滚动策略。
type AuditConfig struct {
	Enabled    bool   `json:"enabled"`
	Path       string `json:"path"`
	MaxSizeMB  int    `json:"max_size_mb"`
	MaxBackups int    `json:"max_backups"`
	MaxAgeDays int    `json:"max_age_days"`
}

// MetricsConfig 控制独立的指标服务。
type MetricsConfig struct {
	Enabled bool   `json:"enabled"`
	Address string `json:"address"`
}

// DemoConfig 控制演示任务的自动触发。
type DemoConfig struct {
	RunOnStart bool   `json:"run_on_start"`
	Schedule   string `json:"schedule"`
}

// Load 负责解析指定路径的 JSON 配置文件。
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("配置文件路径为空")
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(content, &cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	if network := os.Getenv("HEDERA_NETWORK"); network != "" {
		cfg.Economy.Network = network
	}

	cfg.applyDefaults(filepath.Dir(path))

	return &cfg, nil
}

// Default 返回全部使用内置默认值的配置，供未提供配置文件的部署直接启动。
func Default() *Config {
	cfg := &Config{}
	if network := os.Getenv("HEDERA_NETWORK"); network != "" {
		cfg.Economy.Network = network
	}
	cfg.applyDefaults(".")
	return cfg
}

// applyDefaults 在用户未填写部分字段时设置合理的默认值。
func (c *Config) applyDefaults(baseDir string) {
	if c.Server.Address == "" {
		c.Server.Address = ":8080"
	}
	if len(c.Server.AllowedOrigins) == 0 {
		c.Server.AllowedOrigins = []string{"*"}
	}

	if c.Economy.Network == "" {
		c.Economy.Network = "testnet"
	}
	if c.Economy.TopicsFile != "" && !filepath.IsAbs(c.Economy.TopicsFile) {
		c.Economy.TopicsFile = filepath.Join(baseDir, c.Economy.TopicsFile)
	}
	if c.Economy.SeedFile != "" && !filepath.IsAbs(c.Economy.SeedFile) {
		c.Economy.SeedFile = filepath.Join(baseDir, c.Economy.SeedFile)
	}

	if c.Feed.Driver == "" {
		c.Feed.Driver = "none"
	}
	if c.Feed.Redis.KeyPrefix == "" {
		c.Feed.Redis.KeyPrefix = "economy:feed"
	}
	if c.Feed.Redis.MaxLen <= 0 {
		c.Feed.Redis.MaxLen = 1024
	}
	if c.Feed.RabbitMQ.Exchange == "" {
		c.Feed.RabbitMQ.Exchange = "economy.feed"
	}

	if c.Archive.Driver == "" {
		c.Archive.Driver = "none"
	}
	if c.Archive.Driver == "file" {
		if c.Archive.Dir == "" {
			c.Archive.Dir = filepath.Join(baseDir, "data")
		} else if !filepath.IsAbs(c.Archive.Dir) {
			c.Archive.Dir = filepath.Join(baseDir, c.Archive.Dir)
		}
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
	if len(c.Logging.OutputPaths) == 0 {
		c.Logging.OutputPaths = []string{"stdout"}
	}
	if c.Logging.Audit.Enabled {
		if c.Logging.Audit.Path == "" {
			c.Logging.Audit.Path = filepath.Join(baseDir, "logs", "audit.log")
		} else if !filepath.IsAbs(c.Logging.Audit.Path) {
			c.Logging.Audit.Path = filepath.Join(baseDir, c.Logging.Audit.Path)
		}
	}

	if c.Metrics.Address == "" {
		c.Metrics.Address = ":2112"
	}
}
