package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/robfig/cron/v3"

	"Hedera-Agent-Economy/internal/api"
	"Hedera-Agent-Economy/internal/config"
	"Hedera-Agent-Economy/internal/economy"
	"Hedera-Agent-Economy/internal/feed"
	"Hedera-Agent-Economy/internal/hcs"
	"Hedera-Agent-Economy/internal/observability/alerting"
	"Hedera-Agent-Economy/internal/observability/metrics"
	"Hedera-Agent-Economy/internal/storage/mysql"
	"Hedera-Agent-Economy/pkg/logger"
)

// main 是经济体守护进程的入口。
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Fatalf("economyd 运行失败: %v", err)
	}
}

func run(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if err := logger.Init(logger.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: cfg.Logging.OutputPaths,
		Audit: logger.AuditConfig{
			Enabled:    cfg.Logging.Audit.Enabled,
			Path:       cfg.Logging.Audit.Path,
			MaxSizeMB:  cfg.Logging.Audit.MaxSizeMB,
			MaxBackups: cfg.Logging.Audit.MaxBackups,
			MaxAgeDays: cfg.Logging.Audit.MaxAgeDays,
		},
	}); err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	topicCfg, err := hcs.LoadTopicConfig(cfg.Economy.TopicsFile)
	if err != nil {
		return err
	}

	seed := economy.DefaultSeed()
	if cfg.Economy.SeedFile != "" {
		seed, err = economy.LoadSeed(cfg.Economy.SeedFile)
		if err != nil {
			return err
		}
	}

	state, err := economy.NewState(seed, topicCfg.TopicMap())
	if err != nil {
		return err
	}

	opts := []economy.ProcessorOption{
		economy.WithAlertDispatcher(alerting.NewFanout(&alerting.LogNotifier{})),
	}

	feedPublisher, err := createFeedPublisher(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := feedPublisher.Close(); err != nil {
			logger.L().Warn("关闭消息推送通道失败", slog.Any("error", err))
		}
	}()
	opts = append(opts, economy.WithFeedPublisher(feedPublisher))

	switch cfg.Archive.Driver {
	case "", "none":
	case "file":
		archive, err := mysql.NewFileArchive(cfg.Archive.Dir)
		if err != nil {
			return err
		}
		opts = append(opts, economy.WithSettlementArchive(archive))
	case "mysql":
		store, err := mysql.NewSettlementStore(ctx, mysql.Config{DSN: cfg.Archive.DSN})
		if err != nil {
			return err
		}
		defer store.Close()
		opts = append(opts, economy.WithSettlementArchive(store))
	default:
		return mysql.ErrUnsupportedDriver
	}

	processor := economy.NewProcessor(
		state,
		economy.NewRouter(),
		economy.NewSynthesizer(nil),
		hcs.NewTransactionIDs(topicCfg.OperatorAccount),
		opts...,
	)

	if cfg.Metrics.Enabled {
		go func() {
			if err := metrics.StartServer(ctx, cfg.Metrics.Address); err != nil && !errors.Is(err, context.Canceled) {
				logger.L().Warn("指标服务异常退出", slog.Any("error", err))
			}
		}()
	}

	if cfg.Demo.RunOnStart {
		if _, err := processor.RunDemo(ctx); err != nil {
			logger.L().Warn("启动演示任务失败", slog.Any("error", err))
		}
	}

	if cfg.Demo.Schedule != "" {
		scheduler := cron.New()
		if _, err := scheduler.AddFunc(cfg.Demo.Schedule, func() {
			if _, err := processor.RunDemo(ctx); err != nil {
				logger.L().Warn("定时演示任务失败", slog.Any("error", err))
			}
		}); err != nil {
			return fmt.Errorf("注册演示任务调度失败: %w", err)
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	server := api.NewServer(api.Config{
		Address:        cfg.Server.Address,
		Network:        cfg.Economy.Network,
		StatusTopic:    topicCfg.StatusTopic,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	}, state, processor)

	if err := server.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// loadConfig 按优先级解析配置：显式环境变量、默认路径上的文件、内置默认值。
func loadConfig() (*config.Config, error) {
	if path := os.Getenv("ECONOMY_CONFIG"); path != "" {
		return config.Load(path)
	}
	defaultPath := filepath.Join("configs", "economy.json")
	if _, err := os.Stat(defaultPath); err == nil {
		return config.Load(defaultPath)
	}
	return config.Default(), nil
}

// createFeedPublisher 按配置选择消息推送通道，none 表示不对外推送。
func createFeedPublisher(cfg *config.Config) (feed.Publisher, error) {
	switch cfg.Feed.Driver {
	case "", "none":
		return feed.NopPublisher{}, nil
	case "redis":
		return feed.NewRedisPublisher(feed.RedisConfig{
			Address:   cfg.Feed.Redis.Address,
			Password:  cfg.Feed.Redis.Password,
			DB:        cfg.Feed.Redis.DB,
			KeyPrefix: cfg.Feed.Redis.KeyPrefix,
			MaxLen:    cfg.Feed.Redis.MaxLen,
		})
	case "rabbitmq":
		return feed.NewRabbitMQPublisher(feed.RabbitMQConfig{
			URL:      cfg.Feed.RabbitMQ.URL,
			Exchange: cfg.Feed.RabbitMQ.Exchange,
			Durable:  cfg.Feed.RabbitMQ.Durable,
		})
	default:
		return nil, fmt.Errorf("未知的推送驱动: %s", cfg.Feed.Driver)
	}
}
