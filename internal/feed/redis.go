package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"Hedera-Agent-Economy/internal/economy"
)

// RedisConfig 描述 Redis 推送通道的连接参数。
type RedisConfig struct {
	Address   string
	Password  string
	DB        int
	KeyPrefix string
	MaxLen    int64
}

// RedisPublisher 把消息按主题写入 Redis list，订阅方通过 LRANGE 拉取。
// 每个主题的列表只保留最近 MaxLen 条。
type RedisPublisher struct {
	client *redis.Client
	prefix string
	maxLen int64
}

var _ Publisher = (*RedisPublisher)(nil)

// NewRedisPublisher 创建 Redis 推送通道。
func NewRedisPublisher(cfg RedisConfig) (*RedisPublisher, error) {
	if cfg.Address == "" {
		return nil, errors.New("Redis address 不能为空")
	}
	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = "economy:feed"
	}
	maxLen := cfg.MaxLen
	if maxLen <= 0 {
		maxLen = 1024
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("连接 Redis 失败: %w", err)
	}
	return &RedisPublisher{client: client, prefix: prefix, maxLen: maxLen}, nil
}

// Publish 将消息推入对应主题的列表并裁剪到上限。
func (p *RedisPublisher) Publish(ctx context.Context, msg economy.Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("序列化消息失败: %w", err)
	}
	key := p.prefix + ":" + msg.Topic
	if err := p.client.LPush(ctx, key, body).Err(); err != nil {
		return fmt.Errorf("Redis 推送消息失败: %w", err)
	}
	if err := p.client.LTrim(ctx, key, 0, p.maxLen-1).Err(); err != nil {
		return fmt.Errorf("Redis 裁剪列表失败: %w", err)
	}
	return nil
}

// Close 关闭 Redis 连接。
func (p *RedisPublisher) Close() error {
	if p == nil || p.client == nil {
		return nil
	}
	return p.client.Close()
}
