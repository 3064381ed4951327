package feed

import (
	"context"

	"Hedera-Agent-Economy/internal/economy"
)

// Publisher 将共识消息推送到外部通道，并负责释放底层连接。
type Publisher interface {
	Publish(ctx context.Context, msg economy.Message) error
	Close() error
}

// NopPublisher 丢弃所有消息，用于不需要对外推送的部署。
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, economy.Message) error { return nil }

func (NopPublisher) Close() error { return nil }
