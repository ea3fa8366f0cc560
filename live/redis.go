package live

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"lovenest/logging"
)

// DefaultChannel is the redis pub/sub channel carrying changes.
const DefaultChannel = "lovenest:changes"

// RedisBridge relays changes between instances sharing one database, so
// subscribers of every instance see every write.
type RedisBridge struct {
	rdb     *redis.Client
	channel string
	origin  string
	log     logging.Logger
}

func NewRedisBridge(rdb *redis.Client, channel string, log logging.Logger) *RedisBridge {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisBridge{
		rdb:     rdb,
		channel: channel,
		origin:  uuid.NewString(),
		log:     log.With("component", "redis-bridge"),
	}
}

func (b *RedisBridge) Publish(ctx context.Context, c Change) error {
	c.Origin = b.origin
	data, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, b.channel, data).Err()
}

// Run forwards changes made by other instances to hub until ctx ends.
func (b *RedisBridge) Run(ctx context.Context, hub *Hub) error {
	sub := b.rdb.Subscribe(ctx, b.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return err
	}
	b.log.Info(ctx, "listening for changes", "channel", b.channel)

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var c Change
			if err := json.Unmarshal([]byte(msg.Payload), &c); err != nil {
				b.log.Warn(ctx, "bad change payload", "error", err)
				continue
			}
			if c.Origin == b.origin {
				continue
			}
			hub.Broadcast(c)
		}
	}
}
