package notifier

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisBroadcaster publishes views on redis pub/sub, so every instance
// subscribed to the channel pattern can relay them to its own sockets.
type RedisBroadcaster struct {
	client *redis.Client
}

func NewRedisBroadcaster(client *redis.Client) *RedisBroadcaster {
	return &RedisBroadcaster{
		client: client,
	}
}

func (that *RedisBroadcaster) Broadcast(ctx context.Context, channel string, payload []byte) error {
	if err := that.client.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", channel, err)
	}

	return nil
}
