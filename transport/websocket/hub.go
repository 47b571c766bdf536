package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/redis/go-redis/v9"
)

const channelPattern = "session:*"

// Hub keeps the sockets subscribed to each session channel and pushes views to them.
type Hub struct {
	logger *slog.Logger

	mu          sync.RWMutex
	subscribers map[string]map[*client]struct{}
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger:      logger.With("component", "websocket"),
		subscribers: make(map[string]map[*client]struct{}),
	}
}

// Broadcast - pushes payload to every socket on channel. A socket whose queue
// is full is disconnected rather than allowed to slow the others down.
func (that *Hub) Broadcast(_ context.Context, channel string, payload []byte) error {
	var header struct {
		Version int64 `json:"version"`
	}
	if err := json.Unmarshal(payload, &header); err != nil {
		return fmt.Errorf("failed to read view version: %w", err)
	}

	var slow []*client

	that.mu.RLock()
	for c := range that.subscribers[channel] {
		if !c.enqueue(header.Version, payload) {
			slow = append(slow, c)
		}
	}
	that.mu.RUnlock()

	for _, c := range slow {
		that.logger.Warn("subscriber is too slow, disconnecting", "channel", channel)
		that.unregister(c)
	}

	return nil
}

// Relay - forwards views published on redis by any instance to the local sockets.
// It blocks until ctx is done.
func (that *Hub) Relay(ctx context.Context, client *redis.Client) error {
	pubsub := client.PSubscribe(ctx, channelPattern)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", channelPattern, err)
	}

	messages := pubsub.Channel()

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}

			if err := that.Broadcast(ctx, msg.Channel, []byte(msg.Payload)); err != nil {
				that.logger.Error("failed to relay view", "channel", msg.Channel, "error", err)
			}
		}
	}
}

// Close - disconnects every socket.
func (that *Hub) Close() {
	that.mu.Lock()
	defer that.mu.Unlock()

	for channel, clients := range that.subscribers {
		for c := range clients {
			close(c.send)
		}
		delete(that.subscribers, channel)
	}
}

func (that *Hub) register(c *client) {
	that.mu.Lock()
	defer that.mu.Unlock()

	clients, ok := that.subscribers[c.channel]
	if !ok {
		clients = make(map[*client]struct{})
		that.subscribers[c.channel] = clients
	}
	clients[c] = struct{}{}

	that.logger.Info("subscriber registered", "channel", c.channel, "subscribers", len(clients))
}

func (that *Hub) unregister(c *client) {
	that.mu.Lock()
	defer that.mu.Unlock()

	clients, ok := that.subscribers[c.channel]
	if !ok {
		return
	}

	if _, ok = clients[c]; !ok {
		return
	}

	delete(clients, c)
	close(c.send)

	if len(clients) == 0 {
		delete(that.subscribers, c.channel)
	}

	that.logger.Info("subscriber unregistered", "channel", c.channel, "subscribers", len(clients))
}

// deliver - queues payload for one socket if it is still registered.
func (that *Hub) deliver(c *client, version int64, payload []byte) {
	that.mu.RLock()
	_, ok := that.subscribers[c.channel][c]
	delivered := ok && c.enqueue(version, payload)
	that.mu.RUnlock()

	if ok && !delivered {
		that.unregister(c)
	}
}

func (that *Hub) subscriberCount(channel string) int {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return len(that.subscribers[channel])
}
