package rdb

import (
	"context"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Broadcaster fans status updates out to websocket listeners, possibly on other instances.
type Broadcaster interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, func())
}

type RedisBroadcaster struct {
	client *redis.Client
}

func NewRedisBroadcaster(client *redis.Client) *RedisBroadcaster {
	return &RedisBroadcaster{client: client}
}

func (b *RedisBroadcaster) Publish(ctx context.Context, channel string, payload []byte) error {
	return b.client.Publish(ctx, channel, payload).Err()
}

func (b *RedisBroadcaster) Subscribe(ctx context.Context, channel string) (<-chan []byte, func()) {
	pubsub := b.client.Subscribe(ctx, channel)
	out := make(chan []byte, 8)
	go func() {
		defer close(out)
		for msg := range pubsub.Channel() {
			select {
			case out <- []byte(msg.Payload):
			default:
				logger.Warn().Str("channel", channel).Msg("slow subscriber, dropping message")
			}
		}
	}()
	var once sync.Once
	return out, func() {
		once.Do(func() { _ = pubsub.Close() })
	}
}

// MemoryBroadcaster delivers messages to subscribers of the same process.
type MemoryBroadcaster struct {
	mu   sync.Mutex
	subs map[string]map[chan []byte]struct{}
}

func NewMemoryBroadcaster() *MemoryBroadcaster {
	return &MemoryBroadcaster{subs: make(map[string]map[chan []byte]struct{})}
}

func (b *MemoryBroadcaster) Publish(_ context.Context, channel string, payload []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs[channel] {
		select {
		case ch <- payload:
		default:
		}
	}
	return nil
}

func (b *MemoryBroadcaster) Subscribe(_ context.Context, channel string) (<-chan []byte, func()) {
	ch := make(chan []byte, 8)
	b.mu.Lock()
	if b.subs[channel] == nil {
		b.subs[channel] = make(map[chan []byte]struct{})
	}
	b.subs[channel][ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs[channel], ch)
			if len(b.subs[channel]) == 0 {
				delete(b.subs, channel)
			}
			close(ch)
		})
	}
}
