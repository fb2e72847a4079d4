package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	OpInsert = "insert"
	OpUpdate = "update"
	OpDelete = "delete"
)

// Change tells subscribers that a table changed. Clients re-fetch the collection
// instead of patching their copy.
type Change struct {
	Table string    `json:"table"`
	Op    string    `json:"op"`
	ID    int64     `json:"id,omitempty"`
	At    time.Time `json:"at"`
}

// subscriberBuffer bounds each subscriber. A slow subscriber misses events rather than
// blocking publishers; the next event it does receive triggers the same re-fetch.
const subscriberBuffer = 16

// MemoryFeed fans changes out inside one process.
type MemoryFeed struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan Change
}

func NewMemoryFeed() *MemoryFeed {
	return &MemoryFeed{subs: make(map[int]chan Change)}
}

func (f *MemoryFeed) Publish(_ context.Context, c Change) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ch := range f.subs {
		select {
		case ch <- c:
		default:
		}
	}
	return nil
}

// Subscribe returns a channel of changes and a func that ends the subscription.
func (f *MemoryFeed) Subscribe(ctx context.Context) (<-chan Change, func(), error) {
	ch := make(chan Change, subscriberBuffer)

	f.mu.Lock()
	id := f.nextID
	f.nextID++
	f.subs[id] = ch
	f.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.subs, id)
			close(ch)
			f.mu.Unlock()
		})
	}
	go func() {
		<-ctx.Done()
		cancel()
	}()
	return ch, cancel, nil
}

// RedisFeed shares changes between API replicas over a Redis pub/sub channel.
type RedisFeed struct {
	client  *redis.Client
	channel string
	logger  *slog.Logger
}

func NewRedisFeed(client *redis.Client, channel string, logger *slog.Logger) *RedisFeed {
	return &RedisFeed{client: client, channel: channel, logger: logger}
}

func (f *RedisFeed) Publish(ctx context.Context, c Change) error {
	b, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode change: %w", err)
	}
	if err := f.client.Publish(ctx, f.channel, b).Err(); err != nil {
		return fmt.Errorf("publish change: %w", err)
	}
	return nil
}

func (f *RedisFeed) Subscribe(ctx context.Context) (<-chan Change, func(), error) {
	ps := f.client.Subscribe(ctx, f.channel)
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, nil, fmt.Errorf("subscribe %s: %w", f.channel, err)
	}

	out := make(chan Change, subscriberBuffer)
	go func() {
		defer close(out)
		for msg := range ps.Channel() {
			var c Change
			if err := json.Unmarshal([]byte(msg.Payload), &c); err != nil {
				f.logger.Warn("Dropping malformed change event", "error", err)
				continue
			}
			select {
			case out <- c:
			default:
			}
		}
	}()

	var once sync.Once
	cancel := func() {
		once.Do(func() { _ = ps.Close() })
	}
	go func() {
		<-ctx.Done()
		cancel()
	}()
	return out, cancel, nil
}
