// Package redis publishes session notifications to Redis so viewers on other hosts can
// follow an annotation session.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/subboxer"
	backend "github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces every key and channel the publisher writes.
const DefaultPrefix = "subboxer:"

// Publisher forwards session events to a Redis channel and keeps the most recent payload of
// each event type under a hash, so late subscribers can catch up.
type Publisher struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
	logger *slog.Logger
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithPrefix sets the key and channel prefix.
func WithPrefix(prefix string) Option {
	return func(p *Publisher) {
		p.prefix = prefix
	}
}

// WithTTL expires the latest-event hash when the session goes quiet.
func WithTTL(ttl time.Duration) Option {
	return func(p *Publisher) {
		p.ttl = ttl
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// New creates a publisher for a redis:// URL.
func New(url string, opts ...Option) (*Publisher, error) {
	o, err := backend.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	return NewFromClient(backend.NewClient(o), opts...), nil
}

// NewFromClient creates a publisher from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Publisher {
	p := &Publisher{
		client: client,
		prefix: DefaultPrefix,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Channel is the pub/sub channel events are published on.
func (p *Publisher) Channel() string {
	return p.prefix + "events"
}

func (p *Publisher) latestKey() string {
	return p.prefix + "latest"
}

// Ping checks the connection.
func (p *Publisher) Ping(ctx context.Context) error {
	if err := p.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

// Publish sends one event and records it as the latest of its type.
func (p *Publisher) Publish(ctx context.Context, e subboxer.Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	pipe := p.client.TxPipeline()
	pipe.Publish(ctx, p.Channel(), data)
	pipe.HSet(ctx, p.latestKey(), string(e.Type), data)
	if p.ttl > 0 {
		pipe.Expire(ctx, p.latestKey(), p.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to publish %s: %w", e.Type, err)
	}
	return nil
}

// Latest returns the most recent event of each type that was published.
func (p *Publisher) Latest(ctx context.Context) (map[string]subboxer.Event, error) {
	raw, err := p.client.HGetAll(ctx, p.latestKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read latest events: %w", err)
	}
	out := make(map[string]subboxer.Event, len(raw))
	for k, v := range raw {
		var e subboxer.Event
		if err := json.Unmarshal([]byte(v), &e); err != nil {
			return nil, fmt.Errorf("corrupt event %q: %w", k, err)
		}
		out[k] = e
	}
	return out, nil
}

// Run publishes events until the channel closes or ctx is done. Publish failures are
// logged and do not stop the session.
func (p *Publisher) Run(ctx context.Context, events <-chan subboxer.Event) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case e, ok := <-events:
			if !ok {
				return nil
			}
			if err := p.Publish(ctx, e); err != nil {
				p.logger.Warn("event publish failed", "type", e.Type, "err", err)
			}
		}
	}
}

// Close releases the connection.
func (p *Publisher) Close() error {
	return p.client.Close()
}
