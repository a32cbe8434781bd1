// Package notify provides fire-and-forget event publishing with a Redis
// pub/sub implementation. Publish failures are logged and never propagate
// to the operation they report on.
package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/chronicle-ai/chronicle/pkg/lifecycle"
)

// Event is a structured notification payload. Fields beyond Kind are
// event-specific and carried in Data.
type Event struct {
	Kind      string         `json:"kind"`
	Data      map[string]any `json:"data,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// Publisher emits events to interested subscribers. Implementations must
// treat delivery as best-effort.
type Publisher interface {
	// Publish sends an event to a topic. It never returns an error;
	// delivery failures are logged.
	Publish(ctx context.Context, topic string, event Event)
}

// System manages the publisher connection and lifecycle coordination.
type System interface {
	Publisher
	// Start registers shutdown hooks that close the underlying connection.
	Start(lc *lifecycle.Coordinator) error
}

type redisPublisher struct {
	client *redis.Client
	prefix string
	logger *slog.Logger
}

// New creates a Redis-backed notification system from the given configuration.
// The connection is validated lazily; Redis being unreachable degrades
// notifications without affecting callers.
func New(cfg *Config, logger *slog.Logger) System {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	return &redisPublisher{
		client: client,
		prefix: cfg.TopicPrefix,
		logger: logger.With("system", "notify"),
	}
}

func (p *redisPublisher) Start(lc *lifecycle.Coordinator) error {
	p.logger.Info("starting notification system")

	lc.OnStartup(func() {
		if err := p.client.Ping(lc.Context()).Err(); err != nil {
			p.logger.Warn("redis ping failed, notifications degraded", "error", err)
			return
		}
		p.logger.Info("notification channel ready", "addr", p.client.Options().Addr)
	})

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		if err := p.client.Close(); err != nil {
			p.logger.Error("redis close failed", "error", err)
		}
	})

	return nil
}

func (p *redisPublisher) Publish(ctx context.Context, topic string, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("event marshal failed", "topic", topic, "kind", event.Kind, "error", err)
		return
	}

	if err := p.client.Publish(ctx, p.prefix+topic, payload).Err(); err != nil {
		p.logger.Warn("event publish failed", "topic", topic, "kind", event.Kind, "error", err)
	}
}
