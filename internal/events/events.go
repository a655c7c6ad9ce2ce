// Package events publishes checkout lifecycle events to a message broker.
package events

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dukerupert/adorn/internal"
	"github.com/rs/zerolog"
)

// Event types.
const (
	TypeCheckoutStarted   = "checkout.started"
	TypeCheckoutCompleted = "checkout.completed"
	TypeCheckoutFailed    = "checkout.failed"
)

// Event is the JSON payload published for each checkout transition.
type Event struct {
	Type           string    `json:"type"`
	OccurredAt     time.Time `json:"occurred_at"`
	IdempotencyKey string    `json:"idempotency_key"`
	OrderID        string    `json:"order_id,omitempty"`
	AmountMinor    int64     `json:"amount_minor"`
	ErrorCode      string    `json:"error_code,omitempty"`
}

// Publisher sends events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Noop discards events.
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }
func (Noop) Close() error                         { return nil }

// New builds the publisher selected by cfg.Backend.
func New(cfg internal.EventsConfig, logger zerolog.Logger) (Publisher, error) {
	switch strings.ToLower(cfg.Backend) {
	case "", "none":
		return Noop{}, nil
	case "nats":
		return NewNATSPublisher(cfg.NATSURL, cfg.SubjectPrefix, logger)
	case "kafka":
		return NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
	default:
		return nil, fmt.Errorf("unknown events backend %q (want none, nats or kafka)", cfg.Backend)
	}
}
