// Package events delivers content mutation notifications to in-process subscribers.
package events

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/kailas-cloud/similar/internal/domain/event"
)

// Handler reacts to one event. Errors are logged by the bus and never reach the publisher.
type Handler func(ctx context.Context, e event.Event) error

// Bus is a synchronous fan-out: Publish returns after every handler ran.
type Bus struct {
	mu       sync.RWMutex
	handlers []Handler
	logger   *zap.Logger
}

// NewBus creates an empty bus.
func NewBus(logger *zap.Logger) *Bus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bus{logger: logger}
}

// Subscribe adds a handler. Handlers run in subscription order.
func (b *Bus) Subscribe(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, h)
}

// Publish delivers e to every handler.
func (b *Bus) Publish(ctx context.Context, e event.Event) {
	b.mu.RLock()
	handlers := b.handlers
	b.mu.RUnlock()

	for _, h := range handlers {
		if err := h(ctx, e); err != nil {
			b.logger.Warn("Event handler failed",
				zap.String("event_id", e.ID),
				zap.String("event", string(e.Name)),
				zap.String("item", e.ItemID),
				zap.Error(err),
			)
		}
	}
}
