package events

import (
	"context"

	"github.com/kailas-cloud/similar/internal/domain/event"
	"github.com/kailas-cloud/similar/internal/metrics"
)

// Flusher drops every cached ranking.
type Flusher interface {
	Flush(ctx context.Context, reason string) error
}

// FlushOnMutation returns a handler that clears the whole result cache on any mutation.
// Any item change can move any other item's ranking, so nothing narrower is safe.
func FlushOnMutation(f Flusher) Handler {
	return func(ctx context.Context, e event.Event) error {
		metrics.MutationEventsTotal.WithLabelValues(string(e.Name)).Inc()
		return f.Flush(ctx, metrics.FlushReasonEvent)
	}
}
