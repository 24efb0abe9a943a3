package catalog

import (
	"context"
	"sync"

	"github.com/kailas-cloud/similar/internal/domain/event"
)

type batchKey struct{}

// eventBatch holds the mutation events of a bulk write, one per event name.
type eventBatch struct {
	mu      sync.Mutex
	order   []event.Name
	pending map[event.Name]pendingEvent
}

type pendingEvent struct {
	publisher Publisher
	event     event.Event
}

// DeferEvents holds back the mutation events of writes made with the returned context.
// publish emits one event per mutation name, in first-seen order, carrying the last item id.
// Nested calls join the outer batch and get a no-op publish.
func DeferEvents(ctx context.Context) (batched context.Context, publish func()) {
	if _, ok := ctx.Value(batchKey{}).(*eventBatch); ok {
		return ctx, func() {}
	}
	b := &eventBatch{pending: make(map[event.Name]pendingEvent)}
	return context.WithValue(ctx, batchKey{}, b), func() { b.flush(ctx) }
}

func (b *eventBatch) add(p Publisher, e event.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.pending[e.Name]; !ok {
		b.order = append(b.order, e.Name)
	}
	b.pending[e.Name] = pendingEvent{publisher: p, event: e}
}

func (b *eventBatch) flush(ctx context.Context) {
	b.mu.Lock()
	order, pending := b.order, b.pending
	b.order, b.pending = nil, make(map[event.Name]pendingEvent)
	b.mu.Unlock()

	for _, name := range order {
		pe := pending[name]
		pe.publisher.Publish(ctx, pe.event)
	}
}
