package catalog

import (
	"context"
	"sync"
	"testing"

	"github.com/kailas-cloud/similar/internal/db/memory"
	"github.com/kailas-cloud/similar/internal/domain/event"
	"github.com/kailas-cloud/similar/internal/domain/item"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []event.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e event.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) names() []event.Name {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]event.Name, len(p.events))
	for i, e := range p.events {
		out[i] = e.Name
	}
	return out
}

func newTestRepo(t *testing.T) (*Repo, *memory.Store, *recordingPublisher) {
	t.Helper()
	s := memory.NewStore()
	pub := &recordingPublisher{}
	return New(s, pub), s, pub
}

func mustRecord(t *testing.T, kind item.Kind, id, parent string, fields map[string]string, translations ...string) *item.Record {
	t.Helper()
	rec, err := item.NewRecord(kind, id, parent, fields, translations)
	if err != nil {
		t.Fatalf("NewRecord(%s): %v", id, err)
	}
	return &rec
}

func ids(items []item.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID()
	}
	return out
}
