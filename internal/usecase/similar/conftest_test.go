package similar

import (
	"context"
	"testing"
	"time"

	"github.com/kailas-cloud/similar/internal/domain/cache"
	"github.com/kailas-cloud/similar/internal/domain/item"
)

// --- Mocks ---

type mockCatalog struct {
	items         []item.Item
	siblingsErr   error
	siblingsCalls int
	resolveCalls  int
}

func (m *mockCatalog) Siblings(_ context.Context, _ item.Item) ([]item.Item, error) {
	m.siblingsCalls++
	return m.items, m.siblingsErr
}

func (m *mockCatalog) Resolve(_ context.Context, _ item.Kind, ids []string) ([]item.Item, error) {
	m.resolveCalls++
	byID := make(map[string]item.Item, len(m.items))
	for _, it := range m.items {
		byID[it.ID()] = it
	}
	out := []item.Item{}
	for _, id := range ids {
		if it, ok := byID[id]; ok {
			out = append(out, it)
		}
	}
	return out, nil
}

type setCall struct {
	key string
	ids []string
	ttl time.Duration
}

type mockCache struct {
	entries  map[string][]string
	getErr   error
	setErr   error
	flushErr error
	sets     []setCall
	flushes  int
}

func newMockCache() *mockCache {
	return &mockCache{entries: make(map[string][]string)}
}

func (m *mockCache) Get(_ context.Context, key string) cache.Lookup {
	if m.getErr != nil {
		return cache.UnavailableResult(m.getErr)
	}
	ids, ok := m.entries[key]
	if !ok {
		return cache.MissResult()
	}
	return cache.HitResult(cache.Entry{Key: key, IDs: ids})
}

func (m *mockCache) Set(_ context.Context, key string, ids []string, ttl time.Duration) error {
	m.sets = append(m.sets, setCall{key: key, ids: ids, ttl: ttl})
	if m.setErr != nil {
		return m.setErr
	}
	m.entries[key] = ids
	return nil
}

func (m *mockCache) FlushAll(_ context.Context) error {
	m.flushes++
	if m.flushErr != nil {
		return m.flushErr
	}
	m.entries = make(map[string][]string)
	return nil
}

type mockLangs struct {
	multi  bool
	active string
}

func (m mockLangs) MultiLanguage() bool { return m.multi }

func (m mockLangs) Active(_ context.Context) (string, bool) {
	return m.active, m.active != ""
}

// --- Helpers ---

func page(t *testing.T, id string, fields map[string]string, translations ...string) *item.Record {
	t.Helper()
	rec, err := item.NewRecord(item.Page, id, "", fields, translations)
	if err != nil {
		t.Fatalf("NewRecord(%s): %v", id, err)
	}
	return &rec
}

func tagged(t *testing.T, id, tags string, translations ...string) *item.Record {
	t.Helper()
	return page(t, id, map[string]string{"tags": tags}, translations...)
}

func ids(items []item.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID()
	}
	return out
}

func scoredIDs(ranked []ScoredItem) []string {
	out := make([]string, len(ranked))
	for i, r := range ranked {
		out[i] = r.Item.ID()
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
