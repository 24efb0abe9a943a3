package resultcache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kailas-cloud/similar/internal/db"
	"github.com/kailas-cloud/similar/internal/domain"
	"github.com/kailas-cloud/similar/internal/domain/cache"
)

func TestGet_Miss(t *testing.T) {
	c, _, total := newTestCache(t)

	lookup := c.Get(context.Background(), "abc")
	if lookup.Status != cache.Miss {
		t.Fatalf("expected miss, got %v", lookup.Status)
	}
	if got := testutil.ToFloat64(total.WithLabelValues("miss")); got != 1 {
		t.Errorf("expected miss counter 1, got %v", got)
	}
}

func TestGet_Hit(t *testing.T) {
	c, ms, total := newTestCache(t)

	var gotKey string
	ms.getFn = func(_ context.Context, key string) ([]byte, error) {
		gotKey = key
		return []byte(`{"ids":["blog/b","blog/c"]}`), nil
	}

	lookup := c.Get(context.Background(), "abc")
	if lookup.Status != cache.Hit {
		t.Fatalf("expected hit, got %v", lookup.Status)
	}
	if gotKey != DefaultPrefix+"abc" {
		t.Errorf("expected prefixed key, got %q", gotKey)
	}
	if len(lookup.Entry.IDs) != 2 || lookup.Entry.IDs[0] != "blog/b" {
		t.Errorf("unexpected ids %v", lookup.Entry.IDs)
	}
	if lookup.Entry.Key != "abc" {
		t.Errorf("expected entry key abc, got %q", lookup.Entry.Key)
	}
	if got := testutil.ToFloat64(total.WithLabelValues("hit")); got != 1 {
		t.Errorf("expected hit counter 1, got %v", got)
	}
}

func TestGet_EmptyRankingIsHit(t *testing.T) {
	c, ms, _ := newTestCache(t)
	ms.getFn = func(_ context.Context, _ string) ([]byte, error) {
		return []byte(`{"ids":[]}`), nil
	}

	lookup := c.Get(context.Background(), "abc")
	if lookup.Status != cache.Hit {
		t.Fatalf("expected hit, got %v", lookup.Status)
	}
	if lookup.Entry.IDs == nil || len(lookup.Entry.IDs) != 0 {
		t.Errorf("expected empty non-nil ids, got %#v", lookup.Entry.IDs)
	}
}

func TestGet_ExpiredIsMiss(t *testing.T) {
	c, ms, _ := newTestCache(t)
	ms.getFn = func(_ context.Context, _ string) ([]byte, error) {
		return json.Marshal(cache.Entry{IDs: []string{"a"}, ExpiresAt: testNow})
	}

	if lookup := c.Get(context.Background(), "abc"); lookup.Status != cache.Miss {
		t.Fatalf("expected miss for expired entry, got %v", lookup.Status)
	}
}

func TestGet_BackendError(t *testing.T) {
	c, ms, total := newTestCache(t)
	ms.getFn = func(_ context.Context, _ string) ([]byte, error) {
		return nil, &db.Error{Op: db.OpGet, Err: errors.New("connection refused")}
	}

	lookup := c.Get(context.Background(), "abc")
	if lookup.Status != cache.Unavailable {
		t.Fatalf("expected unavailable, got %v", lookup.Status)
	}
	if !errors.Is(lookup.Err, domain.ErrCacheUnavailable) {
		t.Errorf("expected ErrCacheUnavailable, got %v", lookup.Err)
	}
	if got := testutil.ToFloat64(total.WithLabelValues("error")); got != 1 {
		t.Errorf("expected error counter 1, got %v", got)
	}
}

func TestGet_CorruptEntry(t *testing.T) {
	c, ms, _ := newTestCache(t)
	ms.getFn = func(_ context.Context, _ string) ([]byte, error) {
		return []byte("not json"), nil
	}

	if lookup := c.Get(context.Background(), "abc"); lookup.Status != cache.Unavailable {
		t.Fatalf("expected unavailable, got %v", lookup.Status)
	}
}

func TestSet_WritesEntryWithTTL(t *testing.T) {
	c, ms, _ := newTestCache(t)

	var (
		gotKey string
		gotTTL time.Duration
		gotVal []byte
	)
	ms.setFn = func(_ context.Context, key string, value []byte, ttl time.Duration) error {
		gotKey, gotVal, gotTTL = key, value, ttl
		return nil
	}

	if err := c.Set(context.Background(), "abc", []string{"x", "y"}, time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if gotKey != DefaultPrefix+"abc" {
		t.Errorf("unexpected key %q", gotKey)
	}
	if gotTTL != time.Hour {
		t.Errorf("expected ttl 1h, got %v", gotTTL)
	}

	var e cache.Entry
	if err := json.Unmarshal(gotVal, &e); err != nil {
		t.Fatalf("decode stored entry: %v", err)
	}
	if len(e.IDs) != 2 || e.IDs[1] != "y" {
		t.Errorf("unexpected ids %v", e.IDs)
	}
	if !e.ExpiresAt.Equal(testNow.Add(time.Hour)) {
		t.Errorf("unexpected expiry %v", e.ExpiresAt)
	}
}

func TestSet_ZeroTTLHasNoExpiry(t *testing.T) {
	c, ms, _ := newTestCache(t)

	var gotVal []byte
	ms.setFn = func(_ context.Context, _ string, value []byte, _ time.Duration) error {
		gotVal = value
		return nil
	}

	if err := c.Set(context.Background(), "abc", nil, 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if strings.Contains(string(gotVal), "expires_at") {
		t.Errorf("expected no expiry in %s", gotVal)
	}
	if !strings.Contains(string(gotVal), `"ids":[]`) {
		t.Errorf("expected empty id list in %s", gotVal)
	}
}

func TestSet_BackendError(t *testing.T) {
	c, ms, _ := newTestCache(t)
	ms.setFn = func(_ context.Context, _ string, _ []byte, _ time.Duration) error {
		return errors.New("READONLY")
	}

	err := c.Set(context.Background(), "abc", []string{"x"}, time.Hour)
	if !errors.Is(err, domain.ErrCacheUnavailable) {
		t.Fatalf("expected ErrCacheUnavailable, got %v", err)
	}
}

func TestFlushAll_DeletesPrefixedKeys(t *testing.T) {
	c, ms, _ := newTestCache(t)
	c.WithPrefix("site1:results:")

	var pattern string
	ms.scanFn = func(_ context.Context, p string) ([]string, error) {
		pattern = p
		return []string{"site1:results:a", "site1:results:b"}, nil
	}
	var deleted []string
	ms.delMultiFn = func(_ context.Context, keys []string) error {
		deleted = keys
		return nil
	}

	if err := c.FlushAll(context.Background()); err != nil {
		t.Fatalf("FlushAll: %v", err)
	}
	if pattern != "site1:results:*" {
		t.Errorf("unexpected scan pattern %q", pattern)
	}
	if len(deleted) != 2 {
		t.Errorf("expected 2 deletions, got %v", deleted)
	}
}

func TestFlushAll_EmptySkipsDelete(t *testing.T) {
	c, ms, _ := newTestCache(t)
	ms.delMultiFn = func(_ context.Context, _ []string) error {
		t.Fatal("DelMulti must not be called for an empty cache")
		return nil
	}

	if err := c.FlushAll(context.Background()); err != nil {
		t.Fatalf("FlushAll: %v", err)
	}
}

func TestFlushAll_ScanError(t *testing.T) {
	c, ms, _ := newTestCache(t)
	ms.scanFn = func(_ context.Context, _ string) ([]string, error) {
		return nil, errors.New("timeout")
	}

	if err := c.FlushAll(context.Background()); !errors.Is(err, domain.ErrCacheUnavailable) {
		t.Fatalf("expected ErrCacheUnavailable, got %v", err)
	}
}
