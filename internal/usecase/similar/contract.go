package similar

import (
	"context"
	"time"

	"github.com/kailas-cloud/similar/internal/domain/cache"
	"github.com/kailas-cloud/similar/internal/domain/item"
)

// SiblingSupplier returns the default candidate pool of a reference item.
type SiblingSupplier interface {
	Siblings(ctx context.Context, ref item.Item) ([]item.Item, error)
}

// Resolver turns cached ids back into items. Ids that no longer exist are skipped.
type Resolver interface {
	Resolve(ctx context.Context, kind item.Kind, ids []string) ([]item.Item, error)
}

// ResultCache stores ranked id lists. Write failures are reported but never fatal.
type ResultCache interface {
	Get(ctx context.Context, key string) cache.Lookup
	Set(ctx context.Context, key string, ids []string, ttl time.Duration) error
	FlushAll(ctx context.Context) error
}

// Languages exposes the site's language setup.
type Languages interface {
	MultiLanguage() bool
	Active(ctx context.Context) (string, bool)
}
