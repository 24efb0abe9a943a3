package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/kailas-cloud/similar/internal/db"
	"github.com/kailas-cloud/similar/internal/domain"
	"github.com/kailas-cloud/similar/internal/domain/event"
	"github.com/kailas-cloud/similar/internal/domain/item"
)

// DefaultPrefix namespaces item hashes inside the shared store.
const DefaultPrefix = domain.KeyPrefix + "item:"

// store is the consumer interface for items (ISP).
type store interface {
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	DelMulti(ctx context.Context, keys []string) error
	Exists(ctx context.Context, key string) (bool, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Publisher receives a mutation event after every successful write.
type Publisher interface {
	Publish(ctx context.Context, e event.Event)
}

// Repo stores items as hashes and serves candidate pools to the similarity service.
type Repo struct {
	store     store
	prefix    string
	publisher Publisher
}

// New creates a catalog repository. publisher can be nil.
func New(s store, publisher Publisher) *Repo {
	return &Repo{store: s, prefix: DefaultPrefix, publisher: publisher}
}

// WithPrefix sets the key namespace of item hashes.
func (r *Repo) WithPrefix(prefix string) *Repo {
	r.prefix = prefix
	return r
}

// Put creates or replaces an item. Returns true if created.
func (r *Repo) Put(ctx context.Context, rec *item.Record) (bool, error) {
	created, err := r.PutMulti(ctx, []*item.Record{rec})
	if err != nil {
		return false, err
	}
	return created[0], nil
}

// PutMulti creates or replaces several items with one write round trip.
// Stale fields are removed: every item's hash is deleted before it is rewritten.
// One event is published per mutation name in the batch, not per item.
func (r *Repo) PutMulti(ctx context.Context, recs []*item.Record) ([]bool, error) {
	if len(recs) == 0 {
		return nil, nil
	}
	ctx, publish := DeferEvents(ctx)
	defer publish()

	keys := make([]string, len(recs))
	created := make([]bool, len(recs))
	sets := make([]db.HashSetItem, len(recs))
	for i, rec := range recs {
		keys[i] = r.itemKey(rec.Kind(), rec.ID())
		exists, err := r.store.Exists(ctx, keys[i])
		if err != nil {
			return nil, fmt.Errorf("check exists %s: %w", keys[i], err)
		}
		created[i] = !exists
		sets[i] = db.HashSetItem{Key: keys[i], Fields: buildHashFields(rec)}
	}

	if err := r.store.DelMulti(ctx, keys); err != nil {
		return nil, fmt.Errorf("del before put: %w", err)
	}
	if err := r.store.HSetMulti(ctx, sets); err != nil {
		return nil, fmt.Errorf("hset items: %w", err)
	}

	for i, rec := range recs {
		action := "update"
		if created[i] {
			action = "create"
		}
		r.publish(ctx, rec.Kind(), action, rec.ID())
	}
	return created, nil
}

// Get returns an item by kind and id.
func (r *Repo) Get(ctx context.Context, kind item.Kind, id string) (item.Record, error) {
	key := r.itemKey(kind, id)
	m, err := r.store.HGetAll(ctx, key)
	if err != nil {
		return item.Record{}, fmt.Errorf("hgetall %s: %w", key, err)
	}
	if len(m) == 0 {
		return item.Record{}, fmt.Errorf("%s %s: %w", kind, id, domain.ErrNotFound)
	}
	return parseHashFields(kind, normalizeID(id), m)
}

// Delete removes an item.
func (r *Repo) Delete(ctx context.Context, kind item.Kind, id string) error {
	key := r.itemKey(kind, id)

	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check exists %s: %w", key, err)
	}
	if !exists {
		return fmt.Errorf("%s %s: %w", kind, id, domain.ErrNotFound)
	}

	if err := r.store.DelMulti(ctx, []string{key}); err != nil {
		return fmt.Errorf("del %s: %w", key, err)
	}
	r.publish(ctx, kind, "delete", normalizeID(id))
	return nil
}

// List returns every item of a kind, ordered by id.
func (r *Repo) List(ctx context.Context, kind item.Kind) ([]item.Record, error) {
	return r.scan(ctx, kind, r.kindPattern(kind)+"*")
}

// Siblings returns the items sharing kind and parent with ref, ordered by id. ref itself is excluded.
func (r *Repo) Siblings(ctx context.Context, ref item.Item) ([]item.Item, error) {
	var self item.Record
	if rec, ok := ref.(*item.Record); ok {
		self = *rec
	} else {
		loaded, err := r.Get(ctx, ref.Kind(), ref.ID())
		if err != nil {
			return nil, fmt.Errorf("load reference: %w", err)
		}
		self = loaded
	}

	pattern := r.kindPattern(ref.Kind()) + "*"
	// Parents that are a path prefix of the id narrow the scan; the parent check below stays authoritative.
	if p := self.Parent(); p != "" && strings.HasPrefix(self.ID(), p+"/") {
		pattern = r.kindPattern(ref.Kind()) + db.EscapeGlob(p+"/") + "*"
	}

	recs, err := r.scan(ctx, ref.Kind(), pattern)
	if err != nil {
		return nil, err
	}

	out := make([]item.Item, 0, len(recs))
	for i := range recs {
		if self.IsSibling(&recs[i]) {
			out = append(out, &recs[i])
		}
	}
	return out, nil
}

// Resolve loads items by id, keeping the given order. Ids that no longer exist are skipped.
func (r *Repo) Resolve(ctx context.Context, kind item.Kind, ids []string) ([]item.Item, error) {
	if len(ids) == 0 {
		return []item.Item{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.itemKey(kind, id)
	}
	hashes, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("hgetall multi: %w", err)
	}

	out := make([]item.Item, 0, len(ids))
	for i, m := range hashes {
		if len(m) == 0 {
			continue
		}
		rec, err := parseHashFields(kind, normalizeID(ids[i]), m)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", keys[i], err)
		}
		out = append(out, &rec)
	}
	return out, nil
}

func (r *Repo) scan(ctx context.Context, kind item.Kind, pattern string) ([]item.Record, error) {
	keys, err := r.store.Scan(ctx, pattern)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", pattern, err)
	}
	if len(keys) == 0 {
		return nil, nil
	}
	sort.Strings(keys)

	hashes, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("hgetall multi: %w", err)
	}

	prefix := r.kindPrefix(kind)
	recs := make([]item.Record, 0, len(keys))
	for i, m := range hashes {
		if len(m) == 0 {
			// Deleted between SCAN and HGETALL.
			continue
		}
		rec, err := parseHashFields(kind, strings.TrimPrefix(keys[i], prefix), m)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", keys[i], err)
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

func (r *Repo) publish(ctx context.Context, kind item.Kind, action, id string) {
	if r.publisher == nil {
		return
	}
	name, err := event.ParseName(string(kind) + "." + action)
	if err != nil {
		return
	}
	e := event.New(name, id)
	if b, ok := ctx.Value(batchKey{}).(*eventBatch); ok {
		b.add(r.publisher, e)
		return
	}
	r.publisher.Publish(ctx, e)
}

func (r *Repo) kindPrefix(kind item.Kind) string {
	return r.prefix + string(kind) + ":"
}

// kindPattern is kindPrefix quoted for use in a SCAN pattern.
func (r *Repo) kindPattern(kind item.Kind) string {
	return db.EscapeGlob(r.kindPrefix(kind))
}

func (r *Repo) itemKey(kind item.Kind, id string) string {
	return r.kindPrefix(kind) + normalizeID(id)
}

func normalizeID(id string) string {
	return strings.Trim(id, "/")
}
