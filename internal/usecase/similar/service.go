package similar

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/similar/internal/domain/cache"
	"github.com/kailas-cloud/similar/internal/domain/item"
	"github.com/kailas-cloud/similar/internal/domain/options"
	"github.com/kailas-cloud/similar/internal/domain/searchitem"
	"github.com/kailas-cloud/similar/internal/logger"
	"github.com/kailas-cloud/similar/internal/metrics"
	"github.com/kailas-cloud/similar/internal/version"
)

// Request is one "find similar items" call.
type Request struct {
	Reference item.Item
	// Index overrides the candidate pool; nil means the reference's siblings.
	Index     []item.Item
	Overrides options.Overrides
}

// Service ranks items by field similarity and caches rankings.
//
// Concurrent misses on the same key each compute and write the same ranking.
// The overwrite is idempotent, so this only costs duplicate work.
type Service struct {
	siblings SiblingSupplier
	resolver Resolver
	cache    ResultCache
	langs    Languages
	defaults options.Options
	version  string
	logger   *zap.Logger
}

// New creates a similarity service. cache and langs can be nil.
func New(
	siblings SiblingSupplier,
	resolver Resolver,
	rc ResultCache,
	langs Languages,
	defaults options.Options,
	l *zap.Logger,
) *Service {
	if l == nil {
		l = zap.NewNop()
	}
	return &Service{
		siblings: siblings,
		resolver: resolver,
		cache:    rc,
		langs:    langs,
		defaults: defaults,
		version:  version.AlgorithmVersion(),
		logger:   l,
	}
}

// Defaults returns the options every request starts from.
func (s *Service) Defaults() options.Options { return s.defaults }

// ComputeSimilar is the presentation-facing entry point: any failure yields an empty result.
func (s *Service) ComputeSimilar(ctx context.Context, req Request) []item.Item {
	items, err := s.Similar(ctx, req)
	if err != nil {
		s.log(ctx).Warn("Similarity request failed",
			zap.String("reference", referenceID(req.Reference)),
			zap.Error(err),
		)
		return []item.Item{}
	}
	return items
}

// Similar returns the items similar to req.Reference, best first.
// Only configuration errors are returned; cache failures degrade to recomputation.
func (s *Service) Similar(ctx context.Context, req Request) ([]item.Item, error) {
	if req.Reference == nil {
		return nil, fmt.Errorf("reference item is required")
	}
	ref := req.Reference

	opts, err := s.defaults.Merge(req.Overrides)
	if err != nil {
		return nil, fmt.Errorf("merge options: %w", err)
	}

	var locale string
	if s.langs != nil {
		locale, _ = s.langs.Active(ctx)
	}

	var explicit []item.Item
	var indexIDs []string
	if req.Index != nil {
		explicit = withoutReference(req.Index, ref)
		indexIDs = make([]string, len(explicit))
		for i, it := range explicit {
			indexIDs[i] = it.ID()
		}
	}

	key, err := cache.Derive(cache.Input{
		Version:     s.version,
		ReferenceID: ref.ID(),
		Options:     opts,
		Locale:      locale,
		Index:       indexIDs,
	})
	if err != nil {
		return nil, fmt.Errorf("derive cache key: %w", err)
	}

	if s.cache != nil {
		if opts.CacheEnabled {
			if items, ok := s.fromCache(ctx, ref.Kind(), key); ok {
				return items, nil
			}
		} else {
			// Stale entries must not survive until caching is turned back on.
			s.flush(ctx, metrics.FlushReasonDisabled)
		}
	}

	searchItems, err := searchitem.Extract(ref, opts.Fields, opts.Delimiter)
	if err != nil {
		return nil, fmt.Errorf("extract search items: %w", err)
	}
	if len(searchItems) == 0 {
		return []item.Item{}, nil
	}

	index := explicit
	if req.Index == nil {
		if index, err = s.siblings.Siblings(ctx, ref); err != nil {
			return nil, fmt.Errorf("load siblings: %w", err)
		}
		index = withoutReference(index, ref)
	}

	start := time.Now()
	ranked := Rank(index, searchItems, opts.Threshold, opts.Delimiter)
	metrics.ScoreDuration.Observe(time.Since(start).Seconds())
	metrics.CandidatesScoredTotal.Add(float64(len(index)))

	if opts.LanguageFilter {
		ranked = FilterByLanguage(ctx, s.langs, ranked)
	}

	result := make([]item.Item, len(ranked))
	ids := make([]string, len(ranked))
	for i, r := range ranked {
		result[i] = r.Item
		ids[i] = r.Item.ID()
	}

	if s.cache != nil && opts.CacheEnabled {
		if err := s.cache.Set(ctx, key, ids, opts.TTL()); err != nil {
			s.log(ctx).Warn("Failed to cache similarity result", zap.String("key", key), zap.Error(err))
		}
	}

	return result, nil
}

// Flush drops every cached ranking.
func (s *Service) Flush(ctx context.Context, reason string) error {
	if s.cache == nil {
		return nil
	}
	if err := s.cache.FlushAll(ctx); err != nil {
		return fmt.Errorf("flush result cache: %w", err)
	}
	metrics.ResultCacheFlushTotal.WithLabelValues(reason).Inc()
	return nil
}

func (s *Service) flush(ctx context.Context, reason string) {
	if err := s.Flush(ctx, reason); err != nil {
		s.log(ctx).Warn("Failed to flush result cache", zap.String("reason", reason), zap.Error(err))
	}
}

func (s *Service) fromCache(ctx context.Context, kind item.Kind, key string) ([]item.Item, bool) {
	lookup := s.cache.Get(ctx, key)
	switch lookup.Status {
	case cache.Hit:
		items, err := s.resolver.Resolve(ctx, kind, lookup.Entry.IDs)
		if err != nil {
			s.log(ctx).Warn("Failed to resolve cached ids", zap.String("key", key), zap.Error(err))
			return nil, false
		}
		return items, true
	case cache.Unavailable:
		s.log(ctx).Warn("Result cache unavailable", zap.String("key", key), zap.Error(lookup.Err))
		return nil, false
	default:
		return nil, false
	}
}

func (s *Service) log(ctx context.Context) *zap.Logger {
	return logger.FromContextOr(ctx, s.logger)
}

func withoutReference(index []item.Item, ref item.Item) []item.Item {
	out := make([]item.Item, 0, len(index))
	for _, it := range index {
		if it.ID() == ref.ID() {
			continue
		}
		out = append(out, it)
	}
	return out
}

func referenceID(ref item.Item) string {
	if ref == nil {
		return ""
	}
	return ref.ID()
}
