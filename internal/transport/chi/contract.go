package chi

import (
	"context"

	"github.com/kailas-cloud/similar/internal/domain/event"
	"github.com/kailas-cloud/similar/internal/domain/item"
	healthuc "github.com/kailas-cloud/similar/internal/usecase/health"
	"github.com/kailas-cloud/similar/internal/usecase/similar"
)

// SimilarService ranks and caches.
type SimilarService interface {
	Similar(ctx context.Context, req similar.Request) ([]item.Item, error)
	Flush(ctx context.Context, reason string) error
}

// ItemStore is the catalog as seen by the API.
type ItemStore interface {
	Put(ctx context.Context, rec *item.Record) (bool, error)
	Get(ctx context.Context, kind item.Kind, id string) (item.Record, error)
	Delete(ctx context.Context, kind item.Kind, id string) error
	Resolve(ctx context.Context, kind item.Kind, ids []string) ([]item.Item, error)
}

// EventPublisher forwards mutation events.
type EventPublisher interface {
	Publish(ctx context.Context, e event.Event)
}

// HealthChecker reports component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}
