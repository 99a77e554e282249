package out

import (
	"context"

	"studyhub/internal/modules/record/domain"
)

// Engine is durable keyed-collection storage. Writes to one collection are
// applied in call order; different collections may proceed concurrently.
type Engine interface {
	Put(ctx context.Context, c domain.Collection, doc domain.Document) error
	GetAll(ctx context.Context, c domain.Collection) ([]domain.Document, error)
	GetByDate(ctx context.Context, c domain.Collection, date string) ([]domain.Document, error)
	Delete(ctx context.Context, c domain.Collection, id string) (bool, error)
	DeleteByDate(ctx context.Context, c domain.Collection, date string) ([]string, error)
	Clear(ctx context.Context, c domain.Collection) ([]string, error)
	SchemaVersion(ctx context.Context) (int, error)
	Close() error
}

// WriteObserver hears about every committed local write.
type WriteObserver interface {
	RecordPut(c domain.Collection, id string, body []byte)
	RecordDeleted(c domain.Collection, id string)
}
