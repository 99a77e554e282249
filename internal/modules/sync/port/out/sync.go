package out

import (
	"context"

	recorddto "studyhub/internal/modules/record/dto"
	"studyhub/internal/modules/sync/domain"
)

// LocalStore accepts pulled records without pushing them back out.
type LocalStore interface {
	Apply(ctx context.Context, c recorddto.Collection, body []byte) error
}

// Outbox holds mirror calls that failed while offline, oldest first.
type Outbox interface {
	Append(ctx context.Context, op domain.Op) error
	List(ctx context.Context) ([]domain.Op, error)
	Drop(ctx context.Context, n int) error
}
