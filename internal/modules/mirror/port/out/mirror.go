package out

import (
	"context"
	"encoding/json"

	"studyhub/internal/modules/mirror/domain"
)

// DocumentAPI is the remote keyed document service, namespaced per user
// and per collection.
type DocumentAPI interface {
	Upsert(ctx context.Context, who domain.Identity, collection, id string, body json.RawMessage) error
	Remove(ctx context.Context, who domain.Identity, collection, id string) error
	List(ctx context.Context, who domain.Identity, collection string) ([]json.RawMessage, error)
}

type IdentityStore interface {
	Load(ctx context.Context) (domain.Identity, bool, error)
	Save(ctx context.Context, identity domain.Identity) error
	Clear(ctx context.Context) error
}
