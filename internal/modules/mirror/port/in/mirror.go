package in

import (
	"context"
	"encoding/json"

	"studyhub/internal/modules/mirror/dto"
)

// Client mirrors records to the remote. Upsert and Remove never fail the
// caller; ListAll does.
type Client interface {
	Upsert(ctx context.Context, collection, id string, body json.RawMessage)
	Remove(ctx context.Context, collection, id string)
	TryUpsert(ctx context.Context, collection, id string, body json.RawMessage) error
	TryRemove(ctx context.Context, collection, id string) error
	ListAll(ctx context.Context, collection string) ([]json.RawMessage, error)

	SignIn(ctx context.Context, userID, token string) (dto.IdentityOutput, error)
	SignOut(ctx context.Context) error
	Status(ctx context.Context) (dto.StatusOutput, error)
}
