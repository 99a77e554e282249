package out

import (
	"context"

	recorddto "studyhub/internal/modules/record/dto"
)

type SessionSource interface {
	Sessions(ctx context.Context) ([]recorddto.Session, error)
}

type Preferences interface {
	Get(ctx context.Context, key string) (string, bool, error)
}
