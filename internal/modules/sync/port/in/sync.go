package in

import (
	"context"

	"studyhub/internal/modules/sync/dto"
)

type Usecase interface {
	SignIn(ctx context.Context, userID, token string) (dto.PullOutput, error)
	SignOut(ctx context.Context) error
	SyncNow(ctx context.Context) (dto.PullOutput, error)
	Status(ctx context.Context) (dto.StatusOutput, error)
	Drain(ctx context.Context) error
}
