package in

import (
	"context"

	"studyhub/internal/modules/timer/dto"
)

type Usecase interface {
	Start(ctx context.Context, input dto.StartInput) (dto.StatusOutput, error)
	Pause(ctx context.Context) (dto.StatusOutput, error)
	Stop(ctx context.Context) (dto.StopOutput, error)
	SetMode(ctx context.Context, mode string) (dto.StatusOutput, error)
	SetSubject(ctx context.Context, subjectID string) (dto.StatusOutput, error)
	Status(ctx context.Context) (dto.StatusOutput, error)
	Watch(ctx context.Context) (<-chan struct{}, error)

	Sounds(ctx context.Context) ([]dto.SoundOutput, error)
	AddSound(ctx context.Context, label, src string) (dto.SoundOutput, error)
	RemoveSound(ctx context.Context, id string) error
}
