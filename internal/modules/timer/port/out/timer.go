package out

import (
	"context"

	recorddto "studyhub/internal/modules/record/dto"
	"studyhub/internal/modules/timer/domain"
)

type StateStore interface {
	Load(ctx context.Context) (domain.State, error)
	Save(ctx context.Context, state domain.State) error
	Clear(ctx context.Context) error
}

// SessionRecorder is the record store seen from the timer.
type SessionRecorder interface {
	Put(ctx context.Context, r recorddto.Record) error
	Sessions(ctx context.Context) ([]recorddto.Session, error)
}

type SoundStore interface {
	LoadSounds(ctx context.Context) ([]domain.CustomSound, error)
	SaveSounds(ctx context.Context, sounds []domain.CustomSound) error
}

// StateWatcher signals whenever the persisted state may have changed.
type StateWatcher interface {
	Watch(ctx context.Context) (<-chan struct{}, error)
}
