package out

import (
	"context"
	"encoding/json"
	"fmt"

	"studyhub/internal/modules/timer/domain"
	timerout "studyhub/internal/modules/timer/port/out"
	"studyhub/internal/platform/kv"
)

const (
	StateKey  = "timer.active"
	SoundsKey = "customSounds"
)

// KVStateStore keeps the timer blob in the key-value layer, apart from the
// synced record collections.
type KVStateStore struct {
	store kv.Store
}

func NewKVStateStore(store kv.Store) *KVStateStore {
	return &KVStateStore{store: store}
}

var (
	_ timerout.StateStore = (*KVStateStore)(nil)
	_ timerout.SoundStore = (*KVStateStore)(nil)
)

// Load treats a missing or unreadable blob as an idle stopwatch.
func (s *KVStateStore) Load(ctx context.Context) (domain.State, error) {
	raw, ok, err := s.store.Get(ctx, StateKey)
	if err != nil {
		return domain.State{}, err
	}
	if !ok || raw == "" {
		return domain.IdleState(), nil
	}
	state := domain.State{}
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return domain.IdleState(), nil
	}
	switch state.Status {
	case domain.Running, domain.Paused, domain.Idle:
	default:
		return domain.IdleState(), nil
	}
	if state.Status == domain.Running && state.StartTime == nil {
		return domain.IdleState(), nil
	}
	if state.Mode == "" {
		state.Mode = domain.Stopwatch
	}
	return state, nil
}

func (s *KVStateStore) Save(ctx context.Context, state domain.State) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal timer state: %w", err)
	}
	return s.store.Set(ctx, StateKey, string(payload))
}

func (s *KVStateStore) Clear(ctx context.Context) error {
	return s.store.Delete(ctx, StateKey)
}

func (s *KVStateStore) LoadSounds(ctx context.Context) ([]domain.CustomSound, error) {
	raw, ok, err := s.store.Get(ctx, SoundsKey)
	if err != nil || !ok || raw == "" {
		return nil, err
	}
	sounds := []domain.CustomSound{}
	if err := json.Unmarshal([]byte(raw), &sounds); err != nil {
		return nil, fmt.Errorf("decode custom sounds: %w", err)
	}
	return sounds, nil
}

func (s *KVStateStore) SaveSounds(ctx context.Context, sounds []domain.CustomSound) error {
	payload, err := json.Marshal(sounds)
	if err != nil {
		return fmt.Errorf("marshal custom sounds: %w", err)
	}
	return s.store.Set(ctx, SoundsKey, string(payload))
}
