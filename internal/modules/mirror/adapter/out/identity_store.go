package out

import (
	"context"
	"encoding/json"
	"fmt"

	"studyhub/internal/modules/mirror/domain"
	mirrorout "studyhub/internal/modules/mirror/port/out"
	"studyhub/internal/platform/kv"
)

const IdentityKey = "auth.identity"

type KVIdentityStore struct {
	store kv.Store
}

func NewKVIdentityStore(store kv.Store) mirrorout.IdentityStore {
	return &KVIdentityStore{store: store}
}

func (s *KVIdentityStore) Load(ctx context.Context) (domain.Identity, bool, error) {
	raw, ok, err := s.store.Get(ctx, IdentityKey)
	if err != nil || !ok || raw == "" {
		return domain.Identity{}, false, err
	}
	who := domain.Identity{}
	if err := json.Unmarshal([]byte(raw), &who); err != nil {
		return domain.Identity{}, false, fmt.Errorf("decode identity: %w", err)
	}
	if who.UserID == "" {
		return domain.Identity{}, false, nil
	}
	return who, true, nil
}

func (s *KVIdentityStore) Save(ctx context.Context, who domain.Identity) error {
	payload, err := json.Marshal(who)
	if err != nil {
		return fmt.Errorf("marshal identity: %w", err)
	}
	return s.store.Set(ctx, IdentityKey, string(payload))
}

func (s *KVIdentityStore) Clear(ctx context.Context) error {
	return s.store.Delete(ctx, IdentityKey)
}
