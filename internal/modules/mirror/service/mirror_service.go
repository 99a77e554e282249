package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"studyhub/internal/modules/mirror/domain"
	mirrorout "studyhub/internal/modules/mirror/port/out"
	apperrors "studyhub/internal/platform/errors"
	"studyhub/internal/platform/events"
	"studyhub/internal/platform/logging"
)

// MirrorService scopes every remote call to the signed-in user. Once the
// remote rejects our credentials it stops calling out until the next sign in.
type MirrorService struct {
	api        mirrorout.DocumentAPI
	identities mirrorout.IdentityStore
	bus        *events.Bus
	logger     *slog.Logger

	mu        sync.Mutex
	localOnly bool
	reason    string
}

func NewMirrorService(api mirrorout.DocumentAPI, identities mirrorout.IdentityStore, bus *events.Bus, logger *slog.Logger) *MirrorService {
	return &MirrorService{api: api, identities: identities, bus: bus, logger: logging.OrDiscard(logger)}
}

func (s *MirrorService) LocalOnly() (bool, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.localOnly, s.reason
}

func (s *MirrorService) Identity(ctx context.Context) (domain.Identity, bool, error) {
	return s.identities.Load(ctx)
}

func (s *MirrorService) current(ctx context.Context) (domain.Identity, error) {
	if localOnly, reason := s.LocalOnly(); localOnly {
		return domain.Identity{}, fmt.Errorf("%w: local-only after %s", apperrors.ErrAuthorizationRejected, reason)
	}
	if s.api == nil {
		return domain.Identity{}, fmt.Errorf("%w: no remote configured", apperrors.ErrNotSignedIn)
	}
	who, ok, err := s.identities.Load(ctx)
	if err != nil {
		return domain.Identity{}, err
	}
	if !ok {
		return domain.Identity{}, apperrors.ErrNotSignedIn
	}
	return who, nil
}

func (s *MirrorService) Upsert(ctx context.Context, collection, id string, body json.RawMessage) error {
	who, err := s.current(ctx)
	if err != nil {
		return err
	}
	return s.observe(who, s.api.Upsert(ctx, who, collection, id, body))
}

func (s *MirrorService) Remove(ctx context.Context, collection, id string) error {
	who, err := s.current(ctx)
	if err != nil {
		return err
	}
	return s.observe(who, s.api.Remove(ctx, who, collection, id))
}

func (s *MirrorService) List(ctx context.Context, collection string) ([]json.RawMessage, error) {
	who, err := s.current(ctx)
	if err != nil {
		return nil, err
	}
	items, err := s.api.List(ctx, who, collection)
	if err != nil {
		return nil, s.observe(who, err)
	}
	return items, nil
}

func (s *MirrorService) observe(who domain.Identity, err error) error {
	if err == nil || !errors.Is(err, apperrors.ErrAuthorizationRejected) {
		return err
	}
	s.mu.Lock()
	first := !s.localOnly
	s.localOnly = true
	s.reason = err.Error()
	s.mu.Unlock()
	if first {
		s.logger.Warn("remote rejected credentials, continuing local-only", "user", who.UserID, "err", err)
		if s.bus != nil {
			s.bus.AuthRejected.Publish(events.AuthRejected{UserID: who.UserID, Reason: err.Error()})
		}
	}
	return err
}

// SignIn stores the identity and leaves local-only mode.
func (s *MirrorService) SignIn(ctx context.Context, userID, token string) (domain.Identity, error) {
	who, err := domain.NewIdentity(userID, token)
	if err != nil {
		return domain.Identity{}, err
	}
	if err := s.identities.Save(ctx, who); err != nil {
		return domain.Identity{}, err
	}
	s.mu.Lock()
	s.localOnly = false
	s.reason = ""
	s.mu.Unlock()
	return who, nil
}

func (s *MirrorService) SignOut(ctx context.Context) error {
	return s.identities.Clear(ctx)
}
