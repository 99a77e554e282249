package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"studyhub/internal/modules/mirror/dto"
	mirrorin "studyhub/internal/modules/mirror/port/in"
	"studyhub/internal/modules/mirror/service"
	apperrors "studyhub/internal/platform/errors"
	"studyhub/internal/platform/logging"
)

type Interactor struct {
	svc    *service.MirrorService
	logger *slog.Logger
}

func NewInteractor(svc *service.MirrorService, logger *slog.Logger) mirrorin.Client {
	return &Interactor{svc: svc, logger: logging.OrDiscard(logger)}
}

// Upsert is best-effort: failures are logged and dropped.
func (i *Interactor) Upsert(ctx context.Context, collection, id string, body json.RawMessage) {
	i.report("upsert", collection, id, i.svc.Upsert(ctx, collection, id, body))
}

func (i *Interactor) Remove(ctx context.Context, collection, id string) {
	i.report("remove", collection, id, i.svc.Remove(ctx, collection, id))
}

func (i *Interactor) TryUpsert(ctx context.Context, collection, id string, body json.RawMessage) error {
	return i.svc.Upsert(ctx, collection, id, body)
}

func (i *Interactor) TryRemove(ctx context.Context, collection, id string) error {
	return i.svc.Remove(ctx, collection, id)
}

func (i *Interactor) report(op, collection, id string, err error) {
	switch {
	case err == nil:
	case errors.Is(err, apperrors.ErrNotSignedIn):
		i.logger.Debug("mirror skipped", "op", op, "collection", collection, "id", id, "err", err)
	case errors.Is(err, apperrors.ErrAuthorizationRejected):
		i.logger.Warn("mirror rejected, kept local", "op", op, "collection", collection, "id", id, "err", err)
	default:
		i.logger.Warn("mirror failed", "op", op, "collection", collection, "id", id, "err", err)
	}
}

func (i *Interactor) ListAll(ctx context.Context, collection string) ([]json.RawMessage, error) {
	return i.svc.List(ctx, collection)
}

func (i *Interactor) SignIn(ctx context.Context, userID, token string) (dto.IdentityOutput, error) {
	who, err := i.svc.SignIn(ctx, userID, token)
	if err != nil {
		return dto.IdentityOutput{}, err
	}
	return dto.IdentityOutput{UserID: who.UserID, HasToken: who.Token != ""}, nil
}

func (i *Interactor) SignOut(ctx context.Context) error {
	return i.svc.SignOut(ctx)
}

func (i *Interactor) Status(ctx context.Context) (dto.StatusOutput, error) {
	who, ok, err := i.svc.Identity(ctx)
	if err != nil {
		return dto.StatusOutput{}, err
	}
	localOnly, reason := i.svc.LocalOnly()
	return dto.StatusOutput{SignedIn: ok, UserID: who.UserID, LocalOnly: localOnly, Reason: reason}, nil
}
