package usecase

import (
	"context"
	"log/slog"

	mirrorin "studyhub/internal/modules/mirror/port/in"
	"studyhub/internal/modules/sync/domain"
	"studyhub/internal/modules/sync/dto"
	syncin "studyhub/internal/modules/sync/port/in"
	"studyhub/internal/modules/sync/service"
	apperrors "studyhub/internal/platform/errors"
	"studyhub/internal/platform/logging"
)

type Interactor struct {
	svc    *service.SyncService
	remote mirrorin.Client
	logger *slog.Logger
}

func NewInteractor(svc *service.SyncService, remote mirrorin.Client, logger *slog.Logger) syncin.Usecase {
	return &Interactor{svc: svc, remote: remote, logger: logging.OrDiscard(logger)}
}

// SignIn is an authentication transition: store the identity, replay any
// queued writes, then pull once.
func (i *Interactor) SignIn(ctx context.Context, userID, token string) (dto.PullOutput, error) {
	if _, err := i.remote.SignIn(ctx, userID, token); err != nil {
		return dto.PullOutput{}, err
	}
	return i.flushAndPull(ctx)
}

func (i *Interactor) SignOut(ctx context.Context) error {
	return i.remote.SignOut(ctx)
}

func (i *Interactor) SyncNow(ctx context.Context) (dto.PullOutput, error) {
	status, err := i.remote.Status(ctx)
	if err != nil {
		return dto.PullOutput{}, err
	}
	if !status.SignedIn {
		return dto.PullOutput{}, apperrors.ErrNotSignedIn
	}
	return i.flushAndPull(ctx)
}

func (i *Interactor) flushAndPull(ctx context.Context) (dto.PullOutput, error) {
	flushed, err := i.svc.Flush(ctx)
	if err != nil {
		i.logger.Warn("outbox flush stopped early", "flushed", flushed, "err", err)
	}
	out := toOutput(i.svc.PullAll(ctx))
	out.Flushed = flushed
	return out, nil
}

func (i *Interactor) Status(ctx context.Context) (dto.StatusOutput, error) {
	remote, err := i.remote.Status(ctx)
	if err != nil {
		return dto.StatusOutput{}, err
	}
	pending, err := i.svc.Pending(ctx)
	if err != nil {
		return dto.StatusOutput{}, err
	}
	return dto.StatusOutput{
		SignedIn:      remote.SignedIn,
		UserID:        remote.UserID,
		LocalOnly:     remote.LocalOnly,
		Reason:        remote.Reason,
		OutboxEnabled: i.svc.OutboxEnabled(),
		Pending:       pending,
		LastPull:      i.svc.LastPull(),
	}, nil
}

func (i *Interactor) Drain(ctx context.Context) error {
	return i.svc.Drain(ctx)
}

func toOutput(report domain.PullReport) dto.PullOutput {
	out := dto.PullOutput{At: report.At, Collections: make([]dto.CollectionOutput, 0, len(report.Results))}
	for _, r := range report.Results {
		c := dto.CollectionOutput{Name: r.Collection, Pulled: r.Pulled, Skipped: r.Skipped, Held: r.Held}
		if r.Err != nil {
			c.Error = r.Err.Error()
		}
		out.Collections = append(out.Collections, c)
	}
	return out
}
