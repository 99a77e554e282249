package in

import (
	"context"

	"studyhub/internal/modules/sync/dto"
	syncin "studyhub/internal/modules/sync/port/in"
)

type CLIHandler struct {
	usecase syncin.Usecase
}

func NewCLIHandler(usecase syncin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Login(ctx context.Context, userID, token string) (dto.PullOutput, error) {
	return h.usecase.SignIn(ctx, userID, token)
}

func (h CLIHandler) Logout(ctx context.Context) error {
	return h.usecase.SignOut(ctx)
}

func (h CLIHandler) Now(ctx context.Context) (dto.PullOutput, error) {
	return h.usecase.SyncNow(ctx)
}

func (h CLIHandler) Status(ctx context.Context) (dto.StatusOutput, error) {
	return h.usecase.Status(ctx)
}
