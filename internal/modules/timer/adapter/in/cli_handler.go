package in

import (
	"context"

	timerdto "studyhub/internal/modules/timer/dto"
	timerin "studyhub/internal/modules/timer/port/in"
)

type CLIHandler struct {
	usecase timerin.Usecase
}

func NewCLIHandler(usecase timerin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Start(ctx context.Context, mode, subjectID string) (timerdto.StatusOutput, error) {
	return h.usecase.Start(ctx, timerdto.StartInput{Mode: mode, SubjectID: subjectID})
}

func (h CLIHandler) Pause(ctx context.Context) (timerdto.StatusOutput, error) {
	return h.usecase.Pause(ctx)
}

func (h CLIHandler) Stop(ctx context.Context) (timerdto.StopOutput, error) {
	return h.usecase.Stop(ctx)
}

func (h CLIHandler) Status(ctx context.Context) (timerdto.StatusOutput, error) {
	return h.usecase.Status(ctx)
}

func (h CLIHandler) SetMode(ctx context.Context, mode string) (timerdto.StatusOutput, error) {
	return h.usecase.SetMode(ctx, mode)
}

func (h CLIHandler) SetSubject(ctx context.Context, subjectID string) (timerdto.StatusOutput, error) {
	return h.usecase.SetSubject(ctx, subjectID)
}

func (h CLIHandler) Sounds(ctx context.Context) ([]timerdto.SoundOutput, error) {
	return h.usecase.Sounds(ctx)
}

func (h CLIHandler) AddSound(ctx context.Context, label, src string) (timerdto.SoundOutput, error) {
	return h.usecase.AddSound(ctx, label, src)
}

func (h CLIHandler) RemoveSound(ctx context.Context, id string) error {
	return h.usecase.RemoveSound(ctx, id)
}
