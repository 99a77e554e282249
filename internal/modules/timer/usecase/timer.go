package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"studyhub/internal/modules/timer/domain"
	timerdto "studyhub/internal/modules/timer/dto"
	timerin "studyhub/internal/modules/timer/port/in"
	timerout "studyhub/internal/modules/timer/port/out"
	"studyhub/internal/modules/timer/service"
	apperrors "studyhub/internal/platform/errors"
	"studyhub/internal/platform/id"
)

type Interactor struct {
	svc     *service.TimerService
	sounds  timerout.SoundStore
	watcher timerout.StateWatcher
	idGen   id.Generator
}

func NewInteractor(svc *service.TimerService, sounds timerout.SoundStore, watcher timerout.StateWatcher, idGen id.Generator) timerin.Usecase {
	return &Interactor{svc: svc, sounds: sounds, watcher: watcher, idGen: idGen}
}

func (i *Interactor) Start(ctx context.Context, input timerdto.StartInput) (timerdto.StatusOutput, error) {
	var mode *domain.Mode
	if input.Mode != "" {
		m, err := domain.ParseMode(input.Mode)
		if err != nil {
			return timerdto.StatusOutput{}, err
		}
		mode = &m
	}
	if _, err := i.svc.Start(ctx, mode, strings.TrimSpace(input.SubjectID)); err != nil {
		return timerdto.StatusOutput{}, err
	}
	return i.Status(ctx)
}

func (i *Interactor) Pause(ctx context.Context) (timerdto.StatusOutput, error) {
	if _, err := i.svc.Pause(ctx); err != nil {
		return timerdto.StatusOutput{}, err
	}
	return i.Status(ctx)
}

func (i *Interactor) Stop(ctx context.Context) (timerdto.StopOutput, error) {
	result, err := i.svc.Stop(ctx)
	if err != nil {
		return timerdto.StopOutput{}, err
	}
	return timerdto.StopOutput{
		Elapsed:     time.Duration(result.Elapsed) * time.Millisecond,
		Session:     result.Session,
		XPAwarded:   result.XPAwarded,
		LevelBefore: result.LevelBefore,
		LevelAfter:  result.LevelAfter,
		LeveledUp:   result.LevelAfter > result.LevelBefore,
	}, nil
}

func (i *Interactor) SetMode(ctx context.Context, mode string) (timerdto.StatusOutput, error) {
	m, err := domain.ParseMode(mode)
	if err != nil {
		return timerdto.StatusOutput{}, err
	}
	if _, err := i.svc.SetMode(ctx, m); err != nil {
		return timerdto.StatusOutput{}, err
	}
	return i.Status(ctx)
}

func (i *Interactor) SetSubject(ctx context.Context, subjectID string) (timerdto.StatusOutput, error) {
	if _, err := i.svc.SetSubject(ctx, strings.TrimSpace(subjectID)); err != nil {
		return timerdto.StatusOutput{}, err
	}
	return i.Status(ctx)
}

// Status recomputes elapsed time from the stored blob on every call.
func (i *Interactor) Status(ctx context.Context) (timerdto.StatusOutput, error) {
	state, now, err := i.svc.Read(ctx)
	if err != nil {
		return timerdto.StatusOutput{}, err
	}
	elapsed := time.Duration(state.Elapsed(now)) * time.Millisecond
	out := timerdto.StatusOutput{
		Status:    string(state.Status),
		Mode:      string(state.Mode),
		SubjectID: state.SubjectID,
		StartTime: state.StartTime,
		Elapsed:   elapsed,
		Target:    i.svc.Targets().For(state.Mode),
	}
	if out.Target > 0 {
		out.Remaining = max(out.Target-elapsed, 0)
		out.TargetReached = elapsed >= out.Target
	}
	return out, nil
}

func (i *Interactor) Watch(ctx context.Context) (<-chan struct{}, error) {
	if i.watcher == nil {
		return nil, fmt.Errorf("%w: timer watcher is not configured", apperrors.ErrInvalidInput)
	}
	return i.watcher.Watch(ctx)
}

func (i *Interactor) Sounds(ctx context.Context) ([]timerdto.SoundOutput, error) {
	sounds, err := i.sounds.LoadSounds(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]timerdto.SoundOutput, 0, len(sounds))
	for _, s := range sounds {
		out = append(out, timerdto.SoundOutput{ID: s.ID, Label: s.Label, Src: s.Src, IsCustom: s.IsCustom})
	}
	return out, nil
}

func (i *Interactor) AddSound(ctx context.Context, label, src string) (timerdto.SoundOutput, error) {
	label, src = strings.TrimSpace(label), strings.TrimSpace(src)
	if label == "" || src == "" {
		return timerdto.SoundOutput{}, fmt.Errorf("%w: sound label and src are required", apperrors.ErrInvalidInput)
	}
	sounds, err := i.sounds.LoadSounds(ctx)
	if err != nil {
		return timerdto.SoundOutput{}, err
	}
	sound := domain.CustomSound{ID: i.idGen.New(), Label: label, Src: src, IsCustom: true}
	if err := i.sounds.SaveSounds(ctx, append(sounds, sound)); err != nil {
		return timerdto.SoundOutput{}, err
	}
	return timerdto.SoundOutput{ID: sound.ID, Label: sound.Label, Src: sound.Src, IsCustom: true}, nil
}

func (i *Interactor) RemoveSound(ctx context.Context, id string) error {
	sounds, err := i.sounds.LoadSounds(ctx)
	if err != nil {
		return err
	}
	kept := sounds[:0]
	for _, s := range sounds {
		if s.ID != id {
			kept = append(kept, s)
		}
	}
	if len(kept) == len(sounds) {
		return fmt.Errorf("%w: sound %s", apperrors.ErrNotFound, id)
	}
	return i.sounds.SaveSounds(ctx, kept)
}
