package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	progressdto "studyhub/internal/modules/progress/dto"
	recorddto "studyhub/internal/modules/record/dto"
	"studyhub/internal/modules/timer/domain"
	timerout "studyhub/internal/modules/timer/port/out"
	"studyhub/internal/platform/clock"
	"studyhub/internal/platform/events"
	"studyhub/internal/platform/id"
	"studyhub/internal/platform/logging"
)

type Options struct {
	Targets    domain.Targets
	MinSession time.Duration
	Location   *time.Location
}

type TimerService struct {
	clock   clock.Clock
	idGen   id.Generator
	states  timerout.StateStore
	records timerout.SessionRecorder
	bus     *events.Bus
	logger  *slog.Logger
	opts    Options
}

func NewTimerService(clk clock.Clock, idGen id.Generator, states timerout.StateStore, records timerout.SessionRecorder, bus *events.Bus, logger *slog.Logger, opts Options) *TimerService {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.MinSession <= 0 {
		opts.MinSession = time.Second
	}
	return &TimerService{clock: clk, idGen: idGen, states: states, records: records, bus: bus, logger: logging.OrDiscard(logger), opts: opts}
}

func (s *TimerService) now() int64 {
	return clock.Millis(s.clock.Now())
}

func (s *TimerService) Targets() domain.Targets {
	return s.opts.Targets
}

// Read returns the stored state and the wall-clock instant it was read at.
func (s *TimerService) Read(ctx context.Context) (domain.State, int64, error) {
	state, err := s.states.Load(ctx)
	if err != nil {
		return domain.State{}, 0, err
	}
	return state, s.now(), nil
}

func (s *TimerService) Start(ctx context.Context, mode *domain.Mode, subjectID string) (domain.State, error) {
	state, err := s.states.Load(ctx)
	if err != nil {
		return domain.State{}, err
	}
	if mode != nil && *mode != state.Mode {
		if state, err = state.WithMode(*mode); err != nil {
			return domain.State{}, err
		}
	}
	if subjectID != "" {
		state = state.WithSubject(subjectID)
	}
	next, err := state.Start(s.now())
	if err != nil {
		return domain.State{}, err
	}
	if err := s.states.Save(ctx, next); err != nil {
		return domain.State{}, err
	}
	return next, nil
}

func (s *TimerService) Pause(ctx context.Context) (domain.State, error) {
	state, err := s.states.Load(ctx)
	if err != nil {
		return domain.State{}, err
	}
	next, err := state.Pause(s.now())
	if err != nil {
		return domain.State{}, err
	}
	if err := s.states.Save(ctx, next); err != nil {
		return domain.State{}, err
	}
	return next, nil
}

type StopResult struct {
	Elapsed     int64
	Session     *recorddto.Session
	XPAwarded   int64
	LevelBefore int
	LevelAfter  int
}

// Stop resets the timer, then materializes a session when enough time has
// passed. The reset comes first so a retried Stop can never record the same
// stretch twice; if the session cannot be stored the timer is put back.
func (s *TimerService) Stop(ctx context.Context) (StopResult, error) {
	state, err := s.states.Load(ctx)
	if err != nil {
		return StopResult{}, err
	}
	now := s.now()
	elapsed, err := state.Stop(now)
	if err != nil {
		return StopResult{}, err
	}
	if err := s.states.Clear(ctx); err != nil {
		return StopResult{}, err
	}
	result := StopResult{Elapsed: elapsed}
	if elapsed <= s.opts.MinSession.Milliseconds() {
		return result, nil
	}
	if err := s.materialize(ctx, state, elapsed, now, &result); err != nil {
		if restoreErr := s.states.Save(ctx, state); restoreErr != nil {
			s.logger.Error("timer state lost after failed stop", "err", restoreErr)
			return StopResult{}, errors.Join(err, fmt.Errorf("restore timer: %w", restoreErr))
		}
		return StopResult{}, err
	}
	return result, nil
}

func (s *TimerService) materialize(ctx context.Context, state domain.State, elapsed, now int64, result *StopResult) error {
	existing, err := s.records.Sessions(ctx)
	if err != nil {
		return err
	}
	var before int64
	for _, prev := range existing {
		before += progressdto.SessionXP(prev.DurationMs)
	}
	start := now - elapsed
	session := recorddto.Session{
		ID:         s.idGen.New(),
		SubjectID:  state.SubjectID,
		StartTime:  start,
		EndTime:    now,
		DurationMs: elapsed,
		DateString: clock.DateString(start, s.opts.Location),
	}
	if err := s.records.Put(ctx, session); err != nil {
		return err
	}
	result.Session = &session
	result.XPAwarded = progressdto.SessionXP(elapsed)
	result.LevelBefore = progressdto.LevelForXP(before)
	result.LevelAfter = progressdto.LevelForXP(before + result.XPAwarded)
	if result.LevelAfter > result.LevelBefore {
		s.logger.Info("level up", "level", result.LevelAfter, "total_xp", before+result.XPAwarded)
		if s.bus != nil {
			s.bus.LevelUp.Publish(events.LevelUp{Level: result.LevelAfter, TotalXP: before + result.XPAwarded})
		}
	}
	return nil
}

func (s *TimerService) SetMode(ctx context.Context, mode domain.Mode) (domain.State, error) {
	state, err := s.states.Load(ctx)
	if err != nil {
		return domain.State{}, err
	}
	next, err := state.WithMode(mode)
	if err != nil {
		return domain.State{}, err
	}
	if err := s.states.Save(ctx, next); err != nil {
		return domain.State{}, err
	}
	return next, nil
}

func (s *TimerService) SetSubject(ctx context.Context, subjectID string) (domain.State, error) {
	state, err := s.states.Load(ctx)
	if err != nil {
		return domain.State{}, err
	}
	next := state.WithSubject(subjectID)
	if err := s.states.Save(ctx, next); err != nil {
		return domain.State{}, err
	}
	return next, nil
}
