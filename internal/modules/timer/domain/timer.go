package domain

import (
	"fmt"
	"time"

	apperrors "studyhub/internal/platform/errors"
)

type Status string

const (
	Idle    Status = "idle"
	Running Status = "running"
	Paused  Status = "paused"
)

type Mode string

const (
	Stopwatch  Mode = "stopwatch"
	Pomodoro   Mode = "pomodoro"
	ShortBreak Mode = "short-break"
	LongBreak  Mode = "long-break"
)

func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case Stopwatch, Pomodoro, ShortBreak, LongBreak:
		return m, nil
	}
	return "", fmt.Errorf("%w: timer mode %q", apperrors.ErrInvalidInput, s)
}

// State is the persisted timer blob. Elapsed time is never stored while
// running; it is rebuilt from StartTime and the wall clock on every read.
type State struct {
	Status          Status `json:"status"`
	Mode            Mode   `json:"mode"`
	SubjectID       string `json:"subjectId"`
	StartTime       *int64 `json:"startTime"`
	AccumulatedTime int64  `json:"accumulatedTime"`
}

func IdleState() State {
	return State{Status: Idle, Mode: Stopwatch}
}

// Elapsed returns milliseconds of running time as of nowMs.
func (s State) Elapsed(nowMs int64) int64 {
	switch s.Status {
	case Running:
		if s.StartTime == nil || nowMs < *s.StartTime {
			return s.AccumulatedTime
		}
		return s.AccumulatedTime + (nowMs - *s.StartTime)
	case Paused:
		return s.AccumulatedTime
	default:
		return 0
	}
}

func (s State) Start(nowMs int64) (State, error) {
	if s.Status == Running {
		return s, fmt.Errorf("%w: timer is already running", apperrors.ErrInvalidTransition)
	}
	next := s
	next.Status = Running
	next.StartTime = &nowMs
	return next, nil
}

func (s State) Pause(nowMs int64) (State, error) {
	if s.Status != Running {
		return s, fmt.Errorf("%w: cannot pause a %s timer", apperrors.ErrInvalidTransition, s.Status)
	}
	next := s
	next.AccumulatedTime = s.Elapsed(nowMs)
	next.Status = Paused
	next.StartTime = nil
	return next, nil
}

// Stop reports the final elapsed time. The caller resets to IdleState.
func (s State) Stop(nowMs int64) (int64, error) {
	if s.Status != Running && s.Status != Paused {
		return 0, fmt.Errorf("%w: timer is not started", apperrors.ErrInvalidTransition)
	}
	return s.Elapsed(nowMs), nil
}

func (s State) WithMode(m Mode) (State, error) {
	if s.Status != Idle {
		return s, fmt.Errorf("%w: stop the timer before switching to %s", apperrors.ErrModeLocked, m)
	}
	next := s
	next.Mode = m
	return next, nil
}

func (s State) WithSubject(subjectID string) State {
	next := s
	next.SubjectID = subjectID
	return next
}

// Targets are the countdown lengths per mode. Stopwatch has none.
type Targets struct {
	Pomodoro   time.Duration
	ShortBreak time.Duration
	LongBreak  time.Duration
}

func DefaultTargets() Targets {
	return Targets{Pomodoro: 25 * time.Minute, ShortBreak: 5 * time.Minute, LongBreak: 15 * time.Minute}
}

func (t Targets) For(m Mode) time.Duration {
	switch m {
	case Pomodoro:
		return t.Pomodoro
	case ShortBreak:
		return t.ShortBreak
	case LongBreak:
		return t.LongBreak
	default:
		return 0
	}
}
