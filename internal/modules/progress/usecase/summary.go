package usecase

import (
	"context"
	"strconv"
	"time"

	"studyhub/internal/modules/progress/domain"
	"studyhub/internal/modules/progress/dto"
	progressin "studyhub/internal/modules/progress/port/in"
	progressout "studyhub/internal/modules/progress/port/out"
	"studyhub/internal/platform/clock"
)

// TargetHoursKey is the preference holding the daily focus goal.
const TargetHoursKey = "targetHours"

const defaultTargetHours = 4

type Interactor struct {
	sessions progressout.SessionSource
	prefs    progressout.Preferences
	clock    clock.Clock
	loc      *time.Location
}

func NewInteractor(sessions progressout.SessionSource, prefs progressout.Preferences, clk clock.Clock, loc *time.Location) progressin.Usecase {
	return &Interactor{sessions: sessions, prefs: prefs, clock: clk, loc: loc}
}

func (i *Interactor) Summary(ctx context.Context) (dto.SummaryOutput, error) {
	sessions, err := i.sessions.Sessions(ctx)
	if err != nil {
		return dto.SummaryOutput{}, err
	}
	today := clock.DateString(clock.Millis(i.clock.Now()), i.loc)
	var (
		xp      int64
		todayMs int64
	)
	for _, s := range sessions {
		xp += domain.SessionXP(s.DurationMs)
		if s.DateString == today {
			todayMs += s.DurationMs
		}
	}
	out := dto.SummaryOutput{
		Progress:     domain.ProgressFor(xp),
		SessionCount: len(sessions),
		TodayMs:      todayMs,
		TargetHours:  i.targetHours(ctx),
	}
	if out.TargetHours > 0 {
		out.TodayPercent = float64(todayMs) / (out.TargetHours * float64(time.Hour/time.Millisecond)) * 100
	}
	return out, nil
}

func (i *Interactor) targetHours(ctx context.Context) float64 {
	if i.prefs == nil {
		return defaultTargetHours
	}
	raw, ok, err := i.prefs.Get(ctx, TargetHoursKey)
	if err != nil || !ok {
		return defaultTargetHours
	}
	hours, err := strconv.ParseFloat(raw, 64)
	if err != nil || hours < 0 {
		return defaultTargetHours
	}
	return hours
}
