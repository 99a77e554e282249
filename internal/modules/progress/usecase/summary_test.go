package usecase_test

import (
	"context"
	"testing"
	"time"

	"studyhub/internal/modules/progress/usecase"
	recorddto "studyhub/internal/modules/record/dto"
)

type fixedClock struct{ t time.Time }

func (f fixedClock) Now() time.Time { return f.t }

type fakeSessions []recorddto.Session

func (f fakeSessions) Sessions(context.Context) ([]recorddto.Session, error) { return f, nil }

type fakePrefs map[string]string

func (f fakePrefs) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := f[key]
	return v, ok, nil
}

func TestSummaryTotalsXPAndToday(t *testing.T) {
	t.Parallel()
	sessions := fakeSessions{
		{ID: "a", DurationMs: 30 * 60_000, DateString: "2026-04-09"},
		{ID: "b", DurationMs: 61 * 60_000, DateString: "2026-04-10"},
		{ID: "c", DurationMs: 59_000, DateString: "2026-04-10"},
	}
	clk := fixedClock{t: time.Date(2026, 4, 10, 12, 0, 0, 0, time.UTC)}
	uc := usecase.NewInteractor(sessions, fakePrefs{usecase.TargetHoursKey: "2"}, clk, time.UTC)

	out, err := uc.Summary(context.Background())
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if out.Progress.XP != 910 {
		t.Fatalf("expected 910 xp, got %d", out.Progress.XP)
	}
	if out.Progress.Level != 4 {
		t.Fatalf("expected level 4, got %d", out.Progress.Level)
	}
	if out.TodayMs != 61*60_000+59_000 {
		t.Fatalf("unexpected today total %d", out.TodayMs)
	}
	if out.TargetHours != 2 || out.TodayPercent <= 50 || out.TodayPercent >= 52 {
		t.Fatalf("unexpected target progress %v %v", out.TargetHours, out.TodayPercent)
	}
}

func TestSummaryDefaultsTargetWhenPreferenceIsBad(t *testing.T) {
	t.Parallel()
	clk := fixedClock{t: time.Date(2026, 4, 10, 12, 0, 0, 0, time.UTC)}
	uc := usecase.NewInteractor(fakeSessions{}, fakePrefs{usecase.TargetHoursKey: "lots"}, clk, time.UTC)
	out, err := uc.Summary(context.Background())
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if out.TargetHours != 4 || out.Progress.Level != 1 || out.TodayPercent != 0 {
		t.Fatalf("unexpected empty summary %+v", out)
	}
}
