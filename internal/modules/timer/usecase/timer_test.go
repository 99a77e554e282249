package usecase_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	recorddto "studyhub/internal/modules/record/dto"
	timerout "studyhub/internal/modules/timer/adapter/out"
	"studyhub/internal/modules/timer/domain"
	timerdto "studyhub/internal/modules/timer/dto"
	timerin "studyhub/internal/modules/timer/port/in"
	"studyhub/internal/modules/timer/service"
	"studyhub/internal/modules/timer/usecase"
	apperrors "studyhub/internal/platform/errors"
	"studyhub/internal/platform/events"
	"studyhub/internal/platform/kv"
)

type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Set(ms int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = time.UnixMilli(ms)
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fakeID struct{}

func (fakeID) New() string { return "sess-1" }

type memoryRecorder struct {
	sessions []recorddto.Session
	putErr   error
}

func (m *memoryRecorder) Put(_ context.Context, r recorddto.Record) error {
	if m.putErr != nil {
		return m.putErr
	}
	m.sessions = append(m.sessions, r.(recorddto.Session))
	return nil
}

func (m *memoryRecorder) Sessions(context.Context) ([]recorddto.Session, error) {
	return m.sessions, nil
}

type harness struct {
	uc       timerin.Usecase
	clock    *manualClock
	recorder *memoryRecorder
	bus      *events.Bus
	kvPath   string
}

func newHarness(t *testing.T, kvPath string, clk *manualClock, recorder *memoryRecorder) harness {
	t.Helper()
	bus := events.NewBus()
	store := timerout.NewKVStateStore(kv.NewFileStore(kvPath))
	svc := service.NewTimerService(clk, fakeID{}, store, recorder, bus, nil, service.Options{
		Targets:    domain.DefaultTargets(),
		MinSession: time.Second,
		Location:   time.UTC,
	})
	return harness{
		uc:       usecase.NewInteractor(svc, store, timerout.NewFileWatcher(kvPath), fakeID{}),
		clock:    clk,
		recorder: recorder,
		bus:      bus,
		kvPath:   kvPath,
	}
}

func TestElapsedSurvivesRestart(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	kvPath := filepath.Join(t.TempDir(), "local.json")
	clk := &manualClock{}
	clk.Set(5_000_000)

	first := newHarness(t, kvPath, clk, &memoryRecorder{})
	if _, err := first.uc.Start(ctx, timerdto.StartInput{SubjectID: "subject-math"}); err != nil {
		t.Fatalf("start: %v", err)
	}

	clk.Advance(8 * time.Hour)
	relaunched := newHarness(t, kvPath, clk, &memoryRecorder{})
	status, err := relaunched.uc.Status(ctx)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status.Status != "running" || status.Elapsed != 8*time.Hour {
		t.Fatalf("unexpected status after relaunch %+v", status)
	}

	if _, err := relaunched.uc.Pause(ctx); err != nil {
		t.Fatalf("pause: %v", err)
	}
	clk.Advance(72 * time.Hour)
	status, err = relaunched.uc.Status(ctx)
	if err != nil {
		t.Fatalf("status paused: %v", err)
	}
	if status.Status != "paused" || status.Elapsed != 8*time.Hour || status.StartTime != nil {
		t.Fatalf("paused time must freeze, got %+v", status)
	}

	if _, err := relaunched.uc.Start(ctx, timerdto.StartInput{}); err != nil {
		t.Fatalf("resume: %v", err)
	}
	clk.Advance(90 * time.Second)
	status, err = relaunched.uc.Status(ctx)
	if err != nil {
		t.Fatalf("status resumed: %v", err)
	}
	if status.Elapsed != 8*time.Hour+90*time.Second || status.SubjectID != "subject-math" {
		t.Fatalf("unexpected resumed status %+v", status)
	}
}

func TestStopThreshold(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	cases := []struct {
		name     string
		elapsed  time.Duration
		sessions int
	}{
		{"exactly one second", time.Second, 0},
		{"just over", time.Second + time.Millisecond, 1},
		{"short", 200 * time.Millisecond, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			clk := &manualClock{}
			clk.Set(1_700_000_000_000)
			h := newHarness(t, filepath.Join(t.TempDir(), "local.json"), clk, &memoryRecorder{})
			if _, err := h.uc.Start(ctx, timerdto.StartInput{}); err != nil {
				t.Fatalf("start: %v", err)
			}
			clk.Advance(tc.elapsed)
			out, err := h.uc.Stop(ctx)
			if err != nil {
				t.Fatalf("stop: %v", err)
			}
			if len(h.recorder.sessions) != tc.sessions {
				t.Fatalf("expected %d sessions, got %d", tc.sessions, len(h.recorder.sessions))
			}
			if tc.sessions == 1 {
				s := h.recorder.sessions[0]
				if s.DurationMs != tc.elapsed.Milliseconds() || s.StartTime+s.DurationMs != s.EndTime {
					t.Fatalf("unexpected session %+v", s)
				}
				if out.Session == nil || out.Session.ID != s.ID {
					t.Fatalf("stop output must carry the session")
				}
			}
			status, err := h.uc.Status(ctx)
			if err != nil || status.Status != "idle" || status.Elapsed != 0 {
				t.Fatalf("timer must be idle after stop: %+v %v", status, err)
			}
		})
	}
}

func TestStopScenarioAwardsXP(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	clk := &manualClock{}
	clk.Set(1_000_000)
	h := newHarness(t, filepath.Join(t.TempDir(), "local.json"), clk, &memoryRecorder{})

	if _, err := h.uc.Start(ctx, timerdto.StartInput{SubjectID: "Math"}); err != nil {
		t.Fatalf("start: %v", err)
	}
	clk.Advance(65 * time.Second)
	out, err := h.uc.Stop(ctx)
	if err != nil {
		t.Fatalf("stop: %v", err)
	}
	if len(h.recorder.sessions) != 1 {
		t.Fatalf("expected one session, got %d", len(h.recorder.sessions))
	}
	s := h.recorder.sessions[0]
	if s.DurationMs != 65_000 || s.StartTime != 1_000_000 || s.EndTime != 1_065_000 {
		t.Fatalf("unexpected session timing %+v", s)
	}
	if s.DateString != "1970-01-01" || s.SubjectID != "Math" {
		t.Fatalf("unexpected session fields %+v", s)
	}
	if out.XPAwarded != 10 {
		t.Fatalf("expected 10 xp, got %d", out.XPAwarded)
	}
}

func TestStopPublishesLevelUpOnce(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	clk := &manualClock{}
	clk.Set(2_000_000_000_000)
	recorder := &memoryRecorder{sessions: []recorddto.Session{{ID: "old", DurationMs: 9 * 60_000}}}
	h := newHarness(t, filepath.Join(t.TempDir(), "local.json"), clk, recorder)

	var levels []int
	h.bus.LevelUp.Subscribe(func(e events.LevelUp) { levels = append(levels, e.Level) })

	for i := 0; i < 2; i++ {
		if _, err := h.uc.Start(ctx, timerdto.StartInput{}); err != nil {
			t.Fatalf("start %d: %v", i, err)
		}
		clk.Advance(time.Minute)
		out, err := h.uc.Stop(ctx)
		if err != nil {
			t.Fatalf("stop %d: %v", i, err)
		}
		if i == 0 && (!out.LeveledUp || out.LevelBefore != 1 || out.LevelAfter != 2) {
			t.Fatalf("first stop should cross into level 2: %+v", out)
		}
		if i == 1 && out.LeveledUp {
			t.Fatalf("second stop stays on level 2: %+v", out)
		}
	}
	if len(levels) != 1 || levels[0] != 2 {
		t.Fatalf("expected a single level-up event to 2, got %v", levels)
	}
}

func TestTransitionErrorsAndModeLock(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	clk := &manualClock{}
	clk.Set(10_000)
	h := newHarness(t, filepath.Join(t.TempDir(), "local.json"), clk, &memoryRecorder{})

	if _, err := h.uc.Stop(ctx); !errors.Is(err, apperrors.ErrInvalidTransition) {
		t.Fatalf("stop idle: %v", err)
	}
	if _, err := h.uc.Pause(ctx); !errors.Is(err, apperrors.ErrInvalidTransition) {
		t.Fatalf("pause idle: %v", err)
	}
	status, err := h.uc.SetMode(ctx, "pomodoro")
	if err != nil || status.Mode != "pomodoro" || status.Target != 25*time.Minute {
		t.Fatalf("set mode while idle: %+v %v", status, err)
	}
	if _, err := h.uc.Start(ctx, timerdto.StartInput{}); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := h.uc.Start(ctx, timerdto.StartInput{}); !errors.Is(err, apperrors.ErrInvalidTransition) {
		t.Fatalf("double start: %v", err)
	}
	if _, err := h.uc.SetMode(ctx, "stopwatch"); !errors.Is(err, apperrors.ErrModeLocked) {
		t.Fatalf("set mode while running: %v", err)
	}
	if _, err := h.uc.Start(ctx, timerdto.StartInput{Mode: "long-break"}); !errors.Is(err, apperrors.ErrModeLocked) {
		t.Fatalf("start with a new mode while running: %v", err)
	}
	status, err = h.uc.SetSubject(ctx, "subject-science")
	if err != nil || status.SubjectID != "subject-science" || status.Status != "running" {
		t.Fatalf("subject change while running: %+v %v", status, err)
	}

	clk.Advance(26 * time.Minute)
	status, err = h.uc.Status(ctx)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !status.TargetReached || status.Remaining != 0 || status.Status != "running" {
		t.Fatalf("target reached is derived, not a state: %+v", status)
	}
}

func TestStopKeepsTimerWhenSessionCannotBeStored(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	clk := &manualClock{}
	clk.Set(10_000)
	recorder := &memoryRecorder{putErr: apperrors.ErrStorageUnavailable}
	h := newHarness(t, filepath.Join(t.TempDir(), "local.json"), clk, recorder)
	if _, err := h.uc.Start(ctx, timerdto.StartInput{}); err != nil {
		t.Fatalf("start: %v", err)
	}
	clk.Advance(time.Minute)
	if _, err := h.uc.Stop(ctx); !errors.Is(err, apperrors.ErrStorageUnavailable) {
		t.Fatalf("expected storage error, got %v", err)
	}
	status, err := h.uc.Status(ctx)
	if err != nil || status.Status != "running" || status.Elapsed != time.Minute {
		t.Fatalf("timer must survive a failed stop: %+v %v", status, err)
	}
}

type flakyStates struct {
	*timerout.KVStateStore
	clearErr error
}

func (f *flakyStates) Clear(ctx context.Context) error {
	if f.clearErr != nil {
		return f.clearErr
	}
	return f.KVStateStore.Clear(ctx)
}

func TestStopRetryAfterResetFailureRecordsOneSession(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	kvPath := filepath.Join(t.TempDir(), "local.json")
	clk := &manualClock{}
	clk.Set(10_000)
	recorder := &memoryRecorder{}
	states := &flakyStates{KVStateStore: timerout.NewKVStateStore(kv.NewFileStore(kvPath)), clearErr: apperrors.ErrStorageUnavailable}
	svc := service.NewTimerService(clk, fakeID{}, states, recorder, events.NewBus(), nil, service.Options{
		Targets:    domain.DefaultTargets(),
		MinSession: time.Second,
		Location:   time.UTC,
	})
	uc := usecase.NewInteractor(svc, states, timerout.NewFileWatcher(kvPath), fakeID{})

	if _, err := uc.Start(ctx, timerdto.StartInput{SubjectID: "subject-math"}); err != nil {
		t.Fatalf("start: %v", err)
	}
	clk.Advance(25 * time.Minute)
	if _, err := uc.Stop(ctx); !errors.Is(err, apperrors.ErrStorageUnavailable) {
		t.Fatalf("expected reset failure, got %v", err)
	}
	if len(recorder.sessions) != 0 {
		t.Fatalf("no session may be stored while the timer still runs, got %+v", recorder.sessions)
	}

	states.clearErr = nil
	out, err := uc.Stop(ctx)
	if err != nil {
		t.Fatalf("retry stop: %v", err)
	}
	if out.Session == nil || len(recorder.sessions) != 1 || recorder.sessions[0].DurationMs != (25*time.Minute).Milliseconds() {
		t.Fatalf("expected exactly one 25m session, got %+v", recorder.sessions)
	}
	if status, _ := uc.Status(ctx); status.Status != "idle" {
		t.Fatalf("timer should be reset, got %+v", status)
	}
}

func TestCustomSounds(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	clk := &manualClock{}
	h := newHarness(t, filepath.Join(t.TempDir(), "local.json"), clk, &memoryRecorder{})
	if _, err := h.uc.AddSound(ctx, "", "x"); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	added, err := h.uc.AddSound(ctx, "Bell", "https://example.test/bell.mp3")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	sounds, err := h.uc.Sounds(ctx)
	if err != nil || len(sounds) != 1 || !sounds[0].IsCustom {
		t.Fatalf("unexpected sounds %+v %v", sounds, err)
	}
	if err := h.uc.RemoveSound(ctx, added.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := h.uc.RemoveSound(ctx, added.ID); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("second remove: %v", err)
	}
}

func TestWatchSignalsStateChanges(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	clk := &manualClock{}
	clk.Set(10_000)
	h := newHarness(t, filepath.Join(t.TempDir(), "local.json"), clk, &memoryRecorder{})

	changes, err := h.uc.Watch(ctx)
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	if _, err := h.uc.Start(ctx, timerdto.StartInput{}); err != nil {
		t.Fatalf("start: %v", err)
	}
	select {
	case <-changes:
	case <-time.After(3 * time.Second):
		t.Fatalf("expected a change notification")
	}
	cancel()
	for range changes {
	}
}
