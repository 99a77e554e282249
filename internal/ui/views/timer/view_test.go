package timer

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	recorddto "studyhub/internal/modules/record/dto"
	timerdto "studyhub/internal/modules/timer/dto"
)

type fakeTimer struct {
	status timerdto.StatusOutput
	calls  []string
}

func (f *fakeTimer) Status(context.Context) (timerdto.StatusOutput, error) {
	f.calls = append(f.calls, "status")
	return f.status, nil
}

func (f *fakeTimer) Start(_ context.Context, in timerdto.StartInput) (timerdto.StatusOutput, error) {
	f.calls = append(f.calls, "start:"+in.Mode)
	f.status.Status = "running"
	return f.status, nil
}

func (f *fakeTimer) Pause(context.Context) (timerdto.StatusOutput, error) {
	f.calls = append(f.calls, "pause")
	f.status.Status = "paused"
	return f.status, nil
}

func (f *fakeTimer) Stop(context.Context) (timerdto.StopOutput, error) {
	f.calls = append(f.calls, "stop")
	return timerdto.StopOutput{Elapsed: 90 * time.Second, Session: &recorddto.Session{ID: "s1"}, XPAwarded: 10}, nil
}

func (f *fakeTimer) SetMode(_ context.Context, mode string) (timerdto.StatusOutput, error) {
	f.calls = append(f.calls, "mode:"+mode)
	f.status.Mode = mode
	return f.status, nil
}

func (f *fakeTimer) SetSubject(_ context.Context, id string) (timerdto.StatusOutput, error) {
	f.calls = append(f.calls, "subject:"+id)
	f.status.SubjectID = id
	return f.status, nil
}

func press(m Model, k string) (Model, tea.Msg) {
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)})
	if cmd == nil {
		return m, nil
	}
	return m, cmd()
}

func TestSpaceTogglesStartAndPause(t *testing.T) {
	t.Parallel()
	port := &fakeTimer{status: timerdto.StatusOutput{Status: "idle", Mode: "stopwatch"}}
	m := New(port, nil, nil)

	m, msg := press(m, " ")
	m, _ = m.Update(msg)
	if m.Status().Status != "running" {
		t.Fatalf("expected running, got %q", m.Status().Status)
	}
	m, msg = press(m, " ")
	m, _ = m.Update(msg)
	if m.Status().Status != "paused" {
		t.Fatalf("expected paused, got %q", m.Status().Status)
	}
	if strings.Join(port.calls, ",") != "start:,pause" {
		t.Fatalf("unexpected calls %v", port.calls)
	}
}

func TestModeCyclesAndSubjectSkipsArchived(t *testing.T) {
	t.Parallel()
	port := &fakeTimer{status: timerdto.StatusOutput{Status: "idle", Mode: "long-break"}}
	m := New(port, nil, nil)
	m, _ = m.Update(StatusMsg{Status: port.status})
	m, _ = m.Update(CategoriesMsg{Categories: []recorddto.Category{
		{ID: "a", Name: "A"},
		{ID: "b", Name: "B", IsArchived: true},
		{ID: "c", Name: "C"},
	}})

	m, msg := press(m, "m")
	m, _ = m.Update(msg)
	if m.Status().Mode != "stopwatch" {
		t.Fatalf("expected wrap to stopwatch, got %q", m.Status().Mode)
	}

	m, msg = press(m, "n")
	m, _ = m.Update(msg)
	m, msg = press(m, "n")
	m, _ = m.Update(msg)
	if m.Status().SubjectID != "c" {
		t.Fatalf("expected archived subject skipped, got %q", m.Status().SubjectID)
	}
}

func TestElapsedExtrapolatesOnlyWhileRunning(t *testing.T) {
	t.Parallel()
	m := New(&fakeTimer{}, nil, nil)
	m, _ = m.Update(StatusMsg{Status: timerdto.StatusOutput{Status: "running", Elapsed: time.Minute}})
	if got := m.Elapsed(m.fetchedAt.Add(2 * time.Second)); got != time.Minute+2*time.Second {
		t.Fatalf("expected extrapolated elapsed, got %s", got)
	}
	m, _ = m.Update(StatusMsg{Status: timerdto.StatusOutput{Status: "paused", Elapsed: time.Minute}})
	if got := m.Elapsed(time.Now().Add(time.Hour)); got != time.Minute {
		t.Fatalf("paused elapsed must not move, got %s", got)
	}
}

func TestStopReportsSavedSession(t *testing.T) {
	t.Parallel()
	m := New(&fakeTimer{}, nil, nil)
	_, msg := press(m, "x")
	stopped, ok := msg.(StoppedMsg)
	if !ok {
		t.Fatalf("expected StoppedMsg, got %T", msg)
	}
	m, _ = m.Update(stopped)
	if !strings.Contains(m.statusLine, "+10 XP") {
		t.Fatalf("unexpected status line %q", m.statusLine)
	}
}

func TestFormatElapsed(t *testing.T) {
	t.Parallel()
	cases := map[time.Duration]string{
		0:                               "00:00",
		65 * time.Second:                "01:05",
		time.Hour + 2*time.Minute + 3e9: "1:02:03",
		-time.Second:                    "00:00",
	}
	for d, want := range cases {
		if got := formatElapsed(d); got != want {
			t.Fatalf("formatElapsed(%s) = %q, want %q", d, got, want)
		}
	}
}
