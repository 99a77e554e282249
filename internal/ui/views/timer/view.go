package timer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	progressdto "studyhub/internal/modules/progress/dto"
	recorddto "studyhub/internal/modules/record/dto"
	timerdto "studyhub/internal/modules/timer/dto"
	"studyhub/internal/ui/theme"
)

type TimerPort interface {
	Status(ctx context.Context) (timerdto.StatusOutput, error)
	Start(ctx context.Context, input timerdto.StartInput) (timerdto.StatusOutput, error)
	Pause(ctx context.Context) (timerdto.StatusOutput, error)
	Stop(ctx context.Context) (timerdto.StopOutput, error)
	SetMode(ctx context.Context, mode string) (timerdto.StatusOutput, error)
	SetSubject(ctx context.Context, subjectID string) (timerdto.StatusOutput, error)
}

type ProgressPort interface {
	Summary(ctx context.Context) (progressdto.SummaryOutput, error)
}

type CategoryPort interface {
	Categories(ctx context.Context) ([]recorddto.Category, error)
}

// RefreshMsg asks the view to reload timer state, e.g. after another
// process changed it.
type RefreshMsg struct{}

type StatusMsg struct {
	Status timerdto.StatusOutput
	Err    error
}

type StoppedMsg struct {
	Out timerdto.StopOutput
	Err error
}

type SummaryMsg struct {
	Summary progressdto.SummaryOutput
	Err     error
}

type CategoriesMsg struct {
	Categories []recorddto.Category
	Err        error
}

type tickMsg time.Time

const tickEvery = 100 * time.Millisecond

var modes = []string{"stopwatch", "pomodoro", "short-break", "long-break"}

type Model struct {
	timer      TimerPort
	progress   ProgressPort
	categories CategoryPort

	status     timerdto.StatusOutput
	fetchedAt  time.Time
	summary    progressdto.SummaryOutput
	subjects   []recorddto.Category
	targetBar  progress.Model
	levelBar   progress.Model
	statusLine string
	width      int
	height     int
}

func New(timer TimerPort, prog ProgressPort, categories CategoryPort) Model {
	return Model{
		timer:      timer,
		progress:   prog,
		categories: categories,
		targetBar:  progress.New(progress.WithSolidFill(string(theme.Peach)), progress.WithoutPercentage()),
		levelBar:   progress.New(progress.WithSolidFill(string(theme.Green)), progress.WithoutPercentage()),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadStatusCmd(), m.loadSummaryCmd(), m.loadCategoriesCmd(), tick())
}

func tick() tea.Cmd {
	return tea.Tick(tickEvery, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		bar := msg.Width - 12
		if bar > 60 {
			bar = 60
		}
		if bar < 10 {
			bar = 10
		}
		m.targetBar.Width = bar
		m.levelBar.Width = bar

	case tickMsg:
		return m, tick()

	case RefreshMsg:
		return m, tea.Batch(m.loadStatusCmd(), m.loadSummaryCmd(), m.loadCategoriesCmd())

	case StatusMsg:
		if msg.Err != nil {
			m.statusLine = msg.Err.Error()
			return m, nil
		}
		m.status = msg.Status
		m.fetchedAt = time.Now()

	case SummaryMsg:
		if msg.Err == nil {
			m.summary = msg.Summary
		}

	case CategoriesMsg:
		if msg.Err == nil {
			m.subjects = msg.Categories
		}

	case StoppedMsg:
		if msg.Err != nil {
			m.statusLine = msg.Err.Error()
			return m, m.loadStatusCmd()
		}
		if msg.Out.Session == nil {
			m.statusLine = fmt.Sprintf("discarded %s (too short)", formatElapsed(msg.Out.Elapsed))
		} else {
			m.statusLine = fmt.Sprintf("saved %s  +%d XP", formatElapsed(msg.Out.Elapsed), msg.Out.XPAwarded)
		}
		return m, tea.Batch(m.loadStatusCmd(), m.loadSummaryCmd())

	case tea.KeyMsg:
		switch msg.String() {
		case " ":
			if m.status.Status == "running" {
				return m, m.PauseCmd()
			}
			return m, m.StartCmd("")
		case "x":
			return m, m.StopCmd()
		case "m":
			return m, m.SetModeCmd(nextMode(m.status.Mode))
		case "n":
			if id := m.nextSubject(); id != "" {
				return m, m.SetSubjectCmd(id)
			}
		}
	}
	return m, nil
}

func nextMode(current string) string {
	for i, mode := range modes {
		if mode == current {
			return modes[(i+1)%len(modes)]
		}
	}
	return modes[0]
}

func (m Model) nextSubject() string {
	active := m.activeSubjects()
	if len(active) == 0 {
		return ""
	}
	for i, c := range active {
		if c.ID == m.status.SubjectID {
			return active[(i+1)%len(active)].ID
		}
	}
	return active[0].ID
}

func (m Model) activeSubjects() []recorddto.Category {
	out := make([]recorddto.Category, 0, len(m.subjects))
	for _, c := range m.subjects {
		if !c.IsArchived {
			out = append(out, c)
		}
	}
	return out
}

// Elapsed extrapolates from the last fetch while running so the clock moves
// between reloads.
func (m Model) Elapsed(now time.Time) time.Duration {
	if m.status.Status != "running" || m.fetchedAt.IsZero() {
		return m.status.Elapsed
	}
	return m.status.Elapsed + now.Sub(m.fetchedAt)
}

func (m Model) Status() timerdto.StatusOutput { return m.status }

func (m Model) View() string {
	elapsed := m.Elapsed(time.Now())

	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Focus") + "  " + theme.Muted.Render(m.status.Mode) + "\n\n")

	clock := formatElapsed(elapsed)
	if m.status.Target > 0 {
		remaining := m.status.Target - elapsed
		if remaining < 0 {
			remaining = 0
		}
		clock = formatElapsed(remaining)
	}
	style := theme.Hot
	switch {
	case m.status.Status == "paused":
		style = theme.Muted
	case m.status.Target > 0 && elapsed >= m.status.Target:
		style = theme.Good
	}
	sb.WriteString(style.Render(clock) + "  " + theme.Muted.Render("["+m.status.Status+"]") + "\n")

	if m.status.Target > 0 {
		pct := float64(elapsed) / float64(m.status.Target)
		if pct > 1 {
			pct = 1
		}
		sb.WriteString(m.targetBar.ViewAs(pct) + "\n")
		if elapsed >= m.status.Target {
			sb.WriteString(theme.Good.Render("target reached") + "\n")
		}
	}
	sb.WriteString("\n" + m.renderSubject() + "\n\n")

	p := m.summary.Progress
	sb.WriteString(theme.Title.Render(fmt.Sprintf("Level %d", p.Level)) + "  " +
		theme.Muted.Render(fmt.Sprintf("%d / %d XP", p.XP, p.NextLevelXP)) + "\n")
	sb.WriteString(m.levelBar.ViewAs(p.Percent/100) + "\n")
	sb.WriteString(theme.Muted.Render(fmt.Sprintf("today %s of %.1fh target (%.0f%%)",
		formatElapsed(time.Duration(m.summary.TodayMs)*time.Millisecond), m.summary.TargetHours, m.summary.TodayPercent)) + "\n")

	if m.statusLine != "" {
		sb.WriteString("\n" + theme.Muted.Render(m.statusLine) + "\n")
	}
	sb.WriteString("\n" + theme.Muted.Render("space:start/pause  x:stop  m:mode  n:subject"))
	return lipgloss.NewStyle().Padding(1, 2).Width(m.width).Render(sb.String())
}

func (m Model) renderSubject() string {
	if m.status.SubjectID == "" {
		return theme.Muted.Render("no subject")
	}
	for _, c := range m.subjects {
		if c.ID == m.status.SubjectID {
			dot := lipgloss.NewStyle().Foreground(theme.Swatch(c.Color)).Render("●")
			return dot + " " + c.Name
		}
	}
	return theme.Muted.Render(m.status.SubjectID)
}

func formatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	h, rem := total/3600, total%3600
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, rem/60, rem%60)
	}
	return fmt.Sprintf("%02d:%02d", rem/60, rem%60)
}

// ─── commands ────────────────────────────────────────────────────────────────

func (m Model) StartCmd(mode string) tea.Cmd {
	return m.statusCmd(func(ctx context.Context) (timerdto.StatusOutput, error) {
		return m.timer.Start(ctx, timerdto.StartInput{Mode: mode})
	})
}

func (m Model) PauseCmd() tea.Cmd {
	return m.statusCmd(func(ctx context.Context) (timerdto.StatusOutput, error) { return m.timer.Pause(ctx) })
}

func (m Model) SetModeCmd(mode string) tea.Cmd {
	return m.statusCmd(func(ctx context.Context) (timerdto.StatusOutput, error) { return m.timer.SetMode(ctx, mode) })
}

func (m Model) SetSubjectCmd(id string) tea.Cmd {
	return m.statusCmd(func(ctx context.Context) (timerdto.StatusOutput, error) { return m.timer.SetSubject(ctx, id) })
}

func (m Model) StopCmd() tea.Cmd {
	return func() tea.Msg {
		out, err := m.timer.Stop(context.Background())
		return StoppedMsg{Out: out, Err: err}
	}
}

func (m Model) statusCmd(fn func(ctx context.Context) (timerdto.StatusOutput, error)) tea.Cmd {
	return func() tea.Msg {
		st, err := fn(context.Background())
		return StatusMsg{Status: st, Err: err}
	}
}

func (m Model) loadStatusCmd() tea.Cmd {
	return m.statusCmd(m.timer.Status)
}

func (m Model) loadSummaryCmd() tea.Cmd {
	return func() tea.Msg {
		if m.progress == nil {
			return SummaryMsg{}
		}
		s, err := m.progress.Summary(context.Background())
		return SummaryMsg{Summary: s, Err: err}
	}
}

func (m Model) loadCategoriesCmd() tea.Cmd {
	return func() tea.Msg {
		if m.categories == nil {
			return CategoriesMsg{}
		}
		cats, err := m.categories.Categories(context.Background())
		return CategoriesMsg{Categories: cats, Err: err}
	}
}
