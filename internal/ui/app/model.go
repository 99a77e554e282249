package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	backupdto "studyhub/internal/modules/backup/dto"
	recorddto "studyhub/internal/modules/record/dto"
	"studyhub/internal/platform/events"
	"studyhub/internal/ui/components"
	"studyhub/internal/ui/theme"
	plannerview "studyhub/internal/ui/views/planner"
	remoteview "studyhub/internal/ui/views/remote"
	timerview "studyhub/internal/ui/views/timer"
)

// ─── ports ───────────────────────────────────────────────────────────────────

type RecordPort interface {
	plannerview.ItemPort
	timerview.CategoryPort
}

type BackupPort interface {
	ExportFile(ctx context.Context, path string) (backupdto.ExportOutput, error)
}

// Ports groups everything the root model talks to. Sync and Backup may be
// nil when the corresponding feature is not configured.
type Ports struct {
	Timer    timerview.TimerPort
	Progress timerview.ProgressPort
	Records  RecordPort
	Sync     remoteview.SyncPort
	Backup   BackupPort
}

// ─── tab index ───────────────────────────────────────────────────────────────

type tabID int

const (
	tabTimer tabID = iota
	tabPlanner
	tabRemote
	tabCount
)

var tabLabels = [tabCount]string{"Timer", "Planner", "Sync"}

// ─── bus messages ─────────────────────────────────────────────────────────────

type SyncCompletedMsg events.SyncCompleted

type LevelUpMsg events.LevelUp

type AuthRejectedMsg events.AuthRejected

type exportedMsg struct {
	out backupdto.ExportOutput
	err error
}

// ─── key bindings ─────────────────────────────────────────────────────────────

type keyMap struct {
	Tab     key.Binding
	Help    key.Binding
	Palette key.Binding
	Quit    key.Binding
	Toggle  key.Binding
	Stop    key.Binding
	Mode    key.Binding
	Sync    key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Tab:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Palette: key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "palette")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
		Toggle:  key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "start/pause")),
		Stop:    key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "stop timer")),
		Mode:    key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "cycle mode")),
		Sync:    key.NewBinding(key.WithKeys("S"), key.WithHelp("S", "sync now")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Help, k.Palette, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Toggle, k.Stop, k.Mode},
		{k.Tab, k.Sync},
		{k.Help, k.Palette, k.Quit},
	}
}

// ─── model ───────────────────────────────────────────────────────────────────

// Model is the root Bubble Tea model. It owns tab routing, the help overlay,
// the command palette and the celebration banner. Rendering is delegated to
// the sub-views.
type Model struct {
	ports Ports

	timerView   timerview.Model
	plannerView plannerview.Model
	remoteView  remoteview.Model

	activeTab tabID
	keys      keyMap
	help      help.Model
	showHelp  bool
	palette   components.Palette
	banner    string
	status    string
	width     int
	height    int
}

func NewModel(ports Ports) Model {
	return Model{
		ports:       ports,
		timerView:   timerview.New(ports.Timer, ports.Progress, ports.Records),
		plannerView: plannerview.New(ports.Records),
		remoteView:  remoteview.New(ports.Sync),
		activeTab:   tabTimer,
		keys:        defaultKeys(),
		help:        help.New(),
		palette:     components.NewPalette(),
		status:      "ready",
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.timerView.Init(),
		m.plannerView.Init(),
		m.remoteView.Init(),
	)
}

// ─── update ───────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.palette.Visible() {
		var cmd tea.Cmd
		m.palette, cmd = m.palette.Update(msg)
		return m, cmd
	}

	var cmds []tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.palette.SetWidth(min(m.width-4, 80))
		m.help.Width = m.width
		m.propagateSize()
		return m, nil

	case SyncCompletedMsg:
		m.status = describeSync(events.SyncCompleted(msg))
		return m, tea.Batch(m.refreshAll()...)

	case LevelUpMsg:
		m.banner = fmt.Sprintf("Level up! You reached level %d", msg.Level)
		return m, nil

	case AuthRejectedMsg:
		m.status = "remote rejected credentials; running local only"
		var cmd tea.Cmd
		m.remoteView, cmd = m.remoteView.Update(msg)
		return m, tea.Batch(cmd, m.remoteView.Reload())

	case exportedMsg:
		if msg.err != nil {
			m.status = "backup failed: " + msg.err.Error()
		} else {
			m.status = "backup written to " + msg.out.Path
		}
		return m, nil

	case components.PaletteSubmitMsg:
		return m.executePalette(msg.Input)

	case components.PaletteCancelMsg:
		m.status = "ready"
		return m, nil

	// Data-bearing messages go to every view so background tabs stay fresh.
	case timerview.StatusMsg, timerview.StoppedMsg, timerview.SummaryMsg,
		timerview.CategoriesMsg, timerview.RefreshMsg:
		var cmd tea.Cmd
		m.timerView, cmd = m.timerView.Update(msg)
		return m, cmd
	case plannerview.ItemsLoadedMsg, plannerview.ItemChangedMsg:
		var cmd tea.Cmd
		m.plannerView, cmd = m.plannerView.Update(msg)
		return m, cmd
	case remoteview.StatusMsg, remoteview.PulledMsg:
		var cmd tea.Cmd
		m.remoteView, cmd = m.remoteView.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.showHelp {
			if msg.String() == "?" || msg.String() == "esc" {
				m.showHelp = false
			}
			return m, nil
		}
		if m.banner != "" && msg.String() != "ctrl+c" {
			m.banner = ""
			return m, nil
		}
		if m.activeTab == tabPlanner && m.plannerView.Filtering() {
			break
		}
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "tab":
			m.activeTab = (m.activeTab + 1) % tabCount
			return m, nil
		case "shift+tab":
			m.activeTab = (m.activeTab + tabCount - 1) % tabCount
			return m, nil
		case "?":
			m.showHelp = !m.showHelp
			return m, nil
		case ":":
			return m, m.palette.Open()
		}
	}

	// Remaining input goes to the active tab only.
	var tabCmd tea.Cmd
	switch m.activeTab {
	case tabTimer:
		m.timerView, tabCmd = m.timerView.Update(msg)
	case tabPlanner:
		m.plannerView, tabCmd = m.plannerView.Update(msg)
	case tabRemote:
		m.remoteView, tabCmd = m.remoteView.Update(msg)
	}
	cmds = append(cmds, tabCmd)
	return m, tea.Batch(cmds...)
}

func describeSync(e events.SyncCompleted) string {
	total := 0
	for _, n := range e.Pulled {
		total += n
	}
	s := fmt.Sprintf("sync complete: %d records pulled", total)
	if len(e.Failed) > 0 {
		s += fmt.Sprintf(", %d collections failed", len(e.Failed))
	}
	return s
}

func (m Model) refreshAll() []tea.Cmd {
	return []tea.Cmd{
		func() tea.Msg { return timerview.RefreshMsg{} },
		m.plannerView.Reload(),
		m.remoteView.Reload(),
	}
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	tabBar := m.renderTabBar()
	statusBar := m.renderStatusBar()
	contentH := m.height - lipgloss.Height(tabBar) - lipgloss.Height(statusBar)
	if contentH < 1 {
		contentH = 1
	}

	var content string
	switch {
	case m.banner != "":
		box := theme.PaneActive.Render(theme.Good.Render(m.banner) + "\n\n" + theme.Muted.Render("press any key"))
		content = lipgloss.Place(m.width, contentH, lipgloss.Center, lipgloss.Center, box)
	case m.showHelp:
		m.help.ShowAll = true
		content = lipgloss.NewStyle().Width(m.width).Height(contentH).Render(m.help.View(m.keys))
	case m.palette.Visible():
		content = lipgloss.Place(m.width, contentH, lipgloss.Center, lipgloss.Center, m.palette.View())
	default:
		content = m.activeView()
	}
	return lipgloss.JoinVertical(lipgloss.Left, tabBar, content, statusBar)
}

func (m Model) activeView() string {
	switch m.activeTab {
	case tabTimer:
		return m.timerView.View()
	case tabPlanner:
		return m.plannerView.View()
	case tabRemote:
		return m.remoteView.View()
	}
	return ""
}

func (m Model) renderTabBar() string {
	parts := make([]string, tabCount)
	for i := tabID(0); i < tabCount; i++ {
		if i == m.activeTab {
			parts[i] = theme.Hot.Render(" " + tabLabels[i] + " ")
		} else {
			parts[i] = theme.Muted.Render(" " + tabLabels[i] + " ")
		}
	}
	bar := "studyhub  " + strings.Join(parts, theme.Muted.Render(" │ "))
	return lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar) + "\n"
}

func (m Model) renderStatusBar() string {
	left := m.status
	if st := m.timerView.Status(); st.Status == "running" {
		left = theme.Hot.Render("● "+st.Mode) + "  " + left
	}
	right := theme.Muted.Render("?:help  tab:switch  :::palette  q:quit")
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return "\n" + lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(left+strings.Repeat(" ", gap)+right)
}

func (m *Model) propagateSize() {
	sz := tea.WindowSizeMsg{Width: m.width, Height: m.height - 3}
	m.timerView, _ = m.timerView.Update(sz)
	m.plannerView, _ = m.plannerView.Update(sz)
	m.remoteView, _ = m.remoteView.Update(sz)
}

// ─── palette execution ────────────────────────────────────────────────────────

func (m Model) executePalette(input string) (tea.Model, tea.Cmd) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return m, nil
	}
	rest := strings.TrimSpace(strings.TrimPrefix(input, parts[0]))

	switch parts[0] {
	case "timer:start":
		m.activeTab = tabTimer
		return m, m.timerView.StartCmd(rest)
	case "timer:pause":
		return m, m.timerView.PauseCmd()
	case "timer:stop":
		return m, m.timerView.StopCmd()
	case "timer:mode":
		if rest == "" {
			m.status = "usage: timer:mode <mode>"
			return m, nil
		}
		return m, m.timerView.SetModeCmd(rest)
	case "timer:subject":
		return m, m.timerView.SetSubjectCmd(rest)
	case "task:add", "goal:add":
		if rest == "" {
			m.status = "usage: " + parts[0] + " <title>"
			return m, nil
		}
		c := recorddto.Tasks
		if parts[0] == "goal:add" {
			c = recorddto.Goals
		}
		m.activeTab = tabPlanner
		return m, m.plannerView.AddCmd(c, rest)
	case "sync:now":
		m.activeTab = tabRemote
		return m, m.remoteView.SyncNowCmd()
	case "backup:export":
		if m.ports.Backup == nil || rest == "" {
			m.status = "usage: backup:export <path>"
			return m, nil
		}
		return m, func() tea.Msg {
			out, err := m.ports.Backup.ExportFile(context.Background(), rest)
			return exportedMsg{out: out, err: err}
		}
	default:
		m.status = "unknown command: " + parts[0]
	}
	return m, nil
}
