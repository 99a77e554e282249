package remote

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	syncdto "studyhub/internal/modules/sync/dto"
	"studyhub/internal/ui/theme"
)

type SyncPort interface {
	Status(ctx context.Context) (syncdto.StatusOutput, error)
	SyncNow(ctx context.Context) (syncdto.PullOutput, error)
}

type StatusMsg struct {
	Status syncdto.StatusOutput
	Err    error
}

type PulledMsg struct {
	Out syncdto.PullOutput
	Err error
}

type collectionItem struct{ c syncdto.CollectionOutput }

func (i collectionItem) Title() string { return i.c.Name }
func (i collectionItem) Description() string {
	if i.c.Error != "" {
		return "failed: " + i.c.Error
	}
	desc := fmt.Sprintf("%d pulled", i.c.Pulled)
	if i.c.Skipped > 0 {
		desc += fmt.Sprintf(", %d skipped", i.c.Skipped)
	}
	return desc
}
func (i collectionItem) FilterValue() string { return i.c.Name }

type Model struct {
	port       SyncPort
	list       list.Model
	detail     viewport.Model
	status     syncdto.StatusOutput
	pulling    bool
	statusLine string
	width      int
	height     int
}

func New(port SyncPort) Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(theme.Peach).BorderForeground(theme.Peach)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(theme.Sapphire).BorderForeground(theme.Peach)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Last pull"
	l.Styles.Title = theme.Title
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)

	vp := viewport.New(0, 0)
	vp.Style = lipgloss.NewStyle().Background(theme.Mantle).Foreground(theme.Text).Padding(1)

	return Model{port: port, list: l, detail: vp}
}

func (m Model) Init() tea.Cmd {
	return m.Reload()
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case StatusMsg:
		if msg.Err != nil {
			m.statusLine = "status failed: " + msg.Err.Error()
		} else {
			m.status = msg.Status
		}
		m.detail.SetContent(m.renderStatus())

	case PulledMsg:
		m.pulling = false
		if msg.Err != nil {
			m.statusLine = "sync failed: " + msg.Err.Error()
		} else {
			m.statusLine = fmt.Sprintf("synced at %s", msg.Out.At.Local().Format("15:04:05"))
			if msg.Out.Flushed > 0 {
				m.statusLine += fmt.Sprintf(", %d queued writes sent", msg.Out.Flushed)
			}
			items := make([]list.Item, len(msg.Out.Collections))
			for i, c := range msg.Out.Collections {
				items[i] = collectionItem{c: c}
			}
			cmds = append(cmds, m.list.SetItems(items))
		}
		m.detail.SetContent(m.renderStatus())
		cmds = append(cmds, m.Reload())

	case tea.KeyMsg:
		if msg.String() == "S" && !m.pulling {
			m.pulling = true
			m.statusLine = "syncing…"
			m.detail.SetContent(m.renderStatus())
			cmds = append(cmds, m.SyncNowCmd())
		}
	}

	var lCmd, vCmd tea.Cmd
	m.list, lCmd = m.list.Update(msg)
	m.detail, vCmd = m.detail.Update(msg)
	cmds = append(cmds, lCmd, vCmd)
	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	listW := m.width * 4 / 10
	detailW := m.width - listW

	listPane := lipgloss.NewStyle().Width(listW).Height(m.height).Render(m.list.View())
	detailPane := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.Surface1).
		Background(theme.Mantle).
		Width(detailW - 2).
		Height(m.height - 2).
		Render(m.detail.View())
	return lipgloss.JoinHorizontal(lipgloss.Top, listPane, detailPane)
}

func (m *Model) resize() {
	listW := m.width * 4 / 10
	detailW := m.width - listW
	contentH := m.height - 2
	if contentH < 1 {
		contentH = 1
	}
	m.list.SetSize(listW, contentH)
	m.detail.Width = detailW - 4
	m.detail.Height = contentH - 2
}

func (m Model) renderStatus() string {
	s := m.status
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Remote mirror") + "\n\n")
	switch {
	case s.LocalOnly:
		sb.WriteString("state:     " + theme.Bad.Render("local only") + "\n")
		if s.Reason != "" {
			sb.WriteString("reason:    " + s.Reason + "\n")
		}
	case s.SignedIn:
		sb.WriteString("state:     " + theme.Good.Render("signed in") + "\n")
	default:
		sb.WriteString("state:     " + theme.Muted.Render("signed out") + "\n")
	}
	if s.UserID != "" {
		sb.WriteString("user:      " + s.UserID + "\n")
	}
	if s.OutboxEnabled {
		sb.WriteString(fmt.Sprintf("queued:    %d\n", s.Pending))
	}
	if !s.LastPull.IsZero() {
		sb.WriteString("last pull: " + time.Since(s.LastPull).Round(time.Second).String() + " ago\n")
	}
	if m.statusLine != "" {
		sb.WriteString("\n" + theme.Hot.Render(m.statusLine) + "\n")
	}
	sb.WriteString("\n" + theme.Muted.Render("S: sync now"))
	return sb.String()
}

func (m Model) Reload() tea.Cmd {
	return func() tea.Msg {
		if m.port == nil {
			return StatusMsg{}
		}
		status, err := m.port.Status(context.Background())
		return StatusMsg{Status: status, Err: err}
	}
}

func (m Model) SyncNowCmd() tea.Cmd {
	return func() tea.Msg {
		if m.port == nil {
			return PulledMsg{}
		}
		out, err := m.port.SyncNow(context.Background())
		return PulledMsg{Out: out, Err: err}
	}
}
