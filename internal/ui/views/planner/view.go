package planner

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	recorddto "studyhub/internal/modules/record/dto"
	"studyhub/internal/ui/theme"
)

type ItemPort interface {
	Items(ctx context.Context, c recorddto.Collection) ([]recorddto.Item, error)
	CreateItem(ctx context.Context, input recorddto.CreateItemInput) (recorddto.Item, error)
	MoveItem(ctx context.Context, input recorddto.MoveItemInput) (recorddto.Item, error)
}

type ItemsLoadedMsg struct {
	Collection recorddto.Collection
	Items      []recorddto.Item
	Err        error
}

type ItemChangedMsg struct {
	Item recorddto.Item
	Err  error
}

var statusOrder = map[string]int{"in-progress": 0, "todo": 1, "done": 2}

type entry struct{ item recorddto.Item }

func (e entry) Title() string {
	mark := "[ ]"
	switch e.item.Status {
	case "in-progress":
		mark = "[~]"
	case "done":
		mark = "[x]"
	}
	return mark + " " + e.item.Title
}

func (e entry) Description() string {
	desc := string(e.item.Priority)
	if e.item.DateString != "" {
		desc += "  due " + e.item.DateString
	}
	return desc
}

func (e entry) FilterValue() string { return e.item.Title }

type Model struct {
	port       ItemPort
	collection recorddto.Collection
	list       list.Model
	spinner    spinner.Model
	loading    bool
	statusLine string
	width      int
	height     int
}

func New(port ItemPort) Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(theme.Lavender).BorderForeground(theme.Lavender)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(theme.Sapphire).BorderForeground(theme.Lavender)

	l := list.New(nil, delegate, 0, 0)
	l.Styles.Title = theme.Title
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Lavender)

	m := Model{port: port, collection: recorddto.Tasks, list: l, spinner: sp, loading: true}
	m.list.Title = m.title()
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.Reload(), m.spinner.Tick)
}

func (m Model) title() string {
	if m.collection == recorddto.Goals {
		return "Goals"
	}
	return "Tasks"
}

func (m Model) Collection() recorddto.Collection { return m.collection }

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width, msg.Height-2)

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}

	case ItemsLoadedMsg:
		if msg.Collection != m.collection {
			return m, nil
		}
		m.loading = false
		if msg.Err != nil {
			m.statusLine = msg.Err.Error()
			return m, nil
		}
		sorted := append([]recorddto.Item(nil), msg.Items...)
		sort.SliceStable(sorted, func(i, j int) bool {
			a, b := statusOrder[string(sorted[i].Status)], statusOrder[string(sorted[j].Status)]
			if a != b {
				return a < b
			}
			return sorted[i].Order < sorted[j].Order
		})
		items := make([]list.Item, len(sorted))
		for i, it := range sorted {
			items[i] = entry{item: it}
		}
		cmd := m.list.SetItems(items)
		return m, cmd

	case ItemChangedMsg:
		if msg.Err != nil {
			m.statusLine = msg.Err.Error()
			return m, nil
		}
		m.statusLine = fmt.Sprintf("%s → %s", msg.Item.Title, msg.Item.Status)
		return m, m.Reload()

	case tea.KeyMsg:
		if m.Filtering() {
			break
		}
		switch msg.String() {
		case "g":
			if m.collection == recorddto.Tasks {
				m.collection = recorddto.Goals
			} else {
				m.collection = recorddto.Tasks
			}
			m.list.Title = m.title()
			m.loading = true
			return m, m.Reload()
		case "enter":
			if e, ok := m.list.SelectedItem().(entry); ok {
				return m, m.moveCmd(e.item.ID, nextStatus(string(e.item.Status)))
			}
			return m, nil
		case "backspace":
			if e, ok := m.list.SelectedItem().(entry); ok {
				return m, m.moveCmd(e.item.ID, "todo")
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func nextStatus(current string) string {
	switch current {
	case "todo":
		return "in-progress"
	case "in-progress":
		return "done"
	}
	return "todo"
}

func (m Model) View() string {
	if m.loading {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			m.spinner.View()+" Loading "+strings.ToLower(m.title())+"…")
	}
	footer := theme.Muted.Render("enter:advance  backspace:reset  g:tasks/goals  /:filter")
	if m.statusLine != "" {
		footer = theme.Muted.Render(m.statusLine) + "\n" + footer
	}
	return m.list.View() + "\n" + footer
}

// Filtering reports whether the list's search filter is currently active.
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

func (m Model) Reload() tea.Cmd {
	c := m.collection
	return func() tea.Msg {
		items, err := m.port.Items(context.Background(), c)
		return ItemsLoadedMsg{Collection: c, Items: items, Err: err}
	}
}

func (m Model) AddCmd(c recorddto.Collection, title string) tea.Cmd {
	return func() tea.Msg {
		item, err := m.port.CreateItem(context.Background(), recorddto.CreateItemInput{Collection: c, Title: title})
		return ItemChangedMsg{Item: item, Err: err}
	}
}

func (m Model) moveCmd(id, status string) tea.Cmd {
	c := m.collection
	return func() tea.Msg {
		item, err := m.port.MoveItem(context.Background(), recorddto.MoveItemInput{Collection: c, ID: id, Status: status})
		return ItemChangedMsg{Item: item, Err: err}
	}
}
