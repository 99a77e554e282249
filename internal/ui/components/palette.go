package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"studyhub/internal/ui/theme"
)

// PaletteSubmitMsg carries the confirmed command line.
type PaletteSubmitMsg struct{ Input string }

type PaletteCancelMsg struct{}

const (
	maxSuggestions = 5
	maxHistory     = 20
)

var (
	paletteStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Peach).
			Background(theme.Mantle).
			Foreground(theme.Text).
			Padding(0, 1)

	hintStyle     = lipgloss.NewStyle().Foreground(theme.Subtext0)
	selectedStyle = lipgloss.NewStyle().Foreground(theme.Peach).Bold(true)
	matchStyle    = lipgloss.NewStyle().Foreground(theme.Lavender).Underline(true)
)

// PaletteHints lists the commands app.executePalette understands.
var PaletteHints = []string{
	"timer:start [mode]",
	"timer:pause",
	"timer:stop",
	"timer:mode <stopwatch|pomodoro|short-break|long-break>",
	"timer:subject <id>",
	"task:add <title>",
	"goal:add <title>",
	"sync:now",
	"backup:export <path>",
}

// Palette is a one-line command prompt with fuzzy suggestions. Tab completes
// the highlighted suggestion's verb; up and down walk submitted history.
type Palette struct {
	input    textinput.Model
	visible  bool
	width    int
	selected int
	history  []string
	recall   int
}

func NewPalette() Palette {
	ti := textinput.New()
	ti.Placeholder = "type a command…"
	ti.CharLimit = 256
	return Palette{input: ti}
}

func (p Palette) Visible() bool { return p.visible }

func (p *Palette) Open() tea.Cmd {
	p.visible = true
	p.selected = 0
	p.recall = len(p.history)
	p.input.SetValue("")
	return p.input.Focus()
}

func (p *Palette) SetWidth(w int) { p.width = w }

// History returns submitted commands, oldest first.
func (p Palette) History() []string { return append([]string(nil), p.history...) }

// Suggestions ranks PaletteHints against the verb typed so far.
func (p Palette) Suggestions() []fuzzy.Match {
	verb := strings.ToLower(strings.TrimSpace(p.input.Value()))
	if i := strings.IndexByte(verb, ' '); i >= 0 {
		verb = verb[:i]
	}
	if verb == "" {
		out := make([]fuzzy.Match, 0, maxSuggestions)
		for i, h := range PaletteHints {
			if i == maxSuggestions {
				break
			}
			out = append(out, fuzzy.Match{Str: h, Index: i})
		}
		return out
	}
	matches := fuzzy.Find(verb, PaletteHints)
	if len(matches) > maxSuggestions {
		matches = matches[:maxSuggestions]
	}
	return matches
}

func (p Palette) Update(msg tea.Msg) (Palette, tea.Cmd) {
	if !p.visible {
		return p, nil
	}
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc":
			p.close()
			return p, func() tea.Msg { return PaletteCancelMsg{} }
		case "enter":
			val := strings.TrimSpace(p.input.Value())
			p.remember(val)
			p.close()
			return p, func() tea.Msg { return PaletteSubmitMsg{Input: val} }
		case "tab":
			p.complete()
			return p, nil
		case "ctrl+n":
			p.selected++
			return p, nil
		case "ctrl+p":
			if p.selected > 0 {
				p.selected--
			}
			return p, nil
		case "up":
			if p.recall > 0 {
				p.recall--
				p.setValue(p.history[p.recall])
			}
			return p, nil
		case "down":
			if p.recall < len(p.history)-1 {
				p.recall++
				p.setValue(p.history[p.recall])
			} else {
				p.recall = len(p.history)
				p.setValue("")
			}
			return p, nil
		}
	}
	before := p.input.Value()
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	if p.input.Value() != before {
		p.selected = 0
	}
	return p, cmd
}

func (p *Palette) close() {
	p.visible = false
	p.input.Blur()
}

func (p *Palette) setValue(v string) {
	p.input.SetValue(v)
	p.input.CursorEnd()
}

func (p *Palette) remember(v string) {
	if v == "" || (len(p.history) > 0 && p.history[len(p.history)-1] == v) {
		return
	}
	p.history = append(p.history, v)
	if len(p.history) > maxHistory {
		p.history = p.history[len(p.history)-maxHistory:]
	}
}

// complete replaces the typed verb with the selected suggestion's verb and
// keeps any arguments already typed.
func (p *Palette) complete() {
	matches := p.Suggestions()
	if len(matches) == 0 {
		return
	}
	verb := strings.Fields(matches[p.selected%len(matches)].Str)[0]
	typed := p.input.Value()
	args := ""
	if i := strings.IndexByte(typed, ' '); i >= 0 {
		args = strings.TrimLeft(typed[i:], " ")
	}
	p.setValue(verb + " " + args)
	p.selected = 0
}

func (p Palette) View() string {
	if !p.visible {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Command Palette") + "\n")
	sb.WriteString(": " + p.input.View() + "\n")
	if matches := p.Suggestions(); len(matches) > 0 {
		sb.WriteString("\n")
		current := p.selected % len(matches)
		for i, m := range matches {
			marker, style := "  ", hintStyle
			if i == current {
				marker, style = "› ", selectedStyle
			}
			sb.WriteString(style.Render(marker) + highlight(m, style) + "\n")
		}
	}
	w := p.width
	if w < 20 {
		w = 64
	}
	return paletteStyle.Width(w - 2).Render(sb.String())
}

func highlight(m fuzzy.Match, base lipgloss.Style) string {
	hit := make(map[int]bool, len(m.MatchedIndexes))
	for _, i := range m.MatchedIndexes {
		hit[i] = true
	}
	var sb strings.Builder
	for i, r := range m.Str {
		if hit[i] {
			sb.WriteString(matchStyle.Render(string(r)))
			continue
		}
		sb.WriteString(base.Render(string(r)))
	}
	return sb.String()
}
