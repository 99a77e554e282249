package components

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func typeInto(p Palette, s string) Palette {
	p, _ = p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	return p
}

func press(p Palette, k tea.KeyType) (Palette, tea.Msg) {
	p, cmd := p.Update(tea.KeyMsg{Type: k})
	if cmd == nil {
		return p, nil
	}
	return p, cmd()
}

func TestPaletteFuzzySuggestions(t *testing.T) {
	t.Parallel()
	p := NewPalette()
	p.Open()
	p = typeInto(p, "tsk")
	matches := p.Suggestions()
	if len(matches) == 0 || !strings.HasPrefix(matches[0].Str, "task:add") {
		t.Fatalf("expected task:add first, got %+v", matches)
	}
}

func TestPaletteTabCompletesVerbKeepingArgs(t *testing.T) {
	t.Parallel()
	p := NewPalette()
	p.Open()
	p = typeInto(p, "gol read chapter")
	p, _ = press(p, tea.KeyTab)
	p, msg := press(p, tea.KeyEnter)
	submit, ok := msg.(PaletteSubmitMsg)
	if !ok {
		t.Fatalf("expected submit, got %T", msg)
	}
	if submit.Input != "goal:add read chapter" {
		t.Fatalf("unexpected completion %q", submit.Input)
	}
	if p.Visible() {
		t.Fatalf("palette should close on submit")
	}
}

func TestPaletteHistoryRecall(t *testing.T) {
	t.Parallel()
	p := NewPalette()
	for _, c := range []string{"timer:pause", "sync:now", "sync:now"} {
		p.Open()
		p = typeInto(p, c)
		p, _ = press(p, tea.KeyEnter)
	}
	if h := p.History(); len(h) != 2 {
		t.Fatalf("repeated command should be stored once, got %v", h)
	}

	p.Open()
	p, _ = press(p, tea.KeyUp)
	p, _ = press(p, tea.KeyUp)
	p, msg := press(p, tea.KeyEnter)
	if got := msg.(PaletteSubmitMsg).Input; got != "timer:pause" {
		t.Fatalf("expected oldest command, got %q", got)
	}
}

func TestPaletteEscCancels(t *testing.T) {
	t.Parallel()
	p := NewPalette()
	p.Open()
	p, msg := press(p, tea.KeyEsc)
	if _, ok := msg.(PaletteCancelMsg); !ok || p.Visible() {
		t.Fatalf("esc should cancel and hide, got %T visible=%v", msg, p.Visible())
	}
}
