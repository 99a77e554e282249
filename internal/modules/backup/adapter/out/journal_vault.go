package out

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	backupout "studyhub/internal/modules/backup/port/out"
	recorddto "studyhub/internal/modules/record/dto"
	"studyhub/internal/platform/markdown"
)

const (
	managedStart = "<!-- studyhub:journal:start -->"
	managedEnd   = "<!-- studyhub:journal:end -->"
)

// JournalVault writes one markdown note per journal day under
// journal/YYYY/MM/DD.md. Text outside the managed block is the user's and
// survives re-export.
type JournalVault struct{}

func NewJournalVault() backupout.JournalWriter {
	return JournalVault{}
}

func NotePath(dir, date string) (string, error) {
	day, err := time.Parse(time.DateOnly, date)
	if err != nil {
		return "", fmt.Errorf("journal date %q: %w", date, err)
	}
	return filepath.Join(dir, "journal", day.Format("2006"), day.Format("01"), day.Format("02")+".md"), nil
}

func (JournalVault) Write(_ context.Context, dir string, entry recorddto.JournalEntry) (string, error) {
	path, err := NotePath(dir, entry.DateString)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create journal directory: %w", err)
	}

	body := ""
	if existing, err := os.ReadFile(path); err == nil {
		if _, existingBody, splitErr := markdown.SplitFrontmatter(string(existing)); splitErr == nil {
			body = existingBody
		}
	}
	if strings.TrimSpace(body) == "" {
		body = "# " + entry.DateString + "\n\n"
	}
	body = markdown.ReplaceManagedBlock(body, managedStart, managedEnd, renderEntry(entry))

	rendered, err := markdown.RenderFrontmatter(toFrontmatter(entry), body)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(rendered), 0o644); err != nil {
		return "", fmt.Errorf("write journal markdown: %w", err)
	}
	return path, nil
}

func toFrontmatter(entry recorddto.JournalEntry) []markdown.Field {
	return []markdown.Field{
		{Key: "id", Value: entry.ID},
		{Key: "date", Value: entry.DateString},
		{Key: "mood", Value: entry.Mood},
		{Key: "energy", Value: entry.Energy},
		{Key: "stress", Value: entry.Stress},
		{Key: "tags", Value: []string{"journal"}},
		{Key: "updated_at", Value: time.UnixMilli(entry.UpdatedAt).UTC().Format(time.RFC3339)},
	}
}

func renderEntry(entry recorddto.JournalEntry) string {
	var b strings.Builder
	section := func(title string, items []string) {
		if len(items) == 0 {
			return
		}
		fmt.Fprintf(&b, "## %s\n\n", title)
		for _, item := range items {
			fmt.Fprintf(&b, "- %s\n", item)
		}
		b.WriteString("\n")
	}
	section("Gratitude", entry.Gratitude)
	section("Wins", entry.Wins)
	section("Challenges", entry.Challenges)
	section("Lessons", entry.Lessons)
	section("Highlights", entry.Highlights)
	if notes := strings.TrimSpace(entry.Notes); notes != "" {
		fmt.Fprintf(&b, "## Notes\n\n%s\n\n", notes)
	}
	if focus := strings.TrimSpace(entry.TomorrowFocus); focus != "" {
		fmt.Fprintf(&b, "## Tomorrow\n\n%s\n", focus)
	}
	return b.String()
}
