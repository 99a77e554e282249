package markdown

import (
	"strings"
	"testing"
)

func TestRenderFrontmatterKeepsFieldOrderAndRoundTrips(t *testing.T) {
	t.Parallel()
	out, err := RenderFrontmatter([]Field{
		{Key: "date", Value: "2026-03-01"},
		{Key: "mood", Value: 4},
		{Key: "wins", Value: []string{"shipped", "ran"}},
	}, "# Journal\n")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Index(out, "date:") > strings.Index(out, "mood:") {
		t.Fatalf("field order not preserved:\n%s", out)
	}
	meta, body, err := SplitFrontmatter(out)
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	if meta["mood"] != 4 || meta["date"] != "2026-03-01" {
		t.Fatalf("unexpected meta %+v", meta)
	}
	if strings.TrimSpace(body) != "# Journal" {
		t.Fatalf("unexpected body %q", body)
	}
}

func TestSplitFrontmatterRejectsUnterminatedHeader(t *testing.T) {
	t.Parallel()
	if _, _, err := SplitFrontmatter("---\nmood: 3\n# no close\n"); err == nil {
		t.Fatalf("expected error for missing closing separator")
	}
	meta, body, err := SplitFrontmatter("plain text")
	if err != nil || len(meta) != 0 || body != "plain text" {
		t.Fatalf("plain content should pass through, got %v %q %v", meta, body, err)
	}
}

func TestReplaceManagedBlockPreservesUserText(t *testing.T) {
	t.Parallel()
	const start, end = "<!-- studyhub:start -->", "<!-- studyhub:end -->"
	first := ReplaceManagedBlock("my notes\n", start, end, "v1")
	if !strings.HasPrefix(first, "my notes\n") || !strings.Contains(first, "v1") {
		t.Fatalf("append failed: %q", first)
	}
	second := ReplaceManagedBlock(first+"after\n", start, end, "v2")
	if strings.Contains(second, "v1") || !strings.Contains(second, "v2") {
		t.Fatalf("block not replaced: %q", second)
	}
	if !strings.HasPrefix(second, "my notes\n") || !strings.HasSuffix(second, "after\n") {
		t.Fatalf("user text lost: %q", second)
	}
	if got := ReplaceManagedBlock("  ", start, end, "x"); got != start+"\nx\n"+end+"\n" {
		t.Fatalf("empty body: %q", got)
	}
}
