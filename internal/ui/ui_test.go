package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/idilsaglam/tada-remote/internal/model"
)

func noColor(t *testing.T) {
	t.Helper()
	SetColorForcing(false, true)
	t.Cleanup(func() {
		SetColorForcing(false, false)
		_ = SetTheme("classic")
	})
}

func TestProgressBar(t *testing.T) {
	cases := []struct {
		done, total, width int
		want               string
	}{
		{0, 4, 8, "░░░░░░░░   0%"},
		{2, 4, 8, "████░░░░  50%"},
		{4, 4, 8, "████████ 100%"},
		{0, 0, 2, "░░░░░   0%"},
	}
	for _, c := range cases {
		if got := ProgressBar(c.done, c.total, c.width); got != c.want {
			t.Errorf("ProgressBar(%d, %d, %d) = %q, want %q", c.done, c.total, c.width, got, c.want)
		}
	}
}

func TestSetTheme(t *testing.T) {
	noColor(t)
	if err := SetTheme("NEON"); err != nil || Current().Name != "neon" {
		t.Fatalf("SetTheme(NEON) = %v, current %q", err, Current().Name)
	}
	if err := SetTheme("sepia"); err == nil {
		t.Fatal("expected error for unknown theme")
	}
	if Current().Name != "classic" {
		t.Fatalf("unknown theme should fall back to classic, got %q", Current().Name)
	}
}

func TestPanel_AlignsMultibyteRunes(t *testing.T) {
	noColor(t)
	_ = SetTheme("mono")

	var buf bytes.Buffer
	Panel(&buf, []string{"é done", "ab"})
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines:\n%s", len(lines), buf.String())
	}
	w := lipgloss.Width(lines[0])
	for _, ln := range lines {
		if lipgloss.Width(ln) != w {
			t.Fatalf("ragged panel:\n%s", buf.String())
		}
	}
	if lines[2] != "| ab     |" {
		t.Fatalf("padded line = %q", lines[2])
	}
}

func TestRenderPage(t *testing.T) {
	noColor(t)
	_ = SetTheme("mono")

	items := []model.Todo{
		{ID: 12, Title: "Plan weekend"},
		{ID: 10, Title: "Buy oat milk", Completed: true},
	}
	var buf bytes.Buffer
	RenderPage(&buf, PageView{Username: "bob", Items: items, Page: 1, TotalPages: 3, TotalCount: 12}, false)
	out := buf.String()
	for _, want := range []string{
		"Todos of bob  x 1  - 1  Total 12",
		"#12   [ ] Plan weekend",
		"#10   [x] Buy oat milk",
		"Page 1 of 3 (12 items)",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestGroupLines(t *testing.T) {
	noColor(t)
	_ = SetTheme("mono")

	got := GroupLines([]model.Todo{{ID: 1, Title: "a", Completed: true}}, "")
	want := []string{"Pending", "(none)", "", "Done", "#1    [x] a"}
	if strings.Join(got, "\n") != strings.Join(want, "\n") {
		t.Fatalf("GroupLines = %q", got)
	}
}

func TestTodoLines_EmptyStates(t *testing.T) {
	noColor(t)
	if got := TodoLines(nil, ""); got[0] != "No todos yet" {
		t.Fatalf("got %q", got)
	}
	if got := TodoLines(nil, "milk"); got[0] != `No todos found matching "milk"` {
		t.Fatalf("got %q", got)
	}
}

func TestTruncate(t *testing.T) {
	long := strings.Repeat("é", 90)
	got := truncate(long, 80)
	if n := len([]rune(got)); n != 80 || !strings.HasSuffix(got, "...") {
		t.Fatalf("truncate kept %d runes: %q", n, got)
	}
	if truncate("short", 80) != "short" {
		t.Fatal("short strings must be kept")
	}
}
