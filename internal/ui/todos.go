package ui

import (
	"fmt"
	"io"

	"github.com/idilsaglam/tada-remote/internal/model"
)

const maxTitle = 80

// PageView is one page of a user's todos as printed by `todo ls`.
type PageView struct {
	Username   string
	Items      []model.Todo
	Page       int
	TotalPages int
	TotalCount int
	Query      string
}

// RenderPage prints v inside a panel: header with counts, a progress bar for
// the page, then the items flat or grouped by pending/done.
func RenderPage(w io.Writer, v PageView, group bool) {
	t := Current()
	d, p := model.Stats(v.Items)
	header := fmt.Sprintf("%s  %s %d  %s %d  %s %d",
		C(t.Title, "Todos of "+v.Username),
		C(t.Success, t.SymDone), d,
		C(t.Pending, t.SymPending), p,
		C(t.Accent, "Total"), v.TotalCount,
	)

	lines := []string{header, C(t.Muted, ProgressBar(d, d+p, 28))}
	if v.Query != "" {
		lines = append(lines, C(t.Muted, fmt.Sprintf("Found %d todo(s) matching %q", v.TotalCount, v.Query)))
	}
	lines = append(lines, "")

	if group {
		lines = append(lines, GroupLines(v.Items, v.Query)...)
	} else {
		lines = append(lines, TodoLines(v.Items, v.Query)...)
	}
	lines = append(lines, "")
	if v.TotalPages > 1 {
		lines = append(lines, C(t.Muted, fmt.Sprintf("Page %d of %d (%d items)", v.Page, v.TotalPages, v.TotalCount)))
	}
	lines = append(lines, C(t.Muted, "Tip: add with `todo add \"Buy milk\"`"))
	Panel(w, lines)
}

// TodoLines renders one line per todo, keyed by its id.
func TodoLines(items []model.Todo, query string) []string {
	t := Current()
	if len(items) == 0 {
		if query != "" {
			return []string{C(t.Muted, fmt.Sprintf("No todos found matching %q", query))}
		}
		return []string{C(t.Muted, "No todos yet")}
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		box, color := t.BoxUnchecked, t.Muted
		if it.Completed {
			box, color = t.BoxChecked, t.Success
		}
		out = append(out, fmt.Sprintf("%s %s %s",
			C(dim, fmt.Sprintf("#%-4d", it.ID)), C(color, box), truncate(it.Title, maxTitle)))
	}
	return out
}

func GroupLines(items []model.Todo, query string) []string {
	var pend, done []model.Todo
	for _, it := range items {
		if it.Completed {
			done = append(done, it)
		} else {
			pend = append(pend, it)
		}
	}
	t := Current()
	section := func(title string, group []model.Todo) []string {
		lines := []string{C(t.Accent, title)}
		if len(group) == 0 {
			return append(lines, C(t.Muted, "(none)"))
		}
		return append(lines, TodoLines(group, query)...)
	}
	lines := section("Pending", pend)
	lines = append(lines, "")
	return append(lines, section("Done", done)...)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
