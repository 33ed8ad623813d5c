package todolist

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"pgregory.net/rapid"

	"github.com/idilsaglam/tada-remote/internal/model"
)

func checkPaging(t *rapid.T, c *Controller, step string) {
	st := c.State()
	if want := model.TotalPages(st.TotalCount, st.PageSize); st.TotalPages != want {
		t.Fatalf("%s: totalPages = %d, want max(1, ceil(%d/%d)) = %d", step, st.TotalPages, st.TotalCount, st.PageSize, want)
	}
	if st.Page < 1 || st.Page > st.TotalPages {
		t.Fatalf("%s: page %d outside [1, %d]", step, st.Page, st.TotalPages)
	}
}

// queue holds outstanding commands so the test can complete them in any order.
type queue []tea.Cmd

func (q *queue) push(cmd tea.Cmd) {
	if cmd != nil {
		*q = append(*q, cmd)
	}
}

// runOne completes one outstanding command. Batches are split back into the
// queue instead of being run together.
func (q *queue) runOne(t *rapid.T, c *Controller) {
	i := rapid.IntRange(0, len(*q)-1).Draw(t, "which")
	cmd := (*q)[i]
	*q = append((*q)[:i], (*q)[i+1:]...)

	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, sub := range batch {
			q.push(sub)
		}
		return
	}
	if msg != nil {
		q.push(c.Update(msg))
	}
}

func TestProp_PagingConsistentAfterEveryTransition(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		fs := newFakeStore(rapid.IntRange(0, 23).Draw(t, "todos"))
		fs.honorCancel = rapid.Bool().Draw(t, "honorCancel")
		c, _ := newTestController(fs, rapid.IntRange(1, 6).Draw(t, "pageSize"))

		var q queue
		q.push(c.SetUser(bob))
		checkPaging(t, c, "SetUser")

		steps := rapid.IntRange(1, 60).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			op := rapid.SampledFrom([]string{"page", "search", "create", "delete", "toggle", "edit", "faults", "run", "run", "run"}).Draw(t, "op")
			items := c.State().Items
			switch op {
			case "page":
				q.push(c.GoToPage(rapid.IntRange(-1, 6).Draw(t, "page")))
			case "search":
				q.push(c.SetSearch(rapid.SampledFrom([]string{"", "milk", "todo 1", "zz"}).Draw(t, "term")))
			case "create":
				q.push(c.Create(rapid.SampledFrom([]string{"", "new", "buy milk"}).Draw(t, "title")))
			case "delete", "toggle", "edit":
				if len(items) == 0 {
					continue
				}
				id := items[rapid.IntRange(0, len(items)-1).Draw(t, "item")].ID
				switch op {
				case "delete":
					q.push(c.Delete(id))
				case "toggle":
					q.push(c.Toggle(id))
				default:
					q.push(c.Edit(id, "edited"))
				}
			case "faults":
				fail := func(label string) error {
					if rapid.Bool().Draw(t, label) {
						return errDown
					}
					return nil
				}
				fs.failList = fail("failList")
				fs.failCreate = fail("failCreate")
				fs.failUpdate = fail("failUpdate")
				fs.failDelete = fail("failDelete")
			case "run":
				if len(q) > 0 {
					q.runOne(t, c)
				}
			}
			checkPaging(t, c, op)
		}

		for len(q) > 0 {
			q.runOne(t, c)
			checkPaging(t, c, "drain")
		}
	})
}

func TestProp_MostRecentlyInitiatedFetchWins(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		fs := newFakeStore(rapid.IntRange(1, 30).Draw(t, "todos"))
		fs.honorCancel = rapid.Bool().Draw(t, "honorCancel")
		c, _ := newTestController(fs, rapid.IntRange(1, 5).Draw(t, "pageSize"))
		settle(c, c.SetUser(bob))

		var q queue
		n := rapid.IntRange(1, 8).Draw(t, "navigations")
		for i := 0; i < n; i++ {
			if rapid.Bool().Draw(t, "searchStep") {
				q.push(c.SetSearch(rapid.SampledFrom([]string{"", "milk", "1"}).Draw(t, "term")))
				continue
			}
			q.push(c.GoToPage(rapid.IntRange(1, c.State().TotalPages).Draw(t, "page")))
		}
		for len(q) > 0 {
			q.runOne(t, c)
		}

		st := c.State()
		want, err := fs.ListTodos(context.Background(), model.Filter{
			UserID: bob.ID,
			Page:   st.Page,
			Limit:  st.PageSize,
			Query:  model.NormalizeQuery(st.SearchTerm),
		})
		if err != nil {
			t.Fatalf("reference list: %v", err)
		}
		if !sameIDs(st.Items, ids(want.Items)...) || st.TotalCount != want.TotalCount {
			t.Fatalf("page %d term %q: items %v total %d, want %v total %d",
				st.Page, st.SearchTerm, ids(st.Items), st.TotalCount, ids(want.Items), want.TotalCount)
		}
		if st.Loading() || st.Error != "" {
			t.Fatalf("status %v error %q after all fetches resolved", st.Status, st.Error)
		}
	})
}
