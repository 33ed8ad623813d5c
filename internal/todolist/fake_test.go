package todolist

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/idilsaglam/tada-remote/internal/api"
	"github.com/idilsaglam/tada-remote/internal/model"
)

var (
	bob     = model.User{ID: 1, Username: "bob"}
	errDown = fmt.Errorf("%w: store unavailable", api.ErrNetwork)
)

// fakeStore answers like the remote store, synchronously, when a command runs.
type fakeStore struct {
	todos  []model.Todo
	nextID int64

	// honorCancel makes ListTodos fail with ErrCancelled once its context is done.
	honorCancel bool

	failList   error
	failCreate error
	failUpdate error
	failDelete error

	lists   []model.Filter
	creates []model.Draft
	updates []model.Todo
	deletes []int64
}

func newFakeStore(n int) *fakeStore {
	fs := &fakeStore{honorCancel: true}
	for i := 1; i <= n; i++ {
		title := fmt.Sprintf("todo %d", i)
		if i%4 == 0 {
			title = fmt.Sprintf("buy milk %d", i)
		}
		fs.todos = append(fs.todos, model.Todo{ID: int64(i), Title: title, UserID: bob.ID})
	}
	fs.nextID = int64(n)
	return fs
}

func (f *fakeStore) ListTodos(ctx context.Context, flt model.Filter) (model.Page, error) {
	f.lists = append(f.lists, flt)
	if f.honorCancel && ctx.Err() != nil {
		return model.Page{}, fmt.Errorf("%w: GET /todos", api.ErrCancelled)
	}
	if f.failList != nil {
		return model.Page{}, f.failList
	}
	var matched []model.Todo
	for _, t := range f.todos {
		if t.UserID != flt.UserID {
			continue
		}
		if flt.Query != "" && !strings.Contains(strings.ToLower(t.Title), strings.ToLower(flt.Query)) {
			continue
		}
		matched = append(matched, t)
	}
	model.SortByIDDesc(matched)
	total := len(matched)
	start := (flt.Page - 1) * flt.Limit
	if start > total {
		start = total
	}
	end := start + flt.Limit
	if end > total {
		end = total
	}
	return model.Page{Items: append([]model.Todo{}, matched[start:end]...), TotalCount: total}, nil
}

func (f *fakeStore) CreateTodo(ctx context.Context, d model.Draft) (model.Todo, error) {
	f.creates = append(f.creates, d)
	if f.failCreate != nil {
		return model.Todo{}, f.failCreate
	}
	f.nextID++
	t := model.Todo{ID: f.nextID, Title: d.Title, Completed: d.Completed, UserID: d.UserID}
	f.todos = append(f.todos, t)
	return t, nil
}

func (f *fakeStore) UpdateTodo(ctx context.Context, t model.Todo) (model.Todo, error) {
	f.updates = append(f.updates, t)
	if f.failUpdate != nil {
		return model.Todo{}, f.failUpdate
	}
	if i := model.IndexOf(f.todos, t.ID); i >= 0 {
		f.todos[i] = t
	}
	return t, nil
}

func (f *fakeStore) DeleteTodo(ctx context.Context, id int64) error {
	f.deletes = append(f.deletes, id)
	if f.failDelete != nil {
		return f.failDelete
	}
	if i := model.IndexOf(f.todos, id); i >= 0 {
		f.todos = append(f.todos[:i], f.todos[i+1:]...)
	}
	return nil
}

// fakeTimer fires immediately when the returned command runs and remembers
// the requested delays.
type fakeTimer struct {
	delays []time.Duration
}

func (ft *fakeTimer) after(d time.Duration, fn func(time.Time) tea.Msg) tea.Cmd {
	ft.delays = append(ft.delays, d)
	return func() tea.Msg { return fn(time.Time{}) }
}

func newTestController(fs *fakeStore, pageSize int) (*Controller, *fakeTimer) {
	ft := &fakeTimer{}
	c := New(fs, Options{PageSize: pageSize, Debounce: 500 * time.Millisecond, After: ft.after})
	return c, ft
}

// runCmd executes cmd and returns its messages, flattening batches.
func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, sub := range batch {
			out = append(out, runCmd(sub)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

// settle runs cmd and every command the controller issues in response,
// depth first, until nothing is left.
func settle(c *Controller, cmd tea.Cmd) {
	for _, msg := range runCmd(cmd) {
		settle(c, c.Update(msg))
	}
}
