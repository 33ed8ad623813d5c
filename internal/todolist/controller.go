// Package todolist owns the list view state: paging, debounced search,
// superseding fetches and optimistic mutations with rollback.
//
// A Controller is driven from a single Bubble Tea Update loop. Operations
// mutate state immediately and return the tea.Cmd that performs the remote
// call; the call's result comes back as a message that must be passed to
// Update. Nothing else touches the state, so there are no locks.
package todolist

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/idilsaglam/tada-remote/internal/api"
	"github.com/idilsaglam/tada-remote/internal/model"
)

const (
	DefaultPageSize = 5
	DefaultDebounce = 500 * time.Millisecond

	sortField = "id"
	sortOrder = "desc"
)

// Store is the part of the data-access client the controller uses.
type Store interface {
	ListTodos(ctx context.Context, f model.Filter) (model.Page, error)
	CreateTodo(ctx context.Context, d model.Draft) (model.Todo, error)
	UpdateTodo(ctx context.Context, t model.Todo) (model.Todo, error)
	DeleteTodo(ctx context.Context, id int64) error
}

type Options struct {
	PageSize int
	Debounce time.Duration
	// After schedules fn once d has elapsed. Defaults to tea.Tick.
	After func(d time.Duration, fn func(time.Time) tea.Msg) tea.Cmd
}

type Controller struct {
	store    Store
	pageSize int
	debounce time.Duration
	after    func(time.Duration, func(time.Time) tea.Msg) tea.Cmd

	userID int64
	state  State

	// epoch identifies the current fetch; results from any other epoch are dropped.
	epoch  uint64
	cancel context.CancelFunc

	// debounceSeq identifies the latest armed search timer.
	debounceSeq uint64

	pending map[string]pendingMutation
	closed  bool
}

func New(store Store, opt Options) *Controller {
	if opt.PageSize < 1 {
		opt.PageSize = DefaultPageSize
	}
	if opt.Debounce <= 0 {
		opt.Debounce = DefaultDebounce
	}
	if opt.After == nil {
		opt.After = tea.Tick
	}
	return &Controller{
		store:    store,
		pageSize: opt.PageSize,
		debounce: opt.Debounce,
		after:    opt.After,
		pending:  map[string]pendingMutation{},
		state: State{
			Page:       1,
			PageSize:   opt.PageSize,
			TotalPages: 1,
			Items:      []model.Todo{},
		},
	}
}

// State returns a snapshot. Items must be treated as read-only.
func (c *Controller) State() State { return c.state }

func (c *Controller) UserID() int64 { return c.userID }

// SetUser scopes the controller to u and loads its first page with an empty
// search. The zero User signs out: the in-flight fetch and any armed search
// timer are dropped and nothing is loaded.
// Setting the same user again is a no-op.
func (c *Controller) SetUser(u model.User) tea.Cmd {
	if u.ID == c.userID {
		return nil
	}
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.epoch++
	c.debounceSeq++
	c.userID = u.ID
	c.pending = map[string]pendingMutation{}
	c.state = State{
		Page:       1,
		PageSize:   c.pageSize,
		TotalPages: 1,
		Items:      []model.Todo{},
	}
	return c.fetch()
}

// GoToPage moves to page n. Out-of-range or current pages are ignored.
func (c *Controller) GoToPage(n int) tea.Cmd {
	if n < 1 || n > c.state.TotalPages || n == c.state.Page {
		return nil
	}
	return c.changePage(n)
}

func (c *Controller) NextPage() tea.Cmd { return c.GoToPage(c.state.Page + 1) }
func (c *Controller) PrevPage() tea.Cmd { return c.GoToPage(c.state.Page - 1) }

// SetSearch buffers the search text and re-arms the debounce timer.
func (c *Controller) SetSearch(term string) tea.Cmd {
	if term == c.state.SearchTerm || c.closed {
		return nil
	}
	c.state.SearchTerm = term
	c.debounceSeq++
	seq := c.debounceSeq
	return c.after(c.debounce, func(time.Time) tea.Msg { return debounceMsg{seq: seq} })
}

func (c *Controller) ClearSearch() tea.Cmd { return c.SetSearch("") }

// Create submits a new, not completed todo for the current user.
func (c *Controller) Create(title string) tea.Cmd {
	title = strings.TrimSpace(title)
	if title == "" {
		c.state.FormError = "title is empty"
		return nil
	}
	if c.userID == 0 || c.closed {
		return nil
	}
	c.state.FormError = ""
	c.state.Creating = true

	d := model.Draft{Title: title, Completed: false, UserID: c.userID}
	userID, store := c.userID, c.store
	return func() tea.Msg {
		t, err := store.CreateTodo(context.Background(), d)
		return createdMsg{userID: userID, todo: t, err: err}
	}
}

// Edit renames a todo optimistically. Empty or unchanged titles are ignored.
func (c *Controller) Edit(id int64, title string) tea.Cmd {
	i := model.IndexOf(c.state.Items, id)
	if i < 0 {
		return nil
	}
	prev := c.state.Items[i]
	title = strings.TrimSpace(title)
	if title == "" || title == strings.TrimSpace(prev.Title) {
		return nil
	}
	next := prev
	next.Title = title
	return c.update(kindEdit, prev, next)
}

// Toggle flips completion optimistically.
func (c *Controller) Toggle(id int64) tea.Cmd {
	i := model.IndexOf(c.state.Items, id)
	if i < 0 {
		return nil
	}
	prev := c.state.Items[i]
	next := prev
	next.Completed = !prev.Completed
	return c.update(kindToggle, prev, next)
}

// Delete removes a todo optimistically and keeps the page in range.
func (c *Controller) Delete(id int64) tea.Cmd {
	i := model.IndexOf(c.state.Items, id)
	if i < 0 || c.closed {
		return nil
	}
	pm := pendingMutation{
		ID:             uuid.NewString(),
		Kind:           kindDelete,
		ItemID:         id,
		Previous:       c.state.Items[i],
		PrevTotalCount: c.state.TotalCount,
		PrevTotalPages: c.state.TotalPages,
	}
	c.pending[pm.ID] = pm

	items := make([]model.Todo, 0, len(c.state.Items)-1)
	items = append(items, c.state.Items[:i]...)
	items = append(items, c.state.Items[i+1:]...)
	c.state.Items = items
	c.state.Error = ""
	c.setTotal(c.state.TotalCount - 1)

	store := c.store
	del := func() tea.Msg {
		return mutatedMsg{id: pm.ID, err: store.DeleteTodo(context.Background(), id)}
	}
	if c.state.Page > c.state.TotalPages {
		return tea.Batch(del, c.changePage(c.state.TotalPages))
	}
	return del
}

// Close cancels the in-flight fetch and invalidates any armed search timer.
// Safe to call more than once.
func (c *Controller) Close() {
	c.closed = true
	c.debounceSeq++
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

// Update applies results of commands the controller issued. Other messages
// are ignored.
func (c *Controller) Update(msg tea.Msg) tea.Cmd {
	if c.closed {
		return nil
	}
	switch msg := msg.(type) {
	case debounceMsg:
		if msg.seq != c.debounceSeq {
			return nil
		}
		if c.state.Page != 1 {
			return c.changePage(1)
		}
		return c.fetch()

	case fetchedMsg:
		return c.applyFetch(msg)

	case createdMsg:
		if msg.userID != c.userID {
			return nil
		}
		c.state.Creating = false
		if msg.err != nil {
			log.Printf("create failed: %v", msg.err)
			c.state.FormError = msg.err.Error()
			return nil
		}
		items := make([]model.Todo, 0, len(c.state.Items)+1)
		items = append(items, msg.todo)
		c.state.Items = append(items, c.state.Items...)
		c.setTotal(c.state.TotalCount + 1)
		return nil

	case mutatedMsg:
		pm, ok := c.pending[msg.id]
		if !ok {
			return nil
		}
		delete(c.pending, msg.id)
		if msg.err == nil {
			return nil
		}
		log.Printf("%s of todo %d failed: %v", pm.Kind, pm.ItemID, msg.err)
		return c.rollback(pm, msg.err)
	}
	return nil
}

func (c *Controller) changePage(n int) tea.Cmd {
	c.state.Page = n
	return c.fetch()
}

// fetch supersedes any in-flight fetch and starts a new one for the current
// (page, search) pair.
func (c *Controller) fetch() tea.Cmd {
	if c.userID == 0 || c.closed {
		return nil
	}
	if c.cancel != nil {
		c.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.epoch++
	epoch := c.epoch

	f := model.Filter{
		UserID: c.userID,
		Page:   c.state.Page,
		Limit:  c.pageSize,
		Sort:   sortField,
		Order:  sortOrder,
		Query:  model.NormalizeQuery(c.state.SearchTerm),
	}
	c.state.Status = StatusLoading
	c.state.Error = ""
	log.Printf("loading todos: user=%d page=%d limit=%d q=%q", f.UserID, f.Page, f.Limit, f.Query)

	store := c.store
	return func() tea.Msg {
		p, err := store.ListTodos(ctx, f)
		return fetchedMsg{epoch: epoch, page: p, err: err}
	}
}

func (c *Controller) applyFetch(msg fetchedMsg) tea.Cmd {
	if api.IsCancelled(msg.err) {
		log.Printf("fetch %d aborted", msg.epoch)
		return nil
	}
	if msg.epoch != c.epoch {
		log.Printf("fetch %d superseded by %d; result dropped", msg.epoch, c.epoch)
		return nil
	}
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.state.Status = StatusIdle
	if msg.err != nil {
		log.Printf("error loading todos: %v", msg.err)
		c.state.Error = fmt.Sprintf("failed to load todos: %v", msg.err)
		return nil
	}
	c.state.Items = append([]model.Todo{}, msg.page.Items...)
	c.setTotal(msg.page.TotalCount)
	if c.state.Page > c.state.TotalPages {
		return c.changePage(c.state.TotalPages)
	}
	return nil
}

func (c *Controller) update(kind mutationKind, prev, next model.Todo) tea.Cmd {
	if c.closed {
		return nil
	}
	pm := pendingMutation{ID: uuid.NewString(), Kind: kind, ItemID: prev.ID, Previous: prev}
	c.pending[pm.ID] = pm
	c.replaceItem(next)
	c.state.Error = ""

	store := c.store
	return func() tea.Msg {
		_, err := store.UpdateTodo(context.Background(), next)
		return mutatedMsg{id: pm.ID, err: err}
	}
}

func (c *Controller) rollback(pm pendingMutation, err error) tea.Cmd {
	switch pm.Kind {
	case kindEdit, kindToggle:
		c.replaceItem(pm.Previous)
		c.state.Error = fmt.Sprintf("update failed: %v", err)
		return nil

	case kindDelete:
		if model.IndexOf(c.state.Items, pm.ItemID) < 0 {
			items := make([]model.Todo, 0, len(c.state.Items)+1)
			items = append(items, c.state.Items...)
			items = append(items, pm.Previous)
			model.SortByIDDesc(items)
			c.state.Items = items
		}
		// Counts come from the record, not from current state.
		c.state.TotalCount = pm.PrevTotalCount
		c.state.TotalPages = pm.PrevTotalPages
		c.state.Error = fmt.Sprintf("delete failed: %v", err)
		if c.state.Page > c.state.TotalPages {
			return c.changePage(c.state.TotalPages)
		}
	}
	return nil
}

// replaceItem swaps in t for the item with the same id, if it is shown.
func (c *Controller) replaceItem(t model.Todo) {
	i := model.IndexOf(c.state.Items, t.ID)
	if i < 0 {
		return
	}
	items := append([]model.Todo{}, c.state.Items...)
	items[i] = t
	c.state.Items = items
}

func (c *Controller) setTotal(n int) {
	if n < 0 {
		n = 0
	}
	c.state.TotalCount = n
	c.state.TotalPages = model.TotalPages(n, c.pageSize)
}
