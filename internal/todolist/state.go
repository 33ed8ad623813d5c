package todolist

import "github.com/idilsaglam/tada-remote/internal/model"

type Status int

const (
	StatusIdle Status = iota
	StatusLoading
)

func (s Status) String() string {
	if s == StatusLoading {
		return "loading"
	}
	return "idle"
}

// State is what the list view renders.
// TotalPages is always max(1, ceil(TotalCount/PageSize)).
type State struct {
	Items      []model.Todo
	Page       int
	PageSize   int
	TotalCount int
	TotalPages int
	SearchTerm string
	Status     Status
	Error      string

	// Create form.
	Creating  bool
	FormError string
}

func (s State) Loading() bool { return s.Status == StatusLoading }

// Searching reports a load for a non-empty search term.
func (s State) Searching() bool {
	return s.Loading() && model.NormalizeQuery(s.SearchTerm) != ""
}

type mutationKind string

const (
	kindEdit   mutationKind = "edit"
	kindToggle mutationKind = "toggle"
	kindDelete mutationKind = "delete"
)

// pendingMutation is kept from the optimistic change until the remote call
// resolves; rollback reads only from it.
type pendingMutation struct {
	ID       string
	Kind     mutationKind
	ItemID   int64
	Previous model.Todo

	// Delete only: counts as they were before the removal.
	PrevTotalCount int
	PrevTotalPages int
}

type debounceMsg struct{ seq uint64 }

type fetchedMsg struct {
	epoch uint64
	page  model.Page
	err   error
}

type createdMsg struct {
	userID int64
	todo   model.Todo
	err    error
}

type mutatedMsg struct {
	id  string
	err error
}
