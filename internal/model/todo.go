package model

import (
	"sort"
	"strings"
)

// User is the identity returned by a successful login.
// It never carries the password.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// Todo is a single entry as stored by the remote resource store.
type Todo struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
	UserID    int64  `json:"userId"`
}

// Draft is the body of a create request; the store assigns the id.
type Draft struct {
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
	UserID    int64  `json:"userId"`
}

// Filter is forwarded to the store as query parameters without interpretation.
type Filter struct {
	UserID int64
	Page   int
	Limit  int
	Sort   string // field name, e.g. "id"
	Order  string // "asc" | "desc"
	Query  string // free text, optional
}

// Page is the normalised result of a list call.
type Page struct {
	Items      []Todo
	TotalCount int
}

// TotalPages returns max(1, ceil(total/size)).
func TotalPages(total, size int) int {
	if size <= 0 || total <= 0 {
		return 1
	}
	return (total + size - 1) / size
}

// SortByIDDesc orders todos newest first (highest id first).
func SortByIDDesc(items []Todo) {
	sort.SliceStable(items, func(i, j int) bool { return items[i].ID > items[j].ID })
}

// IndexOf returns the position of the todo with the given id, or -1.
func IndexOf(items []Todo, id int64) int {
	for i, t := range items {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// Stats counts completed and pending todos, used by headers.
func Stats(items []Todo) (done, pending int) {
	for _, it := range items {
		if it.Completed {
			done++
		} else {
			pending++
		}
	}
	return
}

// NormalizeQuery trims a search term; an all-space term means "no search".
func NormalizeQuery(q string) string {
	return strings.TrimSpace(q)
}
