// Package mockstore is an in-memory stand-in for the remote resource store.
// It answers the same query parameters a json-server style backend does:
// equality filters, q for free text, _sort/_order and _page/_limit.
package mockstore

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/idilsaglam/tada-remote/internal/model"
)

var ErrNotFound = errors.New("not found")

const defaultLimit = 10

type userRecord struct {
	ID           int64
	Username     string
	PasswordHash []byte
}

// Store holds users and todos. Safe for concurrent handlers.
type Store struct {
	mu     sync.RWMutex
	users  []userRecord
	todos  []model.Todo
	nextID int64
}

// New builds a store from seed, hashing plain passwords with the given bcrypt
// cost (0 means bcrypt.DefaultCost).
func New(seed Seed, cost int) (*Store, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	s := &Store{}
	for _, u := range seed.Users {
		hash := []byte(u.PasswordHash)
		if len(hash) == 0 {
			h, err := bcrypt.GenerateFromPassword([]byte(u.Password), cost)
			if err != nil {
				return nil, fmt.Errorf("hash password for %q: %w", u.Username, err)
			}
			hash = h
		}
		s.users = append(s.users, userRecord{ID: u.ID, Username: u.Username, PasswordHash: hash})
	}
	for _, t := range seed.Todos {
		s.todos = append(s.todos, t)
		if t.ID > s.nextID {
			s.nextID = t.ID
		}
	}
	return s, nil
}

// UserQuery mirrors GET /users?username=&password=. Empty fields do not filter.
type UserQuery struct {
	ID       int64
	Username string
	Password string

	// HasPassword distinguishes "password=" from no password parameter.
	HasPassword bool
}

// FindUsers returns every user matching all given fields. Passwords are
// compared against the stored bcrypt hash.
func (s *Store) FindUsers(q UserQuery) []model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []model.User{}
	for _, u := range s.users {
		if q.ID != 0 && u.ID != q.ID {
			continue
		}
		if q.Username != "" && u.Username != q.Username {
			continue
		}
		if q.HasPassword && bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(q.Password)) != nil {
			continue
		}
		out = append(out, model.User{ID: u.ID, Username: u.Username})
	}
	return out
}

// TodoQuery mirrors GET /todos query parameters.
type TodoQuery struct {
	UserID    int64
	Completed *bool
	Text      string
	Sort      string
	Desc      bool
	Page      int // 0 means unpaginated
	Limit     int
}

// ListTodos filters, sorts and paginates. total counts matches before paging.
func (s *Store) ListTodos(q TodoQuery) (items []model.Todo, total int) {
	s.mu.RLock()
	matched := make([]model.Todo, 0, len(s.todos))
	needle := strings.ToLower(strings.TrimSpace(q.Text))
	for _, t := range s.todos {
		if q.UserID != 0 && t.UserID != q.UserID {
			continue
		}
		if q.Completed != nil && t.Completed != *q.Completed {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(t.Title), needle) {
			continue
		}
		matched = append(matched, t)
	}
	s.mu.RUnlock()

	sortTodos(matched, q.Sort, q.Desc)
	total = len(matched)
	if q.Page < 1 {
		return matched, total
	}

	limit := q.Limit
	if limit < 1 {
		limit = defaultLimit
	}
	start := (q.Page - 1) * limit
	if start >= total {
		return []model.Todo{}, total
	}
	end := start + limit
	if end > total {
		end = total
	}
	return matched[start:end], total
}

func sortTodos(items []model.Todo, field string, desc bool) {
	var less func(a, b model.Todo) bool
	switch field {
	case "title":
		less = func(a, b model.Todo) bool { return a.Title < b.Title }
	case "completed":
		less = func(a, b model.Todo) bool { return !a.Completed && b.Completed }
	case "userId":
		less = func(a, b model.Todo) bool { return a.UserID < b.UserID }
	case "id", "":
		less = func(a, b model.Todo) bool { return a.ID < b.ID }
	default:
		return
	}
	sort.SliceStable(items, func(i, j int) bool {
		if desc {
			return less(items[j], items[i])
		}
		return less(items[i], items[j])
	})
}

func (s *Store) GetTodo(id int64) (model.Todo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := model.IndexOf(s.todos, id); i >= 0 {
		return s.todos[i], nil
	}
	return model.Todo{}, ErrNotFound
}

// CreateTodo assigns the next id.
func (s *Store) CreateTodo(d model.Draft) model.Todo {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	t := model.Todo{ID: s.nextID, Title: d.Title, Completed: d.Completed, UserID: d.UserID}
	s.todos = append(s.todos, t)
	return t
}

// ReplaceTodo overwrites the record with t.ID.
func (s *Store) ReplaceTodo(t model.Todo) (model.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := model.IndexOf(s.todos, t.ID)
	if i < 0 {
		return model.Todo{}, ErrNotFound
	}
	s.todos[i] = t
	return t, nil
}

func (s *Store) DeleteTodo(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := model.IndexOf(s.todos, id)
	if i < 0 {
		return ErrNotFound
	}
	s.todos = append(s.todos[:i], s.todos[i+1:]...)
	return nil
}
