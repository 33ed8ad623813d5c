package mockstore

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/idilsaglam/tada-remote/internal/model"
)

// NewRouter exposes s over the /users and /todos resources.
func NewRouter(s *Store) *mux.Router {
	r := mux.NewRouter()
	r.Use(logRequests)
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)
	r.HandleFunc("/users", s.handleListUsers).Methods(http.MethodGet)
	r.HandleFunc("/todos", s.handleListTodos).Methods(http.MethodGet)
	r.HandleFunc("/todos", s.handleCreateTodo).Methods(http.MethodPost)
	r.HandleFunc("/todos/{id:[0-9]+}", s.handleGetTodo).Methods(http.MethodGet)
	r.HandleFunc("/todos/{id:[0-9]+}", s.handleReplaceTodo).Methods(http.MethodPut)
	r.HandleFunc("/todos/{id:[0-9]+}", s.handleDeleteTodo).Methods(http.MethodDelete)
	return r
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s rid=%s %s", r.Method, r.URL.RequestURI(), r.Header.Get("X-Request-ID"), time.Since(start))
	})
}

func (s *Store) handleListUsers(w http.ResponseWriter, r *http.Request) {
	v := r.URL.Query()
	q := UserQuery{Username: v.Get("username")}
	if id := v.Get("id"); id != "" {
		n, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "id must be a number")
			return
		}
		q.ID = n
	}
	if _, ok := v["password"]; ok {
		q.Password, q.HasPassword = v.Get("password"), true
	}
	writeJSON(w, http.StatusOK, s.FindUsers(q))
}

func (s *Store) handleListTodos(w http.ResponseWriter, r *http.Request) {
	v := r.URL.Query()
	q := TodoQuery{
		Text: v.Get("q"),
		Sort: v.Get("_sort"),
		Desc: strings.EqualFold(v.Get("_order"), "desc"),
	}
	var err error
	if q.UserID, err = int64Param(v.Get("userId")); err != nil {
		writeError(w, http.StatusBadRequest, "userId must be a number")
		return
	}
	if c := v.Get("completed"); c != "" {
		b, err := strconv.ParseBool(c)
		if err != nil {
			writeError(w, http.StatusBadRequest, "completed must be true or false")
			return
		}
		q.Completed = &b
	}
	if q.Page, err = intParam(v.Get("_page")); err != nil {
		writeError(w, http.StatusBadRequest, "_page must be a number")
		return
	}
	if q.Limit, err = intParam(v.Get("_limit")); err != nil {
		writeError(w, http.StatusBadRequest, "_limit must be a number")
		return
	}

	items, total := s.ListTodos(q)
	if q.Page < 1 {
		writeJSON(w, http.StatusOK, items)
		return
	}
	w.Header().Set("X-Total-Count", strconv.Itoa(total))
	writeJSON(w, http.StatusOK, map[string]any{"todos": items, "total": total})
}

func (s *Store) handleGetTodo(w http.ResponseWriter, r *http.Request) {
	id, _ := int64Param(mux.Vars(r)["id"])
	t, err := s.GetTodo(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "todo not found")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Store) handleCreateTodo(w http.ResponseWriter, r *http.Request) {
	var d model.Draft
	if err := readJSON(r, &d); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	writeJSON(w, http.StatusCreated, s.CreateTodo(d))
}

func (s *Store) handleReplaceTodo(w http.ResponseWriter, r *http.Request) {
	id, _ := int64Param(mux.Vars(r)["id"])
	var t model.Todo
	if err := readJSON(r, &t); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	t.ID = id
	out, err := s.ReplaceTodo(t)
	if errors.Is(err, ErrNotFound) {
		writeError(w, http.StatusNotFound, "todo not found")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Store) handleDeleteTodo(w http.ResponseWriter, r *http.Request) {
	id, _ := int64Param(mux.Vars(r)["id"])
	if err := s.DeleteTodo(id); errors.Is(err, ErrNotFound) {
		writeError(w, http.StatusNotFound, "todo not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{})
}

func int64Param(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseInt(s, 10, 64)
}

func intParam(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("write JSON response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func readJSON(r *http.Request, dst any) error {
	return json.NewDecoder(r.Body).Decode(dst)
}
