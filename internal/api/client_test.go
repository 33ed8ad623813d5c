package api_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/idilsaglam/tada-remote/internal/api"
	"github.com/idilsaglam/tada-remote/internal/mockstore"
	"github.com/idilsaglam/tada-remote/internal/model"
)

func newTestClient(t *testing.T) *api.Client {
	t.Helper()
	store, err := mockstore.New(mockstore.DemoSeed(), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("mockstore.New: %v", err)
	}
	srv := httptest.NewServer(mockstore.NewRouter(store))
	t.Cleanup(srv.Close)
	return api.New(srv.URL, nil, 5*time.Second)
}

func TestFindUser(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	u, err := c.FindUser(ctx, "bob", "x")
	if err != nil {
		t.Fatalf("FindUser: %v", err)
	}
	if u != (model.User{ID: 1, Username: "bob"}) {
		t.Fatalf("unexpected user %+v", u)
	}

	_, err = c.FindUser(ctx, "bob", "wrong")
	if !errors.Is(err, api.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListTodos_Paginated(t *testing.T) {
	c := newTestClient(t)

	p, err := c.ListTodos(context.Background(), model.Filter{UserID: 1, Page: 2, Limit: 5, Sort: "id", Order: "desc"})
	if err != nil {
		t.Fatalf("ListTodos: %v", err)
	}
	if p.TotalCount != 12 {
		t.Fatalf("TotalCount = %d, want 12", p.TotalCount)
	}
	if len(p.Items) != 5 || p.Items[0].ID != 7 {
		t.Fatalf("unexpected page 2: %+v", p.Items)
	}
}

func TestListTodos_SearchForwardsQuery(t *testing.T) {
	c := newTestClient(t)

	p, err := c.ListTodos(context.Background(), model.Filter{UserID: 1, Page: 1, Limit: 5, Query: "  milk "})
	if err != nil {
		t.Fatalf("ListTodos: %v", err)
	}
	if p.TotalCount != 2 {
		t.Fatalf("TotalCount = %d, want 2", p.TotalCount)
	}
}

func TestCreateUpdateDelete(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	created, err := c.CreateTodo(ctx, model.Draft{Title: "Write tests", UserID: 1})
	if err != nil {
		t.Fatalf("CreateTodo: %v", err)
	}
	if created.ID == 0 || created.Title != "Write tests" || created.Completed {
		t.Fatalf("unexpected created record %+v", created)
	}

	got, err := c.GetTodo(ctx, created.ID)
	if err != nil || got != created {
		t.Fatalf("GetTodo = %+v, %v; want %+v", got, err, created)
	}

	created.Completed = true
	updated, err := c.UpdateTodo(ctx, created)
	if err != nil {
		t.Fatalf("UpdateTodo: %v", err)
	}
	if !updated.Completed {
		t.Fatal("expected completed after update")
	}

	if err := c.DeleteTodo(ctx, created.ID); err != nil {
		t.Fatalf("DeleteTodo: %v", err)
	}
	err = c.DeleteTodo(ctx, created.ID)
	if !errors.Is(err, api.ErrNetwork) {
		t.Fatalf("expected ErrNetwork on second delete, got %v", err)
	}
	var se *api.StatusError
	if !errors.As(err, &se) || se.Code != http.StatusNotFound {
		t.Fatalf("expected 404 StatusError, got %v", err)
	}
}

func TestListTodos_CancelledContext(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	c := api.New(srv.URL, nil, 5*time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := c.ListTodos(ctx, model.Filter{UserID: 1})
		done <- err
	}()
	cancel()

	err := <-done
	if !api.IsCancelled(err) {
		t.Fatalf("expected ErrCancelled, got %v", err)
	}
	if errors.Is(err, api.ErrNetwork) {
		t.Fatal("cancellation must not be reported as a network error")
	}
}

func TestServerError_IsNetwork(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := api.New(srv.URL, nil, time.Second)
	_, err := c.CreateTodo(context.Background(), model.Draft{Title: "x"})
	if !errors.Is(err, api.ErrNetwork) {
		t.Fatalf("expected ErrNetwork, got %v", err)
	}
}

func TestListTodos_UnexpectedShapeIsEmptyPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`null`))
	}))
	defer srv.Close()

	c := api.New(srv.URL, nil, time.Second)
	p, err := c.ListTodos(context.Background(), model.Filter{UserID: 1, Page: 1, Limit: 5})
	if err != nil {
		t.Fatalf("ListTodos: %v", err)
	}
	if len(p.Items) != 0 || p.TotalCount != 0 || p.Items == nil {
		t.Fatalf("page = %+v, want empty", p)
	}
}

func TestRequestHeaders(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := api.New(srv.URL+"/", nil, time.Second)
	if _, err := c.ListTodos(context.Background(), model.Filter{UserID: 1}); err != nil {
		t.Fatalf("ListTodos: %v", err)
	}
	if got.Get("X-Request-ID") == "" {
		t.Fatal("expected X-Request-ID header")
	}
	if got.Get("Accept") != "application/json" {
		t.Fatalf("Accept = %q", got.Get("Accept"))
	}
}
