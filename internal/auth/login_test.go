package auth_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/idilsaglam/tada-remote/internal/api"
	"github.com/idilsaglam/tada-remote/internal/auth"
	"github.com/idilsaglam/tada-remote/internal/model"
)

type fakeFinder struct {
	users []model.User
	err   error
	calls int
}

func (f *fakeFinder) FindUser(ctx context.Context, username, password string) (model.User, error) {
	f.calls++
	if f.err != nil {
		return model.User{}, f.err
	}
	if len(f.users) == 0 {
		return model.User{}, api.ErrNotFound
	}
	return f.users[0], nil
}

func TestLogin_FirstMatch(t *testing.T) {
	f := &fakeFinder{users: []model.User{{ID: 1, Username: "bob"}, {ID: 9, Username: "bob"}}}

	u, err := auth.Login(context.Background(), f, "bob", "x")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if u != (model.User{ID: 1, Username: "bob"}) {
		t.Fatalf("unexpected user %+v", u)
	}
}

func TestLogin_NoMatch(t *testing.T) {
	_, err := auth.Login(context.Background(), &fakeFinder{}, "bob", "x")
	if !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLogin_StoreFailure(t *testing.T) {
	f := &fakeFinder{err: api.ErrNetwork}
	_, err := auth.Login(context.Background(), f, "bob", "x")
	if !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLogin_EmptyFieldsSkipLookup(t *testing.T) {
	f := &fakeFinder{users: []model.User{{ID: 1, Username: "bob"}}}
	for _, c := range [][2]string{{"", "x"}, {"   ", "x"}, {"bob", ""}} {
		if _, err := auth.Login(context.Background(), f, c[0], c[1]); !errors.Is(err, auth.ErrInvalidCredentials) {
			t.Fatalf("Login(%q, %q): expected ErrInvalidCredentials, got %v", c[0], c[1], err)
		}
	}
	if f.calls != 0 {
		t.Fatalf("expected no lookups, got %d", f.calls)
	}
}

// The store answers [{id:1, username:"bob", password:"x"}]; only id and
// username come back.
func TestLogin_AgainstHTTPStore(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		if q.Get("username") == "bob" && q.Get("password") == "x" {
			w.Write([]byte(`[{"id":1,"username":"bob","password":"x"}]`))
			return
		}
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()
	c := api.New(srv.URL, nil, time.Second)

	u, err := auth.Login(context.Background(), c, "bob", "x")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if u != (model.User{ID: 1, Username: "bob"}) {
		t.Fatalf("unexpected user %+v", u)
	}

	if _, err := auth.Login(context.Background(), c, "bob", "y"); !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}
