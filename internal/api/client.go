package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/idilsaglam/tada-remote/internal/model"
)

const (
	pathUsers = "/users"
	pathTodos = "/todos"

	maxBody = 4 << 20
)

// Client talks to the remote resource store for the users and todos resources.
type Client struct {
	baseURL string
	hc      *http.Client
}

// New returns a Client for baseURL. A nil hc gets a client with the given timeout.
func New(baseURL string, hc *http.Client, timeout time.Duration) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		hc:      hc,
	}
}

// BaseURL returns the store root the client was built with.
func (c *Client) BaseURL() string { return c.baseURL }

// ListTodos fetches one page. Cancelling ctx yields ErrCancelled.
func (c *Client) ListTodos(ctx context.Context, f model.Filter) (model.Page, error) {
	q := url.Values{}
	q.Set("userId", strconv.FormatInt(f.UserID, 10))
	if f.Page > 0 {
		q.Set("_page", strconv.Itoa(f.Page))
	}
	if f.Limit > 0 {
		q.Set("_limit", strconv.Itoa(f.Limit))
	}
	if f.Sort != "" {
		q.Set("_sort", f.Sort)
	}
	if f.Order != "" {
		q.Set("_order", f.Order)
	}
	if term := model.NormalizeQuery(f.Query); term != "" {
		q.Set("q", term)
	}

	b, err := c.do(ctx, http.MethodGet, pathTodos, q, nil)
	if err != nil {
		return model.Page{}, err
	}
	p, err := decodePage(b)
	if err != nil {
		return model.Page{}, fmt.Errorf("%w: list todos: %v", ErrNetwork, err)
	}
	return p, nil
}

// CreateTodo posts a draft and returns the stored record with its assigned id.
func (c *Client) CreateTodo(ctx context.Context, d model.Draft) (model.Todo, error) {
	b, err := c.do(ctx, http.MethodPost, pathTodos, nil, d)
	if err != nil {
		return model.Todo{}, err
	}
	var out model.Todo
	if err := json.Unmarshal(b, &out); err != nil {
		return model.Todo{}, fmt.Errorf("%w: create todo: %v", ErrNetwork, err)
	}
	return out, nil
}

// GetTodo fetches a single record.
func (c *Client) GetTodo(ctx context.Context, id int64) (model.Todo, error) {
	b, err := c.do(ctx, http.MethodGet, todoPath(id), nil, nil)
	if err != nil {
		return model.Todo{}, err
	}
	var out model.Todo
	if err := json.Unmarshal(b, &out); err != nil {
		return model.Todo{}, fmt.Errorf("%w: get todo: %v", ErrNetwork, err)
	}
	return out, nil
}

// UpdateTodo replaces the full record at /todos/{id}.
func (c *Client) UpdateTodo(ctx context.Context, t model.Todo) (model.Todo, error) {
	b, err := c.do(ctx, http.MethodPut, todoPath(t.ID), nil, t)
	if err != nil {
		return model.Todo{}, err
	}
	var out model.Todo
	if len(bytes.TrimSpace(b)) == 0 {
		return t, nil
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return model.Todo{}, fmt.Errorf("%w: update todo: %v", ErrNetwork, err)
	}
	return out, nil
}

// DeleteTodo removes /todos/{id}; any 2xx is success.
func (c *Client) DeleteTodo(ctx context.Context, id int64) error {
	_, err := c.do(ctx, http.MethodDelete, todoPath(id), nil, nil)
	return err
}

// FindUser returns the first user matching both fields, or ErrNotFound.
func (c *Client) FindUser(ctx context.Context, username, password string) (model.User, error) {
	q := url.Values{}
	q.Set("username", username)
	q.Set("password", password)
	b, err := c.do(ctx, http.MethodGet, pathUsers, q, nil)
	if err != nil {
		return model.User{}, err
	}
	var users []model.User
	if err := json.Unmarshal(b, &users); err != nil {
		// Anything but a list is treated as "no match".
		return model.User{}, fmt.Errorf("%w: users lookup: %v", ErrNotFound, err)
	}
	if len(users) == 0 {
		return model.User{}, ErrNotFound
	}
	return model.User{ID: users[0].ID, Username: users[0].Username}, nil
}

func todoPath(id int64) string {
	return pathTodos + "/" + strconv.FormatInt(id, 10)
}

func (c *Client) do(ctx context.Context, method, path string, q url.Values, body any) ([]byte, error) {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal: %w", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, rdr)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrNetwork, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.hc.Do(req)
	if err != nil {
		return nil, classify(ctx, method, path, err)
	}
	defer res.Body.Close()

	b, err := io.ReadAll(io.LimitReader(res.Body, maxBody))
	if err != nil {
		return nil, classify(ctx, method, path, err)
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, &StatusError{Method: method, Path: path, Code: res.StatusCode}
	}
	return b, nil
}

// classify maps a transport failure to ErrCancelled when the caller's context
// was cancelled, and to ErrNetwork otherwise (timeouts included).
func classify(ctx context.Context, method, path string, err error) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		return fmt.Errorf("%w: %s %s", ErrCancelled, method, path)
	}
	return fmt.Errorf("%w: %s %s: %v", ErrNetwork, method, path, err)
}
