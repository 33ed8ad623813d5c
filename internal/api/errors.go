package api

import (
	"errors"
	"fmt"
)

var (
	// ErrNetwork covers every transport or store failure other than cancellation.
	ErrNetwork = errors.New("network error")
	// ErrCancelled means the caller superseded the request; it is never shown to users.
	ErrCancelled = errors.New("request cancelled")
	// ErrNotFound is returned by FindUser when the lookup matched nothing.
	ErrNotFound = errors.New("not found")
)

// StatusError is a non-2xx answer from the store.
type StatusError struct {
	Method string
	Path   string
	Code   int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.Code)
}

// Unwrap makes errors.Is(err, ErrNetwork) hold for status failures.
func (e *StatusError) Unwrap() error { return ErrNetwork }

// IsCancelled reports whether err is a superseded-request failure.
func IsCancelled(err error) bool { return errors.Is(err, ErrCancelled) }
