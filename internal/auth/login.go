package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/idilsaglam/tada-remote/internal/model"
)

// ErrInvalidCredentials covers an empty lookup and any failed store call.
var ErrInvalidCredentials = errors.New("invalid credentials")

// UserFinder is the slice of the data-access client login needs.
type UserFinder interface {
	FindUser(ctx context.Context, username, password string) (model.User, error)
}

// Login exchanges credentials for a user record by filtering the users
// resource. The password is only forwarded, never retained.
func Login(ctx context.Context, f UserFinder, username, password string) (model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return model.User{}, fmt.Errorf("%w: username and password are required", ErrInvalidCredentials)
	}
	u, err := f.FindUser(ctx, username, password)
	if err != nil {
		return model.User{}, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}
	return model.User{ID: u.ID, Username: u.Username}, nil
}
