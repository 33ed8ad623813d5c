// Package app holds the process-wide authenticated-user state. It is created
// once at startup and handed to the views that need it.
package app

import (
	"context"
	"fmt"
	"log"

	"github.com/idilsaglam/tada-remote/internal/auth"
	"github.com/idilsaglam/tada-remote/internal/model"
	"github.com/idilsaglam/tada-remote/internal/store/sessionstore"
)

type State struct {
	session *sessionstore.Session
	finder  auth.UserFinder
	user    *model.User
}

func New(session *sessionstore.Session, finder auth.UserFinder) *State {
	return &State{session: session, finder: finder}
}

// Init restores the user from the session store. A corrupt session is
// cleared by the store and Init starts logged out.
func (s *State) Init() (model.User, bool) {
	u, ok := s.session.Load()
	if !ok {
		s.user = nil
		return model.User{}, false
	}
	s.user = &u
	log.Printf("session restored for user %d", u.ID)
	return u, true
}

// User returns the authenticated user, if any.
func (s *State) User() (model.User, bool) {
	if s.user == nil {
		return model.User{}, false
	}
	return *s.user, true
}

// Login authenticates and then signs in.
func (s *State) Login(ctx context.Context, username, password string) (model.User, error) {
	u, err := auth.Login(ctx, s.finder, username, password)
	if err != nil {
		return model.User{}, err
	}
	if err := s.SignIn(u); err != nil {
		return model.User{}, err
	}
	return u, nil
}

// SignIn persists u and makes it the current user.
func (s *State) SignIn(u model.User) error {
	if err := s.session.Save(u); err != nil {
		return fmt.Errorf("sign in: %w", err)
	}
	s.user = &u
	return nil
}

// Logout clears both the session store and the in-memory user.
func (s *State) Logout() error {
	s.user = nil
	if err := s.session.Clear(); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// Finder exposes the lookup used by Login, for views that authenticate
// off the main loop.
func (s *State) Finder() auth.UserFinder { return s.finder }
