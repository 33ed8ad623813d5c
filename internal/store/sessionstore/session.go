package sessionstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/idilsaglam/tada-remote/internal/model"
)

// Key is the single slot holding the logged-in user.
const Key = "sessionUser"

// ErrMalformedSession is logged when a stored session cannot be parsed.
// FileKV also wraps it when the whole file is not a JSON object.
// Load never returns it; the slot is cleared instead.
var ErrMalformedSession = errors.New("malformed session")

// Session persists one user record. Presence of the key means a previous
// login succeeded.
type Session struct {
	kv KV
}

func New(kv KV) *Session { return &Session{kv: kv} }

func (s *Session) Save(u model.User) error {
	b, err := json.Marshal(model.User{ID: u.ID, Username: u.Username})
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if err := s.kv.Set(Key, b); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Load returns the stored user. Missing, unreadable or malformed content is
// reported as absent; malformed content is also removed.
func (s *Session) Load() (model.User, bool) {
	b, ok, err := s.kv.Get(Key)
	if errors.Is(err, ErrMalformedSession) {
		log.Printf("session: %v; clearing", err)
		if err := s.Clear(); err != nil {
			log.Printf("session: clear: %v", err)
		}
		return model.User{}, false
	}
	if err != nil {
		log.Printf("session: read: %v", err)
		return model.User{}, false
	}
	if !ok {
		return model.User{}, false
	}
	u, err := parse(b)
	if err != nil {
		log.Printf("session: %v; clearing", err)
		if err := s.Clear(); err != nil {
			log.Printf("session: clear: %v", err)
		}
		return model.User{}, false
	}
	return u, true
}

func (s *Session) Clear() error {
	if err := s.kv.Delete(Key); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func parse(b []byte) (model.User, error) {
	var u model.User
	if err := json.Unmarshal(b, &u); err != nil {
		return model.User{}, fmt.Errorf("%w: %v", ErrMalformedSession, err)
	}
	if u.ID == 0 {
		return model.User{}, fmt.Errorf("%w: missing id", ErrMalformedSession)
	}
	return u, nil
}
