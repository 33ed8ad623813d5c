package mockstore

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/idilsaglam/tada-remote/internal/model"
)

// Seed is the on-disk fixture format, close to a json-server db.json.
type Seed struct {
	Users []SeedUser   `json:"users"`
	Todos []model.Todo `json:"todos"`
}

// SeedUser carries either a plain Password (hashed on load) or a
// precomputed bcrypt PasswordHash.
type SeedUser struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	Password     string `json:"password,omitempty"`
	PasswordHash string `json:"passwordHash,omitempty"`
}

func LoadSeed(path string) (Seed, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Seed{}, fmt.Errorf("read seed: %w", err)
	}
	var s Seed
	if err := json.Unmarshal(b, &s); err != nil {
		return Seed{}, fmt.Errorf("parse seed: %w", err)
	}
	return s, nil
}

// DemoSeed is used when no seed file is configured.
func DemoSeed() Seed {
	s := Seed{
		Users: []SeedUser{
			{ID: 1, Username: "bob", Password: "x"},
			{ID: 2, Username: "alice", Password: "wonderland"},
		},
	}
	titles := []string{
		"Buy milk", "Walk the dog", "Call mom", "Pay rent", "Fix bike",
		"Read a book", "Water plants", "Book dentist", "Clean kitchen",
		"Buy oat milk", "Reply to emails", "Plan weekend",
	}
	for i, title := range titles {
		s.Todos = append(s.Todos, model.Todo{
			ID:        int64(i + 1),
			Title:     title,
			Completed: i%3 == 0,
			UserID:    1,
		})
	}
	s.Todos = append(s.Todos, model.Todo{ID: int64(len(titles) + 1), Title: "Feed the cat", UserID: 2})
	return s
}
