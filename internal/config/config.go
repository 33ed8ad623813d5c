package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Duration parses env as time.Duration: "10s", "500ms" or a bare number of seconds.
type Duration time.Duration

// SetValue implements cleanenv.Setter.
func (d *Duration) SetValue(data string) error {
	v, err := parseDuration(data)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

func (d Duration) Duration() time.Duration { return time.Duration(d) }

func parseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && ((s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'')) {
		s = s[1 : len(s)-1]
	}
	if s == "" {
		return 0, fmt.Errorf("empty duration")
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("duration must be like 10s, 500ms or a number of seconds: %w", err)
	}
	return d, nil
}

// Config is the client configuration.
type Config struct {
	API     APIConfig
	List    ListConfig
	Session SessionConfig
	LogFile string `env:"TODO_LOG_FILE" env-default:""`
	Theme   string `env:"TODO_THEME" env-default:"classic"`
}

type APIConfig struct {
	BaseURL string   `env:"TODO_API_URL" env-default:"http://localhost:3000"`
	Timeout Duration `env:"TODO_HTTP_TIMEOUT" env-default:"10s"`
}

type ListConfig struct {
	PageSize int      `env:"TODO_PAGE_SIZE" env-default:"5"`
	Debounce Duration `env:"TODO_DEBOUNCE" env-default:"500ms"`
}

type SessionConfig struct {
	// File defaults to <user config dir>/tada/session.json when empty.
	File string `env:"TODO_SESSION_FILE" env-default:""`
}

// MockConfig configures cmd/todo-mockserver.
type MockConfig struct {
	Addr     string `env:"MOCK_ADDR" env-default:":3000"`
	SeedFile string `env:"MOCK_SEED_FILE" env-default:""`
}

func Load() (Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("read env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	if cfg.Session.File == "" {
		p, err := defaultSessionFile()
		if err != nil {
			return Config{}, err
		}
		cfg.Session.File = p
	}
	return cfg, nil
}

func LoadMock() (MockConfig, error) {
	var cfg MockConfig
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return MockConfig{}, fmt.Errorf("read env: %w", err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	c.API.BaseURL = strings.TrimRight(strings.TrimSpace(c.API.BaseURL), "/")
	u, err := url.Parse(c.API.BaseURL)
	if err != nil {
		return fmt.Errorf("TODO_API_URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("TODO_API_URL: scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("TODO_API_URL: missing host")
	}
	if c.List.PageSize < 1 {
		return fmt.Errorf("TODO_PAGE_SIZE must be >= 1, got %d", c.List.PageSize)
	}
	if c.List.Debounce.Duration() <= 0 {
		return fmt.Errorf("TODO_DEBOUNCE must be positive, got %s", c.List.Debounce.Duration())
	}
	return nil
}

func defaultSessionFile() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		home, herr := os.UserHomeDir()
		if herr != nil {
			return "", fmt.Errorf("config dir: %w", err)
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "tada", "session.json"), nil
}
