package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

const defaultConfigPath = "~/.config/qbz/config.toml"

// Qobuz is the vendor section of the config file. AppID and Secrets are
// filled by discovery and written back; credentials are user supplied.
type Qobuz struct {
	EmailOrUserID     string   `toml:"email_or_userid"`
	PasswordOrToken   string   `toml:"password_or_token"`
	UseAuthToken      bool     `toml:"use_auth_token"`
	AppID             string   `toml:"app_id"`
	Secrets           []string `toml:"secrets"`
	RequestsPerMinute int      `toml:"requests_per_minute"`
	Quality           int      `toml:"quality"`
}

type fileSchema struct {
	Qobuz Qobuz `toml:"qobuz"`
}

// Store holds the parsed config plus a modified flag so the owning process
// knows when discovery results need flushing back to disk.
type Store struct {
	path     string
	file     fileSchema
	modified bool
}

// Load parses the config at path, falling back to defaults when the file is
// missing. An empty path resolves to the default location.
func Load(path string) (*Store, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return nil, err
	}

	s := &Store{path: resolved}
	s.file.Qobuz.RequestsPerMinute = 60
	s.file.Qobuz.Quality = 3

	raw, err := os.ReadFile(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("open config: %w", err)
	}
	if err := toml.Unmarshal(raw, &s.file); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if s.file.Qobuz.RequestsPerMinute <= 0 {
		s.file.Qobuz.RequestsPerMinute = 60
	}
	return s, nil
}

// Qobuz returns the vendor section.
func (s *Store) Qobuz() Qobuz {
	return s.file.Qobuz
}

// SetCredentials overrides the stored credentials without marking the file
// modified; env overlays are runtime-only.
func (s *Store) SetCredentials(emailOrUserID, passwordOrToken string, useAuthToken bool) {
	s.file.Qobuz.EmailOrUserID = emailOrUserID
	s.file.Qobuz.PasswordOrToken = passwordOrToken
	s.file.Qobuz.UseAuthToken = useAuthToken
}

// SetAppIdentity records a discovered app id and secret set and marks the
// store modified.
func (s *Store) SetAppIdentity(appID string, secrets []string) {
	s.file.Qobuz.AppID = appID
	s.file.Qobuz.Secrets = append([]string(nil), secrets...)
	s.modified = true
}

// SetModified marks the store as needing a flush.
func (s *Store) SetModified() { s.modified = true }

// Modified reports whether the store has unflushed changes.
func (s *Store) Modified() bool { return s.modified }

// Path returns the resolved config file location.
func (s *Store) Path() string { return s.path }

// Save writes the config back to disk and clears the modified flag.
func (s *Store) Save() error {
	raw, err := toml.Marshal(s.file)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(s.path, raw, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	s.modified = false
	return nil
}

// SaveIfModified flushes the store only when it carries unsaved changes.
func (s *Store) SaveIfModified() error {
	if !s.modified {
		return nil
	}
	return s.Save()
}

func resolvePath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		trimmed = defaultConfigPath
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
