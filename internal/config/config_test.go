package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	q := s.Qobuz()
	if q.RequestsPerMinute != 60 {
		t.Fatalf("RequestsPerMinute = %d, want 60", q.RequestsPerMinute)
	}
	if q.Quality != 3 {
		t.Fatalf("Quality = %d, want 3", q.Quality)
	}
	if s.Modified() {
		t.Fatalf("Modified() = true for freshly loaded store")
	}
}

func TestSetAppIdentityRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "qbz", "config.toml")
	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	s.SetAppIdentity("123456789", []string{"alpha", "beta"})
	if !s.Modified() {
		t.Fatalf("Modified() = false after SetAppIdentity")
	}
	if err := s.SaveIfModified(); err != nil {
		t.Fatalf("SaveIfModified() error = %v", err)
	}
	if s.Modified() {
		t.Fatalf("Modified() = true after save")
	}

	reloaded, err := Load(path)
	if err != nil {
		t.Fatalf("reload error = %v", err)
	}
	q := reloaded.Qobuz()
	if q.AppID != "123456789" {
		t.Fatalf("AppID = %q, want 123456789", q.AppID)
	}
	if len(q.Secrets) != 2 || q.Secrets[0] != "alpha" || q.Secrets[1] != "beta" {
		t.Fatalf("Secrets = %q", q.Secrets)
	}
}

func TestSetCredentialsIsRuntimeOnly(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	s.SetCredentials("user@example.com", "hunter2", false)
	if s.Modified() {
		t.Fatalf("Modified() = true after credentials overlay")
	}
	if err := s.SaveIfModified(); err != nil {
		t.Fatalf("SaveIfModified() error = %v", err)
	}
	if _, err := os.Stat(s.Path()); !os.IsNotExist(err) {
		t.Fatalf("SaveIfModified wrote a file for an unmodified store")
	}
}

func TestLoadParsesExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	raw := []byte(`[qobuz]
email_or_userid = "user@example.com"
password_or_token = "tok"
use_auth_token = true
app_id = "999888777"
secrets = ["s1"]
requests_per_minute = 120
quality = 4
`)
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	q := s.Qobuz()
	if !q.UseAuthToken || q.EmailOrUserID != "user@example.com" || q.PasswordOrToken != "tok" {
		t.Fatalf("credentials = %+v", q)
	}
	if q.AppID != "999888777" || q.RequestsPerMinute != 120 || q.Quality != 4 {
		t.Fatalf("identity/limits = %+v", q)
	}
}
