package file

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mitchellh/go-homedir"
)

func TestLoadWritesDefaultsOnFirstRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "linearcal.yaml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Listen != DefaultListen || cfg.RefreshCron != DefaultRefreshCron || cfg.TimeZone != "UTC" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("expected the config to be written: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("expected 0600, got %v", info.Mode().Perm())
	}
}

func TestLoadNormalizesPartialConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "linearcal.yaml")
	data := "listen: \":9090\"\ngoogle:\n  token_file: /tmp/tok.json\nverbose: true\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Listen != ":9090" || !cfg.Verbose || cfg.Google.TokenFile != "/tmp/tok.json" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.Database != DefaultDatabase || cfg.Google.CredentialsFile != "credentials.json" {
		t.Fatalf("expected defaults for missing fields: %+v", cfg)
	}
}

func TestLoadRejectsInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "linearcal.yaml")
	if err := os.WriteFile(path, []byte("listen: [unterminated"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected a parse error")
	}
}

func TestLocation(t *testing.T) {
	cfg := Config{TimeZone: "UTC"}
	loc, err := cfg.Location()
	if err != nil {
		t.Fatalf("location: %v", err)
	}
	if loc != time.UTC {
		t.Fatalf("unexpected location %s", loc)
	}
	if _, err := (Config{TimeZone: "Mars/Olympus"}).Location(); err == nil {
		t.Fatalf("expected an unknown zone error")
	}
}

func TestToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	if _, err := ReadToken(path); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected fs.ErrNotExist, got %v", err)
	}
	if err := WriteToken(path, []byte(`{"access_token":"x"}`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := ReadToken(path)
	if err != nil || string(got) != `{"access_token":"x"}` {
		t.Fatalf("unexpected token %q: %v", got, err)
	}
}

func TestLoadExpandsHomeInPaths(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	homedir.DisableCache = true
	t.Cleanup(func() { homedir.DisableCache = false })

	path := filepath.Join(t.TempDir(), "linearcal.yaml")
	data := "database: ~/linearcal.db\ngoogle:\n  token_file: ~/.config/linearcal/token.json\nholidays_file: /etc/holidays.ics\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Database != filepath.Join(home, "linearcal.db") {
		t.Fatalf("unexpected database path %q", cfg.Database)
	}
	if cfg.Google.TokenFile != filepath.Join(home, ".config/linearcal/token.json") {
		t.Fatalf("unexpected token path %q", cfg.Google.TokenFile)
	}
	if cfg.HolidaysFile != "/etc/holidays.ics" || cfg.Google.CredentialsFile != "credentials.json" {
		t.Fatalf("expected other paths untouched: %+v", cfg)
	}
}
