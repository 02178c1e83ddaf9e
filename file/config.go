// Package file holds the on-disk configuration and OAuth token.
package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"
)

const (
	DefaultListen      = "127.0.0.1:8090"
	DefaultDatabase    = "linearcal.db"
	DefaultRefreshCron = "@every 15m"
)

type GoogleConfig struct {
	// CredentialsFile is the OAuth client JSON downloaded from the Google
	// Cloud console.
	CredentialsFile string `yaml:"credentials_file"`
	// TokenFile holds the token written by the configure command.
	TokenFile string `yaml:"token_file"`
}

type Config struct {
	Listen   string       `yaml:"listen"`
	Database string       `yaml:"database"`
	Google   GoogleConfig `yaml:"google"`

	// TimeZone is the IANA zone remote dates are read and written in.
	TimeZone string `yaml:"timezone"`
	// HolidaysFile is an optional ICS file of public holidays.
	HolidaysFile string `yaml:"holidays_file,omitempty"`
	// RefreshCron schedules background refreshes; "off" disables them.
	RefreshCron string `yaml:"refresh"`

	Verbose bool `yaml:"verbose"`
}

func DefaultConfig() *Config {
	c := &Config{}
	c.Normalize()
	return c
}

// Normalize fills zero values with defaults.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = DefaultListen
	}
	if c.Database == "" {
		c.Database = DefaultDatabase
	}
	if c.Google.CredentialsFile == "" {
		c.Google.CredentialsFile = "credentials.json"
	}
	if c.Google.TokenFile == "" {
		c.Google.TokenFile = "token.json"
	}
	if c.TimeZone == "" {
		c.TimeZone = "UTC"
	}
	if c.RefreshCron == "" {
		c.RefreshCron = DefaultRefreshCron
	}
}

func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("config: timezone %q: %v", c.TimeZone, err)
	}
	return loc, nil
}

// Load reads the YAML config at path. On first run the defaults are
// written there and returned.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		cfg := DefaultConfig()
		return cfg, Save(path, cfg)
	}
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %v", path, err)
	}
	cfg.Normalize()
	if err := cfg.expandPaths(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// expandPaths resolves a leading "~" in every configured file path.
func (c *Config) expandPaths() error {
	for _, p := range []*string{&c.Database, &c.Google.CredentialsFile, &c.Google.TokenFile, &c.HolidaysFile} {
		expanded, err := homedir.Expand(*p)
		if err != nil {
			return fmt.Errorf("config: expanding %q: %v", *p, err)
		}
		*p = expanded
	}
	return nil
}

func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	cfg.Normalize()

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return writeFile(path, data)
}

// ReadToken returns the stored token, or fs.ErrNotExist before the first
// configure.
func ReadToken(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func WriteToken(path string, token []byte) error {
	return writeFile(path, token)
}

// writeFile replaces path atomically with a 0600 file.
func writeFile(path string, data []byte) error {
	if path == "" {
		return errors.New("path is empty")
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".linearcal-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
