package config

import (
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"time"
)

const (
	defaultServerURL = "http://127.0.0.1:8000"
	defaultTimeout   = 10 * time.Second
	sessionDirName   = ".authkeeper"
	sessionFileName  = "session.json"
)

// Config holds runtime settings for authctl.
type Config struct {
	ServerURL   string
	SessionFile string
	Timeout     time.Duration
}

// LoadDefaults populates c with sensible defaults. The session file lives
// under the user's home directory, or under the working directory when the
// home directory cannot be resolved.
func (c *Config) LoadDefaults() {
	c.ServerURL = defaultServerURL
	c.SessionFile = DefaultSessionFile()
	c.Timeout = defaultTimeout
}

// DefaultSessionFile returns the path used when no session file is configured.
func DefaultSessionFile() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(sessionDirName, sessionFileName)
	}
	return filepath.Join(home, sessionDirName, sessionFileName)
}

// Load applies defaults and then overlays the JSON file at path, if any.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if path == "" {
		return cfg, nil
	}
	if err := parseJson(cfg, path); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the client cannot work with.
func (c *Config) Validate() error {
	u, err := url.Parse(c.ServerURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.New("server url must be absolute, e.g. http://127.0.0.1:8000")
	}
	if c.SessionFile == "" {
		return errors.New("session file path is required")
	}
	if c.Timeout <= 0 {
		return errors.New("timeout must be positive")
	}
	return nil
}
