// Package config loads the portal's settings. Precedence, lowest first:
// built-in defaults, the YAML file, LOSTFOUND_* environment variables
// (optionally seeded from a .env file), command-line flags.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the portal configuration.
type Config struct {
	Addr    string `yaml:"addr"`
	DBPath  string `yaml:"db"`
	LogPath string `yaml:"log"`

	Backend struct {
		URL     string        `yaml:"url"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"backend"`

	Session struct {
		Lifetime     time.Duration `yaml:"lifetime"`
		SecureCookie bool          `yaml:"secure_cookie"`
	} `yaml:"session"`

	Chat struct {
		PollInterval time.Duration `yaml:"poll_interval"`
	} `yaml:"chat"`
}

// Default returns the built-in configuration.
func Default() *Config {
	c := &Config{
		Addr:   ":8080",
		DBPath: "lostfound.sqlite3",
	}
	c.Backend.URL = "http://localhost:8000/api"
	c.Backend.Timeout = 15 * time.Second
	c.Session.Lifetime = 7 * 24 * time.Hour
	c.Chat.PollInterval = 10 * time.Second
	return c
}

// Load returns the defaults overlaid with the YAML file at path. An empty
// path skips the file.
func Load(path string) (*Config, error) {
	c := Default()
	if path == "" {
		return c, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(c); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}
	return c, nil
}

// LoadDotEnv loads variables from a .env file into the process environment
// without overriding variables that are already set. A missing file is not
// an error.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overlays LOSTFOUND_* variables found through lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	dur := func(key string, dst *time.Duration) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = d
		return nil
	}

	str("LOSTFOUND_ADDR", &c.Addr)
	str("LOSTFOUND_DB", &c.DBPath)
	str("LOSTFOUND_LOG", &c.LogPath)
	str("LOSTFOUND_BACKEND_URL", &c.Backend.URL)
	if err := dur("LOSTFOUND_BACKEND_TIMEOUT", &c.Backend.Timeout); err != nil {
		return err
	}
	if err := dur("LOSTFOUND_SESSION_LIFETIME", &c.Session.Lifetime); err != nil {
		return err
	}
	if err := dur("LOSTFOUND_CHAT_POLL_INTERVAL", &c.Chat.PollInterval); err != nil {
		return err
	}
	if v, ok := lookup("LOSTFOUND_SECURE_COOKIE"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("LOSTFOUND_SECURE_COOKIE: %w", err)
		}
		c.Session.SecureCookie = b
	}
	return nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return errors.New("listen address must not be empty")
	}
	if c.DBPath == "" {
		return errors.New("database path must not be empty")
	}
	u, err := url.Parse(c.Backend.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("backend url %q must be an absolute http(s) URL", c.Backend.URL)
	}
	if c.Backend.Timeout <= 0 {
		return errors.New("backend timeout must be positive")
	}
	if c.Session.Lifetime < time.Minute {
		return errors.New("session lifetime must be at least a minute")
	}
	if c.Chat.PollInterval < 0 {
		return errors.New("chat poll interval must not be negative")
	}
	return nil
}
