package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "lostfound.yaml", `
addr: ":9090"
backend:
  url: "https://lostfound.example.edu/api"
  timeout: 5s
session:
  lifetime: 24h
  secure_cookie: true
`)

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Addr != ":9090" || c.Backend.URL != "https://lostfound.example.edu/api" {
		t.Errorf("unexpected config: %+v", c)
	}
	if c.Backend.Timeout != 5*time.Second || c.Session.Lifetime != 24*time.Hour || !c.Session.SecureCookie {
		t.Errorf("unexpected durations/flags: %+v", c)
	}
	// Unset keys keep their defaults.
	if c.DBPath != "lostfound.sqlite3" || c.Chat.PollInterval != 10*time.Second {
		t.Errorf("defaults lost: %+v", c)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeFile(t, "bad.yaml", "adress: \":9090\"\n")
	if _, err := Load(path); err == nil {
		t.Error("expected error for unknown key")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"LOSTFOUND_ADDR":             ":7000",
		"LOSTFOUND_BACKEND_URL":      "http://backend:8000/api",
		"LOSTFOUND_BACKEND_TIMEOUT":  "3s",
		"LOSTFOUND_SECURE_COOKIE":    "true",
		"LOSTFOUND_SESSION_LIFETIME": "",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	c := Default()
	if err := c.ApplyEnv(lookup); err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}
	if c.Addr != ":7000" || c.Backend.URL != "http://backend:8000/api" || c.Backend.Timeout != 3*time.Second || !c.Session.SecureCookie {
		t.Errorf("env not applied: %+v", c)
	}
	if c.Session.Lifetime != 7*24*time.Hour {
		t.Error("empty variable should not override")
	}
}

func TestApplyEnvBadValues(t *testing.T) {
	tests := map[string]string{
		"LOSTFOUND_BACKEND_TIMEOUT": "soon",
		"LOSTFOUND_SECURE_COOKIE":   "maybe",
	}
	for key, val := range tests {
		t.Run(key, func(t *testing.T) {
			c := Default()
			err := c.ApplyEnv(func(k string) (string, bool) {
				if k == key {
					return val, true
				}
				return "", false
			})
			if err == nil {
				t.Errorf("expected error for %s=%s", key, val)
			}
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	path := writeFile(t, ".env", "LOSTFOUND_TEST_DOTENV=from-file\n")
	t.Setenv("LOSTFOUND_TEST_DOTENV", "")
	os.Unsetenv("LOSTFOUND_TEST_DOTENV")

	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	if got := os.Getenv("LOSTFOUND_TEST_DOTENV"); got != "from-file" {
		t.Errorf("expected from-file, got %q", got)
	}

	if err := LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Errorf("missing .env should be ignored, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty addr", func(c *Config) { c.Addr = "" }},
		{"empty db", func(c *Config) { c.DBPath = "" }},
		{"relative backend", func(c *Config) { c.Backend.URL = "/api" }},
		{"ftp backend", func(c *Config) { c.Backend.URL = "ftp://host/api" }},
		{"zero timeout", func(c *Config) { c.Backend.Timeout = 0 }},
		{"short session", func(c *Config) { c.Session.Lifetime = time.Second }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(c)
			if err := c.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
