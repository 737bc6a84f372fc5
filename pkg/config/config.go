// Package config loads the dashboard configuration from
// .sv/config.yaml, discovered by walking up from the working
// directory. Environment variables override the file so tokens never
// need to live on disk.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the contents of .sv/config.yaml.
type Config struct {
	// Env selects the deployment, "PROD" or "TEST" (default: PROD).
	Env string `yaml:"env,omitempty"`

	// BaseURL overrides the environment's service root, mainly for
	// pointing at a local stub.
	BaseURL string `yaml:"base_url,omitempty"`

	// SystemID is the tenant to address (default: 100).
	SystemID int `yaml:"system_id,omitempty"`

	// Email prefills the login form.
	Email string `yaml:"email,omitempty"`

	// Token is a pre-issued bearer token. When set the login form is
	// skipped.
	Token string `yaml:"token,omitempty"`

	// Snapshot points at a directory of collection dumps. When set
	// the dashboard runs offline from those files.
	Snapshot string `yaml:"snapshot,omitempty"`
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	switch c.Env {
	case "", "PROD", "TEST":
	default:
		return fmt.Errorf("env must be PROD or TEST, got %q", c.Env)
	}
	if c.SystemID < 0 {
		return fmt.Errorf("system_id must be positive, got %d", c.SystemID)
	}
	return nil
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() Config {
	return Config{Env: "PROD"}
}

// Load reads a config file and applies environment overrides.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.Env == "" {
		cfg.Env = "PROD"
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Discover finds and loads the nearest config. With no file anywhere
// up the tree it returns defaults plus environment overrides.
func Discover(dir string) (Config, error) {
	path, err := FindConfig(dir)
	if err != nil {
		cfg := DefaultConfig()
		cfg.applyEnv()
		return cfg, cfg.Validate()
	}
	return Load(path)
}

// FindConfig searches for .sv/config.yaml starting from dir.
func FindConfig(dir string) (string, error) {
	if dir == "" {
		var err error
		dir, err = os.Getwd()
		if err != nil {
			return "", err
		}
	}

	for {
		candidate := filepath.Join(dir, ".sv", "config.yaml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", os.ErrNotExist
}

// applyEnv lets SV_ENV, SV_TOKEN and SV_SYSTEM_ID override the file.
func (c *Config) applyEnv() {
	if v := os.Getenv("SV_ENV"); v != "" {
		c.Env = strings.ToUpper(v)
	}
	if v := os.Getenv("SV_TOKEN"); v != "" {
		c.Token = v
	}
	if v := os.Getenv("SV_SYSTEM_ID"); v != "" {
		if id, err := strconv.Atoi(v); err == nil {
			c.SystemID = id
		}
	}
}
