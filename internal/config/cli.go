package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// CLIConfig is the terminal client's profile, kept in ~/.novelhub/config.yaml.
// Environment variables override the file.
type CLIConfig struct {
	BackendURL     string        `yaml:"backend_url"`
	AnonKey        string        `yaml:"anon_key"`
	JWTSecret      string        `yaml:"jwt_secret,omitempty"`
	RequestTimeout time.Duration `yaml:"request_timeout,omitempty"`
	LogLevel       string        `yaml:"log_level,omitempty"`
	// Where tokens live: keyring (default) or file.
	TokenStore string `yaml:"token_store,omitempty"`
	NoColor    bool   `yaml:"no_color,omitempty"`
}

func DefaultCLIPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".novelhub", "config.yaml")
	}
	return filepath.Join(home, ".novelhub", "config.yaml")
}

// LoadCLIConfig reads path; a missing file yields the defaults.
func LoadCLIConfig(path string) (*CLIConfig, error) {
	cfg := &CLIConfig{}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if v := os.Getenv("BACKEND_URL"); v != "" {
		cfg.BackendURL = v
	}
	if v := os.Getenv("BACKEND_ANON_KEY"); v != "" {
		cfg.AnonKey = v
	}
	if v := os.Getenv("BACKEND_JWT_SECRET"); v != "" {
		cfg.JWTSecret = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if err := loadEnvDuration(&cfg.RequestTimeout, "REQUEST_TIMEOUT", orDuration(cfg.RequestTimeout, 30*time.Second)); err != nil {
		return nil, err
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = "warn"
	}
	if cfg.TokenStore == "" {
		cfg.TokenStore = "keyring"
	}
	return cfg, nil
}

// Save writes the profile with owner-only permissions.
func (c *CLIConfig) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func (c *CLIConfig) Validate() error {
	if c.BackendURL == "" {
		return errors.New("backend_url is not configured; run 'novelhub config init' or set BACKEND_URL")
	}
	if c.AnonKey == "" {
		return errors.New("anon_key is not configured; run 'novelhub config init' or set BACKEND_ANON_KEY")
	}
	if c.TokenStore != "keyring" && c.TokenStore != "file" {
		return fmt.Errorf("token_store must be keyring or file, got %q", c.TokenStore)
	}
	return nil
}

func orDuration(v, def time.Duration) time.Duration {
	if v > 0 {
		return v
	}
	return def
}
