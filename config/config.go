package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/byte4ever/rules_sri/digest"
)

// Defaults applied before the file is read.
const (
	DefaultAlgorithm   = "sha384"
	DefaultFormat      = "integrity"
	DefaultParallelism = 4
)

// Config holds the sri tool settings.
type Config struct {
	// Algorithm is the default algorithm selector.
	Algorithm string `yaml:"algorithm"`
	// Format is a render preset name or template.
	Format string `yaml:"format"`
	// Copy places the last integrity value on the
	// clipboard.
	Copy bool `yaml:"copy"`
	// Parallelism bounds concurrent fetches.
	Parallelism int `yaml:"parallelism"`
	// Timeout bounds a whole run, as a Go duration
	// string. Empty means no timeout.
	Timeout string `yaml:"timeout"`
	// UserAgent is sent on http(s) fetches.
	UserAgent string `yaml:"user_agent"`

	GitHub GitHub `yaml:"github"`
	GitLab GitLab `yaml:"gitlab"`
}

// GitHub holds github:// source settings.
type GitHub struct {
	AccessToken    string `yaml:"access_token"`
	EnterpriseHost string `yaml:"enterprise_host"`
}

// GitLab holds gitlab:// source settings.
type GitLab struct {
	Host        string `yaml:"host"`
	AccessToken string `yaml:"access_token"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Algorithm:   DefaultAlgorithm,
		Format:      DefaultFormat,
		Parallelism: DefaultParallelism,
	}
}

// DefaultPath returns the per-user config file location,
// or empty when no config directory is known.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}

	return filepath.Join(dir, "sri", "config.yaml")
}

// Load reads the YAML file at path on top of Default. An
// empty path tries DefaultPath and silently keeps the
// defaults when that file does not exist; an explicit path
// must exist.
func Load(path string) (Config, error) {
	const errCtx = "loading config"

	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
		if path == "" {
			return cfg, nil
		}
	}

	raw, err := os.ReadFile(path) //nolint:gosec // path from CLI flag or user config dir
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}

		return Config{}, fmt.Errorf("%s: %w", errCtx, err)
	}

	if err := yaml.UnmarshalWithOptions(
		raw, &cfg, yaml.DisallowUnknownField(),
	); err != nil {
		return Config{}, fmt.Errorf(
			"%s: decoding %s: %w", errCtx, path, err,
		)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf(
			"%s: %s: %w", errCtx, path, err,
		)
	}

	return cfg, nil
}

// ApplyEnv fills empty source tokens from GITHUB_TOKEN and
// GITLAB_TOKEN.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if c.GitHub.AccessToken == "" {
		c.GitHub.AccessToken = getenv("GITHUB_TOKEN")
	}

	if c.GitLab.AccessToken == "" {
		c.GitLab.AccessToken = getenv("GITLAB_TOKEN")
	}
}

// Validate checks the algorithm, parallelism and timeout.
func (c Config) Validate() error {
	if _, err := digest.ParseAlgorithm(c.Algorithm); err != nil {
		return err
	}

	if c.Parallelism <= 0 {
		return fmt.Errorf(
			"parallelism must be positive, got %d", c.Parallelism,
		)
	}

	if _, err := c.TimeoutDuration(); err != nil {
		return err
	}

	return nil
}

// TimeoutDuration parses Timeout. Zero means no timeout.
func (c Config) TimeoutDuration() (time.Duration, error) {
	if c.Timeout == "" {
		return 0, nil
	}

	dur, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout: %w", err)
	}

	if dur < 0 {
		return 0, fmt.Errorf("timeout must not be negative, got %s", dur)
	}

	return dur, nil
}
