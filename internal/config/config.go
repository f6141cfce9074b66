// Package config manages the shurl configuration file.
// It handles locating, loading, defaulting, and validating the operator settings.
package config

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/adrg/xdg"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/kilupskalvis/shurl/internal/apperr"
	"github.com/pelletier/go-toml/v2"
)

const (
	ConfigFileName = "shurl_config.toml"
	EnvConfigPath  = "SHURL_CONFIG"
	DefaultRemote  = "origin"
)

// Publish methods
const (
	PublishGit    = "git"
	PublishNative = "native"
	PublishNone   = "none"
)

// Config represents the shurl configuration
type Config struct {
	RepoPath string `toml:"repo_path" json:"repo_path"`
	Name     string `toml:"name" json:"name"`
	Email    string `toml:"email" json:"email"`
	Remote   string `toml:"remote" json:"remote"`

	// Publish is git (subprocess), native (go-git) or none
	Publish string `toml:"publish" json:"publish"`

	// MaxAttempts bounds name generation; 0 retries until a free name is found
	MaxAttempts int `toml:"max_attempts" json:"max_attempts"`

	path string // file the config was loaded from
}

// Default returns the configuration written on first run
func Default() *Config {
	return &Config{
		RepoPath: "/path_to_valid_and_empty_git_repo",
		Name:     "shurl",
		Email:    "example@example.com",
		Remote:   DefaultRemote,
		Publish:  PublishGit,
	}
}

// DefaultPath returns $SHURL_CONFIG if set, otherwise the file in the XDG config home
func DefaultPath() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	return filepath.Join(xdg.ConfigHome, ConfigFileName)
}

// Load reads the configuration at path. When the file is missing or empty the
// defaults are written there and an ErrConfigCreated error is returned along
// with the default config, so the operator can edit it and run again.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, apperr.Wrap(apperr.ErrConfigIO, "failed to read config "+path, err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		cfg := Default()
		cfg.path = path
		if err := cfg.Save(); err != nil {
			return nil, err
		}
		return cfg, apperr.New(apperr.ErrConfigCreated, "created config file "+path)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, apperr.Wrap(apperr.ErrConfigParse, "failed to parse config "+path, err)
	}
	cfg.path = path

	if err := cfg.Validate(); err != nil {
		return nil, apperr.Wrap(apperr.ErrConfigInvalid, "invalid config "+path, err)
	}

	return cfg, nil
}

// Save writes the configuration back to the file it was loaded from
func (c *Config) Save() error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0755); err != nil {
		return apperr.Wrap(apperr.ErrConfigIO, "failed to create config directory", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return apperr.Wrap(apperr.ErrConfigIO, "failed to marshal config", err)
	}

	if err := os.WriteFile(c.path, data, 0644); err != nil {
		return apperr.Wrap(apperr.ErrConfigIO, "failed to write config "+c.path, err)
	}
	return nil
}

// remotePattern accepts remote names and URLs. A leading '-' would be read
// by git push as an option.
var remotePattern = regexp.MustCompile(`^[^-\s]\S*$`)

// Validate checks required fields and enumerations.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.RepoPath, validation.Required),
		validation.Field(&c.Name, validation.Required),
		validation.Field(&c.Email, validation.Required, is.EmailFormat),
		validation.Field(&c.Remote, validation.Required,
			validation.Match(remotePattern).Error("must be a remote name or URL not starting with '-'")),
		validation.Field(&c.Publish, validation.Required, validation.In(PublishGit, PublishNative, PublishNone)),
		validation.Field(&c.MaxAttempts, validation.Min(0)),
	)
}

// Path returns the file the configuration was loaded from
func (c *Config) Path() string {
	return c.path
}

// RepoDir returns the repository path with a leading ~ expanded
func (c *Config) RepoDir() string {
	return ExpandHome(c.RepoPath)
}

// ExpandHome replaces a leading "~" with the current user's home directory.
// Paths like "~other/x" are returned unchanged.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
