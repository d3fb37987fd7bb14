package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"

	"github.com/conn-castle/config-package/internal/messages"
)

// ErrConfigValidation wraps semantic validation failures (as opposed to TOML
// syntax or filesystem errors).
var ErrConfigValidation = errors.New("config validation failed")

// DefaultTestCommand runs the tox matrix in parallel.
var DefaultTestCommand = []string{"tox", "-p", "auto"}

// Load reads the config at path. When explicit is false a missing file yields
// the defaults; an explicitly requested file must exist.
func Load(path string, explicit bool) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return Defaults()
		}
		return nil, fmt.Errorf(messages.ConfigMissingFileFmt, path, err)
	}
	return Parse(data, path)
}

// Defaults returns the configuration used without a config file.
func Defaults() (*Config, error) {
	cfg := &Config{}
	if err := cfg.applyDefaults(""); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes TOML data strictly and validates it. source names the file in
// errors and anchors relative directories.
func Parse(data []byte, source string) (*Config, error) {
	var cfg Config
	decoder := toml.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return nil, fmt.Errorf("%w: "+messages.ConfigUnrecognizedKeysFmt, ErrConfigValidation, source, strict.String())
		}
		return nil, fmt.Errorf(messages.ConfigInvalidConfigFmt, source, err)
	}
	if err := cfg.Validate(source); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfigValidation, err)
	}
	baseDir := ""
	if source != "" {
		baseDir = filepath.Dir(source)
	}
	if err := cfg.applyDefaults(baseDir); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that defaults cannot repair.
func (c *Config) Validate(source string) error {
	if len(c.Test.Command) > 0 && strings.TrimSpace(c.Test.Command[0]) == "" {
		return fmt.Errorf(messages.ConfigEmptyTestCommandFmt, source)
	}
	if c.Diff.MaxLines < 0 {
		return fmt.Errorf(messages.ConfigNegativeDiffLinesFmt, source, c.Diff.MaxLines)
	}
	if strings.ContainsAny(c.Remote, " \t\n") {
		return fmt.Errorf(messages.ConfigInvalidRemoteFmt, source, c.Remote)
	}
	return nil
}

func (c *Config) applyDefaults(baseDir string) error {
	if strings.TrimSpace(c.RegistryDir) == "" {
		dir, err := DefaultRegistryDir()
		if err != nil {
			return err
		}
		c.RegistryDir = dir
	} else {
		dir, err := ResolveDir(c.RegistryDir, baseDir)
		if err != nil {
			return err
		}
		c.RegistryDir = dir
	}
	if strings.TrimSpace(c.TemplatesDir) != "" {
		dir, err := ResolveDir(c.TemplatesDir, baseDir)
		if err != nil {
			return err
		}
		c.TemplatesDir = dir
	}
	if strings.TrimSpace(c.Remote) == "" {
		c.Remote = "origin"
	}
	if len(c.Test.Command) == 0 {
		c.Test.Command = append([]string(nil), DefaultTestCommand...)
	}
	return nil
}

// ResolveDir expands a leading ~ and anchors relative paths at baseDir.
func ResolveDir(dir string, baseDir string) (string, error) {
	expanded, err := homedir.Expand(strings.TrimSpace(dir))
	if err != nil {
		return "", fmt.Errorf(messages.ConfigExpandPathFailedFmt, dir, err)
	}
	if !filepath.IsAbs(expanded) && baseDir != "" {
		expanded = filepath.Join(baseDir, expanded)
	}
	return filepath.Clean(expanded), nil
}
