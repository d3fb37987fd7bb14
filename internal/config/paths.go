package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/conn-castle/config-package/internal/messages"
)

const (
	appDirName     = "config-package"
	configFileName = "config.toml"
	registryDir    = "registry"
)

// AppDir returns the per-user directory holding the config file and registries.
func AppDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf(messages.ConfigUserDirFailedFmt, err)
	}
	return filepath.Join(base, appDirName), nil
}

// DefaultPath returns the config file used when --config is not given.
func DefaultPath() (string, error) {
	dir, err := AppDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// DefaultRegistryDir returns the registry directory used when none is configured.
func DefaultRegistryDir() (string, error) {
	dir, err := AppDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, registryDir), nil
}
