package app

import (
	"fmt"
	"os"
	"path/filepath"
)

// GetDefaults returns application default paths, checking environment variables first.
// Environment variables:
//   - CDT_CONFIG_PATH: config file location (default: ~/.config/cdt.toml)
//   - CDT_HOME: base directory for cdt data (default: ~/.local/share/cdt)
func GetDefaults() (map[string]string, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return nil, err
	}

	baseDir, err := getBaseDir()
	if err != nil {
		return nil, err
	}

	return map[string]string{
		"config_path": configPath,
		"base_dir":    baseDir,
		"log_dir":     filepath.Join(baseDir, "log"),
	}, nil
}

// getConfigPath returns the config file path, checking CDT_CONFIG_PATH env var first,
// then falling back to the default ~/.config/cdt.toml.
func getConfigPath() (string, error) {
	if path := os.Getenv("CDT_CONFIG_PATH"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "cdt.toml"), nil
}

// getBaseDir returns the base directory for cdt data, checking CDT_HOME env var first,
// then falling back to the XDG default ~/.local/share/cdt.
func getBaseDir() (string, error) {
	if path := os.Getenv("CDT_HOME"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", "cdt"), nil
}
