package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// GetDefaults returns application default paths, checking environment
// variables first. A .env file in the working directory is loaded before
// the lookups, which keeps scripted runs self-contained.
// Environment variables:
//   - SHOPLIST_CONFIG_PATH: config file location (default: ~/.config/shoplist.toml)
//   - SHOPLIST_HOME: base directory for shoplist data (default: ~/.local/share/shoplist)
func GetDefaults() (map[string]string, error) {
	// Missing .env is the normal case.
	_ = godotenv.Load()

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

// getConfigPath returns the config file path, checking SHOPLIST_CONFIG_PATH
// first, then falling back to the default ~/.config/shoplist.toml.
func getConfigPath() (string, error) {
	if path := os.Getenv("SHOPLIST_CONFIG_PATH"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "shoplist.toml"), nil
}

// getBaseDir returns the base directory for shoplist data, checking
// SHOPLIST_HOME first, then falling back to the XDG default
// ~/.local/share/shoplist.
func getBaseDir() (string, error) {
	if path := os.Getenv("SHOPLIST_HOME"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", "shoplist"), nil
}
