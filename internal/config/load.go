package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Load loads configuration with priority: defaults < file < flags.
// args are the command line arguments without the program name.
func Load(args []string) (*Config, error) {
	cfg := Default()
	fl, err := parseFlags(args)
	if err != nil {
		return nil, err
	}

	// Explicit path takes priority over standard locations.
	configPath := fl.config
	if configPath == "" {
		configPath = findConfigFile()
	}
	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", configPath, err)
		}
	}

	fl.apply(cfg)
	return cfg, nil
}

// findConfigFile looks for config in standard locations.
func findConfigFile() string {
	candidates := []string{
		"./vdbtool.yaml",
		filepath.Join(ConfigDir(), "config.yaml"),
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "vdbtool")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "vdbtool")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "vdbtool")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "vdbtool")
	}
}

// loadFromFile loads config from a YAML file, merging with existing values.
// Unknown keys are rejected.
func loadFromFile(cfg *Config, path string) error {
	fp, err := os.Open(path)
	if err != nil {
		return err
	}
	defer fp.Close()
	dec := yaml.NewDecoder(fp)
	dec.KnownFields(true)
	return dec.Decode(cfg)
}
