package model

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Storage backend identifiers.
const (
	BackendSQLite  = "sqlite"
	BackendKeyring = "keyring"
	BackendMemory  = "memory"
)

// StorageConfig selects and configures the key/value backend that holds
// the task records.
type StorageConfig struct {
	// Backend is one of "sqlite", "keyring" or "memory".
	Backend string `mapstructure:"backend" yaml:"backend"`

	// Path is the SQLite database file, or the keyring file directory
	// when the keyring falls back to its file backend.
	Path string `mapstructure:"path" yaml:"path"`
}

// DisplayConfig holds UI/rendering preferences.
type DisplayConfig struct {
	ShowCompleted bool `mapstructure:"show_completed" yaml:"show_completed"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`

	// Lists are the list names opened as panes at startup. A name may
	// appear more than once; such panes stay in sync.
	Lists []string `mapstructure:"lists" yaml:"lists"`

	Display DisplayConfig `mapstructure:"display" yaml:"display"`

	// LogFile receives log output. Empty disables logging.
	LogFile string `mapstructure:"log_file" yaml:"log_file"`
}

// ConfigDir returns ~/.config/tasklists, or "." if the home directory
// cannot be resolved.
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "tasklists")
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/tasklists/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		Storage: StorageConfig{
			Backend: BackendSQLite,
			Path:    filepath.Join(ConfigDir(), "tasks.db"),
		},
		Lists: []string{"inbox"},
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns a default configuration.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	defaults := defaultAppConfig()
	v.SetDefault("storage.backend", defaults.Storage.Backend)
	v.SetDefault("storage.path", defaults.Storage.Path)
	v.SetDefault("lists", defaults.Lists)
	v.SetDefault("display.show_completed", false)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return defaults, nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaults, nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	cfg.Storage.Backend = strings.ToLower(strings.TrimSpace(cfg.Storage.Backend))
	switch cfg.Storage.Backend {
	case BackendSQLite, BackendKeyring, BackendMemory:
	default:
		return nil, fmt.Errorf("config %s: unknown storage backend %q", path, cfg.Storage.Backend)
	}
	cfg.Storage.Path = expandHome(cfg.Storage.Path)
	cfg.LogFile = expandHome(cfg.LogFile)

	cfg.Lists = CleanListNames(cfg.Lists)
	if len(cfg.Lists) == 0 {
		cfg.Lists = defaults.Lists
	}

	return cfg, nil
}

// CleanListNames trims list names and drops blank ones. Duplicates are
// kept; they open sibling panes on the same list.
func CleanListNames(names []string) []string {
	out := make([]string, 0, len(names))
	for _, name := range names {
		if name = strings.TrimSpace(name); name != "" {
			out = append(out, name)
		}
	}
	return out
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("storage", cfg.Storage)
	v.Set("lists", cfg.Lists)
	v.Set("display", cfg.Display)
	v.Set("log_file", cfg.LogFile)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}

// expandHome replaces a leading "~/" with the user's home directory.
func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
