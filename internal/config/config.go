// Package config handles application configuration
package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed config.sample.yaml
var sampleConfig string

// GetSampleConfig returns the embedded sample configuration content
func GetSampleConfig() string {
	return sampleConfig
}

// StorageConfig holds storage backend settings
type StorageConfig struct {
	Backend       string `yaml:"backend"` // "file" or "sqlite"
	Path          string `yaml:"path"`
	BackupEnabled *bool  `yaml:"backup_enabled"` // default: true
}

// LimitsConfig holds the resource limits enforced by the list store
type LimitsConfig struct {
	MaxListNameLength int `yaml:"max_list_name_length"`
	MaxItemLength     int `yaml:"max_item_length"`
	MaxLists          int `yaml:"max_lists"`
	MaxItemsPerList   int `yaml:"max_items_per_list"`
}

// TelegramConfig holds Telegram bot settings. The bot token itself lives in
// the keyring or the TELEGRAM_BOT_TOKEN environment variable, never here.
type TelegramConfig struct {
	AuthorizedChatID int64 `yaml:"authorized_chat_id"` // 0 means no restriction
	WatchDataFile    *bool `yaml:"watch_data_file"`    // default: true
}

// Config represents the application configuration
type Config struct {
	Storage  StorageConfig  `yaml:"storage"`
	Limits   LimitsConfig   `yaml:"limits"`
	Telegram TelegramConfig `yaml:"telegram"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			Backend: "file",
			Path:    filepath.Join(GetDataDir(), "lists.yaml"),
		},
		Limits: LimitsConfig{
			MaxListNameLength: 50,
			MaxItemLength:     200,
			MaxLists:          50,
			MaxItemsPerList:   100,
		},
	}
}

// Load loads configuration from the specified path, or the default XDG path
// if empty. If the config file doesn't exist, it creates one with defaults.
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = filepath.Join(GetConfigDir(), "config.yaml")
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := DefaultConfig()
		if err := cfg.save(configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("invalid YAML in config file: %w", err)
	}
	cfg.applyDefaults()

	if cfg.Storage.Path != "" {
		cfg.Storage.Path = ExpandPath(cfg.Storage.Path)
	}

	return cfg, nil
}

// applyDefaults fills unset fields with their defaults
func (c *Config) applyDefaults() {
	def := DefaultConfig()
	if c.Storage.Backend == "" {
		c.Storage.Backend = def.Storage.Backend
	}
	if c.Storage.Path == "" {
		c.Storage.Path = defaultDataPath(c.Storage.Backend)
	}
	if c.Limits.MaxListNameLength <= 0 {
		c.Limits.MaxListNameLength = def.Limits.MaxListNameLength
	}
	if c.Limits.MaxItemLength <= 0 {
		c.Limits.MaxItemLength = def.Limits.MaxItemLength
	}
	if c.Limits.MaxLists <= 0 {
		c.Limits.MaxLists = def.Limits.MaxLists
	}
	if c.Limits.MaxItemsPerList <= 0 {
		c.Limits.MaxItemsPerList = def.Limits.MaxItemsPerList
	}
}

// defaultDataPath returns the default data location for a backend
func defaultDataPath(backend string) string {
	if backend == "sqlite" {
		return filepath.Join(GetDataDir(), "lists.db")
	}
	return filepath.Join(GetDataDir(), "lists.yaml")
}

// save writes the configuration to the specified path
func (c *Config) save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Use the embedded sample config which includes all documentation
	if err := os.WriteFile(path, []byte(sampleConfig), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Storage.Backend != "file" && c.Storage.Backend != "sqlite" {
		return fmt.Errorf("unknown storage backend: %q (must be 'file' or 'sqlite')", c.Storage.Backend)
	}
	if c.Limits.MaxListNameLength <= 0 {
		return fmt.Errorf("limits.max_list_name_length must be positive, got %d", c.Limits.MaxListNameLength)
	}
	if c.Limits.MaxItemLength <= 0 {
		return fmt.Errorf("limits.max_item_length must be positive, got %d", c.Limits.MaxItemLength)
	}
	if c.Limits.MaxLists <= 0 {
		return fmt.Errorf("limits.max_lists must be positive, got %d", c.Limits.MaxLists)
	}
	if c.Limits.MaxItemsPerList <= 0 {
		return fmt.Errorf("limits.max_items_per_list must be positive, got %d", c.Limits.MaxItemsPerList)
	}
	return nil
}

// IsBackupEnabled returns true if save-time backups are enabled.
// Returns true (default) if not configured.
func (c *Config) IsBackupEnabled() bool {
	if c.Storage.BackupEnabled == nil {
		return true
	}
	return *c.Storage.BackupEnabled
}

// IsWatchDataFileEnabled returns true if the bot should reload lists when
// the data file changes on disk. Returns true (default) if not configured.
func (c *Config) IsWatchDataFileEnabled() bool {
	if c.Telegram.WatchDataFile == nil {
		return true
	}
	return *c.Telegram.WatchDataFile
}

// AuthorizedChatID returns the configured chat restriction, with the
// AUTHORIZED_CHAT_ID environment variable taking precedence.
func (c *Config) AuthorizedChatID() int64 {
	if env := os.Getenv("AUTHORIZED_CHAT_ID"); env != "" {
		var id int64
		if _, err := fmt.Sscanf(env, "%d", &id); err == nil {
			return id
		}
	}
	return c.Telegram.AuthorizedChatID
}

// getXDGDir returns a directory path following XDG spec.
// envVar is the XDG environment variable (e.g., "XDG_CONFIG_HOME").
// fallbackPath is the relative path from home (e.g., ".config").
func getXDGDir(envVar, fallbackPath string) string {
	if xdgDir := os.Getenv(envVar); xdgDir != "" {
		return filepath.Join(xdgDir, "listbot")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", fallbackPath, "listbot")
	}
	return filepath.Join(home, fallbackPath, "listbot")
}

// GetConfigDir returns the configuration directory following XDG spec
func GetConfigDir() string {
	return getXDGDir("XDG_CONFIG_HOME", ".config")
}

// GetDataDir returns the data directory following XDG spec
func GetDataDir() string {
	return getXDGDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
}

// ExpandPath expands ~ and environment variables in a path
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[2:])
		}
	}

	return os.ExpandEnv(path)
}
