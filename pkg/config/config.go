package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tailscale/hujson"
)

const (
	xdgAppName = "todotxt"
	configFile = "config.json"

	DefaultCalendar = "Tasks"
	defaultTodoFile = "todo.txt"

	TokenStoreFile    = "file"
	TokenStoreKeyring = "keyring"
)

// Config is read from config.json. TodoFile may be a glob such as
// "~/notes/**/todo.txt"; Watch is a cron spec for repeated syncs.
type Config struct {
	TodoFile   string `json:"todo_file"`
	Calendar   string `json:"calendar"`
	Workers    int    `json:"workers,omitempty"`
	Sort       string `json:"sort,omitempty"`
	TokenStore string `json:"token_store,omitempty"`
	Watch      string `json:"watch,omitempty"`
}

// Dir returns ~/.config/todotxt, where the config, token and caches live.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", xdgAppName), nil
}

func GetConfigPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFile), nil
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	cfg := &Config{Calendar: DefaultCalendar, TokenStore: TokenStoreFile}
	if home, err := os.UserHomeDir(); err == nil {
		cfg.TodoFile = filepath.Join(home, defaultTodoFile)
	} else {
		cfg.TodoFile = defaultTodoFile
	}
	return cfg
}

func Load() (*Config, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads the config at path, filling unset fields with defaults.
// Comments and trailing commas are allowed.
func LoadFrom(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}

	std, err := hujson.Standardize(b)
	if err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	var cfg Config
	if err := json.Unmarshal(std, &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	def := Default()
	if cfg.Calendar == "" {
		cfg.Calendar = def.Calendar
	}
	if cfg.TodoFile == "" {
		cfg.TodoFile = def.TodoFile
	}
	if cfg.TokenStore == "" {
		cfg.TokenStore = def.TokenStore
	}
	if cfg.TokenStore != TokenStoreFile && cfg.TokenStore != TokenStoreKeyring {
		return nil, fmt.Errorf("unknown token_store %q", cfg.TokenStore)
	}
	return &cfg, nil
}

func Save(cfg *Config) error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}
	return SaveTo(path, cfg)
}

func SaveTo(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to open config file for writing: %w", err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	return encoder.Encode(cfg)
}

// ExpandHome replaces a leading "~/" with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
