package configuration

import (
	"encoding/json"
	"os"
	"path/filepath"

	"dario.cat/mergo"
	"github.com/pkg/errors"

	"github.com/strataai/strata/internal/file"
)

var defaultConfig = Config{
	ServerURL:      "http://localhost:1337",
	RequestTimeout: 120,

	Chat: &ChatConfig{
		DefaultProviderID: "",
		DefaultModelID:    "",
	},

	Database: &DatabaseConfig{
		Path: "~/.config/strata/strata.db",
	},

	Viewer: &ViewerConfig{
		ListenAddress: "localhost:8322",
	},
}

// Config holds configuration for the strata tool.
type Config struct {
	// Base URL of the workspace server, e.g. https://strata.example.com.
	ServerURL string `json:"server_url"`
	// Bearer token obtained via `strata login`.
	Token string `json:"token"`
	// Request timeout in seconds. Streaming requests are exempt.
	RequestTimeout int `json:"request_timeout"`

	Chat     *ChatConfig     `json:"chat"`
	Database *DatabaseConfig `json:"database"`
	Viewer   *ViewerConfig   `json:"viewer"`
}

// ChatConfig holds configuration for strata chat.
type ChatConfig struct {
	// Provider preselected when creating a conversation. Empty uses the server default.
	DefaultProviderID string `json:"default_provider_id"`
	// Model preselected when creating a conversation. Empty uses the server default.
	DefaultModelID string `json:"default_model_id"`
}

// DatabaseConfig holds configuration for the local conversation cache.
type DatabaseConfig struct {
	Path string `json:"path"`
}

// ViewerConfig holds configuration for `strata serve`.
type ViewerConfig struct {
	ListenAddress string `json:"listen_address"`
}

// Parse a configuration file.
func Parse(path string) (*Config, error) {
	path, err := file.ExpandPath(path)
	if err != nil {
		return nil, errors.Wrap(err, "expanding path")
	}

	if err := initializeIfNotPresent(path); err != nil {
		return nil, errors.Wrap(err, "initializing configuration")
	}
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading file")
	}

	config := &Config{}
	if err = json.Unmarshal(bytes, config); err != nil {
		return nil, errors.Wrap(err, "unmarshaling into config")
	}

	// Fill anything the user's file omits from the defaults.
	if err := mergo.Merge(config, defaultConfig); err != nil {
		return nil, errors.Wrap(err, "merging defaults")
	}

	expandedDatabasePath, err := file.ExpandPath(config.Database.Path)
	if err != nil {
		return nil, errors.Wrap(err, "expanding database path")
	}
	config.Database.Path = expandedDatabasePath
	return config, nil
}

// Save a configuration file. Used by `strata login` to persist the token.
func (c *Config) Save(path string) error {
	path, err := file.ExpandPath(path)
	if err != nil {
		return errors.Wrap(err, "expanding path")
	}

	bytes, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshaling config")
	}

	if err := os.WriteFile(path, bytes, 0600); err != nil {
		return errors.Wrap(err, "writing file")
	}

	return nil
}

// initializeIfNotPresent initializes a config if it does not exist.
func initializeIfNotPresent(path string) error {
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return nil
	}

	dir, _ := filepath.Split(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(err, "creating folders")
	}

	if err := defaultConfig.Save(path); err != nil {
		return errors.Wrap(err, "saving default config")
	}
	return nil
}
