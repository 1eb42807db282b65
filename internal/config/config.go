// Package config loads happy settings from JSONC files and environment
// overrides.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/tidwall/jsonc"
)

// Config holds every tunable the bridge and CLI consume.
type Config struct {
	// PermissionMode selects the auto-approval policy: default,
	// read-only, or yolo.
	PermissionMode string `json:"permissionMode,omitempty"`
	// ResponseStyle forces the elicitation response shape ("decision" or
	// "both") instead of negotiating it from the codex version.
	ResponseStyle string `json:"responseStyle,omitempty"`
	// CodexPackage is an @openai/codex@<version> spec to run via npx
	// instead of the codex binary on PATH.
	CodexPackage string `json:"codexPackage,omitempty"`
	// ApprovalTimeoutSeconds overrides the advisory approval timeout.
	ApprovalTimeoutSeconds int `json:"approvalTimeoutSeconds,omitempty"`
	// LogLevel is the zerolog level name.
	LogLevel string `json:"logLevel,omitempty"`
	// DataDir is where agent state snapshots are persisted.
	DataDir string `json:"dataDir,omitempty"`
}

// Load loads configuration from multiple sources (priority order):
// 1. Global settings (~/.happy/)
// 2. Project settings (<directory>/.happy/)
// 3. HAPPY_CONFIG file
// 4. Environment variables
func Load(directory string) (*Config, error) {
	config := &Config{}

	loaded := make(map[string]bool)
	loadOnce := func(path string) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return
		}
		if loaded[absPath] {
			return
		}
		if loadConfigFile(path, config) == nil {
			loaded[absPath] = true
		}
	}

	if home := os.Getenv("HOME"); home != "" {
		globalDir := filepath.Join(home, ".happy")
		loadOnce(filepath.Join(globalDir, "settings.json"))
		loadOnce(filepath.Join(globalDir, "settings.jsonc"))
	}

	if directory != "" {
		projectDir := filepath.Join(directory, ".happy")
		loadOnce(filepath.Join(projectDir, "settings.json"))
		loadOnce(filepath.Join(projectDir, "settings.jsonc"))
	}

	if configPath := os.Getenv("HAPPY_CONFIG"); configPath != "" {
		loadOnce(configPath)
	}

	applyEnvOverrides(config)
	applyDefaults(config)

	return config, nil
}

// loadConfigFile merges a single settings file into config. A missing
// file is skipped silently.
func loadConfigFile(path string, config *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	data = jsonc.ToJSON(data)

	var fileConfig Config
	if err := json.Unmarshal(data, &fileConfig); err != nil {
		return err
	}

	mergeConfig(config, &fileConfig)
	return nil
}

// mergeConfig merges source into target; later sources win.
func mergeConfig(target, source *Config) {
	if source.PermissionMode != "" {
		target.PermissionMode = source.PermissionMode
	}
	if source.ResponseStyle != "" {
		target.ResponseStyle = source.ResponseStyle
	}
	if source.CodexPackage != "" {
		target.CodexPackage = source.CodexPackage
	}
	if source.ApprovalTimeoutSeconds > 0 {
		target.ApprovalTimeoutSeconds = source.ApprovalTimeoutSeconds
	}
	if source.LogLevel != "" {
		target.LogLevel = source.LogLevel
	}
	if source.DataDir != "" {
		target.DataDir = source.DataDir
	}
}

// applyEnvOverrides applies environment variable overrides (highest
// priority).
func applyEnvOverrides(config *Config) {
	if mode := os.Getenv("HAPPY_PERMISSION_MODE"); mode != "" {
		config.PermissionMode = mode
	}
	if style := os.Getenv("HAPPY_CODEX_RESPONSE_STYLE"); style != "" {
		config.ResponseStyle = style
	}
	if pkg := os.Getenv("HAPPY_CODEX_PACKAGE"); pkg != "" {
		config.CodexPackage = pkg
	}
	if timeout := os.Getenv("HAPPY_APPROVAL_TIMEOUT"); timeout != "" {
		if secs, err := strconv.Atoi(timeout); err == nil && secs > 0 {
			config.ApprovalTimeoutSeconds = secs
		}
	}
	if level := os.Getenv("HAPPY_LOG_LEVEL"); level != "" {
		config.LogLevel = level
	}
	if dir := os.Getenv("HAPPY_DATA_DIR"); dir != "" {
		config.DataDir = dir
	}
}

func applyDefaults(config *Config) {
	if config.PermissionMode == "" {
		config.PermissionMode = "default"
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if config.DataDir == "" {
		if home := os.Getenv("HOME"); home != "" {
			config.DataDir = filepath.Join(home, ".happy", "data")
		}
	}
}

// ApprovalTimeout returns the configured advisory timeout, or zero when
// the default should apply.
func (c *Config) ApprovalTimeout() time.Duration {
	if c.ApprovalTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.ApprovalTimeoutSeconds) * time.Second
}

// Save writes the configuration to a file.
func Save(config *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
