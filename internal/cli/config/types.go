// Package config provides configuration management for the QueryBench CLI.
package config

import "github.com/querybench/querybench/internal/adapter"

// TargetConfig describes the database engine the workbench runs against.
type TargetConfig struct {
	Type     string            `koanf:"type"`
	Path     string            `koanf:"path"`
	Host     string            `koanf:"host"`
	Port     int               `koanf:"port"`
	Database string            `koanf:"database"`
	User     string            `koanf:"user"`
	Password string            `koanf:"password"`
	Schema   string            `koanf:"schema"`
	Options  map[string]string `koanf:"options"`
}

// AdapterConfig converts the target into the adapter layer's config.
func (t *TargetConfig) AdapterConfig() adapter.Config {
	return adapter.Config{
		Type:     t.Type,
		Path:     t.Path,
		Host:     t.Host,
		Port:     t.Port,
		Database: t.Database,
		Username: t.User,
		Password: t.Password,
		Schema:   t.Schema,
		Options:  t.Options,
	}
}

// UIConfig holds configuration for the UI server.
type UIConfig struct {
	Port          int    `koanf:"port"`
	Watch         bool   `koanf:"watch"`
	SessionSecret string `koanf:"session_secret"`
}

// DefaultUIConfig returns a UIConfig with default values.
func DefaultUIConfig() *UIConfig {
	return &UIConfig{
		Port:          8765,
		Watch:         true,
		SessionSecret: "querybench-dev-secret",
	}
}

// GetUIConfig returns the UI config with defaults applied for any unset values.
func (c *Config) GetUIConfig() *UIConfig {
	if c.UI == nil {
		return DefaultUIConfig()
	}
	ui := c.UI
	if ui.Port == 0 {
		ui.Port = 8765
	}
	if ui.SessionSecret == "" {
		ui.SessionSecret = "querybench-dev-secret"
	}
	return ui
}

// Config holds all CLI configuration options.
type Config struct {
	ScriptsDir    string        `koanf:"scripts_dir"`
	ArtifactsPath string        `koanf:"artifacts_path"`
	Verbose       bool          `koanf:"verbose"`
	OutputFormat  string        `koanf:"output"`
	Target        *TargetConfig `koanf:"target"`
	UI            *UIConfig     `koanf:"ui"`
}

// Default configuration values.
const (
	DefaultScriptsDir    = "scripts"
	DefaultArtifactsFile = ".querybench/artifacts.db"
	DefaultOutput        = "table"
)
