package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete planvet configuration
type Config struct {
	Backend BackendConfig `mapstructure:"backend"`
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
	Report  ReportConfig  `mapstructure:"report"`
}

// BackendConfig controls how analysis backends are invoked
type BackendConfig struct {
	// Command is the primary backend CLI executable name or path
	Command string `mapstructure:"command"`
	// ExtraArgs are appended to every primary backend invocation
	ExtraArgs []string `mapstructure:"extra_args"`
	// APIBaseURL is the base URL for the secondary (metered) backend
	APIBaseURL string `mapstructure:"api_base_url"`
	// APIKeyEnv names the environment variable holding the secondary
	// backend credential. The credential itself never lives in config.
	APIKeyEnv string `mapstructure:"api_key_env"`
	// Model is the model requested from the secondary backend
	Model string `mapstructure:"model"`
	// TimeoutSeconds bounds a single backend invocation
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
	// MaxTokens caps the secondary backend completion length (0 = provider default)
	MaxTokens int `mapstructure:"max_tokens"`
}

// ServerConfig controls the HTTP transport
type ServerConfig struct {
	// Addr is the listen address for `planvet serve`
	Addr string `mapstructure:"addr"`
	// ShutdownGraceSeconds bounds graceful shutdown on SIGINT/SIGTERM
	ShutdownGraceSeconds int `mapstructure:"shutdown_grace_seconds"`
}

// LoggingConfig controls structured logging
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error
	Level string `mapstructure:"level"`
	// File is the log file path. Empty logs to stderr.
	File string `mapstructure:"file"`
	// MaxSizeMB is the maximum log file size before rotation
	MaxSizeMB int `mapstructure:"max_size_mb"`
	// MaxBackups is the number of rotated log files to keep
	MaxBackups int `mapstructure:"max_backups"`
}

// ReportConfig controls report rendering
type ReportConfig struct {
	// Color enables styled terminal output ("auto", "always", "never")
	Color string `mapstructure:"color"`
}

// Timeout returns the backend invocation timeout as a time.Duration
func (b *BackendConfig) Timeout() time.Duration {
	return time.Duration(b.TimeoutSeconds) * time.Second
}

// APIKey resolves the secondary backend credential from the environment.
// Returns the empty string when the secondary backend is unconfigured.
func (b *BackendConfig) APIKey() string {
	if b.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(b.APIKeyEnv)
}

// ShutdownGrace returns the server shutdown grace period as a time.Duration
func (s *ServerConfig) ShutdownGrace() time.Duration {
	return time.Duration(s.ShutdownGraceSeconds) * time.Second
}

// Default returns a Config with all default values
func Default() *Config {
	return &Config{
		Backend: BackendConfig{
			Command:        "claude",
			ExtraArgs:      []string{},
			APIBaseURL:     "https://api.openai.com/v1",
			APIKeyEnv:      "OPENAI_API_KEY",
			Model:          "gpt-4o",
			TimeoutSeconds: 300, // Plan analysis regularly runs for minutes
			MaxTokens:      0,
		},
		Server: ServerConfig{
			Addr:                 "127.0.0.1:7433",
			ShutdownGraceSeconds: 10,
		},
		Logging: LoggingConfig{
			Level:      "info",
			File:       "",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
		Report: ReportConfig{
			Color: "auto",
		},
	}
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	viper.SetDefault("backend.command", defaults.Backend.Command)
	viper.SetDefault("backend.extra_args", defaults.Backend.ExtraArgs)
	viper.SetDefault("backend.api_base_url", defaults.Backend.APIBaseURL)
	viper.SetDefault("backend.api_key_env", defaults.Backend.APIKeyEnv)
	viper.SetDefault("backend.model", defaults.Backend.Model)
	viper.SetDefault("backend.timeout_seconds", defaults.Backend.TimeoutSeconds)
	viper.SetDefault("backend.max_tokens", defaults.Backend.MaxTokens)

	viper.SetDefault("server.addr", defaults.Server.Addr)
	viper.SetDefault("server.shutdown_grace_seconds", defaults.Server.ShutdownGraceSeconds)

	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.file", defaults.Logging.File)
	viper.SetDefault("logging.max_size_mb", defaults.Logging.MaxSizeMB)
	viper.SetDefault("logging.max_backups", defaults.Logging.MaxBackups)

	viper.SetDefault("report.color", defaults.Report.Color)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// Get returns the current configuration (convenience function)
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		// Fall back to defaults if unmarshaling fails
		return Default()
	}
	return cfg
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	// Check XDG_CONFIG_HOME first
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "planvet")
	}
	// Fall back to ~/.config/planvet
	home, err := os.UserHomeDir()
	if err != nil {
		return ".planvet"
	}
	return filepath.Join(home, ".config", "planvet")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}
