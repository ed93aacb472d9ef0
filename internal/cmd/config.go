package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/planvet/planvet/internal/config"
	"github.com/planvet/planvet/internal/logging"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or modify planvet configuration",
	Long: `View or modify planvet configuration.

Without arguments, displays the current configuration.
Use subcommands to modify settings or create a config file.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value in the user's config file.

Keys use dot notation, e.g.:
  planvet config set backend.timeout_seconds 600
  planvet config set backend.model gpt-4o-mini
  planvet config set logging.level DEBUG

Valid keys:
  backend.command          - Primary backend CLI executable
  backend.api_base_url     - Secondary backend API base URL
  backend.api_key_env      - Env var holding the secondary credential
  backend.model            - Secondary backend model
  backend.timeout_seconds  - Per-invocation timeout in seconds
  backend.max_tokens       - Secondary completion cap (0 = provider default)
  server.addr              - Listen address for planvet serve
  server.shutdown_grace_seconds - Graceful shutdown window
  logging.level            - DEBUG, INFO, WARN, or ERROR
  logging.file             - Log file path (empty = stderr)
  logging.max_size_mb      - Log size before rotation
  logging.max_backups      - Rotated files to keep
  report.color             - auto, always, or never`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the config file path",
	RunE:  runConfigPath,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configPathCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg := config.Get()

	fmt.Println("Current configuration:")
	fmt.Println()

	// Show where config is being read from
	if viper.ConfigFileUsed() != "" {
		fmt.Printf("Config file: %s\n", viper.ConfigFileUsed())
	} else {
		fmt.Printf("Config file: (none - using defaults)\n")
	}
	fmt.Println()

	fmt.Println("backend:")
	fmt.Printf("  command: %s\n", cfg.Backend.Command)
	if len(cfg.Backend.ExtraArgs) > 0 {
		fmt.Printf("  extra_args: %s\n", strings.Join(cfg.Backend.ExtraArgs, " "))
	}
	fmt.Printf("  api_base_url: %s\n", cfg.Backend.APIBaseURL)
	fmt.Printf("  api_key_env: %s", cfg.Backend.APIKeyEnv)
	if cfg.Backend.APIKey() != "" {
		fmt.Printf(" (set)")
	} else {
		fmt.Printf(" (not set)")
	}
	fmt.Println()
	fmt.Printf("  model: %s\n", cfg.Backend.Model)
	fmt.Printf("  timeout_seconds: %d\n", cfg.Backend.TimeoutSeconds)
	fmt.Printf("  max_tokens: %d\n", cfg.Backend.MaxTokens)

	fmt.Println("server:")
	fmt.Printf("  addr: %s\n", cfg.Server.Addr)
	fmt.Printf("  shutdown_grace_seconds: %d\n", cfg.Server.ShutdownGraceSeconds)

	fmt.Println("logging:")
	fmt.Printf("  level: %s\n", cfg.Logging.Level)
	if cfg.Logging.File != "" {
		fmt.Printf("  file: %s\n", cfg.Logging.File)
	} else {
		fmt.Printf("  file: (stderr)\n")
	}
	fmt.Printf("  max_size_mb: %d\n", cfg.Logging.MaxSizeMB)
	fmt.Printf("  max_backups: %d\n", cfg.Logging.MaxBackups)

	fmt.Println("report:")
	fmt.Printf("  color: %s\n", cfg.Report.Color)

	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key := args[0]
	value := args[1]

	// Validate the key exists
	validKeys := map[string]string{
		"backend.command":               "string",
		"backend.api_base_url":          "string",
		"backend.api_key_env":           "string",
		"backend.model":                 "string",
		"backend.timeout_seconds":       "int",
		"backend.max_tokens":            "int",
		"server.addr":                   "string",
		"server.shutdown_grace_seconds": "int",
		"logging.level":                 "string",
		"logging.file":                  "string",
		"logging.max_size_mb":           "int",
		"logging.max_backups":           "int",
		"report.color":                  "string",
	}

	keyType, ok := validKeys[key]
	if !ok {
		return fmt.Errorf("unknown configuration key: %s\nRun 'planvet config set --help' to see valid keys", key)
	}

	// Validate the value based on type
	var typedValue interface{}
	switch keyType {
	case "string":
		if key == "logging.level" {
			upper := strings.ToUpper(value)
			valid := false
			for _, l := range logging.ValidLevels() {
				if upper == l {
					valid = true
					break
				}
			}
			if !valid {
				return fmt.Errorf("invalid value for %s: %s\nValid options: %s",
					key, value, strings.Join(logging.ValidLevels(), ", "))
			}
			value = upper
		}
		if key == "report.color" && value != "auto" && value != "always" && value != "never" {
			return fmt.Errorf("invalid value for %s: %s\nValid options: auto, always, never", key, value)
		}
		typedValue = value
	case "int":
		intVal, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for %s: expected integer", key)
		}
		if intVal < 0 {
			return fmt.Errorf("invalid value for %s: must be non-negative", key)
		}
		typedValue = intVal
	}

	// Ensure config directory exists
	configDir := config.ConfigDir()
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Set the value in viper
	viper.Set(key, typedValue)

	// Write to config file
	configFile := config.ConfigFile()
	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Printf("Set %s = %v\n", key, typedValue)
	fmt.Printf("Config saved to %s\n", configFile)

	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	fmt.Println(config.ConfigFile())
	return nil
}
