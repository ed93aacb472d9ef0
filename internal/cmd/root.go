package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/planvet/planvet/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "planvet",
	Short: "Validate implementation plans before execution",
	Long: `Planvet runs implementation plans through an analysis backend and
turns the free-form response into a structured verdict: feasibility and
completeness scores, blockers, risks, gaps, and optionally a set of
typed change proposals gated behind explicit confirmation.

The primary backend is the locally installed claude CLI. When it runs
out of quota, the request fails over once to a metered chat-completions
API; later requests try the CLI again.`,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/planvet/config.yaml)")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
}

func initConfig() {
	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath("$HOME/.config/planvet")
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("PLANVET")
	// Replace dots with underscores for nested keys in env vars
	// e.g., PLANVET_BACKEND_TIMEOUT_SECONDS for backend.timeout_seconds
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}
