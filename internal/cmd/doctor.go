package cmd

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/planvet/planvet/internal/config"
	"github.com/planvet/planvet/internal/orchestrator"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check backend availability and configuration",
	Long: `Check backend availability and configuration.

Verifies that the primary CLI resolves on PATH and reports its version,
probes the secondary API with an authenticated request, and prints
where configuration and logs live.`,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fmt.Println("planvet doctor")
	fmt.Println()

	if viper.ConfigFileUsed() != "" {
		fmt.Printf("  config file:  %s\n", viper.ConfigFileUsed())
	} else {
		fmt.Printf("  config file:  (none - using defaults, would be %s)\n", config.ConfigFile())
	}
	if cfg.Logging.File != "" {
		fmt.Printf("  log file:     %s\n", cfg.Logging.File)
	} else {
		fmt.Printf("  log file:     (stderr)\n")
	}
	fmt.Println()

	ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
	defer cancel()

	failed := false
	for _, d := range orchestrator.Diagnose(ctx, cfg) {
		mark := "ok"
		if !d.OK {
			mark = "FAIL"
			failed = true
		}
		fmt.Printf("  [%s] %s: %s\n", mark, d.Name, d.Message)
	}

	if version := primaryVersion(cfg.Backend.Command); version != "" {
		fmt.Printf("  [ok] primary version: %s\n", version)
	}

	if failed {
		fmt.Println()
		fmt.Println("At least one backend is unavailable. Validation still works as long as one check passes.")
	}
	return nil
}

// primaryVersion asks the primary CLI for its version. Best effort;
// empty when the binary is missing or uncooperative.
func primaryVersion(command string) string {
	if _, err := exec.LookPath(command); err != nil {
		return ""
	}
	out, err := exec.Command(command, "--version").Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}
