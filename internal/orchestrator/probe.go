package orchestrator

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/planvet/planvet/internal/backend"
	"github.com/planvet/planvet/internal/config"
	"github.com/planvet/planvet/internal/errors"
)

// probeCommand checks that the primary CLI resolves on PATH.
func probeCommand(command string) error {
	if command == "" {
		return errors.ErrPrimaryNotInstalled
	}
	if _, err := exec.LookPath(command); err != nil {
		return fmt.Errorf("%w: %q not found on PATH", errors.ErrPrimaryNotInstalled, command)
	}
	return nil
}

// Diagnostic is the result of one availability check.
type Diagnostic struct {
	Name    string
	OK      bool
	Message string
}

// Diagnose runs availability checks against both configured backends.
// Unlike Initialize, which treats credential presence as the secondary
// signal, Diagnose makes a live authenticated probe of the API.
func Diagnose(ctx context.Context, cfg *config.Config) []Diagnostic {
	diags := make([]Diagnostic, 0, 2)

	if err := probeCommand(cfg.Backend.Command); err != nil {
		diags = append(diags, Diagnostic{
			Name:    "primary backend",
			Message: err.Error(),
		})
	} else {
		diags = append(diags, Diagnostic{
			Name:    "primary backend",
			OK:      true,
			Message: fmt.Sprintf("%q found on PATH", cfg.Backend.Command),
		})
	}

	key := cfg.Backend.APIKey()
	if key == "" {
		diags = append(diags, Diagnostic{
			Name:    "secondary backend",
			Message: fmt.Sprintf("%s is not set", cfg.Backend.APIKeyEnv),
		})
		return diags
	}

	chat := backend.NewChatInvoker(cfg.Backend.APIBaseURL, key, cfg.Backend.Model, cfg.Backend.MaxTokens)
	if err := chat.Available(ctx); err != nil {
		diags = append(diags, Diagnostic{
			Name:    "secondary backend",
			Message: err.Error(),
		})
	} else {
		diags = append(diags, Diagnostic{
			Name:    "secondary backend",
			OK:      true,
			Message: fmt.Sprintf("API reachable at %s", cfg.Backend.APIBaseURL),
		})
	}
	return diags
}
