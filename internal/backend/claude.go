package backend

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"github.com/planvet/planvet/internal/errors"
)

// termGrace is how long a timed-out process gets to exit after SIGTERM
// before it is killed.
const termGrace = 5 * time.Second

// ClaudeInvoker runs the primary backend as a one-shot child process.
// The process is non-interactive: the prompt goes in as an argument,
// stdout and stderr are captured separately, and no stdin is attached.
type ClaudeInvoker struct {
	// Command is the CLI executable name or path.
	Command string
	// ExtraArgs are appended after the built argument set.
	ExtraArgs []string
	// Grace overrides the SIGTERM-to-SIGKILL window. Zero means termGrace.
	Grace time.Duration
}

// NewClaudeInvoker creates a process invoker for the given CLI command.
func NewClaudeInvoker(command string, extraArgs []string) *ClaudeInvoker {
	return &ClaudeInvoker{Command: command, ExtraArgs: extraArgs}
}

// Kind returns KindPrimary.
func (c *ClaudeInvoker) Kind() Kind {
	return KindPrimary
}

// buildArgs assembles the argument surface: print mode, sandbox mode by
// destructiveness, then extra args and the prompt. The working directory
// is set on the command itself, not passed as a flag.
func (c *ClaudeInvoker) buildArgs(req Request, prompt string) []string {
	args := []string{"-p"}
	if req.Destructive {
		args = append(args, "--permission-mode", "acceptEdits")
	} else {
		args = append(args, "--permission-mode", "plan")
	}
	args = append(args, c.ExtraArgs...)
	args = append(args, prompt)
	return args
}

// Invoke runs the CLI once with the analysis prompt and classifies the
// result. Timeout enforcement is two-stage: context cancellation sends
// SIGTERM, and the process is killed if it has not exited within the
// grace window.
func (c *ClaudeInvoker) Invoke(ctx context.Context, req Request) (Outcome, error) {
	if c.Command == "" {
		return Outcome{}, fmt.Errorf("claude invoker: command is empty")
	}
	if strings.TrimSpace(req.PlanText) == "" {
		return Outcome{}, fmt.Errorf("claude invoker: %w", errors.ErrPlanEmpty)
	}
	if req.Timeout <= 0 {
		return Outcome{}, fmt.Errorf("claude invoker: timeout must be positive, got %v", req.Timeout)
	}

	runCtx, cancel := context.WithTimeout(ctx, req.Timeout)
	defer cancel()

	prompt := BuildPrompt(req)
	cmd := exec.CommandContext(runCtx, c.Command, c.buildArgs(req, prompt)...)
	cmd.Dir = req.WorkingDir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	// Graceful-then-forceful cancellation: SIGTERM on context expiry,
	// SIGKILL via WaitDelay if the process lingers.
	cmd.Cancel = func() error {
		return cmd.Process.Signal(syscall.SIGTERM)
	}
	cmd.WaitDelay = c.Grace
	if cmd.WaitDelay <= 0 {
		cmd.WaitDelay = termGrace
	}

	runErr := cmd.Run()

	outcome := Outcome{
		Backend:  KindPrimary,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: ExitUnknown,
	}
	if cmd.ProcessState != nil {
		outcome.ExitCode = cmd.ProcessState.ExitCode()
	}

	// Quota phrases win over the exit status: a quota-limited run often
	// exits non-zero (or even zero) with partial output.
	if IsQuotaExhausted(outcome.Stdout + "\n" + outcome.Stderr) {
		outcome.Failure = FailureQuotaExhausted
		return outcome, nil
	}

	outcome.Failure = classifyProcessError(runCtx, runErr)
	outcome.Succeeded = outcome.Failure == FailureNone
	return outcome, nil
}
