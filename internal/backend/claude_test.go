package backend

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/planvet/planvet/internal/errors"
)

func TestBuildArgs(t *testing.T) {
	inv := NewClaudeInvoker("claude", []string{"--model", "opus"})

	t.Run("read-only sandbox by default", func(t *testing.T) {
		args := inv.buildArgs(Request{PlanText: "p"}, "the prompt")

		wantPrefix := []string{"-p", "--permission-mode", "plan", "--model", "opus"}
		if !slices.Equal(args[:len(wantPrefix)], wantPrefix) {
			t.Errorf("args = %v, want prefix %v", args, wantPrefix)
		}
		if args[len(args)-1] != "the prompt" {
			t.Errorf("prompt should be the final argument, got %v", args)
		}
	})

	t.Run("destructive selects write mode", func(t *testing.T) {
		args := inv.buildArgs(Request{PlanText: "p", Destructive: true}, "x")
		if !slices.Contains(args, "acceptEdits") {
			t.Errorf("expected acceptEdits permission mode in %v", args)
		}
	})
}

func TestClaudeInvokerValidation(t *testing.T) {
	t.Run("empty command", func(t *testing.T) {
		inv := &ClaudeInvoker{}
		if _, err := inv.Invoke(context.Background(), Request{PlanText: "p", Timeout: time.Second}); err == nil {
			t.Error("expected error for empty command")
		}
	})

	t.Run("non-positive timeout", func(t *testing.T) {
		inv := NewClaudeInvoker("claude", nil)
		if _, err := inv.Invoke(context.Background(), Request{PlanText: "p"}); err == nil {
			t.Error("expected error for zero timeout")
		}
	})

	t.Run("blank plan text", func(t *testing.T) {
		inv := NewClaudeInvoker("claude", nil)
		_, err := inv.Invoke(context.Background(), Request{PlanText: "  \n", Timeout: time.Second})
		if !errors.Is(err, errors.ErrPlanEmpty) {
			t.Errorf("err = %v, want ErrPlanEmpty", err)
		}
	})
}

func TestClaudeInvokerNotInstalled(t *testing.T) {
	inv := NewClaudeInvoker("planvet-test-no-such-binary", nil)

	outcome, err := inv.Invoke(context.Background(), Request{PlanText: "p", Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("Invoke returned unexpected error: %v", err)
	}
	if outcome.Failure != FailureNotInstalled {
		t.Errorf("Failure = %v, want %v", outcome.Failure, FailureNotInstalled)
	}
	if outcome.Succeeded {
		t.Error("Succeeded should be false for a missing executable")
	}
}

func TestClaudeInvokerCapturesOutput(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("relies on echo")
	}

	// echo prints its arguments, so the captured stdout ends with the prompt.
	inv := NewClaudeInvoker("echo", nil)
	req := Request{PlanText: "Ship the widget service.", Timeout: 10 * time.Second}

	outcome, err := inv.Invoke(context.Background(), req)
	if err != nil {
		t.Fatalf("Invoke returned unexpected error: %v", err)
	}
	if !outcome.Succeeded {
		t.Fatalf("Succeeded = false, failure = %v, stderr = %q", outcome.Failure, outcome.Stderr)
	}
	if outcome.Failure != FailureNone {
		t.Errorf("Failure = %v, want %v", outcome.Failure, FailureNone)
	}
	if !strings.Contains(outcome.Stdout, "Ship the widget service.") {
		t.Errorf("stdout should contain the plan text, got %q", outcome.Stdout)
	}
	if outcome.ExitCode != 0 {
		t.Errorf("ExitCode = %d, want 0", outcome.ExitCode)
	}
}

func TestClaudeInvokerTimeout(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("relies on sleep")
	}

	// A stand-in backend that ignores its arguments and outlives the deadline.
	script := filepath.Join(t.TempDir(), "slow-backend")
	if err := os.WriteFile(script, []byte("#!/bin/sh\nsleep 30\n"), 0o755); err != nil {
		t.Fatalf("writing stub backend: %v", err)
	}
	inv := NewClaudeInvoker(script, nil)

	start := time.Now()
	outcome, err := inv.Invoke(context.Background(), Request{PlanText: "p", Timeout: 200 * time.Millisecond})
	if err != nil {
		t.Fatalf("Invoke returned unexpected error: %v", err)
	}
	if outcome.Failure != FailureTimeout {
		t.Errorf("Failure = %v, want %v", outcome.Failure, FailureTimeout)
	}
	if elapsed := time.Since(start); elapsed > 15*time.Second {
		t.Errorf("invocation took %v; graceful termination did not engage", elapsed)
	}
}
