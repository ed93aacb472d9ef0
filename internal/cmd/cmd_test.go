package cmd

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestRootCommand(t *testing.T) {
	if rootCmd == nil {
		t.Fatal("rootCmd is nil")
	}
	if rootCmd.Use != "planvet" {
		t.Errorf("rootCmd.Use = %q, want %q", rootCmd.Use, "planvet")
	}

	// Check for expected subcommands (compare by Name(), not Use which includes args)
	expectedCmds := []string{"validate", "serve", "watch", "doctor", "config"}
	cmdMap := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		cmdMap[cmd.Name()] = true
	}

	for _, expected := range expectedCmds {
		if !cmdMap[expected] {
			t.Errorf("expected subcommand %q not found", expected)
		}
	}
}

func TestReadPlan(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := readPlan(filepath.Join(t.TempDir(), "missing.md"))
		if err == nil || !strings.Contains(err.Error(), "not found") {
			t.Errorf("err = %v, want plan-not-found", err)
		}
	})
}

func TestDiffPreview(t *testing.T) {
	before := "step one\nstep two\nstep three\n"
	after := "step one\nstep 2\nstep three\n"

	preview := diffPreview(before, after)
	if !strings.Contains(preview, "- step two") {
		t.Errorf("preview missing removed line:\n%s", preview)
	}
	if !strings.Contains(preview, "+ step 2") {
		t.Errorf("preview missing added line:\n%s", preview)
	}
	if strings.Contains(preview, "step three") {
		t.Errorf("preview should omit unchanged lines:\n%s", preview)
	}
}

func TestDiffPreviewTruncates(t *testing.T) {
	var before, after strings.Builder
	for i := 0; i < 100; i++ {
		before.WriteString("old line\n")
		after.WriteString("new line\n")
	}

	preview := diffPreview(before.String(), after.String())
	lines := strings.Count(preview, "\n")
	if lines > maxPreviewLines+1 {
		t.Errorf("preview has %d lines, want at most %d plus ellipsis", lines, maxPreviewLines)
	}
	if !strings.Contains(preview, "...") {
		t.Errorf("truncated preview missing ellipsis:\n%s", preview)
	}
}
