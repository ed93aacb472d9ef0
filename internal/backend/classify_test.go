package backend

import (
	"context"
	"errors"
	"os/exec"
	"testing"
	"time"
)

func TestIsQuotaExhausted(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   bool
	}{
		{"http status line", "429 Too Many Requests", true},
		{"rate limit phrase", "Error: rate limit reached for requests", true},
		{"hyphenated rate limit", "upstream rate-limited the call", true},
		{"quota exceeded", "Quota exceeded for quota metric", true},
		{"insufficient quota code", `{"error":{"code":"insufficient_quota"}}`, true},
		{"resource exhausted grpc", "code = RESOURCE_EXHAUSTED desc = exhausted", true},
		{"usage limit", "You have hit your usage limit for this session", true},
		{"billing hard limit", "billing hard limit has been reached", true},
		{"mixed case", "TOO MANY REQUESTS", true},
		{"status code rendering", "upstream returned status 429", true},
		{"unknown flag is not quota", "error: unknown flag --frobnicate", false},
		{"port number is not quota", "the service listens on port 4290", false},
		{"retry task is not quota", "add retry logic for 429 responses from the API", false},
		{"plain billing prose is not quota", "the plan adds a billing page and invoice export", false},
		{"empty", "", false},
		{"healthy output", "Feasibility score: 90\nBlockers:\n- none", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsQuotaExhausted(tt.output); got != tt.want {
				t.Errorf("IsQuotaExhausted(%q) = %v, want %v", tt.output, got, tt.want)
			}
		})
	}
}

func TestClassifyProcessError(t *testing.T) {
	background := context.Background()

	expired, cancel := context.WithTimeout(background, time.Nanosecond)
	defer cancel()
	<-expired.Done()

	tests := []struct {
		name string
		ctx  context.Context
		err  error
		want Failure
	}{
		{
			name: "nil error",
			ctx:  background,
			err:  nil,
			want: FailureNone,
		},
		{
			name: "missing executable",
			ctx:  background,
			err:  &exec.Error{Name: "claude", Err: exec.ErrNotFound},
			want: FailureNotInstalled,
		},
		{
			name: "generic spawn error is not not-installed",
			ctx:  background,
			err:  &exec.Error{Name: "claude", Err: errors.New("permission denied")},
			want: FailureProcessError,
		},
		{
			name: "deadline exceeded context",
			ctx:  expired,
			err:  errors.New("signal: terminated"),
			want: FailureTimeout,
		},
		{
			name: "exit error",
			ctx:  background,
			err:  errors.New("exit status 2"),
			want: FailureProcessError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyProcessError(tt.ctx, tt.err); got != tt.want {
				t.Errorf("classifyProcessError() = %v, want %v", got, tt.want)
			}
		})
	}
}
