package errors

import (
	"fmt"
	"testing"
)

func TestBackendErrorFormatting(t *testing.T) {
	tests := []struct {
		name string
		err  *BackendError
		want string
	}{
		{
			name: "with underlying error",
			err:  NewBackendError("primary", "spawn failed", New("exit status 1")),
			want: "backend primary: spawn failed: exit status 1",
		},
		{
			name: "without underlying error",
			err:  NewBackendError("secondary", "empty response", nil),
			want: "backend secondary: empty response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBackendErrorUnwrap(t *testing.T) {
	base := New("quota exceeded")
	err := NewBackendError("primary", "invoke", base)

	if !Is(err, base) {
		t.Error("expected errors.Is to find the wrapped error")
	}

	var backendErr *BackendError
	if !As(err, &backendErr) {
		t.Fatal("expected errors.As to match *BackendError")
	}
	if backendErr.Backend != "primary" {
		t.Errorf("Backend = %q, want %q", backendErr.Backend, "primary")
	}
}

func TestIsConfiguration(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"no backend available sentinel", ErrNoBackendAvailable, true},
		{"wrapped sentinel", fmt.Errorf("init: %w", ErrNoBackendAvailable), true},
		{"config error type", NewConfigError("bad timeout", nil), true},
		{"backend error", NewBackendError("primary", "failed", nil), false},
		{"plain error", New("boom"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsConfiguration(tt.err); got != tt.want {
				t.Errorf("IsConfiguration() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"plan empty", ErrPlanEmpty, true},
		{"plan not found wrapped", fmt.Errorf("load: %w", ErrPlanNotFound), true},
		{"not confirmed", ErrNotConfirmed, true},
		{"plan error type", NewPlanError("plan.md", "unreadable", nil), true},
		{"internal error", New("index out of range"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUserFacing(tt.err); got != tt.want {
				t.Errorf("IsUserFacing() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPlanErrorFormatting(t *testing.T) {
	err := NewPlanError("docs/plan.md", "not readable", New("permission denied"))
	want := "plan: not readable (docs/plan.md): permission denied"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
