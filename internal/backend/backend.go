// Package backend invokes a single analysis backend for one request and
// classifies the raw result. Two backends are supported: the primary
// interactive-auth CLI (spawned as a child process) and the secondary
// metered chat-completions API. The package performs no retries and holds
// no state; failover policy lives in the orchestrator package.
package backend

import (
	"context"
	"time"
)

// Kind identifies a supported analysis backend.
type Kind string

const (
	// KindPrimary is the local CLI backend, authenticated out-of-band.
	KindPrimary Kind = "primary"
	// KindSecondary is the metered chat-completions API backend.
	KindSecondary Kind = "secondary"
)

// String returns the string representation of the backend kind.
func (k Kind) String() string {
	return string(k)
}

// Failure classifies why an invocation failed. It is the single source of
// truth for failover decisions: callers must not infer failover
// eligibility from Succeeded alone, since a quota error can coexist with
// partial output.
type Failure string

const (
	// FailureNone means the invocation completed normally.
	FailureNone Failure = "none"
	// FailureNotInstalled means the backend executable is missing.
	FailureNotInstalled Failure = "not_installed"
	// FailureTimeout means the invocation exceeded its deadline.
	FailureTimeout Failure = "timeout"
	// FailureQuotaExhausted means the backend reported quota or rate-limit
	// exhaustion. This is the only failure that triggers failover.
	FailureQuotaExhausted Failure = "quota_exhausted"
	// FailureProcessError is any other spawn, transport, or runtime error.
	FailureProcessError Failure = "process_error"
)

// String returns the string representation of the failure kind.
func (f Failure) String() string {
	return string(f)
}

// Request describes one analysis invocation. It is constructed once and
// passed by value; invokers never mutate it.
type Request struct {
	// PlanText is the implementation plan to analyze. Must be non-empty.
	PlanText string
	// WorkingDir is the project directory the backend should inspect.
	WorkingDir string
	// Destructive selects full-write sandboxing for the primary backend.
	// The secondary backend has no sandboxing concept; the flag maps to
	// an analogous prompt framing instead.
	Destructive bool
	// Timeout bounds the whole invocation. Must be positive.
	Timeout time.Duration
	// ExtraContext carries detected technology names, passed through
	// unmodified to bias the prompt.
	ExtraContext string
}

// ExitUnknown is the ExitCode value when no process exit status (or HTTP
// status) was observed.
const ExitUnknown = -1

// Outcome is the raw result of one invocation. Classifiable failures are
// reported here as a Failure tag, never as a Go error.
type Outcome struct {
	// Backend names the backend that produced this outcome.
	Backend Kind
	// Succeeded is true when the backend returned usable output.
	Succeeded bool
	// Stdout is the raw analysis text (or response body).
	Stdout string
	// Stderr is the raw diagnostic output.
	Stderr string
	// Failure classifies the failure; FailureNone on success.
	Failure Failure
	// ExitCode is the process exit status, or the HTTP status for the
	// secondary backend. ExitUnknown when the call never completed.
	ExitCode int
}

// Invoker executes a single backend invocation.
//
// The returned error is reserved for unexpected internal failures
// (malformed requests, impossible states). Anything classifiable, such
// as a missing executable, a timeout, quota exhaustion, or a process
// error, comes back as a tagged Outcome with a nil error.
type Invoker interface {
	Kind() Kind
	Invoke(ctx context.Context, req Request) (Outcome, error)
}
