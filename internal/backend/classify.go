package backend

import (
	"context"
	"errors"
	"os/exec"
	"strings"
)

// quotaPhrases are matched case-insensitively against combined
// stdout+stderr. A match forces FailureQuotaExhausted regardless of the
// process exit code, since backends frequently exit non-zero with partial
// output when they hit a limit.
//
// The bare word "billing" is deliberately absent: plan text echoed back by
// a backend can legitimately discuss billing features, and matching it
// would fail over on healthy output. Only the exact operator phrase
// "billing hard limit" is matched. The digits 429 get the same treatment:
// a healthy analysis can mention port 4290 or a retry-on-429 task, so only
// the status-line and status-code renderings match.
var quotaPhrases = []string{
	"quota exceeded",
	"quota exhausted",
	"out of quota",
	"insufficient_quota",
	"rate limit",
	"rate-limit",
	"too many requests",
	"429 too many requests",
	"status 429",
	"status code 429",
	"resource exhausted",
	"resource_exhausted",
	"usage limit",
	"billing hard limit",
}

// IsQuotaExhausted reports whether the combined backend output contains a
// known quota or rate-limit phrase.
func IsQuotaExhausted(output string) bool {
	lowered := strings.ToLower(output)
	for _, phrase := range quotaPhrases {
		if strings.Contains(lowered, phrase) {
			return true
		}
	}
	return false
}

// classifyProcessError maps a process run error to a Failure tag.
// Quota matching happens before this is consulted; see claude.go.
func classifyProcessError(ctx context.Context, err error) Failure {
	if err == nil {
		return FailureNone
	}

	// A missing executable surfaces as *exec.Error wrapping ErrNotFound.
	// It is distinguished from generic spawn errors so the orchestrator
	// can route straight to the secondary backend.
	var execErr *exec.Error
	if errors.As(err, &execErr) && errors.Is(execErr.Err, exec.ErrNotFound) {
		return FailureNotInstalled
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return FailureTimeout
	}

	return FailureProcessError
}
