// Package report renders validation results for humans. The markdown
// renderer is plain data in, string out; the terminal renderer layers
// lipgloss styling on top. Verdict computation looks only at the
// extracted record, never at practice violations or proposals.
package report

import (
	"fmt"
	"strings"

	"github.com/planvet/planvet/internal/extract"
	"github.com/planvet/planvet/internal/orchestrator"
	"github.com/planvet/planvet/internal/practices"
	"github.com/planvet/planvet/internal/proposal"
)

// Verdict is the overall validation status.
type Verdict string

const (
	VerdictPass Verdict = "pass"
	VerdictWarn Verdict = "warn"
	VerdictFail Verdict = "fail"
)

// String returns the string representation of the verdict
func (v Verdict) String() string {
	return string(v)
}

// failThreshold and warnThreshold bound the score bands for the verdict.
const (
	failThreshold = 40
	warnThreshold = 70
)

// Report bundles everything one validation produced for rendering.
type Report struct {
	// Plan is the plan file path or a short label for the plan text.
	Plan string
	// Result is the orchestrator output: outcome, record, proposals,
	// provenance.
	Result orchestrator.Result
	// Violations are practice-catalog findings, merged in at render
	// time only.
	Violations []practices.Violation
	// Technologies are the detected technology names, first mention
	// order.
	Technologies []string
}

// Verdict computes the overall status from the record alone.
// Fail: feasibility below 40, or any error-severity suggestion.
// Warn: feasibility or completeness below 70, or any blockers or
// violations in the record. Pass otherwise.
func (r *Report) Verdict() Verdict {
	rec := r.Result.Record

	if rec.Feasibility.Score < failThreshold {
		return VerdictFail
	}
	for _, s := range rec.Review.Suggestions {
		if s.Severity == extract.SeverityError {
			return VerdictFail
		}
	}

	if rec.Feasibility.Score < warnThreshold || rec.Completeness.Completeness < warnThreshold {
		return VerdictWarn
	}
	if len(rec.Feasibility.Blockers) > 0 || len(rec.Review.Violations) > 0 {
		return VerdictWarn
	}
	return VerdictPass
}

// Markdown renders the full report as plain markdown.
func (r *Report) Markdown() string {
	rec := r.Result.Record
	var sb strings.Builder

	fmt.Fprintf(&sb, "# Plan validation: %s\n\n", r.Plan)
	fmt.Fprintf(&sb, "**Verdict: %s**\n\n", strings.ToUpper(r.Verdict().String()))

	fmt.Fprintf(&sb, "## Scores\n\n")
	fmt.Fprintf(&sb, "- Feasibility: %d/100\n", rec.Feasibility.Score)
	fmt.Fprintf(&sb, "- Completeness: %d/100\n", rec.Completeness.Completeness)
	fmt.Fprintf(&sb, "- Complexity: %s\n\n", rec.Completeness.Complexity)

	writeList(&sb, "Blockers", rec.Feasibility.Blockers)
	writeList(&sb, "Risks", rec.Feasibility.Risks)
	writeList(&sb, "Missing dependencies", rec.Feasibility.MissingDependencies)
	writeList(&sb, "Gaps", rec.Completeness.Gaps)
	writeList(&sb, "Violations", rec.Review.Violations)
	writeList(&sb, "Improvements", rec.Review.Improvements)

	if len(rec.Review.Suggestions) > 0 {
		fmt.Fprintf(&sb, "## Suggestions\n\n")
		for _, s := range rec.Review.Suggestions {
			fmt.Fprintf(&sb, "- [%s] %s\n", s.Severity, s.Description)
			if s.Recommendation != "" {
				fmt.Fprintf(&sb, "  - %s\n", s.Recommendation)
			}
		}
		sb.WriteString("\n")
	}

	if len(r.Violations) > 0 {
		fmt.Fprintf(&sb, "## Practice findings\n\n")
		for _, v := range r.Violations {
			fmt.Fprintf(&sb, "- %s\n", v.String())
		}
		sb.WriteString("\n")
	}

	if len(r.Result.Proposals) > 0 {
		fmt.Fprintf(&sb, "## Proposed changes\n\n")
		sb.WriteString(proposal.Summarize(r.Result.Proposals))
		sb.WriteString("\n")
	}

	if len(r.Technologies) > 0 {
		fmt.Fprintf(&sb, "Technologies: %s\n\n", strings.Join(r.Technologies, ", "))
	}

	prov := r.Result.Provenance
	fmt.Fprintf(&sb, "---\n\nBackend: %s", prov.Backend)
	if prov.FallbackOccurred {
		fmt.Fprintf(&sb, " (fallback: %s)", prov.FallbackReason)
	}
	fmt.Fprintf(&sb, " · Request: %s\n", prov.RequestID)

	return sb.String()
}

// writeList renders a non-empty list as a markdown section. Empty lists
// are omitted entirely.
func writeList(sb *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(sb, "## %s\n\n", title)
	for _, item := range items {
		fmt.Fprintf(sb, "- %s\n", item)
	}
	sb.WriteString("\n")
}
