package report

import (
	"strings"
	"testing"

	"github.com/planvet/planvet/internal/backend"
	"github.com/planvet/planvet/internal/extract"
	"github.com/planvet/planvet/internal/orchestrator"
	"github.com/planvet/planvet/internal/practices"
	"github.com/planvet/planvet/internal/proposal"
)

func record(feasibility, completeness int) extract.ValidationRecord {
	rec := extract.Extract("")
	rec.Feasibility.Score = feasibility
	rec.Completeness.Completeness = completeness
	return rec
}

func TestVerdict(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*extract.ValidationRecord)
		want   Verdict
	}{
		{
			name:   "high scores pass",
			mutate: func(r *extract.ValidationRecord) { r.Feasibility.Score = 90; r.Completeness.Completeness = 90 },
			want:   VerdictPass,
		},
		{
			name:   "low feasibility fails",
			mutate: func(r *extract.ValidationRecord) { r.Feasibility.Score = 39; r.Completeness.Completeness = 90 },
			want:   VerdictFail,
		},
		{
			name: "error suggestion fails despite scores",
			mutate: func(r *extract.ValidationRecord) {
				r.Feasibility.Score = 95
				r.Completeness.Completeness = 95
				r.Review.Suggestions = append(r.Review.Suggestions, extract.Suggestion{
					Kind: "other", Description: "broken", Severity: extract.SeverityError,
				})
			},
			want: VerdictFail,
		},
		{
			name:   "mid feasibility warns",
			mutate: func(r *extract.ValidationRecord) { r.Feasibility.Score = 65; r.Completeness.Completeness = 90 },
			want:   VerdictWarn,
		},
		{
			name:   "mid completeness warns",
			mutate: func(r *extract.ValidationRecord) { r.Feasibility.Score = 90; r.Completeness.Completeness = 60 },
			want:   VerdictWarn,
		},
		{
			name: "blockers warn",
			mutate: func(r *extract.ValidationRecord) {
				r.Feasibility.Score = 90
				r.Completeness.Completeness = 90
				r.Feasibility.Blockers = []string{"missing credentials"}
			},
			want: VerdictWarn,
		},
		{
			name: "record violations warn",
			mutate: func(r *extract.ValidationRecord) {
				r.Feasibility.Score = 90
				r.Completeness.Completeness = 90
				r.Review.Violations = []string{"touches generated code"}
			},
			want: VerdictWarn,
		},
		{
			name:   "default record warns",
			mutate: func(r *extract.ValidationRecord) {},
			want:   VerdictWarn,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := extract.Extract("")
			tt.mutate(&rec)
			r := &Report{Result: orchestrator.Result{Record: rec}}
			if got := r.Verdict(); got != tt.want {
				t.Errorf("Verdict() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVerdictIgnoresPracticeFindings(t *testing.T) {
	r := &Report{
		Result: orchestrator.Result{Record: record(90, 90)},
		Violations: []practices.Violation{
			{Technology: "general", Rule: "no secrets", Severity: extract.SeverityError},
		},
	}
	if got := r.Verdict(); got != VerdictPass {
		t.Errorf("Verdict() = %v, want pass (practice findings are render-only)", got)
	}
}

func TestMarkdown(t *testing.T) {
	rec := record(85, 90)
	rec.Feasibility.Blockers = []string{"no database migration plan"}

	r := &Report{
		Plan: "plan.md",
		Result: orchestrator.Result{
			Record: rec,
			Proposals: []proposal.Proposal{
				{Kind: proposal.KindCreate, TargetPath: "src/widget.ts", Impact: proposal.ImpactMedium},
			},
			Provenance: orchestrator.Provenance{
				RequestID: "req-1",
				Backend:   backend.KindPrimary,
			},
		},
		Violations: []practices.Violation{
			{Technology: "go", Rule: "handle errors", Severity: extract.SeverityWarning},
		},
		Technologies: []string{"go", "typescript"},
	}

	md := r.Markdown()

	for _, want := range []string{
		"# Plan validation: plan.md",
		"**Verdict: WARN**",
		"- Feasibility: 85/100",
		"- Completeness: 90/100",
		"no database migration plan",
		"[warning] go: handle errors",
		"src/widget.ts",
		"go, typescript",
		"req-1",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}

	if strings.Contains(md, "## Risks") {
		t.Error("empty list sections should be omitted")
	}
}

func TestMarkdownFallbackFooter(t *testing.T) {
	r := &Report{
		Plan: "plan.md",
		Result: orchestrator.Result{
			Record: record(90, 90),
			Provenance: orchestrator.Provenance{
				RequestID:        "req-2",
				Backend:          backend.KindSecondary,
				FallbackOccurred: true,
				FallbackReason:   "primary backend quota exhausted",
			},
		},
	}
	md := r.Markdown()
	if !strings.Contains(md, "fallback: primary backend quota exhausted") {
		t.Errorf("markdown missing fallback note:\n%s", md)
	}
}

func TestTerminalPlain(t *testing.T) {
	r := &Report{
		Plan:   "plan.md",
		Result: orchestrator.Result{Record: record(90, 90)},
	}

	out := r.Terminal(false)
	if !strings.Contains(out, "PASS") {
		t.Errorf("terminal output missing verdict:\n%s", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Errorf("color disabled but output contains escape codes:\n%s", out)
	}
}
