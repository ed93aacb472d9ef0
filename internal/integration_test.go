// Package internal contains integration tests that verify the packages
// compose correctly: detection feeding the backend request, extraction
// feeding the report, and failover surfacing in provenance.
package internal

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/planvet/planvet/internal/backend"
	"github.com/planvet/planvet/internal/detect"
	"github.com/planvet/planvet/internal/orchestrator"
	"github.com/planvet/planvet/internal/practices"
	"github.com/planvet/planvet/internal/proposal"
	"github.com/planvet/planvet/internal/report"
)

// scriptedInvoker replays canned outcomes in order.
type scriptedInvoker struct {
	kind     backend.Kind
	outcomes []backend.Outcome
	requests []backend.Request
}

func (s *scriptedInvoker) Kind() backend.Kind { return s.kind }

func (s *scriptedInvoker) Invoke(ctx context.Context, req backend.Request) (backend.Outcome, error) {
	s.requests = append(s.requests, req)
	i := len(s.requests) - 1
	if i >= len(s.outcomes) {
		i = len(s.outcomes) - 1
	}
	out := s.outcomes[i]
	out.Backend = s.kind
	return out, nil
}

const planText = `Add a dashboard widget.

1. Create src/widget.tsx with the rendering logic.
2. Update package.json with the charting dependency.
3. Skip the flaky integration tests until the widget settles.
`

const analysisText = `Feasibility: 75
Completeness: 80
Complexity: medium

Blockers:
- charting library not yet selected

create: src/widget.tsx
modify: package.json
`

func TestValidationPipeline(t *testing.T) {
	technologies := detect.Detect(planText)
	if len(technologies) == 0 {
		t.Fatal("no technologies detected")
	}

	violations, err := practices.Check(technologies, planText)
	if err != nil {
		t.Fatalf("practices.Check: %v", err)
	}
	if len(violations) == 0 {
		t.Fatal("expected a practice violation for skipping tests")
	}

	primary := &scriptedInvoker{
		kind:     backend.KindPrimary,
		outcomes: []backend.Outcome{{Succeeded: true, Stdout: analysisText}},
	}
	session := orchestrator.NewSessionWith(primary, nil, nil)

	res, err := session.Execute(context.Background(), orchestrator.Request{
		Request: backend.Request{
			PlanText:     planText,
			Timeout:      time.Minute,
			ExtraContext: strings.Join(technologies, ", "),
		},
		Propose: true,
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if res.Record.Feasibility.Score != 75 || res.Record.Completeness.Completeness != 80 {
		t.Errorf("scores = %d/%d, want 75/80",
			res.Record.Feasibility.Score, res.Record.Completeness.Completeness)
	}
	if len(res.Record.Feasibility.Blockers) != 1 {
		t.Errorf("blockers = %v", res.Record.Feasibility.Blockers)
	}
	if len(res.Proposals) != 2 {
		t.Fatalf("proposals = %+v, want create + modify", res.Proposals)
	}
	if res.Proposals[1].Impact != proposal.ImpactHigh {
		t.Errorf("package.json proposal impact = %v, want high", res.Proposals[1].Impact)
	}

	// The detected technologies ride along to the backend unmodified.
	if len(primary.requests) != 1 || primary.requests[0].ExtraContext != strings.Join(technologies, ", ") {
		t.Errorf("backend saw ExtraContext %q", primary.requests[0].ExtraContext)
	}

	rep := &report.Report{
		Plan:         "plan.md",
		Result:       res,
		Violations:   violations,
		Technologies: technologies,
	}
	if got := rep.Verdict(); got != report.VerdictWarn {
		t.Errorf("verdict = %v, want warn (record carries blockers)", got)
	}
	md := rep.Markdown()
	for _, want := range []string{"75/100", "charting library not yet selected", "src/widget.tsx"} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
}

func TestValidationPipelineFailover(t *testing.T) {
	primary := &scriptedInvoker{
		kind:     backend.KindPrimary,
		outcomes: []backend.Outcome{{Failure: backend.FailureQuotaExhausted, Stderr: "usage limit reached"}},
	}
	secondary := &scriptedInvoker{
		kind:     backend.KindSecondary,
		outcomes: []backend.Outcome{{Succeeded: true, Stdout: analysisText}},
	}
	session := orchestrator.NewSessionWith(primary, secondary, nil)

	res, err := session.Execute(context.Background(), orchestrator.Request{
		Request: backend.Request{PlanText: planText, Timeout: time.Minute},
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if res.Outcome.Backend != backend.KindSecondary || !res.Outcome.Succeeded {
		t.Errorf("outcome = %+v, want secondary success", res.Outcome)
	}

	rep := &report.Report{Plan: "plan.md", Result: res}
	md := rep.Markdown()
	if !strings.Contains(md, "fallback: primary backend quota exhausted") {
		t.Errorf("markdown missing fallback provenance:\n%s", md)
	}
}
