package proposal

import (
	"fmt"
	"sort"
	"strings"
)

// Confirmation is the gate presented before any proposal is applied.
type Confirmation struct {
	// Message is the human-readable confirmation prompt.
	Message string `json:"message"`
	// RequiresApproval is true whenever at least one proposal exists,
	// regardless of impact. An unnecessary prompt is far cheaper than an
	// unreviewed destructive change.
	RequiresApproval bool `json:"requires_approval"`
	// HighImpactCount is the number of high-impact proposals.
	HighImpactCount int `json:"high_impact_count"`
}

// Audit is the post-hoc comparison of proposals against the changes the
// backend reported as applied.
type Audit struct {
	Succeeded bool     `json:"succeeded"`
	Applied   []string `json:"applied"`
	Failed    []string `json:"failed"`
	// Partial is true when some proposals were applied and others were not.
	Partial bool `json:"partial"`
}

// Summarize renders proposals grouped by impact, highest first, with any
// attached diffs appended verbatim.
func Summarize(proposals []Proposal) string {
	if len(proposals) == 0 {
		return "No changes proposed.\n"
	}

	ordered := make([]Proposal, len(proposals))
	copy(ordered, proposals)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Impact.weight() > ordered[j].Impact.weight()
	})

	var sb strings.Builder
	fmt.Fprintf(&sb, "Proposed changes (%d):\n", len(ordered))

	currentImpact := Impact("")
	for _, p := range ordered {
		if p.Impact != currentImpact {
			currentImpact = p.Impact
			fmt.Fprintf(&sb, "\n%s impact:\n", strings.ToUpper(p.Impact.String()))
		}
		fmt.Fprintf(&sb, "  [%s] %s\n", p.Kind, p.TargetPath)
		if p.Description != "" && p.Description != p.TargetPath {
			fmt.Fprintf(&sb, "        %s\n", p.Description)
		}
	}

	for _, p := range ordered {
		if p.Diff != "" {
			fmt.Fprintf(&sb, "\n--- diff for %s ---\n%s\n", p.TargetPath, p.Diff)
		}
	}

	return sb.String()
}

// RequestConfirmation builds the approval gate for a proposal list.
// A non-empty list always requires approval, even when every proposal is
// low impact.
func RequestConfirmation(proposals []Proposal) Confirmation {
	if len(proposals) == 0 {
		return Confirmation{
			Message:          "No changes proposed; nothing to apply.",
			RequiresApproval: false,
		}
	}

	highCount := 0
	for _, p := range proposals {
		if p.Impact == ImpactHigh {
			highCount++
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "About to apply %d proposed change(s).\n", len(proposals))
	if highCount > 0 {
		fmt.Fprintf(&sb, "Warning: %d high-impact change(s) touch sensitive files or delete content. Review carefully before approving.\n", highCount)
	}
	sb.WriteString(Summarize(proposals))

	return Confirmation{
		Message:          sb.String(),
		RequiresApproval: true,
		HighImpactCount:  highCount,
	}
}

// AuditApplied matches each proposal against the backend-reported applied
// changes by case-insensitive substring containment of the target path.
func AuditApplied(proposals []Proposal, appliedDescriptions []string) Audit {
	audit := Audit{
		Applied: []string{},
		Failed:  []string{},
	}

	lowered := make([]string, len(appliedDescriptions))
	for i, desc := range appliedDescriptions {
		lowered[i] = strings.ToLower(desc)
	}

	for _, p := range proposals {
		target := strings.ToLower(p.TargetPath)
		found := false
		for _, desc := range lowered {
			if strings.Contains(desc, target) {
				found = true
				break
			}
		}
		if found {
			audit.Applied = append(audit.Applied, p.TargetPath)
		} else {
			audit.Failed = append(audit.Failed, p.TargetPath)
		}
	}

	audit.Succeeded = len(audit.Failed) == 0
	audit.Partial = len(audit.Applied) > 0 && len(audit.Failed) > 0
	return audit
}
