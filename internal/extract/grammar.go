package extract

import (
	"regexp"
	"strings"
)

// The matching grammar is a declarative table so it can be tested and
// extended without touching the extraction control flow.

// scoreRule matches a numeric section: a case-insensitive header token
// with an inline integer value, e.g. "Feasibility: 85" or
// "## Completeness score: 90".
type scoreRule struct {
	name    string
	pattern *regexp.Regexp
}

// categoryRule matches a categorical section with an inline value.
type categoryRule struct {
	name    string
	pattern *regexp.Regexp
}

// listRule matches a section header followed by a block of list-like
// lines. assign writes the harvested items into the record.
type listRule struct {
	name   string
	header *regexp.Regexp
	assign func(rec *ValidationRecord, items []string)
}

// scorePattern builds the inline-value matcher for a numeric header token.
// Tolerates markdown headers, bold markers, and suffixes like " score".
func scorePattern(token string) *regexp.Regexp {
	return regexp.MustCompile(`(?im)^\s*(?:#{1,6}\s*)?\**` + token + `[^:\n]*:\s*\**\s*(\d{1,3})`)
}

// listHeaderPattern builds a matcher for a bare list-section header line.
func listHeaderPattern(token string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)^\s*(?:#{1,6}\s*)?\**` + token + `\**\s*:?\s*$`)
}

var (
	feasibilityScore  = scoreRule{"feasibility score", scorePattern(`feasibility`)}
	completenessScore = scoreRule{"completeness score", scorePattern(`completeness`)}

	complexityRule = categoryRule{
		name:    "complexity",
		pattern: regexp.MustCompile(`(?im)^\s*(?:#{1,6}\s*)?\**complexity[^:\n]*:\s*\**\s*(low|medium|high)`),
	}

	listRules = []listRule{
		{
			name:   "blockers",
			header: listHeaderPattern(`blockers?`),
			assign: func(rec *ValidationRecord, items []string) { rec.Feasibility.Blockers = items },
		},
		{
			name:   "risks",
			header: listHeaderPattern(`risks?`),
			assign: func(rec *ValidationRecord, items []string) { rec.Feasibility.Risks = items },
		},
		{
			name:   "missing dependencies",
			header: listHeaderPattern(`missing\s+dependencies`),
			assign: func(rec *ValidationRecord, items []string) { rec.Feasibility.MissingDependencies = items },
		},
		{
			name:   "gaps",
			header: listHeaderPattern(`gaps?`),
			assign: func(rec *ValidationRecord, items []string) { rec.Completeness.Gaps = items },
		},
		{
			name:   "improvements",
			header: listHeaderPattern(`(?:suggested\s+)?improvements?`),
			assign: func(rec *ValidationRecord, items []string) { rec.Review.Improvements = items },
		},
		{
			name:   "violations",
			header: listHeaderPattern(`violations?`),
			assign: func(rec *ValidationRecord, items []string) { rec.Review.Violations = items },
		},
		{
			name:   "suggestions",
			header: listHeaderPattern(`suggestions?`),
			assign: func(rec *ValidationRecord, items []string) {
				suggestions := make([]Suggestion, 0, len(items))
				for _, item := range items {
					suggestions = append(suggestions, Suggestion{
						Kind:        "other",
						Description: item,
						Severity:    SeverityInfo,
					})
				}
				rec.Review.Suggestions = suggestions
			},
		},
	}

	// appliedChangesHeader is harvested separately via AppliedChanges; the
	// backend reports it after a destructive run.
	appliedChangesHeader = listHeaderPattern(`(?:applied\s+changes|changes\s+applied)`)

	// listItem matches a single list line: "-", "*" or "N." / "N)" bullets.
	// A bare bullet with no content still counts as a list line; its empty
	// item is discarded after stripping.
	listItem = regexp.MustCompile(`^\s*(?:[-*]|\d+[.)])(?:\s+(.*))?$`)
)

// harvestList returns the items of the list block that follows the first
// line matching header. The block ends at the first non-blank, non-list
// line or end of text. Bullets are stripped, items trimmed, empties
// discarded. Returns an empty (non-nil) slice when the section is absent.
func harvestList(lines []string, header *regexp.Regexp) []string {
	items := []string{}

	start := -1
	for i, line := range lines {
		if header.MatchString(line) {
			start = i + 1
			break
		}
	}
	if start < 0 {
		return items
	}

	for _, line := range lines[start:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		m := listItem.FindStringSubmatch(line)
		if m == nil {
			break
		}
		item := strings.TrimSpace(m[1])
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}
