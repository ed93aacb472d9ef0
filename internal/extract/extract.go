// Package extract converts free-form backend prose into a fixed-schema
// ValidationRecord via pattern matching and defaulting. Extraction never
// fails: ambiguous or absent sections resolve through the defaulting
// policy, so downstream status computation always has a numeric basis.
//
// Extract is pure and referentially transparent: identical input text
// always yields an identical record.
package extract

import (
	"strconv"
	"strings"
)

// defaultScore is the neutral midpoint used when a numeric section is
// absent or unparsable. It signals "unknown" without biasing pass/fail
// downstream, which 0 or 100 would.
const defaultScore = 50

// DegradedMarker is the list entry substituted when no usable backend
// output exists. Consumers can grep for this one token.
const DegradedMarker = "analysis incomplete"

// Extract parses raw backend text into a ValidationRecord. Missing
// numeric sections default to 50, missing complexity to medium, and
// missing list sections to empty slices.
func Extract(raw string) ValidationRecord {
	rec := emptyRecord()

	rec.Feasibility.Score = matchScore(raw, feasibilityScore)
	rec.Completeness.Completeness = matchScore(raw, completenessScore)
	rec.Completeness.Complexity = matchComplexity(raw)

	lines := strings.Split(raw, "\n")
	for _, rule := range listRules {
		rule.assign(&rec, harvestList(lines, rule.header))
	}

	return rec
}

// Degraded returns the canned record substituted when the originating
// invocation produced no usable output (timeout, missing backend, quota
// exhaustion). Extraction of the raw text is skipped entirely.
func Degraded() ValidationRecord {
	rec := emptyRecord()
	rec.Feasibility.Risks = []string{DegradedMarker}
	rec.Completeness.Gaps = []string{DegradedMarker}
	return rec
}

// AppliedChanges harvests the "applied changes" list block a backend
// reports after a destructive run. Empty when absent.
func AppliedChanges(raw string) []string {
	return harvestList(strings.Split(raw, "\n"), appliedChangesHeader)
}

// emptyRecord returns a record with every default applied and every list
// initialized to an empty non-nil slice.
func emptyRecord() ValidationRecord {
	return ValidationRecord{
		Feasibility: FeasibilityAnalysis{
			Score:               defaultScore,
			Blockers:            []string{},
			Risks:               []string{},
			MissingDependencies: []string{},
		},
		Review: ReviewAnalysis{
			Suggestions:  []Suggestion{},
			Violations:   []string{},
			Improvements: []string{},
		},
		Completeness: CompletenessAnalysis{
			Completeness: defaultScore,
			Gaps:         []string{},
			Complexity:   ComplexityMedium,
		},
	}
}

// matchScore finds the rule's inline integer value, clamped to [0,100].
// Returns defaultScore when absent or unparsable.
func matchScore(raw string, rule scoreRule) int {
	m := rule.pattern.FindStringSubmatch(raw)
	if m == nil {
		return defaultScore
	}
	value, err := strconv.Atoi(m[1])
	if err != nil {
		return defaultScore
	}
	if value < 0 {
		return 0
	}
	if value > 100 {
		return 100
	}
	return value
}

// matchComplexity finds the inline complexity value, defaulting to medium.
func matchComplexity(raw string) Complexity {
	m := complexityRule.pattern.FindStringSubmatch(raw)
	if m == nil {
		return ComplexityMedium
	}
	c := Complexity(strings.ToLower(m[1]))
	if !c.IsValid() {
		return ComplexityMedium
	}
	return c
}
