package extract

// Severity represents the severity of a review suggestion
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// String returns the string representation of the severity
func (s Severity) String() string {
	return string(s)
}

// IsValid returns true if the severity is a recognized value
func (s Severity) IsValid() bool {
	switch s {
	case SeverityInfo, SeverityWarning, SeverityError:
		return true
	}
	return false
}

// Complexity represents the estimated implementation complexity
type Complexity string

const (
	ComplexityLow    Complexity = "low"
	ComplexityMedium Complexity = "medium"
	ComplexityHigh   Complexity = "high"
)

// String returns the string representation of the complexity
func (c Complexity) String() string {
	return string(c)
}

// IsValid returns true if the complexity is a recognized value
func (c Complexity) IsValid() bool {
	switch c {
	case ComplexityLow, ComplexityMedium, ComplexityHigh:
		return true
	}
	return false
}

// Suggestion is a single review suggestion. Free text carries no reliable
// type signal, so suggestions synthesized from a generic list block default
// to Kind "other" and SeverityInfo.
type Suggestion struct {
	Kind           string   `json:"kind"`
	Description    string   `json:"description"`
	Recommendation string   `json:"recommendation,omitempty"`
	Severity       Severity `json:"severity"`
}

// FeasibilityAnalysis captures whether the plan can be executed as written.
type FeasibilityAnalysis struct {
	// Score is 0-100; 50 means "unknown".
	Score               int      `json:"score"`
	Blockers            []string `json:"blockers"`
	Risks               []string `json:"risks"`
	MissingDependencies []string `json:"missing_dependencies"`
}

// ReviewAnalysis captures qualitative review output.
type ReviewAnalysis struct {
	Suggestions  []Suggestion `json:"suggestions"`
	Violations   []string     `json:"violations"`
	Improvements []string     `json:"improvements"`
}

// CompletenessAnalysis captures how fully the plan covers the work.
type CompletenessAnalysis struct {
	// Completeness is 0-100; 50 means "unknown".
	Completeness int        `json:"completeness"`
	Gaps         []string   `json:"gaps"`
	Complexity   Complexity `json:"complexity"`
}

// ValidationRecord is the full structured verdict extracted from one
// backend response. Every field is always populated: lists are empty
// slices rather than nil, and absent values carry the documented defaults,
// so callers never branch on whether extraction ran.
type ValidationRecord struct {
	Feasibility  FeasibilityAnalysis  `json:"feasibility"`
	Review       ReviewAnalysis       `json:"review"`
	Completeness CompletenessAnalysis `json:"completeness"`
}
