// Package detect identifies the technologies a plan touches.
// Detection is keyword-driven: a table of patterns maps mentions in the
// plan text to canonical technology names, which the practices catalog
// keys on.
package detect

import "regexp"

// signal maps a text pattern to a canonical technology name.
type signal struct {
	technology string
	pattern    *regexp.Regexp
}

// wordPattern builds a case-insensitive match on any of the given
// word-boundary-delimited alternatives.
func wordPattern(words string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b(?:` + words + `)\b`)
}

// signals is evaluated in order; first mention order is preserved in
// the result.
var signals = []signal{
	{"go", wordPattern(`golang|go\.mod|go\.sum|goroutine`)},
	{"go", regexp.MustCompile(`\b[\w/]+\.go\b`)},
	{"javascript", wordPattern(`javascript|node\.?js|npm|package\.json|yarn|pnpm`)},
	{"javascript", regexp.MustCompile(`(?i)\b[\w/]+\.[mc]?js\b`)},
	{"typescript", wordPattern(`typescript|tsconfig`)},
	{"typescript", regexp.MustCompile(`(?i)\b[\w/]+\.tsx?\b`)},
	{"python", wordPattern(`python|pip|pyproject|requirements\.txt|virtualenv|venv`)},
	{"python", regexp.MustCompile(`(?i)\b[\w/]+\.py\b`)},
	{"rust", wordPattern(`rust|cargo|cargo\.toml|crate`)},
	{"java", wordPattern(`java|maven|gradle|pom\.xml`)},
	{"ruby", wordPattern(`ruby|gemfile|bundler|rails`)},
	{"react", wordPattern(`react|jsx|next\.?js`)},
	{"docker", wordPattern(`docker|dockerfile|container image|docker-compose`)},
	{"kubernetes", wordPattern(`kubernetes|k8s|kubectl|helm`)},
	{"sql", wordPattern(`sql|postgres|postgresql|mysql|sqlite|database migration`)},
	{"terraform", wordPattern(`terraform|\.tf\b|hcl`)},
	{"shell", wordPattern(`bash|shell script|\.sh\b`)},
	{"git", wordPattern(`git branch|git rebase|git merge|gitignore`)},
	{"ci", wordPattern(`github actions|gitlab ci|jenkins|circleci|workflows?/[\w-]+\.ya?ml`)},
}

// Detect returns the technologies mentioned in the plan text, in first
// mention order, deduplicated. The result is never nil.
func Detect(planText string) []string {
	type hit struct {
		technology string
		index      int
	}

	seen := make(map[string]int)
	hits := []hit{}

	for _, sig := range signals {
		loc := sig.pattern.FindStringIndex(planText)
		if loc == nil {
			continue
		}
		if prev, ok := seen[sig.technology]; ok {
			if loc[0] < hits[prev].index {
				hits[prev].index = loc[0]
			}
			continue
		}
		seen[sig.technology] = len(hits)
		hits = append(hits, hit{technology: sig.technology, index: loc[0]})
	}

	// Order by first mention, not by table order.
	for i := 1; i < len(hits); i++ {
		for j := i; j > 0 && hits[j].index < hits[j-1].index; j-- {
			hits[j], hits[j-1] = hits[j-1], hits[j]
		}
	}

	out := make([]string, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.technology)
	}
	return out
}
