// Package proposal derives typed, impact-ranked change proposals from
// free-form backend prose, renders confirmation summaries, and audits
// which proposals the backend actually applied. Proposals are best-effort
// readings of natural language, never ground-truth filesystem diffs, so
// applying them is always gated behind explicit confirmation.
package proposal

import (
	"regexp"
	"strings"
)

// Kind classifies a proposed change.
type Kind string

const (
	KindCreate        Kind = "create"
	KindModify        Kind = "modify"
	KindDelete        Kind = "delete"
	KindDependencyAdd Kind = "dependency_add"
	KindConfigChange  Kind = "config_change"
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	return string(k)
}

// Impact is the coarse severity ranking of a proposed change.
type Impact string

const (
	ImpactLow    Impact = "low"
	ImpactMedium Impact = "medium"
	ImpactHigh   Impact = "high"
)

// String returns the string representation of the impact.
func (i Impact) String() string {
	return string(i)
}

// weight orders impacts for sorting; higher is more severe.
func (i Impact) weight() int {
	switch i {
	case ImpactHigh:
		return 3
	case ImpactMedium:
		return 2
	case ImpactLow:
		return 1
	}
	return 0
}

// Proposal is a single typed change derived from backend prose.
type Proposal struct {
	Kind        Kind   `json:"kind"`
	TargetPath  string `json:"target_path"`
	Description string `json:"description"`
	Diff        string `json:"diff,omitempty"`
	Impact      Impact `json:"impact"`
}

// maxTargetLen guards against capturing prose as a path.
const maxTargetLen = 200

// phraseFamily associates a line-start phrase pattern with a change kind.
// Families are evaluated in order; the first match classifies the line.
type phraseFamily struct {
	kind    Kind
	pattern *regexp.Regexp
}

// familyPattern matches one of the family's phrases at line start (after
// an optional bullet) and captures the remainder of the line.
func familyPattern(words string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)^\s*(?:[-*]\s*|\d+[.)]\s*)?(?:` + words + `)\s*[:\-]?\s+(.+)$`)
}

var phraseFamilies = []phraseFamily{
	{KindCreate, familyPattern(`create|creating|new file`)},
	{KindModify, familyPattern(`modify|modifying|update|updating|edit|editing`)},
	{KindDelete, familyPattern(`delete|deleting|remove|removing`)},
	{KindDependencyAdd, familyPattern(`install|installing|add dependency|adding dependency`)},
	{KindConfigChange, familyPattern(`config|configuration|setting`)},
}

// commentMarkers disqualify a captured target that is really a comment.
var commentMarkers = []string{"#", "//", ";", "<!--"}

// Parse extracts change proposals from raw backend text and attaches any
// fenced diffs whose header paths match a proposal's target. Returns an
// empty (non-nil) slice when no proposals are found.
func Parse(raw string) []Proposal {
	proposals := []Proposal{}

	for _, line := range strings.Split(raw, "\n") {
		for _, family := range phraseFamilies {
			m := family.pattern.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			target := cleanTarget(m[1])
			if target == "" {
				break
			}
			proposals = append(proposals, Proposal{
				Kind:        family.kind,
				TargetPath:  target,
				Description: strings.TrimSpace(line),
				Impact:      classifyImpact(family.kind, target),
			})
			break
		}
	}

	attachDiffs(raw, proposals)
	return proposals
}

// cleanTarget normalizes a captured target path and rejects candidates
// that are empty, comment-prefixed, or too long to plausibly be a path.
func cleanTarget(captured string) string {
	target := strings.TrimSpace(captured)
	target = strings.Trim(target, "`\"'")
	target = strings.TrimSpace(target)

	if target == "" || len(target) > maxTargetLen {
		return ""
	}
	for _, marker := range commentMarkers {
		if strings.HasPrefix(target, marker) {
			return ""
		}
	}
	return target
}

var (
	// fencedBlock captures fenced code blocks with an optional language tag.
	fencedBlock = regexp.MustCompile("(?s)```([a-zA-Z0-9_-]*)\n(.*?)```")

	// diffHeaderPath captures the path from a unified diff header line,
	// with the conventional a/ b/ prefixes stripped.
	diffHeaderPath = regexp.MustCompile(`(?m)^(?:---|\+\+\+)\s+(?:[ab]/)?(\S+)`)
)

// attachDiffs scans fenced code blocks for unified diffs and attaches each
// to the first proposal whose target path substring-matches a header path.
// First match wins; unattached diffs are dropped.
//
// Substring containment can misattach when two targets share a suffix
// (two index.ts files in different directories); that imprecision is
// inherent to matching prose-derived paths against diff headers.
func attachDiffs(raw string, proposals []Proposal) {
	for _, m := range fencedBlock.FindAllStringSubmatch(raw, -1) {
		tag, body := m[1], m[2]
		if tag != "diff" && tag != "patch" && !looksLikeDiff(body) {
			continue
		}

		headers := diffHeaderPath.FindAllStringSubmatch(body, -1)
		if len(headers) == 0 {
			continue
		}

	attach:
		for _, header := range headers {
			headerPath := header[1]
			if headerPath == "/dev/null" {
				continue
			}
			for i := range proposals {
				if pathsOverlap(headerPath, proposals[i].TargetPath) {
					// First match wins. A proposal that already carries a
					// diff keeps it; the newcomer is dropped.
					if proposals[i].Diff == "" {
						proposals[i].Diff = strings.TrimRight(body, "\n")
					}
					break attach
				}
			}
		}
	}
}

// looksLikeDiff reports whether an untagged fenced block is a unified diff.
func looksLikeDiff(body string) bool {
	return strings.Contains(body, "--- ") && strings.Contains(body, "+++ ")
}

// pathsOverlap reports substring containment in either direction,
// case-insensitively.
func pathsOverlap(headerPath, targetPath string) bool {
	h := strings.ToLower(headerPath)
	t := strings.ToLower(targetPath)
	return strings.Contains(h, t) || strings.Contains(t, h)
}
