package backend

import (
	"fmt"
	"strings"
)

// analysisInstructions asks the backend to structure its answer around the
// section headers the extraction grammar knows how to find. The backend is
// free to ignore this; extraction defaults cover whatever is missing.
const analysisInstructions = `You are reviewing a written implementation plan.

Respond with your analysis using these sections:

Feasibility score: <0-100>
Completeness score: <0-100>
Complexity: <low|medium|high>
Blockers:
- one per line
Risks:
- one per line
Missing dependencies:
- one per line
Gaps:
- one per line
Improvements:
- one per line
Violations:
- one per line
Suggestions:
- one per line

If the plan calls for file changes, list them one per line in the form
"create: path", "modify: path", "delete: path", "install: package" or
"config: setting", with unified diffs in fenced code blocks where useful.`

// readOnlyFraming is the prompt-level analogue of sandboxed execution for
// backends without a native sandbox.
const readOnlyFraming = "Analysis only. Do not modify any files; describe changes instead."

const destructiveFraming = "You may propose concrete file changes. List every change you would apply."

// BuildPromptPair returns the system and user messages for the
// chat-completions backend.
func BuildPromptPair(req Request) (system, user string) {
	framing := readOnlyFraming
	if req.Destructive {
		framing = destructiveFraming
	}
	system = analysisInstructions + "\n\n" + framing

	var sb strings.Builder
	if req.ExtraContext != "" {
		fmt.Fprintf(&sb, "Detected technologies: %s\n\n", req.ExtraContext)
	}
	sb.WriteString("Implementation plan:\n\n")
	sb.WriteString(req.PlanText)
	user = sb.String()
	return system, user
}

// BuildPrompt returns the single combined prompt for the CLI backend,
// which takes one prompt argument rather than a message pair.
func BuildPrompt(req Request) string {
	system, user := BuildPromptPair(req)
	return system + "\n\n" + user
}
