package proposal

import (
	"path"
	"strings"
)

// sensitiveMarkers are path or filename fragments that mark a change as
// high impact: dependency manifests, build and compiler configuration,
// secrets, and entry points.
var sensitiveMarkers = []string{
	"package.json",
	"package-lock.json",
	"go.mod",
	"go.sum",
	"cargo.toml",
	"requirements.txt",
	"pyproject.toml",
	"gemfile",
	"pom.xml",
	"build.gradle",
	"tsconfig",
	"webpack",
	"babel.config",
	"makefile",
	"dockerfile",
	".env",
	"secrets",
	"credentials",
	"config",
	"main",
	"index",
}

// sourceExtensions mark a change as medium impact when no sensitive
// marker applies.
var sourceExtensions = map[string]bool{
	".go":    true,
	".ts":    true,
	".tsx":   true,
	".js":    true,
	".jsx":   true,
	".mjs":   true,
	".py":    true,
	".rb":    true,
	".rs":    true,
	".java":  true,
	".kt":    true,
	".c":     true,
	".cc":    true,
	".cpp":   true,
	".h":     true,
	".hpp":   true,
	".cs":    true,
	".swift": true,
	".php":   true,
	".scala": true,
	".sql":   true,
	".sh":    true,
}

// classifyImpact applies the fixed priority rule, top-down, first match
// wins:
//  1. sensitive path marker, or kind is delete -> high
//  2. recognized source extension, or kind is dependency add -> medium
//  3. otherwise -> low
func classifyImpact(kind Kind, targetPath string) Impact {
	lowered := strings.ToLower(targetPath)

	if kind == KindDelete {
		return ImpactHigh
	}
	for _, marker := range sensitiveMarkers {
		if strings.Contains(lowered, marker) {
			return ImpactHigh
		}
	}

	if kind == KindDependencyAdd {
		return ImpactMedium
	}
	if sourceExtensions[path.Ext(lowered)] {
		return ImpactMedium
	}

	return ImpactLow
}
