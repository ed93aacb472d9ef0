// Package practices checks plan text against a catalog of technology
// best practices. The catalog ships embedded in the binary; each entry
// pairs a rule with a pattern that flags plans conflicting with it.
package practices

import (
	_ "embed"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/planvet/planvet/internal/extract"
)

//go:embed catalog.yaml
var catalogYAML []byte

// GeneralTechnology marks catalog entries checked against every plan
// regardless of detected technologies.
const GeneralTechnology = "general"

// Practice is one catalog entry.
type Practice struct {
	// Technology names the technology this practice applies to, or
	// GeneralTechnology for universal rules.
	Technology string `yaml:"technology"`
	// Rule describes the practice in one sentence.
	Rule string `yaml:"rule"`
	// Severity is info, warning, or error.
	Severity extract.Severity `yaml:"severity"`
	// Pattern flags plan text that conflicts with the rule.
	Pattern string `yaml:"pattern"`

	re *regexp.Regexp
}

// Violation reports a plan conflicting with a practice.
type Violation struct {
	Technology string           `json:"technology"`
	Rule       string           `json:"rule"`
	Severity   extract.Severity `json:"severity"`
	// Matched is the plan fragment that triggered the rule.
	Matched string `json:"matched"`
}

// String renders a violation the way reports list it.
func (v Violation) String() string {
	return fmt.Sprintf("[%s] %s: %s", v.Severity, v.Technology, v.Rule)
}

type catalogFile struct {
	Practices []Practice `yaml:"practices"`
}

var (
	loadOnce sync.Once
	loaded   []Practice
	loadErr  error
)

// Catalog returns the embedded practice catalog with compiled patterns.
// The catalog is parsed once; subsequent calls return the same slice.
func Catalog() ([]Practice, error) {
	loadOnce.Do(func() {
		var file catalogFile
		if err := yaml.Unmarshal(catalogYAML, &file); err != nil {
			loadErr = fmt.Errorf("parse practice catalog: %w", err)
			return
		}
		for i := range file.Practices {
			p := &file.Practices[i]
			if !p.Severity.IsValid() {
				loadErr = fmt.Errorf("practice %q: invalid severity %q", p.Rule, p.Severity)
				return
			}
			re, err := regexp.Compile(p.Pattern)
			if err != nil {
				loadErr = fmt.Errorf("practice %q: %w", p.Rule, err)
				return
			}
			p.re = re
		}
		loaded = file.Practices
	})
	return loaded, loadErr
}

// Check evaluates the plan against catalog entries for the detected
// technologies. General entries always apply. The result is never nil
// and preserves catalog order.
func Check(technologies []string, planText string) ([]Violation, error) {
	catalog, err := Catalog()
	if err != nil {
		return nil, err
	}

	applicable := map[string]bool{GeneralTechnology: true}
	for _, tech := range technologies {
		applicable[strings.ToLower(tech)] = true
	}

	violations := []Violation{}
	for _, p := range catalog {
		if !applicable[p.Technology] {
			continue
		}
		m := p.re.FindString(planText)
		if m == "" {
			continue
		}
		violations = append(violations, Violation{
			Technology: p.Technology,
			Rule:       p.Rule,
			Severity:   p.Severity,
			Matched:    strings.TrimSpace(m),
		})
	}
	return violations, nil
}
