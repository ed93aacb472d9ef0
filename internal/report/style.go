package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/planvet/planvet/internal/extract"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	passStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	warnStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	failStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))

	errorItemStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	warnItemStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

// verdictStyle maps a verdict to its status-line style.
func verdictStyle(v Verdict) lipgloss.Style {
	switch v {
	case VerdictPass:
		return passStyle
	case VerdictFail:
		return failStyle
	default:
		return warnStyle
	}
}

// verdictGlyph maps a verdict to its status glyph.
func verdictGlyph(v Verdict) string {
	switch v {
	case VerdictPass:
		return "✓"
	case VerdictFail:
		return "✗"
	default:
		return "⚠"
	}
}

// Terminal renders the report styled for a terminal. When color is
// false the output is the same layout with styling disabled.
func (r *Report) Terminal(color bool) string {
	rec := r.Result.Record
	verdict := r.Verdict()

	render := func(s lipgloss.Style, text string) string {
		if !color {
			return text
		}
		return s.Render(text)
	}

	var b strings.Builder

	b.WriteString(render(titleStyle, fmt.Sprintf("Plan validation: %s", r.Plan)))
	b.WriteString("\n")
	b.WriteString(render(verdictStyle(verdict), fmt.Sprintf("%s %s", verdictGlyph(verdict), strings.ToUpper(verdict.String()))))
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "  Feasibility   %3d/100\n", rec.Feasibility.Score)
	fmt.Fprintf(&b, "  Completeness  %3d/100\n", rec.Completeness.Completeness)
	fmt.Fprintf(&b, "  Complexity    %s\n", rec.Completeness.Complexity)

	writeStyledList(&b, render, "Blockers", rec.Feasibility.Blockers, errorItemStyle)
	writeStyledList(&b, render, "Risks", rec.Feasibility.Risks, warnItemStyle)
	writeStyledList(&b, render, "Missing dependencies", rec.Feasibility.MissingDependencies, warnItemStyle)
	writeStyledList(&b, render, "Gaps", rec.Completeness.Gaps, warnItemStyle)
	writeStyledList(&b, render, "Violations", rec.Review.Violations, errorItemStyle)
	writeStyledList(&b, render, "Improvements", rec.Review.Improvements, dimStyle)

	if len(rec.Review.Suggestions) > 0 {
		b.WriteString("\n")
		b.WriteString(render(sectionStyle, "Suggestions"))
		b.WriteString("\n")
		for _, s := range rec.Review.Suggestions {
			style := dimStyle
			switch s.Severity {
			case extract.SeverityError:
				style = errorItemStyle
			case extract.SeverityWarning:
				style = warnItemStyle
			}
			fmt.Fprintf(&b, "  %s %s\n", render(style, fmt.Sprintf("[%s]", s.Severity)), s.Description)
		}
	}

	if len(r.Violations) > 0 {
		b.WriteString("\n")
		b.WriteString(render(sectionStyle, "Practice findings"))
		b.WriteString("\n")
		for _, v := range r.Violations {
			style := dimStyle
			switch v.Severity {
			case extract.SeverityError:
				style = errorItemStyle
			case extract.SeverityWarning:
				style = warnItemStyle
			}
			fmt.Fprintf(&b, "  %s\n", render(style, v.String()))
		}
	}

	prov := r.Result.Provenance
	footer := fmt.Sprintf("backend=%s request=%s", prov.Backend, prov.RequestID)
	if prov.FallbackOccurred {
		footer += fmt.Sprintf(" fallback=%q", prov.FallbackReason)
	}
	b.WriteString("\n")
	b.WriteString(render(dimStyle, footer))
	b.WriteString("\n")

	return b.String()
}

func writeStyledList(b *strings.Builder, render func(lipgloss.Style, string) string, title string, items []string, style lipgloss.Style) {
	if len(items) == 0 {
		return
	}
	b.WriteString("\n")
	b.WriteString(render(sectionStyle, title))
	b.WriteString("\n")
	for _, item := range items {
		fmt.Fprintf(b, "  %s %s\n", render(style, "•"), item)
	}
}
