package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/planvet/planvet/internal/backend"
	"github.com/planvet/planvet/internal/config"
	"github.com/planvet/planvet/internal/detect"
	"github.com/planvet/planvet/internal/errors"
	"github.com/planvet/planvet/internal/extract"
	"github.com/planvet/planvet/internal/logging"
	"github.com/planvet/planvet/internal/orchestrator"
	"github.com/planvet/planvet/internal/practices"
	"github.com/planvet/planvet/internal/proposal"
	"github.com/planvet/planvet/internal/report"
)

var validateCmd = &cobra.Command{
	Use:   "validate <plan.md>",
	Short: "Validate an implementation plan",
	Long: `Validate an implementation plan through the analysis backend.

The plan file is sent to the backend together with detected technology
context, and the response is distilled into scores, blockers, risks,
and gaps. With --propose the response is additionally parsed for typed
change proposals; applying them with --destructive always requires
confirmation unless --yes is given.

Examples:
  # One-shot validation with a styled terminal report
  planvet validate plan.md

  # Derive change proposals and ask before applying them
  planvet validate plan.md --propose --destructive

  # Markdown output for piping into a PR description
  planvet validate plan.md --markdown > report.md`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

var (
	validatePropose     bool
	validateYes         bool
	validateDestructive bool
	validateMarkdown    bool
	validateProject     string
)

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().BoolVar(&validatePropose, "propose", false, "derive typed change proposals from the analysis")
	validateCmd.Flags().BoolVarP(&validateYes, "yes", "y", false, "skip the confirmation prompt")
	validateCmd.Flags().BoolVar(&validateDestructive, "destructive", false, "apply confirmed proposals with a full-write backend run")
	validateCmd.Flags().BoolVar(&validateMarkdown, "markdown", false, "emit plain markdown instead of the styled report")
	validateCmd.Flags().StringVarP(&validateProject, "project", "p", "", "project directory the backend should inspect (default: current directory)")
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	planText, err := readPlan(args[0])
	if err != nil {
		return err
	}

	log := newLogger(cfg)
	defer log.Close()

	technologies := detect.Detect(planText)
	violations, err := practices.Check(technologies, planText)
	if err != nil {
		return err
	}

	session := orchestrator.NewSession(cfg, log)
	res, err := session.Execute(cmd.Context(), orchestrator.Request{
		Request: backend.Request{
			PlanText:     planText,
			WorkingDir:   validateProject,
			Timeout:      cfg.Backend.Timeout(),
			ExtraContext: strings.Join(technologies, ", "),
		},
		Propose: validatePropose || validateDestructive,
	})
	if err != nil {
		return err
	}

	rep := &report.Report{
		Plan:         args[0],
		Result:       res,
		Violations:   violations,
		Technologies: technologies,
	}
	if validateMarkdown {
		fmt.Print(rep.Markdown())
	} else {
		fmt.Print(rep.Terminal(useColor(cfg)))
	}

	if !validateDestructive || len(res.Proposals) == 0 {
		return nil
	}

	confirmation := proposal.RequestConfirmation(res.Proposals)
	if confirmation.RequiresApproval && !validateYes {
		fmt.Println()
		fmt.Print(confirmation.Message)
		if !promptYesNo("Apply these changes? [y/N]: ") {
			return errors.ErrNotConfirmed
		}
	}

	return applyProposals(cmd, cfg, session, planText, technologies, res.Proposals)
}

// applyProposals reruns the backend in full-write mode and audits what
// it reports as applied against the confirmed proposals.
func applyProposals(cmd *cobra.Command, cfg *config.Config, session *orchestrator.Session, planText string, technologies []string, proposals []proposal.Proposal) error {
	res, err := session.Execute(cmd.Context(), orchestrator.Request{
		Request: backend.Request{
			PlanText:     planText,
			WorkingDir:   validateProject,
			Destructive:  true,
			Timeout:      cfg.Backend.Timeout(),
			ExtraContext: strings.Join(technologies, ", "),
		},
	})
	if err != nil {
		return err
	}
	if !res.Outcome.Succeeded {
		return &errors.BackendError{
			Backend: res.Outcome.Backend.String(),
			Message: fmt.Sprintf("apply run failed (%s)", res.Outcome.Failure),
		}
	}

	audit := proposal.AuditApplied(proposals, extract.AppliedChanges(res.Outcome.Stdout))
	fmt.Println()
	for _, path := range audit.Applied {
		fmt.Printf("  applied: %s\n", path)
	}
	for _, path := range audit.Failed {
		fmt.Printf("  not applied: %s\n", path)
	}
	switch {
	case audit.Succeeded:
		fmt.Println("All confirmed changes applied.")
	case audit.Partial:
		fmt.Println("Some confirmed changes were not applied; review the output above.")
	default:
		fmt.Println("No confirmed changes were applied.")
	}
	return nil
}

// readPlan loads and sanity-checks the plan file.
func readPlan(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", errors.ErrPlanNotFound, path)
		}
		return "", fmt.Errorf("read plan: %w", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return "", fmt.Errorf("%w: %s", errors.ErrPlanEmpty, path)
	}
	return string(data), nil
}

// promptYesNo asks on stdin and defaults to no.
func promptYesNo(prompt string) bool {
	fmt.Print(prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

// newLogger builds the configured logger.
func newLogger(cfg *config.Config) *logging.Logger {
	return logging.NewLogger(logging.Options{
		File:       cfg.Logging.File,
		Level:      cfg.Logging.Level,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
	})
}

// useColor resolves the report.color setting against the output stream.
func useColor(cfg *config.Config) bool {
	switch cfg.Report.Color {
	case "always":
		return true
	case "never":
		return false
	default:
		fi, err := os.Stdout.Stat()
		if err != nil {
			return false
		}
		return (fi.Mode() & os.ModeCharDevice) != 0
	}
}
