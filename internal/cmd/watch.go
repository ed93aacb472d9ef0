package cmd

import (
	"fmt"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"

	"github.com/planvet/planvet/internal/backend"
	"github.com/planvet/planvet/internal/config"
	"github.com/planvet/planvet/internal/detect"
	"github.com/planvet/planvet/internal/orchestrator"
	"github.com/planvet/planvet/internal/practices"
	"github.com/planvet/planvet/internal/report"
)

var watchCmd = &cobra.Command{
	Use:   "watch <plan.md>",
	Short: "Revalidate a plan whenever it changes",
	Long: `Watch a plan file and revalidate it on every save.

Each change first prints a short diff of what changed in the plan, then
runs a fresh validation. The backend session is shared across runs;
each run tries the primary backend first and falls back per run on
quota exhaustion.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

// debounce coalesces editor write bursts into one revalidation.
const debounce = 500 * time.Millisecond

var watchProject string

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringVarP(&watchProject, "project", "p", "", "project directory the backend should inspect (default: current directory)")
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	planPath := args[0]
	planText, err := readPlan(planPath)
	if err != nil {
		return err
	}

	log := newLogger(cfg)
	defer log.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	session := orchestrator.NewSession(cfg, log)
	if err := validateOnce(cmd, cfg, session, planPath, planText); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory, not the file: editors that save via rename
	// replace the inode and would silently drop a file watch.
	if err := watcher.Add(filepath.Dir(planPath)); err != nil {
		return fmt.Errorf("watch %s: %w", planPath, err)
	}

	fmt.Printf("\nWatching %s (Ctrl-C to stop)\n", planPath)

	var timer *time.Timer
	pending := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(planPath) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, func() {
				select {
				case pending <- struct{}{}:
				default:
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("watch error", "error", err.Error())

		case <-pending:
			newText, err := readPlan(planPath)
			if err != nil {
				log.Warn("plan unreadable after change", "error", err.Error())
				continue
			}
			if newText == planText {
				continue
			}

			fmt.Printf("\nPlan changed at %s\n", time.Now().Format(time.TimeOnly))
			fmt.Print(diffPreview(planText, newText))
			planText = newText

			if err := validateOnce(cmd, cfg, session, planPath, planText); err != nil {
				log.Error("revalidation failed", "error", err.Error())
				fmt.Printf("revalidation failed: %v\n", err)
			}
		}
	}
}

// validateOnce runs one read-only validation and prints the report.
func validateOnce(cmd *cobra.Command, cfg *config.Config, session *orchestrator.Session, planPath, planText string) error {
	technologies := detect.Detect(planText)
	violations, err := practices.Check(technologies, planText)
	if err != nil {
		return err
	}

	res, err := session.Execute(cmd.Context(), orchestrator.Request{
		Request: backend.Request{
			PlanText:     planText,
			WorkingDir:   watchProject,
			Timeout:      cfg.Backend.Timeout(),
			ExtraContext: strings.Join(technologies, ", "),
		},
	})
	if err != nil {
		return err
	}

	rep := &report.Report{
		Plan:         planPath,
		Result:       res,
		Violations:   violations,
		Technologies: technologies,
	}
	fmt.Print(rep.Terminal(useColor(cfg)))
	return nil
}

// maxPreviewLines bounds the diff preview shown between validations.
const maxPreviewLines = 40

// diffPreview renders a compact line-level diff of the plan change.
func diffPreview(before, after string) string {
	dmp := diffmatchpatch.New()
	beforeRunes, afterRunes, lines := dmp.DiffLinesToRunes(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMainRunes(beforeRunes, afterRunes, false), lines)

	var sb strings.Builder
	count := 0
	for _, d := range diffs {
		if d.Type == diffmatchpatch.DiffEqual {
			continue
		}
		prefix := "+ "
		if d.Type == diffmatchpatch.DiffDelete {
			prefix = "- "
		}
		for _, line := range strings.Split(strings.TrimRight(d.Text, "\n"), "\n") {
			if count >= maxPreviewLines {
				sb.WriteString("  ...\n")
				return sb.String()
			}
			sb.WriteString(prefix + line + "\n")
			count++
		}
	}
	return sb.String()
}
