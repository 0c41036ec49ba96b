package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/thoreinstein/mimeo/internal/backup"
	"github.com/thoreinstein/mimeo/internal/errors"
	"github.com/thoreinstein/mimeo/internal/logging"
	"github.com/thoreinstein/mimeo/internal/paths"
	"github.com/thoreinstein/mimeo/internal/rules"
	"github.com/thoreinstein/mimeo/pkg/fileutil"
)

var (
	runRuleIDs []string
	runPick    bool
	runReport  string
	runDryRun  bool
)

// pickRules selects rules interactively; replaced in tests.
var pickRules = pickRulesFuzzy

func init() {
	runCmd.Flags().StringArrayVar(&runRuleIDs, "rule", nil,
		"run only the rule with this id (repeatable)")
	runCmd.Flags().BoolVar(&runPick, "pick", false,
		"choose the rules to run interactively")
	runCmd.Flags().StringVar(&runReport, "report", "",
		"write a JSON (or .yaml) report of every outcome to this path")
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false,
		"validate paths and show destinations without copying")
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run [rules-file]",
	Short: "Run backup rules",
	Long: `Run the rules in a rules file, one after another, in file order.

Each rule validates its paths, copies into a fresh timestamped directory
under its backup path and verifies the copy. A failing rule never stops
the rules after it. When every rule has run, a summary is printed and the
exit status is non-zero if anything went wrong.

The rules file defaults to rules_file from the config (rules.json).`,
	Example: `  # Run every rule
  mimeo run rules.yaml

  # Run selected rules and keep a report
  mimeo run --rule photos --rule logs --report last-run.json

  # Choose rules interactively
  mimeo run --pick

  See Also: mimeo check`,
	Args:        cobra.MaximumNArgs(1),
	Annotations: map[string]string{runLogAnnotation: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWithWriter(cmd.Context(), cmd.OutOrStdout(), rulesFileArg(args))
	},
}

// rulesFileArg returns the rules file named on the command line, or the
// configured default.
func rulesFileArg(args []string) string {
	if len(args) > 0 {
		return paths.ExpandHome(args[0])
	}
	if cfg != nil && cfg.RulesFile != "" {
		return cfg.RulesFile
	}
	return "rules.json"
}

// newRunner builds a Runner from the loaded configuration.
func newRunner(logger *slog.Logger) *backup.Runner {
	opts := []backup.Option{
		backup.WithLogger(logger),
		backup.WithDryRun(runDryRun),
	}
	if cfg != nil {
		// Validated by config.Load.
		algo, _ := backup.ParseAlgorithm(cfg.HashAlgorithm)
		opts = append(opts,
			backup.WithHasher(backup.NewHasher(algo)),
			backup.WithSpacing(cfg.RuleSpacing),
		)
	}
	return backup.NewRunner(opts...)
}

// runWithWriter runs rulesFile and writes the summary to w. Faults outside
// the rules themselves, including panics, are logged as critical and still
// produce a summary.
func runWithWriter(ctx context.Context, w io.Writer, rulesFile string) error {
	logger := logging.FromContext(ctx)
	runner := newRunner(logger)
	logger = logger.With("run", runner.RunID())
	started := time.Now()

	logger.InfoContext(ctx, "processing rules", "file", rulesFile)
	outcomes, fault := process(ctx, runner, rulesFile)
	if fault != nil {
		logger.Log(ctx, logging.LevelCritical, "failed to finish processing rules", "file", rulesFile, "error", fault)
	} else {
		logger.InfoContext(ctx, "finished processing rules", "file", rulesFile, "rules", len(outcomes))
	}

	if runReport != "" {
		rep := newReport(runner.RunID(), rulesFile, started, outcomes, fault)
		if err := fileutil.AtomicWriteByExt(runReport, rep); err != nil {
			logger.ErrorContext(ctx, "failed to write report", "path", runReport, "error", err)
		} else {
			logger.InfoContext(ctx, "wrote report", "path", runReport)
		}
	}

	return summarize(ctx, w, logger, rulesFile, outcomes, fault)
}

// process loads, filters and runs the rules. A panic becomes the returned
// error.
func process(ctx context.Context, runner *backup.Runner, rulesFile string) (outcomes []backup.RunOutcome, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = errors.Newf("panic: %v", p)
		}
	}()

	records, err := rules.Load(rulesFile)
	if err != nil {
		return nil, err
	}

	selected, missing := rules.Filter(records, runRuleIDs)
	if len(missing) > 0 {
		return nil, errors.Mark(
			errors.Newf("no rule with id %s in %s", strings.Join(missing, ", "), rulesFile),
			errors.ErrNotFound)
	}

	if runPick {
		selected, err = pickRules(selected)
		if err != nil {
			return nil, err
		}
	}

	return runner.ProcessAll(ctx, selected), nil
}

// errorCount returns the number of error and critical records logged so
// far, or a count derived from the outcomes when no counter is installed.
func errorCount(outcomes []backup.RunOutcome, fault error) int {
	if counter != nil {
		return counter.Errors() + counter.Critical()
	}
	n := 0
	for _, o := range outcomes {
		if o.Failed() {
			n++
		}
	}
	if fault != nil {
		n++
	}
	return n
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

func summarize(ctx context.Context, w io.Writer, logger *slog.Logger, rulesFile string, outcomes []backup.RunOutcome, fault error) error {
	var total int64
	for _, o := range outcomes {
		total += o.Bytes
	}

	n := errorCount(outcomes, fault)
	if n == 0 {
		logger.InfoContext(ctx, fmt.Sprintf("Ran %s successfully with no errors", rulesFile))
		if !quiet {
			fmt.Fprintf(w, "%s Ran %s successfully with no errors (%s, %s copied)\n",
				color.GreenString("✓"), rulesFile, plural(len(outcomes), "rule"), humanize.IBytes(uint64(total)))
		}
		return nil
	}

	msg := fmt.Sprintf("Ran %s with %s", rulesFile, plural(n, "error"))
	logger.Log(ctx, logging.LevelCritical, msg)

	fmt.Fprintln(w, color.RedString("✗ "+msg))
	for _, o := range outcomes {
		if !o.Failed() {
			continue
		}
		fmt.Fprintf(w, "  %s %s\n", color.YellowString(o.RuleID), color.RedString(string(o.Status)))
		for _, d := range o.Detail {
			fmt.Fprintf(w, "    - %s\n", d)
		}
	}
	if fault != nil {
		fmt.Fprintf(w, "  %s %v\n", color.RedString("fault:"), fault)
	}

	return errors.NewExitError(errors.Mark(errors.New(msg), errors.ErrRunFailed), exitCode(outcomes, fault))
}

// exitCode is ExitUser when everything that went wrong is the user's to
// fix (bad rules file, unknown rule id, missing paths) and ExitSystem
// otherwise.
func exitCode(outcomes []backup.RunOutcome, fault error) int {
	if fault != nil {
		if errors.Is(fault, errors.ErrInvalidRules) || errors.Is(fault, errors.ErrNotFound) || errors.Is(fault, os.ErrNotExist) {
			return errors.ExitUser
		}
		return errors.ExitSystem
	}

	failed := 0
	for _, o := range outcomes {
		if !o.Failed() {
			continue
		}
		failed++
		if o.Status != backup.StatusValidationFailed {
			return errors.ExitSystem
		}
	}
	if failed == 0 {
		return errors.ExitSystem
	}
	return errors.ExitUser
}

// runSummaryReport is the document written by --report.
type runSummaryReport struct {
	RunID     string          `json:"run_id" yaml:"run_id"`
	RulesFile string          `json:"rules_file" yaml:"rules_file"`
	Started   time.Time       `json:"started" yaml:"started"`
	Finished  time.Time       `json:"finished" yaml:"finished"`
	DryRun    bool            `json:"dry_run" yaml:"dry_run"`
	Fault     string          `json:"fault,omitempty" yaml:"fault,omitempty"`
	Outcomes  []reportOutcome `json:"outcomes" yaml:"outcomes"`
}

type reportOutcome struct {
	backup.RunOutcome `yaml:",inline"`

	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

func newReport(runID, rulesFile string, started time.Time, outcomes []backup.RunOutcome, fault error) runSummaryReport {
	rep := runSummaryReport{
		RunID:     runID,
		RulesFile: rulesFile,
		Started:   started.UTC(),
		Finished:  time.Now().UTC(),
		DryRun:    runDryRun,
		Outcomes:  make([]reportOutcome, 0, len(outcomes)),
	}
	if fault != nil {
		rep.Fault = fault.Error()
	}
	for _, o := range outcomes {
		ro := reportOutcome{RunOutcome: o}
		if o.Err != nil {
			ro.Error = o.Err.Error()
		}
		rep.Outcomes = append(rep.Outcomes, ro)
	}
	return rep
}
