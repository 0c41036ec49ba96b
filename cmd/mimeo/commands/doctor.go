package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/thoreinstein/mimeo/internal/config"
	"github.com/thoreinstein/mimeo/internal/doctor"
	"github.com/thoreinstein/mimeo/internal/errors"
	"github.com/thoreinstein/mimeo/internal/rules"
)

// lenientConfigAnnotation marks commands that run even when the config
// file fails to load.
const lenientConfigAnnotation = "mimeo/lenient-config"

var (
	doctorJSON bool
	doctorAll  bool
)

// configErr holds the config load failure for lenient commands.
var configErr error

func init() {
	doctorCmd.Flags().BoolVar(&doctorJSON, "json", false,
		"output results as JSON")
	doctorCmd.Flags().BoolVar(&doctorAll, "all", false,
		"show every check, including passed ones")
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor [rules-file]",
	Short: "Diagnose configuration and backup target issues",
	Long: `Run diagnostic checks before a backup run: the config file loads, the
log directory is writable, the rules file parses, and each rule's source
exists and backup directory can be written.

Exit codes:
  0 - All checks passed (no errors or warnings)
  1 - Warnings present, no errors
  2 - Errors present`,
	Example: `  # Diagnose the default setup
  mimeo doctor

  # Show every check as JSON
  mimeo doctor rules.yaml --json

  See Also: mimeo check`,
	Args:        cobra.MaximumNArgs(1),
	Annotations: map[string]string{lenientConfigAnnotation: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDoctorWithWriter(cmd.OutOrStdout(), rulesFileArg(args))
	},
}

func runDoctorWithWriter(w io.Writer, rulesFile string) error {
	runner := doctor.NewRunner(
		&doctor.ConfigCheck{File: config.FileUsed(), Config: cfg, Err: configErr},
		&doctor.RulesFileCheck{Path: rulesFile},
	)
	if cfg != nil {
		runner.AddCheck(&doctor.LogDirCheck{Dir: cfg.LogDir})
	}
	if records, err := rules.Load(rulesFile); err == nil {
		runner.AddCheck(&doctor.BackupTargetsCheck{Records: records})
	}

	report := runner.Run()

	if err := outputDoctorReport(w, report); err != nil {
		return err
	}

	if report.HasErrors() {
		return errors.NewExitError(errors.Mark(errDoctorErrors, errors.ErrRunFailed), errors.ExitSystem)
	}
	if report.HasWarnings() {
		return errors.NewExitError(errors.Mark(errDoctorWarnings, errors.ErrRunFailed), errors.ExitUser)
	}
	return nil
}

func outputDoctorReport(w io.Writer, report *doctor.Report) error {
	if quiet {
		return nil
	}
	if doctorJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return errors.Wrap(err, "encoding JSON")
		}
		return nil
	}
	outputDoctorText(w, report)
	return nil
}

func outputDoctorText(w io.Writer, report *doctor.Report) {
	shown := 0
	for _, result := range report.Results {
		problem := result.Status == doctor.SeverityError || result.Status == doctor.SeverityWarning
		if !doctorAll && !problem {
			continue
		}
		shown++

		fmt.Fprintf(w, "%s [%s] %s: %s\n", statusIcon(result.Status), result.Category, result.Name, result.Message)
		if problem {
			for _, key := range []string{"error", "issues", "missing", "unwritable"} {
				printDetail(w, result.Details[key])
			}
			if result.FixHint != "" {
				fmt.Fprintf(w, "  hint: %s\n", result.FixHint)
			}
		}
	}

	if shown > 0 {
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "Summary: %d passed, %d info, %d warnings, %d errors\n",
		report.Summary.Passed, report.Summary.Info, report.Summary.Warnings, report.Summary.Errors)
}

func printDetail(w io.Writer, v any) {
	switch v := v.(type) {
	case string:
		fmt.Fprintf(w, "  %s\n", v)
	case []string:
		for _, line := range v {
			fmt.Fprintf(w, "  - %s\n", line)
		}
	}
}

func statusIcon(s doctor.Severity) string {
	switch s {
	case doctor.SeverityPass:
		return color.GreenString("✓")
	case doctor.SeverityInfo:
		return color.CyanString("ℹ")
	case doctor.SeverityWarning:
		return color.YellowString("⚠")
	case doctor.SeverityError:
		return color.RedString("✗")
	default:
		return "?"
	}
}

// errDoctorWarnings is a sentinel error for exit code 1.
var errDoctorWarnings = errors.New("doctor found warnings")

// errDoctorErrors is a sentinel error for exit code 2.
var errDoctorErrors = errors.New("doctor found errors")
