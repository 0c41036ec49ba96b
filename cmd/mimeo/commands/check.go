package commands

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/mimeo/internal/backup"
	"github.com/thoreinstein/mimeo/internal/errors"
	"github.com/thoreinstein/mimeo/internal/rules"
	"github.com/thoreinstein/mimeo/internal/validator"
)

var checkJSON bool

func init() {
	checkCmd.Flags().BoolVar(&checkJSON, "json", false, "Output in JSON format")
	rootCmd.AddCommand(checkCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check [rules-file]",
	Short: "Check a rules file without running it",
	Long: `Parse a rules file and report malformed rules: unknown types, missing
fields, a File rule without a filename, a Recent rule without a positive
count, duplicate ids.

Paths that do not exist right now are reported as warnings, since backup
drives are often mounted only for the run.`,
	Example: `  # Check the default rules file
  mimeo check

  # Check a YAML rules file, machine-readable
  mimeo check rules.yaml --json

  See Also: mimeo run`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCheckWithWriter(cmd.OutOrStdout(), rulesFileArg(args))
	},
}

func runCheckWithWriter(w io.Writer, rulesFile string) error {
	records, err := rules.Load(rulesFile)
	if err != nil {
		return errors.NewUserError(err, "Fix the rules file and run 'mimeo check' again")
	}

	result := rules.CheckAll(records)
	result.Merge(checkPaths(records), nil)

	format := validator.FormatText
	if checkJSON {
		format = validator.FormatJSON
	} else {
		fmt.Fprintf(w, "%s: %d rule(s)\n", rulesFile, len(records))
	}
	if err := validator.NewReporter(w, format).Report(result); err != nil {
		return err
	}

	if result.HasErrors() {
		return errors.NewExitErrorWithSuggestion(
			errors.Mark(errors.Newf("%s has %d invalid rule field(s)", rulesFile, len(result.Errors())), errors.ErrInvalidRules),
			errors.ExitUser, "Fix the fields listed above and run 'mimeo check' again")
	}
	return nil
}

// checkPaths warns about rule paths that do not currently exist.
func checkPaths(records []rules.Record) *validator.Result {
	res := &validator.Result{}
	for _, r := range records {
		if !r.Type.Known() {
			continue
		}
		ctx := map[string]string{"rule": r.ID}
		if r.Line > 0 {
			ctx["line"] = strconv.Itoa(r.Line)
		}

		v := backup.ValidatePaths(r.OriginalPath, r.BackupPath)
		one := &validator.Result{}
		for _, p := range v.Failed {
			field := "original_path"
			if p == r.BackupPath && p != r.OriginalPath {
				field = "backup_path"
			}
			if p == "" {
				continue
			}
			one.AddWarning(field, "does not exist", p)
		}
		res.Merge(one, ctx)
	}
	return res
}
