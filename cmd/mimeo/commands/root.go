// Package commands implements the CLI commands for mimeo.
package commands

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/mimeo/cmd"
	"github.com/thoreinstein/mimeo/internal/config"
	"github.com/thoreinstein/mimeo/internal/errors"
	"github.com/thoreinstein/mimeo/internal/logging"
	"github.com/thoreinstein/mimeo/internal/paths"
)

// runLogAnnotation marks commands that append to the dated run log.
const runLogAnnotation = "mimeo/run-log"

// verbosity holds the count of -v flags.
var verbosity int

// quiet holds the value of the -q/--quiet flag.
var quiet bool

// logFormat holds the value of the --log-format flag.
var logFormat string

// logFile holds the path to the log file.
var logFile string

// configFile holds the value of the --config flag.
var configFile string

// cfg is the loaded configuration; nil until loadConfig succeeds.
var cfg *config.Config

// counter counts error and critical records for the run summary.
var counter *logging.Counter

// now is the clock used for dated log files.
var now = time.Now

func init() {
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v",
		"increase verbosity level (e.g., -v, -vv)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false,
		"suppress non-error output")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text",
		"log format: text, json")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "",
		"also write logs to file in JSON format")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"config file (default: ./config.yaml or $XDG_CONFIG_HOME/mimeo/config.yaml)")

	rootCmd.Version = cmd.Version
	rootCmd.SetVersionTemplate("mimeo version {{.Version}}\n")

	// Silence errors and usage so we can control error output
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
}

var rootCmd = &cobra.Command{
	Use:   "mimeo",
	Short: "Rule-driven file backups with verification",
	Long: `mimeo copies files and folders into timestamped backup directories
according to a list of rules, then verifies every copy by comparing content
digests of the source and the backup.

Three kinds of rule exist:

  File    copy one named file out of a directory
  Folder  copy a whole directory tree
  Recent  copy the N most recently modified files of a directory

Rules are read from JSON, YAML, TOML or a line format (R1/R2/R3).`,
	Example: `  # Run every rule in rules.json
  mimeo run

  # Run two rules from a YAML file
  mimeo run rules.yaml --rule photos --rule logs

  # Check a rules file without copying anything
  mimeo check rules.yaml

  # Diagnose config, log directory and backup targets
  mimeo doctor

  See Also: mimeo run --help, mimeo check --help`,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if cmd.Name() == "help" || cmd.Name() == "version" {
			return setupLogging(cmd)
		}
		if err := loadConfig(); err != nil {
			if cmd.Annotations[lenientConfigAnnotation] == "" {
				return err
			}
			configErr = err
		}
		return setupLogging(cmd)
	},
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// loadConfig initializes Viper and loads the configuration.
func loadConfig() error {
	config.Init()
	c, err := config.Load(configFile)
	if err != nil {
		return errors.NewConfigError(err)
	}
	cfg = c
	configErr = nil
	return nil
}

// setupLogging configures the default logger based on verbosity flags and
// stores it in the command context.
func setupLogging(cmd *cobra.Command) error {
	if quiet && verbosity > 0 {
		return errors.NewUserError(nil, "cannot use --quiet and --verbose together")
	}

	var level slog.Level
	if quiet {
		level = slog.LevelError
	} else {
		v := verbosity

		// CLI flags take precedence, but if not set, check env var
		if v == 0 {
			if val, ok := os.LookupEnv("MIMEO_DEBUG"); ok {
				switch val {
				case "1", "true":
					v = 2 // Debug
				case "2":
					v = 3 // Trace
				}
			}
		}
		level = logging.LevelFromVerbosity(v)
	}

	handlers := []slog.Handler{
		logging.NewHandlerFor(logging.Config{
			Level:  level,
			Format: logging.Format(logFormat),
			Output: cmd.ErrOrStderr(),
		}),
	}

	// Files always record at least info.
	fileLevel := min(level, slog.LevelInfo)

	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return errors.NewUserError(err, "failed to open log file")
		}
		handlers = append(handlers, jsonFileHandler(f, fileLevel))
	}

	if cmd.Annotations[runLogAnnotation] != "" && cfg != nil && cfg.LogDir != "" {
		f, err := openDatedLog(cfg.LogDir)
		if err != nil {
			return errors.NewSystemError(err, "Check log_dir in the config file")
		}
		handlers = append(handlers, jsonFileHandler(f, fileLevel))
	}

	var handler slog.Handler
	if len(handlers) > 1 {
		handler = logging.NewMultiHandler(handlers...)
	} else {
		handler = handlers[0]
	}

	counter = logging.NewCounter(handler)
	logger := slog.New(counter)
	slog.SetDefault(logger)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(logging.NewContext(ctx, logger))

	return nil
}

func jsonFileHandler(w io.Writer, level slog.Level) slog.Handler {
	return logging.NewHandlerFor(logging.Config{
		Level:  level,
		Format: logging.FormatJSON,
		Output: w,
	})
}

// openDatedLog opens <dir>/YYYY-MM-DD.log for appending.
func openDatedLog(dir string) (*os.File, error) {
	if err := paths.EnsureDir(dir, 0); err != nil {
		return nil, err
	}
	path := filepath.Join(dir, now().Format(time.DateOnly)+".log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	return f, nil
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
