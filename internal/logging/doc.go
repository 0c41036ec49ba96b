// Package logging provides structured logging for mimeo using slog.
//
// The package supports text and JSON output formats, configurable log
// levels, a critical level above error, and helpers for testing. All
// loggers are based on the standard library's [log/slog] package.
//
// # Basic Usage
//
//	logger := logging.New(logging.Config{
//		Level:  slog.LevelInfo,
//		Format: logging.FormatText,
//		Output: os.Stderr,
//	})
//	logger.Info("copied", "rule", "docs")
//
// # Critical Messages
//
// Critical records are logged with [LevelCritical] and rendered as
// "CRITICAL" by both the text handler and JSON handlers created by [New]:
//
//	logger.Log(ctx, logging.LevelCritical, "run finished with errors", "errors", 2)
//
// # Counting Errors
//
// Wrap any handler with [NewCounter] to count records at error level or
// above. The end-of-run summary is derived from the count:
//
//	counter := logging.NewCounter(handler)
//	logger := slog.New(counter)
//	// ... run rules ...
//	if counter.Errors() > 0 { ... }
//
// # Testing
//
// For tests, use [ForTest] to capture log output via the testing framework:
//
//	func TestSomething(t *testing.T) {
//		logger := logging.ForTest(t)
//		// logs appear in test output on failure
//	}
package logging
