package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/mimeo/internal/config"
)

// saveGlobals restores every package-level flag and state variable when
// the test ends.
func saveGlobals(t *testing.T) {
	t.Helper()
	origVerbosity, origQuiet, origFormat, origLogFile, origConfig := verbosity, quiet, logFormat, logFile, configFile
	origCfg, origCounter := cfg, counter
	origRuleIDs, origPick, origReport, origDryRun := runRuleIDs, runPick, runReport, runDryRun
	origPickRules, origCheckJSON := pickRules, checkJSON
	origDoctorJSON, origDoctorAll, origConfigErr := doctorJSON, doctorAll, configErr
	t.Cleanup(func() {
		verbosity, quiet, logFormat, logFile, configFile = origVerbosity, origQuiet, origFormat, origLogFile, origConfig
		cfg, counter = origCfg, origCounter
		runRuleIDs, runPick, runReport, runDryRun = origRuleIDs, origPick, origReport, origDryRun
		pickRules, checkJSON = origPickRules, origCheckJSON
		doctorJSON, doctorAll, configErr = origDoctorJSON, origDoctorAll, origConfigErr
	})
}

// newTestCommand returns a command whose log output goes to a buffer.
func newTestCommand(annotations map[string]string) (*cobra.Command, *bytes.Buffer) {
	var stderr bytes.Buffer
	c := &cobra.Command{Use: "test", Annotations: annotations}
	c.SetErr(&stderr)
	c.SetContext(context.Background())
	return c, &stderr
}

// setupRun installs logging and a config suitable for running rules in
// tests, returning the context to pass to runWithWriter.
func setupRun(t *testing.T) context.Context {
	t.Helper()
	saveGlobals(t)
	logFormat = "text"
	cfg = &config.Config{Version: 1, HashAlgorithm: "sha256"}

	c, _ := newTestCommand(nil)
	require.NoError(t, setupLogging(c))
	return c.Context()
}

// writeRules writes content to name inside a fresh temp dir.
func writeRules(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}
