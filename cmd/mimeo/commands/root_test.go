package commands

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/mimeo/internal/config"
	"github.com/thoreinstein/mimeo/internal/errors"
	"github.com/thoreinstein/mimeo/internal/logging"
)

func TestSetupLogging_VerbosityFlags(t *testing.T) {
	saveGlobals(t)

	tests := []struct {
		name      string
		verbosity int
		wantLevel slog.Level
	}{
		{"default (0)", 0, slog.LevelWarn},
		{"verbose (1)", 1, slog.LevelInfo},
		{"debug (2)", 2, slog.LevelDebug},
		{"trace (3)", 3, logging.LevelTrace},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verbosity = tt.verbosity
			c, _ := newTestCommand(nil)
			require.NoError(t, setupLogging(c))

			logger := logging.FromContext(c.Context())
			assert.True(t, logger.Enabled(t.Context(), tt.wantLevel), "level %v should be enabled", tt.wantLevel)
			if tt.wantLevel > logging.LevelTrace {
				assert.False(t, logger.Enabled(t.Context(), tt.wantLevel-4), "level %v should be disabled", tt.wantLevel-4)
			}
		})
	}
}

func TestSetupLogging_EnvVar(t *testing.T) {
	saveGlobals(t)

	tests := []struct {
		name      string
		envVal    string
		wantLevel slog.Level
	}{
		{"MIMEO_DEBUG=1", "1", slog.LevelDebug},
		{"MIMEO_DEBUG=true", "true", slog.LevelDebug},
		{"MIMEO_DEBUG=2", "2", logging.LevelTrace},
		{"MIMEO_DEBUG=0", "0", slog.LevelWarn},
		{"MIMEO_DEBUG=unknown", "foo", slog.LevelWarn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verbosity = 0
			t.Setenv("MIMEO_DEBUG", tt.envVal)

			c, _ := newTestCommand(nil)
			require.NoError(t, setupLogging(c))

			logger := logging.FromContext(c.Context())
			assert.True(t, logger.Enabled(t.Context(), tt.wantLevel))
			if tt.wantLevel == slog.LevelDebug {
				assert.False(t, logger.Enabled(t.Context(), logging.LevelTrace))
			}
		})
	}
}

func TestSetupLogging_FlagPrecedence(t *testing.T) {
	saveGlobals(t)
	t.Setenv("MIMEO_DEBUG", "2")
	verbosity = 1

	c, _ := newTestCommand(nil)
	require.NoError(t, setupLogging(c))

	logger := logging.FromContext(c.Context())
	assert.True(t, logger.Enabled(t.Context(), slog.LevelInfo))
	assert.False(t, logger.Enabled(t.Context(), slog.LevelDebug), "flag should override env var")
}

func TestSetupLogging_QuietAndVerbose(t *testing.T) {
	saveGlobals(t)
	quiet = true
	verbosity = 1

	c, _ := newTestCommand(nil)
	err := setupLogging(c)
	require.Error(t, err)
	assert.Equal(t, errors.ExitUser, errors.CodeOf(err))
}

func TestSetupLogging_Quiet(t *testing.T) {
	saveGlobals(t)
	quiet = true
	verbosity = 0

	c, stderr := newTestCommand(nil)
	require.NoError(t, setupLogging(c))

	logger := logging.FromContext(c.Context())
	logger.Warn("hidden")
	logger.Error("shown")
	assert.NotContains(t, stderr.String(), "hidden")
	assert.Contains(t, stderr.String(), "shown")
}

func TestSetupLogging_CountsErrors(t *testing.T) {
	saveGlobals(t)
	quiet = true

	c, _ := newTestCommand(nil)
	require.NoError(t, setupLogging(c))

	logger := logging.FromContext(c.Context())
	logger.Error("one")
	logger.Log(t.Context(), logging.LevelCritical, "two")
	logger.Warn("not counted")

	assert.Equal(t, 1, counter.Errors())
	assert.Equal(t, 1, counter.Critical())
}

func TestSetupLogging_DatedRunLog(t *testing.T) {
	saveGlobals(t)
	logDir := filepath.Join(t.TempDir(), "logs")
	cfg = &config.Config{Version: 1, LogDir: logDir}

	origNow := now
	t.Cleanup(func() { now = origNow })
	now = func() time.Time { return time.Date(2024, 3, 9, 23, 59, 0, 0, time.Local) }

	t.Run("commands without the annotation do not log to file", func(t *testing.T) {
		c, _ := newTestCommand(nil)
		require.NoError(t, setupLogging(c))
		_, err := os.Stat(logDir)
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("run commands append to the dated file", func(t *testing.T) {
		c, _ := newTestCommand(map[string]string{runLogAnnotation: "true"})
		require.NoError(t, setupLogging(c))

		logging.FromContext(c.Context()).Info("hello from the run")

		data, err := os.ReadFile(filepath.Join(logDir, "2024-03-09.log"))
		require.NoError(t, err)
		assert.Contains(t, string(data), `"msg":"hello from the run"`)
		assert.Contains(t, string(data), `"level":"INFO"`)
	})
}

func TestSetupLogging_LogFile(t *testing.T) {
	saveGlobals(t)
	logFile = filepath.Join(t.TempDir(), "mimeo.log")

	c, _ := newTestCommand(nil)
	require.NoError(t, setupLogging(c))
	logging.FromContext(c.Context()).Info("to file")

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "to file")
}
