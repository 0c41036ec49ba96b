package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/mimeo/internal/backup"
	"github.com/thoreinstein/mimeo/internal/config"
	"github.com/thoreinstein/mimeo/internal/errors"
	"github.com/thoreinstein/mimeo/internal/rules"
)

// fixture creates a source folder with one file and an empty backup root.
func fixture(t *testing.T) (src, bk string) {
	t.Helper()
	src = filepath.Join(t.TempDir(), "docs")
	require.NoError(t, os.MkdirAll(src, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "notes.txt"), []byte("hello"), 0o644))
	return src, t.TempDir()
}

func yamlRules(src, bk string, extra string) string {
	return fmt.Sprintf(`rules:
  - id: docs
    type: Folder
    original_path: %s
    backup_path: %s
  - id: notes
    type: File
    original_path: %s
    backup_path: %s
    filename: notes.txt
%s`, src, bk, src, bk, extra)
}

func TestRun_Success(t *testing.T) {
	ctx := setupRun(t)
	src, bk := fixture(t)
	path := writeRules(t, "rules.yaml", yamlRules(src, bk, ""))

	var out bytes.Buffer
	err := runWithWriter(ctx, &out, path)
	require.NoError(t, err)

	assert.Contains(t, out.String(), "Ran "+path+" successfully with no errors")
	assert.Contains(t, out.String(), "2 rules")
	assert.Contains(t, out.String(), "10 B copied")

	entries, err := os.ReadDir(bk)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "one subject directory per rule")
}

func TestRun_UnknownTypeDoesNotStopLaterRules(t *testing.T) {
	ctx := setupRun(t)
	src, bk := fixture(t)
	path := writeRules(t, "rules.yaml", fmt.Sprintf(`rules:
  - id: weird
    type: Bogus
  - id: docs
    type: Folder
    original_path: %s
    backup_path: %s
`, src, bk))

	var out bytes.Buffer
	err := runWithWriter(ctx, &out, path)
	require.Error(t, err)

	assert.True(t, errors.Is(err, errors.ErrRunFailed))
	assert.Equal(t, errors.ExitUser, errors.CodeOf(err))
	assert.Contains(t, out.String(), "Ran "+path+" with 1 error")
	assert.Contains(t, out.String(), "unknown rule type")

	entries, err := os.ReadDir(bk)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "the valid rule still ran")
}

func TestRun_SingleErrorWording(t *testing.T) {
	ctx := setupRun(t)
	src, bk := fixture(t)
	path := writeRules(t, "rules.txt", fmt.Sprintf("R2 | docs | %s | %s\n", filepath.Join(src, "missing"), bk))

	var out bytes.Buffer
	err := runWithWriter(ctx, &out, path)
	require.Error(t, err)
	assert.Contains(t, out.String(), "Ran "+path+" with 1 error\n")
	assert.Contains(t, out.String(), "path does not exist")
	assert.Equal(t, errors.ExitUser, errors.CodeOf(err))
}

func TestRun_MissingRulesFile(t *testing.T) {
	ctx := setupRun(t)
	path := filepath.Join(t.TempDir(), "nope.json")

	var out bytes.Buffer
	err := runWithWriter(ctx, &out, path)
	require.Error(t, err)

	assert.Equal(t, errors.ExitUser, errors.CodeOf(err))
	assert.Contains(t, out.String(), "with 1 error")
	assert.Contains(t, out.String(), "fault:")
	assert.Equal(t, 2, counter.Critical(), "the fault and the summary are both critical")
}

func TestRun_RuleFilter(t *testing.T) {
	ctx := setupRun(t)
	src, bk := fixture(t)
	path := writeRules(t, "rules.yaml", yamlRules(src, bk, ""))

	t.Run("selected ids", func(t *testing.T) {
		runRuleIDs = []string{"notes"}
		var out bytes.Buffer
		require.NoError(t, runWithWriter(ctx, &out, path))
		assert.Contains(t, out.String(), "1 rule,")

		entries, err := os.ReadDir(bk)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "notes_txt [mimeo]", entries[0].Name())
	})

	t.Run("unknown id", func(t *testing.T) {
		ctx := setupRun(t)
		runRuleIDs = []string{"nope"}
		var out bytes.Buffer
		err := runWithWriter(ctx, &out, path)
		require.Error(t, err)
		assert.Equal(t, errors.ExitUser, errors.CodeOf(err))
		assert.Contains(t, out.String(), "no rule with id nope")
	})
}

func TestRun_Pick(t *testing.T) {
	ctx := setupRun(t)
	src, bk := fixture(t)
	path := writeRules(t, "rules.yaml", yamlRules(src, bk, ""))

	runPick = true
	var offered []string
	pickRules = func(records []rules.Record) ([]rules.Record, error) {
		for _, r := range records {
			offered = append(offered, r.ID)
		}
		return records[:1], nil
	}

	var out bytes.Buffer
	require.NoError(t, runWithWriter(ctx, &out, path))
	assert.Equal(t, []string{"docs", "notes"}, offered)

	entries, err := os.ReadDir(bk)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "docs [mimeo]", entries[0].Name())
}

func TestRun_PanicIsReported(t *testing.T) {
	ctx := setupRun(t)
	src, bk := fixture(t)
	path := writeRules(t, "rules.yaml", yamlRules(src, bk, ""))

	runPick = true
	pickRules = func([]rules.Record) ([]rules.Record, error) {
		panic("terminal went away")
	}

	var out bytes.Buffer
	err := runWithWriter(ctx, &out, path)
	require.Error(t, err)
	assert.Equal(t, errors.ExitSystem, errors.CodeOf(err))
	assert.Contains(t, out.String(), "terminal went away")
}

func TestRun_DryRun(t *testing.T) {
	ctx := setupRun(t)
	src, bk := fixture(t)
	path := writeRules(t, "rules.yaml", yamlRules(src, bk, ""))
	runDryRun = true

	var out bytes.Buffer
	require.NoError(t, runWithWriter(ctx, &out, path))

	entries, err := os.ReadDir(bk)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRun_Report(t *testing.T) {
	tests := []struct {
		name   string
		file   string
		decode func([]byte, any) error
	}{
		{"json", "report.json", json.Unmarshal},
		{"yaml", "report.yaml", yaml.Unmarshal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := setupRun(t)
			src, bk := fixture(t)
			path := writeRules(t, "rules.yaml", yamlRules(src, bk, "  - id: bad\n    type: Bogus\n"))
			runReport = filepath.Join(t.TempDir(), tt.file)

			var out bytes.Buffer
			require.Error(t, runWithWriter(ctx, &out, path))

			data, err := os.ReadFile(runReport)
			require.NoError(t, err)

			var rep struct {
				RunID     string `json:"run_id" yaml:"run_id"`
				RulesFile string `json:"rules_file" yaml:"rules_file"`
				Outcomes  []struct {
					RuleID string              `json:"rule_id" yaml:"rule_id"`
					Status backup.Status       `json:"status" yaml:"status"`
					Detail []string            `json:"detail" yaml:"detail"`
					Files  []backup.FileResult `json:"files" yaml:"files"`
					Error  string              `json:"error" yaml:"error"`
				} `json:"outcomes" yaml:"outcomes"`
			}
			require.NoError(t, tt.decode(data, &rep))

			assert.NotEmpty(t, rep.RunID)
			assert.Equal(t, path, rep.RulesFile)
			require.Len(t, rep.Outcomes, 3)
			assert.Equal(t, backup.StatusSuccess, rep.Outcomes[0].Status)
			require.Len(t, rep.Outcomes[1].Files, 1)
			assert.True(t, rep.Outcomes[1].Files[0].Verified)
			assert.Equal(t, backup.StatusValidationFailed, rep.Outcomes[2].Status)
			assert.Equal(t, []string{"unknown rule type"}, rep.Outcomes[2].Detail)
			assert.Contains(t, rep.Outcomes[2].Error, "unknown rule type")
		})
	}
}

func TestExitCode(t *testing.T) {
	validation := backup.RunOutcome{Status: backup.StatusValidationFailed}
	copyFailed := backup.RunOutcome{Status: backup.StatusCopyFailed}
	ok := backup.RunOutcome{Status: backup.StatusSuccess}

	assert.Equal(t, errors.ExitUser, exitCode([]backup.RunOutcome{ok, validation}, nil))
	assert.Equal(t, errors.ExitSystem, exitCode([]backup.RunOutcome{validation, copyFailed}, nil))
	assert.Equal(t, errors.ExitSystem, exitCode([]backup.RunOutcome{ok}, nil))
	assert.Equal(t, errors.ExitUser, exitCode(nil, errors.Mark(errors.New("x"), errors.ErrInvalidRules)))
	assert.Equal(t, errors.ExitSystem, exitCode(nil, errors.New("panic: boom")))
}

func TestRulesFileArg(t *testing.T) {
	saveGlobals(t)

	cfg = nil
	assert.Equal(t, "rules.json", rulesFileArg(nil))

	cfg = &config.Config{RulesFile: "/etc/mimeo/rules.yaml"}
	assert.Equal(t, "/etc/mimeo/rules.yaml", rulesFileArg(nil))
	assert.Equal(t, "given.yaml", rulesFileArg([]string{"given.yaml"}))
}
