package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/mimeo/internal/errors"
	"github.com/thoreinstein/mimeo/internal/validator"
)

func TestCheck_Valid(t *testing.T) {
	saveGlobals(t)
	src, bk := fixture(t)
	path := writeRules(t, "rules.yaml", yamlRules(src, bk, ""))

	var out bytes.Buffer
	require.NoError(t, runCheckWithWriter(&out, path))
	assert.Contains(t, out.String(), "2 rule(s)")
	assert.Contains(t, out.String(), "Validation passed")
}

func TestCheck_Invalid(t *testing.T) {
	saveGlobals(t)
	src, bk := fixture(t)
	path := writeRules(t, "rules.txt", fmt.Sprintf(`# broken rules
R1 | notes | %[1]s | %[2]s
R3 | logs  | %[1]s | %[2]s | 0
R9 | odd   | %[1]s | %[2]s
`, src, bk))

	var out bytes.Buffer
	err := runCheckWithWriter(&out, path)
	require.Error(t, err)
	assert.Equal(t, errors.ExitUser, errors.CodeOf(err))
	assert.True(t, errors.Is(err, errors.ErrInvalidRules))
	var exitErr *errors.ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Contains(t, exitErr.Suggestion, "mimeo check")

	text := out.String()
	assert.Contains(t, text, "Validation failed")
	assert.Contains(t, text, "filename")
	assert.Contains(t, text, "count")
	assert.Contains(t, text, "unknown rule type")
	assert.Contains(t, text, "line=3")
}

func TestCheck_MissingPathsAreWarnings(t *testing.T) {
	saveGlobals(t)
	src, _ := fixture(t)
	unmounted := filepath.Join(t.TempDir(), "usb")
	path := writeRules(t, "rules.txt", fmt.Sprintf("R2 | docs | %s | %s\n", src, unmounted))

	var out bytes.Buffer
	require.NoError(t, runCheckWithWriter(&out, path))
	assert.Contains(t, out.String(), "Validation passed with")
	assert.Contains(t, out.String(), "backup_path")
}

func TestCheck_JSON(t *testing.T) {
	saveGlobals(t)
	checkJSON = true
	src, bk := fixture(t)
	path := writeRules(t, "rules.json", fmt.Sprintf(
		`{"rules": [{"id": "a", "type": "Recent", "original_path": %q, "backup_path": %q, "count": -1}]}`, src, bk))

	var out bytes.Buffer
	require.Error(t, runCheckWithWriter(&out, path))

	var res validator.Result
	require.NoError(t, json.Unmarshal(out.Bytes(), &res))
	require.Len(t, res.Errors(), 1)
	assert.Equal(t, "count", res.Errors()[0].Field)
	assert.Equal(t, "a", res.Errors()[0].Context["rule"])
}

func TestCheck_UnreadableFile(t *testing.T) {
	saveGlobals(t)

	var out bytes.Buffer
	err := runCheckWithWriter(&out, writeRules(t, "rules.json", `{"rules": [`))
	require.Error(t, err)
	assert.Equal(t, errors.ExitUser, errors.CodeOf(err))
	assert.True(t, errors.Is(err, errors.ErrInvalidRules))
}
