package backup

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// writeFile creates path (and its parents) with content.
func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// setMtime sets the modification time of path.
func setMtime(t *testing.T, path string, mtime time.Time) {
	t.Helper()
	require.NoError(t, os.Chtimes(path, mtime, mtime))
}

// fixedClock returns a clock that always reports ts.
func fixedClock(ts time.Time) func() time.Time {
	return func() time.Time { return ts }
}

// tickingClock returns a clock that advances by step on every call.
func tickingClock(start time.Time, step time.Duration) func() time.Time {
	next := start
	return func() time.Time {
		now := next
		next = next.Add(step)
		return now
	}
}

var testTime = time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)
