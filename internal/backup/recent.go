package backup

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

// SelectRecent returns the paths of the k most recently modified regular
// files directly inside dir, oldest first. Symlinks and directories are not
// eligible. Files with equal modification times are ordered by name. If dir
// holds fewer than k eligible files, all of them are returned.
func SelectRecent(dir string, k int) ([]string, error) {
	if k <= 0 {
		return nil, errors.Newf("count must be positive, got %d", k)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "listing %s", dir)
	}

	type candidate struct {
		name    string
		modTime time.Time
	}

	files := make([]candidate, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			// Removed since listing.
			continue
		}
		files = append(files, candidate{name: e.Name(), modTime: info.ModTime()})
	}

	slices.SortStableFunc(files, func(a, b candidate) int {
		if c := a.modTime.Compare(b.modTime); c != 0 {
			return c
		}
		return strings.Compare(a.name, b.name)
	})

	if k < len(files) {
		files = files[len(files)-k:]
	}

	out := make([]string, 0, len(files))
	for _, f := range files {
		out = append(out, filepath.Join(dir, f.name))
	}
	return out, nil
}
