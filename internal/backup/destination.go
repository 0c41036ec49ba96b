package backup

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

// Namer derives and creates timestamped destination directories.
type Namer struct {
	now func() time.Time
}

// NewNamer returns a Namer using now as its clock. A nil now uses time.Now.
func NewNamer(now func() time.Time) *Namer {
	if now == nil {
		now = time.Now
	}
	return &Namer{now: now}
}

// SubjectForFile returns the subject label of a file backup.
func SubjectForFile(filename string) string {
	return strings.ReplaceAll(filename, ".", "_") + " " + SubjectMarker
}

// SubjectForDir returns the subject label of a directory backup.
func SubjectForDir(dir string) string {
	return filepath.Base(filepath.Clean(dir)) + " " + SubjectMarker
}

// Path returns the destination path for subject under root at the
// current clock time, without touching the filesystem.
func (n *Namer) Path(root, subject string) string {
	return filepath.Join(root, subject, n.now().Format(TimestampLayout))
}

// NewDestination creates and returns a fresh destination directory for
// subject under root. Missing parents are created. If the timestamped
// directory already exists the error is marked with ErrAlreadyExists.
func (n *Namer) NewDestination(root, subject string) (string, error) {
	dst := n.Path(root, subject)

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", errors.Wrapf(err, "creating %s", filepath.Dir(dst))
	}

	if err := os.Mkdir(dst, 0o755); err != nil {
		if errors.Is(err, os.ErrExist) {
			return "", errors.Mark(errors.Wrapf(err, "creating %s", dst), ErrAlreadyExists)
		}
		return "", errors.Wrapf(err, "creating %s", dst)
	}
	return dst, nil
}
