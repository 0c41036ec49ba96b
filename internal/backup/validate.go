package backup

import (
	"os"
	"path/filepath"
	"strings"
)

// ValidationResult partitions a set of paths by existence.
// Passed and Failed keep the input order.
type ValidationResult struct {
	Passed    []string
	Failed    []string
	FailCount int
}

// OK reports whether every path exists.
func (v ValidationResult) OK() bool {
	return v.FailCount == 0
}

// ValidatePaths checks that each path exists, as a file or a directory.
// Any stat error, including permission denied, counts as missing.
func ValidatePaths(paths ...string) ValidationResult {
	var res ValidationResult
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			res.Failed = append(res.Failed, p)
			continue
		}
		res.Passed = append(res.Passed, p)
	}
	res.FailCount = len(res.Failed)
	return res
}

// Nested reports whether child is parent or lies below it once both are
// made absolute and their symlinks resolved.
func Nested(parent, child string) bool {
	p, perr := canonical(parent)
	c, cerr := canonical(child)
	if perr != nil || cerr != nil {
		return false
	}
	rel, err := filepath.Rel(p, c)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

func canonical(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}
