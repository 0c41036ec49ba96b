package rules

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/thoreinstein/mimeo/internal/validator"
)

// Check reports the problems of a single record that make it unrunnable
// (errors) or that are likely mistakes (warnings). It does not touch the
// filesystem.
func Check(r Record) *validator.Result {
	res := &validator.Result{}

	for _, p := range r.Problems {
		res.AddError("", p, nil)
	}

	if !r.Type.Known() {
		res.AddError("type", "unknown rule type", string(r.Type))
	}
	if strings.TrimSpace(r.OriginalPath) == "" {
		res.AddError("original_path", "is required", nil)
	}
	if strings.TrimSpace(r.BackupPath) == "" {
		res.AddError("backup_path", "is required", nil)
	}

	switch r.Type {
	case TypeFile:
		switch {
		case r.Filename == "":
			res.AddError("filename", "is required for File rules", nil)
		case r.Filename != filepath.Base(r.Filename) || r.Filename == "." || r.Filename == "..":
			res.AddError("filename", "must be a plain file name inside original_path", r.Filename)
		}
		if r.Count != 0 {
			res.AddWarning("count", "is ignored for File rules", r.Count)
		}
	case TypeRecent:
		if r.Count <= 0 {
			res.AddError("count", "must be a positive integer for Recent rules", r.Count)
		}
		if r.Filename != "" {
			res.AddWarning("filename", "is ignored for Recent rules", r.Filename)
		}
	case TypeFolder:
		if within(r.OriginalPath, r.BackupPath) {
			res.AddError("backup_path", "must not be inside original_path", r.BackupPath)
		}
		if r.Filename != "" {
			res.AddWarning("filename", "is ignored for Folder rules", r.Filename)
		}
		if r.Count != 0 {
			res.AddWarning("count", "is ignored for Folder rules", r.Count)
		}
	}

	return res
}

// within reports whether child is parent or lies below it, comparing
// cleaned paths only.
func within(parent, child string) bool {
	if strings.TrimSpace(parent) == "" || strings.TrimSpace(child) == "" {
		return false
	}
	rel, err := filepath.Rel(filepath.Clean(parent), filepath.Clean(child))
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// CheckAll checks every record and reports duplicate ids. Each issue carries
// the rule id (and line, when known) in its Context.
func CheckAll(records []Record) *validator.Result {
	res := &validator.Result{}
	seen := make(map[string]bool, len(records))

	for _, r := range records {
		ctx := map[string]string{"rule": r.ID}
		if r.Line > 0 {
			ctx["line"] = strconv.Itoa(r.Line)
		}

		if seen[r.ID] {
			dup := &validator.Result{}
			dup.AddWarning("id", "is used by more than one rule", r.ID)
			res.Merge(dup, ctx)
		}
		seen[r.ID] = true

		res.Merge(Check(r), ctx)
	}

	return res
}
