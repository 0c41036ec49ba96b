package rules

import (
	"fmt"
	"strings"
)

// Type identifies the kind of backup a record describes.
type Type string

// Known rule types.
const (
	TypeFile   Type = "File"
	TypeFolder Type = "Folder"
	TypeRecent Type = "Recent"
)

// typeAliases maps lower-cased spellings to their canonical Type.
var typeAliases = map[string]Type{
	"file":       TypeFile,
	"filerule":   TypeFile,
	"r1":         TypeFile,
	"folder":     TypeFolder,
	"folderrule": TypeFolder,
	"r2":         TypeFolder,
	"recent":     TypeRecent,
	"recentrule": TypeRecent,
	"r3":         TypeRecent,
}

// NormalizeType returns the canonical Type for s. Unrecognized names are
// returned verbatim so the runner can report them as unknown.
func NormalizeType(s string) Type {
	if t, ok := typeAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return t
	}
	return Type(s)
}

// Known reports whether t is one of the supported rule types.
func (t Type) Known() bool {
	switch t {
	case TypeFile, TypeFolder, TypeRecent:
		return true
	default:
		return false
	}
}

// Record is a single parsed backup instruction.
//
// Filename is required iff Type is File; Count is required and positive
// iff Type is Recent.
type Record struct {
	ID           string `json:"id" yaml:"id" toml:"id"`
	Type         Type   `json:"type" yaml:"type" toml:"type"`
	OriginalPath string `json:"original_path" yaml:"original_path" toml:"original_path"`
	BackupPath   string `json:"backup_path" yaml:"backup_path" toml:"backup_path"`
	Filename     string `json:"filename,omitempty" yaml:"filename,omitempty" toml:"filename,omitempty"`
	Count        int    `json:"count,omitempty" yaml:"count,omitempty" toml:"count,omitempty"`

	// Line is the 1-based source line for line-format rule files, 0 otherwise.
	Line int `json:"-" yaml:"-" toml:"-"`

	// Problems lists field values that could not be decoded.
	Problems []string `json:"-" yaml:"-" toml:"-"`
}

// String returns a short description used in interactive pickers and logs.
func (r Record) String() string {
	switch r.Type {
	case TypeFile:
		return fmt.Sprintf("%s: %s %s/%s -> %s", r.ID, r.Type, r.OriginalPath, r.Filename, r.BackupPath)
	case TypeRecent:
		return fmt.Sprintf("%s: %s %d of %s -> %s", r.ID, r.Type, r.Count, r.OriginalPath, r.BackupPath)
	default:
		return fmt.Sprintf("%s: %s %s -> %s", r.ID, r.Type, r.OriginalPath, r.BackupPath)
	}
}

// AssignIDs gives every record without an id the id "rule-<n>", where n is
// its 1-based position.
func AssignIDs(records []Record) {
	for i := range records {
		if strings.TrimSpace(records[i].ID) == "" {
			records[i].ID = fmt.Sprintf("rule-%d", i+1)
		}
	}
}

// Filter returns the records whose id is in ids, preserving order.
// An empty ids returns records unchanged. Ids that match nothing are
// returned as missing.
func Filter(records []Record, ids []string) (selected []Record, missing []string) {
	if len(ids) == 0 {
		return records, nil
	}
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = false
	}
	for _, r := range records {
		if _, ok := want[r.ID]; ok {
			selected = append(selected, r)
			want[r.ID] = true
		}
	}
	for _, id := range ids {
		if !want[id] {
			missing = append(missing, id)
			want[id] = true
		}
	}
	return selected, missing
}
