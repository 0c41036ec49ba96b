package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/mimeo/internal/validator"
)

func fields(issues []validator.Issue) []string {
	out := make([]string, 0, len(issues))
	for _, i := range issues {
		out = append(out, i.Field)
	}
	return out
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name         string
		rec          Record
		wantErrors   []string
		wantWarnings []string
	}{
		{
			name: "valid file rule",
			rec:  Record{ID: "a", Type: TypeFile, OriginalPath: "/src", BackupPath: "/bk", Filename: "a.txt"},
		},
		{
			name:       "file rule without filename",
			rec:        Record{ID: "a", Type: TypeFile, OriginalPath: "/src", BackupPath: "/bk"},
			wantErrors: []string{"filename"},
		},
		{
			name:       "file rule with nested filename",
			rec:        Record{ID: "a", Type: TypeFile, OriginalPath: "/src", BackupPath: "/bk", Filename: "sub/a.txt"},
			wantErrors: []string{"filename"},
		},
		{
			name:         "file rule with count",
			rec:          Record{ID: "a", Type: TypeFile, OriginalPath: "/src", BackupPath: "/bk", Filename: "a.txt", Count: 2},
			wantWarnings: []string{"count"},
		},
		{
			name: "valid recent rule",
			rec:  Record{ID: "r", Type: TypeRecent, OriginalPath: "/src", BackupPath: "/bk", Count: 1},
		},
		{
			name:       "recent rule with zero count",
			rec:        Record{ID: "r", Type: TypeRecent, OriginalPath: "/src", BackupPath: "/bk"},
			wantErrors: []string{"count"},
		},
		{
			name:       "recent rule with negative count",
			rec:        Record{ID: "r", Type: TypeRecent, OriginalPath: "/src", BackupPath: "/bk", Count: -2},
			wantErrors: []string{"count"},
		},
		{
			name:         "folder rule with extras",
			rec:          Record{ID: "f", Type: TypeFolder, OriginalPath: "/src", BackupPath: "/bk", Filename: "x", Count: 1},
			wantWarnings: []string{"filename", "count"},
		},
		{
			name:       "folder backed up inside itself",
			rec:        Record{ID: "f", Type: TypeFolder, OriginalPath: "/src", BackupPath: "/src/bk"},
			wantErrors: []string{"backup_path"},
		},
		{
			name:       "folder backed up onto itself",
			rec:        Record{ID: "f", Type: TypeFolder, OriginalPath: "/src/", BackupPath: "/src"},
			wantErrors: []string{"backup_path"},
		},
		{
			name: "folder beside a similarly named backup",
			rec:  Record{ID: "f", Type: TypeFolder, OriginalPath: "/src", BackupPath: "/src-backup"},
		},
		{
			name: "recent rule may back up into its source",
			rec:  Record{ID: "r", Type: TypeRecent, OriginalPath: "/logs", BackupPath: "/logs/bk", Count: 1},
		},
		{
			name:       "missing paths",
			rec:        Record{ID: "f", Type: TypeFolder},
			wantErrors: []string{"original_path", "backup_path"},
		},
		{
			name:       "unknown type",
			rec:        Record{ID: "x", Type: "Bogus", OriginalPath: "/src", BackupPath: "/bk"},
			wantErrors: []string{"type"},
		},
		{
			name:       "decode problems",
			rec:        Record{ID: "r", Type: TypeRecent, OriginalPath: "/src", BackupPath: "/bk", Count: 1, Problems: []string{"count: bad"}},
			wantErrors: []string{""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Check(tt.rec)
			assert.ElementsMatch(t, tt.wantErrors, fields(res.Errors()))
			assert.ElementsMatch(t, tt.wantWarnings, fields(res.Warnings()))
		})
	}
}

func TestCheckAll(t *testing.T) {
	records := []Record{
		{ID: "a", Type: TypeFolder, OriginalPath: "/src", BackupPath: "/bk"},
		{ID: "a", Type: TypeRecent, OriginalPath: "/src", BackupPath: "/bk", Line: 4},
	}

	res := CheckAll(records)

	require.Len(t, res.Warnings(), 1)
	assert.Equal(t, "id", res.Warnings()[0].Field)

	require.Len(t, res.Errors(), 1)
	assert.Equal(t, "count", res.Errors()[0].Field)
	assert.Equal(t, map[string]string{"rule": "a", "line": "4"}, res.Errors()[0].Context)
}
