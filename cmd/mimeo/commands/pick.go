package commands

import (
	"fmt"
	"strings"

	"github.com/ktr0731/go-fuzzyfinder"

	"github.com/thoreinstein/mimeo/internal/errors"
	"github.com/thoreinstein/mimeo/internal/rules"
)

// pickRulesFuzzy lets the user choose rules with a fuzzy finder. Aborting
// selects nothing. The result keeps file order.
func pickRulesFuzzy(records []rules.Record) ([]rules.Record, error) {
	if len(records) == 0 {
		return nil, nil
	}

	idxs, err := fuzzyfinder.FindMulti(
		records,
		func(i int) string {
			return records[i].String()
		},
		fuzzyfinder.WithPromptString("rules> "),
		fuzzyfinder.WithPreviewWindow(func(i, _, _ int) string {
			if i == -1 {
				return ""
			}
			return describeRecord(records[i])
		}),
	)
	if err != nil {
		if errors.Is(err, fuzzyfinder.ErrAbort) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "interactive selection failed")
	}

	chosen := make(map[int]bool, len(idxs))
	for _, i := range idxs {
		chosen[i] = true
	}
	var out []rules.Record
	for i, r := range records {
		if chosen[i] {
			out = append(out, r)
		}
	}
	return out, nil
}

// describeRecord renders a record for the preview pane.
func describeRecord(r rules.Record) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "ID:     %s\n", r.ID)
	fmt.Fprintf(&sb, "Type:   %s\n", r.Type)
	fmt.Fprintf(&sb, "From:   %s\n", r.OriginalPath)
	fmt.Fprintf(&sb, "To:     %s\n", r.BackupPath)
	switch r.Type {
	case rules.TypeFile:
		fmt.Fprintf(&sb, "File:   %s\n", r.Filename)
	case rules.TypeRecent:
		fmt.Fprintf(&sb, "Count:  %d\n", r.Count)
	}
	if r.Line > 0 {
		fmt.Fprintf(&sb, "Line:   %d\n", r.Line)
	}
	return sb.String()
}
