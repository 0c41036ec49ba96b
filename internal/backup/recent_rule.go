package backup

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/dustin/go-humanize"

	"github.com/thoreinstein/mimeo/internal/rules"
)

// RecentRule copies the Count most recently modified regular files of
// OriginalPath. A failed copy does not stop the remaining ones.
type RecentRule struct {
	base
}

// NewRecentRule returns a RecentRule for rec.
func NewRecentRule(rec rules.Record, env Env) *RecentRule {
	return &RecentRule{base: newBase(rec, env)}
}

// Run implements Rule.
func (r *RecentRule) Run(ctx context.Context) RunOutcome {
	return r.execute(ctx, r.run)
}

func (r *RecentRule) run(ctx context.Context, t *trail) {
	if !r.checkRecord(ctx, t) {
		return
	}
	if !r.checkPaths(ctx, t, r.rec.OriginalPath, r.rec.BackupPath) {
		return
	}

	dst, ok := r.destination(ctx, t, SubjectForDir(r.rec.OriginalPath))
	if !ok {
		return
	}

	selected, err := SelectRecent(r.rec.OriginalPath, r.rec.Count)
	if err != nil {
		t.errorf(ctx, "cannot select files in %s: %v", r.rec.OriginalPath, err)
		t.finish(StatusCopyFailed, errors.Mark(err, ErrCopyFailed))
		return
	}
	t.infof(ctx, "selected %d of the %d most recent file(s) in %s", len(selected), r.rec.Count, r.rec.OriginalPath)

	var failed []string
	for i, src := range selected {
		fr := FileResult{Source: src, Destination: filepath.Join(dst, filepath.Base(src))}
		n, err := copyFileFunc(src, fr.Destination)
		fr.Bytes = n
		if err != nil {
			fr.CopyError = err.Error()
			failed = append(failed, fmt.Sprintf("#%d (%s)", i+1, filepath.Base(src)))
			t.errorf(ctx, "copy %d of %d failed: %s: %v", i+1, len(selected), src, err)
		} else {
			t.out.Bytes += n
		}
		t.out.Files = append(t.out.Files, fr)
	}

	copied := len(selected) - len(failed)
	t.infof(ctx, "copied %d of %d file(s) to %s (%s)", copied, len(selected), dst, humanize.IBytes(uint64(t.out.Bytes)))

	var verifyErrs []error
	for i := range t.out.Files {
		fr := &t.out.Files[i]
		if fr.CopyError != "" {
			continue
		}
		if err := r.verify(ctx, t, fr, r.env.Hasher.HashFile); err != nil {
			verifyErrs = append(verifyErrs, err)
		}
	}

	switch {
	case len(failed) > 0:
		t.errorf(ctx, "%d of %d file(s) failed to copy: %s", len(failed), len(selected), strings.Join(failed, ", "))
		t.finish(StatusCopyFailed, errors.Wrapf(ErrCopyFailed, "%d of %d file(s) failed to copy", len(failed), len(selected)))
	case len(verifyErrs) > 0:
		t.finish(StatusVerificationFailed, errors.Mark(errors.Join(verifyErrs...), ErrVerificationFailed))
	default:
		if copied > 0 {
			t.infof(ctx, "verified %d file(s)", copied)
		}
		t.finish(StatusSuccess, nil)
	}
}
