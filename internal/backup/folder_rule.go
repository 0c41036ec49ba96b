package backup

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/dustin/go-humanize"

	"github.com/thoreinstein/mimeo/internal/rules"
)

// FolderRule copies the tree at OriginalPath.
type FolderRule struct {
	base
}

// NewFolderRule returns a FolderRule for rec.
func NewFolderRule(rec rules.Record, env Env) *FolderRule {
	return &FolderRule{base: newBase(rec, env)}
}

// Run implements Rule.
func (r *FolderRule) Run(ctx context.Context) RunOutcome {
	return r.execute(ctx, r.run)
}

func (r *FolderRule) run(ctx context.Context, t *trail) {
	if !r.checkRecord(ctx, t) {
		return
	}
	if !r.checkPaths(ctx, t, r.rec.OriginalPath, r.rec.BackupPath) {
		return
	}
	if !r.checkNotNested(ctx, t) {
		return
	}

	dst, ok := r.destination(ctx, t, SubjectForDir(r.rec.OriginalPath))
	if !ok {
		return
	}

	fr := FileResult{Source: r.rec.OriginalPath, Destination: dst}
	stats, err := copyTree(r.rec.OriginalPath, dst)
	fr.Bytes = stats.Bytes
	t.out.Bytes = stats.Bytes
	if err != nil {
		fr.CopyError = err.Error()
		t.out.Files = append(t.out.Files, fr)
		t.errorf(ctx, "copy of %s failed: %v", r.rec.OriginalPath, err)
		t.finish(StatusCopyFailed, errors.Mark(err, ErrCopyFailed))
		return
	}
	t.infof(ctx, "copied %s to %s (%d file(s), %s)",
		r.rec.OriginalPath, dst, stats.Files, humanize.IBytes(uint64(stats.Bytes)))

	verr := r.verify(ctx, t, &fr, r.env.Hasher.HashDirectory)
	t.out.Files = append(t.out.Files, fr)
	if verr != nil {
		t.finish(StatusVerificationFailed, verr)
		return
	}

	t.infof(ctx, "verified %s", dst)
	t.finish(StatusSuccess, nil)
}
