package backup

import (
	"context"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/dustin/go-humanize"

	"github.com/thoreinstein/mimeo/internal/rules"
)

// FileRule copies one named file out of OriginalPath.
type FileRule struct {
	base
}

// NewFileRule returns a FileRule for rec.
func NewFileRule(rec rules.Record, env Env) *FileRule {
	return &FileRule{base: newBase(rec, env)}
}

// Run implements Rule.
func (r *FileRule) Run(ctx context.Context) RunOutcome {
	return r.execute(ctx, r.run)
}

func (r *FileRule) run(ctx context.Context, t *trail) {
	if !r.checkRecord(ctx, t) {
		return
	}

	src := filepath.Join(r.rec.OriginalPath, r.rec.Filename)
	if !r.checkPaths(ctx, t, r.rec.OriginalPath, r.rec.BackupPath, src) {
		return
	}

	dir, ok := r.destination(ctx, t, SubjectForFile(r.rec.Filename))
	if !ok {
		return
	}

	fr := FileResult{Source: src, Destination: filepath.Join(dir, r.rec.Filename)}
	n, err := copyFile(src, fr.Destination)
	fr.Bytes = n
	if err != nil {
		fr.CopyError = err.Error()
		t.out.Files = append(t.out.Files, fr)
		t.errorf(ctx, "copy of %s failed: %v", src, err)
		t.finish(StatusCopyFailed, errors.Mark(errors.Wrapf(err, "copying %s", src), ErrCopyFailed))
		return
	}
	t.out.Bytes = n
	t.infof(ctx, "copied %s to %s (%s)", src, dir, humanize.IBytes(uint64(n)))

	verr := r.verify(ctx, t, &fr, r.env.Hasher.HashFile)
	t.out.Files = append(t.out.Files, fr)
	if verr != nil {
		t.finish(StatusVerificationFailed, verr)
		return
	}

	t.infof(ctx, "verified %s", fr.Destination)
	t.finish(StatusSuccess, nil)
}
