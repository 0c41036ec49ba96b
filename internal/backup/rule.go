package backup

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/thoreinstein/mimeo/internal/logging"
	"github.com/thoreinstein/mimeo/internal/rules"
)

// Rule is a runnable backup rule.
type Rule interface {
	ID() string
	Type() rules.Type

	// Run validates, copies and verifies. It never panics and never
	// returns an error; the outcome carries both.
	Run(ctx context.Context) RunOutcome
}

// Env holds the collaborators shared by all rules of a run.
type Env struct {
	Logger *slog.Logger
	Hasher *Hasher
	Namer  *Namer

	// DryRun validates paths and reports the destination without creating
	// or copying anything.
	DryRun bool
}

func (e Env) withDefaults() Env {
	if e.Logger == nil {
		e.Logger = logging.NewDiscard()
	}
	if e.Hasher == nil {
		e.Hasher = NewHasher(DefaultAlgorithm)
	}
	if e.Namer == nil {
		e.Namer = NewNamer(nil)
	}
	return e
}

// base carries the record and environment common to every variant.
type base struct {
	rec rules.Record
	env Env
}

func newBase(rec rules.Record, env Env) base {
	return base{rec: rec, env: env.withDefaults()}
}

// ID returns the rule id.
func (b base) ID() string { return b.rec.ID }

// Type returns the rule type.
func (b base) Type() rules.Type { return b.rec.Type }

// execute runs body with a fresh trail and converts a panic into a
// CopyFailed outcome.
func (b base) execute(ctx context.Context, body func(context.Context, *trail)) (out RunOutcome) {
	t := &trail{
		logger: b.env.Logger.With("rule", b.rec.ID),
		out:    RunOutcome{RuleID: b.rec.ID, RuleType: b.rec.Type},
	}

	defer func() {
		if p := recover(); p != nil {
			t.errorf(ctx, "unexpected failure: %v", p)
			t.done = false
			t.finish(StatusCopyFailed, errors.Mark(errors.Newf("panic: %v", p), ErrCopyFailed))
		}
		out = t.out
	}()

	body(ctx, t)
	return t.out
}

// checkRecord reports record-level problems (filename, count, decode
// errors). It returns false if the rule cannot run.
func (b base) checkRecord(ctx context.Context, t *trail) bool {
	issues := rules.Check(b.rec).Errors()
	if len(issues) == 0 {
		return true
	}
	for _, i := range issues {
		msg := i.Message
		if i.Field != "" {
			msg = i.Field + " " + msg
		}
		t.errorf(ctx, "invalid rule: %s", msg)
	}
	t.finish(StatusValidationFailed, errors.Mark(
		errors.Newf("rule %s has %d invalid field(s)", b.rec.ID, len(issues)), ErrValidationFailed))
	return false
}

// checkPaths validates that every path exists. It returns false if any is
// missing.
func (b base) checkPaths(ctx context.Context, t *trail, paths ...string) bool {
	v := ValidatePaths(paths...)
	if v.OK() {
		t.debugf(ctx, "validated %d path(s)", len(v.Passed))
		return true
	}
	for _, p := range v.Failed {
		t.errorf(ctx, "path does not exist: %s", p)
	}
	t.finish(StatusValidationFailed, errors.Mark(
		errors.Newf("%d of %d path(s) missing: %s", v.FailCount, len(paths), strings.Join(v.Failed, ", ")),
		ErrValidationFailed))
	return false
}

// checkNotNested rejects a backup root inside the source tree, which a
// recursive copy would walk into.
func (b base) checkNotNested(ctx context.Context, t *trail) bool {
	if !Nested(b.rec.OriginalPath, b.rec.BackupPath) {
		return true
	}
	t.errorf(ctx, "backup path %s is inside original path %s", b.rec.BackupPath, b.rec.OriginalPath)
	t.finish(StatusValidationFailed, errors.Mark(
		errors.Newf("backup path %s is inside original path %s", b.rec.BackupPath, b.rec.OriginalPath),
		ErrValidationFailed))
	return false
}

// destination creates the timestamped directory, or in dry-run mode only
// computes it. It returns false if the directory could not be created.
func (b base) destination(ctx context.Context, t *trail, subject string) (string, bool) {
	if b.env.DryRun {
		dst := b.env.Namer.Path(b.rec.BackupPath, subject)
		t.infof(ctx, "dry run: would back up %s to %s", b.rec.OriginalPath, dst)
		t.finish(StatusSuccess, nil)
		return "", false
	}

	dst, err := b.env.Namer.NewDestination(b.rec.BackupPath, subject)
	if err != nil {
		t.errorf(ctx, "cannot create destination: %v", err)
		t.finish(StatusCopyFailed, errors.Mark(err, ErrCopyFailed))
		return "", false
	}
	t.out.Destination = dst
	t.debugf(ctx, "created destination %s", dst)
	return dst, true
}

// verify hashes src and dst with hash and records the result on fr.
func (b base) verify(ctx context.Context, t *trail, fr *FileResult, hash func(string) (string, error)) error {
	srcSum, err := hash(fr.Source)
	if err != nil {
		t.errorf(ctx, "cannot hash source %s: %v", fr.Source, err)
		return errors.Mark(err, ErrVerificationFailed)
	}
	fr.SourceDigest = srcSum

	dstSum, err := hash(fr.Destination)
	if err != nil {
		t.errorf(ctx, "cannot hash copy %s: %v", fr.Destination, err)
		return errors.Mark(err, ErrVerificationFailed)
	}
	fr.DestinationDigest = dstSum

	if srcSum != dstSum {
		t.errorf(ctx, "digest mismatch: %s (%s) != %s (%s)", fr.Source, srcSum, fr.Destination, dstSum)
		return errors.Wrapf(ErrVerificationFailed, "%s differs from %s", fr.Destination, fr.Source)
	}

	fr.Verified = true
	t.debugf(ctx, "verified %s (%s %s)", fr.Destination, b.env.Hasher.Algorithm(), dstSum)
	return nil
}

// trail accumulates the outcome of one rule and mirrors each detail
// message to the logger.
type trail struct {
	logger *slog.Logger
	out    RunOutcome
	done   bool
}

func (t *trail) log(ctx context.Context, level slog.Level, detail bool, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if detail {
		t.out.Detail = append(t.out.Detail, msg)
	}
	t.logger.Log(ctx, level, msg)
}

func (t *trail) infof(ctx context.Context, format string, args ...any) {
	t.log(ctx, slog.LevelInfo, true, format, args...)
}

func (t *trail) errorf(ctx context.Context, format string, args ...any) {
	t.log(ctx, slog.LevelError, true, format, args...)
}

// debugf logs without adding to the detail trail.
func (t *trail) debugf(ctx context.Context, format string, args ...any) {
	t.log(ctx, slog.LevelDebug, false, format, args...)
}

// finish sets the final status. Later calls are ignored.
func (t *trail) finish(status Status, err error) {
	if t.done {
		return
	}
	t.done = true
	t.out.Status = status
	t.out.Err = err
}
