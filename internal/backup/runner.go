package backup

import (
	"context"
	"log/slog"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/thoreinstein/mimeo/internal/logging"
	"github.com/thoreinstein/mimeo/internal/rules"
)

// Runner processes rule records one after another.
type Runner struct {
	logger  *slog.Logger
	hasher  *Hasher
	now     func() time.Time
	spacing time.Duration
	sleep   func(context.Context, time.Duration) error
	dryRun  bool
	runID   string
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger. Without it the logger is taken from the
// context passed to ProcessAll.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = l
	}
}

// WithHasher sets the digest used for verification.
func WithHasher(h *Hasher) Option {
	return func(r *Runner) {
		if h != nil {
			r.hasher = h
		}
	}
}

// WithClock sets the clock used to name destinations.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		if now != nil {
			r.now = now
		}
	}
}

// WithSpacing sets the pause between consecutive rules, so that rules
// backing up the same subject get distinct timestamps.
func WithSpacing(d time.Duration) Option {
	return func(r *Runner) {
		if d >= 0 {
			r.spacing = d
		}
	}
}

// WithSleep replaces the spacing wait, mainly for tests.
func WithSleep(sleep func(context.Context, time.Duration) error) Option {
	return func(r *Runner) {
		if sleep != nil {
			r.sleep = sleep
		}
	}
}

// WithDryRun makes rules validate and report without copying.
func WithDryRun(dryRun bool) Option {
	return func(r *Runner) {
		r.dryRun = dryRun
	}
}

// WithRunID sets the id attached to every log record of the run.
func WithRunID(id string) Option {
	return func(r *Runner) {
		if id != "" {
			r.runID = id
		}
	}
}

// NewRunner creates a Runner with the given options.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		hasher: NewHasher(DefaultAlgorithm),
		now:    time.Now,
		sleep:  sleepContext,
		runID:  uuid.NewString(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RunID returns the id of this run.
func (r *Runner) RunID() string {
	return r.runID
}

// ProcessAll runs records sequentially in input order and returns one
// outcome per record that was reached. A failing record never stops later
// ones; only cancellation of ctx during the spacing wait ends the run early.
func (r *Runner) ProcessAll(ctx context.Context, records []rules.Record) []RunOutcome {
	logger := r.logger
	if logger == nil {
		logger = logging.FromContext(ctx)
	}
	logger = logger.With("run", r.runID)

	env := Env{
		Logger: logger,
		Hasher: r.hasher,
		Namer:  NewNamer(r.now),
		DryRun: r.dryRun,
	}

	outcomes := make([]RunOutcome, 0, len(records))
	for i, rec := range records {
		if i > 0 && r.spacing > 0 {
			if err := r.sleep(ctx, r.spacing); err != nil {
				logger.ErrorContext(ctx, "run interrupted", "remaining", len(records)-i, "error", err)
				break
			}
		}

		logger.InfoContext(ctx, "processing rule", "rule", rec.ID, "type", string(rec.Type))
		out := r.process(ctx, rec, env)
		if out.Failed() {
			logger.WarnContext(ctx, "rule failed", "rule", out.RuleID, "status", string(out.Status))
		} else {
			logger.InfoContext(ctx, "rule finished", "rule", out.RuleID, "status", string(out.Status))
		}
		outcomes = append(outcomes, out)
	}
	return outcomes
}

// process builds the rule for rec and runs it.
func (r *Runner) process(ctx context.Context, rec rules.Record, env Env) RunOutcome {
	var rule Rule
	switch rec.Type {
	case rules.TypeFile:
		rule = NewFileRule(rec, env)
	case rules.TypeFolder:
		rule = NewFolderRule(rec, env)
	case rules.TypeRecent:
		rule = NewRecentRule(rec, env)
	default:
		env.Logger.ErrorContext(ctx, "unknown rule type", "rule", rec.ID, "type", string(rec.Type))
		err := errors.Mark(errors.Newf("rule %s: unknown rule type %q", rec.ID, rec.Type), ErrUnknownRuleType)
		return RunOutcome{
			RuleID:   rec.ID,
			RuleType: rec.Type,
			Status:   StatusValidationFailed,
			Detail:   []string{"unknown rule type"},
			Err:      errors.Mark(err, ErrValidationFailed),
		}
	}
	return rule.Run(ctx)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
