package runner

import (
	"context"
	"fmt"
	"log"
	"time"

	"devtask/internal/command"
	"devtask/internal/config"
	"devtask/internal/exitcodes"
	"devtask/internal/fsops"
	"devtask/internal/history"
	"devtask/internal/metrics"
	"devtask/internal/safety"
	"devtask/internal/task"
)

// UnknownTaskError is returned when a requested task name is not
// registered.
type UnknownTaskError struct {
	Name string
}

func (e *UnknownTaskError) Error() string {
	return fmt.Sprintf("unknown task: %s", e.Name)
}

// Runner executes tasks sequentially: each task's prerequisite chain runs
// first, depth-first, and every task runs at most once per invocation.
type Runner struct {
	cfg       *config.Config
	registry  *task.Registry
	logger    *log.Logger
	commands  command.Runner
	deleter   fsops.Deleter
	validator *safety.Validator
	db        *history.DB
	dryRun    bool
	quiet     bool
}

// Option configures a Runner.
type Option func(*Runner)

// WithCommandRunner swaps the external command runner. Used by tests to
// inject a MockRunner.
func WithCommandRunner(cr command.Runner) Option {
	return func(r *Runner) {
		r.commands = cr
	}
}

// WithDeleter swaps the filesystem deleter. Used by tests to prove
// dry-run mode never deletes.
func WithDeleter(d fsops.Deleter) Option {
	return func(r *Runner) {
		r.deleter = d
	}
}

// WithValidator swaps the safety validator.
func WithValidator(v *safety.Validator) Option {
	return func(r *Runner) {
		r.validator = v
	}
}

// WithHistory records task runs and removals to the given database.
func WithHistory(db *history.DB) Option {
	return func(r *Runner) {
		r.db = db
	}
}

// DryRun makes the runner announce what it would do without executing
// commands or deleting paths.
func DryRun() Option {
	return func(r *Runner) {
		r.dryRun = true
	}
}

// Quiet suppresses per-path removal announcements.
func Quiet() Option {
	return func(r *Runner) {
		r.quiet = true
	}
}

// New creates a Runner over the given registry.
func New(cfg *config.Config, registry *task.Registry, logger *log.Logger, opts ...Option) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	r := &Runner{
		cfg:       cfg,
		registry:  registry,
		logger:    logger,
		commands:  command.NewExecRunner(),
		deleter:   fsops.OSDeleter{},
		validator: safety.NewValidator([]string{cfg.Root}, cfg.ProtectedPaths),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run resolves each requested name (following namespace defaults) and runs
// it with its prerequisite chain. Execution stops at the first failure;
// the returned error carries the external tool's exit status unmodified.
func (r *Runner) Run(ctx context.Context, names ...string) error {
	runID := history.NewRunID()
	seen := make(map[string]bool)

	for _, name := range names {
		t, ok := r.registry.Resolve(name)
		if !ok {
			return &UnknownTaskError{Name: name}
		}
		if err := r.runTask(ctx, runID, t, seen); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) runTask(ctx context.Context, runID string, t task.Task, seen map[string]bool) error {
	if seen[t.Name] {
		return nil
	}
	seen[t.Name] = true

	for _, pre := range t.Pre {
		preTask, ok := r.registry.Get(pre)
		if !ok {
			// NewRegistry validated pre references; this is unreachable
			// unless the registry was built by hand.
			return &UnknownTaskError{Name: pre}
		}
		if err := r.runTask(ctx, runID, preTask, seen); err != nil {
			return err
		}
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if t.IsAggregate() {
		return nil
	}

	start := time.Now()
	var status string
	var exitCode int
	var runErr error

	if t.IsClean() {
		status = r.runClean(runID, t)
	} else {
		status, exitCode, runErr = r.runCommand(t)
	}

	elapsed := time.Since(start)
	metrics.RecordTaskRun(t.Name, status, elapsed)
	r.recordRun(history.TaskRun{
		RunID:      runID,
		Task:       t.Name,
		Status:     status,
		ExitCode:   exitCode,
		StartedAt:  start,
		FinishedAt: start.Add(elapsed),
		Error:      errString(runErr),
	})

	return runErr
}

// runClean removes the task's targets best-effort. Clean tasks never fail:
// missing targets are the normal case, and the validator quietly skips
// anything outside the task root.
func (r *Runner) runClean(runID string, t task.Task) string {
	targets := t.Targets(r.cfg.Root)

	allowed := make([]string, 0, len(targets))
	for _, target := range targets {
		if err := r.validator.ValidateRemovalTarget(target); err != nil {
			r.logger.Printf("SKIP %s: %v", target, err)
			metrics.RemovalsSkippedTotal.Inc()
			r.recordRemoval(runID, t.Name, target, history.OutcomeSkip, err.Error())
			continue
		}
		allowed = append(allowed, target)
	}

	if r.dryRun {
		for _, target := range allowed {
			r.logger.Printf("[DRY RUN] Would remove %s", target)
			r.recordRemoval(runID, t.Name, target, history.OutcomeDryRun, "")
		}
		return history.StatusDryRun
	}

	remover := r.newRemover()
	remover.RemovePaths(allowed...)
	for _, target := range allowed {
		metrics.PathsRemovedTotal.Inc()
		r.recordRemoval(runID, t.Name, target, history.OutcomeRemoved, "")
	}
	return history.StatusOK
}

// runCommand executes the task's external tool in the task root. The
// tool's exit status and output are the entire error signal; nothing is
// translated.
func (r *Runner) runCommand(t task.Task) (string, int, error) {
	inv := *t.Command

	if r.dryRun {
		r.logger.Printf("[DRY RUN] Would run %s", inv.String())
		return history.StatusDryRun, 0, nil
	}

	r.logger.Printf("Running %s", inv.String())
	output, err := r.commands.Run(r.cfg.Root, inv.Program, inv.Args...)
	if output != "" {
		r.logger.Print(output)
	}
	if err != nil {
		metrics.ErrorsTotal.Inc()
		if command.HasExitCode(err) {
			return history.StatusFail, command.ExitCode(err, exitcodes.RuntimeError), err
		}
		return history.StatusError, exitcodes.RuntimeError, err
	}
	return history.StatusOK, 0, nil
}

func (r *Runner) newRemover() *fsops.Remover {
	opts := []fsops.RemoverOption{
		fsops.WithDeleter(r.deleter),
		fsops.WithOutput(r.logger.Writer()),
	}
	if r.quiet {
		opts = append(opts, fsops.Quiet())
	}
	return fsops.NewRemover(opts...)
}

func (r *Runner) recordRun(run history.TaskRun) {
	if r.db == nil {
		return
	}
	if err := r.db.RecordTaskRun(run); err != nil {
		r.logger.Printf("failed to record task run: %v", err)
	}
}

func (r *Runner) recordRemoval(runID, taskName, path, outcome, reason string) {
	if r.db == nil {
		return
	}
	err := r.db.RecordRemoval(history.Removal{
		RunID:   runID,
		Task:    taskName,
		Path:    path,
		Outcome: outcome,
		Reason:  reason,
	})
	if err != nil {
		r.logger.Printf("failed to record removal: %v", err)
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
