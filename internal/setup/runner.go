package setup

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/signature-opensource/cksetup/internal/checksum"
	"github.com/signature-opensource/cksetup/pkg/cksetup"
)

// StepError reports the script that failed a plan step. It matches both
// cksetup.ErrExecutionFailed and the underlying error with errors.Is.
type StepError struct {
	Item   string
	Phase  cksetup.Phase
	Script *cksetup.Script
	Err    error
}

func (e *StepError) Error() string {
	if e.Script == nil {
		return fmt.Sprintf("%s %s: %s: %v", e.Item, e.Phase, cksetup.ErrExecutionFailed, e.Err)
	}
	return fmt.Sprintf("%s %s: script %s: %s: %v", e.Item, e.Phase, e.Script, cksetup.ErrExecutionFailed, e.Err)
}

func (e *StepError) Unwrap() []error { return []error{cksetup.ErrExecutionFailed, e.Err} }

// RunnerOptions holds the optional collaborators of a Runner.
type RunnerOptions struct {
	// Journal receives one entry per executed script.
	Journal cksetup.ScriptJournal

	// Recorder receives the reached version of every item after success.
	Recorder cksetup.VersionRecorder

	// Checksum computes journal checksums. Defaults to normalized SHA-256.
	Checksum checksum.Calculator

	// Now is the journal clock. Defaults to time.Now.
	Now func() time.Time
}

// RunResult summarizes a successful run.
type RunResult struct {
	RunID    uuid.UUID
	Steps    int
	Scripts  int
	Recorded []string
}

// Runner executes plans.
// Thread-Safety: NOT safe for concurrent Run calls sharing a journal that is not.
type Runner struct {
	logger cksetup.Logger
	opts   RunnerOptions
}

// NewRunner creates a runner.
//
// Panics if logger is nil.
func NewRunner(logger cksetup.Logger, opts RunnerOptions) *Runner {
	if logger == nil {
		panic("logger cannot be nil")
	}
	if opts.Checksum == nil {
		opts.Checksum = checksum.New()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Runner{logger: logger, opts: opts}
}

// Run executes every step of plan in order. The first failure stops the run.
// Versions are recorded only when every step succeeded.
func (r *Runner) Run(ctx context.Context, plan *Plan) (RunResult, error) {
	result := RunResult{RunID: uuid.New()}
	r.logger.Verbose("Run %s: %d step(s)", result.RunID, len(plan.Steps))

	for _, step := range plan.Steps {
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("run %s interrupted before %s %s: %w", result.RunID, step.Item.FullName, step.Phase, err)
		}
		n, err := r.runStep(ctx, result.RunID, step)
		result.Scripts += n
		if err != nil {
			r.logger.Error("%v", err)
			return result, err
		}
		result.Steps++
	}

	if r.opts.Recorder != nil {
		for _, st := range plan.States {
			if st.Reached == nil {
				continue
			}
			if err := r.opts.Recorder.RecordVersion(ctx, result.RunID, st.Item.FullName, *st.Reached); err != nil {
				return result, fmt.Errorf("failed to record version %s of %s: %w", st.Reached, st.Item.FullName, err)
			}
			result.Recorded = append(result.Recorded, st.Item.FullName)
		}
	}

	r.logger.Info("Run %s completed: %d script(s) in %d step(s)", result.RunID, result.Scripts, result.Steps)
	return result, nil
}

// runStep executes one phase with an executor released on every path.
func (r *Runner) runStep(ctx context.Context, runID uuid.UUID, step PlanStep) (int, error) {
	if step.Handler == nil {
		return 0, &StepError{Item: step.Item.FullName, Phase: step.Phase, Err: cksetup.ErrMissingExecutor}
	}

	executor, err := step.Handler.CreateExecutor(ctx, step.Item)
	if err != nil {
		return 0, &StepError{Item: step.Item.FullName, Phase: step.Phase, Err: err}
	}
	defer step.Handler.ReleaseExecutor(executor)

	executed := 0
	for _, script := range step.Vector.Scripts {
		r.logger.Verbose("%s %s: %s", step.Item.FullName, step.Phase, script)
		if err := executor.Execute(ctx, script); err != nil {
			return executed, &StepError{Item: step.Item.FullName, Phase: step.Phase, Script: script, Err: err}
		}
		executed++

		if err := r.journal(ctx, runID, step, script); err != nil {
			return executed, err
		}
	}
	return executed, nil
}

func (r *Runner) journal(ctx context.Context, runID uuid.UUID, step PlanStep, script *cksetup.Script) error {
	if r.opts.Journal == nil {
		return nil
	}
	content, err := script.LoadContent()
	if err != nil {
		return fmt.Errorf("failed to reload %s for the journal: %w", script, err)
	}
	entry := cksetup.JournalEntry{
		RunID:      runID,
		ScriptID:   script.ID(),
		FullName:   step.Item.FullName,
		ScriptName: script.Name().Origin,
		Phase:      step.Phase,
		Checksum:   r.opts.Checksum.Normalized(content),
		ExecutedAt: r.opts.Now(),
	}
	if err := r.opts.Journal.RecordScript(ctx, entry); err != nil {
		return fmt.Errorf("failed to journal %s: %w", script, err)
	}
	return nil
}
