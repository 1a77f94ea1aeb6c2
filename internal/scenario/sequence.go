// internal/scenario/sequence.go
package scenario

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/lispico-e2e/api/schemas"
)

// Step is one action or check of a sequence.
type Step struct {
	Name string
	Do   func(ctx context.Context, page schemas.PageContext) error
}

// Sequence is a linear script of steps for one user-facing workflow. Steps
// run strictly in order and the first failure aborts the sequence. There is
// no branching and no retry.
type Sequence struct {
	Name  string
	Steps []Step
}

// StepError identifies the step a sequence failed at.
type StepError struct {
	Sequence string
	Step     string
	Index    int
	Err      error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: step %d (%s): %v", e.Sequence, e.Index+1, e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// Prepend returns a copy of s with pre's steps placed first.
func (s Sequence) Prepend(pre Sequence) Sequence {
	steps := make([]Step, 0, len(pre.Steps)+len(s.Steps))
	for _, st := range pre.Steps {
		steps = append(steps, Step{Name: pre.Name + ": " + st.Name, Do: st.Do})
	}
	steps = append(steps, s.Steps...)
	return Sequence{Name: s.Name, Steps: steps}
}

// Run executes the sequence against page.
func (s Sequence) Run(ctx context.Context, page schemas.PageContext, logger *zap.Logger) error {
	log := logger.With(zap.String("scenario", s.Name), zap.String("page_id", page.ID()))
	log.Debug("Sequence started.", zap.Int("steps", len(s.Steps)))

	for i, step := range s.Steps {
		if err := ctx.Err(); err != nil {
			return &StepError{Sequence: s.Name, Step: step.Name, Index: i, Err: err}
		}
		start := time.Now()
		if err := step.Do(ctx, page); err != nil {
			log.Debug("Step failed.",
				zap.Int("step", i+1),
				zap.String("name", step.Name),
				zap.Duration("elapsed", time.Since(start)),
				zap.Error(err))
			return &StepError{Sequence: s.Name, Step: step.Name, Index: i, Err: err}
		}
		log.Debug("Step done.",
			zap.Int("step", i+1),
			zap.String("name", step.Name),
			zap.Duration("elapsed", time.Since(start)))
	}
	return nil
}
