package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/solarhub/solarhub-api/utils"
)

type compensation struct {
	name string
	undo func(ctx context.Context) error
}

// Compensations collects undo actions for steps that already took effect.
// Run executes them newest first.
type Compensations struct {
	steps []compensation
}

// Push registers the undo action for a completed step
func (c *Compensations) Push(name string, undo func(ctx context.Context) error) {
	c.steps = append(c.steps, compensation{name: name, undo: undo})
}

// Len returns the number of pending compensations
func (c *Compensations) Len() int {
	return len(c.steps)
}

// Run executes every compensation in reverse order, continuing past failures.
// The caller's cancellation does not stop compensations.
func (c *Compensations) Run(ctx context.Context, logger *zap.Logger) []error {
	ctx = context.WithoutCancel(ctx)
	var failed []error
	for i := len(c.steps) - 1; i >= 0; i-- {
		step := c.steps[i]
		err := step.undo(ctx)
		utils.CompensationsTotal.WithLabelValues(utils.Outcome(err)).Inc()
		if err != nil {
			logger.Error("Compensation failed", zap.String("step", step.name), zap.Error(err))
			failed = append(failed, err)
			continue
		}
		logger.Info("Compensation applied", zap.String("step", step.name))
	}
	c.steps = nil
	return failed
}
