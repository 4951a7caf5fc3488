package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestCompensationsRunNewestFirst(t *testing.T) {
	var undo Compensations
	var order []string
	for _, name := range []string{"first", "second", "third"} {
		undo.Push(name, func(ctx context.Context) error {
			order = append(order, name)
			return nil
		})
	}
	assert.Equal(t, 3, undo.Len())

	failed := undo.Run(context.Background(), zap.NewNop())
	assert.Empty(t, failed)
	assert.Equal(t, []string{"third", "second", "first"}, order)
	assert.Equal(t, 0, undo.Len())
}

func TestCompensationsContinuePastFailures(t *testing.T) {
	var undo Compensations
	ran := 0
	undo.Push("ok", func(ctx context.Context) error { ran++; return nil })
	undo.Push("broken", func(ctx context.Context) error { ran++; return errors.New("boom") })

	failed := undo.Run(context.Background(), zap.NewNop())
	assert.Len(t, failed, 1)
	assert.Equal(t, 2, ran)
}

func TestCompensationsIgnoreCallerCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var undo Compensations
	var sawErr error
	undo.Push("check", func(ctx context.Context) error {
		sawErr = ctx.Err()
		return nil
	})
	undo.Run(ctx, zap.NewNop())
	assert.NoError(t, sawErr)
}
