package jobs

import (
	"context"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"
)

type fakeSweeper struct {
	repaired int
	err      error
	calls    int
}

func (f *fakeSweeper) SweepOrphanedBills(context.Context) (int, error) {
	f.calls++
	return f.repaired, f.err
}

func TestReconSweepHandlerRunsSweep(t *testing.T) {
	sweeper := &fakeSweeper{repaired: 2}
	handler := NewReconSweepHandler(sweeper, nil)

	task, err := NewReconSweepTask(ReconSweepPayload{Reason: "manual"})
	require.NoError(t, err)

	require.NoError(t, handler(context.Background(), task))
	require.Equal(t, 1, sweeper.calls)
}

func TestReconSweepHandlerPropagatesFailure(t *testing.T) {
	sweeper := &fakeSweeper{err: errors.New("store down")}
	handler := NewReconSweepHandler(sweeper, nil)

	task, err := NewReconSweepTask(ReconSweepPayload{})
	require.NoError(t, err)

	require.Error(t, handler(context.Background(), task))
}

func TestReconSweepHandlerSkipsMalformedPayload(t *testing.T) {
	sweeper := &fakeSweeper{}
	handler := NewReconSweepHandler(sweeper, nil)

	err := handler(context.Background(), asynq.NewTask(TaskReconSweep, []byte("{")))
	require.ErrorIs(t, err, asynq.SkipRetry)
	require.Zero(t, sweeper.calls)
}
