package mapreduce

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/shapley/backend"
	"github.com/arloliu/shapley/types"
)

func sumChunk(_ context.Context, inputs []int, _ int) (int, error) {
	total := 0
	for _, v := range inputs {
		total += v
	}

	return total, nil
}

func sumPartials(partials []int) (int, error) {
	total := 0
	for _, v := range partials {
		total += v
	}

	return total, nil
}

func TestJob_ChunkedSum(t *testing.T) {
	inputs := make([]int, 100)
	for i := range inputs {
		inputs[i] = i + 1
	}

	job := NewJob(sumChunk, sumPartials,
		WithBackend[int, int](backend.NewLocal()),
		WithNJobs[int, int](4),
	)

	result, stats, err := job.Run(context.Background(), inputs)
	require.NoError(t, err)
	require.Equal(t, 5050, result)

	total := 0
	for _, s := range stats {
		total += s.Inputs
	}
	require.Equal(t, len(inputs), total, "chunks must partition the input")
}

func TestJob_ReplicatedInputs(t *testing.T) {
	job := NewJob(sumChunk, sumPartials,
		WithBackend[int, int](backend.NewLocal()),
		WithNJobs[int, int](3),
		WithChunking[int, int](false),
	)

	result, stats, err := job.Run(context.Background(), []int{1, 2, 3})
	require.NoError(t, err)

	// Every worker saw the whole input.
	require.Equal(t, 6*len(stats), result)
	for _, s := range stats {
		require.Equal(t, 3, s.Inputs)
	}
}

func TestJob_MoreWorkersThanInputs(t *testing.T) {
	job := NewJob(sumChunk, sumPartials,
		WithBackend[int, int](backend.NewLocal()),
		WithNJobs[int, int](8),
	)

	result, stats, err := job.Run(context.Background(), []int{5, 7})
	require.NoError(t, err)
	require.Equal(t, 12, result)
	require.LessOrEqual(t, len(stats), 2, "no worker receives an empty chunk")
}

func TestJob_WorkerFailureAbortsJob(t *testing.T) {
	boom := errors.New("oracle exploded")

	job := NewJob(
		func(_ context.Context, inputs []int, jobID int) (int, error) {
			if jobID == 0 {
				return 0, boom
			}
			return sumChunk(context.Background(), inputs, jobID)
		},
		sumPartials,
		WithBackend[int, int](backend.NewLocal()),
		WithNJobs[int, int](2),
	)

	_, stats, err := job.Run(context.Background(), []int{1, 2, 3, 4})
	require.ErrorIs(t, err, boom)
	require.Nil(t, stats, "no partial-success mode")
}

func TestJob_MissingPieces(t *testing.T) {
	_, _, err := NewJob[int, int](nil, sumPartials, WithBackend[int, int](backend.NewLocal())).
		Run(context.Background(), []int{1})
	require.ErrorIs(t, err, types.ErrNoMapFunc)

	_, _, err = NewJob(sumChunk, nil, WithBackend[int, int](backend.NewLocal())).
		Run(context.Background(), []int{1})
	require.ErrorIs(t, err, types.ErrNoReduceFunc)

	_, _, err = NewJob(sumChunk, sumPartials).Run(context.Background(), []int{1})
	require.ErrorIs(t, err, types.ErrBackendRequired)
}
