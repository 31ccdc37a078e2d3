package worker_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/typesql/typesql/internal/worker"
)

func TestRunExecutesAllJobsAndPreservesOrder(t *testing.T) {
	jobs := make([]worker.Job[int], 0, 10)
	for i := 0; i < 10; i++ {
		i := i
		jobs = append(jobs, worker.Job[int]{
			Name: "job",
			Run: func(ctx context.Context) (int, error) {
				return i * i, nil
			},
		})
	}

	results := worker.Run(context.Background(), 3, jobs)
	require.Len(t, results, 10)
	for i, r := range results {
		require.NoError(t, r.Err)
		require.Equal(t, i*i, r.Value)
	}
}

func TestRunOneFailureDoesNotStopOthers(t *testing.T) {
	boom := errors.New("boom")
	jobs := []worker.Job[string]{
		{Name: "a", Run: func(ctx context.Context) (string, error) { return "ok", nil }},
		{Name: "b", Run: func(ctx context.Context) (string, error) { return "", boom }},
		{Name: "c", Run: func(ctx context.Context) (string, error) { return "ok", nil }},
	}

	results := worker.Run(context.Background(), 2, jobs)
	require.Len(t, results, 3)
	require.NoError(t, results[0].Err)
	require.ErrorIs(t, results[1].Err, boom)
	require.NoError(t, results[2].Err)
}

func TestRunRespectsConcurrencyLimit(t *testing.T) {
	const limit = 2
	var current, max int32
	jobs := make([]worker.Job[struct{}], 0, 20)
	for i := 0; i < 20; i++ {
		jobs = append(jobs, worker.Job[struct{}]{
			Name: "job",
			Run: func(ctx context.Context) (struct{}, error) {
				n := atomic.AddInt32(&current, 1)
				for {
					m := atomic.LoadInt32(&max)
					if n <= m || atomic.CompareAndSwapInt32(&max, m, n) {
						break
					}
				}
				atomic.AddInt32(&current, -1)
				return struct{}{}, nil
			},
		})
	}

	worker.Run(context.Background(), limit, jobs)
	require.LessOrEqual(t, int(atomic.LoadInt32(&max)), limit)
}

func TestRunDefaultsConcurrencyWhenNonPositive(t *testing.T) {
	jobs := []worker.Job[int]{
		{Name: "a", Run: func(ctx context.Context) (int, error) { return 1, nil }},
	}
	results := worker.Run(context.Background(), 0, jobs)
	require.Len(t, results, 1)
	require.Equal(t, 1, results[0].Value)
}
