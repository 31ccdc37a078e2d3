// Package worker runs a batch of independent jobs — one per SQL file being
// analyzed — concurrently, bounded by a fixed limit, using an
// errgroup-based fan-out.
package worker

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// DefaultMaxConcurrency is used when Run is given a limit <= 0.
const DefaultMaxConcurrency = 8

// Job is one unit of work, identified by Name for error reporting.
type Job[T any] struct {
	Name string
	Run  func(ctx context.Context) (T, error)
}

// Result pairs a Job's name with its outcome.
type Result[T any] struct {
	Name  string
	Value T
	Err   error
}

// Run executes jobs with at most maxConcurrency running at once, returning
// one Result per job in the same order jobs were given. Unlike
// errgroup.Group's own first-error-cancels-the-rest behavior, Run lets every
// job finish and reports each one's error independently — one malformed SQL
// file should not stop the whole batch from generating.
func Run[T any](ctx context.Context, maxConcurrency int, jobs []Job[T]) []Result[T] {
	if maxConcurrency <= 0 {
		maxConcurrency = DefaultMaxConcurrency
	}

	results := make([]Result[T], len(jobs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrency)

	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			value, err := job.Run(ctx)
			results[i] = Result[T]{Name: job.Name, Value: value, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	return results
}
