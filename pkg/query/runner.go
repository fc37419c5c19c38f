package query

import (
	"context"
	"sort"
	"time"

	"github.com/df07/go-collision-volumes/pkg/core"
)

// Runner evaluates a batch of queries. The volumes the queries reference must
// not be changed while Run is in progress.
type Runner struct {
	queries []Query
	workers int
	logger  core.Logger
}

// NewRunner creates a runner; workers <= 0 uses one worker per CPU
func NewRunner(queries []Query, workers int, logger core.Logger) *Runner {
	if logger == nil {
		logger = core.NopLogger{}
	}
	return &Runner{queries: queries, workers: workers, logger: logger}
}

// Run evaluates every query and returns the results in submission order.
// Cancelling ctx stops submission; the results evaluated so far are returned
// together with the context error.
func (r *Runner) Run(ctx context.Context) ([]Result, Stats, error) {
	start := time.Now()

	pool := NewWorkerPool(r.workers, len(r.queries))
	stats := newStats(pool.GetNumWorkers())
	r.logger.Printf("Evaluating %d queries with %d workers\n", len(r.queries), pool.GetNumWorkers())

	pool.Start()

	var runErr error
	submitted := 0
	for i, q := range r.queries {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		pool.SubmitTask(Task{Query: q, TaskID: i})
		submitted++
	}
	pool.Stop()

	results := make([]Result, 0, submitted)
	for {
		result, ok := pool.GetResult()
		if !ok {
			break
		}
		if result.Err != nil {
			core.LogError(r.logger, "Query %d (%s): %v\n", result.Index, result.Name, result.Err)
		}
		stats.add(result)
		results = append(results, result)
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Index < results[j].Index
	})

	stats.Elapsed = time.Since(start)
	r.logger.Printf("Evaluated %d queries in %v: %d hits, %d errors\n",
		stats.Total, stats.Elapsed, stats.Hits, stats.Errors)

	return results, stats, runErr
}
