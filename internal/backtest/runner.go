package backtest

import (
	"context"
	"sync"

	"github.com/wonny/fundsim/internal/series"
	"github.com/wonny/fundsim/internal/strategy"
)

// Job is one independent (series, strategy) simulation. Jobs share no
// mutable state, so a batch can run fully in parallel; within a job
// the per-date fold stays strictly sequential.
type Job struct {
	Name   string
	Series *series.AlignedSeries
	Config *strategy.Config
	Params Params
}

// JobResult pairs a job with its outcome.
type JobResult struct {
	Name   string
	Result *Result
	Err    error
}

// RunBatch executes the jobs concurrently with at most workers
// goroutines and returns results in job order. Cancelling the context
// stops unstarted jobs; an in-flight fold always completes.
func RunBatch(ctx context.Context, jobs []Job, workers int) []JobResult {
	if workers <= 0 {
		workers = 1
	}

	results := make([]JobResult, len(jobs))
	indexes := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				results[i] = runJob(jobs[i])
			}
		}()
	}

	for i := range jobs {
		if err := ctx.Err(); err != nil {
			results[i] = JobResult{Name: jobs[i].Name, Err: err}
			continue
		}
		select {
		case <-ctx.Done():
			results[i] = JobResult{Name: jobs[i].Name, Err: ctx.Err()}
		case indexes <- i:
		}
	}
	close(indexes)
	wg.Wait()

	return results
}

func runJob(job Job) JobResult {
	signals, err := strategy.Generate(job.Series, job.Config)
	if err != nil {
		return JobResult{Name: job.Name, Err: err}
	}

	result, err := Run(job.Series, signals, job.Params)
	return JobResult{Name: job.Name, Result: result, Err: err}
}
