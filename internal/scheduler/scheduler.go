package scheduler

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/averden/mediapull/internal/assets"
	"github.com/averden/mediapull/internal/planner"
	"github.com/averden/mediapull/internal/transfer"
)

// Job pairs an asset with the options its download should run under.
type Job struct {
	ID      string
	Asset   *assets.Asset
	Options planner.Options
}

func NewJob(asset *assets.Asset, opts planner.Options) Job {
	return Job{ID: uuid.NewString(), Asset: asset, Options: opts}
}

// JobResult reports how one job settled. Result is nil when Err is set by a
// planning or verification failure.
type JobResult struct {
	JobID  string
	Asset  string
	Result *transfer.Result
	Err    error
}

// Failed reports whether the job should count against the batch.
func (r JobResult) Failed() bool {
	return r.Err != nil || (r.Result != nil && r.Result.Outcome == transfer.OutcomeFailed)
}

// Run executes the jobs on a bounded worker pool and returns results in
// settlement order.
func Run(ctx context.Context, engine *transfer.Engine, jobs []Job, workers int, logger zerolog.Logger) []JobResult {
	if workers < 1 {
		workers = 1
	}
	jobCh := make(chan Job, len(jobs))
	for _, job := range jobs {
		jobCh <- job
	}
	close(jobCh)

	resCh := make(chan JobResult, len(jobs))
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobCh {
				logger.Debug().Str("op", "scheduler/run").Str("job", job.ID).Msgf("Starting download for %s", job.Asset.Name)
				res, err := engine.Download(ctx, job.Asset, job.Options)
				if err != nil {
					logger.Error().Str("op", "scheduler/run").Str("job", job.ID).Err(err).Msgf("Download failed for %s", job.Asset.Name)
				}
				resCh <- JobResult{JobID: job.ID, Asset: job.Asset.Name, Result: res, Err: err}
			}
		}()
	}
	wg.Wait()
	close(resCh)

	results := make([]JobResult, 0, len(jobs))
	for res := range resCh {
		results = append(results, res)
	}
	return results
}
