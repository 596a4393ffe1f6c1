package jobs

import (
	"context"
	"fmt"

	"github.com/wonny/dqs/internal/evaluation"
	"github.com/wonny/dqs/internal/ingest"
	"github.com/wonny/dqs/internal/scheduler"
	"github.com/wonny/dqs/internal/source"
	"github.com/wonny/dqs/pkg/logger"
)

var _ scheduler.TallyJob = (*RescoreJob)(nil)

// RescoreJob re-evaluates every CSV in a watch directory. Timeliness drifts
// with wall time, so periodic rescoring keeps the history current.
type RescoreJob struct {
	evaluator *evaluation.Evaluator
	dir       string
	discover  source.DiscoverOptions
	load      ingest.LoadOptions
	schedule  string
	workers   int
	logger    *logger.Logger
}

// NewRescoreJob creates a new rescore job
func NewRescoreJob(
	evaluator *evaluation.Evaluator,
	dir string,
	schedule string,
	recursive bool,
	workers int,
	log *logger.Logger,
) *RescoreJob {
	return &RescoreJob{
		evaluator: evaluator,
		dir:       dir,
		discover:  source.DiscoverOptions{Recursive: recursive},
		schedule:  schedule,
		workers:   workers,
		logger:    log,
	}
}

// Name returns the job name
func (j *RescoreJob) Name() string {
	return "rescore"
}

// Schedule returns the cron schedule
func (j *RescoreJob) Schedule() string {
	return j.schedule
}

// Run discovers and evaluates the directory. Files that fail to load are
// logged and skipped; only discovery errors and cancellation fail the run.
func (j *RescoreJob) Run(ctx context.Context) error {
	_, err := j.RunTally(ctx)
	return err
}

// RunTally is Run plus the number of files scored and failed.
func (j *RescoreJob) RunTally(ctx context.Context) (scheduler.Tally, error) {
	files, err := source.DiscoverFiles(j.dir, j.discover)
	if err != nil {
		return scheduler.Tally{}, err
	}
	if len(files) == 0 {
		j.logger.WithField("dir", j.dir).Debug("No CSV files to rescore")
		return scheduler.Tally{}, nil
	}

	results, err := j.evaluator.EvaluateBatch(ctx, files, j.load, j.workers)
	if err != nil {
		return scheduler.Tally{}, fmt.Errorf("rescore %s: %w", j.dir, err)
	}

	tally := scheduler.Tally{Evaluated: len(results)}
	for _, r := range results {
		if r.Err != nil {
			tally.Failed++
			j.logger.WithError(r.Err).WithField("file", r.Path).Warn("Rescore skipped file")
		}
	}

	j.logger.WithFields(map[string]interface{}{
		"dir":    j.dir,
		"files":  len(files),
		"failed": tally.Failed,
	}).Info("Rescore completed")

	return tally, nil
}
