package evaluation

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/wonny/dqs/internal/contracts"
	"github.com/wonny/dqs/internal/ingest"
)

const defaultWorkers = 4

// FileResult is the outcome for one file in a batch. Exactly one of
// Report and Err is set, except when only persisting the report failed.
type FileResult struct {
	Path   string
	Report *contracts.EvaluationReport
	Err    error
}

// EvaluateFile loads a CSV file and evaluates it
func (e *Evaluator) EvaluateFile(ctx context.Context, path string, opts ingest.LoadOptions) (*contracts.EvaluationReport, error) {
	table, err := ingest.LoadFile(path, opts)
	if err != nil {
		return nil, err
	}
	return e.Evaluate(ctx, path, table)
}

// EvaluateBatch evaluates files with at most workers running at once.
// Per-file failures are recorded in the results; only context
// cancellation stops the batch early. Results keep the order of paths.
func (e *Evaluator) EvaluateBatch(ctx context.Context, paths []string, opts ingest.LoadOptions, workers int) ([]FileResult, error) {
	if workers <= 0 {
		workers = defaultWorkers
	}

	results := make([]FileResult, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	var mu sync.Mutex
	failed := 0

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			report, err := e.EvaluateFile(gctx, path, opts)
			results[i] = FileResult{Path: path, Report: report, Err: err}
			if err != nil {
				mu.Lock()
				failed++
				mu.Unlock()
				e.log.WithError(err).WithField("path", path).Warn("Batch evaluation failed for file")
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}

	e.log.WithFields(map[string]interface{}{
		"files":  len(paths),
		"failed": failed,
	}).Info("Batch evaluation complete")

	return results, nil
}
