package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/dqs/pkg/logger"
)

type fakeJob struct {
	name     string
	schedule string
	failures int32
	calls    atomic.Int32
}

func (j *fakeJob) Name() string     { return j.name }
func (j *fakeJob) Schedule() string { return j.schedule }

func (j *fakeJob) Run(ctx context.Context) error {
	n := j.calls.Add(1)
	if n <= j.failures {
		return errors.New("transient")
	}
	return nil
}

func newTestScheduler(retries int) *Scheduler {
	return New(logger.Nop(), WithRetry(retries, time.Millisecond))
}

func TestAddJob(t *testing.T) {
	s := newTestScheduler(0)

	require.NoError(t, s.AddJob(&fakeJob{name: "b", schedule: "@every 1h"}))
	require.NoError(t, s.AddJob(&fakeJob{name: "a", schedule: "0 0 * * * *"}))
	assert.Equal(t, []string{"a", "b"}, s.GetAllJobs())

	err := s.AddJob(&fakeJob{name: "a", schedule: "@every 1h"})
	assert.Error(t, err)

	err = s.AddJob(&fakeJob{name: "bad", schedule: "not a schedule"})
	assert.Error(t, err)
}

func TestRemoveJob(t *testing.T) {
	s := newTestScheduler(0)
	require.NoError(t, s.AddJob(&fakeJob{name: "a", schedule: "@every 1h"}))

	require.NoError(t, s.RemoveJob("a"))
	assert.Empty(t, s.GetAllJobs())
	assert.Error(t, s.RemoveJob("a"))
	_, err := s.RunJobSync("a")
	assert.Error(t, err)
}

func TestRunJobSync_Retries(t *testing.T) {
	tests := []struct {
		name     string
		failures int32
		retries  int
		success  bool
		attempts int
	}{
		{"first try", 0, 2, true, 1},
		{"recovers", 2, 2, true, 3},
		{"gives up", 5, 2, false, 3},
		{"no retries", 1, 0, false, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestScheduler(tt.retries)
			job := &fakeJob{name: "job", schedule: "@every 1h", failures: tt.failures}
			require.NoError(t, s.AddJob(job))

			result, err := s.RunJobSync("job")
			require.NoError(t, err)
			assert.Equal(t, tt.success, result.Success)
			assert.Equal(t, tt.attempts, result.Attempts)
			if !tt.success {
				assert.Equal(t, "transient", result.Error)
			}

			history, err := s.GetJobHistory("job")
			require.NoError(t, err)
			require.Len(t, history.Results, 1)
		})
	}
}

func TestGetJobStats(t *testing.T) {
	s := newTestScheduler(0)
	job := &fakeJob{name: "job", schedule: "@every 1h", failures: 1}
	require.NoError(t, s.AddJob(job))

	_, err := s.RunJobSync("job")
	require.NoError(t, err)
	_, err = s.RunJobSync("job")
	require.NoError(t, err)

	stats := s.GetJobStats()["job"]
	assert.Equal(t, 2, stats.TotalRuns)
	assert.Equal(t, 1, stats.SuccessCount)
	assert.Equal(t, 1, stats.FailureCount)
	assert.InDelta(t, 0.5, stats.SuccessRate, 1e-9)
	require.NotNil(t, stats.LastRun)
	require.NotNil(t, stats.LastSuccess)
	require.NotNil(t, stats.LastFailure)
	assert.Equal(t, *stats.LastRun, *stats.LastSuccess)
	assert.False(t, stats.LastFailure.After(*stats.LastSuccess))
}

type tallyJob struct {
	fakeJob
	tally Tally
}

func (j *tallyJob) RunTally(ctx context.Context) (Tally, error) {
	return j.tally, j.Run(ctx)
}

func TestRunJobSync_RecordsTally(t *testing.T) {
	s := newTestScheduler(0)
	job := &tallyJob{
		fakeJob: fakeJob{name: "rescore", schedule: "@every 1h"},
		tally:   Tally{Evaluated: 4, Failed: 1},
	}
	require.NoError(t, s.AddJob(job))

	for i := 0; i < 2; i++ {
		result, err := s.RunJobSync("rescore")
		require.NoError(t, err)
		assert.Equal(t, Tally{Evaluated: 4, Failed: 1}, result.Tally)
	}

	stats := s.GetJobStats()["rescore"]
	assert.Equal(t, Tally{Evaluated: 8, Failed: 2}, stats.Files)
}

func TestJobHistory_Bounded(t *testing.T) {
	var h JobHistory
	for i := 0; i < historyLimit+20; i++ {
		h.Add(JobResult{Success: i%2 == 0, Tally: Tally{Evaluated: 1}})
	}

	assert.Len(t, h.Results, historyLimit)
	assert.Len(t, h.Latest(5), 5)
	assert.Empty(t, h.Latest(0))
	assert.Len(t, h.Latest(historyLimit+5), historyLimit)
	assert.InDelta(t, 0.5, h.SuccessRate(), 1e-9)
	assert.Len(t, h.Failures(), historyLimit/2)
	assert.Equal(t, Tally{Evaluated: historyLimit}, h.Totals())
}

func TestJobHistory_Empty(t *testing.T) {
	var h JobHistory
	assert.Zero(t, h.SuccessRate())
	assert.Empty(t, h.Failures())
	assert.Nil(t, h.lastWhere(func(JobResult) bool { return true }))
}

func TestStopCancelsRunningJob(t *testing.T) {
	s := newTestScheduler(3)
	started := make(chan struct{})
	done := make(chan error, 1)

	job := &blockingJob{started: started}
	require.NoError(t, s.AddJob(job))
	s.Start()

	go func() {
		result, err := s.RunJobSync("blocking")
		if err == nil && result.Success {
			err = errors.New("expected cancellation")
		}
		done <- err
	}()

	<-started
	s.Stop()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("job did not observe shutdown")
	}
	assert.Equal(t, int32(1), job.calls.Load())
}

type blockingJob struct {
	started chan struct{}
	calls   atomic.Int32
}

func (j *blockingJob) Name() string     { return "blocking" }
func (j *blockingJob) Schedule() string { return "@every 1h" }

func (j *blockingJob) Run(ctx context.Context) error {
	if j.calls.Add(1) == 1 {
		close(j.started)
	}
	<-ctx.Done()
	return ctx.Err()
}
