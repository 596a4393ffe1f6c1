package scheduler

import (
	"context"
	"time"
)

// historyLimit bounds results kept per job
const historyLimit = 100

// Job is a unit of scheduled work
type Job interface {
	Name() string
	Run(ctx context.Context) error

	// Schedule is a cron expression with a seconds field,
	// e.g. "0 0 * * * *" or "@every 15m"
	Schedule() string
}

// Tally counts the files one run evaluated.
type Tally struct {
	Evaluated int `json:"evaluated"`
	Failed    int `json:"failed"`
}

// TallyJob is a Job that also reports how many files it scored.
// The scheduler prefers RunTally when a job implements it.
type TallyJob interface {
	Job
	RunTally(ctx context.Context) (Tally, error)
}

// JobResult is the outcome of one scheduled or manual run, retries included
type JobResult struct {
	JobName   string        `json:"job_name"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`
	Attempts  int           `json:"attempts"`
	Tally     Tally         `json:"tally"`
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
}

// JobHistory keeps the most recent historyLimit results, oldest first.
type JobHistory struct {
	Results []JobResult
}

// Add appends a result and drops the oldest beyond historyLimit
func (h *JobHistory) Add(result JobResult) {
	h.Results = append(h.Results, result)
	if over := len(h.Results) - historyLimit; over > 0 {
		h.Results = append(h.Results[:0:0], h.Results[over:]...)
	}
}

// Latest returns up to n results, newest last
func (h *JobHistory) Latest(n int) []JobResult {
	if n > len(h.Results) {
		n = len(h.Results)
	}
	if n <= 0 {
		return []JobResult{}
	}
	return append([]JobResult(nil), h.Results[len(h.Results)-n:]...)
}

// Failures returns the failed runs
func (h *JobHistory) Failures() []JobResult {
	failed := make([]JobResult, 0)
	for _, r := range h.Results {
		if !r.Success {
			failed = append(failed, r)
		}
	}
	return failed
}

// SuccessRate is the fraction of successful runs, 0 when empty
func (h *JobHistory) SuccessRate() float64 {
	if len(h.Results) == 0 {
		return 0
	}
	ok := len(h.Results) - len(h.Failures())
	return float64(ok) / float64(len(h.Results))
}

// Totals sums the file counts across every kept run.
func (h *JobHistory) Totals() Tally {
	var t Tally
	for _, r := range h.Results {
		t.Evaluated += r.Tally.Evaluated
		t.Failed += r.Tally.Failed
	}
	return t
}

// lastWhere returns the start time of the newest result matching ok
func (h *JobHistory) lastWhere(ok func(JobResult) bool) *time.Time {
	for i := len(h.Results) - 1; i >= 0; i-- {
		if ok(h.Results[i]) {
			t := h.Results[i].StartTime
			return &t
		}
	}
	return nil
}
