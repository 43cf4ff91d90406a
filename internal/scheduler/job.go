package scheduler

import (
	"context"
	"time"
)

// Job represents a scheduled job
// ⭐ SSOT: the job interface is defined here only
type Job interface {
	// Name returns the job name
	Name() string

	// Run executes the job
	Run(ctx context.Context) error

	// Schedule returns the cron schedule expression
	// Examples: "0 0 18 * * *" (every day at 6 PM)
	//           "@daily", "@hourly"
	Schedule() string
}

// JobResult represents the result of one job execution
type JobResult struct {
	JobName   string        `json:"job_name"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
}

// JobHistory stores the recent execution results of one job.
type JobHistory struct {
	Results []JobResult
}

// AddResult appends a result, keeping the last 100.
func (h *JobHistory) AddResult(result JobResult) {
	h.Results = append(h.Results, result)
	if len(h.Results) > 100 {
		h.Results = h.Results[len(h.Results)-100:]
	}
}

// Latest returns the most recent result, or nil when the job never ran.
func (h *JobHistory) Latest() *JobResult {
	if len(h.Results) == 0 {
		return nil
	}
	return &h.Results[len(h.Results)-1]
}

// FailureCount returns the number of failed results in history.
func (h *JobHistory) FailureCount() int {
	failed := 0
	for _, result := range h.Results {
		if !result.Success {
			failed++
		}
	}
	return failed
}

// SuccessRate returns the success rate (0.0 - 1.0).
func (h *JobHistory) SuccessRate() float64 {
	if len(h.Results) == 0 {
		return 0.0
	}
	return float64(len(h.Results)-h.FailureCount()) / float64(len(h.Results))
}
