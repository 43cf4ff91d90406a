// Package jobs holds the concrete scheduled jobs of the service.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/tidemark/internal/analysis"
	"github.com/wonny/tidemark/pkg/logger"
)

// AnalysisRunJob recomputes the analysis rows for all symbols after the
// trading day closes.
type AnalysisRunJob struct {
	service  *analysis.Service
	lookback int // calendar days of history loaded per run
	logger   *logger.Logger
}

// NewAnalysisRunJob creates the daily analysis job.
func NewAnalysisRunJob(service *analysis.Service, lookbackDays int, log *logger.Logger) *AnalysisRunJob {
	if lookbackDays < 1 {
		lookbackDays = 120
	}
	return &AnalysisRunJob{
		service:  service,
		lookback: lookbackDays,
		logger:   log.WithField("job", "analysis_run"),
	}
}

// Name returns the job name.
func (j *AnalysisRunJob) Name() string { return "analysis_run" }

// Schedule runs every weekday at 18:30.
func (j *AnalysisRunJob) Schedule() string { return "0 30 18 * * MON-FRI" }

// Run executes one full analysis pass.
func (j *AnalysisRunJob) Run(ctx context.Context) error {
	to := time.Now().Truncate(24 * time.Hour)
	from := to.AddDate(0, 0, -j.lookback)

	result, err := j.service.Run(ctx, from, to)
	if err != nil {
		return fmt.Errorf("analysis run: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"rows":        len(result.Rows),
		"failed":      len(result.Failures),
		"duration_ms": result.Duration.Milliseconds(),
	}).Info("Scheduled analysis run finished")

	// Partial failures are reported in logs but do not fail the job; the
	// next run retries those symbols anyway.
	return nil
}
