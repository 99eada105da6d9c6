package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/gridironlab/statline/internal/domain/ingestrun"
	"github.com/gridironlab/statline/internal/platform/logging"
)

type JobSummary struct {
	JobName     string    `json:"job_name"`
	LastStatus  string    `json:"last_status"`
	LastRunAt   time.Time `json:"last_run_at"`
	DurationMS  int64     `json:"duration_ms"`
	RowsWritten int       `json:"rows_written"`
	LastError   string    `json:"last_error,omitempty"`
}

type RunView struct {
	RunID       string    `json:"run_id"`
	JobName     string    `json:"job_name"`
	Status      string    `json:"status"`
	DryRun      bool      `json:"dry_run"`
	Entities    int       `json:"entities"`
	Succeeded   int       `json:"succeeded"`
	Empty       int       `json:"empty"`
	Failed      int       `json:"failed"`
	RowsWritten int       `json:"rows_written"`
	StartedAt   time.Time `json:"started_at"`
	DurationMS  int64     `json:"duration_ms"`
	Error       string    `json:"error,omitempty"`
	TraceID     string    `json:"trace_id,omitempty"`
}

type PipelineDashboard struct {
	Jobs       []JobSummary `json:"jobs"`
	RecentRuns []RunView    `json:"recent_runs"`
}

// PipelineDashboardService summarizes the ingest run ledger for the
// operations dashboard.
type PipelineDashboardService struct {
	runs   ingestrun.Repository
	logger *logging.Logger
}

func NewPipelineDashboardService(runs ingestrun.Repository, logger *logging.Logger) *PipelineDashboardService {
	if logger == nil {
		logger = logging.Default()
	}
	return &PipelineDashboardService{runs: runs, logger: logger}
}

func (s *PipelineDashboardService) Dashboard(ctx context.Context, limit int) (PipelineDashboard, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PipelineDashboardService.Dashboard")
	defer span.End()

	if limit <= 0 {
		limit = 50
	}

	runs, err := s.runs.ListRecent(ctx, limit)
	if err != nil {
		return PipelineDashboard{}, fmt.Errorf("%w: list ingest runs: %v", ErrDependencyUnavailable, err)
	}

	dashboard := PipelineDashboard{
		Jobs:       make([]JobSummary, 0),
		RecentRuns: make([]RunView, 0, len(runs)),
	}

	latest := make(map[string]ingestrun.Run)
	for _, run := range runs {
		dashboard.RecentRuns = append(dashboard.RecentRuns, runView(run))
		current, seen := latest[run.JobName]
		if !seen || run.StartedAt.After(current.StartedAt) {
			latest[run.JobName] = run
		}
	}

	for _, run := range latest {
		dashboard.Jobs = append(dashboard.Jobs, JobSummary{
			JobName:     run.JobName,
			LastStatus:  string(run.Status),
			LastRunAt:   run.StartedAt,
			DurationMS:  runDurationMS(run),
			RowsWritten: run.RowsWritten,
			LastError:   run.ErrorMessage,
		})
	}
	sort.Slice(dashboard.Jobs, func(i, j int) bool {
		return dashboard.Jobs[i].JobName < dashboard.Jobs[j].JobName
	})

	return dashboard, nil
}

func runView(run ingestrun.Run) RunView {
	return RunView{
		RunID:       run.ID,
		JobName:     run.JobName,
		Status:      string(run.Status),
		DryRun:      run.DryRun,
		Entities:    run.Entities,
		Succeeded:   run.Succeeded,
		Empty:       run.Empty,
		Failed:      run.Failed,
		RowsWritten: run.RowsWritten,
		StartedAt:   run.StartedAt,
		DurationMS:  runDurationMS(run),
		Error:       run.ErrorMessage,
		TraceID:     run.TraceID,
	}
}

func runDurationMS(run ingestrun.Run) int64 {
	if run.FinishedAt.IsZero() || run.FinishedAt.Before(run.StartedAt) {
		return 0
	}
	return run.FinishedAt.Sub(run.StartedAt).Milliseconds()
}
