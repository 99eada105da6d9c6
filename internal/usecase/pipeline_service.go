package usecase

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/gridironlab/statline/internal/domain/ingestrun"
	"github.com/gridironlab/statline/internal/platform/id"
	"github.com/gridironlab/statline/internal/platform/logging"
)

const (
	JobRosterSync  = "roster_sync"
	JobSeasonStats = "season_stats"
	JobGamelogSync = "gamelog_sync"
	JobSnapCounts  = "snap_counts"
	JobProjections = "projections"
	JobPipeline    = "pipeline"
)

type rosterSyncRunner interface {
	Sync(ctx context.Context, input RosterSyncInput) (RosterSyncResult, error)
}

type seasonStatsRunner interface {
	Sync(ctx context.Context, input SeasonStatsInput) (SeasonStatsResult, error)
}

type gamelogRunner interface {
	Sync(ctx context.Context, input GamelogInput) (GamelogResult, error)
}

type snapCountRunner interface {
	Sync(ctx context.Context, input SnapCountInput) (SnapCountResult, error)
}

type projectionsRunner interface {
	Sync(ctx context.Context, input ProjectionsInput) (ProjectionsResult, error)
}

// PipelineService runs the ingest jobs and records every execution in
// the ingest run ledger, including the jobs it runs on behalf of the
// full pipeline.
type PipelineService struct {
	roster      rosterSyncRunner
	seasonStats seasonStatsRunner
	gamelog     gamelogRunner
	snapCounts  snapCountRunner
	projections projectionsRunner
	runs        ingestrun.Repository
	ids         id.Generator
	logger      *logging.Logger
}

func NewPipelineService(
	roster rosterSyncRunner,
	seasonStats seasonStatsRunner,
	gamelog gamelogRunner,
	snapCounts snapCountRunner,
	projections projectionsRunner,
	runs ingestrun.Repository,
	ids id.Generator,
	logger *logging.Logger,
) *PipelineService {
	if logger == nil {
		logger = logging.Default()
	}
	return &PipelineService{
		roster:      roster,
		seasonStats: seasonStats,
		gamelog:     gamelog,
		snapCounts:  snapCounts,
		projections: projections,
		runs:        runs,
		ids:         ids,
		logger:      logger,
	}
}

// jobOutcome carries the ledger counters a finished job reports.
type jobOutcome struct {
	Entities    int
	Succeeded   int
	Empty       int
	Failed      int
	RowsWritten int
}

func (s *PipelineService) RunRosterSync(ctx context.Context, input RosterSyncInput) (RosterSyncResult, error) {
	run, err := s.beginRun(ctx, JobRosterSync, input.DryRun)
	if err != nil {
		return RosterSyncResult{}, err
	}

	result, syncErr := s.roster.Sync(ctx, input)
	outcome := jobOutcome{
		Entities:    result.Teams,
		Succeeded:   result.Teams - result.TeamsFailed,
		Failed:      result.TeamsFailed,
		RowsWritten: result.RowsWritten,
	}
	s.finishRun(ctx, run, outcome, result.TeamsFailed > 0, syncErr)
	return result, syncErr
}

func (s *PipelineService) RunSeasonStats(ctx context.Context, input SeasonStatsInput) (SeasonStatsResult, error) {
	run, err := s.beginRun(ctx, JobSeasonStats, input.DryRun)
	if err != nil {
		return SeasonStatsResult{}, err
	}

	result, syncErr := s.seasonStats.Sync(ctx, input)
	outcome := jobOutcome{
		Entities:    result.Players,
		Succeeded:   result.Succeeded,
		Empty:       result.Empty,
		Failed:      result.Failed,
		RowsWritten: result.RowsWritten,
	}
	partial := result.Failed > 0 || len(result.FailedCategories) > 0
	s.finishRun(ctx, run, outcome, partial, syncErr)
	return result, syncErr
}

func (s *PipelineService) RunGamelog(ctx context.Context, input GamelogInput) (GamelogResult, error) {
	run, err := s.beginRun(ctx, JobGamelogSync, input.DryRun)
	if err != nil {
		return GamelogResult{}, err
	}

	result, syncErr := s.gamelog.Sync(ctx, input)
	outcome := jobOutcome{
		Entities:    result.Players,
		Succeeded:   result.Succeeded,
		Empty:       result.Empty,
		Failed:      result.Failed,
		RowsWritten: result.RowsWritten,
	}
	s.finishRun(ctx, run, outcome, result.Failed > 0, syncErr)
	return result, syncErr
}

func (s *PipelineService) RunSnapCounts(ctx context.Context, input SnapCountInput) (SnapCountResult, error) {
	run, err := s.beginRun(ctx, JobSnapCounts, input.DryRun)
	if err != nil {
		return SnapCountResult{}, err
	}

	result, syncErr := s.snapCounts.Sync(ctx, input)
	outcome := jobOutcome{
		Entities:    result.SourceRows,
		Succeeded:   result.SourceRows - result.Unmatched,
		Failed:      result.Unmatched,
		RowsWritten: result.RowsWritten,
	}
	s.finishRun(ctx, run, outcome, false, syncErr)
	return result, syncErr
}

func (s *PipelineService) RunProjections(ctx context.Context, input ProjectionsInput) (ProjectionsResult, error) {
	run, err := s.beginRun(ctx, JobProjections, input.DryRun)
	if err != nil {
		return ProjectionsResult{}, err
	}

	result, syncErr := s.projections.Sync(ctx, input)
	outcome := jobOutcome{
		Entities:    result.Pages,
		Succeeded:   result.Pages - result.PagesFailed,
		Failed:      result.PagesFailed,
		RowsWritten: result.RowsWritten,
	}
	s.finishRun(ctx, run, outcome, result.PagesFailed > 0, syncErr)
	return result, syncErr
}

type PipelineInput struct {
	Season         int
	Weeks          []int
	SnapSeasons    []int
	ProjectionURLs []string
	MaxWorkers     int
	DryRun         bool
}

type PipelineStep struct {
	Job         string `json:"job"`
	Status      string `json:"status"`
	RowsWritten int    `json:"rows_written"`
	DurationMS  int64  `json:"duration_ms"`
	Error       string `json:"error,omitempty"`
}

type PipelineResult struct {
	Status      string         `json:"status"`
	Steps       []PipelineStep `json:"steps"`
	RowsWritten int            `json:"rows_written"`
	DryRun      bool           `json:"dry_run"`
}

// RunPipeline executes every ingest job in dependency order. A failed
// step is recorded and the remaining steps still run; the pipeline run
// is marked partial when any step fails.
func (s *PipelineService) RunPipeline(ctx context.Context, input PipelineInput) (PipelineResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PipelineService.RunPipeline")
	defer span.End()

	run, err := s.beginRun(ctx, JobPipeline, input.DryRun)
	if err != nil {
		return PipelineResult{}, err
	}

	snapSeasons := input.SnapSeasons
	if len(snapSeasons) == 0 && input.Season > 0 {
		snapSeasons = []int{input.Season}
	}

	steps := []struct {
		job string
		run func(context.Context) (int, error)
	}{
		{JobRosterSync, func(ctx context.Context) (int, error) {
			result, err := s.RunRosterSync(ctx, RosterSyncInput{MaxWorkers: input.MaxWorkers, DryRun: input.DryRun})
			return result.RowsWritten, err
		}},
		{JobSeasonStats, func(ctx context.Context) (int, error) {
			result, err := s.RunSeasonStats(ctx, SeasonStatsInput{Season: input.Season, MaxWorkers: input.MaxWorkers, DryRun: input.DryRun})
			return result.RowsWritten, err
		}},
		{JobGamelogSync, func(ctx context.Context) (int, error) {
			result, err := s.RunGamelog(ctx, GamelogInput{Season: input.Season, Weeks: input.Weeks, MaxWorkers: input.MaxWorkers, DryRun: input.DryRun})
			return result.RowsWritten, err
		}},
		{JobSnapCounts, func(ctx context.Context) (int, error) {
			result, err := s.RunSnapCounts(ctx, SnapCountInput{Seasons: snapSeasons, DryRun: input.DryRun})
			return result.RowsWritten, err
		}},
		{JobProjections, func(ctx context.Context) (int, error) {
			result, err := s.RunProjections(ctx, ProjectionsInput{URLs: input.ProjectionURLs, DryRun: input.DryRun})
			return result.RowsWritten, err
		}},
	}

	result := PipelineResult{DryRun: input.DryRun}
	failed := 0
	for _, step := range steps {
		started := time.Now()
		rows, stepErr := step.run(ctx)
		entry := PipelineStep{
			Job:         step.job,
			Status:      string(ingestrun.StatusSucceeded),
			RowsWritten: rows,
			DurationMS:  time.Since(started).Milliseconds(),
		}
		if stepErr != nil {
			failed++
			entry.Status = string(ingestrun.StatusFailed)
			entry.Error = stepErr.Error()
			s.logger.WarnContext(ctx, "pipeline step failed", "job", step.job, "error", stepErr)
		}
		result.RowsWritten += rows
		result.Steps = append(result.Steps, entry)
	}

	outcome := jobOutcome{
		Entities:    len(steps),
		Succeeded:   len(steps) - failed,
		Failed:      failed,
		RowsWritten: result.RowsWritten,
	}

	var runErr error
	if failed == len(steps) {
		runErr = fmt.Errorf("%w: every pipeline step failed", ErrDependencyUnavailable)
	}
	s.finishRun(ctx, run, outcome, failed > 0, runErr)

	switch {
	case failed == len(steps):
		result.Status = string(ingestrun.StatusFailed)
		return result, runErr
	case failed > 0:
		result.Status = string(ingestrun.StatusPartial)
	default:
		result.Status = string(ingestrun.StatusSucceeded)
	}
	return result, nil
}

// beginRun records a running ledger entry before the job starts. The
// job is not executed when the ledger cannot be written.
func (s *PipelineService) beginRun(ctx context.Context, jobName string, dryRun bool) (ingestrun.Run, error) {
	runID, err := s.ids.NewID()
	if err != nil {
		return ingestrun.Run{}, fmt.Errorf("generate run id: %w", err)
	}

	run := ingestrun.Run{
		ID:        runID,
		JobName:   jobName,
		Status:    ingestrun.StatusRunning,
		DryRun:    dryRun,
		StartedAt: time.Now().UTC(),
	}
	if spanCtx := trace.SpanContextFromContext(ctx); spanCtx.IsValid() {
		run.TraceID = spanCtx.TraceID().String()
		run.SpanID = spanCtx.SpanID().String()
	}

	if err := s.runs.UpsertRun(ctx, run); err != nil {
		return ingestrun.Run{}, fmt.Errorf("%w: record ingest run: %v", ErrDependencyUnavailable, err)
	}
	return run, nil
}

// finishRun updates the ledger entry with the final status. Ledger
// write failures are logged, not returned, so they never mask the job
// result.
func (s *PipelineService) finishRun(ctx context.Context, run ingestrun.Run, outcome jobOutcome, partial bool, jobErr error) {
	run.Status = ingestrun.StatusSucceeded
	if partial {
		run.Status = ingestrun.StatusPartial
	}
	if jobErr != nil {
		run.Status = ingestrun.StatusFailed
		run.ErrorMessage = jobErr.Error()
	}
	run.Entities = outcome.Entities
	run.Succeeded = outcome.Succeeded
	run.Empty = outcome.Empty
	run.Failed = outcome.Failed
	run.RowsWritten = outcome.RowsWritten
	run.FinishedAt = time.Now().UTC()

	if err := s.runs.UpsertRun(ctx, run); err != nil {
		s.logger.WarnContext(ctx, "finalize ingest run failed", "job", run.JobName, "run_id", run.ID, "error", err)
	}
}
