package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/gridironlab/statline/internal/domain/ingestrun"
	qb "github.com/gridironlab/statline/internal/platform/querybuilder"
)

type IngestRunRepository struct {
	db *sqlx.DB
}

func NewIngestRunRepository(db *sqlx.DB) *IngestRunRepository {
	return &IngestRunRepository{db: db}
}

func (r *IngestRunRepository) UpsertRun(ctx context.Context, run ingestrun.Run) error {
	runID := strings.TrimSpace(run.ID)
	if runID == "" {
		return fmt.Errorf("run id is required")
	}

	jobName := strings.TrimSpace(run.JobName)
	if jobName == "" {
		jobName = "unknown"
	}

	startedAt := run.StartedAt.UTC()
	if startedAt.IsZero() {
		startedAt = time.Now().UTC()
	}

	model := ingestRunInsertModel{
		RunID:       runID,
		JobName:     jobName,
		Status:      string(run.Status),
		DryRun:      run.DryRun,
		Entities:    run.Entities,
		Succeeded:   run.Succeeded,
		Empty:       run.Empty,
		Failed:      run.Failed,
		RowsWritten: run.RowsWritten,
		LastError:   optionalString(run.ErrorMessage),
		StartedAt:   startedAt,
		TraceID:     optionalString(run.TraceID),
		SpanID:      optionalString(run.SpanID),
	}
	if !run.FinishedAt.IsZero() {
		finishedAt := run.FinishedAt.UTC()
		model.FinishedAt = &finishedAt
	}

	query, args, err := qb.InsertModel("ingest_job_runs", model, `ON CONFLICT (run_id)
DO UPDATE SET
    status = EXCLUDED.status,
    entities = EXCLUDED.entities,
    succeeded = EXCLUDED.succeeded,
    empty = EXCLUDED.empty,
    failed = EXCLUDED.failed,
    rows_written = EXCLUDED.rows_written,
    last_error = EXCLUDED.last_error,
    finished_at = EXCLUDED.finished_at,
    trace_id = COALESCE(EXCLUDED.trace_id, ingest_job_runs.trace_id),
    span_id = COALESCE(EXCLUDED.span_id, ingest_job_runs.span_id)`)
	if err != nil {
		return fmt.Errorf("build upsert ingest run query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return classifyStoreError(fmt.Sprintf("upsert ingest run run_id=%s status=%s", runID, run.Status), err)
	}

	return nil
}

func (r *IngestRunRepository) ListRecent(ctx context.Context, limit int) ([]ingestrun.Run, error) {
	if limit <= 0 {
		limit = 20
	}

	query, args, err := qb.Select("*").From("ingest_job_runs").
		OrderBy("started_at DESC", "run_id").
		Limit(limit).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list ingest runs query: %w", err)
	}

	var rows []ingestRunTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, classifyStoreError("list ingest runs", err)
	}

	out := make([]ingestrun.Run, 0, len(rows))
	for _, row := range rows {
		run := ingestrun.Run{
			ID:          row.RunID,
			JobName:     row.JobName,
			Status:      ingestrun.Status(row.Status),
			DryRun:      row.DryRun,
			Entities:    row.Entities,
			Succeeded:   row.Succeeded,
			Empty:       row.Empty,
			Failed:      row.Failed,
			RowsWritten: row.RowsWritten,
			StartedAt:   row.StartedAt,
		}
		if row.LastError != nil {
			run.ErrorMessage = *row.LastError
		}
		if row.FinishedAt != nil {
			run.FinishedAt = *row.FinishedAt
		}
		if row.TraceID != nil {
			run.TraceID = *row.TraceID
		}
		if row.SpanID != nil {
			run.SpanID = *row.SpanID
		}
		out = append(out, run)
	}

	return out, nil
}
