package postgres

import "time"

type ingestRunTableModel struct {
	RunID       string     `db:"run_id"`
	JobName     string     `db:"job_name"`
	Status      string     `db:"status"`
	DryRun      bool       `db:"dry_run"`
	Entities    int        `db:"entities"`
	Succeeded   int        `db:"succeeded"`
	Empty       int        `db:"empty"`
	Failed      int        `db:"failed"`
	RowsWritten int        `db:"rows_written"`
	LastError   *string    `db:"last_error"`
	StartedAt   time.Time  `db:"started_at"`
	FinishedAt  *time.Time `db:"finished_at"`
	TraceID     *string    `db:"trace_id"`
	SpanID      *string    `db:"span_id"`
	CreatedAt   time.Time  `db:"created_at"`
}

type ingestRunInsertModel struct {
	RunID       string     `db:"run_id"`
	JobName     string     `db:"job_name"`
	Status      string     `db:"status"`
	DryRun      bool       `db:"dry_run"`
	Entities    int        `db:"entities"`
	Succeeded   int        `db:"succeeded"`
	Empty       int        `db:"empty"`
	Failed      int        `db:"failed"`
	RowsWritten int        `db:"rows_written"`
	LastError   *string    `db:"last_error"`
	StartedAt   time.Time  `db:"started_at"`
	FinishedAt  *time.Time `db:"finished_at"`
	TraceID     *string    `db:"trace_id"`
	SpanID      *string    `db:"span_id"`
}
