package ingestrun

import "time"

type Status string

const (
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusPartial   Status = "partial"
	StatusFailed    Status = "failed"
)

// Run is one execution of an ingest job, recorded when the job starts
// and updated when it finishes.
type Run struct {
	ID           string
	JobName      string
	Status       Status
	DryRun       bool
	Entities     int
	Succeeded    int
	Empty        int
	Failed       int
	RowsWritten  int
	ErrorMessage string
	StartedAt    time.Time
	FinishedAt   time.Time
	TraceID      string
	SpanID       string
}
