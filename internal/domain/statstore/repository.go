package statstore

import "context"

// Repository persists reconciled stat tables.
type Repository interface {
	// Upsert lands one batch at its destination, creating the
	// destination table on first write. Re-running the same batch is a
	// no-op for row content.
	Upsert(ctx context.Context, batch Batch) (UpsertReport, error)

	// ListDestinations returns the destination tables that currently
	// exist, sorted by name.
	ListDestinations(ctx context.Context) ([]string, error)
}
