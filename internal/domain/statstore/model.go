package statstore

import (
	"errors"
	"fmt"

	"github.com/gridironlab/statline/internal/platform/tabular"
)

// UpsertMode selects how an Upsert treats rows already present at the
// destination.
type UpsertMode string

const (
	// ModeReplace deletes any existing rows whose key matches an
	// incoming row, then inserts the batch. Rows with keys absent from
	// the batch survive.
	ModeReplace UpsertMode = "replace"

	// ModeAppendOnlyNew inserts only rows whose key tuple is not
	// already present and never touches existing rows.
	ModeAppendOnlyNew UpsertMode = "append_only_new"
)

var (
	// ErrConnection marks failures reaching the store. Callers may
	// retry these.
	ErrConnection = errors.New("stat store unreachable")

	// ErrSchemaConflict marks batches whose column types cannot land in
	// the destination table. Retrying the same batch cannot succeed.
	ErrSchemaConflict = errors.New("stat store schema conflict")
)

// UpsertReport summarizes one Upsert call.
type UpsertReport struct {
	Destination  string
	CreatedTable bool
	RowsWritten  int
	RowsDeleted  int
	RowsSkipped  int
}

// Batch is one table of reconciled stats bound for a destination.
type Batch struct {
	Destination string
	Table       *tabular.Table
	Key         []string
	Mode        UpsertMode
}

func (b Batch) Validate() error {
	if b.Destination == "" {
		return fmt.Errorf("batch destination is required")
	}
	if b.Table == nil {
		return fmt.Errorf("batch table is required")
	}
	if len(b.Key) == 0 {
		return fmt.Errorf("batch key columns are required")
	}
	for _, column := range b.Key {
		if !b.Table.HasColumn(column) {
			return fmt.Errorf("batch key column %s missing from table", column)
		}
	}
	switch b.Mode {
	case ModeReplace, ModeAppendOnlyNew:
	default:
		return fmt.Errorf("invalid upsert mode: %s", b.Mode)
	}

	return nil
}
