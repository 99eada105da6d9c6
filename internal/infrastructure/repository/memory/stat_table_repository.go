package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/gridironlab/statline/internal/domain/statstore"
)

type statDestination struct {
	columns []string
	rows    []map[string]any
}

// StatTableRepository keeps upserted stat tables in process memory. It
// mirrors the keyed replace and append-only semantics of the SQL store
// so services can run against it in tests and local development.
type StatTableRepository struct {
	mu           sync.RWMutex
	destinations map[string]*statDestination
}

func NewStatTableRepository() *StatTableRepository {
	return &StatTableRepository{destinations: make(map[string]*statDestination)}
}

func (r *StatTableRepository) Upsert(_ context.Context, batch statstore.Batch) (statstore.UpsertReport, error) {
	report := statstore.UpsertReport{Destination: batch.Destination}

	if err := batch.Validate(); err != nil {
		return report, fmt.Errorf("validate stat batch: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	dest, ok := r.destinations[batch.Destination]
	if !ok {
		dest = &statDestination{columns: batch.Table.ColumnNames()}
		r.destinations[batch.Destination] = dest
		report.CreatedTable = true
	}

	columns := batch.Table.ColumnNames()
	incoming := make([]map[string]any, 0, batch.Table.RowCount())
	incomingKeys := make(map[string]struct{}, batch.Table.RowCount())
	for row := 0; row < batch.Table.RowCount(); row++ {
		record := make(map[string]any, len(columns))
		for _, column := range columns {
			record[column], _ = batch.Table.Value(row, column)
		}
		incoming = append(incoming, record)
		incomingKeys[rowKey(record, batch.Key)] = struct{}{}
	}

	switch batch.Mode {
	case statstore.ModeReplace:
		kept := dest.rows[:0:0]
		for _, existing := range dest.rows {
			if _, matched := incomingKeys[rowKey(existing, batch.Key)]; matched {
				report.RowsDeleted++
				continue
			}
			kept = append(kept, existing)
		}
		dest.rows = append(kept, incoming...)
		report.RowsWritten = len(incoming)
	case statstore.ModeAppendOnlyNew:
		existingKeys := make(map[string]struct{}, len(dest.rows))
		for _, existing := range dest.rows {
			existingKeys[rowKey(existing, batch.Key)] = struct{}{}
		}
		for _, record := range incoming {
			if _, dup := existingKeys[rowKey(record, batch.Key)]; dup {
				report.RowsSkipped++
				continue
			}
			dest.rows = append(dest.rows, record)
			report.RowsWritten++
		}
	}

	mergeColumns(dest, columns)

	return report, nil
}

func (r *StatTableRepository) ListDestinations(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.destinations))
	for name := range r.destinations {
		out = append(out, name)
	}
	sort.Strings(out)

	return out, nil
}

// Rows returns a copy of the stored rows for one destination. Test and
// dashboard helper, not part of the repository contract.
func (r *StatTableRepository) Rows(destination string) []map[string]any {
	r.mu.RLock()
	defer r.mu.RUnlock()

	dest, ok := r.destinations[destination]
	if !ok {
		return nil
	}

	out := make([]map[string]any, 0, len(dest.rows))
	for _, row := range dest.rows {
		copied := make(map[string]any, len(row))
		for column, value := range row {
			copied[column] = value
		}
		out = append(out, copied)
	}

	return out
}

func mergeColumns(dest *statDestination, columns []string) {
	known := make(map[string]struct{}, len(dest.columns))
	for _, column := range dest.columns {
		known[column] = struct{}{}
	}
	for _, column := range columns {
		if _, ok := known[column]; ok {
			continue
		}
		dest.columns = append(dest.columns, column)
	}
}

func rowKey(row map[string]any, key []string) string {
	parts := make([]string, len(key))
	for i, column := range key {
		parts[i] = fmt.Sprintf("%v", row[column])
	}
	return strings.Join(parts, "\x1f")
}
