package postgres

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/gridironlab/statline/internal/domain/statstore"
	"github.com/gridironlab/statline/internal/platform/logging"
	qb "github.com/gridironlab/statline/internal/platform/querybuilder"
	"github.com/gridironlab/statline/internal/platform/tabular"
)

const insertChunkSize = 500

type StatTableRepository struct {
	db     *sqlx.DB
	logger *logging.Logger
}

func NewStatTableRepository(db *sqlx.DB, logger *logging.Logger) *StatTableRepository {
	if logger == nil {
		logger = logging.Default()
	}
	return &StatTableRepository{db: db, logger: logger}
}

func (r *StatTableRepository) Upsert(ctx context.Context, batch statstore.Batch) (statstore.UpsertReport, error) {
	report := statstore.UpsertReport{Destination: batch.Destination}

	if err := batch.Validate(); err != nil {
		return report, fmt.Errorf("validate stat batch: %w", err)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return report, classifyStoreError("begin tx upsert stats", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	exists, err := tableExists(ctx, tx, batch.Destination)
	if err != nil {
		return report, err
	}
	if !exists {
		if err := createStatTable(ctx, tx, batch.Destination, batch.Table.Columns()); err != nil {
			return report, err
		}
		report.CreatedTable = true
	}

	switch batch.Mode {
	case statstore.ModeReplace:
		deleted, written, err := replaceRows(ctx, tx, batch)
		if err != nil {
			return report, err
		}
		report.RowsDeleted = deleted
		report.RowsWritten = written
	case statstore.ModeAppendOnlyNew:
		written, skipped, err := appendNewRows(ctx, tx, batch)
		if err != nil {
			return report, err
		}
		report.RowsWritten = written
		report.RowsSkipped = skipped
	}

	if err := tx.Commit(); err != nil {
		return report, classifyStoreError("commit upsert stats tx", err)
	}

	r.logger.InfoContext(ctx, "stat batch upserted",
		"destination", batch.Destination,
		"mode", string(batch.Mode),
		"created_table", report.CreatedTable,
		"rows_written", report.RowsWritten,
		"rows_deleted", report.RowsDeleted,
		"rows_skipped", report.RowsSkipped,
	)

	return report, nil
}

func (r *StatTableRepository) ListDestinations(ctx context.Context) ([]string, error) {
	query := `SELECT table_name FROM information_schema.tables
WHERE table_schema = 'public' AND table_type = 'BASE TABLE'
ORDER BY table_name`

	var names []string
	if err := r.db.SelectContext(ctx, &names, query); err != nil {
		return nil, classifyStoreError("list stat destinations", err)
	}
	return names, nil
}

func tableExists(ctx context.Context, tx *sqlx.Tx, table string) (bool, error) {
	query := `SELECT EXISTS (
SELECT 1 FROM information_schema.tables
WHERE table_schema = 'public' AND table_name = $1)`

	var exists bool
	if err := tx.GetContext(ctx, &exists, query, table); err != nil {
		return false, classifyStoreError(fmt.Sprintf("check table %s exists", table), err)
	}
	return exists, nil
}

func createStatTable(ctx context.Context, tx *sqlx.Tx, table string, columns []tabular.Column) error {
	defs := make([]string, 0, len(columns))
	for _, column := range columns {
		defs = append(defs, qb.QuoteIdent(column.Name)+" "+pgType(column.Kind))
	}

	query := fmt.Sprintf("CREATE TABLE %s (%s)", qb.QuoteIdent(table), strings.Join(defs, ", "))
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return classifyStoreError(fmt.Sprintf("create table %s", table), err)
	}
	return nil
}

func pgType(kind tabular.Kind) string {
	switch kind {
	case tabular.KindBool:
		return "BOOLEAN"
	case tabular.KindInt:
		return "BIGINT"
	case tabular.KindFloat:
		return "DOUBLE PRECISION"
	case tabular.KindTime:
		return "TIMESTAMPTZ"
	default:
		// KindString, plus all-null columns whose type never settled.
		return "TEXT"
	}
}

func replaceRows(ctx context.Context, tx *sqlx.Tx, batch statstore.Batch) (deleted, written int, err error) {
	keyRows := keyTuples(batch.Table, batch.Key)
	if len(keyRows) == 0 {
		return 0, 0, nil
	}

	query, args, err := qb.DeleteFrom(batch.Destination).
		Where(qb.InTuples(batch.Key, keyRows)).
		ToSQL()
	if err != nil {
		return 0, 0, fmt.Errorf("build delete matched keys query: %w", err)
	}
	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, 0, classifyStoreError(fmt.Sprintf("delete matched keys from %s", batch.Destination), err)
	}
	if affected, affErr := result.RowsAffected(); affErr == nil {
		deleted = int(affected)
	}

	written, err = insertRows(ctx, tx, batch.Destination, batch.Table.ColumnNames(), batch.Table.Rows())
	return deleted, written, err
}

func appendNewRows(ctx context.Context, tx *sqlx.Tx, batch statstore.Batch) (written, skipped int, err error) {
	keyRows := keyTuples(batch.Table, batch.Key)
	if len(keyRows) == 0 {
		return 0, 0, nil
	}

	query, args, err := qb.Select(qb.QuoteIdents(batch.Key)...).
		From(batch.Destination).
		Where(qb.InTuples(batch.Key, keyRows)).
		ToSQL()
	if err != nil {
		return 0, 0, fmt.Errorf("build existing keys query: %w", err)
	}

	rows, err := tx.QueryxContext(ctx, query, args...)
	if err != nil {
		return 0, 0, classifyStoreError(fmt.Sprintf("query existing keys in %s", batch.Destination), err)
	}
	defer rows.Close()

	existing := make(map[string]struct{})
	for rows.Next() {
		tuple, scanErr := rows.SliceScan()
		if scanErr != nil {
			return 0, 0, classifyStoreError("scan existing key tuple", scanErr)
		}
		existing[tupleKey(tuple)] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return 0, 0, classifyStoreError("iterate existing key tuples", err)
	}

	fresh := make([][]any, 0, batch.Table.RowCount())
	for i, row := range batch.Table.Rows() {
		if _, dup := existing[tupleKey(keyRows[i])]; dup {
			skipped++
			continue
		}
		fresh = append(fresh, row)
	}

	written, err = insertRows(ctx, tx, batch.Destination, batch.Table.ColumnNames(), fresh)
	return written, skipped, err
}

func insertRows(ctx context.Context, tx *sqlx.Tx, table string, columns []string, rows [][]any) (int, error) {
	written := 0
	for start := 0; start < len(rows); start += insertChunkSize {
		end := start + insertChunkSize
		if end > len(rows) {
			end = len(rows)
		}
		chunk := rows[start:end]

		query, args, err := qb.InsertInto(table).
			Columns(qb.QuoteIdents(columns)...).
			Rows(chunk).
			ToSQL()
		if err != nil {
			return written, fmt.Errorf("build insert stats query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return written, classifyStoreError(fmt.Sprintf("insert stats into %s", table), err)
		}
		written += len(chunk)
	}
	return written, nil
}

// keyTuples returns one key tuple per table row, aligned to row order.
func keyTuples(table *tabular.Table, key []string) [][]any {
	out := make([][]any, 0, table.RowCount())
	for row := 0; row < table.RowCount(); row++ {
		tuple := make([]any, len(key))
		for i, column := range key {
			tuple[i], _ = table.Value(row, column)
		}
		out = append(out, tuple)
	}
	return out
}

func tupleKey(tuple []any) string {
	parts := make([]string, len(tuple))
	for i, v := range tuple {
		switch value := v.(type) {
		case []byte:
			parts[i] = string(value)
		default:
			parts[i] = fmt.Sprintf("%v", value)
		}
	}
	return strings.Join(parts, "\x1f")
}

func classifyStoreError(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Class() {
		case "08", "53", "57":
			return fmt.Errorf("%s: %w: %v", op, statstore.ErrConnection, err)
		case "22", "42":
			return fmt.Errorf("%s: %w: %v", op, statstore.ErrSchemaConflict, err)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w: %v", op, statstore.ErrConnection, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
