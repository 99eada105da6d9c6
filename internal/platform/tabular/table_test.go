package tabular

import (
	"testing"

	crerr "github.com/cockroachdb/errors"
)

func TestTableColumnUnionBackfillsNil(t *testing.T) {
	tbl := NewTable("nfl_rushing")

	if err := tbl.Append(NewRecord().Set("a", int64(1))); err != nil {
		t.Fatalf("append first record: %v", err)
	}
	if err := tbl.Append(NewRecord().Set("a", int64(2)).Set("b", int64(3))); err != nil {
		t.Fatalf("append second record: %v", err)
	}

	names := tbl.ColumnNames()
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Fatalf("unexpected columns: %v", names)
	}

	rows := tbl.Rows()
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0][0] != int64(1) || rows[0][1] != nil {
		t.Fatalf("unexpected first row: %v", rows[0])
	}
	if rows[1][0] != int64(2) || rows[1][1] != int64(3) {
		t.Fatalf("unexpected second row: %v", rows[1])
	}
}

func TestTableColumnOrderIsFirstSeen(t *testing.T) {
	tbl := NewTable("nfl_receiving")

	records := []*Record{
		NewRecord().Set("player_id", "p1").Set("receiving.yards", int64(110)),
		NewRecord().Set("player_id", "p2").Set("receiving.targets", int64(9)).Set("receiving.yards", int64(80)),
		NewRecord().Set("receiving.touchdowns", int64(1)).Set("player_id", "p3"),
	}
	for i, rec := range records {
		if err := tbl.Append(rec); err != nil {
			t.Fatalf("append record %d: %v", i, err)
		}
	}

	want := []string{"player_id", "receiving.yards", "receiving.targets", "receiving.touchdowns"}
	got := tbl.ColumnNames()
	if len(got) != len(want) {
		t.Fatalf("unexpected column count: %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("column %d: want %s, got %s", i, want[i], got[i])
		}
	}
}

func TestTableIntPromotesToFloat(t *testing.T) {
	tbl := NewTable("nfl_rushing")

	if err := tbl.Append(NewRecord().Set("yards_per_carry", int64(4))); err != nil {
		t.Fatalf("append int record: %v", err)
	}
	if err := tbl.Append(NewRecord().Set("yards_per_carry", 4.7)); err != nil {
		t.Fatalf("append float record: %v", err)
	}

	cols := tbl.Columns()
	if cols[0].Kind != KindFloat {
		t.Fatalf("expected float column, got %s", cols[0].Kind)
	}

	rows := tbl.Rows()
	if rows[0][0] != float64(4) {
		t.Fatalf("expected earlier int row converted to float, got %T %v", rows[0][0], rows[0][0])
	}
	if rows[1][0] != 4.7 {
		t.Fatalf("unexpected second row value: %v", rows[1][0])
	}
}

func TestTableNullThenTypedColumn(t *testing.T) {
	tbl := NewTable("nfl_projections")

	if err := tbl.Append(NewRecord().Set("projected_points", nil)); err != nil {
		t.Fatalf("append null record: %v", err)
	}
	if err := tbl.Append(NewRecord().Set("projected_points", 12.4)); err != nil {
		t.Fatalf("append typed record: %v", err)
	}

	if tbl.Columns()[0].Kind != KindFloat {
		t.Fatalf("expected null column to take float kind, got %s", tbl.Columns()[0].Kind)
	}
}

func TestTableTypeConflict(t *testing.T) {
	tbl := NewTable("nfl_rushing")

	if err := tbl.Append(NewRecord().Set("yards", int64(120))); err != nil {
		t.Fatalf("append int record: %v", err)
	}

	err := tbl.Append(NewRecord().Set("yards", "many"))
	if !crerr.Is(err, ErrTypeConflict) {
		t.Fatalf("expected type conflict, got %v", err)
	}

	if tbl.RowCount() != 1 {
		t.Fatalf("conflicting append must not add a row, have %d", tbl.RowCount())
	}
	if tbl.Columns()[0].Kind != KindInt {
		t.Fatalf("conflicting append must not change column kind, have %s", tbl.Columns()[0].Kind)
	}
}

func TestTableRejectsUnsupportedValue(t *testing.T) {
	tbl := NewTable("nfl_roster")

	err := tbl.Append(NewRecord().Set("raw", map[string]any{"nested": true}))
	if !crerr.Is(err, ErrUnsupportedValue) {
		t.Fatalf("expected unsupported value error, got %v", err)
	}
	if tbl.RowCount() != 0 {
		t.Fatalf("failed append must not add a row, have %d", tbl.RowCount())
	}
}

func TestTableValue(t *testing.T) {
	tbl := NewTable("nfl_roster")
	if err := tbl.Append(NewRecord().Set("player_id", "p1").Set("jersey", int64(15))); err != nil {
		t.Fatalf("append record: %v", err)
	}

	v, ok := tbl.Value(0, "jersey")
	if !ok || v != int64(15) {
		t.Fatalf("unexpected value: %v ok=%v", v, ok)
	}
	if _, ok := tbl.Value(0, "missing"); ok {
		t.Fatal("expected missing column lookup to report false")
	}
	if _, ok := tbl.Value(3, "jersey"); ok {
		t.Fatal("expected out of range row lookup to report false")
	}
}

func TestRecordSetKeepsPositionOnOverwrite(t *testing.T) {
	rec := NewRecord().Set("a", int64(1)).Set("b", int64(2)).Set("a", int64(9))

	fields := rec.Fields()
	if len(fields) != 2 {
		t.Fatalf("unexpected field count: %d", len(fields))
	}
	if fields[0].Name != "a" || fields[0].Value != int64(9) {
		t.Fatalf("unexpected first field: %+v", fields[0])
	}
	if fields[1].Name != "b" {
		t.Fatalf("unexpected second field: %+v", fields[1])
	}
}
