package tabular

import (
	"math"
	"time"

	crerr "github.com/cockroachdb/errors"
)

var (
	// ErrTypeConflict marks a column that saw two values whose kinds
	// cannot live in one typed column, such as string next to float.
	ErrTypeConflict = crerr.New("tabular: column type conflict")

	// ErrUnsupportedValue marks field values outside the scalar set the
	// table model carries.
	ErrUnsupportedValue = crerr.New("tabular: unsupported value type")
)

// Kind is the storage type of a column. Int promotes to Float when a
// column sees both; every other mix is a conflict.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindTime
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindTime:
		return "time"
	default:
		return "unknown"
	}
}

type Column struct {
	Name string
	Kind Kind
}

// Table accumulates records that may disagree on their field sets. The
// column set is the union of every appended record, in first-seen order.
// Rows keep append order. A record missing a column contributes nil.
type Table struct {
	name    string
	columns []Column
	index   map[string]int
	rows    [][]any
}

func NewTable(name string) *Table {
	return &Table{name: name, index: make(map[string]int)}
}

func (t *Table) Name() string { return t.name }

func (t *Table) RowCount() int { return len(t.rows) }

func (t *Table) Columns() []Column {
	return append([]Column(nil), t.columns...)
}

func (t *Table) ColumnNames() []string {
	out := make([]string, len(t.columns))
	for i, c := range t.columns {
		out[i] = c.Name
	}
	return out
}

func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Rows returns the backing rows, each aligned to Columns. Callers must
// not mutate them.
func (t *Table) Rows() [][]any { return t.rows }

func (t *Table) Value(row int, column string) (any, bool) {
	if row < 0 || row >= len(t.rows) {
		return nil, false
	}
	i, ok := t.index[column]
	if !ok {
		return nil, false
	}
	return t.rows[row][i], true
}

type pendingField struct {
	name  string
	value any
	kind  Kind
}

// Append merges the record into the table. New field names extend the
// column set and earlier rows read nil for them. On any error the table
// is left unchanged.
func (t *Table) Append(rec *Record) error {
	if rec.Len() == 0 {
		return crerr.New("tabular: record has no fields")
	}

	fields := rec.Fields()
	pend := make([]pendingField, 0, len(fields))
	kinds := make(map[string]Kind, len(fields))
	fresh := make([]string, 0, len(fields))

	for _, f := range fields {
		value, kind, err := normalize(f.Value)
		if err != nil {
			return crerr.Wrapf(err, "column %s", f.Name)
		}

		have, known := kinds[f.Name]
		if !known {
			if i, ok := t.index[f.Name]; ok {
				have = t.columns[i].Kind
				known = true
			}
		}
		if known {
			merged, ok := promote(have, kind)
			if !ok {
				return crerr.Wrapf(ErrTypeConflict, "column %s holds %s, got %s", f.Name, have, kind)
			}
			kinds[f.Name] = merged
		} else {
			kinds[f.Name] = kind
			fresh = append(fresh, f.Name)
		}
		pend = append(pend, pendingField{name: f.Name, value: value, kind: kind})
	}

	for _, name := range fresh {
		t.addColumn(name, kinds[name])
	}
	for name, kind := range kinds {
		i := t.index[name]
		if t.columns[i].Kind != kind {
			t.setColumnKind(i, kind)
		}
	}

	row := make([]any, len(t.columns))
	for _, p := range pend {
		i := t.index[p.name]
		value := p.value
		if t.columns[i].Kind == KindFloat {
			if iv, ok := value.(int64); ok {
				value = float64(iv)
			}
		}
		row[i] = value
	}
	t.rows = append(t.rows, row)
	return nil
}

// AppendColumn adds one fully materialized column, one value per
// existing row. The column name must be new and values must agree on a
// single kind (nil entries stay null). On error the table is unchanged.
func (t *Table) AppendColumn(name string, values []any) error {
	if name == "" {
		return crerr.New("tabular: column name is required")
	}
	if _, ok := t.index[name]; ok {
		return crerr.Newf("tabular: column %s already exists", name)
	}
	if len(values) != len(t.rows) {
		return crerr.Newf("tabular: column %s has %d values, table has %d rows", name, len(values), len(t.rows))
	}

	kind := KindNull
	normalized := make([]any, len(values))
	for i, raw := range values {
		value, got, err := normalize(raw)
		if err != nil {
			return crerr.Wrapf(err, "column %s row %d", name, i)
		}
		merged, ok := promote(kind, got)
		if !ok {
			return crerr.Wrapf(ErrTypeConflict, "column %s holds %s, got %s", name, kind, got)
		}
		kind = merged
		normalized[i] = value
	}
	if kind == KindFloat {
		for i, value := range normalized {
			if iv, ok := value.(int64); ok {
				normalized[i] = float64(iv)
			}
		}
	}

	t.index[name] = len(t.columns)
	t.columns = append(t.columns, Column{Name: name, Kind: kind})
	for i := range t.rows {
		t.rows[i] = append(t.rows[i], normalized[i])
	}
	return nil
}

func (t *Table) addColumn(name string, kind Kind) {
	t.index[name] = len(t.columns)
	t.columns = append(t.columns, Column{Name: name, Kind: kind})
	for i := range t.rows {
		t.rows[i] = append(t.rows[i], nil)
	}
}

func (t *Table) setColumnKind(i int, kind Kind) {
	prev := t.columns[i].Kind
	t.columns[i].Kind = kind
	if prev == KindInt && kind == KindFloat {
		for _, row := range t.rows {
			if iv, ok := row[i].(int64); ok {
				row[i] = float64(iv)
			}
		}
	}
}

func promote(have, got Kind) (Kind, bool) {
	switch {
	case have == got:
		return have, true
	case have == KindNull:
		return got, true
	case got == KindNull:
		return have, true
	case have == KindInt && got == KindFloat, have == KindFloat && got == KindInt:
		return KindFloat, true
	default:
		return 0, false
	}
}

func normalize(value any) (any, Kind, error) {
	switch v := value.(type) {
	case nil:
		return nil, KindNull, nil
	case bool:
		return v, KindBool, nil
	case int:
		return int64(v), KindInt, nil
	case int8:
		return int64(v), KindInt, nil
	case int16:
		return int64(v), KindInt, nil
	case int32:
		return int64(v), KindInt, nil
	case int64:
		return v, KindInt, nil
	case uint:
		if uint64(v) > math.MaxInt64 {
			return nil, 0, crerr.Wrapf(ErrUnsupportedValue, "uint %d overflows int64", v)
		}
		return int64(v), KindInt, nil
	case uint8:
		return int64(v), KindInt, nil
	case uint16:
		return int64(v), KindInt, nil
	case uint32:
		return int64(v), KindInt, nil
	case uint64:
		if v > math.MaxInt64 {
			return nil, 0, crerr.Wrapf(ErrUnsupportedValue, "uint %d overflows int64", v)
		}
		return int64(v), KindInt, nil
	case float32:
		return float64(v), KindFloat, nil
	case float64:
		return v, KindFloat, nil
	case string:
		return v, KindString, nil
	case time.Time:
		return v, KindTime, nil
	default:
		return nil, 0, crerr.Wrapf(ErrUnsupportedValue, "%T", value)
	}
}
