package querybuilder

import "strings"

type Condition interface {
	appendSQL(buf *strings.Builder, args *[]any, argIndex *int)
}

type eqCondition struct {
	column string
	value  any
}

func Eq(column string, value any) Condition {
	return eqCondition{column: column, value: value}
}

func (c eqCondition) appendSQL(buf *strings.Builder, args *[]any, argIndex *int) {
	buf.WriteString(c.column)
	buf.WriteString(" = ")
	buf.WriteString(placeholder(*argIndex))
	*args = append(*args, c.value)
	*argIndex = *argIndex + 1
}

type gteCondition struct {
	column string
	value  any
}

func Gte(column string, value any) Condition {
	return gteCondition{column: column, value: value}
}

func (c gteCondition) appendSQL(buf *strings.Builder, args *[]any, argIndex *int) {
	buf.WriteString(c.column)
	buf.WriteString(" >= ")
	buf.WriteString(placeholder(*argIndex))
	*args = append(*args, c.value)
	*argIndex = *argIndex + 1
}

type inCondition struct {
	column string
	values []any
}

func In(column string, values []any) Condition {
	return inCondition{column: column, values: values}
}

func (c inCondition) appendSQL(buf *strings.Builder, args *[]any, argIndex *int) {
	if len(c.values) == 0 {
		buf.WriteString("1=0")
		return
	}

	buf.WriteString(c.column)
	buf.WriteString(" IN (")
	for i, v := range c.values {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(placeholder(*argIndex))
		*args = append(*args, v)
		*argIndex = *argIndex + 1
	}
	buf.WriteString(")")
}

type inTuplesCondition struct {
	columns []string
	rows    [][]any
}

// InTuples builds a row-value membership test over composite keys:
// (a, b) IN (($1, $2), ($3, $4)). Every row must carry one value per
// column. An empty row set matches nothing.
func InTuples(columns []string, rows [][]any) Condition {
	return inTuplesCondition{
		columns: append([]string(nil), columns...),
		rows:    rows,
	}
}

func (c inTuplesCondition) appendSQL(buf *strings.Builder, args *[]any, argIndex *int) {
	if len(c.columns) == 0 || len(c.rows) == 0 {
		buf.WriteString("1=0")
		return
	}

	buf.WriteString("(")
	buf.WriteString(strings.Join(c.columns, ", "))
	buf.WriteString(") IN (")
	for rowIdx, row := range c.rows {
		if rowIdx > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString("(")
		for colIdx := range c.columns {
			if colIdx > 0 {
				buf.WriteString(", ")
			}
			var value any
			if colIdx < len(row) {
				value = row[colIdx]
			}
			buf.WriteString(placeholder(*argIndex))
			*args = append(*args, value)
			*argIndex = *argIndex + 1
		}
		buf.WriteString(")")
	}
	buf.WriteString(")")
}

type isNullCondition struct {
	column string
}

func IsNull(column string) Condition {
	return isNullCondition{column: column}
}

func (c isNullCondition) appendSQL(buf *strings.Builder, _ *[]any, _ *int) {
	buf.WriteString(c.column)
	buf.WriteString(" IS NULL")
}

type exprCondition struct {
	expr string
	args []any
}

func Expr(expr string, args ...any) Condition {
	return exprCondition{expr: expr, args: args}
}

func (c exprCondition) appendSQL(buf *strings.Builder, args *[]any, argIndex *int) {
	buf.WriteString(rewritePlaceholders(c.expr, c.args, args, argIndex))
}
