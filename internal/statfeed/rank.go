package statfeed

import (
	"fmt"
	"sort"

	"github.com/gridironlab/statline/internal/platform/tabular"
)

// MetricRow is one long-format measurement: a single named value for a
// single entity.
type MetricRow struct {
	EntityID   string
	EntityName string
	Metric     string
	Value      float64
}

// RankSpec requests a rank column for one metric column. Descending
// ranks production stats (more yards = rank 1); ascending suits
// fewer-is-better metrics.
type RankSpec struct {
	Column     string
	Descending bool
}

// PivotMetrics reshapes long-format rows into one wide row per entity.
// Entity order follows first appearance and metric columns accumulate
// in first-seen order; an entity missing a metric reads null for it.
func PivotMetrics(rows []MetricRow) (*tabular.Table, error) {
	table := tabular.NewTable("metrics")

	order := make([]string, 0, len(rows))
	byEntity := make(map[string]*tabular.Record, len(rows))
	for _, row := range rows {
		if row.EntityID == "" || row.Metric == "" {
			return nil, fmt.Errorf("metric row requires entity id and metric name")
		}
		rec, ok := byEntity[row.EntityID]
		if !ok {
			rec = tabular.NewRecord().
				Set("player_id", row.EntityID).
				Set("player_name", row.EntityName)
			byEntity[row.EntityID] = rec
			order = append(order, row.EntityID)
		}
		rec.Set(row.Metric, row.Value)
	}

	for _, id := range order {
		if err := table.Append(byEntity[id]); err != nil {
			return nil, fmt.Errorf("append pivoted row entity=%s: %w", id, err)
		}
	}
	return table, nil
}

// AddRankColumns appends a "<column>_rank" competition rank column for
// every spec. Ties share a rank and the next distinct value skips past
// them (1, 2, 2, 4). Rows with a null or non-numeric value stay null.
func AddRankColumns(table *tabular.Table, specs []RankSpec) error {
	for _, spec := range specs {
		if !table.HasColumn(spec.Column) {
			return fmt.Errorf("rank column %s does not exist", spec.Column)
		}

		type scored struct {
			row   int
			value float64
		}
		entries := make([]scored, 0, table.RowCount())
		for row := 0; row < table.RowCount(); row++ {
			raw, _ := table.Value(row, spec.Column)
			value, ok := numericValue(raw)
			if !ok {
				continue
			}
			entries = append(entries, scored{row: row, value: value})
		}

		sort.SliceStable(entries, func(i, j int) bool {
			if spec.Descending {
				return entries[i].value > entries[j].value
			}
			return entries[i].value < entries[j].value
		})

		ranks := make([]any, table.RowCount())
		for i, entry := range entries {
			rank := i + 1
			if i > 0 && entry.value == entries[i-1].value {
				rank = int(ranks[entries[i-1].row].(int64))
			}
			ranks[entry.row] = int64(rank)
		}

		if err := table.AppendColumn(spec.Column+"_rank", ranks); err != nil {
			return fmt.Errorf("append rank column for %s: %w", spec.Column, err)
		}
	}
	return nil
}

func numericValue(raw any) (float64, bool) {
	switch v := raw.(type) {
	case int64:
		return float64(v), true
	case float64:
		return v, true
	default:
		return 0, false
	}
}
