package statfeed

import (
	"errors"
	"fmt"
	"sort"

	"github.com/gridironlab/statline/internal/platform/logging"
	"github.com/gridironlab/statline/internal/platform/tabular"
)

// ClassifyFunc decides which category tags an entity's record belongs
// to. An entity may map to several tags; an empty slice excludes it.
type ClassifyFunc func(entity Entity) []CategoryTag

// ExtractFunc derives the category-specific subset of a fetched record.
// Returning ok=false means the record carries no data for the tag,
// which simply excludes it from that group rather than failing it.
type ExtractFunc func(entity Entity, record *tabular.Record, tag CategoryTag) (*tabular.Record, bool)

// Result is the reconciled output: one column-unioned table per
// category that produced rows, plus per-tag failures and counts for the
// partial-success report.
type Result struct {
	Tables    map[CategoryTag]*tabular.Table
	Failed    map[CategoryTag]error
	Succeeded int
	Skipped   int
}

// Tags returns the tags holding tables, sorted for deterministic
// iteration.
func (r Result) Tags() []CategoryTag {
	out := make([]CategoryTag, 0, len(r.Tables))
	for tag := range r.Tables {
		out = append(out, tag)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Reconcile merges successful outcomes into uniform per-category
// tables. Rows are appended in outcome order and columns accumulate in
// first-seen order, so a fixed input always produces identical tables.
// Records missing fields present elsewhere in their category contribute
// nulls; rows are never dropped for shape mismatch. An irreconcilable
// value-type conflict fails only its own tag.
func Reconcile(outcomes []Outcome[*tabular.Record], classify ClassifyFunc, extract ExtractFunc, logger *logging.Logger) Result {
	if logger == nil {
		logger = logging.Default()
	}

	result := Result{
		Tables: make(map[CategoryTag]*tabular.Table),
		Failed: make(map[CategoryTag]error),
	}

	for _, outcome := range outcomes {
		if outcome.Kind != OutcomeSuccess {
			result.Skipped++
			continue
		}

		contributed := false
		for _, tag := range classify(outcome.Entity) {
			if _, failed := result.Failed[tag]; failed {
				continue
			}

			record, ok := extract(outcome.Entity, outcome.Value, tag)
			if !ok || record == nil || record.Len() == 0 {
				continue
			}

			table, exists := result.Tables[tag]
			if !exists {
				table = tabular.NewTable(string(tag))
				result.Tables[tag] = table
			}

			if err := table.Append(record); err != nil {
				if errors.Is(err, tabular.ErrTypeConflict) {
					result.Failed[tag] = fmt.Errorf("%w: category=%s: %v", ErrAggregationConflict, tag, err)
					delete(result.Tables, tag)
					continue
				}
				// Non-conflict append errors drop this record from the
				// tag but keep the group alive.
				logger.Warn("record rejected by category table",
					"category", string(tag),
					"entity_id", outcome.Entity.ID,
					"error", err,
				)
				continue
			}
			contributed = true
		}
		if contributed {
			result.Succeeded++
		}
	}

	if result.Skipped > 0 || len(result.Failed) > 0 {
		logger.Info("reconcile summary",
			"categories", len(result.Tables),
			"failed_categories", len(result.Failed),
			"records_in", result.Succeeded,
			"outcomes_skipped", result.Skipped,
		)
	}
	return result
}
