package statfeed

import (
	"github.com/gridironlab/statline/internal/platform/tabular"
)

type OutcomeKind uint8

const (
	OutcomeSuccess OutcomeKind = iota
	OutcomeEmpty
	OutcomeFailure
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeEmpty:
		return "empty"
	case OutcomeFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// Outcome is the result of one fetch attempt for one entity. It always
// carries its originating Entity so downstream stages never depend on
// completion order. Immutable once produced.
type Outcome[T any] struct {
	Entity Entity
	Kind   OutcomeKind
	Value  T
	Err    error
}

func SuccessOutcome[T any](entity Entity, value T) Outcome[T] {
	return Outcome[T]{Entity: entity, Kind: OutcomeSuccess, Value: value}
}

func EmptyOutcome[T any](entity Entity) Outcome[T] {
	return Outcome[T]{Entity: entity, Kind: OutcomeEmpty}
}

func FailureOutcome[T any](entity Entity, err error) Outcome[T] {
	return Outcome[T]{Entity: entity, Kind: OutcomeFailure, Err: err}
}

// ExplodeMany flattens multi-record outcomes (one fetch returning one
// record per game) into per-record outcomes for the aggregator. Empty
// and failed outcomes pass through unchanged; a successful outcome with
// zero records becomes Empty.
func ExplodeMany(outcomes []Outcome[[]*tabular.Record]) []Outcome[*tabular.Record] {
	out := make([]Outcome[*tabular.Record], 0, len(outcomes))
	for _, item := range outcomes {
		switch item.Kind {
		case OutcomeSuccess:
			if len(item.Value) == 0 {
				out = append(out, EmptyOutcome[*tabular.Record](item.Entity))
				continue
			}
			for _, rec := range item.Value {
				out = append(out, SuccessOutcome(item.Entity, rec))
			}
		case OutcomeEmpty:
			out = append(out, EmptyOutcome[*tabular.Record](item.Entity))
		default:
			out = append(out, FailureOutcome[*tabular.Record](item.Entity, item.Err))
		}
	}
	return out
}
