package statfeed

import "errors"

var (
	// ErrTransport marks a network-class failure for one entity. These
	// are the only failures the orchestrator retries.
	ErrTransport = errors.New("transport failure")

	// ErrParse marks a response that arrived but could not be decoded.
	ErrParse = errors.New("malformed payload")

	// ErrAggregationConflict marks a category whose records carry
	// incompatible value types for the same field. Only the offending
	// category fails; reconciliation continues for the rest.
	ErrAggregationConflict = errors.New("category aggregation conflict")
)
