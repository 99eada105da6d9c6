package statfeed

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/gridironlab/statline/internal/platform/logging"
)

const (
	defaultMaxConcurrency    = 8
	defaultPerRequestTimeout = 20 * time.Second
)

// FetchFunc fetches one entity. Returning ok=false with a nil error
// means the source had nothing for this entity, which is not a failure.
type FetchFunc[T any] func(ctx context.Context, entity Entity) (T, bool, error)

// RetryPolicy is applied uniformly by the orchestrator around every
// fetch. Only transport-class failures are retried; parse failures and
// anything else fail the entity on the first attempt.
type RetryPolicy struct {
	// MaxAttempts counts the first try. Values below 1 mean one attempt.
	MaxAttempts int
	// Backoff is the base delay; attempt n waits n*Backoff before retrying.
	Backoff time.Duration
}

func (p RetryPolicy) attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

type OrchestratorConfig struct {
	MaxConcurrency    int
	PerRequestTimeout time.Duration
	Retry             RetryPolicy
	Logger            *logging.Logger
}

// Orchestrator runs independent per-entity fetches under a global
// concurrency ceiling. It holds configuration only; the worker pool is
// created per FetchAll call so concurrent runs never share slots.
type Orchestrator struct {
	maxConcurrency    int
	perRequestTimeout time.Duration
	retry             RetryPolicy
	logger            *logging.Logger
}

func NewOrchestrator(cfg OrchestratorConfig) *Orchestrator {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	maxConcurrency := cfg.MaxConcurrency
	if maxConcurrency < 1 {
		maxConcurrency = defaultMaxConcurrency
	}
	perRequestTimeout := cfg.PerRequestTimeout
	if perRequestTimeout <= 0 {
		perRequestTimeout = defaultPerRequestTimeout
	}

	return &Orchestrator{
		maxConcurrency:    maxConcurrency,
		perRequestTimeout: perRequestTimeout,
		retry:             cfg.Retry,
		logger:            logger,
	}
}

func (o *Orchestrator) MaxConcurrency() int { return o.maxConcurrency }

// FetchAll fetches every entity with at most MaxConcurrency in flight
// and returns exactly one outcome per entity, index-aligned with the
// input. Individual failures, timeouts, and panics become Failure
// outcomes for their entity only; the batch never aborts for them, even
// at 100% failure. The returned error covers orchestration faults only
// (worker pool setup), never fetch results.
func FetchAll[T any](ctx context.Context, o *Orchestrator, entities []Entity, fn FetchFunc[T]) ([]Outcome[T], error) {
	if fn == nil {
		return nil, fmt.Errorf("fetch function is required")
	}
	if len(entities) == 0 {
		return []Outcome[T]{}, nil
	}

	pool, err := ants.NewPool(o.maxConcurrency)
	if err != nil {
		return nil, fmt.Errorf("create fetch worker pool: %w", err)
	}
	defer pool.Release()

	outcomes := make([]Outcome[T], len(entities))

	var succeeded atomic.Int32
	var empty atomic.Int32
	var failed atomic.Int32

	var workers sync.WaitGroup
	for i, entity := range entities {
		i, entity := i, entity
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			outcome := fetchOne(ctx, o, entity, fn)
			outcomes[i] = outcome

			switch outcome.Kind {
			case OutcomeSuccess:
				succeeded.Add(1)
			case OutcomeEmpty:
				empty.Add(1)
			default:
				failed.Add(1)
				o.logger.WarnContext(ctx, "entity fetch failed",
					"entity_id", entity.ID,
					"entity_name", entity.Name,
					"cause", outcome.Err,
				)
			}
		}); err != nil {
			workers.Done()
			return nil, fmt.Errorf("submit fetch for entity=%s: %w", entity.ID, err)
		}
	}
	workers.Wait()

	o.logger.InfoContext(ctx, "fetch batch finished",
		"entities", len(entities),
		"succeeded", succeeded.Load(),
		"empty", empty.Load(),
		"failed", failed.Load(),
		"max_concurrency", o.maxConcurrency,
	)
	return outcomes, nil
}

// fetchOne holds its concurrency slot across retries so the ceiling is
// never exceeded by a retrying entity.
func fetchOne[T any](ctx context.Context, o *Orchestrator, entity Entity, fn FetchFunc[T]) Outcome[T] {
	attempts := o.retry.attempts()

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		value, ok, err := attemptFetch(ctx, o, fn, entity)
		if err == nil {
			if !ok {
				return EmptyOutcome[T](entity)
			}
			return SuccessOutcome(entity, value)
		}
		lastErr = err

		if !isRetryableFetchError(err) || attempt == attempts {
			break
		}
		if sleepErr := sleepBackoff(ctx, time.Duration(attempt)*o.retry.Backoff); sleepErr != nil {
			lastErr = fmt.Errorf("%w: %v", ErrTransport, sleepErr)
			break
		}
	}
	return FailureOutcome[T](entity, lastErr)
}

func attemptFetch[T any](ctx context.Context, o *Orchestrator, fn FetchFunc[T], entity Entity) (value T, ok bool, err error) {
	attemptCtx, cancel := context.WithTimeout(ctx, o.perRequestTimeout)
	defer cancel()

	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("fetch panicked: %v", rec)
			ok = false
		}
	}()

	value, ok, err = fn(attemptCtx, entity)
	if err != nil && attemptCtx.Err() != nil && ctx.Err() == nil {
		err = fmt.Errorf("%w: per-request timeout: %v", ErrTransport, err)
	}
	return value, ok, err
}

func isRetryableFetchError(err error) bool {
	return errors.Is(err, ErrTransport)
}

func sleepBackoff(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
