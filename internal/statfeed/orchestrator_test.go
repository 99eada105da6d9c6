package statfeed

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gridironlab/statline/internal/platform/logging"
	"github.com/gridironlab/statline/internal/platform/tabular"
)

func testEntities(n int) []Entity {
	out := make([]Entity, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, Entity{
			ID:           fmt.Sprintf("player-%d", i),
			Name:         fmt.Sprintf("Player %d", i),
			CategoryHint: "RB",
		})
	}
	return out
}

func TestFetchAll_ReturnsOneOutcomePerEntity(t *testing.T) {
	t.Parallel()

	entities := testEntities(25)
	orch := NewOrchestrator(OrchestratorConfig{MaxConcurrency: 4, Logger: logging.NewNop()})

	outcomes, err := FetchAll(context.Background(), orch, entities, func(_ context.Context, entity Entity) (*tabular.Record, bool, error) {
		switch {
		case entity.ID == "player-3":
			return nil, false, fmt.Errorf("%w: connection reset", ErrTransport)
		case entity.ID == "player-7":
			return nil, false, nil
		default:
			return tabular.NewRecord().Set("player_id", entity.ID), true, nil
		}
	})
	if err != nil {
		t.Fatalf("fetch all: %v", err)
	}
	if len(outcomes) != len(entities) {
		t.Fatalf("unexpected outcome count: got=%d want=%d", len(outcomes), len(entities))
	}

	for i, outcome := range outcomes {
		if outcome.Entity.ID != entities[i].ID {
			t.Fatalf("outcome %d not index-aligned: got=%s want=%s", i, outcome.Entity.ID, entities[i].ID)
		}
	}
	if outcomes[3].Kind != OutcomeFailure {
		t.Fatalf("expected failure for player-3, got %s", outcomes[3].Kind)
	}
	if !errors.Is(outcomes[3].Err, ErrTransport) {
		t.Fatalf("expected transport cause, got %v", outcomes[3].Err)
	}
	if outcomes[7].Kind != OutcomeEmpty {
		t.Fatalf("expected empty for player-7, got %s", outcomes[7].Kind)
	}
}

func TestFetchAll_RespectsConcurrencyCeiling(t *testing.T) {
	t.Parallel()

	const ceiling = 3
	entities := testEntities(40)
	orch := NewOrchestrator(OrchestratorConfig{MaxConcurrency: ceiling, Logger: logging.NewNop()})

	var inFlight atomic.Int32
	var peak atomic.Int32
	outcomes, err := FetchAll(context.Background(), orch, entities, func(_ context.Context, entity Entity) (string, bool, error) {
		current := inFlight.Add(1)
		defer inFlight.Add(-1)

		for {
			observed := peak.Load()
			if current <= observed || peak.CompareAndSwap(observed, current) {
				break
			}
		}
		time.Sleep(2 * time.Millisecond)
		return entity.ID, true, nil
	})
	if err != nil {
		t.Fatalf("fetch all: %v", err)
	}
	if len(outcomes) != len(entities) {
		t.Fatalf("unexpected outcome count: got=%d want=%d", len(outcomes), len(entities))
	}
	if got := peak.Load(); got > ceiling {
		t.Fatalf("concurrency ceiling exceeded: observed=%d ceiling=%d", got, ceiling)
	}
}

func TestFetchAll_EmptyInputMakesNoCalls(t *testing.T) {
	t.Parallel()

	orch := NewOrchestrator(OrchestratorConfig{MaxConcurrency: 10, PerRequestTimeout: 5 * time.Second, Logger: logging.NewNop()})

	var calls atomic.Int32
	outcomes, err := FetchAll(context.Background(), orch, nil, func(context.Context, Entity) (string, bool, error) {
		calls.Add(1)
		return "", true, nil
	})
	if err != nil {
		t.Fatalf("fetch all: %v", err)
	}
	if len(outcomes) != 0 {
		t.Fatalf("expected no outcomes, got %d", len(outcomes))
	}
	if calls.Load() != 0 {
		t.Fatalf("expected zero fetch invocations, got %d", calls.Load())
	}
}

func TestFetchAll_AllFailuresReturnWithoutError(t *testing.T) {
	t.Parallel()

	entities := testEntities(5)
	orch := NewOrchestrator(OrchestratorConfig{MaxConcurrency: 2, Logger: logging.NewNop()})

	outcomes, err := FetchAll(context.Background(), orch, entities, func(_ context.Context, _ Entity) (*tabular.Record, bool, error) {
		return nil, false, fmt.Errorf("%w: upstream 500", ErrParse)
	})
	if err != nil {
		t.Fatalf("fetch all must not raise for fetch failures: %v", err)
	}
	for i, outcome := range outcomes {
		if outcome.Kind != OutcomeFailure {
			t.Fatalf("outcome %d: expected failure, got %s", i, outcome.Kind)
		}
	}
}

func TestFetchAll_RetriesTransportFailuresOnly(t *testing.T) {
	t.Parallel()

	orch := NewOrchestrator(OrchestratorConfig{
		MaxConcurrency: 1,
		Retry:          RetryPolicy{MaxAttempts: 3, Backoff: time.Millisecond},
		Logger:         logging.NewNop(),
	})

	var mu sync.Mutex
	attempts := map[string]int{}

	entities := []Entity{
		{ID: "flaky", CategoryHint: "RB"},
		{ID: "broken-payload", CategoryHint: "RB"},
	}
	outcomes, err := FetchAll(context.Background(), orch, entities, func(_ context.Context, entity Entity) (string, bool, error) {
		mu.Lock()
		attempts[entity.ID]++
		n := attempts[entity.ID]
		mu.Unlock()

		switch entity.ID {
		case "flaky":
			if n < 3 {
				return "", false, fmt.Errorf("%w: timeout", ErrTransport)
			}
			return "ok", true, nil
		default:
			return "", false, fmt.Errorf("%w: bad json", ErrParse)
		}
	})
	if err != nil {
		t.Fatalf("fetch all: %v", err)
	}

	if outcomes[0].Kind != OutcomeSuccess {
		t.Fatalf("flaky entity should succeed after retries, got %s (%v)", outcomes[0].Kind, outcomes[0].Err)
	}
	if attempts["flaky"] != 3 {
		t.Fatalf("unexpected attempts for flaky entity: got=%d want=3", attempts["flaky"])
	}
	if attempts["broken-payload"] != 1 {
		t.Fatalf("parse failures must not be retried: got=%d attempts", attempts["broken-payload"])
	}
	if outcomes[1].Kind != OutcomeFailure {
		t.Fatalf("expected parse failure outcome, got %s", outcomes[1].Kind)
	}
}

func TestFetchAll_PanickingFetchFailsOnlyItsEntity(t *testing.T) {
	t.Parallel()

	entities := testEntities(4)
	orch := NewOrchestrator(OrchestratorConfig{MaxConcurrency: 2, Logger: logging.NewNop()})

	outcomes, err := FetchAll(context.Background(), orch, entities, func(_ context.Context, entity Entity) (string, bool, error) {
		if entity.ID == "player-2" {
			panic("boom")
		}
		return entity.ID, true, nil
	})
	if err != nil {
		t.Fatalf("fetch all: %v", err)
	}
	for i, outcome := range outcomes {
		want := OutcomeSuccess
		if i == 2 {
			want = OutcomeFailure
		}
		if outcome.Kind != want {
			t.Fatalf("outcome %d: got=%s want=%s (err=%v)", i, outcome.Kind, want, outcome.Err)
		}
	}
}

func TestExplodeMany_FlattensPerRecord(t *testing.T) {
	t.Parallel()

	entity := Entity{ID: "p1", CategoryHint: "WR"}
	other := Entity{ID: "p2", CategoryHint: "WR"}

	outcomes := []Outcome[[]*tabular.Record]{
		SuccessOutcome(entity, []*tabular.Record{
			tabular.NewRecord().Set("game_week", 1),
			tabular.NewRecord().Set("game_week", 2),
		}),
		SuccessOutcome[[]*tabular.Record](other, nil),
		FailureOutcome[[]*tabular.Record](other, ErrTransport),
	}

	flat := ExplodeMany(outcomes)
	if len(flat) != 4 {
		t.Fatalf("unexpected flattened count: got=%d want=4", len(flat))
	}
	if flat[0].Kind != OutcomeSuccess || flat[1].Kind != OutcomeSuccess {
		t.Fatalf("expected two successes for p1")
	}
	if flat[2].Kind != OutcomeEmpty {
		t.Fatalf("zero-record success should flatten to empty, got %s", flat[2].Kind)
	}
	if flat[3].Kind != OutcomeFailure {
		t.Fatalf("failure should pass through, got %s", flat[3].Kind)
	}
}
