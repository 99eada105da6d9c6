package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/gridironlab/statline/internal/domain/ingestrun"
)

type IngestRunRepository struct {
	mu   sync.RWMutex
	runs map[string]ingestrun.Run
}

func NewIngestRunRepository() *IngestRunRepository {
	return &IngestRunRepository{runs: make(map[string]ingestrun.Run)}
}

func (r *IngestRunRepository) UpsertRun(_ context.Context, run ingestrun.Run) error {
	if strings.TrimSpace(run.ID) == "" {
		return fmt.Errorf("run id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs[run.ID] = run

	return nil
}

func (r *IngestRunRepository) ListRecent(_ context.Context, limit int) ([]ingestrun.Run, error) {
	if limit <= 0 {
		limit = 20
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]ingestrun.Run, 0, len(r.runs))
	for _, run := range r.runs {
		out = append(out, run)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].StartedAt.After(out[j].StartedAt)
		}
		return out[i].ID < out[j].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}

	return out, nil
}
