package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/gridironlab/statline/internal/infrastructure/repository/memory"
)

func TestSnapCountService_DropsUnmatchedNames(t *testing.T) {
	t.Parallel()

	reference := &fakeReferenceLoader{
		crosswalk: map[string]string{"jahmyr gibbs": "4429795"},
		snaps: []SnapCountRow{
			{Season: 2025, GameWeek: 1, PlayerName: "jahmyr gibbs", Team: "DET", Position: "RB", OffenseSnaps: 44, OffenseSnapPct: 0.62},
			{Season: 2025, GameWeek: 1, PlayerName: "practice squad guy", Team: "DET", Position: "RB", OffenseSnaps: 2},
		},
	}
	store := memory.NewStatTableRepository()
	service := NewSnapCountService(reference, store, nil)

	result, err := service.Sync(context.Background(), SnapCountInput{Seasons: []int{2025}})
	if err != nil {
		t.Fatalf("sync snap counts: %v", err)
	}
	if result.SourceRows != 2 || result.Unmatched != 1 {
		t.Fatalf("unexpected counts: source=%d unmatched=%d", result.SourceRows, result.Unmatched)
	}

	rows := store.Rows("nfl_snap_counts")
	if len(rows) != 1 {
		t.Fatalf("unexpected stored rows: got=%d want=1", len(rows))
	}
	if rows[0]["player_id"] != "4429795" || rows[0]["offense_snaps"] != int64(44) {
		t.Fatalf("unexpected stored row: %v", rows[0])
	}
}

func TestSnapCountService_ReplaceConvergesWithSource(t *testing.T) {
	t.Parallel()

	reference := &fakeReferenceLoader{
		crosswalk: map[string]string{"jahmyr gibbs": "4429795"},
		snaps: []SnapCountRow{
			{Season: 2025, GameWeek: 1, PlayerName: "jahmyr gibbs", Team: "DET", Position: "RB", OffenseSnaps: 44, OffenseSnapPct: 0.62},
		},
	}
	store := memory.NewStatTableRepository()
	service := NewSnapCountService(reference, store, nil)

	if _, err := service.Sync(context.Background(), SnapCountInput{Seasons: []int{2025}}); err != nil {
		t.Fatalf("first sync: %v", err)
	}

	// Upstream restates the week with corrected snaps.
	reference.snaps[0].OffenseSnaps = 47

	result, err := service.Sync(context.Background(), SnapCountInput{Seasons: []int{2025}})
	if err != nil {
		t.Fatalf("second sync: %v", err)
	}
	if result.Upsert.RowsDeleted != 1 {
		t.Fatalf("restated week should replace the old row, deleted=%d", result.Upsert.RowsDeleted)
	}

	rows := store.Rows("nfl_snap_counts")
	if len(rows) != 1 || rows[0]["offense_snaps"] != int64(47) {
		t.Fatalf("unexpected converged rows: %v", rows)
	}
}

func TestSnapCountService_RequiresSeasons(t *testing.T) {
	t.Parallel()

	service := NewSnapCountService(&fakeReferenceLoader{}, memory.NewStatTableRepository(), nil)
	_, err := service.Sync(context.Background(), SnapCountInput{})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
