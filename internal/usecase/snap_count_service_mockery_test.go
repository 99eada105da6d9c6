package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/gridironlab/statline/internal/domain/statstore"
	statstoremock "github.com/gridironlab/statline/internal/mocks/domain/statstore"
	"github.com/stretchr/testify/mock"
)

func TestSnapCountService_Sync_SuccessUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := statstoremock.NewRepository(t)
	reference := &fakeReferenceLoader{
		crosswalk: map[string]string{"jahmyr gibbs": "4429795"},
		snaps: []SnapCountRow{
			{Season: 2025, GameWeek: 1, PlayerName: "jahmyr gibbs", Team: "DET", Position: "RB", OffenseSnaps: 44, OffenseSnapPct: 0.62},
		},
	}
	service := NewSnapCountService(reference, store, nil)

	store.
		On("Upsert", mock.Anything, mock.MatchedBy(func(batch statstore.Batch) bool {
			return batch.Destination == "nfl_snap_counts" &&
				batch.Mode == statstore.ModeReplace &&
				len(batch.Key) == 3 &&
				batch.Table.RowCount() == 1
		})).
		Return(statstore.UpsertReport{Destination: "nfl_snap_counts", CreatedTable: true, RowsWritten: 1}, nil).
		Once()

	result, err := service.Sync(ctx, SnapCountInput{Seasons: []int{2025}})
	if err != nil {
		t.Fatalf("sync snap counts: %v", err)
	}
	if result.RowsWritten != 1 || !result.Upsert.CreatedTable {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestSnapCountService_Sync_StoreFailureUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := statstoremock.NewRepository(t)
	reference := &fakeReferenceLoader{
		crosswalk: map[string]string{"jahmyr gibbs": "4429795"},
		snaps: []SnapCountRow{
			{Season: 2025, GameWeek: 1, PlayerName: "jahmyr gibbs", OffenseSnaps: 44},
		},
	}
	service := NewSnapCountService(reference, store, nil)

	store.
		On("Upsert", mock.Anything, mock.Anything).
		Return(statstore.UpsertReport{}, statstore.ErrConnection).
		Once()

	_, err := service.Sync(ctx, SnapCountInput{Seasons: []int{2025}})
	if !errors.Is(err, statstore.ErrConnection) {
		t.Fatalf("expected ErrConnection, got %v", err)
	}
}
