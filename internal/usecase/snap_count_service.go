package usecase

import (
	"context"
	"fmt"

	"github.com/gridironlab/statline/internal/domain/statstore"
	"github.com/gridironlab/statline/internal/platform/logging"
	"github.com/gridironlab/statline/internal/platform/tabular"
)

type SnapCountInput struct {
	Seasons []int
	DryRun  bool
}

type SnapCountResult struct {
	Seasons     []int         `json:"seasons"`
	SourceRows  int           `json:"source_rows"`
	Unmatched   int           `json:"unmatched"`
	RowsWritten int           `json:"rows_written"`
	DryRun      bool          `json:"dry_run"`
	Upsert      UpsertSummary `json:"upsert"`
}

type SnapCountService struct {
	reference ReferenceLoader
	store     statstore.Repository
	logger    *logging.Logger
}

func NewSnapCountService(reference ReferenceLoader, store statstore.Repository, logger *logging.Logger) *SnapCountService {
	if logger == nil {
		logger = logging.Default()
	}
	return &SnapCountService{reference: reference, store: store, logger: logger}
}

// Sync loads weekly snap counts for the given seasons, resolves player
// ids through the name crosswalk, and replace-upserts the weekly rows.
// The source occasionally restates percentages for past weeks, so
// Replace keeps the table converged with upstream. Rows whose player
// cannot be resolved are dropped; they would collide on a null key.
func (s *SnapCountService) Sync(ctx context.Context, input SnapCountInput) (SnapCountResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SnapCountService.Sync")
	defer span.End()

	if s.reference == nil || s.store == nil {
		return SnapCountResult{}, fmt.Errorf("%w: snap count sync is not fully configured", ErrDependencyUnavailable)
	}
	if len(input.Seasons) == 0 {
		return SnapCountResult{}, fmt.Errorf("%w: at least one season is required", ErrInvalidInput)
	}

	crosswalk, err := s.reference.CrosswalkByName(ctx)
	if err != nil {
		return SnapCountResult{}, fmt.Errorf("%w: load crosswalk: %v", ErrDependencyUnavailable, err)
	}
	snaps, err := s.reference.SnapCounts(ctx, input.Seasons)
	if err != nil {
		return SnapCountResult{}, fmt.Errorf("%w: load snap counts: %v", ErrDependencyUnavailable, err)
	}

	result := SnapCountResult{Seasons: input.Seasons, SourceRows: len(snaps), DryRun: input.DryRun}

	table := tabular.NewTable("snap_counts")
	for _, row := range snaps {
		playerID, ok := crosswalk[row.PlayerName]
		if !ok {
			result.Unmatched++
			continue
		}
		record := tabular.NewRecord().
			Set("player_id", playerID).
			Set("player_name", row.PlayerName).
			Set("season", int64(row.Season)).
			Set("game_week", int64(row.GameWeek)).
			Set("team", row.Team).
			Set("position", row.Position).
			Set("offense_snaps", int64(row.OffenseSnaps)).
			Set("defense_snaps", int64(row.DefenseSnaps)).
			Set("offense_snap_pct", row.OffenseSnapPct).
			Set("defense_snap_pct", row.DefenseSnapPct)
		if err := table.Append(record); err != nil {
			return result, fmt.Errorf("append snap row: %w", err)
		}
	}

	if table.RowCount() == 0 {
		return result, nil
	}

	if input.DryRun {
		result.RowsWritten = table.RowCount()
		result.Upsert = UpsertSummary{RowsWritten: table.RowCount()}
		return result, nil
	}

	report, err := s.store.Upsert(ctx, statstore.Batch{
		Destination: "nfl_snap_counts",
		Table:       table,
		Key:         []string{"player_id", "season", "game_week"},
		Mode:        statstore.ModeReplace,
	})
	if err != nil {
		return result, fmt.Errorf("upsert nfl_snap_counts: %w", err)
	}

	result.RowsWritten = report.RowsWritten
	result.Upsert = UpsertSummary{
		CreatedTable: report.CreatedTable,
		RowsWritten:  report.RowsWritten,
		RowsDeleted:  report.RowsDeleted,
	}

	s.logger.InfoContext(ctx, "snap counts synced",
		"seasons", input.Seasons,
		"source_rows", result.SourceRows,
		"unmatched", result.Unmatched,
		"rows_written", result.RowsWritten,
	)

	return result, nil
}
