package usecase

import (
	"context"
	"fmt"
	"strconv"

	"github.com/gridironlab/statline/internal/domain/roster"
	"github.com/gridironlab/statline/internal/domain/statstore"
	"github.com/gridironlab/statline/internal/platform/logging"
	"github.com/gridironlab/statline/internal/platform/tabular"
	"github.com/gridironlab/statline/internal/statfeed"
)

const gamelogTag statfeed.CategoryTag = "gamelog"

type GamelogInput struct {
	Season     int
	Weeks      []int
	MaxWorkers int
	DryRun     bool
}

type GamelogResult struct {
	Season      int           `json:"season"`
	Players     int           `json:"players"`
	Succeeded   int           `json:"succeeded"`
	Empty       int           `json:"empty"`
	Failed      int           `json:"failed"`
	Games       int           `json:"games"`
	SnapMatches int           `json:"snap_matches"`
	RowsWritten int           `json:"rows_written"`
	RowsSkipped int           `json:"rows_skipped"`
	DryRun      bool          `json:"dry_run"`
	Upsert      UpsertSummary `json:"upsert"`
}

type GamelogService struct {
	provider  StatProvider
	reference ReferenceLoader
	roster    roster.Repository
	store     statstore.Repository
	settings  FetchSettings
	logger    *logging.Logger
}

func NewGamelogService(provider StatProvider, reference ReferenceLoader, rosterRepo roster.Repository, store statstore.Repository, settings FetchSettings, logger *logging.Logger) *GamelogService {
	if logger == nil {
		logger = logging.Default()
	}
	return &GamelogService{
		provider:  provider,
		reference: reference,
		roster:    rosterRepo,
		store:     store,
		settings:  settings,
		logger:    logger,
	}
}

// Sync fetches per-game lines for every rostered player, enriches them
// with snap counts joined on player/season/week, and appends only the
// games not stored yet. Games already in the log are never rewritten.
func (s *GamelogService) Sync(ctx context.Context, input GamelogInput) (GamelogResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GamelogService.Sync")
	defer span.End()

	if s.provider == nil || s.roster == nil || s.store == nil {
		return GamelogResult{}, fmt.Errorf("%w: gamelog sync is not fully configured", ErrDependencyUnavailable)
	}
	if input.Season <= 0 {
		return GamelogResult{}, fmt.Errorf("%w: season is required", ErrInvalidInput)
	}

	players, err := s.roster.ListActive(ctx)
	if err != nil {
		return GamelogResult{}, fmt.Errorf("list roster: %w", err)
	}

	result := GamelogResult{Season: input.Season, Players: len(players), DryRun: input.DryRun}
	if len(players) == 0 {
		return result, nil
	}

	entities := make([]statfeed.Entity, 0, len(players))
	for _, player := range players {
		entities = append(entities, statfeed.Entity{
			ID:           player.ID,
			Name:         player.Name,
			CategoryHint: string(player.Position),
		})
	}

	settings := s.settings
	if input.MaxWorkers > 0 {
		settings.MaxWorkers = input.MaxWorkers
	}

	outcomes, err := statfeed.FetchAll(ctx, settings.orchestrator(s.logger), entities,
		func(ctx context.Context, entity statfeed.Entity) ([]*tabular.Record, bool, error) {
			return s.provider.FetchGameLog(ctx, entity.ID, input.Season)
		})
	if err != nil {
		return result, err
	}
	for _, outcome := range outcomes {
		switch outcome.Kind {
		case statfeed.OutcomeSuccess:
			result.Succeeded++
		case statfeed.OutcomeEmpty:
			result.Empty++
		case statfeed.OutcomeFailure:
			result.Failed++
		}
	}

	weekFilter := make(map[int64]struct{}, len(input.Weeks))
	for _, week := range input.Weeks {
		weekFilter[int64(week)] = struct{}{}
	}

	extract := func(entity statfeed.Entity, record *tabular.Record, _ statfeed.CategoryTag) (*tabular.Record, bool) {
		if len(weekFilter) > 0 {
			week, _ := record.Get("game_week")
			if weekValue, ok := week.(int64); !ok {
				return nil, false
			} else if _, wanted := weekFilter[weekValue]; !wanted {
				return nil, false
			}
		}

		out := tabular.NewRecord().
			Set("player_id", entity.ID).
			Set("player_name", entity.Name)
		for _, field := range record.Fields() {
			out.Set(field.Name, field.Value)
		}
		return out, true
	}
	classify := func(statfeed.Entity) []statfeed.CategoryTag {
		return []statfeed.CategoryTag{gamelogTag}
	}

	reconciled := statfeed.Reconcile(statfeed.ExplodeMany(outcomes), classify, extract, s.logger)
	if tagErr, failed := reconciled.Failed[gamelogTag]; failed {
		return result, fmt.Errorf("reconcile gamelog: %w", tagErr)
	}

	table, ok := reconciled.Tables[gamelogTag]
	if !ok || table.RowCount() == 0 {
		return result, nil
	}
	result.Games = table.RowCount()

	if s.reference != nil {
		matches, err := s.attachSnapCounts(ctx, table, input.Season)
		if err != nil {
			s.logger.WarnContext(ctx, "snap count enrichment skipped", "season", input.Season, "error", err)
		} else {
			result.SnapMatches = matches
		}
	}

	if input.DryRun {
		result.RowsWritten = table.RowCount()
		result.Upsert = UpsertSummary{RowsWritten: table.RowCount()}
		return result, nil
	}

	report, err := s.store.Upsert(ctx, statstore.Batch{
		Destination: "nfl_player_gamelog",
		Table:       table,
		Key:         []string{"player_id", "season", "game_week"},
		Mode:        statstore.ModeAppendOnlyNew,
	})
	if err != nil {
		return result, fmt.Errorf("upsert nfl_player_gamelog: %w", err)
	}

	result.RowsWritten = report.RowsWritten
	result.RowsSkipped = report.RowsSkipped
	result.Upsert = UpsertSummary{
		CreatedTable: report.CreatedTable,
		RowsWritten:  report.RowsWritten,
		RowsSkipped:  report.RowsSkipped,
	}

	s.logger.InfoContext(ctx, "gamelog synced",
		"season", input.Season,
		"games", result.Games,
		"rows_written", result.RowsWritten,
		"rows_skipped", result.RowsSkipped,
	)

	return result, nil
}

// attachSnapCounts appends offense_snaps/defense_snaps columns joined
// on (player_id, season, game_week). Games without a snap row stay
// null. Returns how many games matched.
func (s *GamelogService) attachSnapCounts(ctx context.Context, table *tabular.Table, season int) (int, error) {
	crosswalk, err := s.reference.CrosswalkByName(ctx)
	if err != nil {
		return 0, fmt.Errorf("load crosswalk: %w", err)
	}
	snaps, err := s.reference.SnapCounts(ctx, []int{season})
	if err != nil {
		return 0, fmt.Errorf("load snap counts: %w", err)
	}

	type snapKey struct {
		playerID string
		season   int64
		week     int64
	}
	byKey := make(map[snapKey]SnapCountRow, len(snaps))
	for _, row := range snaps {
		playerID, ok := crosswalk[row.PlayerName]
		if !ok {
			continue
		}
		byKey[snapKey{playerID: playerID, season: int64(row.Season), week: int64(row.GameWeek)}] = row
	}

	offense := make([]any, table.RowCount())
	defense := make([]any, table.RowCount())
	matches := 0
	for row := 0; row < table.RowCount(); row++ {
		playerID, _ := tableString(table, row, "player_id")
		seasonValue, _ := tableInt(table, row, "season")
		weekValue, hasWeek := tableInt(table, row, "game_week")
		if playerID == "" || !hasWeek {
			continue
		}
		snap, ok := byKey[snapKey{playerID: playerID, season: seasonValue, week: weekValue}]
		if !ok {
			continue
		}
		offense[row] = int64(snap.OffenseSnaps)
		defense[row] = int64(snap.DefenseSnaps)
		matches++
	}

	if err := table.AppendColumn("offense_snaps", offense); err != nil {
		return 0, err
	}
	if err := table.AppendColumn("defense_snaps", defense); err != nil {
		return 0, err
	}
	return matches, nil
}

func tableString(table *tabular.Table, row int, column string) (string, bool) {
	raw, ok := table.Value(row, column)
	if !ok {
		return "", false
	}
	value, ok := raw.(string)
	return value, ok
}

func tableInt(table *tabular.Table, row int, column string) (int64, bool) {
	raw, ok := table.Value(row, column)
	if !ok {
		return 0, false
	}
	switch value := raw.(type) {
	case int64:
		return value, true
	case float64:
		return int64(value), true
	case string:
		parsed, err := strconv.ParseInt(value, 10, 64)
		return parsed, err == nil
	default:
		return 0, false
	}
}
