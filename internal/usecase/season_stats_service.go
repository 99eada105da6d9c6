package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gridironlab/statline/internal/domain/roster"
	"github.com/gridironlab/statline/internal/domain/statstore"
	"github.com/gridironlab/statline/internal/platform/logging"
	"github.com/gridironlab/statline/internal/platform/tabular"
	"github.com/gridironlab/statline/internal/statfeed"
)

// FetchSettings carries the orchestrator tuning every sync job shares.
type FetchSettings struct {
	MaxWorkers     int
	RequestTimeout time.Duration
	MaxRetries     int
	RetryBackoff   time.Duration
}

func (f FetchSettings) orchestrator(logger *logging.Logger) *statfeed.Orchestrator {
	return statfeed.NewOrchestrator(statfeed.OrchestratorConfig{
		MaxConcurrency:    f.MaxWorkers,
		PerRequestTimeout: f.RequestTimeout,
		Retry: statfeed.RetryPolicy{
			MaxAttempts: f.MaxRetries + 1,
			Backoff:     f.RetryBackoff,
		},
		Logger: logger,
	})
}

type SeasonStatsInput struct {
	Season     int
	MaxWorkers int
	DryRun     bool
}

type SeasonStatsResult struct {
	Season           int                      `json:"season"`
	Players          int                      `json:"players"`
	Succeeded        int                      `json:"succeeded"`
	Empty            int                      `json:"empty"`
	Failed           int                      `json:"failed"`
	RowsWritten      int                      `json:"rows_written"`
	Destinations     map[string]UpsertSummary `json:"destinations"`
	FailedCategories map[string]string        `json:"failed_categories,omitempty"`
	DryRun           bool                     `json:"dry_run"`
}

type UpsertSummary struct {
	CreatedTable bool `json:"created_table"`
	RowsWritten  int  `json:"rows_written"`
	RowsDeleted  int  `json:"rows_deleted"`
	RowsSkipped  int  `json:"rows_skipped"`
}

// rankMetrics are the season columns that feed the rankings table, per
// category. Every metric ranks descending (more is better).
var rankMetrics = map[statfeed.CategoryTag][]string{
	"rushing":   {"rushingYards", "rushingTouchdowns", "rushingAttempts"},
	"receiving": {"receivingYards", "receptions", "receivingTouchdowns"},
	"passing":   {"passingYards", "passingTouchdowns", "completions"},
}

type SeasonStatsService struct {
	provider StatProvider
	roster   roster.Repository
	store    statstore.Repository
	settings FetchSettings
	logger   *logging.Logger
}

func NewSeasonStatsService(provider StatProvider, rosterRepo roster.Repository, store statstore.Repository, settings FetchSettings, logger *logging.Logger) *SeasonStatsService {
	if logger == nil {
		logger = logging.Default()
	}
	return &SeasonStatsService{
		provider: provider,
		roster:   rosterRepo,
		store:    store,
		settings: settings,
		logger:   logger,
	}
}

// Sync fetches season-to-date stats for every rostered player, groups
// them into per-category tables, and replace-upserts each table plus a
// pivoted rankings table. A category whose columns conflict is reported
// and skipped; the other categories still land.
func (s *SeasonStatsService) Sync(ctx context.Context, input SeasonStatsInput) (SeasonStatsResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SeasonStatsService.Sync")
	defer span.End()

	if s.provider == nil || s.roster == nil || s.store == nil {
		return SeasonStatsResult{}, fmt.Errorf("%w: season stats sync is not fully configured", ErrDependencyUnavailable)
	}
	if input.Season <= 0 {
		return SeasonStatsResult{}, fmt.Errorf("%w: season is required", ErrInvalidInput)
	}

	players, err := s.roster.ListActive(ctx)
	if err != nil {
		return SeasonStatsResult{}, fmt.Errorf("list roster: %w", err)
	}

	result := SeasonStatsResult{
		Season:       input.Season,
		Players:      len(players),
		Destinations: map[string]UpsertSummary{},
		DryRun:       input.DryRun,
	}
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
		func(ctx context.Context, entity statfeed.Entity) (*tabular.Record, bool, error) {
			return s.provider.FetchSeasonStats(ctx, entity.ID, input.Season)
		})
	if err != nil {
		return result, err
	}

	reconciled := statfeed.Reconcile(outcomes, classifyByPosition, extractSeasonCategory, s.logger)
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
	for tag, tagErr := range reconciled.Failed {
		if result.FailedCategories == nil {
			result.FailedCategories = map[string]string{}
		}
		result.FailedCategories[string(tag)] = tagErr.Error()
	}

	rankRows := make([]statfeed.MetricRow, 0, 1024)
	for _, tag := range reconciled.Tags() {
		table := reconciled.Tables[tag]
		rankRows = append(rankRows, collectRankRows(table, tag)...)

		destination := "nfl_" + string(tag)
		summary, err := s.upsert(ctx, statstore.Batch{
			Destination: destination,
			Table:       table,
			Key:         []string{"player_id"},
			Mode:        statstore.ModeReplace,
		}, input.DryRun)
		if err != nil {
			return result, fmt.Errorf("upsert %s: %w", destination, err)
		}
		result.Destinations[destination] = summary
		result.RowsWritten += summary.RowsWritten
	}

	if len(rankRows) > 0 {
		rankings, err := buildRankings(rankRows)
		if err != nil {
			return result, fmt.Errorf("build rankings: %w", err)
		}
		summary, err := s.upsert(ctx, statstore.Batch{
			Destination: "nfl_stat_rankings",
			Table:       rankings,
			Key:         []string{"player_id"},
			Mode:        statstore.ModeReplace,
		}, input.DryRun)
		if err != nil {
			return result, fmt.Errorf("upsert nfl_stat_rankings: %w", err)
		}
		result.Destinations["nfl_stat_rankings"] = summary
		result.RowsWritten += summary.RowsWritten
	}

	s.logger.InfoContext(ctx, "season stats synced",
		"season", input.Season,
		"players", result.Players,
		"succeeded", result.Succeeded,
		"empty", result.Empty,
		"failed", result.Failed,
		"rows_written", result.RowsWritten,
		"dry_run", input.DryRun,
	)

	return result, nil
}

func (s *SeasonStatsService) upsert(ctx context.Context, batch statstore.Batch, dryRun bool) (UpsertSummary, error) {
	if dryRun {
		return UpsertSummary{RowsWritten: batch.Table.RowCount()}, nil
	}
	report, err := s.store.Upsert(ctx, batch)
	if err != nil {
		return UpsertSummary{}, err
	}
	return UpsertSummary{
		CreatedTable: report.CreatedTable,
		RowsWritten:  report.RowsWritten,
		RowsDeleted:  report.RowsDeleted,
		RowsSkipped:  report.RowsSkipped,
	}, nil
}

// classifyByPosition keeps the original ingest mapping: every tracked
// position carries rushing, quarterbacks add passing, everyone else
// adds receiving.
func classifyByPosition(entity statfeed.Entity) []statfeed.CategoryTag {
	switch roster.Position(entity.CategoryHint) {
	case roster.PositionQuarterback:
		return []statfeed.CategoryTag{"rushing", "passing"}
	case roster.PositionRunningBack, roster.PositionWideReceiver, roster.PositionTightEnd:
		return []statfeed.CategoryTag{"rushing", "receiving"}
	default:
		return nil
	}
}

// extractSeasonCategory pulls the "<tag>." fields out of the flattened
// season record and prepends the player identity columns.
func extractSeasonCategory(entity statfeed.Entity, record *tabular.Record, tag statfeed.CategoryTag) (*tabular.Record, bool) {
	prefix := string(tag) + "."

	out := tabular.NewRecord().
		Set("player_id", entity.ID).
		Set("player_name", entity.Name).
		Set("position", entity.CategoryHint)

	found := false
	for _, field := range record.Fields() {
		if !strings.HasPrefix(field.Name, prefix) {
			continue
		}
		name := field.Name[len(prefix):]
		if name == "" {
			continue
		}
		out.Set(name, field.Value)
		found = true
	}

	return out, found
}

func collectRankRows(table *tabular.Table, tag statfeed.CategoryTag) []statfeed.MetricRow {
	metrics := rankMetrics[tag]
	if len(metrics) == 0 {
		return nil
	}

	rows := make([]statfeed.MetricRow, 0, table.RowCount()*len(metrics))
	for row := 0; row < table.RowCount(); row++ {
		id, _ := table.Value(row, "player_id")
		name, _ := table.Value(row, "player_name")
		playerID, _ := id.(string)
		playerName, _ := name.(string)
		if playerID == "" {
			continue
		}
		for _, metric := range metrics {
			raw, ok := table.Value(row, metric)
			if !ok {
				continue
			}
			value, numeric := numericCell(raw)
			if !numeric {
				continue
			}
			rows = append(rows, statfeed.MetricRow{
				EntityID:   playerID,
				EntityName: playerName,
				Metric:     string(tag) + "_" + metric,
				Value:      value,
			})
		}
	}
	return rows
}

func buildRankings(rows []statfeed.MetricRow) (*tabular.Table, error) {
	table, err := statfeed.PivotMetrics(rows)
	if err != nil {
		return nil, err
	}

	specs := make([]statfeed.RankSpec, 0, len(table.Columns()))
	for _, column := range table.ColumnNames() {
		if column == "player_id" || column == "player_name" {
			continue
		}
		specs = append(specs, statfeed.RankSpec{Column: column, Descending: true})
	}
	if err := statfeed.AddRankColumns(table, specs); err != nil {
		return nil, err
	}
	return table, nil
}

func numericCell(raw any) (float64, bool) {
	switch v := raw.(type) {
	case int64:
		return float64(v), true
	case float64:
		return v, true
	default:
		return 0, false
	}
}
