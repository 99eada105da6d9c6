package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/gridironlab/statline/internal/domain/roster"
	qb "github.com/gridironlab/statline/internal/platform/querybuilder"
)

type RosterRepository struct {
	db *sqlx.DB
}

func NewRosterRepository(db *sqlx.DB) *RosterRepository {
	return &RosterRepository{db: db}
}

func (r *RosterRepository) ListActive(ctx context.Context) ([]roster.Player, error) {
	return r.list(ctx, nil)
}

func (r *RosterRepository) ListActiveByPositions(ctx context.Context, positions []roster.Position) ([]roster.Player, error) {
	if len(positions) == 0 {
		return []roster.Player{}, nil
	}
	values := make([]any, 0, len(positions))
	for _, position := range positions {
		values = append(values, string(position))
	}
	return r.list(ctx, []qb.Condition{qb.In("position", values)})
}

func (r *RosterRepository) list(ctx context.Context, conditions []qb.Condition) ([]roster.Player, error) {
	builder := qb.Select("*").From("nfl_roster").OrderBy("team_id", "player_name", "player_id")
	if len(conditions) > 0 {
		builder = builder.Where(conditions...)
	}
	query, args, err := builder.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list roster query: %w", err)
	}

	var rows []rosterTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, classifyStoreError("list roster", err)
	}

	out := make([]roster.Player, 0, len(rows))
	for _, row := range rows {
		out = append(out, roster.Player{
			ID:       row.PlayerID,
			Name:     row.Name,
			Position: roster.Position(row.Position),
			TeamID:   row.TeamID,
			TeamName: row.TeamName,
		})
	}

	return out, nil
}

// ReplaceActive swaps the full roster in one transaction so readers
// never observe a half-synced pool.
func (r *RosterRepository) ReplaceActive(ctx context.Context, players []roster.Player) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return classifyStoreError("begin tx replace roster", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, "DELETE FROM nfl_roster"); err != nil {
		return classifyStoreError("clear roster", err)
	}

	for _, player := range players {
		if err := player.Validate(); err != nil {
			return fmt.Errorf("validate roster player: %w", err)
		}

		model := rosterInsertModel{
			PlayerID: player.ID,
			Name:     player.Name,
			Position: string(player.Position),
			TeamID:   player.TeamID,
			TeamName: player.TeamName,
		}
		query, args, err := qb.InsertModel("nfl_roster", model, `ON CONFLICT (player_id)
DO UPDATE SET
    player_name = EXCLUDED.player_name,
    position = EXCLUDED.position,
    team_id = EXCLUDED.team_id,
    team_name = EXCLUDED.team_name,
    synced_at = NOW()`)
		if err != nil {
			return fmt.Errorf("build upsert roster player query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return classifyStoreError(fmt.Sprintf("upsert roster player=%s", player.ID), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return classifyStoreError("commit replace roster tx", err)
	}
	return nil
}
