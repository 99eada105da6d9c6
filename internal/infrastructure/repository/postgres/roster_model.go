package postgres

import "time"

type rosterTableModel struct {
	PlayerID  string    `db:"player_id"`
	Name      string    `db:"player_name"`
	Position  string    `db:"position"`
	TeamID    string    `db:"team_id"`
	TeamName  string    `db:"team_name"`
	SyncedAt  time.Time `db:"synced_at"`
	CreatedAt time.Time `db:"created_at"`
}

type rosterInsertModel struct {
	PlayerID string `db:"player_id"`
	Name     string `db:"player_name"`
	Position string `db:"position"`
	TeamID   string `db:"team_id"`
	TeamName string `db:"team_name"`
}
