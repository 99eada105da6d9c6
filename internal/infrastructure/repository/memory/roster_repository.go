package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/gridironlab/statline/internal/domain/roster"
)

type RosterRepository struct {
	mu      sync.RWMutex
	players []roster.Player
}

func NewRosterRepository(players []roster.Player) *RosterRepository {
	out := make([]roster.Player, 0, len(players))
	out = append(out, players...)
	return &RosterRepository{players: out}
}

func (r *RosterRepository) ListActive(_ context.Context) ([]roster.Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]roster.Player, 0, len(r.players))
	out = append(out, r.players...)
	sortPlayers(out)

	return out, nil
}

func (r *RosterRepository) ListActiveByPositions(_ context.Context, positions []roster.Position) ([]roster.Player, error) {
	wanted := make(map[roster.Position]struct{}, len(positions))
	for _, position := range positions {
		wanted[position] = struct{}{}
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]roster.Player, 0, len(r.players))
	for _, player := range r.players {
		if _, ok := wanted[player.Position]; ok {
			out = append(out, player)
		}
	}
	sortPlayers(out)

	return out, nil
}

func (r *RosterRepository) ReplaceActive(_ context.Context, players []roster.Player) error {
	next := make([]roster.Player, 0, len(players))
	next = append(next, players...)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.players = next

	return nil
}

func sortPlayers(players []roster.Player) {
	sort.Slice(players, func(i, j int) bool {
		if players[i].TeamID != players[j].TeamID {
			return players[i].TeamID < players[j].TeamID
		}
		if players[i].Name != players[j].Name {
			return players[i].Name < players[j].Name
		}
		return players[i].ID < players[j].ID
	})
}
