package cache

import (
	"context"
	"sort"
	"strings"

	"github.com/gridironlab/statline/internal/domain/roster"
	basecache "github.com/gridironlab/statline/internal/platform/cache"
)

// RosterRepository caches roster reads in front of another repository.
// A roster replace drops every cached read so the next enumeration
// observes the new pool.
type RosterRepository struct {
	next  roster.Repository
	cache *basecache.Store
}

func NewRosterRepository(next roster.Repository, cache *basecache.Store) *RosterRepository {
	return &RosterRepository{next: next, cache: cache}
}

func (r *RosterRepository) ListActive(ctx context.Context) ([]roster.Player, error) {
	v, err := r.cache.GetOrLoad(ctx, "roster:active", func(ctx context.Context) (any, error) {
		items, err := r.next.ListActive(ctx)
		if err != nil {
			return nil, err
		}
		return append([]roster.Player(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]roster.Player)
	return append([]roster.Player(nil), items...), nil
}

func (r *RosterRepository) ListActiveByPositions(ctx context.Context, positions []roster.Position) ([]roster.Player, error) {
	key := "roster:positions:" + positionsKey(positions)
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		items, err := r.next.ListActiveByPositions(ctx, positions)
		if err != nil {
			return nil, err
		}
		return append([]roster.Player(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]roster.Player)
	return append([]roster.Player(nil), items...), nil
}

func (r *RosterRepository) ReplaceActive(ctx context.Context, players []roster.Player) error {
	if err := r.next.ReplaceActive(ctx, players); err != nil {
		return err
	}

	r.cache.Delete(ctx, "roster:active")
	for _, key := range cachedPositionKeys {
		r.cache.Delete(ctx, key)
	}
	return nil
}

// ReplaceActive invalidates by exact key, so position list keys must be
// canonical: sorted and deduplicated.
func positionsKey(positions []roster.Position) string {
	parts := make([]string, 0, len(positions))
	seen := make(map[roster.Position]struct{}, len(positions))
	for _, position := range positions {
		if _, dup := seen[position]; dup {
			continue
		}
		seen[position] = struct{}{}
		parts = append(parts, string(position))
	}
	sort.Strings(parts)
	return strings.Join(parts, ",")
}

var cachedPositionKeys = buildPositionKeys()

func buildPositionKeys() []string {
	all := make([]roster.Position, 0, len(roster.AllPositions))
	for position := range roster.AllPositions {
		all = append(all, position)
	}

	keys := make([]string, 0, 1<<len(all))
	for mask := 1; mask < 1<<len(all); mask++ {
		subset := make([]roster.Position, 0, len(all))
		for i, position := range all {
			if mask&(1<<i) != 0 {
				subset = append(subset, position)
			}
		}
		keys = append(keys, "roster:positions:"+positionsKey(subset))
	}
	return keys
}
