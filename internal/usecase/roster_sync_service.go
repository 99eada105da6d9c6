package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/sourcegraph/conc/pool"

	"github.com/gridironlab/statline/internal/domain/roster"
	"github.com/gridironlab/statline/internal/platform/logging"
)

type RosterSyncInput struct {
	MaxWorkers int
	// DryRun computes the roster without replacing the stored one.
	DryRun bool
}

type RosterSyncResult struct {
	Teams       int  `json:"teams"`
	TeamsFailed int  `json:"teams_failed"`
	Players     int  `json:"players"`
	RowsWritten int  `json:"rows_written"`
	DryRun      bool `json:"dry_run"`
}

type RosterSyncService struct {
	provider StatProvider
	repo     roster.Repository
	logger   *logging.Logger
}

func NewRosterSyncService(provider StatProvider, repo roster.Repository, logger *logging.Logger) *RosterSyncService {
	if logger == nil {
		logger = logging.Default()
	}
	return &RosterSyncService{provider: provider, repo: repo, logger: logger}
}

// Sync pulls the team directory, fans out per-team roster fetches, and
// replaces the stored roster with the offense players of the tracked
// positions. A team whose roster fetch fails is skipped; the replace
// still runs so the roster never goes stale because one team 500s.
func (s *RosterSyncService) Sync(ctx context.Context, input RosterSyncInput) (RosterSyncResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RosterSyncService.Sync")
	defer span.End()

	if s.provider == nil || s.repo == nil {
		return RosterSyncResult{}, fmt.Errorf("%w: roster sync is not fully configured", ErrDependencyUnavailable)
	}

	teams, err := s.provider.ListTeams(ctx)
	if err != nil {
		return RosterSyncResult{}, fmt.Errorf("%w: list teams: %v", ErrDependencyUnavailable, err)
	}

	workers := input.MaxWorkers
	if workers <= 0 {
		workers = 4
	}

	var mu sync.Mutex
	players := make([]roster.Player, 0, 256)
	teamsFailed := 0

	p := pool.New().WithContext(ctx).WithMaxGoroutines(workers)
	for _, team := range teams {
		team := team
		p.Go(func(ctx context.Context) error {
			rosterPlayers, err := s.provider.ListTeamRoster(ctx, team.ExternalID)
			if err != nil {
				s.logger.WarnContext(ctx, "team roster fetch failed",
					"team_id", team.ExternalID, "team", team.Name, "error", err)
				mu.Lock()
				teamsFailed++
				mu.Unlock()
				return nil
			}

			mapped := make([]roster.Player, 0, len(rosterPlayers))
			for _, item := range rosterPlayers {
				position := roster.Position(strings.ToUpper(strings.TrimSpace(item.Position)))
				if _, tracked := roster.AllPositions[position]; !tracked {
					continue
				}
				mapped = append(mapped, roster.Player{
					ID:       item.ExternalID,
					Name:     item.Name,
					Position: position,
					TeamID:   team.ExternalID,
					TeamName: team.Name,
				})
			}

			mu.Lock()
			players = append(players, mapped...)
			mu.Unlock()
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return RosterSyncResult{}, err
	}

	sort.Slice(players, func(i, j int) bool {
		if players[i].TeamID != players[j].TeamID {
			return players[i].TeamID < players[j].TeamID
		}
		return players[i].ID < players[j].ID
	})

	result := RosterSyncResult{
		Teams:       len(teams),
		TeamsFailed: teamsFailed,
		Players:     len(players),
		DryRun:      input.DryRun,
	}

	if input.DryRun {
		return result, nil
	}

	if err := s.repo.ReplaceActive(ctx, players); err != nil {
		return result, fmt.Errorf("replace roster: %w", err)
	}
	result.RowsWritten = len(players)

	s.logger.InfoContext(ctx, "roster synced",
		"teams", result.Teams,
		"teams_failed", result.TeamsFailed,
		"players", result.Players,
	)

	return result, nil
}
