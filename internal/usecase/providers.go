package usecase

import (
	"context"

	"github.com/gridironlab/statline/internal/platform/tabular"
)

// StatProvider is the remote stats source consumed by the sync jobs.
// Fetch methods return ok=false when the source has no data for the
// player, which is not an error.
type StatProvider interface {
	ListTeams(ctx context.Context) ([]ExternalTeam, error)
	ListTeamRoster(ctx context.Context, teamID string) ([]ExternalRosterPlayer, error)
	FetchSeasonStats(ctx context.Context, playerID string, season int) (*tabular.Record, bool, error)
	FetchGameLog(ctx context.Context, playerID string, season int) ([]*tabular.Record, bool, error)
}

type ExternalTeam struct {
	ExternalID   string
	Name         string
	Abbreviation string
}

type ExternalRosterPlayer struct {
	ExternalID string
	Name       string
	Position   string
}

// ReferenceLoader serves slow-moving reference data: the id crosswalk
// between source player ids and normalized names, and weekly snap
// counts. Implementations cache aggressively.
type ReferenceLoader interface {
	CrosswalkByName(ctx context.Context) (map[string]string, error)
	SnapCounts(ctx context.Context, seasons []int) ([]SnapCountRow, error)
}

type SnapCountRow struct {
	Season         int
	GameWeek       int
	PlayerName     string
	Team           string
	Position       string
	OffenseSnaps   int
	DefenseSnaps   int
	OffenseSnapPct float64
	DefenseSnapPct float64
}

// TableScraper pulls HTML tables off a page. A failed scrape is a
// result with Success=false, not an error; errors are reserved for
// malformed input.
type TableScraper interface {
	ScrapeTables(ctx context.Context, pageURL string) (ScrapeResult, error)
}

type RawTable struct {
	Header []string
	Rows   [][]string
}

type ScrapeResult struct {
	URL         string
	Success     bool
	Tables      []RawTable
	TablesFound int
	Error       string
}
