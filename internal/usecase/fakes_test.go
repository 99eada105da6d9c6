package usecase

import (
	"context"
	"fmt"

	"github.com/gridironlab/statline/internal/platform/tabular"
)

// fakeStatProvider serves canned provider responses keyed by team or
// player id.
type fakeStatProvider struct {
	teams       []ExternalTeam
	rosters     map[string][]ExternalRosterPlayer
	rosterErr   map[string]error
	seasonStats map[string]*tabular.Record
	statsErr    map[string]error
	gamelogs    map[string][]*tabular.Record
	gamelogErr  map[string]error
}

func (f *fakeStatProvider) ListTeams(context.Context) ([]ExternalTeam, error) {
	return f.teams, nil
}

func (f *fakeStatProvider) ListTeamRoster(_ context.Context, teamID string) ([]ExternalRosterPlayer, error) {
	if err := f.rosterErr[teamID]; err != nil {
		return nil, err
	}
	players, ok := f.rosters[teamID]
	if !ok {
		return nil, fmt.Errorf("unknown team %s", teamID)
	}
	return players, nil
}

func (f *fakeStatProvider) FetchSeasonStats(_ context.Context, playerID string, _ int) (*tabular.Record, bool, error) {
	if err := f.statsErr[playerID]; err != nil {
		return nil, false, err
	}
	record, ok := f.seasonStats[playerID]
	if !ok {
		return nil, false, nil
	}
	return record, true, nil
}

func (f *fakeStatProvider) FetchGameLog(_ context.Context, playerID string, _ int) ([]*tabular.Record, bool, error) {
	if err := f.gamelogErr[playerID]; err != nil {
		return nil, false, err
	}
	records, ok := f.gamelogs[playerID]
	if !ok || len(records) == 0 {
		return nil, false, nil
	}
	return records, true, nil
}

type fakeReferenceLoader struct {
	crosswalk    map[string]string
	crosswalkErr error
	snaps        []SnapCountRow
	snapsErr     error
}

func (f *fakeReferenceLoader) CrosswalkByName(context.Context) (map[string]string, error) {
	if f.crosswalkErr != nil {
		return nil, f.crosswalkErr
	}
	return f.crosswalk, nil
}

func (f *fakeReferenceLoader) SnapCounts(_ context.Context, _ []int) ([]SnapCountRow, error) {
	if f.snapsErr != nil {
		return nil, f.snapsErr
	}
	return f.snaps, nil
}

type fakeTableScraper struct {
	results map[string]ScrapeResult
}

func (f *fakeTableScraper) ScrapeTables(_ context.Context, pageURL string) (ScrapeResult, error) {
	result, ok := f.results[pageURL]
	if !ok {
		return ScrapeResult{}, fmt.Errorf("unknown page %s", pageURL)
	}
	return result, nil
}

func quickFetchSettings() FetchSettings {
	return FetchSettings{MaxWorkers: 2}
}
