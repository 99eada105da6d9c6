package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	sonic "github.com/bytedance/sonic"

	"github.com/gridironlab/statline/internal/infrastructure/repository/memory"
	"github.com/gridironlab/statline/internal/platform/id"
	"github.com/gridironlab/statline/internal/platform/tabular"
	"github.com/gridironlab/statline/internal/usecase"
)

const testJobToken = "test-job-token"

type stubProvider struct{}

func (stubProvider) ListTeams(context.Context) ([]usecase.ExternalTeam, error) {
	return []usecase.ExternalTeam{{ExternalID: "12", Name: "Kansas City Chiefs", Abbreviation: "KC"}}, nil
}

func (stubProvider) ListTeamRoster(context.Context, string) ([]usecase.ExternalRosterPlayer, error) {
	return []usecase.ExternalRosterPlayer{{ExternalID: "3139477", Name: "Patrick Mahomes", Position: "QB"}}, nil
}

func (stubProvider) FetchSeasonStats(context.Context, string, int) (*tabular.Record, bool, error) {
	return nil, false, nil
}

func (stubProvider) FetchGameLog(context.Context, string, int) ([]*tabular.Record, bool, error) {
	return nil, false, nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	rosterRepo := memory.NewRosterRepository(nil)
	store := memory.NewStatTableRepository()
	runs := memory.NewIngestRunRepository()
	settings := usecase.FetchSettings{MaxWorkers: 2}

	pipeline := usecase.NewPipelineService(
		usecase.NewRosterSyncService(stubProvider{}, rosterRepo, nil),
		usecase.NewSeasonStatsService(stubProvider{}, rosterRepo, store, settings, nil),
		usecase.NewGamelogService(stubProvider{}, nil, rosterRepo, store, settings, nil),
		usecase.NewSnapCountService(nil, store, nil),
		usecase.NewProjectionsService(nil, store, nil, nil),
		runs,
		id.NewRandomGenerator(),
		nil,
	)
	dashboard := usecase.NewPipelineDashboardService(runs, nil)
	handler := NewHandler(pipeline, dashboard, store, nil)

	return NewRouter(handler, nil, false, nil, testJobToken)
}

func TestRunRosterSyncJob_Success(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/internal/jobs/roster-sync", strings.NewReader(`{"max_workers":2}`))
	req.Header.Set("X-Internal-Job-Token", testJobToken)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}
	data, ok := body["data"].(map[string]any)
	if !ok {
		t.Fatalf("expected data object, got %v", body)
	}
	if got, _ := data["players"].(float64); got != 1 {
		t.Fatalf("expected 1 synced player, got %v", data["players"])
	}
}

func TestRunSeasonStatsJob_RejectsMissingSeason(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/internal/jobs/season-stats", strings.NewReader(`{}`))
	req.Header.Set("X-Internal-Job-Token", testJobToken)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRunSeasonStatsJob_RejectsUnknownFields(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/internal/jobs/season-stats", strings.NewReader(`{"season":2025,"seasn":1}`))
	req.Header.Set("X-Internal-Job-Token", testJobToken)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestInternalJobRoutes_RequireToken(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/internal/jobs/roster-sync", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}
}

func TestGetPipelineDashboard_EmptyLedger(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/internal/jobs/dashboard", nil)
	req.Header.Set("X-Internal-Job-Token", testJobToken)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}
	data, ok := body["data"].(map[string]any)
	if !ok {
		t.Fatalf("expected data object, got %v", body)
	}
	if _, ok := data["jobs"]; !ok {
		t.Fatalf("expected jobs key in dashboard payload")
	}
}
