package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, swaggerEnabled bool) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if !swaggerEnabled {
		return
	}

	mux.HandleFunc("GET /openapi.yaml", handler.OpenAPI)
	mux.HandleFunc("GET /docs", handler.SwaggerUI)
	mux.HandleFunc("GET /docs/", handler.SwaggerUI)
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/jobs/roster-sync", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunRosterSyncJob)))
	mux.Handle("POST /v1/internal/jobs/season-stats", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunSeasonStatsJob)))
	mux.Handle("POST /v1/internal/jobs/gamelog-sync", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunGamelogSyncJob)))
	mux.Handle("POST /v1/internal/jobs/snap-counts", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunSnapCountsJob)))
	mux.Handle("POST /v1/internal/jobs/projections", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunProjectionsJob)))
	mux.Handle("POST /v1/internal/jobs/pipeline", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunPipelineJob)))
	mux.Handle("GET /v1/internal/jobs/dashboard", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.GetPipelineDashboard)))
	mux.Handle("GET /v1/internal/destinations", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.ListDestinations)))
}
