package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	sonic "github.com/bytedance/sonic"

	"github.com/gridironlab/statline/internal/usecase"
)

type rosterSyncRequest struct {
	MaxWorkers int  `json:"max_workers" validate:"omitempty,min=1,max=64"`
	DryRun     bool `json:"dry_run"`
}

type seasonStatsRequest struct {
	Season     int  `json:"season" validate:"required,min=2000,max=2100"`
	MaxWorkers int  `json:"max_workers" validate:"omitempty,min=1,max=64"`
	DryRun     bool `json:"dry_run"`
}

type gamelogRequest struct {
	Season     int   `json:"season" validate:"required,min=2000,max=2100"`
	Weeks      []int `json:"weeks" validate:"omitempty,dive,min=1,max=25"`
	MaxWorkers int   `json:"max_workers" validate:"omitempty,min=1,max=64"`
	DryRun     bool  `json:"dry_run"`
}

type snapCountsRequest struct {
	Seasons []int `json:"seasons" validate:"required,min=1,dive,min=2012,max=2100"`
	DryRun  bool  `json:"dry_run"`
}

type projectionsRequest struct {
	URLs   []string `json:"urls" validate:"omitempty,dive,url"`
	DryRun bool     `json:"dry_run"`
}

type pipelineRequest struct {
	Season         int      `json:"season" validate:"required,min=2000,max=2100"`
	Weeks          []int    `json:"weeks" validate:"omitempty,dive,min=1,max=25"`
	SnapSeasons    []int    `json:"snap_seasons" validate:"omitempty,dive,min=2012,max=2100"`
	ProjectionURLs []string `json:"projection_urls" validate:"omitempty,dive,url"`
	MaxWorkers     int      `json:"max_workers" validate:"omitempty,min=1,max=64"`
	DryRun         bool     `json:"dry_run"`
}

// decodeJobRequest tolerates an empty body so jobs can run with their
// defaults from a bare POST.
func decodeJobRequest[T any](r *http.Request) (T, error) {
	var req T
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return req, nil
		}
		var zero T
		return zero, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}

	return req, nil
}

func (h *Handler) RunRosterSyncJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunRosterSyncJob")
	defer span.End()

	if h.pipeline == nil {
		writeError(ctx, w, fmt.Errorf("%w: pipeline is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	req, err := decodeJobRequest[rosterSyncRequest](r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.pipeline.RunRosterSync(ctx, usecase.RosterSyncInput{
		MaxWorkers: req.MaxWorkers,
		DryRun:     req.DryRun,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "roster sync job failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) RunSeasonStatsJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunSeasonStatsJob")
	defer span.End()

	if h.pipeline == nil {
		writeError(ctx, w, fmt.Errorf("%w: pipeline is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	req, err := decodeJobRequest[seasonStatsRequest](r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.pipeline.RunSeasonStats(ctx, usecase.SeasonStatsInput{
		Season:     req.Season,
		MaxWorkers: req.MaxWorkers,
		DryRun:     req.DryRun,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "season stats job failed", "season", req.Season, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) RunGamelogSyncJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunGamelogSyncJob")
	defer span.End()

	if h.pipeline == nil {
		writeError(ctx, w, fmt.Errorf("%w: pipeline is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	req, err := decodeJobRequest[gamelogRequest](r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.pipeline.RunGamelog(ctx, usecase.GamelogInput{
		Season:     req.Season,
		Weeks:      req.Weeks,
		MaxWorkers: req.MaxWorkers,
		DryRun:     req.DryRun,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "gamelog sync job failed", "season", req.Season, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) RunSnapCountsJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunSnapCountsJob")
	defer span.End()

	if h.pipeline == nil {
		writeError(ctx, w, fmt.Errorf("%w: pipeline is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	req, err := decodeJobRequest[snapCountsRequest](r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.pipeline.RunSnapCounts(ctx, usecase.SnapCountInput{
		Seasons: req.Seasons,
		DryRun:  req.DryRun,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "snap counts job failed", "seasons", req.Seasons, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) RunProjectionsJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunProjectionsJob")
	defer span.End()

	if h.pipeline == nil {
		writeError(ctx, w, fmt.Errorf("%w: pipeline is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	req, err := decodeJobRequest[projectionsRequest](r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.pipeline.RunProjections(ctx, usecase.ProjectionsInput{
		URLs:   req.URLs,
		DryRun: req.DryRun,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "projections job failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) RunPipelineJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunPipelineJob")
	defer span.End()

	if h.pipeline == nil {
		writeError(ctx, w, fmt.Errorf("%w: pipeline is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	req, err := decodeJobRequest[pipelineRequest](r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.pipeline.RunPipeline(ctx, usecase.PipelineInput{
		Season:         req.Season,
		Weeks:          req.Weeks,
		SnapSeasons:    req.SnapSeasons,
		ProjectionURLs: req.ProjectionURLs,
		MaxWorkers:     req.MaxWorkers,
		DryRun:         req.DryRun,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "pipeline job failed", "season", req.Season, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}
