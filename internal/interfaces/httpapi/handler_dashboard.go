package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gridironlab/statline/internal/usecase"
)

func (h *Handler) GetPipelineDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPipelineDashboard")
	defer span.End()

	if h.dashboard == nil {
		writeError(ctx, w, fmt.Errorf("%w: dashboard is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	limit := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 500 {
			writeError(ctx, w, fmt.Errorf("%w: limit must be between 1 and 500", usecase.ErrInvalidInput))
			return
		}
		limit = parsed
	}

	dashboard, err := h.dashboard.Dashboard(ctx, limit)
	if err != nil {
		h.logger.WarnContext(ctx, "pipeline dashboard failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, dashboard)
}

func (h *Handler) ListDestinations(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListDestinations")
	defer span.End()

	if h.store == nil {
		writeError(ctx, w, fmt.Errorf("%w: stat store is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	destinations, err := h.store.ListDestinations(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "list destinations failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]any{"destinations": destinations})
}
