package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/riskibarqy/pl-lineup-bot/internal/usecase"
)

func (h *Handler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetSnapshot")
	defer span.End()

	season := strings.TrimSpace(r.PathValue("season"))
	rawWeek := strings.TrimSpace(r.PathValue("gameweek"))
	week, err := strconv.Atoi(rawWeek)
	if err != nil {
		writeError(ctx, w, fmt.Errorf("%w: gameweek must be an integer, got %q", usecase.ErrInvalidInput, rawWeek))
		return
	}

	item, err := h.snapshotService.Get(ctx, season, week)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, snapshotToDTO(item))
}

func (h *Handler) IngestGameweek(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.IngestGameweek")
	defer span.End()

	if h.ingestionService == nil {
		writeError(ctx, w, fmt.Errorf("%w: ingestion service is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	var req ingestGameweekRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	input, err := req.toInput()
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.ingestionService.ApplyGameweek(ctx, input)
	if err != nil {
		h.logger.WarnContext(ctx, "ingest gameweek failed",
			"season", req.Season,
			"gameweek", req.Gameweek,
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}
