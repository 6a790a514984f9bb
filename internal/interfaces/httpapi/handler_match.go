package httpapi

import (
	"fmt"
	"net/http"

	"github.com/riskibarqy/pl-lineup-bot/internal/usecase"
)

func (h *Handler) GetMatchAnomalies(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMatchAnomalies")
	defer span.End()

	matchID, err := pathInt64(r, "matchID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	report, err := h.anomalyService.Detect(ctx, matchID)
	if err != nil {
		h.logger.WarnContext(ctx, "detect attacking anomalies failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, anomalyReportToDTO(report))
}

func (h *Handler) GetMatchOwnershipAlerts(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMatchOwnershipAlerts")
	defer span.End()

	matchID, err := pathInt64(r, "matchID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	report, err := h.ownershipService.Detect(ctx, matchID)
	if err != nil {
		h.logger.WarnContext(ctx, "detect benched ownership failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, ownershipReportToDTO(report))
}

func (h *Handler) GetMatchOutOfPosition(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMatchOutOfPosition")
	defer span.End()

	matchID, err := pathInt64(r, "matchID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	report, err := h.outOfPositionService.Detect(ctx, matchID)
	if err != nil {
		h.logger.WarnContext(ctx, "detect out of position failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, outOfPositionReportToDTO(report))
}

// RunMatchAlertsJob is the queue callback enqueued once per started fixture
// after a gameweek is ingested.
func (h *Handler) RunMatchAlertsJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunMatchAlertsJob")
	defer span.End()

	if h.matchAlertService == nil {
		writeError(ctx, w, fmt.Errorf("%w: match alert service is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	var req matchAlertJobRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	summary, err := h.matchAlertService.Run(ctx, req.MatchID)
	if err != nil {
		h.logger.WarnContext(ctx, "run match alerts job failed",
			"season", req.Season,
			"gameweek", req.Gameweek,
			"match_id", req.MatchID,
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchAlertSummaryToDTO(summary))
}

// GetGameweekMatchAlerts runs the detectors over every started fixture of a week.
func (h *Handler) GetGameweekMatchAlerts(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetGameweekMatchAlerts")
	defer span.End()

	week, err := pathInt64(r, "gameweek")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	summary, err := h.matchAlertService.RunGameweek(ctx, int(week))
	if err != nil {
		h.logger.WarnContext(ctx, "run gameweek match alerts failed", "gameweek", week, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, gameweekAlertSummaryToDTO(summary))
}
