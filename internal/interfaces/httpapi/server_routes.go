package httpapi

import (
	"net/http"

	"github.com/riskibarqy/pl-lineup-bot/internal/usecase"
)

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerMatchRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/matches/{matchID}/anomalies", handler.GetMatchAnomalies)
	mux.HandleFunc("GET /v1/matches/{matchID}/ownership-alerts", handler.GetMatchOwnershipAlerts)
	mux.HandleFunc("GET /v1/matches/{matchID}/out-of-position", handler.GetMatchOutOfPosition)
	mux.HandleFunc("GET /v1/gameweeks/{gameweek}/match-alerts", handler.GetGameweekMatchAlerts)
}

func registerBaselineRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/players/{playerID}/attacking-baseline", handler.GetAttackingBaseline)
	mux.HandleFunc("GET /v1/positional-baselines", handler.GetPositionalBaseline)
	mux.HandleFunc("GET /v1/snapshots/{season}/{gameweek}", handler.GetSnapshot)
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/positional-baselines/documents", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RecordPositionalDocument)))
	mux.Handle("POST /v1/internal/ingestion/gameweek", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.IngestGameweek)))
	mux.Handle("POST "+usecase.MatchAlertsJobPath, RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunMatchAlertsJob)))
}
