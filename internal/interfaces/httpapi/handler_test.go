package httpapi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/pl-lineup-bot/internal/domain/anomaly"
	"github.com/riskibarqy/pl-lineup-bot/internal/domain/positional"
	"github.com/riskibarqy/pl-lineup-bot/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/pl-lineup-bot/internal/platform/logging"
	"github.com/riskibarqy/pl-lineup-bot/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJobToken = "job-token"

type envelope struct {
	APIVersion string         `json:"apiVersion"`
	Data       map[string]any `json:"data"`
	Error      map[string]any `json:"error"`
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	logger := logging.NewNop()
	players := memory.NewPlayerRepository(memory.SeedPlayers())
	fixtures := memory.NewFixtureRepository(memory.SeedFixtures())
	lineups := memory.NewLineupRepository(memory.SeedLineups())
	writer := memory.NewLiveWriter(players, fixtures, lineups)
	thresholds := anomaly.DefaultThresholds()

	anomalies := usecase.NewAnomalyService(lineups, players, thresholds, logger)
	ownership := usecase.NewOwnershipService(lineups, players, thresholds, logger)
	outOfPosition := usecase.NewOutOfPositionService(lineups, players)
	baselines := usecase.NewBaselineService(memory.NewPositionalRepository(), players, positional.DefaultRule(), thresholds, logger)
	snapshots := usecase.NewSnapshotService(memory.NewSnapshotRepository(), nil, logger)
	ingestion := usecase.NewIngestionService(writer, snapshots, nil, logger)
	matchAlerts := usecase.NewMatchAlertService(fixtures, anomalies, ownership, outOfPosition, logger)

	handler := NewHandler(anomalies, ownership, outOfPosition, baselines, snapshots, ingestion, matchAlerts, logger)
	return NewRouter(handler, logger, RouterConfig{InternalJobToken: testJobToken})
}

func serve(t *testing.T, router http.Handler, method, target, body string, internal bool) (int, envelope) {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if internal {
		req.Header.Set("X-Internal-Job-Token", testJobToken)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var out envelope
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &out), "body: %s", rec.Body.String())
	return rec.Code, out
}

func TestHandler_Healthz(t *testing.T) {
	router := newTestRouter(t)

	code, body := serve(t, router, http.MethodGet, "/healthz", "", false)

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body.Data["status"])
}

func TestHandler_MatchReports(t *testing.T) {
	router := newTestRouter(t)

	code, body := serve(t, router, http.MethodGet, "/v1/matches/61/anomalies", "", false)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "flagged", body.Data["status"])
	assert.NotEmpty(t, body.Data["alerts"])

	code, body = serve(t, router, http.MethodGet, "/v1/matches/61/ownership-alerts", "", false)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, body.Data["insufficient_data"])
	assert.Len(t, body.Data["alerts"], 2)

	code, body = serve(t, router, http.MethodGet, "/v1/matches/61/out-of-position", "", false)
	require.Equal(t, http.StatusOK, code)
	lines, _ := body.Data["lines"].([]any)
	assert.Contains(t, lines, "Saka OOP (MID -> FWD): Likely +0.5 fouls, +0.3 shots on target.")
}

func TestHandler_MatchWithoutLineups(t *testing.T) {
	router := newTestRouter(t)

	code, body := serve(t, router, http.MethodGet, "/v1/matches/999/anomalies", "", false)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "no_data", body.Data["status"])
	assert.Equal(t, []any{"No lineup data for this match."}, body.Data["lines"])

	code, body = serve(t, router, http.MethodGet, "/v1/matches/999/ownership-alerts", "", false)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body.Data["insufficient_data"])
	assert.Len(t, body.Data["alerts"], 5)
}

func TestHandler_InvalidMatchID(t *testing.T) {
	router := newTestRouter(t)

	for _, target := range []string{"/v1/matches/abc/anomalies", "/v1/matches/0/out-of-position", "/v1/matches/-4/ownership-alerts"} {
		code, body := serve(t, router, http.MethodGet, target, "", false)
		assert.Equal(t, http.StatusBadRequest, code, target)
		assert.Equal(t, "INVALID_ARGUMENT", body.Error["status"], target)
	}
}

func TestHandler_AttackingBaseline(t *testing.T) {
	router := newTestRouter(t)

	code, body := serve(t, router, http.MethodGet, "/v1/players/430/attacking-baseline", "", false)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body.Data["defined"])
	assert.InDelta(t, 10.0/(610.0/90.0), body.Data["per_90"], 1e-9)

	code, body = serve(t, router, http.MethodGet, "/v1/players/22/attacking-baseline", "", false)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, body.Data["defined"])
	assert.Nil(t, body.Data["per_90"])

	code, _ = serve(t, router, http.MethodGet, "/v1/players/9999/attacking-baseline", "", false)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestHandler_PositionalDocumentRoundTrip(t *testing.T) {
	router := newTestRouter(t)

	doc := `{"content":{"lineup":{"homeTeam":{"starters":[
		{"name":"Bukayo Saka","positionShort":"RW"},
		{"name":{"fullName":"Declan Rice"},"position":"DM"}
	]}}}}`

	code, _ := serve(t, router, http.MethodPost, "/v1/internal/positional-baselines/documents", doc, false)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, body := serve(t, router, http.MethodPost, "/v1/internal/positional-baselines/documents?subtree=content.lineup", doc, true)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 2, body.Data["observations"])

	code, _ = serve(t, router, http.MethodPost, "/v1/internal/positional-baselines/documents", doc, true)
	require.Equal(t, http.StatusOK, code)

	code, body = serve(t, router, http.MethodGet, "/v1/positional-baselines?name=Bukayo+Saka", "", false)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "RW", body.Data["primary_position"])
	assert.EqualValues(t, 2, body.Data["total"])

	code, _ = serve(t, router, http.MethodGet, "/v1/positional-baselines?name=Nobody", "", false)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = serve(t, router, http.MethodPost, "/v1/internal/positional-baselines/documents", "{not json", true)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestHandler_IngestThenReadSnapshot(t *testing.T) {
	router := newTestRouter(t)

	payload := `{
		"season": "2025/26",
		"gameweek": 8,
		"players": [
			{"id": 430, "name": "Haaland", "team_id": 13, "position": "FWD", "minutes": 700, "goals": 11, "assists": 1, "total_points": 82, "ownership_pct": 65.0},
			{"id": 235, "name": "Palmer", "team_id": 7, "position": "mid", "minutes": 690, "goals": 4, "assists": 2, "total_points": 47, "ownership_pct": 22.5}
		],
		"fixtures": [
			{"id": 71, "gameweek": 8, "home_team_id": 7, "away_team_id": 13, "kickoff_at": "2025-10-18T14:00:00Z", "started": true}
		],
		"lineups": [
			{"match_id": 71, "player_id": 430, "minutes": 90, "slot": "ST"},
			{"match_id": 71, "player_id": 235, "minutes": 0}
		]
	}`

	code, body := serve(t, router, http.MethodPost, "/v1/internal/ingestion/gameweek", payload, true)
	require.Equal(t, http.StatusOK, code, body.Error)
	assert.EqualValues(t, 2, body.Data["players"])

	code, body = serve(t, router, http.MethodGet, "/v1/snapshots/2025%2F26/8", "", false)
	require.Equal(t, http.StatusOK, code, body.Error)
	assert.Equal(t, "2025/26", body.Data["season"])
	assert.EqualValues(t, 2, body.Data["lineups"])
}

func TestHandler_IngestRejectsInvalidPayload(t *testing.T) {
	router := newTestRouter(t)

	cases := map[string]string{
		"empty body":       ``,
		"no players":       `{"season":"2025/26","gameweek":8,"players":[]}`,
		"missing season":   `{"gameweek":8,"players":[{"id":1,"name":"Raya","position":"GK"}]}`,
		"bad position":     `{"season":"2025/26","gameweek":8,"players":[{"id":1,"name":"Raya","position":"Keeper"}]}`,
		"ownership > 100":  `{"season":"2025/26","gameweek":8,"players":[{"id":1,"name":"Raya","position":"GK","ownership_pct":101}]}`,
		"negative minutes": `{"season":"2025/26","gameweek":8,"players":[{"id":1,"name":"Raya","position":"GK","minutes":-1}]}`,
	}
	for name, payload := range cases {
		code, _ := serve(t, router, http.MethodPost, "/v1/internal/ingestion/gameweek", payload, true)
		assert.Equal(t, http.StatusBadRequest, code, name)
	}
}

func TestHandler_MatchAlertsJob(t *testing.T) {
	router := newTestRouter(t)

	code, body := serve(t, router, http.MethodPost, "/v1/internal/jobs/match-alerts",
		`{"season":"2025/26","gameweek":7,"match_id":61}`, true)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body.Data["flagged"])
	assert.Contains(t, body.Data, "out_of_position")

	code, _ = serve(t, router, http.MethodPost, "/v1/internal/jobs/match-alerts", `{"season":"2025/26"}`, true)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestHandler_SnapshotNotFoundAndBadWeek(t *testing.T) {
	router := newTestRouter(t)

	code, _ := serve(t, router, http.MethodGet, "/v1/snapshots/2025%2F26/3", "", false)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = serve(t, router, http.MethodGet, "/v1/snapshots/2025%2F26/three", "", false)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestHandler_MatchAlertsJob_UnknownFixture(t *testing.T) {
	router := newTestRouter(t)

	code, body := serve(t, router, http.MethodPost, "/v1/internal/jobs/match-alerts",
		`{"season":"2025/26","gameweek":7,"match_id":999}`, true)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "NOT_FOUND", body.Error["status"])
}

func TestHandler_GameweekMatchAlerts(t *testing.T) {
	router := newTestRouter(t)

	code, body := serve(t, router, http.MethodGet, "/v1/gameweeks/7/match-alerts", "", false)
	require.Equal(t, http.StatusOK, code, body.Error)
	matches, _ := body.Data["matches"].([]any)
	require.Len(t, matches, 1)
	first, _ := matches[0].(map[string]any)
	fixtureBody, _ := first["fixture"].(map[string]any)
	assert.Equal(t, "Arsenal", fixtureBody["home_team_name"])
	assert.EqualValues(t, 1, body.Data["flagged_matches"])

	code, body = serve(t, router, http.MethodGet, "/v1/gameweeks/8/match-alerts", "", false)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, body.Data["matches"])

	code, _ = serve(t, router, http.MethodGet, "/v1/gameweeks/39/match-alerts", "", false)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestHandler_IngestAcceptsElementType(t *testing.T) {
	router := newTestRouter(t)

	payload := `{"season":"2025/26","gameweek":8,"players":[
		{"id":1,"name":"Raya","element_type":1},
		{"id":2,"name":"Saliba","position":"def","element_type":3}
	]}`
	code, body := serve(t, router, http.MethodPost, "/v1/internal/ingestion/gameweek", payload, true)
	require.Equal(t, http.StatusOK, code, body.Error)

	code, _ = serve(t, router, http.MethodPost, "/v1/internal/ingestion/gameweek",
		`{"season":"2025/26","gameweek":8,"players":[{"id":1,"name":"Raya","element_type":5}]}`, true)
	assert.Equal(t, http.StatusBadRequest, code)
}
