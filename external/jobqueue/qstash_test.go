package jobqueue

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/pl-lineup-bot/internal/platform/logging"
	"github.com/riskibarqy/pl-lineup-bot/internal/platform/resilience"
	"github.com/riskibarqy/pl-lineup-bot/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ usecase.JobQueue = (*Publisher)(nil)

func TestPublisher_Enqueue(t *testing.T) {
	var (
		gotPath    string
		gotHeaders http.Header
		gotBody    string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotHeaders = r.Header.Clone()
		raw, _ := io.ReadAll(r.Body)
		gotBody = string(raw)
		w.WriteHeader(http.StatusCreated)
	}))
	t.Cleanup(server.Close)

	publisher := NewPublisher(Config{
		BaseURL:          server.URL,
		Token:            "qstash-token",
		TargetBaseURL:    "https://bot.example.com/",
		Retries:          3,
		InternalJobToken: "job-secret",
	}, logging.NewNop())

	job := usecase.MatchAlertJob{Season: "2025/26", Gameweek: 7, MatchID: 61}
	err := publisher.Enqueue(context.Background(), usecase.MatchAlertsJobPath, job, 90*time.Second, job.DeduplicationID())
	require.NoError(t, err)

	assert.Equal(t, "/v2/publish/https://bot.example.com/v1/internal/jobs/match-alerts", gotPath)
	assert.Equal(t, "Bearer qstash-token", gotHeaders.Get("Authorization"))
	assert.Equal(t, "3", gotHeaders.Get("Upstash-Retries"))
	assert.Equal(t, "90s", gotHeaders.Get("Upstash-Delay"))
	assert.Equal(t, "match-alerts-2025-26-7-61", gotHeaders.Get("Upstash-Deduplication-Id"))
	assert.Equal(t, "job-secret", gotHeaders.Get(forwardTokenHeader))
	assert.JSONEq(t, `{"season":"2025/26","gameweek":7,"match_id":61}`, gotBody)
}

func TestPublisher_Enqueue_RejectsBadConfig(t *testing.T) {
	publisher := NewPublisher(Config{BaseURL: "ftp://qstash", TargetBaseURL: "https://bot.example.com"}, logging.NewNop())
	err := publisher.Enqueue(context.Background(), "/v1/internal/jobs/match-alerts", nil, 0, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "QSTASH_BASE_URL")

	err = publisher.Enqueue(context.Background(), "  ", nil, 0, "")
	require.Error(t, err)
}

func TestPublisher_BreakerOpensOnServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(server.Close)

	publisher := NewPublisher(Config{
		BaseURL:       server.URL,
		TargetBaseURL: "https://bot.example.com",
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 2,
			OpenTimeout:      time.Minute,
			HalfOpenMaxReq:   1,
		},
	}, logging.NewNop())

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		err := publisher.Enqueue(ctx, "/jobs", nil, 0, "")
		require.Error(t, err)
		assert.True(t, errors.Is(err, errQStashTransient))
	}

	err := publisher.Enqueue(ctx, "/jobs", nil, 0, "")
	assert.ErrorIs(t, err, resilience.ErrCircuitOpen)
	assert.EqualValues(t, 2, calls.Load())
}

func TestPublisher_ClientErrorsDoNotTripBreaker(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("invalid destination"))
	}))
	t.Cleanup(server.Close)

	publisher := NewPublisher(Config{
		BaseURL:        server.URL,
		TargetBaseURL:  "https://bot.example.com",
		CircuitBreaker: resilience.CircuitBreakerConfig{Enabled: true, FailureThreshold: 1},
	}, logging.NewNop())

	for i := 0; i < 3; i++ {
		err := publisher.Enqueue(context.Background(), "/jobs", nil, 0, "")
		require.Error(t, err)
		assert.True(t, strings.Contains(err.Error(), "invalid destination"))
		assert.False(t, errors.Is(err, errQStashTransient))
	}
}

func TestCurlPreview_RedactsSecrets(t *testing.T) {
	preview := curlPreview(publishRequest{
		publishURL: "https://qstash.upstash.io/v2/publish/https://bot.example.com/jobs",
		body:       []byte(`{"name":"O'Brien"}`),
		delay:      "0s",
		dedupID:    "match-alerts-2025-26-7-61",
	}, 0, true)

	assert.Contains(t, preview, "Authorization: Bearer ***")
	assert.Contains(t, preview, forwardTokenHeader+": ***")
	assert.Contains(t, preview, `'{"name":"O'"'"'Brien"}'`)
	assert.NotContains(t, preview, "Upstash-Delay")
}
