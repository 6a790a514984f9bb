package fotmob

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/bytedance/sonic/ast"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/pl-lineup-bot/internal/platform/logging"
	"github.com/riskibarqy/pl-lineup-bot/internal/platform/resilience"
	"github.com/riskibarqy/pl-lineup-bot/internal/usecase"
	"github.com/valyala/fasthttp"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL     = "https://www.fotmob.com/api"
	defaultUserAgent   = "Mozilla/5.0"
	defaultTimeout     = 15 * time.Second
	defaultRetryDelay  = 500 * time.Millisecond
	maxResponseBytes   = 8 << 20
	matchIDSearchDepth = 32
)

var errFotMobTransient = crerr.New("fotmob transient failure")

type ClientConfig struct {
	HTTPClient        *fasthttp.Client
	BaseURL           string
	UserAgent         string
	Timeout           time.Duration
	MaxRetries        int
	RetryDelay        time.Duration
	RequestsPerSecond float64
	Logger            *logging.Logger
	CircuitBreaker    resilience.CircuitBreakerConfig
}

// Client reads league fixtures and match documents from the public FotMob API.
type Client struct {
	httpClient *fasthttp.Client
	baseURL    string
	userAgent  string
	timeout    time.Duration
	maxRetries int
	retryDelay time.Duration
	limiter    *rate.Limiter
	logger     *logging.Logger
	breaker    *resilience.CircuitBreaker
	flight     resilience.SingleFlight[[]byte]
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &fasthttp.Client{
			Name:                "pl-lineup-bot",
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxResponseBodySize: maxResponseBytes,
		}
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	retryDelay := cfg.RetryDelay
	if retryDelay <= 0 {
		retryDelay = defaultRetryDelay
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		userAgent:  userAgent,
		timeout:    timeout,
		maxRetries: max(cfg.MaxRetries, 0),
		retryDelay: retryDelay,
		limiter:    rate.NewLimiter(limit, 1),
		logger:     logger,
		breaker:    resilience.NewCircuitBreaker(cfg.CircuitBreaker),
	}
}

// ListMatchIDs returns the matches a league lists for one day, in document order.
func (c *Client) ListMatchIDs(ctx context.Context, leagueID int64, day time.Time) ([]int64, error) {
	if leagueID <= 0 {
		return nil, crerr.Newf("league id must be greater than zero, got %d", leagueID)
	}

	query := url.Values{}
	query.Set("id", strconv.FormatInt(leagueID, 10))
	query.Set("date", day.Format("20060102"))

	raw, err := c.getRaw(ctx, "/leagues", query)
	if err != nil {
		return nil, fmt.Errorf("fetch league_id=%d date=%s: %w", leagueID, day.Format("2006-01-02"), err)
	}
	root, err := sonic.Get(raw)
	if err != nil {
		return nil, crerr.Wrap(err, "decode fotmob payload")
	}
	ids, err := collectMatchIDs(&root)
	if err != nil {
		return nil, crerr.Wrap(err, "decode fotmob payload")
	}
	return ids, nil
}

func (c *Client) FetchMatchDetails(ctx context.Context, matchID int64) (map[string]any, error) {
	if matchID <= 0 {
		return nil, crerr.Newf("match id must be greater than zero, got %d", matchID)
	}

	query := url.Values{}
	query.Set("matchId", strconv.FormatInt(matchID, 10))

	var doc map[string]any
	if err := c.getJSON(ctx, "/matchDetails", query, &doc); err != nil {
		return nil, fmt.Errorf("fetch match details match_id=%d: %w", matchID, err)
	}
	if doc == nil {
		doc = map[string]any{}
	}
	return doc, nil
}

func (c *Client) getRaw(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if err := c.breaker.Allow(); err != nil {
		c.logger.WarnContext(ctx, "fotmob circuit breaker rejected request", "state", c.breaker.State())
		return nil, fmt.Errorf("%w: match data provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
	}

	fullURL := c.baseURL + path + "?" + query.Encode()
	raw, err, _ := c.flight.Do(fullURL, func() ([]byte, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		c.breaker.Record(reqErr, isFotMobCircuitFailure)
		return raw, reqErr
	})
	return raw, err
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, target any) error {
	raw, err := c.getRaw(ctx, path, query)
	if err != nil {
		return err
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		return crerr.Wrap(err, "decode fotmob payload")
	}
	return nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			if err := sleepContext(ctx, time.Duration(attempt)*c.retryDelay); err != nil {
				return nil, err
			}
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, crerr.Wrap(err, "rate limit wait")
		}

		raw, status, err := c.do(ctx, fullURL)
		switch {
		case err != nil:
			lastErr = fmt.Errorf("%w: send request: %v", errFotMobTransient, err)
		case status >= 200 && status < 300:
			return raw, nil
		case isRetryableStatus(status):
			lastErr = fmt.Errorf("%w: provider status=%d body=%s", errFotMobTransient, status, abbreviateBody(raw))
		default:
			return nil, crerr.Newf("provider status=%d body=%s", status, abbreviateBody(raw))
		}

		c.logger.WarnContext(ctx, "fotmob request failed",
			"url", fullURL,
			"attempt", attempt+1,
			"max_attempts", c.maxRetries+1,
			"error", lastErr,
		)
	}
	return nil, lastErr
}

func (c *Client) do(ctx context.Context, fullURL string) ([]byte, int, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(fullURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.SetUserAgent(c.userAgent)
	req.Header.Set("Accept", "application/json")

	deadline := time.Now().Add(c.timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	if err := c.httpClient.DoDeadline(req, resp, deadline); err != nil {
		return nil, 0, err
	}

	body := append([]byte(nil), resp.Body()...)
	return body, resp.StatusCode(), nil
}

// collectMatchIDs finds every object carrying id, home and away keys, in
// document order. Match objects are still descended; duplicates keep their
// first position.
func collectMatchIDs(root *ast.Node) ([]int64, error) {
	seen := make(map[int64]struct{}, 32)
	out := make([]int64, 0, 32)

	var walk func(*ast.Node, int) error
	walk = func(node *ast.Node, depth int) error {
		if depth > matchIDSearchDepth {
			return nil
		}
		switch node.TypeSafe() {
		case ast.V_OBJECT:
			if id, ok := nodeMatchID(node); ok {
				if _, dup := seen[id]; !dup {
					seen[id] = struct{}{}
					out = append(out, id)
				}
			}
		case ast.V_ARRAY:
		default:
			return nil
		}

		var walkErr error
		err := node.ForEach(func(_ ast.Sequence, child *ast.Node) bool {
			walkErr = walk(child, depth+1)
			return walkErr == nil
		})
		if err != nil {
			return err
		}
		return walkErr
	}

	if err := walk(root, 0); err != nil {
		return nil, err
	}
	return out, nil
}

func nodeMatchID(node *ast.Node) (int64, bool) {
	if !node.Get("home").Exists() || !node.Get("away").Exists() {
		return 0, false
	}
	idNode := node.Get("id")
	switch idNode.TypeSafe() {
	case ast.V_NUMBER:
		v, err := idNode.Float64()
		if err != nil {
			return 0, false
		}
		return parseMatchID(v)
	case ast.V_STRING:
		v, err := idNode.String()
		if err != nil {
			return 0, false
		}
		return parseMatchID(v)
	default:
		return 0, false
	}
}

func parseMatchID(raw any) (int64, bool) {
	switch v := raw.(type) {
	case float64:
		if v <= 0 || v != float64(int64(v)) {
			return 0, false
		}
		return int64(v), true
	case int64:
		return v, v > 0
	case string:
		id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		return id, err == nil && id > 0
	default:
		return 0, false
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func isFotMobCircuitFailure(err error) bool {
	return stderrors.Is(err, errFotMobTransient)
}

func isRetryableStatus(status int) bool {
	return status == fasthttp.StatusRequestTimeout ||
		status == fasthttp.StatusTooManyRequests ||
		status >= fasthttp.StatusInternalServerError
}

func abbreviateBody(raw []byte) string {
	const limit = 256
	text := strings.TrimSpace(string(raw))
	if len(text) <= limit {
		return text
	}
	return text[:limit] + "..."
}
