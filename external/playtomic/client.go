package playtomic

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"golang.org/x/time/rate"

	"github.com/mkm418/padel-intelligence/internal/domain/match"
	"github.com/mkm418/padel-intelligence/internal/platform/cache"
	"github.com/mkm418/padel-intelligence/internal/platform/logging"
	"github.com/mkm418/padel-intelligence/internal/platform/resilience"
	"github.com/mkm418/padel-intelligence/internal/usecase"
)

const (
	defaultBaseURL        = "https://api.playtomic.io/v1"
	defaultSportID        = "PADEL"
	defaultSort           = "start_date,ASC"
	defaultTenantCacheTTL = 6 * time.Hour
	maxResponseBytes      = 6 << 20
)

var errPlaytomicTransient = crerr.New("playtomic transient failure")

type ClientConfig struct {
	HTTPClient        *http.Client
	BaseURL           string
	Token             string
	Timeout           time.Duration
	MaxRetries        int
	RequestsPerSecond float64
	TenantCacheTTL    time.Duration
	Logger            *logging.Logger
	CircuitBreaker    resilience.CircuitBreakerConfig
}

// Client reads matches from the Playtomic public API. It implements
// match.Source.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	token        string
	maxRetries   int
	retryBackoff time.Duration
	limiter      *rate.Limiter
	logger       *logging.Logger
	breaker      *resilience.CircuitBreaker
	flight       resilience.SingleFlight
	tenants      *cache.Store[string]
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 10 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	tenantTTL := cfg.TenantCacheTTL
	if tenantTTL <= 0 {
		tenantTTL = defaultTenantCacheTTL
	}

	breaker := resilience.NewCircuitBreakerFromConfig(cfg.CircuitBreaker, func(from, to resilience.CircuitState) {
		logger.Warn("playtomic circuit breaker state changed", "from", from, "to", to)
	})

	return &Client{
		httpClient:   httpClient,
		baseURL:      baseURL,
		token:        strings.TrimSpace(cfg.Token),
		maxRetries:   maxInt(cfg.MaxRetries, 0),
		retryBackoff: time.Second,
		limiter:      rate.NewLimiter(limit, 1),
		logger:       logger,
		breaker:      breaker,
		tenants:      cache.NewStore[string](tenantTTL),
	}
}

// FetchPage returns one page of matches for a tenant, oldest first. Records
// that arrive without a tenant name get it from the cached tenant lookup.
func (c *Client) FetchPage(ctx context.Context, req match.PageRequest) ([]match.RawMatch, error) {
	tenantID := strings.TrimSpace(req.TenantID)
	if tenantID == "" {
		return nil, fmt.Errorf("%w: tenant id is required", usecase.ErrInvalidInput)
	}
	if req.Page < 0 || req.Size <= 0 {
		return nil, fmt.Errorf("%w: invalid page=%d size=%d", usecase.ErrInvalidInput, req.Page, req.Size)
	}

	query := map[string]string{
		"sport_id":  defaultSportID,
		"tenant_id": tenantID,
		"page":      strconv.Itoa(req.Page),
		"size":      strconv.Itoa(req.Size),
		"sort":      defaultSort,
	}
	if since := strings.TrimSpace(req.Since); since != "" {
		query["from_start_date"] = since
	}

	raw, err := c.get(ctx, "/matches", query)
	if err != nil {
		return nil, fmt.Errorf("fetch matches tenant_id=%s page=%d: %w", tenantID, req.Page, err)
	}

	items, err := match.DecodeRawMatches(raw)
	if err != nil {
		return nil, fmt.Errorf("decode matches tenant_id=%s page=%d: %w", tenantID, req.Page, err)
	}

	for i := range items {
		c.fillTenant(ctx, &items[i], tenantID)
	}
	return items, nil
}

func (c *Client) fillTenant(ctx context.Context, item *match.RawMatch, fallbackID string) {
	if item.Tenant == nil {
		item.Tenant = &match.RawTenant{TenantID: fallbackID}
	}
	if strings.TrimSpace(item.Tenant.TenantName) != "" {
		return
	}
	tenantID := firstNonEmpty(item.Tenant.TenantID, fallbackID)
	name, err := c.TenantName(ctx, tenantID)
	if err != nil {
		c.logger.WarnContext(ctx, "tenant lookup failed, venue left empty",
			"tenant_id", tenantID,
			"match_id", item.MatchID,
			"error", err,
		)
		return
	}
	item.Tenant.TenantID = tenantID
	item.Tenant.TenantName = name
}

// TenantName resolves a tenant id to its club name. Successful lookups are
// cached for the configured TTL; failures are not.
func (c *Client) TenantName(ctx context.Context, tenantID string) (string, error) {
	tenantID = strings.TrimSpace(tenantID)
	if tenantID == "" {
		return "", fmt.Errorf("%w: tenant id is required", usecase.ErrInvalidInput)
	}

	return c.tenants.GetOrLoad(ctx, tenantID, func(ctx context.Context) (string, error) {
		raw, err := c.get(ctx, "/tenants/"+url.PathEscape(tenantID), nil)
		if err != nil {
			return "", fmt.Errorf("fetch tenant tenant_id=%s: %w", tenantID, err)
		}
		var payload tenantPayload
		if err := sonic.Unmarshal(raw, &payload); err != nil {
			return "", fmt.Errorf("decode tenant payload: %w", err)
		}
		name := strings.TrimSpace(payload.TenantName)
		if name == "" {
			return "", fmt.Errorf("%w: tenant %s has no name", usecase.ErrNotFound, tenantID)
		}
		return name, nil
	})
}

type tenantPayload struct {
	TenantID   string `json:"tenant_id"`
	TenantName string `json:"tenant_name"`
}

func (c *Client) get(ctx context.Context, path string, query map[string]string) ([]byte, error) {
	if err := c.breaker.Allow(); err != nil {
		c.logger.WarnContext(ctx, "playtomic circuit breaker rejected request", "state", c.breaker.State())
		return nil, fmt.Errorf("%w: match provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
	}

	values := url.Values{}
	for key, value := range query {
		values.Set(key, value)
	}

	fullURL := c.baseURL + path
	if encoded := values.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	out, err, _ := c.flight.Do(fullURL, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		if isTransient(reqErr) {
			c.breaker.RecordFailure()
		} else {
			c.breaker.RecordSuccess()
		}
		return raw, reqErr
	})
	if err != nil {
		return nil, err
	}

	raw, ok := out.([]byte)
	if !ok {
		return nil, fmt.Errorf("unexpected response payload type %T", out)
	}
	return raw, nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "application/json")
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %s", errPlaytomicTransient, sanitizeSensitiveText(err.Error(), c.token))
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
			_ = resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = fmt.Errorf("%w: read response body: %v", errPlaytomicTransient, readErr)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
				return nil, fmt.Errorf("%w: provider status=%d", usecase.ErrUnauthorized, resp.StatusCode)
			case resp.StatusCode == http.StatusNotFound:
				return nil, fmt.Errorf("%w: provider status=%d url=%s", usecase.ErrNotFound, resp.StatusCode, redactURL(fullURL))
			case isRetryableStatus(resp.StatusCode):
				lastErr = fmt.Errorf("%w: provider status=%d body=%s", errPlaytomicTransient, resp.StatusCode, abbreviateBody(raw))
			default:
				return nil, fmt.Errorf("provider status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
			}
		}

		if attempt == c.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * c.retryBackoff
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("provider request failed")
	}
	c.logger.WarnContext(ctx, "playtomic request failed", "url", redactURL(fullURL), "error", lastErr)
	return nil, lastErr
}

func isTransient(err error) bool {
	if err == nil {
		return false
	}
	return stderrors.Is(err, errPlaytomicTransient)
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func sanitizeSensitiveText(value, token string) string {
	value = strings.TrimSpace(value)
	if value == "" || token == "" {
		return value
	}
	return strings.ReplaceAll(value, token, "REDACTED")
}

// redactURL strips userinfo from a request URL before it is logged.
func redactURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	parsed.User = nil
	return parsed.String()
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func maxInt(left, right int) int {
	if left > right {
		return left
	}
	return right
}
