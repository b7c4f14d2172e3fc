package orggraph

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// Config contains configuration for the HTTP provider.
type Config struct {
	// BaseURL is the base URL of the knowledge-graph service.
	BaseURL string `yaml:"base_url"`

	// AuthToken is the bearer token for service authentication.
	AuthToken string `yaml:"auth_token"`

	// ServiceIdentity is sent as the X-Service-ID header.
	// Default: "saturn-engine"
	ServiceIdentity string `yaml:"service_identity"`

	// Timeout is the per-request timeout.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`

	// MaxRetries is the maximum number of retry attempts for transient
	// failures (5xx, connection errors, timeouts).
	// Default: 3
	MaxRetries int `yaml:"max_retries"`

	// RetryBackoff is the base backoff duration; attempt n waits
	// RetryBackoff * 2^(n-1).
	// Default: 1s
	RetryBackoff time.Duration `yaml:"retry_backoff"`

	// MaxRequestsPerMinute is the client-side rate-limit self-check.
	// Default: 100
	MaxRequestsPerMinute int `yaml:"max_requests_per_minute"`

	// MaxIdleConns is the connection pool size.
	// Default: 10
	MaxIdleConns int `yaml:"max_idle_conns"`
}

// DefaultConfig returns the default provider configuration.
func DefaultConfig() Config {
	return Config{
		ServiceIdentity:      "saturn-engine",
		Timeout:              10 * time.Second,
		MaxRetries:           3,
		RetryBackoff:         time.Second,
		MaxRequestsPerMinute: 100,
		MaxIdleConns:         10,
	}
}

// Endpoint paths, relative to BaseURL.
const (
	pathReporting  = "/v1/relationship/reporting"
	pathDepartment = "/v1/relationship/department"
	pathProjects   = "/v1/relationship/projects"
	pathRoles      = "/v1/roles/temporal"
)

// HTTPProvider implements Provider against the knowledge-graph service's
// REST API. It maintains a pooled HTTP client, retries transient failures
// with exponential backoff, and enforces a client-side request budget so a
// hot loop cannot hammer the service.
type HTTPProvider struct {
	config Config
	client *http.Client
	logger *slog.Logger

	// rate-limit self-check state
	rateMu       sync.Mutex
	requestCount int
	windowStart  time.Time
}

// NewHTTPProvider creates a new HTTP provider with connection pooling.
func NewHTTPProvider(config Config, logger *slog.Logger) *HTTPProvider {
	if config.Timeout == 0 {
		config.Timeout = 10 * time.Second
	}
	if config.MaxRetries == 0 {
		config.MaxRetries = 3
	}
	if config.RetryBackoff == 0 {
		config.RetryBackoff = time.Second
	}
	if config.MaxRequestsPerMinute == 0 {
		config.MaxRequestsPerMinute = 100
	}
	if config.MaxIdleConns == 0 {
		config.MaxIdleConns = 10
	}
	if config.ServiceIdentity == "" {
		config.ServiceIdentity = "saturn-engine"
	}
	if logger == nil {
		logger = slog.Default().With("component", "orggraph.client")
	}

	transport := &http.Transport{
		MaxIdleConns:        config.MaxIdleConns,
		MaxIdleConnsPerHost: config.MaxIdleConns,
		IdleConnTimeout:     90 * time.Second,
		ForceAttemptHTTP2:   true,
	}

	return &HTTPProvider{
		config: config,
		client: &http.Client{
			Transport: transport,
			Timeout:   config.Timeout,
		},
		logger:      logger,
		windowStart: time.Now(),
	}
}

// ReportingRelationship queries GET /v1/relationship/reporting.
func (p *HTTPProvider) ReportingRelationship(ctx context.Context, employeeID, managerID string) (*ReportingFact, error) {
	params := url.Values{}
	params.Set("employee", employeeID)
	params.Set("manager", managerID)

	var fact ReportingFact
	if err := p.getJSON(ctx, pathReporting, params, &fact); err != nil {
		return nil, err
	}
	return &fact, nil
}

// DepartmentRelationship queries GET /v1/relationship/department.
func (p *HTTPProvider) DepartmentRelationship(ctx context.Context, senderID, recipientID string) (*DepartmentFact, error) {
	params := url.Values{}
	params.Set("sender", senderID)
	params.Set("recipient", recipientID)

	var fact DepartmentFact
	if err := p.getJSON(ctx, pathDepartment, params, &fact); err != nil {
		return nil, err
	}
	return &fact, nil
}

// SharedProjects queries GET /v1/relationship/projects.
func (p *HTTPProvider) SharedProjects(ctx context.Context, senderID, recipientID string) (*ProjectsFact, error) {
	params := url.Values{}
	params.Set("sender", senderID)
	params.Set("recipient", recipientID)
	params.Set("project_status", "active")

	var fact ProjectsFact
	if err := p.getJSON(ctx, pathProjects, params, &fact); err != nil {
		return nil, err
	}
	return &fact, nil
}

// TemporalRoles queries GET /v1/roles/temporal.
func (p *HTTPProvider) TemporalRoles(ctx context.Context, personID string, asOf time.Time) (*RolesFact, error) {
	params := url.Values{}
	params.Set("person", personID)
	params.Set("as_of", asOf.UTC().Format(time.RFC3339))

	var fact RolesFact
	if err := p.getJSON(ctx, pathRoles, params, &fact); err != nil {
		return nil, err
	}
	return &fact, nil
}

// getJSON performs a GET with retries and decodes the JSON response body.
func (p *HTTPProvider) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	resp, err := p.doRequest(ctx, path, params)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := mapStatusError(path, resp); err != nil {
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &APIError{
			Endpoint:   path,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("malformed response body: %v", err),
		}
	}
	return nil
}

// doRequest performs an HTTP GET with retry logic. Transient errors (5xx,
// connection failures) are retried with exponential backoff; the backoff
// wait respects context cancellation.
func (p *HTTPProvider) doRequest(ctx context.Context, path string, params url.Values) (*http.Response, error) {
	requestURL := strings.TrimRight(p.config.BaseURL, "/") + path + "?" + params.Encode()

	var lastErr error
	for attempt := 0; attempt <= p.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * p.config.RetryBackoff
			p.logger.Debug("retrying org graph request",
				"endpoint", path,
				"attempt", attempt,
				"max_retries", p.config.MaxRetries,
				"backoff", backoff,
			)
			select {
			case <-ctx.Done():
				return nil, &ConnectionError{Endpoint: path, Cause: ctx.Err()}
			case <-time.After(backoff):
			}
		}

		if err := p.checkRateLimit(); err != nil {
			// A self-imposed rate limit is not transient within one call.
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
		if err != nil {
			return nil, &ValidationError{Endpoint: path, Message: err.Error()}
		}
		req.Header.Set("Authorization", "Bearer "+p.config.AuthToken)
		req.Header.Set("X-Service-ID", p.config.ServiceIdentity)
		req.Header.Set("Accept", "application/json")

		resp, err := p.client.Do(req)
		if err != nil {
			lastErr = &ConnectionError{Endpoint: path, Cause: err}
			continue
		}

		// Retry server errors; everything else is handled by the caller.
		if resp.StatusCode >= 500 && attempt < p.config.MaxRetries {
			resp.Body.Close()
			lastErr = &APIError{Endpoint: path, StatusCode: resp.StatusCode, Message: "server error"}
			continue
		}

		return resp, nil
	}

	return nil, lastErr
}

// checkRateLimit enforces the client-side request budget. The counter
// resets every minute.
func (p *HTTPProvider) checkRateLimit() error {
	p.rateMu.Lock()
	defer p.rateMu.Unlock()

	now := time.Now()
	elapsed := now.Sub(p.windowStart)
	if elapsed >= time.Minute {
		p.requestCount = 0
		p.windowStart = now
		elapsed = 0
	}

	if p.requestCount >= p.config.MaxRequestsPerMinute {
		return &RateLimitError{RetryAfter: time.Minute - elapsed}
	}

	p.requestCount++
	return nil
}

// mapStatusError converts a non-2xx response into the typed error taxonomy.
func mapStatusError(path string, resp *http.Response) error {
	if resp.StatusCode < 300 {
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	message := strings.TrimSpace(string(body))

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &AuthError{Endpoint: path, Message: message}
	case http.StatusTooManyRequests:
		retryAfter, _ := time.ParseDuration(resp.Header.Get("Retry-After") + "s")
		return &RateLimitError{Endpoint: path, RetryAfter: retryAfter}
	case http.StatusNotFound:
		return &NotFoundError{Endpoint: path, Subject: message}
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return &ValidationError{Endpoint: path, Message: message}
	default:
		return &APIError{Endpoint: path, StatusCode: resp.StatusCode, Message: message}
	}
}
