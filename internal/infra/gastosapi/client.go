// Package gastosapi wraps HTTP calls to the upstream expenses backend.
// Every authenticated call forwards the session's bearer token unchanged;
// the gateway holds no credentials of its own.
package gastosapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gastos-app/gastos-gateway/internal/domain"
	"github.com/gastos-app/gastos-gateway/internal/infra/observability"
	"github.com/gastos-app/gastos-gateway/internal/infra/resilience"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("gastosapi")

// Client wraps HTTP calls to the expenses backend REST API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	cb         *gobreaker.CircuitBreaker
	cfg        resilience.Config
	bulkhead   *resilience.Bulkhead
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// NewClient creates an expenses backend client.
func NewClient(httpClient *http.Client, baseURL string, cb *gobreaker.CircuitBreaker, cfg resilience.Config, metrics *observability.Metrics, logger *zap.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		cb:         cb,
		cfg:        cfg,
		bulkhead:   resilience.NewBulkhead(cfg.MaxConcurrency),
		metrics:    metrics,
		logger:     logger,
	}
}

// doRequest executes one HTTP request against the backend. token may be empty
// for the public auth endpoints. headers carries extras such as the
// idempotency key on expense creation.
func (c *Client) doRequest(ctx context.Context, method, path, token string, payload any, headers map[string]string) ([]byte, int, error) {
	if err := c.bulkhead.Acquire(ctx); err != nil {
		return nil, 0, err
	}
	defer c.bulkhead.Release()

	var reqBody io.Reader
	if payload != nil {
		jsonBody, err := json.Marshal(payload)
		if err != nil {
			return nil, 0, err
		}
		reqBody = bytes.NewReader(jsonBody)
	}

	url := fmt.Sprintf("%s%s", c.baseURL, path)
	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		c.logger.Error("gastosapi: failed to create request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, 0, err
	}

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("gastosapi: request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Error("gastosapi: failed to read response body",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, 0, err
	}

	if resp.StatusCode >= 500 {
		c.logger.Warn("gastosapi: backend error",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(body)),
		)
	} else {
		c.logger.Debug("gastosapi: request done",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
		)
	}

	return body, resp.StatusCode, nil
}

// statusError maps common backend statuses to domain errors. Returns nil for
// any 2xx status.
func statusError(status int, resource, id string, body []byte) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return &domain.ErrUnauthorized{Message: "session rejected by backend"}
	case status == http.StatusNotFound:
		return &domain.ErrNotFound{Resource: resource, ID: id}
	default:
		return fmt.Errorf("expenses API returned status %d: %s", status, string(body))
	}
}

// CheckHealth probes the backend with a cheap unauthenticated request.
func (c *Client) CheckHealth(ctx context.Context) domain.ServiceHealth {
	start := time.Now()
	status := "healthy"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/expenses", nil)
	if err != nil {
		return domain.ServiceHealth{Name: "expenses-api", Status: "unhealthy", LastChecked: time.Now().UTC().Format(time.RFC3339)}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil || resp.StatusCode >= 500 {
		status = "unhealthy"
	}
	if resp != nil {
		resp.Body.Close()
	}

	return domain.ServiceHealth{
		Name:        "expenses-api",
		Status:      status,
		LatencyMs:   time.Since(start).Milliseconds(),
		LastChecked: time.Now().UTC().Format(time.RFC3339),
	}
}
