// internal/webhook/gateway.go
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"loan-origination/internal/common/config"
	apperrors "loan-origination/internal/common/errors"
	httpclient "loan-origination/internal/common/http"
	"loan-origination/internal/common/logger"
	"loan-origination/internal/common/metrics"
)

// Endpoints exposed by the workflow engine.
const (
	EndpointPreloanApplication = "preloan-application"
	EndpointLoanApplication    = "loan-application"
	EndpointDocumentUpload     = "document-upload"
	EndpointAssetDeclaration   = "asset-declaration"
	EndpointESGAssessment      = "esg-assessment"
	EndpointLoanPlan           = "loan-plan"
)

const (
	DefaultTimeout  = 30 * time.Second
	maxResponseSize = 10 << 20
)

var errDeadline = errors.New("webhook deadline elapsed")

type Config struct {
	BaseURL     string
	ProxyOrigin string
	BearerToken string
	APIKey      string
	Timeout     time.Duration
	Source      string
	Version     string
	Environment string
}

// ConfigFrom maps the service configuration onto a gateway Config.
func ConfigFrom(cfg *config.Config) Config {
	return Config{
		BaseURL:     cfg.Webhook.BaseURL,
		ProxyOrigin: cfg.Webhook.ProxyOrigin,
		BearerToken: cfg.Webhook.BearerToken,
		APIKey:      cfg.Webhook.APIKey,
		Timeout:     config.GetDuration(cfg.Webhook.Timeout),
		Source:      cfg.Webhook.Source,
		Version:     cfg.App.Version,
		Environment: cfg.App.Environment,
	}
}

// Metadata is merged into every outbound payload.
type Metadata struct {
	Timestamp   string `json:"timestamp"`
	Source      string `json:"source"`
	Version     string `json:"version"`
	Environment string `json:"environment"`
	RequestID   string `json:"requestId"`
}

// Result is a successful delivery.
type Result struct {
	RequestID  string
	StatusCode int
	Body       json.RawMessage
	Duration   time.Duration
}

// Gateway posts domain events to the external workflow engine. It never
// retries; callers decide.
type Gateway struct {
	cfg     Config
	baseURL string
	client  httpclient.Doer
	log     logger.Logger
	now     func() time.Time
}

type Option func(*Gateway)

func WithHTTPClient(c httpclient.Doer) Option {
	return func(g *Gateway) {
		g.client = c
	}
}

func WithClock(now func() time.Time) Option {
	return func(g *Gateway) {
		g.now = now
	}
}

// NewGateway validates cfg and fails with CONFIGURATION_INVALID when the base
// URL is missing or malformed.
func NewGateway(cfg Config, log logger.Logger, opts ...Option) (*Gateway, error) {
	base, err := resolveBaseURL(cfg.BaseURL, cfg.ProxyOrigin)
	if err != nil {
		return nil, apperrors.NewConfigurationError(err.Error())
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	g := &Gateway{
		cfg:     cfg,
		baseURL: base,
		log:     log.WithFields(map[string]interface{}{"component": "webhook"}),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.client == nil {
		// The per-call context enforces cfg.Timeout; this is only a backstop.
		g.client = httpclient.NewClient(cfg.Timeout + 5*time.Second)
	}
	return g, nil
}

func resolveBaseURL(raw, proxyOrigin string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("webhook base URL is not configured")
	}

	if strings.HasPrefix(raw, "/") && !strings.HasPrefix(raw, "//") {
		origin := strings.TrimRight(strings.TrimSpace(proxyOrigin), "/")
		if origin == "" {
			return "", fmt.Errorf("relative webhook base URL %q requires a proxy origin", raw)
		}
		if _, err := parseAbsolute(origin); err != nil {
			return "", fmt.Errorf("invalid proxy origin: %w", err)
		}
		return strings.TrimRight(origin+raw, "/"), nil
	}

	if _, err := parseAbsolute(raw); err != nil {
		return "", err
	}
	return strings.TrimRight(raw, "/"), nil
}

func parseAbsolute(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("malformed webhook URL %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("webhook URL %q must use http or https", raw)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("webhook URL %q has no host", raw)
	}
	return u, nil
}

// BaseURL returns the resolved absolute base URL.
func (g *Gateway) BaseURL() string {
	return g.baseURL
}

// EndpointURL joins the base URL and an endpoint path segment.
func (g *Gateway) EndpointURL(endpoint string) string {
	return g.baseURL + "/" + strings.TrimLeft(endpoint, "/")
}

// SendToWebhook posts data to endpoint and returns the decoded response body.
func (g *Gateway) SendToWebhook(ctx context.Context, endpoint string, data interface{}) (json.RawMessage, error) {
	res, err := g.Send(ctx, endpoint, data)
	if err != nil {
		return nil, err
	}
	return res.Body, nil
}

// Send is SendToWebhook with delivery details.
func (g *Gateway) Send(ctx context.Context, endpoint string, data interface{}) (*Result, error) {
	start := g.now()
	requestID := newRequestID(start)

	body, err := g.envelope(data, Metadata{
		Timestamp:   start.UTC().Format("2006-01-02T15:04:05.000Z"),
		Source:      g.cfg.Source,
		Version:     g.cfg.Version,
		Environment: g.cfg.Environment,
		RequestID:   requestID,
	})
	if err != nil {
		return nil, fmt.Errorf("encode webhook payload: %w", err)
	}

	log := g.log.WithFields(map[string]interface{}{
		"endpoint":  endpoint,
		"requestId": requestID,
	})

	callCtx, cancel := context.WithTimeoutCause(ctx, g.cfg.Timeout, errDeadline)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, g.EndpointURL(endpoint), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if g.cfg.BearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+g.cfg.BearerToken)
	}
	if g.cfg.APIKey != "" {
		req.Header.Set("X-API-Key", g.cfg.APIKey)
	}

	log.Debug("sending webhook", map[string]interface{}{"bytes": len(body)})

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, g.fail(callCtx, log, endpoint, requestID, start, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, g.fail(callCtx, log, endpoint, requestID, start, err)
	}

	duration := time.Since(start)
	metrics.WebhookDuration.WithLabelValues(endpoint).Observe(duration.Seconds())

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.WebhookRequests.WithLabelValues(endpoint, metrics.OutcomeHTTPError).Inc()
		log.Warn("webhook rejected request", map[string]interface{}{"statusCode": resp.StatusCode})
		return nil, &StatusError{
			Endpoint:   endpoint,
			RequestID:  requestID,
			StatusCode: resp.StatusCode,
			Body:       string(raw),
		}
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		trimmed = []byte("{}")
	}
	if !json.Valid(trimmed) {
		metrics.WebhookRequests.WithLabelValues(endpoint, metrics.OutcomeDecode).Inc()
		log.Warn("webhook returned non-JSON body", map[string]interface{}{"statusCode": resp.StatusCode})
		return nil, &DecodeError{
			Endpoint:  endpoint,
			RequestID: requestID,
			Body:      string(raw),
			Err:       fmt.Errorf("invalid JSON (%d bytes)", len(raw)),
		}
	}

	metrics.WebhookRequests.WithLabelValues(endpoint, metrics.OutcomeSuccess).Inc()
	log.Info("webhook delivered", map[string]interface{}{
		"statusCode": resp.StatusCode,
		"durationMs": duration.Milliseconds(),
	})

	return &Result{
		RequestID:  requestID,
		StatusCode: resp.StatusCode,
		Body:       json.RawMessage(trimmed),
		Duration:   duration,
	}, nil
}

// fail distinguishes our own deadline from every other transport error. A
// cancelled parent context is passed through untouched.
func (g *Gateway) fail(callCtx context.Context, log logger.Logger, endpoint, requestID string, start time.Time, err error) error {
	metrics.WebhookDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())

	if errors.Is(context.Cause(callCtx), errDeadline) {
		metrics.WebhookRequests.WithLabelValues(endpoint, metrics.OutcomeTimeout).Inc()
		log.Warn("webhook timed out", map[string]interface{}{"timeoutMs": g.cfg.Timeout.Milliseconds()})
		return &TimeoutError{Endpoint: endpoint, RequestID: requestID, Timeout: g.cfg.Timeout}
	}

	metrics.WebhookRequests.WithLabelValues(endpoint, metrics.OutcomeTransport).Inc()
	log.Warn("webhook transport failure", map[string]interface{}{"error": err})
	return err
}

// envelope merges meta into an object payload, or wraps anything else as
// {"data": payload}.
func (g *Gateway) envelope(data interface{}, meta Metadata) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		fields = map[string]json.RawMessage{"data": raw}
	}

	metaRaw, err := json.Marshal(meta)
	if err != nil {
		return nil, err
	}
	fields["metadata"] = metaRaw
	return json.Marshal(fields)
}
