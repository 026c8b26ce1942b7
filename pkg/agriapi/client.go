// Package agriapi is a typed client for the CropPriceAI prediction backend.
package agriapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultTimeout bounds every request unless overridden with WithTimeout.
const DefaultTimeout = 30 * time.Second

// maxErrorBody caps how much of a failed response is read for its message.
const maxErrorBody = 64 << 10

// Client talks to the backend over plain HTTP/JSON.
type Client struct {
	baseURL   string
	userAgent string
	http      *http.Client
	timeout   time.Duration
	logger    *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithTimeout sets the per-request timeout. Zero waits indefinitely.
// The deadline rides on each request's context, so an HTTP client shared
// through WithHTTPClient is never modified.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// New creates a Client for the backend at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: "croppriceai",
		http:      &http.Client{},
		timeout:   DefaultTimeout,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend root the client was created with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// PredictPrice submits the dashboard form to POST /predict.
func (c *Client) PredictPrice(ctx context.Context, p Payload) (*PricePrediction, error) {
	var out PricePrediction
	if err := c.do(ctx, http.MethodPost, "/predict", p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PredictSuitability submits a soil-family form to POST /predict and returns
// the free-text answer.
func (c *Client) PredictSuitability(ctx context.Context, p Payload) (*SuitabilityResult, error) {
	var out SuitabilityResult
	if err := c.do(ctx, http.MethodPost, "/predict", p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Recommend submits the ranked recommendation form to POST /recommend.
func (c *Client) Recommend(ctx context.Context, p Payload) (*RecommendResponse, error) {
	var out RecommendResponse
	if err := c.do(ctx, http.MethodPost, "/recommend", p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Analytics loads GET /analytics. A 2xx body carrying an error field is
// reported as an *APIError.
func (c *Client) Analytics(ctx context.Context) (*Analytics, error) {
	var out Analytics
	if err := c.do(ctx, http.MethodGet, "/analytics", nil, &out); err != nil {
		return nil, err
	}
	if out.Error != "" {
		return nil, &APIError{Status: http.StatusOK, Message: out.Error}
	}
	return &out, nil
}

// FetchWeather looks up current conditions for a district. state may be empty.
// A response missing any of the three readings returns ErrEmptyResult.
func (c *Client) FetchWeather(ctx context.Context, district, state string) (*Weather, error) {
	q := url.Values{}
	if state != "" {
		q.Set("state", state)
	}
	q.Set("district", district)

	var raw struct {
		Temperature *float64 `json:"temperature"`
		Humidity    *float64 `json:"humidity"`
		Rainfall    *float64 `json:"rainfall"`
	}
	if err := c.do(ctx, http.MethodGet, "/fetch_weather?"+q.Encode(), nil, &raw); err != nil {
		return nil, err
	}
	if raw.Temperature == nil || raw.Humidity == nil || raw.Rainfall == nil {
		return nil, fmt.Errorf("weather for %q: %w", district, ErrEmptyResult)
	}
	return &Weather{
		Temperature: *raw.Temperature,
		Humidity:    *raw.Humidity,
		Rainfall:    *raw.Rainfall,
	}, nil
}

// PredictPestRisk submits the pest form to POST /predict_pest_risk.
func (c *Client) PredictPestRisk(ctx context.Context, p Payload) (*PestRisk, error) {
	var out PestRisk
	if err := c.do(ctx, http.MethodPost, "/predict_pest_risk", p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MarketStatus loads GET /market-status.
func (c *Client) MarketStatus(ctx context.Context) ([]MarketTile, error) {
	var out []MarketTile
	if err := c.do(ctx, http.MethodGet, "/market-status", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListAlerts loads GET /alerts.
func (c *Client) ListAlerts(ctx context.Context) ([]Alert, error) {
	var out []Alert
	if err := c.do(ctx, http.MethodGet, "/alerts", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateAlert posts a new alert.
func (c *Client) CreateAlert(ctx context.Context, a NewAlert) (*CreatedAlert, error) {
	var out CreatedAlert
	if err := c.do(ctx, http.MethodPost, "/alerts", a, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteAlert removes an alert by id.
func (c *Client) DeleteAlert(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/alerts/%d", id), nil, nil)
}

// Ask sends a question to POST /chatbot.
func (c *Client) Ask(ctx context.Context, question, language string) (*ChatReply, error) {
	var out ChatReply
	req := ChatRequest{Question: question, Language: language}
	if err := c.do(ctx, http.MethodPost, "/chatbot", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// do issues one request and decodes a 2xx JSON body into out (when non-nil).
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("backend request failed",
			"method", method,
			"endpoint", path,
			"request_id", requestID,
			"error", err,
		)
		return fmt.Errorf("%s %s: %w: %v", method, path, ErrNetwork, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("backend request",
		"method", method,
		"endpoint", path,
		"request_id", requestID,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w: %v", method, path, ErrNetwork, err)
	}
	return nil
}

// decodeAPIError builds an *APIError from a JSON {"error": ...} body or an
// RFC 7807 problem document, falling back to the bare status.
func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(data) == 0 {
		return apiErr
	}

	var body struct {
		Error  string `json:"error"`
		Detail string `json:"detail"`
		Title  string `json:"title"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		apiErr.Message = strings.TrimSpace(string(data))
		return apiErr
	}
	switch {
	case body.Error != "":
		apiErr.Message = body.Error
	case body.Detail != "":
		apiErr.Message = body.Detail
	default:
		apiErr.Message = body.Title
	}
	return apiErr
}

// IsNetwork reports whether err is any kind of backend failure.
func IsNetwork(err error) bool {
	return errors.Is(err, ErrNetwork)
}
