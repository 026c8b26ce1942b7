// Package geo looks up states and districts from the public countriesnow API.
package geo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultBaseURL is the public geography service.
const DefaultBaseURL = "https://countriesnow.space/api/v0.1"

var (
	// ErrUnavailable matches every failed lookup.
	ErrUnavailable = errors.New("geography lookup unavailable")
	// ErrEmpty is returned when a lookup succeeded with an empty list.
	ErrEmpty = errors.New("no results")
)

// Client queries the geography service for one country.
type Client struct {
	baseURL string
	country string
	http    *http.Client
}

// New creates a Client. An empty baseURL selects DefaultBaseURL.
func New(baseURL, country string, hc *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		country: country,
		http:    hc,
	}
}

// Country returns the country the client is bound to.
func (c *Client) Country() string {
	return c.country
}

// envelope is the service's common response shape.
type envelope struct {
	Error bool            `json:"error"`
	Msg   string          `json:"msg"`
	Data  json.RawMessage `json:"data"`
}

// States lists the state names of the configured country.
func (c *Client) States(ctx context.Context) ([]string, error) {
	var data struct {
		States []struct {
			Name string `json:"name"`
		} `json:"states"`
	}
	if err := c.post(ctx, "/countries/states", map[string]string{"country": c.country}, &data); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(data.States))
	for _, s := range data.States {
		names = append(names, s.Name)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("states of %s: %w", c.country, ErrEmpty)
	}
	return names, nil
}

// Districts lists the district (city) names of a state.
func (c *Client) Districts(ctx context.Context, state string) ([]string, error) {
	var data []string
	body := map[string]string{"country": c.country, "state": state}
	if err := c.post(ctx, "/countries/state/cities", body, &data); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("districts of %s: %w", state, ErrEmpty)
	}
	return data, nil
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w: %v", path, ErrUnavailable, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("%s: decode: %w: %v", path, ErrUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK || env.Error {
		return fmt.Errorf("%s: status %d %q: %w", path, resp.StatusCode, env.Msg, ErrUnavailable)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("%s: decode data: %w: %v", path, ErrUnavailable, err)
	}
	return nil
}
