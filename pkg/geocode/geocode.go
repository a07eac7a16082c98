// Package geocode resolves coordinates to a locality name through the
// Google Geocoding API.
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"

	"golang.org/x/time/rate"
)

// ErrUpstream indicates the geocoder answered with a non-200 status.
var ErrUpstream = errors.New("geocode request failed")

// Client reverse-geocodes coordinates.
type Client interface {
	// Enabled reports whether an API key is configured.
	Enabled() bool
	// Locality returns the first locality or sublocality name for the
	// coordinate, or "" when disabled or nothing matched.
	Locality(ctx context.Context, lat, lng float64) (string, error)
}

// Option configures the client.
type Option func(*google)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(g *google) { g.http = hc }
}

type google struct {
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// New creates a Client from cfg.
func New(cfg *Config, opts ...Option) Client {
	g := &google{
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		http:    &http.Client{Timeout: cfg.TimeoutDuration()},
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), max(1, int(cfg.RateLimit))),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

type response struct {
	Status  string `json:"status"`
	Results []struct {
		AddressComponents []struct {
			LongName string   `json:"long_name"`
			Types    []string `json:"types"`
		} `json:"address_components"`
	} `json:"results"`
}

func (g *google) Enabled() bool {
	return g.apiKey != ""
}

func (g *google) Locality(ctx context.Context, lat, lng float64) (string, error) {
	if !g.Enabled() {
		return "", nil
	}

	if err := g.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("geocode rate limit: %w", err)
	}

	params := url.Values{
		"latlng":      {fmt.Sprintf("%f,%f", lat, lng)},
		"key":         {g.apiKey},
		"result_type": {"locality|sublocality|administrative_area_level_3"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("build geocode request: %w", err)
	}

	resp, err := g.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("geocode request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read geocode response: %w", err)
	}

	var parsed response
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("parse geocode response: %w", err)
	}

	if parsed.Status != "OK" {
		return "", nil
	}

	for _, result := range parsed.Results {
		for _, comp := range result.AddressComponents {
			if slices.Contains(comp.Types, "locality") || slices.Contains(comp.Types, "sublocality") {
				return comp.LongName, nil
			}
		}
	}

	return "", nil
}
