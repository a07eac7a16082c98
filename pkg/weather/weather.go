// Package weather summarizes recent field conditions from the Open-Meteo
// historical archive.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

// ErrUpstream indicates the archive answered with a non-200 status.
var ErrUpstream = errors.New("weather archive request failed")

// Report aggregates the lookback window.
type Report struct {
	AvgTempC    float64 `json:"avg_temp_c"`
	TotalRainMM float64 `json:"total_rain_mm"`
	Conditions  string  `json:"conditions"`
	FungalRisk  bool    `json:"fungal_risk"`
	Days        int     `json:"days"`
}

// Summary renders the report as a single line.
func (r Report) Summary() string {
	s := fmt.Sprintf("Avg Temp: %.1f°C, Total Rain: %.1fmm, Conditions: %s", r.AvgTempC, r.TotalRainMM, r.Conditions)
	if r.FungalRisk {
		s += " - High humidity favorable for fungal diseases"
	}
	return s
}

// Client fetches weather for a coordinate.
type Client interface {
	// Fetch returns the report for the configured lookback window ending today.
	Fetch(ctx context.Context, lat, lng float64) (*Report, error)
	// Summarize returns the report summary, or an "unavailable" line on failure.
	Summarize(ctx context.Context, lat, lng float64) string
}

// Option configures the client.
type Option func(*client)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) { c.http = hc }
}

// WithClock replaces the time source used to compute the date window.
func WithClock(now func() time.Time) Option {
	return func(c *client) { c.now = now }
}

type client struct {
	baseURL  string
	lookback int
	http     *http.Client
	limiter  *rate.Limiter
	now      func() time.Time
}

// New creates a Client from cfg.
func New(cfg *Config, opts ...Option) Client {
	c := &client{
		baseURL:  cfg.BaseURL,
		lookback: cfg.LookbackDays,
		http:     &http.Client{Timeout: cfg.TimeoutDuration()},
		limiter:  rate.NewLimiter(rate.Limit(cfg.RateLimit), max(1, int(cfg.RateLimit))),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type archiveResponse struct {
	Daily struct {
		TemperatureMax []*float64 `json:"temperature_2m_max"`
		RainSum        []*float64 `json:"rain_sum"`
	} `json:"daily"`
}

func (c *client) Fetch(ctx context.Context, lat, lng float64) (*Report, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("weather rate limit: %w", err)
	}

	end := c.now().UTC()
	start := end.AddDate(0, 0, -c.lookback)

	params := url.Values{
		"latitude":   {strconv.FormatFloat(lat, 'f', -1, 64)},
		"longitude":  {strconv.FormatFloat(lng, 'f', -1, 64)},
		"start_date": {start.Format(time.DateOnly)},
		"end_date":   {end.Format(time.DateOnly)},
		"daily":      {"temperature_2m_max,rain_sum"},
		"timezone":   {"auto"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build weather request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("weather request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read weather response: %w", err)
	}

	var parsed archiveResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parse weather response: %w", err)
	}

	return summarize(parsed.Daily.TemperatureMax, parsed.Daily.RainSum), nil
}

func (c *client) Summarize(ctx context.Context, lat, lng float64) string {
	report, err := c.Fetch(ctx, lat, lng)
	if err != nil {
		return "Weather data unavailable: " + err.Error()
	}
	return report.Summary()
}

func summarize(temps, rain []*float64) *Report {
	var tempSum float64
	var tempN int
	for _, t := range temps {
		if t != nil {
			tempSum += *t
			tempN++
		}
	}

	var rainSum float64
	for _, r := range rain {
		if r != nil {
			rainSum += *r
		}
	}

	var avg float64
	if tempN > 0 {
		avg = tempSum / float64(tempN)
	}

	return &Report{
		AvgTempC:    avg,
		TotalRainMM: rainSum,
		Conditions:  Classify(rainSum),
		FungalRisk:  rainSum > 30 && avg > 20,
		Days:        max(len(temps), len(rain)),
	}
}

// Classify names the moisture regime for a total rainfall in millimetres.
func Classify(totalRainMM float64) string {
	switch {
	case totalRainMM > 50:
		return "Very Wet (Heavy Rain)"
	case totalRainMM > 20:
		return "Wet (Moderate Rain)"
	case totalRainMM > 5:
		return "Slightly Wet (Light Rain)"
	default:
		return "Dry"
	}
}
