/*
Package weather looks up the current temperature at a coordinate from Open-Meteo.
*/
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/shanehull/digmap/internal/metrics"
	"github.com/shanehull/digmap/internal/types"
)

const (
	DefaultBaseURL = "https://api.open-meteo.com/v1/forecast"
	source         = "open-meteo"
)

var now = time.Now

type Client struct {
	BaseURL string
	Timeout time.Duration
	HTTP    *http.Client
}

type forecastResponse struct {
	CurrentWeather *struct {
		Temperature *float64 `json:"temperature"`
	} `json:"current_weather"`
}

// Lookup issues one forecast request and classifies the temperature.
func (c *Client) Lookup(ctx context.Context, coord types.Coordinate) (*types.WeatherReport, error) {
	base := c.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	params := url.Values{}
	params.Set("latitude", strconv.FormatFloat(coord.Lat, 'f', -1, 64))
	params.Set("longitude", strconv.FormatFloat(coord.Lon, 'f', -1, 64))
	params.Set("current_weather", "true")

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"?"+params.Encode(), nil)
	if err != nil {
		return nil, types.NewUnavailable(source, types.ReasonMalformed, fmt.Errorf("create request: %w", err))
	}

	hc := c.HTTP
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, types.NewUnavailable(source, types.ReasonNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, types.NewUnavailable(source, types.ReasonStatus, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status))
	}

	var data forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, types.NewUnavailable(source, types.ReasonMalformed, fmt.Errorf("decode weather: %w", err))
	}
	if data.CurrentWeather == nil || data.CurrentWeather.Temperature == nil {
		return nil, types.NewUnavailable(source, types.ReasonMalformed, errors.New("no current temperature in response"))
	}

	t := *data.CurrentWeather.Temperature
	return &types.WeatherReport{
		TemperatureCelsius: t,
		Band:               types.BandFor(t),
		ObservedAt:         now(),
	}, nil
}

// CurrentWeather is Lookup with failures logged and reported as nil.
func (c *Client) CurrentWeather(ctx context.Context, coord types.Coordinate) *types.WeatherReport {
	report, err := c.Lookup(ctx, coord)
	if err != nil {
		reason := types.ReasonOf(err)
		metrics.UpstreamFailures.WithLabelValues("weather", string(reason)).Inc()
		slog.WarnContext(ctx, "weather lookup failed", "coord", coord.String(), "reason", reason, "error", err)
		return nil
	}
	return report
}
