package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shanehull/digmap/internal/types"
)

const source = "nominatim"

// Nominatim talks to an OpenStreetMap Nominatim instance over its JSON API.
type Nominatim struct {
	BaseURL      string
	UserAgent    string
	CountryCodes string
	Language     string
	Timeout      time.Duration
	Client       *http.Client
}

type nominatimPlace struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

type nominatimReverse struct {
	DisplayName string `json:"display_name"`
	Error       string `json:"error"`
}

func (n *Nominatim) Search(ctx context.Context, query string) ([]types.PlaceCandidate, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	if n.CountryCodes != "" {
		params.Set("countrycodes", strings.ToLower(n.CountryCodes))
	}

	var places []nominatimPlace
	if err := n.get(ctx, "/search", params, &places); err != nil {
		return nil, err
	}

	candidates := make([]types.PlaceCandidate, 0, len(places))
	for _, p := range places {
		lat, errLat := strconv.ParseFloat(p.Lat, 64)
		lon, errLon := strconv.ParseFloat(p.Lon, 64)
		if errLat != nil || errLon != nil {
			slog.DebugContext(ctx, "skipping nominatim result with bad coordinates", "lat", p.Lat, "lon", p.Lon)
			continue
		}
		coord := types.Coordinate{Lat: lat, Lon: lon}
		if !coord.Valid() {
			continue
		}
		candidates = append(candidates, types.PlaceCandidate{DisplayName: p.DisplayName, Coordinate: coord})
	}
	return candidates, nil
}

func (n *Nominatim) Reverse(ctx context.Context, coord types.Coordinate) (string, error) {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(coord.Lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(coord.Lon, 'f', -1, 64))
	params.Set("format", "json")

	var rev nominatimReverse
	if err := n.get(ctx, "/reverse", params, &rev); err != nil {
		return "", err
	}
	if rev.Error != "" {
		return "", types.NewUnavailable(source, types.ReasonEmpty, fmt.Errorf("reverse: %s", rev.Error))
	}
	return rev.DisplayName, nil
}

func (n *Nominatim) get(ctx context.Context, path string, params url.Values, out any) error {
	if n.Language != "" {
		params.Set("accept-language", n.Language)
	}

	timeout := n.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	endpoint := strings.TrimRight(n.BaseURL, "/") + path + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return types.NewUnavailable(source, types.ReasonMalformed, fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("User-Agent", n.UserAgent)
	req.Header.Set("Accept", "application/json")

	hc := n.Client
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return types.NewUnavailable(source, types.ReasonNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return types.NewUnavailable(source, types.ReasonStatus, fmt.Errorf("received status code %d", resp.StatusCode))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return types.NewUnavailable(source, types.ReasonMalformed, fmt.Errorf("decode %s: %w", path, err))
	}
	return nil
}
