package geo

import (
	"context"
	"fmt"
	"strings"

	"github.com/shanehull/digmap/internal/types"

	"googlemaps.github.io/maps"
)

// Google geocodes through the Google Maps Geocoding API.
type Google struct {
	client       *maps.Client
	countryCodes []string
	language     string
}

// NewGoogle builds a provider restricted to the comma-separated country codes.
// Extra client options (for example maps.WithBaseURL) are passed through.
func NewGoogle(apiKey, countryCodes, language string, opts ...maps.ClientOption) (*Google, error) {
	client, err := maps.NewClient(append([]maps.ClientOption{maps.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("maps.NewClient: %w", err)
	}

	var codes []string
	for _, c := range strings.Split(countryCodes, ",") {
		if c = strings.TrimSpace(c); c != "" {
			codes = append(codes, strings.ToUpper(c))
		}
	}
	return &Google{client: client, countryCodes: codes, language: language}, nil
}

func (g *Google) Search(ctx context.Context, query string) ([]types.PlaceCandidate, error) {
	req := &maps.GeocodingRequest{
		Address:  query,
		Language: g.language,
	}
	// The component filter accepts a single country.
	if len(g.countryCodes) > 0 {
		req.Components = map[maps.Component]string{maps.ComponentCountry: g.countryCodes[0]}
	}

	results, err := g.client.Geocode(ctx, req)
	if isZeroResults(err) {
		return nil, nil
	}
	if err != nil {
		return nil, classify(err)
	}

	candidates := make([]types.PlaceCandidate, 0, len(results))
	for _, r := range results {
		candidates = append(candidates, types.PlaceCandidate{
			DisplayName: r.FormattedAddress,
			Coordinate: types.Coordinate{
				Lat: r.Geometry.Location.Lat,
				Lon: r.Geometry.Location.Lng,
			},
		})
	}
	return candidates, nil
}

func (g *Google) Reverse(ctx context.Context, coord types.Coordinate) (string, error) {
	results, err := g.client.ReverseGeocode(ctx, &maps.GeocodingRequest{
		LatLng:   &maps.LatLng{Lat: coord.Lat, Lng: coord.Lon},
		Language: g.language,
	})
	if isZeroResults(err) {
		return "", nil
	}
	if err != nil {
		return "", classify(err)
	}
	if len(results) == 0 {
		return "", nil
	}
	return results[0].FormattedAddress, nil
}

// The client reports ZERO_RESULTS as an error; it is an empty result, not a failure.
func isZeroResults(err error) bool {
	return err != nil && strings.Contains(err.Error(), "ZERO_RESULTS")
}

// classify maps client errors onto reasons. API status errors carry a "maps: "
// prefix; anything else failed on the way.
func classify(err error) error {
	if strings.HasPrefix(err.Error(), "maps: ") {
		return types.NewUnavailable("google", types.ReasonStatus, err)
	}
	return types.NewUnavailable("google", types.ReasonNetwork, err)
}
