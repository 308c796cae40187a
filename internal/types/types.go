package types

import (
	"fmt"
	"strings"
	"time"
)

type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Valid reports whether the coordinate lies within WGS 84 bounds.
func (c Coordinate) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

func (c Coordinate) String() string {
	return fmt.Sprintf("%.4f, %.4f", c.Lat, c.Lon)
}

type PlaceCandidate struct {
	DisplayName string     `json:"display_name"`
	Coordinate  Coordinate `json:"coordinate"`
}

// PlaceNameFromAddress returns the first comma-delimited segment of a resolved address.
func PlaceNameFromAddress(address string) string {
	first, _, _ := strings.Cut(address, ",")
	return strings.TrimSpace(first)
}

type SourceSnippet struct {
	SourceID  string `json:"source_id"`
	Text      string `json:"text"`
	Truncated bool   `json:"truncated"`
}

type Failure struct {
	SourceID string `json:"source_id"`
	Reason   Reason `json:"reason"`
}

type AggregatedDocument struct {
	Label    string          `json:"label"`
	Snippets []SourceSnippet `json:"snippets"`
	Empty    bool            `json:"empty"`
	Failures []Failure       `json:"failures,omitempty"`
}

type WeatherReport struct {
	TemperatureCelsius float64   `json:"temperature_celsius"`
	Band               Band      `json:"band"`
	ObservedAt         time.Time `json:"observed_at"`
}
