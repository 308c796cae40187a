package main

import (
	"testing"

	"github.com/shanehull/digmap/internal/types"
)

func TestParseCoordinate(t *testing.T) {
	tests := []struct {
		lat, lon string
		want     types.Coordinate
		wantErr  bool
	}{
		{lat: "53.1959", lon: "50.1002", want: types.Coordinate{Lat: 53.1959, Lon: 50.1002}},
		{lat: "-90", lon: "180", want: types.Coordinate{Lat: -90, Lon: 180}},
		{lat: "north", lon: "50", wantErr: true},
		{lat: "53", lon: "", wantErr: true},
		{lat: "90.5", lon: "50", wantErr: true},
		{lat: "53", lon: "-180.1", wantErr: true},
	}

	for _, tt := range tests {
		got, err := parseCoordinate(tt.lat, tt.lon)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseCoordinate(%q, %q) expected error", tt.lat, tt.lon)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseCoordinate(%q, %q): %v", tt.lat, tt.lon, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseCoordinate(%q, %q) = %v, want %v", tt.lat, tt.lon, got, tt.want)
		}
	}
}
