package weather

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shanehull/digmap/internal/types"
)

func TestLookup(t *testing.T) {
	fixed := time.Date(2024, 7, 1, 12, 30, 0, 0, time.UTC)
	now = func() time.Time { return fixed }
	t.Cleanup(func() { now = time.Now })

	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		fmt.Fprint(w, `{"latitude": 53.2, "longitude": 50.1, "current_weather": {"temperature": 15.0, "windspeed": 3.2}}`)
	}))
	defer srv.Close()

	c := &Client{BaseURL: srv.URL}
	report, err := c.Lookup(context.Background(), types.Coordinate{Lat: 53.1959, Lon: 50.1002})
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}

	if report.TemperatureCelsius != 15.0 {
		t.Errorf("expected 15.0, got %v", report.TemperatureCelsius)
	}
	if report.Band != types.Pleasant {
		t.Errorf("expected Pleasant, got %s", report.Band)
	}
	if !report.ObservedAt.Equal(fixed) {
		t.Errorf("unexpected observation time %v", report.ObservedAt)
	}
	if gotQuery != "current_weather=true&latitude=53.1959&longitude=50.1002" {
		t.Errorf("unexpected query %q", gotQuery)
	}
}

func TestLookupFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		reason types.Reason
	}{
		{name: "missing current_weather", status: http.StatusOK, body: `{"latitude": 53.2}`, reason: types.ReasonMalformed},
		{name: "missing temperature", status: http.StatusOK, body: `{"current_weather": {"windspeed": 1}}`, reason: types.ReasonMalformed},
		{name: "not json", status: http.StatusOK, body: `<html>`, reason: types.ReasonMalformed},
		{name: "server error", status: http.StatusBadGateway, body: ``, reason: types.ReasonStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer srv.Close()

			c := &Client{BaseURL: srv.URL}
			_, err := c.Lookup(context.Background(), types.Coordinate{Lat: 53.1959, Lon: 50.1002})
			if got := types.ReasonOf(err); err == nil || got != tt.reason {
				t.Errorf("expected %s, got %v", tt.reason, err)
			}

			if report := c.CurrentWeather(context.Background(), types.Coordinate{Lat: 53.1959, Lon: 50.1002}); report != nil {
				t.Errorf("expected nil report, got %+v", report)
			}
		})
	}
}

func TestCurrentWeatherNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := &Client{BaseURL: srv.URL, Timeout: time.Second}
	if report := c.CurrentWeather(context.Background(), types.Coordinate{}); report != nil {
		t.Errorf("expected nil on network failure, got %+v", report)
	}
}

func TestZeroTemperatureIsNotMissing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"current_weather": {"temperature": 0}}`)
	}))
	defer srv.Close()

	c := &Client{BaseURL: srv.URL}
	report := c.CurrentWeather(context.Background(), types.Coordinate{})
	if report == nil {
		t.Fatal("expected report for 0°C")
	}
	if report.Band != types.Cool {
		t.Errorf("0°C should be Cool, got %s", report.Band)
	}
}
