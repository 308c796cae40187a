package http

import (
	"context"

	"github.com/gofiber/fiber/v2/middleware/session"

	"github.com/shanehull/digmap/internal/pipeline"
	"github.com/shanehull/digmap/internal/store"
	"github.com/shanehull/digmap/internal/types"
)

type Geocoder interface {
	ForwardSearch(ctx context.Context, query string) []types.PlaceCandidate
}

type Reporter interface {
	Report(ctx context.Context, coord types.Coordinate) pipeline.Report
}

type Chatter interface {
	Chat(ctx context.Context, message string) string
}

type ReportMailer interface {
	SendReport(ctx context.Context, r pipeline.Report) error
}

type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Geocoder Geocoder
	Pipeline Reporter
	Chat     Chatter
	Points   store.PointStore
	Routes   store.RouteStore
	Sessions *session.Store
	// Mailer is nil when SMTP is not configured.
	Mailer ReportMailer
	// Cache is nil when Valkey is disabled.
	Cache Pinger
	Map   MapSettings
	// RateLimit is requests per minute per IP; zero uses 60.
	RateLimit int
}

type MapSettings struct {
	DefaultLayer string
	OldMapTiles  string
}
