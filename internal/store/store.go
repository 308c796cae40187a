/*
Package store keeps per-session map state: the points a user selected and the
route they saved.
*/
package store

import (
	"context"

	"github.com/shanehull/digmap/internal/types"
)

// Route is an ordered list of waypoints.
type Route []types.Coordinate

// PointStore is append-only within a session.
type PointStore interface {
	Append(ctx context.Context, sessionID string, coord types.Coordinate) error
	List(ctx context.Context, sessionID string) ([]types.Coordinate, error)
}

// RouteStore replaces and returns a session's route wholesale.
type RouteStore interface {
	SaveRoute(ctx context.Context, sessionID string, route Route) error
	LoadRoute(ctx context.Context, sessionID string) (Route, error)
}
