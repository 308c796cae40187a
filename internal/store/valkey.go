package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shanehull/digmap/internal/types"
)

const (
	pointsPrefix = "digmap:points:"
	routePrefix  = "digmap:route:"
)

// KV is the subset of the Valkey cache the store needs. Get returns (nil, nil)
// for a missing key.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Append(ctx context.Context, key string, value []byte, ttl time.Duration) error
	List(ctx context.Context, key string) ([][]byte, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
}

// Valkey keeps points as a list and the route as one JSON value per session.
// Every read or write pushes their expiry forward by ttl, in step with the
// session cookie that the handlers re-save on each request.
type Valkey struct {
	kv  KV
	ttl time.Duration
}

func NewValkey(kv KV, ttl time.Duration) *Valkey {
	return &Valkey{kv: kv, ttl: ttl}
}

func (v *Valkey) Append(ctx context.Context, sessionID string, coord types.Coordinate) error {
	data, err := json.Marshal(coord)
	if err != nil {
		return fmt.Errorf("encode point: %w", err)
	}
	if err := v.kv.Append(ctx, pointsPrefix+sessionID, data, v.ttl); err != nil {
		return fmt.Errorf("append point: %w", err)
	}
	return nil
}

func (v *Valkey) List(ctx context.Context, sessionID string) ([]types.Coordinate, error) {
	key := pointsPrefix + sessionID
	items, err := v.kv.List(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("list points: %w", err)
	}
	if len(items) > 0 {
		if err := v.kv.Expire(ctx, key, v.ttl); err != nil {
			return nil, fmt.Errorf("refresh points ttl: %w", err)
		}
	}

	points := make([]types.Coordinate, 0, len(items))
	for _, item := range items {
		var c types.Coordinate
		if err := json.Unmarshal(item, &c); err != nil {
			return nil, fmt.Errorf("decode point: %w", err)
		}
		points = append(points, c)
	}
	return points, nil
}

func (v *Valkey) SaveRoute(ctx context.Context, sessionID string, route Route) error {
	if route == nil {
		route = Route{}
	}
	data, err := json.Marshal(route)
	if err != nil {
		return fmt.Errorf("encode route: %w", err)
	}
	if err := v.kv.Set(ctx, routePrefix+sessionID, data, v.ttl); err != nil {
		return fmt.Errorf("save route: %w", err)
	}
	return nil
}

func (v *Valkey) LoadRoute(ctx context.Context, sessionID string) (Route, error) {
	key := routePrefix + sessionID
	data, err := v.kv.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load route: %w", err)
	}
	if data == nil {
		return Route{}, nil
	}
	if err := v.kv.Expire(ctx, key, v.ttl); err != nil {
		return nil, fmt.Errorf("refresh route ttl: %w", err)
	}

	var route Route
	if err := json.Unmarshal(data, &route); err != nil {
		return nil, fmt.Errorf("decode route: %w", err)
	}
	if route == nil {
		route = Route{}
	}
	return route, nil
}
