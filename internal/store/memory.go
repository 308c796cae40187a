package store

import (
	"context"
	"sync"

	"github.com/shanehull/digmap/internal/types"
)

// Memory keeps session state in process memory.
type Memory struct {
	mutex  sync.Mutex
	points map[string][]types.Coordinate
	routes map[string]Route
}

func NewMemory() *Memory {
	return &Memory{
		points: make(map[string][]types.Coordinate),
		routes: make(map[string]Route),
	}
}

func (m *Memory) Append(_ context.Context, sessionID string, coord types.Coordinate) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.points[sessionID] = append(m.points[sessionID], coord)
	return nil
}

func (m *Memory) List(_ context.Context, sessionID string) ([]types.Coordinate, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	out := make([]types.Coordinate, len(m.points[sessionID]))
	copy(out, m.points[sessionID])
	return out, nil
}

func (m *Memory) SaveRoute(_ context.Context, sessionID string, route Route) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	saved := make(Route, len(route))
	copy(saved, route)
	m.routes[sessionID] = saved
	return nil
}

func (m *Memory) LoadRoute(_ context.Context, sessionID string) (Route, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	out := make(Route, len(m.routes[sessionID]))
	copy(out, m.routes[sessionID])
	return out, nil
}
