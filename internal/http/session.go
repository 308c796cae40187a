package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

const (
	keyLayer  = "map_layer"
	keyOldMap = "old_map"
)

// mapState is the per-visitor map configuration kept in the session.
type mapState struct {
	SessionID string
	Layer     string
	OldMap    bool
}

// loadSession fetches the visitor's session. Fresh sessions get the default
// layer so that saving them issues the cookie.
func loadSession(c *fiber.Ctx, deps *Dependencies) (*session.Session, error) {
	sess, err := deps.Sessions.Get(c)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if sess.Fresh() {
		sess.Set(keyLayer, defaultLayer(deps))
	}
	return sess, nil
}

// currentState reads the map state and refreshes the session cookie. The session
// must not be used after this call.
func currentState(c *fiber.Ctx, deps *Dependencies) (mapState, error) {
	sess, err := loadSession(c, deps)
	if err != nil {
		return mapState{}, err
	}

	state := stateOf(sess, deps)
	if err := sess.Save(); err != nil {
		return mapState{}, fmt.Errorf("save session: %w", err)
	}
	return state, nil
}

func stateOf(sess *session.Session, deps *Dependencies) mapState {
	state := mapState{SessionID: sess.ID(), Layer: defaultLayer(deps)}
	if layer, ok := sess.Get(keyLayer).(string); ok {
		if _, known := tileLayers[layer]; known {
			state.Layer = layer
		}
	}
	if old, ok := sess.Get(keyOldMap).(bool); ok {
		state.OldMap = old
	}
	return state
}

func defaultLayer(deps *Dependencies) string {
	if _, ok := tileLayers[deps.Map.DefaultLayer]; ok {
		return deps.Map.DefaultLayer
	}
	return "satellite"
}
