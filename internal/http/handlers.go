package http

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/shanehull/digmap/internal/pipeline"
	"github.com/shanehull/digmap/internal/render"
	"github.com/shanehull/digmap/internal/types"
)

const (
	maxQueryRunes   = 200
	maxMessageRunes = 1000

	emptyQueryMessage   = "Эй, где будем искать-то? Введи название места!"
	noResultsMessage    = "Ничего не нашел. Может, опечатка? Или место слишком засекречено?"
	emptyChatReply      = "Эй, ты ничего не написал!"
	invalidCoordMessage = "Координаты кривые. Широта от -90 до 90, долгота от -180 до 180."
)

var defaultCenter = types.Coordinate{Lat: 53.1959, Lon: 50.1002}

// IndexHandler renders the map centred on the default location.
func IndexHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return renderMap(c, deps, defaultCenter, nil)
	}
}

// CenterMapHandler renders the map with the full report for ?lat=&lon=.
func CenterMapHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		coord, ok := parseCoordinate(c.Query("lat"), c.Query("lon"))
		if !ok {
			return errBadRequest(c, invalidCoordMessage)
		}

		report := deps.Pipeline.Report(c.UserContext(), coord)
		return renderMap(c, deps, coord, &report)
	}
}

func renderMap(c *fiber.Ctx, deps *Dependencies, center types.Coordinate, report *pipeline.Report) error {
	ctx := c.UserContext()

	state, err := currentState(c, deps)
	if err != nil {
		LoggerFromCtx(ctx).Error("session unavailable", "error", err)
		return errInternal(c, "session unavailable")
	}

	points, err := deps.Points.List(ctx, state.SessionID)
	if err != nil {
		LoggerFromCtx(ctx).Warn("list points failed", "error", err)
		points = nil
	}

	data := pageData{
		Center:      center,
		Zoom:        defaultZoom,
		Layer:       tileLayers[state.Layer],
		Layers:      layerList(),
		OldMap:      state.OldMap && deps.Map.OldMapTiles != "",
		OldMapTiles: deps.Map.OldMapTiles,
		Points:      pairs(points),
	}
	if report != nil {
		data.Report = &reportView{
			Place:      report.Place,
			Coordinate: report.Coordinate,
			Weather:    render.WeatherView(report.Weather),
			Region:     render.Sanitize(report.Region),
			Historical: render.Sanitize(report.Historical),
		}
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		LoggerFromCtx(ctx).Error("render page failed", "error", err)
		return errInternal(c, "failed to render page")
	}

	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Send(buf.Bytes())
}

type locationView struct {
	DisplayName string  `json:"display_name"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
}

// SearchLocationHandler geocodes a free-text query within the configured country.
func SearchLocationHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := readParams(c)
		if err != nil {
			return errBadRequest(c, "invalid request body")
		}

		query := truncateRunes(strings.TrimSpace(p.get("query")), maxQueryRunes)
		if query == "" {
			return errBadRequest(c, emptyQueryMessage)
		}

		candidates := deps.Geocoder.ForwardSearch(c.UserContext(), query)
		if len(candidates) == 0 {
			return errNotFound(c, noResultsMessage)
		}

		locations := make([]locationView, 0, len(candidates))
		for _, cand := range candidates {
			locations = append(locations, locationView{
				DisplayName: cand.DisplayName,
				Lat:         cand.Coordinate.Lat,
				Lon:         cand.Coordinate.Lon,
			})
		}
		return c.JSON(fiber.Map{"locations": locations})
	}
}

// SelectLocationHandler records a clicked point for the visitor.
func SelectLocationHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := readParams(c)
		if err != nil {
			return errBadRequest(c, "invalid request body")
		}

		coord, ok := parseCoordinate(p.get("lat"), p.get("lon"))
		if !ok {
			return errBadRequest(c, invalidCoordMessage)
		}

		ctx := c.UserContext()
		state, err := currentState(c, deps)
		if err != nil {
			LoggerFromCtx(ctx).Error("session unavailable", "error", err)
			return errInternal(c, "session unavailable")
		}

		if err := deps.Points.Append(ctx, state.SessionID, coord); err != nil {
			LoggerFromCtx(ctx).Error("append point failed", "error", err)
			return errInternal(c, "failed to store point")
		}

		return c.JSON(fiber.Map{"status": "ok", "lat": coord.Lat, "lon": coord.Lon})
	}
}

// ChatHandler forwards a question to the generator in chat mode.
func ChatHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := readParams(c)
		if err != nil {
			return errBadRequest(c, "invalid request body")
		}

		message := truncateRunes(strings.TrimSpace(p.get("message")), maxMessageRunes)
		if message == "" {
			return c.JSON(fiber.Map{"response": emptyChatReply})
		}

		return c.JSON(fiber.Map{"response": deps.Chat.Chat(c.UserContext(), message)})
	}
}

// SaveRouteHandler replaces the visitor's route. The route is accepted as the
// whole JSON body, as a "route" JSON field, or as a form field holding JSON.
func SaveRouteHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var raw string
		if body := bytes.TrimSpace(c.Body()); bytes.HasPrefix(body, []byte("[")) {
			raw = string(body)
		} else {
			p, err := readParams(c)
			if err != nil {
				return errBadRequest(c, "invalid request body")
			}
			raw = strings.TrimSpace(p.get("route"))
		}
		if raw == "" {
			return errBadRequest(c, "route is required")
		}

		route, err := parseRoute(raw)
		if err != nil {
			return errBadRequest(c, "route must be a JSON array of [lat, lon] pairs")
		}

		ctx := c.UserContext()
		state, err := currentState(c, deps)
		if err != nil {
			LoggerFromCtx(ctx).Error("session unavailable", "error", err)
			return errInternal(c, "session unavailable")
		}

		if err := deps.Routes.SaveRoute(ctx, state.SessionID, route); err != nil {
			LoggerFromCtx(ctx).Error("save route failed", "error", err)
			return errInternal(c, "failed to save route")
		}

		return c.JSON(fiber.Map{"status": "ok"})
	}
}

// LoadRouteHandler returns the visitor's route as [[lat, lon], ...].
func LoadRouteHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		state, err := currentState(c, deps)
		if err != nil {
			LoggerFromCtx(ctx).Error("session unavailable", "error", err)
			return errInternal(c, "session unavailable")
		}

		route, err := deps.Routes.LoadRoute(ctx, state.SessionID)
		if err != nil {
			LoggerFromCtx(ctx).Error("load route failed", "error", err)
			return errInternal(c, "failed to load route")
		}

		return c.JSON(pairs(route))
	}
}

// ChangeMapLayerHandler switches the base tile layer for the visitor.
func ChangeMapLayerHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := readParams(c)
		if err != nil {
			return errBadRequest(c, "invalid request body")
		}

		layer := strings.TrimSpace(p.get("layer"))
		if _, ok := tileLayers[layer]; !ok {
			return errBadRequest(c, "unknown map layer")
		}

		sess, err := loadSession(c, deps)
		if err != nil {
			LoggerFromCtx(c.UserContext()).Error("session unavailable", "error", err)
			return errInternal(c, "session unavailable")
		}
		sess.Set(keyLayer, layer)
		if err := sess.Save(); err != nil {
			LoggerFromCtx(c.UserContext()).Error("save session failed", "error", err)
			return errInternal(c, "session unavailable")
		}

		return c.JSON(fiber.Map{"status": "ok", "layer": layer})
	}
}

// ToggleOldMapHandler sets the historical overlay flag, or flips it when the
// request carries no value.
func ToggleOldMapHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := readParams(c)
		if err != nil {
			return errBadRequest(c, "invalid request body")
		}

		var explicit *bool
		if raw := strings.TrimSpace(p.get("old_map")); raw != "" {
			v, err := strconv.ParseBool(raw)
			if err != nil {
				return errBadRequest(c, "old_map must be true or false")
			}
			explicit = &v
		}

		sess, err := loadSession(c, deps)
		if err != nil {
			LoggerFromCtx(c.UserContext()).Error("session unavailable", "error", err)
			return errInternal(c, "session unavailable")
		}

		enabled := !stateOf(sess, deps).OldMap
		if explicit != nil {
			enabled = *explicit
		}

		sess.Set(keyOldMap, enabled)
		if err := sess.Save(); err != nil {
			LoggerFromCtx(c.UserContext()).Error("save session failed", "error", err)
			return errInternal(c, "session unavailable")
		}

		return c.JSON(fiber.Map{"status": "ok", "old_map": enabled})
	}
}

// EmailReportHandler builds the report for a coordinate and mails it.
func EmailReportHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if deps.Mailer == nil {
			return errUnavailable(c, "email delivery is not configured")
		}

		p, err := readParams(c)
		if err != nil {
			return errBadRequest(c, "invalid request body")
		}

		coord, ok := parseCoordinate(p.get("lat"), p.get("lon"))
		if !ok {
			return errBadRequest(c, invalidCoordMessage)
		}

		ctx := c.UserContext()
		report := deps.Pipeline.Report(ctx, coord)
		if err := deps.Mailer.SendReport(ctx, report); err != nil {
			LoggerFromCtx(ctx).Error("send report failed", "error", err)
			return errInternal(c, "failed to send report")
		}

		return c.JSON(fiber.Map{"status": "sent"})
	}
}

func pairs(coords []types.Coordinate) [][2]float64 {
	out := make([][2]float64, 0, len(coords))
	for _, c := range coords {
		out = append(out, [2]float64{c.Lat, c.Lon})
	}
	return out
}
