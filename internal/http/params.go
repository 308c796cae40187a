package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"github.com/shanehull/digmap/internal/store"
	"github.com/shanehull/digmap/internal/types"
)

// params reads request fields from either a JSON object body or form values.
type params struct {
	c    *fiber.Ctx
	json map[string]any
}

func isJSON(c *fiber.Ctx) bool {
	return strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON)
}

func readParams(c *fiber.Ctx) (*params, error) {
	p := &params{c: c}
	if !isJSON(c) {
		return p, nil
	}

	dec := json.NewDecoder(bytes.NewReader(c.Body()))
	dec.UseNumber()
	if err := dec.Decode(&p.json); err != nil {
		return nil, fmt.Errorf("decode JSON body: %w", err)
	}
	if p.json == nil {
		p.json = map[string]any{}
	}
	return p, nil
}

// get returns the field as text. Nested JSON values are re-encoded. Form
// values are copied out of the request buffer, which fasthttp reuses.
func (p *params) get(key string) string {
	if p.json == nil {
		return utils.CopyString(p.c.FormValue(key))
	}

	switch v := p.json[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

func parseCoordinate(latRaw, lonRaw string) (types.Coordinate, bool) {
	lat, err := strconv.ParseFloat(strings.TrimSpace(latRaw), 64)
	if err != nil {
		return types.Coordinate{}, false
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(lonRaw), 64)
	if err != nil {
		return types.Coordinate{}, false
	}

	coord := types.Coordinate{Lat: lat, Lon: lon}
	return coord, coord.Valid()
}

// parseRoute decodes a JSON array of [lat, lon] pairs.
func parseRoute(raw string) (store.Route, error) {
	var pairs [][]float64
	if err := json.Unmarshal([]byte(raw), &pairs); err != nil {
		return nil, fmt.Errorf("decode route: %w", err)
	}

	route := make(store.Route, 0, len(pairs))
	for i, pair := range pairs {
		if len(pair) != 2 {
			return nil, fmt.Errorf("point %d: expected [lat, lon]", i)
		}
		coord := types.Coordinate{Lat: pair[0], Lon: pair[1]}
		if !coord.Valid() {
			return nil, fmt.Errorf("point %d: coordinate out of range", i)
		}
		route = append(route, coord)
	}
	return route, nil
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
