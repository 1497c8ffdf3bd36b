package handlers

import (
	"strconv"
	"strings"

	"Placemap/internal/core/geo"
	"Placemap/internal/core/validate"
)

// parseBbox parses "sw_lat,sw_lng,ne_lat,ne_lng".
func parseBbox(s string) (geo.Bbox, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return geo.Bbox{}, validate.ErrBbox
	}
	coords := make([]float64, 4)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return geo.Bbox{}, validate.ErrBbox
		}
		coords[i] = v
	}
	bbox, ok := geo.NewBbox(
		geo.Point{Lat: coords[0], Lng: coords[1]},
		geo.Point{Lat: coords[2], Lng: coords[3]},
	)
	if !ok {
		return geo.Bbox{}, validate.ErrBbox
	}
	return bbox, nil
}

// splitIDs splits a comma-separated id path segment.
func splitIDs(s string) []string {
	var ids []string
	for _, id := range strings.Split(s, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// splitCommaParam splits a comma-separated query parameter, empty input
// yields nil.
func splitCommaParam(s string) []string {
	if s == "" {
		return nil
	}
	return splitIDs(s)
}

// parseLimit parses an optional positive limit parameter, falling back to
// the given default.
func parseLimit(s string, fallback int) (int, bool) {
	if s == "" {
		return fallback, true
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}
