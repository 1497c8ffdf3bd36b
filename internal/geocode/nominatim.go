// Package geocode resolves postal addresses to coordinates via the public
// Nominatim API.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"Placemap/internal/core/geo"
	"Placemap/internal/core/places"
)

// Resolver turns an address into a coordinate. Implementations return false
// when the address cannot be resolved.
type Resolver interface {
	ResolveAddressLatLng(ctx context.Context, address *places.Address) (geo.Point, bool)
}

const defaultBaseURL = "https://nominatim.openstreetmap.org"

type nominatim struct {
	baseURL string
	client  *http.Client
}

// NewNominatim creates a resolver against the given Nominatim endpoint. An
// empty base URL selects the public openstreetmap.org instance.
func NewNominatim(baseURL string) Resolver {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &nominatim{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type nominatimResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

func (n *nominatim) ResolveAddressLatLng(ctx context.Context, address *places.Address) (geo.Point, bool) {
	if address == nil || address.IsEmpty() {
		return geo.Point{}, false
	}

	params := url.Values{}
	params.Set("format", "json")
	params.Set("limit", "1")
	if address.Street != "" {
		params.Set("street", address.Street)
	}
	if address.City != "" {
		params.Set("city", address.City)
	}
	if address.Zip != "" {
		params.Set("postalcode", address.Zip)
	}
	if address.Country != "" {
		params.Set("country", address.Country)
	}

	reqURL := fmt.Sprintf("%s/search?%s", n.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		slog.Error("failed to build geocoding request", "error", err)
		return geo.Point{}, false
	}
	req.Header.Set("User-Agent", "placemap")

	resp, err := n.client.Do(req)
	if err != nil {
		slog.Warn("geocoding request failed", "error", err)
		return geo.Point{}, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Warn("geocoding request rejected", "status", resp.StatusCode)
		return geo.Point{}, false
	}

	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		slog.Warn("failed to decode geocoding response", "error", err)
		return geo.Point{}, false
	}
	if len(results) == 0 {
		return geo.Point{}, false
	}

	lat, errLat := strconv.ParseFloat(results[0].Lat, 64)
	lng, errLng := strconv.ParseFloat(results[0].Lon, 64)
	if errLat != nil || errLng != nil {
		return geo.Point{}, false
	}
	return geo.NewPoint(lat, lng)
}
