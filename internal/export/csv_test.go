package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Placemap/internal/core/geo"
	"Placemap/internal/core/places"
	"Placemap/internal/core/ratings"
	"Placemap/internal/core/tags"
)

func TestWritePlacesCSV(t *testing.T) {
	osmNode := int64(4900247)
	entries := []Entry{
		{
			Place: places.Place{
				ID:          "be93eff2c0fa422fb1d2b9ad94b1b9b3",
				License:     "CC0-1.0",
				Revision:    3,
				Created:     places.Activity{At: time.Unix(1_700_000_000, 0).UTC()},
				OSMNode:     &osmNode,
				Title:       "Unverpackt-Laden",
				Description: "Einkaufen ohne Verpackung, \"plastikfrei\"",
				Location: places.Location{
					Pos: geo.Point{Lat: 48.775, Lng: 9.182},
					Address: &places.Address{
						Street:  "Hauptstr. 1",
						Zip:     "70173",
						City:    "Stuttgart",
						Country: "Germany",
					},
				},
				Links: &places.Links{Homepage: "https://example.org"},
				Tags:  []string{tags.CategoryNonProfit.ID, "bio", "unverpackt"},
			},
			AvgRatings: ratings.AvgRatings{Diversity: 1, Fairness: 2},
		},
		{
			Place: places.Place{
				ID:       "0a1b2c3d4e5f60718293a4b5c6d7e8f9",
				License:  "ODbL-1.0",
				Revision: 1,
				Created:  places.Activity{At: time.Unix(1_700_000_100, 0).UTC()},
				Title:    "Repair Cafe",
				Location: places.Location{Pos: geo.Point{Lat: -33.9, Lng: 151.2}},
				Tags:     []string{"repair"},
			},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WritePlacesCSV(&buf, entries))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, []string{
		"id", "osm_node", "created", "version", "title", "description",
		"lat", "lng", "street", "zip", "city", "country", "homepage",
		"categories", "tags", "license", "avg_rating",
	}, records[0])

	first := records[1]
	assert.Equal(t, "be93eff2c0fa422fb1d2b9ad94b1b9b3", first[0])
	assert.Equal(t, "4900247", first[1])
	assert.Equal(t, "1700000000", first[2])
	assert.Equal(t, "3", first[3])
	assert.Equal(t, "Unverpackt-Laden", first[4])
	assert.Equal(t, "Einkaufen ohne Verpackung, \"plastikfrei\"", first[5])
	assert.Equal(t, "48.775", first[6])
	assert.Equal(t, "9.182", first[7])
	assert.Equal(t, "Hauptstr. 1", first[8])
	assert.Equal(t, "70173", first[9])
	assert.Equal(t, "Stuttgart", first[10])
	assert.Equal(t, "Germany", first[11])
	assert.Equal(t, "https://example.org", first[12])
	assert.Equal(t, tags.CategoryNonProfit.ID, first[13])
	assert.Equal(t, "bio,unverpackt", first[14])
	assert.Equal(t, "CC0-1.0", first[15])
	assert.Equal(t, "0.5", first[16])

	second := records[2]
	assert.Equal(t, "", second[1], "missing OSM node stays empty")
	assert.Equal(t, "", second[8])
	assert.Equal(t, "", second[12])
	assert.Equal(t, "", second[13])
	assert.Equal(t, "repair", second[14])
	assert.Equal(t, "0", second[16])
}

func TestWritePlacesCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePlacesCSV(&buf, nil))
	assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte("\n")), "header row only")
}
