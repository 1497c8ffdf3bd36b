package bleveidx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Placemap/internal/core/geo"
	"Placemap/internal/core/places"
	"Placemap/internal/core/ratings"
	"Placemap/internal/core/search"
)

func testPlace(id, title string, lat, lng float64, tagList ...string) *places.Place {
	return &places.Place{
		ID:       id,
		Title:    title,
		Location: places.Location{Pos: geo.Point{Lat: lat, Lng: lng}},
		Tags:     tagList,
	}
}

func openTestIndex(t *testing.T) search.Indexer {
	t.Helper()
	idx, err := Open("")
	require.NoError(t, err)
	return idx
}

func TestQueryPlaces_Bbox(t *testing.T) {
	idx := openTestIndex(t)
	require.NoError(t, idx.AddOrUpdatePlace(testPlace("in", "Hofladen", 48.1, 11.5), ratings.AvgRatings{}))
	require.NoError(t, idx.AddOrUpdatePlace(testPlace("out", "Hofladen Süd", -30.0, 11.5), ratings.AvgRatings{}))
	require.NoError(t, idx.Flush())

	bbox, _ := geo.NewBbox(geo.Point{Lat: 47, Lng: 10}, geo.Point{Lat: 49, Lng: 12})
	hits, err := idx.QueryPlaces(search.Query{Bbox: bbox}, 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "in", hits[0].ID)
	assert.Equal(t, "Hofladen", hits[0].Title)
}

func TestQueryPlaces_TagFilter(t *testing.T) {
	idx := openTestIndex(t)
	require.NoError(t, idx.AddOrUpdatePlace(testPlace("p1", "Laden", 48.1, 11.5, "bio", "fair"), ratings.AvgRatings{}))
	require.NoError(t, idx.AddOrUpdatePlace(testPlace("p2", "Markt", 48.2, 11.6, "bio"), ratings.AvgRatings{}))
	require.NoError(t, idx.Flush())

	bbox, _ := geo.NewBbox(geo.Point{Lat: 47, Lng: 10}, geo.Point{Lat: 49, Lng: 12})
	hits, err := idx.QueryPlaces(search.Query{Bbox: bbox, Tags: []string{"bio", "fair"}}, 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "p1", hits[0].ID)
}

func TestQueryPlaces_TextSearch(t *testing.T) {
	idx := openTestIndex(t)
	require.NoError(t, idx.AddOrUpdatePlace(testPlace("cafe", "Repair Cafe", 48.1, 11.5), ratings.AvgRatings{}))
	require.NoError(t, idx.AddOrUpdatePlace(testPlace("shop", "Unverpackt Laden", 48.2, 11.6), ratings.AvgRatings{}))
	require.NoError(t, idx.Flush())

	bbox, _ := geo.NewBbox(geo.Point{Lat: 47, Lng: 10}, geo.Point{Lat: 49, Lng: 12})
	hits, err := idx.QueryPlaces(search.Query{Bbox: bbox, Text: "repair"}, 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "cafe", hits[0].ID)
}

func TestQueryPlaces_SortedByRating(t *testing.T) {
	idx := openTestIndex(t)
	require.NoError(t, idx.AddOrUpdatePlace(testPlace("low", "A", 48.1, 11.5), ratings.AvgRatings{Diversity: 0.5}))
	require.NoError(t, idx.AddOrUpdatePlace(testPlace("high", "B", 48.2, 11.6), ratings.AvgRatings{Diversity: 2.0}))
	require.NoError(t, idx.Flush())

	bbox, _ := geo.NewBbox(geo.Point{Lat: 47, Lng: 10}, geo.Point{Lat: 49, Lng: 12})
	hits, err := idx.QueryPlaces(search.Query{Bbox: bbox}, 10)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "high", hits[0].ID)
}

func TestRemovePlaceByID(t *testing.T) {
	idx := openTestIndex(t)
	require.NoError(t, idx.AddOrUpdatePlace(testPlace("p1", "Laden", 48.1, 11.5), ratings.AvgRatings{}))
	require.NoError(t, idx.Flush())
	require.NoError(t, idx.RemovePlaceByID("p1"))
	require.NoError(t, idx.Flush())

	bbox, _ := geo.NewBbox(geo.Point{Lat: 47, Lng: 10}, geo.Point{Lat: 49, Lng: 12})
	hits, err := idx.QueryPlaces(search.Query{Bbox: bbox}, 10)
	require.NoError(t, err)
	assert.Empty(t, hits)
}
