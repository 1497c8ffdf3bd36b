// Package bleveidx implements the place search index on bleve.
package bleveidx

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"

	"Placemap/internal/core/places"
	"Placemap/internal/core/ratings"
	"Placemap/internal/core/search"
)

type placeDoc struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Lat          float64  `json:"lat"`
	Lng          float64  `json:"lng"`
	Tags         []string `json:"tags"`
	Diversity    float64  `json:"diversity"`
	Renewable    float64  `json:"renewable"`
	Fairness     float64  `json:"fairness"`
	Humanity     float64  `json:"humanity"`
	Transparency float64  `json:"transparency"`
	Solidarity   float64  `json:"solidarity"`
	TotalRating  float64  `json:"total_rating"`
}

type placeIndex struct {
	mu    sync.Mutex
	index bleve.Index
	batch *bleve.Batch
}

// Compile-time interface compliance check.
var _ search.Indexer = (*placeIndex)(nil)

// Open opens the place index at the given directory, creating it when
// missing. An empty path yields a volatile in-memory index.
func Open(path string) (search.Indexer, error) {
	var index bleve.Index
	var err error
	if path == "" {
		index, err = bleve.NewMemOnly(buildMapping())
	} else if _, statErr := os.Stat(path); errors.Is(statErr, os.ErrNotExist) {
		index, err = bleve.New(path, buildMapping())
	} else {
		index, err = bleve.Open(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open search index: %w", err)
	}
	return &placeIndex{index: index, batch: index.NewBatch()}, nil
}

func buildMapping() *mapping.IndexMappingImpl {
	m := bleve.NewIndexMapping()
	doc := bleve.NewDocumentMapping()

	text := bleve.NewTextFieldMapping()
	doc.AddFieldMappingsAt("title", text)
	doc.AddFieldMappingsAt("description", text)

	tag := bleve.NewTextFieldMapping()
	tag.Analyzer = keyword.Name
	doc.AddFieldMappingsAt("tags", tag)

	num := bleve.NewNumericFieldMapping()
	for _, f := range []string{
		"lat", "lng", "total_rating",
		"diversity", "renewable", "fairness", "humanity", "transparency", "solidarity",
	} {
		doc.AddFieldMappingsAt(f, num)
	}

	m.DefaultMapping = doc
	return m
}

func (x *placeIndex) AddOrUpdatePlace(place *places.Place, avg ratings.AvgRatings) error {
	doc := placeDoc{
		Title:        place.Title,
		Description:  place.Description,
		Lat:          place.Location.Pos.Lat,
		Lng:          place.Location.Pos.Lng,
		Tags:         place.Tags,
		Diversity:    avg.Diversity,
		Renewable:    avg.Renewable,
		Fairness:     avg.Fairness,
		Humanity:     avg.Humanity,
		Transparency: avg.Transparency,
		Solidarity:   avg.Solidarity,
		TotalRating:  avg.Total(),
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	if err := x.batch.Index(place.ID, doc); err != nil {
		return fmt.Errorf("failed to index place %s: %w", place.ID, err)
	}
	return nil
}

func (x *placeIndex) RemovePlaceByID(id string) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.batch.Delete(id)
	return nil
}

func (x *placeIndex) Flush() error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.batch.Size() == 0 {
		return nil
	}
	if err := x.index.Batch(x.batch); err != nil {
		return fmt.Errorf("failed to flush index batch: %w", err)
	}
	x.batch = x.index.NewBatch()
	return nil
}

func (x *placeIndex) QueryPlaces(q search.Query, limit int) ([]search.IndexedPlace, error) {
	var clauses []query.Query
	clauses = append(clauses, bboxQuery(q))

	if q.Text != "" {
		title := bleve.NewMatchQuery(q.Text)
		title.SetField("title")
		title.SetBoost(2.0)
		description := bleve.NewMatchQuery(q.Text)
		description.SetField("description")
		clauses = append(clauses, bleve.NewDisjunctionQuery(title, description))
	}
	for _, t := range q.Tags {
		tq := bleve.NewTermQuery(t)
		tq.SetField("tags")
		clauses = append(clauses, tq)
	}

	req := bleve.NewSearchRequestOptions(bleve.NewConjunctionQuery(clauses...), limit, 0, false)
	req.Fields = []string{"*"}
	req.SortBy([]string{"-total_rating"})

	res, err := x.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("failed to search index: %w", err)
	}

	result := make([]search.IndexedPlace, 0, len(res.Hits))
	for _, hit := range res.Hits {
		result = append(result, hitToPlace(hit.ID, hit.Fields))
	}
	return result, nil
}

// bboxQuery builds the geographic filter, splitting boxes that wrap the
// antimeridian into two longitude ranges.
func bboxQuery(q search.Query) query.Query {
	latMin, latMax := q.Bbox.SouthWest.Lat, q.Bbox.NorthEast.Lat
	lat := bleve.NewNumericRangeInclusiveQuery(&latMin, &latMax, boolPtr(true), boolPtr(true))
	lat.SetField("lat")

	if q.Bbox.Wraps() {
		west := -180.0
		east := 180.0
		lngLow := bleve.NewNumericRangeInclusiveQuery(&west, &q.Bbox.NorthEast.Lng, boolPtr(true), boolPtr(true))
		lngLow.SetField("lng")
		lngHigh := bleve.NewNumericRangeInclusiveQuery(&q.Bbox.SouthWest.Lng, &east, boolPtr(true), boolPtr(true))
		lngHigh.SetField("lng")
		return bleve.NewConjunctionQuery(lat, bleve.NewDisjunctionQuery(lngLow, lngHigh))
	}

	lng := bleve.NewNumericRangeInclusiveQuery(&q.Bbox.SouthWest.Lng, &q.Bbox.NorthEast.Lng, boolPtr(true), boolPtr(true))
	lng.SetField("lng")
	return bleve.NewConjunctionQuery(lat, lng)
}

func hitToPlace(id string, fields map[string]interface{}) search.IndexedPlace {
	p := search.IndexedPlace{ID: id}
	p.Title, _ = fields["title"].(string)
	p.Description, _ = fields["description"].(string)
	p.Pos.Lat = numField(fields, "lat")
	p.Pos.Lng = numField(fields, "lng")
	p.Tags = stringsField(fields, "tags")
	p.Ratings = ratings.AvgRatings{
		Diversity:    numField(fields, "diversity"),
		Renewable:    numField(fields, "renewable"),
		Fairness:     numField(fields, "fairness"),
		Humanity:     numField(fields, "humanity"),
		Transparency: numField(fields, "transparency"),
		Solidarity:   numField(fields, "solidarity"),
	}
	return p
}

func numField(fields map[string]interface{}, name string) float64 {
	v, _ := fields[name].(float64)
	return v
}

// stringsField copes with bleve flattening single-element arrays to scalars.
func stringsField(fields map[string]interface{}, name string) []string {
	switch v := fields[name].(type) {
	case string:
		return []string{v}
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func boolPtr(b bool) *bool {
	return &b
}
