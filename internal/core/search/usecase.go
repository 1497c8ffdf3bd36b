package search

import (
	"sort"

	"Placemap/internal/core/geo"
	"Placemap/internal/core/validate"
)

const (
	// bboxExtendFraction widens the requested box for map browsing so
	// places just beyond the edge are not cut off.
	bboxExtendFraction = 0.1

	// maxInvisibleResults caps how many results from the widened margin,
	// outside the requested box, are reported.
	maxInvisibleResults = 5

	defaultResultLimit = 100
)

// Request is a place search as issued by a client.
type Request struct {
	Bbox  geo.Bbox
	Text  string
	Tags  []string
	Limit int
}

// Response splits results into those inside the requested box and a small
// sample from the widened margin around it.
type Response struct {
	Visible   []IndexedPlace `json:"visible"`
	Invisible []IndexedPlace `json:"invisible"`
}

// Places runs a search against the index. When neither text nor tags narrow
// the query, the box is widened so map browsing shows nearby places; results
// outside the requested box end up in the invisible list.
func Places(index Indexer, req Request) (*Response, error) {
	if !req.Bbox.IsValid() {
		return nil, validate.ErrBbox
	}
	limit := req.Limit
	if limit <= 0 {
		limit = defaultResultLimit
	}

	queryBbox := req.Bbox
	if req.Text == "" && len(req.Tags) == 0 {
		queryBbox = req.Bbox.Extend(bboxExtendFraction)
	}

	hits, err := index.QueryPlaces(Query{
		Bbox: queryBbox,
		Text: req.Text,
		Tags: req.Tags,
	}, limit+maxInvisibleResults)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Ratings.Total() > hits[j].Ratings.Total()
	})

	resp := &Response{
		Visible:   make([]IndexedPlace, 0, len(hits)),
		Invisible: make([]IndexedPlace, 0, maxInvisibleResults),
	}
	for _, hit := range hits {
		if req.Bbox.Contains(hit.Pos) {
			if len(resp.Visible) < limit {
				resp.Visible = append(resp.Visible, hit)
			}
		} else if len(resp.Invisible) < maxInvisibleResults {
			resp.Invisible = append(resp.Invisible, hit)
		}
	}
	return resp, nil
}
