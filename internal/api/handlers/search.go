package handlers

import (
	"net/http"

	"Placemap/internal/core/search"
	"Placemap/internal/core/tags"
)

// SearchHandler serves the place search route.
type SearchHandler struct {
	index search.Indexer
}

func NewSearchHandler(index search.Indexer) *SearchHandler {
	return &SearchHandler{index: index}
}

// HandleSearch runs a full-text/geo search over the place index.
// GET /search?bbox=&text=&tags=&categories=&limit=
func (h *SearchHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	bbox, err := parseBbox(params.Get("bbox"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "Invalid bbox parameter")
		return
	}
	limit, ok := parseLimit(params.Get("limit"), 0)
	if !ok {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "Invalid limit parameter")
		return
	}
	// Category filters ride along as tags: category ids are regular members
	// of a place's tag list.
	tagFilter := tags.Normalize(tags.MergeCategoryIDs(
		splitCommaParam(params.Get("categories")),
		splitCommaParam(params.Get("tags")),
	))

	resp, err := search.Places(h.index, search.Request{
		Bbox:  bbox,
		Text:  params.Get("text"),
		Tags:  tagFilter,
		Limit: limit,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
