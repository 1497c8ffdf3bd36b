package handlers

import (
	_ "embed"
	"net/http"

	"github.com/go-chi/chi/v5"

	"Placemap/internal/core/places"
	"Placemap/internal/core/tags"
)

//go:embed api.yaml
var apiSpec []byte

// defaultPopularTagsLimit bounds the most-popular-tags query when the client
// gives no limit.
const defaultPopularTagsLimit = 20

// ServerHandler serves metadata, statistics and the tag/category lookups.
type ServerHandler struct {
	places  places.Service
	tags    tags.Repository
	version string
}

func NewServerHandler(placeSvc places.Service, tagRepo tags.Repository, version string) *ServerHandler {
	return &ServerHandler{places: placeSvc, tags: tagRepo, version: version}
}

// HandleVersion returns the server version as plain text.
// GET /server/version
func (h *ServerHandler) HandleVersion(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(h.version))
}

// HandleAPISpec serves the OpenAPI document.
// GET /server/api.yaml
func (h *ServerHandler) HandleAPISpec(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	w.Write(apiSpec)
}

// HandleCountEntries returns the number of visible places.
// GET /count/entries
func (h *ServerHandler) HandleCountEntries(w http.ResponseWriter, r *http.Request) {
	count, err := h.places.CountPlaces(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, count)
}

// HandleCountTags returns the number of known tags.
// GET /count/tags
func (h *ServerHandler) HandleCountTags(w http.ResponseWriter, r *http.Request) {
	count, err := h.tags.CountTags(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, count)
}

// HandleTags returns every known tag id.
// GET /tags
func (h *ServerHandler) HandleTags(w http.ResponseWriter, r *http.Request) {
	all, err := h.tags.AllTags(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	ids := make([]string, len(all))
	for i, t := range all {
		ids[i] = t.ID
	}
	writeJSON(w, http.StatusOK, ids)
}

// HandleMostPopularTags returns tags by usage on current place revisions.
// GET /most-popular-tags?limit=
func (h *ServerHandler) HandleMostPopularTags(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(r.URL.Query().Get("limit"), defaultPopularTagsLimit)
	if !ok {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "Invalid limit parameter")
		return
	}
	popular, err := h.tags.MostPopularTags(r.Context(), limit)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if popular == nil {
		popular = []tags.TagFrequency{}
	}
	writeJSON(w, http.StatusOK, popular)
}

// HandleCategoryIDs returns the ids of the built-in categories.
// GET /categories
func (h *ServerHandler) HandleCategoryIDs(w http.ResponseWriter, r *http.Request) {
	all := tags.AllCategories()
	ids := make([]string, len(all))
	for i, c := range all {
		ids[i] = c.ID
	}
	writeJSON(w, http.StatusOK, ids)
}

// HandleCategories resolves category ids to category objects.
// GET /categories/{ids}
func (h *ServerHandler) HandleCategories(w http.ResponseWriter, r *http.Request) {
	ids := splitIDs(chi.URLParam(r, "ids"))
	if len(ids) == 0 {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "Missing category ids")
		return
	}
	categories := make([]tags.Category, 0, len(ids))
	for _, id := range ids {
		c, ok := tags.CategoryByID(id)
		if !ok {
			writeError(w, http.StatusNotFound, "NotFound", "Unknown category id")
			return
		}
		categories = append(categories, c)
	}
	writeJSON(w, http.StatusOK, categories)
}
