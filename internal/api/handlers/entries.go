package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"Placemap/internal/api/middleware"
	"Placemap/internal/api/session"
	"Placemap/internal/core/places"
	"Placemap/internal/core/ratings"
	"Placemap/internal/core/search"
	"Placemap/internal/export"
	"Placemap/internal/flows"
)

// exportQueryLimit bounds how many places one CSV export pulls from the
// index.
const exportQueryLimit = 10_000

// EntryHandler serves the place routes.
type EntryHandler struct {
	flows   *flows.Flows
	places  places.Service
	ratings ratings.Service
	index   search.Indexer
}

func NewEntryHandler(f *flows.Flows, placeSvc places.Service, ratingSvc ratings.Service, index search.Indexer) *EntryHandler {
	return &EntryHandler{flows: f, places: placeSvc, ratings: ratingSvc, index: index}
}

// HandleCreate creates a place at revision 1.
// POST /entries
func (h *EntryHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req places.NewPlaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "Invalid request body")
		return
	}
	place, err := h.flows.CreatePlace(r.Context(), req, session.CurrentEmail(r), middleware.GetOrg(r))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, place.ID)
}

// HandleUpdate stores the next revision of a place.
// PUT /entries/{ids}
func (h *EntryHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req places.UpdatePlaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "Invalid request body")
		return
	}
	place, err := h.flows.UpdatePlace(r.Context(), chi.URLParam(r, "ids"), req, session.CurrentEmail(r), middleware.GetOrg(r))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, place.ID)
}

type entryResponse struct {
	places.PlaceRevision
	AvgRatings ratings.AvgRatings `json:"avgRatings"`
}

// HandleGet returns the current revisions of the given places.
// GET /entries/{ids}
func (h *EntryHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ids := splitIDs(chi.URLParam(r, "ids"))
	if len(ids) == 0 {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "Missing entry ids")
		return
	}
	revs, err := h.places.GetPlaces(r.Context(), ids)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if len(revs) == 0 {
		writeError(w, http.StatusNotFound, "NotFound", "No matching entries")
		return
	}
	entries := make([]entryResponse, len(revs))
	for i := range revs {
		avg, err := h.ratings.AvgRatingsForPlace(r.Context(), revs[i].ID)
		if err != nil {
			handleServiceError(w, err)
			return
		}
		entries[i] = entryResponse{PlaceRevision: revs[i], AvgRatings: avg}
	}
	writeJSON(w, http.StatusOK, entries)
}

// HandleHistory returns the full revision and review history of a place.
// GET /entries/{ids}/history
func (h *EntryHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	history, err := h.places.GetPlaceHistory(r.Context(), chi.URLParam(r, "ids"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

type reviewRequest struct {
	Status  string `json:"status"`
	Comment string `json:"comment,omitempty"`
}

type reviewResponse struct {
	Changed int `json:"changed"`
}

// HandleReview applies a moderation decision to the listed places.
// POST /entries/{ids}/review
func (h *EntryHandler) HandleReview(w http.ResponseWriter, r *http.Request) {
	ids := splitIDs(chi.URLParam(r, "ids"))
	if len(ids) == 0 {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "Missing entry ids")
		return
	}
	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "Invalid request body")
		return
	}
	status, ok := places.ParseReviewStatus(req.Status)
	if !ok {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "Unknown review status")
		return
	}
	reviewer := middleware.GetUser(r)
	changed, err := h.flows.ReviewPlaces(r.Context(), ids, status, reviewer.Email, "", req.Comment)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reviewResponse{Changed: changed})
}

// HandleDuplicates reports suspected duplicate pairs over the whole
// collection.
// GET /duplicates
func (h *EntryHandler) HandleDuplicates(w http.ResponseWriter, r *http.Request) {
	duplicates, err := h.places.FindDuplicates(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if duplicates == nil {
		duplicates = []places.Duplicate{}
	}
	writeJSON(w, http.StatusOK, duplicates)
}

// HandleExportCSV streams the visible places inside a bounding box as CSV.
// GET /export/entries.csv?bbox=sw_lat,sw_lng,ne_lat,ne_lng
func (h *EntryHandler) HandleExportCSV(w http.ResponseWriter, r *http.Request) {
	bbox, err := parseBbox(r.URL.Query().Get("bbox"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "Invalid bbox parameter")
		return
	}
	indexed, err := h.index.QueryPlaces(search.Query{Bbox: bbox}, exportQueryLimit)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	ids := make([]string, len(indexed))
	avgByID := make(map[string]ratings.AvgRatings, len(indexed))
	for i := range indexed {
		ids[i] = indexed[i].ID
		avgByID[indexed[i].ID] = indexed[i].Ratings
	}
	revs, err := h.places.GetPlaces(r.Context(), ids)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	entries := make([]export.Entry, 0, len(revs))
	for i := range revs {
		if !revs[i].Status.IsVisible() {
			continue
		}
		entries = append(entries, export.Entry{Place: revs[i].Place, AvgRatings: avgByID[revs[i].ID]})
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="entries.csv"`)
	if err := export.WritePlacesCSV(w, entries); err != nil {
		// The header is out already, logging is all that is left.
		log.Printf("CSV export aborted: %v", err)
	}
}
