package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"Placemap/internal/core/ratings"
	"Placemap/internal/flows"
)

// RatingHandler serves the rating routes.
type RatingHandler struct {
	flows   *flows.Flows
	ratings ratings.Service
}

func NewRatingHandler(f *flows.Flows, ratingSvc ratings.Service) *RatingHandler {
	return &RatingHandler{flows: f, ratings: ratingSvc}
}

// HandleCreate rates a place and reindexes it.
// POST /ratings
func (h *RatingHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req ratings.RateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "Invalid request body")
		return
	}
	rating, err := h.flows.RatePlace(r.Context(), req)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rating.ID)
}

// HandleGet returns ratings with their live comments.
// GET /ratings/{ids}
func (h *RatingHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ids := splitIDs(chi.URLParam(r, "ids"))
	if len(ids) == 0 {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "Missing rating ids")
		return
	}
	result, err := h.ratings.LoadRatingsWithComments(r.Context(), ids)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
