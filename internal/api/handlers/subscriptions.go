package handlers

import (
	"encoding/json"
	"net/http"

	"Placemap/internal/api/session"
	"Placemap/internal/core/subscriptions"
)

// SubscriptionHandler serves the bounding box subscription routes. All of
// them require a logged-in session.
type SubscriptionHandler struct {
	subscriptions subscriptions.Service
}

func NewSubscriptionHandler(subSvc subscriptions.Service) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptions: subSvc}
}

type subscribeRequest struct {
	Bbox string `json:"bbox"`
}

// HandleSubscribe replaces the caller's subscriptions with a single new one.
// POST /subscribe-to-bbox
func (h *SubscriptionHandler) HandleSubscribe(w http.ResponseWriter, r *http.Request) {
	email := session.CurrentEmail(r)
	if email == "" {
		writeError(w, http.StatusUnauthorized, "Unauthorized", "Not logged in")
		return
	}
	var req subscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "Invalid request body")
		return
	}
	bbox, err := parseBbox(req.Bbox)
	if err != nil {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "Invalid bbox")
		return
	}
	sub, err := h.subscriptions.SubscribeToBbox(r.Context(), email, bbox)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sub.ID)
}

// HandleUnsubscribeAll removes every subscription of the caller.
// DELETE /unsubscribe-all-bboxes
func (h *SubscriptionHandler) HandleUnsubscribeAll(w http.ResponseWriter, r *http.Request) {
	email := session.CurrentEmail(r)
	if email == "" {
		writeError(w, http.StatusUnauthorized, "Unauthorized", "Not logged in")
		return
	}
	if err := h.subscriptions.UnsubscribeAll(r.Context(), email); err != nil {
		handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// HandleList returns the caller's subscriptions.
// GET /bbox-subscriptions
func (h *SubscriptionHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	email := session.CurrentEmail(r)
	if email == "" {
		writeError(w, http.StatusUnauthorized, "Unauthorized", "Not logged in")
		return
	}
	subs, err := h.subscriptions.SubscriptionsByEmail(r.Context(), email)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if subs == nil {
		subs = []subscriptions.BboxSubscription{}
	}
	writeJSON(w, http.StatusOK, subs)
}
