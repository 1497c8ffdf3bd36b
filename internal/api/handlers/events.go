package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"Placemap/internal/api/middleware"
	"Placemap/internal/core/events"
	"Placemap/internal/flows"
)

// EventHandler serves the event routes.
type EventHandler struct {
	flows  *flows.Flows
	events events.Service
}

func NewEventHandler(f *flows.Flows, eventSvc events.Service) *EventHandler {
	return &EventHandler{flows: f, events: eventSvc}
}

// HandleCreate creates an event. A bearer token binds the write to an
// organization for tag authorization.
// POST /events
func (h *EventHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req events.EventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "Invalid request body")
		return
	}
	event, err := h.flows.CreateEvent(r.Context(), req, middleware.GetOrg(r))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, event.ID)
}

// HandleUpdate overwrites an event.
// PUT /events/{ids}
func (h *EventHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req events.EventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "Invalid request body")
		return
	}
	event, err := h.flows.UpdateEvent(r.Context(), chi.URLParam(r, "ids"), req, middleware.GetOrg(r))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, event.ID)
}

// HandleGet returns a single event.
// GET /events/{ids}
func (h *EventHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	event, err := h.events.GetEvent(r.Context(), chi.URLParam(r, "ids"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

// HandleList returns non-archived events matching the query parameters.
// GET /events?bbox=&tag=&start_min=&start_max=&created_by=&limit=
func (h *EventHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	q := events.EventQuery{
		Tags:      splitCommaParam(params.Get("tag")),
		CreatedBy: params.Get("created_by"),
	}
	if bboxParam := params.Get("bbox"); bboxParam != "" {
		bbox, err := parseBbox(bboxParam)
		if err != nil {
			writeError(w, http.StatusBadRequest, "InvalidRequest", "Invalid bbox parameter")
			return
		}
		q.Bbox = &bbox
	}
	var ok bool
	if q.StartMin, ok = parseUnixParam(params.Get("start_min")); !ok {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "Invalid start_min parameter")
		return
	}
	if q.StartMax, ok = parseUnixParam(params.Get("start_max")); !ok {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "Invalid start_max parameter")
		return
	}
	if q.Limit, ok = parseLimit(params.Get("limit"), 0); !ok {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "Invalid limit parameter")
		return
	}
	result, err := h.events.QueryEvents(r.Context(), q)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if result == nil {
		result = []events.Event{}
	}
	writeJSON(w, http.StatusOK, result)
}

// HandleArchive archives the listed events.
// POST /events/{ids}/archive
func (h *EventHandler) HandleArchive(w http.ResponseWriter, r *http.Request) {
	ids := splitIDs(chi.URLParam(r, "ids"))
	if len(ids) == 0 {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "Missing event ids")
		return
	}
	changed, err := h.events.ArchiveEvents(r.Context(), ids)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reviewResponse{Changed: changed})
}

// HandleDelete removes an event. Only organizations may delete, and only
// events carrying one of their owned tags.
// DELETE /events/{ids}
func (h *EventHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	org := middleware.GetOrg(r)
	if org == nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized", "An organization API token is required")
		return
	}
	if err := h.events.DeleteEvent(r.Context(), chi.URLParam(r, "ids"), org.OwnedTags); err != nil {
		handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func parseUnixParam(s string) (*time.Time, bool) {
	if s == "" {
		return nil, true
	}
	unix, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, false
	}
	t := time.Unix(unix, 0).UTC()
	return &t, true
}
