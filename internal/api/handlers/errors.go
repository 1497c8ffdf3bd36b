package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"Placemap/internal/core/events"
	"Placemap/internal/core/orgs"
	"Placemap/internal/core/places"
	"Placemap/internal/core/ratings"
	"Placemap/internal/core/users"
	"Placemap/internal/core/validate"
)

// apiError is the JSON error envelope.
type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(apiError{Error: code, Message: message}); err != nil {
		log.Printf("Failed to encode error response: %v", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Headers are already sent, nothing sensible left to do.
		log.Printf("Failed to encode response: %v", err)
	}
}

// handleServiceError converts service errors to HTTP responses.
func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, users.ErrCredentials), errors.Is(err, users.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "Unauthorized", err.Error())
	case errors.Is(err, users.ErrUserExists):
		writeError(w, http.StatusBadRequest, "UserExists", "A user with this email address already exists")
	case errors.Is(err, users.ErrEmailNotConfirmed):
		writeError(w, http.StatusForbidden, "EmailNotConfirmed", "The email address has not been confirmed yet")
	case errors.Is(err, users.ErrForbidden):
		writeError(w, http.StatusForbidden, "Forbidden", "You do not have permission to perform this action")
	case errors.Is(err, orgs.ErrOwnedTag):
		writeError(w, http.StatusForbidden, "OwnedTag", "The change touches a tag owned by an organization that did not authorize it")
	case isParameterError(err):
		writeError(w, http.StatusBadRequest, "InvalidRequest", err.Error())
	case isNotFound(err):
		writeError(w, http.StatusNotFound, "NotFound", err.Error())
	default:
		log.Printf("API handler error: %v", err)
		writeError(w, http.StatusInternalServerError, "InternalServerError", "An internal error occurred")
	}
}

func isParameterError(err error) bool {
	for _, sentinel := range []error{
		validate.ErrInvalidPosition,
		validate.ErrBbox,
		validate.ErrEmail,
		validate.ErrPhone,
		validate.ErrURL,
		validate.ErrContact,
		validate.ErrRegistrationType,
		validate.ErrCreatorEmail,
		validate.ErrInvalidOpeningHours,
		validate.ErrLicense,
		validate.ErrTitle,
		events.ErrEndBeforeStart,
		ratings.ErrValue,
		ratings.ErrContext,
		users.ErrPassword,
		users.ErrTokenInvalid,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

func isNotFound(err error) bool {
	return errors.Is(err, places.ErrNotFound) ||
		errors.Is(err, events.ErrNotFound) ||
		errors.Is(err, ratings.ErrNotFound) ||
		errors.Is(err, users.ErrNotFound) ||
		errors.Is(err, orgs.ErrNotFound)
}
