package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"Placemap/internal/api/session"
	"Placemap/internal/core/notify"
	"Placemap/internal/core/users"
)

// UserHandler serves registration, login and account routes.
type UserHandler struct {
	users   users.Service
	notify  notify.NotificationGateway
	baseURL string
}

func NewUserHandler(userSvc users.Service, gateway notify.NotificationGateway, baseURL string) *UserHandler {
	return &UserHandler{users: userSvc, notify: gateway, baseURL: baseURL}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleRegister creates an unconfirmed account and mails the confirmation
// link.
// POST /users
func (h *UserHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "Invalid request body")
		return
	}
	user, token, err := h.users.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	h.notify.UserRegistered(user, h.baseURL+"/confirm-email/"+token.EncodeToString())
	w.WriteHeader(http.StatusCreated)
}

// HandleLogin verifies credentials and opens a session.
// POST /login
func (h *UserHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "Invalid request body")
		return
	}
	user, err := h.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if err := session.SetLogin(w, r, user.Email); err != nil {
		handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// HandleLogout drops the session.
// POST /logout
func (h *UserHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := session.ClearLogin(w, r); err != nil {
		handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

type tokenRequest struct {
	Token string `json:"token"`
}

// HandleConfirmEmail consumes a confirmation token.
// POST /confirm-email-address
func (h *UserHandler) HandleConfirmEmail(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "Invalid request body")
		return
	}
	if _, err := h.users.ConfirmEmail(r.Context(), req.Token); err != nil {
		handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

type resetPasswordRequestBody struct {
	Email string `json:"email"`
}

// HandleRequestPasswordReset mails a password reset link. Unknown addresses
// get the same answer as known ones so the endpoint cannot be used to probe
// for accounts.
// POST /users/reset-password-request
func (h *UserHandler) HandleRequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequestBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "Invalid request body")
		return
	}
	token, err := h.users.RequestPasswordReset(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			w.WriteHeader(http.StatusOK)
			return
		}
		handleServiceError(w, err)
		return
	}
	h.notify.UserResetPasswordRequested(req.Email, h.baseURL+"/reset-password/"+token.EncodeToString())
	w.WriteHeader(http.StatusOK)
}

type resetPasswordBody struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// HandleResetPassword consumes a reset token and replaces the password.
// POST /users/reset-password
func (h *UserHandler) HandleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "Invalid request body")
		return
	}
	if err := h.users.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// HandleGetCurrentUser returns the logged-in account.
// GET /users/current
func (h *UserHandler) HandleGetCurrentUser(w http.ResponseWriter, r *http.Request) {
	email := session.CurrentEmail(r)
	if email == "" {
		writeError(w, http.StatusUnauthorized, "Unauthorized", "Not logged in")
		return
	}
	user, err := h.users.GetUser(r.Context(), email, email)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// HandleDeleteCurrentUser deletes the logged-in account and drops the
// session.
// DELETE /users/current
func (h *UserHandler) HandleDeleteCurrentUser(w http.ResponseWriter, r *http.Request) {
	email := session.CurrentEmail(r)
	if email == "" {
		writeError(w, http.StatusUnauthorized, "Unauthorized", "Not logged in")
		return
	}
	if err := h.users.DeleteUser(r.Context(), email, email); err != nil {
		handleServiceError(w, err)
		return
	}
	if err := session.ClearLogin(w, r); err != nil {
		handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}
