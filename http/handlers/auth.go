package handlers

import (
	"net/http"

	apperrors "risehub/errors"
	"risehub/http/response"
	"risehub/logger"
	"risehub/services"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register creates a student account and signs it in.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var in services.RegisterInput
	if err := decode(r, &in); err != nil {
		response.Error(w, err)
		return
	}

	user, err := h.Accounts.Register(r.Context(), in)
	if err != nil {
		response.Error(w, err)
		return
	}
	if err := h.Sessions.SignIn(w, r, user); err != nil {
		response.Error(w, apperrors.E(apperrors.Internal, "failed to start session", err))
		return
	}
	created(w, "Welcome to Rise Hub! Please complete your profile.", user)
}

// Login checks credentials and starts a session.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if err := decode(r, &in); err != nil {
		response.Error(w, err)
		return
	}

	user, err := h.Accounts.Authenticate(r.Context(), in.Username, in.Password)
	if err != nil {
		response.Error(w, err)
		return
	}
	if err := h.Sessions.SignIn(w, r, user); err != nil {
		response.Error(w, apperrors.E(apperrors.Internal, "failed to start session", err))
		return
	}
	ok(w, "Signed in", user)
}

// Logout ends the session.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.Sessions.SignOut(w, r); err != nil {
		logger.Warn("Failed to clear session: %v", err)
	}
	ok(w, "Signed out", nil)
}
