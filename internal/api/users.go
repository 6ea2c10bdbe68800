package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/matheus3301/wppclone/internal/chat"
	"github.com/matheus3301/wppclone/internal/store"
)

// PhoneRequest is the body of login, logout, and presence calls.
type PhoneRequest struct {
	Phone string `json:"phone"`
}

// RegisterRequest is the body of POST /register.
type RegisterRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// ProfileRequest is the body of PUT /profile. Omitted fields are left unchanged.
type ProfileRequest struct {
	Phone      string  `json:"phone"`
	Name       *string `json:"name,omitempty"`
	Bio        *string `json:"bio,omitempty"`
	ProfilePic *string `json:"profilePic,omitempty"`
}

// UserResponse wraps a user in the success envelope.
type UserResponse struct {
	Success bool       `json:"success"`
	User    store.User `json:"user"`
}

// SuccessResponse is the bare success envelope.
type SuccessResponse struct {
	Success bool `json:"success"`
}

// Register handles POST /register.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !h.decode(w, r, &req) {
		return
	}
	user, err := h.svc.Register(r.Context(), req.Name, req.Phone)
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	h.JSON(w, http.StatusOK, UserResponse{Success: true, User: user})
}

// Login handles POST /login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req PhoneRequest
	if !h.decode(w, r, &req) {
		return
	}
	user, err := h.svc.Login(r.Context(), req.Phone)
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	h.JSON(w, http.StatusOK, UserResponse{Success: true, User: user})
}

// Logout handles POST /logout.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	var req PhoneRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.svc.Logout(r.Context(), req.Phone); err != nil {
		h.Fail(w, r, err)
		return
	}
	h.JSON(w, http.StatusOK, SuccessResponse{Success: true})
}

// Presence handles POST /presence, the client heartbeat.
func (h *Handler) Presence(w http.ResponseWriter, r *http.Request) {
	var req PhoneRequest
	if !h.decode(w, r, &req) {
		return
	}
	user, err := h.svc.Heartbeat(r.Context(), req.Phone)
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	h.JSON(w, http.StatusOK, UserResponse{Success: true, User: user})
}

// ListUsers handles GET /users.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	h.JSON(w, http.StatusOK, h.svc.Users())
}

// GetUser handles GET /users/{phone}.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.svc.User(chi.URLParam(r, "phone"))
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	h.JSON(w, http.StatusOK, user)
}

// UpdateProfile handles PUT /profile.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req ProfileRequest
	if !h.decode(w, r, &req) {
		return
	}
	user, err := h.svc.UpdateProfile(r.Context(), req.Phone, chat.ProfileUpdate{
		Name:       req.Name,
		Bio:        req.Bio,
		ProfilePic: req.ProfilePic,
	})
	if err != nil {
		h.Fail(w, r, err)
		return
	}
	h.JSON(w, http.StatusOK, UserResponse{Success: true, User: user})
}
