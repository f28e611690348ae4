package handlers

import (
	"net/http"
	"time"

	"github.com/rentcare/rentcare-gobackend/internal/models"
	"github.com/rentcare/rentcare-gobackend/internal/services"
)

type AuthHandler struct {
	service *services.AuthService
	users   *services.UserService
}

func NewAuthHandler(service *services.AuthService, users *services.UserService) *AuthHandler {
	return &AuthHandler{service: service, users: users}
}

type loginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// Login handles POST /api/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	result, err := h.service.Login(r.Context(), req.Identifier, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Logout handles POST /api/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Logout(r.Context(), claimsFrom(r)); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type sessionResponse struct {
	Role       string       `json:"role"`
	OwnerID    string       `json:"ownerId,omitempty"`
	PropertyID string       `json:"propertyId,omitempty"`
	FlatNo     string       `json:"flatNo,omitempty"`
	ExpiresAt  *time.Time   `json:"expiresAt,omitempty"`
	User       *models.User `json:"user,omitempty"`
}

// Session handles GET /api/session. Owners also get their profile.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	resp := sessionResponse{
		Role:       claims.Role,
		OwnerID:    claims.OwnerID,
		PropertyID: claims.PropertyID,
		FlatNo:     claims.FlatNo,
	}
	if claims.ExpiresAt != nil {
		expires := claims.ExpiresAt.Time
		resp.ExpiresAt = &expires
	}
	if claims.IsOwner() {
		user, err := h.users.GetUser(r.Context(), claims.OwnerID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		resp.User = user
	}
	writeJSON(w, http.StatusOK, resp)
}

// Ping handles GET /api/ping
func Ping(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message":   "Backend pong!",
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
	})
}
