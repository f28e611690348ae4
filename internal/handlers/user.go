package handlers

import (
	"net/http"

	"github.com/rentcare/rentcare-gobackend/internal/models"
	"github.com/rentcare/rentcare-gobackend/internal/services"
)

type UserHandler struct {
	service *services.UserService
}

func NewUserHandler(service *services.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// CreateUser handles POST /users
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	if !claimsFrom(r).IsOwner() {
		writeError(w, r, services.ErrForbidden)
		return
	}

	var user models.User
	if err := decodeJSON(w, r, &user); err != nil {
		writeError(w, r, err)
		return
	}

	created, err := h.service.CreateUser(r.Context(), &user)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// GetUsers handles GET /users
func (h *UserHandler) GetUsers(w http.ResponseWriter, r *http.Request) {
	if !claimsFrom(r).IsOwner() {
		writeError(w, r, services.ErrForbidden)
		return
	}

	users, err := h.service.UserList(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}
