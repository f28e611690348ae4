package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/rentcare/rentcare-gobackend/internal/models"
	"github.com/rentcare/rentcare-gobackend/internal/services"
)

type PropertyHandler struct {
	service *services.PropertyService
}

func NewPropertyHandler(service *services.PropertyService) *PropertyHandler {
	return &PropertyHandler{service: service}
}

// ownedProperty loads the property and checks that the caller owns it.
func (h *PropertyHandler) ownedProperty(r *http.Request, id string) (*models.Property, error) {
	claims := claimsFrom(r)
	if !claims.IsOwner() {
		return nil, services.ErrForbidden
	}
	property, err := h.service.Get(r.Context(), id)
	if err != nil {
		return nil, err
	}
	if property.OwnerID != claims.OwnerID {
		return nil, services.ErrForbidden
	}
	return property, nil
}

// GetProperties handles GET /properties?ownerId=
func (h *PropertyHandler) GetProperties(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	if !claims.IsOwner() {
		writeError(w, r, services.ErrForbidden)
		return
	}
	ownerID := r.URL.Query().Get("ownerId")
	if ownerID == "" {
		ownerID = claims.OwnerID
	}
	if ownerID != claims.OwnerID {
		writeError(w, r, services.ErrForbidden)
		return
	}

	properties, err := h.service.List(r.Context(), ownerID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, properties)
}

// CreateProperty handles POST /properties
func (h *PropertyHandler) CreateProperty(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r)
	if !claims.IsOwner() {
		writeError(w, r, services.ErrForbidden)
		return
	}

	var body models.Property
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	if body.OwnerID != "" && body.OwnerID != claims.OwnerID {
		writeError(w, r, services.ErrForbidden)
		return
	}

	property, err := h.service.Create(r.Context(), claims.OwnerID, body.Name, body.Location)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, property)
}

// GetProperty handles GET /properties/{id}. Tenants get a view holding only
// their own record and requests.
func (h *PropertyHandler) GetProperty(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	claims := claimsFrom(r)

	if claims.Role == models.RoleTenant {
		if claims.PropertyID != id {
			writeError(w, r, services.ErrForbidden)
			return
		}
		property, err := h.service.Get(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, property.ViewForTenant(claims.FlatNo))
		return
	}

	property, err := h.ownedProperty(r, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, property)
}

// ReplaceProperty handles PUT /properties/{id}
func (h *PropertyHandler) ReplaceProperty(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if _, err := h.ownedProperty(r, id); err != nil {
		writeError(w, r, err)
		return
	}

	var body models.Property
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, r, err)
		return
	}

	property, err := h.service.Replace(r.Context(), id, &body)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, property)
}

type detailsRequest struct {
	Name     string `json:"name"`
	Location string `json:"location"`
}

// UpdatePropertyDetails handles PATCH /properties/{id}
func (h *PropertyHandler) UpdatePropertyDetails(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if _, err := h.ownedProperty(r, id); err != nil {
		writeError(w, r, err)
		return
	}

	var body detailsRequest
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, r, err)
		return
	}

	property, err := h.service.UpdateDetails(r.Context(), id, body.Name, body.Location)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, property)
}

// DeleteProperty handles DELETE /properties/{id}
func (h *PropertyHandler) DeleteProperty(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if _, err := h.ownedProperty(r, id); err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Property deleted successfully"})
}

// AddTenant handles POST /properties/{id}/tenants
func (h *PropertyHandler) AddTenant(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if _, err := h.ownedProperty(r, id); err != nil {
		writeError(w, r, err)
		return
	}

	var body models.Tenant
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, r, err)
		return
	}

	tenant, err := h.service.AddTenant(r.Context(), id, body)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, tenant)
}

// RemoveTenant handles DELETE /properties/{id}/tenants/{flatNo}
func (h *PropertyHandler) RemoveTenant(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if _, err := h.ownedProperty(r, vars["id"]); err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.service.RemoveTenant(r.Context(), vars["id"], vars["flatNo"]); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// NotifyTenant handles POST /properties/{id}/tenants/{flatNo}/notifications
func (h *PropertyHandler) NotifyTenant(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if _, err := h.ownedProperty(r, vars["id"]); err != nil {
		writeError(w, r, err)
		return
	}

	var body struct {
		Message string `json:"message"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, r, err)
		return
	}

	n, err := h.service.Notify(r.Context(), vars["id"], vars["flatNo"], body.Message)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, n)
}
