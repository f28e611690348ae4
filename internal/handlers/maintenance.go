package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/rentcare/rentcare-gobackend/internal/models"
	"github.com/rentcare/rentcare-gobackend/internal/services"
)

type raiseRequestBody struct {
	FlatNo      string `json:"flatNo"`
	Description string `json:"description"`
}

// RaiseRequest handles POST /properties/{id}/maintenance-requests. Tenants
// always raise for their own flat.
func (h *PropertyHandler) RaiseRequest(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	claims := claimsFrom(r)

	var body raiseRequestBody
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, r, err)
		return
	}

	flatNo := body.FlatNo
	if claims.Role == models.RoleTenant {
		if claims.PropertyID != id || (flatNo != "" && flatNo != claims.FlatNo) {
			writeError(w, r, services.ErrForbidden)
			return
		}
		flatNo = claims.FlatNo
	} else if _, err := h.ownedProperty(r, id); err != nil {
		writeError(w, r, err)
		return
	}

	req, err := h.service.RaiseRequest(r.Context(), id, flatNo, body.Description)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, req)
}

type updateRequestBody struct {
	Status  string `json:"status"`
	Remarks string `json:"remarks"`
}

// UpdateRequest handles PATCH /properties/{id}/maintenance-requests/{requestId}
func (h *PropertyHandler) UpdateRequest(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if _, err := h.ownedProperty(r, vars["id"]); err != nil {
		writeError(w, r, err)
		return
	}

	var body updateRequestBody
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.service.UpdateRequest(r.Context(), vars["id"], vars["requestId"], body.Status, body.Remarks); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteRequest handles DELETE /properties/{id}/maintenance-requests/{requestId}
func (h *PropertyHandler) DeleteRequest(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	claims := claimsFrom(r)

	tenantFlat := ""
	if claims.Role == models.RoleTenant {
		if claims.PropertyID != vars["id"] {
			writeError(w, r, services.ErrForbidden)
			return
		}
		tenantFlat = claims.FlatNo
	} else if _, err := h.ownedProperty(r, vars["id"]); err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.service.DeleteRequest(r.Context(), vars["id"], vars["requestId"], tenantFlat); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
