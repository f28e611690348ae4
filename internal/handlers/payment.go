package handlers

import (
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/rentcare/rentcare-gobackend/internal/services"
)

type PaymentHandler struct {
	service    *services.PaymentService
	properties *services.PropertyService
}

func NewPaymentHandler(service *services.PaymentService, properties *services.PropertyService) *PaymentHandler {
	return &PaymentHandler{service: service, properties: properties}
}

// CreateCheckoutSession handles POST /api/payment/create-checkout-session
func (h *PaymentHandler) CreateCheckoutSession(w http.ResponseWriter, r *http.Request) {
	var req services.CheckoutRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if !claimsFrom(r).IsTenantOf(req.PropertyID, req.Tenant.FlatNo) {
		writeError(w, r, services.ErrForbidden)
		return
	}

	session, err := h.service.CreateCheckoutSession(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// PaymentSuccess handles PUT /properties/{id}/tenants/{flatNo}/payment-success
func (h *PaymentHandler) PaymentSuccess(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := h.canMarkPaid(r, vars["id"], vars["flatNo"]); err != nil {
		writeError(w, r, err)
		return
	}

	var body struct {
		RentAmount float64 `json:"rentAmount"`
		SessionID  string  `json:"sessionId"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, r, err)
		return
	}

	entry, err := h.service.ConfirmRedirect(r.Context(), vars["id"], vars["flatNo"], body.RentAmount, body.SessionID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Payment status updated successfully",
		"entry":   entry,
	})
}

// canMarkPaid allows the tenant themselves or the owner of the property.
func (h *PaymentHandler) canMarkPaid(r *http.Request, propertyID, flatNo string) error {
	claims := claimsFrom(r)
	if claims.IsTenantOf(propertyID, flatNo) {
		return nil
	}
	if !claims.IsOwner() {
		return services.ErrForbidden
	}
	property, err := h.properties.Get(r.Context(), propertyID)
	if err != nil {
		return err
	}
	if property.OwnerID != claims.OwnerID {
		return services.ErrForbidden
	}
	return nil
}

// Webhook handles POST /api/payment/webhook
func (h *PaymentHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, r, badRequest("Invalid webhook payload"))
		return
	}

	if err := h.service.HandleWebhook(r.Context(), payload, r.Header.Get("Stripe-Signature")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}
