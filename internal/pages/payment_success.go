package pages

import (
	"context"
	"errors"

	"github.com/rentcare/rentcare-gobackend/internal/client"
	"github.com/rentcare/rentcare-gobackend/internal/models"
)

// PaymentSuccess is the page the checkout provider sends the browser back
// to. It records the payment and moves on to the tenant dashboard.
type PaymentSuccess struct {
	api        *client.Client
	propertyID string
	flatNo     string
	sessionID  string
}

// NewPaymentSuccess builds the page from its route parameters and the
// session_id query parameter of the success URL.
func NewPaymentSuccess(api *client.Client, propertyID, flatNo, sessionID string) *PaymentSuccess {
	return &PaymentSuccess{api: api, propertyID: propertyID, flatNo: flatNo, sessionID: sessionID}
}

// Reconcile marks the tenant paid with their current rent and returns where
// the browser goes next, plus an alert to show when something failed.
func (p *PaymentSuccess) Reconcile(ctx context.Context) (redirect string, alert string) {
	if err := p.markPaid(ctx); err != nil {
		alert = "Payment processing encountered an issue: " + err.Error() +
			". Please contact support or check your dashboard later."
		if p.propertyID == "" || p.flatNo == "" {
			return "/", alert
		}
	}
	return models.TenantDashboardPath(p.propertyID, p.flatNo), alert
}

func (p *PaymentSuccess) markPaid(ctx context.Context) error {
	if p.propertyID == "" || p.flatNo == "" {
		return errors.New("Missing property ID or flat number")
	}
	if p.api == nil {
		return errors.New("API URL is not configured")
	}

	property, err := p.api.GetProperty(ctx, p.propertyID)
	if err != nil {
		return errors.New("Failed to fetch property: " + errorText(err))
	}
	tenant := property.FindTenant(p.flatNo)
	if tenant == nil {
		return errors.New("Tenant not found in property data")
	}

	if _, err := p.api.MarkPaymentSuccess(ctx, p.propertyID, p.flatNo, tenant.RentAmount, p.sessionID); err != nil {
		return errors.New("Failed to update payment status: " + errorText(err))
	}
	return nil
}
