package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/rentcare/rentcare-gobackend/internal/models"
	"github.com/rentcare/rentcare-gobackend/internal/repositories"
)

// CheckoutParams describe one rent payment to the hosted checkout.
type CheckoutParams struct {
	PropertyID   string
	PropertyName string
	FlatNo       string
	TenantName   string
	Email        string
	Amount       float64
	Currency     string
	SuccessURL   string
	CancelURL    string
}

type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url,omitempty"`
}

// CompletedCheckout is a provider-confirmed payment parsed from a webhook.
type CompletedCheckout struct {
	SessionID  string
	PropertyID string
	FlatNo     string
	Amount     float64
	Paid       bool
}

// CheckoutProvider is the hosted checkout service.
type CheckoutProvider interface {
	CreateSession(ctx context.Context, params CheckoutParams) (*CheckoutSession, error)
	// ParseWebhook verifies the signature and returns the completed
	// checkout the event describes, or nil for events of no interest.
	ParseWebhook(payload []byte, signature string) (*CompletedCheckout, error)
}

// CheckoutRequest is the body the tenant dashboard posts.
type CheckoutRequest struct {
	Tenant struct {
		FlatNo     string  `json:"flatNo"`
		RentAmount float64 `json:"rentAmount"`
		Name       string  `json:"name"`
		Email      string  `json:"email"`
	} `json:"tenant"`
	PropertyID   string `json:"propertyId"`
	PropertyName string `json:"propertyName"`
}

type PaymentService struct {
	properties *PropertyService
	provider   CheckoutProvider
	clientURL  string
	currency   string
}

// NewPaymentService returns a payment service. A nil provider disables
// checkout and webhooks.
func NewPaymentService(properties *PropertyService, provider CheckoutProvider, clientURL, currency string) *PaymentService {
	return &PaymentService{
		properties: properties,
		provider:   provider,
		clientURL:  strings.TrimRight(clientURL, "/"),
		currency:   currency,
	}
}

func (s *PaymentService) Enabled() bool {
	return s.provider != nil
}

// CreateCheckoutSession opens a hosted checkout for the tenant's current
// rent. The amount in the request is informational only.
func (s *PaymentService) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	if s.provider == nil {
		return nil, ErrPaymentDisabled
	}
	if req.Tenant.FlatNo == "" {
		return nil, ErrMissingFlatNo
	}

	property, err := s.properties.Get(ctx, req.PropertyID)
	if err != nil {
		return nil, err
	}
	tenant := property.FindTenant(req.Tenant.FlatNo)
	if tenant == nil {
		return nil, repositories.ErrTenantNotFound
	}
	if tenant.RentAmount <= 0 {
		return nil, ErrNothingToPay
	}
	if req.Tenant.RentAmount != 0 && req.Tenant.RentAmount != tenant.RentAmount {
		log.Printf("Checkout for property=%s flat=%s: requested amount %.2f differs from rent %.2f, charging rent",
			property.ID, tenant.FlatNo, req.Tenant.RentAmount, tenant.RentAmount)
	}

	name := tenant.Name
	if name == "" {
		name = req.Tenant.Name
	}
	params := CheckoutParams{
		PropertyID:   property.ID,
		PropertyName: property.Name,
		FlatNo:       tenant.FlatNo,
		TenantName:   name,
		Email:        tenantEmail(tenant, req.Tenant.Email),
		Amount:       tenant.RentAmount,
		Currency:     s.currency,
		SuccessURL:   s.clientURL + models.PaymentSuccessPath(property.ID, tenant.FlatNo) + "?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:    s.clientURL + models.TenantDashboardPath(property.ID, tenant.FlatNo),
	}

	session, err := s.provider.CreateSession(ctx, params)
	if err != nil {
		log.Printf("Failed to create checkout session for property=%s flat=%s: %v", property.ID, tenant.FlatNo, err)
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}
	if session == nil || session.ID == "" {
		return nil, ErrNoCheckoutID
	}
	log.Printf("Checkout session created: ID=%s, property=%s, flat=%s", session.ID, property.ID, tenant.FlatNo)
	return session, nil
}

// ConfirmRedirect records a payment because the browser came back from the
// checkout success page. Nothing here proves a charge happened; the webhook
// is the provider-verified path. sessionID is the checkout session the
// success URL carried. With it, whichever of the redirect and the webhook
// arrives second records nothing.
func (s *PaymentService) ConfirmRedirect(ctx context.Context, propertyID, flatNo string, rentAmount float64, sessionID string) (*models.PaymentEntry, error) {
	return s.properties.MarkPaid(ctx, propertyID, flatNo, rentAmount, strings.TrimSpace(sessionID))
}

// HandleWebhook verifies a provider event and records the payment it confirms.
func (s *PaymentService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	if s.provider == nil {
		return ErrWebhookDisabled
	}
	completed, err := s.provider.ParseWebhook(payload, signature)
	if err != nil {
		return err
	}
	if completed == nil {
		return nil
	}
	if !completed.Paid {
		log.Printf("Checkout session %s completed without payment, no action taken", completed.SessionID)
		return nil
	}
	if completed.PropertyID == "" || completed.FlatNo == "" {
		log.Printf("Checkout session %s carries no tenant metadata, no action taken", completed.SessionID)
		return nil
	}

	_, err = s.properties.MarkPaid(ctx, completed.PropertyID, completed.FlatNo, completed.Amount, completed.SessionID)
	if errors.Is(err, repositories.ErrNotFound) || errors.Is(err, repositories.ErrTenantNotFound) {
		// acknowledged so the provider stops redelivering an event nobody can apply
		log.Printf("Checkout session %s paid for property=%s flat=%s which no longer exists, no action taken: %v",
			completed.SessionID, completed.PropertyID, completed.FlatNo, err)
		return nil
	}
	return err
}

// tenantEmail picks the address the checkout receipt goes to, falling back
// to a placeholder derived from the username or flat number.
func tenantEmail(t *models.Tenant, requested string) string {
	if t.Email != "" {
		return t.Email
	}
	if requested != "" {
		return requested
	}
	local := t.Username
	if local == "" {
		local = t.FlatNo
	}
	return local + "-tenant@example.com"
}
