package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

const eventCheckoutCompleted = "checkout.session.completed"

// StripeCheckout creates Stripe Checkout sessions and verifies Stripe
// webhook events.
type StripeCheckout struct {
	api           *client.API
	webhookSecret string
}

func NewStripeCheckout(secretKey, webhookSecret string) *StripeCheckout {
	return &StripeCheckout{
		api:           client.New(secretKey, nil),
		webhookSecret: webhookSecret,
	}
}

func (c *StripeCheckout) CreateSession(ctx context.Context, p CheckoutParams) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		CustomerEmail:      stripe.String(p.Email),
		SuccessURL:         stripe.String(p.SuccessURL),
		CancelURL:          stripe.String(p.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(p.Currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String(fmt.Sprintf("Rent for %s - Flat %s", p.PropertyName, p.FlatNo)),
						Description: stripe.String("Monthly rent payment for " + p.TenantName),
					},
					UnitAmount: stripe.Int64(minorUnits(p.Amount)),
				},
				Quantity: stripe.Int64(1),
			},
		},
	}
	params.Context = ctx
	params.AddMetadata("propertyId", p.PropertyID)
	params.AddMetadata("flatNo", p.FlatNo)

	s, err := c.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, err
	}
	return &CheckoutSession{ID: s.ID, URL: s.URL}, nil
}

func (c *StripeCheckout) ParseWebhook(payload []byte, signature string) (*CompletedCheckout, error) {
	if c.webhookSecret == "" {
		return nil, ErrWebhookDisabled
	}
	// The endpoint's API version is set in the provider dashboard and may
	// lag the one this SDK pins; only the fields read below matter.
	event, err := webhook.ConstructEventWithOptions(payload, signature, c.webhookSecret, webhook.ConstructEventOptions{
		Tolerance:                webhook.DefaultTolerance,
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	if event.Type != eventCheckoutCompleted {
		return nil, nil
	}

	var cs stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
		return nil, fmt.Errorf("failed to decode checkout session: %w", err)
	}
	return &CompletedCheckout{
		SessionID:  cs.ID,
		PropertyID: cs.Metadata["propertyId"],
		FlatNo:     cs.Metadata["flatNo"],
		Amount:     float64(cs.AmountTotal) / 100,
		Paid:       cs.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
	}, nil
}

// minorUnits converts a two-decimal currency amount to its smallest unit.
func minorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
