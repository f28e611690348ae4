package services

import "errors"

var (
	ErrMissingCredentials = errors.New("email/username and password are required")
	ErrInvalidCredentials = errors.New("invalid email/username or password")
	ErrInvalidToken       = errors.New("invalid or expired session")
	ErrForbidden          = errors.New("not allowed to access this resource")

	ErrMissingDetails    = errors.New("property name and location are required")
	ErrMissingFlatNo     = errors.New("flat number is required")
	ErrInvalidRent       = errors.New("rent amount must not be negative")
	ErrEmptyMessage      = errors.New("notification message cannot be empty")
	ErrEmptyDescription  = errors.New("maintenance description cannot be empty")
	ErrInvalidStatus     = errors.New("status must be Pending, In Progress or Resolved")
	ErrRequestNotPending = errors.New("only pending maintenance requests can be deleted")
	ErrInvalidUser       = errors.New("email or username and a password are required")

	ErrPaymentDisabled  = errors.New("payment is not configured")
	ErrWebhookDisabled  = errors.New("payment webhook is not configured")
	ErrNothingToPay     = errors.New("tenant has no rent amount to pay")
	ErrNoCheckoutID     = errors.New("payment provider returned no session id")
	ErrInvalidSignature = errors.New("invalid webhook signature")
)
