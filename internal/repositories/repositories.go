// Package repositories holds the document store behind the API: properties
// with their embedded tenants and maintenance requests, owner accounts, and
// login sessions. Each store has a MongoDB implementation and an in-memory
// one with the same semantics.
package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/rentcare/rentcare-gobackend/internal/models"
)

var (
	ErrNotFound        = errors.New("property not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrTenantNotFound  = errors.New("tenant not found")
	ErrRequestNotFound = errors.New("maintenance request not found")
	ErrDuplicateFlat   = errors.New("flat number already exists in this property")
	ErrDuplicateUser   = errors.New("a user with this email or username already exists")
	ErrPaymentRecorded = errors.New("payment for this checkout session is already recorded")
)

// TenantLogin is a tenant that matched a login identifier, with the property
// it belongs to.
type TenantLogin struct {
	PropertyID string
	Tenant     models.Tenant
}

type PropertyStore interface {
	// List returns the properties of ownerID, or every property when ownerID is empty.
	List(ctx context.Context, ownerID string) ([]models.Property, error)
	Get(ctx context.Context, id string) (*models.Property, error)
	Insert(ctx context.Context, p *models.Property) error
	// Replace overwrites the whole document. Last writer wins.
	Replace(ctx context.Context, p *models.Property) error
	UpdateDetails(ctx context.Context, id, name, location string) error
	Delete(ctx context.Context, id string) error

	AddTenant(ctx context.Context, propertyID string, t models.Tenant) error
	RemoveTenant(ctx context.Context, propertyID, flatNo string) error
	PushNotification(ctx context.Context, propertyID, flatNo string, n models.Notification) error
	// RecordPayment marks the tenant paid and appends entry to its history.
	RecordPayment(ctx context.Context, propertyID, flatNo string, entry models.PaymentEntry) error

	AddRequest(ctx context.Context, propertyID string, r models.MaintenanceRequest) error
	UpdateRequest(ctx context.Context, propertyID, requestID, status, remarks string) error
	RemoveRequest(ctx context.Context, propertyID, requestID string) error

	// FindTenantLogins returns, in store order, every tenant whose username
	// (case-insensitive) or flat number equals identifier.
	FindTenantLogins(ctx context.Context, identifier string) ([]TenantLogin, error)
}

type UserStore interface {
	List(ctx context.Context) ([]models.User, error)
	Get(ctx context.Context, id string) (*models.User, error)
	Insert(ctx context.Context, u *models.User) error
	// FindOwners returns owners whose email or username equals identifier,
	// ignoring case.
	FindOwners(ctx context.Context, identifier string) ([]models.User, error)
}

// SessionStore tracks the login sessions that back issued tokens.
type SessionStore interface {
	Create(ctx context.Context, id string, ttl time.Duration) error
	Active(ctx context.Context, id string) (bool, error)
	Revoke(ctx context.Context, id string) error
}

// Normalize replaces nil slices with empty ones so the stored document always
// carries arrays that positional updates can push into.
func Normalize(p *models.Property) {
	if p.Tenants == nil {
		p.Tenants = []models.Tenant{}
	}
	if p.MaintenanceRequests == nil {
		p.MaintenanceRequests = []models.MaintenanceRequest{}
	}
	for i := range p.Tenants {
		NormalizeTenant(&p.Tenants[i])
	}
}

func NormalizeTenant(t *models.Tenant) {
	if t.PaymentHistory == nil {
		t.PaymentHistory = []models.PaymentEntry{}
	}
	if t.NotifiedMessages == nil {
		t.NotifiedMessages = []models.Notification{}
	}
	if t.PaymentStatus == "" {
		t.PaymentStatus = models.PaymentPending
	}
}
