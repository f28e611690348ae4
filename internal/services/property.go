package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rentcare/rentcare-gobackend/internal/models"
	"github.com/rentcare/rentcare-gobackend/internal/repositories"
)

type PropertyService struct {
	store repositories.PropertyStore
	now   func() time.Time
}

func NewPropertyService(store repositories.PropertyStore) *PropertyService {
	return &PropertyService{store: store, now: time.Now}
}

func (s *PropertyService) List(ctx context.Context, ownerID string) ([]models.Property, error) {
	return s.store.List(ctx, ownerID)
}

func (s *PropertyService) Get(ctx context.Context, id string) (*models.Property, error) {
	return s.store.Get(ctx, id)
}

// Create stores a new property for ownerID. Tenants and requests supplied by
// the caller are ignored; a new property starts empty.
func (s *PropertyService) Create(ctx context.Context, ownerID, name, location string) (*models.Property, error) {
	name = strings.TrimSpace(name)
	location = strings.TrimSpace(location)
	if name == "" || location == "" {
		return nil, ErrMissingDetails
	}

	now := s.now()
	property := &models.Property{
		OwnerID:             ownerID,
		Name:                name,
		Location:            location,
		Tenants:             []models.Tenant{},
		MaintenanceRequests: []models.MaintenanceRequest{},
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := s.store.Insert(ctx, property); err != nil {
		return nil, err
	}
	log.Printf("Property created: ID=%s, OwnerID=%s", property.ID, ownerID)
	return property, nil
}

// Replace overwrites the stored property with in. Owner and creation time
// are kept from the stored document, tenants without a new password keep
// their stored hash, and requests or history entries without an id get one.
func (s *PropertyService) Replace(ctx context.Context, id string, in *models.Property) (*models.Property, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Location = strings.TrimSpace(in.Location)
	if in.Name == "" || in.Location == "" {
		return nil, ErrMissingDetails
	}

	stored, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(in.Tenants))
	for i := range in.Tenants {
		t := &in.Tenants[i]
		t.FlatNo = strings.TrimSpace(t.FlatNo)
		if t.FlatNo == "" {
			return nil, ErrMissingFlatNo
		}
		if seen[t.FlatNo] {
			return nil, fmt.Errorf("%w: %s", repositories.ErrDuplicateFlat, t.FlatNo)
		}
		seen[t.FlatNo] = true
		if t.RentAmount < 0 {
			return nil, ErrInvalidRent
		}
		if err := s.setTenantPassword(t, stored.FindTenant(t.FlatNo)); err != nil {
			return nil, err
		}
		for j := range t.PaymentHistory {
			if t.PaymentHistory[j].ID == "" {
				t.PaymentHistory[j].ID = newID("pay")
			}
		}
	}
	for i := range in.MaintenanceRequests {
		r := &in.MaintenanceRequests[i]
		if r.ID == "" {
			r.ID = newID("mr")
		}
		if r.Status == "" {
			r.Status = models.RequestPending
		}
		if !models.ValidRequestStatus(r.Status) {
			return nil, ErrInvalidStatus
		}
	}

	in.ID = stored.ID
	in.OwnerID = stored.OwnerID
	in.CreatedAt = stored.CreatedAt
	in.UpdatedAt = s.now()
	if err := s.store.Replace(ctx, in); err != nil {
		return nil, err
	}
	return in, nil
}

// setTenantPassword hashes a newly supplied password or carries over the
// hash of the tenant previously stored under the same flat number.
func (s *PropertyService) setTenantPassword(t *models.Tenant, previous *models.Tenant) error {
	if t.Password != "" {
		hash, err := HashPassword(t.Password)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}
		t.PasswordHash = hash
		t.Password = ""
		return nil
	}
	if previous != nil {
		t.PasswordHash = previous.PasswordHash
	}
	return nil
}

// UpdateDetails changes name and location only.
func (s *PropertyService) UpdateDetails(ctx context.Context, id, name, location string) (*models.Property, error) {
	name = strings.TrimSpace(name)
	location = strings.TrimSpace(location)
	if name == "" || location == "" {
		return nil, ErrMissingDetails
	}
	if err := s.store.UpdateDetails(ctx, id, name, location); err != nil {
		return nil, err
	}
	return s.store.Get(ctx, id)
}

func (s *PropertyService) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	log.Printf("Property deleted: ID=%s", id)
	return nil
}

func (s *PropertyService) AddTenant(ctx context.Context, propertyID string, t models.Tenant) (*models.Tenant, error) {
	t.FlatNo = strings.TrimSpace(t.FlatNo)
	if t.FlatNo == "" {
		return nil, ErrMissingFlatNo
	}
	if t.RentAmount < 0 {
		return nil, ErrInvalidRent
	}
	if err := s.setTenantPassword(&t, nil); err != nil {
		return nil, err
	}
	t.PaymentStatus = models.PaymentPending
	t.PaymentHistory = []models.PaymentEntry{}
	t.NotifiedMessages = []models.Notification{}
	t.LastNotify = nil

	if err := s.store.AddTenant(ctx, propertyID, t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *PropertyService) RemoveTenant(ctx context.Context, propertyID, flatNo string) error {
	return s.store.RemoveTenant(ctx, propertyID, flatNo)
}

// Notify appends an owner message to the tenant's notifications.
func (s *PropertyService) Notify(ctx context.Context, propertyID, flatNo, message string) (*models.Notification, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, ErrEmptyMessage
	}
	n := models.Notification{
		ID:      newID("notif"),
		Message: message,
		Date:    s.now(),
	}
	if err := s.store.PushNotification(ctx, propertyID, flatNo, n); err != nil {
		return nil, err
	}
	return &n, nil
}

// MarkPaid sets the tenant's status to Paid and appends a history entry.
// A non-positive amount means the tenant's current rent. When sessionID is
// set and already present in the tenant's history, nothing is recorded and
// the existing entry is returned.
func (s *PropertyService) MarkPaid(ctx context.Context, propertyID, flatNo string, amount float64, sessionID string) (*models.PaymentEntry, error) {
	property, err := s.store.Get(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	tenant := property.FindTenant(flatNo)
	if tenant == nil {
		return nil, repositories.ErrTenantNotFound
	}
	if existing := paymentForSession(tenant, sessionID); existing != nil {
		log.Printf("Payment for session %s already recorded", sessionID)
		return existing, nil
	}
	if amount <= 0 {
		amount = tenant.RentAmount
	}

	entry := models.PaymentEntry{
		ID:        newID("pay"),
		Amount:    amount,
		Date:      s.now(),
		Status:    models.PaymentPaid,
		SessionID: sessionID,
	}
	if err := s.store.RecordPayment(ctx, propertyID, flatNo, entry); err != nil {
		if !errors.Is(err, repositories.ErrPaymentRecorded) {
			return nil, err
		}
		// the other confirmation path got there between our read and write
		log.Printf("Payment for session %s already recorded", sessionID)
		property, err := s.store.Get(ctx, propertyID)
		if err != nil {
			return nil, err
		}
		if existing := paymentForSession(property.FindTenant(flatNo), sessionID); existing != nil {
			return existing, nil
		}
		return nil, repositories.ErrPaymentRecorded
	}
	log.Printf("Payment recorded: property=%s flat=%s amount=%.2f", propertyID, flatNo, amount)
	return &entry, nil
}

// paymentForSession returns the tenant's history entry for a checkout
// session, or nil.
func paymentForSession(t *models.Tenant, sessionID string) *models.PaymentEntry {
	if t == nil || sessionID == "" {
		return nil
	}
	for i := range t.PaymentHistory {
		if t.PaymentHistory[i].SessionID == sessionID {
			e := t.PaymentHistory[i]
			return &e
		}
	}
	return nil
}

func newID(prefix string) string {
	return prefix + "-" + uuid.NewString()
}
