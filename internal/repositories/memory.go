package repositories

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/rentcare/rentcare-gobackend/internal/models"
)

// InMemoryPropertyStore keeps properties in insertion order. Values are
// copied on the way in and out so callers never share slices with the store.
type InMemoryPropertyStore struct {
	mu         sync.RWMutex
	order      []string
	properties map[string]models.Property
}

func NewInMemoryPropertyStore() *InMemoryPropertyStore {
	return &InMemoryPropertyStore{
		properties: make(map[string]models.Property),
	}
}

func (s *InMemoryPropertyStore) List(ctx context.Context, ownerID string) ([]models.Property, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Property{}
	for _, id := range s.order {
		p := s.properties[id]
		if ownerID == "" || p.OwnerID == ownerID {
			out = append(out, cloneProperty(p))
		}
	}
	return out, nil
}

func (s *InMemoryPropertyStore) Get(ctx context.Context, id string) (*models.Property, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.properties[id]
	if !ok {
		return nil, ErrNotFound
	}
	c := cloneProperty(p)
	return &c, nil
}

func (s *InMemoryPropertyStore) Insert(ctx context.Context, p *models.Property) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == "" {
		p.ID = primitive.NewObjectID().Hex()
	}
	Normalize(p)
	s.properties[p.ID] = cloneProperty(*p)
	s.order = append(s.order, p.ID)
	return nil
}

func (s *InMemoryPropertyStore) Replace(ctx context.Context, p *models.Property) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.properties[p.ID]; !ok {
		return ErrNotFound
	}
	Normalize(p)
	s.properties[p.ID] = cloneProperty(*p)
	return nil
}

func (s *InMemoryPropertyStore) UpdateDetails(ctx context.Context, id, name, location string) error {
	return s.update(id, func(p *models.Property) error {
		p.Name = name
		p.Location = location
		return nil
	})
}

func (s *InMemoryPropertyStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.properties[id]; !ok {
		return ErrNotFound
	}
	delete(s.properties, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *InMemoryPropertyStore) AddTenant(ctx context.Context, propertyID string, t models.Tenant) error {
	return s.update(propertyID, func(p *models.Property) error {
		if p.FindTenant(t.FlatNo) != nil {
			return ErrDuplicateFlat
		}
		NormalizeTenant(&t)
		p.Tenants = append(p.Tenants, t)
		return nil
	})
}

func (s *InMemoryPropertyStore) RemoveTenant(ctx context.Context, propertyID, flatNo string) error {
	return s.update(propertyID, func(p *models.Property) error {
		for i := range p.Tenants {
			if p.Tenants[i].FlatNo == flatNo {
				p.Tenants = append(p.Tenants[:i], p.Tenants[i+1:]...)
				return nil
			}
		}
		return ErrTenantNotFound
	})
}

func (s *InMemoryPropertyStore) PushNotification(ctx context.Context, propertyID, flatNo string, n models.Notification) error {
	return s.update(propertyID, func(p *models.Property) error {
		t := p.FindTenant(flatNo)
		if t == nil {
			return ErrTenantNotFound
		}
		t.NotifiedMessages = append(t.NotifiedMessages, n)
		date := n.Date
		t.LastNotify = &date
		return nil
	})
}

func (s *InMemoryPropertyStore) RecordPayment(ctx context.Context, propertyID, flatNo string, entry models.PaymentEntry) error {
	return s.update(propertyID, func(p *models.Property) error {
		t := p.FindTenant(flatNo)
		if t == nil {
			return ErrTenantNotFound
		}
		if entry.SessionID != "" {
			for _, e := range t.PaymentHistory {
				if e.SessionID == entry.SessionID {
					return ErrPaymentRecorded
				}
			}
		}
		t.PaymentStatus = models.PaymentPaid
		t.PaymentHistory = append(t.PaymentHistory, entry)
		date := entry.Date
		t.LastNotify = &date
		return nil
	})
}

func (s *InMemoryPropertyStore) AddRequest(ctx context.Context, propertyID string, r models.MaintenanceRequest) error {
	return s.update(propertyID, func(p *models.Property) error {
		p.MaintenanceRequests = append(p.MaintenanceRequests, r)
		return nil
	})
}

func (s *InMemoryPropertyStore) UpdateRequest(ctx context.Context, propertyID, requestID, status, remarks string) error {
	return s.update(propertyID, func(p *models.Property) error {
		r := p.FindRequest(requestID)
		if r == nil {
			return ErrRequestNotFound
		}
		r.Status = status
		r.Remarks = remarks
		return nil
	})
}

func (s *InMemoryPropertyStore) RemoveRequest(ctx context.Context, propertyID, requestID string) error {
	return s.update(propertyID, func(p *models.Property) error {
		for i := range p.MaintenanceRequests {
			if p.MaintenanceRequests[i].ID == requestID {
				p.MaintenanceRequests = append(p.MaintenanceRequests[:i], p.MaintenanceRequests[i+1:]...)
				return nil
			}
		}
		return ErrRequestNotFound
	})
}

func (s *InMemoryPropertyStore) FindTenantLogins(ctx context.Context, identifier string) ([]TenantLogin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	properties := make([]models.Property, 0, len(s.order))
	for _, id := range s.order {
		properties = append(properties, s.properties[id])
	}
	return matchTenants(properties, identifier), nil
}

// update applies fn to a working copy and stores it only if fn succeeds.
func (s *InMemoryPropertyStore) update(id string, fn func(p *models.Property) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.properties[id]
	if !ok {
		return ErrNotFound
	}
	p := cloneProperty(stored)
	if err := fn(&p); err != nil {
		return err
	}
	p.UpdatedAt = time.Now()
	s.properties[id] = p
	return nil
}

type InMemoryUserStore struct {
	mu    sync.RWMutex
	order []string
	users map[string]models.User
}

func NewInMemoryUserStore() *InMemoryUserStore {
	return &InMemoryUserStore{
		users: make(map[string]models.User),
	}
}

func (s *InMemoryUserStore) List(ctx context.Context) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.User, 0, len(s.order))
	for _, id := range s.order {
		u := s.users[id]
		u.PasswordHash = ""
		out = append(out, u)
	}
	return out, nil
}

func (s *InMemoryUserStore) Get(ctx context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &u, nil
}

func (s *InMemoryUserStore) Insert(ctx context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if (u.Email != "" && strings.EqualFold(existing.Email, u.Email)) ||
			(u.Username != "" && strings.EqualFold(existing.Username, u.Username)) {
			return ErrDuplicateUser
		}
	}
	if u.ID == "" {
		u.ID = primitive.NewObjectID().Hex()
	}
	stored := *u
	stored.Password = ""
	s.users[u.ID] = stored
	s.order = append(s.order, u.ID)
	return nil
}

func (s *InMemoryUserStore) FindOwners(ctx context.Context, identifier string) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.User
	for _, id := range s.order {
		u := s.users[id]
		if u.Role != models.RoleOwner {
			continue
		}
		if strings.EqualFold(u.Email, identifier) || strings.EqualFold(u.Username, identifier) {
			out = append(out, u)
		}
	}
	return out, nil
}

// matchTenants scans properties in order and returns the tenants whose
// username or flat number equals identifier.
func matchTenants(properties []models.Property, identifier string) []TenantLogin {
	var out []TenantLogin
	for _, p := range properties {
		for _, t := range p.Tenants {
			if (t.Username != "" && strings.EqualFold(t.Username, identifier)) || t.FlatNo == identifier {
				out = append(out, TenantLogin{PropertyID: p.ID, Tenant: t})
			}
		}
	}
	return out
}

func cloneProperty(p models.Property) models.Property {
	c := p
	c.Tenants = make([]models.Tenant, len(p.Tenants))
	for i, t := range p.Tenants {
		ct := t
		ct.PaymentHistory = append([]models.PaymentEntry{}, t.PaymentHistory...)
		ct.NotifiedMessages = append([]models.Notification{}, t.NotifiedMessages...)
		if t.LastNotify != nil {
			ln := *t.LastNotify
			ct.LastNotify = &ln
		}
		c.Tenants[i] = ct
	}
	c.MaintenanceRequests = append([]models.MaintenanceRequest{}, p.MaintenanceRequests...)
	return c
}
