package models

import (
	"time"
)

const (
	PaymentPending = "Pending"
	PaymentPaid    = "Paid"

	RequestPending    = "Pending"
	RequestInProgress = "In Progress"
	RequestResolved   = "Resolved"
)

// ValidRequestStatus reports whether s is one of the maintenance request statuses.
func ValidRequestStatus(s string) bool {
	switch s {
	case RequestPending, RequestInProgress, RequestResolved:
		return true
	}
	return false
}

type Property struct {
	ID                  string               `bson:"_id,omitempty" json:"id"`
	OwnerID             string               `bson:"ownerId" json:"ownerId"`
	Name                string               `bson:"name" json:"name"`
	Location            string               `bson:"location" json:"location"`
	Tenants             []Tenant             `bson:"tenants" json:"tenants"`
	MaintenanceRequests []MaintenanceRequest `bson:"maintenanceRequests" json:"maintenanceRequests"`
	CreatedAt           time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt           time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// Tenant is embedded in a property and identified there by FlatNo.
type Tenant struct {
	FlatNo           string         `bson:"flatNo" json:"flatNo"`
	Name             string         `bson:"name" json:"name"`
	Username         string         `bson:"username" json:"username"`
	Email            string         `bson:"email,omitempty" json:"email,omitempty"`
	Password         string         `bson:"-" json:"password,omitempty"` // input only
	PasswordHash     string         `bson:"passwordHash" json:"-"`
	RentAmount       float64        `bson:"rentAmount" json:"rentAmount"`
	PaymentStatus    string         `bson:"paymentStatus" json:"paymentStatus"`
	PaymentHistory   []PaymentEntry `bson:"paymentHistory" json:"paymentHistory"`
	NotifiedMessages []Notification `bson:"notifiedMessages" json:"notifiedMessages"`
	LastNotify       *time.Time     `bson:"lastNotify,omitempty" json:"lastNotify,omitempty"`
}

type MaintenanceRequest struct {
	ID          string `bson:"id" json:"id"`
	FlatNo      string `bson:"flatNo" json:"flatNo"`
	Description string `bson:"description" json:"description"`
	Status      string `bson:"status" json:"status"`
	Remarks     string `bson:"remarks" json:"remarks"`
	Date        string `bson:"date" json:"date"` // YYYY-MM-DD
}

type Notification struct {
	ID      string    `bson:"id" json:"id"`
	Message string    `bson:"message" json:"message"`
	Date    time.Time `bson:"date" json:"date"`
}

// FindTenant returns the tenant with the given flat number, or nil.
func (p *Property) FindTenant(flatNo string) *Tenant {
	for i := range p.Tenants {
		if p.Tenants[i].FlatNo == flatNo {
			return &p.Tenants[i]
		}
	}
	return nil
}

// FindRequest returns the maintenance request with the given id, or nil.
func (p *Property) FindRequest(id string) *MaintenanceRequest {
	for i := range p.MaintenanceRequests {
		if p.MaintenanceRequests[i].ID == id {
			return &p.MaintenanceRequests[i]
		}
	}
	return nil
}

// ViewForTenant returns a copy of p holding only the given tenant and the
// requests raised for that flat.
func (p Property) ViewForTenant(flatNo string) Property {
	view := p
	view.Tenants = []Tenant{}
	if t := p.FindTenant(flatNo); t != nil {
		view.Tenants = append(view.Tenants, *t)
	}
	view.MaintenanceRequests = []MaintenanceRequest{}
	for _, r := range p.MaintenanceRequests {
		if r.FlatNo == flatNo {
			view.MaintenanceRequests = append(view.MaintenanceRequests, r)
		}
	}
	return view
}
