package pages

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rentcare/rentcare-gobackend/internal/client"
	"github.com/rentcare/rentcare-gobackend/internal/models"
)

var (
	ErrEmptyDescription = errors.New("maintenance description cannot be empty")
	ErrNotDeletable     = errors.New("only pending maintenance requests can be deleted")
	ErrCannotPay        = errors.New("payment is not available")
)

const (
	msgEmptyDescription = "Maintenance description cannot be empty."
	msgStripeConfig     = "Configuration Error: Stripe is not configured correctly. Payment functionality will be disabled."
)

// TenantDashboard is one tenant's view of their flat: rent status, payment
// history, notifications from the owner and their maintenance requests.
// Requests are raised and deleted optimistically and rolled back when the
// API call fails.
type TenantDashboard struct {
	api            *client.Client
	publishableKey string
	propertyID     string
	flatNo         string
	confirm        Confirm
	now            func() time.Time

	Property  *models.Property
	Tenant    *models.Tenant
	Message   string
	ConfigErr *ConfigError
}

func NewTenantDashboard(api *client.Client, publishableKey, propertyID, flatNo string, confirm Confirm) *TenantDashboard {
	return &TenantDashboard{
		api:            api,
		publishableKey: publishableKey,
		propertyID:     propertyID,
		flatNo:         flatNo,
		confirm:        confirm,
		now:            time.Now,
	}
}

// Load checks configuration and fetches the property. A bad publishable key
// only disables payment; a missing API URL stops the page.
func (d *TenantDashboard) Load(ctx context.Context) error {
	d.Message = ""
	d.ConfigErr = nil

	if d.api == nil {
		d.ConfigErr = &ConfigError{Message: "Configuration Error: API URL is not set. Please contact support."}
		return d.ConfigErr
	}
	if !validPublishableKey(d.publishableKey) {
		d.ConfigErr = &ConfigError{Message: msgStripeConfig}
	}
	if d.propertyID == "" || d.flatNo == "" {
		d.ConfigErr = &ConfigError{Message: "Error: Invalid navigation parameters. Property ID or Flat No missing from URL."}
		return d.ConfigErr
	}

	property, err := d.api.GetProperty(ctx, d.propertyID)
	if err != nil {
		d.Message = fmt.Sprintf("Error loading dashboard: %s.", errorText(err))
		return err
	}
	tenant := property.FindTenant(d.flatNo)
	if tenant == nil {
		name := property.Name
		if name == "" {
			name = d.propertyID
		}
		err := fmt.Errorf("Tenant for Flat No: %q not found in property: %q. Check login details or property data", d.flatNo, name)
		d.Message = fmt.Sprintf("Error loading dashboard: %s.", err)
		return err
	}
	d.Property = property
	d.Tenant = tenant
	return nil
}

// MaintenanceRequests returns the tenant's requests, newest first.
func (d *TenantDashboard) MaintenanceRequests() []models.MaintenanceRequest {
	if d.Property == nil {
		return nil
	}
	out := []models.MaintenanceRequest{}
	for _, r := range d.Property.MaintenanceRequests {
		if r.FlatNo == d.flatNo {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out
}

// PaymentHistory returns the tenant's payments, newest first.
func (d *TenantDashboard) PaymentHistory() []models.PaymentEntry {
	if d.Tenant == nil {
		return nil
	}
	out := append([]models.PaymentEntry{}, d.Tenant.PaymentHistory...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out
}

// Notifications returns the owner's messages, newest first.
func (d *TenantDashboard) Notifications() []models.Notification {
	if d.Tenant == nil {
		return nil
	}
	out := append([]models.Notification{}, d.Tenant.NotifiedMessages...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out
}

// CanDelete reports whether the delete control is offered for r.
func (d *TenantDashboard) CanDelete(r models.MaintenanceRequest) bool {
	return r.Status == models.RequestPending
}

// CanPayRent reports whether the pay button is enabled.
func (d *TenantDashboard) CanPayRent() bool {
	return d.Tenant != nil &&
		d.Tenant.PaymentStatus == models.PaymentPending &&
		d.Tenant.RentAmount > 0 &&
		d.api != nil &&
		validPublishableKey(d.publishableKey)
}

// RaiseRequest shows the new request at once and sends it. On failure the
// request list goes back to what it was.
func (d *TenantDashboard) RaiseRequest(ctx context.Context, description string) error {
	if d.Tenant == nil || d.Property == nil {
		return errors.New("tenant data is not loaded")
	}
	if d.api == nil {
		d.Message = "API URL is not configured. Cannot submit request."
		return &ConfigError{Message: d.Message}
	}
	description = strings.TrimSpace(description)
	if description == "" {
		d.Message = msgEmptyDescription
		return ErrEmptyDescription
	}

	snapshot := d.snapshotRequests()
	pending := models.MaintenanceRequest{
		ID:          fmt.Sprintf("temp-mr-%d", d.now().UnixNano()),
		FlatNo:      d.Tenant.FlatNo,
		Description: description,
		Status:      models.RequestPending,
		Date:        d.now().Format("2006-01-02"),
	}
	d.Property.MaintenanceRequests = append(d.Property.MaintenanceRequests, pending)

	saved, err := d.api.RaiseMaintenanceRequest(ctx, d.Property.ID, d.Tenant.FlatNo, description)
	if err != nil {
		d.Property.MaintenanceRequests = snapshot
		d.Message = "Error submitting request: " + errorText(err)
		return err
	}

	for i := range d.Property.MaintenanceRequests {
		if d.Property.MaintenanceRequests[i].ID == pending.ID {
			d.Property.MaintenanceRequests[i] = *saved
		}
	}
	d.Message = "Maintenance request submitted successfully."
	return nil
}

// DeleteRequest removes a Pending request after confirmation, optimistically.
func (d *TenantDashboard) DeleteRequest(ctx context.Context, requestID string) error {
	if d.Property == nil || requestID == "" {
		return errors.New("property data is not loaded")
	}
	req := d.Property.FindRequest(requestID)
	if req == nil {
		return fmt.Errorf("maintenance request %s not found", requestID)
	}
	if !d.CanDelete(*req) {
		return ErrNotDeletable
	}
	if !confirmed(d.confirm, "Are you sure you want to delete this maintenance request?") {
		return ErrCancelled
	}
	if d.api == nil {
		d.Message = "API URL is not configured. Cannot delete request."
		return &ConfigError{Message: d.Message}
	}

	snapshot := d.snapshotRequests()
	kept := []models.MaintenanceRequest{}
	for _, r := range d.Property.MaintenanceRequests {
		if r.ID != requestID {
			kept = append(kept, r)
		}
	}
	d.Property.MaintenanceRequests = kept

	if err := d.api.DeleteMaintenanceRequest(ctx, d.Property.ID, requestID); err != nil {
		d.Property.MaintenanceRequests = snapshot
		d.Message = "Error deleting request: " + errorText(err)
		return err
	}
	d.Message = "Maintenance request deleted successfully."
	return nil
}

// PayRent opens a checkout session for the tenant's rent. The caller sends
// the browser to the returned session.
func (d *TenantDashboard) PayRent(ctx context.Context) (*client.CheckoutSession, error) {
	if d.api == nil || !validPublishableKey(d.publishableKey) {
		d.Message = "Configuration error prevents payment. Please contact support."
		return nil, ErrCannotPay
	}
	if d.Tenant == nil || d.Property == nil || d.Tenant.RentAmount <= 0 {
		d.Message = "Tenant data or rent amount is missing or invalid. Cannot proceed with payment."
		return nil, ErrCannotPay
	}

	d.Message = "Initializing payment..."
	session, err := d.api.CreateCheckoutSession(ctx, client.CheckoutRequest{
		Tenant: client.CheckoutTenant{
			FlatNo:     d.Tenant.FlatNo,
			RentAmount: d.Tenant.RentAmount,
			Name:       d.Tenant.Name,
			Email:      d.Tenant.Email,
		},
		PropertyID:   d.Property.ID,
		PropertyName: d.Property.Name,
	})
	if err != nil {
		d.Message = "Payment Process Error: " + errorText(err)
		return nil, err
	}
	if session == nil || session.ID == "" {
		d.Message = "Payment Process Error: Received an invalid session from the server. Cannot proceed with payment."
		return nil, ErrCannotPay
	}
	d.Message = ""
	return session, nil
}

func (d *TenantDashboard) snapshotRequests() []models.MaintenanceRequest {
	return append([]models.MaintenanceRequest{}, d.Property.MaintenanceRequests...)
}
