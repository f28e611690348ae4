package pages

import (
	"context"
	"fmt"

	"github.com/rentcare/rentcare-gobackend/internal/client"
	"github.com/rentcare/rentcare-gobackend/internal/models"
)

const unknownTenant = "N/A (Tenant may be deleted)"

// RequestRow is a maintenance request with the name of the tenant who
// raised it.
type RequestRow struct {
	models.MaintenanceRequest
	TenantName string
}

// OwnerMaintenance lists a property's maintenance requests, optionally for
// one flat, and lets the owner edit status and remarks before saving them
// all at once.
type OwnerMaintenance struct {
	api        *client.Client
	propertyID string
	filterFlat string
	confirm    Confirm

	Property *models.Property
	Rows     []RequestRow
	Message  string
}

func NewOwnerMaintenance(api *client.Client, propertyID, filterFlat string, confirm Confirm) *OwnerMaintenance {
	return &OwnerMaintenance{api: api, propertyID: propertyID, filterFlat: filterFlat, confirm: confirm}
}

func (m *OwnerMaintenance) Load(ctx context.Context) error {
	if m.propertyID == "" {
		m.Message = "Property ID not provided. Please go back and select a property."
		return &ConfigError{Message: m.Message}
	}
	if m.api == nil {
		m.Message = msgAPINotConfigured
		return &ConfigError{Message: m.Message}
	}

	property, err := m.api.GetProperty(ctx, m.propertyID)
	if err != nil {
		m.Message = "Error fetching data: " + errorText(err)
		return err
	}
	m.Property = property
	m.Rows = buildRows(property, m.filterFlat)
	return nil
}

func buildRows(p *models.Property, filterFlat string) []RequestRow {
	names := make(map[string]string, len(p.Tenants))
	for _, t := range p.Tenants {
		names[t.FlatNo] = t.Name
	}

	rows := []RequestRow{}
	for _, r := range p.MaintenanceRequests {
		if filterFlat != "" && r.FlatNo != filterFlat {
			continue
		}
		name, ok := names[r.FlatNo]
		if !ok {
			name = unknownTenant
		}
		rows = append(rows, RequestRow{MaintenanceRequest: r, TenantName: name})
	}
	return rows
}

func (m *OwnerMaintenance) Title() string {
	if m.filterFlat != "" {
		name := "Tenant"
		for _, r := range m.Rows {
			if r.FlatNo == m.filterFlat {
				name = r.TenantName
				break
			}
		}
		return fmt.Sprintf("Maintenance for Flat %s (%s)", m.filterFlat, name)
	}
	if m.Property != nil && m.Property.Name != "" {
		return "All Maintenance for " + m.Property.Name
	}
	return "All Maintenance for Property"
}

// SetStatus edits a row locally. Nothing is sent until SaveAll.
func (m *OwnerMaintenance) SetStatus(requestID, status string) error {
	if !models.ValidRequestStatus(status) {
		return fmt.Errorf("invalid status %q", status)
	}
	row := m.row(requestID)
	if row == nil {
		return fmt.Errorf("maintenance request %s not found", requestID)
	}
	row.Status = status
	return nil
}

// SetRemarks edits a row locally. Nothing is sent until SaveAll.
func (m *OwnerMaintenance) SetRemarks(requestID, remarks string) error {
	row := m.row(requestID)
	if row == nil {
		return fmt.Errorf("maintenance request %s not found", requestID)
	}
	row.Remarks = remarks
	return nil
}

// SaveAll writes the edited rows back into the property and replaces the
// whole document. Requests hidden by the flat filter are kept as they are.
func (m *OwnerMaintenance) SaveAll(ctx context.Context) error {
	if m.Property == nil {
		return nil
	}
	edited := make(map[string]models.MaintenanceRequest, len(m.Rows))
	for _, r := range m.Rows {
		edited[r.ID] = r.MaintenanceRequest
	}

	updated := *m.Property
	updated.MaintenanceRequests = make([]models.MaintenanceRequest, 0, len(m.Property.MaintenanceRequests))
	for _, r := range m.Property.MaintenanceRequests {
		if e, ok := edited[r.ID]; ok {
			r = e
		}
		updated.MaintenanceRequests = append(updated.MaintenanceRequests, r)
	}

	if _, err := m.api.ReplaceProperty(ctx, &updated); err != nil {
		m.Message = "Failed to save changes: " + errorText(err)
		return err
	}
	if err := m.Load(ctx); err != nil {
		return err
	}
	m.Message = "All maintenance request changes saved successfully."
	return nil
}

// Delete removes one request after confirmation by replacing the whole
// document without it.
func (m *OwnerMaintenance) Delete(ctx context.Context, requestID string) error {
	if m.Property == nil || !confirmed(m.confirm, "Are you sure you want to delete this maintenance request?") {
		return ErrCancelled
	}

	updated := *m.Property
	updated.MaintenanceRequests = []models.MaintenanceRequest{}
	for _, r := range m.Property.MaintenanceRequests {
		if r.ID != requestID {
			updated.MaintenanceRequests = append(updated.MaintenanceRequests, r)
		}
	}

	if _, err := m.api.ReplaceProperty(ctx, &updated); err != nil {
		m.Message = "Failed to delete request: " + errorText(err)
		return err
	}

	m.Property = &updated
	rows := m.Rows[:0]
	for _, r := range m.Rows {
		if r.ID != requestID {
			rows = append(rows, r)
		}
	}
	m.Rows = rows
	m.Message = "Maintenance request deleted successfully."
	return nil
}

func (m *OwnerMaintenance) row(id string) *RequestRow {
	for i := range m.Rows {
		if m.Rows[i].ID == id {
			return &m.Rows[i]
		}
	}
	return nil
}
