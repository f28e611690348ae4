package pages

import (
	"context"
	"errors"
	"strings"

	"github.com/rentcare/rentcare-gobackend/internal/client"
	"github.com/rentcare/rentcare-gobackend/internal/models"
)

const msgMissingDetails = "Property name and location are required."

var ErrMissingPropertyDetails = errors.New("property name and location are required")

type OwnerDashboard struct {
	api     *client.Client
	ownerID string
	confirm Confirm

	Properties []models.Property
	Message    string
}

func NewOwnerDashboard(api *client.Client, ownerID string, confirm Confirm) *OwnerDashboard {
	return &OwnerDashboard{api: api, ownerID: ownerID, confirm: confirm}
}

// Load fetches the owner's properties.
func (d *OwnerDashboard) Load(ctx context.Context) error {
	d.Message = ""
	if d.api == nil {
		d.Message = msgAPINotConfigured
		return &ConfigError{Message: d.Message}
	}
	if d.ownerID == "" {
		d.Message = "Error: Owner ID is missing. Cannot load properties."
		return &ConfigError{Message: d.Message}
	}

	properties, err := d.api.ListProperties(ctx, d.ownerID)
	if err != nil {
		d.Properties = nil
		d.Message = "Error fetching properties: " + errorText(err)
		return err
	}
	if properties == nil {
		properties = []models.Property{}
	}
	d.Properties = properties
	return nil
}

// AddProperty creates a property with no tenants or requests and reloads
// the list.
func (d *OwnerDashboard) AddProperty(ctx context.Context, name, location string) error {
	if err := d.checkDetails(name, location); err != nil {
		return err
	}
	if _, err := d.api.CreateProperty(ctx, name, location); err != nil {
		d.Message = "Error saving property: " + errorText(err)
		return err
	}
	if err := d.Load(ctx); err != nil {
		return err
	}
	d.Message = "Property added successfully!"
	return nil
}

// EditProperty changes name and location by sending the whole document
// back, so tenants and requests travel unchanged.
func (d *OwnerDashboard) EditProperty(ctx context.Context, id, name, location string) error {
	if err := d.checkDetails(name, location); err != nil {
		return err
	}
	current := d.find(id)
	if current == nil {
		d.Message = "Error saving property: property not found"
		return errors.New("property not found")
	}

	updated := *current
	updated.Name = strings.TrimSpace(name)
	updated.Location = strings.TrimSpace(location)
	if updated.Tenants == nil {
		updated.Tenants = []models.Tenant{}
	}
	if updated.MaintenanceRequests == nil {
		updated.MaintenanceRequests = []models.MaintenanceRequest{}
	}

	if _, err := d.api.ReplaceProperty(ctx, &updated); err != nil {
		d.Message = "Error saving property: " + errorText(err)
		return err
	}
	if err := d.Load(ctx); err != nil {
		return err
	}
	d.Message = "Property updated successfully!"
	return nil
}

// DeleteProperty removes the property after the user confirms. There is
// no undo.
func (d *OwnerDashboard) DeleteProperty(ctx context.Context, id string) error {
	if !confirmed(d.confirm, "Are you sure you want to delete this property? This action cannot be undone.") {
		return ErrCancelled
	}
	if err := d.api.DeleteProperty(ctx, id); err != nil {
		d.Message = "Error deleting property: " + errorText(err)
		return err
	}

	kept := d.Properties[:0]
	for _, p := range d.Properties {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	d.Properties = kept
	d.Message = "Property deleted successfully!"
	return nil
}

func (d *OwnerDashboard) checkDetails(name, location string) error {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(location) == "" {
		d.Message = msgMissingDetails
		return ErrMissingPropertyDetails
	}
	if d.api == nil {
		d.Message = msgAPINotConfigured
		return &ConfigError{Message: d.Message}
	}
	return nil
}

func (d *OwnerDashboard) find(id string) *models.Property {
	for i := range d.Properties {
		if d.Properties[i].ID == id {
			return &d.Properties[i]
		}
	}
	return nil
}
