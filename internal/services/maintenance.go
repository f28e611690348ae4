package services

import (
	"context"
	"strings"

	"github.com/rentcare/rentcare-gobackend/internal/models"
	"github.com/rentcare/rentcare-gobackend/internal/repositories"
)

// RaiseRequest appends a Pending request for flatNo, dated today.
func (s *PropertyService) RaiseRequest(ctx context.Context, propertyID, flatNo, description string) (*models.MaintenanceRequest, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, ErrEmptyDescription
	}
	if flatNo == "" {
		return nil, ErrMissingFlatNo
	}

	property, err := s.store.Get(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if property.FindTenant(flatNo) == nil {
		return nil, repositories.ErrTenantNotFound
	}

	req := models.MaintenanceRequest{
		ID:          newID("mr"),
		FlatNo:      flatNo,
		Description: description,
		Status:      models.RequestPending,
		Date:        s.now().Format("2006-01-02"),
	}
	if err := s.store.AddRequest(ctx, propertyID, req); err != nil {
		return nil, err
	}
	return &req, nil
}

func (s *PropertyService) UpdateRequest(ctx context.Context, propertyID, requestID, status, remarks string) error {
	if !models.ValidRequestStatus(status) {
		return ErrInvalidStatus
	}
	return s.store.UpdateRequest(ctx, propertyID, requestID, status, strings.TrimSpace(remarks))
}

// DeleteRequest removes a request. When tenantFlat is set the caller is that
// tenant, who may only delete their own requests while still Pending.
func (s *PropertyService) DeleteRequest(ctx context.Context, propertyID, requestID, tenantFlat string) error {
	if tenantFlat != "" {
		property, err := s.store.Get(ctx, propertyID)
		if err != nil {
			return err
		}
		req := property.FindRequest(requestID)
		if req == nil {
			return repositories.ErrRequestNotFound
		}
		if req.FlatNo != tenantFlat {
			return ErrForbidden
		}
		if req.Status != models.RequestPending {
			return ErrRequestNotPending
		}
	}
	return s.store.RemoveRequest(ctx, propertyID, requestID)
}
