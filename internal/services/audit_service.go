package services

import (
	"context"

	"gorm.io/gorm"

	apperrors "royalfootwear/internal/errors"
	"royalfootwear/internal/logger"
	"royalfootwear/internal/models"
)

// Audit actions recorded by the HTTP layer.
const (
	AuditCreateProduct     = "CREATE_PRODUCT"
	AuditUpdateProduct     = "UPDATE_PRODUCT"
	AuditDeleteProduct     = "DELETE_PRODUCT"
	AuditUpdateOrderStatus = "UPDATE_ORDER_STATUS"
	AuditUpdatePayment     = "UPDATE_PAYMENT_STATUS"
	AuditSetTrackingNumber = "SET_TRACKING_NUMBER"
	AuditSetUserActive     = "SET_USER_ACTIVE"
	AuditChangePassword    = "CHANGE_PASSWORD"
	AuditPlaceOrder        = "PLACE_ORDER"
)

type auditService struct {
	db *gorm.DB
}

// NewAuditService creates a new AuditServicer.
func NewAuditService(db *gorm.DB) AuditServicer {
	return &auditService{db: db}
}

// Log writes the event outside any caller transaction, so a failed write
// never undoes the audited action.
func (s *auditService) Log(ctx context.Context, event AuditEvent) {
	entry := &models.AuditLog{
		UserID:       event.UserID,
		Action:       event.Action,
		ResourceType: event.ResourceType,
		ResourceID:   event.ResourceID,
		IPAddress:    event.IPAddress,
		Changes:      event.Changes,
	}
	if err := s.db.WithContext(context.WithoutCancel(ctx)).Create(entry).Error; err != nil {
		logger.For("audit").Errorw("failed to write audit entry",
			"error", err,
			"user_id", event.UserID,
			"action", event.Action,
			"resource_type", event.ResourceType,
			"resource_id", event.ResourceID,
		)
	}
}

// History returns the audit trail of one resource, oldest first.
func (s *auditService) History(ctx context.Context, resourceType models.AuditResource, resourceID string) ([]models.AuditLog, error) {
	entries := []models.AuditLog{}
	err := s.db.WithContext(ctx).
		Where("resource_type = ? AND resource_id = ?", resourceType, resourceID).
		Order("created_at ASC, id ASC").
		Find(&entries).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return entries, nil
}
