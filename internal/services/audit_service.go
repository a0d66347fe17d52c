package services

import (
	"context"

	"github.com/dvillanueva/loanpulse-api/internal/models"
	"gorm.io/gorm"
)

// AuditService writes and lists loan-level audit entries
type AuditService struct {
	db *gorm.DB
}

func NewAuditService(db *gorm.DB) *AuditService {
	return &AuditService{db: db}
}

// Log records an audit entry
func (s *AuditService) Log(ctx context.Context, actorID *uint, actorRole, action, entity string, entityID uint, details string) error {
	logEntry := &models.AuditLog{
		ActorID:   actorID,
		ActorRole: actorRole,
		Action:    action,
		Entity:    entity,
		EntityID:  entityID,
		Details:   details,
	}
	return s.db.WithContext(ctx).Create(logEntry).Error
}

// List retrieves audit logs, newest first
func (s *AuditService) List(ctx context.Context, limit, offset int) ([]models.AuditLog, int64, error) {
	var logs []models.AuditLog
	var total int64

	if err := s.db.WithContext(ctx).Model(&models.AuditLog{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	result := s.db.WithContext(ctx).Order("created_at desc").Limit(limit).Offset(offset).Find(&logs)
	return logs, total, result.Error
}
