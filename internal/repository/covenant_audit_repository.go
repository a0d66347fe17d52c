package repository

import (
	"context"

	"github.com/dvillanueva/loanpulse-api/internal/models"
	"gorm.io/gorm"
)

// CovenantAuditRepository defines the interface for the append-only
// covenant audit trail.
type CovenantAuditRepository interface {
	Create(ctx context.Context, record *models.CovenantAuditRecord) error
	FindByCovenant(ctx context.Context, covenantID uint, limit int) ([]models.CovenantAuditRecord, error)
}

type covenantAuditRepository struct {
	db *gorm.DB
}

// NewCovenantAuditRepository creates a new covenant audit repository
func NewCovenantAuditRepository(db *gorm.DB) CovenantAuditRepository {
	return &covenantAuditRepository{db: db}
}

func (r *covenantAuditRepository) Create(ctx context.Context, record *models.CovenantAuditRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *covenantAuditRepository) FindByCovenant(ctx context.Context, covenantID uint, limit int) ([]models.CovenantAuditRecord, error) {
	var records []models.CovenantAuditRecord
	db := r.db.WithContext(ctx).
		Where("covenant_id = ?", covenantID).
		Order("checked_at DESC, id DESC")
	if limit > 0 {
		db = db.Limit(limit)
	}
	err := db.Find(&records).Error
	return records, err
}
