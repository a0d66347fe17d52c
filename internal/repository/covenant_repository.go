package repository

import (
	"context"

	"github.com/dvillanueva/loanpulse-api/internal/models"
	"gorm.io/gorm"
)

// CovenantRepository defines the interface for covenant data access.
// Covenants are never hard-deleted; deactivation is a status update.
type CovenantRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Covenant, error)
	FindByLoan(ctx context.Context, loanID uint, includeInactive bool) ([]models.Covenant, error)
	CountByLoan(ctx context.Context, loanID uint) (int64, error)
	Create(ctx context.Context, covenant *models.Covenant) error
	Update(ctx context.Context, covenant *models.Covenant) error
}

type covenantRepository struct {
	db *gorm.DB
}

// NewCovenantRepository creates a new covenant repository
func NewCovenantRepository(db *gorm.DB) CovenantRepository {
	return &covenantRepository{db: db}
}

func (r *covenantRepository) FindByID(ctx context.Context, id uint) (*models.Covenant, error) {
	var covenant models.Covenant
	err := r.db.WithContext(ctx).First(&covenant, id).Error
	if err != nil {
		return nil, err
	}
	return &covenant, nil
}

func (r *covenantRepository) FindByLoan(ctx context.Context, loanID uint, includeInactive bool) ([]models.Covenant, error) {
	var covenants []models.Covenant
	db := r.db.WithContext(ctx).Where("loan_id = ?", loanID)
	if !includeInactive {
		db = db.Where("status <> ?", models.CovenantStatusInactive)
	}
	err := db.Order("id ASC").Find(&covenants).Error
	return covenants, err
}

func (r *covenantRepository) CountByLoan(ctx context.Context, loanID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Covenant{}).
		Where("loan_id = ?", loanID).
		Count(&count).Error
	return count, err
}

func (r *covenantRepository) Create(ctx context.Context, covenant *models.Covenant) error {
	return r.db.WithContext(ctx).Create(covenant).Error
}

func (r *covenantRepository) Update(ctx context.Context, covenant *models.Covenant) error {
	return r.db.WithContext(ctx).Save(covenant).Error
}
