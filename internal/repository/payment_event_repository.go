package repository

import (
	"context"

	"github.com/dvillanueva/loanpulse-api/internal/models"
	"gorm.io/gorm"
)

// PaymentEventRepository defines the interface for payment ledger access.
// The ledger is append-only: there is no update or delete.
type PaymentEventRepository interface {
	Create(ctx context.Context, event *models.PaymentEvent) error
	FindByLoan(ctx context.Context, loanID uint) ([]models.PaymentEvent, error)
	CountByLoan(ctx context.Context, loanID uint) (int64, error)
	SumByLoan(ctx context.Context, loanID uint) (float64, error)
}

type paymentEventRepository struct {
	db *gorm.DB
}

// NewPaymentEventRepository creates a new payment event repository
func NewPaymentEventRepository(db *gorm.DB) PaymentEventRepository {
	return &paymentEventRepository{db: db}
}

func (r *paymentEventRepository) Create(ctx context.Context, event *models.PaymentEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *paymentEventRepository) FindByLoan(ctx context.Context, loanID uint) ([]models.PaymentEvent, error) {
	var events []models.PaymentEvent
	err := r.db.WithContext(ctx).
		Where("loan_id = ?", loanID).
		Order("occurred_at ASC").
		Find(&events).Error
	return events, err
}

func (r *paymentEventRepository) CountByLoan(ctx context.Context, loanID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.PaymentEvent{}).
		Where("loan_id = ?", loanID).
		Count(&count).Error
	return count, err
}

func (r *paymentEventRepository) SumByLoan(ctx context.Context, loanID uint) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).
		Model(&models.PaymentEvent{}).
		Where("loan_id = ?", loanID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	return total, err
}
