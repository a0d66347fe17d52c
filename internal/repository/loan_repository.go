package repository

import (
	"context"
	"strings"

	"github.com/dvillanueva/loanpulse-api/internal/models"
	"gorm.io/gorm"
)

// LoanRepository defines the interface for loan data access
type LoanRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Loan, error)
	FindByIDWithDetails(ctx context.Context, id uint) (*models.Loan, error)
	Create(ctx context.Context, loan *models.Loan) error
	Update(ctx context.Context, loan *models.Loan) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, query *ListQuery) ([]models.Loan, int64, error)
	FindMonitorable(ctx context.Context) ([]models.Loan, error)
}

type loanRepository struct {
	db *gorm.DB
}

// NewLoanRepository creates a new loan repository
func NewLoanRepository(db *gorm.DB) LoanRepository {
	return &loanRepository{db: db}
}

func (r *loanRepository) FindByID(ctx context.Context, id uint) (*models.Loan, error) {
	var loan models.Loan
	err := r.db.WithContext(ctx).First(&loan, id).Error
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

func (r *loanRepository) FindByIDWithDetails(ctx context.Context, id uint) (*models.Loan, error) {
	var loan models.Loan
	err := r.db.WithContext(ctx).
		Preload("Payments", func(db *gorm.DB) *gorm.DB {
			return db.Order("occurred_at ASC")
		}).
		Preload("Covenants").
		First(&loan, id).Error
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

func (r *loanRepository) Create(ctx context.Context, loan *models.Loan) error {
	return r.db.WithContext(ctx).Create(loan).Error
}

func (r *loanRepository) Update(ctx context.Context, loan *models.Loan) error {
	return r.db.WithContext(ctx).Save(loan).Error
}

func (r *loanRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Loan{}, id).Error
}

func (r *loanRepository) List(ctx context.Context, query *ListQuery) ([]models.Loan, int64, error) {
	var loans []models.Loan
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Loan{})

	if query.Filters != nil {
		if val, ok := query.Filters["status_in"]; ok && val != "" {
			statuses := strings.Split(val, ",")
			for i, s := range statuses {
				statuses[i] = strings.TrimSpace(s)
			}
			db = db.Where("loans.status IN ?", statuses)
		} else if val := query.Filters["status"]; val != "" {
			db = db.Where("loans.status = ?", val)
		}
		if val := query.Filters["recovery_status"]; val != "" {
			db = db.Where("loans.recovery_status = ?", val)
		}
		if val := query.Filters["agent_id"]; val != "" {
			db = db.Where("loans.assigned_agent_id = ?", val)
		}
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sortBy := "created_at"
	if query.SortBy != "" {
		sortBy = query.SortBy
	}
	sortDir := "desc"
	if query.SortDir == "asc" {
		sortDir = "asc"
	}

	err := db.Order(sortBy + " " + sortDir).
		Limit(query.PerPage).
		Offset(query.offset()).
		Find(&loans).Error
	return loans, total, err
}

// FindMonitorable returns loans that participate in scheduled covenant
// re-evaluation: approved, active or defaulted.
func (r *loanRepository) FindMonitorable(ctx context.Context) ([]models.Loan, error) {
	var loans []models.Loan
	err := r.db.WithContext(ctx).
		Where("status IN ?", []string{
			models.LoanStatusApproved,
			models.LoanStatusActive,
			models.LoanStatusDefaulted,
		}).
		Order("id ASC").
		Find(&loans).Error
	return loans, err
}
