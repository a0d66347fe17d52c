package repository

import (
	"gorm.io/gorm"
)

// Repositories holds all repository instances
type Repositories struct {
	Loan          LoanRepository
	PaymentEvent  PaymentEventRepository
	Covenant      CovenantRepository
	CovenantAudit CovenantAuditRepository
}

// NewRepositories creates all repository instances
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Loan:          NewLoanRepository(db),
		PaymentEvent:  NewPaymentEventRepository(db),
		Covenant:      NewCovenantRepository(db),
		CovenantAudit: NewCovenantAuditRepository(db),
	}
}

// ListQuery represents common query parameters
type ListQuery struct {
	Page    int
	PerPage int
	SortBy  string
	SortDir string
	Filters map[string]string
}

// NewListQuery creates a ListQuery with defaults
func NewListQuery() *ListQuery {
	return &ListQuery{
		Page:    1,
		PerPage: 20,
		Filters: make(map[string]string),
	}
}

func (q *ListQuery) offset() int {
	if q.Page < 1 {
		return 0
	}
	return (q.Page - 1) * q.PerPage
}
