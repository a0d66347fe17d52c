package services

import (
	"github.com/dvillanueva/loanpulse-api/internal/repository"
	"gorm.io/gorm"
)

// Services holds all service instances
type Services struct {
	Loan     *LoanService
	Covenant *CovenantService
	Recovery *RecoveryOrchestrator
	Audit    *AuditService
}

// NewServices creates all service instances
func NewServices(repos *repository.Repositories, metrics MetricsProvider, clock Clock, db *gorm.DB) *Services {
	if clock == nil {
		clock = SystemClock()
	}

	auditSvc := NewAuditService(db)
	covenantSvc := NewCovenantService(repos.Covenant, repos.CovenantAudit, metrics, clock)

	return &Services{
		Loan:     NewLoanService(repos.Loan, covenantSvc, auditSvc, clock),
		Covenant: covenantSvc,
		Recovery: NewRecoveryOrchestrator(repos.Loan, repos.PaymentEvent, covenantSvc, clock),
		Audit:    auditSvc,
	}
}
