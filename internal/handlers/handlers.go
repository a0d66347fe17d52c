package handlers

import (
	"github.com/dvillanueva/loanpulse-api/internal/services"
)

// Handlers holds all handler instances
type Handlers struct {
	Health   *HealthHandler
	Loan     *LoanHandler
	Payment  *PaymentHandler
	Covenant *CovenantHandler
	Audit    *AuditHandler
}

// NewHandlers creates all handler instances
func NewHandlers(svcs *services.Services) *Handlers {
	return &Handlers{
		Health:   NewHealthHandler(),
		Loan:     NewLoanHandler(svcs.Loan, svcs.Recovery),
		Payment:  NewPaymentHandler(svcs.Recovery),
		Covenant: NewCovenantHandler(svcs.Covenant, svcs.Recovery),
		Audit:    NewAuditHandler(svcs.Audit),
	}
}
