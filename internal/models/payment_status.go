package models

import (
	"time"
)

// Severity tiers for payment progress. LATE/WARNING/CRITICAL use strict
// 4-day and 7-day boundaries; these are business policy, do not widen them.
const (
	SeverityOnTrack       = "ON_TRACK"
	SeverityLate          = "LATE"
	SeverityWarning       = "WARNING"
	SeverityCritical      = "CRITICAL"
	SeverityCompleted     = "COMPLETED"
	SeverityAwaitingFirst = "AWAITING_FIRST"
	SeverityUnknown       = "UNKNOWN"
)

// PaymentStatus is the derived payment-progress classification of a loan.
// It is never persisted; it is recomputed from the loan and its payment
// ledger on every read so the classification cannot drift from the events.
type PaymentStatus struct {
	LoanID                uint      `json:"loan_id"`
	InstallmentsExpected  int       `json:"installments_expected"`
	InstallmentsCompleted int       `json:"installments_completed"`
	PendingInstallments   int       `json:"pending_installments"`
	HighestPaidIndex      int       `json:"highest_paid_installment_index"`
	NextDueDate           time.Time `json:"next_due_date"`
	DaysOverdue           int       `json:"days_overdue"`
	Severity              string    `json:"severity"`
	SeverityLabel         string    `json:"severity_label"`
	IsTerminal            bool      `json:"is_terminal"`
	ComputedAt            time.Time `json:"computed_at"`
}

// Overdue returns true if the next expected installment is past due
func (s *PaymentStatus) Overdue() bool {
	return !s.IsTerminal && s.PendingInstallments > 0 && s.DaysOverdue > 0
}

// OverdueDays returns the days overdue, floored at zero, for covenant checks
func (s *PaymentStatus) OverdueDays() int {
	if !s.Overdue() {
		return 0
	}
	return s.DaysOverdue
}
