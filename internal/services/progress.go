package services

import (
	"math"
	"time"

	"github.com/dvillanueva/loanpulse-api/internal/models"
	"github.com/dvillanueva/loanpulse-api/pkg/logger"
)

// daysPerMonth is the engine's fixed month approximation. Every elapsed-time
// derivation in this package goes through it; it is intentionally not
// calendar-accurate and must stay consistent across callers.
const daysPerMonth = 30

// floorDays returns the whole days from `from` to `to`, floored.
// Negative results mean `to` precedes `from`.
func floorDays(from, to time.Time) int {
	return int(math.Floor(to.Sub(from).Hours() / 24))
}

// installmentDueDate returns the due date of the installment following the
// first `expected` installments, using the 30-day month convention.
func installmentDueDate(startDate time.Time, expected int) time.Time {
	return startDate.AddDate(0, 0, expected*daysPerMonth)
}

// ClassifyProgress derives a loan's payment-progress classification from its
// ledger and the current time. It is pure: nothing is persisted and calling
// it twice with the same inputs yields the same result.
func ClassifyProgress(loan *models.Loan, events []models.PaymentEvent, now time.Time) (*models.PaymentStatus, error) {
	if loan.StartDate == nil {
		return nil, ErrMissingStartDate
	}
	startDate := *loan.StartDate

	daysSinceStart := floorDays(startDate, now)
	if daysSinceStart < 0 {
		daysSinceStart = 0
	}
	monthsSinceStart := daysSinceStart / daysPerMonth

	installmentsExpected := monthsSinceStart
	if installmentsExpected > loan.TermMonths {
		installmentsExpected = loan.TermMonths
	}
	installmentsCompleted := len(events)

	pendingInstallments := installmentsExpected - installmentsCompleted
	if pendingInstallments < 0 {
		pendingInstallments = 0
	}

	nextDueDate := installmentDueDate(startDate, installmentsExpected)
	daysOverdue := floorDays(nextDueDate, now)

	status := &models.PaymentStatus{
		LoanID:                loan.ID,
		InstallmentsExpected:  installmentsExpected,
		InstallmentsCompleted: installmentsCompleted,
		PendingInstallments:   pendingInstallments,
		HighestPaidIndex:      installmentsCompleted,
		NextDueDate:           nextDueDate,
		DaysOverdue:           daysOverdue,
		ComputedAt:            now,
	}

	// Terminal checks come first: a fully paid or recovered/closed loan is
	// never escalated, whatever its ledger looks like.
	switch {
	case loan.TermMonths > 0 && installmentsCompleted >= loan.TermMonths:
		status.Severity = models.SeverityCompleted
		status.SeverityLabel = "fully paid"
		status.IsTerminal = true
		return status, nil
	case loan.RecoveryStatus == models.RecoveryStatusRecovered || loan.Status == models.LoanStatusClosed:
		status.Severity = models.SeverityCompleted
		status.SeverityLabel = "fully recovered"
		status.IsTerminal = true
		return status, nil
	case loan.Status == models.LoanStatusRejected:
		status.IsTerminal = true
	}

	switch {
	case pendingInstallments > 0 && daysOverdue > 7:
		status.Severity = models.SeverityCritical
		status.SeverityLabel = "severely overdue"
	case pendingInstallments > 0 && daysOverdue >= 4:
		status.Severity = models.SeverityWarning
		status.SeverityLabel = "overdue"
	case pendingInstallments > 0 && daysOverdue > 0:
		status.Severity = models.SeverityLate
		status.SeverityLabel = "slightly late"
	case pendingInstallments == 0 && installmentsCompleted > 0:
		status.Severity = models.SeverityOnTrack
		status.SeverityLabel = "on schedule"
	case installmentsCompleted == 0 && installmentsExpected == 0:
		status.Severity = models.SeverityAwaitingFirst
		status.SeverityLabel = "first installment not yet due"
	default:
		// Should not occur for a well-formed loan. Classify rather than
		// fail, so one odd loan does not break a whole evaluation pass.
		logger.Warn("unclassifiable payment progress",
			"loan_id", loan.ID,
			"expected", installmentsExpected,
			"completed", installmentsCompleted,
			"days_overdue", daysOverdue)
		status.Severity = models.SeverityUnknown
		status.SeverityLabel = "unclassified"
	}

	return status, nil
}
