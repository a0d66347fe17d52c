package services

import (
	"context"
	"fmt"

	"github.com/dvillanueva/loanpulse-api/internal/models"
	"github.com/dvillanueva/loanpulse-api/internal/repository"
	"github.com/dvillanueva/loanpulse-api/pkg/logger"
)

// MetricsProvider supplies observed values for covenant types whose metrics
// are computed outside the engine (DSCR, LEVERAGE, ESG_SCORE). The second
// return reports whether a value is available; unavailable metrics leave the
// covenant untouched.
type MetricsProvider interface {
	ObservedValue(ctx context.Context, loan *models.Loan, covenantType string) (float64, bool, error)
}

type noMetrics struct{}

func (noMetrics) ObservedValue(ctx context.Context, loan *models.Loan, covenantType string) (float64, bool, error) {
	return 0, false, nil
}

// NoMetrics returns a MetricsProvider with no external metric feed
func NoMetrics() MetricsProvider {
	return noMetrics{}
}

// CovenantService owns covenant definitions, their evaluation and their
// audit trail
type CovenantService struct {
	repo      repository.CovenantRepository
	auditRepo repository.CovenantAuditRepository
	metrics   MetricsProvider
	clock     Clock
}

// NewCovenantService creates a new covenant service
func NewCovenantService(repo repository.CovenantRepository, auditRepo repository.CovenantAuditRepository, metrics MetricsProvider, clock Clock) *CovenantService {
	if metrics == nil {
		metrics = NoMetrics()
	}
	return &CovenantService{repo: repo, auditRepo: auditRepo, metrics: metrics, clock: clock}
}

// CreateDefaultCovenants instantiates the standard covenant set for a loan
// entering approved state. Idempotent: a loan that already has covenants is
// left untouched.
func (s *CovenantService) CreateDefaultCovenants(ctx context.Context, loan *models.Loan) ([]models.Covenant, error) {
	count, err := s.repo.CountByLoan(ctx, loan.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count covenants: %w", err)
	}
	if count > 0 {
		return nil, nil
	}

	defaults := []models.Covenant{
		{
			LoanID:             loan.ID,
			Type:               models.CovenantTypeDSCR,
			Name:               "Debt Service Coverage",
			Threshold:          1.25,
			ComparisonOperator: models.OperatorLessThan,
			CheckFrequency:     models.FrequencyQuarterly,
			Severity:           models.CovenantSeverityHigh,
			Status:             models.CovenantStatusActive,
		},
		{
			LoanID:             loan.ID,
			Type:               models.CovenantTypePaymentDelay,
			Name:               "Payment Delay",
			Threshold:          7,
			ComparisonOperator: models.OperatorGreaterThan,
			CheckFrequency:     models.FrequencyDaily,
			Severity:           models.CovenantSeverityCritical,
			Status:             models.CovenantStatusActive,
		},
		{
			LoanID:             loan.ID,
			Type:               models.CovenantTypeESGScore,
			Name:               "ESG Score",
			Threshold:          50,
			ComparisonOperator: models.OperatorLessThan,
			CheckFrequency:     models.FrequencyMonthly,
			Severity:           models.CovenantSeverityMedium,
			Status:             models.CovenantStatusActive,
		},
	}

	created := make([]models.Covenant, 0, len(defaults))
	for _, covenant := range defaults {
		c := covenant
		if err := s.repo.Create(ctx, &c); err != nil {
			return created, fmt.Errorf("failed to create default covenant %s: %w", c.Type, err)
		}
		created = append(created, c)
	}
	return created, nil
}

// CreateCovenant creates a manually defined covenant for a loan
func (s *CovenantService) CreateCovenant(ctx context.Context, covenant *models.Covenant) error {
	if covenant.Type == "" || covenant.Name == "" {
		return fmt.Errorf("%w: covenant type and name are required", ErrInvalidLoanTerms)
	}
	switch covenant.ComparisonOperator {
	case models.OperatorGreaterThan, models.OperatorLessThan, models.OperatorGreaterOrEqual, models.OperatorLessOrEqual:
	default:
		return fmt.Errorf("%w: unknown comparison operator %s", ErrInvalidLoanTerms, covenant.ComparisonOperator)
	}
	if covenant.Status == "" {
		covenant.Status = models.CovenantStatusActive
	}
	if covenant.CheckFrequency == "" {
		covenant.CheckFrequency = models.FrequencyDaily
	}
	return s.repo.Create(ctx, covenant)
}

// Evaluate applies a covenant's threshold comparison against current metrics
// and performs the breach/auto-recovery transition, writing audit records per
// the audit policy: every status change, plus re-confirmations on scheduled
// checks. WAIVED and INACTIVE covenants are sticky and skipped. Terminal
// loans (fully paid, recovered, closed) are never escalated.
func (s *CovenantService) Evaluate(ctx context.Context, covenant *models.Covenant, loan *models.Loan, paymentStatus *models.PaymentStatus, trigger string) (*models.Covenant, error) {
	if !covenant.Evaluable() {
		return covenant, nil
	}

	var observed float64
	switch covenant.Type {
	case models.CovenantTypePaymentDelay:
		if paymentStatus == nil {
			return covenant, ErrMissingStartDate
		}
		observed = float64(paymentStatus.OverdueDays())
	case models.CovenantTypeDSCR, models.CovenantTypeLeverage, models.CovenantTypeESGScore:
		value, ok, err := s.metrics.ObservedValue(ctx, loan, covenant.Type)
		if err != nil {
			return covenant, fmt.Errorf("failed to read %s metric: %w", covenant.Type, err)
		}
		if !ok {
			// No metric feed for this covenant: leave it untouched so it
			// stays due and is picked up once a value is available.
			return covenant, nil
		}
		observed = value
	default:
		return covenant, fmt.Errorf("%w: %s", ErrUnsupportedCovenantType, covenant.Type)
	}

	now := s.clock.Now()
	previousStatus := covenant.Status
	terminal := paymentStatus != nil && paymentStatus.IsTerminal

	newStatus := previousStatus
	if !terminal {
		breached := covenant.Compare(observed)
		if breached && previousStatus != models.CovenantStatusBreached {
			newStatus = models.CovenantStatusBreached
		} else if !breached && previousStatus == models.CovenantStatusBreached {
			newStatus = models.CovenantStatusActive
		}
	}

	covenant.Status = newStatus
	covenant.LastCheckedAt = &now
	if err := s.repo.Update(ctx, covenant); err != nil {
		return covenant, fmt.Errorf("failed to update covenant: %w", err)
	}

	if newStatus != previousStatus || trigger == models.TriggerScheduledCheck {
		record := &models.CovenantAuditRecord{
			CovenantID:      covenant.ID,
			PreviousStatus:  previousStatus,
			NewStatus:       newStatus,
			ObservedValue:   observed,
			TriggeringEvent: trigger,
			CheckedAt:       now,
		}
		if err := s.auditRepo.Create(ctx, record); err != nil {
			return covenant, fmt.Errorf("failed to write covenant audit record: %w", err)
		}
	}

	if newStatus != previousStatus {
		logger.Info("covenant status changed",
			"covenant_id", covenant.ID,
			"loan_id", covenant.LoanID,
			"type", covenant.Type,
			"from", previousStatus,
			"to", newStatus,
			"observed", observed,
			"trigger", trigger)
	}

	return covenant, nil
}

// EvaluateLoan evaluates the given covenants of one loan. A failure on one
// covenant is logged and does not stop the rest of the pass; the first error
// is returned after all covenants were attempted.
func (s *CovenantService) EvaluateLoan(ctx context.Context, loan *models.Loan, covenants []models.Covenant, paymentStatus *models.PaymentStatus, trigger string) ([]models.Covenant, error) {
	var firstErr error
	evaluated := make([]models.Covenant, 0, len(covenants))
	for i := range covenants {
		covenant := covenants[i]
		if _, err := s.Evaluate(ctx, &covenant, loan, paymentStatus, trigger); err != nil {
			logger.Error("covenant evaluation failed",
				"covenant_id", covenant.ID,
				"loan_id", loan.ID,
				"type", covenant.Type,
				"error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
		evaluated = append(evaluated, covenant)
	}
	return evaluated, firstErr
}

// ListCovenants returns a loan's covenants, excluding INACTIVE unless asked
func (s *CovenantService) ListCovenants(ctx context.Context, loanID uint, includeInactive bool) ([]models.Covenant, error) {
	return s.repo.FindByLoan(ctx, loanID, includeInactive)
}

// Waive suspends an active or breached covenant until explicitly reactivated
func (s *CovenantService) Waive(ctx context.Context, covenantID uint, actorID *uint) (*models.Covenant, error) {
	return s.override(ctx, covenantID, actorID, models.CovenantStatusWaived, func(status string) bool {
		return status == models.CovenantStatusActive || status == models.CovenantStatusBreached
	})
}

// Reactivate returns a waived or inactive covenant to active monitoring
func (s *CovenantService) Reactivate(ctx context.Context, covenantID uint, actorID *uint) (*models.Covenant, error) {
	return s.override(ctx, covenantID, actorID, models.CovenantStatusActive, func(status string) bool {
		return status == models.CovenantStatusWaived || status == models.CovenantStatusInactive
	})
}

// Deactivate retires a covenant. Covenants are never hard-deleted.
func (s *CovenantService) Deactivate(ctx context.Context, covenantID uint, actorID *uint) (*models.Covenant, error) {
	return s.override(ctx, covenantID, actorID, models.CovenantStatusInactive, func(status string) bool {
		return status != models.CovenantStatusInactive
	})
}

func (s *CovenantService) override(ctx context.Context, covenantID uint, actorID *uint, targetStatus string, allowed func(string) bool) (*models.Covenant, error) {
	covenant, err := s.repo.FindByID(ctx, covenantID)
	if err != nil {
		return nil, translateNotFound(err)
	}

	if !allowed(covenant.Status) {
		return nil, fmt.Errorf("%w: covenant %d cannot move from %s to %s", ErrInvalidTransition, covenantID, covenant.Status, targetStatus)
	}

	now := s.clock.Now()
	previousStatus := covenant.Status
	covenant.Status = targetStatus
	if err := s.repo.Update(ctx, covenant); err != nil {
		return nil, fmt.Errorf("failed to update covenant: %w", err)
	}

	record := &models.CovenantAuditRecord{
		CovenantID:      covenant.ID,
		PreviousStatus:  previousStatus,
		NewStatus:       targetStatus,
		TriggeringEvent: models.TriggerManualOverride,
		ActorID:         actorID,
		CheckedAt:       now,
	}
	if err := s.auditRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to write covenant audit record: %w", err)
	}

	return covenant, nil
}

// AuditTrail returns the most recent audit records for a covenant
func (s *CovenantService) AuditTrail(ctx context.Context, covenantID uint, limit int) ([]models.CovenantAuditRecord, error) {
	if _, err := s.repo.FindByID(ctx, covenantID); err != nil {
		return nil, translateNotFound(err)
	}
	return s.auditRepo.FindByCovenant(ctx, covenantID, limit)
}
