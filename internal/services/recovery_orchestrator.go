package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dvillanueva/loanpulse-api/internal/models"
	"github.com/dvillanueva/loanpulse-api/internal/repository"
	"github.com/dvillanueva/loanpulse-api/pkg/logger"
	"github.com/google/uuid"
)

// loanLocks serializes engine work per loan. Different loans proceed
// concurrently; two evaluations of the same loan never interleave.
type loanLocks struct {
	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

func newLoanLocks() *loanLocks {
	return &loanLocks{locks: make(map[uint]*sync.Mutex)}
}

func (l *loanLocks) lockFor(loanID uint) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	lock, ok := l.locks[loanID]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[loanID] = lock
	}
	return lock
}

// InstallmentAndBalance is the amortization read model for a loan
type InstallmentAndBalance struct {
	LoanID            uint    `json:"loan_id"`
	InstallmentAmount float64 `json:"installment_amount"`
	TotalPayable      float64 `json:"total_payable"`
	TotalPaid         float64 `json:"total_paid"`
	Balance           float64 `json:"balance"`
	Currency          string  `json:"currency"`
}

// RecoveryOrchestrator is the composition root of the engine: on lifecycle
// events, recorded payments and scheduled ticks it runs amortization,
// progress classification and covenant evaluation in order.
type RecoveryOrchestrator struct {
	loanRepo    repository.LoanRepository
	paymentRepo repository.PaymentEventRepository
	covenantSvc *CovenantService
	clock       Clock
	locks       *loanLocks
}

// NewRecoveryOrchestrator creates a new recovery orchestrator
func NewRecoveryOrchestrator(loanRepo repository.LoanRepository, paymentRepo repository.PaymentEventRepository, covenantSvc *CovenantService, clock Clock) *RecoveryOrchestrator {
	return &RecoveryOrchestrator{
		loanRepo:    loanRepo,
		paymentRepo: paymentRepo,
		covenantSvc: covenantSvc,
		clock:       clock,
		locks:       newLoanLocks(),
	}
}

// GetInstallmentAndBalance computes the loan's EMI and outstanding balance,
// always fresh from the ledger
func (o *RecoveryOrchestrator) GetInstallmentAndBalance(ctx context.Context, loanID uint) (*InstallmentAndBalance, error) {
	loan, err := o.loanRepo.FindByID(ctx, loanID)
	if err != nil {
		return nil, translateNotFound(err)
	}

	installment, err := ComputeInstallment(loan.Principal, loan.AnnualInterestRate, loan.TermMonths)
	if err != nil {
		return nil, err
	}

	totalPaid, err := o.paymentRepo.SumByLoan(ctx, loanID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum payments: %w", err)
	}

	return &InstallmentAndBalance{
		LoanID:            loan.ID,
		InstallmentAmount: installment,
		TotalPayable:      installment * float64(loan.TermMonths),
		TotalPaid:         totalPaid,
		Balance:           ComputeBalance(installment, loan.TermMonths, totalPaid),
		Currency:          loan.Currency,
	}, nil
}

// GetPaymentStatus recomputes the loan's payment-progress classification
// from its ledger and the injected clock
func (o *RecoveryOrchestrator) GetPaymentStatus(ctx context.Context, loanID uint) (*models.PaymentStatus, error) {
	loan, err := o.loanRepo.FindByID(ctx, loanID)
	if err != nil {
		return nil, translateNotFound(err)
	}

	events, err := o.paymentRepo.FindByLoan(ctx, loanID)
	if err != nil {
		return nil, fmt.Errorf("failed to load payment ledger: %w", err)
	}

	return ClassifyProgress(loan, events, o.clock.Now())
}

// ListPayments returns the loan's immutable payment ledger in event order
func (o *RecoveryOrchestrator) ListPayments(ctx context.Context, loanID uint) ([]models.PaymentEvent, error) {
	if _, err := o.loanRepo.FindByID(ctx, loanID); err != nil {
		return nil, translateNotFound(err)
	}
	return o.paymentRepo.FindByLoan(ctx, loanID)
}

// RecordPayment appends a payment event and synchronously re-runs
// classification and covenant evaluation for the loan
func (o *RecoveryOrchestrator) RecordPayment(ctx context.Context, loanID uint, amount float64, occurredAt time.Time) (*models.PaymentEvent, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidPayment)
	}

	lock := o.locks.lockFor(loanID)
	lock.Lock()
	defer lock.Unlock()

	loan, err := o.loanRepo.FindByID(ctx, loanID)
	if err != nil {
		return nil, translateNotFound(err)
	}

	switch loan.Status {
	case models.LoanStatusApproved, models.LoanStatusActive, models.LoanStatusDefaulted:
	default:
		return nil, fmt.Errorf("%w: payments cannot be recorded for a %s loan", ErrInvalidTransition, loan.Status)
	}
	if loan.StartDate == nil {
		return nil, ErrMissingStartDate
	}

	event := &models.PaymentEvent{
		LoanID:     loanID,
		Reference:  uuid.NewString(),
		Amount:     amount,
		OccurredAt: occurredAt,
	}
	if err := o.paymentRepo.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to record payment: %w", err)
	}

	if err := o.reevaluate(ctx, loan, models.TriggerPaymentRecorded); err != nil {
		// The payment itself is recorded; a failed re-evaluation surfaces in
		// the logs and the loan is caught by the next scheduled tick.
		logger.Error("post-payment covenant evaluation failed", "loan_id", loanID, "error", err)
	}

	return event, nil
}

// EvaluateCovenants re-evaluates all of a loan's evaluable covenants on
// demand, serialized against other engine work on the same loan
func (o *RecoveryOrchestrator) EvaluateCovenants(ctx context.Context, loanID uint) ([]models.Covenant, error) {
	lock := o.locks.lockFor(loanID)
	lock.Lock()
	defer lock.Unlock()

	loan, err := o.loanRepo.FindByID(ctx, loanID)
	if err != nil {
		return nil, translateNotFound(err)
	}
	if err := o.reevaluate(ctx, loan, models.TriggerScheduledCheck); err != nil {
		return nil, err
	}
	return o.covenantSvc.ListCovenants(ctx, loanID, false)
}

// reevaluate classifies progress and evaluates covenants for one loan.
// Callers must hold the loan's lock. The whole sequence is the unit of
// atomicity for a scheduled tick.
func (o *RecoveryOrchestrator) reevaluate(ctx context.Context, loan *models.Loan, trigger string) error {
	events, err := o.paymentRepo.FindByLoan(ctx, loan.ID)
	if err != nil {
		return fmt.Errorf("failed to load payment ledger: %w", err)
	}

	// A missing start date only blocks PAYMENT_DELAY covenants; metric-based
	// covenants still evaluate with a nil classification.
	paymentStatus, err := ClassifyProgress(loan, events, o.clock.Now())
	if err != nil && !errors.Is(err, ErrMissingStartDate) {
		return err
	}

	covenants, err := o.covenantSvc.ListCovenants(ctx, loan.ID, false)
	if err != nil {
		return fmt.Errorf("failed to list covenants: %w", err)
	}

	if trigger == models.TriggerScheduledCheck {
		now := o.clock.Now()
		due := covenants[:0]
		for _, c := range covenants {
			if c.DueForCheck(now) {
				due = append(due, c)
			}
		}
		covenants = due
	}

	_, err = o.covenantSvc.EvaluateLoan(ctx, loan, covenants, paymentStatus, trigger)
	return err
}

// RunScheduledTick re-evaluates every monitorable loan. Failures and busy
// loans are logged and skipped; they are retried on the next tick. Returns
// the number of loans evaluated.
func (o *RecoveryOrchestrator) RunScheduledTick(ctx context.Context) (int, error) {
	loans, err := o.loanRepo.FindMonitorable(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list monitorable loans: %w", err)
	}

	evaluated := 0
	for i := range loans {
		if err := ctx.Err(); err != nil {
			// Cancellation between loans, never inside one: each loan's
			// evaluate-and-audit sequence completes or never starts.
			return evaluated, err
		}

		loan := &loans[i]
		if err := o.tickLoan(ctx, loan); err != nil {
			if errors.Is(err, ErrConcurrentModification) {
				logger.Warn("loan busy, skipping until next tick", "loan_id", loan.ID)
			} else {
				logger.Error("scheduled evaluation failed", "loan_id", loan.ID, "error", err)
			}
			continue
		}
		evaluated++
	}

	logger.Info("scheduled covenant tick finished", "loans_total", len(loans), "loans_evaluated", evaluated)
	return evaluated, nil
}

func (o *RecoveryOrchestrator) tickLoan(ctx context.Context, loan *models.Loan) error {
	lock := o.locks.lockFor(loan.ID)
	if !lock.TryLock() {
		return ErrConcurrentModification
	}
	defer lock.Unlock()

	return o.reevaluate(ctx, loan, models.TriggerScheduledCheck)
}
