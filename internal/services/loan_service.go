package services

import (
	"context"
	"fmt"

	"github.com/dvillanueva/loanpulse-api/internal/models"
	"github.com/dvillanueva/loanpulse-api/internal/repository"
	"github.com/dvillanueva/loanpulse-api/internal/statemachine"
	"github.com/dvillanueva/loanpulse-api/pkg/logger"
)

// LoanService owns loan applications, lifecycle transitions and the
// agent-managed recovery status
type LoanService struct {
	repo        repository.LoanRepository
	covenantSvc *CovenantService
	auditSvc    *AuditService
	clock       Clock
}

// NewLoanService creates a new loan service
func NewLoanService(repo repository.LoanRepository, covenantSvc *CovenantService, auditSvc *AuditService, clock Clock) *LoanService {
	return &LoanService{repo: repo, covenantSvc: covenantSvc, auditSvc: auditSvc, clock: clock}
}

// CreateLoanParams holds the fields of a new loan application
type CreateLoanParams struct {
	CustomerRef        string
	Principal          float64
	AnnualInterestRate float64
	TermMonths         int
	Currency           string
}

// Create registers a new loan application in pending state
func (s *LoanService) Create(ctx context.Context, params CreateLoanParams) (*models.Loan, error) {
	if params.Principal <= 0 || params.TermMonths <= 0 || params.AnnualInterestRate < 0 {
		return nil, ErrInvalidLoanTerms
	}

	loan := &models.Loan{
		CustomerRef:        params.CustomerRef,
		Principal:          params.Principal,
		AnnualInterestRate: params.AnnualInterestRate,
		TermMonths:         params.TermMonths,
		Currency:           params.Currency,
		Status:             models.LoanStatusPending,
		RecoveryStatus:     models.RecoveryStatusPending,
	}
	if loan.Currency == "" {
		loan.Currency = "EUR"
	}

	if err := s.repo.Create(ctx, loan); err != nil {
		return nil, fmt.Errorf("failed to create loan: %w", err)
	}
	return loan, nil
}

// FindByID returns a loan by id
func (s *LoanService) FindByID(ctx context.Context, id uint) (*models.Loan, error) {
	loan, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translateNotFound(err)
	}
	return loan, nil
}

// List returns loans matching the query
func (s *LoanService) List(ctx context.Context, query *repository.ListQuery) ([]models.Loan, int64, error) {
	return s.repo.List(ctx, query)
}

// Delete destroys a loan record. Only rejected applications may ever be
// deleted; every other status is retained.
func (s *LoanService) Delete(ctx context.Context, id uint, actorRole string, actorID *uint) error {
	if actorRole != models.RoleAdmin {
		return ErrUnauthorized
	}

	loan, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return translateNotFound(err)
	}
	if !loan.MayDelete() {
		return fmt.Errorf("%w: only rejected loans can be deleted, loan %d is %s", ErrInvalidTransition, id, loan.Status)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete loan: %w", err)
	}
	return s.auditSvc.Log(ctx, actorID, actorRole, "DELETE", "Loan", id, "rejected application deleted")
}

// TransitionLifecycle moves a loan's lifecycle status. Lifecycle mutations
// are admin actions. Entering approved stamps the start date and instantiates
// the default covenant set.
func (s *LoanService) TransitionLifecycle(ctx context.Context, loanID uint, newStatus, actorRole string, actorID *uint) (*models.Loan, error) {
	if actorRole != models.RoleAdmin {
		return nil, ErrUnauthorized
	}

	loan, err := s.repo.FindByID(ctx, loanID)
	if err != nil {
		return nil, translateNotFound(err)
	}

	previousStatus := loan.Status
	machine := statemachine.NewLifecycleFSM(loan)
	if err := machine.Fire(ctx, newStatus); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTransition, err)
	}

	now := s.clock.Now()
	switch loan.Status {
	case models.LoanStatusApproved:
		// Start date is set exactly once, at approval; every time-based
		// derivation depends on it.
		if loan.StartDate == nil {
			startDate := now
			loan.StartDate = &startDate
		}
		loan.ApprovedAt = &now
	case models.LoanStatusClosed:
		loan.ClosedAt = &now
	}

	if err := s.repo.Update(ctx, loan); err != nil {
		return nil, fmt.Errorf("failed to update loan: %w", err)
	}

	if loan.Status == models.LoanStatusApproved {
		if _, err := s.covenantSvc.CreateDefaultCovenants(ctx, loan); err != nil {
			return nil, fmt.Errorf("failed to create default covenants: %w", err)
		}
	}

	if err := s.auditSvc.Log(ctx, actorID, actorRole, "TRANSITION", "Loan", loan.ID,
		fmt.Sprintf("lifecycle %s -> %s", previousStatus, loan.Status)); err != nil {
		logger.Error("failed to write loan audit entry", "loan_id", loan.ID, "error", err)
	}

	return loan, nil
}

// UpdateRecoveryStatus moves the agent-managed recovery status. Only the
// assigned agent or an admin may move it; re-opening a recovered loan is
// admin-only and audited.
func (s *LoanService) UpdateRecoveryStatus(ctx context.Context, loanID uint, newStatus, actorRole string, actorID *uint) (*models.Loan, error) {
	loan, err := s.repo.FindByID(ctx, loanID)
	if err != nil {
		return nil, translateNotFound(err)
	}

	switch actorRole {
	case models.RoleAdmin:
	case models.RoleAgent:
		if actorID == nil || !loan.IsAssignedAgent(*actorID) {
			return nil, ErrUnauthorized
		}
	default:
		return nil, ErrUnauthorized
	}

	// Backward transitions are an explicit admin re-open.
	if loan.RecoveryStatus == models.RecoveryStatusRecovered && actorRole != models.RoleAdmin {
		return nil, ErrUnauthorized
	}

	previousStatus := loan.RecoveryStatus
	machine := statemachine.NewRecoveryFSM(loan)
	if err := machine.Fire(ctx, newStatus); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTransition, err)
	}

	if err := s.repo.Update(ctx, loan); err != nil {
		return nil, fmt.Errorf("failed to update loan: %w", err)
	}

	if err := s.auditSvc.Log(ctx, actorID, actorRole, "RECOVERY", "Loan", loan.ID,
		fmt.Sprintf("recovery %s -> %s", previousStatus, loan.RecoveryStatus)); err != nil {
		logger.Error("failed to write loan audit entry", "loan_id", loan.ID, "error", err)
	}

	return loan, nil
}

// AssignAgent puts a recovery agent on an approved, unassigned loan
func (s *LoanService) AssignAgent(ctx context.Context, loanID, agentID uint, actorRole string, actorID *uint) (*models.Loan, error) {
	if actorRole != models.RoleAdmin {
		return nil, ErrUnauthorized
	}

	loan, err := s.repo.FindByID(ctx, loanID)
	if err != nil {
		return nil, translateNotFound(err)
	}
	if !loan.MayAssignAgent() {
		return nil, fmt.Errorf("%w: agent can only be assigned to an approved, unassigned loan", ErrInvalidTransition)
	}

	loan.AssignedAgentID = &agentID
	if err := s.repo.Update(ctx, loan); err != nil {
		return nil, fmt.Errorf("failed to update loan: %w", err)
	}

	if err := s.auditSvc.Log(ctx, actorID, actorRole, "ASSIGN", "Loan", loan.ID,
		fmt.Sprintf("agent %d assigned", agentID)); err != nil {
		logger.Error("failed to write loan audit entry", "loan_id", loan.ID, "error", err)
	}

	return loan, nil
}
