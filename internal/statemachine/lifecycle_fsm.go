package statemachine

import (
	"context"
	"fmt"

	"github.com/dvillanueva/loanpulse-api/internal/models"
	"github.com/looplab/fsm"
)

// LifecycleFSM wraps a loan with its lifecycle state machine
type LifecycleFSM struct {
	loan *models.Loan
	fsm  *fsm.FSM
}

// NewLifecycleFSM creates a new loan lifecycle state machine
func NewLifecycleFSM(loan *models.Loan) *LifecycleFSM {
	lfsm := &LifecycleFSM{
		loan: loan,
	}

	lfsm.fsm = fsm.NewFSM(
		loan.Status,
		fsm.Events{
			// pending → approved
			{Name: "approve", Src: []string{models.LoanStatusPending}, Dst: models.LoanStatusApproved},

			// pending → rejected
			{Name: "reject", Src: []string{models.LoanStatusPending}, Dst: models.LoanStatusRejected},

			// approved → active
			{Name: "activate", Src: []string{models.LoanStatusApproved}, Dst: models.LoanStatusActive},

			// approved/active → defaulted
			{Name: "default", Src: []string{models.LoanStatusApproved, models.LoanStatusActive}, Dst: models.LoanStatusDefaulted},

			// active → closed
			{Name: "close", Src: []string{models.LoanStatusActive}, Dst: models.LoanStatusClosed},
		},
		fsm.Callbacks{},
	)

	return lfsm
}

// Approve transitions the loan to approved state
func (l *LifecycleFSM) Approve(ctx context.Context) error {
	if !l.loan.MayApprove() {
		return fmt.Errorf("loan cannot be approved in current state: %s", l.loan.Status)
	}

	if err := l.fsm.Event(ctx, "approve"); err != nil {
		return fmt.Errorf("failed to approve loan: %w", err)
	}

	l.loan.Status = l.fsm.Current()
	return nil
}

// Reject transitions the loan to rejected state
func (l *LifecycleFSM) Reject(ctx context.Context) error {
	if !l.loan.MayReject() {
		return fmt.Errorf("loan cannot be rejected in current state: %s", l.loan.Status)
	}

	if err := l.fsm.Event(ctx, "reject"); err != nil {
		return fmt.Errorf("failed to reject loan: %w", err)
	}

	l.loan.Status = l.fsm.Current()
	return nil
}

// Activate transitions the loan to active state
func (l *LifecycleFSM) Activate(ctx context.Context) error {
	if !l.loan.MayActivate() {
		return fmt.Errorf("loan cannot be activated in current state: %s", l.loan.Status)
	}

	if err := l.fsm.Event(ctx, "activate"); err != nil {
		return fmt.Errorf("failed to activate loan: %w", err)
	}

	l.loan.Status = l.fsm.Current()
	return nil
}

// Default transitions the loan to defaulted state
func (l *LifecycleFSM) Default(ctx context.Context) error {
	if !l.loan.MayDefault() {
		return fmt.Errorf("loan cannot be defaulted in current state: %s", l.loan.Status)
	}

	if err := l.fsm.Event(ctx, "default"); err != nil {
		return fmt.Errorf("failed to default loan: %w", err)
	}

	l.loan.Status = l.fsm.Current()
	return nil
}

// Close transitions the loan to closed state
func (l *LifecycleFSM) Close(ctx context.Context) error {
	if !l.loan.MayClose() {
		return fmt.Errorf("loan cannot be closed in current state: %s", l.loan.Status)
	}

	if err := l.fsm.Event(ctx, "close"); err != nil {
		return fmt.Errorf("failed to close loan: %w", err)
	}

	l.loan.Status = l.fsm.Current()
	return nil
}

// Fire triggers a transition by target status
func (l *LifecycleFSM) Fire(ctx context.Context, targetStatus string) error {
	switch targetStatus {
	case models.LoanStatusApproved:
		return l.Approve(ctx)
	case models.LoanStatusRejected:
		return l.Reject(ctx)
	case models.LoanStatusActive:
		return l.Activate(ctx)
	case models.LoanStatusDefaulted:
		return l.Default(ctx)
	case models.LoanStatusClosed:
		return l.Close(ctx)
	}
	return fmt.Errorf("unknown lifecycle status: %s", targetStatus)
}

// Current returns the current state
func (l *LifecycleFSM) Current() string {
	return l.fsm.Current()
}

// Can checks if a transition is possible
func (l *LifecycleFSM) Can(event string) bool {
	return l.fsm.Can(event)
}
