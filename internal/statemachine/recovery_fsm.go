package statemachine

import (
	"context"
	"fmt"

	"github.com/dvillanueva/loanpulse-api/internal/models"
	"github.com/looplab/fsm"
)

// RecoveryFSM wraps a loan with its recovery-status state machine.
// Recovery status is independent of the lifecycle and only moves while
// the lifecycle is active or defaulted.
type RecoveryFSM struct {
	loan *models.Loan
	fsm  *fsm.FSM
}

// NewRecoveryFSM creates a new recovery state machine
func NewRecoveryFSM(loan *models.Loan) *RecoveryFSM {
	rfsm := &RecoveryFSM{
		loan: loan,
	}

	rfsm.fsm = fsm.NewFSM(
		loan.RecoveryStatus,
		fsm.Events{
			// pending → in_progress
			{Name: "start", Src: []string{models.RecoveryStatusPending}, Dst: models.RecoveryStatusInProgress},

			// in_progress → recovered
			{Name: "recover", Src: []string{models.RecoveryStatusInProgress}, Dst: models.RecoveryStatusRecovered},

			// recovered → in_progress (admin re-open, audited by the caller)
			{Name: "reopen", Src: []string{models.RecoveryStatusRecovered}, Dst: models.RecoveryStatusInProgress},
		},
		fsm.Callbacks{},
	)

	return rfsm
}

// Start transitions recovery to in_progress
func (r *RecoveryFSM) Start(ctx context.Context) error {
	if !r.loan.MayStartRecovery() {
		return fmt.Errorf("recovery cannot start for loan in state %s/%s", r.loan.Status, r.loan.RecoveryStatus)
	}

	if err := r.fsm.Event(ctx, "start"); err != nil {
		return fmt.Errorf("failed to start recovery: %w", err)
	}

	r.loan.RecoveryStatus = r.fsm.Current()
	return nil
}

// Recover transitions recovery to recovered
func (r *RecoveryFSM) Recover(ctx context.Context) error {
	if !r.loan.MayMarkRecovered() {
		return fmt.Errorf("loan cannot be marked recovered in state %s/%s", r.loan.Status, r.loan.RecoveryStatus)
	}

	if err := r.fsm.Event(ctx, "recover"); err != nil {
		return fmt.Errorf("failed to mark loan recovered: %w", err)
	}

	r.loan.RecoveryStatus = r.fsm.Current()
	return nil
}

// Reopen transitions recovery from recovered back to in_progress
func (r *RecoveryFSM) Reopen(ctx context.Context) error {
	if !r.loan.MayReopenRecovery() {
		return fmt.Errorf("recovery cannot be re-opened in state %s/%s", r.loan.Status, r.loan.RecoveryStatus)
	}

	if err := r.fsm.Event(ctx, "reopen"); err != nil {
		return fmt.Errorf("failed to re-open recovery: %w", err)
	}

	r.loan.RecoveryStatus = r.fsm.Current()
	return nil
}

// Fire triggers a transition by target recovery status
func (r *RecoveryFSM) Fire(ctx context.Context, targetStatus string) error {
	switch targetStatus {
	case models.RecoveryStatusInProgress:
		if r.loan.RecoveryStatus == models.RecoveryStatusRecovered {
			return r.Reopen(ctx)
		}
		return r.Start(ctx)
	case models.RecoveryStatusRecovered:
		return r.Recover(ctx)
	}
	return fmt.Errorf("unknown recovery status: %s", targetStatus)
}

// Current returns the current state
func (r *RecoveryFSM) Current() string {
	return r.fsm.Current()
}

// Can checks if a transition is possible
func (r *RecoveryFSM) Can(event string) bool {
	return r.fsm.Can(event)
}
