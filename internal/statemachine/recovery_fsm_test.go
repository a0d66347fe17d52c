package statemachine

import (
	"context"
	"testing"

	"github.com/dvillanueva/loanpulse-api/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestRecoveryHappyPath(t *testing.T) {
	ctx := context.Background()
	loan := &models.Loan{Status: models.LoanStatusDefaulted, RecoveryStatus: models.RecoveryStatusPending}

	assert.NoError(t, NewRecoveryFSM(loan).Start(ctx))
	assert.Equal(t, models.RecoveryStatusInProgress, loan.RecoveryStatus)

	assert.NoError(t, NewRecoveryFSM(loan).Recover(ctx))
	assert.Equal(t, models.RecoveryStatusRecovered, loan.RecoveryStatus)
}

func TestRecoveryRequiresWorkableLifecycle(t *testing.T) {
	ctx := context.Background()

	// Recovery only moves while the lifecycle is active or defaulted
	for _, status := range []string{models.LoanStatusPending, models.LoanStatusApproved, models.LoanStatusRejected, models.LoanStatusClosed} {
		loan := &models.Loan{Status: status, RecoveryStatus: models.RecoveryStatusPending}
		assert.Error(t, NewRecoveryFSM(loan).Start(ctx), "lifecycle=%s", status)
		assert.Equal(t, models.RecoveryStatusPending, loan.RecoveryStatus)
	}
}

func TestRecoveryCannotSkipInProgress(t *testing.T) {
	ctx := context.Background()
	loan := &models.Loan{Status: models.LoanStatusActive, RecoveryStatus: models.RecoveryStatusPending}

	assert.Error(t, NewRecoveryFSM(loan).Recover(ctx))
	assert.Equal(t, models.RecoveryStatusPending, loan.RecoveryStatus)
}

func TestRecoveryReopen(t *testing.T) {
	ctx := context.Background()
	loan := &models.Loan{Status: models.LoanStatusDefaulted, RecoveryStatus: models.RecoveryStatusRecovered}

	// Fire routes in_progress on a recovered loan to the explicit re-open
	assert.NoError(t, NewRecoveryFSM(loan).Fire(ctx, models.RecoveryStatusInProgress))
	assert.Equal(t, models.RecoveryStatusInProgress, loan.RecoveryStatus)

	// And can be marked recovered again afterwards
	assert.NoError(t, NewRecoveryFSM(loan).Fire(ctx, models.RecoveryStatusRecovered))
	assert.Equal(t, models.RecoveryStatusRecovered, loan.RecoveryStatus)
}

func TestRecoveryFireUnknownStatus(t *testing.T) {
	loan := &models.Loan{Status: models.LoanStatusActive, RecoveryStatus: models.RecoveryStatusPending}
	err := NewRecoveryFSM(loan).Fire(context.Background(), "abandoned")
	assert.Error(t, err)
	assert.Equal(t, models.RecoveryStatusPending, loan.RecoveryStatus)
}
