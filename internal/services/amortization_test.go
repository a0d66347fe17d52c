package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeInstallment(t *testing.T) {
	// 12 000 at 12% over 12 months, the canonical EMI check
	installment, err := ComputeInstallment(12000, 12, 12)
	assert.NoError(t, err)
	assert.InDelta(t, 1066.19, installment, 0.01)

	// Zero rate degenerates to straight division
	installment, err = ComputeInstallment(1200, 0, 12)
	assert.NoError(t, err)
	assert.Equal(t, 100.0, installment)
}

func TestComputeInstallmentInvalidTerms(t *testing.T) {
	cases := []struct {
		name      string
		principal float64
		rate      float64
		term      int
	}{
		{"zero principal", 0, 12, 12},
		{"negative principal", -5000, 12, 12},
		{"zero term", 12000, 12, 0},
		{"negative term", 12000, 12, -6},
		{"negative rate", 12000, -1, 12},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ComputeInstallment(tc.principal, tc.rate, tc.term)
			assert.ErrorIs(t, err, ErrInvalidLoanTerms)
		})
	}
}

func TestComputeInstallmentCoversPrincipal(t *testing.T) {
	// With a non-negative rate, the installments always repay at least
	// the principal.
	cases := []struct {
		principal float64
		rate      float64
		term      int
	}{
		{12000, 12, 12},
		{250000, 3.5, 240},
		{800, 0, 4},
		{50000, 22.9, 36},
	}

	for _, tc := range cases {
		installment, err := ComputeInstallment(tc.principal, tc.rate, tc.term)
		assert.NoError(t, err)
		assert.GreaterOrEqual(t, installment*float64(tc.term), tc.principal-0.01)
	}
}

func TestComputeBalance(t *testing.T) {
	installment, err := ComputeInstallment(12000, 12, 12)
	assert.NoError(t, err)

	// Nothing paid: full amortized total outstanding
	assert.InDelta(t, installment*12, ComputeBalance(installment, 12, 0), 0.01)

	// Half paid
	assert.InDelta(t, installment*6, ComputeBalance(installment, 12, installment*6), 0.01)

	// Sub-unit residuals absorb rounding and read as paid off
	assert.Equal(t, 0.0, ComputeBalance(installment, 12, installment*12-0.5))
	assert.Equal(t, 0.0, ComputeBalance(installment, 12, installment*12))

	// Overpayment never goes negative
	assert.Equal(t, 0.0, ComputeBalance(installment, 12, installment*13))
}
