package services

import (
	"math"
)

// ComputeInstallment returns the fixed periodic installment (EMI) for an
// amortizing loan using the standard formula
//
//	P * r * (1+r)^n / ((1+r)^n - 1)
//
// where r is the monthly rate and n the term in months. A zero rate
// degenerates to straight principal division.
func ComputeInstallment(principal, annualRatePercent float64, termMonths int) (float64, error) {
	if principal <= 0 || termMonths <= 0 || annualRatePercent < 0 {
		return 0, ErrInvalidLoanTerms
	}

	monthlyRate := annualRatePercent / 100 / 12
	if monthlyRate == 0 {
		return principal / float64(termMonths), nil
	}

	factor := math.Pow(1+monthlyRate, float64(termMonths))
	return principal * monthlyRate * factor / (factor - 1), nil
}

// ComputeBalance returns the outstanding balance given the installment
// amount, the term and the total paid so far. Residuals under one currency
// unit are treated as fully paid to absorb rounding.
func ComputeBalance(installmentAmount float64, termMonths int, totalPaid float64) float64 {
	balance := installmentAmount*float64(termMonths) - totalPaid
	if balance < 1 {
		return 0
	}
	return balance
}
