package models

import (
	"time"
)

// PaymentEvent is one recorded installment payment against a loan.
// Events are immutable once recorded; the ledger is ordered by OccurredAt
// and its count and sum are the sole payment inputs to amortization and
// progress calculations.
type PaymentEvent struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	LoanID     uint      `gorm:"not null;index" json:"loan_id"`
	Reference  string    `gorm:"size:36;uniqueIndex;not null" json:"reference"`
	Amount     float64   `gorm:"type:decimal(15,2);not null" json:"amount"`
	OccurredAt time.Time `gorm:"not null;index" json:"occurred_at"`
	CreatedAt  time.Time `json:"created_at"`

	// Associations
	Loan Loan `gorm:"foreignKey:LoanID" json:"loan,omitempty"`
}

// TableName specifies the table name for PaymentEvent
func (PaymentEvent) TableName() string {
	return "payment_events"
}

// PaymentEventResponse is the JSON response format for payment events
type PaymentEventResponse struct {
	ID         uint      `json:"id"`
	LoanID     uint      `json:"loan_id"`
	Reference  string    `json:"reference"`
	Amount     float64   `json:"amount"`
	OccurredAt time.Time `json:"occurred_at"`
	CreatedAt  time.Time `json:"created_at"`
}

// ToResponse converts PaymentEvent to PaymentEventResponse
func (p *PaymentEvent) ToResponse() PaymentEventResponse {
	return PaymentEventResponse{
		ID:         p.ID,
		LoanID:     p.LoanID,
		Reference:  p.Reference,
		Amount:     p.Amount,
		OccurredAt: p.OccurredAt,
		CreatedAt:  p.CreatedAt,
	}
}
