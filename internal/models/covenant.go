package models

import (
	"time"
)

// Covenant is a contractual threshold condition attached to a loan.
// Covenants are never hard-deleted; they transition to INACTIVE instead.
type Covenant struct {
	ID                 uint       `gorm:"primaryKey" json:"id"`
	LoanID             uint       `gorm:"not null;index" json:"loan_id"`
	Type               string     `gorm:"size:30;not null;index" json:"type"`
	Name               string     `gorm:"size:120;not null" json:"name"`
	Threshold          float64    `gorm:"type:decimal(15,4);not null" json:"threshold"`
	ComparisonOperator string     `gorm:"size:20;not null" json:"comparison_operator"`
	CheckFrequency     string     `gorm:"size:20;not null" json:"check_frequency"`
	Severity           string     `gorm:"size:20;not null" json:"severity"`
	Status             string     `gorm:"default:ACTIVE;not null;index" json:"status"`
	LastCheckedAt      *time.Time `json:"last_checked_at"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`

	// Associations
	Loan         Loan                  `gorm:"foreignKey:LoanID" json:"loan,omitempty"`
	AuditRecords []CovenantAuditRecord `gorm:"foreignKey:CovenantID" json:"audit_records,omitempty"`
}

// TableName specifies the table name for Covenant
func (Covenant) TableName() string {
	return "covenants"
}

// Covenant type constants
const (
	CovenantTypeDSCR         = "DSCR"
	CovenantTypeLeverage     = "LEVERAGE"
	CovenantTypePaymentDelay = "PAYMENT_DELAY"
	CovenantTypeESGScore     = "ESG_SCORE"
)

// Comparison operator constants
const (
	OperatorGreaterThan    = "GREATER_THAN"
	OperatorLessThan       = "LESS_THAN"
	OperatorGreaterOrEqual = "GREATER_OR_EQUAL"
	OperatorLessOrEqual    = "LESS_OR_EQUAL"
)

// Check frequency constants
const (
	FrequencyDaily     = "DAILY"
	FrequencyWeekly    = "WEEKLY"
	FrequencyMonthly   = "MONTHLY"
	FrequencyQuarterly = "QUARTERLY"
)

// Covenant severity constants
const (
	CovenantSeverityLow      = "LOW"
	CovenantSeverityMedium   = "MEDIUM"
	CovenantSeverityHigh     = "HIGH"
	CovenantSeverityCritical = "CRITICAL"
)

// Covenant status constants
const (
	CovenantStatusActive   = "ACTIVE"
	CovenantStatusBreached = "BREACHED"
	CovenantStatusWaived   = "WAIVED"
	CovenantStatusInactive = "INACTIVE"
)

// KnownCovenantType returns true for the built-in covenant types
func KnownCovenantType(t string) bool {
	switch t {
	case CovenantTypeDSCR, CovenantTypeLeverage, CovenantTypePaymentDelay, CovenantTypeESGScore:
		return true
	}
	return false
}

// Evaluable returns true if the covenant participates in evaluation passes.
// WAIVED and INACTIVE are sticky until an explicit admin action.
func (c *Covenant) Evaluable() bool {
	return c.Status == CovenantStatusActive || c.Status == CovenantStatusBreached
}

// Compare applies the covenant's operator to an observed value
func (c *Covenant) Compare(observed float64) bool {
	switch c.ComparisonOperator {
	case OperatorGreaterThan:
		return observed > c.Threshold
	case OperatorLessThan:
		return observed < c.Threshold
	case OperatorGreaterOrEqual:
		return observed >= c.Threshold
	case OperatorLessOrEqual:
		return observed <= c.Threshold
	}
	return false
}

// CheckInterval returns the minimum interval between scheduled checks.
// Months follow the engine's 30-day convention.
func (c *Covenant) CheckInterval() time.Duration {
	switch c.CheckFrequency {
	case FrequencyDaily:
		return 24 * time.Hour
	case FrequencyWeekly:
		return 7 * 24 * time.Hour
	case FrequencyMonthly:
		return 30 * 24 * time.Hour
	case FrequencyQuarterly:
		return 90 * 24 * time.Hour
	}
	return 24 * time.Hour
}

// DueForCheck returns true if a scheduled check should run at now
func (c *Covenant) DueForCheck(now time.Time) bool {
	if !c.Evaluable() {
		return false
	}
	if c.LastCheckedAt == nil {
		return true
	}
	return !now.Before(c.LastCheckedAt.Add(c.CheckInterval()))
}

// CovenantResponse is the JSON response format for covenants
type CovenantResponse struct {
	ID                 uint       `json:"id"`
	LoanID             uint       `json:"loan_id"`
	Type               string     `json:"type"`
	Name               string     `json:"name"`
	Threshold          float64    `json:"threshold"`
	ComparisonOperator string     `json:"comparison_operator"`
	CheckFrequency     string     `json:"check_frequency"`
	Severity           string     `json:"severity"`
	Status             string     `json:"status"`
	LastCheckedAt      *time.Time `json:"last_checked_at"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// ToResponse converts Covenant to CovenantResponse
func (c *Covenant) ToResponse() CovenantResponse {
	return CovenantResponse{
		ID:                 c.ID,
		LoanID:             c.LoanID,
		Type:               c.Type,
		Name:               c.Name,
		Threshold:          c.Threshold,
		ComparisonOperator: c.ComparisonOperator,
		CheckFrequency:     c.CheckFrequency,
		Severity:           c.Severity,
		Status:             c.Status,
		LastCheckedAt:      c.LastCheckedAt,
		CreatedAt:          c.CreatedAt,
		UpdatedAt:          c.UpdatedAt,
	}
}
