package models

import (
	"time"
)

// Loan represents a serviced loan and its derived recovery state
type Loan struct {
	ID                 uint       `gorm:"primaryKey" json:"id"`
	CustomerRef        string     `gorm:"size:100;index" json:"customer_ref"`
	Principal          float64    `gorm:"type:decimal(15,2);not null" json:"principal"`
	AnnualInterestRate float64    `gorm:"type:decimal(6,3);not null" json:"annual_interest_rate"`
	TermMonths         int        `gorm:"not null" json:"term_months"`
	Currency           string     `gorm:"default:EUR;not null" json:"currency"`
	StartDate          *time.Time `gorm:"type:date;index" json:"start_date"`
	Status             string     `gorm:"default:pending;not null;index" json:"status"`
	RecoveryStatus     string     `gorm:"default:pending;not null;index" json:"recovery_status"`
	AssignedAgentID    *uint      `gorm:"index" json:"assigned_agent_id"`
	ApprovedAt         *time.Time `gorm:"index" json:"approved_at"`
	ClosedAt           *time.Time `json:"closed_at"`
	CreatedAt          time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`

	// Associations
	Payments  []PaymentEvent `gorm:"foreignKey:LoanID" json:"payments,omitempty"`
	Covenants []Covenant     `gorm:"foreignKey:LoanID" json:"covenants,omitempty"`
}

// TableName specifies the table name for Loan
func (Loan) TableName() string {
	return "loans"
}

// Loan lifecycle status constants
const (
	LoanStatusPending   = "pending"
	LoanStatusApproved  = "approved"
	LoanStatusActive    = "active"
	LoanStatusRejected  = "rejected"
	LoanStatusDefaulted = "defaulted"
	LoanStatusClosed    = "closed"
)

// Recovery status constants (agent-managed, independent of lifecycle)
const (
	RecoveryStatusPending    = "pending"
	RecoveryStatusInProgress = "in_progress"
	RecoveryStatusRecovered  = "recovered"
)

// Actor role constants
const (
	RoleAdmin = "admin"
	RoleAgent = "agent"
)

// MayApprove returns true if the loan can transition to approved
func (l *Loan) MayApprove() bool {
	return l.Status == LoanStatusPending
}

// MayReject returns true if the loan can transition to rejected
func (l *Loan) MayReject() bool {
	return l.Status == LoanStatusPending
}

// MayActivate returns true if the loan can transition to active
func (l *Loan) MayActivate() bool {
	return l.Status == LoanStatusApproved
}

// MayDefault returns true if the loan can transition to defaulted
func (l *Loan) MayDefault() bool {
	return l.Status == LoanStatusApproved || l.Status == LoanStatusActive
}

// MayClose returns true if the loan can transition to closed
func (l *Loan) MayClose() bool {
	return l.Status == LoanStatusActive
}

// MayDelete returns true if the loan record may be destroyed.
// Only rejected applications are ever deleted; every other status is kept.
func (l *Loan) MayDelete() bool {
	return l.Status == LoanStatusRejected
}

// LifecycleTerminal returns true if no further lifecycle transitions exist
func (l *Loan) LifecycleTerminal() bool {
	switch l.Status {
	case LoanStatusRejected, LoanStatusDefaulted, LoanStatusClosed:
		return true
	}
	return false
}

// RecoveryWorkable returns true if the recovery status may be moved.
// Recovery is only meaningful once the loan is active or defaulted.
func (l *Loan) RecoveryWorkable() bool {
	return l.Status == LoanStatusActive || l.Status == LoanStatusDefaulted
}

// MayStartRecovery returns true if recovery work can begin
func (l *Loan) MayStartRecovery() bool {
	return l.RecoveryWorkable() && l.RecoveryStatus == RecoveryStatusPending
}

// MayMarkRecovered returns true if the loan can be marked recovered
func (l *Loan) MayMarkRecovered() bool {
	return l.RecoveryWorkable() && l.RecoveryStatus == RecoveryStatusInProgress
}

// MayReopenRecovery returns true if a recovered loan can be re-opened (admin only)
func (l *Loan) MayReopenRecovery() bool {
	return l.RecoveryWorkable() && l.RecoveryStatus == RecoveryStatusRecovered
}

// MayAssignAgent returns true if an agent can be assigned
func (l *Loan) MayAssignAgent() bool {
	return l.Status == LoanStatusApproved && l.AssignedAgentID == nil
}

// IsAssignedAgent returns true if actorID holds the loan's recovery assignment
func (l *Loan) IsAssignedAgent(actorID uint) bool {
	return l.AssignedAgentID != nil && *l.AssignedAgentID == actorID
}

// LoanResponse is the JSON response format for loans
type LoanResponse struct {
	ID                 uint       `json:"id"`
	CustomerRef        string     `json:"customer_ref"`
	Principal          float64    `json:"principal"`
	AnnualInterestRate float64    `json:"annual_interest_rate"`
	TermMonths         int        `json:"term_months"`
	Currency           string     `json:"currency"`
	StartDate          *time.Time `json:"start_date"`
	Status             string     `json:"status"`
	RecoveryStatus     string     `json:"recovery_status"`
	AssignedAgentID    *uint      `json:"assigned_agent_id"`
	ApprovedAt         *time.Time `json:"approved_at"`
	ClosedAt           *time.Time `json:"closed_at"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// ToResponse converts Loan to LoanResponse
func (l *Loan) ToResponse() LoanResponse {
	return LoanResponse{
		ID:                 l.ID,
		CustomerRef:        l.CustomerRef,
		Principal:          l.Principal,
		AnnualInterestRate: l.AnnualInterestRate,
		TermMonths:         l.TermMonths,
		Currency:           l.Currency,
		StartDate:          l.StartDate,
		Status:             l.Status,
		RecoveryStatus:     l.RecoveryStatus,
		AssignedAgentID:    l.AssignedAgentID,
		ApprovedAt:         l.ApprovedAt,
		ClosedAt:           l.ClosedAt,
		CreatedAt:          l.CreatedAt,
		UpdatedAt:          l.UpdatedAt,
	}
}
