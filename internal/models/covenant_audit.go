package models

import (
	"time"
)

// Triggering event constants for covenant audit records
const (
	TriggerScheduledCheck  = "scheduled_check"
	TriggerPaymentRecorded = "payment_recorded"
	TriggerManualOverride  = "manual_override"
)

// CovenantAuditRecord is one append-only entry in a covenant's audit trail.
// A record is written on every status change and on every scheduled check
// that re-confirms the status unchanged.
type CovenantAuditRecord struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	CovenantID      uint      `gorm:"not null;index" json:"covenant_id"`
	PreviousStatus  string    `gorm:"size:20;not null" json:"previous_status"`
	NewStatus       string    `gorm:"size:20;not null" json:"new_status"`
	ObservedValue   float64   `gorm:"type:decimal(15,4)" json:"observed_value"`
	TriggeringEvent string    `gorm:"size:30;not null;index" json:"triggering_event"`
	ActorID         *uint     `json:"actor_id"`
	CheckedAt       time.Time `gorm:"not null;index" json:"checked_at"`
	CreatedAt       time.Time `json:"created_at"`

	// Associations
	Covenant Covenant `gorm:"foreignKey:CovenantID" json:"covenant,omitempty"`
}

// TableName specifies the table name for CovenantAuditRecord
func (CovenantAuditRecord) TableName() string {
	return "covenant_audit_records"
}

// StatusChanged returns true if the record captures an actual transition
func (r *CovenantAuditRecord) StatusChanged() bool {
	return r.PreviousStatus != r.NewStatus
}
