package models

import (
	"time"
)

// AuditLog represents a system audit entry for loan-level actions
// (lifecycle transitions, recovery moves, agent assignment, deletions)
type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ActorID   *uint     `json:"actor_id"`
	ActorRole string    `gorm:"size:20;not null" json:"actor_role"`
	Action    string    `gorm:"size:50;not null" json:"action"`
	Entity    string    `gorm:"size:50;not null" json:"entity"`
	EntityID  uint      `gorm:"index" json:"entity_id"`
	Details   string    `gorm:"type:text" json:"details"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for AuditLog
func (AuditLog) TableName() string {
	return "audit_logs"
}
