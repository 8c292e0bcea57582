package models

import (
	"time"
)

// AuditLog records one actor action against one resource. Writes are
// fire-and-forget: a failed audit insert never rolls back the action itself.
type AuditLog struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	ActorID      uint      `gorm:"not null;index" json:"actor_id"`
	Action       string    `gorm:"size:100;not null" json:"action"`
	ResourceType string    `gorm:"size:50;index" json:"resource_type"`
	ResourceID   string    `gorm:"size:100;index" json:"resource_id"`
	Details      JSONB     `gorm:"type:jsonb" json:"details"`
	CreatedAt    time.Time `json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}
