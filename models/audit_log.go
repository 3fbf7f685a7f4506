package models

import (
	"time"

	"github.com/google/uuid"
)

// AuditLog is the fire-and-forget audit sink. Writes are best effort and
// happen after the ledger transaction commits; a failed write never fails
// the operation that produced it.
type AuditLog struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	EntityType string    `gorm:"not null;index" json:"entityType"`
	EntityID   uuid.UUID `gorm:"type:uuid;index" json:"entityId"`
	Action     string    `gorm:"not null" json:"action"`
	Amount     float64   `gorm:"type:decimal(12,2);default:0.0" json:"amount"`
	Actor      string    `json:"actor"`
	CreatedAt  time.Time `json:"createdAt"`
}
