package models

import (
	"time"

	"github.com/google/uuid"
)

// CollectionActivity is an append-only log of collection contacts per
// customer. It carries no balance semantics.
type CollectionActivity struct {
	ID           uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	CustomerID   uuid.UUID  `gorm:"type:uuid;index;not null" json:"customerId"`
	ReceivableID *uuid.UUID `gorm:"type:uuid;index" json:"receivableId,omitempty"`

	ActionType    string    `gorm:"not null" json:"actionType"` // call, visit, email, letter
	ActionDate    time.Time `gorm:"not null" json:"actionDate"`
	ContactPerson string    `json:"contactPerson"`
	Result        string    `json:"result"`

	PromisedAmount float64    `gorm:"type:decimal(12,2);default:0.0" json:"promisedAmount"`
	PromisedDate   *time.Time `json:"promisedDate,omitempty"`
	NextActionDate *time.Time `json:"nextActionDate,omitempty"`
	Notes          string     `json:"notes"`

	CreatedAt time.Time `json:"createdAt"`
}
