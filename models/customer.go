package models

import (
	"time"

	"github.com/google/uuid"
)

type CustomerStatus string

const (
	CustomerActive   CustomerStatus = "active"
	CustomerInactive CustomerStatus = "inactive"
	CustomerBlocked  CustomerStatus = "blocked"
)

type Customer struct {
	ID   uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Code string    `gorm:"uniqueIndex;not null" json:"code"`
	Name string    `gorm:"not null" json:"name"`

	ContactPerson string `json:"contactPerson"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	Address       string `json:"address"`

	CreditLimit float64 `gorm:"type:decimal(12,2);default:0.0" json:"creditLimit"`
	// Balance is a derived cache refreshed by the maintenance jobs; it is
	// never written by the allocation engine.
	Balance float64        `gorm:"type:decimal(12,2);default:0.0" json:"balance"`
	Status  CustomerStatus `gorm:"type:varchar(20);default:'active';index" json:"status"`

	Invoices    []Invoice    `gorm:"foreignKey:CustomerID" json:"invoices,omitempty"`
	Payments    []Payment    `gorm:"foreignKey:CustomerID" json:"payments,omitempty"`
	Receivables []Receivable `gorm:"foreignKey:CustomerID" json:"receivables,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
