package models

import (
	"time"

	"github.com/google/uuid"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentConfirmed PaymentStatus = "confirmed"
	PaymentBounced   PaymentStatus = "bounced"
	PaymentCancelled PaymentStatus = "cancelled"
)

type PaymentMethod string

const (
	MethodCash         PaymentMethod = "cash"
	MethodCheck        PaymentMethod = "check"
	MethodBankTransfer PaymentMethod = "bank_transfer"
	MethodCard         PaymentMethod = "card"
)

type Payment struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	PaymentNumber string    `gorm:"uniqueIndex;not null" json:"paymentNumber"`
	CustomerID    uuid.UUID `gorm:"type:uuid;index;not null" json:"customerId"`

	Amount        float64       `gorm:"type:decimal(12,2);not null" json:"amount"`
	PaymentMethod PaymentMethod `gorm:"type:varchar(20);not null" json:"paymentMethod"`
	PaymentDate   time.Time     `gorm:"not null" json:"paymentDate"`
	Status        PaymentStatus `gorm:"type:varchar(20);default:'pending';index" json:"status"`

	Reference string `json:"reference"`
	Notes     string `json:"notes"`

	Allocations []PaymentAllocation `gorm:"foreignKey:PaymentID" json:"allocations,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// PaymentAllocation assigns a slice of a payment's amount to exactly one
// invoice or one receivable, never both.
type PaymentAllocation struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	PaymentID uuid.UUID `gorm:"type:uuid;index;not null" json:"paymentId"`

	InvoiceID    *uuid.UUID `gorm:"type:uuid;index" json:"invoiceId,omitempty"`
	ReceivableID *uuid.UUID `gorm:"type:uuid;index" json:"receivableId,omitempty"`

	AllocatedAmount float64 `gorm:"type:decimal(12,2);not null" json:"allocatedAmount"`

	CreatedAt time.Time `json:"createdAt"`
}
