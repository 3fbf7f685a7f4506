package models

import (
	"time"

	"github.com/google/uuid"
)

type ReceivableStatus string

const (
	ReceivablePending       ReceivableStatus = "pending"
	ReceivablePartiallyPaid ReceivableStatus = "partially_paid"
	ReceivablePaid          ReceivableStatus = "paid"
	ReceivableWrittenOff    ReceivableStatus = "written_off"
)

type Priority string

const (
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// rank orders priorities for monotonic escalation.
func (p Priority) rank() int {
	switch p {
	case PriorityUrgent:
		return 2
	case PriorityHigh:
		return 1
	default:
		return 0
	}
}

// AtLeast reports whether p is the same or a higher priority than other.
func (p Priority) AtLeast(other Priority) bool {
	return p.rank() >= other.rank()
}

type Receivable struct {
	ID              uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	ReferenceNumber string     `gorm:"uniqueIndex;not null" json:"referenceNumber"`
	CustomerID      uuid.UUID  `gorm:"type:uuid;index;not null" json:"customerId"`
	InvoiceID       *uuid.UUID `gorm:"type:uuid;index" json:"invoiceId,omitempty"`

	OriginalAmount  float64 `gorm:"type:decimal(12,2);not null" json:"originalAmount"`
	RemainingAmount float64 `gorm:"type:decimal(12,2);not null" json:"remainingAmount"`

	DueDate  time.Time        `gorm:"not null;index" json:"dueDate"`
	Priority Priority         `gorm:"type:varchar(10);default:'normal';index" json:"priority"`
	Status   ReceivableStatus `gorm:"type:varchar(20);default:'pending';index" json:"status"`

	Notes string `json:"notes"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
