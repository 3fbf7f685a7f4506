package models

import (
	"time"

	"github.com/google/uuid"
)

type InvoiceStatus string

const (
	InvoiceDraft         InvoiceStatus = "draft"
	InvoiceSent          InvoiceStatus = "sent"
	InvoicePartiallyPaid InvoiceStatus = "partially_paid"
	InvoicePaid          InvoiceStatus = "paid"
	InvoiceOverdue       InvoiceStatus = "overdue"
	InvoiceCancelled     InvoiceStatus = "cancelled"
)

// InvoiceType selects the numbering prefix for a document.
type InvoiceType string

const (
	InvoiceSales          InvoiceType = "sales"
	InvoicePurchase       InvoiceType = "purchase"
	InvoiceSalesReturn    InvoiceType = "sales_return"
	InvoicePurchaseReturn InvoiceType = "purchase_return"
)

// Prefix returns the document-number prefix for the invoice type.
func (t InvoiceType) Prefix() string {
	switch t {
	case InvoicePurchase:
		return "PUR"
	case InvoiceSalesReturn:
		return "RET-S"
	case InvoicePurchaseReturn:
		return "RET-P"
	default:
		return "INV"
	}
}

type Invoice struct {
	ID            uuid.UUID   `gorm:"type:uuid;primary_key" json:"id"`
	InvoiceNumber string      `gorm:"uniqueIndex;not null" json:"invoiceNumber"`
	InvoiceType   InvoiceType `gorm:"type:varchar(20);default:'sales'" json:"invoiceType"`
	CustomerID    uuid.UUID   `gorm:"type:uuid;index;not null" json:"customerId"`

	InvoiceDate time.Time `gorm:"not null" json:"invoiceDate"`
	DueDate     time.Time `gorm:"not null;index" json:"dueDate"`

	Subtotal       float64 `gorm:"type:decimal(12,2);not null" json:"subtotal"`
	DiscountAmount float64 `gorm:"type:decimal(12,2);default:0.0" json:"discountAmount"`
	TaxAmount      float64 `gorm:"type:decimal(12,2);default:0.0" json:"taxAmount"`
	TotalAmount    float64 `gorm:"type:decimal(12,2);not null" json:"totalAmount"`

	PaidAmount      float64       `gorm:"type:decimal(12,2);default:0.0" json:"paidAmount"`
	RemainingAmount float64       `gorm:"type:decimal(12,2);default:0.0" json:"remainingAmount"`
	Status          InvoiceStatus `gorm:"type:varchar(20);default:'draft';index" json:"status"`

	Notes string `json:"notes"`

	Items []InvoiceItem `gorm:"foreignKey:InvoiceID" json:"items,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type InvoiceItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	InvoiceID uuid.UUID `gorm:"type:uuid;index;not null" json:"invoiceId"`

	ItemCode string `gorm:"not null" json:"itemCode"`
	ItemName string `gorm:"not null" json:"itemName"`

	Quantity  float64 `gorm:"type:decimal(12,2);not null" json:"quantity"`
	UnitPrice float64 `gorm:"type:decimal(12,2);not null" json:"unitPrice"`
	Discount  float64 `gorm:"type:decimal(12,2);default:0.0" json:"discount"`
	Tax       float64 `gorm:"type:decimal(12,2);default:0.0" json:"tax"`
	LineTotal float64 `gorm:"type:decimal(12,2);not null" json:"lineTotal"`
}
