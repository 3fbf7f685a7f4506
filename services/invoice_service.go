package services

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mafiaidolaa/medicalrep-sub002/models"
)

// InvoiceService creates invoices, keeps their totals consistent and drives
// their status transitions. Paid/remaining amounts are mutated here only on
// behalf of the payment engine.
type InvoiceService struct {
	db       *gorm.DB
	now      Clock
	audit    *AuditLogger
	rowLocks bool
}

func NewInvoiceService(db *gorm.DB, audit *AuditLogger, now Clock) *InvoiceService {
	if now == nil {
		now = time.Now
	}
	return &InvoiceService{db: db, now: now, audit: audit, rowLocks: supportsRowLocks(db)}
}

type InvoiceItemInput struct {
	ItemCode  string  `json:"itemCode"`
	ItemName  string  `json:"itemName"`
	Quantity  float64 `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
	Discount  float64 `json:"discount"`
	Tax       float64 `json:"tax"`
}

type CreateInvoiceInput struct {
	CustomerID  uuid.UUID
	InvoiceType models.InvoiceType
	InvoiceDate time.Time
	DueDate     time.Time
	Items       []InvoiceItemInput
	// Discount applied on top of per-line discounts.
	Discount float64
	Notes    string
}

// CreateInvoice computes line and document totals from the items, allocates
// the next number for the type's prefix and persists the invoice with its
// items in one transaction.
func (s *InvoiceService) CreateInvoice(in CreateInvoiceInput) (*models.Invoice, error) {
	if len(in.Items) == 0 {
		return nil, validationErr("invoice requires at least one item")
	}
	if in.Discount < 0 {
		return nil, validationErr("discount cannot be negative")
	}
	if in.DueDate.Before(in.InvoiceDate) {
		return nil, validationErr("due date cannot precede invoice date")
	}
	for i, item := range in.Items {
		if item.Quantity <= 0 {
			return nil, validationErr("item %d: quantity must be positive", i+1)
		}
		if item.UnitPrice < 0 || item.Discount < 0 || item.Tax < 0 {
			return nil, validationErr("item %d: amounts cannot be negative", i+1)
		}
	}

	invoice := models.Invoice{
		ID:          uuid.New(),
		InvoiceType: in.InvoiceType,
		CustomerID:  in.CustomerID,
		InvoiceDate: in.InvoiceDate,
		DueDate:     in.DueDate,
		Status:      models.InvoiceDraft,
		Notes:       in.Notes,
	}

	var subtotal, lineDiscounts, taxTotal float64
	for _, item := range in.Items {
		gross := item.UnitPrice * item.Quantity
		lineTotal := gross - item.Discount + item.Tax
		subtotal += gross
		lineDiscounts += item.Discount
		taxTotal += item.Tax

		invoice.Items = append(invoice.Items, models.InvoiceItem{
			ID:        uuid.New(),
			InvoiceID: invoice.ID,
			ItemCode:  item.ItemCode,
			ItemName:  item.ItemName,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Discount:  item.Discount,
			Tax:       item.Tax,
			LineTotal: lineTotal,
		})
	}

	invoice.Subtotal = subtotal
	invoice.DiscountAmount = lineDiscounts + in.Discount
	invoice.TaxAmount = taxTotal
	invoice.TotalAmount = subtotal - invoice.DiscountAmount + taxTotal
	if invoice.TotalAmount < 0 {
		return nil, validationErr("discount exceeds invoice total")
	}
	invoice.PaidAmount = 0
	invoice.RemainingAmount = invoice.TotalAmount

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var customer models.Customer
		if err := tx.First(&customer, "id = ?", in.CustomerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFoundErr("customer %s", in.CustomerID)
			}
			return err
		}
		if customer.Status == models.CustomerBlocked {
			return conflictErr("customer %s is blocked", customer.Code)
		}

		number, err := nextNumber(tx, in.InvoiceType.Prefix())
		if err != nil {
			return err
		}
		invoice.InvoiceNumber = number

		return tx.Create(&invoice).Error
	})
	if err != nil {
		return nil, storeErr(err)
	}

	s.audit.Record("invoice", invoice.ID, "created", invoice.TotalAmount, "")
	return &invoice, nil
}

func (s *InvoiceService) GetInvoice(id uuid.UUID) (*models.Invoice, error) {
	var invoice models.Invoice
	if err := s.db.Preload("Items").First(&invoice, "id = ?", id).Error; err != nil {
		return nil, storeErr(err)
	}
	return &invoice, nil
}

type InvoiceFilter struct {
	CustomerID *uuid.UUID
	Status     models.InvoiceStatus
}

func (s *InvoiceService) ListInvoices(filter InvoiceFilter) ([]models.Invoice, error) {
	q := s.db.Preload("Items").Order("invoice_date DESC, invoice_number DESC")
	if filter.CustomerID != nil {
		q = q.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	var invoices []models.Invoice
	if err := q.Find(&invoices).Error; err != nil {
		return nil, storeErr(err)
	}
	return invoices, nil
}

// invoiceStatusFor derives an invoice's payment status from its amounts.
// Applies both after an allocation and after a reversal: zero paid falls back
// to sent, full payment is paid, anything in between is partially_paid.
func invoiceStatusFor(paid, total float64) models.InvoiceStatus {
	switch {
	case amountZero(paid):
		return models.InvoiceSent
	case total-paid <= amountEpsilon:
		return models.InvoicePaid
	default:
		return models.InvoicePartiallyPaid
	}
}

// SendInvoice transitions a draft invoice to sent.
func (s *InvoiceService) SendInvoice(id uuid.UUID) (*models.Invoice, error) {
	return s.transition(id, models.InvoiceDraft, models.InvoiceSent, "sent")
}

// CancelInvoice cancels an invoice that has no applied payments.
func (s *InvoiceService) CancelInvoice(id uuid.UUID) (*models.Invoice, error) {
	var invoice models.Invoice
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx, s.rowLocks).First(&invoice, "id = ?", id).Error; err != nil {
			return err
		}
		if invoice.Status == models.InvoiceCancelled {
			return conflictErr("invoice %s is already cancelled", invoice.InvoiceNumber)
		}
		if !amountZero(invoice.PaidAmount) {
			return conflictErr("invoice %s has applied payments", invoice.InvoiceNumber)
		}
		invoice.Status = models.InvoiceCancelled
		return tx.Model(&models.Invoice{}).Where("id = ?", id).
			Update("status", models.InvoiceCancelled).Error
	})
	if err != nil {
		return nil, storeErr(err)
	}
	s.audit.Record("invoice", invoice.ID, "cancelled", invoice.TotalAmount, "")
	return &invoice, nil
}

// UpdateInvoiceStatus sets the status directly. Exposed for the payment
// engine and the maintenance jobs; cancelled invoices are immutable.
func (s *InvoiceService) UpdateInvoiceStatus(id uuid.UUID, status models.InvoiceStatus) (*models.Invoice, error) {
	switch status {
	case models.InvoiceDraft, models.InvoiceSent, models.InvoicePartiallyPaid,
		models.InvoicePaid, models.InvoiceOverdue, models.InvoiceCancelled:
	default:
		return nil, validationErr("unknown invoice status %q", status)
	}

	var invoice models.Invoice
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx, s.rowLocks).First(&invoice, "id = ?", id).Error; err != nil {
			return err
		}
		if invoice.Status == models.InvoiceCancelled && status != models.InvoiceCancelled {
			return conflictErr("invoice %s is cancelled", invoice.InvoiceNumber)
		}
		invoice.Status = status
		return tx.Model(&models.Invoice{}).Where("id = ?", id).Update("status", status).Error
	})
	if err != nil {
		return nil, storeErr(err)
	}
	return &invoice, nil
}

// UpdatePaidAmount sets the paid amount, recomputes the remaining amount and
// derives the status. Exposed for the payment engine's use.
func (s *InvoiceService) UpdatePaidAmount(id uuid.UUID, paidAmount float64) (*models.Invoice, error) {
	if paidAmount < 0 {
		return nil, validationErr("paid amount cannot be negative")
	}
	var invoice models.Invoice
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx, s.rowLocks).First(&invoice, "id = ?", id).Error; err != nil {
			return err
		}
		if invoice.Status == models.InvoiceCancelled {
			return conflictErr("invoice %s is cancelled", invoice.InvoiceNumber)
		}
		if paidAmount > invoice.TotalAmount+amountEpsilon {
			return validationErr("paid amount exceeds invoice total")
		}
		invoice.PaidAmount = paidAmount
		invoice.RemainingAmount = invoice.TotalAmount - paidAmount
		invoice.Status = invoiceStatusFor(paidAmount, invoice.TotalAmount)
		return tx.Model(&models.Invoice{}).Where("id = ?", id).Updates(map[string]interface{}{
			"paid_amount":      invoice.PaidAmount,
			"remaining_amount": invoice.RemainingAmount,
			"status":           invoice.Status,
		}).Error
	})
	if err != nil {
		return nil, storeErr(err)
	}
	return &invoice, nil
}

// DeleteInvoice removes an invoice and its items. Rejected with a conflict
// while any confirmed payment allocation references the invoice.
func (s *InvoiceService) DeleteInvoice(id uuid.UUID) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var invoice models.Invoice
		if err := lockForUpdate(tx, s.rowLocks).First(&invoice, "id = ?", id).Error; err != nil {
			return err
		}

		var confirmed int64
		if err := tx.Model(&models.PaymentAllocation{}).
			Joins("JOIN payments ON payments.id = payment_allocations.payment_id").
			Where("payment_allocations.invoice_id = ? AND payments.status = ?", id, models.PaymentConfirmed).
			Count(&confirmed).Error; err != nil {
			return err
		}
		if confirmed > 0 {
			return conflictErr("invoice %s has confirmed payment allocations", invoice.InvoiceNumber)
		}

		if err := tx.Where("invoice_id = ?", id).Delete(&models.InvoiceItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&invoice).Error
	})
	if err != nil {
		return storeErr(err)
	}
	s.audit.Record("invoice", id, "deleted", 0, "")
	return nil
}

func (s *InvoiceService) transition(id uuid.UUID, from, to models.InvoiceStatus, action string) (*models.Invoice, error) {
	var invoice models.Invoice
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx, s.rowLocks).First(&invoice, "id = ?", id).Error; err != nil {
			return err
		}
		res := tx.Model(&models.Invoice{}).
			Where("id = ? AND status = ?", id, from).
			Update("status", to)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return conflictErr("invoice %s is %s, expected %s", invoice.InvoiceNumber, invoice.Status, from)
		}
		invoice.Status = to
		return nil
	})
	if err != nil {
		return nil, storeErr(err)
	}
	s.audit.Record("invoice", invoice.ID, action, invoice.TotalAmount, "")
	return &invoice, nil
}
