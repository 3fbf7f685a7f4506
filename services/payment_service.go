package services

import (
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mafiaidolaa/medicalrep-sub002/models"
)

// PaymentService is the allocation/reversal engine. A payment is created
// pending with its allocations in one transaction and touches no balances.
// Confirming applies every allocation exactly once; bouncing or cancelling a
// confirmed payment reverses them; bouncing or cancelling a pending payment
// only flips the status. The payment's own status column is the single-writer
// gate: every transition is a guarded UPDATE from its declared source state.
type PaymentService struct {
	db       *gorm.DB
	now      Clock
	audit    *AuditLogger
	rowLocks bool
}

func NewPaymentService(db *gorm.DB, audit *AuditLogger, now Clock) *PaymentService {
	if now == nil {
		now = time.Now
	}
	return &PaymentService{db: db, now: now, audit: audit, rowLocks: supportsRowLocks(db)}
}

type AllocationInput struct {
	InvoiceID       *uuid.UUID `json:"invoiceId"`
	ReceivableID    *uuid.UUID `json:"receivableId"`
	AllocatedAmount float64    `json:"allocatedAmount"`
}

type CreatePaymentInput struct {
	CustomerID    uuid.UUID
	Amount        float64
	PaymentMethod models.PaymentMethod
	PaymentDate   time.Time
	Allocations   []AllocationInput
	Reference     string
	Notes         string
}

// CreatePayment validates the allocation set and persists the payment with
// its allocations atomically, in pending status. No invoice or receivable
// balance is touched here.
func (s *PaymentService) CreatePayment(in CreatePaymentInput) (*models.Payment, error) {
	if in.Amount <= 0 {
		return nil, validationErr("payment amount must be positive")
	}
	switch in.PaymentMethod {
	case models.MethodCash, models.MethodCheck, models.MethodBankTransfer, models.MethodCard:
	default:
		return nil, validationErr("unknown payment method %q", in.PaymentMethod)
	}

	var allocated float64
	for i, a := range in.Allocations {
		if a.AllocatedAmount <= 0 {
			return nil, validationErr("allocation %d: amount must be positive", i+1)
		}
		if (a.InvoiceID == nil) == (a.ReceivableID == nil) {
			return nil, validationErr("allocation %d: exactly one of invoice or receivable required", i+1)
		}
		allocated += a.AllocatedAmount
	}
	if allocated > in.Amount+amountEpsilon {
		return nil, validationErr("allocations (%.2f) exceed payment amount (%.2f)", allocated, in.Amount)
	}

	payment := models.Payment{
		ID:            uuid.New(),
		CustomerID:    in.CustomerID,
		Amount:        in.Amount,
		PaymentMethod: in.PaymentMethod,
		PaymentDate:   in.PaymentDate,
		Status:        models.PaymentPending,
		Reference:     in.Reference,
		Notes:         in.Notes,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var customer models.Customer
		if err := tx.First(&customer, "id = ?", in.CustomerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFoundErr("customer %s", in.CustomerID)
			}
			return err
		}

		for i, a := range in.Allocations {
			if a.InvoiceID != nil {
				var invoice models.Invoice
				if err := tx.First(&invoice, "id = ?", *a.InvoiceID).Error; err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return notFoundErr("allocation %d: invoice %s", i+1, *a.InvoiceID)
					}
					return err
				}
				if invoice.CustomerID != in.CustomerID {
					return validationErr("allocation %d: invoice %s belongs to another customer", i+1, invoice.InvoiceNumber)
				}
				if invoice.Status == models.InvoiceCancelled {
					return conflictErr("allocation %d: invoice %s is cancelled", i+1, invoice.InvoiceNumber)
				}
				if a.AllocatedAmount > invoice.RemainingAmount+amountEpsilon {
					return validationErr("allocation %d: exceeds remaining on invoice %s", i+1, invoice.InvoiceNumber)
				}
			} else {
				var receivable models.Receivable
				if err := tx.First(&receivable, "id = ?", *a.ReceivableID).Error; err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return notFoundErr("allocation %d: receivable %s", i+1, *a.ReceivableID)
					}
					return err
				}
				if receivable.CustomerID != in.CustomerID {
					return validationErr("allocation %d: receivable %s belongs to another customer", i+1, receivable.ReferenceNumber)
				}
				if receivable.Status == models.ReceivableWrittenOff {
					return conflictErr("allocation %d: receivable %s is written off", i+1, receivable.ReferenceNumber)
				}
			}
		}

		number, err := nextNumber(tx, "PAY")
		if err != nil {
			return err
		}
		payment.PaymentNumber = number

		for _, a := range in.Allocations {
			payment.Allocations = append(payment.Allocations, models.PaymentAllocation{
				ID:              uuid.New(),
				PaymentID:       payment.ID,
				InvoiceID:       a.InvoiceID,
				ReceivableID:    a.ReceivableID,
				AllocatedAmount: a.AllocatedAmount,
			})
		}
		return tx.Create(&payment).Error
	})
	if err != nil {
		return nil, storeErr(err)
	}

	s.audit.Record("payment", payment.ID, "created", payment.Amount, "")
	return &payment, nil
}

func (s *PaymentService) GetPayment(id uuid.UUID) (*models.Payment, error) {
	var payment models.Payment
	if err := s.db.Preload("Allocations").First(&payment, "id = ?", id).Error; err != nil {
		return nil, storeErr(err)
	}
	return &payment, nil
}

func (s *PaymentService) ListPayments(customerID *uuid.UUID, status models.PaymentStatus) ([]models.Payment, error) {
	q := s.db.Preload("Allocations").Order("payment_date DESC, payment_number DESC")
	if customerID != nil {
		q = q.Where("customer_id = ?", *customerID)
	}
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var payments []models.Payment
	if err := q.Find(&payments).Error; err != nil {
		return nil, storeErr(err)
	}
	return payments, nil
}

// ConfirmPayment transitions pending -> confirmed and applies every
// allocation exactly once, all inside one transaction. Confirming a payment
// in any other state is a conflict, never a double application.
func (s *PaymentService) ConfirmPayment(id uuid.UUID) (*models.Payment, error) {
	var payment models.Payment
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx, s.rowLocks).Preload("Allocations").
			First(&payment, "id = ?", id).Error; err != nil {
			return err
		}

		res := tx.Model(&models.Payment{}).
			Where("id = ? AND status = ?", id, models.PaymentPending).
			Update("status", models.PaymentConfirmed)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return conflictErr("payment %s is %s, only pending payments can be confirmed",
				payment.PaymentNumber, payment.Status)
		}
		payment.Status = models.PaymentConfirmed

		for _, a := range payment.Allocations {
			if err := s.applyAllocation(tx, a); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, storeErr(err)
	}

	s.audit.Record("payment", payment.ID, "confirmed", payment.Amount, "")
	return &payment, nil
}

// BouncePayment marks the payment bounced, reversing its allocations when it
// had been confirmed.
func (s *PaymentService) BouncePayment(id uuid.UUID) (*models.Payment, error) {
	return s.settleTerminal(id, models.PaymentBounced, "bounced")
}

// CancelPayment marks the payment cancelled, reversing its allocations when
// it had been confirmed.
func (s *PaymentService) CancelPayment(id uuid.UUID) (*models.Payment, error) {
	return s.settleTerminal(id, models.PaymentCancelled, "cancelled")
}

func (s *PaymentService) settleTerminal(id uuid.UUID, target models.PaymentStatus, action string) (*models.Payment, error) {
	var payment models.Payment
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx, s.rowLocks).Preload("Allocations").
			First(&payment, "id = ?", id).Error; err != nil {
			return err
		}

		prev := payment.Status
		if prev != models.PaymentPending && prev != models.PaymentConfirmed {
			return conflictErr("payment %s is already %s", payment.PaymentNumber, prev)
		}

		res := tx.Model(&models.Payment{}).
			Where("id = ? AND status = ?", id, prev).
			Update("status", target)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return conflictErr("payment %s changed state concurrently", payment.PaymentNumber)
		}
		payment.Status = target

		// A pending payment never applied its allocations, so there is
		// nothing to reverse.
		if prev != models.PaymentConfirmed {
			return nil
		}
		for _, a := range payment.Allocations {
			if err := s.reverseAllocation(tx, a); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, storeErr(err)
	}

	s.audit.Record("payment", payment.ID, action, payment.Amount, "")
	return &payment, nil
}

// DeletePayment removes a pending payment and its allocations. Deleting a
// payment in any other state would leave balances stale and is a conflict.
func (s *PaymentService) DeletePayment(id uuid.UUID) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var payment models.Payment
		if err := lockForUpdate(tx, s.rowLocks).First(&payment, "id = ?", id).Error; err != nil {
			return err
		}
		if payment.Status != models.PaymentPending {
			return conflictErr("payment %s is %s, only pending payments can be deleted",
				payment.PaymentNumber, payment.Status)
		}
		if err := tx.Where("payment_id = ?", id).Delete(&models.PaymentAllocation{}).Error; err != nil {
			return err
		}
		return tx.Delete(&payment).Error
	})
	if err != nil {
		return storeErr(err)
	}
	s.audit.Record("payment", id, "deleted", 0, "")
	return nil
}

// applyAllocation adds the allocated amount onto its invoice or receivable
// and re-derives the target's status. The target row is locked for the
// read-modify-write.
func (s *PaymentService) applyAllocation(tx *gorm.DB, a models.PaymentAllocation) error {
	if a.InvoiceID != nil {
		var invoice models.Invoice
		if err := lockForUpdate(tx, s.rowLocks).First(&invoice, "id = ?", *a.InvoiceID).Error; err != nil {
			return err
		}
		paid := invoice.PaidAmount + a.AllocatedAmount
		if paid > invoice.TotalAmount+amountEpsilon {
			return conflictErr("allocation exceeds remaining on invoice %s", invoice.InvoiceNumber)
		}
		return tx.Model(&models.Invoice{}).Where("id = ?", invoice.ID).Updates(map[string]interface{}{
			"paid_amount":      paid,
			"remaining_amount": invoice.TotalAmount - paid,
			"status":           invoiceStatusFor(paid, invoice.TotalAmount),
		}).Error
	}

	var receivable models.Receivable
	if err := lockForUpdate(tx, s.rowLocks).First(&receivable, "id = ?", *a.ReceivableID).Error; err != nil {
		return err
	}
	if receivable.Status == models.ReceivableWrittenOff {
		return conflictErr("receivable %s is written off", receivable.ReferenceNumber)
	}
	remaining := math.Max(0, receivable.RemainingAmount-a.AllocatedAmount)
	status := models.ReceivablePartiallyPaid
	if amountZero(remaining) {
		remaining = 0
		status = models.ReceivablePaid
	}
	return tx.Model(&models.Receivable{}).Where("id = ?", receivable.ID).Updates(map[string]interface{}{
		"remaining_amount": remaining,
		"status":           status,
	}).Error
}

// reverseAllocation undoes applyAllocation, restoring the target's
// pre-confirm amounts and status.
func (s *PaymentService) reverseAllocation(tx *gorm.DB, a models.PaymentAllocation) error {
	if a.InvoiceID != nil {
		var invoice models.Invoice
		if err := lockForUpdate(tx, s.rowLocks).First(&invoice, "id = ?", *a.InvoiceID).Error; err != nil {
			return err
		}
		paid := math.Max(0, invoice.PaidAmount-a.AllocatedAmount)
		if amountZero(paid) {
			paid = 0
		}
		return tx.Model(&models.Invoice{}).Where("id = ?", invoice.ID).Updates(map[string]interface{}{
			"paid_amount":      paid,
			"remaining_amount": invoice.TotalAmount - paid,
			"status":           invoiceStatusFor(paid, invoice.TotalAmount),
		}).Error
	}

	var receivable models.Receivable
	if err := lockForUpdate(tx, s.rowLocks).First(&receivable, "id = ?", *a.ReceivableID).Error; err != nil {
		return err
	}
	if receivable.Status == models.ReceivableWrittenOff {
		return conflictErr("receivable %s is written off", receivable.ReferenceNumber)
	}
	remaining := math.Min(receivable.OriginalAmount, receivable.RemainingAmount+a.AllocatedAmount)
	status := models.ReceivablePartiallyPaid
	if remaining >= receivable.OriginalAmount-amountEpsilon {
		remaining = receivable.OriginalAmount
		status = models.ReceivablePending
	}
	return tx.Model(&models.Receivable{}).Where("id = ?", receivable.ID).Updates(map[string]interface{}{
		"remaining_amount": remaining,
		"status":           status,
	}).Error
}
