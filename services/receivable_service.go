package services

import (
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mafiaidolaa/medicalrep-sub002/models"
)

// ReceivableService manages open debt records, their settlement outside the
// payment engine, write-offs and the collection-activity log.
type ReceivableService struct {
	db       *gorm.DB
	now      Clock
	audit    *AuditLogger
	rowLocks bool
}

func NewReceivableService(db *gorm.DB, audit *AuditLogger, now Clock) *ReceivableService {
	if now == nil {
		now = time.Now
	}
	return &ReceivableService{db: db, now: now, audit: audit, rowLocks: supportsRowLocks(db)}
}

type CreateReceivableInput struct {
	CustomerID     uuid.UUID
	InvoiceID      *uuid.UUID
	OriginalAmount float64
	DueDate        time.Time
	Priority       models.Priority
	Notes          string
}

func (s *ReceivableService) CreateReceivable(in CreateReceivableInput) (*models.Receivable, error) {
	if in.OriginalAmount <= 0 {
		return nil, validationErr("original amount must be positive")
	}
	if in.DueDate.IsZero() {
		return nil, validationErr("due date is required")
	}
	priority := in.Priority
	if priority == "" {
		priority = models.PriorityNormal
	}
	switch priority {
	case models.PriorityNormal, models.PriorityHigh, models.PriorityUrgent:
	default:
		return nil, validationErr("unknown priority %q", in.Priority)
	}

	receivable := models.Receivable{
		ID:              uuid.New(),
		CustomerID:      in.CustomerID,
		InvoiceID:       in.InvoiceID,
		OriginalAmount:  in.OriginalAmount,
		RemainingAmount: in.OriginalAmount,
		DueDate:         in.DueDate,
		Priority:        priority,
		Status:          models.ReceivablePending,
		Notes:           in.Notes,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var customer models.Customer
		if err := tx.First(&customer, "id = ?", in.CustomerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFoundErr("customer %s", in.CustomerID)
			}
			return err
		}
		if in.InvoiceID != nil {
			var invoice models.Invoice
			if err := tx.First(&invoice, "id = ?", *in.InvoiceID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return notFoundErr("invoice %s", *in.InvoiceID)
				}
				return err
			}
			if invoice.CustomerID != in.CustomerID {
				return validationErr("invoice %s belongs to another customer", invoice.InvoiceNumber)
			}
		}

		number, err := nextNumber(tx, "RCV")
		if err != nil {
			return err
		}
		receivable.ReferenceNumber = number
		return tx.Create(&receivable).Error
	})
	if err != nil {
		return nil, storeErr(err)
	}

	s.audit.Record("receivable", receivable.ID, "created", receivable.OriginalAmount, "")
	return &receivable, nil
}

func (s *ReceivableService) GetReceivable(id uuid.UUID) (*models.Receivable, error) {
	var receivable models.Receivable
	if err := s.db.First(&receivable, "id = ?", id).Error; err != nil {
		return nil, storeErr(err)
	}
	return &receivable, nil
}

type ReceivableFilter struct {
	CustomerID *uuid.UUID
	Status     models.ReceivableStatus
	Priority   models.Priority
}

func (s *ReceivableService) ListReceivables(filter ReceivableFilter) ([]models.Receivable, error) {
	q := s.db.Order("due_date ASC, reference_number DESC")
	if filter.CustomerID != nil {
		q = q.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Priority != "" {
		q = q.Where("priority = ?", filter.Priority)
	}
	var receivables []models.Receivable
	if err := q.Find(&receivables).Error; err != nil {
		return nil, storeErr(err)
	}
	return receivables, nil
}

// RecordPartialPayment settles part of a receivable directly, outside the
// payment engine. The remaining amount is clamped at zero and the status
// re-derived.
func (s *ReceivableService) RecordPartialPayment(id uuid.UUID, amount float64) (*models.Receivable, error) {
	if amount <= 0 {
		return nil, validationErr("payment amount must be positive")
	}
	var receivable models.Receivable
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx, s.rowLocks).First(&receivable, "id = ?", id).Error; err != nil {
			return err
		}
		switch receivable.Status {
		case models.ReceivableWrittenOff:
			return conflictErr("receivable %s is written off", receivable.ReferenceNumber)
		case models.ReceivablePaid:
			return conflictErr("receivable %s is already paid", receivable.ReferenceNumber)
		}

		remaining := math.Max(0, receivable.RemainingAmount-amount)
		status := models.ReceivablePartiallyPaid
		if amountZero(remaining) {
			remaining = 0
			status = models.ReceivablePaid
		}
		receivable.RemainingAmount = remaining
		receivable.Status = status
		return tx.Model(&models.Receivable{}).Where("id = ?", id).Updates(map[string]interface{}{
			"remaining_amount": remaining,
			"status":           status,
		}).Error
	})
	if err != nil {
		return nil, storeErr(err)
	}

	s.audit.Record("receivable", receivable.ID, "partial_payment", amount, "")
	return &receivable, nil
}

// WriteOffReceivable forces the remaining amount to zero and marks the
// receivable written off. Terminal: no balance change is accepted afterward.
func (s *ReceivableService) WriteOffReceivable(id uuid.UUID) (*models.Receivable, error) {
	var receivable models.Receivable
	var writtenOff float64
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx, s.rowLocks).First(&receivable, "id = ?", id).Error; err != nil {
			return err
		}
		switch receivable.Status {
		case models.ReceivableWrittenOff:
			return conflictErr("receivable %s is already written off", receivable.ReferenceNumber)
		case models.ReceivablePaid:
			return conflictErr("receivable %s is already paid", receivable.ReferenceNumber)
		}

		writtenOff = receivable.RemainingAmount
		receivable.RemainingAmount = 0
		receivable.Status = models.ReceivableWrittenOff
		return tx.Model(&models.Receivable{}).Where("id = ?", id).Updates(map[string]interface{}{
			"remaining_amount": 0,
			"status":           models.ReceivableWrittenOff,
		}).Error
	})
	if err != nil {
		return nil, storeErr(err)
	}

	s.audit.Record("receivable", receivable.ID, "written_off", writtenOff, "")
	return &receivable, nil
}

// OverdueDays derives the receivable's days past due against the service
// clock.
func (s *ReceivableService) OverdueDays(r *models.Receivable) int {
	return OverdueDays(s.now(), r.DueDate)
}

type CollectionActivityInput struct {
	CustomerID     uuid.UUID
	ReceivableID   *uuid.UUID
	ActionType     string
	ActionDate     time.Time
	ContactPerson  string
	Result         string
	PromisedAmount float64
	PromisedDate   *time.Time
	NextActionDate *time.Time
	Notes          string
}

// AddCollectionActivity appends one collection-contact event. The log is
// append-only and carries no balance semantics.
func (s *ReceivableService) AddCollectionActivity(in CollectionActivityInput) (*models.CollectionActivity, error) {
	if in.ActionType == "" {
		return nil, validationErr("action type is required")
	}
	if in.PromisedAmount < 0 {
		return nil, validationErr("promised amount cannot be negative")
	}
	actionDate := in.ActionDate
	if actionDate.IsZero() {
		actionDate = s.now()
	}

	activity := models.CollectionActivity{
		ID:             uuid.New(),
		CustomerID:     in.CustomerID,
		ReceivableID:   in.ReceivableID,
		ActionType:     in.ActionType,
		ActionDate:     actionDate,
		ContactPerson:  in.ContactPerson,
		Result:         in.Result,
		PromisedAmount: in.PromisedAmount,
		PromisedDate:   in.PromisedDate,
		NextActionDate: in.NextActionDate,
		Notes:          in.Notes,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var customer models.Customer
		if err := tx.First(&customer, "id = ?", in.CustomerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFoundErr("customer %s", in.CustomerID)
			}
			return err
		}
		if in.ReceivableID != nil {
			var receivable models.Receivable
			if err := tx.First(&receivable, "id = ?", *in.ReceivableID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return notFoundErr("receivable %s", *in.ReceivableID)
				}
				return err
			}
		}
		return tx.Create(&activity).Error
	})
	if err != nil {
		return nil, storeErr(err)
	}
	return &activity, nil
}

func (s *ReceivableService) ListCollectionActivities(customerID uuid.UUID) ([]models.CollectionActivity, error) {
	var activities []models.CollectionActivity
	if err := s.db.Where("customer_id = ?", customerID).
		Order("action_date DESC").Find(&activities).Error; err != nil {
		return nil, storeErr(err)
	}
	return activities, nil
}
