package services

import (
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/mafiaidolaa/medicalrep-sub002/models"
	"github.com/mafiaidolaa/medicalrep-sub002/utils"
)

// MaintenanceService runs the periodic batch jobs that keep statuses and
// cached balances correct over time. Every job is idempotent and re-derives
// state from current data, so it is safe to re-run after a partial failure
// and to run concurrently with live payment operations.
type MaintenanceService struct {
	db  *gorm.DB
	now Clock
}

func NewMaintenanceService(db *gorm.DB, now Clock) *MaintenanceService {
	if now == nil {
		now = time.Now
	}
	return &MaintenanceService{db: db, now: now}
}

// StartScheduler runs all maintenance jobs once, then hourly.
func (s *MaintenanceService) StartScheduler() {
	c := cron.New()

	c.AddFunc("0 * * * *", s.RunAll)

	s.RunAll()
	c.Start()
	log.Println("Ledger maintenance scheduler started")
}

func (s *MaintenanceService) RunAll() {
	log.Println("Starting ledger maintenance pass...")

	if n, err := s.UpdateOverdueInvoices(); err != nil {
		log.Printf("Failed to mark overdue invoices: %v", err)
	} else if n > 0 {
		log.Printf("Marked %d invoices overdue", n)
	}

	if n, err := s.UpdatePrioritiesByOverdueDays(); err != nil {
		log.Printf("Failed to escalate receivable priorities: %v", err)
	} else if n > 0 {
		log.Printf("Escalated priority on %d receivables", n)
	}

	if n, err := s.RefreshCustomerBalances(); err != nil {
		log.Printf("Failed to refresh customer balances: %v", err)
	} else if n > 0 {
		log.Printf("Refreshed balances for %d customers", n)
	}

	log.Println("Ledger maintenance pass completed")
}

// UpdateOverdueInvoices marks invoices overdue once their due date has
// passed with an open balance. A single predicate-driven UPDATE keeps the
// job idempotent; re-running matches no further rows.
func (s *MaintenanceService) UpdateOverdueInvoices() (int64, error) {
	today := utils.BeginningOfDay(s.now())

	res := s.db.Model(&models.Invoice{}).
		Where("due_date < ? AND remaining_amount > 0 AND status NOT IN ?",
			today,
			[]models.InvoiceStatus{models.InvoicePaid, models.InvoiceCancelled, models.InvoiceOverdue}).
		Update("status", models.InvoiceOverdue)
	if res.Error != nil {
		return 0, storeErr(res.Error)
	}
	return res.RowsAffected, nil
}

// UpdatePrioritiesByOverdueDays escalates collection priority on open
// receivables by elapsed overdue days. Escalation is monotonic: a priority
// is raised, never lowered. Per-row failures are logged and the scan
// continues; the next pass retries the missed rows.
func (s *MaintenanceService) UpdatePrioritiesByOverdueDays() (int64, error) {
	now := s.now()

	var receivables []models.Receivable
	if err := s.db.
		Where("status IN ? AND due_date < ?",
			[]models.ReceivableStatus{models.ReceivablePending, models.ReceivablePartiallyPaid},
			utils.BeginningOfDay(now)).
		Find(&receivables).Error; err != nil {
		return 0, storeErr(err)
	}

	var escalated int64
	for _, r := range receivables {
		target := EscalatedPriority(OverdueDays(now, r.DueDate), r.Priority)
		if target == r.Priority {
			continue
		}
		if err := s.db.Model(&models.Receivable{}).
			Where("id = ?", r.ID).
			Update("priority", target).Error; err != nil {
			log.Printf("Receivable %s: failed to escalate priority: %v", r.ReferenceNumber, err)
			continue
		}
		escalated++
	}
	return escalated, nil
}

// RefreshCustomerBalances recomputes each customer's cached balance from
// open invoices plus receivables not linked to an invoice. The cache is
// derived here and nowhere else; the allocation engine never writes it.
func (s *MaintenanceService) RefreshCustomerBalances() (int64, error) {
	var customers []models.Customer
	if err := s.db.Find(&customers).Error; err != nil {
		return 0, storeErr(err)
	}

	var refreshed int64
	for _, customer := range customers {
		var invoiceOutstanding float64
		if err := s.db.Model(&models.Invoice{}).
			Where("customer_id = ? AND status NOT IN ?", customer.ID,
				[]models.InvoiceStatus{models.InvoiceCancelled, models.InvoiceDraft}).
			Select("COALESCE(SUM(remaining_amount), 0)").
			Scan(&invoiceOutstanding).Error; err != nil {
			log.Printf("Customer %s: failed to sum invoice outstanding: %v", customer.Code, err)
			continue
		}

		var receivableOutstanding float64
		if err := s.db.Model(&models.Receivable{}).
			Where("customer_id = ? AND invoice_id IS NULL AND status IN ?", customer.ID,
				[]models.ReceivableStatus{models.ReceivablePending, models.ReceivablePartiallyPaid}).
			Select("COALESCE(SUM(remaining_amount), 0)").
			Scan(&receivableOutstanding).Error; err != nil {
			log.Printf("Customer %s: failed to sum receivable outstanding: %v", customer.Code, err)
			continue
		}

		balance := invoiceOutstanding + receivableOutstanding
		if err := s.db.Model(&models.Customer{}).
			Where("id = ?", customer.ID).
			Update("balance", balance).Error; err != nil {
			log.Printf("Customer %s: failed to refresh balance: %v", customer.Code, err)
			continue
		}
		refreshed++
	}
	return refreshed, nil
}
