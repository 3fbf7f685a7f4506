package services

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mafiaidolaa/medicalrep-sub002/models"
)

// ReportService computes read-only ledger statistics. Nothing here mutates
// state; aging is derived against the injected clock at query time.
type ReportService struct {
	db  *gorm.DB
	now Clock
}

func NewReportService(db *gorm.DB, now Clock) *ReportService {
	if now == nil {
		now = time.Now
	}
	return &ReportService{db: db, now: now}
}

// LedgerSummary holds the headline receivables figures.
type LedgerSummary struct {
	TotalBilled      float64 `json:"totalBilled"`
	TotalCollected   float64 `json:"totalCollected"`
	TotalOutstanding float64 `json:"totalOutstanding"`
	CollectionRate   float64 `json:"collectionRate"`

	InvoicesByStatus    map[models.InvoiceStatus]int64    `json:"invoicesByStatus"`
	ReceivablesByStatus map[models.ReceivableStatus]int64 `json:"receivablesByStatus"`
}

func (rs *ReportService) GetLedgerSummary() (*LedgerSummary, error) {
	summary := LedgerSummary{
		InvoicesByStatus:    map[models.InvoiceStatus]int64{},
		ReceivablesByStatus: map[models.ReceivableStatus]int64{},
	}

	if err := rs.db.Model(&models.Invoice{}).
		Where("status <> ?", models.InvoiceCancelled).
		Select("COALESCE(SUM(total_amount), 0)").Scan(&summary.TotalBilled).Error; err != nil {
		return nil, storeErr(err)
	}
	if err := rs.db.Model(&models.Invoice{}).
		Where("status <> ?", models.InvoiceCancelled).
		Select("COALESCE(SUM(paid_amount), 0)").Scan(&summary.TotalCollected).Error; err != nil {
		return nil, storeErr(err)
	}
	if err := rs.db.Model(&models.Invoice{}).
		Where("status <> ?", models.InvoiceCancelled).
		Select("COALESCE(SUM(remaining_amount), 0)").Scan(&summary.TotalOutstanding).Error; err != nil {
		return nil, storeErr(err)
	}
	if summary.TotalBilled > 0 {
		summary.CollectionRate = summary.TotalCollected / summary.TotalBilled * 100
	}

	type statusCount struct {
		Status string
		Count  int64
	}
	var invoiceCounts []statusCount
	if err := rs.db.Model(&models.Invoice{}).
		Select("status, COUNT(*) as count").
		Group("status").Scan(&invoiceCounts).Error; err != nil {
		return nil, storeErr(err)
	}
	for _, c := range invoiceCounts {
		summary.InvoicesByStatus[models.InvoiceStatus(c.Status)] = c.Count
	}

	var receivableCounts []statusCount
	if err := rs.db.Model(&models.Receivable{}).
		Select("status, COUNT(*) as count").
		Group("status").Scan(&receivableCounts).Error; err != nil {
		return nil, storeErr(err)
	}
	for _, c := range receivableCounts {
		summary.ReceivablesByStatus[models.ReceivableStatus(c.Status)] = c.Count
	}

	return &summary, nil
}

// AgingBucketTotal is one row of an aging report.
type AgingBucketTotal struct {
	Bucket AgingBucket `json:"bucket"`
	Count  int64       `json:"count"`
	Total  float64     `json:"total"`
}

// AgingReport sums open receivables' remaining amounts into the five aging
// buckets. The bucket totals always add up to the total open remaining
// amount: every open receivable lands in exactly one bucket.
type AgingReport struct {
	AsOf    time.Time          `json:"asOf"`
	Buckets []AgingBucketTotal `json:"buckets"`
	Total   float64            `json:"total"`
}

func (rs *ReportService) GetReceivableAging() (*AgingReport, error) {
	now := rs.now()

	var receivables []models.Receivable
	if err := rs.db.
		Where("status IN ?", []models.ReceivableStatus{
			models.ReceivablePending, models.ReceivablePartiallyPaid,
		}).
		Find(&receivables).Error; err != nil {
		return nil, storeErr(err)
	}

	totals := map[AgingBucket]*AgingBucketTotal{}
	for _, bucket := range AgingBuckets {
		totals[bucket] = &AgingBucketTotal{Bucket: bucket}
	}

	report := AgingReport{AsOf: now}
	for _, r := range receivables {
		bucket := BucketFor(OverdueDays(now, r.DueDate))
		totals[bucket].Count++
		totals[bucket].Total += r.RemainingAmount
		report.Total += r.RemainingAmount
	}
	for _, bucket := range AgingBuckets {
		report.Buckets = append(report.Buckets, *totals[bucket])
	}
	return &report, nil
}

// CustomerStatement gathers one customer's full ledger position.
type CustomerStatement struct {
	Customer          models.Customer     `json:"customer"`
	Invoices          []models.Invoice    `json:"invoices"`
	Payments          []models.Payment    `json:"payments"`
	Receivables       []models.Receivable `json:"receivables"`
	OutstandingAmount float64             `json:"outstandingAmount"`
	OverCreditLimit   bool                `json:"overCreditLimit"`
}

func (rs *ReportService) GetCustomerStatement(customerID uuid.UUID) (*CustomerStatement, error) {
	var statement CustomerStatement
	if err := rs.db.First(&statement.Customer, "id = ?", customerID).Error; err != nil {
		return nil, storeErr(err)
	}

	if err := rs.db.Preload("Items").
		Where("customer_id = ?", customerID).
		Order("invoice_date DESC").
		Find(&statement.Invoices).Error; err != nil {
		return nil, storeErr(err)
	}
	if err := rs.db.Preload("Allocations").
		Where("customer_id = ?", customerID).
		Order("payment_date DESC").
		Find(&statement.Payments).Error; err != nil {
		return nil, storeErr(err)
	}
	if err := rs.db.
		Where("customer_id = ?", customerID).
		Order("due_date ASC").
		Find(&statement.Receivables).Error; err != nil {
		return nil, storeErr(err)
	}

	for _, inv := range statement.Invoices {
		if inv.Status != models.InvoiceCancelled && inv.Status != models.InvoiceDraft {
			statement.OutstandingAmount += inv.RemainingAmount
		}
	}
	for _, r := range statement.Receivables {
		if r.InvoiceID == nil &&
			(r.Status == models.ReceivablePending || r.Status == models.ReceivablePartiallyPaid) {
			statement.OutstandingAmount += r.RemainingAmount
		}
	}
	statement.OverCreditLimit = statement.Customer.CreditLimit > 0 &&
		statement.OutstandingAmount > statement.Customer.CreditLimit

	return &statement, nil
}
