package services

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mafiaidolaa/medicalrep-sub002/models"
)

// testNow is the pinned "today" for every service under test.
var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func testClock() time.Time {
	return testNow
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// In-memory sqlite gives each connection its own database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Customer{},
		&models.Invoice{},
		&models.InvoiceItem{},
		&models.Payment{},
		&models.PaymentAllocation{},
		&models.Receivable{},
		&models.CollectionActivity{},
		&models.NumberSequence{},
		&models.AuditLog{},
	))
	return db
}

// ledgerFixture wires every service against one test database and a pinned
// clock.
type ledgerFixture struct {
	db          *gorm.DB
	invoices    *InvoiceService
	payments    *PaymentService
	receivables *ReceivableService
	maintenance *MaintenanceService
	reports     *ReportService
}

func newLedgerFixture(t *testing.T) *ledgerFixture {
	t.Helper()
	db := newTestDB(t)
	audit := NewAuditLogger(db)
	return &ledgerFixture{
		db:          db,
		invoices:    NewInvoiceService(db, audit, testClock),
		payments:    NewPaymentService(db, audit, testClock),
		receivables: NewReceivableService(db, audit, testClock),
		maintenance: NewMaintenanceService(db, testClock),
		reports:     NewReportService(db, testClock),
	}
}

func (f *ledgerFixture) createCustomer(t *testing.T, code string) *models.Customer {
	t.Helper()
	customer := models.Customer{
		ID:     uuid.New(),
		Code:   code,
		Name:   "Customer " + code,
		Status: models.CustomerActive,
	}
	require.NoError(t, f.db.Create(&customer).Error)
	return &customer
}

// createOpenInvoice creates a sent invoice with a single line summing to
// total, due at the given date.
func (f *ledgerFixture) createOpenInvoice(t *testing.T, customerID uuid.UUID, total float64, dueDate time.Time) *models.Invoice {
	t.Helper()
	invoice, err := f.invoices.CreateInvoice(CreateInvoiceInput{
		CustomerID:  customerID,
		InvoiceType: models.InvoiceSales,
		InvoiceDate: dueDate.AddDate(0, -1, 0),
		DueDate:     dueDate,
		Items: []InvoiceItemInput{
			{ItemCode: "SKU-1", ItemName: "Item", Quantity: 1, UnitPrice: total},
		},
	})
	require.NoError(t, err)
	invoice, err = f.invoices.SendInvoice(invoice.ID)
	require.NoError(t, err)
	return invoice
}

func (f *ledgerFixture) createOpenReceivable(t *testing.T, customerID uuid.UUID, amount float64, dueDate time.Time) *models.Receivable {
	t.Helper()
	receivable, err := f.receivables.CreateReceivable(CreateReceivableInput{
		CustomerID:     customerID,
		OriginalAmount: amount,
		DueDate:        dueDate,
	})
	require.NoError(t, err)
	return receivable
}

func (f *ledgerFixture) reloadInvoice(t *testing.T, id uuid.UUID) *models.Invoice {
	t.Helper()
	var invoice models.Invoice
	require.NoError(t, f.db.First(&invoice, "id = ?", id).Error)
	return &invoice
}

func (f *ledgerFixture) reloadReceivable(t *testing.T, id uuid.UUID) *models.Receivable {
	t.Helper()
	var receivable models.Receivable
	require.NoError(t, f.db.First(&receivable, "id = ?", id).Error)
	return &receivable
}
