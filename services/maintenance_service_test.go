package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mafiaidolaa/medicalrep-sub002/models"
)

func TestUpdateOverdueInvoicesIsIdempotent(t *testing.T) {
	f := newLedgerFixture(t)
	customer := f.createCustomer(t, "CL-001")

	overdue := f.createOpenInvoice(t, customer.ID, 500, testNow.AddDate(0, 0, -5))
	current := f.createOpenInvoice(t, customer.ID, 500, testNow.AddDate(0, 1, 0))

	paidInvoice := f.createOpenInvoice(t, customer.ID, 300, testNow.AddDate(0, 0, -5))
	_, err := f.invoices.UpdatePaidAmount(paidInvoice.ID, 300)
	require.NoError(t, err)

	marked, err := f.maintenance.UpdateOverdueInvoices()
	require.NoError(t, err)
	assert.EqualValues(t, 1, marked)

	assert.Equal(t, models.InvoiceOverdue, f.reloadInvoice(t, overdue.ID).Status)
	assert.Equal(t, models.InvoiceSent, f.reloadInvoice(t, current.ID).Status)
	assert.Equal(t, models.InvoicePaid, f.reloadInvoice(t, paidInvoice.ID).Status)

	// Re-running matches no further rows.
	marked, err = f.maintenance.UpdateOverdueInvoices()
	require.NoError(t, err)
	assert.Zero(t, marked)
}

func TestUpdatePrioritiesByOverdueDays(t *testing.T) {
	f := newLedgerFixture(t)
	customer := f.createCustomer(t, "CL-001")

	urgent := f.createOpenReceivable(t, customer.ID, 500, testNow.AddDate(0, 0, -100))
	high := f.createOpenReceivable(t, customer.ID, 400, testNow.AddDate(0, 0, -70))
	untouched := f.createOpenReceivable(t, customer.ID, 300, testNow.AddDate(0, 0, -30))

	// Already urgent despite sitting in the high band; must never be lowered.
	preUrgent := f.createOpenReceivable(t, customer.ID, 200, testNow.AddDate(0, 0, -65))
	require.NoError(t, f.db.Model(&models.Receivable{}).
		Where("id = ?", preUrgent.ID).
		Update("priority", models.PriorityUrgent).Error)

	escalated, err := f.maintenance.UpdatePrioritiesByOverdueDays()
	require.NoError(t, err)
	assert.EqualValues(t, 2, escalated)

	assert.Equal(t, models.PriorityUrgent, f.reloadReceivable(t, urgent.ID).Priority)
	assert.Equal(t, models.PriorityHigh, f.reloadReceivable(t, high.ID).Priority)
	assert.Equal(t, models.PriorityNormal, f.reloadReceivable(t, untouched.ID).Priority)
	assert.Equal(t, models.PriorityUrgent, f.reloadReceivable(t, preUrgent.ID).Priority)

	// Second run in a row changes nothing.
	escalated, err = f.maintenance.UpdatePrioritiesByOverdueDays()
	require.NoError(t, err)
	assert.Zero(t, escalated)
}

func TestPriorityJobSkipsSettledReceivables(t *testing.T) {
	f := newLedgerFixture(t)
	customer := f.createCustomer(t, "CL-001")

	receivable := f.createOpenReceivable(t, customer.ID, 500, testNow.AddDate(0, 0, -120))
	_, err := f.receivables.WriteOffReceivable(receivable.ID)
	require.NoError(t, err)

	escalated, err := f.maintenance.UpdatePrioritiesByOverdueDays()
	require.NoError(t, err)
	assert.Zero(t, escalated)
	assert.Equal(t, models.PriorityNormal, f.reloadReceivable(t, receivable.ID).Priority)
}

func TestRefreshCustomerBalances(t *testing.T) {
	f := newLedgerFixture(t)
	customer := f.createCustomer(t, "CL-001")

	invoice := f.createOpenInvoice(t, customer.ID, 1000, testNow.AddDate(0, 1, 0))
	_, err := f.invoices.UpdatePaidAmount(invoice.ID, 600)
	require.NoError(t, err)

	// Standalone receivable counts toward the balance; invoice-linked debt
	// is already covered by the invoice's remaining amount.
	f.createOpenReceivable(t, customer.ID, 500, testNow.AddDate(0, 1, 0))
	_, err = f.receivables.CreateReceivable(CreateReceivableInput{
		CustomerID:     customer.ID,
		InvoiceID:      &invoice.ID,
		OriginalAmount: 400,
		DueDate:        testNow.AddDate(0, 1, 0),
	})
	require.NoError(t, err)

	refreshed, err := f.maintenance.RefreshCustomerBalances()
	require.NoError(t, err)
	assert.EqualValues(t, 1, refreshed)

	var reloaded models.Customer
	require.NoError(t, f.db.First(&reloaded, "id = ?", customer.ID).Error)
	assert.InDelta(t, 900, reloaded.Balance, 1e-9)
}
