package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mafiaidolaa/medicalrep-sub002/models"
)

func TestCreatePaymentRejectsOverAllocation(t *testing.T) {
	f := newLedgerFixture(t)
	customer := f.createCustomer(t, "CL-001")
	invoice := f.createOpenInvoice(t, customer.ID, 1000, testNow.AddDate(0, 1, 0))
	receivable := f.createOpenReceivable(t, customer.ID, 500, testNow.AddDate(0, 1, 0))

	_, err := f.payments.CreatePayment(CreatePaymentInput{
		CustomerID:    customer.ID,
		Amount:        600,
		PaymentMethod: models.MethodCash,
		PaymentDate:   testNow,
		Allocations: []AllocationInput{
			{InvoiceID: &invoice.ID, AllocatedAmount: 400},
			{ReceivableID: &receivable.ID, AllocatedAmount: 300},
		},
	})
	require.ErrorIs(t, err, ErrValidation)

	// Nothing persisted.
	var payments, allocations int64
	require.NoError(t, f.db.Model(&models.Payment{}).Count(&payments).Error)
	require.NoError(t, f.db.Model(&models.PaymentAllocation{}).Count(&allocations).Error)
	assert.Zero(t, payments)
	assert.Zero(t, allocations)
}

func TestCreatePaymentRejectsAmbiguousAllocation(t *testing.T) {
	f := newLedgerFixture(t)
	customer := f.createCustomer(t, "CL-001")
	invoice := f.createOpenInvoice(t, customer.ID, 100, testNow.AddDate(0, 1, 0))
	receivable := f.createOpenReceivable(t, customer.ID, 100, testNow.AddDate(0, 1, 0))

	// Both targets set.
	_, err := f.payments.CreatePayment(CreatePaymentInput{
		CustomerID:    customer.ID,
		Amount:        100,
		PaymentMethod: models.MethodCash,
		PaymentDate:   testNow,
		Allocations: []AllocationInput{
			{InvoiceID: &invoice.ID, ReceivableID: &receivable.ID, AllocatedAmount: 100},
		},
	})
	require.ErrorIs(t, err, ErrValidation)

	// Neither target set.
	_, err = f.payments.CreatePayment(CreatePaymentInput{
		CustomerID:    customer.ID,
		Amount:        100,
		PaymentMethod: models.MethodCash,
		PaymentDate:   testNow,
		Allocations:   []AllocationInput{{AllocatedAmount: 100}},
	})
	require.ErrorIs(t, err, ErrValidation)
}

func TestConfirmPaymentAppliesInvoiceAllocations(t *testing.T) {
	f := newLedgerFixture(t)
	customer := f.createCustomer(t, "CL-001")
	invoice := f.createOpenInvoice(t, customer.ID, 1000, testNow.AddDate(0, 1, 0))

	first, err := f.payments.CreatePayment(CreatePaymentInput{
		CustomerID:    customer.ID,
		Amount:        600,
		PaymentMethod: models.MethodCash,
		PaymentDate:   testNow,
		Allocations:   []AllocationInput{{InvoiceID: &invoice.ID, AllocatedAmount: 600}},
	})
	require.NoError(t, err)
	assert.Equal(t, "PAY-000001", first.PaymentNumber)

	// Creation alone touches no balances.
	reloaded := f.reloadInvoice(t, invoice.ID)
	assert.InDelta(t, 0, reloaded.PaidAmount, 1e-9)
	assert.Equal(t, models.InvoiceSent, reloaded.Status)

	_, err = f.payments.ConfirmPayment(first.ID)
	require.NoError(t, err)

	reloaded = f.reloadInvoice(t, invoice.ID)
	assert.InDelta(t, 600, reloaded.PaidAmount, 1e-9)
	assert.InDelta(t, 400, reloaded.RemainingAmount, 1e-9)
	assert.Equal(t, models.InvoicePartiallyPaid, reloaded.Status)

	second, err := f.payments.CreatePayment(CreatePaymentInput{
		CustomerID:    customer.ID,
		Amount:        400,
		PaymentMethod: models.MethodBankTransfer,
		PaymentDate:   testNow,
		Allocations:   []AllocationInput{{InvoiceID: &invoice.ID, AllocatedAmount: 400}},
	})
	require.NoError(t, err)
	_, err = f.payments.ConfirmPayment(second.ID)
	require.NoError(t, err)

	reloaded = f.reloadInvoice(t, invoice.ID)
	assert.InDelta(t, 1000, reloaded.PaidAmount, 1e-9)
	assert.InDelta(t, 0, reloaded.RemainingAmount, 1e-9)
	assert.Equal(t, models.InvoicePaid, reloaded.Status)
}

func TestConfirmPaymentAppliesReceivableAllocations(t *testing.T) {
	f := newLedgerFixture(t)
	customer := f.createCustomer(t, "CL-001")
	receivable := f.createOpenReceivable(t, customer.ID, 500, testNow.AddDate(0, 1, 0))

	payment, err := f.payments.CreatePayment(CreatePaymentInput{
		CustomerID:    customer.ID,
		Amount:        200,
		PaymentMethod: models.MethodCheck,
		PaymentDate:   testNow,
		Allocations:   []AllocationInput{{ReceivableID: &receivable.ID, AllocatedAmount: 200}},
	})
	require.NoError(t, err)
	_, err = f.payments.ConfirmPayment(payment.ID)
	require.NoError(t, err)

	reloaded := f.reloadReceivable(t, receivable.ID)
	assert.InDelta(t, 300, reloaded.RemainingAmount, 1e-9)
	assert.Equal(t, models.ReceivablePartiallyPaid, reloaded.Status)
}

func TestConfirmConfirmedPaymentConflicts(t *testing.T) {
	f := newLedgerFixture(t)
	customer := f.createCustomer(t, "CL-001")
	invoice := f.createOpenInvoice(t, customer.ID, 300, testNow.AddDate(0, 1, 0))

	payment, err := f.payments.CreatePayment(CreatePaymentInput{
		CustomerID:    customer.ID,
		Amount:        300,
		PaymentMethod: models.MethodCash,
		PaymentDate:   testNow,
		Allocations:   []AllocationInput{{InvoiceID: &invoice.ID, AllocatedAmount: 300}},
	})
	require.NoError(t, err)

	_, err = f.payments.ConfirmPayment(payment.ID)
	require.NoError(t, err)

	_, err = f.payments.ConfirmPayment(payment.ID)
	require.ErrorIs(t, err, ErrConflict)

	// The rejected second confirm did not double-apply.
	reloaded := f.reloadInvoice(t, invoice.ID)
	assert.InDelta(t, 300, reloaded.PaidAmount, 1e-9)
}

func TestBouncePendingPaymentLeavesBalances(t *testing.T) {
	f := newLedgerFixture(t)
	customer := f.createCustomer(t, "CL-001")
	invoice := f.createOpenInvoice(t, customer.ID, 500, testNow.AddDate(0, 1, 0))

	payment, err := f.payments.CreatePayment(CreatePaymentInput{
		CustomerID:    customer.ID,
		Amount:        500,
		PaymentMethod: models.MethodCheck,
		PaymentDate:   testNow,
		Allocations:   []AllocationInput{{InvoiceID: &invoice.ID, AllocatedAmount: 500}},
	})
	require.NoError(t, err)

	bounced, err := f.payments.BouncePayment(payment.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentBounced, bounced.Status)

	// Never confirmed, so nothing was ever applied or reversed.
	reloaded := f.reloadInvoice(t, invoice.ID)
	assert.InDelta(t, 0, reloaded.PaidAmount, 1e-9)
	assert.InDelta(t, 500, reloaded.RemainingAmount, 1e-9)
	assert.Equal(t, models.InvoiceSent, reloaded.Status)

	// Terminal: no further transitions.
	_, err = f.payments.ConfirmPayment(payment.ID)
	require.ErrorIs(t, err, ErrConflict)
	_, err = f.payments.CancelPayment(payment.ID)
	require.ErrorIs(t, err, ErrConflict)
}

func TestConfirmThenBounceRestoresBalances(t *testing.T) {
	f := newLedgerFixture(t)
	customer := f.createCustomer(t, "CL-001")
	invoice := f.createOpenInvoice(t, customer.ID, 1000, testNow.AddDate(0, 1, 0))
	receivable := f.createOpenReceivable(t, customer.ID, 500, testNow.AddDate(0, 1, 0))

	before := f.reloadInvoice(t, invoice.ID)
	beforeRcv := f.reloadReceivable(t, receivable.ID)

	payment, err := f.payments.CreatePayment(CreatePaymentInput{
		CustomerID:    customer.ID,
		Amount:        900,
		PaymentMethod: models.MethodBankTransfer,
		PaymentDate:   testNow,
		Allocations: []AllocationInput{
			{InvoiceID: &invoice.ID, AllocatedAmount: 400},
			{ReceivableID: &receivable.ID, AllocatedAmount: 500},
		},
	})
	require.NoError(t, err)

	_, err = f.payments.ConfirmPayment(payment.ID)
	require.NoError(t, err)

	applied := f.reloadReceivable(t, receivable.ID)
	assert.Equal(t, models.ReceivablePaid, applied.Status)
	assert.InDelta(t, 0, applied.RemainingAmount, 1e-9)

	_, err = f.payments.BouncePayment(payment.ID)
	require.NoError(t, err)

	after := f.reloadInvoice(t, invoice.ID)
	assert.InDelta(t, before.PaidAmount, after.PaidAmount, 1e-9)
	assert.InDelta(t, before.RemainingAmount, after.RemainingAmount, 1e-9)
	assert.Equal(t, before.Status, after.Status)

	afterRcv := f.reloadReceivable(t, receivable.ID)
	assert.InDelta(t, beforeRcv.RemainingAmount, afterRcv.RemainingAmount, 1e-9)
	assert.Equal(t, beforeRcv.Status, afterRcv.Status)
}

func TestAllocationAgainstWrittenOffReceivableRejected(t *testing.T) {
	f := newLedgerFixture(t)
	customer := f.createCustomer(t, "CL-001")
	receivable := f.createOpenReceivable(t, customer.ID, 500, testNow.AddDate(0, 1, 0))

	_, err := f.receivables.WriteOffReceivable(receivable.ID)
	require.NoError(t, err)

	_, err = f.payments.CreatePayment(CreatePaymentInput{
		CustomerID:    customer.ID,
		Amount:        100,
		PaymentMethod: models.MethodCash,
		PaymentDate:   testNow,
		Allocations:   []AllocationInput{{ReceivableID: &receivable.ID, AllocatedAmount: 100}},
	})
	require.ErrorIs(t, err, ErrConflict)
}

func TestAllocationExceedingInvoiceRemainingRejected(t *testing.T) {
	f := newLedgerFixture(t)
	customer := f.createCustomer(t, "CL-001")
	invoice := f.createOpenInvoice(t, customer.ID, 100, testNow.AddDate(0, 1, 0))

	_, err := f.payments.CreatePayment(CreatePaymentInput{
		CustomerID:    customer.ID,
		Amount:        200,
		PaymentMethod: models.MethodCash,
		PaymentDate:   testNow,
		Allocations:   []AllocationInput{{InvoiceID: &invoice.ID, AllocatedAmount: 200}},
	})
	require.ErrorIs(t, err, ErrValidation)
}

func TestDeletePaymentOnlyWhilePending(t *testing.T) {
	f := newLedgerFixture(t)
	customer := f.createCustomer(t, "CL-001")
	invoice := f.createOpenInvoice(t, customer.ID, 500, testNow.AddDate(0, 1, 0))

	payment, err := f.payments.CreatePayment(CreatePaymentInput{
		CustomerID:    customer.ID,
		Amount:        500,
		PaymentMethod: models.MethodCash,
		PaymentDate:   testNow,
		Allocations:   []AllocationInput{{InvoiceID: &invoice.ID, AllocatedAmount: 500}},
	})
	require.NoError(t, err)

	_, err = f.payments.ConfirmPayment(payment.ID)
	require.NoError(t, err)

	err = f.payments.DeletePayment(payment.ID)
	require.ErrorIs(t, err, ErrConflict)

	pending, err := f.payments.CreatePayment(CreatePaymentInput{
		CustomerID:    customer.ID,
		Amount:        50,
		PaymentMethod: models.MethodCash,
		PaymentDate:   testNow,
	})
	require.NoError(t, err)
	require.NoError(t, f.payments.DeletePayment(pending.ID))

	_, err = f.payments.GetPayment(pending.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCreatePaymentRejectsForeignTargets(t *testing.T) {
	f := newLedgerFixture(t)
	owner := f.createCustomer(t, "CL-001")
	other := f.createCustomer(t, "CL-002")
	invoice := f.createOpenInvoice(t, owner.ID, 100, testNow.AddDate(0, 1, 0))

	_, err := f.payments.CreatePayment(CreatePaymentInput{
		CustomerID:    other.ID,
		Amount:        100,
		PaymentMethod: models.MethodCash,
		PaymentDate:   testNow,
		Allocations:   []AllocationInput{{InvoiceID: &invoice.ID, AllocatedAmount: 100}},
	})
	require.ErrorIs(t, err, ErrValidation)
}

func TestCreatePaymentUnknownInvoice(t *testing.T) {
	f := newLedgerFixture(t)
	customer := f.createCustomer(t, "CL-001")
	missing := uuid.New()

	_, err := f.payments.CreatePayment(CreatePaymentInput{
		CustomerID:    customer.ID,
		Amount:        100,
		PaymentMethod: models.MethodCash,
		PaymentDate:   testNow,
		Allocations:   []AllocationInput{{InvoiceID: &missing, AllocatedAmount: 100}},
	})
	require.ErrorIs(t, err, ErrNotFound)
}
