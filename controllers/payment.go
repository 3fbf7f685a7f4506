// controllers/payment.go
package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mafiaidolaa/medicalrep-sub002/models"
	"github.com/mafiaidolaa/medicalrep-sub002/services"
	"github.com/mafiaidolaa/medicalrep-sub002/utils"
)

// AllocationInput assigns part of the payment to an invoice or a receivable
type AllocationInput struct {
	InvoiceID       *uuid.UUID `json:"invoiceId"`
	ReceivableID    *uuid.UUID `json:"receivableId"`
	AllocatedAmount float64    `json:"allocatedAmount" binding:"required,gt=0"`
}

// CreatePaymentInput defines the expected JSON structure for creating a payment
type CreatePaymentInput struct {
	CustomerID    uuid.UUID         `json:"customerId" binding:"required"`
	Amount        float64           `json:"amount" binding:"required,gt=0"`
	PaymentMethod string            `json:"paymentMethod" binding:"required,oneof=cash check bank_transfer card"`
	PaymentDate   *time.Time        `json:"paymentDate"`
	Allocations   []AllocationInput `json:"allocations"`
	Reference     string            `json:"reference"`
	Notes         string            `json:"notes"`
}

type PaymentController struct {
	svc *services.PaymentService
}

func NewPaymentController(svc *services.PaymentService) *PaymentController {
	return &PaymentController{svc: svc}
}

// CreatePayment creates a pending payment with its allocations
func (pc *PaymentController) CreatePayment(c *gin.Context) {
	var input CreatePaymentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	paymentDate := time.Now()
	if input.PaymentDate != nil {
		paymentDate = *input.PaymentDate
	}

	allocations := make([]services.AllocationInput, 0, len(input.Allocations))
	for _, a := range input.Allocations {
		allocations = append(allocations, services.AllocationInput{
			InvoiceID:       a.InvoiceID,
			ReceivableID:    a.ReceivableID,
			AllocatedAmount: a.AllocatedAmount,
		})
	}

	payment, err := pc.svc.CreatePayment(services.CreatePaymentInput{
		CustomerID:    input.CustomerID,
		Amount:        input.Amount,
		PaymentMethod: models.PaymentMethod(input.PaymentMethod),
		PaymentDate:   paymentDate,
		Allocations:   allocations,
		Reference:     input.Reference,
		Notes:         input.Notes,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, payment)
}

// GetPayments lists payments with optional customer/status filters
func (pc *PaymentController) GetPayments(c *gin.Context) {
	var customerID *uuid.UUID
	if v := c.Query("customerId"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid customer ID format")
			return
		}
		customerID = &id
	}

	payments, err := pc.svc.ListPayments(customerID, models.PaymentStatus(c.Query("status")))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, payments)
}

// GetPayment retrieves a specific payment with its allocations
func (pc *PaymentController) GetPayment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid payment ID format")
		return
	}

	payment, err := pc.svc.GetPayment(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, payment)
}

// ConfirmPayment applies the payment's allocations to their targets
func (pc *PaymentController) ConfirmPayment(c *gin.Context) {
	pc.settle(c, pc.svc.ConfirmPayment)
}

// BouncePayment reverses a confirmed payment's allocations
func (pc *PaymentController) BouncePayment(c *gin.Context) {
	pc.settle(c, pc.svc.BouncePayment)
}

// CancelPayment cancels the payment, reversing allocations if confirmed
func (pc *PaymentController) CancelPayment(c *gin.Context) {
	pc.settle(c, pc.svc.CancelPayment)
}

func (pc *PaymentController) settle(c *gin.Context, op func(uuid.UUID) (*models.Payment, error)) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid payment ID format")
		return
	}

	payment, err := op(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, payment)
}

// DeletePayment deletes a pending payment with its allocations
func (pc *PaymentController) DeletePayment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid payment ID format")
		return
	}

	if err := pc.svc.DeletePayment(id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Payment deleted successfully"})
}
