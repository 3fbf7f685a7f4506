// controllers/invoice.go
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

// InvoiceItemInput defines the structure for an invoice line item
type InvoiceItemInput struct {
	ItemCode  string  `json:"itemCode" binding:"required"`
	ItemName  string  `json:"itemName" binding:"required"`
	Quantity  float64 `json:"quantity" binding:"required,gt=0"`
	UnitPrice float64 `json:"unitPrice" binding:"min=0"`
	Discount  float64 `json:"discount" binding:"min=0"`
	Tax       float64 `json:"tax" binding:"min=0"`
}

// CreateInvoiceInput defines the expected JSON structure for creating an invoice
type CreateInvoiceInput struct {
	CustomerID  uuid.UUID          `json:"customerId" binding:"required"`
	InvoiceType string             `json:"invoiceType" binding:"omitempty,oneof=sales purchase sales_return purchase_return"`
	InvoiceDate *time.Time         `json:"invoiceDate"`
	DueDate     time.Time          `json:"dueDate" binding:"required"`
	Items       []InvoiceItemInput `json:"items" binding:"required,min=1"`
	Discount    float64            `json:"discount" binding:"min=0"`
	Notes       string             `json:"notes"`
}

type UpdateInvoiceStatusInput struct {
	Status string `json:"status" binding:"required,oneof=draft sent partially_paid paid overdue cancelled"`
}

type UpdatePaidAmountInput struct {
	PaidAmount float64 `json:"paidAmount" binding:"min=0"`
}

type InvoiceController struct {
	svc *services.InvoiceService
}

func NewInvoiceController(svc *services.InvoiceService) *InvoiceController {
	return &InvoiceController{svc: svc}
}

// CreateInvoice creates a new invoice with its items
func (ic *InvoiceController) CreateInvoice(c *gin.Context) {
	var input CreateInvoiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	invoiceDate := time.Now()
	if input.InvoiceDate != nil {
		invoiceDate = *input.InvoiceDate
	}
	invoiceType := models.InvoiceType(input.InvoiceType)
	if invoiceType == "" {
		invoiceType = models.InvoiceSales
	}

	items := make([]services.InvoiceItemInput, 0, len(input.Items))
	for _, item := range input.Items {
		items = append(items, services.InvoiceItemInput{
			ItemCode:  item.ItemCode,
			ItemName:  item.ItemName,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Discount:  item.Discount,
			Tax:       item.Tax,
		})
	}

	invoice, err := ic.svc.CreateInvoice(services.CreateInvoiceInput{
		CustomerID:  input.CustomerID,
		InvoiceType: invoiceType,
		InvoiceDate: invoiceDate,
		DueDate:     input.DueDate,
		Items:       items,
		Discount:    input.Discount,
		Notes:       input.Notes,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, invoice)
}

// GetInvoices retrieves invoices with optional customer/status filters
func (ic *InvoiceController) GetInvoices(c *gin.Context) {
	var filter services.InvoiceFilter
	if v := c.Query("customerId"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid customer ID format")
			return
		}
		filter.CustomerID = &id
	}
	filter.Status = models.InvoiceStatus(c.Query("status"))

	invoices, err := ic.svc.ListInvoices(filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoices)
}

// GetInvoice retrieves a specific invoice by ID
func (ic *InvoiceController) GetInvoice(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid invoice ID format")
		return
	}

	invoice, err := ic.svc.GetInvoice(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoice)
}

// SendInvoice transitions a draft invoice to sent
func (ic *InvoiceController) SendInvoice(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid invoice ID format")
		return
	}

	invoice, err := ic.svc.SendInvoice(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoice)
}

// CancelInvoice cancels an invoice without applied payments
func (ic *InvoiceController) CancelInvoice(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid invoice ID format")
		return
	}

	invoice, err := ic.svc.CancelInvoice(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoice)
}

// UpdateInvoiceStatus sets the invoice status directly
func (ic *InvoiceController) UpdateInvoiceStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid invoice ID format")
		return
	}

	var input UpdateInvoiceStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	invoice, err := ic.svc.UpdateInvoiceStatus(id, models.InvoiceStatus(input.Status))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoice)
}

// UpdatePaidAmount sets the paid amount and re-derives remaining and status
func (ic *InvoiceController) UpdatePaidAmount(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid invoice ID format")
		return
	}

	var input UpdatePaidAmountInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	invoice, err := ic.svc.UpdatePaidAmount(id, input.PaidAmount)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoice)
}

// DeleteInvoice deletes an invoice and its items
func (ic *InvoiceController) DeleteInvoice(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid invoice ID format")
		return
	}

	if err := ic.svc.DeleteInvoice(id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Invoice deleted successfully"})
}
