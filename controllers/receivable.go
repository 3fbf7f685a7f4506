// controllers/receivable.go
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

// CreateReceivableInput defines the expected JSON structure for creating a receivable
type CreateReceivableInput struct {
	CustomerID     uuid.UUID  `json:"customerId" binding:"required"`
	InvoiceID      *uuid.UUID `json:"invoiceId"`
	OriginalAmount float64    `json:"originalAmount" binding:"required,gt=0"`
	DueDate        time.Time  `json:"dueDate" binding:"required"`
	Priority       string     `json:"priority" binding:"omitempty,oneof=normal high urgent"`
	Notes          string     `json:"notes"`
}

type PartialPaymentInput struct {
	Amount float64 `json:"amount" binding:"required,gt=0"`
}

// CollectionActivityInput defines one collection-contact event
type CollectionActivityInput struct {
	CustomerID     uuid.UUID  `json:"customerId" binding:"required"`
	ReceivableID   *uuid.UUID `json:"receivableId"`
	ActionType     string     `json:"actionType" binding:"required,oneof=call visit email letter"`
	ActionDate     *time.Time `json:"actionDate"`
	ContactPerson  string     `json:"contactPerson"`
	Result         string     `json:"result"`
	PromisedAmount float64    `json:"promisedAmount" binding:"min=0"`
	PromisedDate   *time.Time `json:"promisedDate"`
	NextActionDate *time.Time `json:"nextActionDate"`
	Notes          string     `json:"notes"`
}

type ReceivableController struct {
	svc *services.ReceivableService
}

func NewReceivableController(svc *services.ReceivableService) *ReceivableController {
	return &ReceivableController{svc: svc}
}

// CreateReceivable creates an open debt record
func (rc *ReceivableController) CreateReceivable(c *gin.Context) {
	var input CreateReceivableInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	receivable, err := rc.svc.CreateReceivable(services.CreateReceivableInput{
		CustomerID:     input.CustomerID,
		InvoiceID:      input.InvoiceID,
		OriginalAmount: input.OriginalAmount,
		DueDate:        input.DueDate,
		Priority:       models.Priority(input.Priority),
		Notes:          input.Notes,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, receivable)
}

// GetReceivables lists receivables with optional filters
func (rc *ReceivableController) GetReceivables(c *gin.Context) {
	var filter services.ReceivableFilter
	if v := c.Query("customerId"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid customer ID format")
			return
		}
		filter.CustomerID = &id
	}
	filter.Status = models.ReceivableStatus(c.Query("status"))
	filter.Priority = models.Priority(c.Query("priority"))

	receivables, err := rc.svc.ListReceivables(filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, receivables)
}

// GetReceivable retrieves a receivable with its derived overdue days
func (rc *ReceivableController) GetReceivable(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid receivable ID format")
		return
	}

	receivable, err := rc.svc.GetReceivable(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"receivable":  receivable,
		"overdueDays": rc.svc.OverdueDays(receivable),
	})
}

// RecordPartialPayment settles part of a receivable directly
func (rc *ReceivableController) RecordPartialPayment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid receivable ID format")
		return
	}

	var input PartialPaymentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	receivable, err := rc.svc.RecordPartialPayment(id, input.Amount)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, receivable)
}

// WriteOffReceivable writes off the remaining debt
func (rc *ReceivableController) WriteOffReceivable(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid receivable ID format")
		return
	}

	receivable, err := rc.svc.WriteOffReceivable(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, receivable)
}

// AddCollectionActivity appends a collection-contact event
func (rc *ReceivableController) AddCollectionActivity(c *gin.Context) {
	var input CollectionActivityInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	actionDate := time.Time{}
	if input.ActionDate != nil {
		actionDate = *input.ActionDate
	}

	activity, err := rc.svc.AddCollectionActivity(services.CollectionActivityInput{
		CustomerID:     input.CustomerID,
		ReceivableID:   input.ReceivableID,
		ActionType:     input.ActionType,
		ActionDate:     actionDate,
		ContactPerson:  input.ContactPerson,
		Result:         input.Result,
		PromisedAmount: input.PromisedAmount,
		PromisedDate:   input.PromisedDate,
		NextActionDate: input.NextActionDate,
		Notes:          input.Notes,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, activity)
}

// GetCollectionActivities lists a customer's collection history
func (rc *ReceivableController) GetCollectionActivities(c *gin.Context) {
	customerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid customer ID format")
		return
	}

	activities, err := rc.svc.ListCollectionActivities(customerID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, activities)
}
