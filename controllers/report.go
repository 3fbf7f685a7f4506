// controllers/report.go
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mafiaidolaa/medicalrep-sub002/services"
	"github.com/mafiaidolaa/medicalrep-sub002/utils"
)

// ReportController handles the read-only ledger statistics endpoints
type ReportController struct {
	svc *services.ReportService
}

func NewReportController(svc *services.ReportService) *ReportController {
	return &ReportController{svc: svc}
}

// GetLedgerSummary returns headline totals and collection rate
func (rc *ReportController) GetLedgerSummary(c *gin.Context) {
	summary, err := rc.svc.GetLedgerSummary()
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// GetReceivableAging returns aging bucket totals over open receivables
func (rc *ReportController) GetReceivableAging(c *gin.Context) {
	report, err := rc.svc.GetReceivableAging()
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// GetCustomerStatement returns one customer's full ledger position
func (rc *ReportController) GetCustomerStatement(c *gin.Context) {
	customerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid customer ID format")
		return
	}

	statement, err := rc.svc.GetCustomerStatement(customerID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, statement)
}
