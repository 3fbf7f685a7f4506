package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/mafiaidolaa/medicalrep-sub002/config"
	"github.com/mafiaidolaa/medicalrep-sub002/controllers"
	"github.com/mafiaidolaa/medicalrep-sub002/services"
	"github.com/mafiaidolaa/medicalrep-sub002/utils"
)

func SetupRouter() *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r.Use(config.PerformanceLogger())

	audit := services.NewAuditLogger(config.DB)
	invoiceSvc := services.NewInvoiceService(config.DB, audit, time.Now)
	paymentSvc := services.NewPaymentService(config.DB, audit, time.Now)
	receivableSvc := services.NewReceivableService(config.DB, audit, time.Now)
	reportSvc := services.NewReportService(config.DB, time.Now)

	invoiceController := controllers.NewInvoiceController(invoiceSvc)
	paymentController := controllers.NewPaymentController(paymentSvc)
	receivableController := controllers.NewReceivableController(receivableSvc)
	reportController := controllers.NewReportController(reportSvc)

	auth := r.Group("/auth")
	{
		auth.POST("/register", controllers.Register)
		auth.POST("/login", controllers.Login)

		auth.Use(utils.AuthMiddleware())
		auth.GET("/me", controllers.Me)
	}

	api := r.Group("/api")
	api.Use(utils.AuthMiddleware())
	{
		// Customer routes
		customers := api.Group("/customers")
		{
			customers.POST("", controllers.CreateCustomer)
			customers.GET("", controllers.GetCustomers)
			customers.GET("/:id", controllers.GetCustomer)
			customers.PUT("/:id", controllers.UpdateCustomer)
			customers.DELETE("/:id", controllers.DeactivateCustomer)
			customers.GET("/:id/statement", reportController.GetCustomerStatement)
			customers.GET("/:id/collections", receivableController.GetCollectionActivities)
		}

		// Invoice routes
		invoices := api.Group("/invoices")
		{
			invoices.POST("", invoiceController.CreateInvoice)
			invoices.GET("", invoiceController.GetInvoices)
			invoices.GET("/:id", invoiceController.GetInvoice)
			invoices.POST("/:id/send", invoiceController.SendInvoice)
			invoices.POST("/:id/cancel", invoiceController.CancelInvoice)
			invoices.PUT("/:id/status", invoiceController.UpdateInvoiceStatus)
			invoices.PUT("/:id/paid-amount", invoiceController.UpdatePaidAmount)
			invoices.DELETE("/:id", invoiceController.DeleteInvoice)
		}

		// Payment routes
		payments := api.Group("/payments")
		{
			payments.POST("", paymentController.CreatePayment)
			payments.GET("", paymentController.GetPayments)
			payments.GET("/:id", paymentController.GetPayment)
			payments.POST("/:id/confirm", paymentController.ConfirmPayment)
			payments.POST("/:id/bounce", paymentController.BouncePayment)
			payments.POST("/:id/cancel", paymentController.CancelPayment)
			payments.DELETE("/:id", paymentController.DeletePayment)
		}

		// Receivable routes
		receivables := api.Group("/receivables")
		{
			receivables.POST("", receivableController.CreateReceivable)
			receivables.GET("", receivableController.GetReceivables)
			receivables.GET("/:id", receivableController.GetReceivable)
			receivables.POST("/:id/partial-payment", receivableController.RecordPartialPayment)
			receivables.POST("/:id/write-off", receivableController.WriteOffReceivable)
		}

		// Collection activity log
		api.POST("/collections", receivableController.AddCollectionActivity)

		// Report routes
		reports := api.Group("/reports")
		{
			reports.GET("/summary", reportController.GetLedgerSummary)
			reports.GET("/aging", reportController.GetReceivableAging)
		}
	}

	return r
}
