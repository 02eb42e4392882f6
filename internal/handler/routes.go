package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/milanfarm/farmbook/farmbook-backend/internal/middleware"
)

// Handlers groups the HTTP handlers mounted under /api/v1
type Handlers struct {
	Auth       *AuthHandler
	Voice      *VoiceHandler
	Category   *CategoryHandler
	Expense    *ExpenseHandler
	Plantation *PlantationHandler
	Stay       *StayHandler
	Export     *ExportHandler
}

// RegisterRoutes sets up all API routes
func RegisterRoutes(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, voiceLimiter *middleware.RateLimiter, h Handlers) {
	// API version 1, every route protected
	api := e.Group("/api/v1")
	api.Use(authMiddleware.Authenticate())

	api.GET("/session", h.Auth.Session)
	api.POST("/auth/logout", h.Auth.Logout)

	// Voice interpretation is rate limited per tenant
	api.POST("/voice/interpret", h.Voice.Interpret, middleware.RateLimitMiddleware(voiceLimiter))

	categories := api.Group("/categories")
	categories.GET("", h.Category.GetCategories)
	categories.POST("", h.Category.CreateCategory)

	expenses := api.Group("/expenses")
	expenses.GET("", h.Expense.GetExpenses)
	expenses.POST("", h.Expense.CreateExpense)
	expenses.GET("/report", h.Expense.GetReport)
	expenses.GET("/export", h.Expense.ExportExpenses)
	expenses.DELETE("/:id", h.Expense.DeleteExpense)

	plantation := api.Group("/plantation")
	plantation.GET("/records", h.Plantation.GetRecords)
	plantation.POST("/records", h.Plantation.CreateRecord)
	plantation.DELETE("/records/:id", h.Plantation.DeleteRecord)
	plantation.GET("/report", h.Plantation.GetReport)
	plantation.GET("/years", h.Plantation.GetReportYears)

	stay := api.Group("/stay")
	stay.GET("/workers", h.Stay.GetWorkers)
	stay.POST("/workers", h.Stay.AddWorker)
	stay.DELETE("/workers/:id", h.Stay.RemoveWorker)
	stay.GET("/wages", h.Stay.GetWageHistory)
	stay.POST("/wages", h.Stay.SaveWages)
	stay.GET("/payments", h.Stay.GetPayments)
	stay.POST("/payments", h.Stay.RecordPayment)
	stay.GET("/balances", h.Stay.GetBalances)
	stay.GET("/export", h.Stay.ExportStay)

	api.POST("/exports", h.Export.Archive)
}
