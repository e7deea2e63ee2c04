package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tuanvm/investfolio/config"
	"github.com/tuanvm/investfolio/internal/transport/rest/middleware"
)

func NewRouter(cfg *config.Config, ctrl *Controller, tokenParser middleware.TokenParser) *gin.Engine {
	gin.SetMode(cfg.HTTP.GinMode)

	router := gin.New()
	router.Use(gin.Recovery(), middleware.Logger())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/register", ctrl.Register)
		auth.POST("/login", ctrl.Login)
	}

	protected := api.Group("", middleware.Auth(tokenParser))
	{
		protected.GET("/auth/me", ctrl.GetProfile)
		protected.POST("/auth/change-password", ctrl.ChangePassword)

		categories := protected.Group("/categories")
		{
			categories.POST("", ctrl.CreateCategory)
			categories.GET("", ctrl.GetCategories)
			categories.GET("/:id", ctrl.GetCategory)
			categories.PUT("/:id", ctrl.UpdateCategory)
			categories.DELETE("/:id", ctrl.DeleteCategory)
		}

		transactions := protected.Group("/transactions")
		{
			transactions.POST("", ctrl.CreateTransaction)
			transactions.GET("", ctrl.GetTransactions)
			transactions.GET("/recent", ctrl.GetRecentTransactions)
			transactions.GET("/date-range", ctrl.GetTransactionsByDateRange)
			transactions.GET("/category/:categoryId", ctrl.GetTransactionsByCategory)
			transactions.PUT("/:id", ctrl.UpdateTransaction)
			transactions.DELETE("/:id", ctrl.DeleteTransaction)
		}

		portfolio := protected.Group("/portfolio")
		{
			portfolio.GET("/dashboard", ctrl.GetDashboard)
			portfolio.GET("/overview", ctrl.GetOverview)
			portfolio.GET("/distribution", ctrl.GetDistribution)
			portfolio.GET("/pnl", ctrl.GetPnl)
			portfolio.GET("/pnl-7days", ctrl.GetPnlLast7Days)
			portfolio.GET("/history", ctrl.GetHistory)
			portfolio.PUT("/value/:categoryId", ctrl.UpdateCurrentValue)
			portfolio.POST("/snapshot", ctrl.CreateSnapshot)
			portfolio.GET("/export", ctrl.ExportReport)
		}

		price := protected.Group("/price")
		{
			price.GET("/:code", ctrl.GetQuote)
			price.POST("/:code/apply/:categoryId", ctrl.ApplyQuote)
		}

		expenses := protected.Group("/expenses")
		{
			expenses.POST("", ctrl.CreateExpense)
			expenses.GET("", ctrl.GetExpenses)
			expenses.GET("/trend", ctrl.GetExpenseTrend)
			expenses.GET("/trend/item/:itemName", ctrl.GetItemTrend)
			expenses.POST("/trend/items", ctrl.GetItemsTrend)
			expenses.GET("/item-names", ctrl.GetItemNames)
			expenses.GET("/tracked-items", ctrl.GetTrackedItems)
			expenses.PUT("/tracked-items", ctrl.SetTrackedItems)
			expenses.GET("/month/:month", ctrl.GetExpenseByMonth)
			expenses.DELETE("/month/:month", ctrl.DeleteExpenseByMonth)
			expenses.POST("/copy", ctrl.CopyExpense)
			expenses.POST("/:id/items", ctrl.AddExpenseItem)
			expenses.PUT("/items/:id", ctrl.UpdateExpenseItem)
			expenses.DELETE("/items/:id", ctrl.DeleteExpenseItem)
		}
	}

	return router
}
