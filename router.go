package main

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/restaurant-oms/oms-api/controllers"
	"github.com/restaurant-oms/oms-api/middleware"
	"github.com/restaurant-oms/oms-api/models"
)

// setupRouter builds the gin engine with every /api/v1 route.
func setupRouter(app *application) *gin.Engine {
	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.RequestLogger(app.lg),
		middleware.Recovery(app.lg),
		cors.New(corsConfig(app.cfg.CORSOrigins)),
	)

	products := controllers.NewProductController(app.catalog, app.lg)
	orders := controllers.NewOrderController(app.orders, app.lg)
	reports := controllers.NewReportController(app.reporting, app.lg)
	ai := controllers.NewAIController(app.analytics, app.lg)
	auth := controllers.NewAuthController(app.auth, app.lg)
	users := controllers.NewUserController(app.auth, app.lg)
	uploads := controllers.NewUploadController(app.cfg.UploadDir)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Health check endpoint
		v1.GET("/health", healthCheck)

		// Database status endpoint
		v1.GET("/database/status", databaseStatus(app))

		v1.POST("/auth/login", auth.Login)
		v1.POST("/auth/register", auth.Register)

		// Public image serving
		v1.GET("/uploads/:filename", uploads.GetUploadedImage)

		protected := v1.Group("")
		protected.Use(middleware.EnsureValidToken(app.auth.Tokens(), app.lg))
		{
			protected.GET("/auth/verify", auth.Verify)
			protected.POST("/auth/logout", auth.Logout)

			protected.GET("/users/profile", users.GetMyProfile)
			protected.POST("/users/change-password", users.ChangePassword)

			protected.GET("/products", products.ListProducts)
			protected.POST("/products", products.CreateProduct)
			protected.GET("/products/:id", products.GetProduct)
			protected.PATCH("/products/:id", products.UpdateProduct)
			protected.DELETE("/products/:id", middleware.RequireRole(models.RoleAdmin), products.DeleteProduct)
			protected.POST("/products/:id/image", products.UploadProductImage)

			protected.GET("/orders", orders.ListOrders)
			protected.POST("/orders", orders.CreateOrder)
			protected.GET("/orders/range", orders.ListOrdersByRange)
			protected.GET("/orders/:id", orders.GetOrder)
			protected.PATCH("/orders/:id/status", orders.UpdateOrderStatus)
			protected.DELETE("/orders/:id", middleware.RequireRole(models.RoleAdmin), orders.DeleteOrder)

			protected.GET("/transactions", reports.ListTransactions)
			protected.GET("/transactions/range", reports.TransactionsByRange)
			protected.GET("/transactions/completed", reports.CompletedTransactions)
			protected.GET("/transactions/:id", reports.GetTransaction)
			protected.PATCH("/transactions/:id/status", orders.UpdateTransactionStatus)
			protected.DELETE("/transactions/:id", middleware.RequireRole(models.RoleAdmin), orders.DeleteTransaction)

			protected.GET("/sales", reports.ListSales)
			protected.GET("/sales/summary", reports.SalesSummary)
			protected.GET("/sales/range", reports.SalesByRange)
			protected.GET("/sales/:id", reports.GetSale)

			protected.GET("/ai/analyze-sales", ai.AnalyzeSales)
			protected.GET("/ai/analyze-order/:orderId", ai.AnalyzeOrder)
			protected.GET("/ai/detect-anomalies", ai.DetectAnomalies)
			protected.GET("/ai/dashboard", ai.Dashboard)
		}
	}

	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Restaurant OMS API is running",
	})
}

// databaseStatus checks database connectivity and returns table information
func databaseStatus(app *application) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get the underlying SQL database to check connection
		sqlDB, err := app.db.DB()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DATABASE_ERROR",
					"message": "Failed to get database instance",
				},
			})
			return
		}

		// Ping the database to verify connection
		if err := sqlDB.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DATABASE_CONNECTION_ERROR",
					"message": "Database connection failed",
				},
			})
			return
		}

		// Get list of tables
		tables, err := app.db.WithContext(c.Request.Context()).Migrator().GetTables()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DATABASE_QUERY_ERROR",
					"message": "Failed to query tables",
				},
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Database connected",
			"tables":  tables,
		})
	}
}
