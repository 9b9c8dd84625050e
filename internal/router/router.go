// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/shopdesk/crm-backend/internal/cache"
	"github.com/shopdesk/crm-backend/internal/config"
	"github.com/shopdesk/crm-backend/internal/handlers"
	"github.com/shopdesk/crm-backend/internal/middleware"
	"github.com/shopdesk/crm-backend/internal/services"
	"github.com/shopdesk/crm-backend/internal/utils"
)

func Initialize(db *gorm.DB, statsCache cache.Cache, cfg *config.Config) *gin.Engine {
	// Initialize services
	notificationService := services.NewNotificationService(db, cfg)
	inventoryService := services.NewInventoryService(db)
	trustService := services.NewTrustService(db)

	authService := services.NewAuthService(db, cfg)
	productService := services.NewProductService(db)
	customerService := services.NewCustomerService(db)
	billingService := services.NewBillingService(db, inventoryService, trustService, notificationService)
	returnsService := services.NewReturnsService(db, inventoryService, trustService, notificationService)
	dashboardService := services.NewDashboardService(db, statsCache, cfg)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	productHandler := handlers.NewProductHandler(productService)
	customerHandler := handlers.NewCustomerHandler(customerService, trustService)
	billingHandler := handlers.NewBillingHandler(billingService)
	returnsHandler := handlers.NewReturnsHandler(returnsService)
	analyticsHandler := handlers.NewAnalyticsHandler(customerService, trustService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService, notificationService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(cfg.Server.AllowedOrigins))
	r.Use(middleware.GeneralRateLimit())
	r.Use(middleware.AuditLogMiddleware(db))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// API v1 routes
	v1 := r.Group("/v1")
	{
		// Authentication routes
		auth := v1.Group("/auth")
		auth.Use(middleware.AuthRateLimit())
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.GET("/me", middleware.AuthRequired(), authHandler.GetProfile)
		}

		// Product catalog routes
		products := v1.Group("/products")
		products.Use(middleware.AuthRequired())
		{
			products.GET("", productHandler.ListProducts)
			products.GET("/:id", productHandler.GetProduct)
			products.POST("", productHandler.CreateProduct)
			products.PUT("/:id", productHandler.UpdateProduct)
			products.DELETE("/:id", middleware.AdminRequired(), productHandler.DeleteProduct)
		}

		// Billing routes
		bills := v1.Group("/bills")
		bills.Use(middleware.AuthRequired())
		{
			bills.POST("", billingHandler.CreateBill)
			bills.GET("", billingHandler.ListBills)
			bills.GET("/:id", billingHandler.GetBill)
			bills.GET("/by-transaction/:tid", billingHandler.GetBillByTransactionID)
		}

		// Return workflow routes
		returns := v1.Group("/returns")
		returns.Use(middleware.AuthRequired())
		{
			returns.POST("", returnsHandler.RequestReturn)
			returns.GET("", returnsHandler.ListReturns)
			returns.GET("/stats", returnsHandler.GetStats)
			returns.GET("/:id", returnsHandler.GetReturn)
			returns.PUT("/:id/approve", middleware.AdminRequired(), returnsHandler.ApproveReturn)
			returns.PUT("/:id/reject", middleware.AdminRequired(), returnsHandler.RejectReturn)
		}

		// Customer routes
		customers := v1.Group("/customers")
		customers.Use(middleware.AuthRequired())
		{
			customers.POST("", customerHandler.CreateCustomer)
			customers.GET("", customerHandler.ListCustomers)
			customers.GET("/:id", customerHandler.GetCustomer)
			customers.PUT("/:id", customerHandler.UpdateCustomer)
			customers.GET("/:id/profile", customerHandler.GetProfile)
			customers.POST("/:id/recompute-trust", middleware.AdminRequired(), customerHandler.RecomputeTrust)
		}

		// Analytics routes
		analytics := v1.Group("/analytics")
		analytics.Use(middleware.AuthRequired())
		{
			analytics.GET("/customers", analyticsHandler.GetCustomerOverview)
			analytics.POST("/recompute", middleware.AdminRequired(), analyticsHandler.RecomputeAll)
		}

		// Dashboard routes
		dashboard := v1.Group("/dashboard")
		dashboard.Use(middleware.AuthRequired())
		{
			dashboard.GET("/stats", dashboardHandler.GetStats)
			dashboard.GET("/notifications", dashboardHandler.GetNotifications)
		}

		// Admin routes
		admin := v1.Group("/admin")
		admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
		{
			admin.GET("/users", authHandler.ListUsers)
		}
	}

	return r
}
