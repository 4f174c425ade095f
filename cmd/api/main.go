package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/ravi5775/v1/internal/config"
	"github.com/ravi5775/v1/internal/database"
	"github.com/ravi5775/v1/internal/handlers"
	"github.com/ravi5775/v1/internal/logger"
	"github.com/ravi5775/v1/internal/middleware"
	"github.com/ravi5775/v1/internal/services"
	"github.com/ravi5775/v1/internal/validator"
)

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize database configuration
	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	// Create database manager
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	// Run migrations
	if err := dbManager.Migrate(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// Register custom request validators
	validator.Register()

	// Initialize services
	db := dbManager.DB()
	loanService := services.NewLoanService(db)
	investorService := services.NewInvestorService(db)

	// Initialize handlers
	loanHandler := handlers.NewLoanHandler(loanService)
	investorHandler := handlers.NewInvestorHandler(investorService)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 group
	v1 := router.Group("/api/v1")

	// Loan routes
	loans := v1.Group("/loans")
	loans.POST("", loanHandler.CreateLoan)
	loans.GET("", loanHandler.GetLoans)
	loans.GET("/summary", loanHandler.GetLoanSummary)
	loans.POST("/delete", loanHandler.DeleteLoans)
	loans.GET("/:id", loanHandler.GetLoan)
	loans.PUT("/:id", loanHandler.UpdateLoan)
	loans.POST("/:id/transactions", loanHandler.AddTransaction)
	loans.PUT("/:id/transactions/:transactionId", loanHandler.UpdateTransaction)
	loans.DELETE("/:id/transactions/:transactionId", loanHandler.DeleteTransaction)

	// Investor routes
	investors := v1.Group("/investors")
	investors.POST("", investorHandler.CreateInvestor)
	investors.GET("", investorHandler.GetInvestors)
	investors.GET("/summary", investorHandler.GetInvestorSummary)
	investors.GET("/:id", investorHandler.GetInvestor)
	investors.PUT("/:id", investorHandler.UpdateInvestor)
	investors.DELETE("/:id", investorHandler.DeleteInvestor)
	investors.GET("/:id/metrics", investorHandler.GetInvestorMetrics)
	investors.POST("/:id/payments", investorHandler.AddPayment)
	investors.PUT("/:id/payments/:paymentId", investorHandler.UpdatePayment)
	investors.DELETE("/:id/payments/:paymentId", investorHandler.DeletePayment)

	// Start server
	addr := ":" + appConfig.Port
	log.Infof("Starting server on %s (env: %s)", addr, appConfig.Env)
	if err := router.Run(addr); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}
