package main

import (
	"log"
	"os"

	"credits-service/internal/database"
	"credits-service/internal/handlers"
	"credits-service/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found in current directory, trying parent")
		if err := godotenv.Load("../.env"); err != nil {
			log.Println("No .env file found, using system environment variables")
		}
	}

	if mode := os.Getenv("GIN_MODE"); mode != "" {
		gin.SetMode(mode)
	}

	// Initialize Database
	database.Connect()
	database.Migrate()
	db := database.DB

	// Redis/Asynq Client
	redisAddr := os.Getenv("REDIS_URL")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{Addr: redisAddr})
	defer asynqClient.Close()

	// Init Services
	creditService := services.NewCreditService(db)
	asaasService := services.NewAsaasService(db)
	paymentService := services.NewPaymentService(db, creditService, asaasService)
	webhookService := services.NewWebhookService(db, creditService, asynqClient)
	prepaidService := services.NewPrepaidWalletService(db)

	// Handlers
	creditHandler := handlers.NewCreditHandler(creditService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	webhookHandler := handlers.NewWebhookHandler(webhookService, asaasService)
	prepaidHandler := handlers.NewPrepaidHandler(prepaidService)

	// Initialize Gin
	r := gin.Default()

	// Ping endpoint
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "Welcome To Credits service",
		})
	})

	// Credit Routes
	r.GET("/credits/balance", creditHandler.GetBalance)
	r.GET("/credits/available", creditHandler.GetAvailableBalance)
	r.POST("/credits/purchase", paymentHandler.PurchaseCredits)
	r.POST("/credits/debit", creditHandler.Debit)
	r.GET("/credits/transactions", creditHandler.ListTransactions)

	// Package Routes
	r.GET("/credit-packages", paymentHandler.ListPackages)
	r.POST("/credit-packages", paymentHandler.SavePackage)

	// Webhook Routes
	r.POST("/webhooks/asaas", webhookHandler.HandleAsaasWebhook)

	// Prepaid Wallet Routes
	r.GET("/prepaid/balance", prepaidHandler.GetBalance)
	r.POST("/prepaid/credit", prepaidHandler.Credit)
	r.GET("/prepaid/transactions", prepaidHandler.ListTransactions)
	r.POST("/service-orders/pay-with-prepaid", prepaidHandler.PayServiceOrder)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// Start Cron Schedulers
	paymentService.StartScheduler()
	creditService.StartAuditScheduler()
	prepaidService.StartAuditScheduler()

	webhookArchiveService := services.NewWebhookArchiveService(db)
	webhookArchiveService.StartScheduler()

	log.Printf("HTTP Server starting on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal("Failed to start server: ", err)
	}
}
