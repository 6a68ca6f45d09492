package main

import (
	"log"
	"os"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"credits-service/internal/consumers"
	"credits-service/internal/database"
	"credits-service/internal/worker"
)

func main() {
	// Load env
	if err := godotenv.Load("../../.env"); err != nil {
		log.Println("No .env file found in ../../.env, trying .env")
		if err := godotenv.Load(".env"); err != nil {
			log.Println("No .env file found, using system env")
		}
	}

	// Connect DB
	database.Connect()
	db := database.DB

	// Processor
	processor := consumers.NewPaymentProcessor(db)

	// Redis
	redisAddr := os.Getenv("REDIS_URL")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	redisOpt := asynq.RedisClientOpt{Addr: redisAddr}

	log.Println("Starting Asynq Worker...")
	worker.StartWorker(redisOpt, processor)
}
