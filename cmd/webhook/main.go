package main

import (
	"log"
	"os"

	"github.com/enyst/smolpaws/internal/ingress/controller"
	"github.com/enyst/smolpaws/internal/ingress/routes"
	"github.com/enyst/smolpaws/internal/mq"
	"github.com/enyst/smolpaws/pkg/config"
	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"
)

var logger = log.New(os.Stdout, "[Webhook Main]: ", log.Lshortfile|log.LstdFlags)

func main() {
	if err := godotenv.Load(); err != nil {
		logger.Printf("No .env file loaded: %v", err)
	}
	cfg, err := config.FromEnv()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.QueueURL == "" {
		logger.Fatalf("SMOLPAWS_QUEUE_URL is required")
	}

	publisher, err := mq.NewPublisher(cfg.QueueURL, mq.ExchangeName)
	if err != nil {
		logger.Fatalf("Failed to connect to message queue: %v", err)
	}
	defer publisher.Close()

	app := fiber.New()
	routes.HealthRouter(app)
	webhookRouter := app.Group("/webhooks")
	routes.TaskRouter(webhookRouter, controller.NewWebhook(*cfg, publisher))

	logger.Printf("Webhook server listening on %s", cfg.ListenAddr)
	if err := app.Listen(cfg.ListenAddr); err != nil {
		logger.Fatalf("Server stopped: %v", err)
	}
}
