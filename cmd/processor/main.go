package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/enyst/smolpaws/internal/mq"
	"github.com/enyst/smolpaws/internal/processor"
	"github.com/enyst/smolpaws/internal/provider/github"
	"github.com/enyst/smolpaws/pkg/config"
	"github.com/joho/godotenv"
)

var logger = log.New(os.Stdout, "[Processor Main]: ", log.Lshortfile|log.LstdFlags)

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

	auth, err := github.NewAppAuth(cfg.AppID, cfg.AppPrivateKeyPEM)
	if err != nil {
		logger.Fatalf("Failed to load GitHub App credentials: %v", err)
	}

	consumer, err := mq.NewConsumer(cfg.QueueURL, mq.ExchangeName, "smolpaws-processor", cfg.QueueMaxAttempts)
	if err != nil {
		logger.Fatalf("Failed to connect to message queue: %v", err)
	}
	defer consumer.Close()

	proc := processor.New(auth, processor.NewRunnerClient(cfg.RunnerURL, cfg.RunnerToken))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Printf("Consuming jobs from %s", mq.QueueNameJobs)
	if err := consumer.ConsumeJobs(ctx, proc.Handle); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatalf("Consumer stopped: %v", err)
	}
}
