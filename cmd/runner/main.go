package main

import (
	"log"
	"os"

	"github.com/enyst/smolpaws/internal/runner"
	"github.com/enyst/smolpaws/internal/runner/routes"
	"github.com/enyst/smolpaws/internal/sandbox"
	"github.com/enyst/smolpaws/pkg/config"
	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"
)

var logger = log.New(os.Stdout, "[Runner Main]: ", log.Lshortfile|log.LstdFlags)

func main() {
	if err := godotenv.Load(); err != nil {
		logger.Printf("No .env file loaded: %v", err)
	}
	cfg, err := config.FromEnv()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	var orch *sandbox.Orchestrator
	if provider := sandboxProvider(cfg); provider != nil {
		orch = sandbox.NewOrchestrator(provider, nil, cfg.AutoStopMinutes)
	} else {
		logger.Printf("No sandbox provider configured, replies fall back to the greeting")
	}

	server := runner.NewServer(*cfg, orch)

	app := fiber.New()
	routes.HealthRouter(app)
	routes.TaskRouter(app, server)

	logger.Printf("Runner listening on %s", cfg.RunnerAddr)
	if err := app.Listen(cfg.RunnerAddr); err != nil {
		logger.Fatalf("Server stopped: %v", err)
	}
}

// sandboxProvider picks the configured provider: the hosted HTTP sandbox
// when an API key is set, then the self-hosted SSH pool, then the local
// filesystem for development.
func sandboxProvider(cfg *config.Config) sandbox.Provider {
	if p := sandbox.NewDaytonaProvider(cfg.Daytona); p != nil {
		logger.Printf("Using Daytona sandbox provider")
		return p
	}
	if p := sandbox.NewSSHPoolProvider(cfg.SandboxHosts); p != nil {
		logger.Printf("Using SSH pool sandbox provider with %d hosts", len(cfg.SandboxHosts))
		return p
	}
	if cfg.SandboxRoot != "" {
		logger.Printf("Using local sandbox provider at %s", cfg.SandboxRoot)
		return sandbox.NewLocalProvider(cfg.SandboxRoot)
	}
	return nil
}
