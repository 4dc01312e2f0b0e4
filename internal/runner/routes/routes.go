package routes

import (
	"github.com/enyst/smolpaws/internal/runner"
	"github.com/gofiber/fiber/v2"
)

func TaskRouter(router fiber.Router, s *runner.Server) {
	router.Use(s.RequireAuth)
	router.Post("run", s.HandleRun)

	conv := router.Group("conversations/:id")
	conv.Post("messages", s.HandleSendMessage)
	conv.Get("events", s.HandleListEvents)
	conv.Post("pause", s.HandlePause)
	conv.Post("resume", s.HandleResume)
	conv.Post("secrets", s.HandleSetSecrets)
	conv.Post("confirmation-policy", s.HandleSetConfirmationPolicy)
}

func HealthRouter(router fiber.Router) {
	router.Get("health", runner.HandleHealth)
}
