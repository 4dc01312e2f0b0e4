package routes

import (
	"github.com/enyst/smolpaws/internal/ingress/controller"
	"github.com/gofiber/fiber/v2"
)

func TaskRouter(router fiber.Router, webhook *controller.Webhook) {
	router.Post("github", webhook.HandleWebhook)
}

func HealthRouter(router fiber.Router) {
	router.Get("health", controller.HandleHealth)
}
