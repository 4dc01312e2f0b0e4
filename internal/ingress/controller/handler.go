package controller

import (
	"context"
	"encoding/json"
	"log"
	"os"

	"github.com/enyst/smolpaws/internal/provider/github"
	"github.com/enyst/smolpaws/pkg/config"
	"github.com/enyst/smolpaws/pkg/signature"
	"github.com/gofiber/fiber/v2"
)

var logger = log.New(os.Stdout, "[Webhook Handler]: ", log.Lshortfile|log.LstdFlags)

// JobPublisher enqueues an accepted event for asynchronous processing.
type JobPublisher interface {
	PublishJob(ctx context.Context, body []byte) error
}

// Webhook verifies, filters and enqueues inbound GitHub events. Everything
// out of scope is answered with a neutral 200 so unauthenticated callers
// cannot probe the allow list.
type Webhook struct {
	secret    string
	allowList github.AllowList
	publisher JobPublisher
}

func NewWebhook(cfg config.Config, publisher JobPublisher) *Webhook {
	return &Webhook{
		secret:    cfg.WebhookSecret,
		allowList: github.NewAllowList(cfg.AllowedActors, cfg.AllowedOwners, cfg.AllowedRepos, cfg.AllowedInstallations),
		publisher: publisher,
	}
}

func (w *Webhook) HandleWebhook(ctx *fiber.Ctx) error {
	if w.secret == "" {
		logger.Printf("Webhook secret is not configured, rejecting delivery")
		return fiber.ErrInternalServerError
	}

	// The signature covers the raw bytes, so verify before any parsing.
	body := ctx.Body()
	sig := ctx.Get("X-Hub-Signature-256")
	if sig == "" {
		logger.Printf("Missing X-Hub-Signature-256 header")
		return fiber.ErrUnauthorized
	}
	if !signature.Verify(body, w.secret, sig) {
		logger.Printf("Signature verification failed")
		return fiber.ErrUnauthorized
	}

	event, ok := github.ClassifyEvent(ctx.Get("X-GitHub-Event"))
	if !ok {
		return ctx.Status(fiber.StatusOK).SendString("Ignored")
	}

	var payload github.EventPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		logger.Printf("Failed to unmarshal payload: %v", err)
		return fiber.ErrBadRequest
	}

	if payload.Action != "" && payload.Action != "created" {
		return ctx.Status(fiber.StatusOK).SendString("Ignored")
	}
	if payload.Comment == nil || !github.ContainsMention(payload.Comment.Body) {
		return ctx.Status(fiber.StatusOK).SendString("Ignored")
	}
	if !w.allowList.Allows(&payload) {
		return ctx.Status(fiber.StatusOK).SendString("Ignored")
	}

	if _, ok := payload.IssueNumber(); !ok || payload.Installation == nil || payload.Repository == nil || payload.Repository.FullName == "" {
		return ctx.Status(fiber.StatusBadRequest).SendString("Missing repository context")
	}

	msg := github.QueueMessage{
		Event:      event,
		Payload:    payload,
		DeliveryID: ctx.Get("X-GitHub-Delivery"),
	}
	encoded, err := json.Marshal(msg)
	if err != nil {
		logger.Printf("Failed to marshal queue message: %v", err)
		return fiber.ErrInternalServerError
	}
	if err := w.publisher.PublishJob(ctx.Context(), encoded); err != nil {
		logger.Printf("Failed to publish job: %v", err)
		return fiber.ErrInternalServerError
	}

	logger.Printf("Queued %s event for %s (delivery %s)", event, payload.Repository.FullName, msg.DeliveryID)
	return ctx.Status(fiber.StatusAccepted).SendString("Queued")
}

func HandleHealth(ctx *fiber.Ctx) error {
	return ctx.Status(fiber.StatusOK).SendString("ok")
}
