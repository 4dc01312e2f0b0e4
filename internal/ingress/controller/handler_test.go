package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/enyst/smolpaws/internal/provider/github"
	"github.com/enyst/smolpaws/pkg/config"
	"github.com/enyst/smolpaws/pkg/signature"
	"github.com/gofiber/fiber/v2"
)

type fakePublisher struct {
	published [][]byte
	err       error
}

func (p *fakePublisher) PublishJob(_ context.Context, body []byte) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, body)
	return nil
}

const testSecret = "it's-a-secret"

func testApp(cfg config.Config, publisher JobPublisher) *fiber.App {
	app := fiber.New()
	app.Post("/webhooks/github", NewWebhook(cfg, publisher).HandleWebhook)
	app.Get("/health", HandleHealth)
	return app
}

func eventBody(t *testing.T) []byte {
	t.Helper()
	payload := github.EventPayload{
		Action:       "created",
		Sender:       &github.User{Login: "alice"},
		Comment:      &github.Comment{Body: "@smolpaws fix the bug"},
		Repository:   &github.Repository{FullName: "org/r", Owner: &github.User{Login: "org"}},
		Issue:        &github.Issue{Number: 5},
		Installation: &github.Installation{ID: 42},
	}
	b, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return b
}

func post(t *testing.T, app *fiber.App, body []byte, headers map[string]string) int {
	t.Helper()
	req := httptest.NewRequest("POST", "/webhooks/github", bytes.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	return resp.StatusCode
}

func signedHeaders(body []byte) map[string]string {
	return map[string]string{
		"X-GitHub-Event":       "issue_comment",
		"X-GitHub-Delivery":    "d-1",
		"X-Hub-Signature-256":  signature.Sign(body, testSecret),
		fiber.HeaderContentType: fiber.MIMEApplicationJSON,
	}
}

func TestHandleWebhookQueuesValidEvent(t *testing.T) {
	publisher := &fakePublisher{}
	app := testApp(config.Config{WebhookSecret: testSecret}, publisher)
	body := eventBody(t)

	status := post(t, app, body, signedHeaders(body))
	if status != fiber.StatusAccepted {
		t.Fatalf("status = %d, want 202", status)
	}
	if len(publisher.published) != 1 {
		t.Fatalf("published %d messages, want 1", len(publisher.published))
	}

	var msg github.QueueMessage
	if err := json.Unmarshal(publisher.published[0], &msg); err != nil {
		t.Fatalf("unmarshal queued message: %v", err)
	}
	if msg.Event != github.EventIssueComment {
		t.Errorf("event = %q, want issue_comment", msg.Event)
	}
	if msg.DeliveryID != "d-1" {
		t.Errorf("delivery_id = %q, want d-1", msg.DeliveryID)
	}
	if msg.Payload.Repository.FullName != "org/r" {
		t.Errorf("repository = %q, want org/r", msg.Payload.Repository.FullName)
	}
}

func TestHandleWebhookSignature(t *testing.T) {
	publisher := &fakePublisher{}
	app := testApp(config.Config{WebhookSecret: testSecret}, publisher)
	body := eventBody(t)

	t.Run("missing signature", func(t *testing.T) {
		headers := signedHeaders(body)
		delete(headers, "X-Hub-Signature-256")
		if status := post(t, app, body, headers); status != fiber.StatusUnauthorized {
			t.Errorf("status = %d, want 401", status)
		}
	})

	t.Run("invalid signature", func(t *testing.T) {
		headers := signedHeaders(body)
		headers["X-Hub-Signature-256"] = signature.Sign(body, "wrong-secret")
		if status := post(t, app, body, headers); status != fiber.StatusUnauthorized {
			t.Errorf("status = %d, want 401", status)
		}
	})

	t.Run("tampered body", func(t *testing.T) {
		headers := signedHeaders(body)
		tampered := append(append([]byte{}, body...), ' ')
		if status := post(t, app, tampered, headers); status != fiber.StatusUnauthorized {
			t.Errorf("status = %d, want 401", status)
		}
	})

	t.Run("secret not configured", func(t *testing.T) {
		open := testApp(config.Config{}, publisher)
		if status := post(t, open, body, signedHeaders(body)); status != fiber.StatusInternalServerError {
			t.Errorf("status = %d, want 500", status)
		}
	})

	if len(publisher.published) != 0 {
		t.Errorf("published %d messages, want 0", len(publisher.published))
	}
}

func TestHandleWebhookIgnoresOutOfScope(t *testing.T) {
	publisher := &fakePublisher{}
	app := testApp(config.Config{WebhookSecret: testSecret, AllowedActors: "alice"}, publisher)

	mutate := func(f func(p *github.EventPayload)) []byte {
		var payload github.EventPayload
		if err := json.Unmarshal(eventBody(t), &payload); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		f(&payload)
		b, _ := json.Marshal(payload)
		return b
	}

	tests := []struct {
		name    string
		body    []byte
		headers func(body []byte) map[string]string
	}{
		{
			"unknown event name",
			eventBody(t),
			func(body []byte) map[string]string {
				h := signedHeaders(body)
				h["X-GitHub-Event"] = "push"
				return h
			},
		},
		{
			"edited action",
			mutate(func(p *github.EventPayload) { p.Action = "edited" }),
			signedHeaders,
		},
		{
			"no mention",
			mutate(func(p *github.EventPayload) { p.Comment.Body = "just chatting" }),
			signedHeaders,
		},
		{
			"mention inside longer handle",
			mutate(func(p *github.EventPayload) { p.Comment.Body = "cc @smolpawsbot" }),
			signedHeaders,
		},
		{
			"allow list miss",
			mutate(func(p *github.EventPayload) { p.Sender.Login = "bob" }),
			signedHeaders,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if status := post(t, app, tt.body, tt.headers(tt.body)); status != fiber.StatusOK {
				t.Errorf("status = %d, want 200", status)
			}
		})
	}

	if len(publisher.published) != 0 {
		t.Errorf("published %d messages, want 0", len(publisher.published))
	}
}

func TestHandleWebhookBadRequests(t *testing.T) {
	publisher := &fakePublisher{}
	app := testApp(config.Config{WebhookSecret: testSecret}, publisher)

	t.Run("malformed json", func(t *testing.T) {
		body := []byte(`{"comment": "@smolpaws`)
		if status := post(t, app, body, signedHeaders(body)); status != fiber.StatusBadRequest {
			t.Errorf("status = %d, want 400", status)
		}
	})

	t.Run("missing installation", func(t *testing.T) {
		var payload github.EventPayload
		json.Unmarshal(eventBody(t), &payload)
		payload.Installation = nil
		body, _ := json.Marshal(payload)
		if status := post(t, app, body, signedHeaders(body)); status != fiber.StatusBadRequest {
			t.Errorf("status = %d, want 400", status)
		}
	})

	t.Run("missing issue number", func(t *testing.T) {
		var payload github.EventPayload
		json.Unmarshal(eventBody(t), &payload)
		payload.Issue = nil
		body, _ := json.Marshal(payload)
		if status := post(t, app, body, signedHeaders(body)); status != fiber.StatusBadRequest {
			t.Errorf("status = %d, want 400", status)
		}
	})
}

func TestHandleHealth(t *testing.T) {
	app := testApp(config.Config{WebhookSecret: testSecret}, &fakePublisher{})
	resp, err := app.Test(httptest.NewRequest("GET", "/health", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}
