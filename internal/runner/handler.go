package runner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/enyst/smolpaws/internal/provider/github"
	"github.com/enyst/smolpaws/internal/sandbox"
	"github.com/enyst/smolpaws/pkg/config"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Server is the execution backend. It turns a queue message into a reply
// string, starting a sandbox-backed conversation when the orchestrator is
// available and falling back to a templated greeting otherwise.
type Server struct {
	token          string
	store          *Store
	llm            config.LLMConfig
	persistenceDir string

	// run points at the orchestrator; a seam for tests. Orchestrator.Run is
	// nil-receiver safe, so an unconfigured server simply gets (nil, nil).
	run func(ctx context.Context, params sandbox.RunParams) (*sandbox.RunResult, error)
}

func NewServer(cfg config.Config, orch *sandbox.Orchestrator) *Server {
	return &Server{
		token:          cfg.RunnerToken,
		store:          NewStore(func(string) Engine { return warmingEngine{} }),
		llm:            cfg.LLM,
		persistenceDir: cfg.PersistenceDir,
		run:            orch.Run,
	}
}

// RequireAuth is a static shared-secret bearer check. No configured secret
// means the endpoint is open.
func (s *Server) RequireAuth(ctx *fiber.Ctx) error {
	if s.token == "" {
		return ctx.Next()
	}
	if ctx.Get("Authorization") != "Bearer "+s.token {
		return fiber.ErrUnauthorized
	}
	return ctx.Next()
}

func (s *Server) HandleRun(ctx *fiber.Ctx) error {
	var req github.RunnerRequest
	if err := json.Unmarshal(ctx.Body(), &req); err != nil {
		logger.Printf("Failed to unmarshal run request: %v", err)
		return fiber.ErrBadRequest
	}

	prompt := ""
	if req.Payload.Comment != nil {
		prompt = github.StripMention(req.Payload.Comment.Body)
	}
	if prompt == "" {
		return ctx.JSON(github.RunnerResponse{Reply: Greeting(req, prompt)})
	}

	res, err := s.run(ctx.Context(), sandbox.RunParams{
		Message:        req,
		Prompt:         prompt,
		LLM:            s.llm,
		PersistenceDir: s.persistenceDir,
	})
	if err != nil {
		logger.Printf("Agent run failed: %v", err)
		return fiber.ErrInternalServerError
	}
	if res == nil || res.Reply == "" {
		return ctx.JSON(github.RunnerResponse{Reply: Greeting(req, prompt)})
	}

	// The run started an agent conversation; record it so follow-up messages
	// land in the same sandbox.
	conv := s.store.Attach(uuid.NewString(), &sandboxEngine{
		run:            s.run,
		msg:            req,
		llm:            s.llm,
		persistenceDir: s.persistenceDir,
	})
	conv.Append(EventUserMessage, prompt)
	conv.Append(EventAgentReply, res.Reply)
	logger.Printf("Run for %s completed in %s mode (conversation %s)", repoName(req), res.Mode, conv.ID)

	return ctx.JSON(github.RunnerResponse{Reply: res.Reply})
}

func (s *Server) HandleSendMessage(ctx *fiber.Ctx) error {
	var req sendMessageRequest
	if err := json.Unmarshal(ctx.Body(), &req); err != nil || req.Text == "" {
		return fiber.ErrBadRequest
	}

	conv := s.store.Open(ctx.Params("id"))
	events, err := conv.Engine().SendMessage(ctx.Context(), req.Text)
	if err != nil {
		if errors.Is(err, ErrConversationPaused) {
			return fiber.ErrConflict
		}
		logger.Printf("Send message to conversation %s failed: %v", conv.ID, err)
		return fiber.ErrInternalServerError
	}

	conv.Append(EventUserMessage, req.Text)
	for ev := range events {
		conv.Append(ev.Kind, ev.Message)
	}
	return ctx.JSON(sendMessageResponse{ConversationID: conv.ID})
}

func (s *Server) HandleListEvents(ctx *fiber.Ctx) error {
	conv := s.store.Open(ctx.Params("id"))
	events, next := conv.Page(ctx.QueryInt("page_id", 0), ctx.QueryInt("limit", 0))
	return ctx.JSON(listEventsResponse{Events: events, NextPageID: next})
}

func (s *Server) HandlePause(ctx *fiber.Ctx) error {
	if err := s.store.Open(ctx.Params("id")).Engine().Pause(ctx.Context()); err != nil {
		return fiber.ErrInternalServerError
	}
	return ctx.SendString("ok")
}

func (s *Server) HandleResume(ctx *fiber.Ctx) error {
	if err := s.store.Open(ctx.Params("id")).Engine().Resume(ctx.Context()); err != nil {
		return fiber.ErrInternalServerError
	}
	return ctx.SendString("ok")
}

func (s *Server) HandleSetSecrets(ctx *fiber.Ctx) error {
	var req setSecretsRequest
	if err := json.Unmarshal(ctx.Body(), &req); err != nil {
		return fiber.ErrBadRequest
	}
	if err := s.store.Open(ctx.Params("id")).Engine().SetSecrets(ctx.Context(), req.Secrets); err != nil {
		return fiber.ErrInternalServerError
	}
	return ctx.SendString("ok")
}

func (s *Server) HandleSetConfirmationPolicy(ctx *fiber.Ctx) error {
	var req setPolicyRequest
	if err := json.Unmarshal(ctx.Body(), &req); err != nil || req.Policy == "" {
		return fiber.ErrBadRequest
	}
	if err := s.store.Open(ctx.Params("id")).Engine().SetConfirmationPolicy(ctx.Context(), req.Policy); err != nil {
		return fiber.ErrInternalServerError
	}
	return ctx.SendString("ok")
}

func HandleHealth(ctx *fiber.Ctx) error {
	return ctx.Status(fiber.StatusOK).SendString("ok")
}

// Greeting is the deterministic reply used when there is nothing to run:
// no extractable prompt, or no sandbox behind the runner.
func Greeting(req github.RunnerRequest, prompt string) string {
	actor := "there"
	if req.Payload.Sender != nil && req.Payload.Sender.Login != "" {
		actor = req.Payload.Sender.Login
	}
	request := "(none)"
	if prompt != "" {
		request = fmt.Sprintf("%q", prompt)
	}
	return fmt.Sprintf("🐾 Hey %s! smolpaws is warming up in %s.\nRequest: %s", actor, repoName(req), request)
}

func repoName(req github.RunnerRequest) string {
	if req.Payload.Repository != nil && req.Payload.Repository.FullName != "" {
		return req.Payload.Repository.FullName
	}
	return "your repo"
}
