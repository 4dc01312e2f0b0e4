package runner

import (
	"context"
	"sync"

	"github.com/enyst/smolpaws/internal/provider/github"
	"github.com/enyst/smolpaws/internal/sandbox"
	"github.com/enyst/smolpaws/pkg/config"
)

// Engine is the conversation backend a record delegates to. The runner
// depends only on this interface; the concrete agent runtime sits behind an
// adapter. SendMessage returns a channel of events that is closed once the
// agent is done with the message.
type Engine interface {
	SendMessage(ctx context.Context, text string) (<-chan Event, error)
	Pause(ctx context.Context) error
	Resume(ctx context.Context) error
	SetConfirmationPolicy(ctx context.Context, policy string) error
	SetSecrets(ctx context.Context, secrets map[string]string) error
}

// warmingEngine backs conversations that have no sandbox behind them.
// Every message gets the warm-up reply; control calls are accepted and do
// nothing.
type warmingEngine struct{}

const warmingReply = "🐾 smolpaws is still warming up. No sandbox is configured for this conversation."

func (warmingEngine) SendMessage(context.Context, string) (<-chan Event, error) {
	ch := make(chan Event, 1)
	ch <- Event{Kind: EventAgentReply, Message: warmingReply}
	close(ch)
	return ch, nil
}

func (warmingEngine) Pause(context.Context) error                    { return nil }
func (warmingEngine) Resume(context.Context) error                   { return nil }
func (warmingEngine) SetConfirmationPolicy(context.Context, string) error { return nil }
func (warmingEngine) SetSecrets(context.Context, map[string]string) error { return nil }

// sandboxEngine replays each message as one orchestrator run against the
// repository context captured when the conversation was started. The
// sandbox reuse key keeps follow-up messages on the same pull request in
// the same workspace.
type sandboxEngine struct {
	run            func(ctx context.Context, params sandbox.RunParams) (*sandbox.RunResult, error)
	msg            github.RunnerRequest
	llm            config.LLMConfig
	persistenceDir string

	mu      sync.Mutex
	paused  bool
	policy  string
	secrets map[string]string
}

func (e *sandboxEngine) SendMessage(ctx context.Context, text string) (<-chan Event, error) {
	e.mu.Lock()
	if e.paused {
		e.mu.Unlock()
		return nil, ErrConversationPaused
	}
	e.mu.Unlock()

	ch := make(chan Event, 1)
	go func() {
		defer close(ch)
		res, err := e.run(ctx, sandbox.RunParams{
			Message:        e.msg,
			Prompt:         text,
			LLM:            e.llm,
			PersistenceDir: e.persistenceDir,
		})
		if err != nil {
			ch <- Event{Kind: EventAgentError, Message: err.Error()}
			return
		}
		if res == nil || res.Reply == "" {
			ch <- Event{Kind: EventAgentReply, Message: warmingReply}
			return
		}
		ch <- Event{Kind: EventAgentReply, Message: res.Reply}
	}()
	return ch, nil
}

func (e *sandboxEngine) Pause(context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.paused = true
	return nil
}

func (e *sandboxEngine) Resume(context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.paused = false
	return nil
}

func (e *sandboxEngine) SetConfirmationPolicy(_ context.Context, policy string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.policy = policy
	return nil
}

func (e *sandboxEngine) SetSecrets(_ context.Context, secrets map[string]string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.secrets = secrets
	return nil
}
