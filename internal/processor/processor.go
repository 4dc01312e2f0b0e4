package processor

import (
	"context"
	"encoding/json"

	"github.com/enyst/smolpaws/internal/provider/github"
)

func New(tokens TokenMinter, runner RunnerCaller) *Processor {
	return &Processor{
		tokens: tokens,
		runner: runner,
		newPoster: func(ctx context.Context, token string) (CommentPoster, error) {
			return github.NewInstallationClient(ctx, token, "")
		},
	}
}

// Handle processes one delivery. Malformed messages are logged and dropped
// (nil return, so the consumer acks): a message missing its installation or
// repository cannot be fixed by redelivering it. Every downstream failure is
// returned so the consumer schedules a retry.
func (p *Processor) Handle(ctx context.Context, body []byte, attempt int) error {
	var msg github.QueueMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		logger.Printf("Dropping malformed message: %v", err)
		return nil
	}

	if msg.Payload.Installation == nil {
		logger.Printf("Dropping message without installation id")
		return nil
	}
	if msg.Payload.Repository == nil || msg.Payload.Repository.FullName == "" {
		logger.Printf("Dropping message without repository")
		return nil
	}
	number, ok := msg.Payload.IssueNumber()
	if !ok {
		logger.Printf("Dropping message without issue number")
		return nil
	}
	repo := msg.Payload.Repository.FullName
	logger.Printf("Processing %s event for %s#%d (attempt %d)", msg.Event, repo, number, attempt)

	token, err := p.tokens.InstallationToken(ctx, msg.Payload.Installation.ID)
	if err != nil {
		return err
	}

	reply, err := p.runner.Call(ctx, github.RunnerRequest{QueueMessage: msg, GithubToken: token})
	if err != nil {
		return err
	}
	if reply == "" {
		reply = FallbackReply
	}

	poster, err := p.newPoster(ctx, token)
	if err != nil {
		return err
	}
	if err := poster.PostIssueComment(ctx, repo, number, reply); err != nil {
		return err
	}
	logger.Printf("Posted reply on %s#%d", repo, number)
	return nil
}
