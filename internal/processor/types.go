package processor

import (
	"context"
	"log"
	"os"

	"github.com/enyst/smolpaws/internal/provider/github"
)

var logger = log.New(os.Stdout, "[Processor]: ", log.Lshortfile|log.LstdFlags)

// FallbackReply is posted when the execution backend is not configured or
// returns nothing. The mention still deserves an answer.
const FallbackReply = "🐾 smolpaws heard you and is waking up. Runner is not configured yet."

// TokenMinter exchanges an app assertion for an installation token.
type TokenMinter interface {
	InstallationToken(ctx context.Context, installationID int64) (string, error)
}

// CommentPoster posts the reply back to the issue or pull request.
type CommentPoster interface {
	PostIssueComment(ctx context.Context, repoFullName string, number int, body string) error
}

// RunnerCaller turns a queue message into a reply string. An empty reply
// with a nil error means the backend had nothing to say.
type RunnerCaller interface {
	Call(ctx context.Context, req github.RunnerRequest) (string, error)
}

// Processor drives one message through the dispatch state machine:
// token exchange, backend call, comment posting. A returned error means the
// consumer should schedule a retry; a nil return acknowledges the message.
type Processor struct {
	tokens TokenMinter
	runner RunnerCaller

	// newPoster builds a comment poster from the freshly minted token.
	// The default uses the GitHub API; a seam for tests.
	newPoster func(ctx context.Context, token string) (CommentPoster, error)
}
