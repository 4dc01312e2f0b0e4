package github

import (
	"log"
	"os"
)

var logger = log.New(os.Stdout, "[Github Provider]: ", log.Lshortfile|log.LstdFlags)

// EventKind is a webhook event name that is in scope for processing.
// Only comment events can carry a mention.
type EventKind string

const (
	EventIssueComment             EventKind = "issue_comment"
	EventPullRequestReviewComment EventKind = "pull_request_review_comment"
)

// EventPayload is the subset of the GitHub webhook payload the pipeline
// reads. It is parsed once at ingress and treated as immutable afterwards.
type EventPayload struct {
	Action       string          `json:"action,omitempty"`
	Sender       *User           `json:"sender,omitempty"`
	Comment      *Comment        `json:"comment,omitempty"`
	Repository   *Repository     `json:"repository,omitempty"`
	Issue        *Issue          `json:"issue,omitempty"`
	PullRequest  *PullRequestRef `json:"pull_request,omitempty"`
	Installation *Installation   `json:"installation,omitempty"`
}

// User represents a GitHub user.
type User struct {
	Login string `json:"login"`
	ID    int64  `json:"id,omitempty"`
}

// Comment is the comment that may carry the mention.
type Comment struct {
	Body string `json:"body"`
	ID   int64  `json:"id,omitempty"`
}

// Repository is the target repository the comment was made in.
type Repository struct {
	FullName string `json:"full_name"`
	Owner    *User  `json:"owner,omitempty"`
}

// Issue identifies the issue the comment belongs to. For comments on a
// pull request's conversation tab GitHub sends this too.
type Issue struct {
	Number int `json:"number"`
}

// PullRequestRef identifies the pull request for review comment events.
type PullRequestRef struct {
	Number int `json:"number"`
}

// Installation identifies the GitHub App installation the event was
// delivered under. Its id is what installation tokens are scoped to.
type Installation struct {
	ID int64 `json:"id"`
}

// IssueNumber returns the issue or pull request number the comment belongs
// to, and false when the payload carries neither.
func (p *EventPayload) IssueNumber() (int, bool) {
	if p.Issue != nil && p.Issue.Number > 0 {
		return p.Issue.Number, true
	}
	if p.PullRequest != nil && p.PullRequest.Number > 0 {
		return p.PullRequest.Number, true
	}
	return 0, false
}

// QueueMessage is the unit of durable, retryable work carried on the
// dispatch queue. It is fully self-contained: the queue may redeliver it to
// a different process instance, so it never references in-process state.
type QueueMessage struct {
	Event      EventKind    `json:"event"`
	Payload    EventPayload `json:"payload"`
	DeliveryID string       `json:"delivery_id,omitempty"`
}

// RunnerRequest is the body posted to the execution backend. It is the
// queue message plus the installation token the backend needs to clone the
// repository and resolve pull request context.
type RunnerRequest struct {
	QueueMessage
	GithubToken string `json:"github_token,omitempty"`
}

// RunnerResponse is the execution backend's reply envelope.
type RunnerResponse struct {
	Reply string `json:"reply,omitempty"`
}

// PullRequestContext distinguishes a comment on a pull request (which has a
// head branch to check out) from a comment on a plain issue. Resolved
// lazily from the issue number via the GitHub API.
type PullRequestContext struct {
	Number           int
	HeadRef          string
	HeadRepoFullName string
}
