package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	gogithub "github.com/google/go-github/v61/github"
	"golang.org/x/oauth2"
)

// Client is a GitHub API client authenticated with an installation token.
// It lives for a single dispatch attempt, like the token itself.
type Client struct {
	gh *gogithub.Client
}

// NewInstallationClient builds a client from a short-lived installation
// token. baseURL overrides the API root for tests; pass "" in production.
func NewInstallationClient(ctx context.Context, token, baseURL string) (*Client, error) {
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	gh := gogithub.NewClient(oauth2.NewClient(ctx, src))
	gh.UserAgent = userAgent
	if baseURL != "" {
		u, err := url.Parse(strings.TrimSuffix(baseURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("parsing GitHub base URL: %w", err)
		}
		gh.BaseURL = u
	}
	return &Client{gh: gh}, nil
}

// PostIssueComment posts the reply as an issue or pull request comment.
// This is the pipeline's irreversible external side effect; it runs last,
// right before the message is acknowledged.
func (c *Client) PostIssueComment(ctx context.Context, repoFullName string, number int, body string) error {
	owner, repo, err := splitFullName(repoFullName)
	if err != nil {
		return err
	}
	_, _, err = c.gh.Issues.CreateComment(ctx, owner, repo, number, &gogithub.IssueComment{
		Body: gogithub.String(body),
	})
	if err != nil {
		return fmt.Errorf("posting comment on %s#%d: %w", repoFullName, number, err)
	}
	return nil
}

// ResolvePullRequestContext looks up the pull request behind an issue
// number. A 404 means the comment was made on a plain issue, which is not
// an error: the caller gets (nil, nil) and falls back to one-shot mode.
// Any other non-success status is fatal.
func (c *Client) ResolvePullRequestContext(ctx context.Context, repoFullName string, number int) (*PullRequestContext, error) {
	owner, repo, err := splitFullName(repoFullName)
	if err != nil {
		return nil, err
	}
	pr, res, err := c.gh.PullRequests.Get(ctx, owner, repo, number)
	if err != nil {
		if res != nil && res.StatusCode == http.StatusNotFound {
			return nil, nil
		}
		if res != nil {
			return nil, PullRequestLookupError{Status: res.StatusCode}
		}
		return nil, fmt.Errorf("fetching pull request %s#%d: %w", repoFullName, number, err)
	}

	headRef := pr.GetHead().GetRef()
	headRepo := pr.GetHead().GetRepo().GetFullName()
	if headRef == "" || headRepo == "" {
		// A PR without a resolvable head (deleted fork) runs one-shot.
		logger.Printf("Pull request %s#%d has no resolvable head, running one-shot", repoFullName, number)
		return nil, nil
	}
	prNumber := pr.GetNumber()
	if prNumber == 0 {
		prNumber = number
	}
	return &PullRequestContext{
		Number:           prNumber,
		HeadRef:          headRef,
		HeadRepoFullName: headRepo,
	}, nil
}

func splitFullName(fullName string) (owner, repo string, err error) {
	owner, repo, found := strings.Cut(fullName, "/")
	if !found || owner == "" || repo == "" {
		return "", "", errors.New("repository full name must be owner/repo, got: " + fullName)
	}
	return owner, repo, nil
}
