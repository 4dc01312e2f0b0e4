package github

import (
	"errors"
	"fmt"
)

var ErrAppCredentialsMissing = errors.New("GitHub App credentials not configured")
var ErrEmptyInstallationToken = errors.New("installation token response carried no token")

// TokenExchangeError is a non-success response from the installation token
// endpoint. Fatal for the current dispatch attempt.
type TokenExchangeError struct {
	Status int
	Body   string
}

func (e TokenExchangeError) Error() string {
	return fmt.Sprintf("installation token exchange failed with status %d: %s", e.Status, e.Body)
}

// PullRequestLookupError is a non-success, non-404 response from the pull
// request endpoint while resolving PR context.
type PullRequestLookupError struct {
	Status int
}

func (e PullRequestLookupError) Error() string {
	return fmt.Sprintf("pull request lookup failed with status %d", e.Status)
}
