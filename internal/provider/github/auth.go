package github

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// DefaultAPIBaseURL is the GitHub REST API root.
	DefaultAPIBaseURL = "https://api.github.com"

	apiVersion = "2022-11-28"
	userAgent  = "smolpaws-webhook"
)

// AppAuth mints short-lived app assertions and exchanges them for
// per-installation access tokens. No token is cached across invocations:
// each dispatch mints a fresh assertion and exchanges it.
type AppAuth struct {
	AppID      string
	PrivateKey *rsa.PrivateKey

	// BaseURL overrides the GitHub API root, used by tests.
	BaseURL string
	// HTTPClient defaults to http.DefaultClient.
	HTTPClient *http.Client
}

// NewAppAuth parses the PEM-encoded private key of the GitHub App.
func NewAppAuth(appID string, privateKeyPEM []byte) (*AppAuth, error) {
	if appID == "" || len(privateKeyPEM) == 0 {
		return nil, ErrAppCredentialsMissing
	}
	key, err := jwt.ParseRSAPrivateKeyFromPEM(privateKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("parsing app private key: %w", err)
	}
	return &AppAuth{AppID: appID, PrivateKey: key}, nil
}

// AppJWT signs a RS256 assertion for the app identity. The issued-at is
// backdated 60 seconds to tolerate clock skew with GitHub's verifier, and
// the expiry stays under GitHub's 10 minute ceiling.
func (a *AppAuth) AppJWT() (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"iat": now.Add(-60 * time.Second).Unix(),
		"exp": now.Add(9 * time.Minute).Unix(),
		"iss": a.AppID,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	return token.SignedString(a.PrivateKey)
}

// InstallationToken exchanges a fresh app assertion for a short-lived
// installation-scoped access token. A non-success response is fatal for
// the current dispatch attempt; the retry coordinator owns recovery.
//
// The returned token is a bearer credential. It is never logged and never
// persisted.
func (a *AppAuth) InstallationToken(ctx context.Context, installationID int64) (string, error) {
	assertion, err := a.AppJWT()
	if err != nil {
		return "", fmt.Errorf("signing app assertion: %w", err)
	}

	url := fmt.Sprintf("%s/app/installations/%d/access_tokens", a.baseURL(), installationID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("Authorization", "Bearer "+assertion)
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-GitHub-Api-Version", apiVersion)

	res, err := a.httpClient().Do(req)
	if err != nil {
		return "", fmt.Errorf("installation token exchange: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return "", TokenExchangeError{Status: res.StatusCode, Body: string(body)}
	}

	var out struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decoding installation token response: %w", err)
	}
	if out.Token == "" {
		return "", ErrEmptyInstallationToken
	}
	return out.Token, nil
}

func (a *AppAuth) baseURL() string {
	if a.BaseURL != "" {
		return a.BaseURL
	}
	return DefaultAPIBaseURL
}

func (a *AppAuth) httpClient() *http.Client {
	if a.HTTPClient != nil {
		return a.HTTPClient
	}
	return http.DefaultClient
}
