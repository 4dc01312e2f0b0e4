package processor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/enyst/smolpaws/internal/provider/github"
)

// RunnerClient calls the execution backend over HTTP. An unset URL means no
// backend is deployed; Call then returns an empty reply so the processor
// falls back to the warm-up message.
type RunnerClient struct {
	URL   string
	Token string

	HTTPClient *http.Client
}

func NewRunnerClient(url, token string) *RunnerClient {
	return &RunnerClient{URL: url, Token: token, HTTPClient: http.DefaultClient}
}

func (c *RunnerClient) Call(ctx context.Context, req github.RunnerRequest) (string, error) {
	if c == nil || c.URL == "" {
		return "", nil
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshaling runner request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.Token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.Token)
	}

	res, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("calling runner: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return "", RunnerCallError{Status: res.StatusCode, Body: string(b)}
	}

	var parsed github.RunnerResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decoding runner response: %w", err)
	}
	return parsed.Reply, nil
}
