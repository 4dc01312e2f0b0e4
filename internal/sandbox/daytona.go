package sandbox

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/enyst/smolpaws/pkg/config"
)

const defaultDaytonaAPIURL = "https://app.daytona.io/api"

// DaytonaProvider drives the Daytona sandbox REST API. Commands run through
// the toolbox process-execute endpoint as `bash -lc '<escaped>'`.
type DaytonaProvider struct {
	apiKey string
	apiURL string
	target string

	// HTTPClient defaults to http.DefaultClient.
	HTTPClient *http.Client
}

// NewDaytonaProvider returns nil when no API key is configured, which
// disables the sandbox feature.
func NewDaytonaProvider(cfg config.DaytonaConfig) *DaytonaProvider {
	if cfg.APIKey == "" {
		return nil
	}
	apiURL := cfg.APIURL
	if apiURL == "" {
		apiURL = defaultDaytonaAPIURL
	}
	return &DaytonaProvider{
		apiKey: cfg.APIKey,
		apiURL: strings.TrimSuffix(apiURL, "/"),
		target: cfg.Target,
	}
}

func (p *DaytonaProvider) Create(ctx context.Context, opts CreateOptions) (Sandbox, error) {
	body := map[string]any{
		"language":         "typescript",
		"autoStopInterval": opts.AutoStopMinutes,
	}
	if p.target != "" {
		body["target"] = p.target
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := p.do(ctx, http.MethodPost, "/sandbox", body, &created); err != nil {
		return nil, err
	}
	if created.ID == "" {
		return nil, ProviderError{Op: "create", Status: http.StatusOK, Body: "response carried no sandbox id"}
	}
	return &daytonaSandbox{provider: p, id: created.ID}, nil
}

type daytonaSandbox struct {
	provider *DaytonaProvider
	id       string
}

func (s *daytonaSandbox) ID() string   { return s.id }
func (s *daytonaSandbox) Root() string { return "/workspace" }

func (s *daytonaSandbox) Exec(ctx context.Context, command string) (string, error) {
	req := map[string]any{"command": bashCommand(command)}
	var res struct {
		ExitCode *int   `json:"exitCode"`
		Result   string `json:"result"`
	}
	path := fmt.Sprintf("/toolbox/%s/process/execute", s.id)
	if err := s.provider.do(ctx, http.MethodPost, path, req, &res); err != nil {
		return "", err
	}
	if res.ExitCode != nil && *res.ExitCode != 0 {
		return "", CommandError{Command: command, ExitCode: *res.ExitCode, Output: res.Result}
	}
	return res.Result, nil
}

func (s *daytonaSandbox) Delete(ctx context.Context) error {
	return s.provider.do(ctx, http.MethodDelete, "/sandbox/"+s.id, nil, nil)
}

func (p *DaytonaProvider) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, p.apiURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	client := p.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	res, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("sandbox provider %s %s: %w", method, path, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return ProviderError{Op: method + " " + path, Status: res.StatusCode, Body: string(b)}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(res.Body).Decode(out)
}
