package sandbox

import (
	"context"
	"fmt"
	"sync"

	"github.com/enyst/smolpaws/internal/provider/github"
	"github.com/enyst/smolpaws/pkg/config"
)

// PRResolver resolves the pull request behind an issue number using the
// message's installation token. nil context means the comment was made on a
// plain issue.
type PRResolver func(ctx context.Context, token, repoFullName string, issueNumber int) (*github.PullRequestContext, error)

// Orchestrator obtains or reuses a sandbox for a message, provisions the
// repository workspace inside it, runs the agent driver, and extracts the
// reply. A nil orchestrator (no provider configured) is a soft no-op.
type Orchestrator struct {
	provider        Provider
	cache           Cache
	resolvePR       PRResolver
	autoStopMinutes int

	// creating guards the check-then-create sequence per reuse key: at most
	// one sandbox creation in flight per key.
	mu       sync.Mutex
	creating map[string]*sync.Mutex
}

// NewOrchestrator wires an orchestrator. provider may be nil, in which case
// Run always returns (nil, nil). cache may be nil to get the default
// in-memory cache.
func NewOrchestrator(provider Provider, cache Cache, autoStopMinutes int) *Orchestrator {
	if cache == nil {
		cache = NewMemoryCache()
	}
	return &Orchestrator{
		provider:        provider,
		cache:           cache,
		resolvePR:       resolveViaAPI,
		autoStopMinutes: autoStopMinutes,
		creating:        map[string]*sync.Mutex{},
	}
}

// RunParams is one agent invocation against a repository.
type RunParams struct {
	Message        github.RunnerRequest
	Prompt         string
	LLM            config.LLMConfig
	PersistenceDir string
}

// ReuseKey groups all messages for the same pull request so they share one
// sandbox.
func ReuseKey(pr *github.PullRequestContext) string {
	return fmt.Sprintf("pr:%s#%d", pr.HeadRepoFullName, pr.Number)
}

// Run executes the agent for one message. It returns (nil, nil) when the
// feature is unavailable: no provider configured, or the message lacks the
// repository, issue number, or GitHub token the workspace needs. That is a
// soft no-op, not an error; the caller falls back to the templated reply.
func (o *Orchestrator) Run(ctx context.Context, params RunParams) (*RunResult, error) {
	if o == nil || o.provider == nil {
		return nil, nil
	}

	payload := params.Message.Payload
	if payload.Repository == nil || payload.Repository.FullName == "" {
		return nil, nil
	}
	repoFullName := payload.Repository.FullName
	issueNumber, ok := payload.IssueNumber()
	if !ok {
		return nil, nil
	}
	token := params.Message.GithubToken
	if token == "" {
		return nil, nil
	}

	prCtx, err := o.resolvePR(ctx, token, repoFullName, issueNumber)
	if err != nil {
		return nil, err
	}

	reuseKey := ""
	mode := ModePerJob
	repo := RepoContext{FullName: repoFullName}
	if prCtx != nil {
		reuseKey = ReuseKey(prCtx)
		mode = ModePerPR
		repo = RepoContext{FullName: prCtx.HeadRepoFullName, Ref: prCtx.HeadRef}
	}

	sb, err := o.acquire(ctx, reuseKey)
	if err != nil {
		return nil, err
	}
	if reuseKey == "" {
		// One-shot sandboxes are deleted no matter how the run ends.
		defer func() {
			if delErr := sb.Delete(context.WithoutCancel(ctx)); delErr != nil {
				logger.Printf("Failed to delete one-shot sandbox %s: %v", sb.ID(), delErr)
			}
		}()
	}

	workspaceRoot, err := ensureWorkspace(ctx, sb, repo, token)
	if err != nil {
		return nil, err
	}

	reply, err := runAgent(ctx, sb, agentRunParams{
		Prompt:         params.Prompt,
		WorkspaceRoot:  workspaceRoot,
		LLM:            params.LLM,
		PersistenceDir: params.PersistenceDir,
	})
	if err != nil {
		return nil, err
	}
	return &RunResult{Reply: reply, Mode: mode}, nil
}

// acquire returns a cached sandbox for the reuse key or creates one. An
// empty key means one-shot mode: always create, never cache. The per-key
// lock makes the check-then-create sequence single-flight, so concurrent
// first use of the same pull request cannot create duplicate sandboxes.
func (o *Orchestrator) acquire(ctx context.Context, reuseKey string) (Sandbox, error) {
	opts := CreateOptions{AutoStopMinutes: o.autoStopMinutes}

	if reuseKey == "" {
		return o.provider.Create(ctx, opts)
	}

	lock := o.keyLock(reuseKey)
	lock.Lock()
	defer lock.Unlock()

	if sb, ok := o.cache.Get(reuseKey); ok {
		logger.Printf("Reusing sandbox %s for key %s", sb.ID(), reuseKey)
		return sb, nil
	}
	sb, err := o.provider.Create(ctx, opts)
	if err != nil {
		return nil, err
	}
	o.cache.Put(reuseKey, sb)
	logger.Printf("Created sandbox %s for key %s", sb.ID(), reuseKey)
	return sb, nil
}

func (o *Orchestrator) keyLock(key string) *sync.Mutex {
	o.mu.Lock()
	defer o.mu.Unlock()
	lock, ok := o.creating[key]
	if !ok {
		lock = &sync.Mutex{}
		o.creating[key] = lock
	}
	return lock
}

func resolveViaAPI(ctx context.Context, token, repoFullName string, issueNumber int) (*github.PullRequestContext, error) {
	client, err := github.NewInstallationClient(ctx, token, "")
	if err != nil {
		return nil, err
	}
	return client.ResolvePullRequestContext(ctx, repoFullName, issueNumber)
}
