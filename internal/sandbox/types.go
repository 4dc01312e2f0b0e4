package sandbox

import (
	"context"
	"log"
	"os"
	"sync"
)

var logger = log.New(os.Stdout, "[Sandbox]: ", log.Lshortfile|log.LstdFlags)

// Mode records which reuse strategy produced a reply, for observability.
type Mode string

const (
	// ModePerPR means the sandbox is keyed to a pull request and kept
	// running for the next message on the same PR.
	ModePerPR Mode = "per_pr"
	// ModePerJob means the sandbox was created for this message alone and
	// deleted afterwards.
	ModePerJob Mode = "per_job"
)

// Provider creates remote compute sandboxes. Implementations: the Daytona
// HTTP API, a self-hosted SSH pool, and a local provider for development.
type Provider interface {
	Create(ctx context.Context, opts CreateOptions) (Sandbox, error)
}

// CreateOptions are passed to the provider on sandbox creation.
type CreateOptions struct {
	// AutoStopMinutes is how long a reused sandbox may sit idle before the
	// provider stops it. Zero disables auto-stop where the provider
	// supports that.
	AutoStopMinutes int
}

// Sandbox is an isolated remote compute environment. Exec runs one shell
// command through the provider's `bash -lc` protocol; a non-zero exit code
// is returned as a CommandError and aborts the whole run.
type Sandbox interface {
	ID() string
	// Root is the directory all workspace paths are derived from.
	Root() string
	Exec(ctx context.Context, command string) (string, error)
	Delete(ctx context.Context) error
}

// Cache holds reusable sandboxes keyed by reuse key. Injected into the
// orchestrator so tests can substitute a deterministic fake.
type Cache interface {
	Get(key string) (Sandbox, bool)
	Put(key string, sb Sandbox)
}

// NewMemoryCache returns the default process-wide in-memory cache. No
// eviction: a reused sandbox lives until its provider-side auto-stop.
func NewMemoryCache() Cache {
	return &memoryCache{entries: map[string]Sandbox{}}
}

type memoryCache struct {
	mu      sync.Mutex
	entries map[string]Sandbox
}

func (c *memoryCache) Get(key string) (Sandbox, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	sb, ok := c.entries[key]
	return sb, ok
}

func (c *memoryCache) Put(key string, sb Sandbox) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = sb
}

// RepoContext names the repository to provision and, when the message came
// from a pull request, the head ref to check out.
type RepoContext struct {
	FullName string
	Ref      string
}

// RunResult is the orchestrator's output.
type RunResult struct {
	Reply string
	Mode  Mode
}
