package sandbox

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/enyst/smolpaws/pkg/config"
	smolssh "github.com/enyst/smolpaws/pkg/ssh"
	"github.com/google/uuid"
	"golang.org/x/crypto/ssh"
)

// SSHPoolProvider runs sandboxes on a self-hosted pool of SSH endpoints.
// Each sandbox gets its own workspace root on the host, so two sandboxes
// placed on the same endpoint never observe each other's files.
type SSHPoolProvider struct {
	endpoints []config.EndpointInfo
	next      atomic.Uint64
}

// NewSSHPoolProvider returns nil for an empty pool, disabling the feature.
func NewSSHPoolProvider(endpoints []config.EndpointInfo) *SSHPoolProvider {
	if len(endpoints) == 0 {
		return nil
	}
	return &SSHPoolProvider{endpoints: endpoints}
}

func (p *SSHPoolProvider) Create(ctx context.Context, opts CreateOptions) (Sandbox, error) {
	// Round-robin placement across the pool.
	ep := p.endpoints[p.next.Add(1)%uint64(len(p.endpoints))]

	connCfg := smolssh.SSHConnConfig{
		Username:       ep.User,
		PrivateKeyPath: ep.PrivateKeyPath,
	}
	cfg, err := connCfg.BuildConfig()
	if err != nil {
		return nil, fmt.Errorf("building SSH config for %s: %w", ep.Name, err)
	}
	conn, err := smolssh.NewSSHConn(ep, cfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", ep.Name, err)
	}

	id := uuid.NewString()
	sb := &sshSandbox{
		id:   id,
		root: "/tmp/smolpaws/" + id,
		conn: conn,
	}
	if _, err := sb.Exec(ctx, fmt.Sprintf("mkdir -p %q", sb.root)); err != nil {
		conn.Close()
		return nil, err
	}
	logger.Printf("Created SSH sandbox %s on endpoint %s", id, ep.Name)
	return sb, nil
}

type sshSandbox struct {
	id   string
	root string
	conn *ssh.Client
}

func (s *sshSandbox) ID() string   { return s.id }
func (s *sshSandbox) Root() string { return s.root }

func (s *sshSandbox) Exec(ctx context.Context, command string) (string, error) {
	session, err := s.conn.NewSession()
	if err != nil {
		return "", err
	}
	defer session.Close()

	type result struct {
		output []byte
		err    error
	}
	done := make(chan result, 1)
	go func() {
		out, err := session.CombinedOutput(bashCommand(command))
		done <- result{out, err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			var exitErr *ssh.ExitError
			if errors.As(res.err, &exitErr) {
				return "", CommandError{Command: command, ExitCode: exitErr.ExitStatus(), Output: string(res.output)}
			}
			return "", fmt.Errorf("running sandbox command: %w", res.err)
		}
		return string(res.output), nil
	case <-ctx.Done():
		// Signal the remote side, then abandon the session.
		_ = session.Signal(ssh.SIGKILL)
		return "", ctx.Err()
	}
}

func (s *sshSandbox) Delete(ctx context.Context) error {
	_, execErr := s.Exec(ctx, fmt.Sprintf("rm -rf %q", s.root))
	closeErr := s.conn.Close()
	if execErr != nil {
		return execErr
	}
	return closeErr
}
