package sandbox

import (
	"context"
	"errors"
	"os"
	"strconv"
	"strings"
	"testing"

	"github.com/enyst/smolpaws/pkg/config"
	smolssh "github.com/enyst/smolpaws/pkg/ssh"
)

func TestNewSSHPoolProviderEmpty(t *testing.T) {
	if p := NewSSHPoolProvider(nil); p != nil {
		t.Errorf("NewSSHPoolProvider(nil) = %v, want nil (feature disabled)", p)
	}
}

func TestSSHPoolSandbox(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	pub, _, err := smolssh.GenerateKeys()
	if err != nil {
		t.Fatalf("Failed to generate keys: %v", err)
	}
	defer os.RemoveAll("keys")

	ctx := context.Background()
	container, err := smolssh.CreateSSHServerContainer(string(pub))
	if err != nil {
		t.Fatalf("Failed to start SSH server container: %v", err)
	}
	defer container.Terminate(ctx)

	port := strconv.Itoa(int(smolssh.Ep.Port))
	if err := smolssh.AddHostKeyToKnownHosts(smolssh.Ep.Host, port); err != nil {
		t.Fatalf("Failed to add host key to known hosts: %v", err)
	}

	provider := NewSSHPoolProvider([]config.EndpointInfo{smolssh.Ep})
	sb, err := provider.Create(ctx, CreateOptions{AutoStopMinutes: 30})
	if err != nil {
		t.Fatalf("Failed to create sandbox: %v", err)
	}
	if !strings.HasPrefix(sb.Root(), "/tmp/smolpaws/") {
		t.Errorf("Root = %q, want a workspace under /tmp/smolpaws/", sb.Root())
	}

	out, err := sb.Exec(ctx, "echo 'Hello, World!'")
	if err != nil {
		t.Fatalf("Exec: %v", err)
	}
	if strings.TrimSpace(out) != "Hello, World!" {
		t.Errorf("Exec output = %q, want Hello, World!", out)
	}

	// The workspace root was provisioned on creation.
	if _, err := sb.Exec(ctx, "test -d "+Quote(sb.Root())); err != nil {
		t.Errorf("workspace root missing: %v", err)
	}

	// A non-zero exit surfaces as a CommandError with the exit code.
	_, err = sb.Exec(ctx, "exit 7")
	var cmdErr CommandError
	if !errors.As(err, &cmdErr) {
		t.Fatalf("err = %v, want CommandError", err)
	}
	if cmdErr.ExitCode != 7 {
		t.Errorf("exit code = %d, want 7", cmdErr.ExitCode)
	}

	if err := sb.Delete(ctx); err != nil {
		t.Errorf("Delete: %v", err)
	}
}
