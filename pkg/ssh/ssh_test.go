package ssh

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strconv"
	"testing"
)

func TestBuildConfigErrors(t *testing.T) {
	if _, err := (SSHConnConfig{Username: "u"}).BuildConfig(); !errors.Is(err, ErrEmptyPrivKeyPath) {
		t.Errorf("empty key path: err = %v, want ErrEmptyPrivKeyPath", err)
	}
	if _, err := (SSHConnConfig{Username: "u", PrivateKeyPath: "keys/does-not-exist"}).BuildConfig(); !errors.Is(err, ErrPrivKeyFileNotFound) {
		t.Errorf("missing key file: err = %v, want ErrPrivKeyFileNotFound", err)
	}
}

func TestNewSSHConn(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	pub, _, err := GenerateKeys()
	if err != nil {
		t.Fatalf("Failed to generate keys: %v", err)
	}
	defer os.RemoveAll("keys")

	ctx := context.Background()
	container, err := CreateSSHServerContainer(string(pub))
	if err != nil {
		t.Fatalf("Failed to start SSH server container: %v", err)
	}
	defer container.Terminate(ctx)
	logger.Printf("SSH server running at %s:%d", Ep.Host, Ep.Port)

	port := strconv.Itoa(int(Ep.Port))
	if err := AddHostKeyToKnownHosts(Ep.Host, port); err != nil {
		t.Fatalf("Failed to add host key to known hosts: %v", err)
	}

	sshCfg := SSHConnConfig{
		Username:       Ep.User,
		PrivateKeyPath: Ep.PrivateKeyPath,
	}
	cfg, err := sshCfg.BuildConfig()
	if err != nil {
		t.Fatalf("Failed to build SSH config: %v", err)
	}

	conn, err := NewSSHConn(Ep, cfg)
	if err != nil {
		t.Fatalf("Failed to create SSH connection: %v", err)
	}
	defer conn.Close()

	sess, err := conn.NewSession()
	if err != nil {
		t.Fatalf("Failed to create SSH session: %v", err)
	}
	defer sess.Close()

	buf := &bytes.Buffer{}
	sess.Stdout = buf
	sess.Run("echo 'Hello, World!'")

	if buf.String() != "Hello, World!\n" {
		t.Errorf("Expected 'Hello, World!' got: %s", buf.String())
	}
}
