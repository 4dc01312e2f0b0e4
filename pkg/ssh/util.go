package ssh

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/enyst/smolpaws/pkg/config"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/crypto/ssh"
)

// Test helpers for exercising the SSH sandbox pool against a real server.

var Ep config.EndpointInfo = config.EndpointInfo{
	Name:           "container-node",
	User:           "linuxserver.io",
	Host:           "localhost",
	Port:           2222,
	PrivateKeyPath: "keys/id_rsa",
}

// GenerateKeys generates a new RSA key pair and saves them under keys/.
func GenerateKeys() ([]byte, []byte, error) {
	if err := os.MkdirAll("keys", 0700); err != nil {
		return nil, nil, err
	}

	logger.Println("Generating public and private keys...")

	privateKey, err := rsa.GenerateKey(rand.Reader, 3072)
	if err != nil {
		return nil, nil, err
	}
	if err = privateKey.Validate(); err != nil {
		return nil, nil, err
	}

	privateKeyPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(privateKey),
	})

	publicKey, err := ssh.NewPublicKey(&privateKey.PublicKey)
	if err != nil {
		return nil, nil, err
	}
	publicKeyBytes := ssh.MarshalAuthorizedKey(publicKey)

	os.WriteFile("keys/id_rsa.pub", publicKeyBytes, 0644)
	os.WriteFile("keys/id_rsa", privateKeyPEM, 0600)
	return publicKeyBytes, privateKeyPEM, nil
}

func CreateSSHServerContainer(pubKey string) (testcontainers.Container, error) {
	ctx := context.Background()
	req := testcontainers.ContainerRequest{
		Image:        "lscr.io/linuxserver/openssh-server:latest",
		ExposedPorts: []string{"2222/tcp"},
		Env: map[string]string{
			"PUID":            "1000",
			"PGID":            "1000",
			"PASSWORD_ACCESS": "false",
			"PUBLIC_KEY":      pubKey,
		},

		WaitingFor: wait.ForListeningPort("2222/tcp").WithStartupTimeout(30 * time.Second),
	}
	sshContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start container: %v", err)
	}
	host, err := sshContainer.Host(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get container host: %v", err)
	}
	mappedPort, err := sshContainer.MappedPort(ctx, "2222")
	if err != nil {
		return nil, fmt.Errorf("failed to get mapped port: %v", err)
	}
	Ep.Port = uint16(mappedPort.Int())
	Ep.Host = host
	return sshContainer, nil
}

func AddHostKeyToKnownHosts(host string, port string) error {
	cmd := exec.Command("ssh-keyscan", "-p", port, host)
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return err
	}
	userHomeDir, err := os.UserHomeDir()
	if err != nil {
		return err
	}
	// Append to known_hosts
	f, err := os.OpenFile(fmt.Sprintf("%s/.ssh/known_hosts", userHomeDir), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.Write(out.Bytes())
	return err
}
