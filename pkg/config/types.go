package config

import (
	"log"
	"os"
)

var logger = log.New(os.Stdout, "[Config Parser]: ", log.Lshortfile|log.LstdFlags)

// Config is the environment-driven configuration shared by the three
// binaries. Each binary reads the subset it needs; missing values for a
// feature disable that feature rather than failing startup, except where a
// handler fails closed (the webhook secret).
type Config struct {
	// Ingress
	WebhookSecret string
	ListenAddr    string

	// GitHub App identity
	AppID            string
	AppPrivateKeyPEM []byte

	// Allow list, comma separated, case insensitive
	AllowedActors        string
	AllowedOwners        string
	AllowedRepos         string
	AllowedInstallations string

	// Dispatch queue
	QueueURL         string
	QueueMaxAttempts int

	// Execution backend
	RunnerURL   string
	RunnerToken string
	RunnerAddr  string

	// Sandbox provider
	Daytona         DaytonaConfig
	AutoStopMinutes int
	SandboxHosts    []EndpointInfo
	SandboxRoot     string

	// Agent LLM settings, forwarded into the driver environment
	LLM            LLMConfig
	PersistenceDir string
}

// DaytonaConfig selects the remote HTTP sandbox provider when APIKey is set.
type DaytonaConfig struct {
	APIKey string
	APIURL string
	Target string
}

// LLMConfig is passed through to the agent driver unmodified.
type LLMConfig struct {
	Model    string
	Provider string
	BaseURL  string
	APIKey   string
}

// HostsFile is the optional YAML file describing a self-hosted SSH sandbox
// pool. Values support ${ENV} expansion.
type HostsFile struct {
	Hosts []Host `yaml:"hosts"`
}

type Host struct {
	Name           string `yaml:"name"`    // host human readable name
	Address        string `yaml:"address"` // [user@]host[:port]
	PrivateKeyPath string `yaml:"key"`     // SSH private key path
}

// EndpointInfo is a parsed, validated SSH endpoint.
type EndpointInfo struct {
	Name           string
	User           string
	Host           string
	Port           uint16
	PrivateKeyPath string
}
