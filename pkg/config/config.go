package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
)

const (
	defaultListenAddr  = ":8787"
	defaultRunnerAddr  = ":8788"
	defaultAutoStopMin = 30
)

// FromEnv builds the configuration from recognized environment variables.
// Call godotenv.Load beforehand if a .env file should participate.
func FromEnv() (*Config, error) {
	cfg := &Config{
		WebhookSecret: os.Getenv("GITHUB_WEBHOOK_SECRET"),
		ListenAddr:    listenAddr("PORT", defaultListenAddr),

		AppID: os.Getenv("GITHUB_APP_ID"),

		AllowedActors:        os.Getenv("ALLOWED_ACTORS"),
		AllowedOwners:        os.Getenv("ALLOWED_OWNERS"),
		AllowedRepos:         os.Getenv("ALLOWED_REPOS"),
		AllowedInstallations: os.Getenv("ALLOWED_INSTALLATIONS"),

		QueueURL:         os.Getenv("SMOLPAWS_QUEUE_URL"),
		QueueMaxAttempts: intFromEnv("SMOLPAWS_QUEUE_MAX_ATTEMPTS", 0),

		RunnerURL:   os.Getenv("SMOLPAWS_RUNNER_URL"),
		RunnerToken: os.Getenv("SMOLPAWS_RUNNER_TOKEN"),
		RunnerAddr:  listenAddr("RUNNER_PORT", defaultRunnerAddr),

		Daytona: DaytonaConfig{
			APIKey: os.Getenv("DAYTONA_API_KEY"),
			APIURL: os.Getenv("DAYTONA_API_URL"),
			Target: os.Getenv("DAYTONA_TARGET"),
		},
		AutoStopMinutes: ParseAutoStopMinutes(os.Getenv("SMOLPAWS_DAYTONA_AUTO_STOP_MINUTES")),
		SandboxRoot:     os.Getenv("SMOLPAWS_SANDBOX_ROOT"),

		LLM: LLMConfig{
			Model:    os.Getenv("LLM_MODEL"),
			Provider: os.Getenv("LLM_PROVIDER"),
			BaseURL:  os.Getenv("LLM_BASE_URL"),
			APIKey:   os.Getenv("LLM_API_KEY"),
		},
		PersistenceDir: os.Getenv("SMOLPAWS_PERSISTENCE_DIR"),
	}

	pem, err := privateKeyFromEnv()
	if err != nil {
		return nil, err
	}
	cfg.AppPrivateKeyPEM = pem

	if hostsFile := os.Getenv("SMOLPAWS_SANDBOX_HOSTS"); hostsFile != "" {
		endpoints, err := LoadHosts(hostsFile)
		if err != nil {
			return nil, err
		}
		cfg.SandboxHosts = endpoints
	}

	return cfg, nil
}

// privateKeyFromEnv accepts the key inline (GITHUB_APP_PRIVATE_KEY) or as a
// file path (GITHUB_APP_PRIVATE_KEY_PATH). Inline wins when both are set.
func privateKeyFromEnv() ([]byte, error) {
	if pem := os.Getenv("GITHUB_APP_PRIVATE_KEY"); pem != "" {
		return []byte(pem), nil
	}
	path := os.Getenv("GITHUB_APP_PRIVATE_KEY_PATH")
	if path == "" {
		return nil, nil
	}
	b, err := os.ReadFile(os.ExpandEnv(path))
	if err != nil {
		return nil, fmt.Errorf("Couldn't read app private key file %s, make sure it exists and has read permissions.", path)
	}
	return b, nil
}

// ParseAutoStopMinutes parses the sandbox auto-stop interval. Anything
// unparsable or negative falls back to the 30 minute default; fractional
// values are truncated.
func ParseAutoStopMinutes(raw string) int {
	if raw == "" {
		return defaultAutoStopMin
	}
	parsed, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) || parsed < 0 {
		return defaultAutoStopMin
	}
	return int(math.Trunc(parsed))
}

func intFromEnv(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		logger.Printf("Ignoring unparsable %s=%q", key, raw)
		return fallback
	}
	return v
}

func listenAddr(portEnv, fallback string) string {
	if port := os.Getenv(portEnv); port != "" {
		return ":" + port
	}
	return fallback
}
