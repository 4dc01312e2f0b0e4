package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseAutoStopMinutes(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"", 30},
		{"0", 0},
		{"45", 45},
		{"12.9", 12},
		{"-5", 30},
		{"NaN", 30},
		{"bogus", 30},
	}
	for _, tt := range tests {
		if got := ParseAutoStopMinutes(tt.raw); got != tt.want {
			t.Errorf("ParseAutoStopMinutes(%q) = %d, want %d", tt.raw, got, tt.want)
		}
	}
}

func TestParseHost(t *testing.T) {
	tests := []struct {
		address string
		want    EndpointInfo
		wantErr bool
	}{
		{"ci@build-1:2222", EndpointInfo{User: "ci", Host: "build-1", Port: 2222}, false},
		{"ci@build-1", EndpointInfo{User: "ci", Host: "build-1", Port: 22}, false},
		{"ci@build-1:notaport", EndpointInfo{}, true},
		{"ci@build-1:70000", EndpointInfo{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.address, func(t *testing.T) {
			got, err := parseHost(tt.address)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("parseHost(%q) = %+v, want %+v", tt.address, got, tt.want)
			}
		})
	}
}

func TestLoadHosts(t *testing.T) {
	t.Setenv("TEST_KEY_DIR", t.TempDir())
	data := `hosts:
  - name: box-1
    address: ci@build-1:2222
    key: ${TEST_KEY_DIR}/id_rsa
`
	path := filepath.Join(t.TempDir(), "hosts.yaml")
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	endpoints, err := LoadHosts(path)
	if err != nil {
		t.Fatalf("LoadHosts: %v", err)
	}
	if len(endpoints) != 1 {
		t.Fatalf("got %d endpoints, want 1", len(endpoints))
	}
	ep := endpoints[0]
	if ep.Name != "box-1" || ep.User != "ci" || ep.Host != "build-1" || ep.Port != 2222 {
		t.Errorf("unexpected endpoint: %+v", ep)
	}
	if ep.PrivateKeyPath == "${TEST_KEY_DIR}/id_rsa" {
		t.Error("private key path was not env-expanded")
	}
}

func TestLoadHostsValidation(t *testing.T) {
	data := `hosts:
  - name: box-1
    address: build-1:2222
    key: /tmp/id_rsa
`
	path := filepath.Join(t.TempDir(), "hosts.yaml")
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadHosts(path); err != ErrInvalidUser {
		t.Errorf("expected ErrInvalidUser, got %v", err)
	}
}

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("GITHUB_WEBHOOK_SECRET", "shh")
	t.Setenv("SMOLPAWS_DAYTONA_AUTO_STOP_MINUTES", "")
	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.WebhookSecret != "shh" {
		t.Errorf("WebhookSecret = %q", cfg.WebhookSecret)
	}
	if cfg.ListenAddr != ":8787" || cfg.RunnerAddr != ":8788" {
		t.Errorf("addrs = %q, %q", cfg.ListenAddr, cfg.RunnerAddr)
	}
	if cfg.AutoStopMinutes != 30 {
		t.Errorf("AutoStopMinutes = %d, want 30", cfg.AutoStopMinutes)
	}
}
