package signature

import (
	"strings"
	"testing"
)

func TestVerifyRoundTrip(t *testing.T) {
	bodies := []string{"", "{}", `{"action":"created"}`, "body with unicode ☂"}
	secrets := []string{"s", "a-much-longer-webhook-secret-value"}

	for _, body := range bodies {
		for _, secret := range secrets {
			header := Sign([]byte(body), secret)
			if !Verify([]byte(body), secret, header) {
				t.Errorf("Verify failed for body %q secret %q", body, secret)
			}
		}
	}
}

func TestVerifyRejectsTamperedBody(t *testing.T) {
	body := []byte(`{"action":"created","comment":{"body":"@smolpaws hi"}}`)
	secret := "hunter2"
	header := Sign(body, secret)

	for i := range body {
		flipped := make([]byte, len(body))
		copy(flipped, body)
		flipped[i] ^= 0x01
		if Verify(flipped, secret, header) {
			t.Fatalf("Verify accepted body with bit flipped at index %d", i)
		}
	}
}

func TestVerifyRejectsTamperedSignature(t *testing.T) {
	body := []byte("payload")
	secret := "hunter2"
	header := Sign(body, secret)

	// Flip each hex character of the digest.
	digest := strings.TrimPrefix(header, Scheme+"=")
	for i := range digest {
		altered := []byte(digest)
		if altered[i] == '0' {
			altered[i] = '1'
		} else {
			altered[i] = '0'
		}
		if Verify(body, secret, Scheme+"="+string(altered)) {
			t.Fatalf("Verify accepted signature altered at index %d", i)
		}
	}
}

func TestVerifyFailsClosed(t *testing.T) {
	body := []byte("payload")
	secret := "hunter2"
	valid := Sign(body, secret)

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "sha1=" + strings.TrimPrefix(valid, "sha256=")},
		{"no separator", strings.ReplaceAll(valid, "=", "")},
		{"truncated digest", valid[:len(valid)-2]},
		{"wrong secret", Sign(body, "other-secret")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if Verify(body, secret, tt.header) {
				t.Errorf("Verify accepted %q", tt.header)
			}
		})
	}
}
