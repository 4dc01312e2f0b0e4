package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"
)

// Scheme is the signature scheme GitHub uses for the X-Hub-Signature-256 header.
const Scheme = "sha256"

// Sign computes the webhook signature for a raw request body, formatted the
// way GitHub sends it: "sha256=<hex digest>".
func Sign(rawBody []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(rawBody)
	return Scheme + "=" + hex.EncodeToString(mac.Sum(nil))
}

// Verify checks an inbound webhook signature header against the raw,
// unparsed request body. The body must be the exact bytes received on the
// wire; verify before parsing, never after re-serialization.
//
// Fails closed: a missing header, wrong scheme, or mismatch all yield false.
// The comparison is constant time over the full signature length.
func Verify(rawBody []byte, secret string, headerValue string) bool {
	scheme, _, found := strings.Cut(headerValue, "=")
	if !found || scheme != Scheme {
		return false
	}
	expected := Sign(rawBody, secret)
	if len(expected) != len(headerValue) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(headerValue)) == 1
}
