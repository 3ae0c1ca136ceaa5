package hanna

import (
	"regexp"
	"strings"
	"testing"
)

var wireFormat = regexp.MustCompile(`^[A-Za-z0-9]{16}:([0-9a-f]{32})+$`)

func TestEncryptRoundTrip(t *testing.T) {
	t.Parallel()
	cc, err := newCredentialCipher()
	if err != nil {
		t.Fatalf("newCredentialCipher: %v", err)
	}

	plaintexts := []string{
		"",
		"a",
		"user@example.com",
		"sixteen-byte-pt!",
		"a considerably longer password with spaces and symbols !@#",
		"ünïcödé-pässwörd",
	}
	for _, p := range plaintexts {
		enc := cc.Encrypt(p)
		if !wireFormat.MatchString(enc) {
			t.Errorf("Encrypt(%q) = %q, does not match iv:hex wire format", p, enc)
		}
		got, err := cc.decrypt(enc)
		if err != nil {
			t.Fatalf("decrypt(%q): %v", enc, err)
		}
		if got != p {
			t.Errorf("round trip of %q produced %q", p, got)
		}
	}
}

func TestEncryptFreshIVPerCall(t *testing.T) {
	t.Parallel()
	cc, err := newCredentialCipher()
	if err != nil {
		t.Fatalf("newCredentialCipher: %v", err)
	}

	a := cc.Encrypt("user@example.com")
	b := cc.Encrypt("user@example.com")
	if a == b {
		t.Fatalf("two encryptions of the same plaintext are identical: %q", a)
	}
	ivA, _, _ := strings.Cut(a, ":")
	ivB, _, _ := strings.Cut(b, ":")
	if ivA == ivB {
		t.Fatalf("two encryptions reused IV %q", ivA)
	}
}

func TestEncryptPadsToBlockSize(t *testing.T) {
	t.Parallel()
	cc, err := newCredentialCipher()
	if err != nil {
		t.Fatalf("newCredentialCipher: %v", err)
	}

	// A 16-byte plaintext gains a full padding block: 32 ciphertext bytes.
	enc := cc.Encrypt("sixteen-byte-pt!")
	_, hexPart, _ := strings.Cut(enc, ":")
	if len(hexPart) != 64 {
		t.Fatalf("expected 64 hex chars for a block-aligned plaintext, got %d", len(hexPart))
	}
}
