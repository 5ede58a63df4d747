package keygen

import (
	"strings"
	"testing"

	tokens "github.com/dropDatabas3/keywarden/internal/security/token"
)

func TestAPIKeyFormat(t *testing.T) {
	key, digest, err := APIKey()
	if err != nil {
		t.Fatalf("APIKey: %v", err)
	}
	if !strings.HasPrefix(key, Prefix+"_") {
		t.Fatalf("key %q missing prefix", key)
	}
	if !ValidAPIKeyFormat(key) {
		t.Fatalf("generated key %q does not pass its own format check", key)
	}
	if digest != tokens.SHA256Hex(key) {
		t.Fatal("digest does not match SHA-256 of the key")
	}
}

func TestAPIKeyUniqueness(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		key, _, err := APIKey()
		if err != nil {
			t.Fatalf("APIKey: %v", err)
		}
		if seen[key] {
			t.Fatalf("duplicate key generated: %q", key)
		}
		seen[key] = true
	}
}

func TestValidAPIKeyFormatRejects(t *testing.T) {
	bad := []string{
		"",
		"short",
		"AB_123_deadbeef_cafe",
		strings.Repeat("x", 200),
		"KW_!!!_nothex_zzz",
	}
	for _, k := range bad {
		if ValidAPIKeyFormat(k) {
			t.Errorf("format check accepted %q", k)
		}
	}
}

func TestLicenseKeyFormat(t *testing.T) {
	key, digest, err := LicenseKey()
	if err != nil {
		t.Fatalf("LicenseKey: %v", err)
	}
	parts := strings.Split(key, "-")
	if len(parts) != 4 {
		t.Fatalf("want 4 dash-separated groups, got %d in %q", len(parts), key)
	}
	for _, p := range parts {
		if len(p) != 8 {
			t.Fatalf("group %q is not 8 chars", p)
		}
		if p != strings.ToUpper(p) {
			t.Fatalf("group %q is not uppercase", p)
		}
	}
	if !ValidLicenseKeyFormat(key) {
		t.Fatalf("generated license key %q does not pass its own format check", key)
	}
	if digest != tokens.SHA256Hex(key) {
		t.Fatal("digest does not match SHA-256 of the key")
	}
}
