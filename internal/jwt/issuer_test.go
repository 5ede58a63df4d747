package jwt

import (
	"testing"
	"time"
)

func TestIssueAndParse(t *testing.T) {
	iss := NewIssuer("keywarden-test", "secret-1", time.Hour)

	tok, exp, err := iss.IssueAccess("acc-123", map[string]any{"username": "alice"})
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if !exp.After(time.Now()) {
		t.Fatal("expiry must be in the future")
	}

	claims, err := iss.Parse(tok)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if claims["sub"] != "acc-123" {
		t.Fatalf("sub = %v", claims["sub"])
	}
	if claims["username"] != "alice" {
		t.Fatalf("username = %v", claims["username"])
	}
	if claims["iss"] != "keywarden-test" {
		t.Fatalf("iss = %v", claims["iss"])
	}
}

func TestSubject(t *testing.T) {
	iss := NewIssuer("keywarden-test", "secret-1", time.Hour)
	tok, _, err := iss.IssueAccess("acc-9", nil)
	if err != nil {
		t.Fatal(err)
	}
	sub, err := iss.Subject(tok)
	if err != nil {
		t.Fatalf("Subject: %v", err)
	}
	if sub != "acc-9" {
		t.Fatalf("sub = %q", sub)
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	a := NewIssuer("keywarden-test", "secret-a", time.Hour)
	b := NewIssuer("keywarden-test", "secret-b", time.Hour)

	tok, _, err := a.IssueAccess("acc-1", nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := b.Parse(tok); err == nil {
		t.Fatal("token signed with another secret must not parse")
	}
}

func TestParseRejectsWrongIssuer(t *testing.T) {
	a := NewIssuer("other-service", "secret-a", time.Hour)
	b := NewIssuer("keywarden-test", "secret-a", time.Hour)

	tok, _, err := a.IssueAccess("acc-1", nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := b.Parse(tok); err == nil {
		t.Fatal("token from another issuer must not parse")
	}
}

func TestParseRejectsExpired(t *testing.T) {
	iss := NewIssuer("keywarden-test", "secret-a", -time.Minute)

	tok, _, err := iss.IssueAccess("acc-1", nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := iss.Parse(tok); err == nil {
		t.Fatal("expired token must not parse")
	}
}

func TestReservedClaimsNotOverridable(t *testing.T) {
	iss := NewIssuer("keywarden-test", "secret-a", time.Hour)

	tok, _, err := iss.IssueAccess("acc-real", map[string]any{"sub": "acc-forged"})
	if err != nil {
		t.Fatal(err)
	}
	sub, err := iss.Subject(tok)
	if err != nil {
		t.Fatal(err)
	}
	if sub != "acc-real" {
		t.Fatalf("sub = %q, reserved claim was overridden", sub)
	}
}
