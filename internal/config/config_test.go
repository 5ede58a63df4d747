package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultValues(t *testing.T) {
	c := Default()

	if c.Storage.Driver != "memory" {
		t.Fatalf("driver = %q, want memory", c.Storage.Driver)
	}
	if c.Auth.MaxAttempts != 5 {
		t.Fatalf("max attempts = %d, want 5", c.Auth.MaxAttempts)
	}
	if got := Duration(c.Auth.LockoutDuration); got != 15*time.Minute {
		t.Fatalf("lockout = %v, want 15m", got)
	}
	if got := Duration(c.Auth.DelayMin); got != 500*time.Millisecond {
		t.Fatalf("delay min = %v, want 500ms", got)
	}
	if got := Duration(c.Auth.DelayMax); got != time.Second {
		t.Fatalf("delay max = %v, want 1s", got)
	}
	if c.License.StrictFingerprint {
		t.Fatal("strict fingerprint must default to off")
	}
	if c.Admin.APIKey != "" {
		t.Fatal("admin surface must default to disabled")
	}
}

func TestLoadYAMLWithEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
app:
  env: staging
auth:
  max_attempts: 3
  lockout_duration: 30m
license:
  strict_fingerprint: true
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("MAX_LOGIN_ATTEMPTS", "7")

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.App.Env != "staging" {
		t.Fatalf("env = %q", c.App.Env)
	}
	// Env gana sobre YAML.
	if c.Auth.MaxAttempts != 7 {
		t.Fatalf("max attempts = %d, want 7 (env override)", c.Auth.MaxAttempts)
	}
	if got := Duration(c.Auth.LockoutDuration); got != 30*time.Minute {
		t.Fatalf("lockout = %v", got)
	}
	if !c.License.StrictFingerprint {
		t.Fatal("strict fingerprint from yaml lost")
	}
	// Los defaults rellenan lo no declarado.
	if c.Server.Addr != ":8080" {
		t.Fatalf("addr = %q", c.Server.Addr)
	}
}

func TestLoadRejectsBadDuration(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("auth:\n  lockout_duration: nope\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("want error for unparseable duration")
	}
}

func TestLoadRequiresDSNForPostgres(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("storage:\n  driver: postgres\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("want error for postgres without dsn")
	}
}

func TestProdRequiresJWTSecret(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("app:\n  env: prod\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("want error for prod without jwt secret")
	}

	t.Setenv("JWT_SECRET", "super-secret")
	if _, err := Load(path); err != nil {
		t.Fatalf("Load with JWT_SECRET: %v", err)
	}
}
