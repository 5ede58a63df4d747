// Seed crea una cuenta demo con una API key y una licencia para desarrollo
// local. Imprime los secretos en claro una única vez.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/dropDatabas3/keywarden/internal/config"
	"github.com/dropDatabas3/keywarden/internal/keygen"
	"github.com/dropDatabas3/keywarden/internal/security/password"
	tokens "github.com/dropDatabas3/keywarden/internal/security/token"
	"github.com/dropDatabas3/keywarden/internal/store/core"
	"github.com/dropDatabas3/keywarden/internal/store/pg"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to YAML config (optional, env fallback)")
		username   = flag.String("username", "demo", "demo account username")
		email      = flag.String("email", "demo@example.com", "demo account email")
		pass       = flag.String("password", "demo-password", "demo account password")
		product    = flag.String("product", "demo-product", "demo license product id")
		maxActs    = flag.Int("max-activations", 3, "demo license activation slots")
	)
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := load(*configPath)
	if err != nil {
		log.Fatalf("config load: %v", err)
	}
	if cfg.Storage.Driver != "postgres" || cfg.Storage.DSN == "" {
		log.Fatal("seed requires storage.driver=postgres and a DSN")
	}

	ctx := context.Background()
	repo, err := pg.New(ctx, cfg.Storage.DSN, pg.Config{})
	if err != nil {
		log.Fatalf("store: %v", err)
	}
	defer repo.Close()

	now := time.Now().UTC()

	phc, err := password.Hash(password.Default, *pass)
	if err != nil {
		log.Fatalf("hash: %v", err)
	}
	acc := &core.Account{
		ID:           tokens.NewID(),
		Username:     *username,
		Email:        *email,
		PasswordHash: phc,
		Active:       true,
		CreatedAt:    now,
	}
	if err := repo.CreateAccount(ctx, acc); err != nil {
		log.Fatalf("create account: %v", err)
	}

	keyPlain, keyDigest, err := keygen.APIKey()
	if err != nil {
		log.Fatalf("keygen: %v", err)
	}
	k := &core.APIKey{
		ID:        tokens.NewID(),
		AccountID: acc.ID,
		KeyDigest: keyDigest,
		Name:      "demo key",
		Active:    true,
		CreatedAt: now,
	}
	if err := repo.CreateAPIKey(ctx, k); err != nil {
		log.Fatalf("create api key: %v", err)
	}

	licPlain, licDigest, err := keygen.LicenseKey()
	if err != nil {
		log.Fatalf("keygen: %v", err)
	}
	l := &core.License{
		ID:             tokens.NewID(),
		AccountID:      acc.ID,
		ProductID:      *product,
		KeyDigest:      licDigest,
		Active:         true,
		MaxActivations: *maxActs,
		CreatedAt:      now,
	}
	if err := repo.CreateLicense(ctx, l); err != nil {
		log.Fatalf("create license: %v", err)
	}

	fmt.Println("Seeded demo data:")
	fmt.Printf("  account:  %s (%s / %s)\n", acc.ID, *username, *pass)
	fmt.Printf("  api key:  %s\n", keyPlain)
	fmt.Printf("  license:  %s (product %s, %d slots)\n", licPlain, *product, *maxActs)
}

func load(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	return config.Default(), nil
}
