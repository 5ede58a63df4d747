// Aplica las migraciones del esquema de Keywarden (accounts, api_keys,
// licenses, activations, ...) contra Postgres. Cada archivo corre en su
// propia transacción, así un fallo a mitad de camino no deja el esquema
// aplicado por la mitad.
//
// Uso: migrate [-config ruta] [-dir migrations/postgres] [up|down] [steps]
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/dropDatabas3/keywarden/internal/config"
)

func main() {
	var (
		configPath = flag.String("config", "", "ruta al config YAML (opcional, cae a env)")
		dir        = flag.String("dir", "migrations/postgres", "directorio con *_up.sql / *_down.sql")
	)
	flag.Parse()
	_ = godotenv.Load()

	action, steps := parseArgs(flag.Args())

	cfg, err := load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.Storage.DSN == "" {
		log.Fatal("no DSN: set storage.dsn in config or DATABASE_URL")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.Storage.DSN)
	if err != nil {
		log.Fatalf("pgxpool: %v", err)
	}
	defer pool.Close()

	files, err := plan(*dir, action, steps)
	if err != nil {
		log.Fatalf("plan: %v", err)
	}
	if len(files) == 0 {
		log.Printf("no %s migrations to apply", action)
		return
	}

	log.Printf("applying %d %s migration(s)", len(files), action)
	for _, f := range files {
		if err := apply(ctx, pool, f); err != nil {
			log.Fatalf("%s: %v", filepath.Base(f), err)
		}
	}
	log.Println("done")
}

func parseArgs(args []string) (action string, steps int) {
	action = "up"
	if len(args) >= 1 && args[0] != "" {
		action = strings.ToLower(args[0])
	}
	if len(args) >= 2 {
		if n, err := strconv.Atoi(args[1]); err == nil && n > 0 {
			steps = n
		}
	}
	return action, steps
}

func load(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	return config.Default(), nil
}

// plan resuelve qué archivos correr y en qué orden: ups ascendente, downs
// descendente (se deshace primero lo más nuevo). steps acota desde el
// principio del plan.
func plan(dir, action string, steps int) ([]string, error) {
	var suffix string
	switch action {
	case "up":
		suffix = "_up.sql"
	case "down":
		suffix = "_down.sql"
	default:
		return nil, fmt.Errorf("unknown action %q, use: up | down [steps]", action)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.Type().IsRegular() && strings.HasSuffix(strings.ToLower(e.Name()), suffix) {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	if action == "down" {
		for i, j := 0, len(files)-1; i < j; i, j = i+1, j-1 {
			files[i], files[j] = files[j], files[i]
		}
	}
	if steps > 0 && steps < len(files) {
		files = files[:steps]
	}
	return files, nil
}

func apply(ctx context.Context, pool *pgxpool.Pool, path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read: %w", err)
	}

	start := time.Now()
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if _, err := tx.Exec(ctx, string(b)); err != nil {
		_ = tx.Rollback(ctx)
		return fmt.Errorf("exec: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	log.Printf("ok %s (%s)", filepath.Base(path), time.Since(start).Truncate(time.Millisecond))
	return nil
}
