package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/dropDatabas3/keywarden/internal/audit"
	"github.com/dropDatabas3/keywarden/internal/cache"
	memcache "github.com/dropDatabas3/keywarden/internal/cache/memory"
	rediscache "github.com/dropDatabas3/keywarden/internal/cache/redis"
	"github.com/dropDatabas3/keywarden/internal/config"
	"github.com/dropDatabas3/keywarden/internal/email"
	"github.com/dropDatabas3/keywarden/internal/http/handlers"
	"github.com/dropDatabas3/keywarden/internal/http/router"
	authsvc "github.com/dropDatabas3/keywarden/internal/http/services/auth"
	"github.com/dropDatabas3/keywarden/internal/http/services/credentials"
	valsvc "github.com/dropDatabas3/keywarden/internal/http/services/validation"
	jwtx "github.com/dropDatabas3/keywarden/internal/jwt"
	"github.com/dropDatabas3/keywarden/internal/metrics"
	"github.com/dropDatabas3/keywarden/internal/observability/logger"
	"github.com/dropDatabas3/keywarden/internal/rate"
	"github.com/dropDatabas3/keywarden/internal/store/core"
	"github.com/dropDatabas3/keywarden/internal/store/memory"
	"github.com/dropDatabas3/keywarden/internal/store/pg"

	rdb "github.com/redis/go-redis/v9"
)

const version = "1.0.0"

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file, using system environment: %v", err)
	}

	cfgPath := flag.String("config", os.Getenv("KEYWARDEN_CONFIG"), "ruta al config YAML (opcional)")
	flag.Parse()

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger.Init(logger.Config{
		Env:         cfg.App.Env,
		Level:       cfg.App.LogLevel,
		ServiceName: "keywarden",
		Version:     version,
	})
	defer logger.Sync()
	lg := logger.Named("main")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, err := buildStore(ctx, cfg)
	if err != nil {
		lg.Fatal("store init failed", logger.Err(err))
	}
	defer repo.Close()

	if err := metrics.Register(nil); err != nil {
		lg.Fatal("metrics registration failed", logger.Err(err))
	}

	issuer := jwtx.NewIssuer(cfg.JWT.Issuer, cfg.JWT.Secret, config.Duration(cfg.JWT.AccessTTL))
	recorder := audit.NewRecorder(repo)

	var mailer email.Notifier
	if cfg.SMTP.Host != "" {
		mailer = email.NewSMTPNotifier(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.From, cfg.SMTP.Username, cfg.SMTP.Password)
	}

	guard := authsvc.NewLockoutGuard(repo, recorder, mailer,
		cfg.Auth.MaxAttempts,
		config.Duration(cfg.Auth.LockoutDuration),
		config.Duration(cfg.Auth.DelayMin),
		config.Duration(cfg.Auth.DelayMax),
	)

	engine := valsvc.NewEngine(valsvc.Deps{
		Repo:              repo,
		Audit:             recorder,
		StrictFingerprint: cfg.License.StrictFingerprint,
		NegCache:          buildCache(cfg),
		NegTTL:            config.Duration(cfg.Cache.Memory.DefaultTTL),
	})
	creds := credentials.NewService(credentials.Deps{Repo: repo, Audit: recorder})

	loginLimiter, validateLimiter := buildLimiters(cfg)

	handler := router.New(router.Deps{
		Auth: handlers.NewAuthHandler(
			authsvc.NewRegisterService(authsvc.RegisterDeps{Repo: repo, Issuer: issuer}),
			authsvc.NewLoginService(authsvc.LoginDeps{Repo: repo, Issuer: issuer, Guard: guard}),
		),
		Keys:     handlers.NewKeysHandler(creds),
		Licenses: handlers.NewLicensesHandler(creds),
		Validate: handlers.NewValidateHandler(engine, engine),
		Admin:    handlers.NewAdminHandler(repo),
		Health:   handlers.NewHealthHandler(repo, version),

		Issuer:          issuer,
		AdminKey:        cfg.Admin.APIKey,
		LoginLimiter:    loginLimiter,
		ValidateLimiter: validateLimiter,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handler,
		ReadTimeout:  config.Duration(cfg.Server.ReadTimeout),
		WriteTimeout: config.Duration(cfg.Server.WriteTimeout),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		lg.Info("listening", logger.Detail(cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		lg.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		lg.Fatal("server exited", logger.Err(err))
	}
	lg.Info("bye")
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	return config.Default(), nil
}

func buildStore(ctx context.Context, cfg *config.Config) (core.Repository, error) {
	switch cfg.Storage.Driver {
	case "memory":
		return memory.New(), nil
	case "postgres":
		return pg.New(ctx, cfg.Storage.DSN, pg.Config{
			MaxOpenConns:    cfg.Storage.Postgres.MaxOpenConns,
			MaxIdleConns:    cfg.Storage.Postgres.MaxIdleConns,
			ConnMaxLifetime: cfg.Storage.Postgres.ConnMaxLifetime,
		})
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

func buildCache(cfg *config.Config) cache.Cache {
	if cfg.Cache.Kind == "redis" {
		return rediscache.New(cfg.Cache.Redis.Addr, cfg.Cache.Redis.DB, cfg.Cache.Redis.Prefix)
	}
	return memcache.New(config.Duration(cfg.Cache.Memory.DefaultTTL))
}

func buildLimiters(cfg *config.Config) (rate.Limiter, rate.Limiter) {
	if !cfg.Rate.Enabled {
		return nil, nil
	}
	login := rate.Policy{Name: "login", Limit: int64(cfg.Rate.Login.Limit), Window: config.Duration(cfg.Rate.Login.Window)}
	validate := rate.Policy{Name: "validate", Limit: int64(cfg.Rate.Validate.Limit), Window: config.Duration(cfg.Rate.Validate.Window)}

	if cfg.Cache.Kind == "redis" {
		client := rdb.NewClient(&rdb.Options{Addr: cfg.Cache.Redis.Addr, DB: cfg.Cache.Redis.DB})
		return rate.NewRedisLimiter(client, login), rate.NewRedisLimiter(client, validate)
	}
	return rate.NewMemoryLimiter(login), rate.NewMemoryLimiter(validate)
}
