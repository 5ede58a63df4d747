package validation

import (
	"context"
	"errors"
	"time"

	"github.com/dropDatabas3/keywarden/internal/audit"
	"github.com/dropDatabas3/keywarden/internal/cache"
	"github.com/dropDatabas3/keywarden/internal/keygen"
	"github.com/dropDatabas3/keywarden/internal/metrics"
	"github.com/dropDatabas3/keywarden/internal/observability/logger"
	tokens "github.com/dropDatabas3/keywarden/internal/security/token"
	"github.com/dropDatabas3/keywarden/internal/store/core"
)

// Deps contiene los colaboradores del motor de validación.
type Deps struct {
	Repo  core.Repository
	Audit *audit.Recorder

	// StrictFingerprint hace que un mismatch de fingerprint en un repeat
	// check-in rechace en vez de aceptar y marcar.
	StrictFingerprint bool

	// NegCache absorbe marteleo de digests desconocidos: un digest que
	// no existe hoy no va a existir en los próximos segundos, así que el
	// miss se recuerda sin tocar el store. Opcional.
	NegCache cache.Cache
	NegTTL   time.Duration

	Now func() time.Time
}

// Engine implementa KeyValidator y LicenseEngine sobre el Repository.
type Engine struct {
	deps Deps
}

// NewEngine arma el motor. Now es inyectable para tests.
func NewEngine(deps Deps) *Engine {
	if deps.Now == nil {
		deps.Now = func() time.Time { return time.Now().UTC() }
	}
	return &Engine{deps: deps}
}

// ValidateAPIKey decide si una API key presentada es válida ahora mismo.
// Clave inexistente, desactivada o con cuenta desactivada responden el
// mismo error genérico; solo expiración y allow-list de IP se distinguen.
func (e *Engine) ValidateAPIKey(ctx context.Context, key, originIP string) (*KeyResult, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("validation.apikey"),
	)

	// Pre-chequeo de formato antes de tocar el store.
	if !keygen.ValidAPIKeyFormat(key) {
		metrics.ValidationsTotal.WithLabelValues("api_key", "invalid").Inc()
		return nil, ErrInvalidCredential
	}

	digest := tokens.SHA256Hex(key)
	if e.knownMiss("k:" + digest) {
		metrics.ValidationsTotal.WithLabelValues("api_key", "invalid").Inc()
		return nil, ErrInvalidCredential
	}

	k, acc, err := e.deps.Repo.GetAPIKeyByDigest(ctx, digest)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			e.rememberMiss("k:" + digest)
			metrics.ValidationsTotal.WithLabelValues("api_key", "invalid").Inc()
			return nil, ErrInvalidCredential
		}
		log.Error("key lookup failed", logger.Err(err))
		return nil, err
	}

	log = log.With(logger.KeyID(k.ID), logger.AccountID(acc.ID))

	if !k.Active || !acc.Active {
		log.Debug("key or owner inactive")
		metrics.ValidationsTotal.WithLabelValues("api_key", "invalid").Inc()
		return nil, ErrInvalidCredential
	}

	now := e.deps.Now()
	if k.ExpiresAt != nil && now.After(*k.ExpiresAt) {
		log.Debug("key expired")
		metrics.ValidationsTotal.WithLabelValues("api_key", "expired").Inc()
		return nil, ErrExpired
	}

	if len(k.IPAllowList) > 0 && !ipAllowed(k.IPAllowList, originIP) {
		log.Warn("origin not in allow list", logger.ClientIP(originIP))
		metrics.ValidationsTotal.WithLabelValues("api_key", "origin_denied").Inc()
		if e.deps.Audit != nil {
			e.deps.Audit.Event(ctx, acc.ID, audit.ActionUnauthorizedIP, "api key "+k.ID, originIP)
		}
		return nil, ErrOriginNotAllowed
	}

	// Contador informativo, no frontera de seguridad: se pierde ante
	// concurrencia y no pasa nada.
	if err := e.deps.Repo.TouchAPIKeyUsage(ctx, k.ID, now); err != nil {
		log.Warn("usage counter not bumped", logger.Err(err))
	}

	metrics.ValidationsTotal.WithLabelValues("api_key", "valid").Inc()
	return &KeyResult{
		KeyID:      k.ID,
		AccountID:  acc.ID,
		UsageCount: k.UsageCount + 1,
	}, nil
}

func (e *Engine) knownMiss(key string) bool {
	if e.deps.NegCache == nil {
		return false
	}
	_, hit := e.deps.NegCache.Get(key)
	return hit
}

func (e *Engine) rememberMiss(key string) {
	if e.deps.NegCache == nil || e.deps.NegTTL <= 0 {
		return
	}
	e.deps.NegCache.Set(key, []byte{1}, e.deps.NegTTL)
}

func ipAllowed(allow []string, ip string) bool {
	if ip == "" {
		return false
	}
	for _, a := range allow {
		if a == ip {
			return true
		}
	}
	return false
}
