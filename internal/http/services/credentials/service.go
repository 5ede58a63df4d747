// Package credentials implementa la gestión (owner-scoped) de API keys y
// licencias: alta, listado, estadísticas y desactivación one-way.
package credentials

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dropDatabas3/keywarden/internal/audit"
	dtokeys "github.com/dropDatabas3/keywarden/internal/http/dto/keys"
	dtolic "github.com/dropDatabas3/keywarden/internal/http/dto/licenses"
	"github.com/dropDatabas3/keywarden/internal/keygen"
	"github.com/dropDatabas3/keywarden/internal/observability/logger"
	tokens "github.com/dropDatabas3/keywarden/internal/security/token"
	"github.com/dropDatabas3/keywarden/internal/store/core"
)

// Errores de gestión
var (
	ErrMissingFields  = errors.New("missing required fields")
	ErrInvalidExpiry  = errors.New("expiry must be in the future")
	ErrInvalidMaxActs = errors.New("max_activations must be positive")
	ErrNotFound       = errors.New("not found")
)

// Deps contiene los colaboradores del servicio.
type Deps struct {
	Repo  core.Repository
	Audit *audit.Recorder
	Now   func() time.Time
}

type Service struct {
	deps Deps
}

func NewService(deps Deps) *Service {
	if deps.Now == nil {
		deps.Now = func() time.Time { return time.Now().UTC() }
	}
	return &Service{deps: deps}
}

// CreateAPIKey genera la clave, guarda solo el digest y devuelve el
// plaintext una única vez.
func (s *Service) CreateAPIKey(ctx context.Context, accountID string, in dtokeys.CreateRequest) (*dtokeys.CreateResponse, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("credentials.keys"),
		logger.AccountID(accountID),
	)

	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, ErrMissingFields
	}
	now := s.deps.Now()
	if in.ExpiresAt != nil && !in.ExpiresAt.After(now) {
		return nil, ErrInvalidExpiry
	}

	plain, digest, err := keygen.APIKey()
	if err != nil {
		return nil, err
	}

	k := &core.APIKey{
		ID:          tokens.NewID(),
		AccountID:   accountID,
		KeyDigest:   digest,
		Name:        in.Name,
		Description: strings.TrimSpace(in.Description),
		Active:      true,
		ExpiresAt:   in.ExpiresAt,
		IPAllowList: normalizeIPs(in.IPAllowList),
		CreatedAt:   now,
	}
	if err := s.deps.Repo.CreateAPIKey(ctx, k); err != nil {
		return nil, err
	}

	log.Info("api key created", logger.KeyID(k.ID))
	return &dtokeys.CreateResponse{
		ID:        k.ID,
		Key:       plain,
		Name:      k.Name,
		ExpiresAt: k.ExpiresAt,
		CreatedAt: k.CreatedAt,
	}, nil
}

// ListAPIKeys lista las claves del dueño, nunca los digests.
func (s *Service) ListAPIKeys(ctx context.Context, accountID string) (*dtokeys.ListResponse, error) {
	ks, err := s.deps.Repo.ListAPIKeys(ctx, accountID)
	if err != nil {
		return nil, err
	}
	out := make([]dtokeys.Summary, 0, len(ks))
	for i := range ks {
		out = append(out, keySummary(&ks[i]))
	}
	return &dtokeys.ListResponse{Keys: out}, nil
}

// GetAPIKey devuelve el detalle de una clave del dueño.
func (s *Service) GetAPIKey(ctx context.Context, id, accountID string) (*dtokeys.Summary, error) {
	k, err := s.deps.Repo.GetAPIKeyByID(ctx, id, accountID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	sum := keySummary(k)
	return &sum, nil
}

// DeactivateAPIKey es one-way: no hay reactivación por esta vía.
func (s *Service) DeactivateAPIKey(ctx context.Context, id, accountID string) error {
	if err := s.deps.Repo.DeactivateAPIKey(ctx, id, accountID); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	if s.deps.Audit != nil {
		s.deps.Audit.Event(ctx, accountID, audit.ActionKeyDeactivated, "api key "+id, "")
	}
	return nil
}

// CreateLicense genera la clave de licencia con su cupo de activaciones.
func (s *Service) CreateLicense(ctx context.Context, accountID string, in dtolic.CreateRequest) (*dtolic.CreateResponse, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("credentials.licenses"),
		logger.AccountID(accountID),
	)

	in.ProductID = strings.TrimSpace(in.ProductID)
	if in.ProductID == "" {
		return nil, ErrMissingFields
	}
	if in.MaxActivations <= 0 {
		return nil, ErrInvalidMaxActs
	}
	now := s.deps.Now()
	if in.ExpiresAt != nil && !in.ExpiresAt.After(now) {
		return nil, ErrInvalidExpiry
	}

	plain, digest, err := keygen.LicenseKey()
	if err != nil {
		return nil, err
	}

	l := &core.License{
		ID:             tokens.NewID(),
		AccountID:      accountID,
		ProductID:      in.ProductID,
		KeyDigest:      digest,
		Active:         true,
		ExpiresAt:      in.ExpiresAt,
		MaxActivations: in.MaxActivations,
		CreatedAt:      now,
	}
	if err := s.deps.Repo.CreateLicense(ctx, l); err != nil {
		return nil, err
	}

	log.Info("license created", logger.LicenseID(l.ID), logger.ProductID(l.ProductID))
	return &dtolic.CreateResponse{
		ID:             l.ID,
		Key:            plain,
		ProductID:      l.ProductID,
		MaxActivations: l.MaxActivations,
		ExpiresAt:      l.ExpiresAt,
		CreatedAt:      l.CreatedAt,
	}, nil
}

// ListLicenses lista las licencias del dueño.
func (s *Service) ListLicenses(ctx context.Context, accountID string) (*dtolic.ListResponse, error) {
	ls, err := s.deps.Repo.ListLicenses(ctx, accountID)
	if err != nil {
		return nil, err
	}
	out := make([]dtolic.Summary, 0, len(ls))
	for i := range ls {
		out = append(out, licenseSummary(&ls[i]))
	}
	return &dtolic.ListResponse{Licenses: out}, nil
}

// GetLicense devuelve el detalle de una licencia del dueño.
func (s *Service) GetLicense(ctx context.Context, id, accountID string) (*dtolic.Summary, error) {
	l, err := s.deps.Repo.GetLicenseByID(ctx, id, accountID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	sum := licenseSummary(l)
	return &sum, nil
}

// ListActivations lista los devices de una licencia del dueño.
func (s *Service) ListActivations(ctx context.Context, licenseID, accountID string) (*dtolic.ActivationsResponse, error) {
	// Verificar pertenencia antes de exponer activaciones.
	if _, err := s.deps.Repo.GetLicenseByID(ctx, licenseID, accountID); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	acts, err := s.deps.Repo.ListActivations(ctx, licenseID)
	if err != nil {
		return nil, err
	}
	out := make([]dtolic.ActivationSummary, 0, len(acts))
	for _, a := range acts {
		out = append(out, dtolic.ActivationSummary{
			ID:          a.ID,
			DeviceID:    a.DeviceID,
			Fingerprint: a.Fingerprint,
			OriginIP:    a.OriginIP,
			Active:      a.Active,
			LastCheckAt: a.LastCheckAt,
			CreatedAt:   a.CreatedAt,
		})
	}
	return &dtolic.ActivationsResponse{LicenseID: licenseID, Activations: out}, nil
}

// DeactivateLicense es one-way, igual que con las API keys.
func (s *Service) DeactivateLicense(ctx context.Context, id, accountID string) error {
	if err := s.deps.Repo.DeactivateLicense(ctx, id, accountID); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	if s.deps.Audit != nil {
		s.deps.Audit.Event(ctx, accountID, audit.ActionLicenseDeactivated, "license "+id, "")
	}
	return nil
}

func keySummary(k *core.APIKey) dtokeys.Summary {
	return dtokeys.Summary{
		ID:          k.ID,
		Name:        k.Name,
		Description: k.Description,
		Active:      k.Active,
		ExpiresAt:   k.ExpiresAt,
		IPAllowList: k.IPAllowList,
		UsageCount:  k.UsageCount,
		LastUsedAt:  k.LastUsedAt,
		CreatedAt:   k.CreatedAt,
	}
}

func licenseSummary(l *core.License) dtolic.Summary {
	return dtolic.Summary{
		ID:                 l.ID,
		ProductID:          l.ProductID,
		Active:             l.Active,
		ExpiresAt:          l.ExpiresAt,
		MaxActivations:     l.MaxActivations,
		CurrentActivations: l.CurrentActivations,
		CreatedAt:          l.CreatedAt,
	}
}

func normalizeIPs(in []string) []string {
	out := make([]string, 0, len(in))
	for _, ip := range in {
		if s := strings.TrimSpace(ip); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
