package validation

import (
	"context"
	"errors"
	"strings"

	"github.com/dropDatabas3/keywarden/internal/audit"
	"github.com/dropDatabas3/keywarden/internal/keygen"
	"github.com/dropDatabas3/keywarden/internal/metrics"
	"github.com/dropDatabas3/keywarden/internal/observability/logger"
	tokens "github.com/dropDatabas3/keywarden/internal/security/token"
	"github.com/dropDatabas3/keywarden/internal/store/core"
)

// ValidateLicense decide si una licencia es válida y, con device id,
// resuelve la activación: repeat check-in idempotente o alta atómica de un
// device nuevo contra el cupo.
func (e *Engine) ValidateLicense(ctx context.Context, in LicenseCheckIn) (*LicenseResult, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("validation.license"),
	)

	in.Key = strings.TrimSpace(in.Key)
	in.DeviceID = strings.TrimSpace(in.DeviceID)

	if !keygen.ValidLicenseKeyFormat(in.Key) {
		metrics.ValidationsTotal.WithLabelValues("license", "invalid").Inc()
		return nil, ErrInvalidCredential
	}

	digest := tokens.SHA256Hex(in.Key)
	if e.knownMiss("l:" + digest) {
		metrics.ValidationsTotal.WithLabelValues("license", "invalid").Inc()
		return nil, ErrInvalidCredential
	}

	lic, acc, err := e.deps.Repo.GetLicenseByDigest(ctx, digest)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			e.rememberMiss("l:" + digest)
			metrics.ValidationsTotal.WithLabelValues("license", "invalid").Inc()
			return nil, ErrInvalidCredential
		}
		log.Error("license lookup failed", logger.Err(err))
		return nil, err
	}

	log = log.With(logger.LicenseID(lic.ID), logger.AccountID(acc.ID))

	if !lic.Active || !acc.Active {
		log.Debug("license or owner inactive")
		metrics.ValidationsTotal.WithLabelValues("license", "invalid").Inc()
		return nil, ErrInvalidCredential
	}

	now := e.deps.Now()
	if lic.ExpiresAt != nil && now.After(*lic.ExpiresAt) {
		log.Debug("license expired")
		metrics.ValidationsTotal.WithLabelValues("license", "expired").Inc()
		return nil, ErrExpired
	}

	res := &LicenseResult{
		LicenseID:          lic.ID,
		AccountID:          acc.ID,
		ExpiresAt:          lic.ExpiresAt,
		MaxActivations:     lic.MaxActivations,
		CurrentActivations: lic.CurrentActivations,
	}

	// Sin device id la validación es de solo lectura: nunca consume cupo.
	if in.DeviceID == "" {
		metrics.ValidationsTotal.WithLabelValues("license", "valid").Inc()
		return res, nil
	}

	act, err := e.deps.Repo.GetActivation(ctx, lic.ID, in.DeviceID)
	switch {
	case err == nil:
		// Repeat check-in: misma identidad de activación, el cupo no cambia.
		changed := in.Fingerprint != "" && act.Fingerprint != "" && in.Fingerprint != act.Fingerprint
		if changed {
			if e.deps.StrictFingerprint {
				log.Warn("fingerprint mismatch rejected", logger.DeviceID(in.DeviceID))
				metrics.ValidationsTotal.WithLabelValues("license", "invalid").Inc()
				if e.deps.Audit != nil {
					e.deps.Audit.Event(ctx, acc.ID, audit.ActionFingerprintReject, "activation "+act.ID, in.OriginIP)
				}
				return nil, ErrInvalidCredential
			}
			// Posible cambio de hardware o credencial compartida: se
			// acepta pero queda marcado.
			log.Warn("fingerprint changed", logger.ActivationID(act.ID))
			if e.deps.Audit != nil {
				e.deps.Audit.Event(ctx, acc.ID, audit.ActionFingerprintChange, "activation "+act.ID, in.OriginIP)
			}
			res.FingerprintChanged = true
		}
		if terr := e.deps.Repo.TouchActivation(ctx, act.ID, now, in.Fingerprint); terr != nil {
			log.Warn("activation not touched", logger.Err(terr))
		}
		res.ActivationID = act.ID
		metrics.ValidationsTotal.WithLabelValues("license", "valid").Inc()
		return res, nil

	case errors.Is(err, core.ErrNotFound):
		// Device nuevo: el chequeo de cupo y la mutación son una sola
		// unidad atómica dentro del store.
		na := &core.Activation{
			ID:          tokens.NewID(),
			LicenseID:   lic.ID,
			DeviceID:    in.DeviceID,
			Fingerprint: in.Fingerprint,
			OriginIP:    in.OriginIP,
			Active:      true,
			LastCheckAt: now,
			CreatedAt:   now,
		}
		aerr := e.deps.Repo.ActivateDevice(ctx, na)
		switch {
		case aerr == nil:
			log.Info("device activated", logger.ActivationID(na.ID), logger.DeviceID(in.DeviceID))
			metrics.ActivationsTotal.Inc()
			metrics.ValidationsTotal.WithLabelValues("license", "valid").Inc()
			res.ActivationID = na.ID
			res.CurrentActivations = lic.CurrentActivations + 1
			return res, nil
		case errors.Is(aerr, core.ErrCapacity):
			log.Debug("capacity reached", logger.DeviceID(in.DeviceID))
			metrics.ValidationsTotal.WithLabelValues("license", "capacity").Inc()
			return nil, ErrCapacityReached
		case errors.Is(aerr, core.ErrConflict):
			// Otro check-in del mismo device ganó la carrera: idempotente.
			if prev, gerr := e.deps.Repo.GetActivation(ctx, lic.ID, in.DeviceID); gerr == nil {
				res.ActivationID = prev.ID
				metrics.ValidationsTotal.WithLabelValues("license", "valid").Inc()
				return res, nil
			}
			return nil, aerr
		default:
			log.Error("activation failed", logger.Err(aerr))
			return nil, aerr
		}

	default:
		log.Error("activation lookup failed", logger.Err(err))
		return nil, err
	}
}

// RevokeActivation libera el cupo de una activación del dueño indicado.
// La baja condicional del store garantiza un único decremento aunque el
// revoke se repita.
func (e *Engine) RevokeActivation(ctx context.Context, activationID, accountID string) error {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("validation.revoke"),
		logger.ActivationID(activationID),
	)

	err := e.deps.Repo.RevokeActivation(ctx, activationID, accountID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			// Inexistente, ajena o ya revocada: indistinguibles a propósito.
			return ErrNotFound
		}
		log.Error("revoke failed", logger.Err(err))
		return err
	}

	log.Info("activation revoked", logger.AccountID(accountID))
	if e.deps.Audit != nil {
		e.deps.Audit.Event(ctx, accountID, audit.ActionActivationRevoked, "activation "+activationID, "")
	}
	return nil
}
