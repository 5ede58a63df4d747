// Package audit records security-relevant events: IP allow-list rejections,
// fingerprint changes, lockouts. Events land in the store (forensic trail)
// and in the structured log; neither write may fail a validation call, so
// everything here is best effort.
package audit

import (
	"context"
	"time"

	"github.com/dropDatabas3/keywarden/internal/observability/logger"
	tokens "github.com/dropDatabas3/keywarden/internal/security/token"
	"github.com/dropDatabas3/keywarden/internal/store/core"
)

// Well-known actions.
const (
	ActionUnauthorizedIP     = "unauthorized_ip"
	ActionFingerprintChange  = "suspicious_fingerprint_change"
	ActionFingerprintReject  = "fingerprint_rejected"
	ActionAccountLocked      = "account_locked"
	ActionKeyDeactivated     = "key_deactivated"
	ActionLicenseDeactivated = "license_deactivated"
	ActionActivationRevoked  = "activation_revoked"
)

type Recorder struct {
	repo core.Repository
}

func NewRecorder(repo core.Repository) *Recorder {
	return &Recorder{repo: repo}
}

// Event appends a security event. accountID may be empty when the actor is
// unknown (failed probe against a nonexistent credential).
func (r *Recorder) Event(ctx context.Context, accountID, action, detail, originIP string) {
	log := logger.From(ctx).Named("audit")
	log.Warn(action,
		logger.AccountID(accountID),
		logger.ClientIP(originIP),
		logger.Detail(detail),
	)

	if r == nil || r.repo == nil {
		return
	}
	ev := &core.SecurityEvent{
		ID:        tokens.NewID(),
		AccountID: accountID,
		Action:    action,
		Detail:    detail,
		OriginIP:  originIP,
		CreatedAt: time.Now().UTC(),
	}
	if err := r.repo.AppendSecurityEvent(ctx, ev); err != nil {
		log.Error("event not persisted", logger.Err(err))
	}
}
