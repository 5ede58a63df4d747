package validation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/keywarden/internal/cache/memory"
	"github.com/dropDatabas3/keywarden/internal/keygen"
	"github.com/dropDatabas3/keywarden/internal/store/core"
	memstore "github.com/dropDatabas3/keywarden/internal/store/memory"
)

func seedAccount(t *testing.T, s *memstore.Store, id string, active bool) *core.Account {
	t.Helper()
	acc := &core.Account{
		ID:        id,
		Username:  id,
		Email:     id + "@example.com",
		Active:    active,
		CreatedAt: time.Now(),
	}
	require.NoError(t, s.CreateAccount(context.Background(), acc))
	return acc
}

func seedAPIKey(t *testing.T, s *memstore.Store, accountID string, mut func(*core.APIKey)) (plaintext string, k *core.APIKey) {
	t.Helper()
	key, digest, err := keygen.APIKey()
	require.NoError(t, err)
	k = &core.APIKey{
		ID:        "key-" + digest[:8],
		AccountID: accountID,
		Name:      "test key",
		KeyDigest: digest,
		Active:    true,
		CreatedAt: time.Now(),
	}
	if mut != nil {
		mut(k)
	}
	require.NoError(t, s.CreateAPIKey(context.Background(), k))
	return key, k
}

func TestValidateAPIKeyOK(t *testing.T) {
	s := memstore.New()
	acc := seedAccount(t, s, "acc-1", true)
	key, k := seedAPIKey(t, s, acc.ID, nil)

	eng := NewEngine(Deps{Repo: s})
	res, err := eng.ValidateAPIKey(context.Background(), key, "1.2.3.4")
	require.NoError(t, err)
	require.Equal(t, k.ID, res.KeyID)
	require.Equal(t, acc.ID, res.AccountID)
	require.Equal(t, int64(1), res.UsageCount)

	// El touch de uso quedó persistido.
	stored, _, err := s.GetAPIKeyByDigest(context.Background(), k.KeyDigest)
	require.NoError(t, err)
	require.Equal(t, int64(1), stored.UsageCount)
	require.NotNil(t, stored.LastUsedAt)
}

func TestValidateAPIKeyGenericInvalid(t *testing.T) {
	s := memstore.New()
	activeOwner := seedAccount(t, s, "acc-1", true)
	disabledOwner := seedAccount(t, s, "acc-2", false)

	unknown, _, err := keygen.APIKey()
	require.NoError(t, err)

	deactivated, _ := seedAPIKey(t, s, activeOwner.ID, func(k *core.APIKey) { k.Active = false })
	orphaned, _ := seedAPIKey(t, s, disabledOwner.ID, nil)

	eng := NewEngine(Deps{Repo: s})
	ctx := context.Background()

	// Malformada, inexistente, desactivada y de cuenta desactivada
	// responden todas lo mismo.
	for _, key := range []string{"nope", unknown, deactivated, orphaned} {
		_, err := eng.ValidateAPIKey(ctx, key, "1.2.3.4")
		require.ErrorIs(t, err, ErrInvalidCredential, "key %q", key)
	}
}

func TestValidateAPIKeyExpired(t *testing.T) {
	s := memstore.New()
	acc := seedAccount(t, s, "acc-1", true)

	past := time.Now().Add(-time.Hour)
	key, _ := seedAPIKey(t, s, acc.ID, func(k *core.APIKey) { k.ExpiresAt = &past })

	eng := NewEngine(Deps{Repo: s})
	_, err := eng.ValidateAPIKey(context.Background(), key, "1.2.3.4")
	require.ErrorIs(t, err, ErrExpired)
}

func TestValidateAPIKeyExpiresExactlyAtBoundary(t *testing.T) {
	s := memstore.New()
	acc := seedAccount(t, s, "acc-1", true)

	exp := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	key, _ := seedAPIKey(t, s, acc.ID, func(k *core.APIKey) { k.ExpiresAt = &exp })

	eng := NewEngine(Deps{Repo: s, Now: func() time.Time { return exp }})
	// En el instante exacto todavía vale; un nanosegundo después, no.
	_, err := eng.ValidateAPIKey(context.Background(), key, "1.2.3.4")
	require.NoError(t, err)

	eng = NewEngine(Deps{Repo: s, Now: func() time.Time { return exp.Add(time.Nanosecond) }})
	_, err = eng.ValidateAPIKey(context.Background(), key, "1.2.3.4")
	require.ErrorIs(t, err, ErrExpired)
}

func TestValidateAPIKeyIPAllowList(t *testing.T) {
	s := memstore.New()
	acc := seedAccount(t, s, "acc-1", true)
	key, k := seedAPIKey(t, s, acc.ID, func(k *core.APIKey) {
		k.IPAllowList = []string{"10.0.0.1", "10.0.0.2"}
	})

	eng := NewEngine(Deps{Repo: s})
	ctx := context.Background()

	_, err := eng.ValidateAPIKey(ctx, key, "8.8.8.8")
	require.ErrorIs(t, err, ErrOriginNotAllowed)

	// Origen vacío con allow-list configurada también se rechaza.
	_, err = eng.ValidateAPIKey(ctx, key, "")
	require.ErrorIs(t, err, ErrOriginNotAllowed)

	res, err := eng.ValidateAPIKey(ctx, key, "10.0.0.2")
	require.NoError(t, err)
	require.Equal(t, k.ID, res.KeyID)

	// El contador de uso solo avanza en validaciones exitosas.
	stored, _, err := s.GetAPIKeyByDigest(ctx, k.KeyDigest)
	require.NoError(t, err)
	require.Equal(t, int64(1), stored.UsageCount)
}

func TestValidateAPIKeyNegativeCache(t *testing.T) {
	s := memstore.New()
	c := memory.New(time.Minute)
	eng := NewEngine(Deps{Repo: s, NegCache: c, NegTTL: time.Minute})

	unknown, digest, err := keygen.APIKey()
	require.NoError(t, err)

	ctx := context.Background()
	_, err = eng.ValidateAPIKey(ctx, unknown, "1.2.3.4")
	require.ErrorIs(t, err, ErrInvalidCredential)

	// El miss quedó recordado y el segundo intento ni toca el store.
	_, hit := c.Get("k:" + digest)
	require.True(t, hit)

	_, err = eng.ValidateAPIKey(ctx, unknown, "1.2.3.4")
	require.ErrorIs(t, err, ErrInvalidCredential)
}
