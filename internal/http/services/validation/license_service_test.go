package validation

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/keywarden/internal/keygen"
	"github.com/dropDatabas3/keywarden/internal/store/core"
	memstore "github.com/dropDatabas3/keywarden/internal/store/memory"
)

func seedLicense(t *testing.T, s *memstore.Store, accountID string, max int, mut func(*core.License)) (plaintext string, lic *core.License) {
	t.Helper()
	key, digest, err := keygen.LicenseKey()
	require.NoError(t, err)
	lic = &core.License{
		ID:             "lic-" + digest[:8],
		AccountID:      accountID,
		ProductID:      "prod-1",
		KeyDigest:      digest,
		Active:         true,
		MaxActivations: max,
		CreatedAt:      time.Now(),
	}
	if mut != nil {
		mut(lic)
	}
	require.NoError(t, s.CreateLicense(context.Background(), lic))
	return key, lic
}

func TestValidateLicenseReadOnly(t *testing.T) {
	s := memstore.New()
	acc := seedAccount(t, s, "acc-1", true)
	key, lic := seedLicense(t, s, acc.ID, 3, nil)

	eng := NewEngine(Deps{Repo: s})
	res, err := eng.ValidateLicense(context.Background(), LicenseCheckIn{Key: key})
	require.NoError(t, err)
	require.Equal(t, lic.ID, res.LicenseID)
	require.Empty(t, res.ActivationID)
	require.Equal(t, 3, res.MaxActivations)
	require.Equal(t, 0, res.CurrentActivations)

	// Sin device id no se consumió cupo.
	got, err := s.GetLicenseByID(context.Background(), lic.ID, acc.ID)
	require.NoError(t, err)
	require.Zero(t, got.CurrentActivations)
}

func TestValidateLicenseActivatesNewDevice(t *testing.T) {
	s := memstore.New()
	acc := seedAccount(t, s, "acc-1", true)
	key, lic := seedLicense(t, s, acc.ID, 3, nil)

	eng := NewEngine(Deps{Repo: s})
	res, err := eng.ValidateLicense(context.Background(), LicenseCheckIn{
		Key: key, DeviceID: "dev-1", Fingerprint: "fp-1", OriginIP: "1.2.3.4",
	})
	require.NoError(t, err)
	require.NotEmpty(t, res.ActivationID)
	require.Equal(t, 1, res.CurrentActivations)

	got, err := s.GetLicenseByID(context.Background(), lic.ID, acc.ID)
	require.NoError(t, err)
	require.Equal(t, 1, got.CurrentActivations)
}

func TestValidateLicenseRepeatCheckInIsIdempotent(t *testing.T) {
	s := memstore.New()
	acc := seedAccount(t, s, "acc-1", true)
	key, lic := seedLicense(t, s, acc.ID, 3, nil)

	eng := NewEngine(Deps{Repo: s})
	ctx := context.Background()
	in := LicenseCheckIn{Key: key, DeviceID: "dev-1", Fingerprint: "fp-1"}

	first, err := eng.ValidateLicense(ctx, in)
	require.NoError(t, err)

	second, err := eng.ValidateLicense(ctx, in)
	require.NoError(t, err)
	require.Equal(t, first.ActivationID, second.ActivationID)
	require.False(t, second.FingerprintChanged)

	got, err := s.GetLicenseByID(ctx, lic.ID, acc.ID)
	require.NoError(t, err)
	require.Equal(t, 1, got.CurrentActivations, "repeat check-in must not consume slots")
}

func TestValidateLicenseCapacityReached(t *testing.T) {
	s := memstore.New()
	acc := seedAccount(t, s, "acc-1", true)
	key, _ := seedLicense(t, s, acc.ID, 1, nil)

	eng := NewEngine(Deps{Repo: s})
	ctx := context.Background()

	_, err := eng.ValidateLicense(ctx, LicenseCheckIn{Key: key, DeviceID: "dev-1"})
	require.NoError(t, err)

	_, err = eng.ValidateLicense(ctx, LicenseCheckIn{Key: key, DeviceID: "dev-2"})
	require.ErrorIs(t, err, ErrCapacityReached)
}

// Con m cupos y m+k devices compitiendo a la vez, exactamente m activan.
func TestValidateLicenseConcurrentCapacity(t *testing.T) {
	const slots, devices = 3, 10

	s := memstore.New()
	acc := seedAccount(t, s, "acc-1", true)
	key, lic := seedLicense(t, s, acc.ID, slots, nil)

	eng := NewEngine(Deps{Repo: s})
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make([]error, devices)
	for i := 0; i < devices; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = eng.ValidateLicense(ctx, LicenseCheckIn{
				Key: key, DeviceID: deviceName(i),
			})
		}(i)
	}
	wg.Wait()

	var ok, capped int
	for i, err := range results {
		switch {
		case err == nil:
			ok++
		case errorsIsCapacity(err):
			capped++
		default:
			t.Fatalf("device %d: unexpected error %v", i, err)
		}
	}
	require.Equal(t, slots, ok)
	require.Equal(t, devices-slots, capped)

	got, err := s.GetLicenseByID(ctx, lic.ID, acc.ID)
	require.NoError(t, err)
	require.Equal(t, slots, got.CurrentActivations)
}

func deviceName(i int) string { return "dev-" + string(rune('a'+i)) }

func errorsIsCapacity(err error) bool { return err == ErrCapacityReached }

// conflictingRepo simula el check-in rival del mismo device ganando la
// carrera: persiste al ganador y devuelve ErrConflict, como haría el índice
// único parcial de postgres.
type conflictingRepo struct {
	*memstore.Store
	winnerID string
	raced    bool
}

func (r *conflictingRepo) ActivateDevice(ctx context.Context, a *core.Activation) error {
	if !r.raced {
		r.raced = true
		winner := *a
		winner.ID = r.winnerID
		if err := r.Store.ActivateDevice(ctx, &winner); err != nil {
			return err
		}
		return core.ErrConflict
	}
	return r.Store.ActivateDevice(ctx, a)
}

func TestValidateLicenseRecoversFromActivationRace(t *testing.T) {
	s := memstore.New()
	acc := seedAccount(t, s, "acc-1", true)
	key, lic := seedLicense(t, s, acc.ID, 3, nil)

	repo := &conflictingRepo{Store: s, winnerID: "act-winner"}
	eng := NewEngine(Deps{Repo: repo})
	ctx := context.Background()

	// El perdedor de la carrera termina idempotente sobre la activación
	// del ganador, sin consumir un segundo cupo.
	res, err := eng.ValidateLicense(ctx, LicenseCheckIn{Key: key, DeviceID: "dev-1"})
	require.NoError(t, err)
	require.Equal(t, "act-winner", res.ActivationID)

	got, err := s.GetLicenseByID(ctx, lic.ID, acc.ID)
	require.NoError(t, err)
	require.Equal(t, 1, got.CurrentActivations)
}

func TestValidateLicenseFingerprintChangeFlagged(t *testing.T) {
	s := memstore.New()
	acc := seedAccount(t, s, "acc-1", true)
	key, _ := seedLicense(t, s, acc.ID, 3, nil)

	eng := NewEngine(Deps{Repo: s})
	ctx := context.Background()

	first, err := eng.ValidateLicense(ctx, LicenseCheckIn{Key: key, DeviceID: "dev-1", Fingerprint: "fp-old"})
	require.NoError(t, err)

	res, err := eng.ValidateLicense(ctx, LicenseCheckIn{Key: key, DeviceID: "dev-1", Fingerprint: "fp-new"})
	require.NoError(t, err)
	require.Equal(t, first.ActivationID, res.ActivationID)
	require.True(t, res.FingerprintChanged)

	// El touch persistió el fingerprint nuevo: el siguiente check-in ya no
	// marca cambio.
	res, err = eng.ValidateLicense(ctx, LicenseCheckIn{Key: key, DeviceID: "dev-1", Fingerprint: "fp-new"})
	require.NoError(t, err)
	require.False(t, res.FingerprintChanged)
}

func TestValidateLicenseFingerprintStrictRejects(t *testing.T) {
	s := memstore.New()
	acc := seedAccount(t, s, "acc-1", true)
	key, _ := seedLicense(t, s, acc.ID, 3, nil)

	eng := NewEngine(Deps{Repo: s, StrictFingerprint: true})
	ctx := context.Background()

	_, err := eng.ValidateLicense(ctx, LicenseCheckIn{Key: key, DeviceID: "dev-1", Fingerprint: "fp-old"})
	require.NoError(t, err)

	_, err = eng.ValidateLicense(ctx, LicenseCheckIn{Key: key, DeviceID: "dev-1", Fingerprint: "fp-new"})
	require.ErrorIs(t, err, ErrInvalidCredential)
}

func TestValidateLicenseExpired(t *testing.T) {
	s := memstore.New()
	acc := seedAccount(t, s, "acc-1", true)
	past := time.Now().Add(-time.Hour)
	key, _ := seedLicense(t, s, acc.ID, 3, func(l *core.License) { l.ExpiresAt = &past })

	eng := NewEngine(Deps{Repo: s})
	_, err := eng.ValidateLicense(context.Background(), LicenseCheckIn{Key: key, DeviceID: "dev-1"})
	require.ErrorIs(t, err, ErrExpired)
}

func TestValidateLicenseInactiveIsGenericInvalid(t *testing.T) {
	s := memstore.New()
	acc := seedAccount(t, s, "acc-1", true)
	key, _ := seedLicense(t, s, acc.ID, 3, func(l *core.License) { l.Active = false })

	unknown, _, err := keygen.LicenseKey()
	require.NoError(t, err)

	eng := NewEngine(Deps{Repo: s})
	ctx := context.Background()
	for _, k := range []string{key, unknown, "short"} {
		_, err := eng.ValidateLicense(ctx, LicenseCheckIn{Key: k, DeviceID: "dev-1"})
		require.ErrorIs(t, err, ErrInvalidCredential, "key %q", k)
	}
}

func TestRevokeFreesSlotAndIsSingleShot(t *testing.T) {
	s := memstore.New()
	acc := seedAccount(t, s, "acc-1", true)
	key, lic := seedLicense(t, s, acc.ID, 1, nil)

	eng := NewEngine(Deps{Repo: s})
	ctx := context.Background()

	first, err := eng.ValidateLicense(ctx, LicenseCheckIn{Key: key, DeviceID: "dev-1"})
	require.NoError(t, err)

	_, err = eng.ValidateLicense(ctx, LicenseCheckIn{Key: key, DeviceID: "dev-2"})
	require.ErrorIs(t, err, ErrCapacityReached)

	require.NoError(t, eng.RevokeActivation(ctx, first.ActivationID, acc.ID))

	// Revocar dos veces no decrementa dos veces.
	err = eng.RevokeActivation(ctx, first.ActivationID, acc.ID)
	require.ErrorIs(t, err, ErrNotFound)

	got, err := s.GetLicenseByID(ctx, lic.ID, acc.ID)
	require.NoError(t, err)
	require.Zero(t, got.CurrentActivations)

	// El cupo liberado queda disponible para otro device.
	res, err := eng.ValidateLicense(ctx, LicenseCheckIn{Key: key, DeviceID: "dev-2"})
	require.NoError(t, err)
	require.NotEmpty(t, res.ActivationID)
}

func TestRevokeForeignActivation(t *testing.T) {
	s := memstore.New()
	owner := seedAccount(t, s, "acc-1", true)
	stranger := seedAccount(t, s, "acc-2", true)
	key, _ := seedLicense(t, s, owner.ID, 1, nil)

	eng := NewEngine(Deps{Repo: s})
	ctx := context.Background()

	res, err := eng.ValidateLicense(ctx, LicenseCheckIn{Key: key, DeviceID: "dev-1"})
	require.NoError(t, err)

	err = eng.RevokeActivation(ctx, res.ActivationID, stranger.ID)
	require.ErrorIs(t, err, ErrNotFound)
}
