package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/keywarden/internal/audit"
	dto "github.com/dropDatabas3/keywarden/internal/http/dto/auth"
	jwtx "github.com/dropDatabas3/keywarden/internal/jwt"
	"github.com/dropDatabas3/keywarden/internal/security/password"
	tokens "github.com/dropDatabas3/keywarden/internal/security/token"
	"github.com/dropDatabas3/keywarden/internal/store/core"
	"github.com/dropDatabas3/keywarden/internal/store/memory"
)

type fakeMailer struct {
	mu       sync.Mutex
	sent     []string
	attempts []int
}

func (f *fakeMailer) LockoutNotice(to, _ string, _ time.Time, attempts int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, to)
	f.attempts = append(f.attempts, attempts)
	return nil
}

type fixture struct {
	store  *memory.Store
	guard  *LockoutGuard
	login  LoginService
	mailer *fakeMailer
	clock  *time.Time
	slept  *[]time.Duration
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memory.New()
	mailer := &fakeMailer{}
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	var slept []time.Duration

	guard := NewLockoutGuard(store, audit.NewRecorder(store), mailer,
		5, 15*time.Minute, 500*time.Millisecond, time.Second)
	guard.Sleep = func(d time.Duration) { slept = append(slept, d) }
	guard.Now = func() time.Time { return now }

	issuer := jwtx.NewIssuer("keywarden-test", "test-secret", time.Hour)
	login := NewLoginService(LoginDeps{Repo: store, Issuer: issuer, Guard: guard})

	return &fixture{store: store, guard: guard, login: login, mailer: mailer, clock: &now, slept: &slept}
}

func (f *fixture) createAccount(t *testing.T, username, pass string) *core.Account {
	t.Helper()
	phc, err := password.Hash(password.Default, pass)
	require.NoError(t, err)
	acc := &core.Account{
		ID:           tokens.NewID(),
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: phc,
		Active:       true,
		CreatedAt:    *f.clock,
	}
	require.NoError(t, f.store.CreateAccount(context.Background(), acc))
	return acc
}

func TestLoginOK(t *testing.T) {
	f := newFixture(t)
	f.createAccount(t, "alice", "s3cret")

	res, err := f.login.LoginPassword(context.Background(), dto.LoginRequest{Login: "alice", Password: "s3cret"}, "1.2.3.4", "test")
	require.NoError(t, err)
	require.NotEmpty(t, res.AccessToken)
	require.NotEmpty(t, res.AccountID)
	require.Empty(t, *f.slept, "no delay on success")
}

func TestLockoutAfterThreshold(t *testing.T) {
	f := newFixture(t)
	f.createAccount(t, "bob", "right")

	ctx := context.Background()
	for i := 0; i < 4; i++ {
		_, err := f.login.LoginPassword(ctx, dto.LoginRequest{Login: "bob", Password: "wrong"}, "1.2.3.4", "test")
		require.ErrorIs(t, err, ErrInvalidCredentials, "attempt %d", i+1)
	}

	// Quinto fallo dispara el bloqueo.
	_, err := f.login.LoginPassword(ctx, dto.LoginRequest{Login: "bob", Password: "wrong"}, "1.2.3.4", "test")
	require.ErrorIs(t, err, ErrAccountLocked)

	// El password correcto también rebota mientras dura el bloqueo.
	_, err = f.login.LoginPassword(ctx, dto.LoginRequest{Login: "bob", Password: "right"}, "1.2.3.4", "test")
	require.ErrorIs(t, err, ErrAccountLocked)

	// Cada fallo durmió dentro de la banda configurada.
	require.Len(t, *f.slept, 6)
	for _, d := range *f.slept {
		require.GreaterOrEqual(t, d, 500*time.Millisecond)
		require.LessOrEqual(t, d, time.Second)
	}

	// Todos los intentos quedaron en el log forense.
	require.Len(t, f.store.FailedAttempts(), 6)
}

func TestLockExpiresAndSuccessResets(t *testing.T) {
	f := newFixture(t)
	f.createAccount(t, "carol", "right")

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		_, _ = f.login.LoginPassword(ctx, dto.LoginRequest{Login: "carol", Password: "wrong"}, "1.2.3.4", "test")
	}
	_, err := f.login.LoginPassword(ctx, dto.LoginRequest{Login: "carol", Password: "right"}, "1.2.3.4", "test")
	require.ErrorIs(t, err, ErrAccountLocked)

	// Pasada la ventana el login correcto entra y limpia el estado.
	*f.clock = f.clock.Add(16 * time.Minute)
	res, err := f.login.LoginPassword(ctx, dto.LoginRequest{Login: "carol", Password: "right"}, "1.2.3.4", "test")
	require.NoError(t, err)
	require.NotEmpty(t, res.AccessToken)

	acc, err := f.store.GetAccountByLogin(ctx, "carol")
	require.NoError(t, err)
	require.Zero(t, acc.FailedAttempts)
	require.Nil(t, acc.LockedUntil)
	require.NotNil(t, acc.LastLogin)
}

func TestFailurePastLockWindowCountsNormally(t *testing.T) {
	f := newFixture(t)
	f.createAccount(t, "dave", "right")

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		_, _ = f.login.LoginPassword(ctx, dto.LoginRequest{Login: "dave", Password: "wrong"}, "1.2.3.4", "test")
	}

	// Vencido el bloqueo, un fallo vuelve al conteo normal (y como el
	// contador nunca se limpió, re-bloquea).
	*f.clock = f.clock.Add(16 * time.Minute)
	_, err := f.login.LoginPassword(ctx, dto.LoginRequest{Login: "dave", Password: "wrong"}, "1.2.3.4", "test")
	require.ErrorIs(t, err, ErrAccountLocked)
}

func TestUnknownAccountStillDelaysAndRecords(t *testing.T) {
	f := newFixture(t)

	_, err := f.login.LoginPassword(context.Background(), dto.LoginRequest{Login: "ghost", Password: "x"}, "9.9.9.9", "test")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	require.Len(t, *f.slept, 1, "unknown account must hit the same delay")
	attempts := f.store.FailedAttempts()
	require.Len(t, attempts, 1)
	require.Empty(t, attempts[0].AccountID)
	require.Equal(t, "ghost", attempts[0].Username)
	require.Equal(t, "9.9.9.9", attempts[0].OriginIP)
}

func TestLockoutSendsNotice(t *testing.T) {
	f := newFixture(t)
	f.createAccount(t, "erin", "right")

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		_, _ = f.login.LoginPassword(ctx, dto.LoginRequest{Login: "erin", Password: "wrong"}, "1.2.3.4", "test")
	}

	require.Equal(t, []string{"erin@example.com"}, f.mailer.sent)
	require.Equal(t, []int{5}, f.mailer.attempts)
}

func TestRecordLoginOutcome(t *testing.T) {
	f := newFixture(t)
	acc := f.createAccount(t, "frank", "right")

	ctx := context.Background()
	var locked bool
	var err error
	for i := 0; i < 5; i++ {
		locked, err = f.login.RecordLoginOutcome(ctx, acc.ID, false, "1.2.3.4")
		require.NoError(t, err)
	}
	require.True(t, locked, "fifth failure locks")

	// El éxito posterior a la ventana limpia todo.
	*f.clock = f.clock.Add(16 * time.Minute)
	locked, err = f.login.RecordLoginOutcome(ctx, acc.ID, true, "1.2.3.4")
	require.NoError(t, err)
	require.False(t, locked)

	got, err := f.store.GetAccountByID(ctx, acc.ID)
	require.NoError(t, err)
	require.Zero(t, got.FailedAttempts)
	require.Nil(t, got.LockedUntil)
}
