package tests

import (
	"context"
	"testing"
	"time"

	"github.com/forgo/inkwell/internal/repository"
	"github.com/forgo/inkwell/internal/service"
	"github.com/forgo/inkwell/internal/testing/fixtures"
	"github.com/forgo/inkwell/internal/testing/helpers"
	"github.com/forgo/inkwell/internal/testing/testdb"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

/*
FEATURE: Password Recovery
DOMAIN: Auth

ACCEPTANCE CRITERIA:
===================

AC-REC-001: Request Recovery
  GIVEN an active user account
  WHEN the user requests password recovery by email
  THEN a single-use recovery token is stored
  AND any earlier tokens for the user stop working

AC-REC-002: No Account Enumeration
  GIVEN an unknown or deactivated email address
  WHEN recovery is requested
  THEN the request still succeeds
  AND no token is created

AC-REC-003: Redeem Recovery Token
  GIVEN a live recovery token
  WHEN the user sets a new password through it
  THEN the password is updated
  AND the token cannot be redeemed again
  AND existing sessions are revoked

AC-REC-004: Expired Token
  GIVEN a recovery token past its expiry
  WHEN the user tries to redeem it
  THEN the request fails with an expired token error

AC-REC-005: Failed Attempts Do Not Consume
  GIVEN a live recovery token
  WHEN redemption fails validation (mismatched or weak password)
  THEN the token stays redeemable
*/

type recoveryEnv struct {
	auth     *service.AuthService
	recovery *service.RecoveryService
}

// sentMail records outbound recovery mail instead of delivering it
type sentMail struct {
	mails []service.Mail
}

func (m *sentMail) Send(_ context.Context, mail service.Mail) error {
	m.mails = append(m.mails, mail)
	return nil
}

func createRecoveryEnv(t *testing.T, tdb *testdb.TestDB, mailer service.Mailer) recoveryEnv {
	t.Helper()

	userRepo := repository.NewUserRepository(tdb.DB)
	tokenRepo := repository.NewTokenRepository(tdb.DB)
	recoveryRepo := repository.NewRecoveryTokenRepository(tdb.DB)

	jwtService := helpers.NewTestJWTService(t)
	tokenService := service.NewTokenService(service.TokenServiceConfig{
		JWTService:      jwtService,
		TokenRepo:       tokenRepo,
		RefreshDuration: 24 * time.Hour,
	})

	auth := service.NewAuthService(service.AuthServiceConfig{
		UserRepo:     userRepo,
		TokenService: tokenService,
	})

	recovery := service.NewRecoveryService(service.RecoveryServiceConfig{
		UserRepo:     userRepo,
		RecoveryRepo: recoveryRepo,
		TokenService: tokenService,
		Mailer:       mailer,
		TokenTTL:     48 * time.Hour,
		BaseURL:      "http://localhost:3000",
	})

	return recoveryEnv{auth: auth, recovery: recovery}
}

func TestRecovery_RequestInvalidatesEarlierTokens(t *testing.T) {
	// AC-REC-001: Request Recovery
	tdb := testdb.New(t)
	defer tdb.Close()

	f := fixtures.New(tdb.DB)
	user := f.CreateUser(t, func(o *fixtures.UserOpts) {
		o.Email = "recover_me@test.local"
	})

	mailer := &sentMail{}
	env := createRecoveryEnv(t, tdb, mailer)
	ctx := context.Background()

	first := f.CreateRecoveryToken(t, user)

	require.NoError(t, env.recovery.RequestRecovery(ctx, "recover_me@test.local"))
	require.Len(t, mailer.mails, 1)
	assert.Equal(t, "recover_me@test.local", mailer.mails[0].To)
	assert.Contains(t, mailer.mails[0].Body, "http://localhost:3000/recover/")

	// The earlier token was invalidated by the new request
	err := env.recovery.Recover(ctx, first.Token, "N3wPassword", "N3wPassword")
	assert.Error(t, err)
}

func TestRecovery_NoAccountEnumeration(t *testing.T) {
	// AC-REC-002: No Account Enumeration
	tdb := testdb.New(t)
	defer tdb.Close()

	f := fixtures.New(tdb.DB)
	f.CreateUser(t, func(o *fixtures.UserOpts) {
		o.Email = "disabled@test.local"
		o.IsActive = false
	})

	mailer := &sentMail{}
	env := createRecoveryEnv(t, tdb, mailer)
	ctx := context.Background()

	assert.NoError(t, env.recovery.RequestRecovery(ctx, "nobody@test.local"))
	assert.NoError(t, env.recovery.RequestRecovery(ctx, "disabled@test.local"))
	assert.Empty(t, mailer.mails, "no mail should be sent for unknown or disabled accounts")
}

func TestRecovery_RedeemUpdatesPasswordOnce(t *testing.T) {
	// AC-REC-003: Redeem Recovery Token
	tdb := testdb.New(t)
	defer tdb.Close()

	f := fixtures.New(tdb.DB)
	user := f.CreateUser(t, func(o *fixtures.UserOpts) {
		o.Username = "forgetful"
		o.Email = "forgetful@test.local"
		o.Password = "OldPassword1"
	})

	env := createRecoveryEnv(t, tdb, &sentMail{})
	ctx := context.Background()

	token := f.CreateRecoveryToken(t, user)

	require.NoError(t, env.recovery.Recover(ctx, token.Token, "N3wPassword", "N3wPassword"))

	// Old password no longer works, new one does
	_, err := env.auth.Login(ctx, service.LoginRequest{Identifier: "forgetful", Password: "OldPassword1"})
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	_, err = env.auth.Login(ctx, service.LoginRequest{Identifier: "forgetful", Password: "N3wPassword"})
	require.NoError(t, err)

	// Single use
	err = env.recovery.Recover(ctx, token.Token, "An0therPass", "An0therPass")
	assert.ErrorIs(t, err, service.ErrRecoveryTokenUsed)
}

func TestRecovery_ExpiredToken(t *testing.T) {
	// AC-REC-004: Expired Token
	tdb := testdb.New(t)
	defer tdb.Close()

	f := fixtures.New(tdb.DB)
	user := f.CreateUser(t)

	env := createRecoveryEnv(t, tdb, &sentMail{})
	ctx := context.Background()

	token := f.CreateRecoveryToken(t, user, fixtures.ExpiredRecoveryToken())

	err := env.recovery.Recover(ctx, token.Token, "N3wPassword", "N3wPassword")
	assert.ErrorIs(t, err, service.ErrRecoveryTokenExpired)
}

func TestRecovery_FailedAttemptsDoNotConsume(t *testing.T) {
	// AC-REC-005: Failed Attempts Do Not Consume
	tdb := testdb.New(t)
	defer tdb.Close()

	f := fixtures.New(tdb.DB)
	user := f.CreateUser(t)

	env := createRecoveryEnv(t, tdb, &sentMail{})
	ctx := context.Background()

	token := f.CreateRecoveryToken(t, user)

	// Mismatched confirmation
	err := env.recovery.Recover(ctx, token.Token, "N3wPassword", "Different1")
	assert.ErrorIs(t, err, service.ErrPasswordMismatch)

	// Weak password
	err = env.recovery.Recover(ctx, token.Token, "weak", "weak")
	assert.Error(t, err)

	// Still redeemable
	assert.NoError(t, env.recovery.Recover(ctx, token.Token, "N3wPassword", "N3wPassword"))
}
