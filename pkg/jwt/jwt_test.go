package jwt

import (
	"crypto/rand"
	"crypto/rsa"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func newTestSvc(t *testing.T) *Service {
	t.Helper()
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("failed to generate RSA key: %v", err)
	}
	return NewTestService(privateKey, "test-issuer", 15*time.Minute)
}

// ============================================================================
// Claims.Valid() Tests
// ============================================================================

func TestClaims_Valid_NotExpired(t *testing.T) {
	t.Parallel()
	claims := Claims{
		UserID:    "user:123",
		ExpiresAt: time.Now().Add(1 * time.Hour).Unix(),
	}

	if err := claims.Valid(); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
}

func TestClaims_Valid_Expired(t *testing.T) {
	t.Parallel()
	claims := Claims{
		UserID:    "user:123",
		ExpiresAt: time.Now().Add(-1 * time.Hour).Unix(),
	}

	if err := claims.Valid(); err != ErrTokenExpired {
		t.Errorf("expected ErrTokenExpired, got %v", err)
	}
}

func TestClaims_Valid_NotYetValid(t *testing.T) {
	t.Parallel()
	claims := Claims{
		UserID:    "user:123",
		NotBefore: time.Now().Add(1 * time.Hour).Unix(),
	}

	if err := claims.Valid(); err != ErrTokenNotYetValid {
		t.Errorf("expected ErrTokenNotYetValid, got %v", err)
	}
}

// ============================================================================
// Sign / Validate Tests
// ============================================================================

func TestSignAndValidate_RoundTrip(t *testing.T) {
	t.Parallel()
	svc := newTestSvc(t)

	original := Claims{
		Subject:  "user:abc",
		UserID:   "user:abc",
		Email:    "author@inkwell.test",
		Username: "author",
		Role:     "user",
		Groups:   []string{"Authors", "Editors"},
	}

	token, err := svc.Sign(original)
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}
	if len(strings.Split(token, ".")) != 3 {
		t.Fatalf("expected three-part JWT, got %q", token)
	}

	validated, err := svc.Validate(token)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	if validated.UserID != original.UserID {
		t.Errorf("UserID: expected %q, got %q", original.UserID, validated.UserID)
	}
	if validated.Email != original.Email {
		t.Errorf("Email: expected %q, got %q", original.Email, validated.Email)
	}
	if validated.Role != original.Role {
		t.Errorf("Role: expected %q, got %q", original.Role, validated.Role)
	}
	if len(validated.Groups) != 2 || validated.Groups[0] != "Authors" || validated.Groups[1] != "Editors" {
		t.Errorf("Groups: expected %v, got %v", original.Groups, validated.Groups)
	}
	if validated.Issuer != "test-issuer" {
		t.Errorf("Issuer: expected 'test-issuer', got %q", validated.Issuer)
	}
}

func TestSign_NilPrivateKey_ReturnsErrInvalidKey(t *testing.T) {
	t.Parallel()
	svc := &Service{}

	if _, err := svc.Sign(Claims{UserID: "user:123"}); err != ErrInvalidKey {
		t.Errorf("expected ErrInvalidKey, got %v", err)
	}
}

func TestSign_SetsDefaultExpiration(t *testing.T) {
	t.Parallel()
	svc := newTestSvc(t)

	token, err := svc.Sign(Claims{UserID: "user:123"})
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}

	claims, err := svc.Validate(token)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}

	expected := time.Now().Add(15 * time.Minute).Unix()
	if diff := claims.ExpiresAt - expected; diff < -5 || diff > 5 {
		t.Errorf("expected expiration near %d, got %d", expected, claims.ExpiresAt)
	}
}

func TestValidate_MalformedToken(t *testing.T) {
	t.Parallel()
	svc := newTestSvc(t)

	for _, token := range []string{"", "one", "one.two", "a.b.c.d"} {
		if _, err := svc.Validate(token); err != ErrInvalidToken {
			t.Errorf("token %q: expected ErrInvalidToken, got %v", token, err)
		}
	}
}

func TestValidate_TamperedClaims_ReturnsErrInvalidSignature(t *testing.T) {
	t.Parallel()
	svc := newTestSvc(t)

	token, err := svc.Sign(Claims{UserID: "user:123", Role: "user"})
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}

	// Swap the claims segment for one granting admin
	parts := strings.Split(token, ".")
	parts[1] = encodeSegment([]byte(`{"user_id":"user:123","role":"admin"}`))
	tampered := strings.Join(parts, ".")

	if _, err := svc.Validate(tampered); err != ErrInvalidSignature {
		t.Errorf("expected ErrInvalidSignature, got %v", err)
	}
}

func TestValidate_ExpiredToken_ReturnsErrTokenExpired(t *testing.T) {
	t.Parallel()
	svc := newTestSvc(t)

	token, err := svc.Sign(Claims{
		UserID:    "user:123",
		ExpiresAt: time.Now().Add(-1 * time.Hour).Unix(),
	})
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}

	if _, err := svc.Validate(token); err != ErrTokenExpired {
		t.Errorf("expected ErrTokenExpired, got %v", err)
	}
}

func TestValidate_WrongIssuer_ReturnsErrInvalidToken(t *testing.T) {
	t.Parallel()
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("failed to generate RSA key: %v", err)
	}

	signer := NewTestService(privateKey, "other-issuer", 15*time.Minute)
	verifier := NewTestService(privateKey, "test-issuer", 15*time.Minute)

	token, err := signer.Sign(Claims{UserID: "user:123"})
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}

	if _, err := verifier.Validate(token); err != ErrInvalidToken {
		t.Errorf("expected ErrInvalidToken for issuer mismatch, got %v", err)
	}
}

func TestValidate_DifferentKey_ReturnsErrInvalidSignature(t *testing.T) {
	t.Parallel()
	svc1 := newTestSvc(t)
	svc2 := newTestSvc(t)

	token, err := svc1.Sign(Claims{UserID: "user:123"})
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}

	if _, err := svc2.Validate(token); err != ErrInvalidSignature {
		t.Errorf("expected ErrInvalidSignature, got %v", err)
	}
}

func TestValidate_NilPublicKey_ReturnsErrInvalidKey(t *testing.T) {
	t.Parallel()
	svc := &Service{}

	if _, err := svc.Validate("a.b.c"); err != ErrInvalidKey {
		t.Errorf("expected ErrInvalidKey, got %v", err)
	}
}

// ============================================================================
// Key Management Tests
// ============================================================================

func TestGenerateKeyPair_RoundTrip(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	privPath := filepath.Join(dir, "private.pem")
	pubPath := filepath.Join(dir, "public.pem")

	if err := GenerateKeyPair(privPath, pubPath); err != nil {
		t.Fatalf("GenerateKeyPair failed: %v", err)
	}

	svc, err := NewService(Config{
		PrivateKeyPath: privPath,
		PublicKeyPath:  pubPath,
		Issuer:         "test-issuer",
		ExpirationMins: 15,
	})
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}

	token, err := svc.Sign(Claims{UserID: "user:123"})
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}
	if _, err := svc.Validate(token); err != nil {
		t.Errorf("Validate failed: %v", err)
	}
}

func TestNewService_PrivateKeyNotFound_ReturnsError(t *testing.T) {
	t.Parallel()
	_, err := NewService(Config{
		PrivateKeyPath: "/nonexistent/private.pem",
		Issuer:         "test-issuer",
		ExpirationMins: 15,
	})
	if err == nil {
		t.Error("expected error for missing private key")
	}
}

func TestGetExpiration_ReturnsConfiguredDuration(t *testing.T) {
	t.Parallel()
	svc := newTestSvc(t)

	if svc.GetExpiration() != 15*time.Minute {
		t.Errorf("expected 15m, got %v", svc.GetExpiration())
	}
}
