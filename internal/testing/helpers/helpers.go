package helpers

import (
	"bytes"
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/forgo/inkwell/internal/database"
	"github.com/forgo/inkwell/internal/model"
	"github.com/forgo/inkwell/pkg/jwt"
)

const testIssuer = "inkwell-test"

// NewTestJWTService builds a jwt.Service backed by a freshly generated
// RSA key, for wiring token issuance into service-level tests.
func NewTestJWTService(t *testing.T) *jwt.Service {
	t.Helper()
	return jwt.NewTestService(newKey(t), testIssuer, 15*time.Minute)
}

func newKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("helpers: generating RSA key: %v", err)
	}
	return key
}

// JWTHelper signs tokens directly so tests can mint tokens with
// deliberately bad lifetimes. Its Service shares the same key, so
// helper-minted tokens validate against services built from it.
type JWTHelper struct {
	key *rsa.PrivateKey
	svc *jwt.Service
}

func NewJWTHelper(t *testing.T) *JWTHelper {
	t.Helper()
	key := newKey(t)
	return &JWTHelper{
		key: key,
		svc: jwt.NewTestService(key, testIssuer, 15*time.Minute),
	}
}

// Service returns a jwt.Service that accepts this helper's tokens.
func (h *JWTHelper) Service() *jwt.Service {
	return h.svc
}

// GenerateToken mints a token valid for one hour carrying the user's
// identity claims.
func (h *JWTHelper) GenerateToken(user *model.User) string {
	now := time.Now()
	return h.sign(jwt.Claims{
		Issuer:    testIssuer,
		Subject:   user.ID,
		IssuedAt:  now.Unix(),
		NotBefore: now.Unix(),
		ExpiresAt: now.Add(time.Hour).Unix(),
		UserID:    user.ID,
		Email:     user.Email,
		Username:  user.Username,
		Role:      string(user.Role),
		Groups:    user.Groups,
	})
}

// GenerateExpiredToken mints a token whose lifetime ended an hour ago.
func (h *JWTHelper) GenerateExpiredToken(user *model.User) string {
	then := time.Now().Add(-2 * time.Hour)
	return h.sign(jwt.Claims{
		Issuer:    testIssuer,
		Subject:   user.ID,
		IssuedAt:  then.Unix(),
		NotBefore: then.Unix(),
		ExpiresAt: then.Add(time.Hour).Unix(),
		UserID:    user.ID,
	})
}

func (h *JWTHelper) sign(claims jwt.Claims) string {
	payload, _ := json.Marshal(claims)

	enc := base64.RawURLEncoding
	message := enc.EncodeToString([]byte(`{"alg":"RS256","typ":"JWT"}`)) +
		"." + enc.EncodeToString(payload)

	digest := sha256.Sum256([]byte(message))
	sig, _ := rsa.SignPKCS1v15(rand.Reader, h.key, crypto.SHA256, digest[:])

	return message + "." + enc.EncodeToString(sig)
}

// RequestBuilder assembles JSON API requests for handler tests.
type RequestBuilder struct {
	t       *testing.T
	method  string
	path    string
	body    interface{}
	headers map[string]string
	signer  *JWTHelper
	as      *model.User
}

func NewRequest(t *testing.T, method, path string) *RequestBuilder {
	t.Helper()
	return &RequestBuilder{
		t:       t,
		method:  method,
		path:    path,
		headers: map[string]string{},
	}
}

// WithBody sets the request body, encoded as JSON on Build.
func (rb *RequestBuilder) WithBody(body interface{}) *RequestBuilder {
	rb.body = body
	return rb
}

func (rb *RequestBuilder) WithHeader(key, value string) *RequestBuilder {
	rb.headers[key] = value
	return rb
}

// WithAuth attaches a bearer token for the given user, signed by signer.
func (rb *RequestBuilder) WithAuth(signer *JWTHelper, user *model.User) *RequestBuilder {
	rb.signer = signer
	rb.as = user
	return rb
}

func (rb *RequestBuilder) Build() *http.Request {
	rb.t.Helper()

	var body io.Reader
	if rb.body != nil {
		encoded, err := json.Marshal(rb.body)
		if err != nil {
			rb.t.Fatalf("helpers: encoding request body: %v", err)
		}
		body = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(rb.method, rb.path, body)
	if rb.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range rb.headers {
		req.Header.Set(k, v)
	}
	if rb.signer != nil && rb.as != nil {
		req.Header.Set("Authorization", "Bearer "+rb.signer.GenerateToken(rb.as))
	}
	return req
}

// AssertStatus fails the test when the recorded status differs, printing
// the body since it usually explains the mismatch.
func AssertStatus(t *testing.T, resp *httptest.ResponseRecorder, want int) {
	t.Helper()
	if resp.Code != want {
		t.Errorf("status = %d, want %d; body: %s", resp.Code, want, resp.Body.String())
	}
}

// AssertProblemDetails checks that the response is a problem-details
// document with the given status and, when non-zero, the given code.
func AssertProblemDetails(t *testing.T, resp *httptest.ResponseRecorder, status int, code model.ErrorCode) {
	t.Helper()

	AssertStatus(t, resp, status)

	var problem model.ProblemDetails
	DecodeResponse(t, resp, &problem)

	if problem.Status != status {
		t.Errorf("problem.status = %d, want %d", problem.Status, status)
	}
	if code != 0 && problem.Code != code {
		t.Errorf("problem.code = %d, want %d", problem.Code, code)
	}
}

// AssertValidationError checks for a 422 carrying a field error on the
// named field.
func AssertValidationError(t *testing.T, resp *httptest.ResponseRecorder, field string) {
	t.Helper()

	AssertStatus(t, resp, http.StatusUnprocessableEntity)

	var problem model.ProblemDetails
	DecodeResponse(t, resp, &problem)

	for _, fe := range problem.Errors {
		if fe.Field == field {
			return
		}
	}
	t.Errorf("no validation error on field %q; errors: %+v", field, problem.Errors)
}

// DecodeResponse unmarshals the recorded body into v.
func DecodeResponse(t *testing.T, resp *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(resp.Body.Bytes(), v); err != nil {
		t.Fatalf("decoding response: %v; body: %s", err, resp.Body.String())
	}
}

// AssertRecordExists fails unless the table holds a row with the id.
// The id may be bare or a full record id such as "post:abc".
func AssertRecordExists(t *testing.T, db database.Database, table, id string) {
	t.Helper()
	if !recordExists(t, db, table, id) {
		t.Errorf("record %s:%s missing", table, bareID(id))
	}
}

// AssertRecordNotExists fails when the row is still present.
func AssertRecordNotExists(t *testing.T, db database.Database, table, id string) {
	t.Helper()
	if recordExists(t, db, table, id) {
		t.Errorf("record %s:%s still present", table, bareID(id))
	}
}

func bareID(id string) string {
	if _, rest, found := strings.Cut(id, ":"); found {
		return rest
	}
	return id
}

func recordExists(t *testing.T, db database.Database, table, id string) bool {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	results, err := db.Query(ctx, "SELECT * FROM type::record($table, $id)", map[string]interface{}{
		"table": table,
		"id":    bareID(id),
	})
	if err != nil {
		return false
	}
	if len(results) == 0 {
		return false
	}

	resp, ok := results[0].(map[string]interface{})
	if !ok {
		return false
	}
	switch result := resp["result"].(type) {
	case []interface{}:
		return len(result) > 0
	case nil:
		return false
	default:
		return true
	}
}

// Pointer helpers for optional request fields.

func StringPtr(s string) *string { return &s }
func IntPtr(i int) *int          { return &i }
func BoolPtr(b bool) *bool       { return &b }
