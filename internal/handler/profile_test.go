package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/forgo/inkwell/internal/model"
	"github.com/forgo/inkwell/internal/service"
)

// ============================================================================
// Mock Service
// ============================================================================

type mockProfileService struct {
	updateProfileFunc  func(ctx context.Context, userID string, req service.UpdateProfileRequest) (*model.User, error)
	changePasswordFunc func(ctx context.Context, userID string, req service.ChangePasswordRequest) error
}

func (m *mockProfileService) UpdateProfile(ctx context.Context, userID string, req service.UpdateProfileRequest) (*model.User, error) {
	if m.updateProfileFunc != nil {
		return m.updateProfileFunc(ctx, userID, req)
	}
	return nil, nil
}

func (m *mockProfileService) ChangePassword(ctx context.Context, userID string, req service.ChangePasswordRequest) error {
	if m.changePasswordFunc != nil {
		return m.changePasswordFunc(ctx, userID, req)
	}
	return nil
}

func assertFieldError(t *testing.T, rr *httptest.ResponseRecorder, field string) {
	t.Helper()

	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status %d, got %d: %s", http.StatusUnprocessableEntity, rr.Code, rr.Body.String())
	}

	var problem model.ProblemDetails
	if err := json.Unmarshal(rr.Body.Bytes(), &problem); err != nil {
		t.Fatalf("failed to decode problem details: %v", err)
	}
	if len(problem.Errors) != 1 || problem.Errors[0].Field != field {
		t.Errorf("expected a field error on %q, got %+v", field, problem.Errors)
	}
}

// ============================================================================
// ChangePassword Tests
// ============================================================================

func TestChangePassword_WrongOldPassword_ReturnsFieldError(t *testing.T) {
	t.Parallel()

	// A wrong current password on an authenticated self-service flow is
	// a form mistake, not a credentials failure: 422 on old_password,
	// never a 401.
	mockSvc := &mockProfileService{
		changePasswordFunc: func(ctx context.Context, userID string, req service.ChangePasswordRequest) error {
			return service.ErrOldPasswordWrong
		},
	}
	h := NewProfileHandler(mockSvc)

	req := withUserContext(makeJSONRequest(http.MethodPost, "/v1/profile/password", ChangePasswordRequest{
		OldPassword:     "not-my-password",
		NewPassword:     "Replacement1",
		ConfirmPassword: "Replacement1",
	}), "user:self")
	rr := httptest.NewRecorder()
	h.ChangePassword(rr, req)

	assertFieldError(t, rr, "old_password")
}

func TestChangePassword_ConfirmationMismatch_ReturnsFieldError(t *testing.T) {
	t.Parallel()

	mockSvc := &mockProfileService{
		changePasswordFunc: func(ctx context.Context, userID string, req service.ChangePasswordRequest) error {
			return service.ErrPasswordMismatch
		},
	}
	h := NewProfileHandler(mockSvc)

	req := withUserContext(makeJSONRequest(http.MethodPost, "/v1/profile/password", ChangePasswordRequest{
		OldPassword:     "Testpass123",
		NewPassword:     "Replacement1",
		ConfirmPassword: "Replacement2",
	}), "user:self")
	rr := httptest.NewRecorder()
	h.ChangePassword(rr, req)

	assertFieldError(t, rr, "confirm_password")
}

func TestChangePassword_Unauthenticated_ReturnsUnauthorized(t *testing.T) {
	t.Parallel()

	h := NewProfileHandler(&mockProfileService{})

	req := makeJSONRequest(http.MethodPost, "/v1/profile/password", ChangePasswordRequest{
		OldPassword: "Testpass123",
		NewPassword: "Replacement1",
	})
	rr := httptest.NewRecorder()
	h.ChangePassword(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, rr.Code)
	}
}

// ============================================================================
// Update Tests
// ============================================================================

func TestUpdateProfile_EmailChangeWithWrongPassword_ReturnsFieldError(t *testing.T) {
	t.Parallel()

	mockSvc := &mockProfileService{
		updateProfileFunc: func(ctx context.Context, userID string, req service.UpdateProfileRequest) (*model.User, error) {
			return nil, service.ErrOldPasswordWrong
		},
	}
	h := NewProfileHandler(mockSvc)

	email := "fresh@example.com"
	req := withUserContext(makeJSONRequest(http.MethodPatch, "/v1/profile", UpdateProfileRequest{
		NewEmail: &email,
		Password: "wrong",
	}), "user:self")
	rr := httptest.NewRecorder()
	h.Update(rr, req)

	assertFieldError(t, rr, "old_password")
}
