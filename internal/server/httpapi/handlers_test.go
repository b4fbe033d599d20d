package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/dmitrijs2005/authkeeper/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAccounts struct {
	registerOut *models.User
	registerErr error

	verifyErr error

	resendMsg string
	resendErr error

	forgotMsg string
	forgotErr error

	resetErr error

	loginOut *services.TokenPair
	loginErr error

	refreshOut *services.TokenPair
	refreshErr error
}

func (f *fakeAccounts) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return f.registerOut, nil
}
func (f *fakeAccounts) VerifyEmail(ctx context.Context, token string) error { return f.verifyErr }
func (f *fakeAccounts) ResendVerification(ctx context.Context, email string) (string, error) {
	return f.resendMsg, f.resendErr
}
func (f *fakeAccounts) ForgotPassword(ctx context.Context, email string) (string, error) {
	return f.forgotMsg, f.forgotErr
}
func (f *fakeAccounts) ResetPassword(ctx context.Context, token, password string) error {
	return f.resetErr
}
func (f *fakeAccounts) Login(ctx context.Context, email, password string) (*services.TokenPair, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return f.loginOut, nil
}
func (f *fakeAccounts) RefreshSession(ctx context.Context, refreshToken string) (*services.TokenPair, error) {
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	return f.refreshOut, nil
}

func newTestMux(t *testing.T, accounts *fakeAccounts) *http.ServeMux {
	t.Helper()
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	mux := http.NewServeMux()
	NewHandler(accounts, logger).RegisterRoutes(mux)
	return mux
}

func doPost(t *testing.T, mux *http.ServeMux, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestRegister_Created(t *testing.T) {
	mux := newTestMux(t, &fakeAccounts{
		registerOut: &models.User{ID: "u1", Name: "Alice", Email: "a@x.com"},
	})

	rec := doPost(t, mux, "/api/auth/register", `{"name":"Alice","email":"a@x.com","password":"pw"}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, services.MsgUserCreated, body["message"])
	user := body["user"].(map[string]any)
	assert.Equal(t, "u1", user["id"])
	assert.Equal(t, "a@x.com", user["email"])
	assert.NotContains(t, user, "password_hash")
}

func TestRegister_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{"validation", common.ErrorValidation, http.StatusBadRequest, "Missing required fields"},
		{"duplicate", common.ErrorAlreadyExists, http.StatusBadRequest, "User already exists"},
		{"internal", common.ErrorInternal, http.StatusInternalServerError, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := newTestMux(t, &fakeAccounts{registerErr: tt.err})
			rec := doPost(t, mux, "/api/auth/register", `{"name":"a","email":"b","password":"c"}`)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantError, decodeBody(t, rec)["error"])
		})
	}
}

func TestRegister_MethodNotAllowed(t *testing.T) {
	mux := newTestMux(t, &fakeAccounts{})

	req := httptest.NewRequest(http.MethodGet, "/api/auth/register", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRegister_BadBody(t *testing.T) {
	mux := newTestMux(t, &fakeAccounts{})

	rec := doPost(t, mux, "/api/auth/register", `{not json`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid request body", decodeBody(t, rec)["error"])
}

func TestVerifyEmail_Mapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{"ok", nil, http.StatusOK, services.MsgEmailVerified},
		{"missing", common.ErrorValidation, http.StatusBadRequest, "Token is required"},
		{"invalid", common.ErrInvalidToken, http.StatusBadRequest, "Invalid or expired token"},
		{"expired", common.ErrTokenExpired, http.StatusBadRequest, "Token has expired"},
		{"internal", common.ErrorInternal, http.StatusInternalServerError, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := newTestMux(t, &fakeAccounts{verifyErr: tt.err})
			rec := doPost(t, mux, "/api/auth/verify-email", `{"token":"tok"}`)
			assert.Equal(t, tt.wantStatus, rec.Code)
			body := decodeBody(t, rec)
			if tt.err == nil {
				assert.Equal(t, tt.wantBody, body["message"])
			} else {
				assert.Equal(t, tt.wantBody, body["error"])
			}
		})
	}
}

func TestResendVerification_Mapping(t *testing.T) {
	mux := newTestMux(t, &fakeAccounts{resendMsg: services.MsgVerificationSent})
	rec := doPost(t, mux, "/api/auth/resend-verification", `{"email":"a@x.com"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, services.MsgVerificationSent, decodeBody(t, rec)["message"])

	muxLimited := newTestMux(t, &fakeAccounts{resendErr: common.ErrRateLimited})
	rec = doPost(t, muxLimited, "/api/auth/resend-verification", `{"email":"a@x.com"}`)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "Please wait 5 minutes before requesting another verification email", decodeBody(t, rec)["error"])

	muxVerified := newTestMux(t, &fakeAccounts{resendErr: common.ErrAlreadyVerified})
	rec = doPost(t, muxVerified, "/api/auth/resend-verification", `{"email":"a@x.com"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Email is already verified", decodeBody(t, rec)["error"])
}

func TestForgotPassword_GenericMessage(t *testing.T) {
	mux := newTestMux(t, &fakeAccounts{forgotMsg: services.MsgForgotGeneric})

	rec := doPost(t, mux, "/api/auth/forgot-password", `{"email":"whoever@x.com"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, services.MsgForgotGeneric, decodeBody(t, rec)["message"])
}

func TestResetPassword_Mapping(t *testing.T) {
	mux := newTestMux(t, &fakeAccounts{})
	rec := doPost(t, mux, "/api/auth/reset-password", `{"token":"tok","password":"pw"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, services.MsgPasswordReset, decodeBody(t, rec)["message"])

	muxMissing := newTestMux(t, &fakeAccounts{resetErr: common.ErrorValidation})
	rec = doPost(t, muxMissing, "/api/auth/reset-password", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Token and password are required", decodeBody(t, rec)["error"])
}

func TestLogin_Mapping(t *testing.T) {
	muxOK := newTestMux(t, &fakeAccounts{
		loginOut: &services.TokenPair{AccessToken: "at", RefreshToken: "rt"},
	})
	rec := doPost(t, muxOK, "/api/auth/login", `{"email":"a@x.com","password":"pw"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "at", body["access_token"])
	assert.Equal(t, "rt", body["refresh_token"])

	muxBad := newTestMux(t, &fakeAccounts{loginErr: common.ErrorUnauthorized})
	rec = doPost(t, muxBad, "/api/auth/login", `{"email":"a@x.com","password":"pw"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid email or password", decodeBody(t, rec)["error"])

	muxUnverified := newTestMux(t, &fakeAccounts{loginErr: common.ErrEmailNotVerified})
	rec = doPost(t, muxUnverified, "/api/auth/login", `{"email":"a@x.com","password":"pw"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Please verify your email before signing in", decodeBody(t, rec)["error"])
}

func TestRefresh_Mapping(t *testing.T) {
	muxOK := newTestMux(t, &fakeAccounts{
		refreshOut: &services.TokenPair{AccessToken: "at2", RefreshToken: "rt2"},
	})
	rec := doPost(t, muxOK, "/api/auth/refresh", `{"refresh_token":"rt"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "rt2", decodeBody(t, rec)["refresh_token"])

	muxBad := newTestMux(t, &fakeAccounts{refreshErr: common.ErrInvalidToken})
	rec = doPost(t, muxBad, "/api/auth/refresh", `{"refresh_token":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid or expired refresh token", decodeBody(t, rec)["error"])
}

func TestHealthEndpoint(t *testing.T) {
	mux := newTestMux(t, &fakeAccounts{})

	req := httptest.NewRequest(http.MethodGet, "/up", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}
