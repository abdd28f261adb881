package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"noticeboard/internal/logger"
	"noticeboard/internal/utils"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "test-secret"

func init() {
	logger.Log = zap.NewNop()
}

func okHandler(hit *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*hit = true
		w.WriteHeader(http.StatusOK)
	})
}

func TestSessionAuth_NoToken_API(t *testing.T) {
	var hit bool
	h := SessionAuth(testSecret, okHandler(&hit))

	req := httptest.NewRequest(http.MethodGet, "/api/headlines/admin", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.False(t, hit)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSessionAuth_NoToken_BrowserRedirects(t *testing.T) {
	var hit bool
	h := SessionAuth(testSecret, okHandler(&hit))

	req := httptest.NewRequest(http.MethodGet, "/api/headlines/admin", nil)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.False(t, hit)
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/", rec.Header().Get("Location"))
}

func TestSessionAuth_CookieToken(t *testing.T) {
	token, err := utils.GenerateToken(testSecret, "u1", "admin", time.Minute)
	require.NoError(t, err)

	var gotUserID, gotRole string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID, _ = r.Context().Value(ContextUserID).(string)
		gotRole, _ = r.Context().Value(ContextRole).(string)
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/headlines", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
	rec := httptest.NewRecorder()
	SessionAuth(testSecret, next).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "u1", gotUserID)
	require.Equal(t, "admin", gotRole)
}

func TestSessionAuth_BearerFallback(t *testing.T) {
	token, err := utils.GenerateToken(testSecret, "u2", "user", time.Minute)
	require.NoError(t, err)

	var hit bool
	req := httptest.NewRequest(http.MethodGet, "/api/headlines", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	SessionAuth(testSecret, okHandler(&hit)).ServeHTTP(rec, req)

	require.True(t, hit)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestSessionAuth_ExpiredToken(t *testing.T) {
	token, err := utils.GenerateToken(testSecret, "u1", "admin", -time.Minute)
	require.NoError(t, err)

	var hit bool
	req := httptest.NewRequest(http.MethodGet, "/api/headlines", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
	rec := httptest.NewRecorder()
	SessionAuth(testSecret, okHandler(&hit)).ServeHTTP(rec, req)

	require.False(t, hit)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestOnlyRole_ForbidsWrongRole(t *testing.T) {
	token, err := utils.GenerateToken(testSecret, "u2", "user", time.Minute)
	require.NoError(t, err)

	var hit bool
	chain := SessionAuth(testSecret, OnlyRole("admin")(okHandler(&hit)))

	req := httptest.NewRequest(http.MethodGet, "/api/headlines", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	chain.ServeHTTP(rec, req)

	require.False(t, hit)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestOnlyRole_BrowserRedirects(t *testing.T) {
	token, err := utils.GenerateToken(testSecret, "u2", "user", time.Minute)
	require.NoError(t, err)

	var hit bool
	chain := SessionAuth(testSecret, OnlyRole("admin")(okHandler(&hit)))

	req := httptest.NewRequest(http.MethodGet, "/api/headlines", nil)
	req.Header.Set("Accept", "text/html")
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	chain.ServeHTTP(rec, req)

	require.False(t, hit)
	require.Equal(t, http.StatusFound, rec.Code)
}
