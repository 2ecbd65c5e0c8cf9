// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"codeberg.org/oliverandrich/account-service/internal/config"
	"codeberg.org/oliverandrich/account-service/internal/services/session"
	"codeberg.org/oliverandrich/account-service/internal/testutil"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Host:           "localhost",
			Port:           8000,
			MaxBodySize:    1,
			AllowedOrigins: config.DefaultAllowedOrigins,
		},
		Auth: config.AuthConfig{
			SecretKey:     testutil.TestSecret,
			Algorithm:     "HS256",
			TokenTTL:      time.Hour,
			CookieName:    "access_token",
			CookieSecure:  true,
			DefaultExpiry: 15 * time.Minute,
		},
		Feed: config.FeedConfig{Interval: time.Second},
	}
}

func newTestServer(t *testing.T) *echo.Echo {
	t.Helper()
	db, _ := testutil.NewTestDB(t)
	e, err := New(testConfig(), db)
	require.NoError(t, err)
	return e
}

func do(e *echo.Echo, method, target string, body io.Reader, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestNew_MissingSecretOutsideLocalhost(t *testing.T) {
	db, _ := testutil.NewTestDB(t)
	cfg := testConfig()
	cfg.Auth.SecretKey = ""
	cfg.Auth.AllowDevKey = false

	_, err := New(cfg, db)
	assert.Error(t, err)
}

func TestNew_ZeroTokenLifetime(t *testing.T) {
	db, _ := testutil.NewTestDB(t)
	cfg := testConfig()
	cfg.Auth.TokenTTL = 0

	_, err := New(cfg, db)
	assert.ErrorIs(t, err, session.ErrInvalidTTL)
}

func TestAccountLifecycle(t *testing.T) {
	e := newTestServer(t)
	jsonHeader := map[string]string{echo.HeaderContentType: echo.MIMEApplicationJSON}

	rec := do(e, http.MethodPost, "/user/create",
		strings.NewReader(`{"name":"Ada","email":"ada@example.com","password":"secret"}`), jsonHeader)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	form := url.Values{"username": {"ada@example.com"}, "password": {"secret"}}
	rec = do(e, http.MethodPost, "/login", strings.NewReader(form.Encode()),
		map[string]string{echo.HeaderContentType: echo.MIMEApplicationForm})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var login struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))
	bearer := map[string]string{
		echo.HeaderAuthorization: "Bearer " + login.AccessToken,
		echo.HeaderContentType:   echo.MIMEApplicationJSON,
	}

	rec = do(e, http.MethodGet, "/user/login_history", nil, bearer)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"datetime"`)

	rec = do(e, http.MethodPut, "/user/update/profile",
		strings.NewReader(`{"name":"Ada L.","email":"ada@example.com","password":"secret2"}`), bearer)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "Ada L.")

	rec = do(e, http.MethodPost, "/logout", nil, bearer)
	require.Equal(t, http.StatusOK, rec.Code)

	// Logout only clears the cookie; the bearer token remains usable.
	rec = do(e, http.MethodDelete, "/user/delete", nil, bearer)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(e, http.MethodGet, "/user/show/profile_photo", nil, bearer)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	e := newTestServer(t)

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/logout"},
		{http.MethodDelete, "/user/delete"},
		{http.MethodPut, "/user/update/profile"},
		{http.MethodPost, "/upload/user/profile"},
		{http.MethodGet, "/user/show/profile_photo"},
		{http.MethodGet, "/user/login_history"},
		{http.MethodGet, "/feed/clients"},
	}

	for _, r := range routes {
		t.Run(r.method+" "+r.path, func(t *testing.T) {
			rec := do(e, r.method, r.path, nil, nil)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "Bearer", rec.Header().Get(echo.HeaderWWWAuthenticate))
		})
	}
}

func TestPublicRoutes(t *testing.T) {
	e := newTestServer(t)

	t.Run("root", func(t *testing.T) {
		rec := do(e, http.MethodGet, "/", nil, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `"hello"`, rec.Body.String())
	})

	t.Run("root in german", func(t *testing.T) {
		rec := do(e, http.MethodGet, "/", nil, map[string]string{"Accept-Language": "de"})
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `"hallo"`, rec.Body.String())
	})

	t.Run("health", func(t *testing.T) {
		rec := do(e, http.MethodGet, "/health", nil, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("unknown route", func(t *testing.T) {
		rec := do(e, http.MethodGet, "/nope", nil, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), `"detail"`)
	})

	t.Run("request id", func(t *testing.T) {
		rec := do(e, http.MethodGet, "/", nil, nil)
		assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
	})
}

func TestCORS(t *testing.T) {
	e := newTestServer(t)

	rec := do(e, http.MethodOptions, "/login", nil, map[string]string{
		echo.HeaderOrigin:                     "http://localhost:5173",
		echo.HeaderAccessControlRequestMethod: http.MethodPost,
	})

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
	assert.Equal(t, "true", rec.Header().Get(echo.HeaderAccessControlAllowCredentials))

	rec = do(e, http.MethodOptions, "/login", nil, map[string]string{
		echo.HeaderOrigin:                     "http://evil.test",
		echo.HeaderAccessControlRequestMethod: http.MethodPost,
	})
	assert.Empty(t, rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
}

func TestMetricsEndpoint(t *testing.T) {
	e := newTestServer(t)

	form := url.Values{"username": {"ghost@example.com"}, "password": {"x"}}
	rec := do(e, http.MethodPost, "/login", strings.NewReader(form.Encode()),
		map[string]string{echo.HeaderContentType: echo.MIMEApplicationForm})
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(e, http.MethodGet, "/metrics", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `accounts_login_attempts_total{result="unknown_user"} 1`)
	assert.Contains(t, body, `accounts_http_request_duration_seconds_count{method="POST",route="/login",status="404"} 1`)
}
