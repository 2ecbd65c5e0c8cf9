// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers_test

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"codeberg.org/oliverandrich/account-service/internal/appcontext"
	"codeberg.org/oliverandrich/account-service/internal/config"
	"codeberg.org/oliverandrich/account-service/internal/handlers"
	"codeberg.org/oliverandrich/account-service/internal/models"
	"codeberg.org/oliverandrich/account-service/internal/repository"
	"codeberg.org/oliverandrich/account-service/internal/services/account"
	"codeberg.org/oliverandrich/account-service/internal/services/session"
	"codeberg.org/oliverandrich/account-service/internal/testutil"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

type env struct {
	repo     *repository.Repository
	sessions *session.Manager
	accounts *account.Service
}

func newEnv(t *testing.T) *env {
	t.Helper()
	_, repo := testutil.NewTestDB(t)

	sessions, err := session.NewManager(repo, &config.AuthConfig{
		SecretKey:     testutil.TestSecret,
		Algorithm:     "HS256",
		TokenTTL:      time.Hour,
		CookieName:    "access_token",
		CookieSecure:  true,
		DefaultExpiry: 15 * time.Minute,
	}, nil)
	require.NoError(t, err)

	return &env{
		repo:     repo,
		sessions: sessions,
		accounts: account.NewService(repo, nil),
	}
}

// asUser runs h with user attached the way the auth middleware does.
func asUser(user *models.User, h echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		cc := appcontext.Wrap(c)
		cc.User = user
		return h(cc)
	}
}

func decodeDetail(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body handlers.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Detail
}
