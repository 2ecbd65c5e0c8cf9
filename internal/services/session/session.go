// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package session implements password login, the access token cookie and
// resolution of the caller's identity from a bearer token.
package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"codeberg.org/oliverandrich/account-service/internal/config"
	"codeberg.org/oliverandrich/account-service/internal/metrics"
	"codeberg.org/oliverandrich/account-service/internal/models"
	"codeberg.org/oliverandrich/account-service/internal/repository"
	"codeberg.org/oliverandrich/account-service/internal/services/auth"
	"codeberg.org/oliverandrich/account-service/internal/services/token"
	"github.com/gorilla/securecookie"
)

// TokenType is reported to clients alongside the access token.
const TokenType = "bearer"

const maxDeviceLength = 512

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrInvalidPassword = errors.New("invalid password")
	// ErrLoginFailed wraps any other failure during login.
	ErrLoginFailed     = errors.New("login failed")
	ErrUnauthenticated = errors.New("not authenticated")
	// ErrInvalidTTL rejects a non-positive access token lifetime.
	ErrInvalidTTL = errors.New("access token lifetime must be positive")
)

// Manager runs the login flow and resolves sessions from tokens.
type Manager struct {
	repo    *repository.Repository
	issuer  *token.Issuer
	metrics *metrics.Metrics
	cfg     config.AuthConfig
}

// NewManager builds the token issuer from cfg. An empty secret is replaced by a
// random one when cfg.AllowDevKey is set, so tokens do not survive a restart.
func NewManager(repo *repository.Repository, cfg *config.AuthConfig, m *metrics.Metrics) (*Manager, error) {
	if cfg.TokenTTL <= 0 {
		return nil, fmt.Errorf("%w: got %s", ErrInvalidTTL, cfg.TokenTTL)
	}

	secret := []byte(cfg.SecretKey)
	if len(secret) == 0 {
		if !cfg.AllowDevKey {
			return nil, fmt.Errorf("secret key is required: %w", token.ErrMissingSecret)
		}
		secret = securecookie.GenerateRandomKey(32)
		slog.Warn("no secret key configured, using a random key; tokens will not survive a restart")
	}

	issuer, err := token.NewIssuer(&token.Config{
		Secret:     secret,
		Algorithm:  cfg.Algorithm,
		DefaultTTL: cfg.DefaultExpiry,
	})
	if err != nil {
		return nil, err
	}

	return &Manager{repo: repo, issuer: issuer, metrics: m, cfg: *cfg}, nil
}

// Issuer returns the token issuer used for login.
func (m *Manager) Issuer() *token.Issuer {
	return m.issuer
}

// SetClock replaces the time source of the token issuer.
func (m *Manager) SetClock(now func() time.Time) {
	m.issuer = m.issuer.WithClock(now)
}

// LoginParams holds the credentials and client details of a login attempt.
type LoginParams struct {
	Username string // the account email
	Password string
	Device   string
	Location string
}

// LoginResult is returned on successful login.
type LoginResult struct {
	User        *models.User
	AccessToken string
	TokenType   string
}

// Login verifies the credentials, mints an access token and appends a login
// history entry. All database work happens in one transaction.
func (m *Manager) Login(ctx context.Context, params LoginParams) (*LoginResult, error) {
	var result *LoginResult

	err := m.repo.WithTx(ctx, func(tx *repository.Repository) error {
		user, err := tx.GetUserByEmail(ctx, params.Username)
		if errors.Is(err, repository.ErrNotFound) {
			auth.BurnVerify(params.Password)
			return ErrUserNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to get user: %w", err)
		}

		if !auth.VerifyPassword(params.Password, user.PasswordHash) {
			return ErrInvalidPassword
		}

		accessToken, err := m.issuer.Issue(user.Email, m.cfg.TokenTTL)
		if err != nil {
			return err
		}

		entry := &models.LoginHistory{
			UserID:   user.ID,
			Device:   nullString(truncate(params.Device, maxDeviceLength)),
			Location: nullString(params.Location),
		}
		if err := tx.CreateLoginHistory(ctx, entry); err != nil {
			return fmt.Errorf("failed to record login: %w", err)
		}

		result = &LoginResult{User: user, AccessToken: accessToken, TokenType: TokenType}
		return nil
	})

	switch {
	case err == nil:
		m.metrics.LoginAttempt(metrics.LoginSuccess)
		slog.Info("login_success", "user_id", result.User.ID, "email", params.Username)
		return result, nil
	case errors.Is(err, ErrUserNotFound):
		m.metrics.LoginAttempt(metrics.LoginUnknownUser)
		slog.Warn("login_failed", "email", params.Username, "reason", "user_not_found")
		return nil, err
	case errors.Is(err, ErrInvalidPassword):
		m.metrics.LoginAttempt(metrics.LoginInvalidPassword)
		slog.Warn("login_failed", "email", params.Username, "reason", "invalid_password")
		return nil, err
	default:
		m.metrics.LoginAttempt(metrics.LoginError)
		slog.Error("login_failed", "email", params.Username, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrLoginFailed, err)
	}
}

// CurrentUser validates raw and loads the account it names. The account is
// re-read on every call, so a deleted user is unauthenticated even with a live token.
func (m *Manager) CurrentUser(ctx context.Context, raw string) (*models.User, error) {
	if raw == "" {
		return nil, ErrUnauthenticated
	}

	email, err := m.issuer.Validate(raw)
	if err != nil {
		return nil, ErrUnauthenticated
	}

	user, err := m.repo.GetUserByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUnauthenticated
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve session user: %w", err)
	}
	return user, nil
}

// TokenFromRequest reads the bearer token from the Authorization header,
// falling back to the access token cookie.
func (m *Manager) TokenFromRequest(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, value, ok := strings.Cut(header, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			if value = strings.TrimSpace(value); value != "" {
				return value
			}
		}
	}

	if cookie, err := r.Cookie(m.cfg.CookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// Cookie returns the cookie carrying a freshly issued access token.
func (m *Manager) Cookie(accessToken string) *http.Cookie {
	return &http.Cookie{
		Name:     m.cfg.CookieName,
		Value:    accessToken,
		Path:     "/",
		MaxAge:   int(m.cfg.TokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   m.cfg.CookieSecure,
		SameSite: http.SameSiteStrictMode,
	}
}

// Clear returns a cookie that removes the access token from the browser.
// The token itself stays valid until it expires.
func (m *Manager) Clear() *http.Cookie {
	return &http.Cookie{
		Name:     m.cfg.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   m.cfg.CookieSecure,
		SameSite: http.SameSiteStrictMode,
	}
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return strings.ToValidUTF8(s[:n], "")
}
