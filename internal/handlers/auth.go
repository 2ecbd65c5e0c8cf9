// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"codeberg.org/oliverandrich/account-service/internal/appcontext"
	"codeberg.org/oliverandrich/account-service/internal/i18n"
	"codeberg.org/oliverandrich/account-service/internal/services/session"
	"github.com/labstack/echo/v4"
)

// AuthHandlers contains handlers for login and logout.
type AuthHandlers struct {
	sessions *session.Manager
}

// NewAuth creates a new AuthHandlers instance.
func NewAuth(sessions *session.Manager) *AuthHandlers {
	return &AuthHandlers{sessions: sessions}
}

// LoginResponse is returned on successful login.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Message     string `json:"message"`
}

// Login checks form-encoded username and password, sets the access token cookie
// and returns the token in the body.
func (h *AuthHandlers) Login(c echo.Context) error {
	username := c.FormValue("username")
	password := c.FormValue("password")
	if username == "" || password == "" {
		return Detail(c, http.StatusUnprocessableEntity, i18n.MsgInvalidInput)
	}

	result, err := h.sessions.Login(c.Request().Context(), session.LoginParams{
		Username: username,
		Password: password,
		Device:   c.Request().UserAgent(),
		Location: c.RealIP(),
	})
	switch {
	case errors.Is(err, session.ErrUserNotFound):
		return Detail(c, http.StatusNotFound, i18n.MsgInvalidCredentials)
	case errors.Is(err, session.ErrInvalidPassword):
		return Detail(c, http.StatusUnauthorized, i18n.MsgInvalidPassword)
	case err != nil:
		return Detail(c, http.StatusForbidden, i18n.MsgLoginFailed)
	}

	c.SetCookie(h.sessions.Cookie(result.AccessToken))

	return c.JSON(http.StatusOK, LoginResponse{
		AccessToken: result.AccessToken,
		TokenType:   result.TokenType,
		Message:     i18n.T(c.Request().Context(), i18n.MsgLoginSuccess),
	})
}

// Logout clears the access token cookie of the session user. The token stays
// valid until it expires.
func (h *AuthHandlers) Logout(c echo.Context) error {
	user := appcontext.UserFrom(c)
	if user == nil {
		slog.Error("logout reached without a session user", "path", c.Path())
		return Detail(c, http.StatusInternalServerError, i18n.MsgLogoutFailed)
	}

	c.SetCookie(h.sessions.Clear())
	slog.Info("logout", "user_id", user.ID)
	return c.JSON(http.StatusOK, message(c, i18n.MsgLogoutSuccess))
}
