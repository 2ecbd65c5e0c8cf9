// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"codeberg.org/oliverandrich/account-service/internal/appcontext"
	"codeberg.org/oliverandrich/account-service/internal/i18n"
	"codeberg.org/oliverandrich/account-service/internal/models"
	"codeberg.org/oliverandrich/account-service/internal/services/account"
	"github.com/labstack/echo/v4"
)

const defaultHistoryLimit = 50

// UserHandlers contains handlers for profile management.
type UserHandlers struct {
	accounts *account.Service
}

// NewUsers creates a new UserHandlers instance.
func NewUsers(accounts *account.Service) *UserHandlers {
	return &UserHandlers{accounts: accounts}
}

// UpdateResponse is returned after a profile update.
type UpdateResponse struct {
	Message string         `json:"message"`
	User    models.Profile `json:"user"`
}

// sessionEmail returns the email of the authenticated user, or "" when the
// request did not pass through the auth middleware.
func sessionEmail(c echo.Context) string {
	if cc, ok := c.(*appcontext.Context); ok && cc.IsAuthenticated() {
		return cc.User.Email
	}
	return ""
}

// Create registers a new account from a JSON body.
func (h *UserHandlers) Create(c echo.Context) error {
	var req account.CreateParams
	if err := c.Bind(&req); err != nil {
		return Detail(c, http.StatusBadRequest, i18n.MsgInvalidInput)
	}

	_, err := h.accounts.CreateUser(c.Request().Context(), req)
	switch {
	case errors.Is(err, account.ErrDuplicateEmail):
		return Detail(c, http.StatusBadRequest, i18n.MsgEmailTaken)
	case errors.Is(err, account.ErrInvalidInput):
		return Detail(c, http.StatusBadRequest, i18n.MsgInvalidInput)
	case err != nil:
		slog.Error("failed to create user", "error", err, "email", req.Email)
		return Detail(c, http.StatusBadRequest, i18n.MsgInternalError)
	}

	return c.JSON(http.StatusOK, message(c, i18n.MsgUserCreated))
}

// Update replaces the session user's name, email and password.
func (h *UserHandlers) Update(c echo.Context) error {
	email := sessionEmail(c)
	if email == "" {
		return Unauthorized(c, i18n.MsgNotAuthenticated)
	}

	var req account.UpdateParams
	if err := c.Bind(&req); err != nil {
		return Detail(c, http.StatusBadRequest, i18n.MsgInvalidInput)
	}

	user, err := h.accounts.UpdateUser(c.Request().Context(), email, req)
	switch {
	case errors.Is(err, account.ErrUnauthenticated):
		return Unauthorized(c, i18n.MsgNotAuthenticated)
	case errors.Is(err, account.ErrDuplicateEmail):
		return Detail(c, http.StatusBadRequest, i18n.MsgEmailInUse)
	case errors.Is(err, account.ErrInvalidInput):
		return Detail(c, http.StatusBadRequest, i18n.MsgInvalidInput)
	case err != nil:
		slog.Error("failed to update user", "error", err, "email", email)
		return Detail(c, http.StatusInternalServerError, i18n.MsgInternalError)
	}

	return c.JSON(http.StatusOK, UpdateResponse{
		Message: i18n.T(c.Request().Context(), i18n.MsgProfileUpdated),
		User:    user.Profile(),
	})
}

// Delete removes the session user.
func (h *UserHandlers) Delete(c echo.Context) error {
	err := h.accounts.DeleteUser(c.Request().Context(), sessionEmail(c))
	switch {
	case errors.Is(err, account.ErrNotFound):
		return Detail(c, http.StatusNotFound, i18n.MsgNotAuthenticated)
	case err != nil:
		slog.Error("failed to delete user", "error", err)
		return Detail(c, http.StatusInternalServerError, i18n.MsgInternalError)
	}

	return c.JSON(http.StatusOK, message(c, i18n.MsgUserDeleted))
}

// LoginHistory lists the session user's logins, newest first.
// The optional "limit" query parameter caps the result size.
func (h *UserHandlers) LoginHistory(c echo.Context) error {
	limit := defaultHistoryLimit
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return Detail(c, http.StatusBadRequest, i18n.MsgInvalidInput)
		}
		limit = n
	}

	events, err := h.accounts.LoginHistory(c.Request().Context(), sessionEmail(c), limit)
	switch {
	case errors.Is(err, account.ErrNotFound):
		return Detail(c, http.StatusNotFound, i18n.MsgUserNotFound)
	case err != nil:
		slog.Error("failed to list login history", "error", err)
		return Detail(c, http.StatusInternalServerError, i18n.MsgInternalError)
	}

	return c.JSON(http.StatusOK, events)
}
