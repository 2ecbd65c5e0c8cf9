// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"codeberg.org/oliverandrich/account-service/internal/i18n"
	"codeberg.org/oliverandrich/account-service/internal/repository"
	"github.com/labstack/echo/v4"
)

// Handlers contains the unauthenticated service endpoints.
type Handlers struct {
	repo *repository.Repository
}

// New creates a new Handlers instance.
func New(repo *repository.Repository) *Handlers {
	return &Handlers{repo: repo}
}

// Root answers with a plain greeting.
func (h *Handlers) Root(c echo.Context) error {
	return c.JSON(http.StatusOK, i18n.T(c.Request().Context(), i18n.MsgHello))
}

// Health returns the health status, including database reachability.
func (h *Handlers) Health(c echo.Context) error {
	if h.repo != nil && h.repo.DB() != nil {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := h.repo.DB().PingContext(ctx); err != nil {
			slog.Error("health check failed", "error", err)
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		}
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
