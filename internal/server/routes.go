// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"codeberg.org/oliverandrich/account-service/internal/handlers"
	"codeberg.org/oliverandrich/account-service/internal/metrics"
	"codeberg.org/oliverandrich/account-service/internal/services/session"
	"github.com/labstack/echo/v4"
)

type routes struct {
	base     *handlers.Handlers
	auth     *handlers.AuthHandlers
	users    *handlers.UserHandlers
	feed     *handlers.FeedHandlers
	sessions *session.Manager
	metrics  *metrics.Metrics
}

func setupRoutes(e *echo.Echo, r *routes) {
	// Public
	e.GET("/", r.base.Root)
	e.GET("/health", r.base.Health)
	e.GET("/metrics", echo.WrapHandler(r.metrics.Handler()))
	e.POST("/login", r.auth.Login)
	e.POST("/user/create", r.users.Create)

	// Live feed
	e.GET("/ws", r.feed.WebSocket)
	e.GET("/feed/events", r.feed.Events)

	// Authenticated
	auth := RequireAuth(r.sessions)
	e.POST("/logout", r.auth.Logout, auth)
	e.DELETE("/user/delete", r.users.Delete, auth)
	e.PUT("/user/update/profile", r.users.Update, auth)
	e.POST("/upload/user/profile", r.users.UploadPhoto, auth)
	e.GET("/user/show/profile_photo", r.users.ShowPhoto, auth)
	e.GET("/user/login_history", r.users.LoginHistory, auth)
	e.GET("/feed/clients", r.feed.Clients, auth)
}
