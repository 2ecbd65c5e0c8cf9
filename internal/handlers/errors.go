// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"net/http"

	"codeberg.org/oliverandrich/account-service/internal/i18n"
	"github.com/labstack/echo/v4"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// MessageResponse is the body of simple successful requests.
type MessageResponse struct {
	Message string `json:"message"`
}

// Detail writes a localized error response.
func Detail(c echo.Context, status int, messageID string) error {
	return DetailData(c, status, messageID, nil)
}

// DetailData writes a localized error response with template data.
func DetailData(c echo.Context, status int, messageID string, data map[string]any) error {
	return c.JSON(status, ErrorResponse{Detail: i18n.TData(c.Request().Context(), messageID, data)})
}

// Unauthorized writes a 401 carrying the bearer challenge.
func Unauthorized(c echo.Context, messageID string) error {
	c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
	return Detail(c, http.StatusUnauthorized, messageID)
}

func message(c echo.Context, messageID string) MessageResponse {
	return MessageResponse{Message: i18n.T(c.Request().Context(), messageID)}
}
