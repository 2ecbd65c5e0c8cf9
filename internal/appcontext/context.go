// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package appcontext provides the custom Echo context carrying the session user.
package appcontext

import (
	"codeberg.org/oliverandrich/account-service/internal/models"
	"github.com/labstack/echo/v4"
)

// Context is a custom Echo context with the authenticated user.
type Context struct {
	echo.Context
	User *models.User // nil if not authenticated
}

// Wrap returns c as a *Context, wrapping it if it is a plain echo.Context.
func Wrap(c echo.Context) *Context {
	if cc, ok := c.(*Context); ok {
		return cc
	}
	return &Context{Context: c}
}

// GetUser returns the authenticated user, or nil if not authenticated.
func (c *Context) GetUser() *models.User {
	return c.User
}

// IsAuthenticated returns true if the user is authenticated.
func (c *Context) IsAuthenticated() bool {
	return c.User != nil
}

// UserFrom returns the authenticated user stored on c, or nil.
func UserFrom(c echo.Context) *models.User {
	if cc, ok := c.(*Context); ok {
		return cc.GetUser()
	}
	return nil
}
