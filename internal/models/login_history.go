// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models

import (
	"database/sql"
	"time"
)

// LoginHistory records one successful login. Rows are never updated.
type LoginHistory struct {
	CreatedAt time.Time      `db:"created_at"`
	Device    sql.NullString `db:"device"`
	Location  sql.NullString `db:"location"`
	ID        int64          `db:"id"`
	UserID    int64          `db:"user_id"`
}

// LoginEvent is the JSON shape of a login history entry.
type LoginEvent struct {
	Datetime time.Time `json:"datetime"`
	Device   *string   `json:"device"`
	Location *string   `json:"location"`
	ID       int64     `json:"id"`
}

// Event converts the row for API output; NULL columns become JSON null.
func (h *LoginHistory) Event() LoginEvent {
	ev := LoginEvent{ID: h.ID, Datetime: h.CreatedAt}
	if h.Device.Valid {
		ev.Device = &h.Device.String
	}
	if h.Location.Valid {
		ev.Location = &h.Location.String
	}
	return ev
}
