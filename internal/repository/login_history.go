// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"

	"codeberg.org/oliverandrich/account-service/internal/models"
)

// CreateLoginHistory appends a login event. CreatedAt is filled by the database.
func (r *Repository) CreateLoginHistory(ctx context.Context, entry *models.LoginHistory) error {
	query := r.db.Rebind(`INSERT INTO login_history (user_id, device, location)
		VALUES (?, ?, ?) RETURNING id`)
	if err := r.db.GetContext(ctx, &entry.ID, query, entry.UserID, entry.Device, entry.Location); err != nil {
		return wrapError(err)
	}

	query = r.db.Rebind("SELECT created_at FROM login_history WHERE id = ?")
	return wrapError(r.db.GetContext(ctx, &entry.CreatedAt, query, entry.ID))
}

// ListLoginHistory returns a user's login events, newest first.
// A limit of zero or less returns all events.
func (r *Repository) ListLoginHistory(ctx context.Context, userID int64, limit int) ([]models.LoginHistory, error) {
	query := "SELECT id, user_id, created_at, device, location FROM login_history WHERE user_id = ? ORDER BY created_at DESC, id DESC"
	args := []any{userID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	entries := []models.LoginHistory{}
	if err := r.db.SelectContext(ctx, &entries, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	return entries, nil
}

// CountLoginHistory returns the number of login events recorded for a user.
func (r *Repository) CountLoginHistory(ctx context.Context, userID int64) (int64, error) {
	var count int64
	query := r.db.Rebind("SELECT count(*) FROM login_history WHERE user_id = ?")
	if err := r.db.GetContext(ctx, &count, query, userID); err != nil {
		return 0, err
	}
	return count, nil
}
