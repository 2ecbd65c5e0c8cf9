// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"

	"codeberg.org/oliverandrich/account-service/internal/models"
)

const userColumns = "id, name, email, password_hash, profile_photo"

// CreateUser inserts a user and sets its ID.
func (r *Repository) CreateUser(ctx context.Context, user *models.User) error {
	query := r.db.Rebind(`INSERT INTO users (name, email, password_hash, profile_photo)
		VALUES (?, ?, ?, ?) RETURNING id`)
	err := r.db.GetContext(ctx, &user.ID, query, user.Name, user.Email, user.PasswordHash, user.ProfilePhoto)
	return wrapError(err)
}

// GetUserByID retrieves a user by ID.
func (r *Repository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	query := r.db.Rebind("SELECT " + userColumns + " FROM users WHERE id = ?")
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		return nil, wrapError(err)
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by exact email match.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	query := r.db.Rebind("SELECT " + userColumns + " FROM users WHERE email = ?")
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		return nil, wrapError(err)
	}
	return &user, nil
}

// UpdateUser overwrites name, email and password hash.
func (r *Repository) UpdateUser(ctx context.Context, user *models.User) error {
	query := r.db.Rebind("UPDATE users SET name = ?, email = ?, password_hash = ? WHERE id = ?")
	res, err := r.db.ExecContext(ctx, query, user.Name, user.Email, user.PasswordHash, user.ID)
	if err != nil {
		return wrapError(err)
	}
	return requireAffected(res)
}

// UpdateUserPhoto replaces the stored profile photo.
func (r *Repository) UpdateUserPhoto(ctx context.Context, id int64, photo []byte) error {
	query := r.db.Rebind("UPDATE users SET profile_photo = ? WHERE id = ?")
	res, err := r.db.ExecContext(ctx, query, photo, id)
	if err != nil {
		return wrapError(err)
	}
	return requireAffected(res)
}

// DeleteUser deletes a user. Login history goes with it via ON DELETE CASCADE.
func (r *Repository) DeleteUser(ctx context.Context, id int64) error {
	query := r.db.Rebind("DELETE FROM users WHERE id = ?")
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return wrapError(err)
	}
	return requireAffected(res)
}

// CountUsers returns the total number of users.
func (r *Repository) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.GetContext(ctx, &count, "SELECT count(*) FROM users"); err != nil {
		return 0, err
	}
	return count, nil
}

type rowsAffected interface {
	RowsAffected() (int64, error)
}

func requireAffected(res rowsAffected) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
