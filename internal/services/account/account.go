// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package account manages user profiles: registration, updates, deletion,
// profile photos and login history.
package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"codeberg.org/oliverandrich/account-service/internal/metrics"
	"codeberg.org/oliverandrich/account-service/internal/models"
	"codeberg.org/oliverandrich/account-service/internal/repository"
	"codeberg.org/oliverandrich/account-service/internal/services/auth"
)

var (
	ErrDuplicateEmail       = errors.New("email already registered")
	ErrInvalidInput         = errors.New("invalid input")
	ErrNotFound             = errors.New("user not found")
	ErrUnauthenticated      = errors.New("not authenticated")
	ErrUnsupportedMediaType = errors.New("unsupported media type")
)

type Service struct {
	repo    *repository.Repository
	metrics *metrics.Metrics
}

func NewService(repo *repository.Repository, m *metrics.Metrics) *Service {
	return &Service{repo: repo, metrics: m}
}

// CreateParams holds the parameters for user registration.
type CreateParams struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateParams holds the replacement profile. All fields are required.
type UpdateParams struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func validateProfile(name, email, password string) error {
	if strings.TrimSpace(name) == "" || password == "" {
		return fmt.Errorf("%w: name and password are required", ErrInvalidInput)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("%w: malformed email", ErrInvalidInput)
	}
	return nil
}

func hash(password string) (string, error) {
	h, err := auth.HashPassword(password)
	if errors.Is(err, auth.ErrPasswordTooLong) {
		return "", fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return h, err
}

// CreateUser registers a new account. Emails are unique and compared exactly.
func (s *Service) CreateUser(ctx context.Context, params CreateParams) (*models.User, error) {
	if err := validateProfile(params.Name, params.Email, params.Password); err != nil {
		return nil, err
	}

	_, err := s.repo.GetUserByEmail(ctx, params.Email)
	if err == nil {
		return nil, ErrDuplicateEmail
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	passwordHash, err := hash(params.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:         params.Name,
		Email:        params.Email,
		PasswordHash: passwordHash,
	}

	// The unique constraint catches a concurrent registration that passed the check above.
	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.metrics.UserRegistered()
	slog.Info("register_success", "user_id", user.ID, "email", user.Email)

	return user, nil
}

// UpdateUser replaces name, email and password of the session user.
func (s *Service) UpdateUser(ctx context.Context, sessionEmail string, params UpdateParams) (*models.User, error) {
	if err := validateProfile(params.Name, params.Email, params.Password); err != nil {
		return nil, err
	}

	var updated *models.User
	err := s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		user, err := tx.GetUserByEmail(ctx, sessionEmail)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUnauthenticated
		}
		if err != nil {
			return fmt.Errorf("failed to get user: %w", err)
		}

		if params.Email != sessionEmail {
			_, err := tx.GetUserByEmail(ctx, params.Email)
			if err == nil {
				return ErrDuplicateEmail
			}
			if !errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("failed to check email: %w", err)
			}
		}

		passwordHash, err := hash(params.Password)
		if err != nil {
			return err
		}

		user.Name = params.Name
		user.Email = params.Email
		user.PasswordHash = passwordHash

		if err := tx.UpdateUser(ctx, user); err != nil {
			switch {
			case errors.Is(err, repository.ErrDuplicate):
				return ErrDuplicateEmail
			case errors.Is(err, repository.ErrNotFound):
				return ErrUnauthenticated
			}
			return fmt.Errorf("failed to update user: %w", err)
		}

		updated = user
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("profile_updated", "user_id", updated.ID, "email", updated.Email)
	return updated, nil
}

// DeleteUser removes the session user together with its login history.
func (s *Service) DeleteUser(ctx context.Context, sessionEmail string) error {
	user, err := s.repo.GetUserByEmail(ctx, sessionEmail)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}

	if err := s.repo.DeleteUser(ctx, user.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}

	slog.Info("user_deleted", "user_id", user.ID, "email", user.Email)
	return nil
}

// LoginHistory lists the session user's logins, newest first.
func (s *Service) LoginHistory(ctx context.Context, sessionEmail string, limit int) ([]models.LoginEvent, error) {
	user, err := s.repo.GetUserByEmail(ctx, sessionEmail)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	entries, err := s.repo.ListLoginHistory(ctx, user.ID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list login history: %w", err)
	}

	events := make([]models.LoginEvent, 0, len(entries))
	for i := range entries {
		events = append(events, entries[i].Event())
	}
	return events, nil
}
