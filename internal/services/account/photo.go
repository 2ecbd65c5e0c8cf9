// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package account

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"

	"codeberg.org/oliverandrich/account-service/internal/repository"
)

const (
	MediaTypePNG    = "image/png"
	MediaTypeJPEG   = "image/jpeg"
	MediaTypeBinary = "application/octet-stream"
)

var (
	pngSignature  = []byte("\x89PNG")
	jpegSignature = []byte("\xFF\xD8")
)

// AllowedMediaType reports whether an upload may be declared as contentType.
func AllowedMediaType(contentType string) bool {
	return contentType == MediaTypePNG || contentType == MediaTypeJPEG
}

// SniffMediaType derives the media type of a stored photo from its leading bytes.
func SniffMediaType(data []byte) string {
	switch {
	case bytes.HasPrefix(data, pngSignature):
		return MediaTypePNG
	case bytes.HasPrefix(data, jpegSignature):
		return MediaTypeJPEG
	default:
		return MediaTypeBinary
	}
}

// UploadPhoto stores data as the session user's profile photo. Only the
// declared content type is checked; the bytes are stored as given.
func (s *Service) UploadPhoto(ctx context.Context, sessionEmail string, data []byte, contentType string) error {
	user, err := s.repo.GetUserByEmail(ctx, sessionEmail)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}

	if !AllowedMediaType(contentType) {
		return ErrUnsupportedMediaType
	}

	if err := s.repo.UpdateUserPhoto(ctx, user.ID, data); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to store photo: %w", err)
	}

	slog.Info("photo_uploaded", "user_id", user.ID, "bytes", len(data), "content_type", contentType)
	return nil
}

// GetPhoto returns the stored photo and its sniffed media type.
func (s *Service) GetPhoto(ctx context.Context, sessionEmail string) ([]byte, string, error) {
	user, err := s.repo.GetUserByEmail(ctx, sessionEmail)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, "", ErrNotFound
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to get user: %w", err)
	}

	if !user.HasPhoto() {
		return nil, "", ErrNotFound
	}
	return user.ProfilePhoto, SniffMediaType(user.ProfilePhoto), nil
}
