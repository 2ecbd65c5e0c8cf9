// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"codeberg.org/oliverandrich/account-service/internal/i18n"
	"codeberg.org/oliverandrich/account-service/internal/services/account"
	"github.com/labstack/echo/v4"
)

// UploadPhoto stores the multipart "file" field as the session user's photo.
func (h *UserHandlers) UploadPhoto(c echo.Context) error {
	file, err := c.FormFile("file")
	if err != nil {
		return Detail(c, http.StatusUnprocessableEntity, i18n.MsgInvalidInput)
	}

	src, err := file.Open()
	if err != nil {
		slog.Error("failed to open upload", "error", err)
		return Detail(c, http.StatusNotImplemented, i18n.MsgUploadFailed)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		slog.Error("failed to read upload", "error", err)
		return Detail(c, http.StatusNotImplemented, i18n.MsgUploadFailed)
	}

	err = h.accounts.UploadPhoto(c.Request().Context(), sessionEmail(c), data, file.Header.Get(echo.HeaderContentType))
	switch {
	case errors.Is(err, account.ErrNotFound):
		return Detail(c, http.StatusNotFound, i18n.MsgUserNotFound)
	case errors.Is(err, account.ErrUnsupportedMediaType):
		return DetailData(c, http.StatusNotAcceptable, i18n.MsgUnsupportedFileType, map[string]any{"Filename": file.Filename})
	case err != nil:
		slog.Error("failed to store photo", "error", err)
		return Detail(c, http.StatusNotImplemented, i18n.MsgUploadFailed)
	}

	return c.JSON(http.StatusOK, i18n.T(c.Request().Context(), i18n.MsgPhotoUploaded))
}

// ShowPhoto streams the stored photo with a media type sniffed from its content.
func (h *UserHandlers) ShowPhoto(c echo.Context) error {
	data, mediaType, err := h.accounts.GetPhoto(c.Request().Context(), sessionEmail(c))
	switch {
	case errors.Is(err, account.ErrNotFound):
		return Detail(c, http.StatusNotFound, i18n.MsgNoImage)
	case err != nil:
		slog.Error("failed to load photo", "error", err)
		return Detail(c, http.StatusInternalServerError, i18n.MsgInternalError)
	}

	return c.Stream(http.StatusOK, mediaType, bytes.NewReader(data))
}
