// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package i18n

// Message IDs used in API responses.
const (
	MsgHello               = "hello"
	MsgLoginSuccess        = "login_success"
	MsgLogoutSuccess       = "logout_success"
	MsgLogoutFailed        = "logout_failed"
	MsgUserCreated         = "user_created"
	MsgUserDeleted         = "user_deleted"
	MsgProfileUpdated      = "profile_updated"
	MsgPhotoUploaded       = "photo_uploaded"
	MsgInvalidCredentials  = "invalid_credentials"
	MsgInvalidPassword     = "invalid_password"
	MsgLoginFailed         = "login_failed"
	MsgNotAuthenticated    = "not_authenticated"
	MsgCouldNotValidate    = "could_not_validate"
	MsgEmailTaken          = "email_taken"
	MsgEmailInUse          = "email_in_use"
	MsgInvalidInput        = "invalid_input"
	MsgUserNotFound        = "user_not_found"
	MsgUnsupportedFileType = "unsupported_file_type"
	MsgUploadFailed        = "upload_failed"
	MsgNoImage             = "no_image"
	MsgInternalError       = "internal_error"
)
