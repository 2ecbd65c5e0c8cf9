// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models

// User is a registered account. ProfilePhoto holds the raw uploaded bytes.
type User struct {
	Name         string `db:"name" json:"name"`
	Email        string `db:"email" json:"email"`
	PasswordHash string `db:"password_hash" json:"-"`
	ProfilePhoto []byte `db:"profile_photo" json:"-"`
	ID           int64  `db:"id" json:"id"`
}

// HasPhoto reports whether a profile photo has been uploaded.
func (u *User) HasPhoto() bool {
	return len(u.ProfilePhoto) > 0
}

// Profile is the public view of a user returned by the API.
type Profile struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	ID    int64  `json:"id"`
}

// Profile strips credentials and photo bytes from the user.
func (u *User) Profile() Profile {
	return Profile{ID: u.ID, Name: u.Name, Email: u.Email}
}
