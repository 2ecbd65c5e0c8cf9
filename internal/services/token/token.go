// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package token issues and validates signed bearer tokens.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTTL applies when neither the caller nor the config give a lifetime.
const DefaultTTL = 15 * time.Minute

var (
	// ErrInvalidCredentials covers every reason a token is rejected.
	ErrInvalidCredentials = errors.New("could not validate credentials")
	ErrMissingSecret      = errors.New("token secret must not be empty")
	ErrUnsupportedAlg     = errors.New("unsupported signing algorithm")
)

// Config holds the signing parameters, built once at startup.
type Config struct {
	Secret     []byte
	Algorithm  string // HS256, HS384 or HS512
	DefaultTTL time.Duration
}

// Issuer mints and validates HMAC-signed JWTs.
type Issuer struct {
	method     *jwt.SigningMethodHMAC
	now        func() time.Time
	secret     []byte
	defaultTTL time.Duration
}

// NewIssuer validates cfg and returns an Issuer.
func NewIssuer(cfg *Config) (*Issuer, error) {
	if len(cfg.Secret) == 0 {
		return nil, ErrMissingSecret
	}

	alg := cfg.Algorithm
	if alg == "" {
		alg = jwt.SigningMethodHS256.Alg()
	}
	method, ok := jwt.GetSigningMethod(alg).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAlg, alg)
	}

	ttl := cfg.DefaultTTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &Issuer{
		method:     method,
		now:        time.Now,
		secret:     cfg.Secret,
		defaultTTL: ttl,
	}, nil
}

// WithClock returns a copy of the issuer that reads time from now.
func (i *Issuer) WithClock(now func() time.Time) *Issuer {
	clone := *i
	clone.now = now
	return &clone
}

// Algorithm returns the configured signing algorithm name.
func (i *Issuer) Algorithm() string {
	return i.method.Alg()
}

// Issue signs a token for subject that expires after ttl.
// A ttl of zero or less uses the default lifetime.
func (i *Issuer) Issue(subject string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = i.defaultTTL
	}

	now := i.now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	signed, err := jwt.NewWithClaims(i.method, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Validate checks signature, algorithm and expiry and returns the subject.
func (i *Issuer) Validate(raw string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(raw, claims,
		func(_ *jwt.Token) (any, error) { return i.secret, nil },
		jwt.WithValidMethods([]string{i.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil || !parsed.Valid {
		return "", ErrInvalidCredentials
	}

	if claims.Subject == "" {
		return "", ErrInvalidCredentials
	}
	return claims.Subject, nil
}
