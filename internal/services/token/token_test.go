// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package token_test

import (
	"testing"
	"time"

	"codeberg.org/oliverandrich/account-service/internal/services/token"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIssuer(t *testing.T, alg string) *token.Issuer {
	t.Helper()
	issuer, err := token.NewIssuer(&token.Config{Secret: []byte("test-secret"), Algorithm: alg})
	require.NoError(t, err)
	return issuer
}

func TestNewIssuer(t *testing.T) {
	tests := []struct {
		name    string
		cfg     token.Config
		wantErr error
	}{
		{"default algorithm", token.Config{Secret: []byte("k")}, nil},
		{"HS384", token.Config{Secret: []byte("k"), Algorithm: "HS384"}, nil},
		{"HS512", token.Config{Secret: []byte("k"), Algorithm: "HS512"}, nil},
		{"empty secret", token.Config{Algorithm: "HS256"}, token.ErrMissingSecret},
		{"asymmetric algorithm", token.Config{Secret: []byte("k"), Algorithm: "RS256"}, token.ErrUnsupportedAlg},
		{"none", token.Config{Secret: []byte("k"), Algorithm: "none"}, token.ErrUnsupportedAlg},
		{"unknown", token.Config{Secret: []byte("k"), Algorithm: "XX1"}, token.ErrUnsupportedAlg},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issuer, err := token.NewIssuer(&tt.cfg)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, issuer)
		})
	}
}

func TestIssueAndValidate(t *testing.T) {
	for _, alg := range []string{"HS256", "HS384", "HS512"} {
		t.Run(alg, func(t *testing.T) {
			issuer := newIssuer(t, alg)

			raw, err := issuer.Issue("alice@example.com", time.Hour)
			require.NoError(t, err)

			subject, err := issuer.Validate(raw)
			require.NoError(t, err)
			assert.Equal(t, "alice@example.com", subject)
			assert.Equal(t, alg, issuer.Algorithm())
		})
	}
}

func TestIssue_DefaultTTL(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	issuer := newIssuer(t, "HS256").WithClock(func() time.Time { return now })

	raw, err := issuer.Issue("alice@example.com", 0)
	require.NoError(t, err)

	claims := &jwt.RegisteredClaims{}
	_, _, err = jwt.NewParser().ParseUnverified(raw, claims)
	require.NoError(t, err)
	assert.Equal(t, now.Add(token.DefaultTTL).Unix(), claims.ExpiresAt.Unix())
}

func TestValidate_Expiry(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	issuer := newIssuer(t, "HS256").WithClock(clock)

	raw, err := issuer.Issue("alice@example.com", time.Minute)
	require.NoError(t, err)

	t.Run("before expiry", func(t *testing.T) {
		later := issuer.WithClock(func() time.Time { return now.Add(59 * time.Second) })
		subject, err := later.Validate(raw)
		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", subject)
	})

	t.Run("after expiry", func(t *testing.T) {
		later := issuer.WithClock(func() time.Time { return now.Add(2 * time.Minute) })
		_, err := later.Validate(raw)
		assert.ErrorIs(t, err, token.ErrInvalidCredentials)
	})
}

func TestValidate_Rejects(t *testing.T) {
	issuer := newIssuer(t, "HS256")
	good, err := issuer.Issue("alice@example.com", time.Hour)
	require.NoError(t, err)

	otherKey, err := token.NewIssuer(&token.Config{Secret: []byte("other-secret")})
	require.NoError(t, err)
	foreign, err := otherKey.Issue("alice@example.com", time.Hour)
	require.NoError(t, err)

	otherAlg := newIssuer(t, "HS512")
	wrongAlg, err := otherAlg.Issue("alice@example.com", time.Hour)
	require.NoError(t, err)

	noSubject, err := issuer.Issue("", time.Hour)
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "alice@example.com"}).
		SignedString([]byte("test-secret"))
	require.NoError(t, err)

	tests := []struct {
		name string
		raw  string
	}{
		{"garbage", "not.a.token"},
		{"empty", ""},
		{"tampered", good[:len(good)-2] + "xx"},
		{"different secret", foreign},
		{"different algorithm", wrongAlg},
		{"missing subject", noSubject},
		{"missing expiry", noExpiry},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := issuer.Validate(tt.raw)
			assert.ErrorIs(t, err, token.ErrInvalidCredentials)
		})
	}
}
