// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository_test

import (
	"context"
	"database/sql"
	"testing"

	"codeberg.org/oliverandrich/account-service/internal/models"
	"codeberg.org/oliverandrich/account-service/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateLoginHistory(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	user := testutil.NewTestUser(t, repo, "Alice", "alice@example.com")
	entry := &models.LoginHistory{
		UserID: user.ID,
		Device: sql.NullString{String: "Mozilla/5.0", Valid: true},
	}

	require.NoError(t, repo.CreateLoginHistory(ctx, entry))

	assert.NotZero(t, entry.ID)
	assert.False(t, entry.CreatedAt.IsZero())
}

func TestCreateLoginHistory_UnknownUser(t *testing.T) {
	_, repo := testutil.NewTestDB(t)

	err := repo.CreateLoginHistory(context.Background(), &models.LoginHistory{UserID: 999})

	assert.Error(t, err)
}

func TestListLoginHistory(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	alice := testutil.NewTestUser(t, repo, "Alice", "alice@example.com")
	bob := testutil.NewTestUser(t, repo, "Bob", "bob@example.com")

	for range 3 {
		require.NoError(t, repo.CreateLoginHistory(ctx, &models.LoginHistory{UserID: alice.ID}))
	}
	require.NoError(t, repo.CreateLoginHistory(ctx, &models.LoginHistory{UserID: bob.ID}))

	entries, err := repo.ListLoginHistory(ctx, alice.ID, 0)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Greater(t, entries[0].ID, entries[1].ID, "newest first")

	limited, err := repo.ListLoginHistory(ctx, alice.ID, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestListLoginHistory_Empty(t *testing.T) {
	_, repo := testutil.NewTestDB(t)

	entries, err := repo.ListLoginHistory(context.Background(), 1, 10)

	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.NotNil(t, entries)
}

func TestDeleteUser_CascadesLoginHistory(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	user := testutil.NewTestUser(t, repo, "Alice", "alice@example.com")
	require.NoError(t, repo.CreateLoginHistory(ctx, &models.LoginHistory{UserID: user.ID}))
	require.NoError(t, repo.CreateLoginHistory(ctx, &models.LoginHistory{UserID: user.ID}))

	require.NoError(t, repo.DeleteUser(ctx, user.ID))

	count, err := repo.CountLoginHistory(ctx, user.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}
