package repository_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nightstay/backend-go/internal/database/models"
	"github.com/nightstay/backend-go/internal/database/repository"
	"github.com/nightstay/backend-go/internal/testutil"
)

func TestLocationRepository_CreateAndList(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewLocationRepository(db)
	ctx := context.Background()

	user := testutil.CreateUser(t, db, "owner@example.com")
	other := testutil.CreateUser(t, db, "other@example.com")

	color := "#3b82f6"
	for _, l := range []*models.Location{
		{UserID: user.ID, Name: "Home", Color: &color},
		{UserID: user.ID, Name: "Parents"},
		{UserID: other.ID, Name: "Elsewhere"},
	} {
		require.NoError(t, repo.Create(ctx, l))
		assert.NotEqual(t, uuid.Nil, l.ID)
	}

	locations, err := repo.ListByOwner(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, locations, 2)
	assert.Equal(t, "Home", locations[0].Name)
	assert.Equal(t, color, *locations[0].Color)
	assert.Equal(t, "Parents", locations[1].Name)
	assert.Nil(t, locations[1].Color)
}

func TestLocationRepository_FindByIDForOwner(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewLocationRepository(db)
	ctx := context.Background()

	user := testutil.CreateUser(t, db, "owner@example.com")
	other := testutil.CreateUser(t, db, "other@example.com")
	home := testutil.CreateLocation(t, db, user.ID, "Home")

	found, err := repo.FindByIDForOwner(ctx, user.ID, home.ID)
	require.NoError(t, err)
	assert.Equal(t, "Home", found.Name)

	_, err = repo.FindByIDForOwner(ctx, other.ID, home.ID)
	assert.ErrorIs(t, err, repository.ErrLocationNotFound)
}

func TestLocationRepository_Update(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewLocationRepository(db)
	ctx := context.Background()

	user := testutil.CreateUser(t, db, "owner@example.com")
	other := testutil.CreateUser(t, db, "other@example.com")
	home := testutil.CreateLocation(t, db, user.ID, "Home")

	color := "#fff"
	home.Name = "Flat"
	home.Color = &color
	require.NoError(t, repo.Update(ctx, home))

	found, err := repo.FindByIDForOwner(ctx, user.ID, home.ID)
	require.NoError(t, err)
	assert.Equal(t, "Flat", found.Name)
	assert.Equal(t, "#fff", *found.Color)

	// Clearing the color writes NULL.
	found.Color = nil
	require.NoError(t, repo.Update(ctx, found))
	cleared, err := repo.FindByIDForOwner(ctx, user.ID, home.ID)
	require.NoError(t, err)
	assert.Nil(t, cleared.Color)

	stolen := *found
	stolen.UserID = other.ID
	assert.ErrorIs(t, repo.Update(ctx, &stolen), repository.ErrLocationNotFound)
}

func TestLocationRepository_DeleteUnused(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewLocationRepository(db)
	entries := repository.NewSleepEntryRepository(db)
	ctx := context.Background()

	user := testutil.CreateUser(t, db, "owner@example.com")
	other := testutil.CreateUser(t, db, "other@example.com")
	home := testutil.CreateLocation(t, db, user.ID, "Home")

	_, err := entries.Upsert(ctx, user.ID, "2024-01-15", home.ID)
	require.NoError(t, err)

	assert.ErrorIs(t, repo.DeleteUnused(ctx, other.ID, home.ID), repository.ErrLocationNotFound)
	assert.ErrorIs(t, repo.DeleteUnused(ctx, user.ID, home.ID), repository.ErrLocationInUse)

	require.NoError(t, entries.Delete(ctx, user.ID, "2024-01-15"))
	require.NoError(t, repo.DeleteUnused(ctx, user.ID, home.ID))

	_, err = repo.FindByIDForOwner(ctx, user.ID, home.ID)
	assert.ErrorIs(t, err, repository.ErrLocationNotFound)
	assert.ErrorIs(t, repo.DeleteUnused(ctx, user.ID, home.ID), repository.ErrLocationNotFound)
}
