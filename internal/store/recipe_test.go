package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tastebook/backend/internal/model"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.User{}, &model.Recipe{}))
	return db
}

func testRecipe(authorID uuid.UUID) *model.Recipe {
	return &model.Recipe{
		Title:              "Pancakes",
		Description:        "Fluffy breakfast pancakes",
		Ingredients:        model.JSONBStringArray{"flour", "milk", "eggs"},
		Instructions:       model.JSONBStringArray{"mix", "fry"},
		PrepTimeMinutes:    10,
		CookingTimeMinutes: 15,
		ServingSize:        4,
		IsPublished:        true,
		AuthorID:           authorID,
	}
}

func TestCreateAssignsID(t *testing.T) {
	store := NewRecipeStore(newTestDB(t))
	recipe := testRecipe(uuid.New())

	require.NoError(t, store.Create(context.Background(), recipe))
	assert.NotEqual(t, uuid.Nil, recipe.ID)
	assert.Nil(t, recipe.ThumbnailURL)
	assert.Nil(t, recipe.LargeURL)
}

func TestCreateWithImagesCommitsBothURLs(t *testing.T) {
	db := newTestDB(t)
	store := NewRecipeStore(db)
	recipe := testRecipe(uuid.New())

	var callbackID uuid.UUID
	err := store.CreateWithImages(context.Background(), recipe, func(recipeID uuid.UUID) (ImageURLs, error) {
		callbackID = recipeID
		return ImageURLs{
			ThumbnailURL: "https://bucket.s3.r.amazonaws.com/a/b/thumbnail.jpg",
			LargeURL:     "https://bucket.s3.r.amazonaws.com/a/b/large.jpg",
		}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, recipe.ID, callbackID)

	var persisted model.Recipe
	require.NoError(t, db.First(&persisted, "id = ?", recipe.ID).Error)
	require.NotNil(t, persisted.ThumbnailURL)
	require.NotNil(t, persisted.LargeURL)
	assert.Contains(t, *persisted.ThumbnailURL, "/thumbnail.jpg")
	assert.Contains(t, *persisted.LargeURL, "/large.jpg")
}

func TestCreateWithImagesRollsBackOnCallbackError(t *testing.T) {
	db := newTestDB(t)
	store := NewRecipeStore(db)
	recipe := testRecipe(uuid.New())

	boom := errors.New("upload failed")
	err := store.CreateWithImages(context.Background(), recipe, func(uuid.UUID) (ImageURLs, error) {
		return ImageURLs{}, boom
	})
	require.ErrorIs(t, err, boom)

	var count int64
	require.NoError(t, db.Model(&model.Recipe{}).Count(&count).Error)
	assert.Zero(t, count, "no row may survive a failed image callback")
}

func TestUpdatePartialFieldsOnly(t *testing.T) {
	db := newTestDB(t)
	store := NewRecipeStore(db)
	authorID := uuid.New()
	recipe := testRecipe(authorID)
	require.NoError(t, store.Create(context.Background(), recipe))

	var before model.Recipe
	require.NoError(t, db.First(&before, "id = ?", recipe.ID).Error)

	err := store.Update(context.Background(), recipe.ID, authorID, map[string]interface{}{
		"title":      "Crepes",
		"updated_at": time.Now().UTC().Add(time.Second),
	})
	require.NoError(t, err)

	var after model.Recipe
	require.NoError(t, db.First(&after, "id = ?", recipe.ID).Error)
	assert.Equal(t, "Crepes", after.Title)
	assert.Equal(t, before.Ingredients, after.Ingredients)
	assert.Equal(t, before.Instructions, after.Instructions)
	assert.Equal(t, before.IsPublished, after.IsPublished)
	assert.Equal(t, before.ThumbnailURL, after.ThumbnailURL)
	assert.Equal(t, before.LargeURL, after.LargeURL)
	assert.True(t, after.UpdatedAt.After(before.UpdatedAt))
}

func TestUpdateWrongOwnerIsNotFound(t *testing.T) {
	db := newTestDB(t)
	store := NewRecipeStore(db)
	authorID := uuid.New()
	recipe := testRecipe(authorID)
	require.NoError(t, store.Create(context.Background(), recipe))

	err := store.Update(context.Background(), recipe.ID, uuid.New(), map[string]interface{}{
		"title":      "Stolen",
		"updated_at": time.Now().UTC(),
	})
	assert.ErrorIs(t, err, ErrRecipeNotFound)

	var after model.Recipe
	require.NoError(t, db.First(&after, "id = ?", recipe.ID).Error)
	assert.Equal(t, "Pancakes", after.Title, "row must be unchanged")
}

func TestUpdateWithImagesRollsBackScalarChanges(t *testing.T) {
	db := newTestDB(t)
	store := NewRecipeStore(db)
	authorID := uuid.New()
	recipe := testRecipe(authorID)
	require.NoError(t, store.Create(context.Background(), recipe))

	err := store.UpdateWithImages(context.Background(), recipe.ID, authorID, map[string]interface{}{
		"title":      "Crepes",
		"updated_at": time.Now().UTC(),
	}, func(uuid.UUID) (ImageURLs, error) {
		return ImageURLs{}, errors.New("store unavailable")
	})
	require.Error(t, err)

	var after model.Recipe
	require.NoError(t, db.First(&after, "id = ?", recipe.ID).Error)
	assert.Equal(t, "Pancakes", after.Title, "scalar update must roll back with the images")
	assert.Nil(t, after.ThumbnailURL)
	assert.Nil(t, after.LargeURL)
}

func TestUpdateWithImagesWrongOwner(t *testing.T) {
	db := newTestDB(t)
	store := NewRecipeStore(db)
	recipe := testRecipe(uuid.New())
	require.NoError(t, store.Create(context.Background(), recipe))

	called := false
	err := store.UpdateWithImages(context.Background(), recipe.ID, uuid.New(), map[string]interface{}{
		"updated_at": time.Now().UTC(),
	}, func(uuid.UUID) (ImageURLs, error) {
		called = true
		return ImageURLs{}, nil
	})
	assert.ErrorIs(t, err, ErrRecipeNotFound)
	assert.False(t, called, "image callback must not run for a missing row")
}

func TestDeleteHandsOldURLsToCleanup(t *testing.T) {
	db := newTestDB(t)
	store := NewRecipeStore(db)
	authorID := uuid.New()
	recipe := testRecipe(authorID)

	require.NoError(t, store.CreateWithImages(context.Background(), recipe, func(uuid.UUID) (ImageURLs, error) {
		return ImageURLs{ThumbnailURL: "https://b.s3.r.amazonaws.com/t.jpg", LargeURL: "https://b.s3.r.amazonaws.com/l.jpg"}, nil
	}))

	var gotThumb, gotLarge *string
	err := store.Delete(context.Background(), recipe.ID, authorID, func(thumbnailURL, largeURL *string) {
		gotThumb, gotLarge = thumbnailURL, largeURL
	})
	require.NoError(t, err)

	require.NotNil(t, gotThumb)
	require.NotNil(t, gotLarge)
	assert.Equal(t, "https://b.s3.r.amazonaws.com/t.jpg", *gotThumb)
	assert.Equal(t, "https://b.s3.r.amazonaws.com/l.jpg", *gotLarge)

	var count int64
	require.NoError(t, db.Model(&model.Recipe{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestDeleteImagelessPassesNilURLs(t *testing.T) {
	store := NewRecipeStore(newTestDB(t))
	authorID := uuid.New()
	recipe := testRecipe(authorID)
	require.NoError(t, store.Create(context.Background(), recipe))

	called := false
	err := store.Delete(context.Background(), recipe.ID, authorID, func(thumbnailURL, largeURL *string) {
		called = true
		assert.Nil(t, thumbnailURL)
		assert.Nil(t, largeURL)
	})
	require.NoError(t, err)
	assert.True(t, called)
}

func TestDeleteWrongOwnerIsNotFound(t *testing.T) {
	db := newTestDB(t)
	store := NewRecipeStore(db)
	recipe := testRecipe(uuid.New())
	require.NoError(t, store.Create(context.Background(), recipe))

	err := store.Delete(context.Background(), recipe.ID, uuid.New(), nil)
	assert.ErrorIs(t, err, ErrRecipeNotFound)

	var count int64
	require.NoError(t, db.Model(&model.Recipe{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestGetMissingIsNotFound(t *testing.T) {
	store := NewRecipeStore(newTestDB(t))

	_, err := store.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrRecipeNotFound)
}
