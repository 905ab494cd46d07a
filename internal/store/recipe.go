// Package store owns relational persistence of recipes, including the
// transaction-scoped create/update operations that run an image-processing
// callback between two writes and roll everything back if it fails.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tastebook/backend/internal/model"
)

// ErrRecipeNotFound covers both a missing id and an ownership mismatch, so
// callers cannot distinguish "not yours" from "does not exist".
var ErrRecipeNotFound = errors.New("recipe not found")

// ImageURLs is what an image-processing callback hands back for the final
// write of a transactional create/update.
type ImageURLs struct {
	ThumbnailURL string
	LargeURL     string
}

// ProcessImagesFunc runs inside an open transaction, with the row already
// inserted or updated but not yet visible to readers. Returning an error
// rolls the whole transaction back.
type ProcessImagesFunc func(recipeID uuid.UUID) (ImageURLs, error)

// CleanupImagesFunc receives the image URLs that were on a deleted row.
// It runs after the row is gone; its failures do not undo the delete.
type CleanupImagesFunc func(thumbnailURL, largeURL *string)

// RecipeStore handles recipe persistence
type RecipeStore struct {
	db *gorm.DB
	// txTimeout bounds transactions that embed object-store round trips,
	// so it is much longer than a single-statement operation needs.
	txTimeout time.Duration
}

func NewRecipeStore(db *gorm.DB) *RecipeStore {
	return &RecipeStore{
		db:        db,
		txTimeout: 60 * time.Second,
	}
}

// Create inserts a recipe with no image URLs set.
func (s *RecipeStore) Create(ctx context.Context, recipe *model.Recipe) error {
	return s.db.WithContext(ctx).Create(recipe).Error
}

// CreateWithImages inserts the recipe, invokes process with the new row id
// while the transaction is still open, then writes the returned URLs onto
// the same row and commits. If process fails nothing is persisted.
func (s *RecipeStore) CreateWithImages(ctx context.Context, recipe *model.Recipe, process ProcessImagesFunc) error {
	// Once the transaction opens it runs to commit or rollback on its own
	// budget; a caller-side timeout must not abandon it mid-flight.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.txTimeout)
	defer cancel()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(recipe).Error; err != nil {
			return err
		}

		urls, err := process(recipe.ID)
		if err != nil {
			return err
		}

		if err := tx.Model(&model.Recipe{}).Where("id = ?", recipe.ID).Updates(map[string]interface{}{
			"thumbnail_url": urls.ThumbnailURL,
			"large_url":     urls.LargeURL,
		}).Error; err != nil {
			return err
		}

		recipe.ThumbnailURL = &urls.ThumbnailURL
		recipe.LargeURL = &urls.LargeURL
		return nil
	})
}

// Update applies the given column values to the recipe owned by authorID.
// The columns map always carries updated_at, so zero affected rows means the
// (id, author_id) pair matched nothing.
func (s *RecipeStore) Update(ctx context.Context, recipeID, authorID uuid.UUID, columns map[string]interface{}) error {
	result := s.db.WithContext(ctx).Model(&model.Recipe{}).
		Where("id = ? AND author_id = ?", recipeID, authorID).
		Updates(columns)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRecipeNotFound
	}
	return nil
}

// UpdateWithImages applies the scalar columns, invokes process inside the
// same transaction, then writes the returned URLs and commits. Rollback on
// process failure leaves the row untouched.
func (s *RecipeStore) UpdateWithImages(ctx context.Context, recipeID, authorID uuid.UUID, columns map[string]interface{}, process ProcessImagesFunc) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.txTimeout)
	defer cancel()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.Recipe{}).
			Where("id = ? AND author_id = ?", recipeID, authorID).
			Updates(columns)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrRecipeNotFound
		}

		urls, err := process(recipeID)
		if err != nil {
			return err
		}

		return tx.Model(&model.Recipe{}).Where("id = ?", recipeID).Updates(map[string]interface{}{
			"thumbnail_url": urls.ThumbnailURL,
			"large_url":     urls.LargeURL,
		}).Error
	})
}

// Delete removes the recipe owned by authorID, then hands the URLs that were
// on the row to cleanup. The delete is final once the row is gone; cleanup
// failures are the callback's problem to log.
func (s *RecipeStore) Delete(ctx context.Context, recipeID, authorID uuid.UUID, cleanup CleanupImagesFunc) error {
	var recipe model.Recipe
	err := s.db.WithContext(ctx).
		First(&recipe, "id = ? AND author_id = ?", recipeID, authorID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRecipeNotFound
		}
		return err
	}

	result := s.db.WithContext(ctx).
		Where("id = ? AND author_id = ?", recipeID, authorID).
		Delete(&model.Recipe{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRecipeNotFound
	}

	if cleanup != nil {
		cleanup(recipe.ThumbnailURL, recipe.LargeURL)
	}
	return nil
}

// Get fetches one recipe by id regardless of owner.
func (s *RecipeStore) Get(ctx context.Context, recipeID uuid.UUID) (*model.Recipe, error) {
	var recipe model.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}
	return &recipe, nil
}
