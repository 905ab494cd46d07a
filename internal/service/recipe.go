package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/tastebook/backend/internal/model"
	"github.com/tastebook/backend/internal/store"
)

var ErrNothingToUpdate = errors.New("at least one field or an image is required")

// ValidationError marks caller-fixable input problems so the API layer can
// answer with a 400 instead of a 500.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

func validationError(msg string) error { return &ValidationError{msg: msg} }

// ImageUpload is the raw file part of a multipart request: undecoded bytes
// plus the declared MIME type.
type ImageUpload struct {
	Data        []byte
	ContentType string
}

// RecipeDraft is the validated input bundle for a create. It exists only for
// the duration of one pipeline invocation.
type RecipeDraft struct {
	Title              string
	Description        string
	Ingredients        []string
	Instructions       []string
	PrepTimeMinutes    int
	CookingTimeMinutes int
	ServingSize        int
	IsPublished        bool
}

func (d *RecipeDraft) Validate() error {
	if d.Title == "" {
		return validationError("title is required")
	}
	if d.PrepTimeMinutes < 0 {
		return validationError("prepTimeMinutes must not be negative")
	}
	if d.CookingTimeMinutes < 0 {
		return validationError("cookingTimeMinutes must not be negative")
	}
	if d.ServingSize < 1 {
		return validationError("servingSize must be at least 1")
	}
	return nil
}

func (d *RecipeDraft) toModel(authorID uuid.UUID) *model.Recipe {
	return &model.Recipe{
		Title:              d.Title,
		Description:        d.Description,
		Ingredients:        model.JSONBStringArray(d.Ingredients),
		Instructions:       model.JSONBStringArray(d.Instructions),
		PrepTimeMinutes:    d.PrepTimeMinutes,
		CookingTimeMinutes: d.CookingTimeMinutes,
		ServingSize:        d.ServingSize,
		IsPublished:        d.IsPublished,
		AuthorID:           authorID,
	}
}

// RecipeUpdate is the typed partial-update set. Nil pointers and nil slices
// mean "leave unchanged". Unknown field names are rejected at the API
// boundary, not silently dropped.
type RecipeUpdate struct {
	Title              *string  `json:"title"`
	Description        *string  `json:"description"`
	Ingredients        []string `json:"ingredients"`
	Instructions       []string `json:"instructions"`
	PrepTimeMinutes    *int     `json:"prepTimeMinutes"`
	CookingTimeMinutes *int     `json:"cookingTimeMinutes"`
	ServingSize        *int     `json:"servingSize"`
	IsPublished        *bool    `json:"isPublished"`
}

func (u *RecipeUpdate) IsEmpty() bool {
	return u.Title == nil && u.Description == nil &&
		u.Ingredients == nil && u.Instructions == nil &&
		u.PrepTimeMinutes == nil && u.CookingTimeMinutes == nil &&
		u.ServingSize == nil && u.IsPublished == nil
}

func (u *RecipeUpdate) Validate() error {
	if u.Title != nil && *u.Title == "" {
		return validationError("title must not be empty")
	}
	if u.PrepTimeMinutes != nil && *u.PrepTimeMinutes < 0 {
		return validationError("prepTimeMinutes must not be negative")
	}
	if u.CookingTimeMinutes != nil && *u.CookingTimeMinutes < 0 {
		return validationError("cookingTimeMinutes must not be negative")
	}
	if u.ServingSize != nil && *u.ServingSize < 1 {
		return validationError("servingSize must be at least 1")
	}
	return nil
}

// Columns maps the supplied fields onto storage column names. updated_at is
// always included so the store can tell a miss from a no-op.
func (u *RecipeUpdate) Columns() map[string]interface{} {
	columns := map[string]interface{}{
		"updated_at": time.Now().UTC(),
	}
	if u.Title != nil {
		columns["title"] = *u.Title
	}
	if u.Description != nil {
		columns["description"] = *u.Description
	}
	if u.Ingredients != nil {
		columns["ingredients"] = model.JSONBStringArray(u.Ingredients)
	}
	if u.Instructions != nil {
		columns["instructions"] = model.JSONBStringArray(u.Instructions)
	}
	if u.PrepTimeMinutes != nil {
		columns["prep_time_minutes"] = *u.PrepTimeMinutes
	}
	if u.CookingTimeMinutes != nil {
		columns["cooking_time_minutes"] = *u.CookingTimeMinutes
	}
	if u.ServingSize != nil {
		columns["serving_size"] = *u.ServingSize
	}
	if u.IsPublished != nil {
		columns["is_published"] = *u.IsPublished
	}
	return columns
}

// RecipeService drives one recipe mutation end to end: field validation,
// image transformation, object-store upload, and transactional persistence.
// It holds no per-request state; one pipeline invocation per call.
type RecipeService struct {
	store   *store.RecipeStore
	media   MediaProcessor
	objects ObjectStore
}

func NewRecipeService(recipeStore *store.RecipeStore, media MediaProcessor, objects ObjectStore) *RecipeService {
	return &RecipeService{
		store:   recipeStore,
		media:   media,
		objects: objects,
	}
}

// CreateRecipe persists a draft, running the image pipeline inside the
// insert transaction when an upload is present. Any image failure rolls the
// insert back; the row is never visible with partial image state.
func (s *RecipeService) CreateRecipe(ctx context.Context, authorID uuid.UUID, draft RecipeDraft, image *ImageUpload) (*model.Recipe, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	recipe := draft.toModel(authorID)

	if image == nil {
		if err := s.store.Create(ctx, recipe); err != nil {
			return nil, err
		}
		return recipe, nil
	}

	if err := s.store.CreateWithImages(ctx, recipe, s.processImages(ctx, authorID, image)); err != nil {
		return nil, err
	}
	return recipe, nil
}

// UpdateRecipe applies a partial update, optionally replacing the recipe's
// images. New derivatives reuse the deterministic keys, so old blobs are
// overwritten in place and need no separate deletion.
func (s *RecipeService) UpdateRecipe(ctx context.Context, recipeID, authorID uuid.UUID, update RecipeUpdate, image *ImageUpload) error {
	if err := update.Validate(); err != nil {
		return err
	}
	if update.IsEmpty() && image == nil {
		return ErrNothingToUpdate
	}

	columns := update.Columns()

	if image == nil {
		return s.store.Update(ctx, recipeID, authorID, columns)
	}
	return s.store.UpdateWithImages(ctx, recipeID, authorID, columns, s.processImages(ctx, authorID, image))
}

// DeleteRecipe removes the row, then makes a best-effort pass at the two
// blobs. Blob failures are logged for out-of-band reconciliation, never
// surfaced: the delete is final once the row is gone.
func (s *RecipeService) DeleteRecipe(ctx context.Context, recipeID, authorID uuid.UUID) error {
	return s.store.Delete(ctx, recipeID, authorID, func(thumbnailURL, largeURL *string) {
		for _, u := range []*string{thumbnailURL, largeURL} {
			if u == nil {
				continue
			}
			key, err := KeyFromURL(*u)
			if err != nil {
				log.Printf("[RecipeService] skipping blob cleanup for %s: %v", recipeID, err)
				continue
			}
			if err := s.objects.Delete(ctx, key); err != nil {
				log.Printf("[RecipeService] orphaned blob %s left after deleting recipe %s: %v", key, recipeID, err)
			}
		}
	})
}

// GetRecipe fetches one recipe by id.
func (s *RecipeService) GetRecipe(ctx context.Context, recipeID uuid.UUID) (*model.Recipe, error) {
	return s.store.Get(ctx, recipeID)
}

// processImages builds the callback that runs inside the store transaction.
// Validation happens here rather than before the transaction because the
// storage keys need the row id, which only exists once the insert ran.
func (s *RecipeService) processImages(ctx context.Context, authorID uuid.UUID, image *ImageUpload) store.ProcessImagesFunc {
	return func(recipeID uuid.UUID) (store.ImageURLs, error) {
		if err := s.media.ValidateSize(image.Data); err != nil {
			return store.ImageURLs{}, err
		}
		if err := s.media.ValidateFormat(image.ContentType); err != nil {
			return store.ImageURLs{}, err
		}

		thumbnail, err := s.media.MakeThumbnail(image.Data)
		if err != nil {
			return store.ImageURLs{}, err
		}
		large, err := s.media.MakeLarge(image.Data)
		if err != nil {
			return store.ImageURLs{}, err
		}

		thumbnailKey, largeKey := RecipeImageKeys(authorID, recipeID)

		thumbnailURL, err := s.objects.Upload(ctx, thumbnailKey, thumbnail, "image/jpeg")
		if err != nil {
			return store.ImageURLs{}, err
		}
		largeURL, err := s.objects.Upload(ctx, largeKey, large, "image/jpeg")
		if err != nil {
			return store.ImageURLs{}, err
		}

		return store.ImageURLs{ThumbnailURL: thumbnailURL, LargeURL: largeURL}, nil
	}
}
