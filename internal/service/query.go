package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tastebook/backend/internal/model"
	"github.com/tastebook/backend/internal/store"
)

// RecipeSummary is one row of the public listing.
type RecipeSummary struct {
	RecipeID           uuid.UUID `gorm:"column:id" json:"recipeId"`
	Title              string    `json:"title"`
	PrepTimeMinutes    int       `json:"prepTimeMinutes"`
	CookingTimeMinutes int       `json:"cookingTimeMinutes"`
	ServingSize        int       `json:"servingSize"`
	ImageURL           *string   `gorm:"column:thumbnail_url" json:"imageUrl"`
	AuthorName         string    `gorm:"column:display_name" json:"authorName"`
	AuthorAvatarURL    *string   `gorm:"column:avatar_url" json:"authorAvatarUrl"`
}

// AuthorRecipeSummary is one row of an author's own listing, drafts included.
type AuthorRecipeSummary struct {
	RecipeID           uuid.UUID `gorm:"column:id" json:"recipeId"`
	Title              string    `json:"title"`
	PrepTimeMinutes    int       `json:"prepTimeMinutes"`
	CookingTimeMinutes int       `json:"cookingTimeMinutes"`
	ServingSize        int       `json:"servingSize"`
	ImageURL           *string   `gorm:"column:thumbnail_url" json:"imageUrl"`
	IsPublished        bool      `json:"isPublished"`
}

// RecipePage is a page of the public listing.
type RecipePage struct {
	Recipes    []RecipeSummary `json:"recipes"`
	TotalItems int64           `json:"totalItems"`
	HasMore    bool            `json:"hasMore"`
}

// AuthorRecipePage is a page of an author's listing plus their draft count.
type AuthorRecipePage struct {
	Recipes    []AuthorRecipeSummary `json:"recipes"`
	TotalItems int64                 `json:"totalItems"`
	DraftItems int64                 `json:"draftItems"`
	HasMore    bool                  `json:"hasMore"`
}

// RecipeDetail is the full single-recipe view.
type RecipeDetail struct {
	ID                 uuid.UUID `json:"id"`
	Title              string    `json:"title"`
	Description        string    `json:"description"`
	Ingredients        []string  `json:"ingredients"`
	Instructions       []string  `json:"instructions"`
	PrepTimeMinutes    int       `json:"prepTimeMinutes"`
	CookingTimeMinutes int       `json:"cookingTimeMinutes"`
	ServingSize        int       `json:"servingSize"`
	ImageURL           *string   `json:"imageUrl"`
	UpdatedAt          time.Time `json:"updatedAt"`
	AuthorName         string    `json:"authorName"`
	AuthorAvatarURL    *string   `json:"authorAvatarUrl"`
	IsOwner            bool      `json:"isOwner"`
}

// QueryService is the read side: listing and detail formatting.
type QueryService struct {
	db *gorm.DB
}

func NewQueryService(db *gorm.DB) *QueryService {
	return &QueryService{db: db}
}

// ListPublished returns one page of published recipes with author data.
// hasMore is page*limit <= totalItems, matching the public API contract.
func (s *QueryService) ListPublished(ctx context.Context, page, limit int) (*RecipePage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	var total int64
	if err := s.db.WithContext(ctx).Model(&model.Recipe{}).
		Where("is_published = ?", true).
		Count(&total).Error; err != nil {
		return nil, err
	}

	recipes := []RecipeSummary{}
	err := s.db.WithContext(ctx).Model(&model.Recipe{}).
		Select("recipes.id, recipes.title, recipes.prep_time_minutes, recipes.cooking_time_minutes, recipes.serving_size, recipes.thumbnail_url, users.display_name, users.avatar_url").
		Joins("JOIN users ON users.id = recipes.author_id").
		Where("recipes.is_published = ?", true).
		Order("recipes.created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Scan(&recipes).Error
	if err != nil {
		return nil, err
	}

	return &RecipePage{
		Recipes:    recipes,
		TotalItems: total,
		HasMore:    int64(page*limit) <= total,
	}, nil
}

// ListByAuthor returns one page of the author's recipes, published or not,
// along with how many of their recipes are still drafts.
func (s *QueryService) ListByAuthor(ctx context.Context, authorID uuid.UUID, page, limit int) (*AuthorRecipePage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	var total int64
	if err := s.db.WithContext(ctx).Model(&model.Recipe{}).
		Where("author_id = ?", authorID).
		Count(&total).Error; err != nil {
		return nil, err
	}

	var drafts int64
	if err := s.db.WithContext(ctx).Model(&model.Recipe{}).
		Where("author_id = ? AND is_published = ?", authorID, false).
		Count(&drafts).Error; err != nil {
		return nil, err
	}

	recipes := []AuthorRecipeSummary{}
	err := s.db.WithContext(ctx).Model(&model.Recipe{}).
		Select("id, title, prep_time_minutes, cooking_time_minutes, serving_size, thumbnail_url, is_published").
		Where("author_id = ?", authorID).
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Scan(&recipes).Error
	if err != nil {
		return nil, err
	}

	return &AuthorRecipePage{
		Recipes:    recipes,
		TotalItems: total,
		DraftItems: drafts,
		HasMore:    int64(page*limit) <= total,
	}, nil
}

// GetDetail returns the full recipe view. The large derivative is the detail
// image; isOwner is derived from the requesting user, when known.
func (s *QueryService) GetDetail(ctx context.Context, recipeID uuid.UUID, requestingUserID *uuid.UUID) (*RecipeDetail, error) {
	var recipe model.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, store.ErrRecipeNotFound
		}
		return nil, err
	}

	var author model.User
	if err := s.db.WithContext(ctx).First(&author, "id = ?", recipe.AuthorID).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	return &RecipeDetail{
		ID:                 recipe.ID,
		Title:              recipe.Title,
		Description:        recipe.Description,
		Ingredients:        recipe.Ingredients,
		Instructions:       recipe.Instructions,
		PrepTimeMinutes:    recipe.PrepTimeMinutes,
		CookingTimeMinutes: recipe.CookingTimeMinutes,
		ServingSize:        recipe.ServingSize,
		ImageURL:           recipe.LargeURL,
		UpdatedAt:          recipe.UpdatedAt,
		AuthorName:         author.DisplayName,
		AuthorAvatarURL:    author.AvatarURL,
		IsOwner:            requestingUserID != nil && *requestingUserID == recipe.AuthorID,
	}, nil
}
