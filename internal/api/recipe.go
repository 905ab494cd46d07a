package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tastebook/backend/internal/middleware"
	"github.com/tastebook/backend/internal/service"
	"github.com/tastebook/backend/internal/store"
)

// Form field names accepted on multipart create/update. Anything else in the
// form is rejected rather than silently dropped.
var recipeFormFields = map[string]bool{
	"title":              true,
	"description":        true,
	"ingredients":        true,
	"instructions":       true,
	"prepTimeMinutes":    true,
	"cookingTimeMinutes": true,
	"servingSize":        true,
	"isPublished":        true,
}

type RecipeHandler struct {
	recipes *service.RecipeService
	queries *service.QueryService
	auth    middleware.TokenValidator
	limiter *middleware.RateLimiter
}

func NewRecipeHandler(recipes *service.RecipeService, queries *service.QueryService, auth middleware.TokenValidator, limiter *middleware.RateLimiter) *RecipeHandler {
	return &RecipeHandler{
		recipes: recipes,
		queries: queries,
		auth:    auth,
		limiter: limiter,
	}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	recipes := router.Group("/recipes")
	{
		recipes.GET("", h.ListRecipes)
		recipes.GET("/:id", middleware.OptionalAuthMiddleware(h.auth), h.GetRecipe)

		authed := recipes.Group("", middleware.AuthMiddleware(h.auth))
		if h.limiter != nil {
			authed.Use(h.limiter.RateLimitMiddleware())
		}
		authed.GET("/author", h.ListMyRecipes)
		authed.POST("", h.CreateRecipe)
		authed.PATCH("/:id", h.UpdateRecipe)
		authed.DELETE("/:id", h.DeleteRecipe)
	}
}

// CreateRecipe accepts either a JSON body (no image) or a multipart form
// with an optional image part.
func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	authorID := currentUserID(c)

	draft, image, err := decodeCreateRequest(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	recipe, err := h.recipes.CreateRecipe(c.Request.Context(), authorID, draft, image)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, Response{
		Success: true,
		Message: "Recipe has been created successfully",
		Data:    recipe,
	})
}

// UpdateRecipe applies a partial update; absent fields are left untouched.
func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	authorID := currentUserID(c)

	recipeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid recipe id"})
		return
	}

	update, image, err := decodeUpdateRequest(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	if err := h.recipes.UpdateRecipe(c.Request.Context(), recipeID, authorID, update, image); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Message: "Recipe has been updated successfully"})
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	authorID := currentUserID(c)

	recipeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid recipe id"})
		return
	}

	if err := h.recipes.DeleteRecipe(c.Request.Context(), recipeID, authorID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Message: "Recipe has been deleted successfully"})
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", 10)

	result, err := h.queries.ListPublished(c.Request.Context(), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: result})
}

func (h *RecipeHandler) ListMyRecipes(c *gin.Context) {
	authorID := currentUserID(c)
	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", 10)

	result, err := h.queries.ListByAuthor(c.Request.Context(), authorID, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: result})
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	recipeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid recipe id"})
		return
	}

	var requestingUser *uuid.UUID
	if id, exists := c.Get("user_id"); exists {
		uid := id.(uuid.UUID)
		requestingUser = &uid
	}

	detail, err := h.queries.GetDetail(c.Request.Context(), recipeID, requestingUser)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: detail})
}

func currentUserID(c *gin.Context) uuid.UUID {
	id, _ := c.Get("user_id")
	uid, _ := id.(uuid.UUID)
	return uid
}

func queryInt(c *gin.Context, name string, fallback int) int {
	v := c.Query(name)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.GetHeader("Content-Type"), "multipart/form-data")
}

func decodeCreateRequest(c *gin.Context) (service.RecipeDraft, *service.ImageUpload, error) {
	if !isMultipart(c) {
		var req CreateRecipeRequest
		if err := strictDecodeJSON(c.Request.Body, &req); err != nil {
			return service.RecipeDraft{}, nil, err
		}
		return service.RecipeDraft{
			Title:              req.Title,
			Description:        req.Description,
			Ingredients:        req.Ingredients,
			Instructions:       req.Instructions,
			PrepTimeMinutes:    req.PrepTimeMinutes,
			CookingTimeMinutes: req.CookingTimeMinutes,
			ServingSize:        req.ServingSize,
			IsPublished:        req.IsPublished,
		}, nil, nil
	}

	form, err := c.MultipartForm()
	if err != nil {
		return service.RecipeDraft{}, nil, errors.New("invalid multipart form")
	}
	if err := rejectUnknownFormFields(form.Value); err != nil {
		return service.RecipeDraft{}, nil, err
	}

	draft := service.RecipeDraft{
		Title:        c.PostForm("title"),
		Description:  c.PostForm("description"),
		Ingredients:  c.PostFormArray("ingredients"),
		Instructions: c.PostFormArray("instructions"),
		ServingSize:  1,
	}
	if draft.PrepTimeMinutes, err = formInt(c, "prepTimeMinutes", 0); err != nil {
		return service.RecipeDraft{}, nil, err
	}
	if draft.CookingTimeMinutes, err = formInt(c, "cookingTimeMinutes", 0); err != nil {
		return service.RecipeDraft{}, nil, err
	}
	if draft.ServingSize, err = formInt(c, "servingSize", 1); err != nil {
		return service.RecipeDraft{}, nil, err
	}
	if draft.IsPublished, err = formBool(c, "isPublished"); err != nil {
		return service.RecipeDraft{}, nil, err
	}

	image, err := extractImage(c)
	if err != nil {
		return service.RecipeDraft{}, nil, err
	}
	return draft, image, nil
}

func decodeUpdateRequest(c *gin.Context) (service.RecipeUpdate, *service.ImageUpload, error) {
	if !isMultipart(c) {
		var update service.RecipeUpdate
		if err := strictDecodeJSON(c.Request.Body, &update); err != nil {
			return service.RecipeUpdate{}, nil, err
		}
		return update, nil, nil
	}

	form, err := c.MultipartForm()
	if err != nil {
		return service.RecipeUpdate{}, nil, errors.New("invalid multipart form")
	}
	if err := rejectUnknownFormFields(form.Value); err != nil {
		return service.RecipeUpdate{}, nil, err
	}

	var update service.RecipeUpdate
	if v, ok := form.Value["title"]; ok && len(v) > 0 {
		update.Title = &v[0]
	}
	if v, ok := form.Value["description"]; ok && len(v) > 0 {
		update.Description = &v[0]
	}
	if v, ok := form.Value["ingredients"]; ok {
		update.Ingredients = v
	}
	if v, ok := form.Value["instructions"]; ok {
		update.Instructions = v
	}
	if v, ok := form.Value["prepTimeMinutes"]; ok && len(v) > 0 {
		n, err := strconv.Atoi(v[0])
		if err != nil {
			return service.RecipeUpdate{}, nil, errors.New("prepTimeMinutes must be a number")
		}
		update.PrepTimeMinutes = &n
	}
	if v, ok := form.Value["cookingTimeMinutes"]; ok && len(v) > 0 {
		n, err := strconv.Atoi(v[0])
		if err != nil {
			return service.RecipeUpdate{}, nil, errors.New("cookingTimeMinutes must be a number")
		}
		update.CookingTimeMinutes = &n
	}
	if v, ok := form.Value["servingSize"]; ok && len(v) > 0 {
		n, err := strconv.Atoi(v[0])
		if err != nil {
			return service.RecipeUpdate{}, nil, errors.New("servingSize must be a number")
		}
		update.ServingSize = &n
	}
	if v, ok := form.Value["isPublished"]; ok && len(v) > 0 {
		b, err := strconv.ParseBool(v[0])
		if err != nil {
			return service.RecipeUpdate{}, nil, errors.New("isPublished must be a boolean")
		}
		update.IsPublished = &b
	}

	image, err := extractImage(c)
	if err != nil {
		return service.RecipeUpdate{}, nil, err
	}
	return update, image, nil
}

func rejectUnknownFormFields(values map[string][]string) error {
	for name := range values {
		if !recipeFormFields[name] {
			return errors.New("unknown field: " + name)
		}
	}
	return nil
}

func formInt(c *gin.Context, name string, fallback int) (int, error) {
	v := c.PostForm(name)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.New(name + " must be a number")
	}
	return n, nil
}

func formBool(c *gin.Context, name string) (bool, error) {
	v := c.PostForm(name)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, errors.New(name + " must be a boolean")
	}
	return b, nil
}

// extractImage reads the optional "image" file part. The declared MIME type
// travels with the bytes; format validation happens in the pipeline.
func extractImage(c *gin.Context) (*service.ImageUpload, error) {
	header, err := c.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, errors.New("invalid image part")
	}

	file, err := header.Open()
	if err != nil {
		return nil, errors.New("failed to read image part")
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, errors.New("failed to read image part")
	}

	return &service.ImageUpload{
		Data:        data,
		ContentType: header.Header.Get("Content-Type"),
	}, nil
}

func strictDecodeJSON(r io.Reader, v interface{}) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return errors.New("failed to read request body")
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.New("invalid request body: " + err.Error())
	}
	return nil
}

// respondError maps pipeline errors onto the response envelope. Unexpected
// failures get a generic message; internal detail stays in the log.
func respondError(c *gin.Context, err error) {
	var validationErr *service.ValidationError
	switch {
	case errors.As(err, &validationErr),
		errors.Is(err, service.ErrImageTooLarge),
		errors.Is(err, service.ErrUnsupportedImageFormat),
		errors.Is(err, service.ErrNothingToUpdate):
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
	case errors.Is(err, store.ErrRecipeNotFound):
		c.JSON(http.StatusNotFound, Response{Success: false, Error: "recipe not found"})
	default:
		log.Printf("[RecipeHandler] %s %s failed: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "internal server error"})
	}
}
