package service

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecipeImageKeys(t *testing.T) {
	authorID := uuid.New()
	recipeID := uuid.New()

	thumbnailKey, largeKey := RecipeImageKeys(authorID, recipeID)

	assert.Equal(t, fmt.Sprintf("%s/%s/thumbnail.jpg", authorID, recipeID), thumbnailKey)
	assert.Equal(t, fmt.Sprintf("%s/%s/large.jpg", authorID, recipeID), largeKey)
}

func TestKeyFromURL(t *testing.T) {
	key, err := KeyFromURL("https://tastebook-images.s3.ap-northeast-3.amazonaws.com/author/recipe/thumbnail.jpg")
	require.NoError(t, err)
	assert.Equal(t, "author/recipe/thumbnail.jpg", key)
}

func TestKeyFromURLUnescapes(t *testing.T) {
	key, err := KeyFromURL("https://bucket.s3.us-east-1.amazonaws.com/a%20b/large.jpg")
	require.NoError(t, err)
	assert.Equal(t, "a b/large.jpg", key)
}

func TestKeyFromURLEmptyKey(t *testing.T) {
	_, err := KeyFromURL("https://bucket.s3.us-east-1.amazonaws.com/")
	assert.Error(t, err)
}

func TestKeyRoundTrip(t *testing.T) {
	authorID := uuid.New()
	recipeID := uuid.New()
	thumbnailKey, _ := RecipeImageKeys(authorID, recipeID)

	url := fmt.Sprintf("https://bucket.s3.eu-west-1.amazonaws.com/%s", thumbnailKey)
	key, err := KeyFromURL(url)
	require.NoError(t, err)
	assert.Equal(t, thumbnailKey, key)
}
