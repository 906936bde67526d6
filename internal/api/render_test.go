package api

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Spok95/foodgram/internal/domain/recipes"
	"github.com/Spok95/foodgram/internal/domain/tags"
	"github.com/Spok95/foodgram/internal/domain/users"
)

func TestRenderUser(t *testing.T) {
	u := users.User{ID: 7, Email: "a@example.com", Username: "alice"}

	anon := renderUser(u, ViewerContext{Subscribed: map[int64]bool{7: true}})
	assert.False(t, anon.IsSubscribed)
	assert.Nil(t, anon.Avatar)

	u.Avatar = "/media/avatars/a.png"
	got := renderUser(u, ViewerContext{Viewer: 1, Subscribed: map[int64]bool{7: true}})
	assert.True(t, got.IsSubscribed)
	if assert.NotNil(t, got.Avatar) {
		assert.Equal(t, "/media/avatars/a.png", *got.Avatar)
	}
}

func TestRenderRecipe(t *testing.T) {
	rc := recipes.Recipe{
		ID: 3, AuthorID: 7, Name: "Суп", Image: "/media/recipes/s.png", CookingTime: 40,
		Tags:             []tags.Tag{{ID: 2, Name: "Обед", Slug: "lunch"}},
		Ingredients:      []recipes.IngredientAmount{{ID: 1, Name: "вода", MeasurementUnit: "мл", Amount: 500}},
		IsFavorited:      true,
		IsInShoppingCart: true,
	}
	author := users.User{ID: 7, Username: "alice"}

	got := renderRecipe(rc, author, ViewerContext{Viewer: 1})
	assert.True(t, got.IsFavorited)
	assert.True(t, got.IsInShoppingCart)
	assert.Equal(t, []TagDTO{{ID: 2, Name: "Обед", Slug: "lunch"}}, got.Tags)
	assert.Equal(t, []RecipeIngredientDTO{{ID: 1, Name: "вода", MeasurementUnit: "мл", Amount: 500}}, got.Ingredients)
	assert.Equal(t, "alice", got.Author.Username)

	anon := renderRecipe(rc, author, ViewerContext{})
	assert.False(t, anon.IsFavorited)
	assert.False(t, anon.IsInShoppingCart)

	empty := renderRecipe(recipes.Recipe{ID: 4}, author, ViewerContext{})
	assert.NotNil(t, empty.Tags)
	assert.NotNil(t, empty.Ingredients)
}

func TestRenderUserWithRecipes(t *testing.T) {
	list := []recipes.Recipe{{ID: 1, Name: "Омлет", CookingTime: 10}}
	got := renderUserWithRecipes(users.User{ID: 7}, list, 5, ViewerContext{Viewer: 1, Subscribed: map[int64]bool{7: true}})
	assert.True(t, got.IsSubscribed)
	assert.Equal(t, []RecipeShortDTO{{ID: 1, Name: "Омлет", CookingTime: 10}}, got.Recipes)
	assert.Equal(t, 5, got.RecipesCount)
}
