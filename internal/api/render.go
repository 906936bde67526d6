package api

import (
	"net/url"

	"github.com/Spok95/foodgram/internal/domain/ingredients"
	"github.com/Spok95/foodgram/internal/domain/recipes"
	"github.com/Spok95/foodgram/internal/domain/tags"
	"github.com/Spok95/foodgram/internal/domain/users"
)

// ViewerContext — всё, что зависит от смотрящего. Передаётся в render явно.
type ViewerContext struct {
	Viewer     int64 // 0 — аноним
	Query      url.Values
	Subscribed map[int64]bool // авторы, на которых подписан Viewer
}

type TagDTO struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type IngredientDTO struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}

type UserDTO struct {
	Email        string  `json:"email"`
	ID           int64   `json:"id"`
	Username     string  `json:"username"`
	FirstName    string  `json:"first_name"`
	LastName     string  `json:"last_name"`
	IsSubscribed bool    `json:"is_subscribed"`
	Avatar       *string `json:"avatar"`
}

type UserCreatedDTO struct {
	Email     string `json:"email"`
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type RecipeIngredientDTO struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}

type RecipeDTO struct {
	ID               int64                 `json:"id"`
	Tags             []TagDTO              `json:"tags"`
	Author           UserDTO               `json:"author"`
	Ingredients      []RecipeIngredientDTO `json:"ingredients"`
	IsFavorited      bool                  `json:"is_favorited"`
	IsInShoppingCart bool                  `json:"is_in_shopping_cart"`
	Name             string                `json:"name"`
	Image            string                `json:"image"`
	Text             string                `json:"text"`
	CookingTime      int                   `json:"cooking_time"`
}

type RecipeShortDTO struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	CookingTime int    `json:"cooking_time"`
}

type UserWithRecipesDTO struct {
	UserDTO
	Recipes      []RecipeShortDTO `json:"recipes"`
	RecipesCount int              `json:"recipes_count"`
}

type AvatarDTO struct {
	Avatar string `json:"avatar"`
}

type ShortLinkDTO struct {
	ShortLink string `json:"short-link"`
}

func renderTag(t tags.Tag) TagDTO {
	return TagDTO{ID: t.ID, Name: t.Name, Slug: t.Slug}
}

func renderTags(list []tags.Tag) []TagDTO {
	out := make([]TagDTO, len(list))
	for i, t := range list {
		out[i] = renderTag(t)
	}
	return out
}

func renderIngredient(i ingredients.Ingredient) IngredientDTO {
	return IngredientDTO{ID: i.ID, Name: i.Name, MeasurementUnit: i.MeasurementUnit}
}

func renderIngredients(list []ingredients.Ingredient) []IngredientDTO {
	out := make([]IngredientDTO, len(list))
	for i, in := range list {
		out[i] = renderIngredient(in)
	}
	return out
}

func renderUser(u users.User, vc ViewerContext) UserDTO {
	dto := UserDTO{
		Email:     u.Email,
		ID:        u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		// аноним ни на кого не подписан
		IsSubscribed: vc.Viewer != 0 && vc.Subscribed[u.ID],
	}
	if u.Avatar != "" {
		a := u.Avatar
		dto.Avatar = &a
	}
	return dto
}

func renderUserCreated(u users.User) UserCreatedDTO {
	return UserCreatedDTO{Email: u.Email, ID: u.ID, Username: u.Username, FirstName: u.FirstName, LastName: u.LastName}
}

func renderRecipe(rc recipes.Recipe, author users.User, vc ViewerContext) RecipeDTO {
	ings := make([]RecipeIngredientDTO, len(rc.Ingredients))
	for i, a := range rc.Ingredients {
		ings[i] = RecipeIngredientDTO{ID: a.ID, Name: a.Name, MeasurementUnit: a.MeasurementUnit, Amount: a.Amount}
	}
	return RecipeDTO{
		ID:               rc.ID,
		Tags:             renderTags(rc.Tags),
		Author:           renderUser(author, vc),
		Ingredients:      ings,
		IsFavorited:      vc.Viewer != 0 && rc.IsFavorited,
		IsInShoppingCart: vc.Viewer != 0 && rc.IsInShoppingCart,
		Name:             rc.Name,
		Image:            rc.Image,
		Text:             rc.Text,
		CookingTime:      rc.CookingTime,
	}
}

func renderRecipeShort(rc recipes.Recipe) RecipeShortDTO {
	return RecipeShortDTO{ID: rc.ID, Name: rc.Name, Image: rc.Image, CookingTime: rc.CookingTime}
}

func renderUserWithRecipes(u users.User, list []recipes.Recipe, total int, vc ViewerContext) UserWithRecipesDTO {
	short := make([]RecipeShortDTO, len(list))
	for i, rc := range list {
		short[i] = renderRecipeShort(rc)
	}
	return UserWithRecipesDTO{UserDTO: renderUser(u, vc), Recipes: short, RecipesCount: total}
}
