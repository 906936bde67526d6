package recipes

import (
	"time"

	"github.com/Spok95/foodgram/internal/domain/tags"
)

type Recipe struct {
	ID          int64
	AuthorID    int64
	Name        string
	Image       string
	Text        string
	CookingTime int
	ShortLink   string
	PubDate     time.Time

	Tags        []tags.Tag
	Ingredients []IngredientAmount

	// считаются относительно смотрящего пользователя
	IsFavorited      bool
	IsInShoppingCart bool
}

// IngredientAmount — ингредиент в составе рецепта.
type IngredientAmount struct {
	ID              int64
	Name            string
	MeasurementUnit string
	Amount          int
}

type Amount struct {
	IngredientID int64
	Amount       int
}

// Input — данные для создания/обновления. Пустой Image при обновлении — оставить старую картинку.
type Input struct {
	Name        string
	Image       string
	Text        string
	CookingTime int
	TagIDs      []int64
	Ingredients []Amount
}

type Filter struct {
	Viewer           int64 // 0 — аноним
	TagSlugs         []string
	AuthorID         int64
	IsFavorited      *bool
	IsInShoppingCart *bool
	Limit            int
	Offset           int
}
