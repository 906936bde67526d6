package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signup struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Username string `json:"username" validate:"required,max=150,username"`
	Password string `json:"password" validate:"required,max=150"`
}

type amount struct {
	ID     int64 `json:"id" validate:"gte=1"`
	Amount int   `json:"amount" validate:"gte=1"`
}

type recipe struct {
	Tags        []int64  `json:"tags" validate:"min=1,unique"`
	Ingredients []amount `json:"ingredients" validate:"min=1,dive"`
	CookingTime int      `json:"cooking_time" validate:"gte=1,lte=32000"`
	Slug        string   `json:"slug" validate:"omitempty,slug"`
}

func TestStructValid(t *testing.T) {
	assert.NoError(t, Struct(&signup{Email: "a@b.ru", Username: "chef.ivan", Password: "x"}))
}

func TestStructErrors(t *testing.T) {
	tests := []struct {
		name   string
		in     any
		fields []string
	}{
		{
			name:   "username me",
			in:     &signup{Email: "a@b.ru", Username: "Me", Password: "x"},
			fields: []string{"username"},
		},
		{
			name:   "bad username and email",
			in:     &signup{Email: "nope", Username: "bad name", Password: "x"},
			fields: []string{"email", "username"},
		},
		{
			name:   "username too long",
			in:     &signup{Email: "a@b.ru", Username: strings.Repeat("a", 151), Password: "x"},
			fields: []string{"username"},
		},
		{
			name:   "empty lists and bad amount",
			in:     &recipe{Tags: []int64{}, Ingredients: []amount{{ID: 1, Amount: 0}}, CookingTime: 0},
			fields: []string{"tags", "ingredients", "cooking_time"},
		},
		{
			name:   "duplicate tags and bad slug",
			in:     &recipe{Tags: []int64{1, 1}, Ingredients: []amount{{ID: 1, Amount: 1}}, CookingTime: 5, Slug: "с пробелом"},
			fields: []string{"tags", "slug"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(tt.in)
			require.Error(t, err)
			var verrs Errors
			require.ErrorAs(t, err, &verrs)
			for _, f := range tt.fields {
				assert.Contains(t, verrs, f)
			}
			assert.Len(t, verrs, len(tt.fields))
		})
	}
}
