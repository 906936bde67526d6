package recipes

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Spok95/foodgram/internal/domain/tags"
	"github.com/Spok95/foodgram/internal/shopping"
	"github.com/Spok95/foodgram/internal/shortlink"
)

var (
	ErrAlreadyFavorited = errors.New("recipes: already in favorites")
	ErrAlreadyInCart    = errors.New("recipes: already in shopping cart")
)

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

// $1 — id смотрящего пользователя.
const selectRecipe = `
	SELECT r.id, r.author_id, r.name, r.image, r.text, r.cooking_time,
	       COALESCE(r.short_link, ''), r.pub_date,
	       EXISTS (SELECT 1 FROM favorites f WHERE f.recipe_id = r.id AND f.user_id = $1),
	       EXISTS (SELECT 1 FROM cart_items c WHERE c.recipe_id = r.id AND c.user_id = $1)
	FROM recipes r
`

func scanRecipe(row pgx.Row) (*Recipe, error) {
	var rc Recipe
	if err := row.Scan(&rc.ID, &rc.AuthorID, &rc.Name, &rc.Image, &rc.Text, &rc.CookingTime,
		&rc.ShortLink, &rc.PubDate, &rc.IsFavorited, &rc.IsInShoppingCart); err != nil {
		return nil, err
	}
	return &rc, nil
}

/* Create / Update / Delete */

func (r *Repo) Create(ctx context.Context, authorID int64, in Input) (*Recipe, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var id int64
	if err := tx.QueryRow(ctx, `
		INSERT INTO recipes (author_id, name, image, text, cooking_time)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id
	`, authorID, in.Name, in.Image, in.Text, in.CookingTime).Scan(&id); err != nil {
		return nil, err
	}

	// короткая ссылка считается один раз и больше не меняется
	token, err := shortlink.Encode(id)
	if err != nil {
		return nil, err
	}
	if _, err := tx.Exec(ctx, `UPDATE recipes SET short_link = $2 WHERE id = $1`, id, token); err != nil {
		return nil, err
	}
	if err := setRelations(ctx, tx, id, in); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id, authorID)
}

func (r *Repo) Update(ctx context.Context, id, viewer int64, in Input) (*Recipe, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `
		UPDATE recipes
		SET name = $2, text = $3, cooking_time = $4,
		    image = CASE WHEN $5::text = '' THEN image ELSE $5::text END
		WHERE id = $1
	`, id, in.Name, in.Text, in.CookingTime, in.Image); err != nil {
		return nil, err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM recipe_tags WHERE recipe_id = $1`, id); err != nil {
		return nil, err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM recipe_ingredients WHERE recipe_id = $1`, id); err != nil {
		return nil, err
	}
	if err := setRelations(ctx, tx, id, in); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id, viewer)
}

func setRelations(ctx context.Context, tx pgx.Tx, recipeID int64, in Input) error {
	if _, err := tx.Exec(ctx, `
		INSERT INTO recipe_tags (recipe_id, tag_id)
		SELECT $1, unnest($2::bigint[])
	`, recipeID, in.TagIDs); err != nil {
		return fmt.Errorf("recipe tags: %w", err)
	}

	ids := make([]int64, len(in.Ingredients))
	amounts := make([]int32, len(in.Ingredients))
	for i, a := range in.Ingredients {
		ids[i] = a.IngredientID
		amounts[i] = int32(a.Amount)
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO recipe_ingredients (recipe_id, ingredient_id, amount)
		SELECT $1, unnest($2::bigint[]), unnest($3::int[])
	`, recipeID, ids, amounts); err != nil {
		return fmt.Errorf("recipe ingredients: %w", err)
	}
	return nil
}

func (r *Repo) Delete(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM recipes WHERE id = $1`, id)
	return err
}

/* Read */

func (r *Repo) GetByID(ctx context.Context, id, viewer int64) (*Recipe, error) {
	return r.getOne(ctx, selectRecipe+` WHERE r.id = $2`, viewer, id)
}

func (r *Repo) GetByShortLink(ctx context.Context, token string, viewer int64) (*Recipe, error) {
	return r.getOne(ctx, selectRecipe+` WHERE r.short_link = $2`, viewer, token)
}

func (r *Repo) getOne(ctx context.Context, q string, args ...any) (*Recipe, error) {
	rc, err := scanRecipe(r.pool.QueryRow(ctx, q, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	list := []Recipe{*rc}
	if err := r.loadRelations(ctx, list); err != nil {
		return nil, err
	}
	return &list[0], nil
}

// where собирает условия фильтра; плейсхолдеры нумеруются после уже добавленных args.
func where(f Filter, args *[]any) string {
	arg := func(v any) string {
		*args = append(*args, v)
		return fmt.Sprintf("$%d", len(*args))
	}

	var conds []string
	if len(f.TagSlugs) > 0 {
		conds = append(conds, `EXISTS (
			SELECT 1 FROM recipe_tags rt JOIN tags t ON t.id = rt.tag_id
			WHERE rt.recipe_id = r.id AND t.slug = ANY(`+arg(f.TagSlugs)+`))`)
	}
	if f.AuthorID != 0 {
		conds = append(conds, `r.author_id = `+arg(f.AuthorID))
	}
	if f.IsFavorited != nil {
		c := `EXISTS (SELECT 1 FROM favorites f WHERE f.recipe_id = r.id AND f.user_id = ` + arg(f.Viewer) + `)`
		if !*f.IsFavorited {
			c = "NOT " + c
		}
		conds = append(conds, c)
	}
	if f.IsInShoppingCart != nil {
		c := `EXISTS (SELECT 1 FROM cart_items c WHERE c.recipe_id = r.id AND c.user_id = ` + arg(f.Viewer) + `)`
		if !*f.IsInShoppingCart {
			c = "NOT " + c
		}
		conds = append(conds, c)
	}
	if len(conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conds, " AND ")
}

// List — лента рецептов, новые первыми. Возвращает страницу и общее количество.
func (r *Repo) List(ctx context.Context, f Filter) ([]Recipe, int, error) {
	// аноним не может фильтровать по своему избранному и корзине
	if f.Viewer == 0 && (f.IsFavorited != nil || f.IsInShoppingCart != nil) {
		return []Recipe{}, 0, nil
	}

	var countArgs []any
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM recipes r`+where(f, &countArgs), countArgs...,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	args := []any{f.Viewer}
	q := selectRecipe + where(f, &args) + ` ORDER BY r.pub_date DESC, r.id DESC`
	if f.Limit > 0 {
		args = append(args, f.Limit)
		q += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		q += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	out, err := r.query(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// ListByAuthor — рецепты автора; limit <= 0 — все.
func (r *Repo) ListByAuthor(ctx context.Context, authorID int64, limit int, viewer int64) ([]Recipe, error) {
	q := selectRecipe + ` WHERE r.author_id = $2 ORDER BY r.pub_date DESC, r.id DESC`
	args := []any{viewer, authorID}
	if limit > 0 {
		q += ` LIMIT $3`
		args = append(args, limit)
	}
	return r.query(ctx, q, args...)
}

func (r *Repo) query(ctx context.Context, q string, args ...any) ([]Recipe, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Recipe{}
	for rows.Next() {
		rc, err := scanRecipe(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.loadRelations(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// loadRelations подтягивает теги и ингредиенты двумя запросами на весь список.
func (r *Repo) loadRelations(ctx context.Context, list []Recipe) error {
	if len(list) == 0 {
		return nil
	}
	ids := make([]int64, len(list))
	pos := make(map[int64]int, len(list))
	for i, rc := range list {
		ids[i] = rc.ID
		pos[rc.ID] = i
		list[i].Tags = []tags.Tag{}
		list[i].Ingredients = []IngredientAmount{}
	}

	rows, err := r.pool.Query(ctx, `
		SELECT rt.recipe_id, t.id, t.name, t.slug
		FROM recipe_tags rt JOIN tags t ON t.id = rt.tag_id
		WHERE rt.recipe_id = ANY($1)
		ORDER BY t.name
	`, ids)
	if err != nil {
		return err
	}
	for rows.Next() {
		var rid int64
		var t tags.Tag
		if err := rows.Scan(&rid, &t.ID, &t.Name, &t.Slug); err != nil {
			rows.Close()
			return err
		}
		list[pos[rid]].Tags = append(list[pos[rid]].Tags, t)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = r.pool.Query(ctx, `
		SELECT ri.recipe_id, i.id, i.name, i.measurement_unit, ri.amount
		FROM recipe_ingredients ri JOIN ingredients i ON i.id = ri.ingredient_id
		WHERE ri.recipe_id = ANY($1)
		ORDER BY i.name
	`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var rid int64
		var a IngredientAmount
		if err := rows.Scan(&rid, &a.ID, &a.Name, &a.MeasurementUnit, &a.Amount); err != nil {
			return err
		}
		list[pos[rid]].Ingredients = append(list[pos[rid]].Ingredients, a)
	}
	return rows.Err()
}

// CountByAuthor — число рецептов по каждому автору из ids.
func (r *Repo) CountByAuthor(ctx context.Context, authorIDs []int64) (map[int64]int, error) {
	out := make(map[int64]int, len(authorIDs))
	if len(authorIDs) == 0 {
		return out, nil
	}
	rows, err := r.pool.Query(ctx, `
		SELECT author_id, COUNT(*) FROM recipes
		WHERE author_id = ANY($1)
		GROUP BY author_id
	`, authorIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id int64
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, err
		}
		out[id] = n
	}
	return out, rows.Err()
}

/* Избранное и корзина */

func (r *Repo) AddFavorite(ctx context.Context, userID, recipeID int64) error {
	return r.link(ctx, `INSERT INTO favorites (user_id, recipe_id) VALUES ($1,$2) ON CONFLICT DO NOTHING`,
		userID, recipeID, ErrAlreadyFavorited)
}

func (r *Repo) RemoveFavorite(ctx context.Context, userID, recipeID int64) (bool, error) {
	return r.unlink(ctx, `DELETE FROM favorites WHERE user_id = $1 AND recipe_id = $2`, userID, recipeID)
}

func (r *Repo) AddToCart(ctx context.Context, userID, recipeID int64) error {
	return r.link(ctx, `INSERT INTO cart_items (user_id, recipe_id) VALUES ($1,$2) ON CONFLICT DO NOTHING`,
		userID, recipeID, ErrAlreadyInCart)
}

func (r *Repo) RemoveFromCart(ctx context.Context, userID, recipeID int64) (bool, error) {
	return r.unlink(ctx, `DELETE FROM cart_items WHERE user_id = $1 AND recipe_id = $2`, userID, recipeID)
}

func (r *Repo) link(ctx context.Context, q string, userID, recipeID int64, dup error) error {
	tag, err := r.pool.Exec(ctx, q, userID, recipeID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return dup
	}
	return nil
}

func (r *Repo) unlink(ctx context.Context, q string, userID, recipeID int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, q, userID, recipeID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// CartContents — рецепты корзины со строками ингредиентов в порядке добавления.
func (r *Repo) CartContents(ctx context.Context, userID int64) ([]shopping.CartRecipe, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT r.id, r.name, i.name, i.measurement_unit, ri.amount
		FROM cart_items c
		JOIN recipes r ON r.id = c.recipe_id
		LEFT JOIN recipe_ingredients ri ON ri.recipe_id = r.id
		LEFT JOIN ingredients i ON i.id = ri.ingredient_id
		WHERE c.user_id = $1
		ORDER BY c.created_at, r.id, i.id
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []shopping.CartRecipe
	for rows.Next() {
		var (
			id           int64
			name         string
			ingName, unt *string
			amount       *int
		)
		if err := rows.Scan(&id, &name, &ingName, &unt, &amount); err != nil {
			return nil, err
		}
		if len(out) == 0 || out[len(out)-1].ID != id {
			out = append(out, shopping.CartRecipe{ID: id, Name: name})
		}
		if ingName == nil || unt == nil || amount == nil {
			continue
		}
		last := &out[len(out)-1]
		last.Lines = append(last.Lines, shopping.Line{
			Ingredient: *ingName,
			Unit:       *unt,
			Amount:     float64(*amount),
		})
	}
	return out, rows.Err()
}
