package ingredients

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

// List ищет ингредиенты по началу названия без учёта регистра; пустой prefix — все.
func (r *Repo) List(ctx context.Context, prefix string) ([]Ingredient, error) {
	prefix = strings.TrimSpace(prefix)

	var rows pgx.Rows
	var err error
	if prefix == "" {
		rows, err = r.pool.Query(ctx, `
			SELECT id, name, measurement_unit FROM ingredients ORDER BY name
		`)
	} else {
		like := escapeLike(strings.ToLower(prefix)) + "%"
		rows, err = r.pool.Query(ctx, `
			SELECT id, name, measurement_unit FROM ingredients
			WHERE LOWER(name) LIKE $1
			ORDER BY name
		`, like)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Ingredient{}
	for rows.Next() {
		var i Ingredient
		if err := rows.Scan(&i.ID, &i.Name, &i.MeasurementUnit); err != nil {
			return nil, err
		}
		out = append(out, i)
	}
	return out, rows.Err()
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (r *Repo) GetByID(ctx context.Context, id int64) (*Ingredient, error) {
	var i Ingredient
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, measurement_unit FROM ingredients WHERE id = $1
	`, id).Scan(&i.ID, &i.Name, &i.MeasurementUnit)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &i, nil
}

func (r *Repo) GetOrCreate(ctx context.Context, name, unit string) (*Ingredient, bool, error) {
	var i Ingredient
	err := r.pool.QueryRow(ctx, `
		INSERT INTO ingredients (name, measurement_unit) VALUES ($1, $2)
		ON CONFLICT (name, measurement_unit) DO NOTHING
		RETURNING id, name, measurement_unit
	`, name, unit).Scan(&i.ID, &i.Name, &i.MeasurementUnit)
	if err == nil {
		return &i, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, err
	}
	err = r.pool.QueryRow(ctx, `
		SELECT id, name, measurement_unit FROM ingredients
		WHERE name = $1 AND measurement_unit = $2
	`, name, unit).Scan(&i.ID, &i.Name, &i.MeasurementUnit)
	if err != nil {
		return nil, false, err
	}
	return &i, false, nil
}

func (r *Repo) CountExisting(ctx context.Context, ids []int64) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM ingredients WHERE id = ANY($1)`, ids).Scan(&n)
	return n, err
}
