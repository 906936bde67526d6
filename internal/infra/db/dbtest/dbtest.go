// Package dbtest поднимает тестовую базу из FOODGRAM_TEST_DSN для интеграционных тестов репозиториев.
package dbtest

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/Spok95/foodgram/internal/infra/db"
)

// lockKey сериализует тесты разных пакетов, которые делят одну базу.
const lockKey = 7401

// Pool накатывает миграции и очищает таблицы. Без FOODGRAM_TEST_DSN тест пропускается.
// Advisory lock держится до конца теста.
func Pool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("FOODGRAM_TEST_DSN")
	if dsn == "" {
		t.Skip("FOODGRAM_TEST_DSN not set")
	}
	ctx := context.Background()

	pool, err := db.Connect(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	conn, err := pool.Acquire(ctx)
	require.NoError(t, err)
	_, err = conn.Exec(ctx, `SELECT pg_advisory_lock($1)`, lockKey)
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = conn.Exec(context.Background(), `SELECT pg_advisory_unlock($1)`, lockKey)
		conn.Release()
	})

	require.NoError(t, db.Migrate(dsn))
	_, err = pool.Exec(ctx, `
		TRUNCATE users, tags, ingredients, recipes, recipe_tags, recipe_ingredients,
		         favorites, cart_items, subscriptions
		RESTART IDENTITY CASCADE
	`)
	require.NoError(t, err)
	return pool
}
