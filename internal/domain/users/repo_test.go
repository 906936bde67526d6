package users_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Spok95/foodgram/internal/domain/users"
	"github.com/Spok95/foodgram/internal/infra/db/dbtest"
)

func TestRepo(t *testing.T) {
	r := users.NewRepo(dbtest.Pool(t))
	ctx := context.Background()

	bob, err := r.Create(ctx, users.NewUser{Email: "bob@example.com", Username: "bob", FirstName: "Bob", LastName: "O", PasswordHash: "h1"})
	require.NoError(t, err)
	alice, err := r.Create(ctx, users.NewUser{Email: "alice@example.com", Username: "alice", FirstName: "Alice", LastName: "L", PasswordHash: "h2"})
	require.NoError(t, err)
	assert.Equal(t, users.RoleUser, bob.Role)
	assert.Empty(t, bob.Avatar)

	tests := []struct {
		name string
		in   users.NewUser
	}{
		{name: "email taken", in: users.NewUser{Email: "bob@example.com", Username: "bob2", PasswordHash: "x"}},
		{name: "username taken", in: users.NewUser{Email: "bob2@example.com", Username: "bob", PasswordHash: "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Create(ctx, tt.in)
			assert.ErrorIs(t, err, users.ErrTaken)
		})
	}

	got, err := r.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, "h2", got.PasswordHash)

	missing, err := r.GetByID(ctx, 999)
	require.NoError(t, err)
	assert.Nil(t, missing)

	byID, err := r.GetByIDs(ctx, []int64{bob.ID, 999})
	require.NoError(t, err)
	assert.Len(t, byID, 1)
	assert.Equal(t, "bob", byID[bob.ID].Username)

	// сортировка по username, total не зависит от страницы
	page, total, err := r.List(ctx, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, page, 1)
	assert.Equal(t, "alice", page[0].Username)

	page, _, err = r.List(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "bob", page[0].Username)

	require.NoError(t, r.SetPassword(ctx, bob.ID, "h3"))
	require.NoError(t, r.SetAvatar(ctx, bob.ID, "http://foodgram.test/media/users/a.png"))
	got, err = r.GetByID(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, "h3", got.PasswordHash)
	assert.Equal(t, "http://foodgram.test/media/users/a.png", got.Avatar)
}
