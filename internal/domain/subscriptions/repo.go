package subscriptions

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Spok95/foodgram/internal/domain/users"
)

var (
	ErrAlreadySubscribed = errors.New("subscriptions: already subscribed")
	ErrSelf              = errors.New("subscriptions: cannot subscribe to yourself")
)

type Repo struct{ db *pgxpool.Pool }

func NewRepo(db *pgxpool.Pool) *Repo { return &Repo{db: db} }

func (r *Repo) Subscribe(ctx context.Context, followerID, authorID int64) error {
	if followerID == authorID {
		return ErrSelf
	}
	tag, err := r.db.Exec(ctx, `
		INSERT INTO subscriptions (follower_id, author_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, followerID, authorID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAlreadySubscribed
	}
	return nil
}

// Unsubscribe возвращает false, если подписки не было.
func (r *Repo) Unsubscribe(ctx context.Context, followerID, authorID int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM subscriptions WHERE follower_id = $1 AND author_id = $2
	`, followerID, authorID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// SubscribedTo — на кого из authorIDs подписан follower.
func (r *Repo) SubscribedTo(ctx context.Context, followerID int64, authorIDs []int64) (map[int64]bool, error) {
	out := make(map[int64]bool, len(authorIDs))
	if followerID == 0 || len(authorIDs) == 0 {
		return out, nil
	}
	rows, err := r.db.Query(ctx, `
		SELECT author_id FROM subscriptions
		WHERE follower_id = $1 AND author_id = ANY($2)
	`, followerID, authorIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out[id] = true
	}
	return out, rows.Err()
}

// ListAuthors — авторы, на которых подписан пользователь, по дате подписки.
func (r *Repo) ListAuthors(ctx context.Context, followerID int64, limit, offset int) ([]users.User, int, error) {
	var total int
	if err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM subscriptions WHERE follower_id = $1`, followerID,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Query(ctx, `
		SELECT u.id, u.email, u.username, u.first_name, u.last_name, u.avatar, u.role, u.created_at, u.updated_at
		FROM subscriptions s
		JOIN users u ON u.id = s.author_id
		WHERE s.follower_id = $1
		ORDER BY s.created_at DESC, s.author_id DESC
		LIMIT $2 OFFSET $3
	`, followerID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []users.User
	for rows.Next() {
		var u users.User
		if err := rows.Scan(&u.ID, &u.Email, &u.Username, &u.FirstName, &u.LastName,
			&u.Avatar, &u.Role, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, u)
	}
	return out, total, rows.Err()
}
