package subscriptions

import "time"

// Subscription — подписка follower на автора рецептов.
type Subscription struct {
	FollowerID int64
	AuthorID   int64
	CreatedAt  time.Time
}
