package model

import "context"

// UserStore defines persistence operations for registered users.
type UserStore interface {
	Exists(ctx context.Context, username string) (bool, error)
	Matches(ctx context.Context, username, password string) (bool, error)
	Create(ctx context.Context, user User) error
}

// User represents a registered account. Credentials are immutable once
// created; there are no update or delete operations.
type User struct {
	Username string
	Password string
}
