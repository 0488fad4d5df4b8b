package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/readsync/kosync-server/internal/model"
)

var _ model.UserStore = (*UserRepository)(nil)

type UserRepository struct {
	db *Connection
}

func NewUserRepository(db *Connection) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

func (r *UserRepository) Exists(ctx context.Context, username string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`

	if err := r.db.QueryRow(ctx, query, username).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}

	return exists, nil
}

func (r *UserRepository) Matches(ctx context.Context, username, password string) (bool, error) {
	var matches bool
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1 AND password = $2)`

	if err := r.db.QueryRow(ctx, query, username, password).Scan(&matches); err != nil {
		return false, fmt.Errorf("failed to match credentials: %w", err)
	}

	return matches, nil
}

func (r *UserRepository) Create(ctx context.Context, user model.User) error {
	query := `INSERT INTO users (username, password) VALUES ($1, $2)`

	if _, err := r.db.Exec(ctx, query, user.Username, user.Password); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return model.ErrDuplicateUser
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}
