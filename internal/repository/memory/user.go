package memory

import (
	"context"
	"sync"

	"github.com/readsync/kosync-server/internal/model"
)

var _ model.UserStore = (*UserRepository)(nil)

// UserRepository is a process-local UserStore. Used when no database
// DSN is configured and as the substrate for tests.
type UserRepository struct {
	mu    sync.RWMutex
	users map[string]model.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		users: make(map[string]model.User),
	}
}

func (r *UserRepository) Exists(ctx context.Context, username string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.users[username]
	return ok, nil
}

func (r *UserRepository) Matches(ctx context.Context, username, password string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[username]
	return ok && user.Password == password, nil
}

func (r *UserRepository) Create(ctx context.Context, user model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.Username]; ok {
		return model.ErrDuplicateUser
	}
	r.users[user.Username] = user

	return nil
}
