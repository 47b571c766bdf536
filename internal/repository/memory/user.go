package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/rocketscienceinc/xox-backend/internal/apperror"
	"github.com/rocketscienceinc/xox-backend/internal/entity"
)

type UserRepository struct {
	mu    sync.RWMutex
	users map[string]entity.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		users: make(map[string]entity.User),
	}
}

func (that *UserRepository) CreateOrUpdate(_ context.Context, user *entity.User) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.users[user.ID] = *user

	return nil
}

func (that *UserRepository) GetByID(_ context.Context, id string) (*entity.User, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	user, ok := that.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, apperror.ErrNotFound)
	}

	return &user, nil
}
