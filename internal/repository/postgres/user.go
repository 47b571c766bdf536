package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rocketscienceinc/xox-backend/internal/apperror"
	"github.com/rocketscienceinc/xox-backend/internal/entity"
)

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{
		pool: pool,
	}
}

func (that *UserRepository) CreateOrUpdate(ctx context.Context, user *entity.User) error {
	_, err := that.pool.Exec(ctx,
		`INSERT INTO users (id, mark) VALUES ($1, $2) ON CONFLICT (id) DO UPDATE SET mark = EXCLUDED.mark`,
		user.ID, user.Mark)
	if err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}

	return nil
}

func (that *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	user := entity.User{ID: id}

	err := that.pool.QueryRow(ctx, `SELECT mark FROM users WHERE id = $1`, id).Scan(&user.Mark)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", id, apperror.ErrNotFound)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}

	return &user, nil
}
