package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rocketscienceinc/xox-backend/internal/apperror"
	"github.com/rocketscienceinc/xox-backend/internal/entity"
)

const (
	insertSession = `INSERT INTO sessions (data, version, created_at, updated_at)
VALUES ($1, 1, $2, $2) RETURNING id`

	selectSession = `SELECT data, version, created_at, updated_at FROM sessions WHERE id = $1`

	updateSession = `UPDATE sessions SET data = $1, version = version + 1, updated_at = $2
WHERE id = $3 AND version = $4`

	sessionExists = `SELECT EXISTS (SELECT 1 FROM sessions WHERE id = $1)`
)

// SessionRepository stores the session document in a JSONB column. The id,
// version and timestamps live in their own columns and win over the document.
type SessionRepository struct {
	pool *pgxpool.Pool
}

func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{
		pool: pool,
	}
}

func (that *SessionRepository) Create(ctx context.Context, session *entity.Session) (*entity.Session, error) {
	now := time.Now().UTC()

	created := session.Clone()
	created.Version = 1
	created.CreatedAt = now
	created.UpdatedAt = now

	sessionJSON, err := json.Marshal(created)
	if err != nil {
		return nil, fmt.Errorf("could not marshal session: %w", err)
	}

	var id int64
	if err = that.pool.QueryRow(ctx, insertSession, string(sessionJSON), now).Scan(&id); err != nil {
		return nil, fmt.Errorf("failed to insert session: %w", err)
	}

	created.ID = strconv.FormatInt(id, 10)

	return created, nil
}

func (that *SessionRepository) GetByID(ctx context.Context, id string) (*entity.Session, error) {
	key, err := parseID(id)
	if err != nil {
		return nil, err
	}

	var (
		data    []byte
		session entity.Session
	)

	err = that.pool.QueryRow(ctx, selectSession, key).
		Scan(&data, &session.Version, &session.CreatedAt, &session.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("session %s: %w", id, apperror.ErrNotFound)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get session by id: %w", err)
	}

	version, createdAt, updatedAt := session.Version, session.CreatedAt, session.UpdatedAt

	if err = json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	session.ID = id
	session.Version = version
	session.CreatedAt = createdAt.UTC()
	session.UpdatedAt = updatedAt.UTC()

	return &session, nil
}

func (that *SessionRepository) Update(ctx context.Context, session *entity.Session) (*entity.Session, error) {
	key, err := parseID(session.ID)
	if err != nil {
		return nil, err
	}

	next := session.Clone()
	next.Version++
	next.UpdatedAt = time.Now().UTC()

	sessionJSON, err := json.Marshal(next)
	if err != nil {
		return nil, fmt.Errorf("could not marshal session: %w", err)
	}

	tag, err := that.pool.Exec(ctx, updateSession, string(sessionJSON), next.UpdatedAt, key, session.Version)
	if err != nil {
		return nil, fmt.Errorf("failed to update session: %w", err)
	}

	if tag.RowsAffected() == 1 {
		return next, nil
	}

	var exists bool
	if err = that.pool.QueryRow(ctx, sessionExists, key).Scan(&exists); err != nil {
		return nil, fmt.Errorf("failed to check session: %w", err)
	}

	if !exists {
		return nil, fmt.Errorf("session %s: %w", session.ID, apperror.ErrNotFound)
	}

	return nil, fmt.Errorf("%w: session %s was modified concurrently", apperror.ErrStoreConflict, session.ID)
}

// parseID - ids are decimal sequence values; anything else can't exist.
func parseID(id string) (int64, error) {
	key, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("session %s: %w", id, apperror.ErrNotFound)
	}

	return key, nil
}
