package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/xox-backend/internal/apperror"
	"github.com/rocketscienceinc/xox-backend/internal/entity"
)

const (
	sessionKeyPrefix = "session:"
	sessionSeqKey    = "seq:session"
)

type SessionRepository interface {
	// Create stores a new session and assigns its id.
	Create(ctx context.Context, session *entity.Session) (*entity.Session, error)
	GetByID(ctx context.Context, id string) (*entity.Session, error)
	// Update overwrites the session only if the stored version equals session.Version.
	Update(ctx context.Context, session *entity.Session) (*entity.Session, error)
}

type dbSession struct {
	client *redis.Client
}

func NewSessionRepository(client *redis.Client) SessionRepository {
	return &dbSession{
		client: client,
	}
}

func (that *dbSession) Create(ctx context.Context, session *entity.Session) (*entity.Session, error) {
	seq, err := that.client.Incr(ctx, sessionSeqKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session id: %w", err)
	}

	now := time.Now().UTC()

	created := session.Clone()
	created.ID = strconv.FormatInt(seq, 10)
	created.Version = 1
	created.CreatedAt = now
	created.UpdatedAt = now

	sessionJSON, err := json.Marshal(created)
	if err != nil {
		return nil, fmt.Errorf("could not marshal session: %w", err)
	}

	ok, err := that.client.SetNX(ctx, sessionKeyPrefix+created.ID, sessionJSON, 0).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to set session: %w", err)
	}

	if !ok {
		return nil, fmt.Errorf("%w: session %s already exists", apperror.ErrStoreConflict, created.ID)
	}

	return created, nil
}

func (that *dbSession) GetByID(ctx context.Context, id string) (*entity.Session, error) {
	response, err := that.client.Get(ctx, sessionKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("session %s: %w", id, apperror.ErrNotFound)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get session by id: %w", err)
	}

	return unmarshalSession(response)
}

func (that *dbSession) Update(ctx context.Context, session *entity.Session) (*entity.Session, error) {
	key := sessionKeyPrefix + session.ID

	var updated *entity.Session

	err := that.client.Watch(ctx, func(tx *redis.Tx) error {
		response, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return fmt.Errorf("session %s: %w", session.ID, apperror.ErrNotFound)
		}

		if err != nil {
			return fmt.Errorf("failed to get session by id: %w", err)
		}

		stored, err := unmarshalSession(response)
		if err != nil {
			return err
		}

		if stored.Version != session.Version {
			return fmt.Errorf("%w: session %s has version %d, expected %d",
				apperror.ErrStoreConflict, session.ID, stored.Version, session.Version)
		}

		next := session.Clone()
		next.Version++
		next.CreatedAt = stored.CreatedAt
		next.UpdatedAt = time.Now().UTC()

		sessionJSON, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("could not marshal session: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, sessionJSON, 0)
			return nil
		})
		if err != nil {
			return err //nolint: wrapcheck // classified below
		}

		updated = next

		return nil
	}, key)

	if errors.Is(err, redis.TxFailedErr) {
		return nil, fmt.Errorf("%w: session %s", apperror.ErrStoreConflict, session.ID)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to update session: %w", err)
	}

	return updated, nil
}

func unmarshalSession(data []byte) (*entity.Session, error) {
	var session entity.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	return &session, nil
}
