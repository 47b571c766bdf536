package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/rocketscienceinc/xox-backend/internal/apperror"
	"github.com/rocketscienceinc/xox-backend/internal/entity"
)

// SessionRepository keeps sessions in process memory. Stored values are JSON
// snapshots, so callers never share state with the store.
type SessionRepository struct {
	mu       sync.Mutex
	seq      int64
	sessions map[string][]byte
}

func NewSessionRepository() *SessionRepository {
	return &SessionRepository{
		sessions: make(map[string][]byte),
	}
}

func (that *SessionRepository) Create(_ context.Context, session *entity.Session) (*entity.Session, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.seq++
	now := time.Now().UTC()

	created := session.Clone()
	created.ID = strconv.FormatInt(that.seq, 10)
	created.Version = 1
	created.CreatedAt = now
	created.UpdatedAt = now

	sessionJSON, err := json.Marshal(created)
	if err != nil {
		return nil, fmt.Errorf("could not marshal session: %w", err)
	}

	that.sessions[created.ID] = sessionJSON

	return created, nil
}

func (that *SessionRepository) GetByID(_ context.Context, id string) (*entity.Session, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.load(id)
}

func (that *SessionRepository) Update(_ context.Context, session *entity.Session) (*entity.Session, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	stored, err := that.load(session.ID)
	if err != nil {
		return nil, err
	}

	if stored.Version != session.Version {
		return nil, fmt.Errorf("%w: session %s has version %d, expected %d",
			apperror.ErrStoreConflict, session.ID, stored.Version, session.Version)
	}

	next := session.Clone()
	next.Version++
	next.CreatedAt = stored.CreatedAt
	next.UpdatedAt = time.Now().UTC()

	sessionJSON, err := json.Marshal(next)
	if err != nil {
		return nil, fmt.Errorf("could not marshal session: %w", err)
	}

	that.sessions[next.ID] = sessionJSON

	return next, nil
}

func (that *SessionRepository) load(id string) (*entity.Session, error) {
	data, ok := that.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, apperror.ErrNotFound)
	}

	var session entity.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	return &session, nil
}
