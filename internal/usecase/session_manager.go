package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/rocketscienceinc/xox-backend/internal/apperror"
	"github.com/rocketscienceinc/xox-backend/internal/entity"
	"github.com/rocketscienceinc/xox-backend/internal/matchmaker"
	"github.com/rocketscienceinc/xox-backend/internal/tictactoe"
)

const (
	actionStart  = "start"
	actionJoin   = "join"
	actionMove   = "move"
	actionResign = "resign"
)

type sessionRepo interface {
	Create(ctx context.Context, session *entity.Session) (*entity.Session, error)
	GetByID(ctx context.Context, id string) (*entity.Session, error)
	Update(ctx context.Context, session *entity.Session) (*entity.Session, error)
}

type userRepo interface {
	CreateOrUpdate(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
}

type viewNotifier interface {
	Dispatch(view *entity.SessionView)
}

type actionMetrics interface {
	Action(action, result string)
	StoreConflict(action string)
}

type Options struct {
	BoardWidth  int
	BoardHeight int
	DefaultMark string
	// MaxConflictRetries is how many times an action is re-validated and
	// re-applied after losing a concurrent write.
	MaxConflictRetries int
	StoreTimeout       time.Duration
}

type SessionManager struct {
	logger   *slog.Logger
	sessions sessionRepo
	users    userRepo
	notifier viewNotifier
	metrics  actionMetrics
	opts     Options
}

func NewSessionManager(
	logger *slog.Logger,
	sessions sessionRepo,
	users userRepo,
	notifier viewNotifier,
	metrics actionMetrics,
	opts Options,
) *SessionManager {
	if opts.DefaultMark == "" {
		opts.DefaultMark = entity.DefaultMark
	}

	return &SessionManager{
		logger:   logger.With("component", "session_manager"),
		sessions: sessions,
		users:    users,
		notifier: notifier,
		metrics:  metrics,
		opts:     opts,
	}
}

// GetOrCreateUser - returns the user with id, creating it with the default mark
// on first contact. An empty id gets a freshly generated one.
func (that *SessionManager) GetOrCreateUser(ctx context.Context, id string) (*entity.User, error) {
	log := that.logger.With("method", "GetOrCreateUser")

	if id != "" {
		user, err := that.getUser(ctx, id)
		if err == nil {
			return user, nil
		}

		if !errors.Is(err, apperror.ErrNotFound) {
			return nil, err
		}
	} else {
		id = uuid.NewString()
	}

	user := &entity.User{ID: id, Mark: that.opts.DefaultMark}
	if err := that.saveUser(ctx, user); err != nil {
		return nil, err
	}

	log.Info("user created", "userID", id)

	return user, nil
}

// SetMark - changes the mark used in sessions the user joins from now on.
// Seats already taken keep the mark they were taken with.
func (that *SessionManager) SetMark(ctx context.Context, userID, mark string) (*entity.User, error) {
	if err := entity.ValidateMark(mark); err != nil {
		return nil, fmt.Errorf("failed to set mark %q: %w", mark, err)
	}

	user, err := that.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.Mark = mark
	if err = that.saveUser(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// Start - creates a session with the creator in the first seat.
func (that *SessionManager) Start(ctx context.Context, creatorID string) (*entity.SessionView, error) {
	log := that.logger.With("method", "Start", "userID", creatorID)

	if creatorID == "" {
		that.record(actionStart, apperror.ErrInvalidArguments)
		return nil, fmt.Errorf("empty creator id: %w", apperror.ErrInvalidArguments)
	}

	creator, err := that.GetOrCreateUser(ctx, creatorID)
	if err != nil {
		that.record(actionStart, err)
		return nil, fmt.Errorf("failed to get creator: %w", err)
	}

	storeCtx, cancel := that.storeContext(ctx)
	defer cancel()

	session, err := that.sessions.Create(storeCtx,
		tictactoe.NewSession(creator, that.opts.BoardWidth, that.opts.BoardHeight))
	if err != nil {
		that.record(actionStart, err)
		log.Error("failed to create session", "error", err)
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	log.Info("session started", "sessionID", session.ID)

	view := session.View()
	that.notifier.Dispatch(view)
	that.record(actionStart, nil)

	return view, nil
}

// Join - seats the user in the session. Joining a session the user already
// sits in returns the current view without changes.
func (that *SessionManager) Join(ctx context.Context, sessionID, userID string) (*entity.SessionView, error) {
	if userID == "" {
		that.record(actionJoin, apperror.ErrInvalidArguments)
		return nil, fmt.Errorf("empty user id: %w", apperror.ErrInvalidArguments)
	}

	user, err := that.GetOrCreateUser(ctx, userID)
	if err != nil {
		that.record(actionJoin, err)
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return that.mutate(ctx, actionJoin, sessionID, func(session *entity.Session) (bool, error) {
		decision, err := tictactoe.Join(session, user)
		if err != nil {
			return false, err
		}

		return decision.Kind != matchmaker.AlreadySeated, nil
	})
}

// Move - places the user's mark at column x, row y.
func (that *SessionManager) Move(ctx context.Context, sessionID, userID string, x, y int) (*entity.SessionView, error) {
	return that.mutate(ctx, actionMove, sessionID, func(session *entity.Session) (bool, error) {
		if err := tictactoe.Move(session, userID, x, y); err != nil {
			return false, err
		}

		return true, nil
	})
}

// Resign - ends the session in favour of the opponent.
func (that *SessionManager) Resign(ctx context.Context, sessionID, userID string) (*entity.SessionView, error) {
	return that.mutate(ctx, actionResign, sessionID, func(session *entity.Session) (bool, error) {
		if err := tictactoe.Resign(session, userID); err != nil {
			return false, err
		}

		return true, nil
	})
}

// Get - read-only view, available to anyone.
func (that *SessionManager) Get(ctx context.Context, sessionID string) (*entity.SessionView, error) {
	session, err := that.getSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	return session.View(), nil
}

// mutate - reads the session, applies the action and writes it back if the
// stored version is still the one that was read. A lost write is retried from
// a fresh read, so the action is validated again against the winner's state.
func (that *SessionManager) mutate(
	ctx context.Context,
	action, sessionID string,
	apply func(session *entity.Session) (bool, error),
) (*entity.SessionView, error) {
	log := that.logger.With("method", action, "sessionID", sessionID)

	for attempt := 0; ; attempt++ {
		session, err := that.getSession(ctx, sessionID)
		if err != nil {
			that.record(action, err)
			return nil, err
		}

		changed, err := apply(session)
		if err != nil {
			that.record(action, err)
			log.Info("action rejected", "error", err)
			return nil, fmt.Errorf("%s rejected: %w", action, err)
		}

		if !changed {
			that.record(action, nil)
			return session.View(), nil
		}

		updated, err := that.updateSession(ctx, session)
		if errors.Is(err, apperror.ErrStoreConflict) {
			that.metrics.StoreConflict(action)

			if attempt < that.opts.MaxConflictRetries {
				log.Debug("concurrent write, retrying", "attempt", attempt+1)
				continue
			}

			log.Warn("concurrent write, giving up", "attempts", attempt+1)
		}

		if err != nil {
			that.record(action, err)
			return nil, err
		}

		view := updated.View()
		that.notifier.Dispatch(view)
		that.record(action, nil)

		return view, nil
	}
}

func (that *SessionManager) record(action string, err error) {
	if err == nil {
		that.metrics.Action(action, "ok")
		return
	}

	that.metrics.Action(action, apperror.Code(err))
}

func (that *SessionManager) storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if that.opts.StoreTimeout <= 0 {
		return ctx, func() {}
	}

	return context.WithTimeout(ctx, that.opts.StoreTimeout)
}

func (that *SessionManager) getSession(ctx context.Context, id string) (*entity.Session, error) {
	ctx, cancel := that.storeContext(ctx)
	defer cancel()

	session, err := that.sessions.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, apperror.ErrNotFound) {
			that.logger.Error("failed to get session", "sessionID", id, "error", err)
		}

		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return session, nil
}

func (that *SessionManager) updateSession(ctx context.Context, session *entity.Session) (*entity.Session, error) {
	ctx, cancel := that.storeContext(ctx)
	defer cancel()

	updated, err := that.sessions.Update(ctx, session)
	if err != nil {
		if !errors.Is(err, apperror.ErrStoreConflict) {
			that.logger.Error("failed to update session", "sessionID", session.ID, "error", err)
		}

		return nil, fmt.Errorf("failed to update session: %w", err)
	}

	return updated, nil
}

func (that *SessionManager) getUser(ctx context.Context, id string) (*entity.User, error) {
	ctx, cancel := that.storeContext(ctx)
	defer cancel()

	user, err := that.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

func (that *SessionManager) saveUser(ctx context.Context, user *entity.User) error {
	ctx, cancel := that.storeContext(ctx)
	defer cancel()

	if err := that.users.CreateOrUpdate(ctx, user); err != nil {
		that.logger.Error("failed to save user", "userID", user.ID, "error", err)
		return fmt.Errorf("failed to save user: %w", err)
	}

	return nil
}
