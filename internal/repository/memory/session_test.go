package memory

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/xox-backend/internal/apperror"
	"github.com/rocketscienceinc/xox-backend/internal/entity"
)

func newSession() *entity.Session {
	return &entity.Session{
		Player1:    entity.OccupiedSeat("alice", "X"),
		Player2:    entity.EmptySeat(),
		Board:      entity.NewBoard(3, 3),
		ActiveSlot: entity.SlotPlayer1,
		State:      entity.StateNotStarted,
	}
}

func TestSessionRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Create_AssignsSequentialIDs", func(t *testing.T) {
		repo := NewSessionRepository()

		first, err := repo.Create(ctx, newSession())
		require.NoError(t, err)

		second, err := repo.Create(ctx, newSession())
		require.NoError(t, err)

		assert.Equal(t, "1", first.ID)
		assert.Equal(t, "2", second.ID)
		assert.Equal(t, int64(1), second.Version)
	})

	t.Run("GetByID_ReturnsCopy", func(t *testing.T) {
		repo := NewSessionRepository()

		// Given: a stored session
		created, err := repo.Create(ctx, newSession())
		require.NoError(t, err)

		// When: the caller mutates what it read
		retrieved, err := repo.GetByID(ctx, created.ID)
		require.NoError(t, err)
		require.NoError(t, retrieved.Board.PlaceMark(0, 0, "X"))

		// Then: the stored session is untouched
		again, err := repo.GetByID(ctx, created.ID)
		require.NoError(t, err)
		cell, err := again.Board.Cell(0, 0)
		require.NoError(t, err)
		assert.Equal(t, entity.EmptyCell, cell)
	})

	t.Run("GetByID_NotFound", func(t *testing.T) {
		repo := NewSessionRepository()

		_, err := repo.GetByID(ctx, "42")

		require.ErrorIs(t, err, apperror.ErrNotFound)
	})

	t.Run("Update_StaleVersion", func(t *testing.T) {
		repo := NewSessionRepository()

		created, err := repo.Create(ctx, newSession())
		require.NoError(t, err)

		_, err = repo.Update(ctx, created.Clone())
		require.NoError(t, err)

		// When: the same version is written twice
		_, err = repo.Update(ctx, created.Clone())

		// Then: the second write conflicts
		require.ErrorIs(t, err, apperror.ErrStoreConflict)
	})

	t.Run("Update_Concurrent", func(t *testing.T) {
		repo := NewSessionRepository()

		created, err := repo.Create(ctx, newSession())
		require.NoError(t, err)

		var (
			wg        sync.WaitGroup
			succeeded atomic.Int32
		)

		for i := 0; i < 16; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()

				if _, err := repo.Update(ctx, created.Clone()); err == nil {
					succeeded.Add(1)
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, int32(1), succeeded.Load())

		stored, err := repo.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), stored.Version)
	})
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository()

	_, err := repo.GetByID(ctx, "alice")
	require.ErrorIs(t, err, apperror.ErrNotFound)

	require.NoError(t, repo.CreateOrUpdate(ctx, &entity.User{ID: "alice", Mark: "X"}))
	require.NoError(t, repo.CreateOrUpdate(ctx, &entity.User{ID: "alice", Mark: "Q"}))

	user, err := repo.GetByID(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "Q", user.Mark)
}
