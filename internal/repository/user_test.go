package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/xox-backend/internal/apperror"
	"github.com/rocketscienceinc/xox-backend/internal/entity"
	"github.com/rocketscienceinc/xox-backend/testing/suite"
)

func TestUserRepository_CreateOrUpdate(t *testing.T) {
	ctx, st := suite.New(t)

	userRepo := NewUserRepository(st.Storage)

	// Given: a stored user
	require.NoError(t, userRepo.CreateOrUpdate(ctx, &entity.User{ID: "123", Mark: "X"}))

	// When: the user changes mark
	err := userRepo.CreateOrUpdate(ctx, &entity.User{ID: "123", Mark: "O"})

	// Then: the new mark is stored
	require.NoError(t, err)

	retrieved, err := userRepo.GetByID(ctx, "123")
	require.NoError(t, err)
	assert.Equal(t, "O", retrieved.Mark)
}

func TestUserRepository_GetByID(t *testing.T) {
	t.Run("GetByID_NotFound", func(t *testing.T) {
		ctx, st := suite.New(t)

		userRepo := NewUserRepository(st.Storage)

		// When: GetByID is called with a non-existent id
		retrieved, err := userRepo.GetByID(ctx, "9999999")

		// Then: ErrNotFound is returned
		require.ErrorIs(t, err, apperror.ErrNotFound)
		assert.Nil(t, retrieved)
	})
}
