package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCode(t *testing.T) {
	t.Run("Wrapped domain errors keep their code", func(t *testing.T) {
		// Given: a domain error wrapped twice
		err := fmt.Errorf("failed to move: %w", fmt.Errorf("invalid turn: %w", ErrNotYourTurn))

		// When: resolving the code
		code := Code(err)

		// Then: the code of the innermost sentinel is returned
		assert.Equal(t, CodeNotYourTurn, code)
	})

	t.Run("Every sentinel has a distinct code", func(t *testing.T) {
		seen := make(map[string]error)
		for _, c := range codes {
			prev, ok := seen[Code(c.err)]
			assert.False(t, ok, "code %q shared by %v and %v", c.code, prev, c.err)
			seen[Code(c.err)] = c.err
		}
	})

	t.Run("Unknown errors are internal", func(t *testing.T) {
		assert.Equal(t, CodeInternal, Code(errors.New("redis down")))
		assert.Equal(t, "", Code(nil))
	})
}

func TestIsDomain(t *testing.T) {
	assert.True(t, IsDomain(ErrCellOccupied))
	assert.True(t, IsDomain(fmt.Errorf("join: %w", ErrSlotsFull)))
	assert.False(t, IsDomain(ErrStoreConflict))
	assert.False(t, IsDomain(errors.New("boom")))
	assert.False(t, IsDomain(nil))
}
