package entity

import (
	"testing"

	"github.com/rocketscienceinc/xox-backend/internal/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boardFrom(rows ...[]string) *Board {
	board := NewBoard(len(rows[0]), len(rows))
	for y, row := range rows {
		copy(board.Cells[y], row)
	}
	return board
}

func TestBoard_PlaceMark(t *testing.T) {
	t.Run("Marks an empty cell", func(t *testing.T) {
		// Given: an empty 3x3 board
		board := NewBoard(3, 3)

		// When: placing X at column 2, row 0
		err := board.PlaceMark(2, 0, "X")

		// Then: the cell holds X
		require.NoError(t, err)
		cell, err := board.Cell(2, 0)
		require.NoError(t, err)
		assert.Equal(t, "X", cell)
	})

	t.Run("Never overwrites a marked cell", func(t *testing.T) {
		// Given: a board with X in the center
		board := NewBoard(3, 3)
		require.NoError(t, board.PlaceMark(1, 1, "X"))
		before := board.Clone()

		// When: O is placed on the same cell twice
		err := board.PlaceMark(1, 1, "O")
		errAgain := board.PlaceMark(1, 1, "O")

		// Then: both attempts are rejected and the board is unchanged
		require.ErrorIs(t, err, apperror.ErrCellOccupied)
		require.ErrorIs(t, errAgain, apperror.ErrCellOccupied)
		assert.Equal(t, before, board)
	})

	t.Run("Rejects coordinates outside the grid", func(t *testing.T) {
		board := NewBoard(3, 3)
		before := board.Clone()

		for _, c := range [][2]int{{-1, 0}, {0, -1}, {3, 0}, {0, 3}, {10, 10}} {
			err := board.PlaceMark(c[0], c[1], "X")
			assert.ErrorIs(t, err, apperror.ErrOutOfBounds, "x=%d y=%d", c[0], c[1])
		}

		assert.Equal(t, before, board)
	})

	t.Run("Rejects an empty mark", func(t *testing.T) {
		board := NewBoard(3, 3)

		err := board.PlaceMark(0, 0, EmptyCell)

		require.ErrorIs(t, err, apperror.ErrInvalidMark)
		assert.False(t, board.IsFull())
	})
}

func TestBoard_HasWinningLine(t *testing.T) {
	tests := []struct {
		name  string
		board *Board
		want  bool
	}{
		{
			name:  "empty board",
			board: NewBoard(3, 3),
			want:  false,
		},
		{
			name:  "full row",
			board: boardFrom([]string{"", "", ""}, []string{"O", "O", "O"}, []string{"X", "", "X"}),
			want:  true,
		},
		{
			name:  "full column",
			board: boardFrom([]string{"X", "O", ""}, []string{"X", "O", ""}, []string{"X", "", ""}),
			want:  true,
		},
		{
			name:  "main diagonal",
			board: boardFrom([]string{"X", "O", ""}, []string{"O", "X", ""}, []string{"", "", "X"}),
			want:  true,
		},
		{
			name:  "anti diagonal",
			board: boardFrom([]string{"X", "", "O"}, []string{"X", "O", ""}, []string{"O", "", "X"}),
			want:  true,
		},
		{
			name:  "mixed marks in a row",
			board: boardFrom([]string{"X", "O", "X"}, []string{"", "", ""}, []string{"", "", ""}),
			want:  false,
		},
		{
			name:  "drawn board",
			board: boardFrom([]string{"X", "O", "X"}, []string{"O", "X", "O"}, []string{"O", "X", "O"}),
			want:  false,
		},
		{
			name:  "rectangular board has no diagonals",
			board: boardFrom([]string{"X", "", "", ""}, []string{"", "X", "", ""}, []string{"", "", "X", ""}),
			want:  false,
		},
		{
			name:  "rectangular board row",
			board: boardFrom([]string{"O", "O", "O", "O"}, []string{"", "X", "", ""}, []string{"", "", "X", ""}),
			want:  true,
		},
		{
			name:  "arbitrary marks count as long as they match",
			board: boardFrom([]string{"★", "★", "★"}, []string{"", "", ""}, []string{"", "", ""}),
			want:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.board.HasWinningLine())
		})
	}
}

func TestBoard_IsFull(t *testing.T) {
	t.Run("Full board", func(t *testing.T) {
		board := boardFrom([]string{"X", "O"}, []string{"O", "X"})
		assert.True(t, board.IsFull())
	})

	t.Run("One empty cell left", func(t *testing.T) {
		board := boardFrom([]string{"X", "O"}, []string{"O", ""})
		assert.False(t, board.IsFull())
	})
}

func TestBoard_Clone(t *testing.T) {
	// Given: a board and its clone
	board := NewBoard(3, 3)
	clone := board.Clone()

	// When: the clone is mutated
	require.NoError(t, clone.PlaceMark(0, 0, "X"))

	// Then: the original is untouched
	cell, err := board.Cell(0, 0)
	require.NoError(t, err)
	assert.Equal(t, EmptyCell, cell)
}
