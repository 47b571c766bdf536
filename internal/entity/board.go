package entity

import (
	"fmt"

	"github.com/rocketscienceinc/xox-backend/internal/apperror"
)

const EmptyCell = ""

// Board is a fixed-size grid addressed by column x and row y.
type Board struct {
	Width  int        `json:"width"`
	Height int        `json:"height"`
	Cells  [][]string `json:"cells"`
}

func NewBoard(width, height int) *Board {
	cells := make([][]string, height)
	for y := range cells {
		cells[y] = make([]string, width)
	}

	return &Board{
		Width:  width,
		Height: height,
		Cells:  cells,
	}
}

// PlaceMark records mark at (x, y). A marked cell is never overwritten.
func (that *Board) PlaceMark(x, y int, mark string) error {
	if mark == EmptyCell {
		return apperror.ErrInvalidMark
	}

	if !that.InBounds(x, y) {
		return fmt.Errorf("%w: x=%d y=%d", apperror.ErrOutOfBounds, x, y)
	}

	if that.Cells[y][x] != EmptyCell {
		return fmt.Errorf("%w: x=%d y=%d", apperror.ErrCellOccupied, x, y)
	}

	that.Cells[y][x] = mark

	return nil
}

func (that *Board) Cell(x, y int) (string, error) {
	if !that.InBounds(x, y) {
		return EmptyCell, fmt.Errorf("%w: x=%d y=%d", apperror.ErrOutOfBounds, x, y)
	}

	return that.Cells[y][x], nil
}

func (that *Board) InBounds(x, y int) bool {
	return x >= 0 && x < that.Width && y >= 0 && y < that.Height
}

// HasWinningLine reports whether a full row, column or diagonal holds one mark.
// Diagonals only exist on square boards.
func (that *Board) HasWinningLine() bool {
	for _, line := range that.lines() {
		if that.isWinning(line) {
			return true
		}
	}

	return false
}

func (that *Board) IsFull() bool {
	for _, row := range that.Cells {
		for _, cell := range row {
			if cell == EmptyCell {
				return false
			}
		}
	}

	return true
}

func (that *Board) Clone() *Board {
	clone := NewBoard(that.Width, that.Height)
	for y, row := range that.Cells {
		copy(clone.Cells[y], row)
	}

	return clone
}

type point struct{ x, y int }

func (that *Board) lines() [][]point {
	lines := make([][]point, 0, that.Width+that.Height+2)

	for y := 0; y < that.Height; y++ {
		row := make([]point, 0, that.Width)
		for x := 0; x < that.Width; x++ {
			row = append(row, point{x, y})
		}
		lines = append(lines, row)
	}

	for x := 0; x < that.Width; x++ {
		column := make([]point, 0, that.Height)
		for y := 0; y < that.Height; y++ {
			column = append(column, point{x, y})
		}
		lines = append(lines, column)
	}

	if that.Width == that.Height {
		main := make([]point, 0, that.Width)
		anti := make([]point, 0, that.Width)
		for i := 0; i < that.Width; i++ {
			main = append(main, point{i, i})
			anti = append(anti, point{that.Width - 1 - i, i})
		}
		lines = append(lines, main, anti)
	}

	return lines
}

func (that *Board) isWinning(line []point) bool {
	if len(line) == 0 {
		return false
	}

	first := that.Cells[line[0].y][line[0].x]
	if first == EmptyCell {
		return false
	}

	for _, p := range line[1:] {
		if that.Cells[p.y][p.x] != first {
			return false
		}
	}

	return true
}
