package entity

import (
	"encoding/json"
	"testing"

	"github.com/rocketscienceinc/xox-backend/internal/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeat(t *testing.T) {
	t.Run("Empty seat holds nobody, not even the zero id", func(t *testing.T) {
		seat := EmptySeat()

		id, ok := seat.UserID()

		assert.True(t, seat.IsEmpty())
		assert.False(t, ok)
		assert.Empty(t, id)
		assert.False(t, seat.Holds(""))
	})

	t.Run("Occupied seat with a zero-valued id is still occupied", func(t *testing.T) {
		seat := OccupiedSeat("", "X")

		assert.False(t, seat.IsEmpty())
		assert.True(t, seat.Holds(""))
	})

	t.Run("JSON keeps empty and occupied apart", func(t *testing.T) {
		// Given: a session with one occupied and one empty seat
		session := &Session{ID: "1", Player1: OccupiedSeat("alice", "X"), Player2: EmptySeat()}

		// When: marshaling and unmarshaling it
		data, err := json.Marshal(session)
		require.NoError(t, err)

		var restored Session
		require.NoError(t, json.Unmarshal(data, &restored))

		// Then: the seats survive the round trip
		assert.Contains(t, string(data), `"player2":null`)
		assert.Equal(t, session.Player1, restored.Player1)
		assert.True(t, restored.Player2.IsEmpty())
	})
}

func TestSession_SlotOf(t *testing.T) {
	session := &Session{Player1: OccupiedSeat("alice", "X"), Player2: OccupiedSeat("bob", "O")}

	slot, ok := session.SlotOf("bob")
	assert.True(t, ok)
	assert.Equal(t, SlotPlayer2, slot)

	_, ok = session.SlotOf("carol")
	assert.False(t, ok)
	assert.True(t, session.BothSeated())
}

func TestSession_View(t *testing.T) {
	t.Run("In progress session reports whose turn it is", func(t *testing.T) {
		// Given: a session where player2 moves next
		session := &Session{
			ID:         "7",
			Player1:    OccupiedSeat("alice", "X"),
			Player2:    OccupiedSeat("bob", "O"),
			Board:      NewBoard(3, 3),
			ActiveSlot: SlotPlayer2,
			State:      StateInProgress,
			Version:    3,
		}

		// When: building the view
		view := session.View()

		// Then: turn points at bob and nobody has won
		assert.Equal(t, "7", view.ID)
		assert.Equal(t, &PlayerView{ID: "alice", Mark: "X"}, view.Player1)
		assert.Equal(t, &PlayerView{ID: "bob", Mark: "O"}, view.Player2)
		assert.Equal(t, "bob", view.Turn)
		assert.Empty(t, view.Winner)
		assert.Equal(t, int64(3), view.Version)
		assert.Len(t, view.Board, 3)
	})

	t.Run("Finished session reports the winner and no turn", func(t *testing.T) {
		session := &Session{
			ID:         "7",
			Player1:    OccupiedSeat("alice", "X"),
			Player2:    OccupiedSeat("bob", "O"),
			Board:      NewBoard(3, 3),
			ActiveSlot: SlotPlayer1,
			State:      StateFinished,
		}

		view := session.View()

		assert.Empty(t, view.Turn)
		assert.Equal(t, "alice", view.Winner)
	})

	t.Run("Draw has no winner", func(t *testing.T) {
		session := &Session{
			Player1:    OccupiedSeat("alice", "X"),
			Player2:    OccupiedSeat("bob", "O"),
			Board:      NewBoard(3, 3),
			ActiveSlot: SlotPlayer1,
			State:      StateDraw,
		}

		_, ok := session.Winner()
		assert.False(t, ok)
		assert.Empty(t, session.View().Winner)
	})

	t.Run("View board is a copy", func(t *testing.T) {
		session := &Session{Board: NewBoard(3, 3), Player1: OccupiedSeat("alice", "X"), ActiveSlot: SlotPlayer1}

		view := session.View()
		view.Board[0][0] = "Z"

		assert.Equal(t, EmptyCell, session.Board.Cells[0][0])
		assert.Nil(t, view.Player2)
	})
}

func TestChannelKey(t *testing.T) {
	assert.Equal(t, "session:42", ChannelKey("42"))
	assert.Equal(t, "session:42", (&Session{ID: "42"}).ChannelKey())
}

func TestValidateMark(t *testing.T) {
	assert.NoError(t, ValidateMark("X"))
	assert.NoError(t, ValidateMark("Ж"))
	assert.ErrorIs(t, ValidateMark(""), apperror.ErrInvalidMark)
	assert.ErrorIs(t, ValidateMark("XO"), apperror.ErrInvalidMark)
	assert.ErrorIs(t, ValidateMark(" "), apperror.ErrInvalidMark)
}
