package entity

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type Slot string

const (
	SlotPlayer1 Slot = "player1"
	SlotPlayer2 Slot = "player2"
)

func (that Slot) Other() Slot {
	if that == SlotPlayer1 {
		return SlotPlayer2
	}
	return SlotPlayer1
}

// Seat is one player position of a session: either empty or occupied by a user
// together with the mark the user had when seated.
type Seat struct {
	occupied bool
	userID   string
	mark     string
}

type seatJSON struct {
	ID   string `json:"id"`
	Mark string `json:"mark"`
}

func EmptySeat() Seat {
	return Seat{}
}

func OccupiedSeat(userID, mark string) Seat {
	return Seat{
		occupied: true,
		userID:   userID,
		mark:     mark,
	}
}

func (that Seat) IsEmpty() bool {
	return !that.occupied
}

func (that Seat) UserID() (string, bool) {
	return that.userID, that.occupied
}

func (that Seat) Mark() string {
	return that.mark
}

// Holds reports whether the seat is occupied by userID.
func (that Seat) Holds(userID string) bool {
	return that.occupied && that.userID == userID
}

func (that Seat) String() string {
	if !that.occupied {
		return "empty"
	}
	return fmt.Sprintf("%s(%s)", that.userID, that.mark)
}

func (that Seat) MarshalJSON() ([]byte, error) {
	if !that.occupied {
		return []byte("null"), nil
	}

	return json.Marshal(seatJSON{ID: that.userID, Mark: that.mark})
}

func (that *Seat) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*that = EmptySeat()
		return nil
	}

	var raw seatJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to unmarshal seat: %w", err)
	}

	*that = OccupiedSeat(raw.ID, raw.Mark)

	return nil
}
