package entity

import "time"

type SessionState string

const (
	StateNotStarted SessionState = "not_started"
	StateInProgress SessionState = "in_progress"
	StateFinished   SessionState = "finished"
	StateDraw       SessionState = "draw"
)

const channelPrefix = "session:"

type Session struct {
	ID         string       `json:"id"`
	Player1    Seat         `json:"player1"`
	Player2    Seat         `json:"player2"`
	Board      *Board       `json:"board"`
	ActiveSlot Slot         `json:"active_slot"`
	State      SessionState `json:"state"`
	Version    int64        `json:"version"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

type PlayerView struct {
	ID   string `json:"id"`
	Mark string `json:"mark"`
}

// SessionView is the payload returned to callers and broadcast to subscribers.
type SessionView struct {
	ID         string       `json:"id"`
	Player1    *PlayerView  `json:"player1"`
	Player2    *PlayerView  `json:"player2"`
	Board      [][]string   `json:"board"`
	State      SessionState `json:"state"`
	ActiveSlot Slot         `json:"active_slot"`
	Turn       string       `json:"turn,omitempty"`
	Winner     string       `json:"winner,omitempty"`
	Version    int64        `json:"version"`
}

// ChannelKey is the broadcast channel of the session with the given id.
func ChannelKey(sessionID string) string {
	return channelPrefix + sessionID
}

func (that *Session) ChannelKey() string {
	return ChannelKey(that.ID)
}

func (that *Session) Seat(slot Slot) Seat {
	if slot == SlotPlayer1 {
		return that.Player1
	}
	return that.Player2
}

func (that *Session) SetSeat(slot Slot, seat Seat) {
	if slot == SlotPlayer1 {
		that.Player1 = seat
		return
	}
	that.Player2 = seat
}

// SlotOf returns the slot held by userID.
func (that *Session) SlotOf(userID string) (Slot, bool) {
	switch {
	case that.Player1.Holds(userID):
		return SlotPlayer1, true
	case that.Player2.Holds(userID):
		return SlotPlayer2, true
	default:
		return "", false
	}
}

func (that *Session) IsSeated(userID string) bool {
	_, ok := that.SlotOf(userID)
	return ok
}

func (that *Session) BothSeated() bool {
	return !that.Player1.IsEmpty() && !that.Player2.IsEmpty()
}

func (that *Session) AcceptsMoves() bool {
	return that.State == StateNotStarted || that.State == StateInProgress
}

func (that *Session) IsTerminal() bool {
	return that.State == StateFinished || that.State == StateDraw
}

// Winner is the seat on the active slot of a finished session: the mover who
// completed a line, or the opponent of a player who resigned.
func (that *Session) Winner() (Seat, bool) {
	if that.State != StateFinished {
		return EmptySeat(), false
	}

	seat := that.Seat(that.ActiveSlot)
	if seat.IsEmpty() {
		return seat, false
	}

	return seat, true
}

func (that *Session) Clone() *Session {
	clone := *that
	if that.Board != nil {
		clone.Board = that.Board.Clone()
	}

	return &clone
}

func (that *Session) View() *SessionView {
	view := &SessionView{
		ID:         that.ID,
		Player1:    playerView(that.Player1),
		Player2:    playerView(that.Player2),
		State:      that.State,
		ActiveSlot: that.ActiveSlot,
		Version:    that.Version,
	}

	if that.Board != nil {
		view.Board = that.Board.Clone().Cells
	}

	if !that.IsTerminal() {
		if id, ok := that.Seat(that.ActiveSlot).UserID(); ok {
			view.Turn = id
		}
	}

	if winner, ok := that.Winner(); ok {
		view.Winner, _ = winner.UserID()
	}

	return view
}

func playerView(seat Seat) *PlayerView {
	id, ok := seat.UserID()
	if !ok {
		return nil
	}

	return &PlayerView{ID: id, Mark: seat.Mark()}
}
