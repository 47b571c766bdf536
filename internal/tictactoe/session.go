package tictactoe

import (
	"fmt"

	"github.com/rocketscienceinc/xox-backend/internal/apperror"
	"github.com/rocketscienceinc/xox-backend/internal/entity"
	"github.com/rocketscienceinc/xox-backend/internal/matchmaker"
)

// NewSession - creates a session owned by creator, waiting for the second player.
func NewSession(creator *entity.User, width, height int) *entity.Session {
	return &entity.Session{
		Player1:    entity.OccupiedSeat(creator.ID, creator.Mark),
		Player2:    entity.EmptySeat(),
		Board:      entity.NewBoard(width, height),
		ActiveSlot: entity.SlotPlayer1,
		State:      entity.StateNotStarted,
	}
}

// Join - seats user in the session according to the matchmaker decision.
// An already seated user is accepted without changes.
func Join(session *entity.Session, user *entity.User) (matchmaker.Decision, error) {
	decision := matchmaker.Decide(session, user.ID, user.Mark)

	if !decision.Accepted() {
		return decision, fmt.Errorf("failed to join: %w", decision.Reason)
	}

	if decision.Kind != matchmaker.AlreadySeated {
		session.SetSeat(decision.Slot, entity.OccupiedSeat(user.ID, user.Mark))
	}

	return decision, nil
}

// Move - places the mark of userID at (x, y) and advances the session.
func Move(session *entity.Session, userID string, x, y int) error {
	slot, err := validateMove(session, userID)
	if err != nil {
		return fmt.Errorf("invalid turn: %w", err)
	}

	if err = session.Board.PlaceMark(x, y, session.Seat(slot).Mark()); err != nil {
		return fmt.Errorf("invalid turn: %w", err)
	}

	updateSessionState(session)

	return nil
}

// Resign - finishes the session in favour of the opponent of userID.
// A drawn session can still be resigned, a finished one keeps its winner.
func Resign(session *entity.Session, userID string) error {
	slot, ok := session.SlotOf(userID)
	if !ok {
		return apperror.ErrNotAParticipant
	}

	if session.State == entity.StateFinished {
		return apperror.ErrSessionClosed
	}

	session.State = entity.StateFinished
	session.ActiveSlot = slot.Other()

	return nil
}

// validateMove - checks the move preconditions in order and returns the slot of the mover.
func validateMove(session *entity.Session, userID string) (entity.Slot, error) {
	if !session.AcceptsMoves() {
		return "", apperror.ErrSessionClosed
	}

	if !session.BothSeated() {
		return "", apperror.ErrOpponentMissing
	}

	slot, ok := session.SlotOf(userID)
	if !ok {
		return "", apperror.ErrNotAParticipant
	}

	if slot != session.ActiveSlot {
		return "", apperror.ErrNotYourTurn
	}

	return slot, nil
}

// updateSessionState - checks the board after a move. A win is checked before a draw.
func updateSessionState(session *entity.Session) {
	switch {
	case session.Board.HasWinningLine():
		session.State = entity.StateFinished
	case session.Board.IsFull():
		session.State = entity.StateDraw
	default:
		session.State = entity.StateInProgress
		session.ActiveSlot = session.ActiveSlot.Other()
	}
}
