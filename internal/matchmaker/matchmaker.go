// Package matchmaker decides which seat of a session a joining user gets.
//
// Seats are filled first come, first served. A candidate is only compared with
// the opponent currently seated, never with players who sat there before.
package matchmaker

import (
	"fmt"

	"github.com/rocketscienceinc/xox-backend/internal/apperror"
	"github.com/rocketscienceinc/xox-backend/internal/entity"
)

type Kind int

const (
	Reject Kind = iota
	AssignSlot1
	AssignSlot2
	AlreadySeated
)

func (that Kind) String() string {
	switch that {
	case AssignSlot1:
		return "assign_slot1"
	case AssignSlot2:
		return "assign_slot2"
	case AlreadySeated:
		return "already_seated"
	default:
		return "reject"
	}
}

type Decision struct {
	Kind Kind
	// Slot is set for AssignSlot1, AssignSlot2 and AlreadySeated.
	Slot entity.Slot
	// Reason is set for Reject.
	Reason error
}

func (that Decision) Accepted() bool {
	return that.Kind != Reject
}

// Decide resolves a join attempt of userID playing mark.
func Decide(session *entity.Session, userID, mark string) Decision {
	if slot, ok := session.SlotOf(userID); ok {
		return Decision{Kind: AlreadySeated, Slot: slot}
	}

	if session.Player1.IsEmpty() {
		return assign(AssignSlot1, entity.SlotPlayer1, session.Player2, mark)
	}

	if session.Player2.IsEmpty() {
		return assign(AssignSlot2, entity.SlotPlayer2, session.Player1, mark)
	}

	return Decision{Kind: Reject, Reason: fmt.Errorf("%w: session %s", apperror.ErrSlotsFull, session.ID)}
}

func assign(kind Kind, slot entity.Slot, opponent entity.Seat, mark string) Decision {
	if !opponent.IsEmpty() && opponent.Mark() == mark {
		return Decision{
			Kind:   Reject,
			Reason: fmt.Errorf("%w: %q", apperror.ErrMarkCollision, mark),
		}
	}

	return Decision{Kind: kind, Slot: slot}
}
