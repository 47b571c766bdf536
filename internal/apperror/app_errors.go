package apperror

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrSlotsFull        = errors.New("no free slots in session")
	ErrMarkCollision    = errors.New("mark matches the seated opponent's mark, change your mark and try again")
	ErrSessionClosed    = errors.New("session is finished")
	ErrOpponentMissing  = errors.New("second player has not joined yet")
	ErrNotAParticipant  = errors.New("you are not a participant of this session, read only")
	ErrNotYourTurn      = errors.New("it's not your turn")
	ErrCellOccupied     = errors.New("cell is already occupied")
	ErrOutOfBounds      = errors.New("cell is out of bounds")
	ErrStoreConflict    = errors.New("session was modified concurrently")
	ErrInvalidMark      = errors.New("mark must be exactly one character")
	ErrInvalidArguments = errors.New("invalid arguments")
)

const (
	CodeNotFound         = "not_found"
	CodeSlotsFull        = "slots_full"
	CodeMarkCollision    = "mark_collision"
	CodeSessionClosed    = "session_closed"
	CodeOpponentMissing  = "opponent_missing"
	CodeNotAParticipant  = "not_a_participant"
	CodeNotYourTurn      = "not_your_turn"
	CodeCellOccupied     = "cell_occupied"
	CodeOutOfBounds      = "out_of_bounds"
	CodeStoreConflict    = "store_conflict"
	CodeInvalidMark      = "invalid_mark"
	CodeInvalidArguments = "invalid_arguments"
	CodeInternal         = "internal"
)

var codes = []struct {
	err  error
	code string
}{
	{ErrNotFound, CodeNotFound},
	{ErrSlotsFull, CodeSlotsFull},
	{ErrMarkCollision, CodeMarkCollision},
	{ErrSessionClosed, CodeSessionClosed},
	{ErrOpponentMissing, CodeOpponentMissing},
	{ErrNotAParticipant, CodeNotAParticipant},
	{ErrNotYourTurn, CodeNotYourTurn},
	{ErrCellOccupied, CodeCellOccupied},
	{ErrOutOfBounds, CodeOutOfBounds},
	{ErrStoreConflict, CodeStoreConflict},
	{ErrInvalidMark, CodeInvalidMark},
	{ErrInvalidArguments, CodeInvalidArguments},
}

// Code returns the stable client-facing code for err. Unknown errors map to CodeInternal.
func Code(err error) string {
	if err == nil {
		return ""
	}

	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}

	return CodeInternal
}

// IsDomain reports whether err is a rejection the caller caused, as opposed to an infrastructure failure.
func IsDomain(err error) bool {
	code := Code(err)
	return code != "" && code != CodeInternal && code != CodeStoreConflict
}
