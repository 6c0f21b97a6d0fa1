package room

import (
	"errors"

	"tablepoker-server/pkg/holdem"
)

// UserError is an error that is safe to show to the player who caused it
type UserError string

func (u UserError) Error() string {
	return string(u)
}

// user errors
const (
	ErrNoTable          = UserError("there is no poker table in this channel")
	ErrTableClosed      = UserError("this table has closed")
	ErrAlreadyJoined    = UserError("you're already in the game or lobby")
	ErrNotAtTable       = UserError("you're not in the game")
	ErrAlreadyLeaving   = UserError("you're already leaving after this hand")
	ErrNoLobby          = UserError("there is no lobby to start")
	ErrNotAdmin         = UserError("only an admin or the player who opened the table can end the game")
)

// ErrNoActiveHand is returned when an action arrives and no hand is being played
var ErrNoActiveHand = errors.New("there is no hand in progress")

// IsUserError returns true if err can be shown to the player as is
func IsUserError(err error) bool {
	var u UserError
	if errors.As(err, &u) {
		return true
	}

	return holdem.IsParticipantError(err) || errors.Is(err, ErrNoActiveHand)
}
