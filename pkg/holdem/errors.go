package holdem

import (
	"errors"
	"fmt"
)

// ParticipantError is an error caused by the acting participant
// It is safe to show to the player and no state was changed.
type ParticipantError string

func (p ParticipantError) Error() string {
	return string(p)
}

func newParticipantError(format string, a ...interface{}) ParticipantError {
	return ParticipantError(fmt.Sprintf(format, a...))
}

// ErrNotYourTurn is an error when the participant cannot act
var ErrNotYourTurn = ParticipantError("it is not your turn")

// ErrHandComplete is an error when an action arrives after the hand was resolved
var ErrHandComplete = ParticipantError("the hand is already resolved")

// ErrNotInHand is returned for players who were not dealt into the hand
var ErrNotInHand = ParticipantError("you are not in this hand")

// ErrInvariant marks a structural failure. The hand cannot continue.
var ErrInvariant = errors.New("hand invariant violated")

// IsParticipantError returns true if err is (or wraps) a ParticipantError
func IsParticipantError(err error) bool {
	var pe ParticipantError
	return errors.As(err, &pe)
}
