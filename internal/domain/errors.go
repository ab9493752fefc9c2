package domain

import "errors"

// Validation errors: bad input, rejected before any store interaction.
var (
	ErrInvalidConfig    = errors.New("invalid auction config")
	ErrEmptyMatchName   = errors.New("match name is required")
	ErrEmptyLotList     = errors.New("lot list must not be empty")
	ErrInvalidIncrement = errors.New("bid increment must be positive")
)

// Precondition failures: the room is not in the state the action requires.
// These are expected, frequent outcomes under contention, never crashes.
var (
	ErrRoomAlreadyLive      = errors.New("auction has already started")
	ErrRoomNotLive          = errors.New("auction has not started")
	ErrLotAlreadyActive     = errors.New("a lot is already on the block")
	ErrNoLotsRemaining      = errors.New("all lots have been sold")
	ErrNoActiveLot          = errors.New("no lot on the block")
	ErrNoBidsPlaced         = errors.New("no bids placed yet")
	ErrAlreadyHighestBidder = errors.New("already the highest bidder")
	ErrSquadFull            = errors.New("squad is full")
	ErrInsufficientBalance  = errors.New("insufficient balance")
	ErrReserveShortfall     = errors.New("balance must cover remaining mandatory squad slots")
)

// Lookup and authorization errors.
var (
	ErrRoomNotFound       = errors.New("room not found")
	ErrUnknownParticipant = errors.New("participant not found in room")
	ErrNotAdmin           = errors.New("only the room admin can perform this action")
)

// IsPrecondition reports whether err is a state-precondition rejection rather
// than bad input or a missing resource.
func IsPrecondition(err error) bool {
	for _, target := range []error{
		ErrRoomAlreadyLive, ErrRoomNotLive, ErrLotAlreadyActive, ErrNoLotsRemaining,
		ErrNoActiveLot, ErrNoBidsPlaced, ErrAlreadyHighestBidder, ErrSquadFull,
		ErrInsufficientBalance, ErrReserveShortfall,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
