package domain

import "github.com/google/uuid"

// NextBid computes the bid a participant would be committing to. The opening bid
// is max(increment, basePrice); after that each bid raises the standing bid by
// the increment.
func (c *CurrentLot) NextBid(increment int) int {
	if c.HighestBidderID == nil {
		if increment < c.BasePrice {
			return c.BasePrice
		}
		return increment
	}
	return c.CurrentBid + increment
}

// ValidateBid runs the full bid rule set against a room snapshot and returns the
// bid amount that would be committed. The engine calls this inside its atomic
// transaction; the bidder session calls it read-only for immediate UI feedback.
//
// Constraint order matters and any failure leaves the room untouched:
// squad capacity, then affordability, then the reserve rule that keeps enough
// points back to fill every remaining mandatory squad slot at 1 point each.
func (r *Room) ValidateBid(bidderID uuid.UUID, increment int) (int, error) {
	if increment <= 0 {
		return 0, ErrInvalidIncrement
	}
	if r.Status != RoomStatusLive {
		return 0, ErrRoomNotLive
	}
	lot := r.CurrentLot
	if lot == nil {
		return 0, ErrNoActiveLot
	}
	bidder := r.Participant(bidderID)
	if bidder == nil {
		return 0, ErrUnknownParticipant
	}
	if lot.HighestBidderID != nil && *lot.HighestBidderID == bidderID {
		return 0, ErrAlreadyHighestBidder
	}

	nextBid := lot.NextBid(increment)

	if bidder.SquadSize()+1 > r.Config.MaxSquad {
		return 0, ErrSquadFull
	}
	remaining := bidder.Balance - nextBid
	if remaining < 0 {
		return 0, ErrInsufficientBalance
	}
	slotsStillNeeded := r.Config.MinSquad - (bidder.SquadSize() + 1)
	if slotsStillNeeded < 0 {
		slotsStillNeeded = 0
	}
	if remaining < slotsStillNeeded {
		return 0, ErrReserveShortfall
	}
	return nextBid, nil
}
