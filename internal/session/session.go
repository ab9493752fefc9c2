// Package session derives the per-bidder view of a room snapshot: balance,
// squad, role and whether a bid would currently be legal. Views are read-only;
// every action still travels through the engine, whose atomic check is the
// authority.
package session

import (
	"github.com/google/uuid"

	"github.com/ashwinrao/auction-arena/internal/domain"
)

// View is everything a single participant's UI needs from one room snapshot.
type View struct {
	Code            string               `json:"code"`
	Status          domain.RoomStatus    `json:"status"`
	MatchName       string               `json:"matchName"`
	Role            domain.Role          `json:"role"`
	DisplayName     string               `json:"displayName"`
	Balance         int                  `json:"balance"`
	Squad           []domain.Acquisition `json:"squad"`
	SquadSize       int                  `json:"squadSize"`
	MaxSquad        int                  `json:"maxSquad"`
	RemainingLots   int                  `json:"remainingLots"`
	CurrentLot      *domain.CurrentLot   `json:"currentLot"`
	IsHighestBidder bool                 `json:"isHighestBidder"`
	CanBid          bool                 `json:"canBid"`
	BidBlockReason  string               `json:"bidBlockReason,omitempty"`
}

// MinBidIncrement is the increment the view's bid legality is probed with,
// matching the single +1 bid button.
const MinBidIncrement = 1

// NewView builds the view for one identity. The role comes from the room's
// AdminID, never from anything the client claims.
func NewView(room *domain.Room, identity uuid.UUID) (*View, error) {
	p := room.Participant(identity)
	if p == nil {
		return nil, domain.ErrUnknownParticipant
	}

	v := &View{
		Code:          room.Code,
		Status:        room.Status,
		MatchName:     room.MatchName,
		Role:          room.RoleFor(identity),
		DisplayName:   p.DisplayName,
		Balance:       p.Balance,
		Squad:         p.Squad,
		SquadSize:     p.SquadSize(),
		MaxSquad:      room.Config.MaxSquad,
		RemainingLots: len(room.UnsoldLots()),
		CurrentLot:    room.CurrentLot,
	}

	if lot := room.CurrentLot; lot != nil && lot.HighestBidderID != nil {
		v.IsHighestBidder = *lot.HighestBidderID == identity
	}

	if _, err := room.ValidateBid(identity, MinBidIncrement); err != nil {
		v.BidBlockReason = err.Error()
	} else {
		v.CanBid = true
	}
	return v, nil
}
