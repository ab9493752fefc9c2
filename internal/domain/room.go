package domain

import (
	"time"

	"github.com/google/uuid"
)

type RoomStatus string

const (
	RoomStatusWaiting RoomStatus = "WAITING"
	RoomStatusLive    RoomStatus = "LIVE"
)

// Auction defaults applied when the admin leaves config fields blank.
const (
	DefaultPursePoints  = 50
	DefaultMaxSquad     = 6
	DefaultMinSquad     = 5
	DefaultManagerSlots = 4
)

// AuctionConfig is fixed at the moment the room goes LIVE and never changes after.
type AuctionConfig struct {
	PursePoints  int `json:"pursePoints"`
	MaxSquad     int `json:"maxSquad"`
	MinSquad     int `json:"minSquad"`
	ManagerSlots int `json:"managerSlots"`
}

func DefaultConfig() AuctionConfig {
	return AuctionConfig{
		PursePoints:  DefaultPursePoints,
		MaxSquad:     DefaultMaxSquad,
		MinSquad:     DefaultMinSquad,
		ManagerSlots: DefaultManagerSlots,
	}
}

// Lot is one auctionable player. Sold flips true exactly once and never back.
type Lot struct {
	Name string `json:"name"`
	Sold bool   `json:"sold"`
}

// CurrentLot is the lot on the block. At most one per room; nil between sales.
type CurrentLot struct {
	Name              string     `json:"name"`
	BasePrice         int        `json:"basePrice"`
	CurrentBid        int        `json:"currentBid"`
	HighestBidderID   *uuid.UUID `json:"highestBidderId"`
	HighestBidderName *string    `json:"highestBidderName"`
}

// Room is the aggregate the store persists under its code. All auction state for
// one event lives here so a single conditional update covers every invariant.
type Room struct {
	Code         string                     `json:"code"`
	AdminID      uuid.UUID                  `json:"adminId"`
	Status       RoomStatus                 `json:"status"`
	MatchName    string                     `json:"matchName"`
	Config       AuctionConfig              `json:"config"`
	Lots         []Lot                      `json:"lots"`
	CurrentLot   *CurrentLot                `json:"currentLot"`
	Participants map[uuid.UUID]*Participant `json:"participants"`
	CreatedAt    time.Time                  `json:"createdAt"`
}

func (r *Room) Participant(id uuid.UUID) *Participant {
	if r.Participants == nil {
		return nil
	}
	return r.Participants[id]
}

func (r *Room) UnsoldLots() []Lot {
	var unsold []Lot
	for _, lot := range r.Lots {
		if !lot.Sold {
			unsold = append(unsold, lot)
		}
	}
	return unsold
}

func (r *Room) AllLotsSold() bool {
	if len(r.Lots) == 0 {
		return false
	}
	for _, lot := range r.Lots {
		if !lot.Sold {
			return false
		}
	}
	return true
}

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleBidder Role = "bidder"
)

// RoleFor derives the caller's role from the room itself. The admin flag a client
// caches locally is never trusted; AdminID is the only source of truth.
func (r *Room) RoleFor(identity uuid.UUID) Role {
	if r.AdminID == identity {
		return RoleAdmin
	}
	return RoleBidder
}

// Clone deep-copies the room so store snapshots can be mutated freely by callers.
func (r *Room) Clone() *Room {
	if r == nil {
		return nil
	}
	next := *r
	if r.Lots != nil {
		next.Lots = make([]Lot, len(r.Lots))
		copy(next.Lots, r.Lots)
	}
	if r.CurrentLot != nil {
		lot := *r.CurrentLot
		if r.CurrentLot.HighestBidderID != nil {
			id := *r.CurrentLot.HighestBidderID
			lot.HighestBidderID = &id
		}
		if r.CurrentLot.HighestBidderName != nil {
			name := *r.CurrentLot.HighestBidderName
			lot.HighestBidderName = &name
		}
		next.CurrentLot = &lot
	}
	if r.Participants != nil {
		next.Participants = make(map[uuid.UUID]*Participant, len(r.Participants))
		for id, p := range r.Participants {
			next.Participants[id] = p.Clone()
		}
	}
	return &next
}
