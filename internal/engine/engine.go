// Package engine owns the auction state machine for a room: configuration,
// lot selection, bid validation and sale settlement. Every state change runs as
// one atomic conditional update against the room store, so invariants hold even
// with many bidders hammering the same lot.
package engine

import (
	"context"
	"errors"
	"math/rand"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ashwinrao/auction-arena/internal/domain"
	"github.com/ashwinrao/auction-arena/internal/store"
)

type Engine struct {
	store store.RoomStore
}

func New(roomStore store.RoomStore) *Engine {
	return &Engine{store: roomStore}
}

type ConfigureInput struct {
	MatchName string
	Config    domain.AuctionConfig
	LotNames  []string
}

// normalize applies defaults for blank config fields, then validates.
func (in *ConfigureInput) normalize() error {
	in.MatchName = strings.TrimSpace(in.MatchName)
	if in.MatchName == "" {
		return domain.ErrEmptyMatchName
	}

	var lots []string
	for _, name := range in.LotNames {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			lots = append(lots, trimmed)
		}
	}
	if len(lots) == 0 {
		return domain.ErrEmptyLotList
	}
	in.LotNames = lots

	if in.Config.PursePoints <= 0 {
		in.Config.PursePoints = domain.DefaultPursePoints
	}
	if in.Config.MaxSquad <= 0 {
		in.Config.MaxSquad = domain.DefaultMaxSquad
	}
	if in.Config.MinSquad <= 0 {
		in.Config.MinSquad = domain.DefaultMinSquad
	}
	if in.Config.ManagerSlots <= 0 {
		in.Config.ManagerSlots = domain.DefaultManagerSlots
	}
	if in.Config.MinSquad > in.Config.MaxSquad {
		return domain.ErrInvalidConfig
	}
	return nil
}

// ConfigureAuction fixes the match name, config and lot list and moves the room
// WAITING -> LIVE. The admin's balance is reset to the configured purse, since
// their participant entry was created under the default purse.
func (e *Engine) ConfigureAuction(ctx context.Context, code string, actorID uuid.UUID, in ConfigureInput) (*domain.Room, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}

	room, err := e.store.AtomicUpdate(ctx, code, func(room *domain.Room) (*domain.Room, error) {
		if room.AdminID != actorID {
			return nil, domain.ErrNotAdmin
		}
		if room.Status != domain.RoomStatusWaiting {
			return nil, domain.ErrRoomAlreadyLive
		}

		room.MatchName = in.MatchName
		room.Config = in.Config
		room.Lots = make([]domain.Lot, len(in.LotNames))
		for i, name := range in.LotNames {
			room.Lots[i] = domain.Lot{Name: name}
		}
		room.Status = domain.RoomStatusLive

		if admin := room.Participant(actorID); admin != nil {
			admin.Balance = in.Config.PursePoints
		}
		return room, nil
	})
	if err != nil {
		return nil, mapStoreErr(err)
	}

	logrus.WithFields(logrus.Fields{
		"room":  code,
		"match": in.MatchName,
		"lots":  len(in.LotNames),
	}).Info("auction configured")
	return room, nil
}

// SpinNextLot picks one unsold lot uniformly at random and puts it on the block.
// It rejects rather than overwrites when a lot is already active, so an
// in-progress bid can never be lost to an impatient admin.
func (e *Engine) SpinNextLot(ctx context.Context, code string, actorID uuid.UUID, basePrice int) (*domain.Room, error) {
	if basePrice < 0 {
		basePrice = 0
	}

	room, err := e.store.AtomicUpdate(ctx, code, func(room *domain.Room) (*domain.Room, error) {
		if room.AdminID != actorID {
			return nil, domain.ErrNotAdmin
		}
		if room.Status != domain.RoomStatusLive {
			return nil, domain.ErrRoomNotLive
		}
		if room.CurrentLot != nil {
			return nil, domain.ErrLotAlreadyActive
		}

		unsold := room.UnsoldLots()
		if len(unsold) == 0 {
			return nil, domain.ErrNoLotsRemaining
		}

		pick := unsold[rand.Intn(len(unsold))]
		room.CurrentLot = &domain.CurrentLot{
			Name:       pick.Name,
			BasePrice:  basePrice,
			CurrentBid: basePrice,
		}
		return room, nil
	})
	if err != nil {
		return nil, mapStoreErr(err)
	}

	logrus.WithFields(logrus.Fields{
		"room": code,
		"lot":  room.CurrentLot.Name,
	}).Info("lot on the block")
	return room, nil
}

// PlaceBid raises the standing bid for the active lot. The whole rule set runs
// against the latest room value inside the store transaction; concurrent bids
// serialize through the conditional commit, so each successful bid strictly
// raises the one it read.
func (e *Engine) PlaceBid(ctx context.Context, code string, bidderID uuid.UUID, increment int) (*domain.Room, error) {
	if increment <= 0 {
		return nil, domain.ErrInvalidIncrement
	}

	room, err := e.store.AtomicUpdate(ctx, code, func(room *domain.Room) (*domain.Room, error) {
		nextBid, err := room.ValidateBid(bidderID, increment)
		if err != nil {
			return nil, err
		}

		bidder := room.Participant(bidderID)
		id := bidderID
		name := bidder.DisplayName
		room.CurrentLot.CurrentBid = nextBid
		room.CurrentLot.HighestBidderID = &id
		room.CurrentLot.HighestBidderName = &name
		return room, nil
	})
	if err != nil {
		return nil, mapStoreErr(err)
	}

	logrus.WithFields(logrus.Fields{
		"room":   code,
		"lot":    room.CurrentLot.Name,
		"bid":    room.CurrentLot.CurrentBid,
		"bidder": bidderID,
	}).Debug("bid placed")
	return room, nil
}

// SaleResult reports a settled sale.
type SaleResult struct {
	LotName         string    `json:"lotName"`
	Price           int       `json:"price"`
	WinnerID        uuid.UUID `json:"winnerId"`
	WinnerName      string    `json:"winnerName"`
	AuctionComplete bool      `json:"auctionComplete"`
}

// SellCurrentLot settles the active lot to the highest bidder: the winner's
// balance drops by the standing bid, the lot joins their squad, the matching
// lot entry flips sold, and the block clears, all in one commit. Called
// concurrently it settles exactly once; later calls see no active lot.
func (e *Engine) SellCurrentLot(ctx context.Context, code string, actorID uuid.UUID) (*domain.Room, *SaleResult, error) {
	// Best-effort pre-check so the admin gets a specific message. Correctness
	// rests on the re-check inside the transaction, not on this read.
	current, err := e.store.Get(ctx, code)
	if err != nil {
		return nil, nil, mapStoreErr(err)
	}
	if current.CurrentLot == nil {
		return nil, nil, domain.ErrNoActiveLot
	}
	if current.CurrentLot.HighestBidderID == nil {
		return nil, nil, domain.ErrNoBidsPlaced
	}

	var result SaleResult
	room, err := e.store.AtomicUpdate(ctx, code, func(room *domain.Room) (*domain.Room, error) {
		if room.AdminID != actorID {
			return nil, domain.ErrNotAdmin
		}
		lot := room.CurrentLot
		if lot == nil {
			return nil, domain.ErrNoActiveLot
		}
		if lot.HighestBidderID == nil {
			return nil, domain.ErrNoBidsPlaced
		}

		winner := room.Participant(*lot.HighestBidderID)
		if winner == nil {
			return nil, domain.ErrUnknownParticipant
		}

		winner.Balance -= lot.CurrentBid
		winner.Squad = append(winner.Squad, domain.Acquisition{
			Name:  lot.Name,
			Price: lot.CurrentBid,
		})

		// Flip sold on the lot entry matching the active lot as of this same
		// transaction, never a stale read.
		for i := range room.Lots {
			if room.Lots[i].Name == lot.Name && !room.Lots[i].Sold {
				room.Lots[i].Sold = true
				break
			}
		}

		result = SaleResult{
			LotName:    lot.Name,
			Price:      lot.CurrentBid,
			WinnerID:   *lot.HighestBidderID,
			WinnerName: winner.DisplayName,
		}
		room.CurrentLot = nil
		result.AuctionComplete = room.AllLotsSold()
		return room, nil
	})
	if err != nil {
		return nil, nil, mapStoreErr(err)
	}

	logrus.WithFields(logrus.Fields{
		"room":     code,
		"lot":      result.LotName,
		"price":    result.Price,
		"winner":   result.WinnerID,
		"complete": result.AuctionComplete,
	}).Info("lot sold")
	return room, &result, nil
}

func mapStoreErr(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return domain.ErrRoomNotFound
	}
	return err
}
