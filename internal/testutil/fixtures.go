package testutil

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ashwinrao/auction-arena/internal/domain"
	"github.com/ashwinrao/auction-arena/internal/store"
)

// RoomBuilder seeds rooms straight into a store with a builder pattern
type RoomBuilder struct {
	room *domain.Room
}

// NewRoomBuilder creates a LIVE room with a fresh admin and default config
func NewRoomBuilder() *RoomBuilder {
	adminID := uuid.New()
	return &RoomBuilder{
		room: &domain.Room{
			Code:    "T" + strings.ToUpper(uuid.New().String()[:5]),
			AdminID: adminID,
			Status:  domain.RoomStatusLive,
			Config:  domain.DefaultConfig(),
			Participants: map[uuid.UUID]*domain.Participant{
				adminID: {
					DisplayName: "Admin (Host)",
					Balance:     domain.DefaultPursePoints,
					Squad:       []domain.Acquisition{},
					IsAdmin:     true,
				},
			},
			CreatedAt: time.Now().UTC(),
		},
	}
}

func (b *RoomBuilder) WithCode(code string) *RoomBuilder {
	b.room.Code = code
	return b
}

func (b *RoomBuilder) WithStatus(status domain.RoomStatus) *RoomBuilder {
	b.room.Status = status
	return b
}

func (b *RoomBuilder) WithCreatedAt(at time.Time) *RoomBuilder {
	b.room.CreatedAt = at
	return b
}

func (b *RoomBuilder) WithMatchName(name string) *RoomBuilder {
	b.room.MatchName = name
	return b
}

func (b *RoomBuilder) WithConfig(purse, maxSquad, minSquad int) *RoomBuilder {
	b.room.Config.PursePoints = purse
	b.room.Config.MaxSquad = maxSquad
	b.room.Config.MinSquad = minSquad

	// Participants added before the config change keep pace with the purse.
	for _, p := range b.room.Participants {
		p.Balance = purse
	}
	return b
}

func (b *RoomBuilder) WithLots(names ...string) *RoomBuilder {
	b.room.Lots = make([]domain.Lot, len(names))
	for i, name := range names {
		b.room.Lots[i] = domain.Lot{Name: name}
	}
	return b
}

func (b *RoomBuilder) WithSoldLot(name string) *RoomBuilder {
	for i := range b.room.Lots {
		if b.room.Lots[i].Name == name {
			b.room.Lots[i].Sold = true
		}
	}
	return b
}

func (b *RoomBuilder) WithCurrentLot(lot *domain.CurrentLot) *RoomBuilder {
	b.room.CurrentLot = lot
	return b
}

// WithBidder adds a non-admin participant with the room's purse and returns its identity
func (b *RoomBuilder) WithBidder(name string) (*RoomBuilder, uuid.UUID) {
	id := uuid.New()
	b.room.Participants[id] = &domain.Participant{
		DisplayName: name,
		Balance:     b.room.Config.PursePoints,
		Squad:       []domain.Acquisition{},
	}
	return b, id
}

func (b *RoomBuilder) AdminID() uuid.UUID {
	return b.room.AdminID
}

// Room returns the room under construction without storing it
func (b *RoomBuilder) Room() *domain.Room {
	return b.room
}

// Build creates the room in the store
func (b *RoomBuilder) Build(t *testing.T, s store.RoomStore) *domain.Room {
	t.Helper()

	if err := s.Create(context.Background(), b.room); err != nil {
		t.Fatalf("failed to seed room: %v", err)
	}
	return b.room.Clone()
}
