// Package directory handles room creation, code lookup and the join/rejoin
// flow. It owns nothing once a room is LIVE; the engine takes over from there.
package directory

import (
	"context"
	"crypto/rand"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ashwinrao/auction-arena/internal/domain"
	"github.com/ashwinrao/auction-arena/internal/store"
)

const (
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength   = 6

	// maxCodeAttempts bounds regeneration when a generated code collides with
	// an existing room. The store rejects duplicates; we just roll again.
	maxCodeAttempts = 5
)

var ErrCodeSpaceExhausted = errors.New("could not generate a unique room code")

type Directory struct {
	store store.RoomStore
}

func New(roomStore store.RoomStore) *Directory {
	return &Directory{store: roomStore}
}

// CreateRoom makes a WAITING room under a fresh code and enrolls the creator as
// its admin participant. The admin bids like everyone else, so they get a purse
// too; it is re-set to the configured amount when the auction is configured.
func (d *Directory) CreateRoom(ctx context.Context, adminID uuid.UUID, displayName string) (*domain.Room, error) {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		displayName = "Host"
	}

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		room := &domain.Room{
			Code:    generateCode(),
			AdminID: adminID,
			Status:  domain.RoomStatusWaiting,
			Config:  domain.DefaultConfig(),
			Participants: map[uuid.UUID]*domain.Participant{
				adminID: {
					DisplayName: displayName + " (Host)",
					Balance:     domain.DefaultPursePoints,
					Squad:       []domain.Acquisition{},
					IsAdmin:     true,
				},
			},
			CreatedAt: time.Now().UTC(),
		}

		err := d.store.Create(ctx, room)
		if errors.Is(err, store.ErrCodeTaken) {
			continue
		}
		if err != nil {
			return nil, err
		}

		logrus.WithFields(logrus.Fields{
			"room":  room.Code,
			"admin": adminID,
		}).Info("room created")
		return room, nil
	}
	return nil, ErrCodeSpaceExhausted
}

// JoinRoom enrolls an identity in a room, or reconnects it if it already
// belongs. A rejoining admin gets the admin role back by AdminID comparison;
// the client-supplied role is never consulted.
func (d *Directory) JoinRoom(ctx context.Context, code string, identity uuid.UUID, displayName string) (*domain.Room, domain.Role, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		displayName = "Bidder"
	}

	room, err := d.store.AtomicUpdate(ctx, code, func(room *domain.Room) (*domain.Room, error) {
		if room.Participant(identity) != nil {
			// Rejoin: existing state stands untouched.
			return room, nil
		}
		if room.Participants == nil {
			room.Participants = make(map[uuid.UUID]*domain.Participant)
		}
		room.Participants[identity] = &domain.Participant{
			DisplayName: displayName,
			Balance:     room.Config.PursePoints,
			Squad:       []domain.Acquisition{},
			IsAdmin:     room.AdminID == identity,
		}
		return room, nil
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, "", domain.ErrRoomNotFound
		}
		return nil, "", err
	}

	role := room.RoleFor(identity)
	logrus.WithFields(logrus.Fields{
		"room":     code,
		"identity": identity,
		"role":     role,
	}).Info("participant joined")
	return room, role, nil
}

// RestoreSession re-derives an existing participant's role from the current
// room state. Safe to call any number of times after a reload or reconnect.
func (d *Directory) RestoreSession(ctx context.Context, code string, identity uuid.UUID) (*domain.Room, domain.Role, error) {
	code = strings.ToUpper(strings.TrimSpace(code))

	room, err := d.store.Get(ctx, code)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, "", domain.ErrRoomNotFound
		}
		return nil, "", err
	}
	if room.Participant(identity) == nil {
		return nil, "", domain.ErrUnknownParticipant
	}
	return room, room.RoleFor(identity), nil
}

// RoomSummary is one row of the lobby's room list.
type RoomSummary struct {
	Code      string            `json:"code"`
	MatchName string            `json:"matchName"`
	Status    domain.RoomStatus `json:"status"`
	CreatedAt time.Time         `json:"createdAt"`
}

// ListRooms returns up to limit rooms, newest first.
func (d *Directory) ListRooms(ctx context.Context, limit int) ([]RoomSummary, error) {
	codes, err := d.store.ListCodes(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]RoomSummary, 0, len(codes))
	for _, code := range codes {
		room, err := d.store.Get(ctx, code)
		if err != nil {
			// A room deleted between list and read is not worth failing over.
			continue
		}
		summaries = append(summaries, RoomSummary{
			Code:      room.Code,
			MatchName: room.MatchName,
			Status:    room.Status,
			CreatedAt: room.CreatedAt,
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].CreatedAt.After(summaries[j].CreatedAt)
	})
	if limit > 0 && len(summaries) > limit {
		summaries = summaries[:limit]
	}
	return summaries, nil
}

func generateCode() string {
	buf := make([]byte, codeLength)
	rand.Read(buf)
	code := make([]byte, codeLength)
	for i, b := range buf {
		code[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(code)
}
