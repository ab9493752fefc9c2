// Package archive persists completed auctions to postgres for the past-matches
// list and the CSV export. The live room store stays the source of truth until
// the last lot sells; archiving happens once, after that sale.
package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/ashwinrao/auction-arena/internal/domain"
)

type Repository interface {
	Save(ctx context.Context, rec *domain.ArchivedAuction) error
	GetByCode(ctx context.Context, code string) (*domain.ArchivedAuction, error)
	List(ctx context.Context, limit, offset int) ([]*domain.ArchivedAuction, error)
}

// Snapshot flattens a finished room into its archive record.
func Snapshot(room *domain.Room, completedAt time.Time) (*domain.ArchivedAuction, error) {
	configJSON, err := json.Marshal(room.Config)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	lotsJSON, err := json.Marshal(room.Lots)
	if err != nil {
		return nil, fmt.Errorf("encode lots: %w", err)
	}

	participants := make([]domain.ArchivedParticipant, 0, len(room.Participants))
	for id, p := range room.Participants {
		participants = append(participants, domain.ArchivedParticipant{
			Identity:    id,
			DisplayName: p.DisplayName,
			Balance:     p.Balance,
			Squad:       p.Squad,
			IsAdmin:     p.IsAdmin,
		})
	}
	sort.Slice(participants, func(i, j int) bool {
		return participants[i].DisplayName < participants[j].DisplayName
	})
	participantsJSON, err := json.Marshal(participants)
	if err != nil {
		return nil, fmt.Errorf("encode participants: %w", err)
	}

	return &domain.ArchivedAuction{
		ID:           uuid.New(),
		Code:         room.Code,
		MatchName:    room.MatchName,
		AdminID:      room.AdminID,
		Config:       datatypes.JSON(configJSON),
		Participants: datatypes.JSON(participantsJSON),
		Lots:         datatypes.JSON(lotsJSON),
		CreatedAt:    room.CreatedAt,
		CompletedAt:  completedAt,
	}, nil
}

// DecodeParticipants unpacks the participants column of a record.
func DecodeParticipants(rec *domain.ArchivedAuction) ([]domain.ArchivedParticipant, error) {
	var participants []domain.ArchivedParticipant
	if err := json.Unmarshal(rec.Participants, &participants); err != nil {
		return nil, fmt.Errorf("decode participants for %s: %w", rec.Code, err)
	}
	return participants, nil
}
