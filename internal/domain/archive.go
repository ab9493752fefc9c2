package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ArchivedAuction is the durable record written once a room's last lot sells,
// backing the past-matches list and the CSV export.
type ArchivedAuction struct {
	ID           uuid.UUID      `json:"id" gorm:"type:uuid;primary_key"`
	Code         string         `json:"code" gorm:"uniqueIndex;not null"`
	MatchName    string         `json:"matchName" gorm:"not null"`
	AdminID      uuid.UUID      `json:"adminId" gorm:"type:uuid;not null"`
	Config       datatypes.JSON `json:"config"`
	Participants datatypes.JSON `json:"participants"`
	Lots         datatypes.JSON `json:"lots"`
	CreatedAt    time.Time      `json:"createdAt"`
	CompletedAt  time.Time      `json:"completedAt"`
}

// ArchivedParticipant is the shape stored in ArchivedAuction.Participants.
type ArchivedParticipant struct {
	Identity    uuid.UUID     `json:"identity"`
	DisplayName string        `json:"displayName"`
	Balance     int           `json:"balance"`
	Squad       []Acquisition `json:"squad"`
	IsAdmin     bool          `json:"isAdmin"`
}
