package websocket

import (
	"encoding/json"
	"time"

	"github.com/ashwinrao/auction-arena/internal/domain"
	"github.com/ashwinrao/auction-arena/internal/session"
)

type MessageType string

const (
	// Client to Server
	MessageTypeJoinRoom MessageType = "JOIN_ROOM"
	MessageTypePlaceBid MessageType = "PLACE_BID"
	MessageTypeSpinLot  MessageType = "SPIN_LOT"
	MessageTypeSellLot  MessageType = "SELL_LOT"

	// Server to Client
	MessageTypeStateSync MessageType = "STATE_SYNC"
	MessageTypeLotSold   MessageType = "LOT_SOLD"
	MessageTypeNotice    MessageType = "NOTICE"
	MessageTypeError     MessageType = "ERROR"
)

type Message struct {
	Type      MessageType     `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp int64           `json:"timestamp"`
}

func NewMessage(msgType MessageType, payload interface{}) (*Message, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Message{
		Type:      msgType,
		Payload:   payloadBytes,
		Timestamp: time.Now().UnixMilli(),
	}, nil
}

// Client to Server payloads

type JoinRoomPayload struct {
	Code string `json:"code"`
}

type PlaceBidPayload struct {
	Increment int `json:"increment"`
}

type SpinLotPayload struct {
	BasePrice int `json:"basePrice"`
}

// Server to Client payloads

type ParticipantState struct {
	Identity    string               `json:"identity"`
	DisplayName string               `json:"displayName"`
	Balance     int                  `json:"balance"`
	SquadSize   int                  `json:"squadSize"`
	Squad       []domain.Acquisition `json:"squad"`
	IsAdmin     bool                 `json:"isAdmin"`
}

type RoomState struct {
	Code         string               `json:"code"`
	Status       domain.RoomStatus    `json:"status"`
	MatchName    string               `json:"matchName"`
	Config       domain.AuctionConfig `json:"config"`
	Lots         []domain.Lot         `json:"lots"`
	CurrentLot   *domain.CurrentLot   `json:"currentLot"`
	Participants []ParticipantState   `json:"participants"`
}

type StateSyncPayload struct {
	Room RoomState     `json:"room"`
	You  *session.View `json:"you,omitempty"`
}

type NoticePayload struct {
	Text string `json:"text"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func newRoomState(room *domain.Room) RoomState {
	participants := make([]ParticipantState, 0, len(room.Participants))
	for id, p := range room.Participants {
		participants = append(participants, ParticipantState{
			Identity:    id.String(),
			DisplayName: p.DisplayName,
			Balance:     p.Balance,
			SquadSize:   p.SquadSize(),
			Squad:       p.Squad,
			IsAdmin:     p.IsAdmin,
		})
	}

	return RoomState{
		Code:         room.Code,
		Status:       room.Status,
		MatchName:    room.MatchName,
		Config:       room.Config,
		Lots:         room.Lots,
		CurrentLot:   room.CurrentLot,
		Participants: participants,
	}
}
