package handlers

import (
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ashwinrao/auction-arena/internal/api/middleware"
	"github.com/ashwinrao/auction-arena/internal/directory"
	"github.com/ashwinrao/auction-arena/internal/domain"
	"github.com/ashwinrao/auction-arena/internal/store"
)

type RoomHandler struct {
	directory *directory.Directory
	store     store.RoomStore
}

func NewRoomHandler(dir *directory.Directory, roomStore store.RoomStore) *RoomHandler {
	return &RoomHandler{directory: dir, store: roomStore}
}

type ParticipantResponse struct {
	Identity    string               `json:"identity"`
	DisplayName string               `json:"displayName"`
	Balance     int                  `json:"balance"`
	SquadSize   int                  `json:"squadSize"`
	Squad       []domain.Acquisition `json:"squad"`
	IsAdmin     bool                 `json:"isAdmin"`
}

type RoomResponse struct {
	Code         string                `json:"code"`
	Status       string                `json:"status"`
	MatchName    string                `json:"matchName"`
	Config       domain.AuctionConfig  `json:"config"`
	Lots         []domain.Lot          `json:"lots"`
	CurrentLot   *domain.CurrentLot    `json:"currentLot"`
	Participants []ParticipantResponse `json:"participants"`
	CreatedAt    time.Time             `json:"createdAt"`
}

func NewRoomResponse(room *domain.Room) RoomResponse {
	participants := make([]ParticipantResponse, 0, len(room.Participants))
	for id, p := range room.Participants {
		participants = append(participants, ParticipantResponse{
			Identity:    id.String(),
			DisplayName: p.DisplayName,
			Balance:     p.Balance,
			SquadSize:   p.SquadSize(),
			Squad:       p.Squad,
			IsAdmin:     p.IsAdmin,
		})
	}
	sort.Slice(participants, func(i, j int) bool {
		return participants[i].DisplayName < participants[j].DisplayName
	})

	return RoomResponse{
		Code:         room.Code,
		Status:       string(room.Status),
		MatchName:    room.MatchName,
		Config:       room.Config,
		Lots:         room.Lots,
		CurrentLot:   room.CurrentLot,
		Participants: participants,
		CreatedAt:    room.CreatedAt,
	}
}

type CreateRoomResponse struct {
	Room RoomResponse `json:"room"`
	Role string       `json:"role"`
}

func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	room, err := h.directory.CreateRoom(r.Context(), identity, middleware.GetDisplayName(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, CreateRoomResponse{
		Room: NewRoomResponse(room),
		Role: string(domain.RoleAdmin),
	})
}

func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	room, err := h.store.Get(r.Context(), code)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, NewRoomResponse(room))
}

type JoinRoomResponse struct {
	Room RoomResponse `json:"room"`
	Role string       `json:"role"`
}

func (h *RoomHandler) Join(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	code := chi.URLParam(r, "code")

	room, role, err := h.directory.JoinRoom(r.Context(), code, identity, middleware.GetDisplayName(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, JoinRoomResponse{
		Room: NewRoomResponse(room),
		Role: string(role),
	})
}

func (h *RoomHandler) Restore(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	code := chi.URLParam(r, "code")

	room, role, err := h.directory.RestoreSession(r.Context(), code, identity)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, JoinRoomResponse{
		Room: NewRoomResponse(room),
		Role: string(role),
	})
}

func (h *RoomHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	rooms, err := h.directory.ListRooms(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, rooms)
}
