package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ashwinrao/auction-arena/internal/api/middleware"
	"github.com/ashwinrao/auction-arena/internal/domain"
	"github.com/ashwinrao/auction-arena/internal/engine"
	"github.com/ashwinrao/auction-arena/internal/session"
	"github.com/ashwinrao/auction-arena/internal/store"
)

type AuctionHandler struct {
	engine *engine.Engine
	store  store.RoomStore

	// onComplete fires after the sale that ends the auction; nil disables it.
	onComplete func(*domain.Room)
}

func NewAuctionHandler(eng *engine.Engine, roomStore store.RoomStore, onComplete func(*domain.Room)) *AuctionHandler {
	return &AuctionHandler{
		engine:     eng,
		store:      roomStore,
		onComplete: onComplete,
	}
}

type ConfigureRequest struct {
	MatchName    string   `json:"matchName"`
	PursePoints  int      `json:"pursePoints"`
	MaxSquad     int      `json:"maxSquad"`
	MinSquad     int      `json:"minSquad"`
	ManagerSlots int      `json:"managerSlots"`
	Lots         []string `json:"lots"`
}

func (h *AuctionHandler) Configure(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req ConfigureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	room, err := h.engine.ConfigureAuction(r.Context(), chi.URLParam(r, "code"), identity, engine.ConfigureInput{
		MatchName: req.MatchName,
		Config: domain.AuctionConfig{
			PursePoints:  req.PursePoints,
			MaxSquad:     req.MaxSquad,
			MinSquad:     req.MinSquad,
			ManagerSlots: req.ManagerSlots,
		},
		LotNames: req.Lots,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, NewRoomResponse(room))
}

type SpinRequest struct {
	BasePrice int `json:"basePrice"`
}

func (h *AuctionHandler) Spin(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	// Body is optional; an empty spin uses base price 0.
	var req SpinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	room, err := h.engine.SpinNextLot(r.Context(), chi.URLParam(r, "code"), identity, req.BasePrice)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, NewRoomResponse(room))
}

type BidRequest struct {
	Increment int `json:"increment"`
}

func (h *AuctionHandler) Bid(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req BidRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	room, err := h.engine.PlaceBid(r.Context(), chi.URLParam(r, "code"), identity, req.Increment)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, NewRoomResponse(room))
}

type SellResponse struct {
	Room RoomResponse      `json:"room"`
	Sale engine.SaleResult `json:"sale"`
}

func (h *AuctionHandler) Sell(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	room, sale, err := h.engine.SellCurrentLot(r.Context(), chi.URLParam(r, "code"), identity)
	if err != nil {
		writeError(w, err)
		return
	}

	if sale.AuctionComplete && h.onComplete != nil {
		h.onComplete(room)
	}

	writeJSON(w, http.StatusOK, SellResponse{
		Room: NewRoomResponse(room),
		Sale: *sale,
	})
}

func (h *AuctionHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	room, err := h.store.Get(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		writeError(w, err)
		return
	}

	view, err := session.NewView(room, identity)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}
