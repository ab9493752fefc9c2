package websocket

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/ashwinrao/auction-arena/internal/domain"
	"github.com/ashwinrao/auction-arena/internal/engine"
	"github.com/ashwinrao/auction-arena/internal/store"
)

// Hub fans room snapshots out to connected viewers. It keeps one store
// subscription per room with at least one viewer; each committed change is
// re-broadcast as a per-viewer STATE_SYNC. The hub never writes room state
// itself; commands from clients go through the engine like any other caller.
type Hub struct {
	store  store.RoomStore
	engine *engine.Engine

	// onComplete fires after the sale that ends an auction; nil disables it.
	onComplete func(*domain.Room)

	mu    sync.Mutex
	feeds map[string]*feed
}

type feed struct {
	code    string
	cancel  func()
	clients map[*Client]bool
	latest  *domain.Room
}

func NewHub(roomStore store.RoomStore, eng *engine.Engine, onComplete func(*domain.Room)) *Hub {
	return &Hub{
		store:      roomStore,
		engine:     eng,
		onComplete: onComplete,
		feeds:      make(map[string]*feed),
	}
}

// JoinRoom attaches a client to a room's feed, creating the store subscription
// when the client is the room's first viewer.
func (h *Hub) JoinRoom(client *Client, code string) error {
	h.mu.Lock()
	f, ok := h.feeds[code]
	if !ok {
		f = &feed{code: code, clients: make(map[*Client]bool)}
		h.feeds[code] = f
		h.mu.Unlock()

		cancel, err := h.store.Subscribe(context.Background(), code, func(room *domain.Room) {
			h.broadcast(code, room)
		})

		h.mu.Lock()
		if err != nil {
			delete(h.feeds, code)
			h.mu.Unlock()
			return err
		}
		f.cancel = cancel
	}

	var prevCancel func()
	if client.feed != nil && client.feed != f {
		prevCancel = h.detachLocked(client)
	}
	f.clients[client] = true
	client.feed = f
	latest := f.latest
	h.mu.Unlock()

	if prevCancel != nil {
		prevCancel()
	}
	if latest != nil {
		client.sendState(latest)
	}
	return nil
}

// Leave detaches a client; the last viewer's departure tears the feed down.
func (h *Hub) Leave(client *Client) {
	h.mu.Lock()
	cancel := h.detachLocked(client)
	h.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// detachLocked removes the client and, when it was the feed's last viewer,
// returns the subscription's cancel func. The caller invokes it after releasing
// the hub lock: cancellation takes the store's lock, and the store's delivery
// path takes the hub's, so cancelling under the hub lock could deadlock.
func (h *Hub) detachLocked(client *Client) func() {
	f := client.feed
	if f == nil {
		return nil
	}
	delete(f.clients, client)
	client.feed = nil

	if len(f.clients) == 0 {
		delete(h.feeds, f.code)
		logrus.WithField("room", f.code).Debug("room feed closed")
		return f.cancel
	}
	return nil
}

// broadcast runs on the store's notification path, so it must not block:
// per-client delivery is a non-blocking enqueue that drops on a full buffer.
func (h *Hub) broadcast(code string, room *domain.Room) {
	h.mu.Lock()
	f, ok := h.feeds[code]
	if !ok {
		h.mu.Unlock()
		return
	}
	f.latest = room
	clients := make([]*Client, 0, len(f.clients))
	for c := range f.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		c.sendState(room)
	}
}

func (h *Hub) announceSale(code string, sale *engine.SaleResult) {
	h.mu.Lock()
	f, ok := h.feeds[code]
	if !ok {
		h.mu.Unlock()
		return
	}
	clients := make([]*Client, 0, len(f.clients))
	for c := range f.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		c.sendMessage(MessageTypeLotSold, sale)
	}
}

func (h *Hub) completed(room *domain.Room) {
	if h.onComplete != nil {
		h.onComplete(room)
	}
}
