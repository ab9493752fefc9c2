package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/ashwinrao/auction-arena/internal/domain"
	"github.com/ashwinrao/auction-arena/internal/session"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
	commandTimeout = 5 * time.Second
)

type Client struct {
	hub         *Hub
	conn        *websocket.Conn
	send        chan []byte
	identity    uuid.UUID
	displayName string

	// feed is guarded by hub.mu.
	feed *feed
}

func NewClient(hub *Hub, conn *websocket.Conn, identity uuid.UUID, displayName string) *Client {
	return &Client{
		hub:         hub,
		conn:        conn,
		send:        make(chan []byte, 256),
		identity:    identity,
		displayName: displayName,
	}
}

func (c *Client) ReadPump() {
	defer func() {
		c.hub.Leave(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logrus.WithError(err).WithField("identity", c.identity).Warn("websocket read error")
			}
			break
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.sendError("INVALID_MESSAGE", "could not parse message")
			continue
		}

		c.handleMessage(&msg)
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handleMessage(msg *Message) {
	switch msg.Type {
	case MessageTypeJoinRoom:
		var payload JoinRoomPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			c.sendError("INVALID_PAYLOAD", "invalid join payload")
			return
		}
		if err := c.hub.JoinRoom(c, payload.Code); err != nil {
			c.sendError("ROOM_NOT_FOUND", "room does not exist")
		}

	case MessageTypePlaceBid:
		var payload PlaceBidPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			c.sendError("INVALID_PAYLOAD", "invalid bid payload")
			return
		}
		code, ok := c.roomCode()
		if !ok {
			c.sendError("NOT_IN_ROOM", "join a room before bidding")
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		if _, err := c.hub.engine.PlaceBid(ctx, code, c.identity, payload.Increment); err != nil {
			c.rejectOrError(err)
		}

	case MessageTypeSpinLot:
		// Payload is optional; an empty spin uses base price 0.
		var payload SpinLotPayload
		if len(msg.Payload) > 0 {
			if err := json.Unmarshal(msg.Payload, &payload); err != nil {
				c.sendError("INVALID_PAYLOAD", "invalid spin payload")
				return
			}
		}
		code, ok := c.roomCode()
		if !ok {
			c.sendError("NOT_IN_ROOM", "join a room first")
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		if _, err := c.hub.engine.SpinNextLot(ctx, code, c.identity, payload.BasePrice); err != nil {
			c.rejectOrError(err)
		}

	case MessageTypeSellLot:
		code, ok := c.roomCode()
		if !ok {
			c.sendError("NOT_IN_ROOM", "join a room first")
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		room, sale, err := c.hub.engine.SellCurrentLot(ctx, code, c.identity)
		if err != nil {
			c.rejectOrError(err)
			return
		}
		c.hub.announceSale(code, sale)
		if sale.AuctionComplete {
			c.hub.completed(room)
		}

	default:
		c.sendError("UNKNOWN_TYPE", "unknown message type")
	}
}

func (c *Client) roomCode() (string, bool) {
	c.hub.mu.Lock()
	defer c.hub.mu.Unlock()
	if c.feed == nil {
		return "", false
	}
	return c.feed.code, true
}

// rejectOrError surfaces precondition rejections as non-fatal notices. Under
// contention these are expected outcomes, not faults.
func (c *Client) rejectOrError(err error) {
	if domain.IsPrecondition(err) || errors.Is(err, domain.ErrNotAdmin) {
		c.sendNotice(err.Error())
		return
	}
	c.sendError("COMMAND_FAILED", err.Error())
}

func (c *Client) sendState(room *domain.Room) {
	payload := StateSyncPayload{Room: newRoomState(room)}
	if view, err := session.NewView(room, c.identity); err == nil {
		payload.You = view
	}
	c.sendMessage(MessageTypeStateSync, payload)
}

func (c *Client) sendNotice(text string) {
	c.sendMessage(MessageTypeNotice, NoticePayload{Text: text})
}

func (c *Client) sendError(code, message string) {
	c.sendMessage(MessageTypeError, ErrorPayload{Code: code, Message: message})
}

func (c *Client) sendMessage(msgType MessageType, payload interface{}) {
	msg, err := NewMessage(msgType, payload)
	if err != nil {
		logrus.WithError(err).Error("failed to build websocket message")
		return
	}
	data, err := json.Marshal(msg)
	if err != nil {
		logrus.WithError(err).Error("failed to marshal websocket message")
		return
	}

	select {
	case c.send <- data:
	default:
		// Slow consumer; drop rather than stall the broadcast path.
		logrus.WithField("identity", c.identity).Warn("dropping message to slow websocket client")
	}
}
