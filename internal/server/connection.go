package server

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1 << 16
	sendBuffer     = 64
)

// Connection is one WebSocket client. Outbound messages go through a
// buffered channel; a slow client that fills it is dropped.
type Connection struct {
	ws     *websocket.Conn
	server *Server
	logger *log.Logger

	sendCh chan *Message

	mu       sync.Mutex
	playerID string
	table    string
	closed   bool
}

func newConnection(ws *websocket.Conn, server *Server, logger *log.Logger) *Connection {
	return &Connection{
		ws:     ws,
		server: server,
		logger: logger,
		sendCh: make(chan *Message, sendBuffer),
	}
}

// Send queues a message for delivery, dropping the connection when the
// buffer is full
func (c *Connection) Send(msg *Message) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	select {
	case c.sendCh <- msg:
	default:
		c.logger.Warn("send buffer full, dropping client", "player", c.PlayerID())
		c.Close()
	}
}

// PlayerID returns the identity bound at join time
func (c *Connection) PlayerID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playerID
}

// Table returns the table this connection joined
func (c *Connection) Table() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.table
}

func (c *Connection) bind(playerID, table string) {
	c.mu.Lock()
	c.playerID = playerID
	c.table = table
	c.mu.Unlock()
}

// Close shuts the socket down once
func (c *Connection) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()
	close(c.sendCh)
	_ = c.ws.Close()
}

// readPump decodes envelopes and hands them to the server until the socket
// drops
func (c *Connection) readPump() {
	defer func() {
		c.server.unregister(c)
		c.Close()
	}()
	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("read error", "err", err)
			}
			return
		}
		var msg Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.sendError("bad_message", "malformed envelope")
			continue
		}
		c.server.handleMessage(c, &msg)
	}
}

// writePump serializes queued messages and keeps the connection alive with
// pings
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.ws.Close()
	}()

	for {
		select {
		case msg, ok := <-c.sendCh:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.ws.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Connection) sendError(code, message string) {
	if msg, err := NewMessage(MsgError, ErrorData{Code: code, Message: message}); err == nil {
		c.Send(msg)
	}
}
