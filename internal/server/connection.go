package server

import (
	"encoding/json"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
)

// Connection wraps a websocket client. Reads are parsed into table
// calls; writes go through a buffered channel drained by a write pump
// so the table never blocks on a slow client.
type Connection struct {
	ws     *websocket.Conn
	send   chan []byte
	logger *log.Logger
	server *Server

	mu       sync.Mutex
	playerID string
	table    *Table
	closed   bool
}

const sendBuffer = 64

// NewConnection wraps an upgraded websocket
func NewConnection(ws *websocket.Conn, logger *log.Logger, server *Server) *Connection {
	return &Connection{
		ws:     ws,
		send:   make(chan []byte, sendBuffer),
		logger: logger.WithPrefix("conn").With("remote", ws.RemoteAddr().String()),
		server: server,
	}
}

// Send queues a message for delivery, dropping it if the client is too
// far behind or already closed. Tables may still hold a closed
// connection while the server shuts down, so the closed check and the
// channel write share the mutex with Close.
func (c *Connection) Send(data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- data:
	default:
		c.logger.Warn("send buffer full, dropping message")
	}
}

// Close tears the connection down once
func (c *Connection) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
	_ = c.ws.Close()
}

// ReadPump processes incoming messages until the connection drops.
func (c *Connection) ReadPump() {
	defer func() {
		if c.table != nil && c.playerID != "" {
			c.table.Leave(c.playerID)
		}
		c.server.unregister(c)
	}()

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			c.logger.Debug("read failed", "err", err)
			return
		}
		c.handleMessage(data)
	}
}

// WritePump drains the send channel to the socket.
func (c *Connection) WritePump() {
	for data := range c.send {
		if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
			c.logger.Debug("write failed", "err", err)
			return
		}
	}
}

func (c *Connection) handleMessage(data []byte) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		c.sendError("malformed message")
		return
	}

	switch env.Type {
	case TypeConnect:
		var payload ConnectPayload
		if err := json.Unmarshal(env.Payload, &payload); err != nil {
			c.sendError("malformed connect payload")
			return
		}
		c.handleConnect(payload)

	case TypeAction:
		var payload ActionPayload
		if err := json.Unmarshal(env.Payload, &payload); err != nil {
			c.sendError("malformed action payload")
			return
		}
		if c.table == nil {
			c.sendError("connect to a table first")
			return
		}
		c.table.HandleAction(c.playerID, payload)

	default:
		c.sendError("unknown message type " + env.Type)
	}
}

func (c *Connection) handleConnect(payload ConnectPayload) {
	if c.table != nil {
		c.sendError("already connected")
		return
	}
	table, ok := c.server.Table(payload.Table)
	if !ok {
		c.sendError("no such table " + payload.Table)
		return
	}

	id, err := table.Join(payload.Name, c)
	if err != nil {
		c.sendError(err.Error())
		return
	}
	c.playerID = id
	c.table = table

	if data, err := Encode(TypeWelcome, WelcomePayload{
		PlayerID: id,
		Table:    table.Name(),
		Chips:    table.cfg.StartingChips,
	}); err == nil {
		c.Send(data)
	}
}

func (c *Connection) sendError(msg string) {
	if data, err := Encode(TypeError, ErrorPayload{Message: msg}); err == nil {
		c.Send(data)
	}
}
