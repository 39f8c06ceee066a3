package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"memorize/internal/engine"
	"memorize/internal/protocol"
	"memorize/internal/session"
)

var ErrUnknownMessage = errors.New("unknown message type")

// Hub owns one session's game and its WebSocket connections. The game is
// only touched from the Run goroutine.
//
// A hub with no clients for idleTimeout stops itself and calls onIdle.
type Hub struct {
	session    *session.Session
	game       *engine.MatchingGame[string]
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	incoming   chan IncomingMessage
	quit       chan struct{}
	stopOnce   sync.Once

	idleTimeout time.Duration
	onIdle      func()

	log *slog.Logger
}

func NewHub(s *session.Session, idleTimeout time.Duration, log *slog.Logger) *Hub {
	return &Hub{
		session:     s,
		idleTimeout: idleTimeout,
		game:        s.Deal(),
		clients:     make(map[*Client]bool),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		incoming:    make(chan IncomingMessage, 64),
		quit:        make(chan struct{}),
		log:         log.With("session", s.ID),
	}
}

// Run serves the hub until Stop is called or the table sits empty for idleTimeout.
func (h *Hub) Run() {
	defer h.dropAll()
	idle := time.NewTimer(h.idleTimeout)
	defer idle.Stop()

	for {
		select {
		case client := <-h.register:
			idle.Stop()
			h.clients[client] = true
			h.log.Debug("client joined", "clients", len(h.clients))
			h.sendState(client)

		case client := <-h.unregister:
			h.drop(client)
			if len(h.clients) == 0 {
				idle.Reset(h.idleTimeout)
			}

		case msg := <-h.incoming:
			h.handleMessage(msg)

		case <-idle.C:
			h.log.Info("closing idle session", "idle", h.idleTimeout)
			h.Stop()
			if h.onIdle != nil {
				h.onIdle()
			}
			return

		case <-h.quit:
			return
		}
	}
}

// Stop ends Run and closes every client. Safe to call more than once.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.quit) })
}

// Register attaches a client. It reports false once the hub has stopped.
func (h *Hub) Register(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.quit:
		return false
	}
}

// Unregister detaches a client; after Stop it returns at once.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.quit:
	}
}

// Deliver hands a frame to the hub. It reports false once the hub has stopped.
func (h *Hub) Deliver(msg IncomingMessage) bool {
	select {
	case h.incoming <- msg:
		return true
	case <-h.quit:
		return false
	}
}

func (h *Hub) handleMessage(msg IncomingMessage) {
	var env protocol.Envelope
	if err := json.Unmarshal(msg.Data, &env); err != nil {
		h.sendError(msg.Client, fmt.Errorf("malformed message: %w", err))
		return
	}

	switch env.Type {
	case protocol.MsgChoose:
		h.handleChoose(msg.Client, env)
	case protocol.MsgNewGame:
		h.game = h.session.Deal()
		h.log.Info("new game dealt", "deal", h.session.Deals(), "pairs", h.game.Pairs())
		h.broadcastState()
	default:
		h.sendError(msg.Client, fmt.Errorf("%q: %w", env.Type, ErrUnknownMessage))
	}
}

func (h *Hub) handleChoose(client *Client, env protocol.Envelope) {
	var choose protocol.ChooseMsg
	if err := env.Decode(&choose); err != nil {
		h.sendError(client, err)
		return
	}

	wasDone := h.game.Done()
	h.game.ChooseID(choose.CardID)
	h.broadcastState()

	if !wasDone && h.game.Done() {
		view := h.game.View()
		h.log.Info("game won", "pairs", view.Pairs, "bonuses", view.BonusesEarned)
		h.broadcast(protocol.MustEnvelope(protocol.MsgGameOver, view.Stats))
	}
}

func (h *Hub) broadcastState() {
	h.broadcast(protocol.MustEnvelope(protocol.MsgGameState, h.game.View()))
}

func (h *Hub) sendState(client *Client) {
	h.sendTo(client, protocol.MustEnvelope(protocol.MsgGameState, h.game.View()))
}

// sendTo skips clients already dropped; their send channel is closed.
func (h *Hub) sendTo(client *Client, env protocol.Envelope) {
	if h.clients[client] {
		client.SendEnvelope(env)
	}
}

func (h *Hub) broadcast(env protocol.Envelope) {
	data, err := json.Marshal(env)
	if err != nil {
		h.log.Error("broadcast marshal error", "type", env.Type, "error", err)
		return
	}
	for client := range h.clients {
		client.queue(data)
	}
}

func (h *Hub) sendError(client *Client, err error) {
	h.log.Debug("rejected message", "error", err)
	h.sendTo(client, protocol.MustEnvelope(protocol.MsgError, protocol.ErrorMsg{Message: err.Error()}))
}

func (h *Hub) drop(client *Client) {
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
		h.log.Debug("client left", "clients", len(h.clients))
	}
}

func (h *Hub) dropAll() {
	for client := range h.clients {
		h.drop(client)
	}
}
