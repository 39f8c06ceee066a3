package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	qr "memorize/internal/qrcode"
	"memorize/internal/session"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handlers holds HTTP handler dependencies.
type Handlers struct {
	Sessions    *session.Manager
	QRSize      int
	IdleTimeout time.Duration

	log  *slog.Logger
	mu   sync.Mutex
	hubs map[string]*Hub
}

func NewHandlers(sessions *session.Manager, qrSize int, idleTimeout time.Duration, log *slog.Logger) *Handlers {
	return &Handlers{
		Sessions:    sessions,
		QRSize:      qrSize,
		IdleTimeout: idleTimeout,
		log:         log,
		hubs:        make(map[string]*Hub),
	}
}

// HandleCreateGame opens a session, starts its hub and redirects to the table.
func (h *Handlers) HandleCreateGame(w http.ResponseWriter, r *http.Request) {
	s := h.Sessions.Create()
	hub := NewHub(s, h.IdleTimeout, h.log)
	hub.onIdle = func() { h.forget(s.ID, hub) }

	h.mu.Lock()
	h.hubs[s.ID] = hub
	h.mu.Unlock()
	go hub.Run()

	h.log.Info("session created", "session", s.ID)
	http.Redirect(w, r, "/game.html?game="+url.QueryEscape(s.ID), http.StatusSeeOther)
}

// HandleQR serves a QR code PNG linking to the session's table.
func (h *Handlers) HandleQR(w http.ResponseWriter, r *http.Request) {
	gameID := r.URL.Query().Get("game")
	if gameID == "" {
		http.Error(w, "missing game parameter", http.StatusBadRequest)
		return
	}
	if _, err := h.hub(gameID); err != nil {
		http.Error(w, "game not found", http.StatusNotFound)
		return
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	link := fmt.Sprintf("%s://%s/game.html?game=%s", scheme, r.Host, url.QueryEscape(gameID))
	png, err := qr.Generate(link, h.QRSize)
	if err != nil {
		h.log.Error("qr generation failed", "session", gameID, "error", err)
		http.Error(w, "QR generation failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}

// HandleWS upgrades to a WebSocket attached to the session's hub.
func (h *Handlers) HandleWS(w http.ResponseWriter, r *http.Request) {
	gameID := r.URL.Query().Get("game")
	if gameID == "" {
		http.Error(w, "missing game parameter", http.StatusBadRequest)
		return
	}
	hub, err := h.hub(gameID)
	if err != nil {
		http.Error(w, "game not found", http.StatusNotFound)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade error", "error", err)
		return
	}

	client := NewClient(hub, conn, hub.log)
	if !hub.Register(client) {
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()
}

// HandleHealth answers liveness checks.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.Write([]byte("ok"))
}

// Close stops every hub.
func (h *Handlers) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, hub := range h.hubs {
		hub.Stop()
		delete(h.hubs, id)
		h.Sessions.Remove(id)
	}
}

// forget drops a hub that stopped on its own, along with its session.
func (h *Handlers) forget(id string, hub *Hub) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.hubs[id] == hub {
		delete(h.hubs, id)
	}
	h.Sessions.Remove(id)
}

func (h *Handlers) hub(id string) (*Hub, error) {
	if _, err := h.Sessions.Get(id); err != nil {
		return nil, err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	hub, ok := h.hubs[id]
	if !ok {
		return nil, errors.Join(session.ErrSessionNotFound, fmt.Errorf("no hub for %s", id))
	}
	return hub, nil
}
