package server_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memorize/internal/config"
	"memorize/internal/engine"
	"memorize/internal/protocol"
	"memorize/internal/server"
)

func newTestServer(t *testing.T, opts ...func(*config.Config)) *httptest.Server {
	t.Helper()
	cfg := &config.Config{
		Port:        8080,
		Pairs:       2,
		BonusTime:   6 * time.Second,
		Seed:        1,
		Content:     []string{"a", "b"},
		LogLevel:    "info",
		QRSize:      128,
		IdleTimeout: time.Minute,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	static := fstest.MapFS{
		"web/static/index.html": {Data: []byte("<h1>memorize</h1>")},
	}
	srv := server.New(cfg, static, slog.New(slog.NewTextHandler(io.Discard, nil)))
	handler, err := srv.Handler()
	require.NoError(t, err)

	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	t.Cleanup(srv.Close)
	return ts
}

func createGame(t *testing.T, ts *httptest.Server) string {
	t.Helper()
	client := &http.Client{
		CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse },
	}
	resp, err := client.Get(ts.URL + "/api/create")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	loc, err := url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/game.html", loc.Path)
	id := loc.Query().Get("game")
	require.NotEmpty(t, id)
	return id
}

type table struct {
	t    *testing.T
	conn *websocket.Conn
}

func join(t *testing.T, ts *httptest.Server, id string) *table {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?game=" + id
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return &table{t: t, conn: conn}
}

func (tb *table) read(wantType string) protocol.Envelope {
	tb.t.Helper()
	require.NoError(tb.t, tb.conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	var env protocol.Envelope
	require.NoError(tb.t, tb.conn.ReadJSON(&env))
	require.Equal(tb.t, wantType, env.Type, "payload: %s", env.Payload)
	return env
}

func (tb *table) state() engine.GameView[string] {
	tb.t.Helper()
	var view engine.GameView[string]
	require.NoError(tb.t, tb.read(protocol.MsgGameState).Decode(&view))
	return view
}

func (tb *table) send(env protocol.Envelope) {
	tb.t.Helper()
	require.NoError(tb.t, tb.conn.WriteJSON(env))
}

func (tb *table) choose(id int) engine.GameView[string] {
	tb.t.Helper()
	tb.send(protocol.MustEnvelope(protocol.MsgChoose, protocol.ChooseMsg{CardID: id}))
	return tb.state()
}

func cardByID(view engine.GameView[string], id int) engine.CardView[string] {
	for _, c := range view.Cards {
		if c.ID == id {
			return c
		}
	}
	return engine.CardView[string]{ID: -1}
}

func TestPlayToTheEnd(t *testing.T) {
	ts := newTestServer(t)
	tb := join(t, ts, createGame(t, ts))

	view := tb.state()
	require.Len(t, view.Cards, 4)
	assert.Equal(t, 2, view.Pairs)
	for _, c := range view.Cards {
		assert.False(t, c.IsFaceUp)
		assert.Equal(t, int64(6000), c.BonusTimeLimitMS)
	}

	byContent := map[string][]int{}
	for _, c := range view.Cards {
		byContent[c.Content] = append(byContent[c.Content], c.ID)
	}
	require.Len(t, byContent, 2)

	first := byContent["a"]
	view = tb.choose(first[0])
	assert.True(t, cardByID(view, first[0]).IsFaceUp)
	assert.True(t, cardByID(view, first[0]).IsConsumingBonusTime)

	view = tb.choose(first[1])
	assert.True(t, cardByID(view, first[0]).IsMatched)
	assert.True(t, cardByID(view, first[1]).IsMatched)
	assert.Equal(t, 1, view.MatchedPairs)

	second := byContent["b"]
	tb.choose(second[0])
	view = tb.choose(second[1])
	assert.True(t, view.Done)

	var stats engine.Stats
	require.NoError(t, tb.read(protocol.MsgGameOver).Decode(&stats))
	assert.Equal(t, 2, stats.Pairs)
	assert.Equal(t, 2, stats.MatchedPairs)
	assert.Equal(t, 4, stats.BonusesEarned)

	tb.send(protocol.Envelope{Type: protocol.MsgNewGame})
	view = tb.state()
	assert.False(t, view.Done)
	assert.Zero(t, view.MatchedPairs)
}

func TestIgnoredChoiceStillReportsState(t *testing.T) {
	ts := newTestServer(t)
	tb := join(t, ts, createGame(t, ts))
	before := tb.state()

	after := tb.choose(12345)
	assert.Equal(t, before.Cards, after.Cards)
}

func TestRejectedMessages(t *testing.T) {
	ts := newTestServer(t)
	tb := join(t, ts, createGame(t, ts))
	tb.state()

	tests := []struct {
		name    string
		frame   string
		message string
	}{
		{"unknown type", `{"type":"flip_all"}`, "unknown message type"},
		{"malformed", `{"type":`, "malformed message"},
		{"choose without payload", `{"type":"choose"}`, "empty payload"},
	}
	for _, tt := range tests {
		require.NoError(t, tb.conn.WriteMessage(websocket.TextMessage, []byte(tt.frame)), tt.name)
		var msg protocol.ErrorMsg
		require.NoError(t, tb.read(protocol.MsgError).Decode(&msg), tt.name)
		assert.Contains(t, msg.Message, tt.message, tt.name)
	}
}

func TestSecondConnectionSeesSameTable(t *testing.T) {
	ts := newTestServer(t)
	id := createGame(t, ts)
	a := join(t, ts, id)
	first := a.state()

	b := join(t, ts, id)
	assert.Equal(t, first.Cards, b.state().Cards)

	target := first.Cards[0].ID
	a.choose(target)
	assert.True(t, cardByID(b.state(), target).IsFaceUp)
}

func TestHTTPEndpoints(t *testing.T) {
	ts := newTestServer(t)
	id := createGame(t, ts)

	tests := []struct {
		name        string
		path        string
		status      int
		contentType string
	}{
		{"health", "/healthz", http.StatusOK, "text/plain"},
		{"static", "/", http.StatusOK, "text/html"},
		{"qr", "/api/qr?game=" + id, http.StatusOK, "image/png"},
		{"qr missing game", "/api/qr", http.StatusBadRequest, ""},
		{"qr unknown game", "/api/qr?game=nope", http.StatusNotFound, ""},
		{"ws unknown game", "/ws?game=nope", http.StatusNotFound, ""},
		{"ws missing game", "/ws", http.StatusBadRequest, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Get(ts.URL + tt.path)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tt.status, resp.StatusCode)
			if tt.contentType != "" {
				assert.Contains(t, resp.Header.Get("Content-Type"), tt.contentType)
			}
		})
	}
}

func TestGameStateWireFormat(t *testing.T) {
	ts := newTestServer(t)
	tb := join(t, ts, createGame(t, ts))

	var raw map[string]json.RawMessage
	require.NoError(t, tb.read(protocol.MsgGameState).Decode(&raw))
	for _, key := range []string{"cards", "pairs", "matched_pairs", "bonuses_earned", "done"} {
		assert.Contains(t, raw, key)
	}
}

func sessionGone(ts *httptest.Server, id string) func() bool {
	return func() bool {
		resp, err := http.Get(ts.URL + "/api/qr?game=" + id)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusNotFound
	}
}

func TestAbandonedSessionIsClosed(t *testing.T) {
	ts := newTestServer(t, func(cfg *config.Config) { cfg.IdleTimeout = 50 * time.Millisecond })
	id := createGame(t, ts)

	assert.Eventually(t, sessionGone(ts, id), 2*time.Second, 10*time.Millisecond)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?game=" + id
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSessionClosesAfterLastClientLeaves(t *testing.T) {
	ts := newTestServer(t, func(cfg *config.Config) { cfg.IdleTimeout = 300 * time.Millisecond })
	id := createGame(t, ts)
	a := join(t, ts, id)
	a.state()
	b := join(t, ts, id)
	b.state()

	time.Sleep(600 * time.Millisecond)
	require.False(t, sessionGone(ts, id)(), "a table with players stays open")

	a.conn.Close()
	time.Sleep(600 * time.Millisecond)
	require.False(t, sessionGone(ts, id)(), "one player is still seated")

	b.conn.Close()
	assert.Eventually(t, sessionGone(ts, id), 3*time.Second, 20*time.Millisecond)
}
