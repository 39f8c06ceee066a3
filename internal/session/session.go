package session

import (
	"time"

	"memorize/internal/engine"
)

// Settings describes how a session deals its games.
type Settings struct {
	Pairs          int
	Content        []string
	BonusTimeLimit time.Duration
	Seed           uint64 // 0 shuffles from the global source
	Clock          engine.Clock
}

// Session is one player's table. It deals a fresh game on demand.
type Session struct {
	ID      string
	Created time.Time

	settings Settings
	deals    uint64
}

// NewSession creates a session that has not dealt yet.
func NewSession(id string, settings Settings) *Session {
	if settings.Clock == nil {
		settings.Clock = engine.SystemClock{}
	}
	return &Session{
		ID:       id,
		Created:  settings.Clock.Now(),
		settings: settings,
	}
}

// Deal starts a new game. With a seed, the n-th deal of every session is the same table.
func (s *Session) Deal() *engine.MatchingGame[string] {
	s.deals++
	cfg := engine.DefaultConfig()
	cfg.BonusTimeLimit = s.settings.BonusTimeLimit
	cfg.Clock = s.settings.Clock
	if s.settings.Seed != 0 {
		cfg.Shuffle = engine.SeededShuffle(s.settings.Seed + s.deals - 1)
	}
	pairs := min(s.settings.Pairs, len(s.settings.Content))
	return engine.NewGame(pairs, func(i int) string { return s.settings.Content[i] }, cfg)
}

// Deals counts the games dealt so far.
func (s *Session) Deals() uint64 {
	return s.deals
}
