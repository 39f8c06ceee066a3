package engine

import "time"

// CardView is a card as a renderer sees it, with bonus values evaluated at one instant.
type CardView[C comparable] struct {
	ID                   int     `json:"id"`
	Content              C       `json:"content"`
	IsFaceUp             bool    `json:"is_face_up"`
	IsMatched            bool    `json:"is_matched"`
	BonusTimeLimitMS     int64   `json:"bonus_time_limit_ms"`
	BonusTimeRemainingMS int64   `json:"bonus_time_remaining_ms"`
	BonusFraction        float64 `json:"bonus_fraction"`
	HasEarnedBonus       bool    `json:"has_earned_bonus"`
	IsConsumingBonusTime bool    `json:"is_consuming_bonus_time"`
}

// Stats summarizes progress. Nothing here is stored; it is read off the cards.
type Stats struct {
	Pairs         int `json:"pairs"`
	MatchedPairs  int `json:"matched_pairs"`
	BonusesEarned int `json:"bonuses_earned"` // matched cards still inside their bonus window
}

// GameView is the read-only state handed to renderers.
type GameView[C comparable] struct {
	Cards []CardView[C] `json:"cards"`
	Stats
	Done bool `json:"done"`
}

func (g *MatchingGame[C]) Stats(now time.Time) Stats {
	s := Stats{Pairs: g.Pairs()}
	matched := 0
	for _, c := range g.cards {
		if c.IsMatched {
			matched++
		}
		if c.HasEarnedBonus(now) {
			s.BonusesEarned++
		}
	}
	s.MatchedPairs = matched / 2
	return s
}

// View snapshots the game at the clock's current time.
func (g *MatchingGame[C]) View() GameView[C] {
	now := g.clock.Now()
	v := GameView[C]{
		Cards: make([]CardView[C], len(g.cards)),
		Stats: g.Stats(now),
		Done:  g.Done(),
	}
	for i, c := range g.cards {
		v.Cards[i] = CardView[C]{
			ID:                   c.ID,
			Content:              c.Content,
			IsFaceUp:             c.IsFaceUp,
			IsMatched:            c.IsMatched,
			BonusTimeLimitMS:     c.BonusTimeLimit.Milliseconds(),
			BonusTimeRemainingMS: c.BonusTimeRemaining(now).Milliseconds(),
			BonusFraction:        c.BonusFraction(now),
			HasEarnedBonus:       c.HasEarnedBonus(now),
			IsConsumingBonusTime: c.IsConsumingBonusTime(now),
		}
	}
	return v
}
