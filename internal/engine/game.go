package engine

import "time"

// MatchingGame holds a deck of paired cards and the rules for turning them over.
// It is not safe for concurrent use; callers serialize access.
type MatchingGame[C comparable] struct {
	cards []Card[C]
	clock Clock
}

// NewGame builds 2*numberOfPairs cards, the two cards of pair i sharing
// contentFactory(i), and shuffles them once. A negative count is treated as 0.
func NewGame[C comparable](numberOfPairs int, contentFactory func(pairIndex int) C, config GameConfig) *MatchingGame[C] {
	config = config.withDefaults()
	return &MatchingGame[C]{
		cards: newDeck(numberOfPairs, contentFactory, config),
		clock: config.Clock,
	}
}

// Cards returns a copy of the deck in table order.
func (g *MatchingGame[C]) Cards() []Card[C] {
	out := make([]Card[C], len(g.cards))
	for i, c := range g.cards {
		out[i] = c.clone()
	}
	return out
}

// Card returns the card with the given id.
func (g *MatchingGame[C]) Card(id int) (Card[C], bool) {
	i, ok := g.indexOf(id)
	if !ok {
		return Card[C]{}, false
	}
	return g.cards[i].clone(), true
}

// Pairs is the number of pairs the game was dealt with.
func (g *MatchingGame[C]) Pairs() int {
	return len(g.cards) / 2
}

// Done reports whether every card is matched. An empty game is done.
func (g *MatchingGame[C]) Done() bool {
	for _, c := range g.cards {
		if !c.IsMatched {
			return false
		}
	}
	return true
}

// Choose turns over the card identified by card.ID. See ChooseID.
func (g *MatchingGame[C]) Choose(card Card[C]) {
	g.ChooseID(card.ID)
}

// ChooseID is the single entry point for play. Choosing an unknown, face-up
// or matched card does nothing.
//
// With exactly one other card face up, the chosen card is compared against it
// and both stay face up whatever the outcome. Otherwise the chosen card
// becomes the only face-up card, which also turns down a pair left showing by
// the previous attempt.
func (g *MatchingGame[C]) ChooseID(id int) {
	chosen, ok := g.indexOf(id)
	if !ok || g.cards[chosen].IsFaceUp || g.cards[chosen].IsMatched {
		return
	}
	now := g.clock.Now()

	if potential, ok := g.soleFaceUpIndex(); ok {
		if g.cards[chosen].Content == g.cards[potential].Content {
			g.markMatched(chosen, now)
			g.markMatched(potential, now)
		}
		g.cards[chosen].IsFaceUp = true
		g.cards[chosen].startBonusClock(now)
		return
	}
	g.setSoleFaceUp(chosen, now)
}

// faceUpIndices lists every face-up card, matched ones included.
func (g *MatchingGame[C]) faceUpIndices() []int {
	var out []int
	for i, c := range g.cards {
		if c.IsFaceUp {
			out = append(out, i)
		}
	}
	return out
}

// soleFaceUpIndex is the potential match. Two face-up cards count as none.
func (g *MatchingGame[C]) soleFaceUpIndex() (int, bool) {
	up := g.faceUpIndices()
	if len(up) != 1 {
		return 0, false
	}
	return up[0], true
}

// setSoleFaceUp leaves only cards[index] face up.
func (g *MatchingGame[C]) setSoleFaceUp(index int, now time.Time) {
	for i := range g.cards {
		g.cards[i].IsFaceUp = i == index
		if i == index {
			g.cards[i].startBonusClock(now)
		} else {
			g.cards[i].stopBonusClock(now)
		}
	}
}

func (g *MatchingGame[C]) markMatched(index int, now time.Time) {
	g.cards[index].IsMatched = true
	g.cards[index].stopBonusClock(now)
}

func (g *MatchingGame[C]) indexOf(id int) (int, bool) {
	for i, c := range g.cards {
		if c.ID == id {
			return i, true
		}
	}
	return 0, false
}
