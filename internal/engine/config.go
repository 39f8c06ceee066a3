package engine

import (
	"math/rand/v2"
	"time"
)

// DefaultBonusTimeLimit is how long a card may be face up before its match bonus runs out.
const DefaultBonusTimeLimit = 6 * time.Second

// ShuffleFunc permutes n elements through swap. rand.Shuffle has this shape.
type ShuffleFunc func(n int, swap func(i, j int))

// GameConfig holds configuration for creating a new game.
type GameConfig struct {
	BonusTimeLimit time.Duration // per card; 0 means no bonus is ever available
	Clock          Clock         // nil means SystemClock
	Shuffle        ShuffleFunc   // nil means rand.Shuffle
}

func DefaultConfig() GameConfig {
	return GameConfig{
		BonusTimeLimit: DefaultBonusTimeLimit,
		Clock:          SystemClock{},
		Shuffle:        rand.Shuffle,
	}
}

// SeededShuffle returns a ShuffleFunc that yields the same permutation for the same seed.
func SeededShuffle(seed uint64) ShuffleFunc {
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	return r.Shuffle
}

// NoShuffle leaves the deck in construction order.
func NoShuffle(int, func(i, j int)) {}

func (c GameConfig) withDefaults() GameConfig {
	if c.BonusTimeLimit < 0 {
		c.BonusTimeLimit = 0
	}
	if c.Clock == nil {
		c.Clock = SystemClock{}
	}
	if c.Shuffle == nil {
		c.Shuffle = rand.Shuffle
	}
	return c
}
