package engine

// newDeck lays out two cards per pair index, ids 2i and 2i+1, then shuffles once.
func newDeck[C comparable](numberOfPairs int, contentFactory func(pairIndex int) C, cfg GameConfig) []Card[C] {
	if numberOfPairs < 0 {
		numberOfPairs = 0
	}
	cards := make([]Card[C], 0, 2*numberOfPairs)
	for pairIndex := 0; pairIndex < numberOfPairs; pairIndex++ {
		content := contentFactory(pairIndex)
		cards = append(cards,
			Card[C]{ID: 2 * pairIndex, Content: content, BonusTimeLimit: cfg.BonusTimeLimit},
			Card[C]{ID: 2*pairIndex + 1, Content: content, BonusTimeLimit: cfg.BonusTimeLimit},
		)
	}
	cfg.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})
	return cards
}
