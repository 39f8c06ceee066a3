package engine

import "time"

// Card is one face of a pair. Two cards share Content and differ by ID.
//
// The bonus fields measure how long the card has been face up in total.
// A card matched before that total reaches BonusTimeLimit earns a bonus.
type Card[C comparable] struct {
	ID        int
	Content   C
	IsFaceUp  bool
	IsMatched bool

	BonusTimeLimit time.Duration
	// LastFaceUp is when the currently open face-up interval began; nil when no clock runs.
	LastFaceUp *time.Time
	// PastFaceUp excludes the currently open interval.
	PastFaceUp time.Duration
}

// FaceUpDuration is the total time this card has spent face up as of now.
func (c Card[C]) FaceUpDuration(now time.Time) time.Duration {
	if c.LastFaceUp == nil {
		return c.PastFaceUp
	}
	elapsed := now.Sub(*c.LastFaceUp)
	if elapsed < 0 {
		elapsed = 0
	}
	return c.PastFaceUp + elapsed
}

// BonusTimeRemaining never goes below zero.
func (c Card[C]) BonusTimeRemaining(now time.Time) time.Duration {
	return max(0, c.BonusTimeLimit-c.FaceUpDuration(now))
}

// BonusFraction is the share of the bonus window still left, in [0, 1].
func (c Card[C]) BonusFraction(now time.Time) float64 {
	remaining := c.BonusTimeRemaining(now)
	if c.BonusTimeLimit <= 0 || remaining <= 0 {
		return 0
	}
	return float64(remaining) / float64(c.BonusTimeLimit)
}

// HasEarnedBonus reports a card matched with bonus time left.
func (c Card[C]) HasEarnedBonus(now time.Time) bool {
	return c.IsMatched && c.BonusTimeRemaining(now) > 0
}

// IsConsumingBonusTime reports whether waiting now costs this card bonus time.
func (c Card[C]) IsConsumingBonusTime(now time.Time) bool {
	return c.IsFaceUp && !c.IsMatched && c.BonusTimeRemaining(now) > 0
}

// startBonusClock opens a face-up interval if the card is eligible and none is open.
func (c *Card[C]) startBonusClock(now time.Time) {
	if c.IsConsumingBonusTime(now) && c.LastFaceUp == nil {
		c.LastFaceUp = &now
	}
}

// stopBonusClock folds any open interval into PastFaceUp. Safe to call repeatedly.
func (c *Card[C]) stopBonusClock(now time.Time) {
	c.PastFaceUp = c.FaceUpDuration(now)
	c.LastFaceUp = nil
}

// clone detaches LastFaceUp so callers cannot reach into the deck.
func (c Card[C]) clone() Card[C] {
	if c.LastFaceUp != nil {
		t := *c.LastFaceUp
		c.LastFaceUp = &t
	}
	return c
}
