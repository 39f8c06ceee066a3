package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStopBonusClockIsIdempotent(t *testing.T) {
	t0 := time.Date(2020, 8, 17, 9, 0, 0, 0, time.UTC)
	c := Card[string]{ID: 0, Content: "A", IsFaceUp: true, BonusTimeLimit: DefaultBonusTimeLimit}

	c.startBonusClock(t0)
	require.NotNil(t, c.LastFaceUp)
	assert.Equal(t, t0, *c.LastFaceUp)

	c.stopBonusClock(t0.Add(2 * time.Second))
	first := c.PastFaceUp
	c.stopBonusClock(t0.Add(5 * time.Second))

	assert.Equal(t, 2*time.Second, first)
	assert.Equal(t, first, c.PastFaceUp)
	assert.Nil(t, c.LastFaceUp)
}

func TestStartBonusClockKeepsOpenInterval(t *testing.T) {
	t0 := time.Date(2020, 8, 17, 9, 0, 0, 0, time.UTC)
	c := Card[int]{IsFaceUp: true, BonusTimeLimit: DefaultBonusTimeLimit}

	c.startBonusClock(t0)
	c.startBonusClock(t0.Add(time.Second))

	require.NotNil(t, c.LastFaceUp)
	assert.Equal(t, t0, *c.LastFaceUp)
	assert.Equal(t, 3*time.Second, c.FaceUpDuration(t0.Add(3*time.Second)))
}

func TestFaceUpDurationIgnoresClockGoingBackwards(t *testing.T) {
	t0 := time.Date(2020, 8, 17, 9, 0, 0, 0, time.UTC)
	c := Card[int]{IsFaceUp: true, BonusTimeLimit: DefaultBonusTimeLimit, PastFaceUp: time.Second}
	c.startBonusClock(t0)

	c.stopBonusClock(t0.Add(-time.Minute))
	assert.Equal(t, time.Second, c.PastFaceUp)
}

func TestBonusClockStartsAtZeroInstant(t *testing.T) {
	var t0 time.Time
	c := Card[int]{IsFaceUp: true, BonusTimeLimit: DefaultBonusTimeLimit}

	c.startBonusClock(t0)
	require.NotNil(t, c.LastFaceUp)
	assert.Equal(t, 2*time.Second, c.FaceUpDuration(t0.Add(2*time.Second)))

	c.stopBonusClock(t0.Add(2 * time.Second))
	assert.Nil(t, c.LastFaceUp)
	assert.Equal(t, 2*time.Second, c.PastFaceUp)
}

func TestCloneDetachesLastFaceUp(t *testing.T) {
	t0 := time.Date(2020, 8, 17, 9, 0, 0, 0, time.UTC)
	c := Card[int]{IsFaceUp: true, BonusTimeLimit: DefaultBonusTimeLimit}
	c.startBonusClock(t0)

	out := c.clone()
	*out.LastFaceUp = t0.Add(-time.Hour)
	assert.Equal(t, t0, *c.LastFaceUp)
}
