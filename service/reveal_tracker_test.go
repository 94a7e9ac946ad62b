package service

import (
	"testing"

	"raspadinha/config"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestRevealTracker_Accumulates(t *testing.T) {
	tracker := newRevealTracker()
	playID := uuid.New()

	assert.Equal(t, int64(1500), tracker.add(playID, 1500))
	assert.Equal(t, int64(4000), tracker.add(playID, 2500))
	assert.Equal(t, int64(4000), tracker.add(playID, 0))
}

func TestRevealTracker_ClampsAtFullCoverage(t *testing.T) {
	tracker := newRevealTracker()
	playID := uuid.New()

	tracker.add(playID, 9000)
	assert.Equal(t, int64(config.BpsScale), tracker.add(playID, 9000))
}

func TestRevealTracker_SetFull(t *testing.T) {
	tracker := newRevealTracker()
	playID := uuid.New()

	tracker.add(playID, 100)
	assert.Equal(t, int64(config.BpsScale), tracker.setFull(playID))
}

func TestRevealTracker_Forget(t *testing.T) {
	tracker := newRevealTracker()
	playID := uuid.New()

	tracker.add(playID, 4000)
	tracker.forget(playID)
	assert.Equal(t, int64(100), tracker.add(playID, 100))
}

func TestRevealTracker_IsolatesPlays(t *testing.T) {
	tracker := newRevealTracker()
	first := uuid.New()
	second := uuid.New()

	tracker.add(first, 7000)
	assert.Equal(t, int64(200), tracker.add(second, 200))
}
