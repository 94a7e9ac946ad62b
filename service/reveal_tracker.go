package service

import (
	"sync"

	"raspadinha/config"

	"github.com/google/uuid"
)

// RevealProgress reports how much of a play's scratch surface has been
// uncovered. The grid is only disclosed once the play counts as revealed.
type RevealProgress struct {
	PlayID      uuid.UUID
	CoverageBps int64
	Revealed    bool
	Grid        []string
}

// revealTracker accumulates scratch coverage per play in memory. Coverage
// is advisory presentation state: losing it (restart) costs nothing,
// because reconciliation settles stuck plays from their stored outcome.
type revealTracker struct {
	mu       sync.Mutex
	coverage map[uuid.UUID]int64
}

func newRevealTracker() *revealTracker {
	return &revealTracker{
		coverage: make(map[uuid.UUID]int64),
	}
}

// add accumulates newly scratched basis points and returns the total,
// clamped to full coverage. Coverage never goes down.
func (t *revealTracker) add(playID uuid.UUID, deltaBps int64) int64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	total := t.coverage[playID] + deltaBps
	if total > config.BpsScale {
		total = config.BpsScale
	}
	t.coverage[playID] = total
	return total
}

// setFull marks the play as completely scratched.
func (t *revealTracker) setFull(playID uuid.UUID) int64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.coverage[playID] = config.BpsScale
	return config.BpsScale
}

// forget drops a play's coverage once it reaches a terminal state.
func (t *revealTracker) forget(playID uuid.UUID) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.coverage, playID)
}
