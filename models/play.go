package models

import (
	"time"

	"github.com/google/uuid"
)

// PlayState is the lifecycle state of a play.
type PlayState string

const (
	// PlayStatePurchased means the stake has been debited and the outcome
	// is fixed, but the player has not finished scratching.
	PlayStatePurchased PlayState = "purchased"
	// PlayStateRevealed means the scratch surface crossed the reveal
	// threshold. No money moves on this transition.
	PlayStateRevealed PlayState = "revealed"
	// PlayStateSettled is terminal: the financial effect has been applied
	// exactly once.
	PlayStateSettled PlayState = "settled"
)

// GridSize is the number of cells on a scratch card.
const GridSize = 9

// Outcome is the result fixed at purchase time. Tier is nil on a loss.
// The grid is presentation data: a winning grid contains exactly three
// cells with the winning tier's symbol, a losing grid never shows any
// symbol three times.
type Outcome struct {
	IsWin bool
	Tier  *PrizeTier
	Grid  [GridSize]string
}

// Prize returns the amount to credit on settlement, zero for a loss.
func (o Outcome) Prize() int64 {
	if !o.IsWin || o.Tier == nil {
		return 0
	}
	return o.Tier.Value
}

// Play is one purchase-to-settlement unit. The ID is generated at purchase
// time and is the idempotency key for the whole lifecycle.
type Play struct {
	ID         uuid.UUID  `db:"play_id"`
	UserID     int64      `db:"user_id"`
	CategoryID string     `db:"category_id"`
	Stake      int64      `db:"stake"`
	State      PlayState  `db:"state"`
	IsWin      bool       `db:"is_win"`
	TierID     *string    `db:"tier_id"`
	TierName   *string    `db:"tier_name"`
	Prize      int64      `db:"prize"`
	Grid       []string   `db:"grid"`
	CreatedAt  time.Time  `db:"created_at"`
	RevealedAt *time.Time `db:"revealed_at"`
	SettledAt  *time.Time `db:"settled_at"`
}

// Settled reports whether the play has reached its terminal state.
func (p *Play) Settled() bool {
	return p.State == PlayStateSettled
}

// PurchaseResult is returned to the caller of Purchase. It deliberately
// carries no outcome data.
type PurchaseResult struct {
	PlayID     uuid.UUID
	Stake      int64
	NewBalance int64
}

// ClaimedOutcome is what the client says it revealed. It is never trusted
// for money; it only exists so a mismatch with the stored outcome can be
// logged as a tamper signal.
type ClaimedOutcome struct {
	IsWin  bool
	TierID string
}

// PlayResult is the authoritative settlement result.
type PlayResult struct {
	PlayID         uuid.UUID
	IsWin          bool
	TierID         *string
	TierName       *string
	Prize          int64
	Grid           []string
	NewBalance     int64
	AlreadySettled bool
}
