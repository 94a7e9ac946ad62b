package models

import (
	"time"

	"github.com/google/uuid"
)

// TransactionType represents the type of balance change
type TransactionType string

const (
	TransactionTypePlayPurchase TransactionType = "play_purchase"
	TransactionTypePrizeCredit  TransactionType = "prize_credit"
	TransactionTypeDeposit      TransactionType = "deposit"
	TransactionTypeInitial      TransactionType = "initial"
)

// BalanceHistory represents a historical balance change. Every movement on
// a user's balance leaves exactly one of these rows.
type BalanceHistory struct {
	ID                  int64           `db:"id"`
	UserID              int64           `db:"user_id"`
	BalanceBefore       int64           `db:"balance_before"`
	BalanceAfter        int64           `db:"balance_after"`
	ChangeAmount        int64           `db:"change_amount"`
	TransactionType     TransactionType `db:"transaction_type"`
	TransactionMetadata map[string]any  `db:"transaction_metadata"`
	PlayID              *uuid.UUID      `db:"play_id"`
	CreatedAt           time.Time       `db:"created_at"`
}
