package models

import "errors"

// Ledger outcomes that are part of the API contract. These are expected
// conditions (user out of funds, client retries), not corruption.
var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrDuplicatePlay     = errors.New("duplicate play")
	ErrAlreadySettled    = errors.New("play already settled")
	ErrUnknownPlay       = errors.New("unknown play")
	ErrNotPlayOwner      = errors.New("play belongs to another user")
	ErrUnknownUser       = errors.New("unknown user")
	ErrUnknownCategory   = errors.New("unknown category")
)
