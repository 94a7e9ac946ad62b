package models

import (
	"time"
)

// User represents a player account with a balance in minor currency units.
type User struct {
	ID        int64     `db:"user_id"`
	Username  string    `db:"username"`
	Balance   int64     `db:"balance"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
