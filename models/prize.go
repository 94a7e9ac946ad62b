package models

// PrizeTier is one entry of a category's prize table. Value is in minor
// currency units; Weight is relative to the other tiers of the same
// category and does not need to sum to anything in particular.
type PrizeTier struct {
	ID          string `db:"tier_id"`
	CategoryID  string `db:"category_id"`
	DisplayName string `db:"display_name"`
	Symbol      string `db:"symbol"`
	Value       int64  `db:"value"`
	Weight      int64  `db:"weight"`
	SortOrder   int    `db:"sort_order"`
}

// Category is a scratch-card product: a fixed stake, a win-rate target and
// a prize table. Loaded once at startup; a Play snapshots the tier it won
// so later category edits never change an existing outcome.
type Category struct {
	ID          string `db:"category_id"`
	DisplayName string `db:"display_name"`
	Stake       int64  `db:"stake"`
	RTPBps      int64  `db:"rtp_bps"`
	Enabled     bool   `db:"enabled"`
	Tiers       []PrizeTier
}

// TotalWeight sums the positive tier weights.
func (c *Category) TotalWeight() int64 {
	var total int64
	for _, t := range c.Tiers {
		if t.Weight > 0 {
			total += t.Weight
		}
	}
	return total
}

// Clone returns a deep copy so callers can hold a snapshot that later
// catalog reloads cannot mutate.
func (c *Category) Clone() *Category {
	clone := *c
	clone.Tiers = make([]PrizeTier, len(c.Tiers))
	copy(clone.Tiers, c.Tiers)
	return &clone
}
