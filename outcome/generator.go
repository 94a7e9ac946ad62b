// Package outcome decides whether a play wins and which prize tier it
// wins. Win/lose and tier selection are pure integer arithmetic over basis
// points and relative weights, so the realized win rate converges on the
// configured target without floating-point drift.
package outcome

import (
	"fmt"

	"raspadinha/config"
	"raspadinha/models"
)

// Symbols used to fill losing cells of the scratch grid. Category tiers
// carry their own symbol; fillers only need to be distinct enough that a
// losing card never shows three of a kind.
var fillerSymbols = []string{"cherry", "lemon", "star", "seven", "bell", "clover"}

// Generator produces outcomes for a category. Safe for concurrent use as
// long as the Source is.
type Generator struct {
	src Source
}

// NewGenerator creates a generator backed by the given random source.
func NewGenerator(src Source) *Generator {
	if src == nil {
		src = CryptoSource{}
	}
	return &Generator{src: src}
}

// ValidateCategory rejects prize tables the generator cannot sample from.
// Called once at catalog load; a failure here is a configuration error and
// must abort startup rather than surface per-play.
func ValidateCategory(c *models.Category) error {
	if c.Stake <= 0 {
		return fmt.Errorf("category %s: stake must be positive, got %d", c.ID, c.Stake)
	}
	if c.RTPBps < 0 || c.RTPBps > config.BpsScale {
		return fmt.Errorf("category %s: rtp %d outside [0, %d]", c.ID, c.RTPBps, config.BpsScale)
	}
	if len(c.Tiers) == 0 {
		return fmt.Errorf("category %s: empty prize table", c.ID)
	}
	for _, t := range c.Tiers {
		if t.Weight < 0 {
			return fmt.Errorf("category %s: tier %s has negative weight %d", c.ID, t.ID, t.Weight)
		}
		if t.Value < 0 {
			return fmt.Errorf("category %s: tier %s has negative value %d", c.ID, t.ID, t.Value)
		}
		if t.Symbol == "" {
			return fmt.Errorf("category %s: tier %s has no symbol", c.ID, t.ID)
		}
	}
	if c.TotalWeight() <= 0 {
		return fmt.Errorf("category %s: prize table has zero total weight", c.ID)
	}
	return nil
}

// Decide fixes the outcome for one play of the category. The win/lose draw
// is independent of prize values: over many plays the winning fraction
// converges to the category's RTP target. Tier selection walks the prize
// table in stored order, so a fixed Source yields a fixed tier.
func (g *Generator) Decide(c *models.Category) (models.Outcome, error) {
	if err := ValidateCategory(c); err != nil {
		return models.Outcome{}, err
	}

	rtp := clampBps(c.RTPBps)
	win := g.src.Int64N(config.BpsScale) < rtp
	if !win {
		out := models.Outcome{IsWin: false}
		g.fillLosingGrid(&out.Grid)
		return out, nil
	}

	tier := g.pickTier(c)
	out := models.Outcome{IsWin: true, Tier: tier}
	g.fillWinningGrid(&out.Grid, tier.Symbol)
	return out, nil
}

// pickTier selects a tier by weight: a single draw in [0, totalWeight)
// walked against the cumulative weights in table order.
func (g *Generator) pickTier(c *models.Category) *models.PrizeTier {
	total := c.TotalWeight()
	draw := g.src.Int64N(total)

	var cum int64
	for i := range c.Tiers {
		t := &c.Tiers[i]
		if t.Weight <= 0 {
			continue
		}
		cum += t.Weight
		if draw < cum {
			tier := *t
			return &tier
		}
	}
	// Unreachable when the table validates; keep the walk total anyway.
	tier := c.Tiers[len(c.Tiers)-1]
	return &tier
}

// fillWinningGrid places exactly three cells of the winning symbol and
// fills the rest so no other symbol reaches three of a kind.
func (g *Generator) fillWinningGrid(grid *[models.GridSize]string, symbol string) {
	positions := map[int]bool{}
	for len(positions) < 3 {
		positions[int(g.src.Int64N(models.GridSize))] = true
	}

	counts := map[string]int{}
	for i := range grid {
		if positions[i] {
			grid[i] = symbol
			continue
		}
		grid[i] = g.drawFiller(counts, symbol)
	}
}

// fillLosingGrid fills all nine cells so that no symbol appears three
// times.
func (g *Generator) fillLosingGrid(grid *[models.GridSize]string) {
	counts := map[string]int{}
	for i := range grid {
		grid[i] = g.drawFiller(counts, "")
	}
}

// drawFiller picks a filler symbol that has not yet appeared twice and is
// not the winning symbol. With six fillers and nine cells there is always
// a candidate left.
func (g *Generator) drawFiller(counts map[string]int, exclude string) string {
	for {
		s := fillerSymbols[g.src.Int64N(int64(len(fillerSymbols)))]
		if s == exclude || counts[s] >= 2 {
			continue
		}
		counts[s]++
		return s
	}
}

func clampBps(v int64) int64 {
	if v < 0 {
		return 0
	}
	if v > config.BpsScale {
		return config.BpsScale
	}
	return v
}
