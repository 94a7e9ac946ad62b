package repository

import (
	"context"
	"fmt"

	"raspadinha/database"
	"raspadinha/models"
)

// CategoryRepository implements the service.CategoryRepository interface
type CategoryRepository struct {
	q queryable
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(db *database.DB) *CategoryRepository {
	return &CategoryRepository{q: db.Pool}
}

// GetAllEnabled returns every enabled category with its prize table, tiers
// ordered by sort_order so weighted selection walks a stable order.
func (r *CategoryRepository) GetAllEnabled(ctx context.Context) ([]*models.Category, error) {
	query := `
		SELECT category_id, display_name, stake, rtp_bps, enabled
		FROM categories
		WHERE enabled = TRUE
		ORDER BY category_id
	`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}
	defer rows.Close()

	var categories []*models.Category
	byID := make(map[string]*models.Category)
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.DisplayName, &c.Stake, &c.RTPBps, &c.Enabled); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, &c)
		byID[c.ID] = &c
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate categories: %w", err)
	}
	rows.Close()

	tierQuery := `
		SELECT tier_id, category_id, display_name, symbol, value, weight, sort_order
		FROM prize_tiers
		ORDER BY category_id, sort_order, tier_id
	`

	tierRows, err := r.q.Query(ctx, tierQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to get prize tiers: %w", err)
	}
	defer tierRows.Close()

	for tierRows.Next() {
		var t models.PrizeTier
		if err := tierRows.Scan(&t.ID, &t.CategoryID, &t.DisplayName, &t.Symbol, &t.Value, &t.Weight, &t.SortOrder); err != nil {
			return nil, fmt.Errorf("failed to scan prize tier: %w", err)
		}
		if c, ok := byID[t.CategoryID]; ok {
			c.Tiers = append(c.Tiers, t)
		}
	}
	if err := tierRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate prize tiers: %w", err)
	}

	return categories, nil
}
