package repository

import (
	"context"
	"testing"

	"raspadinha/outcome"
	"raspadinha/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryRepository_GetAllEnabled(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewCategoryRepository(testDB.DB)
	ctx := context.Background()

	categories, err := repo.GetAllEnabled(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, categories)

	// The seeded catalog must be sellable as-is.
	for _, c := range categories {
		assert.True(t, c.Enabled)
		assert.NotEmpty(t, c.Tiers, "category %s has no prize table", c.ID)
		assert.NoError(t, outcome.ValidateCategory(c), "category %s", c.ID)

		// Tiers arrive in stored order for the cumulative weight walk.
		for i := 1; i < len(c.Tiers); i++ {
			assert.LessOrEqual(t, c.Tiers[i-1].SortOrder, c.Tiers[i].SortOrder)
		}
	}
}
