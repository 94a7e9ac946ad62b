package repository

import (
	"context"
	"testing"
	"time"

	"raspadinha/models"
	"raspadinha/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlayRepository_Create(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	userRepo := NewUserRepository(testDB.DB)
	repo := NewPlayRepository(testDB.DB)
	ctx := context.Background()

	_, err := userRepo.Create(ctx, 123, "player", 1000)
	require.NoError(t, err)

	t.Run("stores the outcome snapshot", func(t *testing.T) {
		play := testutil.CreateTestWinningPlay(123, "centavos", 50, 500, "c2")

		err := repo.Create(ctx, play)
		require.NoError(t, err)
		assert.False(t, play.CreatedAt.IsZero())

		loaded, err := repo.GetByID(ctx, play.ID)
		require.NoError(t, err)
		require.NotNil(t, loaded)

		assert.Equal(t, play.ID, loaded.ID)
		assert.Equal(t, models.PlayStatePurchased, loaded.State)
		assert.True(t, loaded.IsWin)
		assert.Equal(t, "c2", *loaded.TierID)
		assert.Equal(t, int64(500), loaded.Prize)
		assert.Equal(t, play.Grid, loaded.Grid)
		assert.Nil(t, loaded.RevealedAt)
		assert.Nil(t, loaded.SettledAt)
	})

	t.Run("duplicate play id", func(t *testing.T) {
		play := testutil.CreateTestPlay(123, "centavos", 50)
		require.NoError(t, repo.Create(ctx, play))

		dup := testutil.CreateTestPlay(123, "centavos", 50)
		dup.ID = play.ID
		err := repo.Create(ctx, dup)
		assert.ErrorIs(t, err, models.ErrDuplicatePlay)
	})
}

func TestPlayRepository_MarkRevealed(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	userRepo := NewUserRepository(testDB.DB)
	repo := NewPlayRepository(testDB.DB)
	ctx := context.Background()

	_, err := userRepo.Create(ctx, 123, "player", 1000)
	require.NoError(t, err)

	play := testutil.CreateTestPlay(123, "centavos", 50)
	require.NoError(t, repo.Create(ctx, play))

	require.NoError(t, repo.MarkRevealed(ctx, play.ID))

	loaded, err := repo.GetByID(ctx, play.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PlayStateRevealed, loaded.State)
	assert.NotNil(t, loaded.RevealedAt)

	// Repeating the transition is a no-op.
	firstRevealedAt := *loaded.RevealedAt
	require.NoError(t, repo.MarkRevealed(ctx, play.ID))

	loaded, err = repo.GetByID(ctx, play.ID)
	require.NoError(t, err)
	assert.Equal(t, firstRevealedAt, *loaded.RevealedAt)
}

func TestPlayRepository_SettleIfOpen(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	userRepo := NewUserRepository(testDB.DB)
	repo := NewPlayRepository(testDB.DB)
	ctx := context.Background()

	_, err := userRepo.Create(ctx, 123, "player", 1000)
	require.NoError(t, err)

	t.Run("settles from purchased", func(t *testing.T) {
		play := testutil.CreateTestPlay(123, "centavos", 50)
		require.NoError(t, repo.Create(ctx, play))

		require.NoError(t, repo.SettleIfOpen(ctx, play.ID))

		loaded, err := repo.GetByID(ctx, play.ID)
		require.NoError(t, err)
		assert.Equal(t, models.PlayStateSettled, loaded.State)
		assert.NotNil(t, loaded.SettledAt)
	})

	t.Run("settles from revealed", func(t *testing.T) {
		play := testutil.CreateTestPlay(123, "centavos", 50)
		require.NoError(t, repo.Create(ctx, play))
		require.NoError(t, repo.MarkRevealed(ctx, play.ID))

		require.NoError(t, repo.SettleIfOpen(ctx, play.ID))
	})

	t.Run("second settle reports already settled", func(t *testing.T) {
		play := testutil.CreateTestPlay(123, "centavos", 50)
		require.NoError(t, repo.Create(ctx, play))

		require.NoError(t, repo.SettleIfOpen(ctx, play.ID))
		err := repo.SettleIfOpen(ctx, play.ID)
		assert.ErrorIs(t, err, models.ErrAlreadySettled)
	})

	t.Run("unknown play", func(t *testing.T) {
		err := repo.SettleIfOpen(ctx, testutil.CreateTestPlay(123, "centavos", 50).ID)
		assert.ErrorIs(t, err, models.ErrUnknownPlay)
	})
}

func TestPlayRepository_ListOrphanedBefore(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	userRepo := NewUserRepository(testDB.DB)
	repo := NewPlayRepository(testDB.DB)
	ctx := context.Background()

	_, err := userRepo.Create(ctx, 123, "player", 1000)
	require.NoError(t, err)

	open := testutil.CreateTestPlay(123, "centavos", 50)
	require.NoError(t, repo.Create(ctx, open))

	settled := testutil.CreateTestPlay(123, "centavos", 50)
	require.NoError(t, repo.Create(ctx, settled))
	require.NoError(t, repo.SettleIfOpen(ctx, settled.ID))

	// A cutoff in the future captures everything still open.
	orphans, err := repo.ListOrphanedBefore(ctx, time.Now().Add(time.Hour), 10)
	require.NoError(t, err)
	require.Len(t, orphans, 1)
	assert.Equal(t, open.ID, orphans[0].ID)

	// A cutoff in the past captures nothing.
	orphans, err = repo.ListOrphanedBefore(ctx, time.Now().Add(-time.Hour), 10)
	require.NoError(t, err)
	assert.Empty(t, orphans)
}
