package repository

import (
	"context"
	"testing"

	"raspadinha/events"
	"raspadinha/models"
	"raspadinha/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnitOfWork_RollbackUndoesReservation(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	ctx := context.Background()
	userRepo := NewUserRepository(testDB.DB)
	_, err := userRepo.Create(ctx, 123, "player", 1000)
	require.NoError(t, err)

	factory := NewUnitOfWorkFactory(testDB.DB, events.NewBus())

	uow := factory.Create()
	require.NoError(t, uow.Begin(ctx))

	// Debit succeeds inside the transaction.
	require.NoError(t, uow.UserRepository().DeductBalanceIfSufficient(ctx, 123, 600))
	require.NoError(t, uow.Rollback())

	// The rollback restores the full balance.
	balance, err := userRepo.BalanceOf(ctx, 123)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), balance)
}

func TestUnitOfWork_DuplicatePlayRollsBackDebit(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	ctx := context.Background()
	userRepo := NewUserRepository(testDB.DB)
	playRepo := NewPlayRepository(testDB.DB)
	_, err := userRepo.Create(ctx, 123, "player", 1000)
	require.NoError(t, err)

	existing := testutil.CreateTestPlay(123, "centavos", 50)
	require.NoError(t, playRepo.Create(ctx, existing))

	factory := NewUnitOfWorkFactory(testDB.DB, events.NewBus())

	uow := factory.Create()
	require.NoError(t, uow.Begin(ctx))

	require.NoError(t, uow.UserRepository().DeductBalanceIfSufficient(ctx, 123, 50))

	dup := testutil.CreateTestPlay(123, "centavos", 50)
	dup.ID = existing.ID
	err = uow.PlayRepository().Create(ctx, dup)
	assert.ErrorIs(t, err, models.ErrDuplicatePlay)

	require.NoError(t, uow.Rollback())

	// Stake debit and play insert stand or fall together.
	balance, err := userRepo.BalanceOf(ctx, 123)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), balance)
}

func TestUnitOfWork_CommitPersistsAndFlushesEvents(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	ctx := context.Background()
	userRepo := NewUserRepository(testDB.DB)
	_, err := userRepo.Create(ctx, 123, "player", 1000)
	require.NoError(t, err)

	bus := events.NewBus()
	received := make(chan events.Event, 1)
	bus.Subscribe(events.EventTypeBalanceChange, func(ctx context.Context, e events.Event) {
		received <- e
	})

	factory := NewUnitOfWorkFactory(testDB.DB, bus)

	uow := factory.Create()
	require.NoError(t, uow.Begin(ctx))
	require.NoError(t, uow.UserRepository().DeductBalanceIfSufficient(ctx, 123, 50))
	uow.EventBus().Publish(events.BalanceChangeEvent{
		UserID:          123,
		OldBalance:      1000,
		NewBalance:      950,
		TransactionType: models.TransactionTypePlayPurchase,
		ChangeAmount:    -50,
	})
	require.NoError(t, uow.Commit())

	balance, err := userRepo.BalanceOf(ctx, 123)
	require.NoError(t, err)
	assert.Equal(t, int64(950), balance)

	event := <-received
	change, ok := event.(events.BalanceChangeEvent)
	require.True(t, ok)
	assert.Equal(t, int64(950), change.NewBalance)
}

func TestUnitOfWork_DiscardedEventsNeverEscape(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	ctx := context.Background()

	bus := events.NewBus()
	received := make(chan events.Event, 1)
	bus.Subscribe(events.EventTypeBalanceChange, func(ctx context.Context, e events.Event) {
		received <- e
	})

	factory := NewUnitOfWorkFactory(testDB.DB, bus)

	uow := factory.Create()
	require.NoError(t, uow.Begin(ctx))
	uow.EventBus().Publish(events.BalanceChangeEvent{UserID: 123})
	require.NoError(t, uow.Rollback())

	select {
	case <-received:
		t.Fatal("event escaped a rolled back transaction")
	default:
	}
}
