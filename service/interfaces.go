package service

import (
	"context"
	"time"

	"raspadinha/events"
	"raspadinha/models"

	"github.com/google/uuid"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// GetByID retrieves a user by ID, nil if no such user exists
	GetByID(ctx context.Context, userID int64) (*models.User, error)

	// Create creates a new user with the initial balance
	Create(ctx context.Context, userID int64, username string, initialBalance int64) (*models.User, error)

	// BalanceOf returns the user's current balance
	BalanceOf(ctx context.Context, userID int64) (int64, error)

	// AddBalance adds to a user's balance atomically
	AddBalance(ctx context.Context, userID int64, amount int64) error

	// DeductBalanceIfSufficient debits the balance in one conditional
	// update, returning models.ErrInsufficientFunds when it falls short
	DeductBalanceIfSufficient(ctx context.Context, userID int64, amount int64) error
}

// PlayRepository defines the interface for play data access
type PlayRepository interface {
	// Create inserts a play with its outcome snapshot;
	// models.ErrDuplicatePlay when the play ID was already used
	Create(ctx context.Context, play *models.Play) error

	// GetByID retrieves a play by ID, nil if no such play exists
	GetByID(ctx context.Context, playID uuid.UUID) (*models.Play, error)

	// MarkRevealed transitions purchased -> revealed, no-op otherwise
	MarkRevealed(ctx context.Context, playID uuid.UUID) error

	// SettleIfOpen transitions an open play to settled;
	// models.ErrAlreadySettled when the play was already terminal
	SettleIfOpen(ctx context.Context, playID uuid.UUID) error

	// ListOrphanedBefore returns open plays purchased before the cutoff
	ListOrphanedBefore(ctx context.Context, cutoff time.Time, limit int) ([]*models.Play, error)
}

// CategoryRepository defines the interface for catalog data access
type CategoryRepository interface {
	// GetAllEnabled returns every enabled category with its prize table
	GetAllEnabled(ctx context.Context) ([]*models.Category, error)
}

// BalanceHistoryRepository defines the interface for balance history tracking
type BalanceHistoryRepository interface {
	// Record creates a new balance history entry
	Record(ctx context.Context, history *models.BalanceHistory) error

	// GetByUser returns balance history for a specific user
	GetByUser(ctx context.Context, userID int64, limit int) ([]*models.BalanceHistory, error)
}

// UserService defines the interface for account operations
type UserService interface {
	// GetOrCreateUser retrieves an existing user or creates a new one
	// with the configured starting balance
	GetOrCreateUser(ctx context.Context, userID int64, username string) (*models.User, error)

	// BalanceOf returns the user's current balance
	BalanceOf(ctx context.Context, userID int64) (int64, error)

	// Deposit credits a top-up to the user's balance (the payment
	// gateway's entry point; the game flow never calls it)
	Deposit(ctx context.Context, userID int64, amount int64) (int64, error)
}

// PlayService coordinates the play lifecycle: purchase fixes the outcome
// and reserves the stake, reveal tracks scratch coverage, complete settles
// from the stored outcome exactly once.
type PlayService interface {
	// Purchase reserves the stake and creates a play; the outcome is
	// fixed here but not disclosed
	Purchase(ctx context.Context, userID int64, categoryID string) (*models.PurchaseResult, error)

	// Reveal records newly scratched coverage and reports whether the
	// reveal threshold has been crossed
	Reveal(ctx context.Context, userID int64, playID uuid.UUID, scratchedBps int64, revealAll bool) (*RevealProgress, error)

	// Complete settles the play from its stored outcome. The claimed
	// outcome is only compared for tamper logging, never trusted.
	Complete(ctx context.Context, userID int64, playID uuid.UUID, claimed *models.ClaimedOutcome) (*models.PlayResult, error)

	// Categories returns the loaded catalog snapshot
	Categories() []*models.Category
}

// ReconciliationService finds plays stuck before settlement and forces
// them through the same settlement path.
type ReconciliationService interface {
	// SweepOrphans settles open plays older than the configured timeout
	// from their stored outcome; returns how many were settled
	SweepOrphans(ctx context.Context) (int, error)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Repository getters
	UserRepository() UserRepository
	PlayRepository() PlayRepository
	BalanceHistoryRepository() BalanceHistoryRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}
