package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"raspadinha/database"
	"raspadinha/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// uniqueViolation is the postgres error code raised when an insert hits a
// unique constraint; on plays.play_id it is the duplicate-purchase guard.
const uniqueViolation = "23505"

// PlayRepository implements the service.PlayRepository interface
type PlayRepository struct {
	q queryable
}

// NewPlayRepository creates a new play repository
func NewPlayRepository(db *database.DB) *PlayRepository {
	return &PlayRepository{q: db.Pool}
}

// newPlayRepositoryWithTx creates a new play repository with a transaction
func newPlayRepositoryWithTx(tx queryable) *PlayRepository {
	return &PlayRepository{q: tx}
}

// Create inserts a play in the purchased state with its outcome snapshot.
// Returns models.ErrDuplicatePlay when the play ID was already used.
func (r *PlayRepository) Create(ctx context.Context, play *models.Play) error {
	query := `
		INSERT INTO plays
		(play_id, user_id, category_id, stake, state, is_win, tier_id, tier_name, prize, grid)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at
	`

	err := r.q.QueryRow(ctx, query,
		play.ID,
		play.UserID,
		play.CategoryID,
		play.Stake,
		play.State,
		play.IsWin,
		play.TierID,
		play.TierName,
		play.Prize,
		play.Grid,
	).Scan(&play.CreatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return models.ErrDuplicatePlay
		}
		return fmt.Errorf("failed to create play %s: %w", play.ID, err)
	}

	return nil
}

// GetByID retrieves a play by its ID, nil if no such play exists.
func (r *PlayRepository) GetByID(ctx context.Context, playID uuid.UUID) (*models.Play, error) {
	query := `
		SELECT play_id, user_id, category_id, stake, state, is_win, tier_id, tier_name, prize, grid,
		       created_at, revealed_at, settled_at
		FROM plays
		WHERE play_id = $1
	`

	var play models.Play
	err := r.q.QueryRow(ctx, query, playID).Scan(
		&play.ID,
		&play.UserID,
		&play.CategoryID,
		&play.Stake,
		&play.State,
		&play.IsWin,
		&play.TierID,
		&play.TierName,
		&play.Prize,
		&play.Grid,
		&play.CreatedAt,
		&play.RevealedAt,
		&play.SettledAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get play %s: %w", playID, err)
	}

	return &play, nil
}

// MarkRevealed transitions a purchased play to revealed. Already revealed
// or settled plays are left untouched; reveal is monotonic and moves no
// money, so this is not an error.
func (r *PlayRepository) MarkRevealed(ctx context.Context, playID uuid.UUID) error {
	query := `
		UPDATE plays
		SET state = $1, revealed_at = NOW()
		WHERE play_id = $2 AND state = $3
	`

	_, err := r.q.Exec(ctx, query, models.PlayStateRevealed, playID, models.PlayStatePurchased)
	if err != nil {
		return fmt.Errorf("failed to mark play %s revealed: %w", playID, err)
	}

	return nil
}

// SettleIfOpen transitions a purchased or revealed play to settled in a
// single guarded update. RowsAffected distinguishes a play that was
// already terminal, which makes concurrent duplicate settlements collapse
// to exactly one state transition.
func (r *PlayRepository) SettleIfOpen(ctx context.Context, playID uuid.UUID) error {
	query := `
		UPDATE plays
		SET state = $1, settled_at = NOW()
		WHERE play_id = $2 AND state IN ($3, $4)
	`

	result, err := r.q.Exec(ctx, query,
		models.PlayStateSettled, playID, models.PlayStatePurchased, models.PlayStateRevealed)
	if err != nil {
		return fmt.Errorf("failed to settle play %s: %w", playID, err)
	}

	if result.RowsAffected() == 0 {
		play, err := r.GetByID(ctx, playID)
		if err != nil {
			return fmt.Errorf("failed to check play: %w", err)
		}
		if play == nil {
			return models.ErrUnknownPlay
		}
		return models.ErrAlreadySettled
	}

	return nil
}

// ListOrphanedBefore returns open plays purchased before the cutoff. These
// represent money taken from a balance with no outcome disclosed and feed
// the reconciliation sweep.
func (r *PlayRepository) ListOrphanedBefore(ctx context.Context, cutoff time.Time, limit int) ([]*models.Play, error) {
	query := `
		SELECT play_id, user_id, category_id, stake, state, is_win, tier_id, tier_name, prize, grid,
		       created_at, revealed_at, settled_at
		FROM plays
		WHERE state IN ($1, $2) AND created_at < $3
		ORDER BY created_at
		LIMIT $4
	`

	rows, err := r.q.Query(ctx, query,
		models.PlayStatePurchased, models.PlayStateRevealed, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list orphaned plays: %w", err)
	}
	defer rows.Close()

	var plays []*models.Play
	for rows.Next() {
		var play models.Play
		err := rows.Scan(
			&play.ID,
			&play.UserID,
			&play.CategoryID,
			&play.Stake,
			&play.State,
			&play.IsWin,
			&play.TierID,
			&play.TierName,
			&play.Prize,
			&play.Grid,
			&play.CreatedAt,
			&play.RevealedAt,
			&play.SettledAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan play: %w", err)
		}
		plays = append(plays, &play)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate plays: %w", err)
	}

	return plays, nil
}
