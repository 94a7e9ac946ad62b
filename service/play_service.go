package service

import (
	"context"
	"errors"
	"fmt"

	"raspadinha/config"
	"raspadinha/events"
	"raspadinha/models"
	"raspadinha/outcome"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// playService implements the PlayService interface. It owns the immutable
// catalog snapshot loaded at startup and the in-memory reveal tracker.
type playService struct {
	uowFactory UnitOfWorkFactory
	generator  *outcome.Generator
	tracker    *revealTracker
	catalog    []*models.Category
	byID       map[string]*models.Category
}

// NewPlayService loads and validates the catalog, then returns the play
// coordinator. A prize table the generator cannot sample from aborts
// startup here instead of failing per-play.
func NewPlayService(ctx context.Context, uowFactory UnitOfWorkFactory, categoryRepo CategoryRepository, generator *outcome.Generator) (PlayService, error) {
	categories, err := categoryRepo.GetAllEnabled(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load category catalog: %w", err)
	}
	if len(categories) == 0 {
		return nil, fmt.Errorf("category catalog is empty")
	}

	byID := make(map[string]*models.Category, len(categories))
	for _, c := range categories {
		if c.RTPBps == 0 {
			c.RTPBps = config.Get().DefaultRTPBps
		}
		if err := outcome.ValidateCategory(c); err != nil {
			return nil, fmt.Errorf("invalid category configuration: %w", err)
		}
		byID[c.ID] = c
	}

	log.WithField("categories", len(categories)).Info("Loaded category catalog")

	return &playService{
		uowFactory: uowFactory,
		generator:  generator,
		tracker:    newRevealTracker(),
		catalog:    categories,
		byID:       byID,
	}, nil
}

// Categories returns a snapshot of the loaded catalog.
func (s *playService) Categories() []*models.Category {
	out := make([]*models.Category, len(s.catalog))
	for i, c := range s.catalog {
		out[i] = c.Clone()
	}
	return out
}

// Purchase fixes the outcome, reserves the stake and creates the play in
// one transaction. The stake debit and the play row either both land or
// neither does. The returned result carries no outcome data.
func (s *playService) Purchase(ctx context.Context, userID int64, categoryID string) (*models.PurchaseResult, error) {
	category, ok := s.byID[categoryID]
	if !ok {
		return nil, models.ErrUnknownCategory
	}

	// The outcome is decided before any money moves and never changes
	// afterwards. Reveal and settlement only read it back.
	decided, err := s.generator.Decide(category)
	if err != nil {
		return nil, fmt.Errorf("failed to generate outcome: %w", err)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, models.ErrUnknownUser
	}

	if err := uow.UserRepository().DeductBalanceIfSufficient(ctx, userID, category.Stake); err != nil {
		return nil, err
	}

	play := &models.Play{
		ID:         uuid.New(),
		UserID:     userID,
		CategoryID: categoryID,
		Stake:      category.Stake,
		State:      models.PlayStatePurchased,
		IsWin:      decided.IsWin,
		Prize:      decided.Prize(),
		Grid:       decided.Grid[:],
	}
	if decided.Tier != nil {
		play.TierID = &decided.Tier.ID
		play.TierName = &decided.Tier.DisplayName
	}

	if err := uow.PlayRepository().Create(ctx, play); err != nil {
		return nil, err
	}

	newBalance := user.Balance - category.Stake
	history := &models.BalanceHistory{
		UserID:          userID,
		BalanceBefore:   user.Balance,
		BalanceAfter:    newBalance,
		ChangeAmount:    -category.Stake,
		TransactionType: models.TransactionTypePlayPurchase,
		TransactionMetadata: map[string]any{
			"category_id": categoryID,
		},
		PlayID: &play.ID,
	}
	if err := RecordBalanceChange(ctx, uow, history); err != nil {
		return nil, err
	}

	uow.EventBus().Publish(events.PlayPurchasedEvent{
		PlayID:     play.ID,
		UserID:     userID,
		CategoryID: categoryID,
		Stake:      category.Stake,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"playID":     play.ID,
		"userID":     userID,
		"categoryID": categoryID,
		"stake":      category.Stake,
	}).Info("Play purchased")

	return &models.PurchaseResult{
		PlayID:     play.ID,
		Stake:      category.Stake,
		NewBalance: newBalance,
	}, nil
}

// Reveal accumulates scratch coverage and flips the play to revealed once
// the threshold is crossed. No money moves here; the transition is purely
// a lifecycle marker.
func (s *playService) Reveal(ctx context.Context, userID int64, playID uuid.UUID, scratchedBps int64, revealAll bool) (*RevealProgress, error) {
	if scratchedBps < 0 {
		return nil, fmt.Errorf("scratched coverage must not be negative")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	play, err := uow.PlayRepository().GetByID(ctx, playID)
	if err != nil {
		return nil, fmt.Errorf("failed to get play: %w", err)
	}
	if play == nil {
		return nil, models.ErrUnknownPlay
	}
	if play.UserID != userID {
		return nil, models.ErrNotPlayOwner
	}

	// A settled play is fully disclosed already; repeat reveals are
	// harmless no-ops.
	if play.Settled() {
		if err := uow.Commit(); err != nil {
			return nil, fmt.Errorf("failed to commit transaction: %w", err)
		}
		return &RevealProgress{
			PlayID:      playID,
			CoverageBps: config.BpsScale,
			Revealed:    true,
			Grid:        play.Grid,
		}, nil
	}

	var total int64
	if revealAll {
		total = s.tracker.setFull(playID)
	} else {
		total = s.tracker.add(playID, scratchedBps)
	}

	revealed := play.State == models.PlayStateRevealed
	if !revealed && total >= config.Get().RevealThresholdBps {
		if err := uow.PlayRepository().MarkRevealed(ctx, playID); err != nil {
			return nil, fmt.Errorf("failed to mark play revealed: %w", err)
		}
		revealed = true
		uow.EventBus().Publish(events.PlayRevealedEvent{
			PlayID: playID,
			UserID: userID,
		})
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	progress := &RevealProgress{
		PlayID:      playID,
		CoverageBps: total,
		Revealed:    revealed,
	}
	if revealed {
		progress.Grid = play.Grid
	}
	return progress, nil
}

// Complete settles the play from its stored outcome. Repeating the call
// is safe: the second and later attempts observe the terminal state and
// return the same result without moving money again.
func (s *playService) Complete(ctx context.Context, userID int64, playID uuid.UUID, claimed *models.ClaimedOutcome) (*models.PlayResult, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	play, err := uow.PlayRepository().GetByID(ctx, playID)
	if err != nil {
		return nil, fmt.Errorf("failed to get play: %w", err)
	}
	if play == nil {
		return nil, models.ErrUnknownPlay
	}
	if play.UserID != userID {
		return nil, models.ErrNotPlayOwner
	}

	logClaimMismatch(play, claimed)

	result, err := settlePlay(ctx, uow, play)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.tracker.forget(playID)

	if !result.AlreadySettled {
		log.WithFields(log.Fields{
			"playID": playID,
			"userID": userID,
			"isWin":  result.IsWin,
			"prize":  result.Prize,
		}).Info("Play settled")
	}

	return result, nil
}

// settlePlay performs the one-shot settlement inside the caller's unit of
// work: flip the state, credit the prize on a win, record history, emit
// the event. A play that is already terminal yields the stored result with
// AlreadySettled set and moves no money.
func settlePlay(ctx context.Context, uow UnitOfWork, play *models.Play) (*models.PlayResult, error) {
	result := &models.PlayResult{
		PlayID:   play.ID,
		IsWin:    play.IsWin,
		TierID:   play.TierID,
		TierName: play.TierName,
		Prize:    play.Prize,
		Grid:     play.Grid,
	}

	err := uow.PlayRepository().SettleIfOpen(ctx, play.ID)
	if errors.Is(err, models.ErrAlreadySettled) {
		balance, berr := uow.UserRepository().BalanceOf(ctx, play.UserID)
		if berr != nil {
			return nil, berr
		}
		result.NewBalance = balance
		result.AlreadySettled = true
		return result, nil
	}
	if err != nil {
		return nil, err
	}

	balance, err := uow.UserRepository().BalanceOf(ctx, play.UserID)
	if err != nil {
		return nil, err
	}

	if play.IsWin && play.Prize > 0 {
		if err := uow.UserRepository().AddBalance(ctx, play.UserID, play.Prize); err != nil {
			return nil, fmt.Errorf("failed to credit prize: %w", err)
		}

		history := &models.BalanceHistory{
			UserID:          play.UserID,
			BalanceBefore:   balance,
			BalanceAfter:    balance + play.Prize,
			ChangeAmount:    play.Prize,
			TransactionType: models.TransactionTypePrizeCredit,
			TransactionMetadata: map[string]any{
				"category_id": play.CategoryID,
			},
			PlayID: &play.ID,
		}
		if err := RecordBalanceChange(ctx, uow, history); err != nil {
			return nil, err
		}
		balance += play.Prize
	}

	result.NewBalance = balance

	uow.EventBus().Publish(events.PlaySettledEvent{
		PlayID: play.ID,
		UserID: play.UserID,
		IsWin:  play.IsWin,
		Prize:  play.Prize,
	})

	return result, nil
}

// logClaimMismatch compares what the client says it revealed against the
// stored outcome. The claim is never used for settlement; a disagreement
// is a tamper signal worth an alert, nothing more.
func logClaimMismatch(play *models.Play, claimed *models.ClaimedOutcome) {
	if claimed == nil {
		return
	}

	storedTier := ""
	if play.TierID != nil {
		storedTier = *play.TierID
	}
	if claimed.IsWin != play.IsWin || claimed.TierID != storedTier {
		log.WithFields(log.Fields{
			"playID":        play.ID,
			"userID":        play.UserID,
			"claimedWin":    claimed.IsWin,
			"claimedTierID": claimed.TierID,
			"storedWin":     play.IsWin,
			"storedTierID":  storedTier,
		}).Warn("Claimed outcome disagrees with stored outcome")
	}
}
