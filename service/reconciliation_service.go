package service

import (
	"context"
	"fmt"
	"time"

	"raspadinha/config"
	"raspadinha/models"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// sweepBatchSize bounds how many orphans one sweep picks up, so a large
// backlog is worked off across runs instead of in one long transaction.
const sweepBatchSize = 100

// reconciliationService force-settles plays that were purchased but never
// completed, so reserved stakes cannot stay in limbo. It settles from the
// stored outcome through the same path Complete uses.
type reconciliationService struct {
	uowFactory UnitOfWorkFactory
}

// NewReconciliationService creates a new reconciliation service
func NewReconciliationService(uowFactory UnitOfWorkFactory) ReconciliationService {
	return &reconciliationService{
		uowFactory: uowFactory,
	}
}

// SweepOrphans settles open plays older than the configured timeout and
// returns how many were settled. Each play gets its own transaction, so
// one bad row cannot hold up the rest of the batch.
func (s *reconciliationService) SweepOrphans(ctx context.Context) (int, error) {
	cutoff := time.Now().Add(-config.Get().OrphanPlayTimeout)

	orphans, err := s.listOrphans(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if len(orphans) == 0 {
		return 0, nil
	}

	settled := 0
	for _, orphan := range orphans {
		settledNow, err := s.settleOrphan(ctx, orphan.ID)
		if err != nil {
			log.WithFields(log.Fields{
				"playID": orphan.ID,
				"error":  err,
			}).Error("Failed to settle orphaned play")
			continue
		}
		if settledNow {
			settled++
		}
	}

	if settled > 0 {
		log.WithFields(log.Fields{
			"settled": settled,
			"cutoff":  cutoff,
		}).Info("Settled orphaned plays")
	}

	return settled, nil
}

func (s *reconciliationService) listOrphans(ctx context.Context, cutoff time.Time) ([]*models.Play, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	orphans, err := uow.PlayRepository().ListOrphanedBefore(ctx, cutoff, sweepBatchSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list orphaned plays: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return orphans, nil
}

// settleOrphan re-reads the play inside its own transaction and settles
// it from the stored outcome. A play the player completed between listing
// and settling shows up as already settled and does not count.
func (s *reconciliationService) settleOrphan(ctx context.Context, playID uuid.UUID) (bool, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	play, err := uow.PlayRepository().GetByID(ctx, playID)
	if err != nil {
		return false, fmt.Errorf("failed to get play: %w", err)
	}
	if play == nil {
		return false, models.ErrUnknownPlay
	}

	result, err := settlePlay(ctx, uow, play)
	if err != nil {
		return false, err
	}

	if err := uow.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}

	if result.AlreadySettled {
		log.WithField("playID", playID).Debug("Orphaned play was settled concurrently")
		return false, nil
	}
	return true, nil
}

// StartSweeper runs SweepOrphans on the configured interval until the
// returned stop function is called.
func StartSweeper(ctx context.Context, svc ReconciliationService) func() {
	ticker := time.NewTicker(config.Get().SweepInterval)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-ticker.C:
				if _, err := svc.SweepOrphans(ctx); err != nil {
					log.WithError(err).Error("Orphan sweep failed")
				}
			case <-done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return func() {
		ticker.Stop()
		close(done)
	}
}
