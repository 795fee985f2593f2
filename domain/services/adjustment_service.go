package services

import (
	"context"
	"fmt"

	"rallyledger/application"
	"rallyledger/domain/entities"
	"rallyledger/domain/events"
	"rallyledger/domain/interfaces"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type adjustmentService struct {
	uowFactory application.UnitOfWorkFactory
}

// NewAdjustmentService creates a new adjustment service
func NewAdjustmentService(uowFactory application.UnitOfWorkFactory) interfaces.AdjustmentService {
	return &adjustmentService{uowFactory: uowFactory}
}

// ReclaimCredits appends an offsetting forfeited or expired transaction
// against available balance. The ledger is never edited in place; this is
// the only sanctioned correction path.
func (s *adjustmentService) ReclaimCredits(ctx context.Context, userID, clubID string, amount int64, reason entities.TransactionType, description string) (uuid.UUID, error) {
	if userID == "" || clubID == "" {
		return uuid.Nil, fmt.Errorf("user and club are required: %w", entities.ErrInvalidArgument)
	}
	if amount <= 0 {
		return uuid.Nil, fmt.Errorf("reclaim of %d credits: %w", amount, entities.ErrInvalidAmount)
	}
	if reason != entities.TransactionTypeForfeited && reason != entities.TransactionTypeExpired {
		return uuid.Nil, fmt.Errorf("reclaim reason must be forfeited or expired, got %q: %w", reason, entities.ErrInvalidArgument)
	}
	if description == "" {
		description = fmt.Sprintf("Credits %s", reason)
	}

	uow := s.uowFactory.CreateForAccount(userID, clubID)
	if err := uow.Begin(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("failed to begin reclaim: %w", err)
	}
	defer uow.Rollback()

	if _, err := uow.AccountRepository().Lock(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("failed to lock account: %w", err)
	}

	available, err := uow.CreditTransactionRepository().SumAvailable(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to derive available balance: %w", err)
	}
	if available < amount {
		return uuid.Nil, fmt.Errorf("cannot reclaim %d of %d available credits: %w", amount, available, entities.ErrInsufficientBalance)
	}

	tx := &entities.CreditTransaction{
		Type:        reason,
		Amount:      -amount,
		Description: description,
	}
	if err := uow.CreditTransactionRepository().Append(ctx, tx); err != nil {
		return uuid.Nil, fmt.Errorf("failed to append reclaim transaction: %w", err)
	}

	if err := uow.AccountRepository().Apply(ctx, -amount, 0); err != nil {
		return uuid.Nil, fmt.Errorf("failed to update projection: %w", err)
	}

	if err := uow.EventBus().Publish(events.CreditsReclaimedEvent{
		UserID: userID,
		ClubID: clubID,
		Amount: amount,
		Reason: reason.String(),
	}); err != nil {
		log.WithError(err).Warn("Failed to buffer credits reclaimed event")
	}

	if err := uow.Commit(); err != nil {
		return uuid.Nil, fmt.Errorf("failed to commit reclaim: %w", err)
	}

	log.WithFields(log.Fields{
		"userID": userID,
		"clubID": clubID,
		"amount": amount,
		"reason": reason,
	}).Info("Reclaimed credits")

	return tx.ID, nil
}
