package services

import (
	"fmt"

	"context"

	"rallyledger/application"
	"rallyledger/domain/entities"
	"rallyledger/domain/events"
	"rallyledger/domain/interfaces"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type grantService struct {
	uowFactory application.UnitOfWorkFactory
}

// NewGrantService creates a new grant service
func NewGrantService(uowFactory application.UnitOfWorkFactory) interfaces.GrantService {
	return &grantService{uowFactory: uowFactory}
}

// GrantPendingCredits appends a pending transaction and creates the
// tracked grant under one transaction. A repeated call for a (user, event)
// with an outstanding grant returns the existing transaction ID instead of
// granting twice.
func (s *grantService) GrantPendingCredits(ctx context.Context, userID, clubID, eventID string, amount int64, description string) (uuid.UUID, error) {
	if userID == "" || clubID == "" || eventID == "" {
		return uuid.Nil, fmt.Errorf("user, club and event are required: %w", entities.ErrInvalidArgument)
	}
	if amount <= 0 {
		return uuid.Nil, fmt.Errorf("grant of %d credits: %w", amount, entities.ErrInvalidAmount)
	}
	if description == "" {
		description = fmt.Sprintf("Pending credits for event %s", eventID)
	}

	uow := s.uowFactory.CreateForAccount(userID, clubID)
	if err := uow.Begin(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("failed to begin grant: %w", err)
	}
	defer uow.Rollback()

	// Serialize against other appends for this account before the
	// duplicate check so check-then-insert cannot race
	if _, err := uow.AccountRepository().Lock(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("failed to lock account: %w", err)
	}

	existing, err := uow.PendingGrantRepository().GetUnresolvedByEvent(ctx, eventID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to check outstanding grants: %w", err)
	}
	if existing != nil {
		log.WithFields(log.Fields{
			"userID":  userID,
			"eventID": eventID,
		}).Info("Grant already outstanding, returning existing transaction")
		return existing.TransactionID, nil
	}

	tx := &entities.CreditTransaction{
		Type:        entities.TransactionTypePending,
		Amount:      amount,
		EventID:     &eventID,
		Description: description,
	}
	if err := uow.CreditTransactionRepository().Append(ctx, tx); err != nil {
		return uuid.Nil, fmt.Errorf("failed to append pending transaction: %w", err)
	}

	grant := &entities.PendingGrant{
		EventID:       eventID,
		Amount:        amount,
		TransactionID: tx.ID,
	}
	if err := uow.PendingGrantRepository().Create(ctx, grant); err != nil {
		return uuid.Nil, fmt.Errorf("failed to create pending grant: %w", err)
	}

	if err := uow.AccountRepository().Apply(ctx, 0, amount); err != nil {
		return uuid.Nil, fmt.Errorf("failed to update pending balance: %w", err)
	}

	if err := uow.EventBus().Publish(events.CreditsGrantedEvent{
		UserID:        userID,
		ClubID:        clubID,
		EventID:       eventID,
		TransactionID: tx.ID.String(),
		Amount:        amount,
	}); err != nil {
		log.WithError(err).Warn("Failed to buffer credits granted event")
	}

	if err := uow.Commit(); err != nil {
		return uuid.Nil, fmt.Errorf("failed to commit grant: %w", err)
	}

	log.WithFields(log.Fields{
		"userID":  userID,
		"clubID":  clubID,
		"eventID": eventID,
		"amount":  amount,
	}).Info("Granted pending credits")

	return tx.ID, nil
}
