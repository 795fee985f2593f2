package services

import (
	"context"
	"errors"
	"fmt"

	"rallyledger/application"
	"rallyledger/domain/entities"
	"rallyledger/domain/events"
	"rallyledger/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

type redemptionService struct {
	uowFactory application.UnitOfWorkFactory
	reader     interfaces.LedgerReader
}

// NewRedemptionService creates a new redemption service
func NewRedemptionService(uowFactory application.UnitOfWorkFactory, reader interfaces.LedgerReader) interfaces.RedemptionService {
	return &redemptionService{uowFactory: uowFactory, reader: reader}
}

// Redeem spends available credits against a catalog item as a single
// atomic unit. The available balance is re-derived from the transaction
// log under the account lock, never read from the cached projection, so
// two racing redemptions can never drive the balance negative: the loser
// recomputes after the winner's commit and fails ErrInsufficientBalance.
func (s *redemptionService) Redeem(ctx context.Context, userID, clubID, catalogItemID, requestID string) (*entities.RedemptionRecord, error) {
	if userID == "" || clubID == "" || catalogItemID == "" {
		return nil, fmt.Errorf("user, club and catalog item are required: %w", entities.ErrInvalidArgument)
	}
	if requestID == "" {
		return nil, fmt.Errorf("request ID is required for idempotent redemption: %w", entities.ErrInvalidArgument)
	}

	uow := s.uowFactory.CreateForAccount(userID, clubID)
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin redemption: %w", err)
	}
	defer uow.Rollback()

	// Duplicate check comes first: a retried request must return the
	// prior committed result even if the item has since gone inactive
	existing, err := uow.RedemptionRepository().GetByRequestID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to check for duplicate request: %w", err)
	}
	if existing != nil {
		log.WithFields(log.Fields{
			"requestID":    requestID,
			"redemptionID": existing.ID,
		}).Info("Duplicate redemption request, returning prior result")
		return existing, nil
	}

	item, err := uow.CatalogRepository().GetItem(ctx, clubID, catalogItemID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up catalog item: %w", err)
	}
	if item == nil {
		return nil, fmt.Errorf("catalog item %s in club %s: %w", catalogItemID, clubID, entities.ErrNotFound)
	}
	if !item.Active {
		return nil, fmt.Errorf("catalog item %s: %w", catalogItemID, entities.ErrItemInactive)
	}

	if _, err := uow.AccountRepository().Lock(ctx); err != nil {
		return nil, fmt.Errorf("failed to lock account: %w", err)
	}

	// Authoritative balance, derived inside the same transaction
	available, err := uow.CreditTransactionRepository().SumAvailable(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to derive available balance: %w", err)
	}
	if available < item.CreditsRequired {
		return nil, fmt.Errorf("need %d credits, have %d: %w", item.CreditsRequired, available, entities.ErrInsufficientBalance)
	}

	tx := &entities.CreditTransaction{
		Type:                entities.TransactionTypeRedeemed,
		Amount:              -item.CreditsRequired,
		RedemptionRequestID: &requestID,
		Description:         fmt.Sprintf("Redeemed %s", item.Name),
	}
	if err := uow.CreditTransactionRepository().Append(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to append redeemed transaction: %w", err)
	}

	record := &entities.RedemptionRecord{
		RequestID:     requestID,
		CatalogItemID: item.ID,
		CreditsSpent:  item.CreditsRequired,
		Status:        entities.RedemptionStatusCommitted,
	}
	if err := uow.RedemptionRepository().Create(ctx, record); err != nil {
		// Two in-flight requests with the same key can both pass the
		// duplicate check; the unique constraint catches the loser once
		// the winner commits, and the loser returns the winner's record
		if errors.Is(err, entities.ErrDuplicateRequest) {
			_ = uow.Rollback()
			log.WithField("requestID", requestID).Info("Concurrent duplicate redemption request, returning committed result")
			return s.committedRedemption(ctx, userID, clubID, requestID)
		}
		return nil, fmt.Errorf("failed to create redemption record: %w", err)
	}

	if err := uow.AccountRepository().Apply(ctx, -item.CreditsRequired, 0); err != nil {
		return nil, fmt.Errorf("failed to update projection: %w", err)
	}

	// Fulfillment notification goes out after commit and never rolls the
	// ledger back; the fulfillment side owns its retry policy
	if err := uow.EventBus().Publish(events.RedemptionCommittedEvent{
		RedemptionID:  record.ID.String(),
		RequestID:     requestID,
		UserID:        userID,
		ClubID:        clubID,
		CatalogItemID: item.ID,
		CreditsSpent:  item.CreditsRequired,
		CommittedAt:   record.CreatedAt,
	}); err != nil {
		log.WithError(err).Warn("Failed to buffer redemption committed event")
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit redemption: %w", err)
	}

	log.WithFields(log.Fields{
		"userID":       userID,
		"clubID":       clubID,
		"itemID":       item.ID,
		"creditsSpent": item.CreditsRequired,
		"requestID":    requestID,
	}).Info("Committed redemption")

	return record, nil
}

// committedRedemption reads back the record the winning request committed.
// Runs in a fresh transaction: the losing one is already aborted by the
// unique violation.
func (s *redemptionService) committedRedemption(ctx context.Context, userID, clubID, requestID string) (*entities.RedemptionRecord, error) {
	uow := s.uowFactory.CreateForAccount(userID, clubID)
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin duplicate lookup: %w", err)
	}
	defer uow.Rollback()

	existing, err := uow.RedemptionRepository().GetByRequestID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to load committed redemption for request %s: %w", requestID, err)
	}
	if existing == nil {
		return nil, fmt.Errorf("redemption for request %s: %w", requestID, entities.ErrNotFound)
	}

	return existing, nil
}

// ListRedemptions returns the account's redemption history, newest first
func (s *redemptionService) ListRedemptions(ctx context.Context, userID, clubID string, limit int) ([]*entities.RedemptionRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	records, err := s.reader.ListRedemptions(ctx, userID, clubID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list redemptions: %w", err)
	}
	return records, nil
}
