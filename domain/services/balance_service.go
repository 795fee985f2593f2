package services

import (
	"context"
	"fmt"

	"rallyledger/domain/entities"
	"rallyledger/domain/interfaces"
)

type balanceService struct {
	reader          interfaces.LedgerReader
	defaultPageSize int
}

// NewBalanceService creates a new balance service
func NewBalanceService(reader interfaces.LedgerReader, defaultPageSize int) interfaces.BalanceService {
	if defaultPageSize <= 0 {
		defaultPageSize = 50
	}
	return &balanceService{reader: reader, defaultPageSize: defaultPageSize}
}

// GetBalance returns the cached projection for an account. Accounts with
// no history read as zero balances rather than not-found.
func (s *balanceService) GetBalance(ctx context.Context, userID, clubID string) (*entities.AccountBalance, error) {
	if userID == "" || clubID == "" {
		return nil, fmt.Errorf("user and club are required: %w", entities.ErrInvalidArgument)
	}

	balance, err := s.reader.GetBalance(ctx, userID, clubID)
	if err != nil {
		return nil, fmt.Errorf("failed to get balance: %w", err)
	}
	if balance == nil {
		return &entities.AccountBalance{UserID: userID, ClubID: clubID}, nil
	}

	return balance, nil
}

// ListTransactions pages through the account's ledger newest first. The
// cursor is the (created-at, id) pair of the last entry seen; a nil cursor
// starts from the top.
func (s *balanceService) ListTransactions(ctx context.Context, userID, clubID string, before *entities.LogCursor, limit int) ([]*entities.CreditTransaction, error) {
	if userID == "" || clubID == "" {
		return nil, fmt.Errorf("user and club are required: %w", entities.ErrInvalidArgument)
	}
	if limit <= 0 || limit > s.defaultPageSize {
		limit = s.defaultPageSize
	}

	txs, err := s.reader.ListTransactions(ctx, userID, clubID, before, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	return txs, nil
}
