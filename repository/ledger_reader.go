package repository

import (
	"context"

	"rallyledger/database"
	"rallyledger/domain/entities"
	"rallyledger/domain/interfaces"
)

// ledgerReader implements the LedgerReader interface by constructing
// account-scoped repositories against the pool per call
type ledgerReader struct {
	db *database.DB
}

// NewLedgerReader creates the query-side reader for the ledger
func NewLedgerReader(db *database.DB) interfaces.LedgerReader {
	return &ledgerReader{db: db}
}

func (r *ledgerReader) GetBalance(ctx context.Context, userID, clubID string) (*entities.AccountBalance, error) {
	return NewAccountRepository(r.db, userID, clubID).Get(ctx)
}

func (r *ledgerReader) ListTransactions(ctx context.Context, userID, clubID string, before *entities.LogCursor, limit int) ([]*entities.CreditTransaction, error) {
	return NewCreditTransactionRepository(r.db, userID, clubID).List(ctx, before, limit)
}

func (r *ledgerReader) ListRedemptions(ctx context.Context, userID, clubID string, limit int) ([]*entities.RedemptionRecord, error) {
	return NewRedemptionRepository(r.db, userID, clubID).ListByAccount(ctx, limit)
}
